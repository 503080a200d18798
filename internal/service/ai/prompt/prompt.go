// Package prompt builds provider-neutral prompts for the Telegram-bot
// assistant and turns model replies back into file patches.
package prompt

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"telebot/internal/config"
	"telebot/internal/domain/models"
)

// SystemPrompt frames every model as a Telegram-bot development assistant
const SystemPrompt = `Ты — эксперт по разработке Telegram-ботов на Python.
Помогай пользователю создавать ботов с помощью библиотеки python-telegram-bot версии 20 и выше.

Правила:
- Давай готовый, рабочий код, который можно сразу запустить
- Объясняй решения на русском языке
- Используй асинхронный API (async/await)
- Оформляй каждый файл отдельным блоком кода ` + "```python" + `
- Давай файлам понятные имена: основной файл бота bot.py, настройки config.py`

const contextHeader = "Текущий контекст проекта:"

// ContextBlock renders the project's files as a truncated listing in name order.
// It returns "" for an empty project.
func ContextBlock(files map[string]string) string {
	if len(files) == 0 {
		return ""
	}

	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString(contextHeader)
	b.WriteString("\n")
	for _, name := range names {
		fmt.Fprintf(&b, "\n--- %s ---\n%s...\n", name, truncateRunes(files[name], config.ContextFileSnippetLength))
	}
	return b.String()
}

// System returns the system prompt with the project context appended
func System(req *models.AIChatRequest) string {
	block := ContextBlock(req.ProjectContext)
	if block == "" {
		return SystemPrompt
	}
	return SystemPrompt + "\n\n" + block
}

var pythonBlock = regexp.MustCompile("(?s)```python\n(.*?)\n```")

// ExtractFiles pulls fenced python blocks out of a model reply and names them.
// A block with an entry point becomes bot.py, one holding settings becomes
// config.py, anything else module_N.py where N is the block's position.
func ExtractFiles(reply string) map[string]string {
	files := make(map[string]string)
	for i, match := range pythonBlock.FindAllStringSubmatch(reply, -1) {
		code := match[1]
		files[filenameFor(code, i)] = code
	}
	return files
}

func filenameFor(code string, index int) string {
	switch {
	case strings.Contains(code, "def main()") || strings.Contains(code, "if __name__ == '__main__'") ||
		strings.Contains(code, `if __name__ == "__main__"`):
		return "bot.py"
	case strings.Contains(code, "BOT_TOKEN") || strings.Contains(code, "DATABASE_URL"):
		return "config.py"
	default:
		return fmt.Sprintf("module_%d.py", index+1)
	}
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

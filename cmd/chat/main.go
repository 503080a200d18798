package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/joho/godotenv"

	"telebot/internal/config"
	"telebot/internal/domain/models"
	"telebot/internal/domain/services"
	"telebot/internal/repository/memory"
	"telebot/internal/service"
	"telebot/internal/service/ai"
)

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorGreen  = "\033[32m"
	colorRed    = "\033[31m"
	colorBlue   = "\033[34m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
)

type CLI struct {
	ctx        context.Context
	chatSvc    services.ChatService
	projectSvc services.ProjectService
	strategies []string
	scanner    *bufio.Scanner
	projectID  string
	// pending holds the files proposed by the last reply
	pending map[string]string
	logger  *slog.Logger
}

// setupLogger writes debug logs to a rotated file under logs/ so the terminal stays readable
func setupLogger(cfg *config.Config) (*slog.Logger, io.Closer, string, error) {
	dir := cfg.LogDir
	if dir == "" {
		dir = "logs"
	}
	logFile, err := config.SetupLogFile(dir, cfg.LogMaxFiles)
	if err != nil {
		return nil, nil, "", err
	}

	logger := slog.New(slog.NewTextHandler(logFile, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	return logger, logFile, logFile.Name(), nil
}

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	logger, closer, logPath, err := setupLogger(cfg)
	if err != nil {
		fmt.Printf("%s❌ Failed to setup logger: %v%s\n", colorRed, err, colorReset)
		os.Exit(1)
	}
	defer closer.Close()
	logger.Info("session started", "log_file", logPath)

	ctx := context.Background()

	store := memory.NewStore(&memory.Config{
		MessageRetention: cfg.MessageRetention,
		Logger:           logger,
	})
	if err := store.Init(); err != nil {
		fmt.Printf("%s❌ Failed to seed project: %v%s\n", colorRed, err, colorReset)
		os.Exit(1)
	}

	resolver, err := ai.NewResolverFromConfig(ctx, cfg, logger)
	if err != nil {
		fmt.Printf("%s❌ Failed to setup AI resolver: %v%s\n", colorRed, err, colorReset)
		os.Exit(1)
	}

	projectSvc := service.NewProjectService(store, logger)
	// The CLI applies patches explicitly with /apply
	chatSvc := service.NewChatService(store, store, projectSvc, resolver, config.PatchModeAdvisory, logger)

	cli := &CLI{
		ctx:        ctx,
		chatSvc:    chatSvc,
		projectSvc: projectSvc,
		strategies: resolver.Strategies(),
		scanner:    bufio.NewScanner(os.Stdin),
		projectID:  models.DefaultProjectID,
		logger:     logger,
	}
	cli.scanner.Buffer(make([]byte, 0, 64<<10), config.MaxMessageContentLength*4)

	fmt.Printf("%sLogs: %s%s\n", colorBlue, logPath, colorReset)
	cli.run()
}

func (cli *CLI) run() {
	fmt.Printf("\n%s╔══════════════════════════════════════╗%s\n", colorCyan, colorReset)
	fmt.Printf("%s║    Telegram Bot Builder Chat         ║%s\n", colorCyan, colorReset)
	fmt.Printf("%s╚══════════════════════════════════════╝%s\n", colorCyan, colorReset)
	fmt.Printf("%sProject: %s | Strategies: %s%s\n", colorBlue, cli.projectID, strings.Join(cli.strategies, " → "), colorReset)
	fmt.Println("Commands: /files, /show <file>, /apply, /clear, /help, /quit")

	for {
		fmt.Print("\n> ")
		if !cli.scanner.Scan() {
			fmt.Println()
			return
		}
		line := strings.TrimSpace(cli.scanner.Text())
		if line == "" {
			continue
		}

		if !strings.HasPrefix(line, "/") {
			cli.send(line)
			continue
		}

		cmd, arg, _ := strings.Cut(line, " ")
		cli.logger.Debug("command", "cmd", cmd, "arg", arg)
		switch cmd {
		case "/files":
			cli.listFiles()
		case "/show":
			cli.showFile(strings.TrimSpace(arg))
		case "/apply":
			cli.applyPending()
		case "/clear":
			cli.clear()
		case "/help":
			fmt.Println("Type a request in plain text to talk to the assistant.")
			fmt.Println("/files - list project files, /show <file> - print a file,")
			fmt.Println("/apply - merge the last proposed files, /clear - reset the conversation")
		case "/quit", "/exit":
			cli.logger.Info("CLI exiting")
			fmt.Printf("%s✓ Goodbye!%s\n", colorGreen, colorReset)
			return
		default:
			// Anything else is a message, e.g. "/start должен приветствовать"
			cli.send(line)
		}
	}
}

func (cli *CLI) send(content string) {
	fmt.Printf("%s⏳ Thinking...%s\n", colorBlue, colorReset)

	result, err := cli.chatSvc.SendMessage(cli.ctx, cli.projectID, &services.SendMessageRequest{Content: content})
	if err != nil {
		cli.logger.Error("chat turn failed", "error", err)
		fmt.Printf("%s❌ %v%s\n", colorRed, err, colorReset)
		return
	}

	fmt.Printf("\n%s%s%s\n", colorGreen, result.AssistantMessage.Content, colorReset)

	cli.pending = result.Files
	if len(result.Files) == 0 {
		return
	}
	names := make([]string, 0, len(result.Files))
	for name := range result.Files {
		names = append(names, name)
	}
	sort.Strings(names)
	fmt.Printf("\n%sProposed files: %s (use /apply to save)%s\n", colorYellow, strings.Join(names, ", "), colorReset)
}

func (cli *CLI) listFiles() {
	files, err := cli.projectSvc.ListFiles(cli.ctx, cli.projectID)
	if err != nil {
		fmt.Printf("%s❌ %v%s\n", colorRed, err, colorReset)
		return
	}
	for _, f := range files {
		fmt.Printf("  %-24s %-8s %d bytes\n", f.Name, f.Type, len(f.Content))
	}
}

func (cli *CLI) showFile(name string) {
	if content, ok := cli.pending[name]; ok {
		fmt.Printf("%s--- %s (proposed) ---%s\n%s\n", colorCyan, name, colorReset, content)
		return
	}

	project, err := cli.projectSvc.GetProject(cli.ctx, cli.projectID)
	if err != nil {
		fmt.Printf("%s❌ %v%s\n", colorRed, err, colorReset)
		return
	}
	content, ok := project.Files[name]
	if !ok {
		fmt.Printf("%s⚠ No such file: %s%s\n", colorYellow, name, colorReset)
		return
	}
	fmt.Printf("%s--- %s ---%s\n%s\n", colorCyan, name, colorReset, content)
}

func (cli *CLI) applyPending() {
	if len(cli.pending) == 0 {
		fmt.Printf("%s⚠ Nothing to apply%s\n", colorYellow, colorReset)
		return
	}

	project, err := cli.projectSvc.ApplyFilePatch(cli.ctx, cli.projectID, cli.pending)
	if err != nil {
		fmt.Printf("%s❌ %v%s\n", colorRed, err, colorReset)
		return
	}
	cli.pending = nil
	fmt.Printf("%s✓ Project now has %d files%s\n", colorGreen, len(project.Files), colorReset)
}

func (cli *CLI) clear() {
	if err := cli.chatSvc.ClearMessages(cli.ctx, cli.projectID); err != nil {
		fmt.Printf("%s❌ %v%s\n", colorRed, err, colorReset)
		return
	}
	cli.pending = nil
	fmt.Printf("%s✓ Conversation cleared%s\n", colorGreen, colorReset)
}

package rules

import (
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"path"
	"path/filepath"
	"strings"
	"text/template"
	"unicode"

	"gopkg.in/yaml.v3"
)

//go:embed rules.yaml templates
var defaultFiles embed.FS

const defaultRulesFile = "rules.yaml"

// Set is an ordered list of rules plus the reply used when none matches
type Set struct {
	Rules   []Rule
	generic *template.Template
}

// LoadDefault loads the built-in rule set
func LoadDefault() (*Set, error) {
	return Load(defaultFiles, defaultRulesFile)
}

// LoadFile loads a rule set from disk. Template paths resolve against the
// directory holding the rules file.
func LoadFile(filename string) (*Set, error) {
	dir, name := filepath.Split(filename)
	if dir == "" {
		dir = "."
	}
	return Load(os.DirFS(dir), name)
}

// Load parses the rules file at name inside fsys and reads every template it references
func Load(fsys fs.FS, name string) (*Set, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}

	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to unmarshal %s: %w", name, err)
	}

	base := path.Join(path.Dir(name), file.TemplatesDir)
	read := func(p string) (string, error) {
		content, err := fs.ReadFile(fsys, path.Join(base, p))
		if err != nil {
			return "", fmt.Errorf("failed to read template %s: %w", p, err)
		}
		return string(content), nil
	}

	set := &Set{Rules: make([]Rule, 0, len(file.Rules))}
	seen := make(map[string]bool, len(file.Rules))
	for i, def := range file.Rules {
		rule, err := buildRule(def, read)
		if err != nil {
			return nil, fmt.Errorf("rule %d (%s): %w", i, def.Name, err)
		}
		if seen[rule.Name] {
			return nil, fmt.Errorf("rule %d: duplicate name %q", i, rule.Name)
		}
		seen[rule.Name] = true
		set.Rules = append(set.Rules, *rule)
	}

	if file.Generic == "" {
		return nil, fmt.Errorf("%s: generic reply template is required", name)
	}
	genericText, err := read(file.Generic)
	if err != nil {
		return nil, err
	}
	set.generic, err = template.New("generic").Parse(strings.TrimSpace(genericText))
	if err != nil {
		return nil, fmt.Errorf("failed to parse generic template: %w", err)
	}

	return set, nil
}

func buildRule(def RuleSpec, read func(string) (string, error)) (*Rule, error) {
	if def.Name == "" {
		return nil, fmt.Errorf("name is required")
	}
	if len(def.Match) == 0 {
		return nil, fmt.Errorf("at least one match group is required")
	}
	if def.Reply == "" {
		return nil, fmt.Errorf("reply is required")
	}

	rule := &Rule{
		Name:   def.Name,
		Groups: make([][]string, 0, len(def.Match)),
		Files:  make(map[string]string, len(def.Files)),
	}

	for _, group := range def.Match {
		keywords := make([]string, 0, len(group))
		for _, kw := range group {
			// Leading and trailing spaces are significant: " бд " matches a whole word
			kw = strings.Map(keywordRune, strings.ToLower(kw))
			if strings.TrimSpace(kw) == "" {
				continue
			}
			keywords = append(keywords, kw)
		}
		if len(keywords) == 0 {
			return nil, fmt.Errorf("match group has no keywords")
		}
		rule.Groups = append(rule.Groups, keywords)
	}

	reply, err := read(def.Reply)
	if err != nil {
		return nil, err
	}
	rule.Reply = strings.TrimSpace(reply)

	for filename, tmpl := range def.Files {
		content, err := read(tmpl)
		if err != nil {
			return nil, err
		}
		rule.Files[filename] = content
	}

	return rule, nil
}

// Match returns the first rule matching message, or nil
func (s *Set) Match(message string) *Rule {
	text := normalize(message)
	for i := range s.Rules {
		if s.Rules[i].Matches(text) {
			return &s.Rules[i]
		}
	}
	return nil
}

// Generic renders the reply for a message no rule matched
func (s *Set) Generic(message string) string {
	var buf bytes.Buffer
	if err := s.generic.Execute(&buf, struct{ Query string }{Query: message}); err != nil {
		return fmt.Sprintf("Понял ваш запрос: %q", message)
	}
	return buf.String()
}

// RuleFiles returns a copy of the rule's files
func (r *Rule) RuleFiles() map[string]string {
	return maps.Clone(r.Files)
}

// normalize lowercases text, turns every run of non-alphanumerics into one
// space and pads the result, so keywords with spaces anchor on word edges
func normalize(text string) string {
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	return " " + strings.Join(words, " ") + " "
}

// keywordRune maps punctuation in a keyword to a space, as normalize does for text
func keywordRune(r rune) rune {
	if unicode.IsLetter(r) || unicode.IsDigit(r) {
		return r
	}
	return ' '
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

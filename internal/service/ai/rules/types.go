package rules

// File is the YAML layout of a rules file
type File struct {
	TemplatesDir string     `yaml:"templates_dir"`
	Rules        []RuleSpec `yaml:"rules"`
	Generic      string     `yaml:"generic"`
}

// RuleSpec describes one rule as written in YAML.
// Files maps an output filename to a template path.
type RuleSpec struct {
	Name  string            `yaml:"name"`
	Match [][]string        `yaml:"match"`
	Reply string            `yaml:"reply"`
	Files map[string]string `yaml:"files"`
}

// Rule is a loaded rule with its templates resolved
type Rule struct {
	Name   string
	Groups [][]string
	Reply  string
	Files  map[string]string
}

// Matches reports whether every keyword group has at least one hit in text.
// text must already be normalized by normalize.
func (r *Rule) Matches(text string) bool {
	if len(r.Groups) == 0 {
		return false
	}
	for _, group := range r.Groups {
		if !containsAny(text, group) {
			return false
		}
	}
	return true
}

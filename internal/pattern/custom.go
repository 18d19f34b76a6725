package pattern

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/Cellular-Semantics/url2ref/internal/identifier"
)

// ruleFile is the on-disk shape of a custom rule set.
type ruleFile struct {
	Rules []ruleEntry `yaml:"rules"`
}

type ruleEntry struct {
	Name       string  `yaml:"name"`
	Host       string  `yaml:"host,omitempty"`
	Pattern    string  `yaml:"pattern"`
	Type       string  `yaml:"type"`
	Confidence float64 `yaml:"confidence"`
	Fallback   bool    `yaml:"fallback,omitempty"`
}

// LoadRules reads extra publisher rules from a YAML file. Loaded rules
// are meant to be appended after the built-in table via AddRules.
//
// File format:
//
//	rules:
//	  - name: example-press
//	    host: journals.example.org
//	    pattern: '/article/(10\.\d{4,9}/[^?#]+)'
//	    type: doi
//	    confidence: 0.9
func LoadRules(path string) ([]Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading rules file: %w", err)
	}

	var file ruleFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing rules file: %w", err)
	}

	rules := make([]Rule, 0, len(file.Rules))
	for i, entry := range file.Rules {
		rule, err := compileRule(entry)
		if err != nil {
			return nil, fmt.Errorf("rule %d (%s): %w", i, entry.Name, err)
		}
		rules = append(rules, rule)
	}
	return rules, nil
}

func compileRule(entry ruleEntry) (Rule, error) {
	if entry.Pattern == "" {
		return Rule{}, fmt.Errorf("missing pattern")
	}
	re, err := regexp.Compile(entry.Pattern)
	if err != nil {
		return Rule{}, fmt.Errorf("invalid pattern: %w", err)
	}
	if re.NumSubexp() < 1 {
		return Rule{}, fmt.Errorf("pattern needs a capture group for the identifier token")
	}

	t, err := identifier.ParseType(entry.Type)
	if err != nil {
		return Rule{}, err
	}

	if entry.Confidence <= 0 || entry.Confidence > 1 {
		return Rule{}, fmt.Errorf("confidence %v out of range (0,1]", entry.Confidence)
	}

	return Rule{
		Name:       entry.Name,
		Host:       entry.Host,
		Pattern:    re,
		Type:       t,
		Confidence: entry.Confidence,
		Fallback:   entry.Fallback,
	}, nil
}

package pattern

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Cellular-Semantics/url2ref/internal/identifier"
)

func writeRules(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rules.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing rules file: %v", err)
	}
	return path
}

func TestLoadRules(t *testing.T) {
	path := writeRules(t, `rules:
  - name: example-press
    host: journals.example.org
    pattern: '/article/(10\.\d{4,9}/[^?#]+)'
    type: doi
    confidence: 0.9
  - name: example-ids
    pattern: '[?&]pmid=(\d{1,8})'
    type: pmid
    confidence: 0.7
    fallback: true
`)

	rules, err := LoadRules(path)
	if err != nil {
		t.Fatalf("LoadRules() error = %v", err)
	}
	if len(rules) != 2 {
		t.Fatalf("len(rules) = %d, want 2", len(rules))
	}

	if rules[0].Name != "example-press" || rules[0].Type != identifier.DOI || rules[0].Host != "journals.example.org" {
		t.Errorf("rule 0 = %+v", rules[0])
	}
	if rules[1].Type != identifier.PMID || !rules[1].Fallback {
		t.Errorf("rule 1 = %+v", rules[1])
	}

	e := NewExtractor()
	e.AddRules(rules)
	ids := e.ExtractFromURL("https://journals.example.org/article/10.9999/example.42")
	if len(ids) != 1 || ids[0].Value != "10.9999/example.42" {
		t.Errorf("loaded rule extraction = %v, want one DOI", ids)
	}
}

func TestLoadRulesErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name: "bad type",
			content: `rules:
  - name: r
    pattern: '/x/(\d+)'
    type: isbn
    confidence: 0.5
`,
		},
		{
			name: "bad confidence",
			content: `rules:
  - name: r
    pattern: '/x/(\d+)'
    type: doi
    confidence: 1.5
`,
		},
		{
			name: "invalid regexp",
			content: `rules:
  - name: r
    pattern: '/x/(\d+'
    type: doi
    confidence: 0.5
`,
		},
		{
			name: "no capture group",
			content: `rules:
  - name: r
    pattern: '/x/\d+'
    type: doi
    confidence: 0.5
`,
		},
		{
			name:    "not yaml",
			content: "{{{{",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeRules(t, tt.content)
			if _, err := LoadRules(path); err == nil {
				t.Error("LoadRules() error = nil, want error")
			}
		})
	}
}

func TestLoadRulesMissingFile(t *testing.T) {
	if _, err := LoadRules(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("LoadRules() error = nil for missing file")
	}
}

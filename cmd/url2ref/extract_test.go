package main

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestCollectURLsFromArgs(t *testing.T) {
	urls, err := collectURLs([]string{"https://a.org/1", "https://b.org/2"}, "", nil)
	if err != nil {
		t.Fatalf("collectURLs() error = %v", err)
	}
	want := []string{"https://a.org/1", "https://b.org/2"}
	if !reflect.DeepEqual(urls, want) {
		t.Errorf("collectURLs() = %v, want %v", urls, want)
	}
}

func TestCollectURLsFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "urls.txt")
	content := `# bibliography export
https://pubmed.ncbi.nlm.nih.gov/37674083/

https://www.science.org/doi/10.1126/science.abm5224
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing input file: %v", err)
	}

	urls, err := collectURLs([]string{"https://a.org/1"}, path, nil)
	if err != nil {
		t.Fatalf("collectURLs() error = %v", err)
	}
	want := []string{
		"https://a.org/1",
		"https://pubmed.ncbi.nlm.nih.gov/37674083/",
		"https://www.science.org/doi/10.1126/science.abm5224",
	}
	if !reflect.DeepEqual(urls, want) {
		t.Errorf("collectURLs() = %v, want %v", urls, want)
	}
}

func TestCollectURLsFromStdin(t *testing.T) {
	stdin := strings.NewReader("https://a.org/1\nhttps://b.org/2\n")

	urls, err := collectURLs(nil, "-", stdin)
	if err != nil {
		t.Fatalf("collectURLs() error = %v", err)
	}
	if len(urls) != 2 || urls[1] != "https://b.org/2" {
		t.Errorf("collectURLs() = %v", urls)
	}
}

func TestCollectURLsMissingFile(t *testing.T) {
	if _, err := collectURLs(nil, filepath.Join(t.TempDir(), "absent.txt"), nil); err == nil {
		t.Error("collectURLs() error = nil for missing file")
	}
}

func TestParseInterval(t *testing.T) {
	d, err := parseInterval("scrape-interval", "1500ms")
	if err != nil {
		t.Fatalf("parseInterval() error = %v", err)
	}
	if d.Milliseconds() != 1500 {
		t.Errorf("parseInterval() = %v, want 1.5s", d)
	}

	if _, err := parseInterval("scrape-interval", "fast"); err == nil {
		t.Error("parseInterval() error = nil for garbage input")
	}
}

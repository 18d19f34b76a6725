// Package llm provides the text-reasoning capability used as a last
// resort by the document extractor: an OpenAI-compatible chat client
// asked to locate academic identifiers in extracted document text.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

const (
	// DefaultBaseURL is the OpenAI API base URL. Any endpoint speaking
	// the chat/completions shape works.
	DefaultBaseURL = "https://api.openai.com/v1"

	// DefaultModel is a small, cheap model; the task is locating a
	// short token in a page of text.
	DefaultModel = "gpt-4o-mini"

	// DefaultTimeout is the per-request HTTP timeout.
	DefaultTimeout = 60 * time.Second
)

// Common errors returned by the client.
var (
	// ErrNoAPIKey indicates no API key was configured.
	ErrNoAPIKey = errors.New("no LLM API key configured")

	// ErrEmptyResponse indicates the API returned no choices.
	ErrEmptyResponse = errors.New("empty LLM response")
)

// Client is an OpenAI-compatible chat client.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	model      string
}

// Option configures a Client.
type Option func(*Client)

// WithAPIKey sets the API key.
func WithAPIKey(key string) Option {
	return func(c *Client) {
		c.apiKey = key
	}
}

// WithBaseURL sets a custom API base URL (for testing or compatible
// providers).
func WithBaseURL(url string) Option {
	return func(c *Client) {
		c.baseURL = url
	}
}

// WithModel sets the model name.
func WithModel(model string) Option {
	return func(c *Client) {
		c.model = model
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// NewClient creates a chat client. The API key falls back to the
// OPENAI_API_KEY environment variable.
func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		baseURL:    DefaultBaseURL,
		model:      DefaultModel,
	}

	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		c.apiKey = key
	}

	for _, opt := range opts {
		opt(c)
	}
	return c
}

// readerPrompt instructs the model to answer in the line format the
// document extractor knows how to parse.
const readerPrompt = `The following text was extracted from an academic document.
Find the document's own identifiers (DOI, PMID, or PMC accession).

Answer with one identifier per line in the form "DOI: 10.xxxx/yyyy",
"PMID: nnnnnnnn", or "PMC: PMCnnnnnnn". If the text contains no such
identifier, answer exactly "NONE".

Text:
%s`

// ReadIdentifiers asks the model to locate identifiers in the given
// text and returns its raw answer. One attempt, no retries.
func (c *Client) ReadIdentifiers(ctx context.Context, text string) (string, error) {
	if c.apiKey == "" {
		return "", ErrNoAPIKey
	}

	body := map[string]any{
		"model":       c.model,
		"temperature": 0,
		"messages": []map[string]string{
			{"role": "user", "content": fmt.Sprintf(readerPrompt, text)},
		},
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	endpoint := strings.TrimRight(c.baseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling LLM API: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("reading LLM response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("LLM API status %d: %s", resp.StatusCode, truncate(string(raw), 200))
	}

	var cc struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(raw, &cc); err != nil {
		return "", fmt.Errorf("decoding LLM response: %w", err)
	}
	if len(cc.Choices) == 0 {
		return "", ErrEmptyResponse
	}

	return strings.TrimSpace(cc.Choices[0].Message.Content), nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

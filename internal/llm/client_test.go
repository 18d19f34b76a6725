package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestReadIdentifiers(t *testing.T) {
	var gotAuth string
	var gotBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.Write([]byte(`{"choices":[{"message":{"content":"DOI: 10.1371/journal.pone.0302376\n"}}]}`))
	}))
	defer server.Close()

	c := NewClient(WithBaseURL(server.URL), WithAPIKey("key"), WithModel("test-model"))
	answer, err := c.ReadIdentifiers(context.Background(), "extracted document text")
	if err != nil {
		t.Fatalf("ReadIdentifiers() error = %v", err)
	}

	if answer != "DOI: 10.1371/journal.pone.0302376" {
		t.Errorf("answer = %q", answer)
	}
	if gotAuth != "Bearer key" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if gotBody["model"] != "test-model" {
		t.Errorf("model = %v", gotBody["model"])
	}

	messages, ok := gotBody["messages"].([]any)
	if !ok || len(messages) != 1 {
		t.Fatalf("messages = %v", gotBody["messages"])
	}
	content := messages[0].(map[string]any)["content"].(string)
	if !strings.Contains(content, "extracted document text") {
		t.Error("prompt does not carry the document text")
	}
}

func TestReadIdentifiersNoKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")

	c := NewClient()
	if _, err := c.ReadIdentifiers(context.Background(), "text"); !errors.Is(err, ErrNoAPIKey) {
		t.Errorf("error = %v, want ErrNoAPIKey", err)
	}
}

func TestReadIdentifiersAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"message":"rate limited"}}`))
	}))
	defer server.Close()

	c := NewClient(WithBaseURL(server.URL), WithAPIKey("key"))
	if _, err := c.ReadIdentifiers(context.Background(), "text"); err == nil {
		t.Error("ReadIdentifiers() error = nil for HTTP 429")
	}
}

func TestReadIdentifiersEmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[]}`))
	}))
	defer server.Close()

	c := NewClient(WithBaseURL(server.URL), WithAPIKey("key"))
	if _, err := c.ReadIdentifiers(context.Background(), "text"); !errors.Is(err, ErrEmptyResponse) {
		t.Errorf("error = %v, want ErrEmptyResponse", err)
	}
}

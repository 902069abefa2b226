package ai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/melosbot/telegram-chat-organizer/internal"
)

var testChats = []internal.Chat{{ChatID: 10, Title: "Go News", Type: "CHANNEL"}}
var testFolders = []internal.Folder{{ID: 1, Title: "News"}}

const testDraftJSON = `{"categorized": [{"folder_id": 1, "folder_title": "News", "chats": [{"chat_id": 10, "type": "CHANNEL", "reason": "go"}]}]}`

func openAITestServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, Options) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return server, Options{
		Provider: internal.ProviderOpenAI,
		APIKey:   "sk-test",
		BaseURL:  server.URL,
		Model:    "gpt-4o-mini",
		Timeout:  5 * time.Second,
	}
}

func openAIReply(content any) string {
	body, _ := json.Marshal(map[string]any{
		"choices": []map[string]any{
			{"message": map[string]any{"content": content}},
		},
	})
	return string(body)
}

func TestOpenAIClassify(t *testing.T) {
	var gotPath, gotAuth string
	var gotRequest openAIRequest

	_, opts := openAITestServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		json.NewDecoder(r.Body).Decode(&gotRequest)
		w.Write([]byte(openAIReply(testDraftJSON)))
	})

	client := newOpenAIClient(opts)
	d, err := client.Classify(context.Background(), testChats, testFolders)
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}

	if gotPath != "/v1/chat/completions" {
		t.Errorf("path = %q, want /v1/chat/completions", gotPath)
	}
	if gotAuth != "Bearer sk-test" {
		t.Errorf("auth = %q", gotAuth)
	}
	if gotRequest.Model != "gpt-4o-mini" || len(gotRequest.Messages) != 2 {
		t.Errorf("request = %+v", gotRequest)
	}
	if gotRequest.Temperature != 0.1 {
		t.Errorf("temperature = %v, want 0.1", gotRequest.Temperature)
	}
	if d.TotalAssigned() != 1 || d.Categorized[0].FolderID != 1 {
		t.Errorf("draft = %+v", d)
	}
}

func TestOpenAIClassifyFencedContent(t *testing.T) {
	_, opts := openAITestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(openAIReply("```json\n" + testDraftJSON + "\n```")))
	})

	client := newOpenAIClient(opts)
	d, err := client.Classify(context.Background(), testChats, testFolders)
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}
	if d.TotalAssigned() != 1 {
		t.Errorf("draft = %+v", d)
	}
}

func TestOpenAIClassifyContentParts(t *testing.T) {
	_, opts := openAITestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(openAIReply([]map[string]string{
			{"type": "text", "text": testDraftJSON},
		})))
	})

	client := newOpenAIClient(opts)
	d, err := client.Classify(context.Background(), testChats, testFolders)
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}
	if d.TotalAssigned() != 1 {
		t.Errorf("draft = %+v", d)
	}
}

func TestOpenAIClassifyHTTPError(t *testing.T) {
	_, opts := openAITestServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": {"message": "rate limited"}}`, http.StatusTooManyRequests)
	})

	client := newOpenAIClient(opts)
	_, err := client.Classify(context.Background(), testChats, testFolders)

	var classErr *ClassificationError
	if !errors.As(err, &classErr) {
		t.Fatalf("error = %v, want ClassificationError", err)
	}
	if classErr.Status != http.StatusTooManyRequests {
		t.Errorf("status = %d, want 429", classErr.Status)
	}
}

func TestOpenAIClassifyEmptyChoices(t *testing.T) {
	_, opts := openAITestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices": []}`))
	})

	client := newOpenAIClient(opts)
	if _, err := client.Classify(context.Background(), testChats, testFolders); err == nil {
		t.Error("Classify() should fail on an empty choices array")
	}
}

func TestOpenAIEndpoint(t *testing.T) {
	tests := []struct {
		base string
		want string
	}{
		{"https://api.openai.com/v1", "https://api.openai.com/v1/chat/completions"},
		{"https://api.openai.com", "https://api.openai.com/v1/chat/completions"},
		{"http://127.0.0.1:8000/v1/chat/completions", "http://127.0.0.1:8000/v1/chat/completions"},
		{"https://gateway.example.com/openai/v1", "https://gateway.example.com/openai/v1/chat/completions"},
	}

	for _, tt := range tests {
		client := newOpenAIClient(Options{BaseURL: tt.base})
		got, err := client.endpoint()
		if err != nil {
			t.Errorf("endpoint(%q) error = %v", tt.base, err)
			continue
		}
		if got != tt.want {
			t.Errorf("endpoint(%q) = %q, want %q", tt.base, got, tt.want)
		}
	}
}

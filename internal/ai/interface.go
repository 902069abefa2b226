package ai

import (
	"context"
	"fmt"
	"time"

	"github.com/melosbot/telegram-chat-organizer/internal"
)

// Classifier produces a classification draft for a set of chats against the
// available folders.
type Classifier interface {
	Classify(ctx context.Context, chats []internal.Chat, folders []internal.Folder) (internal.Draft, error)
	Provider() string
}

// Options configures a classifier instance.
type Options struct {
	Provider     string
	APIKey       string
	BaseURL      string
	Model        string
	Timeout      time.Duration
	MaxRetries   int
	RetryBackoff time.Duration
}

// New creates a classifier for the configured provider, wrapped with retry
// handling.
func New(opts Options) (Classifier, error) {
	var client Classifier
	switch opts.Provider {
	case internal.ProviderOpenAI:
		client = newOpenAIClient(opts)
	case internal.ProviderGemini:
		client = newGeminiClient(opts)
	default:
		return nil, fmt.Errorf("unsupported provider: %s (supported: %s, %s)",
			opts.Provider, internal.ProviderOpenAI, internal.ProviderGemini)
	}
	return withRetry(client, opts.MaxRetries, opts.RetryBackoff), nil
}

// ClassificationError wraps a provider failure with enough context to tell
// auth problems from transient ones.
type ClassificationError struct {
	Provider string
	Status   int
	Err      error
}

func (e *ClassificationError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("%s classification failed (HTTP %d): %v", e.Provider, e.Status, e.Err)
	}
	return fmt.Sprintf("%s classification failed: %v", e.Provider, e.Err)
}

func (e *ClassificationError) Unwrap() error {
	return e.Err
}

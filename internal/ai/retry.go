package ai

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/melosbot/telegram-chat-organizer/internal"
)

// retryingClassifier retries transient provider failures with exponential
// backoff. Non-retryable failures (auth, bad request, malformed response)
// surface immediately.
type retryingClassifier struct {
	inner      Classifier
	maxRetries int
	backoff    time.Duration
}

func withRetry(inner Classifier, maxRetries int, backoff time.Duration) Classifier {
	if maxRetries < 1 {
		maxRetries = 1
	}
	if backoff <= 0 {
		backoff = time.Second
	}
	return &retryingClassifier{inner: inner, maxRetries: maxRetries, backoff: backoff}
}

func (r *retryingClassifier) Provider() string {
	return r.inner.Provider()
}

func (r *retryingClassifier) Classify(ctx context.Context, chats []internal.Chat, folders []internal.Folder) (internal.Draft, error) {
	var lastErr error
	for attempt := 1; attempt <= r.maxRetries; attempt++ {
		d, err := r.inner.Classify(ctx, chats, folders)
		if err == nil {
			return d, nil
		}
		lastErr = err

		if !isRetryable(err) {
			return internal.Draft{}, err
		}
		if attempt == r.maxRetries {
			break
		}

		delay := r.backoff * time.Duration(1<<(attempt-1))
		internal.LogWarn("Classification attempt %d/%d failed (%v), retrying in %s",
			attempt, r.maxRetries, err, delay)
		select {
		case <-ctx.Done():
			return internal.Draft{}, ctx.Err()
		case <-time.After(delay):
		}
	}
	return internal.Draft{}, lastErr
}

// isRetryable reports whether the failure is worth another attempt:
// rate limiting, server-side errors, and network-level hiccups.
func isRetryable(err error) bool {
	var classErr *ClassificationError
	if errors.As(err, &classErr) {
		if classErr.Status == 429 || classErr.Status >= 500 {
			return true
		}
		if classErr.Status > 0 {
			return false
		}
	}

	msg := strings.ToLower(err.Error())
	for _, signal := range []string{"timeout", "deadline exceeded", "connection refused", "connection reset", "temporary", "eof"} {
		if strings.Contains(msg, signal) {
			return true
		}
	}
	return false
}

package internal

import (
	"errors"
	"fmt"
)

// ErrAborted signals that the user declined (or let time out) a confirmation
// or retry gate. It terminates the run cleanly, preserving all artifacts
// produced so far.
var ErrAborted = errors.New("run aborted by user")

// MalformedDraftError reports draft data whose top-level structure cannot be
// salvaged by the normalizer.
type MalformedDraftError struct {
	Reason string
}

func (e *MalformedDraftError) Error() string {
	return fmt.Sprintf("malformed draft: %s", e.Reason)
}

// AIResponseFormatError reports an AI response from which no JSON object
// could be extracted.
type AIResponseFormatError struct {
	Reason string
	Err    error
}

func (e *AIResponseFormatError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("ai response format: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("ai response format: %s", e.Reason)
}

func (e *AIResponseFormatError) Unwrap() error {
	return e.Err
}

// ReviewFormatError reports a review CSV that cannot be consumed.
type ReviewFormatError struct {
	Path   string
	Reason string
}

func (e *ReviewFormatError) Error() string {
	return fmt.Sprintf("review csv %s: %s", e.Path, e.Reason)
}

// ConfigError reports missing or invalid environment configuration. It is
// fatal and surfaced before any network activity.
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string {
	return e.Message
}

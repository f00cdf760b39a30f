// Package genai provides the OpenAI-compatible AI backend: assistant
// completions, group-chat translation, and language detection.
package genai

import (
	"context"
	"time"
)

// Turn is one message in the conversation window sent to the model.
type Turn struct {
	Role    string // "user" or "assistant"
	Content string
}

// Completer generates assistant replies from a bounded conversation window.
type Completer interface {
	// Complete generates a reply in the given language. The last turn in
	// turns is the current user message.
	Complete(ctx context.Context, lang string, turns []Turn) (string, error)
}

// Translator translates group-chat messages to a target language.
type Translator interface {
	Translate(ctx context.Context, text, targetLang string) (string, error)
}

// Detector guesses the language of a first-contact message.
// Implementations return catalog codes, or empty string when inconclusive.
type Detector interface {
	Detect(ctx context.Context, text string) string
}

// RetryConfig defines retry behavior for AI API calls.
// Uses AWS-recommended Full Jitter exponential backoff.
type RetryConfig struct {
	// MaxAttempts is the maximum number of attempts (including initial).
	MaxAttempts int

	// InitialDelay is the base delay before first retry.
	InitialDelay time.Duration

	// MaxDelay is the maximum delay between retries.
	MaxDelay time.Duration
}

// Retry configuration defaults
const (
	DefaultMaxRetryAttempts  = 2
	DefaultInitialRetryDelay = 500 * time.Millisecond
	DefaultMaxRetryDelay     = 3 * time.Second
)

// DefaultRetryConfig returns the default retry configuration.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:  DefaultMaxRetryAttempts,
		InitialDelay: DefaultInitialRetryDelay,
		MaxDelay:     DefaultMaxRetryDelay,
	}
}

// Input length caps, matching what the upstream providers tolerate without
// blowing the context window.
const (
	maxCurrentMessageRunes = 2000
	maxHistoryMessageRunes = 500
)

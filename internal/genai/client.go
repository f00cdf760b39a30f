// Package genai provides the OpenAI-compatible AI backend.
// This file contains the chat completion client for assistant replies and
// group-chat translation.
package genai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	apperrors "github.com/imigo-bot/imigo-linebot-go/internal/errors"
	"github.com/imigo-bot/imigo-linebot-go/internal/metrics"
)

// Config holds client configuration.
type Config struct {
	// APIKey authenticates against the chat completions endpoint. Required.
	APIKey string

	// BaseURL overrides the provider endpoint. Empty uses the OpenAI default.
	BaseURL string

	// Model is the chat completions model name. Required.
	Model string

	// Temperature for assistant replies.
	Temperature float64

	// MaxTokens caps assistant reply length.
	MaxTokens int

	// Retry controls transient-failure retries. Zero value disables retries.
	Retry RetryConfig
}

// Client talks to an OpenAI-compatible chat completions endpoint.
// It implements Completer, Translator, and backs the LLM side of Detector.
type Client struct {
	client      openai.Client
	model       string
	temperature float64
	maxTokens   int
	retry       RetryConfig
	metrics     *metrics.Metrics
}

// NewClient creates a chat completions client.
// m is optional; when set, request counts and durations are recorded.
func NewClient(cfg Config, m *metrics.Metrics) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("AI API key is required")
	}
	if cfg.Model == "" {
		return nil, errors.New("AI model is required")
	}

	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	retry := cfg.Retry
	if retry.MaxAttempts <= 0 {
		retry.MaxAttempts = 1
	}

	return &Client{
		client:      openai.NewClient(opts...),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		retry:       retry,
		metrics:     m,
	}, nil
}

// Complete generates an assistant reply in the given language.
// The last turn in turns is the current user message; earlier turns are the
// bounded history window. History content is truncated to keep the request
// small; the current message gets a larger cap.
func (c *Client) Complete(ctx context.Context, lang string, turns []Turn) (string, error) {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(turns)+1)
	messages = append(messages, openai.SystemMessage(systemPrompt(lang)))

	for i, turn := range turns {
		content := turn.Content
		if i == len(turns)-1 {
			content = truncateRunes(content, maxCurrentMessageRunes)
		} else {
			content = truncateRunes(content, maxHistoryMessageRunes)
		}

		if turn.Role == "assistant" {
			messages = append(messages, openai.AssistantMessage(content))
		} else {
			messages = append(messages, openai.UserMessage(content))
		}
	}

	params := openai.ChatCompletionNewParams{
		Model:       c.model,
		Messages:    messages,
		Temperature: openai.Float(c.temperature),
		MaxTokens:   openai.Int(int64(c.maxTokens)),
	}

	text, err := c.complete(ctx, "complete", params)
	if err != nil {
		return "", err
	}

	return SanitizeReply(text), nil
}

// Translate translates text to the target language.
// Uses a low temperature for consistent output.
func (c *Client) Translate(ctx context.Context, text, targetLang string) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model: c.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(translationPrompt(targetLang)),
			openai.UserMessage(truncateRunes(text, maxCurrentMessageRunes)),
		},
		Temperature: openai.Float(0.3),
		MaxTokens:   openai.Int(500),
	}

	translated, err := c.complete(ctx, "translate", params)
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(translated), nil
}

// DetectLanguage asks the model to identify the language of text.
// Returns a catalog code, or empty string when the model is inconclusive
// or the call fails.
func (c *Client) DetectLanguage(ctx context.Context, text string) string {
	params := openai.ChatCompletionNewParams{
		Model: c.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(detectionPrompt()),
			openai.UserMessage(truncateRunes(text, maxHistoryMessageRunes)),
		},
		Temperature: openai.Float(0),
		MaxTokens:   openai.Int(8),
	}

	answer, err := c.complete(ctx, "detect", params)
	if err != nil {
		slog.DebugContext(ctx, "LLM language detection failed", "error", err)
		return ""
	}

	code := strings.ToLower(strings.TrimSpace(answer))
	switch code {
	case "id", "zh", "en", "vi":
		return code
	default:
		return ""
	}
}

// complete runs one chat completion with retry and returns the reply text.
func (c *Client) complete(ctx context.Context, operation string, params openai.ChatCompletionNewParams) (string, error) {
	var content string

	start := time.Now()
	err := WithRetry(ctx, c.retry, func() error {
		resp, err := c.client.Chat.Completions.New(ctx, params)
		if err != nil {
			return err
		}
		if len(resp.Choices) == 0 {
			return errors.New("empty response from model")
		}
		content = resp.Choices[0].Message.Content

		if resp.Usage.TotalTokens > 0 {
			slog.DebugContext(ctx, "chat completion succeeded",
				"operation", operation,
				"model", c.model,
				"input_tokens", resp.Usage.PromptTokens,
				"output_tokens", resp.Usage.CompletionTokens)
		}
		return nil
	})
	duration := time.Since(start)

	if err != nil {
		if c.metrics != nil {
			c.metrics.RecordAIRequest(operation, "error", duration.Seconds())
		}
		slog.WarnContext(ctx, "chat completion failed",
			"operation", operation,
			"model", c.model,
			"duration_ms", duration.Milliseconds(),
			"error", err)
		return "", c.wrapError(err)
	}

	if c.metrics != nil {
		c.metrics.RecordAIRequest(operation, "success", duration.Seconds())
	}
	return content, nil
}

// wrapError maps transport errors into the domain error taxonomy.
func (c *Client) wrapError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", apperrors.ErrUpstreamTimeout, err)
	}
	if errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %v", apperrors.ErrContextCanceled, err)
	}
	return apperrors.NewUpstreamError("ai", 0, err)
}

// truncateRunes shortens s to at most n runes, appending an ellipsis marker
// when truncation happened.
func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}

// Interface asserts.
var (
	_ Completer  = (*Client)(nil)
	_ Translator = (*Client)(nil)
)

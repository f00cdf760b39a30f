// Package genai provides the OpenAI-compatible AI backend.
// This file cleans up model output before it reaches LINE.
package genai

import (
	"regexp"
	"strings"
)

var (
	// Reasoning models may emit a <think>...</think> preamble.
	thinkBlockRe = regexp.MustCompile(`(?s)^.*?</think>\s*`)

	boldStarRe       = regexp.MustCompile(`\*\*(.*?)\*\*`)
	boldUnderscoreRe = regexp.MustCompile(`__(.*?)__`)
	// Applied after the double markers are gone, so single markers are
	// unambiguous.
	italicStarRe       = regexp.MustCompile(`\*([^*\n]+)\*`)
	italicUnderscoreRe = regexp.MustCompile(`_([^_\n]+)_`)
)

// StripThinkBlock removes a leading reasoning block ending in </think>.
func StripThinkBlock(s string) string {
	return thinkBlockRe.ReplaceAllString(s, "")
}

// StripMarkdown removes bold and italic markers. Replies are sent to LINE
// as plain text, where markdown markers show up verbatim.
func StripMarkdown(s string) string {
	s = boldStarRe.ReplaceAllString(s, "$1")
	s = boldUnderscoreRe.ReplaceAllString(s, "$1")
	s = italicStarRe.ReplaceAllString(s, "$1")
	s = italicUnderscoreRe.ReplaceAllString(s, "$1")
	return s
}

// SanitizeReply applies all output cleanups to a model reply.
func SanitizeReply(s string) string {
	s = strings.TrimSpace(s)
	s = StripThinkBlock(s)
	s = StripMarkdown(s)
	return strings.TrimSpace(s)
}

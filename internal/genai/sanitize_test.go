package genai

import "testing"

func TestStripThinkBlock(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"no block", "hello there", "hello there"},
		{"leading block", "<think>reasoning...</think>\nhello", "hello"},
		{"multiline block", "<think>line one\nline two</think>  answer", "answer"},
		{"unclosed tag untouched", "<think>never closed", "<think>never closed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripThinkBlock(tt.input); got != tt.want {
				t.Errorf("StripThinkBlock(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestStripMarkdown(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"bold stars", "this is **important** info", "this is important info"},
		{"bold underscores", "__hello__ world", "hello world"},
		{"italic stars", "an *emphasized* word", "an emphasized word"},
		{"italic underscores", "an _emphasized_ word", "an emphasized word"},
		{"mixed", "**bold** and *italic*", "bold and italic"},
		{"plain text untouched", "no markers here", "no markers here"},
		{"math stays", "3 * 4 = 12", "3 * 4 = 12"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripMarkdown(tt.input); got != tt.want {
				t.Errorf("StripMarkdown(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSanitizeReply(t *testing.T) {
	input := "  <think>let me think</think>**Halo!** Ini jawabannya.  "
	want := "Halo! Ini jawabannya."
	if got := SanitizeReply(input); got != want {
		t.Errorf("SanitizeReply = %q, want %q", got, want)
	}
}

func TestTruncateRunes(t *testing.T) {
	if got := truncateRunes("short", 10); got != "short" {
		t.Errorf("Expected no truncation, got %q", got)
	}
	if got := truncateRunes("abcdefghij", 5); got != "abcde..." {
		t.Errorf("Expected truncation, got %q", got)
	}
	// Rune-safe for CJK
	if got := truncateRunes("你好世界嗎", 2); got != "你好..." {
		t.Errorf("Expected rune-safe truncation, got %q", got)
	}
}

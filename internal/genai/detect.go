// Package genai provides the OpenAI-compatible AI backend.
// This file contains first-contact language detection.
package genai

import (
	"context"
	"strings"
	"unicode"
)

// LanguageDetector guesses the language of a message.
// A Unicode-script and stop-word heuristic runs first; when it is
// inconclusive and an LLM client is available, the model gets one chance.
// All failure paths return empty string, which callers map to the
// configured default language.
type LanguageDetector struct {
	llm *Client // optional LLM assist
}

// NewLanguageDetector creates a detector. llm may be nil, in which case
// only the heuristic runs.
func NewLanguageDetector(llm *Client) *LanguageDetector {
	return &LanguageDetector{llm: llm}
}

// Interface assert.
var _ Detector = (*LanguageDetector)(nil)

// Indonesian and English stop words for Latin-script disambiguation.
// Lowercase, matched on whole words.
var (
	indonesianStopWords = map[string]struct{}{
		"yang": {}, "dan": {}, "saya": {}, "tidak": {}, "ini": {}, "itu": {},
		"di": {}, "ke": {}, "dari": {}, "apa": {}, "bagaimana": {},
		"tolong": {}, "bisa": {}, "untuk": {}, "dengan": {}, "mau": {},
		"ada": {}, "kerja": {}, "gaji": {}, "sudah": {}, "belum": {},
		"bantuan": {}, "terima": {}, "kasih": {}, "selamat": {}, "pagi": {},
		"berapa": {}, "dimana": {}, "kapan": {}, "kenapa": {}, "atau": {},
	}
	englishStopWords = map[string]struct{}{
		"the": {}, "is": {}, "are": {}, "what": {}, "how": {}, "can": {},
		"please": {}, "i": {}, "you": {}, "my": {}, "to": {}, "of": {},
		"and": {}, "a": {}, "in": {}, "for": {}, "do": {}, "where": {},
		"when": {}, "why": {}, "help": {}, "need": {}, "want": {},
		"hello": {}, "thanks": {}, "thank": {}, "work": {}, "salary": {},
	}
)

// Vietnamese-specific letters not found in Indonesian or English.
const vietnameseMarkers = "ăâđêôơưạảấầẩẫậắằẳẵặẹẻẽếềểễệỉịọỏốồổỗộớờởỡợụủứừửữựỳỵỷỹ"

// Detect returns the detected language code, or empty string when
// inconclusive.
func (d *LanguageDetector) Detect(ctx context.Context, text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}

	if code := detectByScript(text); code != "" {
		return code
	}

	if code := detectByStopWords(text); code != "" {
		return code
	}

	if d.llm != nil {
		return d.llm.DetectLanguage(ctx, text)
	}

	return ""
}

// detectByScript classifies by Unicode script: Han runes mean Chinese,
// Vietnamese-specific diacritics mean Vietnamese.
func detectByScript(text string) string {
	for _, r := range text {
		if unicode.Is(unicode.Han, r) {
			return "zh"
		}
	}

	lower := strings.ToLower(text)
	for _, r := range lower {
		if strings.ContainsRune(vietnameseMarkers, r) {
			return "vi"
		}
	}

	return ""
}

// detectByStopWords scores Latin-script text against Indonesian and
// English stop-word tables. Requires a strict winner with at least one hit.
func detectByStopWords(text string) string {
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r)
	})

	var idScore, enScore int
	for _, w := range words {
		if _, ok := indonesianStopWords[w]; ok {
			idScore++
		}
		if _, ok := englishStopWords[w]; ok {
			enScore++
		}
	}

	switch {
	case idScore > enScore:
		return "id"
	case enScore > idScore:
		return "en"
	default:
		return ""
	}
}

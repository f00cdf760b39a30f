// Package catalog holds the static language data consumed by the rest of
// the bot: supported language codes, localized canned messages, intent
// keyword sets, rich menu labels and Taiwan emergency contacts.
//
// Everything in this package is immutable after init. Components treat it
// as read-only reference data; there is no runtime mutation path.
package catalog

import (
	"sort"
	"strings"
)

// Code is a supported language code.
type Code string

// Supported language codes.
const (
	Indonesian Code = "id"
	Chinese    Code = "zh"
	English    Code = "en"
	Vietnamese Code = "vi"
)

// codeOrder is the canonical presentation order used in menus, quick
// replies and error messages listing valid codes.
var codeOrder = []Code{Indonesian, Chinese, English, Vietnamese}

// displayNames maps each code to its native display name.
var displayNames = map[Code]string{
	Indonesian: "Bahasa Indonesia",
	Chinese:    "繁體中文",
	English:    "English",
	Vietnamese: "Tiếng Việt",
}

// chatBarText maps each code to the rich menu chat bar label.
// LINE caps chat bar text at 14 characters.
var chatBarText = map[Code]string{
	Indonesian: "Bantuan",
	Chinese:    "幫助",
	English:    "Help",
	Vietnamese: "Trợ giúp",
}

// Codes returns the supported language codes in canonical order.
// The returned slice is a copy and safe to modify.
func Codes() []Code {
	out := make([]Code, len(codeOrder))
	copy(out, codeOrder)
	return out
}

// IsSupported reports whether the given string is a supported language code.
func IsSupported(code string) bool {
	_, ok := displayNames[Code(code)]
	return ok
}

// Normalize lowercases and trims a candidate code and reports whether it
// names a supported language.
func Normalize(code string) (Code, bool) {
	c := Code(strings.ToLower(strings.TrimSpace(code)))
	if IsSupported(string(c)) {
		return c, true
	}
	return "", false
}

// DisplayName returns the native display name for a supported code.
// Unknown codes return the code itself.
func (c Code) DisplayName() string {
	if name, ok := displayNames[c]; ok {
		return name
	}
	return string(c)
}

// ChatBarText returns the rich menu chat bar label for a supported code.
// Unknown codes fall back to the English label.
func (c Code) ChatBarText() string {
	if text, ok := chatBarText[c]; ok {
		return text
	}
	return chatBarText[English]
}

// SupportedList returns a human-readable comma-separated list of codes,
// e.g. "id, zh, en, vi". Used in invalid-code error replies.
func SupportedList() string {
	parts := make([]string, len(codeOrder))
	for i, c := range codeOrder {
		parts[i] = string(c)
	}
	return strings.Join(parts, ", ")
}

// EmergencyContacts are Taiwan emergency numbers relevant to migrant
// workers. Keys are stable identifiers; values are dialable numbers.
var EmergencyContacts = map[string]string{
	"police":                   "110",
	"fire_ambulance":           "119",
	"foreign_worker_hotline":   "1955",
	"labor_hotline":            "1955",
	"anti_trafficking_hotline": "113",
	"indonesia_representative": "+886-2-2356-5156",
	"anti_fraud_hotline":       "165",
}

// EmergencyInfo returns the formatted emergency contact block appended to
// emergency replies. Contacts are sorted by label for a stable rendering.
func EmergencyInfo() string {
	labels := make([]string, 0, len(EmergencyContacts))
	for label := range EmergencyContacts {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	var b strings.Builder
	b.WriteString("🚨 EMERGENCY CONTACTS:")
	for _, label := range labels {
		b.WriteString("\n- ")
		b.WriteString(titleCase(label))
		b.WriteString(": ")
		b.WriteString(EmergencyContacts[label])
	}
	return b.String()
}

// titleCase converts a snake_case label to spaced Title Case.
func titleCase(label string) string {
	words := strings.Split(label, "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// Package intent classifies inbound message text into a closed set of
// routing categories. Classification is a pure function of the text and
// the keyword tables in the catalog package: same input, same result.
package intent

import (
	"strings"
	"unicode"

	"github.com/imigo-bot/imigo-linebot-go/internal/catalog"
)

// Category is the coarse classification of an inbound message.
type Category int

// Categories in priority order. When a message matches several, the
// lowest-numbered match wins.
const (
	CategoryCommand Category = iota
	CategoryEmergency
	CategoryGreeting
	CategoryThanks
	CategoryGoodbye
	CategoryHelpRequest
	CategoryQuery
)

// String returns the category name for logs and metrics labels.
func (c Category) String() string {
	switch c {
	case CategoryCommand:
		return "command"
	case CategoryEmergency:
		return "emergency"
	case CategoryGreeting:
		return "greeting"
	case CategoryThanks:
		return "thanks"
	case CategoryGoodbye:
		return "goodbye"
	case CategoryHelpRequest:
		return "help_request"
	case CategoryQuery:
		return "query"
	default:
		return "unknown"
	}
}

// CommandName identifies a recognized slash command.
type CommandName string

// Recognized commands.
const (
	CmdLang      CommandName = "lang"
	CmdHelp      CommandName = "help"
	CmdEmergency CommandName = "emergency"
	CmdClear     CommandName = "clear"
	CmdTranslate CommandName = "translate"
)

// Result is the outcome of classifying one message.
type Result struct {
	Category Category

	// Command is set when Category is CategoryCommand.
	Command CommandName
	// Args holds the raw argument string after the command token, trimmed.
	Args string
	// InvalidArgument marks a recognized command with malformed arguments,
	// e.g. "/lang zz" with an unsupported code. The router replies with a
	// localized error instead of executing the command.
	InvalidArgument bool
}

// Classify maps raw message text to a routing category. Matching is
// case-insensitive on trimmed text; keyword matches are checked against
// every language's keyword set because the typed language may not match
// the user's stored preference.
func Classify(raw string) Result {
	text := strings.ToLower(strings.TrimSpace(raw))
	if text == "" {
		return Result{Category: CategoryQuery}
	}

	if strings.HasPrefix(text, "/") {
		if res, ok := classifyCommand(text); ok {
			return res
		}
		// Unknown command tokens fall through to keyword matching so a
		// message like "/weather" still gets a useful AI answer.
	}

	switch {
	case matchesAny(text, catalog.EmergencyKeywords()):
		return Result{Category: CategoryEmergency}
	case matchesAny(text, catalog.GreetingKeywords()):
		return Result{Category: CategoryGreeting}
	case matchesAny(text, catalog.ThanksKeywords()):
		return Result{Category: CategoryThanks}
	case matchesAny(text, catalog.GoodbyeKeywords()):
		return Result{Category: CategoryGoodbye}
	case matchesAny(text, catalog.HelpKeywords()):
		return Result{Category: CategoryHelpRequest}
	default:
		return Result{Category: CategoryQuery}
	}
}

// classifyCommand parses "/token args". Returns ok=false for unknown
// command tokens.
func classifyCommand(text string) (Result, bool) {
	body := strings.TrimPrefix(text, "/")
	token, args, _ := strings.Cut(body, " ")
	args = strings.TrimSpace(args)

	switch CommandName(token) {
	case CmdLang:
		res := Result{Category: CategoryCommand, Command: CmdLang, Args: args}
		if args != "" {
			if _, ok := catalog.Normalize(args); !ok {
				res.InvalidArgument = true
			}
		}
		return res, true
	case CmdHelp:
		return Result{Category: CategoryCommand, Command: CmdHelp, Args: args}, true
	case CmdEmergency:
		return Result{Category: CategoryCommand, Command: CmdEmergency, Args: args}, true
	case CmdClear:
		return Result{Category: CategoryCommand, Command: CmdClear, Args: args}, true
	case CmdTranslate:
		res := Result{Category: CategoryCommand, Command: CmdTranslate, Args: args}
		if !validTranslateArgs(args) {
			res.InvalidArgument = true
		}
		return res, true
	default:
		return Result{}, false
	}
}

// validTranslateArgs accepts "off" or "on <supported code>".
func validTranslateArgs(args string) bool {
	if args == "off" {
		return true
	}
	mode, code, found := strings.Cut(args, " ")
	if !found || mode != "on" {
		return false
	}
	_, ok := catalog.Normalize(code)
	return ok
}

// matchesAny reports whether text contains any of the keywords. Keywords
// made of ASCII letters only must match on word boundaries so short words
// like "hi" do not fire inside unrelated words; keywords with non-ASCII
// script (CJK, Vietnamese diacritics) match as plain substrings, since
// those scripts have no word delimiters.
func matchesAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if isASCIIWord(kw) {
			if containsWord(text, kw) {
				return true
			}
		} else if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

// isASCIIWord reports whether the keyword consists only of ASCII letters
// and spaces.
func isASCIIWord(kw string) bool {
	for _, r := range kw {
		if r != ' ' && (r > unicode.MaxASCII || !unicode.IsLetter(r)) {
			return false
		}
	}
	return true
}

// containsWord reports whether word occurs in text delimited by
// non-alphanumeric runes (or the text edges).
func containsWord(text, word string) bool {
	for start := 0; start <= len(text)-len(word); {
		idx := strings.Index(text[start:], word)
		if idx < 0 {
			return false
		}
		idx += start

		before := true
		if idx > 0 {
			r := rune(text[idx-1])
			before = !isWordRune(r)
		}
		after := true
		if end := idx + len(word); end < len(text) {
			r := rune(text[end])
			after = !isWordRune(r)
		}
		if before && after {
			return true
		}
		start = idx + 1
	}
	return false
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

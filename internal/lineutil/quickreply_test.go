package lineutil

import (
	"strings"
	"testing"

	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"

	"github.com/imigo-bot/imigo-linebot-go/internal/catalog"
)

func TestLanguageQuickReplyItems(t *testing.T) {
	items := LanguageQuickReplyItems()
	if len(items) != len(catalog.Codes()) {
		t.Fatalf("got %d items, want %d", len(items), len(catalog.Codes()))
	}

	for i, lang := range catalog.Codes() {
		action, ok := items[i].Action.(*messaging_api.PostbackAction)
		if !ok {
			t.Fatalf("item %d is not a postback action", i)
		}
		if action.Data != "lang_"+string(lang) {
			t.Errorf("item %d data = %q, want lang_%s", i, action.Data, lang)
		}
		if action.DisplayText != lang.DisplayName() {
			t.Errorf("item %d display text = %q, want %q", i, action.DisplayText, lang.DisplayName())
		}
		if !strings.Contains(action.Label, lang.DisplayName()) && len([]rune(action.Label)) > MaxQuickReplyLabel {
			t.Errorf("item %d label %q too long", i, action.Label)
		}
	}
}

func TestNewEmergencyCard(t *testing.T) {
	contacts := []EmergencyContact{
		{Emoji: "🚓", Label: "Police", Number: "110"},
		{Emoji: "🚒", Label: "Fire / Ambulance", Number: "119"},
		{Emoji: "📞", Label: "Migrant Worker Hotline", Number: "1955"},
	}

	msg := NewEmergencyCard("Emergency", "Taiwan hotlines", contacts)
	if msg.AltText != "Emergency" {
		t.Fatalf("alt text = %q", msg.AltText)
	}

	bubble, ok := msg.Contents.(*messaging_api.FlexBubble)
	if !ok {
		t.Fatal("contents is not a flex bubble")
	}
	if bubble.Header == nil || bubble.Body == nil || bubble.Footer == nil {
		t.Fatal("bubble missing a section")
	}
	// Three contacts yield two footer rows of dial buttons.
	if len(bubble.Footer.Contents) != 2 {
		t.Fatalf("footer rows = %d, want 2", len(bubble.Footer.Contents))
	}
}

package lineutil

import (
	"strings"
	"testing"

	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"
)

func TestNewTextMessageTruncates(t *testing.T) {
	long := strings.Repeat("あ", 6000)
	msg := NewTextMessage(long)

	if len([]rune(msg.Text)) > MaxTextMessageLength {
		t.Fatalf("text length %d exceeds limit", len([]rune(msg.Text)))
	}
	if !strings.HasSuffix(msg.Text, "...") {
		t.Fatal("truncated text missing ellipsis")
	}
}

func TestNewTextMessageKeepsShortText(t *testing.T) {
	msg := NewTextMessage("halo")
	if msg.Text != "halo" {
		t.Fatalf("text = %q", msg.Text)
	}
}

func TestTruncateRunes(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"hello", 10, "hello"},
		{"hello world", 8, "hello..."},
		{"你好世界你好世界", 5, "你好..."},
		{"abc", 2, "ab"},
		{"", 5, ""},
	}
	for _, tt := range tests {
		if got := TruncateRunes(tt.in, tt.max); got != tt.want {
			t.Errorf("TruncateRunes(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
		}
	}
}

func TestNewQuickReplyCapsItems(t *testing.T) {
	items := make([]QuickReplyItem, 20)
	for i := range items {
		items[i] = QuickReplyItem{Action: NewMessageAction("label", "text")}
	}

	qr := NewQuickReply(items)
	if len(qr.Items) != MaxQuickReplyItemCount {
		t.Fatalf("got %d items, want %d", len(qr.Items), MaxQuickReplyItemCount)
	}
}

func TestBuildTelURI(t *testing.T) {
	tests := []struct {
		number string
		want   string
	}{
		{"110", "tel:110"},
		{"119", "tel:119"},
		{"1955", "tel:1955"},
		{"0286741111", "tel:+886286741111"},
		{"02-8674-1111", "tel:+886286741111"},
		{"+886-2-2356-5156", "tel:+886223565156"},
	}
	for _, tt := range tests {
		if got := BuildTelURI(tt.number); got != tt.want {
			t.Errorf("BuildTelURI(%q) = %q, want %q", tt.number, got, tt.want)
		}
	}
}

func TestAddQuickReplyToMessages(t *testing.T) {
	messages := []messaging_api.MessageInterface{
		NewTextMessage("first"),
		NewTextMessage("last"),
	}
	AddQuickReplyToMessages(messages, QuickReplyItem{Action: NewMessageAction("a", "b")})

	first := messages[0].(*messaging_api.TextMessage)
	last := messages[1].(*messaging_api.TextMessage)
	if first.QuickReply != nil {
		t.Fatal("quick reply attached to non-final message")
	}
	if last.QuickReply == nil || len(last.QuickReply.Items) != 1 {
		t.Fatal("quick reply not attached to final message")
	}

	AddQuickReplyToMessages(nil, QuickReplyItem{Action: NewMessageAction("a", "b")})
}

func TestSetSender(t *testing.T) {
	sender := NewSender("IMIGO", "https://example.com/icon.png")

	msg := SetSender(NewTextMessage("hi"), sender).(*messaging_api.TextMessage)
	if msg.Sender == nil || msg.Sender.Name != "IMIGO" {
		t.Fatal("sender not applied")
	}

	if got := SetSender(NewTextMessage("hi"), nil).(*messaging_api.TextMessage); got.Sender != nil {
		t.Fatal("nil sender should be a no-op")
	}
}

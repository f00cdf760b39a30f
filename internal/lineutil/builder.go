// Package lineutil provides helpers for building LINE messages and
// actions within the platform's payload limits.
package lineutil

import (
	"strings"

	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"
)

// Action is an alias for the LINE SDK action interface for convenience.
type Action = messaging_api.ActionInterface

// QuickReplyItem represents an item in a quick reply.
type QuickReplyItem struct {
	ImageURL string
	Action   Action
}

// NewTextMessage creates a text message, truncating content that would
// exceed the platform limit.
func NewTextMessage(text string) *messaging_api.TextMessage {
	if len(text) > MaxTextMessageLength {
		text = TruncateRunes(text, MaxTextMessageLength)
	}
	return &messaging_api.TextMessage{
		Text: text,
	}
}

// NewTextMessageWithSender creates a text message attributed to the
// given sender.
func NewTextMessageWithSender(text string, sender *messaging_api.Sender) *messaging_api.TextMessage {
	msg := NewTextMessage(text)
	msg.Sender = sender
	return msg
}

// NewQuickReply builds a quick reply component from items, dropping
// items beyond the platform cap.
func NewQuickReply(items []QuickReplyItem) *messaging_api.QuickReply {
	if len(items) > MaxQuickReplyItemCount {
		items = items[:MaxQuickReplyItemCount]
	}

	quickReplyItems := make([]messaging_api.QuickReplyItem, len(items))
	for i, item := range items {
		qrItem := messaging_api.QuickReplyItem{
			Action: item.Action,
		}
		if item.ImageURL != "" {
			qrItem.ImageUrl = item.ImageURL
		}
		quickReplyItems[i] = qrItem
	}

	return &messaging_api.QuickReply{
		Items: quickReplyItems,
	}
}

// NewMessageAction creates an action that sends a message when tapped.
func NewMessageAction(label, text string) Action {
	return &messaging_api.MessageAction{
		Label: TruncateRunes(label, MaxQuickReplyLabel),
		Text:  text,
	}
}

// NewPostbackActionWithDisplayText creates a postback action that also
// shows displayText in the chat when tapped.
func NewPostbackActionWithDisplayText(label, displayText, data string) Action {
	return &messaging_api.PostbackAction{
		Label:       TruncateRunes(label, MaxQuickReplyLabel),
		DisplayText: displayText,
		Data:        data,
	}
}

// NewURIAction creates an action that opens a URI when tapped. Used
// with tel: URIs for the emergency contact buttons.
func NewURIAction(label, uri string) Action {
	return &messaging_api.UriAction{
		Label: label,
		Uri:   uri,
	}
}

// NewFlexMessage creates a flex message with the given alt text.
func NewFlexMessage(altText string, contents messaging_api.FlexContainerInterface) *messaging_api.FlexMessage {
	if len(altText) > MaxAltTextLength {
		altText = TruncateRunes(altText, MaxAltTextLength)
	}
	return &messaging_api.FlexMessage{
		AltText:  altText,
		Contents: contents,
	}
}

// AddQuickReplyToMessages attaches quick reply items to the last
// message in a slice. A no-op when the slice is empty or the last
// message type has no quick reply field.
func AddQuickReplyToMessages(messages []messaging_api.MessageInterface, items ...QuickReplyItem) {
	if len(messages) == 0 || len(items) == 0 {
		return
	}
	qr := NewQuickReply(items)
	switch m := messages[len(messages)-1].(type) {
	case *messaging_api.TextMessage:
		m.QuickReply = qr
	case *messaging_api.FlexMessage:
		m.QuickReply = qr
	case *messaging_api.TemplateMessage:
		m.QuickReply = qr
	}
}

// SetSender sets the sender on a message and returns it for chaining.
func SetSender(msg messaging_api.MessageInterface, sender *messaging_api.Sender) messaging_api.MessageInterface {
	if sender == nil {
		return msg
	}
	switch m := msg.(type) {
	case *messaging_api.TextMessage:
		m.Sender = sender
	case *messaging_api.FlexMessage:
		m.Sender = sender
	case *messaging_api.TemplateMessage:
		m.Sender = sender
	case *messaging_api.ImageMessage:
		m.Sender = sender
	}
	return msg
}

// TruncateRunes truncates text by rune count to stay UTF-8 safe,
// appending "..." when content was dropped.
func TruncateRunes(text string, maxRunes int) string {
	runes := []rune(text)
	if len(runes) <= maxRunes {
		return text
	}
	if maxRunes <= 3 {
		return string(runes[:maxRunes])
	}
	return string(runes[:maxRunes-3]) + "..."
}

// BuildTelURI creates a tel: URI in E.164 form for Taiwan numbers.
// Short codes (110, 119, 1955) are kept as-is since they are dialed
// without a country prefix.
func BuildTelURI(number string) string {
	phone := strings.ReplaceAll(number, "-", "")
	phone = strings.ReplaceAll(phone, " ", "")

	if len(phone) <= 4 || strings.HasPrefix(phone, "+") {
		return "tel:" + phone
	}
	if strings.HasPrefix(phone, "0") {
		phone = "+886" + phone[1:]
	} else {
		phone = "+886" + phone
	}
	return "tel:" + phone
}

package lineutil

import (
	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"
)

// NewSender creates the bot sender shown on outgoing messages. The icon
// URL is optional; without it LINE falls back to the channel avatar.
func NewSender(name, iconURL string) *messaging_api.Sender {
	sender := &messaging_api.Sender{
		Name: name,
	}
	if iconURL != "" {
		sender.IconUrl = iconURL
	}
	return sender
}

package lineutil

import (
	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"
)

// EmergencyContact pairs a display label with a dialable number.
type EmergencyContact struct {
	Emoji  string
	Label  string
	Number string
}

// NewEmergencyCard builds the emergency contacts flex card: a red hero
// header, one row per contact, and tap-to-dial buttons in the footer.
func NewEmergencyCard(title, subtitle string, contacts []EmergencyContact) *messaging_api.FlexMessage {
	var body []messaging_api.FlexComponentInterface
	for i, c := range contacts {
		if i > 0 {
			body = append(body, NewFlexSeparator().WithMargin("sm").FlexSeparator)
		}
		body = append(body, NewInfoRow(c.Emoji, c.Label, c.Number).WithMargin("sm").FlexBox)
	}

	var footerRows []messaging_api.FlexComponentInterface
	for i := 0; i < len(contacts); i += 2 {
		row := []*FlexButton{dialButton(contacts[i])}
		if i+1 < len(contacts) {
			row = append(row, dialButton(contacts[i+1]))
		}
		footerRows = append(footerRows, NewButtonRow(row...).FlexBox)
	}

	bubble := NewFlexBubble(
		NewHeroBox(title, subtitle, ColorDanger),
		NewFlexBox("vertical", body...).WithSpacing("sm"),
		NewFlexBox("vertical", footerRows...).WithSpacing("sm"),
	)
	return NewFlexMessage(title, bubble.FlexBubble)
}

func dialButton(c EmergencyContact) *FlexButton {
	label := TruncateRunes(c.Emoji+" "+c.Number, MaxQuickReplyLabel)
	return NewFlexButton(NewURIAction(label, BuildTelURI(c.Number))).
		WithStyle("primary").
		WithColor(ColorDanger).
		WithHeight("sm")
}

package lineutil

import (
	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"
)

// FlexBubble wraps messaging_api.FlexBubble.
type FlexBubble struct {
	*messaging_api.FlexBubble
}

// NewFlexBubble creates a flex bubble from its sections. Any section
// may be nil.
func NewFlexBubble(header, body, footer *FlexBox) *FlexBubble {
	bubble := &messaging_api.FlexBubble{}
	if header != nil {
		bubble.Header = header.FlexBox
	}
	if body != nil {
		bubble.Body = body.FlexBox
	}
	if footer != nil {
		bubble.Footer = footer.FlexBox
	}
	return &FlexBubble{bubble}
}

// FlexBox wraps messaging_api.FlexBox with a fluent API.
type FlexBox struct {
	*messaging_api.FlexBox
}

// NewFlexBox creates a box with the given layout and contents.
func NewFlexBox(layout string, contents ...messaging_api.FlexComponentInterface) *FlexBox {
	return &FlexBox{&messaging_api.FlexBox{
		Layout:   messaging_api.FlexBoxLAYOUT(layout),
		Contents: contents,
	}}
}

// WithSpacing sets the spacing between components.
func (b *FlexBox) WithSpacing(spacing string) *FlexBox {
	b.Spacing = spacing
	return b
}

// WithMargin sets the margin of the box.
func (b *FlexBox) WithMargin(margin string) *FlexBox {
	b.Margin = margin
	return b
}

// WithPaddingAll sets the padding for all sides of the box.
func (b *FlexBox) WithPaddingAll(padding string) *FlexBox {
	b.PaddingAll = padding
	return b
}

// WithBackgroundColor sets the background color of the box.
func (b *FlexBox) WithBackgroundColor(color string) *FlexBox {
	b.BackgroundColor = color
	return b
}

// FlexText wraps messaging_api.FlexText with a fluent API.
type FlexText struct {
	*messaging_api.FlexText
}

// NewFlexText creates a text component.
func NewFlexText(text string) *FlexText {
	return &FlexText{&messaging_api.FlexText{
		Text: text,
	}}
}

// WithWeight sets the font weight (regular/bold).
func (t *FlexText) WithWeight(weight string) *FlexText {
	t.Weight = messaging_api.FlexTextWEIGHT(weight)
	return t
}

// WithSize sets the font size.
func (t *FlexText) WithSize(size string) *FlexText {
	t.Size = size
	return t
}

// WithColor sets the text color.
func (t *FlexText) WithColor(color string) *FlexText {
	t.Color = color
	return t
}

// WithWrap enables text wrapping.
func (t *FlexText) WithWrap(wrap bool) *FlexText {
	t.Wrap = wrap
	return t
}

// WithMargin sets the margin of the text component.
func (t *FlexText) WithMargin(margin string) *FlexText {
	t.Margin = margin
	return t
}

// WithFlex sets the flex factor of the text component.
func (t *FlexText) WithFlex(flex int32) *FlexText {
	if flex < 0 {
		flex = 0
	}
	t.Flex = flex
	return t
}

// FlexButton wraps messaging_api.FlexButton with a fluent API.
type FlexButton struct {
	*messaging_api.FlexButton
}

// NewFlexButton creates a button with the given action.
func NewFlexButton(action Action) *FlexButton {
	return &FlexButton{&messaging_api.FlexButton{
		Action: action,
	}}
}

// WithStyle sets the button style (link/primary/secondary).
func (b *FlexButton) WithStyle(style string) *FlexButton {
	b.Style = messaging_api.FlexButtonSTYLE(style)
	return b
}

// WithColor sets the button color.
func (b *FlexButton) WithColor(color string) *FlexButton {
	b.Color = color
	return b
}

// WithHeight sets the button height (sm/md).
func (b *FlexButton) WithHeight(height string) *FlexButton {
	b.Height = messaging_api.FlexButtonHEIGHT(height)
	return b
}

// FlexSeparator wraps messaging_api.FlexSeparator.
type FlexSeparator struct {
	*messaging_api.FlexSeparator
}

// NewFlexSeparator creates a separator.
func NewFlexSeparator() *FlexSeparator {
	return &FlexSeparator{&messaging_api.FlexSeparator{}}
}

// WithMargin sets the margin of the separator.
func (s *FlexSeparator) WithMargin(margin string) *FlexSeparator {
	s.Margin = margin
	return s
}

// NewHeroBox creates the colored header box used at the top of cards.
func NewHeroBox(title, subtitle, backgroundColor string) *FlexBox {
	contents := []messaging_api.FlexComponentInterface{
		NewFlexText(title).WithWeight("bold").WithSize("xl").WithColor(ColorHeroText).WithWrap(true).FlexText,
	}
	// LINE rejects empty text components.
	if subtitle != "" {
		contents = append(contents,
			NewFlexText(subtitle).WithSize("xs").WithColor(ColorHeroText).WithMargin("md").WithWrap(true).FlexText)
	}
	box := NewFlexBox("vertical", contents...)
	box.BackgroundColor = backgroundColor
	box.PaddingAll = SpacingXXL
	box.PaddingBottom = SpacingXL
	return box
}

// NewInfoRow creates a label/value row for card bodies: icon and label
// on the first line, the value below with wrapping.
func NewInfoRow(emoji, label, value string) *FlexBox {
	return NewFlexBox("vertical",
		NewFlexBox("horizontal",
			NewFlexText(emoji).WithSize("sm").WithFlex(0).FlexText,
			NewFlexText(label).WithColor(ColorLabel).WithSize("xs").WithFlex(0).WithMargin("sm").FlexText,
		).WithSpacing("sm").FlexBox,
		NewFlexText(value).WithColor(ColorText).WithSize("md").WithWeight("bold").WithMargin("sm").WithWrap(true).FlexText,
	)
}

// NewButtonRow lays out buttons horizontally with equal widths.
func NewButtonRow(buttons ...*FlexButton) *FlexBox {
	contents := make([]messaging_api.FlexComponentInterface, 0, len(buttons))
	for _, btn := range buttons {
		if btn == nil {
			continue
		}
		btnBox := NewFlexBox("vertical", btn.FlexButton)
		btnBox.Flex = 1
		contents = append(contents, btnBox.FlexBox)
	}
	return NewFlexBox("horizontal", contents...).WithSpacing("sm")
}

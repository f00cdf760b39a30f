package richmenu

import (
	"github.com/imigo-bot/imigo-linebot-go/internal/catalog"
)

// Menu canvas dimensions required by the LINE rich menu API for the
// full-size layout.
const (
	menuWidth  = 2500
	menuHeight = 1686
)

// Postback data values emitted by the menu buttons. The router switches
// on these when handling postback events.
const (
	PostbackCategoryHealthcare = "category_healthcare"
	PostbackCategoryLabor      = "category_labor"
	PostbackCategoryLanguage   = "category_language"
	PostbackCategoryEmergency  = "category_emergency"
	PostbackCategoryGovernment = "category_government"
	PostbackCategoryDaily      = "category_daily"
	PostbackCategoryTranslate  = "category_translate"
	PostbackClearChat          = "clear_chat"

	// PostbackLanguagePrefix prefixes language selection postbacks,
	// e.g. "lang_vi".
	PostbackLanguagePrefix = "lang_"
)

// menuNamePrefix prefixes every menu name this bot owns on the LINE
// platform. Bootstrap matches existing menus by name, so the prefix also
// acts as the ownership marker.
const menuNamePrefix = "imigo-menu-"

// Button is one tappable area on the menu image.
type Button struct {
	X      int
	Y      int
	Width  int
	Height int
	Label  string
	Data   string
}

// Definition describes a rich menu before it exists on the LINE
// platform: its name, chat bar text and tappable areas.
type Definition struct {
	Name        string
	ChatBarText string
	Buttons     []Button
}

// MenuName returns the platform name for the menu of the given language.
func MenuName(lang catalog.Code) string {
	return menuNamePrefix + string(lang)
}

// DefinitionFor builds the menu definition for a language. Every
// language shares the same two-row grid of eight buttons below the
// header band; only the name and chat bar text differ.
func DefinitionFor(lang catalog.Code) Definition {
	const (
		buttonWidth = 625
		row2Y       = 843
		row2Height  = 421
		row3Y       = 1264
		row3Height  = 422
	)

	return Definition{
		Name:        MenuName(lang),
		ChatBarText: lang.ChatBarText(),
		Buttons: []Button{
			{X: 0, Y: row2Y, Width: buttonWidth, Height: row2Height, Label: "Healthcare", Data: PostbackCategoryHealthcare},
			{X: 625, Y: row2Y, Width: buttonWidth, Height: row2Height, Label: "Labor Rights", Data: PostbackCategoryLabor},
			{X: 1250, Y: row2Y, Width: buttonWidth, Height: row2Height, Label: "Language", Data: PostbackCategoryLanguage},
			{X: 1875, Y: row2Y, Width: buttonWidth, Height: row2Height, Label: "Emergency", Data: PostbackCategoryEmergency},
			{X: 0, Y: row3Y, Width: buttonWidth, Height: row3Height, Label: "Government", Data: PostbackCategoryGovernment},
			{X: 625, Y: row3Y, Width: buttonWidth, Height: row3Height, Label: "Daily Life", Data: PostbackCategoryDaily},
			{X: 1250, Y: row3Y, Width: buttonWidth, Height: row3Height, Label: "Translate", Data: PostbackCategoryTranslate},
			{X: 1875, Y: row3Y, Width: buttonWidth, Height: row3Height, Label: "Clear Chat", Data: PostbackClearChat},
		},
	}
}

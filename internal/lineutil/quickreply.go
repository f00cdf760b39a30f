package lineutil

import (
	"github.com/imigo-bot/imigo-linebot-go/internal/catalog"
	"github.com/imigo-bot/imigo-linebot-go/internal/richmenu"
)

// languageFlags decorate the language quick reply labels.
var languageFlags = map[catalog.Code]string{
	catalog.Indonesian: "🇮🇩",
	catalog.Chinese:    "🇹🇼",
	catalog.English:    "🇬🇧",
	catalog.Vietnamese: "🇻🇳",
}

// LanguageQuickReplyItems returns one quick reply item per supported
// language. Tapping one sends a lang_<code> postback, echoed in the
// chat as the native language name.
func LanguageQuickReplyItems() []QuickReplyItem {
	items := make([]QuickReplyItem, 0, len(catalog.Codes()))
	for _, lang := range catalog.Codes() {
		name := lang.DisplayName()
		label := name
		if flag, ok := languageFlags[lang]; ok {
			label = flag + " " + name
		}
		items = append(items, QuickReplyItem{
			Action: NewPostbackActionWithDisplayText(label, name,
				richmenu.PostbackLanguagePrefix+string(lang)),
		})
	}
	return items
}

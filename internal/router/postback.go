package router

import (
	"context"
	"log/slog"
	"strings"

	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"

	"github.com/imigo-bot/imigo-linebot-go/internal/catalog"
	"github.com/imigo-bot/imigo-linebot-go/internal/ctxutil"
	"github.com/imigo-bot/imigo-linebot-go/internal/lineutil"
	"github.com/imigo-bot/imigo-linebot-go/internal/richmenu"
)

// categoryPrompts turn rich menu category taps into AI queries. The
// system prompt makes the model answer in the user's language, so the
// prompts themselves stay in English.
var categoryPrompts = map[string]string{
	richmenu.PostbackCategoryHealthcare: "What should I know about healthcare and National Health Insurance as a migrant worker in Taiwan?",
	richmenu.PostbackCategoryLabor:      "What are my labor rights as a migrant worker in Taiwan, and what should I do if my employer violates them?",
	richmenu.PostbackCategoryGovernment: "Which government services and offices in Taiwan are important for migrant workers, and how do I use them?",
	richmenu.PostbackCategoryDaily:      "Give me practical tips for daily life in Taiwan as a migrant worker: transport, banking, shopping, and communication.",
}

// HandlePostback processes a rich menu or quick reply postback and
// returns the reply messages. Unknown postback data yields no reply.
func (r *Router) HandlePostback(ctx context.Context, userID, data string) []messaging_api.MessageInterface {
	unlock := r.users.Lock(userID)

	user, _, err := r.users.Resolve(ctx, userID, "")
	if err != nil {
		unlock()
		slog.ErrorContext(ctx, "failed to resolve user",
			slog.String("user_id", userID),
			slog.Any("error", err))
		return r.fallbackReply(r.users.DefaultLanguage())
	}
	lang := catalog.Code(user.Language)
	ctx = ctxutil.WithLanguage(ctx, user.Language)

	var msgs []messaging_api.MessageInterface
	switch {
	case strings.HasPrefix(data, richmenu.PostbackLanguagePrefix):
		code := strings.TrimPrefix(data, richmenu.PostbackLanguagePrefix)
		msgs = r.changeLanguage(ctx, user, code, "postback")
		unlock()

	case data == richmenu.PostbackClearChat:
		msgs = r.clearHistory(ctx, user)
		unlock()

	case data == richmenu.PostbackCategoryLanguage:
		msgs = r.cannedReply(lang, catalog.MsgLanguageSelect)
		lineutil.AddQuickReplyToMessages(msgs, lineutil.LanguageQuickReplyItems()...)
		unlock()

	case data == richmenu.PostbackCategoryEmergency:
		msgs = r.emergencyReply(lang)
		unlock()

	case data == richmenu.PostbackCategoryTranslate:
		msgs = r.cannedReply(lang, catalog.MsgHelp)
		unlock()

	default:
		prompt, ok := categoryPrompts[data]
		if !ok {
			unlock()
			slog.WarnContext(ctx, "unknown postback data",
				slog.String("user_id", userID),
				slog.String("data", data))
			return nil
		}
		r.recordIntent("category")
		// handleQuery releases the lock before the AI call.
		msgs = r.handleQuery(ctx, user, prompt, unlock)
	}

	r.syncMenu(ctx, user)
	return msgs
}

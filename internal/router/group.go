package router

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"

	"github.com/imigo-bot/imigo-linebot-go/internal/catalog"
	"github.com/imigo-bot/imigo-linebot-go/internal/intent"
	"github.com/imigo-bot/imigo-linebot-go/internal/lineutil"
)

// translatePrefix marks translated group messages so members can tell
// them apart from direct bot replies.
const translatePrefix = "📝 "

// translateUsage is the reply to a malformed /translate command.
const translateUsage = "Usage: /translate on <id|zh|en|vi> or /translate off"

// HandleGroup processes a message in a group chat. Group chats only
// support the translation feature: /translate commands toggle it, and
// while enabled every other message is translated to the target
// language. Returns nil when the bot should stay silent.
func (r *Router) HandleGroup(ctx context.Context, groupID, userID, text string) []messaging_api.MessageInterface {
	res := intent.Classify(text)
	if res.Category == intent.CategoryCommand && res.Command == intent.CmdTranslate {
		return r.handleTranslateCommand(ctx, groupID, userID, res)
	}

	group, err := r.groups.GetGroup(ctx, groupID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to load group settings",
			slog.String("group_id", groupID),
			slog.Any("error", err))
		return nil
	}
	if group == nil || !group.TranslateEnabled {
		return nil
	}
	if strings.TrimSpace(text) == "" || r.translator == nil {
		return nil
	}

	tctx, cancel := context.WithTimeout(ctx, r.aiTimeout)
	translated, err := r.translator.Translate(tctx, text, group.TargetLanguage)
	cancel()
	if err != nil {
		slog.WarnContext(ctx, "group translation failed",
			slog.String("group_id", groupID),
			slog.Any("error", err))
		return nil
	}
	if strings.TrimSpace(translated) == "" {
		return nil
	}

	return []messaging_api.MessageInterface{
		lineutil.NewTextMessageWithSender(translatePrefix+translated, r.sender),
	}
}

// handleTranslateCommand toggles group translation. The confirmation is
// sent in the target language so members immediately see the effect.
// When an admin list is configured, only listed users may toggle.
func (r *Router) handleTranslateCommand(ctx context.Context, groupID, userID string, res intent.Result) []messaging_api.MessageInterface {
	if r.isAdmin != nil && !r.isAdmin(userID) {
		return r.cannedReply(r.groupLanguage(ctx, groupID), catalog.MsgAdminOnly)
	}

	if res.InvalidArgument {
		return []messaging_api.MessageInterface{
			lineutil.NewTextMessageWithSender(translateUsage, r.sender),
		}
	}

	if res.Args == "off" {
		lang := r.groupLanguage(ctx, groupID)
		if err := r.groups.SetGroupTranslation(ctx, groupID, false, string(lang), userID); err != nil {
			slog.ErrorContext(ctx, "failed to disable group translation",
				slog.String("group_id", groupID),
				slog.Any("error", err))
			return nil
		}
		return r.cannedReply(lang, catalog.MsgTranslationDisabled)
	}

	// Validated by the classifier: args are "on <supported code>".
	_, code, _ := strings.Cut(res.Args, " ")
	lang, _ := catalog.Normalize(code)
	if err := r.groups.SetGroupTranslation(ctx, groupID, true, string(lang), userID); err != nil {
		slog.ErrorContext(ctx, "failed to enable group translation",
			slog.String("group_id", groupID),
			slog.Any("error", err))
		return nil
	}
	text := fmt.Sprintf(catalog.Message(lang, catalog.MsgTranslationEnabled), lang.DisplayName())
	return []messaging_api.MessageInterface{
		lineutil.NewTextMessageWithSender(text, r.sender),
	}
}

// groupLanguage picks the language for replies addressed to the whole
// group: the configured target language when one exists, English
// otherwise.
func (r *Router) groupLanguage(ctx context.Context, groupID string) catalog.Code {
	if group, err := r.groups.GetGroup(ctx, groupID); err == nil && group != nil {
		if norm, ok := catalog.Normalize(group.TargetLanguage); ok {
			return norm
		}
	}
	return catalog.English
}

// Package router turns classified inbound events into outbound LINE
// messages. It owns the branch semantics: canned categories reply from
// the catalog without touching the AI backend or conversation history,
// queries run through the bounded-window AI path, and every handled
// event ends with a best-effort rich menu sync.
package router

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"

	"github.com/imigo-bot/imigo-linebot-go/internal/catalog"
	"github.com/imigo-bot/imigo-linebot-go/internal/ctxutil"
	apperrors "github.com/imigo-bot/imigo-linebot-go/internal/errors"
	"github.com/imigo-bot/imigo-linebot-go/internal/genai"
	"github.com/imigo-bot/imigo-linebot-go/internal/intent"
	"github.com/imigo-bot/imigo-linebot-go/internal/lineutil"
	"github.com/imigo-bot/imigo-linebot-go/internal/metrics"
	"github.com/imigo-bot/imigo-linebot-go/internal/ratelimit"
	"github.com/imigo-bot/imigo-linebot-go/internal/richmenu"
	"github.com/imigo-bot/imigo-linebot-go/internal/storage"
	"github.com/imigo-bot/imigo-linebot-go/internal/userstate"
)

// Defaults for the AI query path.
const (
	defaultHistoryWindow = 10
	defaultAITimeout     = 30 * time.Second
)

// Config configures a Router.
type Config struct {
	// HistoryWindow is the number of stored turns sent to the AI backend
	// as conversation context. Zero means the default.
	HistoryWindow int

	// AITimeout bounds one completion call. Zero means the default.
	AITimeout time.Duration

	// SenderName and SenderIconURL identify the bot on outgoing
	// messages.
	SenderName    string
	SenderIconURL string

	// IsAdmin restricts group translation toggling to the users it
	// accepts. Nil means anyone in the group may toggle.
	IsAdmin func(userID string) bool

	// AILimiter caps per-user AI completions. Nil disables the quota.
	AILimiter *ratelimit.KeyedLimiter
}

// Router routes classified events to their reply branches.
type Router struct {
	users      *userstate.Manager
	store      storage.ConversationRepository
	groups     storage.GroupRepository
	completer  genai.Completer
	translator genai.Translator
	syncer     *richmenu.Syncer
	metrics    *metrics.Metrics
	sender     *messaging_api.Sender
	isAdmin    func(string) bool
	aiLimiter  *ratelimit.KeyedLimiter

	historyWindow int
	aiTimeout     time.Duration
}

// New creates a router. The translator may be nil when group translation
// is disabled; the syncer may be nil in tests.
func New(
	users *userstate.Manager,
	store storage.ConversationRepository,
	groups storage.GroupRepository,
	completer genai.Completer,
	translator genai.Translator,
	syncer *richmenu.Syncer,
	m *metrics.Metrics,
	cfg Config,
) *Router {
	if cfg.HistoryWindow <= 0 {
		cfg.HistoryWindow = defaultHistoryWindow
	}
	if cfg.AITimeout <= 0 {
		cfg.AITimeout = defaultAITimeout
	}
	if cfg.SenderName == "" {
		cfg.SenderName = genai.AssistantName
	}
	return &Router{
		users:         users,
		store:         store,
		groups:        groups,
		completer:     completer,
		translator:    translator,
		syncer:        syncer,
		metrics:       m,
		sender:        lineutil.NewSender(cfg.SenderName, cfg.SenderIconURL),
		isAdmin:       cfg.IsAdmin,
		aiLimiter:     cfg.AILimiter,
		historyWindow: cfg.HistoryWindow,
		aiTimeout:     cfg.AITimeout,
	}
}

// Handle processes a direct text message and returns the reply
// messages. It always returns at least one message.
func (r *Router) Handle(ctx context.Context, userID, text string) []messaging_api.MessageInterface {
	unlock := r.users.Lock(userID)

	user, first, err := r.users.Resolve(ctx, userID, text)
	if err != nil {
		unlock()
		slog.ErrorContext(ctx, "failed to resolve user",
			slog.String("user_id", userID),
			slog.Any("error", err))
		return r.fallbackReply(r.users.DefaultLanguage())
	}
	lang := catalog.Code(user.Language)
	ctx = ctxutil.WithLanguage(ctx, user.Language)

	res := intent.Classify(text)
	r.recordIntent(res.Category.String())

	var msgs []messaging_api.MessageInterface
	switch res.Category {
	case intent.CategoryCommand:
		msgs = r.handleCommand(ctx, user, res)
		unlock()
	case intent.CategoryEmergency:
		msgs = r.emergencyReply(lang)
		unlock()
	case intent.CategoryGreeting:
		msgs = r.cannedReply(lang, catalog.MsgGreeting)
		unlock()
	case intent.CategoryThanks:
		msgs = r.cannedReply(lang, catalog.MsgThanks)
		unlock()
	case intent.CategoryGoodbye:
		msgs = r.cannedReply(lang, catalog.MsgGoodbye)
		unlock()
	case intent.CategoryHelpRequest:
		msgs = r.cannedReply(lang, catalog.MsgHelp)
		unlock()
	default:
		// handleQuery releases the lock before the AI call.
		msgs = r.handleQuery(ctx, user, text, unlock)
	}

	if first {
		welcome := lineutil.NewTextMessageWithSender(
			catalog.Message(catalog.Code(user.Language), catalog.MsgWelcome), r.sender)
		msgs = append([]messaging_api.MessageInterface{welcome}, msgs...)
		lineutil.AddQuickReplyToMessages(msgs, lineutil.LanguageQuickReplyItems()...)
	}

	r.syncMenu(ctx, user)
	return msgs
}

// HandleFollow greets a new or returning follower in their language and
// offers the language picker.
func (r *Router) HandleFollow(ctx context.Context, userID string) []messaging_api.MessageInterface {
	unlock := r.users.Lock(userID)
	user, _, err := r.users.Resolve(ctx, userID, "")
	unlock()
	if err != nil {
		slog.ErrorContext(ctx, "failed to resolve follower",
			slog.String("user_id", userID),
			slog.Any("error", err))
		return r.fallbackReply(r.users.DefaultLanguage())
	}

	msg := lineutil.NewTextMessageWithSender(
		catalog.Message(catalog.Code(user.Language), catalog.MsgWelcome), r.sender)
	msgs := []messaging_api.MessageInterface{msg}
	lineutil.AddQuickReplyToMessages(msgs, lineutil.LanguageQuickReplyItems()...)

	r.syncMenu(ctx, user)
	return msgs
}

// handleCommand executes a recognized slash command. Called under the
// user lock.
func (r *Router) handleCommand(ctx context.Context, user *storage.User, res intent.Result) []messaging_api.MessageInterface {
	lang := catalog.Code(user.Language)

	switch res.Command {
	case intent.CmdLang:
		if res.Args == "" {
			msgs := r.cannedReply(lang, catalog.MsgLanguageSelect)
			lineutil.AddQuickReplyToMessages(msgs, lineutil.LanguageQuickReplyItems()...)
			return msgs
		}
		return r.changeLanguage(ctx, user, res.Args, "command")

	case intent.CmdHelp:
		return r.cannedReply(lang, catalog.MsgHelp)

	case intent.CmdEmergency:
		return r.emergencyReply(lang)

	case intent.CmdClear:
		return r.clearHistory(ctx, user)

	case intent.CmdTranslate:
		// Translation toggling only applies to group chats.
		return r.cannedReply(lang, catalog.MsgHelp)
	}
	return r.cannedReply(lang, catalog.MsgHelp)
}

// changeLanguage validates and applies a language switch, replying in
// the new language on success.
func (r *Router) changeLanguage(ctx context.Context, user *storage.User, code, origin string) []messaging_api.MessageInterface {
	if err := r.users.SetLanguage(ctx, user, code); err != nil {
		lang := catalog.Code(user.Language)
		if !apperrors.IsInvalidArgument(err) {
			slog.ErrorContext(ctx, "failed to persist language change",
				slog.String("user_id", user.ID),
				slog.Any("error", err))
			return r.fallbackReply(lang)
		}
		text := fmt.Sprintf("%s\n%s",
			catalog.Message(lang, catalog.MsgInvalidLanguage), catalog.SupportedList())
		msgs := []messaging_api.MessageInterface{
			lineutil.NewTextMessageWithSender(text, r.sender),
		}
		lineutil.AddQuickReplyToMessages(msgs, lineutil.LanguageQuickReplyItems()...)
		return msgs
	}

	if r.metrics != nil {
		r.metrics.RecordLanguageChange(user.Language, origin)
	}
	return r.cannedReply(catalog.Code(user.Language), catalog.MsgLanguageChanged)
}

// clearHistory wipes the user's conversation turns.
func (r *Router) clearHistory(ctx context.Context, user *storage.User) []messaging_api.MessageInterface {
	lang := catalog.Code(user.Language)
	if err := r.store.TruncateTurns(ctx, user.ID); err != nil {
		slog.ErrorContext(ctx, "failed to clear history",
			slog.String("user_id", user.ID),
			slog.Any("error", err))
		return r.fallbackReply(lang)
	}
	if r.metrics != nil {
		r.metrics.RecordHistoryClear()
	}
	return r.cannedReply(lang, catalog.MsgCleared)
}

// handleQuery runs the AI path: append the user turn and read the
// context window under the lock, release it, complete, then append the
// assistant turn. A failed completion yields the localized fallback and
// no assistant turn.
func (r *Router) handleQuery(ctx context.Context, user *storage.User, text string, unlock func()) []messaging_api.MessageInterface {
	lang := catalog.Code(user.Language)

	// The quota covers completions only; canned replies stay free. An
	// exhausted user gets the throttle message and no history turns.
	if r.aiLimiter != nil && !r.aiLimiter.Allow(user.ID) {
		unlock()
		slog.WarnContext(ctx, "ai quota exhausted",
			slog.String("user_id", user.ID),
			slog.Int("daily_remaining", r.aiLimiter.GetDailyRemaining(user.ID)))
		return r.cannedReply(lang, catalog.MsgRateLimited)
	}

	if err := r.store.AppendTurn(ctx, user.ID, storage.RoleUser, text); err != nil {
		slog.ErrorContext(ctx, "failed to append user turn",
			slog.String("user_id", user.ID),
			slog.Any("error", err))
	} else if r.metrics != nil {
		r.metrics.RecordTurnAppended(storage.RoleUser)
	}

	stored, err := r.store.GetRecentTurns(ctx, user.ID, r.historyWindow)
	unlock()
	if err != nil {
		slog.ErrorContext(ctx, "failed to load context window",
			slog.String("user_id", user.ID),
			slog.Any("error", err))
	}

	turns := make([]genai.Turn, 0, len(stored)+1)
	for _, t := range stored {
		turns = append(turns, genai.Turn{Role: t.Role, Content: t.Content})
	}
	if len(turns) == 0 || turns[len(turns)-1].Content != text {
		turns = append(turns, genai.Turn{Role: storage.RoleUser, Content: text})
	}

	actx, cancel := context.WithTimeout(ctx, r.aiTimeout)
	reply, err := r.completer.Complete(actx, user.Language, turns)
	cancel()
	if err != nil {
		if apperrors.IsUpstreamTimeout(err) {
			slog.WarnContext(ctx, "completion timed out",
				slog.String("user_id", user.ID),
				slog.Any("error", err))
		} else {
			slog.ErrorContext(ctx, "completion failed",
				slog.String("user_id", user.ID),
				slog.Any("error", err))
		}
		return r.cannedReply(lang, catalog.MsgAIUnavailable)
	}

	unlockAppend := r.users.Lock(user.ID)
	if err := r.store.AppendTurn(ctx, user.ID, storage.RoleAssistant, reply); err != nil {
		slog.ErrorContext(ctx, "failed to append assistant turn",
			slog.String("user_id", user.ID),
			slog.Any("error", err))
	} else if r.metrics != nil {
		r.metrics.RecordTurnAppended(storage.RoleAssistant)
	}
	unlockAppend()

	return []messaging_api.MessageInterface{
		lineutil.NewTextMessageWithSender(reply, r.sender),
	}
}

// emergencyReply builds the emergency contact card plus the plain-text
// contact block for clients that cannot render flex messages.
func (r *Router) emergencyReply(lang catalog.Code) []messaging_api.MessageInterface {
	contacts := []lineutil.EmergencyContact{
		{Emoji: "🚓", Label: "Police", Number: catalog.EmergencyContacts["police"]},
		{Emoji: "🚑", Label: "Fire / Ambulance", Number: catalog.EmergencyContacts["fire_ambulance"]},
		{Emoji: "📞", Label: "Migrant Worker Hotline (1955)", Number: catalog.EmergencyContacts["foreign_worker_hotline"]},
		{Emoji: "🛡️", Label: "Anti-Fraud Hotline", Number: catalog.EmergencyContacts["anti_fraud_hotline"]},
		{Emoji: "🤝", Label: "Protection Hotline", Number: catalog.EmergencyContacts["anti_trafficking_hotline"]},
		{Emoji: "🏛️", Label: "Indonesian Representative Office", Number: catalog.EmergencyContacts["indonesia_representative"]},
	}

	card := lineutil.NewEmergencyCard("🚨 Emergency", "Taiwan emergency contacts", contacts)
	card.Sender = r.sender
	return []messaging_api.MessageInterface{
		card,
		lineutil.NewTextMessageWithSender(catalog.EmergencyInfo(), r.sender),
	}
}

// cannedReply returns a single localized catalog message.
func (r *Router) cannedReply(lang catalog.Code, key catalog.MessageKey) []messaging_api.MessageInterface {
	return []messaging_api.MessageInterface{
		lineutil.NewTextMessageWithSender(catalog.Message(lang, key), r.sender),
	}
}

// fallbackReply is the last-resort reply when even user resolution
// failed.
func (r *Router) fallbackReply(lang catalog.Code) []messaging_api.MessageInterface {
	return r.cannedReply(lang, catalog.MsgAIUnavailable)
}

// syncMenu runs the best-effort rich menu sync after a reply was built.
// It takes the per-user lock so concurrent deliveries for the same user
// cannot interleave the compare, link, and persist steps. Callers must
// not hold the lock. Failures are logged and never affect the reply.
func (r *Router) syncMenu(ctx context.Context, user *storage.User) {
	if r.syncer == nil {
		return
	}
	unlock := r.users.Lock(user.ID)
	defer unlock()
	if err := r.syncer.Sync(ctx, user); err != nil {
		slog.WarnContext(ctx, "rich menu sync failed",
			slog.String("user_id", user.ID),
			slog.Any("error", err))
	}
}

func (r *Router) recordIntent(category string) {
	if r.metrics != nil {
		r.metrics.RecordIntent(category)
	}
}

// Package webhook handles LINE webhook delivery: signature verification,
// immediate acknowledgement, and asynchronous dispatch of events to the
// response router.
package webhook

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"
	"github.com/line/line-bot-sdk-go/v8/linebot/webhook"

	"github.com/imigo-bot/imigo-linebot-go/internal/catalog"
	"github.com/imigo-bot/imigo-linebot-go/internal/config"
	"github.com/imigo-bot/imigo-linebot-go/internal/ctxutil"
	"github.com/imigo-bot/imigo-linebot-go/internal/lineutil"
	"github.com/imigo-bot/imigo-linebot-go/internal/logger"
	"github.com/imigo-bot/imigo-linebot-go/internal/metrics"
	"github.com/imigo-bot/imigo-linebot-go/internal/ratelimit"
	"github.com/imigo-bot/imigo-linebot-go/internal/router"
	"github.com/imigo-bot/imigo-linebot-go/internal/storage"
)

// limiterCleanupPeriod controls how often idle per-user limiter entries
// are dropped.
const limiterCleanupPeriod = 10 * time.Minute

// Handler handles LINE webhook events.
type Handler struct {
	channelSecret string
	client        *messaging_api.MessagingApiAPI
	metrics       *metrics.Metrics
	logger        *logger.Logger
	router        *router.Router
	users         storage.UserRepository
	defaultLang   catalog.Code

	globalLimiter *ratelimit.Limiter      // protects the LINE reply endpoint
	userLimiter   *ratelimit.KeyedLimiter // per-user inbound throttle
	wg            sync.WaitGroup

	webhookTimeout      time.Duration
	maxMessagesPerReply int
	maxEventsPerWebhook int
	minReplyTokenLength int
	maxMessageLength    int
	maxPostbackDataSize int
}

// HandlerConfig holds configuration for creating a new Handler.
type HandlerConfig struct {
	ChannelSecret   string
	ChannelToken    string
	BotConfig       *config.BotConfig
	Metrics         *metrics.Metrics
	Logger          *logger.Logger
	Router          *router.Router
	Users           storage.UserRepository
	DefaultLanguage catalog.Code
}

// NewHandler creates a new webhook handler.
func NewHandler(cfg HandlerConfig) (*Handler, error) {
	client, err := messaging_api.NewMessagingApiAPI(cfg.ChannelToken)
	if err != nil {
		return nil, fmt.Errorf("create messaging API client: %w", err)
	}
	if cfg.DefaultLanguage == "" {
		cfg.DefaultLanguage = catalog.Indonesian
	}

	h := &Handler{
		channelSecret:       cfg.ChannelSecret,
		client:              client,
		metrics:             cfg.Metrics,
		logger:              cfg.Logger.WithModule("webhook"),
		router:              cfg.Router,
		users:               cfg.Users,
		defaultLang:         cfg.DefaultLanguage,
		webhookTimeout:      cfg.BotConfig.WebhookTimeout,
		maxMessagesPerReply: cfg.BotConfig.MaxMessagesPerReply,
		maxEventsPerWebhook: cfg.BotConfig.MaxEventsPerWebhook,
		minReplyTokenLength: cfg.BotConfig.MinReplyTokenLength,
		maxMessageLength:    cfg.BotConfig.MaxMessageLength,
		maxPostbackDataSize: cfg.BotConfig.MaxPostbackDataSize,
	}

	h.globalLimiter = ratelimit.New(cfg.BotConfig.GlobalRateLimitRPS, cfg.BotConfig.GlobalRateLimitRPS)
	h.userLimiter = ratelimit.NewKeyedLimiter(ratelimit.KeyedConfig{
		Name:          "user",
		Burst:         cfg.BotConfig.UserRateLimitBurst,
		RefillRate:    cfg.BotConfig.UserRateLimitRefillPerSec,
		CleanupPeriod: limiterCleanupPeriod,
		Metrics:       cfg.Metrics,
	})

	return h, nil
}

// UserLimiter exposes the per-user limiter for gauge reporting.
func (h *Handler) UserLimiter() *ratelimit.KeyedLimiter {
	return h.userLimiter
}

// Handle is the Gin handler for the webhook endpoint.
func (h *Handler) Handle(c *gin.Context) {
	cb, err := webhook.ParseRequest(h.channelSecret, c.Request)
	if err != nil {
		if errors.Is(err, webhook.ErrInvalidSignature) {
			h.logger.Warn("Invalid webhook signature")
			h.metrics.RecordHTTPError("invalid_signature", "webhook")
			c.Status(http.StatusBadRequest)
		} else {
			h.logger.WithError(err).Error("Failed to parse webhook request")
			h.metrics.RecordHTTPError("parse_failure", "webhook")
			c.Status(http.StatusInternalServerError)
		}
		return
	}

	// LINE expects 200 before processing finishes.
	c.Status(http.StatusOK)

	start := time.Now()
	h.metrics.RecordWebhook("batch", "received", 0)

	if len(cb.Events) > h.maxEventsPerWebhook {
		h.logger.WithField("event_count", len(cb.Events)).
			WithField("limit", h.maxEventsPerWebhook).
			Warn("Too many events in webhook batch; truncating")
		cb.Events = cb.Events[:h.maxEventsPerWebhook]
	}

	// Copy events so the slice stays valid after the HTTP response completes.
	events := make([]webhook.EventInterface, len(cb.Events))
	copy(events, cb.Events)

	// Detach from the request context so processing survives the 200
	// response, keeping only the tracing values.
	processingCtx := ctxutil.PreserveTracing(c.Request.Context())

	h.wg.Go(func() {
		defer func() {
			if r := recover(); r != nil {
				h.logger.WithField("panic", r).Error("Panic in async event processing")
			}
		}()

		for _, event := range events {
			h.processEvent(processingCtx, event, start)
		}
	})
}

// processEvent handles a single webhook event asynchronously.
func (h *Handler) processEvent(ctx context.Context, event webhook.EventInterface, webhookStart time.Time) {
	eventStart := time.Now()

	ctx, cancel := context.WithTimeout(ctx, h.webhookTimeout)
	defer cancel()

	eventID, eventTimestamp, isRedelivery := extractEventMeta(event)
	if eventID != "" {
		ctx = ctxutil.WithRequestID(ctx, eventID)
	}

	log := h.logger
	if eventID != "" {
		log = log.WithRequestID(eventID)
	}
	if isRedelivery != nil {
		log = log.WithField("is_redelivery", *isRedelivery)
	}
	if eventTimestamp > 0 {
		log = log.WithField("event_timestamp_ms", eventTimestamp)
	}

	if h.shouldShowLoading(event) {
		if loadErr := h.showLoadingAnimation(event); loadErr != nil {
			log.WithError(loadErr).Warn("Failed to show loading animation")
		}
	}

	var messages []messaging_api.MessageInterface
	var eventType string

	switch e := event.(type) {
	case webhook.MessageEvent:
		eventType = "message"
		messages = h.processMessage(ctx, e)
	case webhook.PostbackEvent:
		eventType = "postback"
		messages = h.processPostback(ctx, e)
	case webhook.FollowEvent:
		eventType = "follow"
		messages = h.processFollow(ctx, e)
	default:
		log.WithField("event_type", fmt.Sprintf("%T", e)).Debug("Unsupported event type")
		return
	}

	eventDuration := time.Since(eventStart).Seconds()
	h.metrics.RecordWebhook(eventType, "success", eventDuration)

	if len(messages) > 0 {
		h.reply(event, messages, eventType, eventStart, log)
	}

	log.WithField("event_type", eventType).
		WithField("event_duration_ms", time.Since(eventStart).Milliseconds()).
		WithField("batch_duration_ms", time.Since(webhookStart).Milliseconds()).
		Info("Event processed")
}

// processMessage routes a message event by source type. Non-text messages
// are ignored.
func (h *Handler) processMessage(ctx context.Context, e webhook.MessageEvent) []messaging_api.MessageInterface {
	textMsg, ok := e.Message.(webhook.TextMessageContent)
	if !ok {
		return nil
	}
	text := textMsg.Text
	if h.maxMessageLength > 0 && len(text) > h.maxMessageLength {
		h.logger.WithField("length", len(text)).
			WithField("limit", h.maxMessageLength).
			Warn("Truncating oversized message")
		text = truncateUTF8(text, h.maxMessageLength)
	}

	switch src := e.Source.(type) {
	case webhook.UserSource:
		ctx = ctxutil.WithUserID(ctx, src.UserId)
		if !h.userLimiter.Allow(src.UserId) {
			return h.rateLimitedReply(ctx, src.UserId)
		}
		return h.router.Handle(ctx, src.UserId, text)
	case webhook.GroupSource:
		ctx = ctxutil.WithChatID(ctx, src.GroupId)
		return h.router.HandleGroup(ctx, src.GroupId, src.UserId, text)
	default:
		return nil
	}
}

func (h *Handler) processPostback(ctx context.Context, e webhook.PostbackEvent) []messaging_api.MessageInterface {
	src, ok := e.Source.(webhook.UserSource)
	if !ok {
		return nil
	}
	if h.maxPostbackDataSize > 0 && len(e.Postback.Data) > h.maxPostbackDataSize {
		h.logger.WithField("size", len(e.Postback.Data)).
			WithField("limit", h.maxPostbackDataSize).
			Warn("Dropping oversized postback data")
		return nil
	}
	ctx = ctxutil.WithUserID(ctx, src.UserId)
	if !h.userLimiter.Allow(src.UserId) {
		return h.rateLimitedReply(ctx, src.UserId)
	}
	return h.router.HandlePostback(ctx, src.UserId, e.Postback.Data)
}

func (h *Handler) processFollow(ctx context.Context, e webhook.FollowEvent) []messaging_api.MessageInterface {
	src, ok := e.Source.(webhook.UserSource)
	if !ok {
		return nil
	}
	ctx = ctxutil.WithUserID(ctx, src.UserId)
	return h.router.HandleFollow(ctx, src.UserId)
}

// rateLimitedReply builds the localized throttle message for a user whose
// token bucket is empty.
func (h *Handler) rateLimitedReply(ctx context.Context, userID string) []messaging_api.MessageInterface {
	h.metrics.RecordRateLimiterDrop("user")
	h.logger.WithField("user_id", userID).
		WithField("available", h.userLimiter.GetAvailable(userID)).
		Warn("Throttling user")

	lang := h.defaultLang
	if u, err := h.users.GetUser(ctx, userID); err == nil && u != nil {
		if code, ok := catalog.Normalize(u.Language); ok {
			lang = code
		}
	}
	return []messaging_api.MessageInterface{
		lineutil.NewTextMessage(catalog.Message(lang, catalog.MsgRateLimited)),
	}
}

// reply sends the collected messages using the event's reply token.
func (h *Handler) reply(event webhook.EventInterface, messages []messaging_api.MessageInterface, eventType string, eventStart time.Time, log *logger.Logger) {
	if len(messages) > h.maxMessagesPerReply {
		log.WithField("message_count", len(messages)).
			WithField("limit", h.maxMessagesPerReply).
			Warn("Message count exceeds limit; truncating")
		messages = messages[:h.maxMessagesPerReply]
	}

	replyToken := h.getReplyToken(event)
	if replyToken == "" {
		log.Debug("Empty reply token, skipping reply")
		return
	}
	if len(replyToken) < h.minReplyTokenLength {
		log.WithField("token_length", len(replyToken)).Debug("Invalid reply token format")
		return
	}

	if !h.globalLimiter.Allow() {
		log.Warn("Global rate limit exceeded; waiting")
		h.metrics.RecordRateLimiterDrop("global")
		h.globalLimiter.WaitSimple()
	}

	if _, err := h.client.ReplyMessage(
		&messaging_api.ReplyMessageRequest{
			ReplyToken: replyToken,
			Messages:   messages,
		},
	); err != nil {
		errMsg := err.Error()
		switch {
		case strings.Contains(errMsg, "Invalid reply token"):
			log.WithError(err).Debug("Reply token already used or invalid")
		case strings.Contains(errMsg, "rate limit"):
			log.WithError(err).Error("Rate limit exceeded")
		default:
			log.WithError(err).Error("Failed to send reply")
		}
		h.metrics.RecordWebhook(eventType, "reply_error", time.Since(eventStart).Seconds())
	}
}

func extractEventMeta(event webhook.EventInterface) (string, int64, *bool) {
	switch e := event.(type) {
	case webhook.MessageEvent:
		return e.WebhookEventId, e.Timestamp, redeliveryFlag(e.DeliveryContext)
	case webhook.PostbackEvent:
		return e.WebhookEventId, e.Timestamp, redeliveryFlag(e.DeliveryContext)
	case webhook.FollowEvent:
		return e.WebhookEventId, e.Timestamp, redeliveryFlag(e.DeliveryContext)
	default:
		return "", 0, nil
	}
}

func redeliveryFlag(dc *webhook.DeliveryContext) *bool {
	if dc == nil {
		return nil
	}
	val := dc.IsRedelivery
	return &val
}

// shouldShowLoading reports whether the loading animation should be shown.
// Group messages skip it: most produce no reply unless translation is on,
// and the animation only renders in 1:1 chats anyway.
func (h *Handler) shouldShowLoading(event webhook.EventInterface) bool {
	switch e := event.(type) {
	case webhook.MessageEvent:
		if _, ok := e.Source.(webhook.UserSource); !ok {
			return false
		}
		_, isText := e.Message.(webhook.TextMessageContent)
		return isText
	case webhook.PostbackEvent:
		_, ok := e.Source.(webhook.UserSource)
		return ok
	case webhook.FollowEvent:
		return true
	default:
		return false
	}
}

// showLoadingAnimation shows the typing indicator in the user's chat.
func (h *Handler) showLoadingAnimation(event webhook.EventInterface) error {
	chatID := h.getChatID(event)
	if chatID == "" {
		return nil
	}

	// LINE accepts 5-60 seconds in multiples of 5. Use the maximum so the
	// indicator covers a slow AI completion.
	req := &messaging_api.ShowLoadingAnimationRequest{
		ChatId:         chatID,
		LoadingSeconds: 60,
	}

	if _, err := h.client.ShowLoadingAnimation(req); err != nil {
		return fmt.Errorf("show loading animation: %w", err)
	}
	return nil
}

// getReplyToken extracts the reply token from an event.
func (h *Handler) getReplyToken(event webhook.EventInterface) string {
	switch e := event.(type) {
	case webhook.MessageEvent:
		return e.ReplyToken
	case webhook.PostbackEvent:
		return e.ReplyToken
	case webhook.FollowEvent:
		return e.ReplyToken
	default:
		return ""
	}
}

// getChatID extracts the user ID of the chat an event came from.
func (h *Handler) getChatID(event webhook.EventInterface) string {
	var source webhook.SourceInterface

	switch e := event.(type) {
	case webhook.MessageEvent:
		source = e.Source
	case webhook.PostbackEvent:
		source = e.Source
	case webhook.FollowEvent:
		source = e.Source
	default:
		return ""
	}

	if src, ok := source.(webhook.UserSource); ok {
		return src.UserId
	}
	return ""
}

// truncateUTF8 cuts s to at most max bytes without splitting a rune.
func truncateUTF8(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

// Shutdown waits for in-flight event processing to finish and stops the
// limiter cleanup loop. It returns an error if the context is canceled
// before completion.
func (h *Handler) Shutdown(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		defer close(done)
		h.wg.Wait()
	}()

	defer h.userLimiter.Stop()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

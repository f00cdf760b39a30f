package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Webhook metrics
	WebhookDurationSeconds *prometheus.HistogramVec
	WebhookRequestsTotal   *prometheus.CounterVec

	// Intent metrics
	IntentTotal *prometheus.CounterVec

	// AI backend metrics
	AIRequestsTotal   *prometheus.CounterVec
	AIDurationSeconds *prometheus.HistogramVec

	// Rich menu metrics
	MenuSyncTotal           *prometheus.CounterVec
	MenuSyncDurationSeconds prometheus.Histogram

	// Language metrics
	LanguageChangesTotal *prometheus.CounterVec
	UsersByLanguage      *prometheus.GaugeVec

	// Conversation metrics
	TurnsAppendedTotal *prometheus.CounterVec
	HistoryClearsTotal prometheus.Counter

	// Archive metrics
	ArchiveFlushesTotal *prometheus.CounterVec
	ArchiveBytesTotal   prometheus.Counter

	// HTTP metrics
	HTTPErrorsTotal *prometheus.CounterVec

	// Rate limiter metrics
	RateLimiterDropped *prometheus.CounterVec
	RateLimiterActive  *prometheus.GaugeVec
}

// New creates a new Metrics instance with all metrics registered
func New(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		// Webhook metrics
		WebhookDurationSeconds: promauto.With(registry).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "imigo_webhook_duration_seconds",
				Help:    "Webhook processing duration in seconds by event type",
				Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30}, // AI calls dominate the tail
			},
			[]string{"event_type"}, // event_type: message, postback, follow, join
		),

		WebhookRequestsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "imigo_webhook_requests_total",
				Help: "Total number of webhook requests by event type and status",
			},
			[]string{"event_type", "status"}, // status: success, error
		),

		// Intent metrics
		IntentTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "imigo_intent_total",
				Help: "Total number of classified messages by intent category",
			},
			[]string{"category"}, // category: command, emergency, greeting, ...
		),

		// AI backend metrics
		AIRequestsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "imigo_ai_requests_total",
				Help: "Total number of AI backend requests by operation and status",
			},
			[]string{"operation", "status"}, // operation: complete, translate, detect; status: success, error, timeout
		),

		AIDurationSeconds: promauto.With(registry).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "imigo_ai_duration_seconds",
				Help:    "AI backend request duration in seconds by operation",
				Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30}, // Matches 30s completion timeout
			},
			[]string{"operation"},
		),

		// Rich menu metrics
		MenuSyncTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "imigo_menu_sync_total",
				Help: "Total number of rich menu sync attempts by language and status",
			},
			[]string{"language", "status"}, // status: success, noop, error
		),

		MenuSyncDurationSeconds: promauto.With(registry).NewHistogram(
			prometheus.HistogramOpts{
				Name:    "imigo_menu_sync_duration_seconds",
				Help:    "Rich menu sync duration in seconds",
				Buckets: []float64{0.05, 0.1, 0.5, 1, 2, 5, 10}, // Matches 10s sync timeout
			},
		),

		// Language metrics
		LanguageChangesTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "imigo_language_changes_total",
				Help: "Total number of language preference changes by target language and origin",
			},
			[]string{"language", "origin"}, // origin: command, postback, detected
		),

		UsersByLanguage: promauto.With(registry).NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "imigo_users_by_language",
				Help: "Number of known users per preferred language",
			},
			[]string{"language"},
		),

		// Conversation metrics
		TurnsAppendedTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "imigo_turns_appended_total",
				Help: "Total number of conversation turns appended by role",
			},
			[]string{"role"}, // role: user, assistant
		),

		HistoryClearsTotal: promauto.With(registry).NewCounter(
			prometheus.CounterOpts{
				Name: "imigo_history_clears_total",
				Help: "Total number of conversation history clears",
			},
		),

		// Archive metrics
		ArchiveFlushesTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "imigo_archive_flushes_total",
				Help: "Total number of conversation archive flushes by status",
			},
			[]string{"status"}, // status: success, error, empty
		),

		ArchiveBytesTotal: promauto.With(registry).NewCounter(
			prometheus.CounterOpts{
				Name: "imigo_archive_bytes_total",
				Help: "Total compressed bytes written to the conversation archive",
			},
		),

		// HTTP metrics
		HTTPErrorsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "imigo_http_errors_total",
				Help: "Total HTTP errors by type and module",
			},
			[]string{"error_type", "module"}, // error_type: timeout, rate_limit, invalid_signature, etc.
		),

		// Rate limiter metrics
		RateLimiterDropped: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "imigo_rate_limiter_dropped_total",
				Help: "Total number of requests dropped by rate limiter",
			},
			[]string{"limiter_type"}, // limiter_type: user, ai, global
		),

		RateLimiterActive: promauto.With(registry).NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "imigo_rate_limiter_active",
				Help: "Current number of tracked keys per rate limiter",
			},
			[]string{"limiter_type"},
		),
	}

	return m
}

// RecordWebhook records a webhook request
func (m *Metrics) RecordWebhook(eventType, status string, duration float64) {
	m.WebhookRequestsTotal.WithLabelValues(eventType, status).Inc()
	m.WebhookDurationSeconds.WithLabelValues(eventType).Observe(duration)
}

// RecordIntent records a classified message
func (m *Metrics) RecordIntent(category string) {
	m.IntentTotal.WithLabelValues(category).Inc()
}

// RecordAIRequest records an AI backend request with status
func (m *Metrics) RecordAIRequest(operation, status string, duration float64) {
	m.AIRequestsTotal.WithLabelValues(operation, status).Inc()
	m.AIDurationSeconds.WithLabelValues(operation).Observe(duration)
}

// RecordMenuSync records a rich menu sync attempt
func (m *Metrics) RecordMenuSync(language, status string, duration float64) {
	m.MenuSyncTotal.WithLabelValues(language, status).Inc()
	m.MenuSyncDurationSeconds.Observe(duration)
}

// RecordLanguageChange records a language preference change
func (m *Metrics) RecordLanguageChange(language, origin string) {
	m.LanguageChangesTotal.WithLabelValues(language, origin).Inc()
}

// SetUsersByLanguage updates the per-language user count gauge
func (m *Metrics) SetUsersByLanguage(language string, count float64) {
	m.UsersByLanguage.WithLabelValues(language).Set(count)
}

// RecordTurnAppended records a conversation turn append
func (m *Metrics) RecordTurnAppended(role string) {
	m.TurnsAppendedTotal.WithLabelValues(role).Inc()
}

// RecordHistoryClear records a conversation history clear
func (m *Metrics) RecordHistoryClear() {
	m.HistoryClearsTotal.Inc()
}

// RecordArchiveFlush records a conversation archive flush
func (m *Metrics) RecordArchiveFlush(status string, bytes int) {
	m.ArchiveFlushesTotal.WithLabelValues(status).Inc()
	if bytes > 0 {
		m.ArchiveBytesTotal.Add(float64(bytes))
	}
}

// RecordHTTPError records HTTP error metrics
func (m *Metrics) RecordHTTPError(errorType, module string) {
	m.HTTPErrorsTotal.WithLabelValues(errorType, module).Inc()
}

// RecordRateLimiterDrop records a request dropped by rate limiter
func (m *Metrics) RecordRateLimiterDrop(limiterType string) {
	m.RateLimiterDropped.WithLabelValues(limiterType).Inc()
}

// SetRateLimiterActive sets the number of tracked keys for a rate limiter
func (m *Metrics) SetRateLimiterActive(limiterType string, count int) {
	m.RateLimiterActive.WithLabelValues(limiterType).Set(float64(count))
}

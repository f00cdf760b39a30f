// Package config provides centralized timeout constants for the application.
//
// These values are tuned around:
//   - LINE Messaging API constraints (reply token expiration, webhook timeouts)
//   - Chat completion latency for assistant replies
//   - SQLite performance characteristics (WAL mode, busy timeout)
//
// # LINE API Constraints
//
// LINE webhook has specific timing requirements:
//   - Reply token: Valid for ~20 minutes, but should reply ASAP for good UX
//   - Webhook response: LINE expects quick acknowledgment (200 OK)
//   - Loading animation: Shows for up to 60 seconds, helps user wait
package config

import "time"

// Webhook timeouts
const (
	// WebhookProcessing is the timeout for processing a single webhook event.
	// This includes intent classification, database access, and a potential
	// chat completion round trip.
	//
	// Set to 60s because:
	//   - LINE loading animation shows for up to 60s
	//   - Chat completions may take 10-30s under load
	//   - Maximizes available processing time within LINE's limits
	WebhookProcessing = 60 * time.Second

	// WebhookHTTPRead is the HTTP server read timeout for webhook requests.
	// Should be short since LINE sends small JSON payloads.
	WebhookHTTPRead = 10 * time.Second

	// WebhookHTTPWrite is the HTTP server write timeout.
	// Should accommodate WebhookProcessing + response serialization.
	WebhookHTTPWrite = 65 * time.Second

	// WebhookHTTPIdle is the HTTP server idle timeout for keep-alive connections.
	WebhookHTTPIdle = 120 * time.Second
)

// AI timeouts
const (
	// AICompletion is the timeout for a single chat completion request.
	// Completions usually return in 2-10s; the margin covers provider
	// queuing during peak hours while staying inside WebhookProcessing.
	AICompletion = 30 * time.Second

	// AITranslation is the timeout for a single translation request.
	// Translations are short and deterministic, so a tighter bound applies.
	AITranslation = 15 * time.Second
)

// Rich menu timeouts
const (
	// MenuSync is the timeout for linking or unlinking one user's rich menu.
	MenuSync = 10 * time.Second

	// MenuBootstrap is the timeout for creating and uploading all per-language
	// menus at startup. Image uploads dominate this budget.
	MenuBootstrap = 2 * time.Minute
)

// Database timeouts
const (
	// DatabaseBusyTimeout is SQLite busy_timeout pragma value.
	// Handles concurrent write contention across webhook workers.
	DatabaseBusyTimeout = 30 * time.Second

	// DatabaseConnMaxLifetime is the maximum lifetime of database connections.
	// Prevents stale connections and allows connection pool refresh.
	DatabaseConnMaxLifetime = time.Hour
)

// Background job intervals
const (
	// HistoryCleanupInterval is how often conversation history beyond the
	// retention window is archived and trimmed.
	HistoryCleanupInterval = 12 * time.Hour

	// HistoryCleanupInitialDelay is the delay before first history cleanup.
	// Allows server to stabilize before running cleanup.
	HistoryCleanupInitialDelay = 5 * time.Minute

	// MetricsUpdateInterval is how often gauge metrics are refreshed.
	MetricsUpdateInterval = 5 * time.Minute

	// RateLimiterCleanupInterval is how often inactive user rate limiters are cleaned.
	RateLimiterCleanupInterval = 5 * time.Minute
)

// Health checks
const (
	// ReadinessCheckTimeout bounds the database ping in /readyz.
	ReadinessCheckTimeout = 5 * time.Second
)

// Retention defaults
const (
	// DefaultHistoryRetention is how long conversation turns are kept in
	// SQLite before they are archived and deleted.
	DefaultHistoryRetention = 30 * 24 * time.Hour
)

// Graceful shutdown
const (
	// GracefulShutdown is the timeout for graceful server shutdown.
	// Allows in-flight requests to complete before forceful termination.
	GracefulShutdown = 30 * time.Second
)

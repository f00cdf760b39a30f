// Package storage provides repository interfaces for data access abstraction.
// These interfaces enable dependency inversion and facilitate testing by
// decoupling the router and state machine from concrete storage implementations.
package storage

import (
	"context"
	"time"
)

// UserRepository defines the interface for user state operations.
type UserRepository interface {
	// GetUser retrieves a user by LINE user ID.
	// Returns (nil, nil) when the user has never been seen.
	GetUser(ctx context.Context, userID string) (*User, error)

	// UpsertUser inserts or updates a user record.
	UpsertUser(ctx context.Context, user *User) error

	// SetUserLanguage updates the preferred language for a user.
	SetUserLanguage(ctx context.Context, userID, language string) error

	// SetUserRichMenu updates the persisted rich menu pointer.
	// Called only after a successful link operation.
	SetUserRichMenu(ctx context.Context, userID, menuID string) error

	// TouchUser updates the last-seen timestamp.
	TouchUser(ctx context.Context, userID string) error

	// ListUserIDs returns every known user ID.
	ListUserIDs(ctx context.Context) ([]string, error)

	// CountUsersByLanguage returns user counts grouped by language.
	CountUsersByLanguage(ctx context.Context) (map[string]int, error)
}

// ConversationRepository defines the interface for conversation log operations.
type ConversationRepository interface {
	// AppendTurn appends one turn to a user's conversation log.
	AppendTurn(ctx context.Context, userID, role, content string) error

	// GetRecentTurns returns the most recent n turns for a user in
	// chronological order (oldest first).
	GetRecentTurns(ctx context.Context, userID string, n int) ([]ConversationTurn, error)

	// TruncateTurns deletes all turns for a user.
	TruncateTurns(ctx context.Context, userID string) error

	// CountTurns returns the number of turns logged for a user.
	CountTurns(ctx context.Context, userID string) (int, error)

	// ListTurnsBefore returns up to limit turns created before the cutoff,
	// oldest first. Used by the retention archiver.
	ListTurnsBefore(ctx context.Context, cutoff time.Time, limit int) ([]ConversationTurn, error)

	// DeleteTurnsBefore deletes all turns created before the cutoff.
	// Returns the number of deleted rows.
	DeleteTurnsBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// GroupRepository defines the interface for group channel settings.
type GroupRepository interface {
	// GetGroup retrieves translation settings for a group.
	// Returns (nil, nil) when the group has no stored settings.
	GetGroup(ctx context.Context, groupID string) (*GroupChannel, error)

	// SetGroupTranslation persists translation settings for a group.
	SetGroupTranslation(ctx context.Context, groupID string, enabled bool, targetLanguage, enabledBy string) error
}

// HealthRepository defines the interface for health check operations.
type HealthRepository interface {
	// Ping verifies database connection is alive.
	Ping(ctx context.Context) error

	// Ready checks if database is ready to serve queries.
	// Performs more thorough checks than Ping.
	Ready(ctx context.Context) error
}

// Repository is the aggregate interface that combines all repository interfaces.
// The DB type implements this interface, providing a single entry point for
// all data operations.
type Repository interface {
	UserRepository
	ConversationRepository
	GroupRepository
	HealthRepository
	Close() error
}

// Ensure DB implements all repository interfaces at compile time.
var (
	_ UserRepository         = (*DB)(nil)
	_ ConversationRepository = (*DB)(nil)
	_ GroupRepository        = (*DB)(nil)
	_ HealthRepository       = (*DB)(nil)
	_ Repository             = (*DB)(nil)
)

package storage

import "errors"

// Common errors
var (
	// ErrNotFound is returned when a resource is not found in the database
	ErrNotFound = errors.New("resource not found")
)

// Conversation turn roles
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// User represents a known LINE user and their resolved language.
// RichMenuID is empty until a rich menu has been successfully linked;
// when set it must match the registry artifact for Language.
type User struct {
	ID         string `json:"user_id"`
	Language   string `json:"language"`
	RichMenuID string `json:"rich_menu_id,omitempty"`
	CreatedAt  int64  `json:"created_at"`
	UpdatedAt  int64  `json:"updated_at"`
	LastSeenAt int64  `json:"last_seen_at"`
}

// ConversationTurn represents one message in a user's conversation log.
// Turns are append-only; ordering is by created_at with rowid as tiebreak.
type ConversationTurn struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id"`
	Role      string `json:"role"` // "user" or "assistant"
	Content   string `json:"content"`
	CreatedAt int64  `json:"created_at"`
}

// GroupChannel represents per-group translation settings.
// Invariant: TranslateEnabled implies TargetLanguage is a supported code.
type GroupChannel struct {
	GroupID          string `json:"group_id"`
	TranslateEnabled bool   `json:"translate_enabled"`
	TargetLanguage   string `json:"target_language,omitempty"`
	EnabledBy        string `json:"enabled_by,omitempty"`
	UpdatedAt        int64  `json:"updated_at"`
}

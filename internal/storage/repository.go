package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// slowQueryThreshold triggers a warning log for operations slower than this.
const slowQueryThreshold = 100 * time.Millisecond

// GetUser retrieves a user by LINE user ID.
// Returns (nil, nil) when the user has never been seen.
func (db *DB) GetUser(ctx context.Context, userID string) (*User, error) {
	query := `SELECT user_id, language, rich_menu_id, created_at, updated_at, last_seen_at FROM users WHERE user_id = ?`

	var user User
	err := db.conn.QueryRowContext(ctx, query, userID).Scan(
		&user.ID,
		&user.Language,
		&user.RichMenuID,
		&user.CreatedAt,
		&user.UpdatedAt,
		&user.LastSeenAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to query user",
			"user_id", userID,
			"error", err)
		return nil, fmt.Errorf("query user: %w", err)
	}

	return &user, nil
}

// UpsertUser inserts or updates a user record.
// created_at is preserved on update; updated_at and last_seen_at are refreshed.
func (db *DB) UpsertUser(ctx context.Context, user *User) error {
	query := `
		INSERT INTO users (user_id, language, rich_menu_id, created_at, updated_at, last_seen_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			language = excluded.language,
			rich_menu_id = excluded.rich_menu_id,
			updated_at = excluded.updated_at,
			last_seen_at = excluded.last_seen_at
	`
	start := time.Now()
	now := time.Now().Unix()
	_, err := db.conn.ExecContext(ctx, query, user.ID, user.Language, user.RichMenuID, now, now, now)
	if err != nil {
		slog.ErrorContext(ctx, "failed to upsert user",
			"user_id", user.ID,
			"error", err)
		return fmt.Errorf("upsert user: %w", err)
	}

	if duration := time.Since(start); duration > slowQueryThreshold {
		slog.WarnContext(ctx, "slow database operation",
			"operation", "UpsertUser",
			"duration_ms", duration.Milliseconds(),
			"user_id", user.ID)
	}
	return nil
}

// SetUserLanguage updates the preferred language for a user.
func (db *DB) SetUserLanguage(ctx context.Context, userID, language string) error {
	query := `UPDATE users SET language = ?, updated_at = ? WHERE user_id = ?`

	res, err := db.conn.ExecContext(ctx, query, language, time.Now().Unix(), userID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to set user language",
			"user_id", userID,
			"language", language,
			"error", err)
		return fmt.Errorf("set user language: %w", err)
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("set user language for %s: %w", userID, ErrNotFound)
	}
	return nil
}

// SetUserRichMenu updates the persisted rich menu pointer.
// Called only after a successful link operation.
func (db *DB) SetUserRichMenu(ctx context.Context, userID, menuID string) error {
	query := `UPDATE users SET rich_menu_id = ?, updated_at = ? WHERE user_id = ?`

	res, err := db.conn.ExecContext(ctx, query, menuID, time.Now().Unix(), userID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to set user rich menu",
			"user_id", userID,
			"menu_id", menuID,
			"error", err)
		return fmt.Errorf("set user rich menu: %w", err)
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("set user rich menu for %s: %w", userID, ErrNotFound)
	}
	return nil
}

// TouchUser updates the last-seen timestamp.
func (db *DB) TouchUser(ctx context.Context, userID string) error {
	query := `UPDATE users SET last_seen_at = ? WHERE user_id = ?`

	if _, err := db.conn.ExecContext(ctx, query, time.Now().Unix(), userID); err != nil {
		return fmt.Errorf("touch user: %w", err)
	}
	return nil
}

// ListUserIDs returns every known user ID.
func (db *DB) ListUserIDs(ctx context.Context) ([]string, error) {
	query := `SELECT user_id FROM users ORDER BY user_id`

	rows, err := db.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list user ids: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan user id: %w", err)
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

// CountUsersByLanguage returns user counts grouped by language.
func (db *DB) CountUsersByLanguage(ctx context.Context) (map[string]int, error) {
	query := `SELECT language, COUNT(*) FROM users GROUP BY language`

	rows, err := db.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("count users by language: %w", err)
	}
	defer func() { _ = rows.Close() }()

	counts := make(map[string]int)
	for rows.Next() {
		var language string
		var count int
		if err := rows.Scan(&language, &count); err != nil {
			return nil, fmt.Errorf("scan language count: %w", err)
		}
		counts[language] = count
	}

	return counts, rows.Err()
}

// AppendTurn appends one turn to a user's conversation log.
func (db *DB) AppendTurn(ctx context.Context, userID, role, content string) error {
	query := `INSERT INTO conversations (id, user_id, role, content, created_at) VALUES (?, ?, ?, ?, ?)`

	start := time.Now()
	_, err := db.conn.ExecContext(ctx, query, uuid.NewString(), userID, role, content, time.Now().Unix())
	if err != nil {
		slog.ErrorContext(ctx, "failed to append turn",
			"user_id", userID,
			"role", role,
			"error", err)
		return fmt.Errorf("append turn: %w", err)
	}

	if duration := time.Since(start); duration > slowQueryThreshold {
		slog.WarnContext(ctx, "slow database operation",
			"operation", "AppendTurn",
			"duration_ms", duration.Milliseconds(),
			"user_id", userID)
	}
	return nil
}

// GetRecentTurns returns the most recent n turns for a user in
// chronological order (oldest first).
// The rowid tiebreak keeps read order aligned with write order when
// several turns share a created_at second.
func (db *DB) GetRecentTurns(ctx context.Context, userID string, n int) ([]ConversationTurn, error) {
	if n <= 0 {
		return nil, nil
	}

	query := `
		SELECT id, user_id, role, content, created_at FROM conversations
		WHERE user_id = ?
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?
	`

	start := time.Now()
	rows, err := db.conn.QueryContext(ctx, query, userID, n)
	if err != nil {
		slog.ErrorContext(ctx, "failed to query turns",
			"user_id", userID,
			"error", err)
		return nil, fmt.Errorf("query turns: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var turns []ConversationTurn
	for rows.Next() {
		var turn ConversationTurn
		if err := rows.Scan(&turn.ID, &turn.UserID, &turn.Role, &turn.Content, &turn.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan turn: %w", err)
		}
		turns = append(turns, turn)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Reverse to chronological order
	for i, j := 0, len(turns)-1; i < j; i, j = i+1, j-1 {
		turns[i], turns[j] = turns[j], turns[i]
	}

	if duration := time.Since(start); duration > slowQueryThreshold {
		slog.WarnContext(ctx, "slow database query",
			"operation", "GetRecentTurns",
			"duration_ms", duration.Milliseconds(),
			"user_id", userID,
			"result_count", len(turns))
	}

	return turns, nil
}

// TruncateTurns deletes all turns for a user.
func (db *DB) TruncateTurns(ctx context.Context, userID string) error {
	query := `DELETE FROM conversations WHERE user_id = ?`

	if _, err := db.conn.ExecContext(ctx, query, userID); err != nil {
		slog.ErrorContext(ctx, "failed to truncate turns",
			"user_id", userID,
			"error", err)
		return fmt.Errorf("truncate turns: %w", err)
	}
	return nil
}

// CountTurns returns the number of turns logged for a user.
func (db *DB) CountTurns(ctx context.Context, userID string) (int, error) {
	query := `SELECT COUNT(*) FROM conversations WHERE user_id = ?`

	var count int
	if err := db.conn.QueryRowContext(ctx, query, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count turns: %w", err)
	}
	return count, nil
}

// ListTurnsBefore returns up to limit turns created before the cutoff,
// oldest first. Used by the retention archiver.
func (db *DB) ListTurnsBefore(ctx context.Context, cutoff time.Time, limit int) ([]ConversationTurn, error) {
	query := `
		SELECT id, user_id, role, content, created_at FROM conversations
		WHERE created_at < ?
		ORDER BY created_at ASC, rowid ASC
		LIMIT ?
	`

	rows, err := db.conn.QueryContext(ctx, query, cutoff.Unix(), limit)
	if err != nil {
		return nil, fmt.Errorf("list turns before cutoff: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var turns []ConversationTurn
	for rows.Next() {
		var turn ConversationTurn
		if err := rows.Scan(&turn.ID, &turn.UserID, &turn.Role, &turn.Content, &turn.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan turn: %w", err)
		}
		turns = append(turns, turn)
	}

	return turns, rows.Err()
}

// DeleteTurnsBefore deletes all turns created before the cutoff.
// Returns the number of deleted rows.
func (db *DB) DeleteTurnsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `DELETE FROM conversations WHERE created_at < ?`

	start := time.Now()
	res, err := db.conn.ExecContext(ctx, query, cutoff.Unix())
	if err != nil {
		slog.ErrorContext(ctx, "failed to delete expired turns",
			"cutoff", cutoff.Unix(),
			"error", err)
		return 0, fmt.Errorf("delete turns before cutoff: %w", err)
	}

	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}

	if duration := time.Since(start); duration > slowQueryThreshold {
		slog.WarnContext(ctx, "slow database operation",
			"operation", "DeleteTurnsBefore",
			"duration_ms", duration.Milliseconds(),
			"deleted", deleted)
	}

	return deleted, nil
}

// GetGroup retrieves translation settings for a group.
// Returns (nil, nil) when the group has no stored settings.
func (db *DB) GetGroup(ctx context.Context, groupID string) (*GroupChannel, error) {
	query := `SELECT group_id, translate_enabled, target_language, enabled_by, updated_at FROM group_channels WHERE group_id = ?`

	var group GroupChannel
	var enabled int
	err := db.conn.QueryRowContext(ctx, query, groupID).Scan(
		&group.GroupID,
		&enabled,
		&group.TargetLanguage,
		&group.EnabledBy,
		&group.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to query group",
			"group_id", groupID,
			"error", err)
		return nil, fmt.Errorf("query group: %w", err)
	}

	group.TranslateEnabled = enabled != 0
	return &group, nil
}

// SetGroupTranslation persists translation settings for a group.
func (db *DB) SetGroupTranslation(ctx context.Context, groupID string, enabled bool, targetLanguage, enabledBy string) error {
	query := `
		INSERT INTO group_channels (group_id, translate_enabled, target_language, enabled_by, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(group_id) DO UPDATE SET
			translate_enabled = excluded.translate_enabled,
			target_language = excluded.target_language,
			enabled_by = excluded.enabled_by,
			updated_at = excluded.updated_at
	`

	enabledInt := 0
	if enabled {
		enabledInt = 1
	}

	_, err := db.conn.ExecContext(ctx, query, groupID, enabledInt, targetLanguage, enabledBy, time.Now().Unix())
	if err != nil {
		slog.ErrorContext(ctx, "failed to set group translation",
			"group_id", groupID,
			"error", err)
		return fmt.Errorf("set group translation: %w", err)
	}
	return nil
}

// Ping verifies database connection is alive.
func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

// Ready checks if database is ready to serve queries.
// Performs a real query against the users table.
func (db *DB) Ready(ctx context.Context) error {
	var count int
	if err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return fmt.Errorf("readiness query: %w", err)
	}
	return nil
}

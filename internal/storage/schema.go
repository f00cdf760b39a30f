package storage

import (
	"context"
	"database/sql"
	"fmt"
)

// InitSchema creates all necessary tables and indexes.
// Note: WAL mode is configured in db.go's New function.
func InitSchema(db *sql.DB) error {
	if err := createUsersTable(db); err != nil {
		return err
	}

	if err := createConversationsTable(db); err != nil {
		return err
	}

	return createGroupChannelsTable(db)
}

func createUsersTable(db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS users (
		user_id TEXT PRIMARY KEY,
		language TEXT NOT NULL,
		rich_menu_id TEXT NOT NULL DEFAULT '',
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL,
		last_seen_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_users_language ON users(language);
	CREATE INDEX IF NOT EXISTS idx_users_last_seen_at ON users(last_seen_at);
	`

	if _, err := db.ExecContext(context.Background(), query); err != nil {
		return fmt.Errorf("failed to create users table: %w", err)
	}

	return nil
}

func createConversationsTable(db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS conversations (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		role TEXT NOT NULL CHECK(role IN ('user', 'assistant')),
		content TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_conversations_user_created ON conversations(user_id, created_at);
	CREATE INDEX IF NOT EXISTS idx_conversations_created_at ON conversations(created_at);
	`

	if _, err := db.ExecContext(context.Background(), query); err != nil {
		return fmt.Errorf("failed to create conversations table: %w", err)
	}

	return nil
}

func createGroupChannelsTable(db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS group_channels (
		group_id TEXT PRIMARY KEY,
		translate_enabled INTEGER NOT NULL DEFAULT 0,
		target_language TEXT NOT NULL DEFAULT '',
		enabled_by TEXT NOT NULL DEFAULT '',
		updated_at INTEGER NOT NULL
	);
	`

	if _, err := db.ExecContext(context.Background(), query); err != nil {
		return fmt.Errorf("failed to create group_channels table: %w", err)
	}

	return nil
}

// Package userstate resolves and mutates per-user conversational state:
// the sticky language choice and the first-contact bootstrap. All state
// transitions for one user are serialized through a per-user lock so
// concurrent webhook events cannot interleave partial updates.
package userstate

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/imigo-bot/imigo-linebot-go/internal/catalog"
	apperrors "github.com/imigo-bot/imigo-linebot-go/internal/errors"
	"github.com/imigo-bot/imigo-linebot-go/internal/genai"
	"github.com/imigo-bot/imigo-linebot-go/internal/storage"
)

// defaultDetectTimeout bounds the language detection done on first
// contact. Detection is best effort; on timeout the default language
// applies.
const defaultDetectTimeout = 3 * time.Second

// Config configures a Manager.
type Config struct {
	// DefaultLanguage applies when detection is inconclusive.
	DefaultLanguage catalog.Code

	// Detector classifies the language of a first message. Optional;
	// without it every new user starts in the default language.
	Detector genai.Detector

	// DetectTimeout bounds a single detection call. Zero means the
	// package default.
	DetectTimeout time.Duration
}

// Manager owns per-user state transitions over the user repository.
type Manager struct {
	users         storage.UserRepository
	detector      genai.Detector
	defaultLang   catalog.Code
	detectTimeout time.Duration
	locks         *keyedMutex
}

// NewManager creates a manager over the given user repository.
func NewManager(users storage.UserRepository, cfg Config) *Manager {
	if cfg.DefaultLanguage == "" {
		cfg.DefaultLanguage = catalog.Indonesian
	}
	if cfg.DetectTimeout <= 0 {
		cfg.DetectTimeout = defaultDetectTimeout
	}
	return &Manager{
		users:         users,
		detector:      cfg.Detector,
		defaultLang:   cfg.DefaultLanguage,
		detectTimeout: cfg.DetectTimeout,
		locks:         newKeyedMutex(),
	}
}

// Lock serializes processing for one user and returns the release
// function. Callers must release before any long external call that
// does not touch user state, in particular before AI completions.
func (m *Manager) Lock(userID string) (unlock func()) {
	m.locks.lock(userID)
	return func() { m.locks.unlock(userID) }
}

// ActiveLocks reports the number of users currently being processed.
func (m *Manager) ActiveLocks() int {
	return m.locks.size()
}

// Resolve loads the user record, creating it on first contact. For a
// new user the language is detected from the first message text, with
// the default language as fallback. The returned bool reports whether
// this was the user's first contact.
func (m *Manager) Resolve(ctx context.Context, userID, firstText string) (*storage.User, bool, error) {
	user, err := m.users.GetUser(ctx, userID)
	if err != nil {
		return nil, false, fmt.Errorf("resolve user %s: %w", userID, err)
	}
	if user != nil {
		if err := m.users.TouchUser(ctx, userID); err != nil {
			slog.WarnContext(ctx, "failed to update last seen",
				slog.String("user_id", userID),
				slog.Any("error", err))
		}
		return user, false, nil
	}

	lang := m.detectLanguage(ctx, firstText)
	user = &storage.User{
		ID:       userID,
		Language: string(lang),
	}
	if err := m.users.UpsertUser(ctx, user); err != nil {
		return nil, false, fmt.Errorf("create user %s: %w", userID, err)
	}

	slog.InfoContext(ctx, "new user registered",
		slog.String("user_id", userID),
		slog.String("language", string(lang)))
	return user, true, nil
}

// SetLanguage validates and applies a language change. An unsupported
// code leaves the current language untouched and returns a validation
// error naming the valid codes.
func (m *Manager) SetLanguage(ctx context.Context, user *storage.User, code string) error {
	norm, ok := catalog.Normalize(code)
	if !ok {
		return apperrors.NewValidationError("language",
			fmt.Sprintf("unsupported code %q, valid codes: %s", code, catalog.SupportedList()))
	}

	if user.Language == string(norm) {
		return nil
	}
	if err := m.users.SetUserLanguage(ctx, user.ID, string(norm)); err != nil {
		return fmt.Errorf("set language for user %s: %w", user.ID, err)
	}
	user.Language = string(norm)
	return nil
}

// DefaultLanguage returns the configured fallback language.
func (m *Manager) DefaultLanguage() catalog.Code {
	return m.defaultLang
}

// detectLanguage classifies the first message, falling back to the
// default language when the text is empty, the detector is absent, or
// detection is inconclusive.
func (m *Manager) detectLanguage(ctx context.Context, text string) catalog.Code {
	if m.detector == nil || strings.TrimSpace(text) == "" {
		return m.defaultLang
	}

	dctx, cancel := context.WithTimeout(ctx, m.detectTimeout)
	defer cancel()

	code := m.detector.Detect(dctx, text)
	if code == "" {
		return m.defaultLang
	}
	norm, ok := catalog.Normalize(code)
	if !ok {
		slog.WarnContext(ctx, "detector returned unsupported code",
			slog.String("code", code))
		return m.defaultLang
	}
	return norm
}

package richmenu

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/imigo-bot/imigo-linebot-go/internal/catalog"
	apperrors "github.com/imigo-bot/imigo-linebot-go/internal/errors"
	"github.com/imigo-bot/imigo-linebot-go/internal/metrics"
	"github.com/imigo-bot/imigo-linebot-go/internal/storage"
)

// Metric status labels for menu sync attempts.
const (
	syncStatusSuccess   = "success"
	syncStatusUnchanged = "unchanged"
	syncStatusError     = "error"
	syncStatusMissing   = "missing_artifact"
)

// defaultSyncTimeout bounds the external calls of a single user sync.
const defaultSyncTimeout = 10 * time.Second

// Syncer keeps each user's linked rich menu consistent with their
// language. Sync is safe to call after every interaction: when the
// stored pointer already matches it makes no external calls.
type Syncer struct {
	api      MenuAPI
	registry *Registry
	users    storage.UserRepository
	metrics  *metrics.Metrics
	timeout  time.Duration
}

// NewSyncer creates a syncer. Metrics may be nil in tests.
func NewSyncer(api MenuAPI, reg *Registry, users storage.UserRepository, m *metrics.Metrics) *Syncer {
	return &Syncer{
		api:      api,
		registry: reg,
		users:    users,
		metrics:  m,
		timeout:  defaultSyncTimeout,
	}
}

// Sync links the menu for the user's language, replacing whatever menu
// the user currently has. The stored menu pointer is only updated after
// the platform confirms the link, so a failed sync leaves the previous
// pointer intact and the next interaction retries.
func (s *Syncer) Sync(ctx context.Context, user *storage.User) error {
	start := time.Now()
	lang := catalog.Code(user.Language)

	want, ok := s.registry.Get(lang)
	if !ok || want == "" {
		s.record(lang, syncStatusMissing, start)
		return fmt.Errorf("language %s: %w", lang, apperrors.ErrMissingArtifact)
	}

	if user.RichMenuID == want {
		s.record(lang, syncStatusUnchanged, start)
		return nil
	}

	// A stored pointer that no longer matches any known menu means the
	// platform state drifted, e.g. menus were recreated. The forced
	// relink below heals it.
	if user.RichMenuID != "" {
		if _, known := s.registry.LanguageFor(user.RichMenuID); !known {
			slog.WarnContext(ctx, "stored rich menu unknown, forcing relink",
				slog.String("user_id", user.ID),
				slog.String("stored_menu_id", user.RichMenuID),
				slog.Any("error", apperrors.ErrConsistencyViolation))
		}
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if user.RichMenuID != "" {
		if err := s.api.UnlinkUser(ctx, user.ID); err != nil {
			s.record(lang, syncStatusError, start)
			return apperrors.NewSyncError(user.ID, want, err)
		}
	}
	if err := s.api.LinkUser(ctx, user.ID, want); err != nil {
		s.record(lang, syncStatusError, start)
		return apperrors.NewSyncError(user.ID, want, err)
	}

	if err := s.users.SetUserRichMenu(ctx, user.ID, want); err != nil {
		s.record(lang, syncStatusError, start)
		return fmt.Errorf("persist rich menu for user %s: %w", user.ID, err)
	}
	user.RichMenuID = want

	s.record(lang, syncStatusSuccess, start)
	return nil
}

// SyncAll re-syncs every known user, typically after menus were
// recreated. Failures are counted rather than aborting the pass, so one
// unreachable user does not block the rest.
func (s *Syncer) SyncAll(ctx context.Context) (synced, failed int, err error) {
	ids, err := s.users.ListUserIDs(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("sync all rich menus: %w", err)
	}

	var (
		okCount   int
		failCount int
	)
	results := make(chan bool, len(ids))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for _, id := range ids {
		id := id
		g.Go(func() error {
			user, err := s.users.GetUser(ctx, id)
			if err != nil || user == nil {
				results <- false
				return nil
			}
			if err := s.Sync(ctx, user); err != nil {
				slog.WarnContext(ctx, "rich menu sync failed",
					slog.String("user_id", id),
					slog.Any("error", err))
				results <- false
				return nil
			}
			results <- true
			return nil
		})
	}
	_ = g.Wait()
	close(results)

	for ok := range results {
		if ok {
			okCount++
		} else {
			failCount++
		}
	}
	return okCount, failCount, nil
}

func (s *Syncer) record(lang catalog.Code, status string, start time.Time) {
	if s.metrics == nil {
		return
	}
	s.metrics.RecordMenuSync(string(lang), status, time.Since(start).Seconds())
}

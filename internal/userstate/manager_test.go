package userstate

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/imigo-bot/imigo-linebot-go/internal/catalog"
	apperrors "github.com/imigo-bot/imigo-linebot-go/internal/errors"
	"github.com/imigo-bot/imigo-linebot-go/internal/storage"
)

// fixedDetector always returns the same code.
type fixedDetector struct {
	code  string
	calls int
}

func (d *fixedDetector) Detect(context.Context, string) string {
	d.calls++
	return d.code
}

func setupManager(t *testing.T, cfg Config) (*Manager, *storage.DB) {
	t.Helper()

	db, err := storage.NewTestDB()
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return NewManager(db, cfg), db
}

func TestResolveFirstContactDetectsLanguage(t *testing.T) {
	det := &fixedDetector{code: "vi"}
	mgr, db := setupManager(t, Config{DefaultLanguage: catalog.Indonesian, Detector: det})
	ctx := context.Background()

	user, first, err := mgr.Resolve(ctx, "U1", "xin chào")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !first {
		t.Fatal("first contact not reported")
	}
	if user.Language != "vi" {
		t.Fatalf("language = %q, want vi", user.Language)
	}

	stored, err := db.GetUser(ctx, "U1")
	if err != nil || stored == nil {
		t.Fatalf("user not persisted: %v", err)
	}
	if stored.Language != "vi" {
		t.Fatalf("persisted language = %q, want vi", stored.Language)
	}
}

func TestResolveFallsBackToDefault(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		text string
	}{
		{"no detector", Config{DefaultLanguage: catalog.Indonesian}, "hello there"},
		{"inconclusive", Config{DefaultLanguage: catalog.Indonesian, Detector: &fixedDetector{code: ""}}, "zzz"},
		{"unsupported code", Config{DefaultLanguage: catalog.Indonesian, Detector: &fixedDetector{code: "fr"}}, "bonjour"},
		{"empty text", Config{DefaultLanguage: catalog.Indonesian, Detector: &fixedDetector{code: "vi"}}, "   "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mgr, _ := setupManager(t, tt.cfg)

			user, first, err := mgr.Resolve(context.Background(), "U1", tt.text)
			if err != nil {
				t.Fatalf("Resolve: %v", err)
			}
			if !first {
				t.Fatal("first contact not reported")
			}
			if user.Language != "id" {
				t.Fatalf("language = %q, want default id", user.Language)
			}
		})
	}
}

func TestResolveExistingUserIsSticky(t *testing.T) {
	det := &fixedDetector{code: "en"}
	mgr, db := setupManager(t, Config{DefaultLanguage: catalog.Indonesian, Detector: det})
	ctx := context.Background()

	if err := db.UpsertUser(ctx, &storage.User{ID: "U1", Language: "zh"}); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	detectionsBefore := det.calls

	user, first, err := mgr.Resolve(ctx, "U1", "hello in english")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if first {
		t.Fatal("known user reported as first contact")
	}
	if user.Language != "zh" {
		t.Fatalf("language = %q, want sticky zh", user.Language)
	}
	if det.calls != detectionsBefore {
		t.Fatal("detector called for a known user")
	}
}

func TestSetLanguage(t *testing.T) {
	mgr, db := setupManager(t, Config{DefaultLanguage: catalog.Indonesian})
	ctx := context.Background()

	user, _, err := mgr.Resolve(ctx, "U1", "")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	if err := mgr.SetLanguage(ctx, user, "vi"); err != nil {
		t.Fatalf("SetLanguage: %v", err)
	}
	if user.Language != "vi" {
		t.Fatalf("in-memory language = %q, want vi", user.Language)
	}
	stored, _ := db.GetUser(ctx, "U1")
	if stored.Language != "vi" {
		t.Fatalf("persisted language = %q, want vi", stored.Language)
	}
}

func TestSetLanguageRejectsUnsupported(t *testing.T) {
	mgr, db := setupManager(t, Config{DefaultLanguage: catalog.Indonesian})
	ctx := context.Background()

	user, _, err := mgr.Resolve(ctx, "U1", "")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	err = mgr.SetLanguage(ctx, user, "fr")
	if !errors.Is(err, apperrors.ErrInvalidArgument) {
		t.Fatalf("got %v, want invalid argument", err)
	}
	if user.Language != "id" {
		t.Fatalf("language changed to %q on invalid input", user.Language)
	}
	stored, _ := db.GetUser(ctx, "U1")
	if stored.Language != "id" {
		t.Fatalf("persisted language changed to %q on invalid input", stored.Language)
	}
}

func TestLockSerializesPerUser(t *testing.T) {
	mgr, _ := setupManager(t, Config{DefaultLanguage: catalog.Indonesian})

	var (
		mu      sync.Mutex
		inside  int
		maxSeen int
	)
	const workers = 8

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := mgr.Lock("U1")
			defer unlock()

			mu.Lock()
			inside++
			if inside > maxSeen {
				maxSeen = inside
			}
			mu.Unlock()

			mu.Lock()
			inside--
			mu.Unlock()
		}()
	}
	wg.Wait()

	if maxSeen != 1 {
		t.Fatalf("critical section held by %d goroutines at once", maxSeen)
	}
	if mgr.ActiveLocks() != 0 {
		t.Fatalf("%d lock entries leaked", mgr.ActiveLocks())
	}
}

func TestLockIndependentUsers(t *testing.T) {
	mgr, _ := setupManager(t, Config{DefaultLanguage: catalog.Indonesian})

	unlockA := mgr.Lock("U1")
	done := make(chan struct{})
	go func() {
		unlockB := mgr.Lock("U2")
		unlockB()
		close(done)
	}()

	<-done
	unlockA()
}

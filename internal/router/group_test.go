package router

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/imigo-bot/imigo-linebot-go/internal/catalog"
)

func TestGroupTranslateEnable(t *testing.T) {
	r, db := newTestRouter(t, &fakeCompleter{}, &fakeTranslator{})
	ctx := context.Background()

	msgs := r.HandleGroup(ctx, "G1", "U1", "/translate on vi")
	if len(msgs) != 1 {
		t.Fatalf("got %d messages, want 1", len(msgs))
	}
	got := messageText(t, msgs[0])
	if strings.Contains(got, "%s") {
		t.Fatalf("reply %q contains an unformatted placeholder", got)
	}
	if !strings.Contains(got, catalog.Vietnamese.DisplayName()) {
		t.Fatalf("reply %q missing target language name", got)
	}

	group, err := db.GetGroup(ctx, "G1")
	if err != nil || group == nil {
		t.Fatalf("group not persisted: %v", err)
	}
	if !group.TranslateEnabled || group.TargetLanguage != "vi" || group.EnabledBy != "U1" {
		t.Fatalf("group settings = %+v", group)
	}
}

func TestGroupTranslatesMessagesWhenEnabled(t *testing.T) {
	translator := &fakeTranslator{}
	r, db := newTestRouter(t, &fakeCompleter{}, translator)
	ctx := context.Background()
	if err := db.SetGroupTranslation(ctx, "G1", true, "zh", "U1"); err != nil {
		t.Fatalf("seed group: %v", err)
	}

	msgs := r.HandleGroup(ctx, "G1", "U2", "selamat pagi semua")
	if len(msgs) != 1 {
		t.Fatalf("got %d messages, want 1", len(msgs))
	}
	got := messageText(t, msgs[0])
	if !strings.HasPrefix(got, translatePrefix) {
		t.Fatalf("reply %q missing translate prefix", got)
	}
	if !strings.Contains(got, "[zh]") {
		t.Fatalf("reply %q not translated to target language", got)
	}
	if translator.calls != 1 {
		t.Fatalf("translator called %d times, want 1", translator.calls)
	}
}

func TestGroupSilentWhenDisabled(t *testing.T) {
	translator := &fakeTranslator{}
	r, _ := newTestRouter(t, &fakeCompleter{}, translator)

	if msgs := r.HandleGroup(context.Background(), "G1", "U1", "hello everyone"); msgs != nil {
		t.Fatalf("disabled group produced %d messages", len(msgs))
	}
	if translator.calls != 0 {
		t.Fatal("translator called for disabled group")
	}
}

func TestGroupTranslateOff(t *testing.T) {
	r, db := newTestRouter(t, &fakeCompleter{}, &fakeTranslator{})
	ctx := context.Background()
	if err := db.SetGroupTranslation(ctx, "G1", true, "vi", "U1"); err != nil {
		t.Fatalf("seed group: %v", err)
	}

	msgs := r.HandleGroup(ctx, "G1", "U1", "/translate off")
	if got := messageText(t, msgs[0]); got != catalog.Message(catalog.Vietnamese, catalog.MsgTranslationDisabled) {
		t.Fatalf("reply = %q", got)
	}

	group, _ := db.GetGroup(ctx, "G1")
	if group == nil || group.TranslateEnabled {
		t.Fatalf("group still enabled: %+v", group)
	}
}

func TestGroupTranslateInvalidArgs(t *testing.T) {
	r, db := newTestRouter(t, &fakeCompleter{}, &fakeTranslator{})
	ctx := context.Background()

	for _, cmd := range []string{"/translate", "/translate on", "/translate on xx", "/translate maybe"} {
		msgs := r.HandleGroup(ctx, "G1", "U1", cmd)
		if len(msgs) != 1 {
			t.Fatalf("%q: got %d messages, want usage reply", cmd, len(msgs))
		}
		if got := messageText(t, msgs[0]); got != translateUsage {
			t.Fatalf("%q: reply = %q", cmd, got)
		}
	}

	if group, _ := db.GetGroup(ctx, "G1"); group != nil {
		t.Fatalf("invalid command persisted settings: %+v", group)
	}
}

func TestGroupTranslationFailureIsSilent(t *testing.T) {
	translator := &fakeTranslator{err: errors.New("model overloaded")}
	r, db := newTestRouter(t, &fakeCompleter{}, translator)
	ctx := context.Background()
	if err := db.SetGroupTranslation(ctx, "G1", true, "en", "U1"); err != nil {
		t.Fatalf("seed group: %v", err)
	}

	if msgs := r.HandleGroup(ctx, "G1", "U2", "xin chào"); msgs != nil {
		t.Fatalf("failed translation produced %d messages", len(msgs))
	}
}

func TestGroupTranslateAdminOnly(t *testing.T) {
	r, db := newTestRouterConfig(t, &fakeCompleter{}, &fakeTranslator{}, Config{
		IsAdmin: func(userID string) bool { return userID == "Uadmin" },
	})
	ctx := context.Background()

	msgs := r.HandleGroup(ctx, "G1", "Umember", "/translate on vi")
	if len(msgs) != 1 {
		t.Fatalf("got %d messages, want admin-only reply", len(msgs))
	}
	if got := messageText(t, msgs[0]); got != catalog.Message(catalog.English, catalog.MsgAdminOnly) {
		t.Fatalf("reply = %q", got)
	}
	if group, _ := db.GetGroup(ctx, "G1"); group != nil {
		t.Fatalf("non-admin toggle persisted settings: %+v", group)
	}

	msgs = r.HandleGroup(ctx, "G1", "Uadmin", "/translate on vi")
	if got := messageText(t, msgs[0]); !strings.Contains(got, catalog.Vietnamese.DisplayName()) {
		t.Fatalf("admin toggle reply = %q", got)
	}
	group, _ := db.GetGroup(ctx, "G1")
	if group == nil || !group.TranslateEnabled || group.EnabledBy != "Uadmin" {
		t.Fatalf("group settings = %+v", group)
	}
}

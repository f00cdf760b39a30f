package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/imigo-bot/imigo-linebot-go/internal/catalog"
	"github.com/imigo-bot/imigo-linebot-go/internal/config"
	"github.com/imigo-bot/imigo-linebot-go/internal/genai"
	"github.com/imigo-bot/imigo-linebot-go/internal/logger"
	"github.com/imigo-bot/imigo-linebot-go/internal/metrics"
	"github.com/imigo-bot/imigo-linebot-go/internal/richmenu"
	"github.com/imigo-bot/imigo-linebot-go/internal/router"
	"github.com/imigo-bot/imigo-linebot-go/internal/storage"
	"github.com/imigo-bot/imigo-linebot-go/internal/userstate"
	"github.com/imigo-bot/imigo-linebot-go/internal/webhook"
)

type noopCompleter struct{}

func (noopCompleter) Complete(_ context.Context, _ string, _ []genai.Turn) (string, error) {
	return "ok", nil
}

type noopMenuAPI struct{}

func (noopMenuAPI) ListMenus(_ context.Context) ([]richmenu.MenuInfo, error) { return nil, nil }
func (noopMenuAPI) CreateMenu(_ context.Context, _ richmenu.Definition) (string, error) {
	return "richmenu-test", nil
}
func (noopMenuAPI) UploadImage(_ context.Context, _ string, _ []byte) error { return nil }
func (noopMenuAPI) SetDefault(_ context.Context, _ string) error            { return nil }
func (noopMenuAPI) LinkUser(_ context.Context, _, _ string) error           { return nil }
func (noopMenuAPI) UnlinkUser(_ context.Context, _ string) error            { return nil }

// setupTestApp assembles an Application on an in-memory database without
// calling Initialize, so no network clients are required.
func setupTestApp(t *testing.T, metricsPassword string) *Application {
	t.Helper()

	db, err := storage.NewTestDB()
	if err != nil {
		t.Fatalf("create test database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	registry := prometheus.NewRegistry()
	m := metrics.New(registry)
	log := logger.New("error")

	cfg := &config.Config{
		Port:             "0",
		MetricsUsername:  "prometheus",
		MetricsPassword:  metricsPassword,
		HistoryWindow:    10,
		HistoryRetention: config.DefaultHistoryRetention,
		ShutdownTimeout:  5 * time.Second,
		Bot: config.BotConfig{
			WebhookTimeout:            30 * time.Second,
			UserRateLimitBurst:        15,
			UserRateLimitRefillPerSec: 0.1,
			AIBurstTokens:             20,
			AIRefillPerHour:           30,
			GlobalRateLimitRPS:        100,
			MaxMessagesPerReply:       5,
			MaxEventsPerWebhook:       100,
			MinReplyTokenLength:       10,
		},
	}

	menuRegistry := richmenu.NewRegistry()
	syncer := richmenu.NewSyncer(noopMenuAPI{}, menuRegistry, db, m)

	users := userstate.NewManager(db, userstate.Config{DefaultLanguage: catalog.Indonesian})
	rt := router.New(users, db, db, noopCompleter{}, nil, syncer, m, router.Config{})

	handler, err := webhook.NewHandler(webhook.HandlerConfig{
		ChannelSecret:   "secret",
		ChannelToken:    "token",
		BotConfig:       &cfg.Bot,
		Metrics:         m,
		Logger:          log,
		Router:          rt,
		Users:           db,
		DefaultLanguage: catalog.Indonesian,
	})
	if err != nil {
		t.Fatalf("create webhook handler: %v", err)
	}
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = handler.Shutdown(ctx)
	})

	return &Application{
		cfg:            cfg,
		logger:         log,
		db:             db,
		metrics:        m,
		registry:       registry,
		menuRegistry:   menuRegistry,
		menuAPI:        noopMenuAPI{},
		syncer:         syncer,
		webhookHandler: handler,
		defaultLang:    catalog.Indonesian,
	}
}

func seedMenus(reg *richmenu.Registry) {
	for _, lang := range catalog.Codes() {
		reg.Set(lang, "richmenu-"+string(lang))
	}
}

func doRequest(app *Application, method, path string, opts ...func(*http.Request)) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	r := app.buildRouter()

	req := httptest.NewRequest(method, path, nil)
	for _, opt := range opts {
		opt(req)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func withBasicAuth(user, pass string) func(*http.Request) {
	return func(req *http.Request) {
		req.SetBasicAuth(user, pass)
	}
}

func TestLivenessCheck(t *testing.T) {
	t.Parallel()
	app := setupTestApp(t, "")

	w := doRequest(app, http.MethodGet, "/livez")
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
}

func TestReadinessBeforeMenuBootstrap(t *testing.T) {
	t.Parallel()
	app := setupTestApp(t, "")

	w := doRequest(app, http.MethodGet, "/readyz")
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusServiceUnavailable)
	}

	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["reason"] != "rich menu bootstrap incomplete" {
		t.Errorf("reason = %v, want bootstrap incomplete", body["reason"])
	}
}

func TestReadinessAfterMenuBootstrap(t *testing.T) {
	t.Parallel()
	app := setupTestApp(t, "")
	seedMenus(app.menuRegistry)

	w := doRequest(app, http.MethodGet, "/readyz")
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d, body %s", w.Code, http.StatusOK, w.Body.String())
	}
}

func TestMetricsRequiresAuth(t *testing.T) {
	t.Parallel()
	app := setupTestApp(t, "secret123")

	w := doRequest(app, http.MethodGet, "/metrics")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("without auth: status = %d, want %d", w.Code, http.StatusUnauthorized)
	}

	w = doRequest(app, http.MethodGet, "/metrics", withBasicAuth("prometheus", "secret123"))
	if w.Code != http.StatusOK {
		t.Errorf("with auth: status = %d, want %d", w.Code, http.StatusOK)
	}
}

func TestAdminListRichMenus(t *testing.T) {
	t.Parallel()
	app := setupTestApp(t, "secret123")
	seedMenus(app.menuRegistry)

	w := doRequest(app, http.MethodGet, "/admin/richmenu", withBasicAuth("prometheus", "secret123"))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var body struct {
		Complete bool              `json:"complete"`
		Menus    map[string]string `json:"menus"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if !body.Complete {
		t.Error("expected complete = true")
	}
	if len(body.Menus) != len(catalog.Codes()) {
		t.Errorf("menus = %d entries, want %d", len(body.Menus), len(catalog.Codes()))
	}
}

func TestAdminSyncRejectedBeforeBootstrap(t *testing.T) {
	t.Parallel()
	app := setupTestApp(t, "secret123")

	w := doRequest(app, http.MethodPost, "/admin/richmenu/sync", withBasicAuth("prometheus", "secret123"))
	if w.Code != http.StatusConflict {
		t.Errorf("status = %d, want %d", w.Code, http.StatusConflict)
	}
}

func TestAdminSyncAllUsers(t *testing.T) {
	t.Parallel()
	app := setupTestApp(t, "secret123")
	seedMenus(app.menuRegistry)

	ctx := context.Background()
	if err := app.db.UpsertUser(ctx, &storage.User{ID: "U1", Language: string(catalog.Vietnamese)}); err != nil {
		t.Fatalf("seed user: %v", err)
	}

	w := doRequest(app, http.MethodPost, "/admin/richmenu/sync", withBasicAuth("prometheus", "secret123"))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d, body %s", w.Code, http.StatusOK, w.Body.String())
	}

	var body struct {
		Synced int `json:"synced"`
		Failed int `json:"failed"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Synced != 1 || body.Failed != 0 {
		t.Errorf("synced/failed = %d/%d, want 1/0", body.Synced, body.Failed)
	}
}

func TestRootRedirects(t *testing.T) {
	t.Parallel()
	app := setupTestApp(t, "")

	w := doRequest(app, http.MethodGet, "/")
	if w.Code != http.StatusTemporaryRedirect {
		t.Errorf("status = %d, want %d", w.Code, http.StatusTemporaryRedirect)
	}
	if loc := w.Header().Get("Location"); loc == "" {
		t.Error("expected Location header on redirect")
	}
}

// Package app provides application initialization and lifecycle management.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/imigo-bot/imigo-linebot-go/internal/archive"
	"github.com/imigo-bot/imigo-linebot-go/internal/buildinfo"
	"github.com/imigo-bot/imigo-linebot-go/internal/catalog"
	"github.com/imigo-bot/imigo-linebot-go/internal/config"
	"github.com/imigo-bot/imigo-linebot-go/internal/ctxutil"
	"github.com/imigo-bot/imigo-linebot-go/internal/genai"
	"github.com/imigo-bot/imigo-linebot-go/internal/logger"
	"github.com/imigo-bot/imigo-linebot-go/internal/metrics"
	"github.com/imigo-bot/imigo-linebot-go/internal/ratelimit"
	"github.com/imigo-bot/imigo-linebot-go/internal/richmenu"
	"github.com/imigo-bot/imigo-linebot-go/internal/router"
	"github.com/imigo-bot/imigo-linebot-go/internal/sentry"
	"github.com/imigo-bot/imigo-linebot-go/internal/storage"
	"github.com/imigo-bot/imigo-linebot-go/internal/userstate"
	"github.com/imigo-bot/imigo-linebot-go/internal/webhook"
)

// bootstrapRetryInterval is the wait between rich menu bootstrap attempts
// after a failure. The service stays not-ready until bootstrap succeeds.
const bootstrapRetryInterval = time.Minute

// Application manages the application lifecycle and dependencies.
type Application struct {
	cfg            *config.Config
	logger         *logger.Logger
	db             *storage.DB
	metrics        *metrics.Metrics
	registry       *prometheus.Registry
	menuRegistry   *richmenu.Registry
	menuAPI        richmenu.MenuAPI
	syncer         *richmenu.Syncer
	archiver       *archive.Archiver
	aiLimiter      *ratelimit.KeyedLimiter
	webhookHandler *webhook.Handler
	server         *http.Server
	defaultLang    catalog.Code
	wg             sync.WaitGroup
}

// Initialize creates and initializes a new application with all dependencies.
func Initialize(ctx context.Context, cfg *config.Config) (*Application, error) {
	log := logger.NewWithOptions(cfg.LogLevel, os.Stdout, logger.Options{
		BetterStackToken:    cfg.BetterStackToken,
		BetterStackEndpoint: cfg.BetterStackEndpoint,
	})

	log = log.WithField("service", "imigo-linebot-go")
	if host, err := os.Hostname(); err == nil && host != "" {
		log = log.WithField("instance_id", host)
	}

	// Default logger so package-level slog.*Context() calls pick up the
	// context values (user_id, chat_id, request_id) via ContextHandler.
	slog.SetDefault(log.Logger)

	log.WithFields(map[string]any{
		"version": buildinfo.Version,
		"commit":  buildinfo.Commit,
	}).Info("Initializing application...")
	if cfg.BetterStackToken != "" {
		log.WithField("endpoint", cfg.BetterStackEndpoint).Info("Better Stack logging enabled")
	}

	if err := sentry.Initialize(sentry.Config{
		DSN:         cfg.SentryDSN,
		Environment: cfg.SentryEnvironment,
		Release:     buildinfo.Version,
		SampleRate:  cfg.SentrySampleRate,
	}); err != nil {
		log.WithError(err).Warn("Sentry initialization failed")
	} else if sentry.IsEnabled() {
		log.WithField("environment", cfg.SentryEnvironment).Info("Sentry error tracking enabled")
	}

	db, err := storage.New(cfg.SQLitePath())
	if err != nil {
		return nil, fmt.Errorf("database: %w", err)
	}
	log.WithField("path", cfg.SQLitePath()).Info("Database connected")

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewBuildInfoCollector(),
	)
	m := metrics.New(registry)

	llm, err := genai.NewClient(genai.Config{
		APIKey:      cfg.AIAPIKey,
		BaseURL:     cfg.AIBaseURL,
		Model:       cfg.AIModel,
		Temperature: cfg.AITemperature,
		MaxTokens:   cfg.AIMaxTokens,
		Retry:       genai.DefaultRetryConfig(),
	}, m)
	if err != nil {
		return nil, fmt.Errorf("AI client: %w", err)
	}
	log.WithField("model", cfg.AIModel).Info("AI client ready")

	defaultLang, ok := catalog.Normalize(cfg.DefaultLanguage)
	if !ok {
		log.WithField("code", cfg.DefaultLanguage).Warn("Unsupported default language, using Indonesian")
		defaultLang = catalog.Indonesian
	}

	users := userstate.NewManager(db, userstate.Config{
		DefaultLanguage: defaultLang,
		Detector:        genai.NewLanguageDetector(llm),
	})

	lineClient, err := messaging_api.NewMessagingApiAPI(cfg.LineChannelToken)
	if err != nil {
		return nil, fmt.Errorf("messaging API client: %w", err)
	}

	menuRegistry := richmenu.NewRegistry()
	menuAPI := richmenu.NewLineMenuAPI(lineClient, cfg.LineChannelToken)
	syncer := richmenu.NewSyncer(menuAPI, menuRegistry, db, m)

	archiver, err := buildArchiver(ctx, cfg, db, m, log)
	if err != nil {
		return nil, err
	}

	aiLimiter := ratelimit.NewKeyedLimiter(ratelimit.KeyedConfig{
		Name:          "ai",
		Burst:         cfg.Bot.AIBurstTokens,
		RefillRate:    cfg.Bot.AIRefillPerHour / 3600,
		DailyLimit:    cfg.Bot.AIDailyLimit,
		CleanupPeriod: config.RateLimiterCleanupInterval,
		Metrics:       m,
	})

	routerCfg := router.Config{
		HistoryWindow: cfg.HistoryWindow,
		AITimeout:     config.AICompletion,
		AILimiter:     aiLimiter,
	}
	if len(cfg.AdminUserIDs) > 0 {
		routerCfg.IsAdmin = cfg.IsAdmin
	}
	rt := router.New(users, db, db, llm, llm, syncer, m, routerCfg)

	webhookHandler, err := webhook.NewHandler(webhook.HandlerConfig{
		ChannelSecret:   cfg.LineChannelSecret,
		ChannelToken:    cfg.LineChannelToken,
		BotConfig:       &cfg.Bot,
		Metrics:         m,
		Logger:          log,
		Router:          rt,
		Users:           db,
		DefaultLanguage: defaultLang,
	})
	if err != nil {
		return nil, fmt.Errorf("webhook: %w", err)
	}

	app := &Application{
		cfg:            cfg,
		logger:         log,
		db:             db,
		metrics:        m,
		registry:       registry,
		menuRegistry:   menuRegistry,
		menuAPI:        menuAPI,
		syncer:         syncer,
		archiver:       archiver,
		aiLimiter:      aiLimiter,
		webhookHandler: webhookHandler,
		defaultLang:    defaultLang,
	}

	app.server = &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           app.buildRouter(),
		ReadHeaderTimeout: config.WebhookHTTPRead,
		ReadTimeout:       config.WebhookHTTPRead,
		WriteTimeout:      config.WebhookHTTPWrite,
		IdleTimeout:       config.WebhookHTTPIdle,
	}

	log.Info("Initialization complete")
	return app, nil
}

// buildArchiver wires the R2 archive client when enabled; otherwise the
// archiver runs in delete-only retention mode.
func buildArchiver(ctx context.Context, cfg *config.Config, db *storage.DB, m *metrics.Metrics, log *logger.Logger) (*archive.Archiver, error) {
	instanceID, _ := os.Hostname()

	var store archive.ObjectStore
	if cfg.R2Enabled {
		r2, err := archive.NewR2Client(ctx, archive.R2Config{
			Endpoint:    fmt.Sprintf("https://%s.r2.cloudflarestorage.com", cfg.R2AccountID),
			AccessKeyID: cfg.R2AccessKeyID,
			SecretKey:   cfg.R2SecretAccessKey,
			BucketName:  cfg.R2BucketName,
		})
		if err != nil {
			return nil, fmt.Errorf("R2 client: %w", err)
		}
		store = r2
		log.WithField("bucket", cfg.R2BucketName).Info("Conversation archive enabled")
	} else {
		log.Info("R2 disabled, retention will delete without archiving")
	}

	archiver, err := archive.New(store, db, m, instanceID)
	if err != nil {
		return nil, fmt.Errorf("archiver: %w", err)
	}
	return archiver, nil
}

// buildRouter assembles the Gin engine and all HTTP routes.
func (a *Application) buildRouter() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(securityHeadersMiddleware())
	r.Use(loggingMiddleware(a.logger))
	if sentry.IsEnabled() {
		r.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	}

	r.GET("/", a.redirectToProject)
	r.GET("/livez", a.livenessCheck)
	r.HEAD("/livez", a.livenessCheck)
	r.GET("/readyz", a.readinessCheck)
	r.HEAD("/readyz", a.readinessCheck)
	r.POST("/webhook", a.webhookHandler.Handle)

	metricsAuth := metricsAuthMiddleware(a.cfg.MetricsPassword != "", a.cfg.MetricsUsername, a.cfg.MetricsPassword)
	r.GET("/metrics", metricsAuth,
		gin.WrapH(promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{})))

	admin := r.Group("/admin", metricsAuth)
	admin.GET("/richmenu", a.listRichMenus)
	admin.POST("/richmenu/sync", a.syncRichMenus)

	return r
}

func (a *Application) redirectToProject(c *gin.Context) {
	c.Redirect(http.StatusTemporaryRedirect, "https://github.com/imigo-bot/imigo-linebot-go")
}

func (a *Application) livenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "alive",
	})
}

// readinessCheck reports ready only when the database answers and every
// supported language has a rich menu artifact.
func (a *Application) readinessCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), config.ReadinessCheckTimeout)
	defer cancel()

	if err := a.db.Ping(ctx); err != nil {
		a.logger.WithError(err).Warn("Readiness check failed: database unavailable")
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not ready",
			"reason": "database unavailable",
		})
		return
	}
	if err := a.db.Ready(ctx); err != nil {
		a.logger.WithError(err).Warn("Readiness check failed: schema not ready")
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not ready",
			"reason": "database schema not ready",
		})
		return
	}

	if !a.menuRegistry.Complete() {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not ready",
			"reason": "rich menu bootstrap incomplete",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "ready",
		"database": "connected",
		"features": a.getFeatures(),
	})
}

func (a *Application) getFeatures() map[string]bool {
	return map[string]bool{
		"archive": a.cfg.R2Enabled,
		"sentry":  sentry.IsEnabled(),
	}
}

// listRichMenus returns the language to rich menu ID mapping.
func (a *Application) listRichMenus(c *gin.Context) {
	snapshot := a.menuRegistry.Snapshot()
	menus := make(map[string]string, len(snapshot))
	for lang, id := range snapshot {
		menus[string(lang)] = id
	}
	c.JSON(http.StatusOK, gin.H{
		"complete": a.menuRegistry.Complete(),
		"menus":    menus,
	})
}

// syncRichMenus relinks every known user to the menu for their language.
func (a *Application) syncRichMenus(c *gin.Context) {
	if !a.menuRegistry.Complete() {
		c.JSON(http.StatusConflict, gin.H{
			"error": "rich menu bootstrap incomplete",
		})
		return
	}

	synced, failed, err := a.syncer.SyncAll(c.Request.Context())
	if err != nil {
		a.logger.WithError(err).Error("Rich menu sync failed")
		sentry.CaptureExceptionWithContext(c.Request.Context(), err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":  err.Error(),
			"synced": synced,
			"failed": failed,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"synced": synced,
		"failed": failed,
	})
}

// Run starts the HTTP server and background jobs, then blocks until a
// shutdown signal arrives.
//
// Graceful shutdown sequence:
//  1. Cancel context so background jobs stop
//  2. Wait for background jobs to finish
//  3. Close resources in reverse initialization order
func (a *Application) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a.startBackgroundJobs(ctx)
	a.startHTTPServer()

	sig := a.waitForShutdownSignal()
	a.logger.WithField("signal", sig.String()).Info("Received shutdown signal")

	cancel()

	a.logger.Info("Waiting for background jobs to finish...")
	start := time.Now()
	a.wg.Wait()
	a.logger.WithField("duration_ms", time.Since(start).Milliseconds()).
		Info("All background jobs completed")

	return a.shutdown()
}

// startBackgroundJobs starts all background goroutines tracked by the WaitGroup.
func (a *Application) startBackgroundJobs(ctx context.Context) {
	a.wg.Go(func() {
		a.menuBootstrap(ctx)
	})
	a.wg.Go(func() {
		a.historyRetention(ctx)
	})
	a.wg.Go(func() {
		a.updateGaugeMetrics(ctx)
	})
}

// startHTTPServer starts the HTTP server in a goroutine.
func (a *Application) startHTTPServer() {
	go func() {
		a.logger.Infof("Starting HTTP server on :%s", a.cfg.Port)
		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.logger.WithError(err).Error("HTTP server error")
		}
	}()
}

// waitForShutdownSignal blocks until SIGINT/SIGTERM is received.
func (a *Application) waitForShutdownSignal() os.Signal {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	return <-quit
}

// shutdown stops the HTTP server, drains webhook events, and closes
// resources.
func (a *Application) shutdown() error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	a.logger.Info("Stopping HTTP server...")
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		a.logger.WithError(err).Error("HTTP server shutdown error")
	}

	a.logger.Info("Waiting for webhook events to complete...")
	if err := a.webhookHandler.Shutdown(shutdownCtx); err != nil {
		a.logger.WithError(err).Warn("Webhook handler shutdown timeout")
	}

	a.logger.Info("Closing resources...")
	a.aiLimiter.Stop()
	if err := a.db.Close(); err != nil {
		a.logger.WithError(err).WithField("component", "database").Error("Component close error")
	}

	sentry.Flush(2 * time.Second)

	a.logger.Info("Shutdown complete")
	return nil
}

// menuBootstrap creates or adopts the per-language rich menus. Retries
// until success; the readiness endpoint reports not-ready until then.
func (a *Application) menuBootstrap(ctx context.Context) {
	a.logger.Debug("Rich menu bootstrap job started")
	defer a.logger.Debug("Rich menu bootstrap job stopped")

	for {
		bootCtx, cancel := context.WithTimeout(ctx, config.MenuBootstrap)
		err := richmenu.Bootstrap(bootCtx, a.menuAPI, a.menuRegistry, a.defaultLang, a.cfg.MenuImageDir)
		cancel()
		if err == nil {
			a.logger.WithField("languages", len(a.menuRegistry.Snapshot())).
				Info("Rich menu bootstrap complete")
			return
		}

		a.logger.WithError(err).Error("Rich menu bootstrap failed")
		sentry.CaptureException(err)

		select {
		case <-ctx.Done():
			return
		case <-time.After(bootstrapRetryInterval):
		}
	}
}

// historyRetention periodically archives and deletes conversation turns
// older than the retention window.
func (a *Application) historyRetention(ctx context.Context) {
	a.logger.Debug("History retention job started")
	defer a.logger.Debug("History retention job stopped")

	select {
	case <-ctx.Done():
		return
	case <-time.After(config.HistoryCleanupInitialDelay):
	}

	a.runRetention(ctx)

	ticker := time.NewTicker(config.HistoryCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.runRetention(ctx)
		}
	}
}

func (a *Application) runRetention(ctx context.Context) {
	cutoff := time.Now().Add(-a.cfg.HistoryRetention)
	start := time.Now()

	archived, deleted, err := a.archiver.Run(ctx, cutoff)
	if err != nil {
		a.logger.WithError(err).Error("History retention failed")
		sentry.CaptureException(err)
		return
	}

	a.logger.WithField("archived", archived).
		WithField("deleted", deleted).
		WithField("duration_ms", time.Since(start).Milliseconds()).
		Info("History retention completed")
}

// updateGaugeMetrics periodically refreshes gauge metrics.
func (a *Application) updateGaugeMetrics(ctx context.Context) {
	a.logger.Debug("Gauge metrics job started")
	defer a.logger.Debug("Gauge metrics job stopped")

	ticker := time.NewTicker(config.MetricsUpdateInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.recordGaugeMetrics(ctx)
		}
	}
}

func (a *Application) recordGaugeMetrics(ctx context.Context) {
	counts, err := a.db.CountUsersByLanguage(ctx)
	if err != nil {
		a.logger.WithError(err).Warn("Failed to count users by language")
	} else {
		for lang, count := range counts {
			a.metrics.SetUsersByLanguage(lang, float64(count))
		}
	}

	a.metrics.SetRateLimiterActive("user", a.webhookHandler.UserLimiter().GetActiveCount())
	a.metrics.SetRateLimiterActive("ai", a.aiLimiter.GetActiveCount())
}

// securityHeadersMiddleware adds security headers to responses.
func securityHeadersMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-XSS-Protection", "1; mode=block")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Header("Content-Security-Policy", "default-src 'none'")
		c.Header("X-Permitted-Cross-Domain-Policies", "none")
		c.Next()
	}
}

// loggingMiddleware logs HTTP requests with status-based log levels:
// 5xx=Error, 4xx=Warn, 404=Debug, 3xx/2xx=Debug.
func loggingMiddleware(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		requestID := c.GetHeader("X-Request-Id")
		if requestID == "" {
			requestID = c.GetHeader("X-Correlation-Id")
		}
		if requestID != "" {
			ctx := ctxutil.WithRequestID(c.Request.Context(), requestID)
			c.Request = c.Request.WithContext(ctx)
		}

		c.Next()

		duration := time.Since(start)
		status := c.Writer.Status()

		entry := log.WithField("http_method", method).
			WithField("http_path", path).
			WithField("http_status", status).
			WithField("duration_ms", duration.Milliseconds()).
			WithField("client_ip", c.ClientIP())

		if requestID != "" {
			entry = entry.WithRequestID(requestID)
		}

		switch {
		case status >= 500:
			entry.Error("HTTP request failed")
		case status >= 400 && status != 404:
			entry.Warn("HTTP request rejected")
		default:
			entry.Debug("HTTP request completed")
		}
	}
}

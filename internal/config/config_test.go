package config

import (
	"os"
	"strings"
	"testing"
	"time"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("LINE_CHANNEL_ACCESS_TOKEN", "test_token")
	t.Setenv("LINE_CHANNEL_SECRET", "test_secret")
	t.Setenv("AI_API_KEY", "test_ai_key")
}

func TestLoad(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	// Check required fields
	if cfg.LineChannelToken != "test_token" {
		t.Errorf("Expected token 'test_token', got '%s'", cfg.LineChannelToken)
	}

	if cfg.LineChannelSecret != "test_secret" {
		t.Errorf("Expected secret 'test_secret', got '%s'", cfg.LineChannelSecret)
	}

	if cfg.AIAPIKey != "test_ai_key" {
		t.Errorf("Expected AI key 'test_ai_key', got '%s'", cfg.AIAPIKey)
	}

	// Check defaults
	if cfg.Port != "10000" {
		t.Errorf("Expected default port '10000', got '%s'", cfg.Port)
	}

	if cfg.DefaultLanguage != "id" {
		t.Errorf("Expected default language 'id', got '%s'", cfg.DefaultLanguage)
	}

	if cfg.HistoryWindow != 10 {
		t.Errorf("Expected default history window 10, got %d", cfg.HistoryWindow)
	}

	if cfg.AIModel != "gpt-4o-mini" {
		t.Errorf("Expected default AI model 'gpt-4o-mini', got '%s'", cfg.AIModel)
	}

	if cfg.AITemperature != 0.7 {
		t.Errorf("Expected default temperature 0.7, got %v", cfg.AITemperature)
	}

	if cfg.ShutdownTimeout != 30*time.Second {
		t.Errorf("Expected default shutdown timeout 30s, got %v", cfg.ShutdownTimeout)
	}

	if cfg.Bot.WebhookTimeout != WebhookProcessing {
		t.Errorf("Expected webhook timeout %v, got %v", WebhookProcessing, cfg.Bot.WebhookTimeout)
	}
}

func TestLoad_MissingRequired(t *testing.T) {
	tests := []struct {
		name   string
		unset  string
		errHas string
	}{
		{"missing channel token", "LINE_CHANNEL_ACCESS_TOKEN", "LINE_CHANNEL_ACCESS_TOKEN is required"},
		{"missing channel secret", "LINE_CHANNEL_SECRET", "LINE_CHANNEL_SECRET is required"},
		{"missing AI key", "AI_API_KEY", "AI_API_KEY is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequiredEnv(t)
			t.Setenv(tt.unset, "")

			_, err := Load()
			if err == nil {
				t.Fatal("Load() succeeded, want validation error")
			}
			if !strings.Contains(err.Error(), tt.errHas) {
				t.Errorf("error %q does not mention %q", err.Error(), tt.errHas)
			}
		})
	}
}

func TestLoad_Overrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("DEFAULT_LANGUAGE", "vi")
	t.Setenv("HISTORY_WINDOW", "4")
	t.Setenv("AI_TEMPERATURE", "0.3")
	t.Setenv("ADMIN_USER_IDS", "U111, U222 ,")
	t.Setenv("SHUTDOWN_TIMEOUT", "10s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.DefaultLanguage != "vi" {
		t.Errorf("Expected language 'vi', got '%s'", cfg.DefaultLanguage)
	}
	if cfg.HistoryWindow != 4 {
		t.Errorf("Expected history window 4, got %d", cfg.HistoryWindow)
	}
	if cfg.AITemperature != 0.3 {
		t.Errorf("Expected temperature 0.3, got %v", cfg.AITemperature)
	}
	if cfg.ShutdownTimeout != 10*time.Second {
		t.Errorf("Expected shutdown timeout 10s, got %v", cfg.ShutdownTimeout)
	}
	if len(cfg.AdminUserIDs) != 2 || cfg.AdminUserIDs[0] != "U111" || cfg.AdminUserIDs[1] != "U222" {
		t.Errorf("Expected admins [U111 U222], got %v", cfg.AdminUserIDs)
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name   string
		key    string
		value  string
		errHas string
	}{
		{"zero history window", "HISTORY_WINDOW", "0", "HISTORY_WINDOW must be positive"},
		{"temperature out of range", "AI_TEMPERATURE", "3.5", "AI_TEMPERATURE must be in [0, 2]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequiredEnv(t)
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			if err == nil {
				t.Fatal("Load() succeeded, want validation error")
			}
			if !strings.Contains(err.Error(), tt.errHas) {
				t.Errorf("error %q does not mention %q", err.Error(), tt.errHas)
			}
		})
	}
}

func TestLoad_R2Validation(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("R2_ENABLED", "true")

	_, err := Load()
	if err == nil {
		t.Fatal("Load() succeeded, want error for incomplete R2 config")
	}

	t.Setenv("R2_ACCOUNT_ID", "acct")
	t.Setenv("R2_ACCESS_KEY_ID", "key")
	t.Setenv("R2_SECRET_ACCESS_KEY", "secret")
	t.Setenv("R2_BUCKET_NAME", "bucket")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed with complete R2 config: %v", err)
	}
	if !cfg.R2Enabled {
		t.Error("Expected R2Enabled to be true")
	}
}

func TestIsAdmin(t *testing.T) {
	cfg := &Config{AdminUserIDs: []string{"U1", "U2"}}

	if !cfg.IsAdmin("U1") {
		t.Error("Expected U1 to be admin")
	}
	if cfg.IsAdmin("U3") {
		t.Error("Expected U3 not to be admin")
	}
	if (&Config{}).IsAdmin("U1") {
		t.Error("Expected no admins when list is empty")
	}
}

func TestSQLitePath(t *testing.T) {
	cfg := &Config{DataDir: "/data"}
	want := "/data/imigo.db"
	if got := cfg.SQLitePath(); got != want {
		t.Errorf("SQLitePath() = %q, want %q", got, want)
	}
}

func TestGetEnvHelpers(t *testing.T) {
	t.Run("getEnv fallback", func(t *testing.T) {
		if got := getEnv("NONEXISTENT_KEY_123", "fallback"); got != "fallback" {
			t.Errorf("getEnv() = %q, want fallback", got)
		}
	})

	t.Run("getIntEnv invalid keeps default", func(t *testing.T) {
		t.Setenv("TEST_INT_ENV", "not-a-number")
		if got := getIntEnv("TEST_INT_ENV", 42); got != 42 {
			t.Errorf("getIntEnv() = %d, want 42", got)
		}
	})

	t.Run("getBoolEnv parses true", func(t *testing.T) {
		t.Setenv("TEST_BOOL_ENV", "true")
		if !getBoolEnv("TEST_BOOL_ENV", false) {
			t.Error("getBoolEnv() = false, want true")
		}
	})

	t.Run("getListEnv empty returns nil", func(t *testing.T) {
		_ = os.Unsetenv("TEST_LIST_ENV")
		if got := getListEnv("TEST_LIST_ENV"); got != nil {
			t.Errorf("getListEnv() = %v, want nil", got)
		}
	})
}

package config

import (
	"testing"
	"time"
)

// TestWebhookTimeouts verifies webhook-related timeout constants
func TestWebhookTimeouts(t *testing.T) {
	tests := []struct {
		name     string
		got      time.Duration
		expected time.Duration
	}{
		{"WebhookProcessing", WebhookProcessing, 60 * time.Second},
		{"WebhookHTTPRead", WebhookHTTPRead, 10 * time.Second},
		{"WebhookHTTPWrite", WebhookHTTPWrite, 65 * time.Second},
		{"WebhookHTTPIdle", WebhookHTTPIdle, 120 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.expected {
				t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.expected)
			}
		})
	}
}

// TestAITimeouts verifies AI-related timeout constants stay inside the
// webhook processing budget.
func TestAITimeouts(t *testing.T) {
	if AICompletion >= WebhookProcessing {
		t.Errorf("AICompletion (%v) must be below WebhookProcessing (%v)", AICompletion, WebhookProcessing)
	}
	if AITranslation > AICompletion {
		t.Errorf("AITranslation (%v) should not exceed AICompletion (%v)", AITranslation, AICompletion)
	}
}

// TestMenuTimeouts verifies rich menu timeout constants
func TestMenuTimeouts(t *testing.T) {
	if MenuSync <= 0 {
		t.Error("MenuSync must be positive")
	}
	if MenuBootstrap <= MenuSync {
		t.Errorf("MenuBootstrap (%v) should exceed MenuSync (%v)", MenuBootstrap, MenuSync)
	}
}

// TestDatabaseTimeouts verifies database-related timeout constants
func TestDatabaseTimeouts(t *testing.T) {
	tests := []struct {
		name     string
		got      time.Duration
		expected time.Duration
	}{
		{"DatabaseBusyTimeout", DatabaseBusyTimeout, 30 * time.Second},
		{"DatabaseConnMaxLifetime", DatabaseConnMaxLifetime, time.Hour},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.expected {
				t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.expected)
			}
		})
	}
}

// TestBackgroundIntervals verifies background job interval constants
func TestBackgroundIntervals(t *testing.T) {
	if HistoryCleanupInterval <= 0 {
		t.Error("HistoryCleanupInterval must be positive")
	}
	if HistoryCleanupInitialDelay >= HistoryCleanupInterval {
		t.Error("HistoryCleanupInitialDelay should be below HistoryCleanupInterval")
	}
}

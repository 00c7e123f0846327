package server

import (
	"net/http/httptest"
	"testing"
	"time"
)

func TestNewConfigDefaults(t *testing.T) {
	cfg := NewConfig()

	if cfg.Port != ":4000" {
		t.Errorf("Expected default port :4000, got %s", cfg.Port)
	}
	if len(cfg.AllowedOrigins) != 1 || cfg.AllowedOrigins[0] != "*" {
		t.Errorf("Expected wildcard origin by default, got %v", cfg.AllowedOrigins)
	}
	if cfg.MaxMessageSize != 4096 {
		t.Errorf("Expected default max message size 4096, got %d", cfg.MaxMessageSize)
	}
	if cfg.RateLimit.Burst != 120 || cfg.RateLimit.RefillInterval != time.Second {
		t.Errorf("Unexpected default rate limit %+v", cfg.RateLimit)
	}
}

func TestNewConfigFromEnv(t *testing.T) {
	t.Setenv("PORT", "5000")
	t.Setenv("CLIENT_ORIGIN", "https://draw.example.com, http://localhost:3000")
	t.Setenv("MAX_MESSAGE_SIZE", "1024")
	t.Setenv("RATE_LIMIT_BURST", "30")
	t.Setenv("RATE_LIMIT_REFILL_INTERVAL", "2")

	cfg := NewConfigFromEnv()

	if cfg.Port != ":5000" {
		t.Errorf("Expected port :5000, got %s", cfg.Port)
	}
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[0] != "https://draw.example.com" || cfg.AllowedOrigins[1] != "http://localhost:3000" {
		t.Errorf("Unexpected origins %v", cfg.AllowedOrigins)
	}
	if cfg.MaxMessageSize != 1024 {
		t.Errorf("Expected max message size 1024, got %d", cfg.MaxMessageSize)
	}
	if cfg.RateLimit.Burst != 30 {
		t.Errorf("Expected burst 30, got %d", cfg.RateLimit.Burst)
	}
	if cfg.RateLimit.RefillInterval != 2*time.Second {
		t.Errorf("Expected refill interval 2s, got %s", cfg.RateLimit.RefillInterval)
	}
}

func TestNewConfigFromEnvInvalidValuesFallBack(t *testing.T) {
	t.Setenv("PORT", "not-a-port")
	t.Setenv("MAX_MESSAGE_SIZE", "-5")
	t.Setenv("RATE_LIMIT_BURST", "zero")
	t.Setenv("RATE_LIMIT_REFILL_INTERVAL", "0")

	cfg := NewConfigFromEnv()

	if cfg.Port != ":4000" {
		t.Errorf("Expected fallback port :4000, got %s", cfg.Port)
	}
	if cfg.MaxMessageSize != 4096 {
		t.Errorf("Expected fallback max message size, got %d", cfg.MaxMessageSize)
	}
	if cfg.RateLimit.Burst != 120 {
		t.Errorf("Expected fallback burst, got %d", cfg.RateLimit.Burst)
	}
	if cfg.RateLimit.RefillInterval != time.Second {
		t.Errorf("Expected fallback refill interval, got %s", cfg.RateLimit.RefillInterval)
	}
}

func TestSanitizedReplacesInvalidValues(t *testing.T) {
	cfg := Config{Port: "8081"}.Sanitized()

	if cfg.Port != ":8081" {
		t.Errorf("Expected :8081, got %s", cfg.Port)
	}
	if cfg.MaxMessageSize != defaultMaxMessageSize {
		t.Errorf("Expected default max message size, got %d", cfg.MaxMessageSize)
	}
	if cfg.RateLimit.Burst != defaultRateBurst || cfg.RateLimit.RefillInterval != time.Second {
		t.Errorf("Expected default rate limit, got %+v", cfg.RateLimit)
	}
}

func TestNormalizePort(t *testing.T) {
	tests := map[string]string{
		"":               ":4000",
		"4000":           ":4000",
		":9000":          ":9000",
		"127.0.0.1:8080": "127.0.0.1:8080",
		"abc":            ":4000",
	}
	for in, want := range tests {
		if got := normalizePort(in); got != want {
			t.Errorf("normalizePort(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestOriginPolicy(t *testing.T) {
	tests := []struct {
		name    string
		origins []string
		header  string
		allowed bool
	}{
		{name: "wildcard allows any origin", origins: []string{"*"}, header: "https://evil.example", allowed: true},
		{name: "wildcard allows missing origin", origins: []string{"*"}, header: "", allowed: true},
		{name: "exact match", origins: []string{"http://localhost:3000"}, header: "http://localhost:3000", allowed: true},
		{name: "case insensitive", origins: []string{"HTTP://LocalHost:3000"}, header: "http://localhost:3000", allowed: true},
		{name: "different port", origins: []string{"http://localhost:3000"}, header: "http://localhost:3001", allowed: false},
		{name: "missing origin with list", origins: []string{"http://localhost:3000"}, header: "", allowed: false},
		{name: "invalid configured origin ignored", origins: []string{"localhost"}, header: "http://localhost", allowed: false},
		{name: "no origins configured", origins: nil, header: "http://localhost:3000", allowed: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			policy := newOriginPolicy(tt.origins)
			req := httptest.NewRequest("GET", "/ws", nil)
			if tt.header != "" {
				req.Header.Set("Origin", tt.header)
			}

			if got := policy.checkOrigin(req); got != tt.allowed {
				t.Errorf("checkOrigin() = %v, want %v", got, tt.allowed)
			}
		})
	}
}

func TestRateLimiterRefills(t *testing.T) {
	now := time.Unix(1000, 0)
	rl := newRateLimiter(RateLimitConfig{Burst: 2, RefillInterval: time.Second})
	rl.lastCheck = now
	rl.now = func() time.Time { return now }

	if !rl.allow() || !rl.allow() {
		t.Fatal("Expected the first two events to be allowed")
	}
	if rl.allow() {
		t.Fatal("Expected the third event to be rate limited")
	}

	now = now.Add(500 * time.Millisecond)
	if !rl.allow() {
		t.Error("Expected one token to be refilled after half the interval")
	}
	if rl.allow() {
		t.Error("Expected bucket to be empty again")
	}

	now = now.Add(10 * time.Second)
	allowed := 0
	for i := 0; i < 5; i++ {
		if rl.allow() {
			allowed++
		}
	}
	if allowed != 2 {
		t.Errorf("Expected refill to cap at burst 2, got %d", allowed)
	}
}

package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "test-secret")

	cfg := Load()

	if cfg.Addr != ":8080" {
		t.Fatalf("unexpected addr: %s", cfg.Addr)
	}
	if cfg.MongoDatabase != "upsell-board" {
		t.Fatalf("unexpected database: %s", cfg.MongoDatabase)
	}
	if cfg.TransactionCollection != "upsells" {
		t.Fatalf("unexpected transaction collection: %s", cfg.TransactionCollection)
	}
	if cfg.Debounce != 300*time.Millisecond {
		t.Fatalf("unexpected debounce: %s", cfg.Debounce)
	}
	if cfg.Timezone != "Europe/Stockholm" {
		t.Fatalf("unexpected timezone: %s", cfg.Timezone)
	}
	if cfg.JWT.Issuer != "upsell-board-api" {
		t.Fatalf("unexpected issuer: %s", cfg.JWT.Issuer)
	}
	if string(cfg.JWT.Secret) != "test-secret" {
		t.Fatal("secret not taken from environment")
	}
	if len(cfg.AllowedOrigins) != 1 || cfg.AllowedOrigins[0] != "*" {
		t.Fatalf("unexpected origins: %v", cfg.AllowedOrigins)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "test-secret")
	t.Setenv("HTTP_ADDR", ":9999")
	t.Setenv("LEADERBOARD_DEBOUNCE", "750ms")
	t.Setenv("AUTH_TOKEN_TTL", "8h")
	t.Setenv("TIMEZONE", "Europe/Oslo")
	t.Setenv("API_ALLOWED_ORIGINS", "https://board.example.com, https://admin.example.com")

	cfg := Load()

	if cfg.Addr != ":9999" {
		t.Fatalf("unexpected addr: %s", cfg.Addr)
	}
	if cfg.Debounce != 750*time.Millisecond {
		t.Fatalf("unexpected debounce: %s", cfg.Debounce)
	}
	if cfg.TokenTTL != 8*time.Hour {
		t.Fatalf("unexpected token TTL: %s", cfg.TokenTTL)
	}
	if cfg.Timezone != "Europe/Oslo" {
		t.Fatalf("unexpected timezone: %s", cfg.Timezone)
	}
	want := []string{"https://board.example.com", "https://admin.example.com"}
	if len(cfg.AllowedOrigins) != len(want) {
		t.Fatalf("unexpected origins: %v", cfg.AllowedOrigins)
	}
	for i, origin := range want {
		if cfg.AllowedOrigins[i] != origin {
			t.Fatalf("origin %d: got %s, want %s", i, cfg.AllowedOrigins[i], origin)
		}
	}
}

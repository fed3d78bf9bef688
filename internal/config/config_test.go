package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("ENV", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("LLM_PROVIDER", "")
	t.Setenv("SQLITE_PATH", "")
	t.Setenv("CHAT_SESSION_TTL", "")
	t.Setenv("CORS_ALLOWED_ORIGINS", "")
	cfg := Load()
	if cfg.Port != "3000" {
		t.Fatalf("expected default port, got %s", cfg.Port)
	}
	if cfg.Env != "development" {
		t.Fatalf("expected default env, got %s", cfg.Env)
	}
	if cfg.LLMProvider != "gemini" {
		t.Fatalf("expected gemini provider by default, got %s", cfg.LLMProvider)
	}
	if cfg.SQLitePath != "leads.db" {
		t.Fatalf("expected default sqlite path, got %s", cfg.SQLitePath)
	}
	if cfg.ChatSessionTTL != 24*time.Hour {
		t.Fatalf("expected default session ttl, got %s", cfg.ChatSessionTTL)
	}
	if cfg.AdminTokenTTL != 12*time.Hour {
		t.Fatalf("expected default admin token ttl, got %s", cfg.AdminTokenTTL)
	}
	if cfg.CORSAllowedOrigins != nil {
		t.Fatalf("expected no cors origins, got %v", cfg.CORSAllowedOrigins)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ENV", "production")
	t.Setenv("DATABASE_URL", "postgres://user@host/db")
	t.Setenv("LLM_PROVIDER", " OpenAI ")
	t.Setenv("CHAT_RATE_LIMIT", "0.5")
	t.Setenv("CHAT_RATE_BURST", "3")
	t.Setenv("USE_MEMORY_STORE", "true")
	t.Setenv("ADMIN_TOKEN_TTL", "30m")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, ,https://b.example")
	t.Setenv("LLM_TOP_P", "0.95")
	t.Setenv("SES_CONFIGURATION_SET", "lead-alerts")
	cfg := Load()
	if cfg.Port != "9090" {
		t.Fatalf("expected override port, got %s", cfg.Port)
	}
	if cfg.Env != "production" {
		t.Fatalf("expected env override, got %s", cfg.Env)
	}
	if cfg.DatabaseURL != "postgres://user@host/db" {
		t.Fatalf("expected db override, got %s", cfg.DatabaseURL)
	}
	if cfg.LLMProvider != "openai" {
		t.Fatalf("expected normalized provider, got %q", cfg.LLMProvider)
	}
	if cfg.ChatRateLimit != 0.5 || cfg.ChatRateBurst != 3 {
		t.Fatalf("expected rate overrides, got %v/%d", cfg.ChatRateLimit, cfg.ChatRateBurst)
	}
	if !cfg.UseMemoryStore {
		t.Fatalf("expected memory store enabled")
	}
	if cfg.AdminTokenTTL != 30*time.Minute {
		t.Fatalf("expected token ttl override, got %s", cfg.AdminTokenTTL)
	}
	if cfg.LLMTopP != 0.95 {
		t.Fatalf("expected top-p override, got %v", cfg.LLMTopP)
	}
	if cfg.SESConfigSet != "lead-alerts" {
		t.Fatalf("expected SES configuration set, got %q", cfg.SESConfigSet)
	}
	if len(cfg.CORSAllowedOrigins) != 2 || cfg.CORSAllowedOrigins[1] != "https://b.example" {
		t.Fatalf("unexpected cors origins %v", cfg.CORSAllowedOrigins)
	}
}

func TestLoadIgnoresMalformedNumbers(t *testing.T) {
	t.Setenv("CHAT_RATE_BURST", "lots")
	t.Setenv("CHAT_SESSION_TTL", "forever")
	cfg := Load()
	if cfg.ChatRateBurst != 10 {
		t.Fatalf("expected default burst, got %d", cfg.ChatRateBurst)
	}
	if cfg.ChatSessionTTL != 24*time.Hour {
		t.Fatalf("expected default ttl, got %s", cfg.ChatSessionTTL)
	}
}

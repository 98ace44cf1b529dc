package config

import (
	"os"
	"path/filepath"
	"testing"

	coredatabase "github.com/m3rciful/goalbot/core/database"
)

func TestLoadFromYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := []byte(`
telegram:
  token: "123:abc"
  longpoll_timeout_seconds: 30
webapp:
  base_url: "https://goals.example.com/"
database:
  host: "db"
  port: "5432"
  user: "goalbot"
  password: "secret"
  name: "goalbot"
rate_limit:
  interval_ms: 250
`)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Telegram.Token != "123:abc" {
		t.Fatalf("token = %q", cfg.Telegram.Token)
	}
	if cfg.Telegram.LongPollTimeoutSeconds != 30 {
		t.Fatalf("longpoll timeout = %d", cfg.Telegram.LongPollTimeoutSeconds)
	}
	if cfg.WebApp.BaseURL != "https://goals.example.com" {
		t.Fatalf("base url = %q, trailing slash should be trimmed", cfg.WebApp.BaseURL)
	}
	if cfg.Database.SSLMode != "disable" {
		t.Fatalf("sslmode = %q, expected default", cfg.Database.SSLMode)
	}
	if cfg.Database.MaxConnections != 10 {
		t.Fatalf("max connections = %d, expected default", cfg.Database.MaxConnections)
	}
	if cfg.RateLimit.IntervalMS != 250 {
		t.Fatalf("rate limit = %d", cfg.RateLimit.IntervalMS)
	}
}

func TestNormalizeValidation(t *testing.T) {
	base := func() *Config {
		return &Config{
			Telegram: TelegramConfig{Token: "123:abc"},
			Database: coredatabase.Config{Host: "db"},
		}
	}

	cfg := base()
	cfg.Telegram.Token = "   "
	if err := Normalize(cfg); err == nil {
		t.Fatal("expected error for missing token")
	}

	cfg = base()
	cfg.Telegram.LongPollTimeoutSeconds = -1
	if err := Normalize(cfg); err == nil {
		t.Fatal("expected error for negative long-poll timeout")
	}

	cfg = base()
	cfg.RateLimit.IntervalMS = -5
	if err := Normalize(cfg); err == nil {
		t.Fatal("expected error for negative rate-limit interval")
	}

	if err := Normalize(nil); err == nil {
		t.Fatal("expected error for nil config")
	}

	cfg = base()
	if err := Normalize(cfg); err != nil {
		t.Fatalf("normalize: %v", err)
	}
}

package config

import (
	"testing"
	"time"
)

func TestParseDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("DB_DRIVER", "sqlite")

	cfg, err := Parse()
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.Port != "3001" {
		t.Fatalf("port = %q, want 3001", cfg.Port)
	}
	if cfg.PageSize != 10 {
		t.Fatalf("page size = %d, want 10", cfg.PageSize)
	}
	if cfg.DBPath != "films.db" {
		t.Fatalf("db path = %q", cfg.DBPath)
	}
}

func TestParseRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "missing secret", env: map[string]string{"DB_DRIVER": "sqlite"}},
		{name: "unknown driver", env: map[string]string{"JWT_SECRET": "x", "DB_DRIVER": "oracle"}},
		{name: "mysql without user", env: map[string]string{"JWT_SECRET": "x", "DB_DRIVER": "mysql"}},
		{name: "zero page size", env: map[string]string{"JWT_SECRET": "x", "DB_DRIVER": "sqlite", "PAGE_SIZE": "0"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("JWT_SECRET", "")
			t.Setenv("DB_USER", "")
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			if _, err := Parse(); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestLoadRateLimitConfigNormalizes(t *testing.T) {
	t.Setenv("RATE_LIMIT_CAPACITY", "0")
	t.Setenv("RATE_LIMIT_REFILL_INTERVAL", "2s")
	t.Setenv("RATE_LIMIT_TTL", "1s")

	cfg := LoadRateLimitConfig()
	if cfg.Capacity != 1 {
		t.Fatalf("capacity = %d, want 1", cfg.Capacity)
	}
	if cfg.TTL != 10*time.Second {
		t.Fatalf("ttl = %s, want 10s", cfg.TTL)
	}
}

func TestLoadCacheConfigUppercasesMethods(t *testing.T) {
	t.Setenv("CACHE_METHODS", "get, head")

	cfg := LoadCacheConfig()
	if !cfg.Methods["GET"] || !cfg.Methods["HEAD"] {
		t.Fatalf("methods = %v", cfg.Methods)
	}
}

func TestLoadEventsConfigFallsBackToAMQPURL(t *testing.T) {
	t.Setenv("RABBITMQ_URL", "")
	t.Setenv("AMQP_URL", "amqp://u:p@broker:5672/")

	cfg, err := LoadEventsConfig()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.URL != "amqp://u:p@broker:5672/" {
		t.Fatalf("url = %q", cfg.URL)
	}
}

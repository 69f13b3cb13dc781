package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("MONGODB_URI", "")
	t.Setenv("DB_NAME", "")
	t.Setenv("MONGO_CONNECT_TIMEOUT_MS", "")
	t.Setenv("MONGO_SOCKET_TIMEOUT_MS", "")
	t.Setenv("STORE_BACKEND", "")
	t.Setenv("CACHE_BACKEND", "")

	cfg := Load()

	if cfg.ConnectTimeout != 5*time.Second {
		t.Fatalf("connect timeout: got %v, want 5s", cfg.ConnectTimeout)
	}
	if cfg.SocketTimeout != 30*time.Second {
		t.Fatalf("socket timeout: got %v, want 30s", cfg.SocketTimeout)
	}
	if cfg.StoreBackend != StoreMongo {
		t.Fatalf("store backend: got %q", cfg.StoreBackend)
	}
	if cfg.CacheBackend != CacheNone {
		t.Fatalf("cache backend: got %q", cfg.CacheBackend)
	}
	if cfg.TracingEnabled() {
		t.Fatalf("tracing should be off without an endpoint")
	}
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("MONGODB_URI", "mongodb://db.internal:27017")
	t.Setenv("DB_NAME", "class")
	t.Setenv("MONGO_CONNECT_TIMEOUT_MS", "1500")
	t.Setenv("STORE_BACKEND", "Memory")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, ,https://b.example")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "collector:4317")

	cfg := Load()

	if cfg.MongoURI != "mongodb://db.internal:27017" || cfg.DBName != "class" {
		t.Fatalf("unexpected mongo settings: %+v", cfg)
	}
	if cfg.ConnectTimeout != 1500*time.Millisecond {
		t.Fatalf("connect timeout: got %v", cfg.ConnectTimeout)
	}
	if cfg.StoreBackend != StoreMemory {
		t.Fatalf("store backend should be lowercased, got %q", cfg.StoreBackend)
	}
	if len(cfg.CORSAllowedOrigins) != 2 || cfg.CORSAllowedOrigins[1] != "https://b.example" {
		t.Fatalf("unexpected origins: %v", cfg.CORSAllowedOrigins)
	}
	if !cfg.TracingEnabled() {
		t.Fatalf("tracing should be on")
	}
}

func TestGetEnvInt_InvalidFallsBack(t *testing.T) {
	t.Setenv("PORT", "eighty")

	if got := getEnvInt("PORT", 8080); got != 8080 {
		t.Fatalf("got %d, want fallback 8080", got)
	}
}

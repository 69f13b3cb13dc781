package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env  string
	Port int

	// document store
	MongoURI       string
	DBName         string
	ConnectTimeout time.Duration
	SocketTimeout  time.Duration
	StoreBackend   string

	// read cache
	CacheBackend  string
	CacheTTL      time.Duration
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	CORSAllowedOrigins []string
	MaxBodyBytes       int64

	OTLPEndpoint string
	ServiceName  string

	LambdaEventFormat string
}

const (
	StoreMongo  = "mongo"
	StoreMemory = "memory"

	CacheNone   = "none"
	CacheMemory = "memory"
	CacheRedis  = "redis"
)

func Load() Config {
	// a missing .env is fine, the platform injects the environment
	_ = godotenv.Load()

	return Config{
		Env:  getEnv("APP_ENV", "dev"),
		Port: getEnvInt("PORT", 8080),

		MongoURI:       getEnv("MONGODB_URI", "mongodb://127.0.0.1:27017"),
		DBName:         getEnv("DB_NAME", "users"),
		ConnectTimeout: time.Duration(getEnvInt("MONGO_CONNECT_TIMEOUT_MS", 5000)) * time.Millisecond,
		SocketTimeout:  time.Duration(getEnvInt("MONGO_SOCKET_TIMEOUT_MS", 30000)) * time.Millisecond,
		StoreBackend:   strings.ToLower(getEnv("STORE_BACKEND", StoreMongo)),

		CacheBackend:  strings.ToLower(getEnv("CACHE_BACKEND", CacheNone)),
		CacheTTL:      time.Duration(getEnvInt("CACHE_TTL_SECONDS", 30)) * time.Second,
		RedisAddr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		CORSAllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "")),
		MaxBodyBytes:       int64(getEnvInt("MAX_BODY_BYTES", 1<<20)),

		OTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		ServiceName:  getEnv("OTEL_SERVICE_NAME", "users-api"),

		LambdaEventFormat: strings.ToLower(getEnv("LAMBDA_EVENT_FORMAT", "v1")),
	}
}

func (c Config) TracingEnabled() bool {
	return c.OTLPEndpoint != ""
}

func WithTimeout(duration time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), duration)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		num, err := strconv.Atoi(v)

		if err != nil {
			fmt.Fprintf(os.Stderr, "config: %s=%q is not an integer, using %d\n", key, v, fallback)
			return fallback
		}

		return num
	}
	return fallback
}

func splitList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	out := make([]string, 0)
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

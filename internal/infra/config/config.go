// Package config provides application-wide configuration loaded from env vars,
// optionally overlaid on a YAML file. All fields have safe defaults so the
// binary runs locally without any setup.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds runtime configuration for bookcompanion.
type Config struct {
	// Server
	Host         string `yaml:"host"`          // HOST default: "0.0.0.0"
	Port         int    `yaml:"port"`          // PORT default: 3001
	DatabasePath string `yaml:"database_path"` // DATABASE_PATH default: "./bookcompanion.db"
	FrontendURL  string `yaml:"frontend_url"`  // FRONTEND_URL default: "http://localhost:3000"
	CookieSecure bool   `yaml:"cookie_secure"` // COOKIE_SECURE default: false

	// Logging
	LogMode  string `yaml:"log_mode"`  // LOG_MODE "dev" | "prod"
	LogLevel string `yaml:"log_level"` // LOG_LEVEL default: "info"

	// Translation
	TranslateBackend     string `yaml:"translate_backend"`     // TRANSLATE_BACKEND "placeholder" | "llm"
	TranslateBatchSize   int    `yaml:"translate_batch_size"`  // TRANSLATE_BATCH_SIZE default: 10
	TranslateConcurrency int    `yaml:"translate_concurrency"` // TRANSLATE_CONCURRENCY default: 4

	// Cache
	CacheBackend    string        `yaml:"cache_backend"`     // CACHE_BACKEND "memory" | "redis" | "none"
	RedisAddr       string        `yaml:"redis_addr"`        // REDIS_ADDR default: "localhost:6379"
	CacheTTL        time.Duration `yaml:"cache_ttl"`         // CACHE_TTL default: 24h
	CacheMaxEntries int           `yaml:"cache_max_entries"` // CACHE_MAX_ENTRIES default: 10000 (memory backend)

	// Chat
	ChatBackendURL string        `yaml:"chat_backend_url"` // CHAT_BACKEND_URL default: "http://localhost:8000"
	ChatTimeout    time.Duration `yaml:"chat_timeout"`     // CHAT_TIMEOUT default: 60s

	// LLM
	LLMProvider     string `yaml:"llm_provider"`      // LLM_PROVIDER default: "ollama"
	OllamaBaseURL   string `yaml:"ollama_base_url"`   // OLLAMA_BASE_URL default: "http://localhost:11434"
	OllamaChatModel string `yaml:"ollama_chat_model"` // OLLAMA_CHAT_MODEL default: "llama3.2:3b"

	// Telemetry
	OtelEnabled     bool    `yaml:"otel_enabled"`      // OTEL_ENABLED
	OtelExporter    string  `yaml:"otel_exporter"`     // OTEL_EXPORTER "stdout" | "otlp"
	OtelEndpoint    string  `yaml:"otel_endpoint"`     // OTEL_EXPORTER_OTLP_ENDPOINT
	OtelSampleRatio float64 `yaml:"otel_sample_ratio"` // OTEL_SAMPLER_RATIO default: 1.0
}

const (
	envKeyConfigFile           = "BOOKCOMPANION_CONFIG"
	envKeyHost                 = "HOST"
	envKeyPort                 = "PORT"
	envKeyDatabasePath         = "DATABASE_PATH"
	envKeyFrontendURL          = "FRONTEND_URL"
	envKeyCookieSecure         = "COOKIE_SECURE"
	envKeyLogMode              = "LOG_MODE"
	envKeyLogLevel             = "LOG_LEVEL"
	envKeyTranslateBackend     = "TRANSLATE_BACKEND"
	envKeyTranslateBatchSize   = "TRANSLATE_BATCH_SIZE"
	envKeyTranslateConcurrency = "TRANSLATE_CONCURRENCY"
	envKeyCacheBackend         = "CACHE_BACKEND"
	envKeyRedisAddr            = "REDIS_ADDR"
	envKeyCacheTTL             = "CACHE_TTL"
	envKeyCacheMaxEntries      = "CACHE_MAX_ENTRIES"
	envKeyChatBackendURL       = "CHAT_BACKEND_URL"
	envKeyChatTimeout          = "CHAT_TIMEOUT"
	envKeyLLMProvider          = "LLM_PROVIDER"
	envKeyOllamaBaseURL        = "OLLAMA_BASE_URL"
	envKeyOllamaChatModel      = "OLLAMA_CHAT_MODEL"
	envKeyOtelEnabled          = "OTEL_ENABLED"
	envKeyOtelExporter         = "OTEL_EXPORTER"
	envKeyOtelEndpoint         = "OTEL_EXPORTER_OTLP_ENDPOINT"
	envKeyOtelSampleRatio      = "OTEL_SAMPLER_RATIO"
)

// Defaults returns the configuration used when nothing is set.
func Defaults() Config {
	return Config{
		Host:                 "0.0.0.0",
		Port:                 3001,
		DatabasePath:         "./bookcompanion.db",
		FrontendURL:          "http://localhost:3000",
		LogMode:              "dev",
		LogLevel:             "info",
		TranslateBackend:     "placeholder",
		TranslateBatchSize:   10,
		TranslateConcurrency: 4,
		CacheBackend:         "memory",
		RedisAddr:            "localhost:6379",
		CacheTTL:             24 * time.Hour,
		CacheMaxEntries:      10000,
		ChatBackendURL:       "http://localhost:8000",
		ChatTimeout:          60 * time.Second,
		LLMProvider:          "ollama",
		OllamaBaseURL:        "http://localhost:11434",
		OllamaChatModel:      "llama3.2:3b",
		OtelExporter:         "stdout",
		OtelSampleRatio:      1.0,
	}
}

// Load reads configuration from environment variables, applying defaults for missing values.
func Load() Config {
	cfg := Defaults()
	applyEnv(&cfg)
	return cfg
}

// LoadFile overlays the YAML file at path on the defaults, then applies env vars.
// Env always wins so a deployment can override a checked-in file.
func LoadFile(path string) (Config, error) {
	cfg := Defaults()
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %q: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %q: %w", path, err)
	}
	applyEnv(&cfg)
	return cfg, nil
}

// Resolve loads from the file named by BOOKCOMPANION_CONFIG when set, env otherwise.
func Resolve() (Config, error) {
	if path := os.Getenv(envKeyConfigFile); path != "" {
		return LoadFile(path)
	}
	return Load(), nil
}

// Addr returns host:port for the HTTP listener.
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func applyEnv(cfg *Config) {
	cfg.Host = envOr(envKeyHost, cfg.Host)
	cfg.Port = envIntOr(envKeyPort, cfg.Port)
	cfg.DatabasePath = envOr(envKeyDatabasePath, cfg.DatabasePath)
	cfg.FrontendURL = envOr(envKeyFrontendURL, cfg.FrontendURL)
	cfg.CookieSecure = envBoolOr(envKeyCookieSecure, cfg.CookieSecure)
	cfg.LogMode = envOr(envKeyLogMode, cfg.LogMode)
	cfg.LogLevel = envOr(envKeyLogLevel, cfg.LogLevel)
	cfg.TranslateBackend = envOr(envKeyTranslateBackend, cfg.TranslateBackend)
	cfg.TranslateBatchSize = envIntOr(envKeyTranslateBatchSize, cfg.TranslateBatchSize)
	cfg.TranslateConcurrency = envIntOr(envKeyTranslateConcurrency, cfg.TranslateConcurrency)
	cfg.CacheBackend = envOr(envKeyCacheBackend, cfg.CacheBackend)
	cfg.RedisAddr = envOr(envKeyRedisAddr, cfg.RedisAddr)
	cfg.CacheTTL = envDurationOr(envKeyCacheTTL, cfg.CacheTTL)
	cfg.CacheMaxEntries = envIntOr(envKeyCacheMaxEntries, cfg.CacheMaxEntries)
	cfg.ChatBackendURL = envOr(envKeyChatBackendURL, cfg.ChatBackendURL)
	cfg.ChatTimeout = envDurationOr(envKeyChatTimeout, cfg.ChatTimeout)
	cfg.LLMProvider = envOr(envKeyLLMProvider, cfg.LLMProvider)
	cfg.OllamaBaseURL = envOr(envKeyOllamaBaseURL, cfg.OllamaBaseURL)
	cfg.OllamaChatModel = envOr(envKeyOllamaChatModel, cfg.OllamaChatModel)
	cfg.OtelEnabled = envBoolOr(envKeyOtelEnabled, cfg.OtelEnabled)
	cfg.OtelExporter = envOr(envKeyOtelExporter, cfg.OtelExporter)
	cfg.OtelEndpoint = envOr(envKeyOtelEndpoint, cfg.OtelEndpoint)
	cfg.OtelSampleRatio = envFloatOr(envKeyOtelSampleRatio, cfg.OtelSampleRatio)
}

// envOr returns the value of the environment variable key, or fallback if not set.
func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// envIntOr parses key as an int; unset or invalid values keep fallback.
func envIntOr(key string, fallback int) int {
	n, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return n
}

func envBoolOr(key string, fallback bool) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return d
}

func envFloatOr(key string, fallback float64) float64 {
	f, err := strconv.ParseFloat(os.Getenv(key), 64)
	if err != nil {
		return fallback
	}
	return f
}

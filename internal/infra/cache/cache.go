// Package cache stores translated strings so the same chapter text is not
// sent to the translation backend twice. Values are plain strings keyed by
// caller-built keys.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

// Backend names accepted by New.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendNone   = "none"
)

// Cache is a string key/value store with per-entry TTL.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Close() error
}

// Config selects and configures the backend.
type Config struct {
	Backend    string
	RedisAddr  string
	KeyPrefix  string
	MaxEntries int // memory backend only; <= 0 means DefaultMaxEntries
}

// New builds the configured cache. An empty backend means memory.
func New(cfg Config) (Cache, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Backend)) {
	case "", BackendMemory:
		return NewMemory(cfg.MaxEntries), nil
	case BackendRedis:
		return NewRedis(cfg.RedisAddr, cfg.KeyPrefix)
	case BackendNone:
		return Nop{}, nil
	default:
		return nil, fmt.Errorf("cache: unknown backend %q", cfg.Backend)
	}
}

// Key builds a fixed-length key from its parts.
func Key(namespace string, parts ...string) string {
	h := sha256.New()
	for _, p := range parts {
		h.Write([]byte(p))
		h.Write([]byte{0})
	}
	return namespace + ":" + hex.EncodeToString(h.Sum(nil))
}

// Nop never stores anything.
type Nop struct{}

func (Nop) Get(context.Context, string) (string, bool, error) { return "", false, nil }
func (Nop) Set(context.Context, string, string, time.Duration) error { return nil }
func (Nop) Close() error { return nil }

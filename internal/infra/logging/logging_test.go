package logging

import (
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newObserved() (*Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return NewFromZap(zap.New(core)), logs
}

func TestLogger_RedactsSensitiveKeys(t *testing.T) {
	t.Parallel()

	log, logs := newObserved()
	log.Info("sign in", "email", "ada@example.com", "password", "hunter22", "Authorization", "Bearer x", "path", "/api/auth/sign-in")

	entry := logs.All()[0]
	fields := entry.ContextMap()
	for _, key := range []string{"email", "password", "Authorization"} {
		if fields[key] != Redacted {
			t.Errorf("%s = %v; want %s", key, fields[key], Redacted)
		}
	}
	if fields["path"] != "/api/auth/sign-in" {
		t.Errorf("path = %v; want untouched", fields["path"])
	}
}

func TestLogger_HashesIdentifiers(t *testing.T) {
	t.Parallel()

	log, logs := newObserved()
	log.With("user_id", "u-123").Debug("profile read", "session_id", "s-9")

	fields := logs.All()[0].ContextMap()
	for _, key := range []string{"user_id", "session_id"} {
		v, _ := fields[key].(string)
		if !strings.HasPrefix(v, "hash:") || len(v) != len("hash:")+12 {
			t.Errorf("%s = %q; want hash:<12 hex>", key, v)
		}
	}
}

func TestLogger_RedactsJWTLookingValues(t *testing.T) {
	t.Parallel()

	log, logs := newObserved()
	log.Warn("odd", "value", "eyJhbGciOiJIUzI1NiJ9.eyJ1c2VyX2lkIjoidSJ9.sig")

	if got := logs.All()[0].ContextMap()["value"]; got != Redacted {
		t.Errorf("value = %v; want %s", got, Redacted)
	}
}

func TestLogger_OddKeyValueCount(t *testing.T) {
	t.Parallel()

	log, logs := newObserved()
	log.Error("dangling", "status", 502, "orphan")

	if n := logs.FilterMessage("dangling").Len(); n != 1 {
		t.Fatalf("dangling entries = %d; want 1", n)
	}
}

func TestNew_Modes(t *testing.T) {
	t.Parallel()

	for _, opts := range []Options{{Mode: "dev", Level: "debug"}, {Mode: "prod", Level: "bogus"}} {
		log, err := New(opts)
		if err != nil {
			t.Fatalf("New(%+v) error = %v", opts, err)
		}
		log.Info("ok")
	}
}

package ctxkeys

import (
	"context"
	"testing"
)

func TestWithValue_SetsAndGetsTypedKey(t *testing.T) {
	t.Parallel()

	ctx := WithValue(context.Background(), UserID, "user-999")
	got, ok := ctx.Value(UserID).(string)
	if !ok {
		t.Fatalf("expected string value")
	}
	if got != "user-999" {
		t.Fatalf("expected user-999, got %q", got)
	}
}

func TestString_PlainStringKeyDoesNotCollide(t *testing.T) {
	t.Parallel()

	ctx := context.WithValue(context.Background(), "user_id", "plain") //nolint:staticcheck
	if got := String(ctx, UserID); got != "" {
		t.Fatalf("expected empty value for untyped key, got %q", got)
	}
	ctx = WithValue(ctx, SessionID, "sess-1")
	if got := String(ctx, SessionID); got != "sess-1" {
		t.Fatalf("expected sess-1, got %q", got)
	}
}

// Package ctxkeys holds the typed context keys shared by the API middleware
// and handlers. It is a leaf package so both can import it without a cycle.
package ctxkeys

import "context"

// Key is the named type for all API context keys. context.Value compares
// type and value, so these never collide with plain string keys.
type Key string

const (
	// UserID is the authenticated user. Injected by middleware.Session.
	UserID Key = "user_id"

	// SessionID is the live session backing the request token.
	SessionID Key = "session_id"
)

// WithValue adds a ctxkeys.Key value to the context.
func WithValue(ctx context.Context, key Key, value string) context.Context {
	return context.WithValue(ctx, key, value)
}

// String returns the value stored under key, or "" when absent.
func String(ctx context.Context, key Key) string {
	v, _ := ctx.Value(key).(string)
	return v
}

// Package middleware holds the HTTP middleware shared by all routes:
// session resolution, session enforcement, request logging and audit.
package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/matiasleandrokruk/bookcompanion/internal/api/ctxkeys"
	domainauth "github.com/matiasleandrokruk/bookcompanion/internal/domain/auth"
)

// SessionCookie carries the session token for browser clients.
const SessionCookie = "bookcompanion.session_token"

// SignUpRedirect is where clients send readers without a session.
const SignUpRedirect = "/signup"

// Authenticator resolves a token to its live session.
// domainauth.Service satisfies this interface.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*domainauth.Session, error)
}

// Session resolves the request token, from the Authorization header or the
// session cookie, and injects ctxkeys.UserID and ctxkeys.SessionID. It never
// rejects a request: routes that need a reader add RequireSession.
func Session(auth Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractToken(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			session, err := auth.Authenticate(r.Context(), token)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()
			ctx = ctxkeys.WithValue(ctx, ctxkeys.UserID, session.UserID)
			ctx = ctxkeys.WithValue(ctx, ctxkeys.SessionID, session.ID)
			ctx = context.WithValue(ctx, sessionKey{}, session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

type sessionKey struct{}

// SessionFrom returns the session resolved by Session, or nil.
func SessionFrom(ctx context.Context) *domainauth.Session {
	s, _ := ctx.Value(sessionKey{}).(*domainauth.Session)
	return s
}

// RequireSession answers 401 with message and a sign-up redirect hint when
// Session found no live session.
func RequireSession(message string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if ctxkeys.String(r.Context(), ctxkeys.UserID) == "" {
				writeUnauthorized(w, message)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// extractToken prefers "Authorization: Bearer <token>" over the cookie.
func extractToken(r *http.Request) string {
	if token := extractBearerToken(r); token != "" {
		return token
	}
	if c, err := r.Cookie(SessionCookie); err == nil {
		return strings.TrimSpace(c.Value)
	}
	return ""
}

// extractBearerToken returns "" when the header is missing, uses another
// scheme or carries an empty token.
func extractBearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}

	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, prefix))
}

// writeUnauthorized uses the same shape as writeError in handlers plus the
// redirect hint.
func writeUnauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{ //nolint:errcheck
		"error":    message,
		"redirect": SignUpRedirect,
	})
}

// Package handlers translates HTTP requests into domain calls and maps
// domain errors to status codes.
package handlers

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"strconv"

	"github.com/matiasleandrokruk/bookcompanion/internal/api/ctxkeys"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// maxBodyBytes bounds request bodies. Chapter HTML is the largest payload.
const maxBodyBytes = 4 << 20

// writeError writes {"error": message} with statusCode.
func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{"error": message})
}

func writeJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		http.Error(w, `{"error":"failed to encode response"}`, http.StatusInternalServerError)
	}
}

// decodeJSON reads a bounded JSON body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(dst)
}

func userID(ctx context.Context) string {
	return ctxkeys.String(ctx, ctxkeys.UserID)
}

func sessionID(ctx context.Context) string {
	return ctxkeys.String(ctx, ctxkeys.SessionID)
}

// clientIP returns the host part of RemoteAddr, which RealIP has already
// rewritten from proxy headers.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// parseLimit reads ?limit= clamped to (0, maxListLimit].
func parseLimit(r *http.Request) int {
	limit := defaultListLimit
	if lim, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && lim > 0 {
		limit = min(lim, maxListLimit)
	}
	return limit
}

package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/matiasleandrokruk/bookcompanion/internal/api/ctxkeys"
	domainaudit "github.com/matiasleandrokruk/bookcompanion/internal/domain/audit"
)

// Audit records API requests into audit_event. Requests without a session
// are recorded with the anonymous actor. Expected order in router:
// Session -> Audit -> handlers.
func Audit(logger domainaudit.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if logger == nil {
				next.ServeHTTP(w, r)
				return
			}

			recorder := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}
			start := time.Now()
			next.ServeHTTP(recorder, r)

			actorID, actorType := domainaudit.AnonymousActorID, domainaudit.ActorTypeAnonymous
			if userID := ctxkeys.String(r.Context(), ctxkeys.UserID); userID != "" {
				actorID, actorType = userID, domainaudit.ActorTypeUser
			}

			action, entityType := actionFromRequest(r.Method, r.URL.Path)
			_ = logger.LogWithDetails(
				r.Context(),
				actorID,
				actorType,
				action,
				entityType,
				nil,
				&domainaudit.EventDetails{Metadata: map[string]any{
					"method":      r.Method,
					"path":        r.URL.Path,
					"status_code": recorder.statusCode,
					"duration_ms": time.Since(start).Milliseconds(),
				}},
				outcomeFromStatus(recorder.statusCode),
			)
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusRecorder) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

func outcomeFromStatus(statusCode int) domainaudit.Outcome {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return domainaudit.OutcomeSuccess
	case statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden:
		return domainaudit.OutcomeDenied
	default:
		return domainaudit.OutcomeError
	}
}

// actionFromRequest maps "/api/<resource>[/...]" to "<verb>_<entity>".
func actionFromRequest(method, path string) (string, *string) {
	segments := strings.Split(strings.Trim(path, "/"), "/")
	if len(segments) < 2 || segments[0] != "api" {
		return strings.ToLower(method) + "_request", nil
	}

	entity := entityFor(segments[1:])
	if entity == "" {
		return strings.ToLower(method) + "_request", nil
	}
	return verbFor(method) + "_" + entity, strPtr(entity)
}

func entityFor(segments []string) string {
	entityMap := map[string]string{
		"user/profile":       "profile",
		"personalize":        "advisory",
		"translate":          "translation",
		"chapters/translate": "chapter_translation",
		"chat":               "chat",
		"chat/history":       "chat_history",
	}
	if value, ok := entityMap[strings.Join(segments, "/")]; ok {
		return value
	}
	return ""
}

func verbFor(method string) string {
	switch method {
	case http.MethodGet:
		return "get"
	case http.MethodPut, http.MethodPatch:
		return "update"
	case http.MethodDelete:
		return "delete"
	case http.MethodPost:
		return "create"
	}
	return strings.ToLower(method)
}

func strPtr(v string) *string {
	return &v
}

package handlers

import (
	"errors"
	"net/http"

	domainaudit "github.com/matiasleandrokruk/bookcompanion/internal/domain/audit"
	"github.com/matiasleandrokruk/bookcompanion/internal/domain/profile"
)

// ProfileHandler serves /api/user/profile.
type ProfileHandler struct {
	profiles profile.Service
	audit    domainaudit.Logger
}

// NewProfileHandler creates a ProfileHandler. auditLogger may be nil.
func NewProfileHandler(profiles profile.Service, auditLogger domainaudit.Logger) *ProfileHandler {
	return &ProfileHandler{profiles: profiles, audit: auditLogger}
}

// ProfileResponse wraps the user like the sign-in response does.
type ProfileResponse struct {
	User *profile.User `json:"user"`
}

// Get handles GET /api/user/profile.
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, err := h.profiles.Get(r.Context(), userID(r.Context()))
	if err != nil {
		writeProfileError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ProfileResponse{User: user})
}

// Update handles PATCH /api/user/profile. Only the fields present in the
// body change.
//
// Response codes:
//   - 200 OK: updated user
//   - 400 Bad Request: invalid JSON or unknown enum value
//   - 404 Not Found: the session user no longer exists
func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	var patch profile.Patch
	if err := decodeJSON(w, r, &patch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	uid := userID(r.Context())
	user, changed, err := h.profiles.Update(r.Context(), uid, patch)
	if err != nil {
		writeProfileError(w, err)
		return
	}

	if h.audit != nil && len(changed) > 0 {
		entityType := "profile"
		_ = h.audit.LogWithDetails(r.Context(), uid, domainaudit.ActorTypeUser, "profile.update",
			&entityType, &uid, &domainaudit.EventDetails{Changes: changed}, domainaudit.OutcomeSuccess)
	}
	writeJSON(w, http.StatusOK, ProfileResponse{User: user})
}

func writeProfileError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, profile.ErrInvalidBackground):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, profile.ErrUserNotFound):
		writeError(w, http.StatusNotFound, "user not found")
	default:
		writeError(w, http.StatusInternalServerError, "profile request failed")
	}
}

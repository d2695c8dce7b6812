package handlers

import (
	"net/http"

	"github.com/matiasleandrokruk/bookcompanion/internal/domain/advisory"
	"github.com/matiasleandrokruk/bookcompanion/internal/domain/profile"
)

// PersonalizeHandler serves GET /api/personalize.
type PersonalizeHandler struct {
	profiles profile.Service
}

// NewPersonalizeHandler creates a PersonalizeHandler.
func NewPersonalizeHandler(profiles profile.Service) *PersonalizeHandler {
	return &PersonalizeHandler{profiles: profiles}
}

// PersonalizeResponse is the advice for one chapter.
type PersonalizeResponse struct {
	Chapter string `json:"chapter,omitempty"`
	Topic   string `json:"topic"`
	advisory.Bundle
	BasedOn advisory.Summary `json:"basedOn"`
}

// Personalize handles GET /api/personalize?topic=&chapter=. The bundle is
// computed on every request and never stored.
func (h *PersonalizeHandler) Personalize(w http.ResponseWriter, r *http.Request) {
	user, err := h.profiles.Get(r.Context(), userID(r.Context()))
	if err != nil {
		writeProfileError(w, err)
		return
	}

	q := r.URL.Query()
	topic := q.Get("topic")
	writeJSON(w, http.StatusOK, PersonalizeResponse{
		Chapter: q.Get("chapter"),
		Topic:   topic,
		Bundle:  advisory.Advise(&user.Background, topic),
		BasedOn: advisory.Summarize(&user.Background),
	})
}

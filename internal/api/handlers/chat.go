package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/matiasleandrokruk/bookcompanion/internal/domain/chat"
	"github.com/matiasleandrokruk/bookcompanion/internal/domain/profile"
)

// Asker answers reader questions. chat.Service satisfies it.
type Asker interface {
	Ask(ctx context.Context, userID string, bg *profile.Background, req chat.Request) (*chat.Response, error)
}

// HistoryLister lists stored exchanges. chat.History satisfies it.
type HistoryLister interface {
	List(ctx context.Context, userID string, limit int) ([]chat.Exchange, error)
}

// ChatHandler serves /api/chat and /api/chat/history.
type ChatHandler struct {
	asker    Asker
	history  HistoryLister
	profiles profile.Service
}

// NewChatHandler creates a ChatHandler.
func NewChatHandler(asker Asker, history HistoryLister, profiles profile.Service) *ChatHandler {
	return &ChatHandler{asker: asker, history: history, profiles: profiles}
}

// HistoryResponse lists stored exchanges, newest first.
type HistoryResponse struct {
	Exchanges []chat.Exchange `json:"exchanges"`
}

// Ask handles POST /api/chat. The reader's background travels with the
// question so the backend can tailor the answer.
//
// Response codes:
//   - 200 OK: answer from the backend
//   - 400 Bad Request: invalid JSON or empty message
//   - 502 Bad Gateway: backend failed, body carries the fallback answer
func (h *ChatHandler) Ask(w http.ResponseWriter, r *http.Request) {
	var req chat.Request
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	uid := userID(r.Context())
	var bg *profile.Background
	if user, err := h.profiles.Get(r.Context(), uid); err == nil {
		bg = &user.Background
	}

	resp, err := h.asker.Ask(r.Context(), uid, bg, req)
	if err != nil {
		switch {
		case errors.Is(err, chat.ErrEmptyMessage):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, chat.ErrServiceUnavailable) && resp != nil:
			writeJSON(w, http.StatusBadGateway, resp)
		default:
			writeError(w, http.StatusInternalServerError, chat.FallbackMessage)
		}
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// History handles GET /api/chat/history?limit=.
func (h *ChatHandler) History(w http.ResponseWriter, r *http.Request) {
	exchanges, err := h.history.List(r.Context(), userID(r.Context()), parseLimit(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load chat history")
		return
	}
	writeJSON(w, http.StatusOK, HistoryResponse{Exchanges: exchanges})
}

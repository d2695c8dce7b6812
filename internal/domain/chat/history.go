package chat

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/matiasleandrokruk/bookcompanion/internal/infra/eventbus"
	"github.com/matiasleandrokruk/bookcompanion/internal/infra/logging"
	"github.com/matiasleandrokruk/bookcompanion/internal/infra/sqlite"
)

// DefaultHistoryLimit is used when List is called with limit <= 0.
const DefaultHistoryLimit = 50

// History stores exchanges in the chat_history table.
type History struct {
	db *sql.DB
}

// NewHistory creates a History.
func NewHistory(db *sql.DB) *History {
	return &History{db: db}
}

// Record appends e. ID and CreatedAt are filled in when empty.
func (h *History) Record(ctx context.Context, e *Exchange) error {
	if e.ID == "" {
		e.ID = uuid.Must(uuid.NewV7()).String()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	var selected *string
	if e.SelectedText != "" {
		selected = &e.SelectedText
	}
	_, err := h.db.ExecContext(ctx, `
		INSERT INTO chat_history (id, user_id, user_message, assistant_message, selected_text, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		e.ID, e.UserID, e.UserMessage, e.AssistantMessage, selected,
		e.CreatedAt.UTC().Format(sqlite.TimeLayout),
	)
	if err != nil {
		return fmt.Errorf("chat history: insert: %w", err)
	}
	return nil
}

// List returns the newest exchanges of userID, newest first.
func (h *History) List(ctx context.Context, userID string, limit int) ([]Exchange, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	rows, err := h.db.QueryContext(ctx, `
		SELECT id, user_id, user_message, assistant_message, selected_text, created_at
		FROM chat_history
		WHERE user_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("chat history: list: %w", err)
	}
	defer rows.Close()

	out := []Exchange{}
	for rows.Next() {
		var (
			e        Exchange
			selected sql.NullString
			created  string
		)
		if err := rows.Scan(&e.ID, &e.UserID, &e.UserMessage, &e.AssistantMessage, &selected, &created); err != nil {
			return nil, fmt.Errorf("chat history: scan: %w", err)
		}
		e.SelectedText = selected.String
		if e.CreatedAt, err = time.Parse(sqlite.TimeLayout, created); err != nil {
			return nil, fmt.Errorf("chat history: created_at: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Recorder persists published exchanges off the request path.
type Recorder struct {
	history *History
	log     *logging.Logger
}

// NewRecorder creates a Recorder writing to history.
func NewRecorder(history *History, log *logging.Logger) *Recorder {
	if log == nil {
		log = logging.Nop()
	}
	return &Recorder{history: history, log: log}
}

// Start subscribes to TopicExchanged and stores every exchange. It runs in
// the calling goroutine until ctx is done or the bus is closed.
func (r *Recorder) Start(ctx context.Context, bus eventbus.EventBus) {
	ch := bus.Subscribe(TopicExchanged)
	for {
		select {
		case <-ctx.Done():
			return
		case evt, ok := <-ch:
			if !ok {
				return
			}
			e, ok := evt.Payload.(Exchange)
			if !ok {
				continue
			}
			if err := r.history.Record(ctx, &e); err != nil {
				r.log.Error("chat history record failed", "user_id", e.UserID, "error", err)
			}
		}
	}
}

// Package audit keeps an append-only trail of authentication and API
// actions in the audit_event table.
package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/matiasleandrokruk/bookcompanion/internal/infra/sqlite"
)

// Logger is the write side of the audit trail, consumed by the auth
// service and the HTTP audit middleware.
type Logger interface {
	LogWithDetails(
		ctx context.Context,
		actorID string,
		actorType ActorType,
		action string,
		entityType *string,
		entityID *string,
		details *EventDetails,
		outcome Outcome,
	) error
}

// Service provides audit logging backed by SQLite.
// No update or delete operations exist.
type Service struct {
	db *sql.DB
}

// NewService creates a new audit service.
func NewService(db *sql.DB) *Service {
	return &Service{db: db}
}

const insertEventSQL = `
	INSERT INTO audit_event (
		id, actor_id, actor_type, action, entity_type, entity_id,
		details, outcome, ip_address, user_agent, created_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

const selectEventSQL = `
	SELECT id, actor_id, actor_type, action, entity_type, entity_id,
	       details, outcome, ip_address, user_agent, created_at
	FROM audit_event`

// Log appends event. ID and CreatedAt are filled in when empty.
func (s *Service) Log(ctx context.Context, event *Event) error {
	if event.ID == "" {
		event.ID = newID()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}
	details := event.Details
	if len(details) == 0 {
		details = json.RawMessage("{}")
	}

	_, err := s.db.ExecContext(ctx, insertEventSQL,
		event.ID,
		event.ActorID,
		string(event.ActorType),
		event.Action,
		event.EntityType,
		event.EntityID,
		string(details),
		string(event.Outcome),
		event.IPAddress,
		event.UserAgent,
		event.CreatedAt.UTC().Format(sqlite.TimeLayout),
	)
	if err != nil {
		return fmt.Errorf("audit: insert %s: %w", event.Action, err)
	}
	return nil
}

// LogWithDetails is a helper for the common case with structured details.
func (s *Service) LogWithDetails(
	ctx context.Context,
	actorID string,
	actorType ActorType,
	action string,
	entityType *string,
	entityID *string,
	details *EventDetails,
	outcome Outcome,
) error {
	var detailsJSON json.RawMessage
	if details != nil {
		var err error
		detailsJSON, err = json.Marshal(details)
		if err != nil {
			return err
		}
	}

	return s.Log(ctx, &Event{
		ActorID:    actorID,
		ActorType:  actorType,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Details:    detailsJSON,
		Outcome:    outcome,
	})
}

// GetByID retrieves a single audit event.
func (s *Service) GetByID(ctx context.Context, id string) (*Event, error) {
	row := s.db.QueryRowContext(ctx, selectEventSQL+` WHERE id = ?`, id)
	return scanEvent(row)
}

// ListByActor returns an actor's events, newest first.
func (s *Service) ListByActor(ctx context.Context, actorID string, limit int) ([]*Event, error) {
	return s.list(ctx, selectEventSQL+` WHERE actor_id = ? ORDER BY created_at DESC, id DESC LIMIT ?`, actorID, limit)
}

// ListByAction returns events for one action name, newest first.
func (s *Service) ListByAction(ctx context.Context, action string, limit int) ([]*Event, error) {
	return s.list(ctx, selectEventSQL+` WHERE action = ? ORDER BY created_at DESC, id DESC LIMIT ?`, action, limit)
}

func (s *Service) list(ctx context.Context, query string, args ...interface{}) ([]*Event, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("audit: list: %w", err)
	}
	defer rows.Close()

	var events []*Event
	for rows.Next() {
		event, scanErr := scanEvent(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		events = append(events, event)
	}
	return events, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanEvent(row rowScanner) (*Event, error) {
	var (
		e         Event
		actorType string
		outcome   string
		details   string
		createdAt string
	)
	if err := row.Scan(
		&e.ID, &e.ActorID, &actorType, &e.Action, &e.EntityType, &e.EntityID,
		&details, &outcome, &e.IPAddress, &e.UserAgent, &createdAt,
	); err != nil {
		return nil, err
	}
	e.ActorType = ActorType(actorType)
	e.Outcome = Outcome(outcome)
	e.Details = json.RawMessage(details)
	e.CreatedAt, _ = time.Parse(sqlite.TimeLayout, createdAt)
	return &e, nil
}

func newID() string {
	return uuid.Must(uuid.NewV7()).String()
}

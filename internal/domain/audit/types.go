package audit

import (
	"encoding/json"
	"time"
)

// ActorType represents who performed an action.
type ActorType string

const (
	ActorTypeUser      ActorType = "user"
	ActorTypeAnonymous ActorType = "anonymous"
	ActorTypeSystem    ActorType = "system"
)

// AnonymousActorID is recorded for requests made without a session.
const AnonymousActorID = "anonymous"

// Outcome represents the result of an audited action.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeDenied  Outcome = "denied"
	OutcomeError   Outcome = "error"
)

// Event is a single audit log entry. Immutable once written.
type Event struct {
	ID         string          `json:"id"`
	ActorID    string          `json:"actor_id"`
	ActorType  ActorType       `json:"actor_type"`
	Action     string          `json:"action"`
	EntityType *string         `json:"entity_type,omitempty"`
	EntityID   *string         `json:"entity_id,omitempty"`
	Details    json.RawMessage `json:"details,omitempty"`
	Outcome    Outcome         `json:"outcome"`
	IPAddress  *string         `json:"ip_address,omitempty"`
	UserAgent  *string         `json:"user_agent,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}

// EventDetails captures the specifics of an audited action.
type EventDetails struct {
	Changes  []string    `json:"changes,omitempty"`
	Metadata interface{} `json:"metadata,omitempty"`
}

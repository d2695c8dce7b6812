package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"

	"github.com/matiasleandrokruk/bookcompanion/internal/infra/sqlite"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sqlite.OpenMigrated(filepath.Join(t.TempDir(), "audit.sqlite"))
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestLog_Success(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	event := &Event{
		ActorID:    "user-1",
		ActorType:  ActorTypeUser,
		Action:     "profile.update",
		EntityType: strPtr("user_profile"),
		EntityID:   strPtr("user-1"),
		Outcome:    OutcomeSuccess,
		IPAddress:  strPtr("127.0.0.1"),
		UserAgent:  strPtr("test-agent"),
	}
	if err := svc.Log(ctx, event); err != nil {
		t.Fatalf("Log() error = %v", err)
	}
	if event.ID == "" {
		t.Fatal("Log() did not assign an ID")
	}

	got, err := svc.GetByID(ctx, event.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Action != "profile.update" || got.ActorType != ActorTypeUser || got.Outcome != OutcomeSuccess {
		t.Errorf("got %+v; want profile.update/user/success", got)
	}
	if string(got.Details) != "{}" {
		t.Errorf("Details = %s; want {}", got.Details)
	}
	if got.IPAddress == nil || *got.IPAddress != "127.0.0.1" {
		t.Errorf("IPAddress = %v; want 127.0.0.1", got.IPAddress)
	}
}

func TestLogWithDetails_StoresJSON(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	details := &EventDetails{Changes: []string{"rosExperience"}, Metadata: map[string]string{"source": "api"}}
	if err := svc.LogWithDetails(ctx, "user-1", ActorTypeUser, "profile.update", nil, nil, details, OutcomeSuccess); err != nil {
		t.Fatalf("LogWithDetails() error = %v", err)
	}

	events, err := svc.ListByActor(ctx, "user-1", 10)
	if err != nil {
		t.Fatalf("ListByActor() error = %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("len(events) = %d; want 1", len(events))
	}

	var decoded EventDetails
	if err := json.Unmarshal(events[0].Details, &decoded); err != nil {
		t.Fatalf("details not JSON: %v", err)
	}
	if len(decoded.Changes) != 1 || decoded.Changes[0] != "rosExperience" {
		t.Errorf("Changes = %v; want [rosExperience]", decoded.Changes)
	}
	if events[0].EntityType != nil || events[0].EntityID != nil {
		t.Error("nil entity fields were not stored as NULL")
	}
}

func TestListByActor_NewestFirstAndLimited(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	for _, action := range []string{"auth.sign_in", "profile.read", "auth.sign_out"} {
		if err := svc.LogWithDetails(ctx, "user-1", ActorTypeUser, action, nil, nil, nil, OutcomeSuccess); err != nil {
			t.Fatalf("LogWithDetails(%s) error = %v", action, err)
		}
	}
	if err := svc.LogWithDetails(ctx, "user-2", ActorTypeUser, "auth.sign_in", nil, nil, nil, OutcomeSuccess); err != nil {
		t.Fatalf("LogWithDetails(user-2) error = %v", err)
	}

	events, err := svc.ListByActor(ctx, "user-1", 2)
	if err != nil {
		t.Fatalf("ListByActor() error = %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("len(events) = %d; want 2", len(events))
	}
	if events[0].Action != "auth.sign_out" {
		t.Errorf("first event = %s; want auth.sign_out (newest)", events[0].Action)
	}
}

func TestListByAction_AllOutcomesAndActors(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	_ = svc.LogWithDetails(ctx, AnonymousActorID, ActorTypeAnonymous, "auth.sign_in", nil, nil, nil, OutcomeDenied)
	_ = svc.LogWithDetails(ctx, "system", ActorTypeSystem, "auth.sign_in", nil, nil, nil, OutcomeError)
	_ = svc.LogWithDetails(ctx, "user-1", ActorTypeUser, "auth.sign_in", nil, nil, nil, OutcomeSuccess)

	events, err := svc.ListByAction(ctx, "auth.sign_in", 10)
	if err != nil {
		t.Fatalf("ListByAction() error = %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("len(events) = %d; want 3", len(events))
	}
}

func TestLog_InvalidOutcomeRejected(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	svc := NewService(db)

	err := svc.LogWithDetails(context.Background(), "user-1", ActorTypeUser, "x", nil, nil, nil, Outcome("maybe"))
	if err == nil {
		t.Error("LogWithDetails(invalid outcome) = nil; want CHECK constraint error")
	}
}

func TestGetByID_NotFound(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	svc := NewService(db)

	_, err := svc.GetByID(context.Background(), "missing")
	if !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("GetByID(missing) error = %v; want sql.ErrNoRows", err)
	}
}

func strPtr(s string) *string {
	return &s
}

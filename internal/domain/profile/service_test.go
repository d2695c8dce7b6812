package profile

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/matiasleandrokruk/bookcompanion/internal/infra/sqlite"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sqlite.OpenMigrated(filepath.Join(t.TempDir(), "profile.sqlite"))
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func insertUser(t *testing.T, db *sql.DB, id, email string) {
	t.Helper()
	now := formatTime(time.Now())
	if _, err := db.Exec(`
		INSERT INTO user_account (id, email, name, password_hash, created_at, updated_at)
		VALUES (?, ?, 'Ada', 'x', ?, ?)
	`, id, email, now, now); err != nil {
		t.Fatalf("insert user fixture: %v", err)
	}
}

func TestStore_Get_WithoutProfileRow(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	insertUser(t, db, "u-1", "ada@example.com")

	user, err := NewStore(db).Get(context.Background(), "u-1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if user.Email != "ada@example.com" || user.Name != "Ada" {
		t.Errorf("user = %+v", user)
	}
	if user.ProgrammingExperience != "" || len(user.LearningGoals) != 0 || user.LearningGoals == nil {
		t.Errorf("background = %+v; want absent fields and empty sets", user.Background)
	}
}

func TestStore_Get_NotFound(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	if _, err := NewStore(db).Get(context.Background(), "missing"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("Get(missing) error = %v; want ErrUserNotFound", err)
	}
}

func TestSaveBackground_RoundTripSets(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	insertUser(t, db, "u-1", "ada@example.com")
	ctx := context.Background()

	in := Background{
		ProgrammingExperience: ProgrammingIntermediate,
		ProgrammingLanguages:  []string{"Python", "C++"},
		ROSExperience:         ExperienceBasic,
		HardwareProjects:      []string{"line follower"},
		HasRoboticsHardware:   Bool(true),
		HardwareDescription:   "TurtleBot 4",
		LearningGoals:         []string{GoalComputerVision},
		OnboardingCompleted:   true,
	}
	if err := SaveBackground(ctx, db, "u-1", in, time.Now()); err != nil {
		t.Fatalf("SaveBackground() error = %v", err)
	}

	var rawLanguages string
	if err := db.QueryRow(`SELECT programming_languages FROM user_profile WHERE user_id = 'u-1'`).Scan(&rawLanguages); err != nil {
		t.Fatalf("select: %v", err)
	}
	if rawLanguages != `["Python","C++"]` {
		t.Errorf("stored languages = %s; want JSON array text", rawLanguages)
	}

	user, err := NewStore(db).Get(ctx, "u-1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	in.normalize()
	if diff := cmp.Diff(in, user.Background); diff != "" {
		t.Errorf("background mismatch (-want +got):\n%s", diff)
	}
}

func TestStore_Update_PartialPatch(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	insertUser(t, db, "u-1", "ada@example.com")
	ctx := context.Background()

	if err := SaveBackground(ctx, db, "u-1", Background{
		ProgrammingExperience: ProgrammingBeginner,
		LearningGoals:         []string{GoalComputerVision},
	}, time.Now()); err != nil {
		t.Fatalf("SaveBackground() error = %v", err)
	}

	name := "Ada L."
	ros := ExperienceAdvanced
	user, changed, err := NewStore(db).Update(ctx, "u-1", Patch{Name: &name, ROSExperience: &ros})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if diff := cmp.Diff([]string{"name", "rosExperience"}, changed); diff != "" {
		t.Errorf("changed mismatch (-want +got):\n%s", diff)
	}
	if user.Name != "Ada L." || user.ROSExperience != ExperienceAdvanced {
		t.Errorf("patched fields not applied: %+v", user)
	}
	if user.ProgrammingExperience != ProgrammingBeginner || !user.HasGoal(GoalComputerVision) {
		t.Errorf("untouched fields changed: %+v", user.Background)
	}

	reloaded, err := NewStore(db).Get(ctx, "u-1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if reloaded.ROSExperience != ExperienceAdvanced || reloaded.Name != "Ada L." {
		t.Errorf("update not persisted: %+v", reloaded)
	}
}

func TestStore_Update_InvalidEnum(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	insertUser(t, db, "u-1", "ada@example.com")

	bad := RoboticsExperience("wizard")
	_, _, err := NewStore(db).Update(context.Background(), "u-1", Patch{RoboticsExperience: &bad})
	if !errors.Is(err, ErrInvalidBackground) {
		t.Errorf("Update(invalid) error = %v; want ErrInvalidBackground", err)
	}
}

func TestStore_Update_UnknownUser(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	done := true
	_, _, err := NewStore(db).Update(context.Background(), "missing", Patch{OnboardingCompleted: &done})
	if !errors.Is(err, ErrUserNotFound) {
		t.Errorf("Update(missing) error = %v; want ErrUserNotFound", err)
	}
}

func TestStore_HardwareAnswerTriState(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	insertUser(t, db, "u-1", "ada@example.com")
	ctx := context.Background()
	store := NewStore(db)

	if err := SaveBackground(ctx, db, "u-1", Background{}, time.Now()); err != nil {
		t.Fatalf("SaveBackground() error = %v", err)
	}
	user, err := store.Get(ctx, "u-1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if _, answered := user.OwnsHardware(); answered {
		t.Error("unanswered hardware question read back as answered")
	}

	user, _, err = store.Update(ctx, "u-1", Patch{HasRoboticsHardware: Bool(false)})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if owns, answered := user.OwnsHardware(); !answered || owns {
		t.Errorf("OwnsHardware() = (%v, %v); want (false, true)", owns, answered)
	}
}

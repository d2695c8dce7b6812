package profile

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/matiasleandrokruk/bookcompanion/internal/infra/sqlite"
)

// Service reads and updates user profiles.
type Service interface {
	Get(ctx context.Context, userID string) (*User, error)
	Update(ctx context.Context, userID string, patch Patch) (*User, []string, error)
}

// Store is the SQLite implementation of Service.
type Store struct {
	db *sql.DB
}

// NewStore creates a profile store backed by db.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

const selectUserSQL = `
	SELECT u.id, u.email, u.name, u.email_verified, u.created_at, u.updated_at,
	       COALESCE(p.programming_experience, ''),
	       COALESCE(p.programming_languages, '[]'),
	       COALESCE(p.ai_ml_experience, ''),
	       COALESCE(p.ros_experience, ''),
	       COALESCE(p.robotics_experience, ''),
	       COALESCE(p.hardware_projects, '[]'),
	       p.has_robotics_hardware,
	       COALESCE(p.hardware_description, ''),
	       COALESCE(p.learning_goals, '[]'),
	       COALESCE(p.preferred_difficulty, ''),
	       COALESCE(p.onboarding_completed, 0)
	FROM user_account u
	LEFT JOIN user_profile p ON p.user_id = u.id
	WHERE u.id = ?`

const upsertProfileSQL = `
	INSERT INTO user_profile (
		user_id, programming_experience, programming_languages, ai_ml_experience,
		ros_experience, robotics_experience, hardware_projects, has_robotics_hardware,
		hardware_description, learning_goals, preferred_difficulty, onboarding_completed,
		created_at, updated_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(user_id) DO UPDATE SET
		programming_experience = excluded.programming_experience,
		programming_languages  = excluded.programming_languages,
		ai_ml_experience       = excluded.ai_ml_experience,
		ros_experience         = excluded.ros_experience,
		robotics_experience    = excluded.robotics_experience,
		hardware_projects      = excluded.hardware_projects,
		has_robotics_hardware  = excluded.has_robotics_hardware,
		hardware_description   = excluded.hardware_description,
		learning_goals         = excluded.learning_goals,
		preferred_difficulty   = excluded.preferred_difficulty,
		onboarding_completed   = excluded.onboarding_completed,
		updated_at             = excluded.updated_at`

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// Get loads the user and their background. Accounts without a profile row
// get an empty background.
func (s *Store) Get(ctx context.Context, userID string) (*User, error) {
	return getUser(ctx, s.db, userID)
}

// Update applies patch in one transaction and returns the updated user and
// the names of the fields that were set.
func (s *Store) Update(ctx context.Context, userID string, patch Patch) (*User, []string, error) {
	if err := patch.Validate(); err != nil {
		return nil, nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("profile: begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	user, err := getUser(ctx, tx, userID)
	if err != nil {
		return nil, nil, err
	}

	changed := patch.apply(&user.Background)
	now := time.Now().UTC()

	if patch.Name != nil {
		user.Name = *patch.Name
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE user_account SET name = ?, updated_at = ? WHERE id = ?`,
		user.Name, formatTime(now), userID,
	); err != nil {
		return nil, nil, fmt.Errorf("profile: update account: %w", err)
	}
	if err := SaveBackground(ctx, tx, userID, user.Background, now); err != nil {
		return nil, nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, nil, fmt.Errorf("profile: commit: %w", err)
	}

	user.UpdatedAt = now
	user.normalize()
	return user, changed, nil
}

// SaveBackground inserts or replaces the profile row for userID. Set fields
// are stored as JSON text. Used inside the sign-up transaction.
func SaveBackground(ctx context.Context, q querier, userID string, b Background, now time.Time) error {
	languages, err := encodeSet(b.ProgrammingLanguages)
	if err != nil {
		return err
	}
	projects, err := encodeSet(b.HardwareProjects)
	if err != nil {
		return err
	}
	goals, err := encodeSet(b.LearningGoals)
	if err != nil {
		return err
	}

	ts := formatTime(now)
	if _, err := q.ExecContext(ctx, upsertProfileSQL,
		userID,
		string(b.ProgrammingExperience),
		languages,
		string(b.AIMLExperience),
		string(b.ROSExperience),
		string(b.RoboticsExperience),
		projects,
		b.HasRoboticsHardware,
		b.HardwareDescription,
		goals,
		string(b.PreferredDifficulty),
		b.OnboardingCompleted,
		ts, ts,
	); err != nil {
		return fmt.Errorf("profile: save background: %w", err)
	}
	return nil
}

func getUser(ctx context.Context, q querier, userID string) (*User, error) {
	var (
		u                                      User
		createdAt, updatedAt                   string
		programming, aiml, ros, robotics, diff string
		languages, projects, goals             string
	)
	err := q.QueryRowContext(ctx, selectUserSQL, userID).Scan(
		&u.ID, &u.Email, &u.Name, &u.EmailVerified, &createdAt, &updatedAt,
		&programming, &languages, &aiml, &ros, &robotics, &projects,
		&u.HasRoboticsHardware, &u.HardwareDescription, &goals, &diff,
		&u.OnboardingCompleted,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("profile: load user: %w", err)
	}

	u.ProgrammingExperience = ProgrammingExperience(programming)
	u.AIMLExperience = ExperienceLevel(aiml)
	u.ROSExperience = ExperienceLevel(ros)
	u.RoboticsExperience = RoboticsExperience(robotics)
	u.PreferredDifficulty = Difficulty(diff)
	u.ProgrammingLanguages = decodeSet(languages)
	u.HardwareProjects = decodeSet(projects)
	u.LearningGoals = decodeSet(goals)
	u.CreatedAt = parseTime(createdAt)
	u.UpdatedAt = parseTime(updatedAt)
	u.normalize()
	return &u, nil
}

func encodeSet(values []string) (string, error) {
	if values == nil {
		values = []string{}
	}
	b, err := json.Marshal(values)
	if err != nil {
		return "", fmt.Errorf("profile: encode set: %w", err)
	}
	return string(b), nil
}

// decodeSet tolerates malformed stored text by treating it as an empty set.
func decodeSet(raw string) []string {
	var out []string
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return []string{}
	}
	return out
}

func formatTime(t time.Time) string {
	return t.UTC().Format(sqlite.TimeLayout)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(sqlite.TimeLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

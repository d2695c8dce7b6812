// Package auth implements email/password accounts with server-side
// sessions: sign-up (with the learner background), sign-in, sign-out and
// token authentication.
package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	domainaudit "github.com/matiasleandrokruk/bookcompanion/internal/domain/audit"
	"github.com/matiasleandrokruk/bookcompanion/internal/domain/profile"
	"github.com/matiasleandrokruk/bookcompanion/internal/infra/sqlite"
	pkgauth "github.com/matiasleandrokruk/bookcompanion/pkg/auth"
)

// Password length bounds accepted at sign-up.
const (
	MinPasswordLength = 8
	MaxPasswordLength = 128
)

// ErrInvalidCredentials is returned by SignIn for an unknown email or a
// wrong password alike, so callers cannot probe which emails exist.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrEmailAlreadyExists is returned by SignUp when the email is taken.
var ErrEmailAlreadyExists = errors.New("email already registered")

// ErrInvalidInput wraps malformed email or password input.
var ErrInvalidInput = errors.New("invalid input")

// ErrSessionNotFound is returned when a token does not map to a live session.
var ErrSessionNotFound = errors.New("session not found")

// SignUpInput is the sign-up form: credentials plus the optional background.
type SignUpInput struct {
	Email      string
	Password   string
	Name       string
	Background profile.Background
	IPAddress  string
	UserAgent  string
}

// SignInInput holds the credentials for authentication.
type SignInInput struct {
	Email     string
	Password  string
	IPAddress string
	UserAgent string
}

// Session is a live login.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	ExpiresAt time.Time `json:"expiresAt"`
	CreatedAt time.Time `json:"createdAt"`
}

// Result is returned after a successful SignUp or SignIn.
type Result struct {
	Token   string
	Session Session
	User    *profile.User
}

// Service defines the authentication operations.
type Service interface {
	SignUp(ctx context.Context, input SignUpInput) (*Result, error)
	SignIn(ctx context.Context, input SignInInput) (*Result, error)
	SignOut(ctx context.Context, sessionID string) error
	Authenticate(ctx context.Context, token string) (*Session, error)
}

type service struct {
	db          *sql.DB
	profiles    *profile.Store
	auditLogger domainaudit.Logger
	now         func() time.Time
}

// NewService creates the SQLite-backed auth service. auditLogger may be nil.
func NewService(db *sql.DB, auditLogger domainaudit.Logger) Service {
	return &service{
		db:          db,
		profiles:    profile.NewStore(db),
		auditLogger: auditLogger,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// SignUp creates the account, its profile row and a first session atomically.
func (s *service) SignUp(ctx context.Context, input SignUpInput) (*Result, error) {
	email, err := normalizeEmail(input.Email)
	if err != nil {
		return nil, err
	}
	if err := validatePassword(input.Password); err != nil {
		return nil, err
	}
	if err := input.Background.Validate(); err != nil {
		return nil, err
	}

	hash, err := pkgauth.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	userID := newID()
	now := s.now()
	session := s.newSession(userID, now)

	if err := s.insertAccount(ctx, accountParams{
		userID:       userID,
		email:        email,
		name:         strings.TrimSpace(input.Name),
		passwordHash: hash,
		background:   input.Background,
		session:      session,
		ipAddress:    input.IPAddress,
		userAgent:    input.UserAgent,
	}); err != nil {
		if errors.Is(err, ErrEmailAlreadyExists) {
			s.logAuth(ctx, domainaudit.AnonymousActorID, domainaudit.ActorTypeAnonymous, "auth.sign_up", "email_taken", domainaudit.OutcomeDenied)
		}
		return nil, err
	}

	return s.issue(ctx, session, "auth.sign_up")
}

type accountParams struct {
	userID       string
	email        string
	name         string
	passwordHash string
	background   profile.Background
	session      Session
	ipAddress    string
	userAgent    string
}

func (s *service) insertAccount(ctx context.Context, p accountParams) error {
	ts := formatTime(p.session.CreatedAt)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	_, err = tx.ExecContext(ctx, `
		INSERT INTO user_account (id, email, name, email_verified, password_hash, created_at, updated_at)
		VALUES (?, ?, ?, 0, ?, ?, ?)
	`, p.userID, p.email, p.name, p.passwordHash, ts, ts)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrEmailAlreadyExists
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	if err := profile.SaveBackground(ctx, tx, p.userID, p.background, p.session.CreatedAt); err != nil {
		return err
	}
	if err := insertSession(ctx, tx, p.session, p.ipAddress, p.userAgent); err != nil {
		return err
	}

	return tx.Commit()
}

// SignIn verifies credentials and opens a new session.
func (s *service) SignIn(ctx context.Context, input SignInInput) (*Result, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))

	var userID, passwordHash string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, password_hash FROM user_account WHERE email = ? LIMIT 1
	`, email).Scan(&userID, &passwordHash)
	if err != nil {
		s.logAuth(ctx, domainaudit.AnonymousActorID, domainaudit.ActorTypeAnonymous, "auth.sign_in", "user_not_found_or_query_error", domainaudit.OutcomeDenied)
		return nil, ErrInvalidCredentials
	}

	if !pkgauth.VerifyPassword(passwordHash, input.Password) {
		s.logAuth(ctx, userID, domainaudit.ActorTypeUser, "auth.sign_in", "invalid_password", domainaudit.OutcomeDenied)
		return nil, ErrInvalidCredentials
	}

	session := s.newSession(userID, s.now())
	if err := insertSession(ctx, s.db, session, input.IPAddress, input.UserAgent); err != nil {
		return nil, err
	}

	return s.issue(ctx, session, "auth.sign_in")
}

// SignOut revokes the session. Revoking an unknown session is not an error.
func (s *service) SignOut(ctx context.Context, sessionID string) error {
	var userID string
	err := s.db.QueryRowContext(ctx, `DELETE FROM session WHERE id = ? RETURNING user_id`, sessionID).Scan(&userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	s.logAuth(ctx, userID, domainaudit.ActorTypeUser, "auth.sign_out", "", domainaudit.OutcomeSuccess)
	return nil
}

// Authenticate resolves a bearer/cookie token to its live session. A token
// whose session row was revoked or has expired is rejected even when the
// signature is still valid.
func (s *service) Authenticate(ctx context.Context, token string) (*Session, error) {
	claims, err := pkgauth.ParseJWT(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSessionNotFound, err)
	}

	var (
		session              Session
		expiresAt, createdAt string
	)
	err = s.db.QueryRowContext(ctx, `
		SELECT id, user_id, expires_at, created_at FROM session WHERE id = ? AND user_id = ?
	`, claims.SessionID, claims.UserID).Scan(&session.ID, &session.UserID, &expiresAt, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	session.ExpiresAt = parseTime(expiresAt)
	session.CreatedAt = parseTime(createdAt)
	if !session.ExpiresAt.After(s.now()) {
		return nil, ErrSessionNotFound
	}
	return &session, nil
}

// ===== HELPERS =====

func (s *service) newSession(userID string, now time.Time) Session {
	return Session{
		ID:        newID(),
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(pkgauth.SessionTTL()),
	}
}

// issue signs the token for session and loads the user for the response.
func (s *service) issue(ctx context.Context, session Session, action string) (*Result, error) {
	token, err := pkgauth.GenerateJWT(session.UserID, session.ID, session.ExpiresAt)
	if err != nil {
		s.logAuth(ctx, session.UserID, domainaudit.ActorTypeUser, action, "jwt_generation_failed", domainaudit.OutcomeError)
		return nil, fmt.Errorf("failed to generate JWT: %w", err)
	}

	user, err := s.profiles.Get(ctx, session.UserID)
	if err != nil {
		return nil, err
	}

	s.logAuth(ctx, session.UserID, domainaudit.ActorTypeUser, action, "", domainaudit.OutcomeSuccess)
	return &Result{Token: token, Session: session, User: user}, nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

func insertSession(ctx context.Context, q execer, session Session, ipAddress, userAgent string) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO session (id, user_id, expires_at, ip_address, user_agent, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, session.ID, session.UserID, formatTime(session.ExpiresAt), nullable(ipAddress), nullable(userAgent), formatTime(session.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

func normalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", fmt.Errorf("%w: email %q", ErrInvalidInput, raw)
	}
	return email, nil
}

func validatePassword(password string) error {
	if n := len(password); n < MinPasswordLength || n > MaxPasswordLength {
		return fmt.Errorf("%w: password must be %d-%d characters", ErrInvalidInput, MinPasswordLength, MaxPasswordLength)
	}
	return nil
}

// isUniqueViolation checks for SQLite's "UNIQUE constraint failed" error text.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func newID() string {
	return uuid.Must(uuid.NewV7()).String()
}

func formatTime(t time.Time) string {
	return t.UTC().Format(sqlite.TimeLayout)
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(sqlite.TimeLayout, s)
	return t
}

func (s *service) logAuth(ctx context.Context, actorID string, actorType domainaudit.ActorType, action, reason string, outcome domainaudit.Outcome) {
	if s.auditLogger == nil {
		return
	}
	var details *domainaudit.EventDetails
	if reason != "" {
		details = &domainaudit.EventDetails{Metadata: map[string]any{"reason": reason}}
	}
	entityType := "session"
	_ = s.auditLogger.LogWithDetails(ctx, actorID, actorType, action, &entityType, nil, details, outcome)
}

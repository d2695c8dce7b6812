package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/matiasleandrokruk/bookcompanion/internal/api/middleware"
	domainauth "github.com/matiasleandrokruk/bookcompanion/internal/domain/auth"
	"github.com/matiasleandrokruk/bookcompanion/internal/domain/profile"
)

// AuthHandler serves /api/auth/*.
type AuthHandler struct {
	authService  domainauth.Service
	profiles     profile.Service
	cookieSecure bool
}

// NewAuthHandler creates an AuthHandler. cookieSecure marks the session
// cookie Secure and SameSite=None for cross-site HTTPS deployments.
func NewAuthHandler(authService domainauth.Service, profiles profile.Service, cookieSecure bool) *AuthHandler {
	return &AuthHandler{authService: authService, profiles: profiles, cookieSecure: cookieSecure}
}

// SignUpRequest is the sign-up form: credentials plus the optional
// background fields at the top level.
type SignUpRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	profile.Background
}

// SignInRequest is the body of POST /api/auth/sign-in.
type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse is returned after sign-up and sign-in.
type AuthResponse struct {
	Token   string             `json:"token"`
	Session domainauth.Session `json:"session"`
	User    *profile.User      `json:"user"`
}

// SessionResponse is returned by GET /api/auth/get-session.
type SessionResponse struct {
	Session domainauth.Session `json:"session"`
	User    *profile.User      `json:"user"`
}

// SignUp handles POST /api/auth/sign-up.
//
// Response codes:
//   - 201 Created: account, profile and session created
//   - 400 Bad Request: invalid JSON, email, password or background value
//   - 409 Conflict: email already registered
//   - 500 Internal Server Error: unexpected failure
func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req SignUpRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validateSignUpRequest(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.authService.SignUp(r.Context(), domainauth.SignUpInput{
		Email:      req.Email,
		Password:   req.Password,
		Name:       req.Name,
		Background: req.Background,
		IPAddress:  clientIP(r),
		UserAgent:  r.UserAgent(),
	})
	if err != nil {
		switch {
		case errors.Is(err, domainauth.ErrEmailAlreadyExists):
			writeError(w, http.StatusConflict, "email already registered")
		case errors.Is(err, domainauth.ErrInvalidInput), errors.Is(err, profile.ErrInvalidBackground):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "sign-up failed")
		}
		return
	}

	h.setSessionCookie(w, result.Token, result.Session.ExpiresAt)
	writeJSON(w, http.StatusCreated, AuthResponse{Token: result.Token, Session: result.Session, User: result.User})
}

// SignIn handles POST /api/auth/sign-in.
//
// Response codes:
//   - 200 OK: session opened
//   - 400 Bad Request: invalid JSON or missing fields
//   - 401 Unauthorized: invalid credentials (generic, does not reveal whether the email exists)
//   - 500 Internal Server Error: unexpected failure
func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req SignInRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validateSignInRequest(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.authService.SignIn(r.Context(), domainauth.SignInInput{
		Email:     req.Email,
		Password:  req.Password,
		IPAddress: clientIP(r),
		UserAgent: r.UserAgent(),
	})
	if err != nil {
		if errors.Is(err, domainauth.ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, "invalid email or password")
			return
		}
		writeError(w, http.StatusInternalServerError, "sign-in failed")
		return
	}

	h.setSessionCookie(w, result.Token, result.Session.ExpiresAt)
	writeJSON(w, http.StatusOK, AuthResponse{Token: result.Token, Session: result.Session, User: result.User})
}

// SignOut handles POST /api/auth/sign-out. Signing out without a session
// succeeds and still clears the cookie.
func (h *AuthHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	if sid := sessionID(r.Context()); sid != "" {
		if err := h.authService.SignOut(r.Context(), sid); err != nil {
			writeError(w, http.StatusInternalServerError, "sign-out failed")
			return
		}
	}
	h.clearSessionCookie(w)
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// GetSession handles GET /api/auth/get-session. Without a session the body
// is JSON null.
func (h *AuthHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	session := middleware.SessionFrom(r.Context())
	if session == nil {
		writeJSON(w, http.StatusOK, nil)
		return
	}

	user, err := h.profiles.Get(r.Context(), session.UserID)
	if err != nil {
		if errors.Is(err, profile.ErrUserNotFound) {
			writeJSON(w, http.StatusOK, nil)
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to load session")
		return
	}
	writeJSON(w, http.StatusOK, SessionResponse{Session: *session, User: user})
}

func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, token string, expiresAt time.Time) {
	http.SetCookie(w, h.cookie(token, expiresAt, int(time.Until(expiresAt).Seconds())))
}

func (h *AuthHandler) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, h.cookie("", time.Unix(0, 0), -1))
}

func (h *AuthHandler) cookie(value string, expires time.Time, maxAge int) *http.Cookie {
	sameSite := http.SameSiteLaxMode
	if h.cookieSecure {
		sameSite = http.SameSiteNoneMode
	}
	return &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: sameSite,
	}
}

// validateSignUpRequest checks required fields before hitting the domain.
func validateSignUpRequest(req SignUpRequest) error {
	if strings.TrimSpace(req.Email) == "" {
		return errors.New("email is required")
	}
	if req.Password == "" {
		return errors.New("password is required")
	}
	return nil
}

func validateSignInRequest(req SignInRequest) error {
	if strings.TrimSpace(req.Email) == "" {
		return errors.New("email is required")
	}
	if req.Password == "" {
		return errors.New("password is required")
	}
	return nil
}

package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/matiasleandrokruk/bookcompanion/internal/api/handlers"
	apmiddleware "github.com/matiasleandrokruk/bookcompanion/internal/api/middleware"
	domainaudit "github.com/matiasleandrokruk/bookcompanion/internal/domain/audit"
	domainauth "github.com/matiasleandrokruk/bookcompanion/internal/domain/auth"
	"github.com/matiasleandrokruk/bookcompanion/internal/domain/profile"
	"github.com/matiasleandrokruk/bookcompanion/internal/domain/translation"
	"github.com/matiasleandrokruk/bookcompanion/internal/infra/logging"
)

// MsgSignInRequired is the 401 message of the reader-only routes.
const MsgSignInRequired = "Please sign in to access this feature."

// healthCheckTimeout bounds the model probe behind /health.
const healthCheckTimeout = 3 * time.Second

// HealthChecker reports whether a dependency behind the API is reachable.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Deps are the services behind the HTTP API.
type Deps struct {
	Log          *logging.Logger
	Model        HealthChecker // nil unless a model backs translation
	Audit        domainaudit.Logger
	Auth         domainauth.Service
	Profiles     profile.Service
	Translator   handlers.Translator
	Driver       *translation.Driver
	Chat         handlers.Asker
	History      handlers.HistoryLister
	FrontendURL  string
	CookieSecure bool
}

// NewRouter creates the chi router with every route.
//
// /health and /api/auth/* are public. /api/chat works with or without a
// session. Everything else requires a live session.
func NewRouter(d Deps) *chi.Mux {
	log := d.Log
	if log == nil {
		log = logging.Nop()
	}

	r := chi.NewRouter()

	// Global middleware (runs on all routes)
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(apmiddleware.RequestLogger(log))
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(corsOptions(d.FrontendURL)))
	r.Use(apmiddleware.Session(d.Auth))

	// Health check, used by load balancers and the deploy script
	r.Get("/health", healthHandler(d.Model, log))

	authHandler := handlers.NewAuthHandler(d.Auth, d.Profiles, d.CookieSecure)
	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/sign-up", authHandler.SignUp)
		r.Post("/sign-up/email", authHandler.SignUp)
		r.Post("/sign-in", authHandler.SignIn)
		r.Post("/sign-in/email", authHandler.SignIn)
		r.Post("/sign-out", authHandler.SignOut)
		r.Get("/get-session", authHandler.GetSession)
	})

	profileHandler := handlers.NewProfileHandler(d.Profiles, d.Audit)
	personalizeHandler := handlers.NewPersonalizeHandler(d.Profiles)
	translateHandler := handlers.NewTranslateHandler(d.Translator, d.Driver)
	chatHandler := handlers.NewChatHandler(d.Chat, d.History, d.Profiles)

	r.Route("/api", func(r chi.Router) {
		r.Use(apmiddleware.Audit(d.Audit))

		r.Post("/chat", chatHandler.Ask)

		r.Group(func(r chi.Router) {
			r.Use(apmiddleware.RequireSession(MsgSignInRequired))
			r.Get("/user/profile", profileHandler.Get)
			r.Patch("/user/profile", profileHandler.Update)
			r.Get("/personalize", personalizeHandler.Personalize)
			r.Get("/chat/history", chatHandler.History)
		})

		r.Group(func(r chi.Router) {
			r.Use(apmiddleware.RequireSession(handlers.MsgTranslateUnauthorized))
			r.Post("/translate", translateHandler.Translate)
			r.Post("/chapters/translate", translateHandler.TranslateChapter)
		})
	})

	return r
}

// healthHandler answers 200 {"status":"ok"}, or 503 when the translation
// model is configured but unreachable.
func healthHandler(model HealthChecker, log *logging.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if model != nil {
			ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
			defer cancel()
			if err := model.HealthCheck(ctx); err != nil {
				log.Warn("health check failed", "error", err)
				w.WriteHeader(http.StatusServiceUnavailable)
				_ = json.NewEncoder(w).Encode(map[string]string{"status": "degraded", "model": "unreachable"})
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`)) //nolint:errcheck
	}
}

// corsOptions allows the book frontend to call the API with credentials.
func corsOptions(frontendURL string) cors.Options {
	origins := []string{"http://localhost:3000"}
	if frontendURL != "" {
		origins = []string{frontendURL}
	}
	return cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           int((12 * time.Hour).Seconds()),
	}
}

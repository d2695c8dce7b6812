package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-chi/chi/v5"

	"github.com/matiasleandrokruk/bookcompanion/internal/api"
	domainaudit "github.com/matiasleandrokruk/bookcompanion/internal/domain/audit"
	domainauth "github.com/matiasleandrokruk/bookcompanion/internal/domain/auth"
	"github.com/matiasleandrokruk/bookcompanion/internal/domain/chat"
	"github.com/matiasleandrokruk/bookcompanion/internal/domain/profile"
	"github.com/matiasleandrokruk/bookcompanion/internal/domain/translation"
	"github.com/matiasleandrokruk/bookcompanion/internal/infra/cache"
	"github.com/matiasleandrokruk/bookcompanion/internal/infra/config"
	"github.com/matiasleandrokruk/bookcompanion/internal/infra/eventbus"
	"github.com/matiasleandrokruk/bookcompanion/internal/infra/llm"
	"github.com/matiasleandrokruk/bookcompanion/internal/infra/logging"
	"github.com/matiasleandrokruk/bookcompanion/internal/infra/sqlite"
)

const llmProviderOllama = "ollama"

// App owns every long-lived dependency built from Config.
type App struct {
	Config config.Config
	Log    *logging.Logger

	DB    *sql.DB
	Cache cache.Cache
	Bus   *eventbus.Bus
	Model *llm.Router // nil for the placeholder backend

	Audit      *domainaudit.Service
	Auth       domainauth.Service
	Profiles   *profile.Store
	Translator *translation.Service
	Driver     *translation.Driver
	Chat       *chat.Service
	History    *chat.History
}

// NewApp opens the database (applying migrations), builds the cache and the
// translation backend, and wires the domain services. On error everything
// opened so far is closed.
func NewApp(cfg config.Config, log *logging.Logger) (*App, error) {
	if log == nil {
		log = logging.Nop()
	}

	db, err := sqlite.OpenMigrated(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	c, err := cache.New(cache.Config{
		Backend:    cfg.CacheBackend,
		RedisAddr:  cfg.RedisAddr,
		KeyPrefix:  "bookcompanion:",
		MaxEntries: cfg.CacheMaxEntries,
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("open cache: %w", err)
	}

	backend, model, err := newTranslationBackend(cfg)
	if err != nil {
		_ = c.Close()
		_ = db.Close()
		return nil, err
	}

	bus := eventbus.New()
	auditSvc := domainaudit.NewService(db)
	translator := translation.NewService(backend, c, cfg.CacheTTL, log)

	app := &App{
		Config:     cfg,
		Log:        log,
		DB:         db,
		Cache:      c,
		Bus:        bus,
		Model:      model,
		Audit:      auditSvc,
		Auth:       domainauth.NewService(db, auditSvc),
		Profiles:   profile.NewStore(db),
		Translator: translator,
		Driver: translation.NewDriver(translator,
			translation.WithBatchSize(cfg.TranslateBatchSize),
			translation.WithLogger(log)),
		Chat:    chat.NewService(chat.NewHTTPClient(cfg.ChatBackendURL, cfg.ChatTimeout), bus, log),
		History: chat.NewHistory(db),
	}

	fields := []interface{}{
		"translate_backend", backend.Name(),
		"cache_backend", cfg.CacheBackend,
		"chat_backend_url", cfg.ChatBackendURL,
	}
	if model != nil {
		meta := model.ModelInfo()
		fields = append(fields, "llm_provider", meta.Provider, "llm_model", meta.ID)
	}
	log.Info("app initialized", fields...)
	return app, nil
}

// newTranslationBackend returns the configured backend and, for the llm
// backend, the router that serves it.
func newTranslationBackend(cfg config.Config) (translation.Backend, *llm.Router, error) {
	var router *llm.Router
	var completer translation.Completer
	if cfg.TranslateBackend == translation.BackendLLM {
		if cfg.LLMProvider != llmProviderOllama {
			return nil, nil, fmt.Errorf("unknown llm provider %q", cfg.LLMProvider)
		}
		router = llm.NewRouter(map[string]llm.Provider{
			llmProviderOllama: llm.NewOllamaProvider(cfg.OllamaBaseURL, cfg.OllamaChatModel, 0),
		}, llmProviderOllama)
		completer = router
	}
	backend, err := translation.NewBackend(cfg.TranslateBackend, completer, cfg.TranslateConcurrency)
	if err != nil {
		return nil, nil, fmt.Errorf("translation backend: %w", err)
	}
	return backend, router, nil
}

// Router builds the HTTP handler.
func (a *App) Router() *chi.Mux {
	var model api.HealthChecker
	if a.Model != nil {
		model = a.Model
	}
	return api.NewRouter(api.Deps{
		Log:          a.Log,
		Model:        model,
		Audit:        a.Audit,
		Auth:         a.Auth,
		Profiles:     a.Profiles,
		Translator:   a.Translator,
		Driver:       a.Driver,
		Chat:         a.Chat,
		History:      a.History,
		FrontendURL:  a.Config.FrontendURL,
		CookieSecure: a.Config.CookieSecure,
	})
}

// MCPDeps exposes the translation pipeline to the MCP server.
func (a *App) MCPDeps() api.MCPDeps {
	return api.MCPDeps{Translator: a.Translator, Driver: a.Driver}
}

// RunBackground persists chat exchanges until ctx is done or the bus closes.
func (a *App) RunBackground(ctx context.Context) {
	chat.NewRecorder(a.History, a.Log).Start(ctx, a.Bus)
}

// Close releases the bus, the cache and the database.
func (a *App) Close() error {
	a.Bus.Close()
	return errors.Join(a.Cache.Close(), a.DB.Close())
}

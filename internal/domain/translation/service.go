package translation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/matiasleandrokruk/bookcompanion/internal/infra/cache"
	"github.com/matiasleandrokruk/bookcompanion/internal/infra/logging"
)

// ErrInvalidRequest is returned when texts is missing.
var ErrInvalidRequest = errors.New("texts must be an array")

// Endpoint defaults.
const (
	DefaultServerTarget = "ur"
	SourceLanguage      = "en"
)

const cacheNamespace = "translation"

// Service is the server side of POST /api/translate. It implements
// Requester so chapters can be translated in-process.
type Service struct {
	backend Backend
	cache   cache.Cache
	ttl     time.Duration
	tracer  trace.Tracer
	log     *logging.Logger
}

// NewService creates a Service. A nil cache disables caching.
func NewService(backend Backend, c cache.Cache, ttl time.Duration, log *logging.Logger) *Service {
	if c == nil {
		c = cache.Nop{}
	}
	if log == nil {
		log = logging.Nop()
	}
	return &Service{
		backend: backend,
		cache:   c,
		ttl:     ttl,
		tracer:  otel.Tracer("bookcompanion/translation"),
		log:     log,
	}
}

// Translate translates req.Texts and echoes the request metadata. Backend
// failures wrap ErrServiceUnavailable.
func (s *Service) Translate(ctx context.Context, req Request) (*Response, error) {
	if req.Texts == nil {
		return nil, ErrInvalidRequest
	}
	target := req.TargetLanguage
	if target == "" {
		target = DefaultServerTarget
	}

	ctx, span := s.tracer.Start(ctx, "translation.request", trace.WithAttributes(
		attribute.String("translation.backend", s.backend.Name()),
		attribute.String("translation.target", target),
		attribute.Int("translation.texts", len(req.Texts)),
	))
	defer span.End()

	out := make([]string, len(req.Texts))
	var missIdx []int
	var missTexts []string
	for i, text := range req.Texts {
		if v, ok := s.lookup(ctx, target, text); ok {
			out[i] = v
			continue
		}
		missIdx = append(missIdx, i)
		missTexts = append(missTexts, text)
	}
	span.SetAttributes(attribute.Int("translation.cache_hits", len(req.Texts)-len(missTexts)))

	if len(missTexts) > 0 {
		translated, err := s.backend.Translate(ctx, missTexts, target)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "backend failed")
			s.log.Error("translation backend failed", "backend", s.backend.Name(), "texts", len(missTexts), "error", err)
			return nil, fmt.Errorf("%w: %w", ErrServiceUnavailable, err)
		}
		if len(translated) != len(missTexts) {
			return nil, fmt.Errorf("%w: backend returned %d translations for %d texts",
				ErrServiceUnavailable, len(translated), len(missTexts))
		}
		for j, i := range missIdx {
			out[i] = translated[j]
			s.store(ctx, target, missTexts[j], translated[j])
		}
	}

	return &Response{
		Translations:   out,
		SourceLanguage: SourceLanguage,
		TargetLanguage: target,
		Chapter:        req.Chapter,
		Title:          req.Title,
	}, nil
}

// Cache errors only cost a backend call.
func (s *Service) lookup(ctx context.Context, target, text string) (string, bool) {
	v, ok, err := s.cache.Get(ctx, s.key(target, text))
	if err != nil {
		s.log.Warn("translation cache get failed", "error", err)
		return "", false
	}
	return v, ok
}

func (s *Service) store(ctx context.Context, target, text, translated string) {
	if err := s.cache.Set(ctx, s.key(target, text), translated, s.ttl); err != nil {
		s.log.Warn("translation cache set failed", "error", err)
	}
}

func (s *Service) key(target, text string) string {
	return cache.Key(cacheNamespace, s.backend.Name(), target, text)
}

package translation

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/matiasleandrokruk/bookcompanion/internal/infra/llm"
)

// Backend names accepted by NewBackend.
const (
	BackendPlaceholder = "placeholder"
	BackendLLM         = "llm"
)

// UrduPrefix marks placeholder output. It is used for every target: the
// placeholder stands in for the Urdu translator whatever language the
// caller names.
const UrduPrefix = "[اردو] "

// Backend turns source texts into target-language texts. The result has
// one entry per input, in input order.
type Backend interface {
	Translate(ctx context.Context, texts []string, target string) ([]string, error)
	Name() string
}

// Completer is the part of llm.Router the LLM backend needs.
type Completer interface {
	ChatCompletion(ctx context.Context, req llm.ChatRequest) (*llm.ChatResponse, error)
}

// PlaceholderBackend prefixes each text with a language marker. It keeps
// the endpoint usable without any model behind it.
type PlaceholderBackend struct{}

func (PlaceholderBackend) Name() string { return BackendPlaceholder }

// Translate never fails. The target does not change the output.
func (PlaceholderBackend) Translate(_ context.Context, texts []string, _ string) ([]string, error) {
	out := make([]string, len(texts))
	for i, t := range texts {
		out[i] = UrduPrefix + t
	}
	return out, nil
}

// LLMBackend asks a chat model for one text at a time, with at most
// Concurrency requests in flight.
type LLMBackend struct {
	completer   Completer
	concurrency int
}

// NewLLMBackend creates an LLMBackend. concurrency <= 0 means 1.
func NewLLMBackend(c Completer, concurrency int) *LLMBackend {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &LLMBackend{completer: c, concurrency: concurrency}
}

func (b *LLMBackend) Name() string { return BackendLLM }

// Translate fails as a whole when any text fails.
func (b *LLMBackend) Translate(ctx context.Context, texts []string, target string) ([]string, error) {
	out := make([]string, len(texts))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.concurrency)
	for i, text := range texts {
		g.Go(func() error {
			resp, err := b.completer.ChatCompletion(gctx, llm.ChatRequest{
				Messages: []llm.Message{
					{Role: "system", Content: systemPrompt(target)},
					{Role: "user", Content: text},
				},
				Temperature: 0.1,
			})
			if err != nil {
				return fmt.Errorf("text %d: %w", i, err)
			}
			out[i] = strings.TrimSpace(resp.Content)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// NewBackend selects a backend by name. An empty name means placeholder.
func NewBackend(name string, c Completer, concurrency int) (Backend, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", BackendPlaceholder:
		return PlaceholderBackend{}, nil
	case BackendLLM:
		if c == nil {
			return nil, fmt.Errorf("translation: llm backend needs a completer")
		}
		return NewLLMBackend(c, concurrency), nil
	default:
		return nil, fmt.Errorf("translation: unknown backend %q", name)
	}
}

func systemPrompt(target string) string {
	lang := target
	if isUrdu(target) {
		lang = "Urdu"
	}
	return "Translate the user's text into " + lang + ". " +
		"Keep technical terms, product names and numbers unchanged. " +
		"Reply with the translation only."
}

func isUrdu(target string) bool {
	switch strings.ToLower(strings.TrimSpace(target)) {
	case "ur", "urdu":
		return true
	}
	return false
}

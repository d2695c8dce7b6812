package llm

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Router selects a Provider for each request. Currently always the default.
// It is itself a Provider so callers can hold one without knowing which
// adapter answers.
type Router struct {
	mu              sync.RWMutex
	providers       map[string]Provider
	defaultProvider string
}

// NewRouter copies providers so the caller cannot mutate the router's map.
func NewRouter(providers map[string]Provider, defaultProvider string) *Router {
	ps := make(map[string]Provider, len(providers))
	for k, v := range providers {
		ps[k] = v
	}
	return &Router{providers: ps, defaultProvider: defaultProvider}
}

// Route returns the provider for the current request.
func (r *Router) Route(_ context.Context) (Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.providers[r.defaultProvider]
	if !ok {
		return nil, fmt.Errorf("llm router: provider %q not registered (available: %v)", r.defaultProvider, r.keys())
	}
	return p, nil
}

// ChatCompletion routes req to the selected provider.
func (r *Router) ChatCompletion(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	p, err := r.Route(ctx)
	if err != nil {
		return nil, err
	}
	return p.ChatCompletion(ctx, req)
}

// ModelInfo describes the provider requests are routed to. When no provider
// is registered under the default key only Provider is set.
func (r *Router) ModelInfo() ModelMeta {
	p, err := r.Route(context.Background())
	if err != nil {
		return ModelMeta{Provider: r.defaultProvider}
	}
	return p.ModelInfo()
}

// HealthCheck checks the provider requests are routed to.
func (r *Router) HealthCheck(ctx context.Context) error {
	p, err := r.Route(ctx)
	if err != nil {
		return err
	}
	return p.HealthCheck(ctx)
}

func (r *Router) keys() []string {
	out := make([]string, 0, len(r.providers))
	for k := range r.providers {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

package translation

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/matiasleandrokruk/bookcompanion/internal/infra/cache"
)

type countingBackend struct {
	mu    sync.Mutex
	texts [][]string
	err   error
}

func (b *countingBackend) Name() string { return "counting" }

func (b *countingBackend) Translate(_ context.Context, texts []string, target string) ([]string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.texts = append(b.texts, texts)
	if b.err != nil {
		return nil, b.err
	}
	out := make([]string, len(texts))
	for i, t := range texts {
		out[i] = target + ":" + t
	}
	return out, nil
}

func TestService_PlaceholderUrdu(t *testing.T) {
	t.Parallel()

	svc := NewService(PlaceholderBackend{}, nil, 0, nil)
	resp, err := svc.Translate(context.Background(), Request{
		Texts:   []string{"Hello", "World"},
		Chapter: "module-1",
		Title:   "Intro",
	})
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	want := &Response{
		Translations:   []string{UrduPrefix + "Hello", UrduPrefix + "World"},
		SourceLanguage: "en",
		TargetLanguage: "ur",
		Chapter:        "module-1",
		Title:          "Intro",
	}
	if diff := cmp.Diff(want, resp); diff != "" {
		t.Errorf("response mismatch (-want +got):\n%s", diff)
	}
}

func TestService_NilTextsRejected(t *testing.T) {
	t.Parallel()

	svc := NewService(PlaceholderBackend{}, nil, 0, nil)
	if _, err := svc.Translate(context.Background(), Request{}); !errors.Is(err, ErrInvalidRequest) {
		t.Errorf("expected ErrInvalidRequest, got %v", err)
	}
}

func TestService_EmptyTexts(t *testing.T) {
	t.Parallel()

	b := &countingBackend{}
	resp, err := NewService(b, nil, 0, nil).Translate(context.Background(), Request{Texts: []string{}})
	if err != nil {
		t.Fatal(err)
	}
	if len(resp.Translations) != 0 || resp.Translations == nil {
		t.Errorf("translations = %#v, want empty non-nil", resp.Translations)
	}
	if len(b.texts) != 0 {
		t.Errorf("backend called for empty input")
	}
}

func TestService_CachesPerText(t *testing.T) {
	t.Parallel()

	b := &countingBackend{}
	svc := NewService(b, cache.NewMemory(0), time.Hour, nil)
	ctx := context.Background()

	if _, err := svc.Translate(ctx, Request{Texts: []string{"a", "b"}, TargetLanguage: "fr"}); err != nil {
		t.Fatal(err)
	}
	resp, err := svc.Translate(ctx, Request{Texts: []string{"b", "c", "a"}, TargetLanguage: "fr"})
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"fr:b", "fr:c", "fr:a"}, resp.Translations); diff != "" {
		t.Errorf("translations (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([][]string{{"a", "b"}, {"c"}}, b.texts); diff != "" {
		t.Errorf("backend inputs (-want +got):\n%s", diff)
	}

	// A different target is a different key.
	if _, err := svc.Translate(ctx, Request{Texts: []string{"a"}, TargetLanguage: "de"}); err != nil {
		t.Fatal(err)
	}
	if len(b.texts) != 3 {
		t.Errorf("expected a backend call for a new target, got %d calls", len(b.texts))
	}
}

func TestService_BackendFailure(t *testing.T) {
	t.Parallel()

	b := &countingBackend{err: errors.New("model offline")}
	_, err := NewService(b, nil, 0, nil).Translate(context.Background(), Request{Texts: []string{"x"}})
	if !errors.Is(err, ErrServiceUnavailable) {
		t.Errorf("expected ErrServiceUnavailable, got %v", err)
	}
}

func TestService_AsDriverRequester(t *testing.T) {
	t.Parallel()

	root := chapterRoot(t, `<div class="markdown"><p>Hi</p><code>x</code></div>`)
	d := NewDriver(NewService(PlaceholderBackend{}, nil, 0, nil))
	if _, err := d.Run(context.Background(), root, ExtractFragments(root), Meta{TargetLanguage: "urdu"}); err != nil {
		t.Fatal(err)
	}
	if got, want := render(t, root), "<p>[اردو] Hi</p><code>x</code>"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

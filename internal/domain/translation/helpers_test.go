package translation

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"golang.org/x/net/html"
)

const sampleChapter = `<!DOCTYPE html><html><head><title>Ch</title></head><body>` +
	`<nav>Menu</nav>` +
	`<article><div class="markdown">` +
	`<h1>Intro</h1>` +
	`<p>Hello <strong>world</strong>!</p>` +
	`<pre><code>x := 1</code></pre>` +
	`<div class="prism-code"><span>fmt.Println</span></div>` +
	`<p>Use <code>ros2 run</code> now</p>` +
	`<script>var a = 1</script>` +
	`</div></article></body></html>`

func parseDoc(t *testing.T, src string) *html.Node {
	t.Helper()
	doc, err := html.Parse(strings.NewReader(src))
	if err != nil {
		t.Fatalf("html.Parse: %v", err)
	}
	return doc
}

func chapterRoot(t *testing.T, src string) *html.Node {
	t.Helper()
	root, err := Select(parseDoc(t, src), DefaultSelector)
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	return root
}

func paragraphs(n int) string {
	var b strings.Builder
	b.WriteString(`<html><body><div class="markdown">`)
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, "<p>p%d</p>", i)
	}
	b.WriteString(`</div></body></html>`)
	return b.String()
}

func render(t *testing.T, n *html.Node) string {
	t.Helper()
	out, err := RenderInner(n)
	if err != nil {
		t.Fatalf("RenderInner: %v", err)
	}
	return out
}

// fakeRequester answers each batch with "T:" prefixed texts. failAt is the
// 1-based request number that fails; short truncates every response to
// that many translations when > 0.
type fakeRequester struct {
	mu       sync.Mutex
	requests []Request
	failAt   int
	short    map[int]int
}

func (f *fakeRequester) Translate(_ context.Context, req Request) (*Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	n := len(f.requests)
	if f.failAt == n {
		return nil, fmt.Errorf("%w: status 500", ErrServiceUnavailable)
	}
	out := make([]string, len(req.Texts))
	for i, text := range req.Texts {
		out[i] = "T:" + text
	}
	if k, ok := f.short[n]; ok && k < len(out) {
		out = out[:k]
	}
	return &Response{Translations: out, TargetLanguage: req.TargetLanguage}, nil
}

func (f *fakeRequester) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func (f *fakeRequester) batchSizes() []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	sizes := make([]int, len(f.requests))
	for i, r := range f.requests {
		sizes[i] = len(r.Texts)
	}
	return sizes
}

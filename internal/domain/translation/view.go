package translation

import (
	"bytes"
	"context"
	"errors"
	"sync"

	"golang.org/x/net/html"
)

// State is the lifecycle of a chapter's translation.
type State string

const (
	StateOriginal            State = "original"
	StateTranslating         State = "translating"
	StateTranslated          State = "translated"
	StateError               State = "error"
	StatePartiallyTranslated State = "partially_translated"
)

// ErrPassInProgress is returned when a pass or restore is requested while
// another pass is running on the same chapter.
var ErrPassInProgress = errors.New("translation pass already in progress")

// ChapterView owns the translation state of one chapter root.
//
//	original --Translate--> translating --ok--> translated --Restore--> original
//	                             |
//	                             +--fail--> error (nothing applied)
//	                             +--fail--> partially_translated (some batches applied)
//
// The original children of root are captured once, before the first
// rewrite, and Restore puts them back without any network call.
type ChapterView struct {
	mu       sync.Mutex
	state    State
	progress Progress
	lastErr  error

	treeMu   sync.RWMutex
	root     *html.Node
	original []*html.Node
	captured bool

	driver *Driver
	meta   Meta
}

// NewChapterView prepares root for translation. Nothing is captured yet.
func NewChapterView(root *html.Node, driver *Driver, meta Meta) *ChapterView {
	if meta.TargetLanguage == "" {
		meta.TargetLanguage = DefaultTargetLanguage
	}
	return &ChapterView{root: root, driver: driver, meta: meta, state: StateOriginal}
}

// State returns the current state.
func (v *ChapterView) State() State {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state
}

// Err returns the error of the last failed pass, or nil.
func (v *ChapterView) Err() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.lastErr
}

// Progress returns the result of the last pass.
func (v *ChapterView) Progress() Progress {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.progress
}

// Translate runs a pass. It is a no-op when the chapter is already
// translated. After a failed pass the chapter is restored first so the
// retry starts from the original text.
func (v *ChapterView) Translate(ctx context.Context) (Progress, error) {
	v.mu.Lock()
	switch v.state {
	case StateTranslating:
		v.mu.Unlock()
		return Progress{}, ErrPassInProgress
	case StateTranslated:
		p := v.progress
		v.mu.Unlock()
		return p, nil
	}
	retry := v.state == StateError || v.state == StatePartiallyTranslated
	v.state = StateTranslating
	v.lastErr = nil
	v.mu.Unlock()

	v.treeMu.Lock()
	if retry {
		v.restoreTree()
	}
	v.capture()
	fragments := ExtractFragments(v.root)
	progress, err := v.driver.Run(ctx, v.root, fragments, v.meta)
	v.treeMu.Unlock()

	v.mu.Lock()
	defer v.mu.Unlock()
	v.progress = progress
	switch {
	case err == nil:
		v.state = StateTranslated
	case progress.AppliedBatches > 0:
		v.state = StatePartiallyTranslated
		v.lastErr = err
	default:
		v.state = StateError
		v.lastErr = err
	}
	return progress, err
}

// Restore puts back the captured original content. Before any pass it
// leaves the tree untouched.
func (v *ChapterView) Restore() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.state == StateTranslating {
		return ErrPassInProgress
	}

	v.treeMu.Lock()
	v.restoreTree()
	v.treeMu.Unlock()

	v.state = StateOriginal
	v.lastErr = nil
	v.progress = Progress{}
	return nil
}

// Toggle restores a translated chapter and translates any other.
func (v *ChapterView) Toggle(ctx context.Context) (Progress, error) {
	if v.State() == StateTranslated {
		return Progress{}, v.Restore()
	}
	return v.Translate(ctx)
}

// HTML renders the current content of the chapter root.
func (v *ChapterView) HTML() (string, error) {
	v.treeMu.RLock()
	defer v.treeMu.RUnlock()
	return RenderInner(v.root)
}

// OriginalHTML renders the captured original content, or the current
// content when nothing has been captured yet.
func (v *ChapterView) OriginalHTML() (string, error) {
	v.treeMu.RLock()
	defer v.treeMu.RUnlock()
	if !v.captured {
		return RenderInner(v.root)
	}
	var buf bytes.Buffer
	for _, n := range v.original {
		if err := html.Render(&buf, n); err != nil {
			return "", err
		}
	}
	return buf.String(), nil
}

// capture stores a deep copy of root's children the first time it is called.
// Callers hold treeMu.
func (v *ChapterView) capture() {
	if v.captured {
		return
	}
	for c := v.root.FirstChild; c != nil; c = c.NextSibling {
		v.original = append(v.original, cloneTree(c))
	}
	v.captured = true
}

// restoreTree replaces root's children with fresh copies of the captured
// original. Callers hold treeMu.
func (v *ChapterView) restoreTree() {
	if !v.captured {
		return
	}
	for c := v.root.FirstChild; c != nil; {
		next := c.NextSibling
		v.root.RemoveChild(c)
		c = next
	}
	for _, n := range v.original {
		v.root.AppendChild(cloneTree(n))
	}
}

// RenderInner serializes the children of n, like innerHTML.
func RenderInner(n *html.Node) (string, error) {
	var buf bytes.Buffer
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return "", err
		}
	}
	return buf.String(), nil
}

func cloneTree(n *html.Node) *html.Node {
	c := &html.Node{
		Type:      n.Type,
		DataAtom:  n.DataAtom,
		Data:      n.Data,
		Namespace: n.Namespace,
		Attr:      append([]html.Attribute(nil), n.Attr...),
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		c.AppendChild(cloneTree(child))
	}
	return c
}

package translation

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestExtractFragments_SkipsCode(t *testing.T) {
	t.Parallel()

	root := chapterRoot(t, sampleChapter)
	got := ExtractFragments(root)
	want := []Fragment{
		{Owner: 1, Text: "Intro"},
		{Owner: 2, Text: "Hello"},
		{Owner: 3, Text: "world"},
		{Owner: 2, Text: "!"},
		{Owner: 8, Text: "Use"},
		{Owner: 8, Text: "now"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ExtractFragments mismatch (-want +got):\n%s", diff)
	}
	for _, f := range got {
		if f.IsCode {
			t.Errorf("fragment %q marked as code", f.Text)
		}
	}
}

func TestExtractFragments_Idempotent(t *testing.T) {
	t.Parallel()

	root := chapterRoot(t, sampleChapter)
	before := render(t, root)
	first := ExtractFragments(root)
	second := ExtractFragments(root)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("second extraction differs (-first +second):\n%s", diff)
	}
	if after := render(t, root); after != before {
		t.Errorf("extraction mutated the tree")
	}
}

func TestExtractFragments_CodeClassRoot(t *testing.T) {
	t.Parallel()

	root := chapterRoot(t, `<div class="markdown code"><p>hidden</p></div>`)
	if got := ExtractFragments(root); len(got) != 0 {
		t.Errorf("expected no fragments under a code root, got %v", got)
	}
}

func TestExtractFragments_NilAndEmpty(t *testing.T) {
	t.Parallel()

	if got := ExtractFragments(nil); got != nil {
		t.Errorf("ExtractFragments(nil) = %v", got)
	}
	root := chapterRoot(t, `<div class="markdown">   <p> </p></div>`)
	if got := ExtractFragments(root); len(got) != 0 {
		t.Errorf("whitespace-only text extracted: %v", got)
	}
}

func TestReplaceText_KeepsSurroundingSpace(t *testing.T) {
	t.Parallel()

	root := chapterRoot(t, `<div class="markdown"><p>Hello <b>x</b></p></div>`)
	elements := IndexElements(root)
	if !replaceText(elements[1], "Hello", "سلام") {
		t.Fatal("replaceText returned false")
	}
	want := `<p>سلام <b>x</b></p>`
	if got := render(t, root); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
	if replaceText(elements[1], "missing", "y") {
		t.Error("replaceText matched a missing text")
	}
}

func TestReplaceText_SkipsCodeClassSubtree(t *testing.T) {
	t.Parallel()

	root := chapterRoot(t, `<div class="markdown"><p><span class="code">Run</span> Run</p></div>`)
	elements := IndexElements(root)
	if !replaceText(elements[1], "Run", "چلائیں") {
		t.Fatal("replaceText returned false")
	}
	want := `<p><span class="code">Run</span> چلائیں</p>`
	if got := render(t, root); got != want {
		t.Errorf("got %q, want %q", got, want)
	}

	only := chapterRoot(t, `<div class="markdown"><p><span class="prism-code">Run</span></p></div>`)
	if replaceText(IndexElements(only)[1], "Run", "x") {
		t.Error("replaceText rewrote text under a prism-code element")
	}
}

// ===== Select =====

func TestSelect_Forms(t *testing.T) {
	t.Parallel()

	doc := parseDoc(t, `<html><body><main id="main" class="page"><div class="theme markdown">x</div></main></body></html>`)
	tests := []struct {
		sel  string
		want string
	}{
		{".markdown", "div"},
		{"div.markdown", "div"},
		{"#main", "main"},
		{"main#main.page", "main"},
		{"body", "body"},
	}
	for _, tc := range tests {
		n, err := Select(doc, tc.sel)
		if err != nil {
			t.Errorf("Select(%q): %v", tc.sel, err)
			continue
		}
		if n.Data != tc.want {
			t.Errorf("Select(%q) = <%s>, want <%s>", tc.sel, n.Data, tc.want)
		}
	}
}

func TestSelect_NotFound(t *testing.T) {
	t.Parallel()

	doc := parseDoc(t, `<html><body><p>no chapter</p></body></html>`)
	if _, err := Select(doc, ".markdown"); !errors.Is(err, ErrContentNotFound) {
		t.Errorf("expected ErrContentNotFound, got %v", err)
	}
}

func TestSelect_Invalid(t *testing.T) {
	t.Parallel()

	doc := parseDoc(t, `<html></html>`)
	for _, sel := range []string{"", "div p", "a > b", ".", "#", "[data-x]"} {
		if _, err := Select(doc, sel); !errors.Is(err, ErrInvalidSelector) {
			t.Errorf("Select(%q) = %v, want ErrInvalidSelector", sel, err)
		}
	}
}

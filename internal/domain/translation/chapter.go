package translation

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// ErrRestoreMismatch means restoring a chapter did not reproduce the
// captured original.
var ErrRestoreMismatch = errors.New("restored chapter differs from the original")

// ChapterRequest is the body of POST /api/chapters/translate.
type ChapterRequest struct {
	HTML           string `json:"html"`
	Selector       string `json:"selector,omitempty"`
	TargetLanguage string `json:"targetLanguage,omitempty"`
	Chapter        string `json:"chapter,omitempty"`
	Title          string `json:"title,omitempty"`
	// VerifyRestore restores the chapter after the pass and checks the
	// result matches OriginalHTML byte for byte.
	VerifyRestore bool `json:"verifyRestore,omitempty"`
}

// ChapterResult is the outcome of translating one chapter document.
// OriginalHTML is the root's content as captured before the first rewrite,
// so a client can switch back without another request.
type ChapterResult struct {
	HTML            string   `json:"html"`
	OriginalHTML    string   `json:"originalHtml"`
	State           State    `json:"state"`
	Progress        Progress `json:"progress"`
	Error           string   `json:"error,omitempty"`
	RestoreVerified bool     `json:"restoreVerified,omitempty"`
}

// TranslateChapter parses req.HTML, resolves the translation root and runs
// one pass over it. A failed pass is reported in the result, not as an
// error: the returned HTML then holds whatever batches were applied.
// Errors are returned only for unparsable input, a missing root or, with
// VerifyRestore, a restore that does not reproduce the original.
func TranslateChapter(ctx context.Context, driver *Driver, req ChapterRequest) (*ChapterResult, error) {
	doc, err := html.Parse(strings.NewReader(req.HTML))
	if err != nil {
		return nil, fmt.Errorf("parse chapter: %w", err)
	}
	selector := req.Selector
	if selector == "" {
		selector = DefaultSelector
	}
	root, err := Select(doc, selector)
	if err != nil {
		return nil, err
	}

	view := NewChapterView(root, driver, Meta{
		TargetLanguage: req.TargetLanguage,
		Chapter:        req.Chapter,
		Title:          req.Title,
	})
	progress, passErr := view.Translate(ctx)

	out, err := view.HTML()
	if err != nil {
		return nil, fmt.Errorf("render chapter: %w", err)
	}
	original, err := view.OriginalHTML()
	if err != nil {
		return nil, fmt.Errorf("render original chapter: %w", err)
	}
	res := &ChapterResult{HTML: out, OriginalHTML: original, State: view.State(), Progress: progress}
	if passErr != nil {
		res.Error = FallbackMessage
	}
	if req.VerifyRestore {
		if err := verifyRestore(ctx, view, original); err != nil {
			return nil, err
		}
		res.RestoreVerified = true
	}
	return res, nil
}

// verifyRestore switches view back to the original and compares the
// rendered root with the captured copy.
func verifyRestore(ctx context.Context, view *ChapterView, original string) error {
	var err error
	if view.State() == StateTranslated {
		_, err = view.Toggle(ctx)
	} else {
		err = view.Restore()
	}
	if err != nil {
		return fmt.Errorf("restore chapter: %w", err)
	}
	restored, err := view.HTML()
	if err != nil {
		return fmt.Errorf("render restored chapter: %w", err)
	}
	if restored != original {
		return ErrRestoreMismatch
	}
	return nil
}

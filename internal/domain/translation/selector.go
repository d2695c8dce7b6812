package translation

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// DefaultSelector matches the rendered markdown body of a docs page.
const DefaultSelector = ".markdown"

// ErrContentNotFound is returned when the selector matches nothing.
var ErrContentNotFound = errors.New("content not found")

// ErrInvalidSelector is returned for selectors outside the supported forms.
var ErrInvalidSelector = errors.New("invalid selector")

// selector is a single compound selector: tag, #id and .class parts, each optional.
type selector struct {
	tag     string
	id      string
	classes []string
}

// parseSelector accepts "tag", ".class", "#id" and combinations such as
// "div.markdown" or "article#main.content". Combinators are not supported.
func parseSelector(s string) (selector, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.ContainsAny(s, " >+~[]:,*") {
		return selector{}, fmt.Errorf("%w: %q", ErrInvalidSelector, s)
	}

	var sel selector
	i := strings.IndexAny(s, ".#")
	if i < 0 {
		sel.tag = strings.ToLower(s)
		return sel, nil
	}
	sel.tag = strings.ToLower(s[:i])

	for rest := s[i:]; rest != ""; {
		kind := rest[0]
		rest = rest[1:]
		end := strings.IndexAny(rest, ".#")
		if end < 0 {
			end = len(rest)
		}
		name := rest[:end]
		rest = rest[end:]
		if name == "" {
			return selector{}, fmt.Errorf("%w: %q", ErrInvalidSelector, s)
		}
		if kind == '#' {
			sel.id = name
		} else {
			sel.classes = append(sel.classes, name)
		}
	}
	return sel, nil
}

func (sel selector) matches(n *html.Node) bool {
	if n.Type != html.ElementNode {
		return false
	}
	if sel.tag != "" && n.Data != sel.tag {
		return false
	}
	if sel.id != "" && attr(n, "id") != sel.id {
		return false
	}
	for _, c := range sel.classes {
		if !hasClass(n, c) {
			return false
		}
	}
	return true
}

// Select returns the first element under doc, in document order, matching
// selectorText.
func Select(doc *html.Node, selectorText string) (*html.Node, error) {
	sel, err := parseSelector(selectorText)
	if err != nil {
		return nil, err
	}

	var found *html.Node
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		for c := n; c != nil && found == nil; c = c.NextSibling {
			if sel.matches(c) {
				found = c
				return
			}
			if c.FirstChild != nil {
				walk(c.FirstChild)
			}
		}
	}
	if doc != nil {
		if sel.matches(doc) {
			return doc, nil
		}
		if doc.FirstChild != nil {
			walk(doc.FirstChild)
		}
	}
	if found == nil {
		return nil, fmt.Errorf("%w: %s", ErrContentNotFound, selectorText)
	}
	return found, nil
}

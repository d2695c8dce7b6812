// Package translation extracts the human-readable text of a rendered
// chapter, sends it to a translation endpoint in fixed-size batches and
// writes the results back into the same tree. Code is never extracted and
// never rewritten, and the original chapter can always be restored.
package translation

import (
	"strings"
	"unicode"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Fragment is one piece of visible text and the element that owns it.
// Owner is the pre-order position of that element in IndexElements(root)
// for the pass root the fragment was extracted from.
type Fragment struct {
	Owner  int    `json:"owner"`
	Text   string `json:"text"`
	IsCode bool   `json:"isCode"`
}

// Classes that mark a highlighted code region rendered without <code>/<pre>.
var codeClasses = []string{"prism-code", "code"}

// IndexElements lists root followed by every descendant element in
// document order. Fragment owners index into this slice.
func IndexElements(root *html.Node) []*html.Node {
	if root == nil {
		return nil
	}
	nodes := []*html.Node{root}
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode {
				nodes = append(nodes, c)
			}
			walk(c)
		}
	}
	walk(root)
	return nodes
}

// ExtractFragments returns the translatable text under root in document
// order. It does not modify the tree.
//
// <code>, <pre>, <script> and <style> subtrees are skipped entirely. Text
// below an element carrying a code class is not emitted either.
func ExtractFragments(root *html.Node) []Fragment {
	if root == nil || isOpaque(root) {
		return nil
	}

	positions := make(map[*html.Node]int)
	for i, n := range IndexElements(root) {
		positions[n] = i
	}

	var out []Fragment
	var walk func(n *html.Node, inCode bool)
	walk = func(n *html.Node, inCode bool) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			switch c.Type {
			case html.TextNode:
				if inCode {
					continue
				}
				if text := strings.TrimSpace(c.Data); text != "" {
					out = append(out, Fragment{Owner: positions[n], Text: text})
				}
			case html.ElementNode:
				if isOpaque(c) {
					continue
				}
				walk(c, inCode || hasCodeClass(c))
			}
		}
	}
	walk(root, hasCodeClass(root))
	return out
}

// isOpaque reports elements whose content is never translated.
func isOpaque(n *html.Node) bool {
	if n.Type != html.ElementNode {
		return false
	}
	switch n.DataAtom {
	case atom.Code, atom.Pre, atom.Script, atom.Style:
		return true
	}
	return false
}

func hasCodeClass(n *html.Node) bool {
	for _, want := range codeClasses {
		if hasClass(n, want) {
			return true
		}
	}
	return false
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val
		}
	}
	return ""
}

// replaceText rewrites the first text node under owner whose trimmed
// content equals original. Leading and trailing whitespace of the node is
// kept so inline spacing survives. Code subtrees, by tag or by class, are
// not searched.
func replaceText(owner *html.Node, original, translated string) bool {
	var found *html.Node
	var walk func(n *html.Node, inCode bool)
	walk = func(n *html.Node, inCode bool) {
		for c := n.FirstChild; c != nil && found == nil; c = c.NextSibling {
			switch c.Type {
			case html.TextNode:
				if !inCode && strings.TrimSpace(c.Data) == original {
					found = c
				}
			case html.ElementNode:
				if !isOpaque(c) {
					walk(c, inCode || hasCodeClass(c))
				}
			}
		}
	}
	walk(owner, hasCodeClass(owner))
	if found == nil {
		return false
	}

	rest := strings.TrimLeftFunc(found.Data, unicode.IsSpace)
	lead := found.Data[:len(found.Data)-len(rest)]
	core := strings.TrimRightFunc(rest, unicode.IsSpace)
	trail := rest[len(core):]
	found.Data = lead + translated + trail
	return true
}

// Package document wraps a parsed career page behind a small locator API so
// extraction code does not depend on the HTML engine.
package document

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// ErrStructure is returned when a mandatory node is missing from a document.
var ErrStructure = errors.New("document structure mismatch")

// ErrReleased is returned when a released document is queried.
var ErrReleased = errors.New("document released")

// StructureError names the locator that failed to match.
type StructureError struct {
	URL     string
	Locator string
}

func (e *StructureError) Error() string {
	if e.URL == "" {
		return fmt.Sprintf("required node %q not found", e.Locator)
	}
	return fmt.Sprintf("required node %q not found in %s", e.Locator, e.URL)
}

// Unwrap returns ErrStructure.
func (*StructureError) Unwrap() error { return ErrStructure }

// Document is a parsed page. It is owned by a single caller and must not be
// used after Release.
type Document struct {
	doc *goquery.Document
	url string
}

// Parse reads an HTML page. url is informational and appears in errors.
func Parse(r io.Reader, url string) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", url, err)
	}
	return &Document{doc: goquery.NewDocumentFromNode(root), url: url}, nil
}

// ParseBytes is Parse for an in-memory body.
func ParseBytes(body []byte, url string) (*Document, error) {
	return Parse(bytes.NewReader(body), url)
}

// URL returns the address the document was fetched from.
func (d *Document) URL() string {
	if d == nil {
		return ""
	}
	return d.url
}

// Released reports whether Release has been called.
func (d *Document) Released() bool { return d == nil || d.doc == nil }

// Release drops the parsed tree. It is safe to call on a nil Document and
// more than once.
func (d *Document) Release() {
	if d == nil {
		return
	}
	d.doc = nil
}

// FindOptional returns the first node matching locator, or nil.
func (d *Document) FindOptional(locator string) *Node {
	if d.Released() {
		return nil
	}
	sel := d.doc.Find(locator).First()
	if sel.Length() == 0 {
		return nil
	}
	return &Node{sel: sel}
}

// FindRequired returns the first node matching locator, or a *StructureError.
func (d *Document) FindRequired(locator string) (*Node, error) {
	if d.Released() {
		return nil, ErrReleased
	}
	n := d.FindOptional(locator)
	if n == nil {
		return nil, &StructureError{URL: d.url, Locator: locator}
	}
	return n, nil
}

// FindAll returns every node matching locator, in document order.
func (d *Document) FindAll(locator string) []*Node {
	if d.Released() {
		return nil
	}
	return nodes(d.doc.Find(locator))
}

// Node is a single element within a Document.
type Node struct {
	sel *goquery.Selection
}

// Text returns the whitespace-trimmed text content of the node.
func (n *Node) Text() string {
	return strings.TrimSpace(n.sel.Text())
}

// Attr returns the value of the named attribute.
func (n *Node) Attr(name string) (string, bool) {
	return n.sel.Attr(name)
}

// HasClass reports whether the node carries the given class.
func (n *Node) HasClass(class string) bool {
	return n.sel.HasClass(class)
}

// FindOptional returns the first descendant matching locator, or nil.
func (n *Node) FindOptional(locator string) *Node {
	sel := n.sel.Find(locator).First()
	if sel.Length() == 0 {
		return nil
	}
	return &Node{sel: sel}
}

// FindAll returns every descendant matching locator.
func (n *Node) FindAll(locator string) []*Node {
	return nodes(n.sel.Find(locator))
}

func nodes(sel *goquery.Selection) []*Node {
	out := make([]*Node, 0, sel.Length())
	sel.Each(func(_ int, s *goquery.Selection) {
		out = append(out, &Node{sel: s})
	})
	return out
}

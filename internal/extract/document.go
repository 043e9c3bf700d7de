package extract

import (
	"io"
	"strings"

	"golang.org/x/net/html"
)

// Document is a parsed page plus the URL it was loaded from.
// All lookups return empty values instead of errors.
type Document struct {
	URL  string
	root *html.Node
}

// Parse reads an HTML page. The parser is lenient, so only reader
// failures produce an error.
func Parse(r io.Reader, pageURL string) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, err
	}
	return &Document{URL: pageURL, root: root}, nil
}

// ParseString is Parse for an in-memory page.
func ParseString(page, pageURL string) (*Document, error) {
	return Parse(strings.NewReader(page), pageURL)
}

// Title returns the text of the <title> element.
func (d *Document) Title() string {
	return textContent(d.Find(func(n *html.Node) bool { return isElement(n, "title") }))
}

// Meta returns the content of the first <meta> whose name or property is
// one of keys, tried in order.
func (d *Document) Meta(keys ...string) string {
	for _, key := range keys {
		n := d.Find(func(n *html.Node) bool {
			if !isElement(n, "meta") {
				return false
			}
			return strings.EqualFold(attr(n, "name"), key) ||
				strings.EqualFold(attr(n, "property"), key) ||
				strings.EqualFold(attr(n, "itemprop"), key)
		})
		if v := strings.TrimSpace(attr(n, "content")); v != "" {
			return v
		}
	}
	return ""
}

// Find returns the first node in document order matching match, or nil.
func (d *Document) Find(match func(*html.Node) bool) *html.Node {
	if d == nil || d.root == nil {
		return nil
	}
	return findIn(d.root, match)
}

// Text returns the trimmed text of the first node matching match.
func (d *Document) Text(match func(*html.Node) bool) string {
	return textContent(d.Find(match))
}

func findIn(n *html.Node, match func(*html.Node) bool) *html.Node {
	if match(n) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findIn(c, match); found != nil {
			return found
		}
	}
	return nil
}

// Selector helpers. They cover the handful of CSS selectors the platform
// extractors need: tag, tag.class, [attr=value], and "ancestor descendant".

func byTag(tag string) func(*html.Node) bool {
	return func(n *html.Node) bool { return isElement(n, tag) }
}

func byTagClass(tag, class string) func(*html.Node) bool {
	return func(n *html.Node) bool {
		return (tag == "" || isElement(n, tag)) && n.Type == html.ElementNode && hasClass(n, class)
	}
}

func byAttr(key, value string) func(*html.Node) bool {
	return func(n *html.Node) bool {
		return n.Type == html.ElementNode && attr(n, key) == value
	}
}

// within matches nodes satisfying inner that have an ancestor satisfying outer.
func within(outer, inner func(*html.Node) bool) func(*html.Node) bool {
	return func(n *html.Node) bool {
		if !inner(n) {
			return false
		}
		for p := n.Parent; p != nil; p = p.Parent {
			if outer(p) {
				return true
			}
		}
		return false
	}
}

func isElement(n *html.Node, tag string) bool {
	return n != nil && n.Type == html.ElementNode && strings.EqualFold(n.Data, tag)
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

// attr returns the value of an attribute, case-insensitive.
func attr(n *html.Node, key string) string {
	if n == nil {
		return ""
	}
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, key) {
			return a.Val
		}
	}
	return ""
}

// textContent returns the whitespace-collapsed text content of a node.
func textContent(n *html.Node) string {
	if n == nil {
		return ""
	}
	var text strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			text.WriteString(n.Data)
			text.WriteString(" ")
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(text.String()), " ")
}

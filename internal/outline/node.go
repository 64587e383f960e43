// Package outline holds the in-memory form of a parsed outline document.
package outline

import "strings"

// Kind tells a document root apart from its headings.
type Kind int

const (
	Document Kind = iota
	Heading
)

// Node is one element of an outline tree. A Document node has Level 0;
// a Heading's Level is its number of leading stars.
type Node struct {
	Kind       Kind
	Level      int
	Title      string            // cleaned title, used for subjects
	Headline   string            // raw text after the stars
	Properties map[string]string // keys are upper case
	Body       []string
	Children   []*Node
}

// Property returns the value of the named property. Lookup is case-insensitive.
func (n *Node) Property(key string) (string, bool) {
	if n.Properties == nil {
		return "", false
	}
	v, ok := n.Properties[strings.ToUpper(key)]
	return v, ok
}

// Headings returns the node's child headings in document order.
func (n *Node) Headings() []*Node {
	var out []*Node
	for _, c := range n.Children {
		if c.Kind == Heading {
			out = append(out, c)
		}
	}
	return out
}

// Render returns the node's text with its subtree, headings renormalized so
// that n itself sits at depth 1. A Document renders its title as the depth 1
// headline. Property drawers are not rendered.
func (n *Node) Render() string {
	var b strings.Builder
	n.render(&b, n.Level)
	return strings.TrimRight(b.String(), "\n \t")
}

func (n *Node) render(b *strings.Builder, base int) {
	headline := n.Headline
	if n.Kind == Document {
		headline = n.Title
	}
	depth := n.Level - base + 1
	if depth < 1 {
		depth = 1
	}
	b.WriteString(strings.Repeat("*", depth))
	if headline != "" {
		b.WriteByte(' ')
		b.WriteString(headline)
	}
	b.WriteByte('\n')
	for _, line := range n.Body {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	for _, c := range n.Children {
		c.render(b, base)
	}
}

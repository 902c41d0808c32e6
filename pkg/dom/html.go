package dom

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// toHTML converts n and its subtree into an x/net/html tree.
func toHTML(n *Node) *html.Node {
	var h *html.Node
	switch n.Type {
	case ElementNode:
		h = &html.Node{
			Type:     html.ElementNode,
			Data:     n.Tag,
			DataAtom: atom.Lookup([]byte(n.Tag)),
		}
		for _, a := range n.attrs {
			h.Attr = append(h.Attr, html.Attribute{Key: a.Name, Val: a.Value})
		}
	case TextNode:
		h = &html.Node{Type: html.TextNode, Data: n.Data}
	case CommentNode:
		h = &html.Node{Type: html.CommentNode, Data: n.Data}
	default:
		return nil
	}

	for _, c := range n.children {
		if hc := toHTML(c); hc != nil {
			h.AppendChild(hc)
		}
	}
	return h
}

// fromHTML converts an x/net/html node into a live node. Document and
// doctype nodes yield nil.
func fromHTML(h *html.Node) *Node {
	var n *Node
	switch h.Type {
	case html.ElementNode:
		n = NewElement(h.Data)
		for _, a := range h.Attr {
			name := a.Key
			if a.Namespace != "" {
				name = a.Namespace + ":" + a.Key
			}
			n.attrs = append(n.attrs, Attribute{Name: name, Value: a.Val})
		}
	case html.TextNode:
		return NewText(h.Data)
	case html.CommentNode:
		return NewComment(h.Data)
	default:
		return nil
	}

	for c := h.FirstChild; c != nil; c = c.NextSibling {
		if child := fromHTML(c); child != nil {
			child.parent = n
			n.children = append(n.children, child)
		}
	}
	return n
}

// Render writes the HTML serialization of n and its subtree to w.
func Render(w io.Writer, n *Node) error {
	h := toHTML(n)
	if h == nil {
		return fmt.Errorf("dom: cannot render node of type %s", n.Type)
	}
	return html.Render(w, h)
}

// OuterHTML returns the HTML serialization of n including n itself.
func OuterHTML(n *Node) string {
	var buf bytes.Buffer
	if err := Render(&buf, n); err != nil {
		return ""
	}
	return buf.String()
}

// InnerHTML returns the HTML serialization of n's children.
func InnerHTML(n *Node) string {
	var buf bytes.Buffer
	for _, c := range n.children {
		if err := Render(&buf, c); err != nil {
			return ""
		}
	}
	return buf.String()
}

// Parse parses a full HTML document and returns its <html> element.
func Parse(r io.Reader) (*Node, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("dom: parse: %w", err)
	}
	for c := doc.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			return fromHTML(c), nil
		}
	}
	return nil, fmt.Errorf("dom: parse: no root element")
}

// ParseFragment parses an HTML fragment in a <body> context and returns the
// top-level nodes.
func ParseFragment(r io.Reader) ([]*Node, error) {
	context := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	hs, err := html.ParseFragment(r, context)
	if err != nil {
		return nil, fmt.Errorf("dom: parse fragment: %w", err)
	}
	nodes := make([]*Node, 0, len(hs))
	for _, h := range hs {
		if n := fromHTML(h); n != nil {
			nodes = append(nodes, n)
		}
	}
	return nodes, nil
}

// ParseString is ParseFragment over a string, returning the single
// top-level node. It fails when the fragment has more or fewer.
func ParseString(s string) (*Node, error) {
	nodes, err := ParseFragment(strings.NewReader(s))
	if err != nil {
		return nil, err
	}
	if len(nodes) != 1 {
		return nil, fmt.Errorf("dom: parse: want 1 top-level node, got %d", len(nodes))
	}
	return nodes[0], nil
}

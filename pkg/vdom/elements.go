package vdom

// voidElements are elements that cannot have children.
var voidElements = map[string]bool{
	"area":   true,
	"base":   true,
	"br":     true,
	"col":    true,
	"embed":  true,
	"hr":     true,
	"img":    true,
	"input":  true,
	"link":   true,
	"meta":   true,
	"param":  true,
	"source": true,
	"track":  true,
	"wbr":    true,
}

// IsVoidElement returns true if the tag is a void element.
func IsVoidElement(tag string) bool {
	return voidElements[tag]
}

// Tag creates a tag node. Arguments can be: nil, Attr, []Attr, Attrs,
// *VNode, []*VNode or string (shorthand for a text child).
// Void element names produce nodes whose children are dropped.
func Tag(name string, args ...any) *VNode {
	return createElement(name, IsVoidElement(name), args)
}

// VoidTag creates a tag node that may not own children, regardless of name.
func VoidTag(name string, args ...any) *VNode {
	return createElement(name, true, args)
}

// Text creates a text node.
func Text(content string) *VNode {
	return &VNode{
		Kind: KindText,
		ID:   ids.Next(),
		Void: true,
		Text: content,
	}
}

// Comment creates a comment node.
func Comment(content string) *VNode {
	return &VNode{
		Kind: KindComment,
		ID:   ids.Next(),
		Void: true,
		Text: content,
	}
}

// Empty creates the placeholder rendered where nothing is to be shown.
func Empty() *VNode {
	return Comment(EmptyText)
}

// createElement creates a new tag node with the given arguments.
func createElement(name string, void bool, args []any) *VNode {
	node := &VNode{
		Kind:     KindTag,
		ID:       ids.Next(),
		Tag:      name,
		Void:     void,
		Attrs:    make(Attrs),
		Children: make([]*VNode, 0),
	}

	for _, arg := range args {
		switch v := arg.(type) {
		case nil:
			// Ignore nil (allows conditional attributes and children)
			continue

		case Attr:
			if !v.IsEmpty() {
				node.Attrs[v.Name] = v.Value
			}

		case []Attr:
			for _, a := range v {
				if !a.IsEmpty() {
					node.Attrs[a.Name] = a.Value
				}
			}

		case Attrs:
			for name, value := range v {
				if name != "" {
					node.Attrs[name] = value
				}
			}

		case *VNode:
			if v != nil {
				node.Children = append(node.Children, v)
			}

		case []*VNode:
			for _, child := range v {
				if child != nil {
					node.Children = append(node.Children, child)
				}
			}

		case string:
			node.Children = append(node.Children, Text(v))
		}
	}

	if node.Void {
		node.Children = node.Children[:0]
	}

	return node
}

// Document structure

// Html creates an <html> element.
func Html(args ...any) *VNode { return Tag("html", args...) }

// Body creates a <body> element.
func Body(args ...any) *VNode { return Tag("body", args...) }

// Content sectioning

// Header creates a <header> element.
func Header(args ...any) *VNode { return Tag("header", args...) }

// Footer creates a <footer> element.
func Footer(args ...any) *VNode { return Tag("footer", args...) }

// Main creates a <main> element.
func Main(args ...any) *VNode { return Tag("main", args...) }

// Nav creates a <nav> element.
func Nav(args ...any) *VNode { return Tag("nav", args...) }

// Section creates a <section> element.
func Section(args ...any) *VNode { return Tag("section", args...) }

// Article creates an <article> element.
func Article(args ...any) *VNode { return Tag("article", args...) }

// H1 creates an <h1> element.
func H1(args ...any) *VNode { return Tag("h1", args...) }

// H2 creates an <h2> element.
func H2(args ...any) *VNode { return Tag("h2", args...) }

// H3 creates an <h3> element.
func H3(args ...any) *VNode { return Tag("h3", args...) }

// Text content

// Div creates a <div> element.
func Div(args ...any) *VNode { return Tag("div", args...) }

// P creates a <p> element.
func P(args ...any) *VNode { return Tag("p", args...) }

// Ul creates a <ul> element.
func Ul(args ...any) *VNode { return Tag("ul", args...) }

// Ol creates an <ol> element.
func Ol(args ...any) *VNode { return Tag("ol", args...) }

// Li creates an <li> element.
func Li(args ...any) *VNode { return Tag("li", args...) }

// Pre creates a <pre> element.
func Pre(args ...any) *VNode { return Tag("pre", args...) }

// Hr creates an <hr> element.
func Hr(args ...any) *VNode { return Tag("hr", args...) }

// Inline text semantics

// Span creates a <span> element.
func Span(args ...any) *VNode { return Tag("span", args...) }

// A creates an <a> element.
func A(args ...any) *VNode { return Tag("a", args...) }

// Strong creates a <strong> element.
func Strong(args ...any) *VNode { return Tag("strong", args...) }

// Em creates an <em> element.
func Em(args ...any) *VNode { return Tag("em", args...) }

// Code creates a <code> element.
func Code(args ...any) *VNode { return Tag("code", args...) }

// Br creates a <br> element.
func Br(args ...any) *VNode { return Tag("br", args...) }

// Media

// Img creates an <img> element.
func Img(args ...any) *VNode { return Tag("img", args...) }

// Forms

// Form creates a <form> element.
func Form(args ...any) *VNode { return Tag("form", args...) }

// Input creates an <input> element.
func Input(args ...any) *VNode { return Tag("input", args...) }

// Button creates a <button> element.
func Button(args ...any) *VNode { return Tag("button", args...) }

// Label creates a <label> element.
func Label(args ...any) *VNode { return Tag("label", args...) }

// Select creates a <select> element.
func Select(args ...any) *VNode { return Tag("select", args...) }

// Option creates an <option> element.
func Option(args ...any) *VNode { return Tag("option", args...) }

// Textarea creates a <textarea> element.
func Textarea(args ...any) *VNode { return Tag("textarea", args...) }

// Tables

// Table creates a <table> element.
func Table(args ...any) *VNode { return Tag("table", args...) }

// Tbody creates a <tbody> element.
func Tbody(args ...any) *VNode { return Tag("tbody", args...) }

// Tr creates a <tr> element.
func Tr(args ...any) *VNode { return Tag("tr", args...) }

// Td creates a <td> element.
func Td(args ...any) *VNode { return Tag("td", args...) }

// Th creates a <th> element.
func Th(args ...any) *VNode { return Tag("th", args...) }

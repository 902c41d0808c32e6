package render

import (
	"bytes"
	"fmt"
	"io"
	"slices"

	"golang.org/x/net/html/atom"

	"github.com/vango-dev/vtree/pkg/vdom"
)

// RendererConfig configures the HTML renderer.
type RendererConfig struct {
	// Pretty indents block elements one per line. It adds whitespace text,
	// so use it for inspection only.
	Pretty bool

	// Indent is one indentation level in pretty mode. Defaults to two
	// spaces.
	Indent string

	// WrapperTag wraps a text or comment root so the output always has a
	// single root element, matching how such roots are mounted. Empty
	// renders the root bare.
	WrapperTag string
}

// Renderer writes virtual trees as HTML. The output for a tree is the
// markup a Mounter would produce for it: keys are dropped and handlers
// appear as data-on-<event> markers.
type Renderer struct {
	config RendererConfig
}

// NewRenderer returns a Renderer for config.
func NewRenderer(config RendererConfig) *Renderer {
	if config.Indent == "" {
		config.Indent = "  "
	}
	return &Renderer{config: config}
}

// RenderToString renders node to a string.
func (r *Renderer) RenderToString(node *vdom.VNode) (string, error) {
	var buf bytes.Buffer
	if err := r.RenderToWriter(&buf, node); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// RenderToWriter renders node to w. A nil node writes nothing.
func (r *Renderer) RenderToWriter(w io.Writer, node *vdom.VNode) error {
	out := &htmlWriter{w: w, indent: r.config.Indent}
	if node != nil && !vdom.IsTag(node) && r.config.WrapperTag != "" {
		node = vdom.Tag(r.config.WrapperTag, node)
	}
	r.node(out, node, 0)
	return out.err
}

func (r *Renderer) node(out *htmlWriter, node *vdom.VNode, depth int) {
	if node == nil {
		return
	}
	switch node.Kind {
	case vdom.KindTag:
		r.element(out, node, depth)
	case vdom.KindText:
		out.str(escapeHTML(node.Text))
	case vdom.KindComment:
		out.str("<!--" + escapeComment(node.Text) + "-->")
	default:
		out.fail(fmt.Errorf("render: unknown node kind %d", node.Kind))
	}
}

func (r *Renderer) element(out *htmlWriter, node *vdom.VNode, depth int) {
	pretty := r.config.Pretty
	if pretty && depth > 0 {
		out.pad(depth)
	}

	out.str("<" + node.Tag)
	writeAttrs(out, node.Attrs)
	out.str(">")

	if node.Void {
		if pretty {
			out.str("\n")
		}
		return
	}

	// Block children go on their own lines; inline content stays on the
	// tag's line.
	block := pretty && len(node.Children) > 0 && !isInline(node.Tag)
	if block {
		out.str("\n")
	}
	for _, child := range node.Children {
		r.node(out, child, depth+1)
	}
	if block {
		out.pad(depth)
	}

	out.str("</" + node.Tag + ">")
	if pretty {
		out.str("\n")
	}
}

// writeAttrs writes literal attributes in name order, then one
// data-on-<event> marker per handler.
func writeAttrs(out *htmlWriter, attrs vdom.Attrs) {
	names := make([]string, 0, len(attrs))
	for name := range attrs {
		if name != vdom.KeyAttr {
			names = append(names, name)
		}
	}
	slices.Sort(names)

	var events []string
	for _, name := range names {
		value := attrs[name]
		if value.IsHandler() {
			events = append(events, vdom.EventName(name))
			continue
		}
		text, present := value.Literal()
		switch {
		case !present:
		case value.Kind() == vdom.ValueBool:
			out.str(" " + name)
		default:
			out.str(" " + name + `="` + escapeAttr(text) + `"`)
		}
	}
	for _, event := range events {
		out.str(" data-on-" + event + `="true"`)
	}
}

// inline elements stay on their parent's line in pretty mode.
var inline = map[atom.Atom]bool{
	atom.A: true, atom.Abbr: true, atom.B: true, atom.Br: true,
	atom.Cite: true, atom.Code: true, atom.Em: true, atom.I: true,
	atom.Kbd: true, atom.Label: true, atom.Mark: true, atom.Q: true,
	atom.S: true, atom.Small: true, atom.Span: true, atom.Strong: true,
	atom.Sub: true, atom.Sup: true, atom.Time: true, atom.U: true,
}

func isInline(tag string) bool {
	return inline[atom.Lookup([]byte(tag))]
}

// htmlWriter remembers the first write error and drops later writes.
type htmlWriter struct {
	w      io.Writer
	indent string
	err    error
}

func (o *htmlWriter) str(s string) {
	if o.err == nil {
		_, o.err = io.WriteString(o.w, s)
	}
}

func (o *htmlWriter) pad(depth int) {
	for i := 0; i < depth; i++ {
		o.str(o.indent)
	}
}

func (o *htmlWriter) fail(err error) {
	if o.err == nil {
		o.err = err
	}
}

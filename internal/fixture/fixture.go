// Package fixture reads virtual trees from YAML or JSON documents.
//
// A node is a mapping with exactly one of the keys tag, text or comment:
//
//	tag: ul
//	attrs:
//	  class: list
//	  key: 1
//	  onclick: "@select"
//	children:
//	  - tag: li
//	    children: [a]
//	  - comment: end of list
//
// A scalar child is shorthand for a text node. Attribute values keep their
// YAML type: strings, numbers and booleans map to the matching value kind.
// A string starting with "@" is a handler reference by name ("@" alone is
// an anonymous handler) and "@@" escapes a literal "@". The key
// "void: true" marks a tag that may not have children, and "empty: true"
// produces the empty placeholder.
//
// Several documents separated by "---" form a sequence of trees, rendered
// in order by the apply command.
package fixture

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/vango-dev/vtree/internal/errors"
	"github.com/vango-dev/vtree/pkg/vdom"
)

// HandlerPrefix marks a handler reference in an attribute value.
const HandlerPrefix = "@"

// HandlerResolver returns the function bound to a handler name, or nil.
type HandlerResolver func(name string) func(*vdom.Event)

// Option configures parsing.
type Option func(*parser)

// WithFile names the source in error locations.
func WithFile(name string) Option {
	return func(p *parser) {
		p.file = name
	}
}

// WithResolver binds handler references to functions.
func WithResolver(resolve HandlerResolver) Option {
	return func(p *parser) {
		p.resolve = resolve
	}
}

type parser struct {
	file    string
	resolve HandlerResolver
}

var nodeKeys = map[string]bool{
	"tag": true, "text": true, "comment": true, "empty": true,
	"attrs": true, "children": true, "void": true,
}

// Parse reads a single tree. An empty document is the nil tree.
func Parse(data []byte, opts ...Option) (*vdom.VNode, error) {
	trees, err := ParseAll(data, opts...)
	if err != nil {
		return nil, err
	}
	switch len(trees) {
	case 0:
		return nil, nil
	case 1:
		return trees[0], nil
	default:
		p := newParser(opts)
		return nil, p.errorf(nil, "expected one document, found %d", len(trees))
	}
}

// ParseAll reads every document in data as a tree. An explicit null
// document is the nil tree.
func ParseAll(data []byte, opts ...Option) ([]*vdom.VNode, error) {
	p := newParser(opts)
	dec := yaml.NewDecoder(bytes.NewReader(data))

	var trees []*vdom.VNode
	for {
		var doc yaml.Node
		err := dec.Decode(&doc)
		if stderrors.Is(err, io.EOF) {
			return trees, nil
		}
		if err != nil {
			return nil, p.errorf(nil, "%v", err)
		}
		tree, err := p.document(&doc)
		if err != nil {
			return nil, err
		}
		trees = append(trees, tree)
	}
}

// Load reads a single tree from path.
func Load(path string, opts ...Option) (*vdom.VNode, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("E140", "%s", path).Wrap(err)
	}
	return Parse(data, append([]Option{WithFile(path)}, opts...)...)
}

// LoadAll reads every tree from path.
func LoadAll(path string, opts ...Option) ([]*vdom.VNode, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("E140", "%s", path).Wrap(err)
	}
	return ParseAll(data, append([]Option{WithFile(path)}, opts...)...)
}

func newParser(opts []Option) *parser {
	p := &parser{}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *parser) errorf(at *yaml.Node, format string, args ...any) *errors.VangoError {
	err := errors.Errorf("E200", format, args...)
	if at != nil && p.file != "" {
		err = err.WithLocation(p.file, at.Line, at.Column)
	} else if at != nil {
		err.Message += fmt.Sprintf(" (line %d, column %d)", at.Line, at.Column)
	}
	return err
}

func (p *parser) document(doc *yaml.Node) (*vdom.VNode, error) {
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, nil
	}
	root := doc.Content[0]
	if root.Kind == yaml.ScalarNode && root.Tag == "!!null" {
		return nil, nil
	}
	return p.node(resolveAlias(root))
}

func resolveAlias(n *yaml.Node) *yaml.Node {
	for n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	return n
}

func (p *parser) node(n *yaml.Node) (*vdom.VNode, error) {
	switch n.Kind {
	case yaml.ScalarNode:
		return vdom.Text(n.Value), nil
	case yaml.MappingNode:
	default:
		return nil, p.errorf(n, "a node must be a mapping or a scalar")
	}

	fields := make(map[string]*yaml.Node, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		key, value := n.Content[i], resolveAlias(n.Content[i+1])
		if !nodeKeys[key.Value] {
			return nil, p.errorf(key, "unknown field %q", key.Value)
		}
		if _, dup := fields[key.Value]; dup {
			return nil, p.errorf(key, "duplicate field %q", key.Value)
		}
		fields[key.Value] = value
	}

	var kinds []string
	for _, k := range []string{"tag", "text", "comment", "empty"} {
		if _, ok := fields[k]; ok {
			kinds = append(kinds, k)
		}
	}
	if len(kinds) != 1 {
		return nil, p.errorf(n, "a node needs exactly one of tag, text, comment or empty, found %d", len(kinds))
	}

	switch kinds[0] {
	case "text", "comment", "empty":
		for _, k := range []string{"attrs", "children", "void"} {
			if f, ok := fields[k]; ok {
				return nil, p.errorf(f, "%s node cannot have %s", kinds[0], k)
			}
		}
		f := fields[kinds[0]]
		if f.Kind != yaml.ScalarNode {
			return nil, p.errorf(f, "%s must be a scalar", kinds[0])
		}
		switch kinds[0] {
		case "text":
			return vdom.Text(f.Value), nil
		case "comment":
			return vdom.Comment(f.Value), nil
		default:
			return vdom.Empty(), nil
		}
	}

	return p.tag(fields)
}

func (p *parser) tag(fields map[string]*yaml.Node) (*vdom.VNode, error) {
	nameNode := fields["tag"]
	name := strings.TrimSpace(nameNode.Value)
	if nameNode.Kind != yaml.ScalarNode || name == "" {
		return nil, p.errorf(nameNode, "tag must be a non-empty name")
	}

	void := vdom.IsVoidElement(name)
	if f, ok := fields["void"]; ok {
		b, err := strconv.ParseBool(f.Value)
		if err != nil || f.Kind != yaml.ScalarNode {
			return nil, p.errorf(f, "void must be a boolean")
		}
		void = b
	}

	var args []any
	if f, ok := fields["attrs"]; ok {
		attrs, err := p.attrs(f)
		if err != nil {
			return nil, err
		}
		args = append(args, attrs)
	}

	if f, ok := fields["children"]; ok {
		if void {
			return nil, p.errorf(f, "void element <%s> cannot have children", name)
		}
		if f.Kind != yaml.SequenceNode {
			return nil, p.errorf(f, "children must be a sequence")
		}
		for _, c := range f.Content {
			child, err := p.node(resolveAlias(c))
			if err != nil {
				return nil, err
			}
			args = append(args, child)
		}
	}

	if void {
		return vdom.VoidTag(name, args...), nil
	}
	return vdom.Tag(name, args...), nil
}

func (p *parser) attrs(n *yaml.Node) (vdom.Attrs, error) {
	if n.Kind != yaml.MappingNode {
		return nil, p.errorf(n, "attrs must be a mapping")
	}
	attrs := make(vdom.Attrs, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		key, value := n.Content[i], resolveAlias(n.Content[i+1])
		if key.Value == "" {
			return nil, p.errorf(key, "attribute name must not be empty")
		}
		if _, dup := attrs[key.Value]; dup {
			return nil, p.errorf(key, "duplicate attribute %q", key.Value)
		}
		v, err := p.value(key.Value, value)
		if err != nil {
			return nil, err
		}
		attrs[key.Value] = v
	}
	return attrs, nil
}

func (p *parser) value(name string, n *yaml.Node) (vdom.Value, error) {
	if n.Kind != yaml.ScalarNode {
		return vdom.Value{}, p.errorf(n, "attribute %s must be a scalar", name)
	}

	switch n.Tag {
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return vdom.Value{}, p.errorf(n, "attribute %s: %v", name, err)
		}
		return vdom.Bool(b), nil
	case "!!int", "!!float":
		var f float64
		if err := n.Decode(&f); err != nil {
			return vdom.Value{}, p.errorf(n, "attribute %s: %v", name, err)
		}
		return vdom.Number(f), nil
	case "!!null":
		return vdom.String(""), nil
	}

	s := n.Value
	if strings.HasPrefix(s, HandlerPrefix+HandlerPrefix) {
		return vdom.String(s[1:]), nil
	}
	if strings.HasPrefix(s, HandlerPrefix) {
		handlerName := s[len(HandlerPrefix):]
		h := &vdom.Handler{Name: handlerName}
		if p.resolve != nil && handlerName != "" {
			h.Fn = p.resolve(handlerName)
		}
		return vdom.HandlerValue(h), nil
	}
	return vdom.String(s), nil
}

// Marshal writes tree as a YAML document in the form Parse reads.
func Marshal(tree *vdom.VNode) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(toYAML(tree)); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func toYAML(node *vdom.VNode) *yaml.Node {
	if node == nil {
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
	}
	m := &yaml.Node{Kind: yaml.MappingNode}
	add := func(key string, value *yaml.Node) {
		m.Content = append(m.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: key}, value)
	}
	scalar := func(tag, value string) *yaml.Node {
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: value}
	}

	switch node.Kind {
	case vdom.KindText:
		add("text", scalar("!!str", node.Text))
		return m
	case vdom.KindComment:
		if vdom.IsEmptyNode(node) {
			add("empty", scalar("!!bool", "true"))
			return m
		}
		add("comment", scalar("!!str", node.Text))
		return m
	}

	add("tag", scalar("!!str", node.Tag))
	if node.Void != vdom.IsVoidElement(node.Tag) {
		add("void", scalar("!!bool", strconv.FormatBool(node.Void)))
	}

	if len(node.Attrs) > 0 {
		names := make([]string, 0, len(node.Attrs))
		for name := range node.Attrs {
			names = append(names, name)
		}
		sort.Strings(names)

		attrs := &yaml.Node{Kind: yaml.MappingNode}
		for _, name := range names {
			v := node.Attrs[name]
			var vn *yaml.Node
			switch v.Kind() {
			case vdom.ValueNumber:
				vn = scalar("!!float", v.String())
				if v.Num() == float64(int64(v.Num())) {
					vn.Tag = "!!int"
				}
			case vdom.ValueBool:
				vn = scalar("!!bool", v.String())
			case vdom.ValueHandler:
				vn = scalar("!!str", HandlerPrefix+v.String())
			default:
				s := v.String()
				if strings.HasPrefix(s, HandlerPrefix) {
					s = HandlerPrefix + s
				}
				vn = scalar("!!str", s)
			}
			attrs.Content = append(attrs.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: name}, vn)
		}
		add("attrs", attrs)
	}

	if len(node.Children) > 0 {
		children := &yaml.Node{Kind: yaml.SequenceNode}
		for _, child := range node.Children {
			if child != nil {
				children.Content = append(children.Content, toYAML(child))
			}
		}
		add("children", children)
	}
	return m
}

package protocol

import (
	"fmt"
	"sort"

	"github.com/vango-dev/vtree/pkg/vdom"
)

// nilMarker encodes a nil node or an absent value.
const nilMarker = 0xFF

// EncodeVNode appends node and its subtree. Attributes are written in name
// order so equal trees encode to equal bytes. Handlers carry only their
// name.
func EncodeVNode(e *Encoder, node *vdom.VNode) {
	if node == nil {
		e.WriteByte(nilMarker)
		return
	}

	e.WriteByte(byte(node.Kind))
	e.WriteString(node.ID)

	switch node.Kind {
	case vdom.KindTag:
		e.WriteString(node.Tag)
		e.WriteBool(node.Void)
		EncodeAttrs(e, node.Attrs)

		e.WriteUvarint(uint64(countChildren(node)))
		for _, child := range node.Children {
			if child != nil {
				EncodeVNode(e, child)
			}
		}

	case vdom.KindText, vdom.KindComment:
		e.WriteString(node.Text)
	}
}

// encodeShallow appends node without its children. Only the key and the
// attributes named in names are written.
func encodeShallow(e *Encoder, node *vdom.VNode, names []string) {
	if node == nil {
		e.WriteByte(nilMarker)
		return
	}

	e.WriteByte(byte(node.Kind))
	e.WriteString(node.ID)

	switch node.Kind {
	case vdom.KindTag:
		e.WriteString(node.Tag)
		e.WriteBool(node.Void)
		subset := make(vdom.Attrs, len(names)+1)
		for _, name := range append(names, vdom.KeyAttr) {
			if v, ok := node.Attrs[name]; ok {
				subset[name] = v
			}
		}
		EncodeAttrs(e, subset)
		e.WriteUvarint(0)

	case vdom.KindText, vdom.KindComment:
		e.WriteString(node.Text)
	}
}

func countChildren(node *vdom.VNode) int {
	n := 0
	for _, child := range node.Children {
		if child != nil {
			n++
		}
	}
	return n
}

// EncodeAttrs appends an attribute mapping in name order.
func EncodeAttrs(e *Encoder, attrs vdom.Attrs) {
	names := make([]string, 0, len(attrs))
	for name := range attrs {
		names = append(names, name)
	}
	sort.Strings(names)

	e.WriteUvarint(uint64(len(names)))
	for _, name := range names {
		e.WriteString(name)
		EncodeValue(e, attrs[name])
	}
}

// EncodeValue appends a tagged attribute value.
func EncodeValue(e *Encoder, v vdom.Value) {
	e.WriteByte(byte(v.Kind()))
	switch v.Kind() {
	case vdom.ValueString:
		e.WriteString(v.String())
	case vdom.ValueNumber:
		e.WriteFloat64(v.Num())
	case vdom.ValueBool:
		e.WriteBool(v.Bool())
	case vdom.ValueHandler:
		e.WriteString(v.String())
	}
}

// DecodeVNode reads a node written by EncodeVNode. Decoded handlers have a
// name and no function.
func DecodeVNode(d *Decoder) (*vdom.VNode, error) {
	return decodeVNodeWithDepth(d, 0)
}

func decodeVNodeWithDepth(d *Decoder, depth int) (*vdom.VNode, error) {
	if err := checkDepth(depth, MaxNodeDepth); err != nil {
		return nil, err
	}

	kindByte, err := d.ReadByte()
	if err != nil {
		return nil, err
	}
	if kindByte == nilMarker {
		return nil, nil
	}

	node := &vdom.VNode{Kind: vdom.Kind(kindByte)}
	if node.ID, err = d.ReadString(); err != nil {
		return nil, err
	}

	switch node.Kind {
	case vdom.KindTag:
		if node.Tag, err = d.ReadString(); err != nil {
			return nil, err
		}
		if node.Void, err = d.ReadBool(); err != nil {
			return nil, err
		}
		if node.Attrs, err = DecodeAttrs(d); err != nil {
			return nil, err
		}

		count, err := d.ReadCount()
		if err != nil {
			return nil, err
		}
		node.Children = make([]*vdom.VNode, 0, count)
		for i := 0; i < count; i++ {
			child, err := decodeVNodeWithDepth(d, depth+1)
			if err != nil {
				return nil, err
			}
			if child != nil {
				node.Children = append(node.Children, child)
			}
		}

	case vdom.KindText, vdom.KindComment:
		node.Void = true
		if node.Text, err = d.ReadString(); err != nil {
			return nil, err
		}

	default:
		return nil, fmt.Errorf("protocol: unknown node kind 0x%02x", kindByte)
	}

	return node, nil
}

// DecodeAttrs reads an attribute mapping written by EncodeAttrs.
func DecodeAttrs(d *Decoder) (vdom.Attrs, error) {
	count, err := d.ReadCount()
	if err != nil {
		return nil, err
	}
	attrs := make(vdom.Attrs, count)
	for i := 0; i < count; i++ {
		name, err := d.ReadString()
		if err != nil {
			return nil, err
		}
		value, err := DecodeValue(d)
		if err != nil {
			return nil, err
		}
		attrs[name] = value
	}
	return attrs, nil
}

// DecodeValue reads a value written by EncodeValue.
func DecodeValue(d *Decoder) (vdom.Value, error) {
	kindByte, err := d.ReadByte()
	if err != nil {
		return vdom.Value{}, err
	}

	switch vdom.ValueKind(kindByte) {
	case vdom.ValueString:
		s, err := d.ReadString()
		return vdom.String(s), err
	case vdom.ValueNumber:
		n, err := d.ReadFloat64()
		return vdom.Number(n), err
	case vdom.ValueBool:
		b, err := d.ReadBool()
		return vdom.Bool(b), err
	case vdom.ValueHandler:
		name, err := d.ReadString()
		return vdom.HandlerValue(&vdom.Handler{Name: name}), err
	default:
		return vdom.Value{}, fmt.Errorf("protocol: unknown value kind 0x%02x", kindByte)
	}
}

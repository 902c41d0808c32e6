package snapshot

import (
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/vango-dev/vtree/internal/errors"
	"github.com/vango-dev/vtree/pkg/vdom"
)

// FormatVersion is written into every snapshot. Decoding rejects other
// versions.
const FormatVersion = 1

// HandlerResolver binds a persisted handler name back to a function. It
// returns nil for names it does not know; such handlers keep their name
// and do nothing when called.
type HandlerResolver func(name string) func(*vdom.Event)

// Snapshot is a persisted stored tree.
type Snapshot struct {
	AppID   string
	SavedAt time.Time
	Tree    *vdom.VNode
}

type snapshotDoc struct {
	Version int       `msgpack:"v"`
	AppID   string    `msgpack:"app"`
	SavedAt time.Time `msgpack:"at"`
	Tree    *nodeDoc  `msgpack:"tree"`
}

type nodeDoc struct {
	Kind     uint8               `msgpack:"k"`
	ID       string              `msgpack:"id,omitempty"`
	Tag      string              `msgpack:"tag,omitempty"`
	Void     bool                `msgpack:"void,omitempty"`
	Attrs    map[string]valueDoc `msgpack:"attrs,omitempty"`
	Text     string              `msgpack:"text,omitempty"`
	Children []*nodeDoc          `msgpack:"children,omitempty"`
}

type valueDoc struct {
	Kind uint8   `msgpack:"k"`
	S    string  `msgpack:"s,omitempty"`
	N    float64 `msgpack:"n,omitempty"`
	B    bool    `msgpack:"b,omitempty"`
}

// Marshal encodes a snapshot with msgpack. Handlers are persisted by name.
func Marshal(s *Snapshot) ([]byte, error) {
	doc := snapshotDoc{
		Version: FormatVersion,
		AppID:   s.AppID,
		SavedAt: s.SavedAt.UTC(),
		Tree:    toDoc(s.Tree),
	}
	data, err := msgpack.Marshal(&doc)
	if err != nil {
		return nil, errors.Errorf("E221", "encode %s", s.AppID).Wrap(err)
	}
	return data, nil
}

// Unmarshal decodes a snapshot written by Marshal, binding handler names
// with resolve. A nil resolve leaves every handler without a function.
func Unmarshal(data []byte, resolve HandlerResolver) (*Snapshot, error) {
	var doc snapshotDoc
	if err := msgpack.Unmarshal(data, &doc); err != nil {
		return nil, errors.Errorf("E221", "decode").Wrap(err)
	}
	if doc.Version != FormatVersion {
		return nil, errors.Errorf("E221", "unsupported format version %d", doc.Version)
	}

	tree, err := fromDoc(doc.Tree, resolve)
	if err != nil {
		return nil, err
	}
	return &Snapshot{AppID: doc.AppID, SavedAt: doc.SavedAt, Tree: tree}, nil
}

func toDoc(node *vdom.VNode) *nodeDoc {
	if node == nil {
		return nil
	}
	doc := &nodeDoc{
		Kind: uint8(node.Kind),
		ID:   node.ID,
		Tag:  node.Tag,
		Void: node.Void,
		Text: node.Text,
	}
	if len(node.Attrs) > 0 {
		doc.Attrs = make(map[string]valueDoc, len(node.Attrs))
		for name, v := range node.Attrs {
			vd := valueDoc{Kind: uint8(v.Kind())}
			switch v.Kind() {
			case vdom.ValueNumber:
				vd.N = v.Num()
			case vdom.ValueBool:
				vd.B = v.Bool()
			default:
				vd.S = v.String()
			}
			doc.Attrs[name] = vd
		}
	}
	for _, child := range node.Children {
		if child != nil {
			doc.Children = append(doc.Children, toDoc(child))
		}
	}
	return doc
}

func fromDoc(doc *nodeDoc, resolve HandlerResolver) (*vdom.VNode, error) {
	if doc == nil {
		return nil, nil
	}

	kind := vdom.Kind(doc.Kind)
	if kind > vdom.KindComment {
		return nil, errors.Errorf("E221", "unknown node kind %d", doc.Kind)
	}
	node := &vdom.VNode{
		Kind: kind,
		ID:   doc.ID,
		Tag:  doc.Tag,
		Void: doc.Void,
		Text: doc.Text,
	}
	if kind != vdom.KindTag {
		return node, nil
	}

	node.Attrs = make(vdom.Attrs, len(doc.Attrs))
	for name, vd := range doc.Attrs {
		switch vdom.ValueKind(vd.Kind) {
		case vdom.ValueString:
			node.Attrs[name] = vdom.String(vd.S)
		case vdom.ValueNumber:
			node.Attrs[name] = vdom.Number(vd.N)
		case vdom.ValueBool:
			node.Attrs[name] = vdom.Bool(vd.B)
		case vdom.ValueHandler:
			h := &vdom.Handler{Name: vd.S}
			if resolve != nil && vd.S != "" {
				h.Fn = resolve(vd.S)
			}
			node.Attrs[name] = vdom.HandlerValue(h)
		default:
			return nil, errors.Errorf("E221", "attribute %s: unknown value kind %d", name, vd.Kind)
		}
	}

	node.Children = make([]*vdom.VNode, 0, len(doc.Children))
	for _, childDoc := range doc.Children {
		child, err := fromDoc(childDoc, resolve)
		if err != nil {
			return nil, err
		}
		if child != nil {
			node.Children = append(node.Children, child)
		}
	}
	return node, nil
}

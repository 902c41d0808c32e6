package protocol_test

import (
	"bytes"
	stderrors "errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/vango-dev/vtree/internal/errors"
	"github.com/vango-dev/vtree/pkg/dom"
	"github.com/vango-dev/vtree/pkg/protocol"
	"github.com/vango-dev/vtree/pkg/reconcile"
	"github.com/vango-dev/vtree/pkg/render"
	"github.com/vango-dev/vtree/pkg/vdom"
)

type treePair struct {
	name       string
	prev, next func() *vdom.VNode
}

var pairs = []treePair{
	{
		name: "mount",
		prev: func() *vdom.VNode { return nil },
		next: func() *vdom.VNode { return vdom.Ul(vdom.Li("a")) },
	},
	{
		name: "append",
		prev: func() *vdom.VNode { return vdom.Ul(vdom.Li("a")) },
		next: func() *vdom.VNode { return vdom.Ul(vdom.Li("a"), vdom.Li("b")) },
	},
	{
		name: "attributes",
		prev: func() *vdom.VNode {
			return vdom.Div(vdom.Class("x"), vdom.Width(3), vdom.Disabled(true))
		},
		next: func() *vdom.VNode {
			return vdom.Div(vdom.Class("y"), vdom.Prop("data-ratio", 0.5), vdom.Disabled(false))
		},
	},
	{
		name: "handlers",
		prev: func() *vdom.VNode {
			return vdom.Button(vdom.OnNamed("click", "save", nil))
		},
		next: func() *vdom.VNode {
			return vdom.Button(vdom.OnNamed("click", "submit", nil), "go")
		},
	},
	{
		name: "text root",
		prev: func() *vdom.VNode { return vdom.Text("a") },
		next: func() *vdom.VNode { return vdom.P(vdom.Comment("note"), "b") },
	},
	{
		name: "shrink and replace",
		prev: func() *vdom.VNode {
			return vdom.Ul(vdom.Li(vdom.KeyOf(1), "a"), vdom.Li(vdom.KeyOf(2), "b"), vdom.Li(vdom.KeyOf(3), "c"))
		},
		next: func() *vdom.VNode { return vdom.Ul(vdom.Li(vdom.KeyOf(3), "c")) },
	},
	{
		name: "unmount",
		prev: func() *vdom.VNode { return vdom.Div("x") },
		next: func() *vdom.VNode { return nil },
	},
}

func patchStrings(patches []vdom.Patch) []string {
	out := make([]string, len(patches))
	for i, p := range patches {
		out[i] = p.String()
	}
	return out
}

func TestPatchesRoundTrip(t *testing.T) {
	for _, tt := range pairs {
		t.Run(tt.name, func(t *testing.T) {
			patches := vdom.Diff(tt.prev(), tt.next())
			data := protocol.EncodePatches(&protocol.PatchesFrame{Seq: 42, Patches: patches})

			got, err := protocol.DecodePatches(data)
			if err != nil {
				t.Fatalf("DecodePatches() error = %v", err)
			}
			if got.Seq != 42 {
				t.Errorf("Seq = %d, want 42", got.Seq)
			}
			if diff := cmp.Diff(patchStrings(patches), patchStrings(got.Patches)); diff != "" {
				t.Errorf("patches mismatch (-want +got):\n%s", diff)
			}
			for i := range patches {
				if !patches[i].Route.Equal(got.Patches[i].Route) {
					t.Errorf("patch %d route = %s, want %s", i, got.Patches[i].Route, patches[i].Route)
				}
				if vdom.IsTag(patches[i].Old) != vdom.IsTag(got.Patches[i].Old) {
					t.Errorf("patch %d lost the old node kind", i)
				}
			}
		})
	}
}

func TestDecodedPatchesDriveMirror(t *testing.T) {
	for _, tt := range pairs {
		t.Run(tt.name, func(t *testing.T) {
			prev, next := tt.prev(), tt.next()

			source := &reconcile.Live{Container: dom.NewElement("body")}
			mirror := &reconcile.Live{Container: dom.NewElement("body")}
			applier := reconcile.NewApplier(&render.Effects{}, nil, "")

			for seq, step := range [][]vdom.Patch{vdom.Diff(nil, prev), vdom.Diff(prev, next)} {
				applier.Apply(step, source)

				frame := protocol.NewPatchesFrame(&protocol.PatchesFrame{Seq: uint64(seq), Patches: step})
				decoded, err := protocol.DecodeFrame(frame.Encode())
				if err != nil {
					t.Fatalf("DecodeFrame() error = %v", err)
				}
				pf, err := protocol.DecodePatches(decoded.Payload)
				if err != nil {
					t.Fatalf("DecodePatches() error = %v", err)
				}
				if errs := applier.Apply(pf.Patches, mirror); len(errs) > 0 {
					t.Fatalf("mirror diagnostics: %v", errs)
				}
			}

			if got, want := dom.InnerHTML(mirror.Container), dom.InnerHTML(source.Container); got != want {
				t.Errorf("mirror = %s, want %s", got, want)
			}
		})
	}
}

func TestEncodeDeterministic(t *testing.T) {
	tree := vdom.Div(vdom.ID("a"), vdom.Class("b"), vdom.TitleAttr("c"), vdom.Data("d", "e"))
	first := protocol.EncodePatches(&protocol.PatchesFrame{Patches: vdom.Diff(nil, tree)})
	for i := 0; i < 10; i++ {
		again := protocol.EncodePatches(&protocol.PatchesFrame{Patches: vdom.Diff(nil, tree)})
		if !bytes.Equal(first, again) {
			t.Fatal("encoding the same patches should give the same bytes")
		}
	}
}

func TestValueRoundTrip(t *testing.T) {
	values := []vdom.Value{
		vdom.String(""),
		vdom.String("héllo"),
		vdom.Number(-2.5),
		vdom.Int(1 << 40),
		vdom.Bool(true),
		vdom.Bool(false),
		vdom.HandlerValue(&vdom.Handler{Name: "save"}),
	}
	for _, v := range values {
		e := protocol.NewEncoder()
		protocol.EncodeValue(e, v)
		got, err := protocol.DecodeValue(protocol.NewDecoder(e.Bytes()))
		if err != nil {
			t.Fatalf("DecodeValue(%v) error = %v", v, err)
		}
		equal := got.Equal(v)
		if v.IsHandler() {
			// Decoded handlers are new values carrying the same name.
			equal = got.IsHandler() && got.Handler().Name == v.Handler().Name
		}
		if !equal {
			t.Errorf("DecodeValue() = %v (%s), want %v (%s)", got, got.Kind(), v, v.Kind())
		}
	}
}

func TestDecodeTruncated(t *testing.T) {
	patches := vdom.Diff(vdom.Ul(vdom.Li("a")), vdom.Ul(vdom.Li(vdom.Class("x"), "a"), vdom.Li("b")))
	data := protocol.EncodePatches(&protocol.PatchesFrame{Seq: 7, Patches: patches})

	for n := 0; n < len(data); n++ {
		_, err := protocol.DecodePatches(data[:n])
		if err == nil {
			t.Fatalf("DecodePatches(data[:%d]) should fail", n)
		}
		if code := errors.CodeOf(err); code != "E240" {
			t.Fatalf("DecodePatches(data[:%d]) code = %q, want E240", n, code)
		}
	}
}

func TestDecodeTrailingBytes(t *testing.T) {
	data := protocol.EncodePatches(&protocol.PatchesFrame{Seq: 1})
	data = append(data, 0x00)
	if _, err := protocol.DecodePatches(data); errors.CodeOf(err) != "E240" {
		t.Errorf("DecodePatches() error = %v, want E240", err)
	}
}

func TestDecodeRejectsUnknownAction(t *testing.T) {
	e := protocol.NewEncoder()
	e.WriteUvarint(1) // seq
	e.WriteUvarint(1) // count
	e.WriteByte(0x09) // action
	if _, err := protocol.DecodePatches(e.Bytes()); err == nil {
		t.Error("unknown action should fail")
	}
}

func TestDecodeRejectsInvalidBool(t *testing.T) {
	e := protocol.NewEncoder()
	e.WriteByte(byte(vdom.ValueBool))
	e.WriteByte(0x02)
	_, err := protocol.DecodeValue(protocol.NewDecoder(e.Bytes()))
	if !stderrors.Is(err, protocol.ErrInvalidBool) {
		t.Errorf("DecodeValue() error = %v, want ErrInvalidBool", err)
	}
}

func TestDecodeDepthLimit(t *testing.T) {
	tree := vdom.Div()
	for i := 0; i < protocol.MaxNodeDepth+5; i++ {
		tree = vdom.Div(tree)
	}
	e := protocol.NewEncoder()
	protocol.EncodeVNode(e, tree)

	_, err := protocol.DecodeVNode(protocol.NewDecoder(e.Bytes()))
	if !stderrors.Is(err, protocol.ErrMaxDepthExceeded) {
		t.Errorf("DecodeVNode() error = %v, want ErrMaxDepthExceeded", err)
	}
}

func TestDecodeCollectionLimit(t *testing.T) {
	e := protocol.NewEncoder()
	e.WriteUvarint(0)
	e.WriteUvarint(protocol.MaxCollectionCount + 1)
	_, err := protocol.DecodePatches(e.Bytes())
	if !stderrors.Is(err, protocol.ErrCollectionTooLarge) {
		t.Errorf("DecodePatches() error = %v, want ErrCollectionTooLarge", err)
	}
}

func TestDecodedHandlersHaveNames(t *testing.T) {
	tree := vdom.Button(vdom.OnNamed("click", "save", func(*vdom.Event) {}))
	e := protocol.NewEncoder()
	protocol.EncodeVNode(e, tree)

	got, err := protocol.DecodeVNode(protocol.NewDecoder(e.Bytes()))
	if err != nil {
		t.Fatalf("DecodeVNode() error = %v", err)
	}
	h := got.Attrs["onclick"].Handler()
	if h == nil || h.Name != "save" || h.Fn != nil {
		t.Errorf("decoded handler = %+v, want named handler without function", h)
	}
	if len(vdom.Diff(tree, got)) != 0 {
		t.Error("decoded tree should diff equal to the original")
	}
}

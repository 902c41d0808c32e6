package protocol

import (
	"fmt"

	"github.com/vango-dev/vtree/internal/errors"
	"github.com/vango-dev/vtree/pkg/vdom"
)

// PatchesFrame is a batch of patches from one reconciliation pass.
type PatchesFrame struct {
	Seq     uint64
	Patches []vdom.Patch
}

// EncodePatches encodes a patches frame to bytes.
func EncodePatches(pf *PatchesFrame) []byte {
	e := NewEncoder()
	EncodePatchesTo(e, pf)
	return e.Bytes()
}

// EncodePatchesTo encodes a patches frame using the provided encoder.
//
// Each patch is written as:
//
//	[Action: byte][Route: count + uvarints][Old: shallow node][Next: node][Attrs]
//
// Old is written without children and with only the attributes the patch
// names. Next is written in full for AddNode and ReplaceNode and as a nil
// marker otherwise.
func EncodePatchesTo(e *Encoder, pf *PatchesFrame) {
	e.WriteUvarint(pf.Seq)
	e.WriteUvarint(uint64(len(pf.Patches)))

	for i := range pf.Patches {
		encodePatch(e, &pf.Patches[i])
	}
}

func encodePatch(e *Encoder, p *vdom.Patch) {
	e.WriteByte(byte(p.Action))

	e.WriteRoute(p.Route)

	encodeShallow(e, p.Old, p.Names())

	switch p.Action {
	case vdom.AddNode, vdom.ReplaceNode:
		EncodeVNode(e, p.Next)
	default:
		e.WriteByte(nilMarker)
	}

	EncodeAttrs(e, p.Attrs)
}

// DecodePatches decodes a patches frame from bytes. Decoding failures are
// reported as E240 errors wrapping the codec error.
func DecodePatches(data []byte) (*PatchesFrame, error) {
	d := NewDecoder(data)
	pf, err := DecodePatchesFrom(d)
	if err != nil {
		return nil, errors.Errorf("E240", "at byte %d", d.Offset()).Wrap(err)
	}
	if d.Remaining() > 0 {
		return nil, errors.Errorf("E240", "%d trailing bytes", d.Remaining())
	}
	return pf, nil
}

// DecodePatchesFrom decodes a patches frame from a decoder.
func DecodePatchesFrom(d *Decoder) (*PatchesFrame, error) {
	seq, err := d.ReadUvarint()
	if err != nil {
		return nil, err
	}

	count, err := d.ReadCount()
	if err != nil {
		return nil, err
	}

	patches := make([]vdom.Patch, count)
	for i := 0; i < count; i++ {
		if err := decodePatch(d, &patches[i]); err != nil {
			return nil, err
		}
	}

	return &PatchesFrame{
		Seq:     seq,
		Patches: patches,
	}, nil
}

func decodePatch(d *Decoder, p *vdom.Patch) error {
	actionByte, err := d.ReadByte()
	if err != nil {
		return err
	}
	p.Action = vdom.Action(actionByte)
	if p.Action < vdom.AddNode || p.Action > vdom.ReplaceAttribute {
		return fmt.Errorf("protocol: unknown patch action 0x%02x", actionByte)
	}

	if p.Route, err = d.ReadRoute(); err != nil {
		return err
	}

	if p.Old, err = DecodeVNode(d); err != nil {
		return err
	}
	if p.Next, err = DecodeVNode(d); err != nil {
		return err
	}
	attrs, err := DecodeAttrs(d)
	if err != nil {
		return err
	}
	if len(attrs) > 0 {
		p.Attrs = attrs
	}
	return nil
}

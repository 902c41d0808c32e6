package protocol

import (
	"encoding/binary"
	"io"
	"math"

	"github.com/vango-dev/vtree/pkg/vdom"
)

// Encoder appends wire values to a growing buffer. Integers are unsigned
// varints unless stated otherwise; strings are length-prefixed.
type Encoder struct {
	buf []byte
}

// NewEncoder returns an empty encoder.
func NewEncoder() *Encoder {
	return &Encoder{buf: make([]byte, 0, 256)}
}

// Bytes returns the encoded bytes. The slice aliases the encoder buffer.
func (e *Encoder) Bytes() []byte { return e.buf }

func (e *Encoder) WriteByte(b byte) {
	e.buf = append(e.buf, b)
}

func (e *Encoder) WriteBytes(b []byte) {
	e.buf = append(e.buf, b...)
}

func (e *Encoder) WriteUvarint(v uint64) {
	e.buf = binary.AppendUvarint(e.buf, v)
}

func (e *Encoder) WriteString(s string) {
	e.WriteUvarint(uint64(len(s)))
	e.buf = append(e.buf, s...)
}

func (e *Encoder) WriteBool(b bool) {
	var v byte
	if b {
		v = 1
	}
	e.buf = append(e.buf, v)
}

// WriteUint32 appends v as four big-endian bytes.
func (e *Encoder) WriteUint32(v uint32) {
	e.buf = binary.BigEndian.AppendUint32(e.buf, v)
}

// WriteFloat64 appends the IEEE 754 bits of v, big-endian.
func (e *Encoder) WriteFloat64(v float64) {
	e.buf = binary.BigEndian.AppendUint64(e.buf, math.Float64bits(v))
}

// WriteRoute appends a route as a count followed by its indices.
func (e *Encoder) WriteRoute(r vdom.Route) {
	e.WriteUvarint(uint64(len(r)))
	for _, idx := range r {
		e.WriteUvarint(uint64(idx))
	}
}

// Decoder reads wire values from a byte slice. Reads past the end return
// io.ErrUnexpectedEOF.
type Decoder struct {
	buf []byte
	off int
}

// NewDecoder returns a decoder positioned at the start of buf.
func NewDecoder(buf []byte) *Decoder {
	return &Decoder{buf: buf}
}

// Offset is the number of bytes consumed so far.
func (d *Decoder) Offset() int { return d.off }

// Remaining is the number of unread bytes.
func (d *Decoder) Remaining() int { return len(d.buf) - d.off }

func (d *Decoder) take(n int) ([]byte, error) {
	if n > d.Remaining() {
		return nil, io.ErrUnexpectedEOF
	}
	b := d.buf[d.off : d.off+n]
	d.off += n
	return b, nil
}

func (d *Decoder) ReadByte() (byte, error) {
	b, err := d.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (d *Decoder) ReadUvarint() (uint64, error) {
	v, n := binary.Uvarint(d.buf[d.off:])
	switch {
	case n == 0:
		return 0, io.ErrUnexpectedEOF
	case n < 0:
		return 0, ErrVarintOverflow
	}
	d.off += n
	return v, nil
}

func (d *Decoder) ReadString() (string, error) {
	n, err := d.ReadUvarint()
	if err != nil {
		return "", err
	}
	if n > uint64(d.Remaining()) {
		return "", io.ErrUnexpectedEOF
	}
	if n > MaxStringLen {
		return "", ErrStringTooLong
	}
	b, _ := d.take(int(n))
	return string(b), nil
}

// ReadBool accepts only 0x00 and 0x01.
func (d *Decoder) ReadBool() (bool, error) {
	b, err := d.ReadByte()
	if err != nil {
		return false, err
	}
	if b > 1 {
		return false, ErrInvalidBool
	}
	return b == 1, nil
}

func (d *Decoder) ReadUint32() (uint32, error) {
	b, err := d.take(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}

func (d *Decoder) ReadFloat64() (float64, error) {
	b, err := d.take(8)
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(binary.BigEndian.Uint64(b)), nil
}

// ReadCount reads a collection length. Every item takes at least one byte,
// so a count larger than the unread input is rejected before allocation.
func (d *Decoder) ReadCount() (int, error) {
	n, err := d.ReadUvarint()
	if err != nil {
		return 0, err
	}
	if n > MaxCollectionCount {
		return 0, ErrCollectionTooLarge
	}
	if n > uint64(d.Remaining()) {
		return 0, io.ErrUnexpectedEOF
	}
	return int(n), nil
}

// ReadRoute reads a route written by WriteRoute.
func (d *Decoder) ReadRoute() (vdom.Route, error) {
	n, err := d.ReadCount()
	if err != nil {
		return nil, err
	}
	if err := checkDepth(n, MaxRouteLen); err != nil {
		return nil, err
	}
	r := make(vdom.Route, n)
	for i := range r {
		idx, err := d.ReadUvarint()
		if err != nil {
			return nil, err
		}
		if idx > MaxCollectionCount {
			return nil, ErrCollectionTooLarge
		}
		r[i] = int(idx)
	}
	return r, nil
}

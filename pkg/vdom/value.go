package vdom

import (
	"fmt"
	"math"
	"strconv"
)

// ValueKind discriminates the payload of a Value.
type ValueKind uint8

const (
	ValueString ValueKind = iota
	ValueNumber
	ValueBool
	ValueHandler
)

// String returns the string representation of the ValueKind.
func (k ValueKind) String() string {
	switch k {
	case ValueString:
		return "String"
	case ValueNumber:
		return "Number"
	case ValueBool:
		return "Bool"
	case ValueHandler:
		return "Handler"
	default:
		return "Unknown"
	}
}

// Event is the payload passed to a Handler.
type Event struct {
	Type    string // "click", "input", ...
	Value   string // Current value of the target control
	Checked bool   // Current checked state of the target control
	Key     string // Key for keyboard events
}

// Handler is an event handler reference attached to a tag attribute.
//
// Handlers are compared by identity. Two distinct handlers with the same
// non-empty Name are also considered equal, which lets trees decoded from
// documents or snapshots compare stable across passes.
type Handler struct {
	Name string
	Fn   func(*Event)
}

// NewHandler creates a handler reference for fn.
func NewHandler(fn func(*Event)) *Handler {
	return &Handler{Fn: fn}
}

// Call invokes the handler. A handler without a function is a no-op.
func (h *Handler) Call(ev *Event) {
	if h != nil && h.Fn != nil {
		h.Fn(ev)
	}
}

// Value is a tagged attribute value: a literal or a handler reference.
// The zero Value is the empty string.
type Value struct {
	kind ValueKind
	str  string
	num  float64
	b    bool
	h    *Handler
}

// String creates a string value.
func String(s string) Value { return Value{kind: ValueString, str: s} }

// Number creates a numeric value.
func Number(n float64) Value { return Value{kind: ValueNumber, num: n} }

// Int creates a numeric value from an integer.
func Int(n int) Value { return Number(float64(n)) }

// Bool creates a boolean value.
func Bool(b bool) Value { return Value{kind: ValueBool, b: b} }

// HandlerValue creates a handler reference value.
func HandlerValue(h *Handler) Value { return Value{kind: ValueHandler, h: h} }

// ValueOf converts a Go value into a Value. Strings, integers, floats,
// booleans, *Handler and func(*Event) are recognized; anything else is
// formatted with fmt.
func ValueOf(v any) Value {
	switch val := v.(type) {
	case Value:
		return val
	case string:
		return String(val)
	case bool:
		return Bool(val)
	case int:
		return Int(val)
	case int64:
		return Number(float64(val))
	case int32:
		return Number(float64(val))
	case uint:
		return Number(float64(val))
	case uint64:
		return Number(float64(val))
	case float32:
		return Number(float64(val))
	case float64:
		return Number(val)
	case *Handler:
		return HandlerValue(val)
	case func(*Event):
		return HandlerValue(NewHandler(val))
	case nil:
		return String("")
	default:
		return String(fmt.Sprintf("%v", v))
	}
}

// Kind returns the value's kind.
func (v Value) Kind() ValueKind { return v.kind }

// IsHandler reports whether v is a handler reference.
func (v Value) IsHandler() bool { return v.kind == ValueHandler }

// Handler returns the handler reference, or nil for literals.
func (v Value) Handler() *Handler { return v.h }

// Bool returns the boolean payload.
func (v Value) Bool() bool { return v.b }

// Num returns the numeric payload.
func (v Value) Num() float64 { return v.num }

// IsEmpty reports whether v is an empty string literal.
func (v Value) IsEmpty() bool {
	return v.kind == ValueString && v.str == ""
}

// Truthy interprets the value as a boolean state: booleans as themselves,
// numbers as non-zero, strings as non-empty and not "false".
func (v Value) Truthy() bool {
	switch v.kind {
	case ValueBool:
		return v.b
	case ValueNumber:
		return v.num != 0
	case ValueString:
		return v.str != "" && v.str != "false"
	default:
		return false
	}
}

// String returns the literal serialization of the value.
// Handlers serialize to their name.
func (v Value) String() string {
	switch v.kind {
	case ValueString:
		return v.str
	case ValueNumber:
		if v.num == math.Trunc(v.num) && math.Abs(v.num) < 1e15 {
			return strconv.FormatInt(int64(v.num), 10)
		}
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case ValueBool:
		if v.b {
			return "true"
		}
		return "false"
	case ValueHandler:
		if v.h != nil {
			return v.h.Name
		}
		return ""
	default:
		return ""
	}
}

// Literal returns the attribute text to write to a live element and whether
// the attribute should be present at all. Boolean true is present with an
// empty value, boolean false is absent.
func (v Value) Literal() (string, bool) {
	switch v.kind {
	case ValueBool:
		return "", v.b
	case ValueHandler:
		return "", false
	default:
		return v.String(), true
	}
}

// Equal reports whether two values have the same kind and payload.
// Handlers are equal only when they are the same *Handler. Two NaN numbers
// are equal.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case ValueString:
		return v.str == o.str
	case ValueNumber:
		return v.num == o.num || (math.IsNaN(v.num) && math.IsNaN(o.num))
	case ValueBool:
		return v.b == o.b
	case ValueHandler:
		return v.h == o.h
	}
	return false
}

// sameHandlerName reports whether v and o are handlers bound under the same
// non-empty name.
func (v Value) sameHandlerName(o Value) bool {
	return v.kind == ValueHandler && o.kind == ValueHandler &&
		v.h != nil && o.h != nil && v.h.Name != "" && v.h.Name == o.h.Name
}

// Attrs maps attribute names to values.
type Attrs map[string]Value

// Clone returns a shallow copy of the mapping.
func (a Attrs) Clone() Attrs {
	if a == nil {
		return nil
	}
	out := make(Attrs, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// Equal reports whether both mappings hold the same names and equal values.
func (a Attrs) Equal(o Attrs) bool {
	if len(a) != len(o) {
		return false
	}
	for k, v := range a {
		ov, ok := o[k]
		if !ok || !v.Equal(ov) {
			return false
		}
	}
	return true
}

// Attr represents a single attribute.
type Attr struct {
	Name  string
	Value Value
}

// IsEmpty returns true if this is an empty/nil attribute.
func (a Attr) IsEmpty() bool {
	return a.Name == ""
}

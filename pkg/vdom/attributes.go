package vdom

import (
	"fmt"
	"strings"
)

// GetAttr returns the value of the named attribute. An attribute that is
// absent or holds an empty string is reported as unset, as is any attribute
// read from a non-tag node.
func GetAttr(node *VNode, name string) (Value, bool) {
	if !IsTag(node) {
		return Value{}, false
	}
	v, ok := node.Attrs[name]
	if !ok || v.IsEmpty() {
		return Value{}, false
	}
	return v, true
}

// SetAttr sets the named attribute. It is a no-op on non-tag nodes.
func SetAttr(node *VNode, name string, value Value) {
	if !IsTag(node) {
		return
	}
	if node.Attrs == nil {
		node.Attrs = make(Attrs)
	}
	node.Attrs[name] = value
}

// RemoveAttr deletes the named attribute. It is a no-op on non-tag nodes.
func RemoveAttr(node *VNode, name string) {
	if !IsTag(node) {
		return
	}
	delete(node.Attrs, name)
}

// Key returns the node's reconciliation key, or "" if it has none.
func Key(node *VNode) string {
	v, ok := GetAttr(node, KeyAttr)
	if !ok {
		return ""
	}
	return v.String()
}

// IsEventAttr reports whether name uses the reserved handler prefix "on".
func IsEventAttr(name string) bool {
	return len(name) > 2 && strings.EqualFold(name[:2], "on")
}

// EventName returns the event name an attribute is bound to: the name with
// its "on" prefix stripped, lower-cased.
func EventName(attr string) string {
	if !IsEventAttr(attr) {
		return ""
	}
	return strings.ToLower(attr[2:])
}

// attr creates an Attr with the given name and value.
func attr(name string, value Value) Attr {
	return Attr{Name: name, Value: value}
}

// Prop creates an arbitrary attribute, converting value with ValueOf.
func Prop(name string, value any) Attr { return attr(name, ValueOf(value)) }

// KeyOf creates a key attribute for reconciliation.
// The key is converted to a string using fmt.Sprintf.
func KeyOf(key any) Attr {
	return attr(KeyAttr, String(fmt.Sprintf("%v", key)))
}

// Identity attributes

// ID sets the id attribute.
func ID(id string) Attr { return attr("id", String(id)) }

// Class sets the class attribute, joining multiple classes with spaces.
func Class(classes ...string) Attr { return attr("class", String(strings.Join(classes, " "))) }

// StyleAttr sets the style attribute.
func StyleAttr(style string) Attr { return attr("style", String(style)) }

// Data creates a data-* attribute.
// Example: Data("id", "123") → data-id="123"
func Data(key, value string) Attr { return attr("data-"+key, String(value)) }

// TitleAttr sets the title attribute.
func TitleAttr(title string) Attr { return attr("title", String(title)) }

// Role sets the role attribute.
func Role(role string) Attr { return attr("role", String(role)) }

// AriaLabel sets the aria-label attribute.
func AriaLabel(label string) Attr { return attr("aria-label", String(label)) }

// Links and media

// Href sets the href attribute.
func Href(url string) Attr { return attr("href", String(url)) }

// Src sets the src attribute.
func Src(url string) Attr { return attr("src", String(url)) }

// Alt sets the alt attribute.
func Alt(text string) Attr { return attr("alt", String(text)) }

// Width sets the width attribute.
func Width(w int) Attr { return attr("width", Int(w)) }

// Height sets the height attribute.
func Height(h int) Attr { return attr("height", Int(h)) }

// Form attributes

// Name sets the name attribute.
func Name(name string) Attr { return attr("name", String(name)) }

// ValueAttr sets the value attribute.
func ValueAttr(value string) Attr { return attr("value", String(value)) }

// Type sets the type attribute.
func Type(t string) Attr { return attr("type", String(t)) }

// Placeholder sets the placeholder attribute.
func Placeholder(text string) Attr { return attr("placeholder", String(text)) }

// Checked sets the checked attribute.
func Checked(checked bool) Attr { return attr("checked", Bool(checked)) }

// Disabled sets the disabled attribute.
func Disabled(disabled bool) Attr { return attr("disabled", Bool(disabled)) }

// Selected sets the selected attribute.
func Selected(selected bool) Attr { return attr("selected", Bool(selected)) }

// TabIndex sets the tabindex attribute.
func TabIndex(index int) Attr { return attr("tabindex", Int(index)) }

// For sets the for attribute (for labels).
func For(id string) Attr { return attr("for", String(id)) }

// Conditional attributes

// ClassIf adds a class conditionally.
func ClassIf(condition bool, class string) Attr {
	if condition {
		return Class(class)
	}
	return Attr{} // Empty attr, will be ignored
}

// AttrIf adds any attribute conditionally.
func AttrIf(condition bool, a Attr) Attr {
	if condition {
		return a
	}
	return Attr{}
}

package vdom

// On binds fn to the named event (e.g. "click" becomes "onclick").
func On(name string, fn func(*Event)) Attr {
	return attr("on"+name, HandlerValue(NewHandler(fn)))
}

// OnNamed binds a named handler. A handler that keeps its name across
// renders produces no attribute patch; the live binding still moves to the
// new function.
func OnNamed(event, name string, fn func(*Event)) Attr {
	return attr("on"+event, HandlerValue(&Handler{Name: name, Fn: fn}))
}

// Mouse events

// OnClick handles click events.
func OnClick(fn func(*Event)) Attr { return On("click", fn) }

// OnDblClick handles double-click events.
func OnDblClick(fn func(*Event)) Attr { return On("dblclick", fn) }

// OnMouseEnter handles mouseenter events.
func OnMouseEnter(fn func(*Event)) Attr { return On("mouseenter", fn) }

// OnMouseLeave handles mouseleave events.
func OnMouseLeave(fn func(*Event)) Attr { return On("mouseleave", fn) }

// Keyboard events

// OnKeyDown handles keydown events.
func OnKeyDown(fn func(*Event)) Attr { return On("keydown", fn) }

// OnKeyUp handles keyup events.
func OnKeyUp(fn func(*Event)) Attr { return On("keyup", fn) }

// Form events

// OnInput handles input events (fired when value changes).
func OnInput(fn func(*Event)) Attr { return On("input", fn) }

// OnChange handles change events (fired when value is committed).
func OnChange(fn func(*Event)) Attr { return On("change", fn) }

// OnSubmit handles form submit events.
func OnSubmit(fn func(*Event)) Attr { return On("submit", fn) }

// OnFocus handles focus events.
func OnFocus(fn func(*Event)) Attr { return On("focus", fn) }

// OnBlur handles blur events.
func OnBlur(fn func(*Event)) Attr { return On("blur", fn) }

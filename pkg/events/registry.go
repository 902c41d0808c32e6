// Package events routes live events to the handlers that reconciliation
// registered for them.
//
// Handlers are never stored on live nodes. Reconciliation hands each
// discovered handler attribute to a Registry as a (app, element, event)
// registration; Dispatch then bubbles an event from its target element up
// to the application root, calling every handler registered on the way.
package events

import (
	"sync"

	"github.com/vango-dev/vtree/pkg/dom"
	"github.com/vango-dev/vtree/pkg/vdom"
)

// Registry holds event handler registrations for any number of
// applications. It is safe for concurrent use.
type Registry struct {
	mu   sync.RWMutex
	apps map[string]*appHandlers
}

type appHandlers struct {
	root     *dom.Node
	handlers map[*dom.Node]map[string]*vdom.Handler
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{apps: make(map[string]*appHandlers)}
}

func (r *Registry) app(appID string) *appHandlers {
	a, ok := r.apps[appID]
	if !ok {
		a = &appHandlers{handlers: make(map[*dom.Node]map[string]*vdom.Handler)}
		r.apps[appID] = a
	}
	return a
}

// Delegate registers h for event on el. A later registration for the same
// element and event replaces the earlier one. root is the application's
// live root; bubbling stops there.
func (r *Registry) Delegate(appID string, root, el *dom.Node, event string, h *vdom.Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a := r.app(appID)
	if root != nil {
		a.root = root
	}
	byEvent, ok := a.handlers[el]
	if !ok {
		byEvent = make(map[string]*vdom.Handler)
		a.handlers[el] = byEvent
	}
	byEvent[event] = h
}

// Undelegate drops the handler for event on el, if any.
func (r *Registry) Undelegate(appID string, el *dom.Node, event string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.apps[appID]
	if !ok {
		return
	}
	byEvent := a.handlers[el]
	delete(byEvent, event)
	if len(byEvent) == 0 {
		delete(a.handlers, el)
	}
}

// Handler returns the handler registered for event on el.
func (r *Registry) Handler(appID string, el *dom.Node, event string) (*vdom.Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.apps[appID]
	if !ok {
		return nil, false
	}
	h, ok := a.handlers[el][event]
	return h, ok
}

// Len returns the number of registrations held for an application.
func (r *Registry) Len(appID string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.apps[appID]
	if !ok {
		return 0
	}
	n := 0
	for _, byEvent := range a.handlers {
		n += len(byEvent)
	}
	return n
}

// Dispatch delivers ev to the handlers registered for ev.Type on target and
// each of its ancestors up to the application root, innermost first. It
// reports whether any handler ran. Handlers run without the lock held, so
// they may trigger another reconciliation pass.
func (r *Registry) Dispatch(appID string, target *dom.Node, ev *vdom.Event) bool {
	r.mu.RLock()
	a, ok := r.apps[appID]
	var chain []*vdom.Handler
	if ok {
		for n := target; n != nil; n = n.Parent() {
			if h, found := a.handlers[n][ev.Type]; found {
				chain = append(chain, h)
			}
			if n == a.root {
				break
			}
		}
	}
	r.mu.RUnlock()

	for _, h := range chain {
		h.Call(ev)
	}
	return len(chain) > 0
}

// Prune drops registrations for elements no longer attached under root,
// such as those in subtrees removed or replaced by the last pass. It
// returns the number of elements dropped.
func (r *Registry) Prune(appID string, root *dom.Node) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.apps[appID]
	if !ok {
		return 0
	}
	a.root = root

	dropped := 0
	for el := range a.handlers {
		if root == nil || !root.Contains(el) {
			delete(a.handlers, el)
			dropped++
		}
	}
	return dropped
}

// Forget drops every registration of an application.
func (r *Registry) Forget(appID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.apps, appID)
}

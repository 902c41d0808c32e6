// Package render materializes virtual trees.
//
// A Mounter turns a virtual node into a live dom subtree for the first time.
// Handler-valued attributes are never written to the live tree; instead a
// delegation Effect is queued on the owning application's Effects list and
// flushed once the whole pass has finished mutating the tree.
//
//	effects := &render.Effects{}
//	m := render.NewMounter(effects)
//	el := m.Mount(vdom.Ul(vdom.Li(vdom.Text("a"))), container)
//	for _, e := range effects.Drain() {
//	    delegator.Delegate(appID, el, e.Element, e.Event, e.Handler)
//	}
//
// A Renderer serializes the same tree to HTML for server-side output:
//
//	renderer := render.NewRenderer(render.RendererConfig{})
//	html, err := renderer.RenderToString(node)
//
// Text is escaped, the key attribute is never written, boolean attributes
// are written bare when true and omitted when false, and handler attributes
// become data-on-<event> markers.
package render

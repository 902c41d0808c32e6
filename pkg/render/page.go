package render

import (
	"fmt"
	"io"
	"net/http"

	"github.com/vango-dev/vtree/pkg/vdom"
)

// ContainerID is the id of the element the page body is rendered into.
const ContainerID = "vtree-root"

// PageData contains all data needed to render a complete HTML page.
type PageData struct {
	// Body is the tree rendered inside the container element.
	Body *vdom.VNode

	// Title is the page title
	Title string

	// Lang is the language attribute for the html element.
	// Defaults to "en" if not specified.
	Lang string

	// Styles contains inline CSS styles
	Styles []string

	// SocketPath enables the live-reload client when non-empty. Each frame
	// received on the socket makes the client refetch FragmentPath.
	SocketPath string

	// FragmentPath serves the current tree as an HTML fragment.
	// Defaults to "/tree".
	FragmentPath string
}

// RenderPage writes a complete HTML document around page.Body. When w is
// an http.Flusher the head, the body and the tail are flushed as they are
// written.
func (r *Renderer) RenderPage(w io.Writer, page PageData) error {
	flusher, _ := w.(http.Flusher)
	flush := func() {
		if flusher != nil {
			flusher.Flush()
		}
	}
	out := &htmlWriter{w: w, indent: r.config.Indent}

	lang := page.Lang
	if lang == "" {
		lang = "en"
	}
	out.str("<!DOCTYPE html>\n<html lang=\"" + escapeAttr(lang) + "\">\n<head>\n  <meta charset=\"utf-8\">\n")
	if page.Title != "" {
		out.str("  <title>" + escapeHTML(page.Title) + "</title>\n")
	}
	for _, style := range page.Styles {
		out.str("  <style>" + style + "</style>\n")
	}
	out.str("</head>\n<body>\n<div id=\"" + ContainerID + "\">")
	if out.err != nil {
		return out.err
	}
	flush()

	if err := r.RenderToWriter(w, page.Body); err != nil {
		return err
	}
	flush()

	out.str("</div>\n")
	writeLiveClient(out, page)
	out.str("</body>\n</html>\n")
	if out.err != nil {
		return out.err
	}
	flush()
	return nil
}

const liveClient = `<script>
(function () {
  var root = document.getElementById(%q);
  var ws = new WebSocket((location.protocol === "https:" ? "wss://" : "ws://") + location.host + %q);
  ws.binaryType = "arraybuffer";
  ws.onmessage = function () {
    fetch(%q).then(function (r) { return r.text(); }).then(function (html) { root.innerHTML = html; });
  };
})();
</script>
`

// writeLiveClient writes the live-reload client when a socket is set.
func writeLiveClient(out *htmlWriter, page PageData) {
	if page.SocketPath == "" {
		return
	}
	fragment := page.FragmentPath
	if fragment == "" {
		fragment = "/tree"
	}
	out.str(fmt.Sprintf(liveClient, ContainerID, page.SocketPath, fragment))
}

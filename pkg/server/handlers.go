package server

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/vango-dev/vtree/internal/errors"
	"github.com/vango-dev/vtree/internal/fixture"
	"github.com/vango-dev/vtree/pkg/dom"
	"github.com/vango-dev/vtree/pkg/protocol"
	"github.com/vango-dev/vtree/pkg/render"
	"github.com/vango-dev/vtree/pkg/vdom"
)

// RenderResponse is the JSON body returned by POST /render.
type RenderResponse struct {
	Seq         uint64   `json:"seq"`
	Patches     []string `json:"patches"`
	Diagnostics []string `json:"diagnostics,omitempty"`
	Snapshot    string   `json:"snapshotError,omitempty"`
}

// DispatchResponse is the JSON body returned by POST /dispatch.
type DispatchResponse struct {
	Handled bool `json:"handled"`
}

type errorResponse struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError encodes coded errors in full and anything else as a bare
// message.
func writeError(w http.ResponseWriter, status int, err error) {
	if ve := errors.Find(err); ve != nil {
		writeJSON(w, status, ve)
		return
	}
	writeJSON(w, status, errorResponse{Message: err.Error()})
}

// handlePage serves the preview document with the live client.
func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	tree := s.app.Tree()
	s.mu.Unlock()

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err := render.NewRenderer(s.renderConfig).RenderPage(w, render.PageData{
		Body:         tree,
		Title:        s.config.Title,
		SocketPath:   "/ws",
		FragmentPath: "/tree",
	})
	if err != nil {
		// Headers are gone by now; the client sees a truncated page.
		s.logger.Error("page render failed", "error", err)
	}
}

// handleTree serves the live tree as an HTML fragment, or the stored tree
// as a YAML document with ?format=yaml.
func (s *Server) handleTree(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch r.URL.Query().Get("format") {
	case "", "html":
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		io.WriteString(w, dom.InnerHTML(s.app.Container()))
	case "yaml":
		data, err := fixture.Marshal(s.app.Tree())
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		w.Header().Set("Content-Type", "application/yaml")
		w.Write(data)
	default:
		http.Error(w, "unknown format", http.StatusBadRequest)
	}
}

// handleRender reconciles the posted tree document.
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.config.MaxBodyBytes))
	if err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, err)
		return
	}
	next, err := fixture.Parse(body, fixture.WithResolver(s.resolve))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	pass, saveErr := s.Render(r.Context(), next)
	resp := RenderResponse{
		Seq:     pass.Seq,
		Patches: make([]string, len(pass.Result.Patches)),
	}
	for i, p := range pass.Result.Patches {
		resp.Patches[i] = p.String()
	}
	for _, d := range pass.Result.Diagnostics {
		resp.Diagnostics = append(resp.Diagnostics, d.Error())
	}
	if saveErr != nil {
		resp.Snapshot = saveErr.Error()
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleDispatch delivers an event to the node at ?route= (default: the
// root). The event type comes from ?event= and the control state from
// ?value= and ?checked=.
func (s *Server) handleDispatch(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	route := vdom.RootRoute()
	if raw := r.Form.Get("route"); raw != "" {
		parsed, err := vdom.ParseRoute(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		route = parsed
	}
	ev := &vdom.Event{
		Type:  r.Form.Get("event"),
		Value: r.Form.Get("value"),
		Key:   r.Form.Get("key"),
	}
	if ev.Type == "" {
		http.Error(w, "missing event", http.StatusBadRequest)
		return
	}
	if raw := r.Form.Get("checked"); raw != "" {
		checked, err := strconv.ParseBool(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		ev.Checked = checked
	}

	handled, err := s.Dispatch(route, ev)
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	writeJSON(w, http.StatusOK, DispatchResponse{Handled: handled})
}

// handleWebSocket upgrades a mirror connection. The first frame carries the
// whole current tree as patches against an empty mirror.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Debug("websocket upgrade failed", "error", err)
		return
	}

	s.mu.Lock()
	first := protocol.NewPatchesFrame(&protocol.PatchesFrame{
		Seq:     s.seq,
		Patches: vdom.Diff(nil, s.app.Tree()),
	}).Encode()
	c := s.hub.add(conn, first)
	s.mu.Unlock()

	s.logger.Debug("mirror connected", "remote", conn.RemoteAddr().String())
	go s.hub.readPump(c)
}

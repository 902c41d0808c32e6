// Package server serves a live preview of one reconciled application.
//
// Routes:
//
//	GET  /          HTML page with the rendered tree and a live-reload client
//	GET  /tree      live tree as an HTML fragment (?format=yaml for the stored tree)
//	POST /render    reconcile a YAML or JSON tree document
//	POST /dispatch  deliver an event to the node at ?route=
//	GET  /ws        websocket stream of binary patch frames
//	GET  /metrics   Prometheus metrics
//
// Each mirror connected on /ws first receives the current tree as a single
// patches frame against an empty tree, then one frame per pass in sequence
// order. A pass with skipped patches is followed by an error frame.
package server

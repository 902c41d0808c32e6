package server

import (
	"net/http"
	"net/url"
	"time"
)

// Config holds preview server settings.
type Config struct {
	// Address is the listen address, e.g. "localhost:3000".
	Address string

	// Title is the document title of the preview page.
	Title string

	// WrapperTag wraps a text or comment root when it is mounted.
	WrapperTag string

	// Pretty indents the preview page.
	Pretty bool

	// Namespace prefixes every exported metric.
	Namespace string

	// ReadBufferSize and WriteBufferSize size the websocket buffers.
	ReadBufferSize  int
	WriteBufferSize int

	// CheckOrigin validates websocket origins. Defaults to SameOriginCheck.
	CheckOrigin func(r *http.Request) bool

	// SendBuffer is the number of frames queued per websocket client before
	// the client is dropped as too slow.
	SendBuffer int

	// MaxBodyBytes bounds the size of a posted tree document.
	MaxBodyBytes int64

	ReadHeaderTimeout time.Duration
	WriteTimeout      time.Duration
	ShutdownTimeout   time.Duration
}

// DefaultConfig returns the default preview server configuration.
func DefaultConfig() *Config {
	return &Config{
		Address:           "localhost:3000",
		Title:             "vtree",
		WrapperTag:        "span",
		Namespace:         "vtree",
		ReadBufferSize:    4096,
		WriteBufferSize:   4096,
		CheckOrigin:       SameOriginCheck,
		SendBuffer:        64,
		MaxBodyBytes:      1 << 20,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      10 * time.Second,
		ShutdownTimeout:   10 * time.Second,
	}
}

// withDefaults returns a copy of c with unset fields taken from
// DefaultConfig. Sizes that are zero or negative count as unset.
func (c *Config) withDefaults() *Config {
	d := DefaultConfig()
	if c == nil {
		return d
	}
	out := *c
	if out.Address == "" {
		out.Address = d.Address
	}
	if out.Title == "" {
		out.Title = d.Title
	}
	if out.WrapperTag == "" {
		out.WrapperTag = d.WrapperTag
	}
	if out.Namespace == "" {
		out.Namespace = d.Namespace
	}
	if out.ReadBufferSize <= 0 {
		out.ReadBufferSize = d.ReadBufferSize
	}
	if out.WriteBufferSize <= 0 {
		out.WriteBufferSize = d.WriteBufferSize
	}
	if out.CheckOrigin == nil {
		out.CheckOrigin = d.CheckOrigin
	}
	if out.SendBuffer <= 0 {
		out.SendBuffer = d.SendBuffer
	}
	if out.MaxBodyBytes <= 0 {
		out.MaxBodyBytes = d.MaxBodyBytes
	}
	if out.ReadHeaderTimeout == 0 {
		out.ReadHeaderTimeout = d.ReadHeaderTimeout
	}
	if out.WriteTimeout == 0 {
		out.WriteTimeout = d.WriteTimeout
	}
	if out.ShutdownTimeout == 0 {
		out.ShutdownTimeout = d.ShutdownTimeout
	}
	return &out
}

// SameOriginCheck accepts a websocket request when its Origin header is
// absent or names the request host.
func SameOriginCheck(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	return r.Host != "" && u.Host == r.Host
}

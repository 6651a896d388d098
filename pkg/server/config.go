package server

import (
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/vango-dev/lokation/pkg/location"
	"github.com/vango-dev/lokation/pkg/remote"
)

// Config holds server configuration.
type Config struct {
	// Address is the address to listen on.
	// Default: ":8080".
	Address string

	// Title is the demo page title.
	// Default: "lokation".
	Title string

	// ForceFragment makes every session use fragment mode, even when the
	// client supports window.history.
	ForceFragment bool

	// DefaultFragment is the fragment Replace falls back to in fragment mode.
	// Default: location.DefaultFragment.
	DefaultFragment string

	// Session configures each WebSocket session.
	Session *remote.Config

	// CheckOrigin validates the Origin header of WebSocket upgrades.
	// Default: same-origin only.
	CheckOrigin func(r *http.Request) bool

	// Registry receives the server's Prometheus metrics and backs /metrics.
	// Default: a fresh registry.
	Registry *prometheus.Registry

	// TracerName is the OpenTelemetry tracer name.
	// Default: "github.com/vango-dev/lokation/pkg/server".
	TracerName string

	// ReadHeaderTimeout bounds reading request headers.
	// Default: 10 seconds.
	ReadHeaderTimeout time.Duration

	// ShutdownTimeout bounds graceful shutdown.
	// Default: 30 seconds.
	ShutdownTimeout time.Duration

	// DevMode disables thin client caching.
	DevMode bool
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Address:           ":8080",
		Title:             "lokation",
		DefaultFragment:   location.DefaultFragment,
		Session:           remote.DefaultConfig(),
		CheckOrigin:       sameOrigin,
		TracerName:        "github.com/vango-dev/lokation/pkg/server",
		ReadHeaderTimeout: 10 * time.Second,
		ShutdownTimeout:   30 * time.Second,
	}
}

// Validate reports configuration errors.
func (c *Config) Validate() error {
	if c.Address == "" {
		return errors.New("server: address is required")
	}
	if c.ShutdownTimeout < 0 {
		return errors.New("server: shutdown timeout must not be negative")
	}
	if c.Session != nil && c.Session.ReadTimeout != 0 && c.Session.HeartbeatInterval != 0 &&
		c.Session.ReadTimeout <= c.Session.HeartbeatInterval {
		return errors.New("server: session read timeout must exceed heartbeat interval")
	}
	return nil
}

// withDefaults fills zero fields from DefaultConfig.
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
	if out.DefaultFragment == "" {
		out.DefaultFragment = d.DefaultFragment
	}
	if out.Session == nil {
		out.Session = d.Session
	}
	if out.CheckOrigin == nil {
		out.CheckOrigin = d.CheckOrigin
	}
	if out.TracerName == "" {
		out.TracerName = d.TracerName
	}
	if out.ReadHeaderTimeout == 0 {
		out.ReadHeaderTimeout = d.ReadHeaderTimeout
	}
	if out.ShutdownTimeout == 0 {
		out.ShutdownTimeout = d.ShutdownTimeout
	}
	return &out
}

// sameOrigin accepts requests without an Origin header and requests whose
// Origin host matches the Host header.
func sameOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	return strings.EqualFold(u.Host, r.Host)
}

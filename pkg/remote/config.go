package remote

import (
	"time"

	"github.com/vango-dev/lokation/pkg/protocol"
)

// Config holds per-session settings.
type Config struct {
	// HandshakeTimeout bounds the wait for the client's Hello frame.
	// Default: 5 seconds.
	HandshakeTimeout time.Duration

	// ReadTimeout is the maximum time between client frames. Heartbeat
	// pongs count, so this must exceed HeartbeatInterval.
	// Default: 60 seconds.
	ReadTimeout time.Duration

	// WriteTimeout bounds a single frame write.
	// Default: 10 seconds.
	WriteTimeout time.Duration

	// HeartbeatInterval is the time between server pings.
	// Default: 25 seconds.
	HeartbeatInterval time.Duration

	// MaxMessageSize is the largest frame accepted from the client.
	// Default: protocol.FrameHeaderSize + protocol.MaxPayloadSize.
	MaxMessageSize int64

	// EventQueueSize is the buffer size of the event and dispatch queues.
	// Default: 64.
	EventQueueSize int

	// Observer, if set, sees every event and command.
	Observer Observer
}

// Observer is notified of session traffic. EventReceived must call
// deliver exactly once; it runs on the session's EventLoop.
type Observer interface {
	EventReceived(s *Session, ev *protocol.Event, deliver func())
	CommandSent(s *Session, cmd *protocol.Command)
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		HandshakeTimeout:  5 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      10 * time.Second,
		HeartbeatInterval: 25 * time.Second,
		MaxMessageSize:    protocol.FrameHeaderSize + protocol.MaxPayloadSize,
		EventQueueSize:    64,
	}
}

// withDefaults returns a copy of c with zero fields filled in.
func (c *Config) withDefaults() *Config {
	d := DefaultConfig()
	if c == nil {
		return d
	}
	out := *c
	if out.HandshakeTimeout == 0 {
		out.HandshakeTimeout = d.HandshakeTimeout
	}
	if out.ReadTimeout == 0 {
		out.ReadTimeout = d.ReadTimeout
	}
	if out.WriteTimeout == 0 {
		out.WriteTimeout = d.WriteTimeout
	}
	if out.HeartbeatInterval == 0 {
		out.HeartbeatInterval = d.HeartbeatInterval
	}
	if out.MaxMessageSize == 0 {
		out.MaxMessageSize = d.MaxMessageSize
	}
	if out.EventQueueSize == 0 {
		out.EventQueueSize = d.EventQueueSize
	}
	return &out
}

package remote

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vango-dev/lokation/pkg/location"
	"github.com/vango-dev/lokation/pkg/protocol"
)

// Accept performs the server side of the handshake on conn and returns a
// Session ready to Start. On failure the client is sent an error
// ServerHello and conn is closed.
func Accept(conn *websocket.Conn, config *Config, logger *slog.Logger) (*Session, error) {
	config = config.withDefaults()
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	conn.SetReadLimit(config.MaxMessageSize)
	conn.SetReadDeadline(time.Now().Add(config.HandshakeTimeout))

	_, msg, err := conn.ReadMessage()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("%w: %w", ErrHandshake, err)
	}

	frame, err := protocol.DecodeFrame(msg)
	if err != nil || frame.Type != protocol.FrameHello {
		rejectHello(conn, config, protocol.HandshakeInvalidFormat)
		return nil, fmt.Errorf("%w: expected hello frame", ErrHandshake)
	}

	hello, err := protocol.DecodeClientHello(frame.Payload)
	if err != nil {
		rejectHello(conn, config, protocol.HandshakeInvalidFormat)
		return nil, fmt.Errorf("%w: %w", ErrHandshake, err)
	}

	if !protocol.CurrentVersion.Compatible(hello.Version) {
		rejectHello(conn, config, protocol.HandshakeVersionMismatch)
		return nil, fmt.Errorf("%w: client %d.%d, server %d.%d", ErrVersionMismatch,
			hello.Version.Major, hello.Version.Minor,
			protocol.CurrentVersion.Major, protocol.CurrentVersion.Minor)
	}

	s := newSession(conn, hello, config, logger)
	if err := s.writeFrame(protocol.FrameHello, protocol.EncodeServerHello(protocol.NewServerHello(s.ID))); err != nil {
		conn.Close()
		return nil, fmt.Errorf("%w: %w", ErrHandshake, err)
	}

	s.logger.Info("session connected",
		"href", hello.Location.Href,
		"history", hello.HasHistory)
	return s, nil
}

func rejectHello(conn *websocket.Conn, config *Config, status protocol.HandshakeStatus) {
	frame := protocol.NewFrame(protocol.FrameHello, protocol.EncodeServerHello(protocol.NewServerHelloError(status)))
	conn.SetWriteDeadline(time.Now().Add(config.WriteTimeout))
	conn.WriteMessage(websocket.BinaryMessage, frame.Encode())
	conn.Close()
}

// Start starts all session loops.
// This should be called after the handshake is complete.
func (s *Session) Start() {
	go s.ReadLoop()
	go s.WriteLoop()
	go s.EventLoop()
}

// ReadLoop reads frames from the connection until it fails or the
// session closes.
func (s *Session) ReadLoop() {
	defer s.Close()

	for {
		s.conn.SetReadDeadline(time.Now().Add(s.config.ReadTimeout))

		_, msg, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) && !s.closed.Load() {
				s.logger.Error("read error", "error", err)
			}
			return
		}

		frame, err := protocol.DecodeFrame(msg)
		if err != nil {
			s.logger.Error("frame decode error", "error", err)
			s.sendError(protocol.ErrInvalidFrame, "invalid frame")
			continue
		}

		switch frame.Type {
		case protocol.FrameEvent:
			if !s.handleEventFrame(frame.Payload) {
				return
			}

		case protocol.FrameControl:
			s.handleControlFrame(frame.Payload)

		case protocol.FrameError:
			if em, err := protocol.DecodeErrorMessage(frame.Payload); err == nil {
				s.logger.Warn("client error", "code", em.Code, "message", em.Message)
				if em.Fatal {
					return
				}
			}

		default:
			s.logger.Warn("unexpected frame type", "type", frame.Type)
			s.sendError(protocol.ErrInvalidFrame, "unexpected frame type "+frame.Type.String())
		}
	}
}

// handleEventFrame decodes an event and queues it for the EventLoop.
// It reports false when the session closed while queueing.
func (s *Session) handleEventFrame(payload []byte) bool {
	ev, err := protocol.DecodeEvent(payload)
	if err != nil {
		s.logger.Error("event decode error", "error", err)
		s.sendError(protocol.ErrInvalidEvent, "invalid event format")
		return true
	}

	last := s.recvSeq.Load()
	if ev.Seq != 0 && ev.Seq <= last {
		s.logger.Debug("stale event dropped", "seq", ev.Seq, "last", last)
		return true
	}
	s.recvSeq.Store(ev.Seq)

	select {
	case s.events <- ev:
		return true
	case <-s.done:
		return false
	}
}

func (s *Session) handleControlFrame(payload []byte) {
	ct, data, err := protocol.DecodeControl(payload)
	if err != nil {
		s.logger.Error("control decode error", "error", err)
		return
	}

	switch ct {
	case protocol.ControlPing:
		if pp, ok := data.(*protocol.PingPong); ok {
			ct, pong := protocol.NewPong(pp.Timestamp)
			if err := s.writeFrame(protocol.FrameControl, protocol.EncodeControl(ct, pong)); err != nil {
				s.logger.Error("pong error", "error", err)
			}
		}

	case protocol.ControlPong:
		s.logger.Debug("received pong")

	case protocol.ControlClose:
		if cm, ok := data.(*protocol.CloseMessage); ok {
			s.logger.Info("client closing", "reason", cm.Reason, "message", cm.Message)
		}
		s.Close()
	}
}

// WriteLoop sends heartbeat pings until the session closes.
func (s *Session) WriteLoop() {
	ticker := time.NewTicker(s.config.HeartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ct, pp := protocol.NewPing(uint64(time.Now().UnixMilli()))
			if err := s.writeFrame(protocol.FrameControl, protocol.EncodeControl(ct, pp)); err != nil {
				if !errors.Is(err, ErrSessionClosed) {
					s.logger.Error("ping error", "error", err)
				}
				s.Close()
				return
			}

		case <-s.done:
			return
		}
	}
}

// EventLoop delivers browser events and dispatched callbacks. It is the
// only goroutine that runs listeners.
func (s *Session) EventLoop() {
	for {
		select {
		case ev := <-s.events:
			s.run(func() { s.handleEvent(ev) })

		case fn := <-s.dispatchCh:
			s.run(fn)

		case <-s.done:
			return
		}
	}
}

// run executes fn, logging and recovering a panic so the loop survives.
func (s *Session) run(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("session loop panic",
				"panic", r,
				"stack", string(debug.Stack()))
		}
	}()
	fn()
}

func (s *Session) handleEvent(ev *protocol.Event) {
	s.eventCount.Inc()
	deliver := func() { s.deliver(ev) }
	if obs := s.config.Observer; obs != nil {
		obs.EventReceived(s, ev, deliver)
		return
	}
	deliver()
}

// deliver refreshes the mirror from ev and fires listeners of its kind.
// An event that fired before the client applied the latest navigation
// command keeps the mirror, which already holds that command's result.
func (s *Session) deliver(ev *protocol.Event) {
	kind := location.EventKind(ev.Kind)
	stale := ev.Ack < s.navSeq.Load()

	s.mu.Lock()
	if !stale {
		s.loc = snapshotFromWire(ev.Location)
	}
	fns := append(([]func(location.Event))(nil), s.listeners[kind]...)
	s.mu.Unlock()

	s.logger.Debug("event received", "seq", ev.Seq, "ack", ev.Ack, "kind", kind, "href", ev.Location.Href, "stale", stale)

	e := location.Event{Kind: kind, NewURL: ev.NewURL, OldURL: ev.OldURL}
	for _, fn := range fns {
		fn(e)
	}
}

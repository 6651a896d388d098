package remote

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/atomic"

	"github.com/vango-dev/lokation/pkg/location"
	"github.com/vango-dev/lokation/pkg/protocol"
)

// Session is a connected browser tab. It implements location.Host.
type Session struct {
	// ID is the session identifier sent to the client in ServerHello.
	ID string

	// Connected is when the handshake completed.
	Connected time.Time

	conn   *websocket.Conn
	config *Config
	logger *slog.Logger

	// writeMu serializes socket writes.
	writeMu sync.Mutex

	// mu guards loc and listeners.
	mu         sync.RWMutex
	loc        location.Snapshot
	hasHistory bool
	listeners  map[location.EventKind][]func(location.Event)

	events     chan *protocol.Event
	dispatchCh chan func()
	done       chan struct{}

	closed  atomic.Bool
	sendSeq atomic.Uint64 // Last command sequence sent
	recvSeq atomic.Uint64 // Last event sequence received
	navSeq  atomic.Uint64 // Last command sequence that moved the location

	eventCount   atomic.Uint64
	commandCount atomic.Uint64
}

func generateSessionID() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		panic(fmt.Sprintf("crypto/rand failed: %v", err))
	}
	return hex.EncodeToString(b)
}

func newSession(conn *websocket.Conn, hello *protocol.ClientHello, config *Config, logger *slog.Logger) *Session {
	id := generateSessionID()
	return &Session{
		ID:         id,
		Connected:  time.Now(),
		conn:       conn,
		config:     config,
		logger:     logger.With("session_id", id),
		loc:        snapshotFromWire(hello.Location),
		hasHistory: hello.HasHistory,
		listeners:  make(map[location.EventKind][]func(location.Event)),
		events:     make(chan *protocol.Event, config.EventQueueSize),
		dispatchCh: make(chan func(), config.EventQueueSize),
		done:       make(chan struct{}),
	}
}

// Location implements location.Host. It returns the mirrored location.
func (s *Session) Location() location.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loc
}

// History implements location.Host. It is nil when the client reported
// no window.history support.
func (s *Session) History() location.History {
	if !s.hasHistory {
		return nil
	}
	return history{s}
}

// SetHash implements location.Host.
func (s *Session) SetHash(hash string) {
	hash = strings.TrimPrefix(hash, location.FragmentDelimiter)
	s.mu.Lock()
	next := location.WithoutFragment(s.loc.Href) + location.FragmentDelimiter + hash
	s.loc = location.SnapshotOf(next)
	s.mu.Unlock()

	s.send(protocol.OpSetHash, hash)
}

// ReplaceURL implements location.Host.
func (s *Session) ReplaceURL(href string) {
	s.navigate(protocol.OpReplaceURL, href)
}

// AddEventListener implements location.Host. The first listener of a kind
// asks the client to start forwarding those events.
func (s *Session) AddEventListener(kind location.EventKind, fn func(location.Event)) {
	s.mu.Lock()
	first := len(s.listeners[kind]) == 0
	s.listeners[kind] = append(s.listeners[kind], fn)
	s.mu.Unlock()

	if first {
		s.sendCommand(&protocol.Command{Op: protocol.OpListen, Kind: protocol.EventKind(kind)})
	}
}

// navigate resolves target against the mirrored URL, stores the result
// and sends op to the client.
func (s *Session) navigate(op protocol.CommandOp, target string) {
	s.mu.Lock()
	s.loc = location.SnapshotOf(location.Resolve(s.loc.Href, target))
	s.mu.Unlock()

	s.send(op, target)
}

type history struct {
	s *Session
}

func (h history) PushState(_ any, _ string, url string) {
	h.s.navigate(protocol.OpPushState, url)
}

func (h history) ReplaceState(_ any, _ string, url string) {
	h.s.navigate(protocol.OpReplaceState, url)
}

// Dispatch schedules fn to run on the session's EventLoop.
// Calls after Close are discarded.
func (s *Session) Dispatch(fn func()) {
	if s.closed.Load() {
		return
	}
	select {
	case s.dispatchCh <- fn:
	case <-s.done:
	default:
		s.logger.Warn("dispatch queue full, discarding callback")
	}
}

// Done is closed when the session closes.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// IsClosed reports whether Close has been called.
func (s *Session) IsClosed() bool {
	return s.closed.Load()
}

// Stats returns the number of events received and commands sent.
func (s *Session) Stats() (events, commands uint64) {
	return s.eventCount.Load(), s.commandCount.Load()
}

// Close closes the session. It is safe to call more than once.
func (s *Session) Close() {
	s.CloseWithReason(protocol.CloseNormal, "")
}

// CloseWithReason sends a Close control frame and closes the session.
func (s *Session) CloseWithReason(reason protocol.CloseReason, message string) {
	if s.closed.Swap(true) {
		return
	}
	close(s.done)

	ct, cm := protocol.NewClose(reason, message)
	frame := protocol.NewFrame(protocol.FrameControl, protocol.EncodeControl(ct, cm))

	s.writeMu.Lock()
	s.conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
	s.conn.WriteMessage(websocket.BinaryMessage, frame.Encode())
	s.conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second),
	)
	s.writeMu.Unlock()

	s.conn.Close()
	s.logger.Debug("session closed", "reason", reason)
}

func (s *Session) send(op protocol.CommandOp, value string) {
	s.sendCommand(&protocol.Command{Op: op, Value: value})
}

// sendCommand assigns the next sequence number and writes cmd.
func (s *Session) sendCommand(cmd *protocol.Command) {
	cmd.Seq = s.sendSeq.Inc()
	if cmd.Op != protocol.OpListen {
		s.navSeq.Store(cmd.Seq)
	}
	if err := s.writeFrame(protocol.FrameCommand, protocol.EncodeCommand(cmd)); err != nil {
		if !errors.Is(err, ErrSessionClosed) {
			s.logger.Error("command write failed", "op", cmd.Op, "error", err)
			s.Close()
		}
		return
	}
	s.commandCount.Inc()
	if obs := s.config.Observer; obs != nil {
		obs.CommandSent(s, cmd)
	}
	s.logger.Debug("command sent", "seq", cmd.Seq, "op", cmd.Op, "value", cmd.Value)
}

func (s *Session) sendError(code protocol.ErrorCode, message string) {
	payload := protocol.EncodeErrorMessage(protocol.NewError(code, message))
	if err := s.writeFrame(protocol.FrameError, payload); err != nil {
		s.logger.Error("error frame write failed", "error", err)
	}
}

func (s *Session) writeFrame(ft protocol.FrameType, payload []byte) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if s.closed.Load() {
		return ErrSessionClosed
	}
	frame := protocol.NewFrame(ft, payload)
	if len(payload) > protocol.MaxPayloadSize {
		return protocol.ErrFrameTooLarge
	}
	s.conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
	return s.conn.WriteMessage(websocket.BinaryMessage, frame.Encode())
}

func snapshotFromWire(loc protocol.Location) location.Snapshot {
	return location.Snapshot{
		Href:     loc.Href,
		Pathname: loc.Pathname,
		Search:   loc.Search,
		Hash:     loc.Hash,
	}
}

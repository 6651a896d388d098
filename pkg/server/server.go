package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"

	"github.com/vango-dev/lokation/pkg/location"
	"github.com/vango-dev/lokation/pkg/protocol"
	"github.com/vango-dev/lokation/pkg/remote"
)

// Route paths.
const (
	ClientPath  = "/_lokation/client.js"
	SocketPath  = "/_lokation/ws"
	MetricsPath = "/metrics"
	HealthPath  = "/healthz"
)

// SessionFunc is called once per connected session, on the session's
// event loop, with an Adapter that has not started listening yet.
type SessionFunc func(s *remote.Session, loc *location.Adapter)

// Server serves the thin client and drives connected sessions.
type Server struct {
	config   *Config
	logger   *slog.Logger
	router   chi.Router
	upgrader websocket.Upgrader
	registry *prometheus.Registry
	metrics  *metrics
	session  *remote.Config

	mu        sync.RWMutex
	sessions  map[string]*remote.Session
	onSession []SessionFunc

	httpServer *http.Server
}

// New creates a Server. Zero fields of config take their defaults.
func New(config *Config) *Server {
	config = config.withDefaults()

	registry := config.Registry
	if registry == nil {
		registry = prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	s := &Server{
		config: config,
		logger: slog.Default().With("component", "server"),
		upgrader: websocket.Upgrader{
			CheckOrigin: config.CheckOrigin,
		},
		registry: registry,
		metrics:  newMetrics(registry),
		sessions: make(map[string]*remote.Session),
	}

	session := *config.Session
	session.Observer = &observer{
		metrics: s.metrics,
		tracer:  otel.Tracer(config.TracerName),
		next:    config.Session.Observer,
	}
	s.session = &session

	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/", s.servePage)
	r.Get(ClientPath, s.serveThinClient)
	r.Head(ClientPath, s.serveThinClient)
	r.Get(SocketPath, s.HandleWebSocket)
	r.Method(http.MethodGet, MetricsPath, promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	r.Get(HealthPath, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	return r
}

// OnSession registers fn to run for every new session. Hooks run in
// registration order.
func (s *Server) OnSession(fn SessionFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onSession = append(s.onSession, fn)
}

// Router returns the chi router so applications can mount extra routes.
func (s *Server) Router() chi.Router {
	return s.router
}

// Handler returns the server's HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// SetLogger sets the server logger.
func (s *Server) SetLogger(logger *slog.Logger) {
	s.logger = logger.With("component", "server")
}

// Logger returns the server logger.
func (s *Server) Logger() *slog.Logger {
	return s.logger
}

// Config returns the server configuration.
func (s *Server) Config() *Config {
	return s.config
}

// SessionCount returns the number of connected sessions.
func (s *Server) SessionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Session returns the connected session with id, or nil.
func (s *Server) Session(id string) *remote.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sessions[id]
}

// HandleWebSocket upgrades the request, performs the handshake and starts
// a session.
func (s *Server) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed", "error", err)
		s.metrics.handshakeErrors.WithLabelValues("upgrade").Inc()
		return
	}

	sess, err := remote.Accept(conn, s.session, s.logger)
	if err != nil {
		reason := "invalid"
		if errors.Is(err, remote.ErrVersionMismatch) {
			reason = "version"
		}
		s.metrics.handshakeErrors.WithLabelValues(reason).Inc()
		s.logger.Warn("handshake failed", "error", err, "remote_addr", r.RemoteAddr)
		return
	}

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	hooks := append([]SessionFunc(nil), s.onSession...)
	s.mu.Unlock()

	s.metrics.sessionsTotal.Inc()
	s.metrics.activeSessions.Inc()

	go func() {
		<-sess.Done()
		s.mu.Lock()
		delete(s.sessions, sess.ID)
		s.mu.Unlock()
		s.metrics.activeSessions.Dec()
	}()

	sess.Start()
	sess.Dispatch(func() {
		loc := location.New(sess,
			location.WithPreferStack(!s.config.ForceFragment),
			location.WithDefaultFragment(s.config.DefaultFragment),
			location.WithLogger(s.logger.With("session_id", sess.ID)),
		)
		mode := loc.Mode().String()
		loc.OnChange(func(string) {
			s.metrics.notifications.WithLabelValues(mode).Inc()
		})
		for _, fn := range hooks {
			fn(sess, loc)
		}
	})
}

// Run starts the server and blocks until SIGINT, SIGTERM or a listener
// error.
func (s *Server) Run() error {
	if err := s.config.Validate(); err != nil {
		return err
	}

	s.httpServer = &http.Server{
		Addr:              s.config.Address,
		Handler:           s,
		ReadHeaderTimeout: s.config.ReadHeaderTimeout,
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(shutdown)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", "address", s.config.Address)
		errCh <- s.httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err

	case <-shutdown:
		s.logger.Info("shutting down...")
		return s.Shutdown(context.Background())
	}
}

// Shutdown closes all sessions and gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
	defer cancel()

	s.mu.RLock()
	sessions := make([]*remote.Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		sessions = append(sessions, sess)
	}
	s.mu.RUnlock()

	for _, sess := range sessions {
		sess.CloseWithReason(protocol.CloseServerShutdown, "server shutting down")
	}

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			s.logger.Error("shutdown error", "error", err)
			return err
		}
	}

	s.logger.Info("server shutdown complete")
	return nil
}

// Package server serves browser tabs whose navigation is driven from Go.
//
// A page loads the thin client from /_lokation/client.js. The client opens
// a WebSocket to /_lokation/ws, reports its location and forwards
// navigation events. For each connection the server builds a
// remote.Session and a location.Adapter on top of it, then hands both to
// the OnSession hook:
//
//	srv := server.New(server.DefaultConfig())
//	srv.OnSession(func(s *remote.Session, loc *location.Adapter) {
//	    loc.OnChange(func(path string) {
//	        slog.Info("navigated", "path", path)
//	    })
//	    loc.Listen()
//	})
//	srv.Run()
//
// The hook runs on the session's event loop, as do all subscriber
// callbacks, so an Adapter never needs locking.
//
// # Endpoints
//
//   - GET /                    demo page
//   - GET /_lokation/client.js thin client
//   - GET /_lokation/ws        WebSocket endpoint
//   - GET /metrics             Prometheus metrics
//   - GET /healthz             liveness probe
package server

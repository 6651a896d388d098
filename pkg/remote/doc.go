// Package remote implements location.Host for a browser tab connected
// over a WebSocket.
//
// The browser runs a thin client that sends a Hello frame with its
// current location and whether window.history is available. A Session
// keeps a mirror of that location. Host writes (pushState, replaceState,
// hash writes, location.replace) update the mirror immediately, the way a
// browser would, and are sent to the client as Command frames. Browser
// events arrive as Event frames; they refresh the mirror and fire the
// registered listeners.
//
// # Threading
//
// Each Session runs three goroutines:
//
//   - ReadLoop decodes frames from the socket
//   - WriteLoop sends heartbeats
//   - EventLoop delivers browser events and Dispatch callbacks
//
// Listeners and Dispatch callbacks only ever run on EventLoop, so a
// location.Adapter built on a Session must only be used from there:
//
//	s.Dispatch(func() {
//	    loc := location.New(s).Listen()
//	    loc.SetURL("/settings")
//	})
package remote

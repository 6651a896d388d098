// Package location normalizes a host's navigation state behind one interface.
//
// Hosts address the current page in one of two ways:
//   - Stack mode: the host has a history stack with push/replace operations
//     and fires a "popstate" event on back/forward traversal.
//   - Fragment mode: the host only exposes a writable URL fragment and fires
//     a "hashchange" event when it changes.
//
// An Adapter detects which mode is usable at construction time, exposes the
// current location, writes new locations, and notifies subscribers on every
// change, whether it was caused by the user (back/forward, typed fragment)
// or by the Adapter's own mutators.
//
// # Usage
//
//	loc := location.New(host)
//	unsubscribe := loc.OnChange(func(path string) {
//	    render(path)
//	})
//	defer unsubscribe()
//
//	loc.Listen()             // start following host navigation
//	loc.SetURL("/projects")  // push (stack mode) or write the fragment
//	loc.Replace("/projects?tab=open")
//
// # Threading
//
// The Adapter is not safe for concurrent use. Every method and every host
// event must run on the host's single navigation goroutine. Notification is
// synchronous: a mutator returns after every subscriber has been called.
//
// # Hosts
//
// The Host interface is the only way the Adapter touches navigation state.
// See the memhost package for an in-memory host, wasmhost for the browser,
// and remote for a host mirrored over a WebSocket connection.
package location

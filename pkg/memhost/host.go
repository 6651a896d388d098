// Package memhost provides an in-memory location.Host.
//
// A Host behaves like a single browser tab: it keeps a history stack,
// answers location reads synchronously, and queues the events a browser
// would fire. Queued events are only delivered when Flush or Step is
// called, which models the later turn of the host event loop:
//
//	h := memhost.New("http://example.com/")
//	loc := location.New(h).Listen()
//	h.SetHash("/about") // user typed a fragment
//	h.Flush()           // hashchange delivered, subscribers notified
//
// Every call the Adapter makes into the Host is recorded so tests can
// assert on it (Pushes, Replaces, URLReplaces, HashWrites).
package memhost

import (
	"strings"

	"github.com/vango-dev/lokation/pkg/location"
)

// Option configures a Host.
type Option func(*Host)

// WithoutHistory makes History return nil, like a browser that predates
// pushState. Back and Forward still work; they only fire hashchange.
func WithoutHistory() Option {
	return func(h *Host) {
		h.hasHistory = false
	}
}

// WithHistoryLimit caps the number of history entries kept. Oldest
// entries are dropped first. Zero means unlimited.
func WithHistoryLimit(n int) Option {
	return func(h *Host) {
		h.limit = n
	}
}

// Host is an in-memory browser tab. It is not safe for concurrent use.
type Host struct {
	stack      *Stack
	hasHistory bool
	limit      int

	listeners map[location.EventKind][]func(location.Event)
	queue     []location.Event

	pushes      []string
	replaces    []string
	urlReplaces []string
	hashWrites  []string
}

// New returns a Host whose current URL is href.
func New(href string, opts ...Option) *Host {
	h := &Host{
		hasHistory: true,
		listeners:  make(map[location.EventKind][]func(location.Event)),
	}
	for _, opt := range opts {
		opt(h)
	}
	h.stack = NewStack(h.limit)
	h.stack.Push(href)
	return h
}

// Location implements location.Host.
func (h *Host) Location() location.Snapshot {
	return location.SnapshotOf(h.stack.Current())
}

// Href returns the current URL.
func (h *Host) Href() string {
	return h.stack.Current()
}

// History implements location.Host.
func (h *Host) History() location.History {
	if !h.hasHistory {
		return nil
	}
	return history{h}
}

// SetHash implements location.Host. A changed fragment adds a history
// entry and queues popstate (when the host has a history API) followed by
// hashchange, in the order a browser fires them.
func (h *Host) SetHash(hash string) {
	h.hashWrites = append(h.hashWrites, hash)
	hash = strings.TrimPrefix(hash, location.FragmentDelimiter)

	old := h.stack.Current()
	next := location.WithoutFragment(old) + location.FragmentDelimiter + hash
	if location.FragmentOf(old) == hash {
		return
	}
	h.stack.Push(next)
	h.fragmentNavigated(old, next, true)
}

// ReplaceURL implements location.Host. The current entry is overwritten;
// popstate and hashchange are queued when only the fragment changed.
func (h *Host) ReplaceURL(href string) {
	h.urlReplaces = append(h.urlReplaces, href)

	old := h.stack.Current()
	next := location.Resolve(old, href)
	h.stack.Replace(next)
	h.fragmentNavigated(old, next, true)
}

// AddEventListener implements location.Host.
func (h *Host) AddEventListener(kind location.EventKind, fn func(location.Event)) {
	h.listeners[kind] = append(h.listeners[kind], fn)
}

// Listeners returns the number of listeners registered for kind.
func (h *Host) Listeners(kind location.EventKind) int {
	return len(h.listeners[kind])
}

// Navigate follows a link to href, the way a user clicking an anchor
// would. Only same-document navigations are modeled: a new history entry
// is added and popstate and hashchange are queued when the fragment
// changed.
func (h *Host) Navigate(href string) {
	old := h.stack.Current()
	next := location.Resolve(old, href)
	h.stack.Push(next)
	h.fragmentNavigated(old, next, true)
}

// Back moves one entry back. It reports false at the start of history.
func (h *Host) Back() bool {
	return h.Go(-1)
}

// Forward moves one entry forward. It reports false at the end of history.
func (h *Host) Forward() bool {
	return h.Go(1)
}

// Go moves delta entries through history and queues popstate (when the
// host has a history API) followed by hashchange when the fragment
// differs. It reports false and does nothing if delta is out of range.
func (h *Host) Go(delta int) bool {
	old := h.stack.Current()
	if !h.stack.Move(delta) {
		return false
	}
	next := h.stack.Current()
	if h.hasHistory {
		h.enqueue(location.Event{Kind: location.EventPopState})
	}
	h.fragmentNavigated(old, next, false)
	return true
}

// fragmentNavigated queues the events for a same-document move from old to
// next. popState is false when the caller already queued popstate.
func (h *Host) fragmentNavigated(old, next string, popState bool) {
	if location.WithoutFragment(old) != location.WithoutFragment(next) {
		return
	}
	if location.FragmentOf(old) == location.FragmentOf(next) {
		return
	}
	if popState && h.hasHistory {
		h.enqueue(location.Event{Kind: location.EventPopState})
	}
	h.enqueue(location.Event{Kind: location.EventHashChange, NewURL: next, OldURL: old})
}

func (h *Host) enqueue(ev location.Event) {
	h.queue = append(h.queue, ev)
}

// Pending returns the number of queued events.
func (h *Host) Pending() int {
	return len(h.queue)
}

// Step delivers the oldest queued event. It reports false if the queue
// was empty.
func (h *Host) Step() bool {
	if len(h.queue) == 0 {
		return false
	}
	ev := h.queue[0]
	h.queue = h.queue[1:]

	fns := h.listeners[ev.Kind]
	for _, fn := range fns {
		fn(ev)
	}
	return true
}

// Flush delivers queued events, including any queued while delivering,
// until the queue is empty. It returns the number delivered.
func (h *Host) Flush() int {
	n := 0
	for h.Step() {
		n++
	}
	return n
}

// Discard drops all queued events without delivering them.
func (h *Host) Discard() {
	h.queue = nil
}

// Pushes returns the URLs passed to PushState, oldest first.
func (h *Host) Pushes() []string { return h.pushes }

// Replaces returns the URLs passed to ReplaceState, oldest first.
func (h *Host) Replaces() []string { return h.replaces }

// URLReplaces returns the hrefs passed to ReplaceURL, oldest first.
func (h *Host) URLReplaces() []string { return h.urlReplaces }

// HashWrites returns the values passed to SetHash, oldest first.
func (h *Host) HashWrites() []string { return h.hashWrites }

// Entries returns the history stack and the index of the current entry.
func (h *Host) Entries() ([]string, int) {
	return h.stack.Entries()
}

// history is the location.History view of a Host.
type history struct {
	h *Host
}

func (hi history) PushState(_ any, _ string, url string) {
	hi.h.pushes = append(hi.h.pushes, url)
	hi.h.stack.Push(location.Resolve(hi.h.stack.Current(), url))
}

func (hi history) ReplaceState(_ any, _ string, url string) {
	hi.h.replaces = append(hi.h.replaces, url)
	hi.h.stack.Replace(location.Resolve(hi.h.stack.Current(), url))
}

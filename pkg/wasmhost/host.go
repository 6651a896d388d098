//go:build js && wasm

package wasmhost

import (
	"syscall/js"

	"github.com/vango-dev/lokation/pkg/location"
)

// Host wraps window.location, window.history and window.addEventListener.
type Host struct {
	window js.Value

	listeners []listener
}

type listener struct {
	event string
	fn    js.Func
}

// New returns a Host bound to the global window.
func New() *Host {
	return &Host{window: js.Global().Get("window")}
}

// Location implements location.Host.
func (h *Host) Location() location.Snapshot {
	loc := h.window.Get("location")
	return location.Snapshot{
		Href:     loc.Get("href").String(),
		Pathname: loc.Get("pathname").String(),
		Search:   loc.Get("search").String(),
		Hash:     loc.Get("hash").String(),
	}
}

// History implements location.Host. It returns nil when window.history
// has no pushState function.
func (h *Host) History() location.History {
	hist := h.window.Get("history")
	if hist.IsUndefined() || hist.IsNull() || hist.Get("pushState").Type() != js.TypeFunction {
		return nil
	}
	return history{hist}
}

// SetHash implements location.Host.
func (h *Host) SetHash(hash string) {
	h.window.Get("location").Set("hash", hash)
}

// ReplaceURL implements location.Host.
func (h *Host) ReplaceURL(href string) {
	h.window.Get("location").Call("replace", href)
}

// AddEventListener implements location.Host.
func (h *Host) AddEventListener(kind location.EventKind, fn func(location.Event)) {
	cb := js.FuncOf(func(_ js.Value, args []js.Value) any {
		ev := location.Event{Kind: kind}
		if kind == location.EventHashChange && len(args) > 0 {
			ev.NewURL = stringProp(args[0], "newURL")
			ev.OldURL = stringProp(args[0], "oldURL")
		}
		fn(ev)
		return nil
	})
	h.listeners = append(h.listeners, listener{event: kind.String(), fn: cb})
	h.window.Call("addEventListener", kind.String(), cb)
}

// Release removes every listener from window and frees its callback.
func (h *Host) Release() {
	for _, l := range h.listeners {
		h.window.Call("removeEventListener", l.event, l.fn)
		l.fn.Release()
	}
	h.listeners = nil
}

func stringProp(v js.Value, name string) string {
	p := v.Get(name)
	if p.Type() != js.TypeString {
		return ""
	}
	return p.String()
}

type history struct {
	v js.Value
}

func (h history) PushState(state any, title, url string) {
	h.v.Call("pushState", js.ValueOf(state), title, url)
}

func (h history) ReplaceState(state any, title, url string) {
	h.v.Call("replaceState", js.ValueOf(state), title, url)
}

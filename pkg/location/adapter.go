package location

import (
	"io"
	"log/slog"
)

// Mode is the addressing strategy an Adapter settled on.
type Mode uint8

const (
	// ModeFragment addresses pages through the URL fragment.
	ModeFragment Mode = iota

	// ModeStack addresses pages through the host's history stack.
	ModeStack
)

// String returns the mode name.
func (m Mode) String() string {
	if m == ModeStack {
		return "stack"
	}
	return "fragment"
}

// DefaultFragment is the fragment Replace falls back to in fragment mode
// when neither a target nor a current fragment exists.
const DefaultFragment = "/"

// Option configures an Adapter.
type Option func(*options)

type options struct {
	preferStack     bool
	defaultFragment string
	suppressEcho    bool
	logger          *slog.Logger
}

func defaultOptions() options {
	return options{
		preferStack:     true,
		defaultFragment: DefaultFragment,
		suppressEcho:    true,
	}
}

// WithPreferStack sets whether stack mode should be used when the host
// supports it. Passing false forces fragment mode. Passing true never
// enables stack mode on a host without a history stack.
func WithPreferStack(prefer bool) Option {
	return func(o *options) {
		o.preferStack = prefer
	}
}

// WithDefaultFragment sets the fragment Replace uses in fragment mode when
// called without a target on a URL that has no fragment. Default: "/".
func WithDefaultFragment(fragment string) Option {
	return func(o *options) {
		o.defaultFragment = fragment
	}
}

// WithEchoSuppression controls whether the host event caused by the
// Adapter's own fragment write is swallowed: hashchange in fragment mode,
// popstate in stack mode. The Adapter always notifies synchronously after
// a write; with suppression disabled the host's later event produces a
// second notification. Every write is tracked, so several writes in one
// turn each swallow their own event. Default: true.
func WithEchoSuppression(enabled bool) Option {
	return func(o *options) {
		o.suppressEcho = enabled
	}
}

// WithLogger sets the logger for debug records. Default: discard.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// Adapter reads, writes and watches a host's location.
type Adapter struct {
	host   Host
	html5  bool
	opts   options
	logger *slog.Logger

	subs      notifier
	listening bool

	// echoes holds the locations written by the Adapter whose host event
	// has not arrived yet, oldest first.
	echoes []string
}

// New creates an Adapter for host. Stack mode is selected when the host
// has a history stack and WithPreferStack(false) was not given.
func New(host Host, opts ...Option) *Adapter {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	logger := o.logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	a := &Adapter{
		host:   host,
		html5:  host.History() != nil && o.preferStack,
		opts:   o,
		logger: logger,
	}
	a.logger.Debug("location adapter created", "mode", a.Mode())
	return a
}

// HTML5 reports whether the Adapter uses the host's history stack.
func (a *Adapter) HTML5() bool {
	return a.html5
}

// Mode returns the addressing strategy in use.
func (a *Adapter) Mode() Mode {
	if a.html5 {
		return ModeStack
	}
	return ModeFragment
}

// Listening reports whether Listen has been called.
func (a *Adapter) Listening() bool {
	return a.listening
}

// Listen starts following host navigation. The first call registers one
// host listener (popstate in stack mode, hashchange in fragment mode) and
// notifies subscribers once with the current location. Later calls do
// nothing.
func (a *Adapter) Listen() *Adapter {
	if a.listening {
		return a
	}

	if a.html5 {
		a.host.AddEventListener(EventPopState, a.onPopState)
	} else {
		a.host.AddEventListener(EventHashChange, a.onHashChange)
	}
	a.logger.Debug("location listening", "mode", a.Mode())

	a.notify(a.URL())
	a.listening = true
	return a
}

// OnChange registers fn to receive the location after every change and
// returns a function that removes this registration. Registering the same
// function twice yields two independent registrations.
func (a *Adapter) OnChange(fn Subscriber) (unsubscribe func()) {
	return a.subs.add(fn)
}

// Subscribers returns the number of registrations.
func (a *Adapter) Subscribers() int {
	return a.subs.len()
}

// URL returns the current location: path, query and fragment in stack
// mode, the fragment alone in fragment mode.
func (a *Adapter) URL() string {
	if a.html5 {
		return Compose(a.host.Location())
	}
	return a.Hash()
}

// SetURL navigates to target. In stack mode a new history entry is pushed;
// in fragment mode target becomes the fragment. Subscribers are notified
// before SetURL returns.
func (a *Adapter) SetURL(target string) *Adapter {
	if !a.html5 {
		return a.SetHash(target)
	}

	a.host.History().PushState(nil, "", target)
	a.logger.Debug("location pushed", "url", target)
	a.notify(Compose(a.host.Location()))
	return a
}

// Hash returns the current fragment without its leading "#", or "".
func (a *Adapter) Hash() string {
	hash := a.host.Location().Hash
	if hash == "" {
		return ""
	}
	return hash[1:]
}

// SetHash writes value as the URL fragment and notifies subscribers with
// the new location before returning. In fragment mode that is the new
// fragment; in stack mode it is the composed URL.
func (a *Adapter) SetHash(value string) *Adapter {
	before := a.Hash()
	a.host.SetHash(value)
	after := a.Hash()
	a.logger.Debug("location hash set", "hash", after)

	if a.html5 {
		url := Compose(a.host.Location())
		a.expectEcho(before, after, url)
		a.notify(url)
		return a
	}
	a.expectEcho(before, after, after)
	a.notify(after)
	return a
}

// Replace overwrites the current location without adding a history entry
// and notifies subscribers. An empty target means the current location;
// in fragment mode a URL without a fragment falls back to the default
// fragment (see WithDefaultFragment).
func (a *Adapter) Replace(target string) *Adapter {
	if a.html5 {
		if target == "" {
			target = Compose(a.host.Location())
		}
		a.host.History().ReplaceState(nil, "", target)
		a.logger.Debug("location replaced", "url", target)
		a.notify(Compose(a.host.Location()))
		return a
	}

	if target == "" {
		target = a.Hash()
	}
	if target == "" {
		target = a.opts.defaultFragment
	}

	before := a.Hash()
	href := ReplaceFragmentURL(a.host.Location().Href, target)
	a.host.ReplaceURL(href)
	a.logger.Debug("location replaced", "href", href)

	hash := FragmentOf(href)
	a.expectEcho(before, hash, hash)
	a.notify(hash)
	return a
}

// expectEcho records that the host will fire an event for the move from
// fragment before to after. loc is what the event is matched against.
func (a *Adapter) expectEcho(before, after, loc string) {
	if !a.opts.suppressEcho || before == after {
		return
	}
	a.echoes = append(a.echoes, loc)
}

// takeEcho reports whether loc is an expected echo and drops it together
// with every older entry.
func (a *Adapter) takeEcho(loc string) bool {
	for i, e := range a.echoes {
		if e == loc {
			a.echoes = a.echoes[i+1:]
			return true
		}
	}
	return false
}

// onPopState reads the location when the event is delivered, so after
// several writes every pending popstate sees the newest one. An event is
// an echo while the location still equals the last write.
func (a *Adapter) onPopState(Event) {
	loc := Compose(a.host.Location())
	if n := len(a.echoes); n > 0 {
		if a.echoes[n-1] == loc {
			a.echoes = a.echoes[1:]
			a.logger.Debug("location popstate echo skipped", "url", loc)
			return
		}
		a.echoes = nil
	}
	if !a.listening {
		return
	}
	a.notify(loc)
}

func (a *Adapter) onHashChange(ev Event) {
	hash := FragmentOf(ev.NewURL)
	if a.takeEcho(hash) {
		a.logger.Debug("location hashchange echo skipped", "hash", hash)
		return
	}
	if !a.listening {
		return
	}
	a.notify(hash)
}

func (a *Adapter) notify(path string) {
	a.subs.notify(path)
}

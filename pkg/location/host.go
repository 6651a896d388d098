package location

// EventKind identifies a host navigation event.
type EventKind uint8

const (
	// EventPopState fires when the host traverses its history stack.
	EventPopState EventKind = 0x01

	// EventHashChange fires when the host's URL fragment changes.
	EventHashChange EventKind = 0x02
)

// String returns the DOM name of the event.
func (k EventKind) String() string {
	switch k {
	case EventPopState:
		return "popstate"
	case EventHashChange:
		return "hashchange"
	default:
		return "unknown"
	}
}

// Event is delivered to listeners registered with Host.AddEventListener.
type Event struct {
	Kind EventKind

	// NewURL is the full URL after a hashchange. Empty for popstate.
	NewURL string

	// OldURL is the full URL before a hashchange. Empty for popstate.
	OldURL string
}

// Snapshot is the host's current URL split into the components the
// Adapter reads.
type Snapshot struct {
	// Href is the full URL.
	Href string

	// Pathname is the path component, e.g. "/projects".
	Pathname string

	// Search is the query component including its leading "?", or "".
	Search string

	// Hash is the fragment component including its leading "#", or "".
	Hash string
}

// History is the host's navigation stack.
type History interface {
	// PushState adds a new entry whose URL is url.
	PushState(state any, title, url string)

	// ReplaceState overwrites the current entry with url.
	ReplaceState(state any, title, url string)
}

// Host is the navigation environment an Adapter runs against.
type Host interface {
	// Location returns the current URL.
	Location() Snapshot

	// History returns the navigation stack, or nil if the host has none.
	History() History

	// SetHash writes the URL fragment. The host fires its own hashchange
	// event in a later turn if the value changed.
	SetHash(hash string)

	// ReplaceURL replaces the current URL without adding a history entry.
	ReplaceURL(href string)

	// AddEventListener registers fn for events of the given kind.
	AddEventListener(kind EventKind, fn func(Event))
}

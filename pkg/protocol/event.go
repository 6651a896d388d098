package protocol

import "errors"

// EventKind identifies the browser event a client reports.
type EventKind uint8

const (
	EventPopState   EventKind = 0x01
	EventHashChange EventKind = 0x02
)

// String returns the DOM event name.
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

// ErrUnknownEventKind is returned when decoding an event of unknown kind.
var ErrUnknownEventKind = errors.New("protocol: unknown event kind")

// Event is a navigation event observed by the client.
// Location is the browser location after the event fired.
type Event struct {
	Seq uint64

	// Ack is the sequence number of the last command the client applied
	// before the event fired.
	Ack uint64

	Kind     EventKind
	NewURL   string
	OldURL   string
	Location Location
}

// EncodeEvent encodes an Event to bytes.
func EncodeEvent(ev *Event) []byte {
	e := NewEncoder()
	EncodeEventTo(e, ev)
	return e.Bytes()
}

// EncodeEventTo encodes an Event using the provided encoder.
func EncodeEventTo(e *Encoder, ev *Event) {
	e.WriteUvarint(ev.Seq)
	e.WriteUvarint(ev.Ack)
	e.WriteByte(byte(ev.Kind))
	e.WriteString(ev.NewURL)
	e.WriteString(ev.OldURL)
	encodeLocation(e, &ev.Location)
}

// DecodeEvent decodes an Event from bytes.
func DecodeEvent(data []byte) (*Event, error) {
	d := NewDecoder(data)
	ev := &Event{}
	var err error

	if ev.Seq, err = d.ReadUvarint(); err != nil {
		return nil, err
	}
	if ev.Ack, err = d.ReadUvarint(); err != nil {
		return nil, err
	}
	kind, err := d.ReadByte()
	if err != nil {
		return nil, err
	}
	ev.Kind = EventKind(kind)
	if ev.Kind != EventPopState && ev.Kind != EventHashChange {
		return nil, ErrUnknownEventKind
	}
	if ev.NewURL, err = d.ReadString(); err != nil {
		return nil, err
	}
	if ev.OldURL, err = d.ReadString(); err != nil {
		return nil, err
	}
	if err := decodeLocation(d, &ev.Location); err != nil {
		return nil, err
	}
	return ev, d.finish()
}

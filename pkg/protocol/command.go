package protocol

import "errors"

// CommandOp identifies a navigation command.
type CommandOp uint8

const (
	OpPushState    CommandOp = 0x01 // history.pushState(null, "", value)
	OpReplaceState CommandOp = 0x02 // history.replaceState(null, "", value)
	OpSetHash      CommandOp = 0x03 // location.hash = value
	OpReplaceURL   CommandOp = 0x04 // location.replace(value)
	OpListen       CommandOp = 0x05 // start forwarding events of Kind
)

// String returns the string representation of the op.
func (op CommandOp) String() string {
	switch op {
	case OpPushState:
		return "PushState"
	case OpReplaceState:
		return "ReplaceState"
	case OpSetHash:
		return "SetHash"
	case OpReplaceURL:
		return "ReplaceURL"
	case OpListen:
		return "Listen"
	default:
		return "Unknown"
	}
}

// ErrUnknownOp is returned when decoding a command with an unknown op.
var ErrUnknownOp = errors.New("protocol: unknown command op")

// Command is a navigation instruction sent to the client.
// Value carries the URL or fragment; Kind is only used by OpListen.
type Command struct {
	Seq   uint64
	Op    CommandOp
	Value string
	Kind  EventKind
}

// EncodeCommand encodes a Command to bytes.
func EncodeCommand(c *Command) []byte {
	e := NewEncoder()
	EncodeCommandTo(e, c)
	return e.Bytes()
}

// EncodeCommandTo encodes a Command using the provided encoder.
func EncodeCommandTo(e *Encoder, c *Command) {
	e.WriteUvarint(c.Seq)
	e.WriteByte(byte(c.Op))
	if c.Op == OpListen {
		e.WriteByte(byte(c.Kind))
		return
	}
	e.WriteString(c.Value)
}

// DecodeCommand decodes a Command from bytes.
func DecodeCommand(data []byte) (*Command, error) {
	d := NewDecoder(data)
	c := &Command{}
	var err error

	if c.Seq, err = d.ReadUvarint(); err != nil {
		return nil, err
	}
	op, err := d.ReadByte()
	if err != nil {
		return nil, err
	}
	c.Op = CommandOp(op)

	switch c.Op {
	case OpPushState, OpReplaceState, OpSetHash, OpReplaceURL:
		if c.Value, err = d.ReadString(); err != nil {
			return nil, err
		}
	case OpListen:
		kind, err := d.ReadByte()
		if err != nil {
			return nil, err
		}
		c.Kind = EventKind(kind)
	default:
		return nil, ErrUnknownOp
	}
	return c, d.finish()
}

package protocol

// HandshakeStatus represents the result of a handshake.
type HandshakeStatus uint8

const (
	HandshakeOK              HandshakeStatus = 0x00
	HandshakeVersionMismatch HandshakeStatus = 0x01
	HandshakeServerBusy      HandshakeStatus = 0x02
	HandshakeInvalidFormat   HandshakeStatus = 0x03 // Malformed handshake message
	HandshakeInternalError   HandshakeStatus = 0x04
)

// String returns the string representation of the handshake status.
func (hs HandshakeStatus) String() string {
	switch hs {
	case HandshakeOK:
		return "OK"
	case HandshakeVersionMismatch:
		return "VersionMismatch"
	case HandshakeServerBusy:
		return "ServerBusy"
	case HandshakeInvalidFormat:
		return "InvalidFormat"
	case HandshakeInternalError:
		return "InternalError"
	default:
		return "Unknown"
	}
}

// ProtocolVersion represents a protocol version as major.minor.
type ProtocolVersion struct {
	Major uint8
	Minor uint8
}

// CurrentVersion is the current protocol version.
var CurrentVersion = ProtocolVersion{Major: 1, Minor: 0}

// Compatible reports whether a peer speaking v can talk to this package.
// Only the major version has to match.
func (v ProtocolVersion) Compatible(other ProtocolVersion) bool {
	return v.Major == other.Major
}

// Location is the wire form of a browser location snapshot.
type Location struct {
	Href     string
	Pathname string
	Search   string
	Hash     string
}

// ClientHello is sent by the client after the WebSocket connection is established.
type ClientHello struct {
	Version    ProtocolVersion
	HasHistory bool // window.history is available
	Location   Location
}

// ServerHello is the server's response to ClientHello.
type ServerHello struct {
	Status    HandshakeStatus
	SessionID string
}

func encodeLocation(e *Encoder, loc *Location) {
	e.WriteString(loc.Href)
	e.WriteString(loc.Pathname)
	e.WriteString(loc.Search)
	e.WriteString(loc.Hash)
}

func decodeLocation(d *Decoder, loc *Location) error {
	var err error
	if loc.Href, err = d.ReadString(); err != nil {
		return err
	}
	if loc.Pathname, err = d.ReadString(); err != nil {
		return err
	}
	if loc.Search, err = d.ReadString(); err != nil {
		return err
	}
	loc.Hash, err = d.ReadString()
	return err
}

// EncodeClientHello encodes a ClientHello to bytes.
func EncodeClientHello(ch *ClientHello) []byte {
	e := NewEncoder()
	EncodeClientHelloTo(e, ch)
	return e.Bytes()
}

// EncodeClientHelloTo encodes a ClientHello using the provided encoder.
func EncodeClientHelloTo(e *Encoder, ch *ClientHello) {
	e.WriteByte(ch.Version.Major)
	e.WriteByte(ch.Version.Minor)
	e.WriteBool(ch.HasHistory)
	encodeLocation(e, &ch.Location)
}

// DecodeClientHello decodes a ClientHello from bytes.
func DecodeClientHello(data []byte) (*ClientHello, error) {
	d := NewDecoder(data)
	ch, err := DecodeClientHelloFrom(d)
	if err != nil {
		return nil, err
	}
	return ch, d.finish()
}

// DecodeClientHelloFrom decodes a ClientHello from a decoder.
func DecodeClientHelloFrom(d *Decoder) (*ClientHello, error) {
	ch := &ClientHello{}

	major, err := d.ReadByte()
	if err != nil {
		return nil, err
	}
	minor, err := d.ReadByte()
	if err != nil {
		return nil, err
	}
	ch.Version = ProtocolVersion{Major: major, Minor: minor}

	ch.HasHistory, err = d.ReadBool()
	if err != nil {
		return nil, err
	}

	if err := decodeLocation(d, &ch.Location); err != nil {
		return nil, err
	}
	return ch, nil
}

// EncodeServerHello encodes a ServerHello to bytes.
func EncodeServerHello(sh *ServerHello) []byte {
	e := NewEncoder()
	e.WriteByte(byte(sh.Status))
	e.WriteString(sh.SessionID)
	return e.Bytes()
}

// DecodeServerHello decodes a ServerHello from bytes.
func DecodeServerHello(data []byte) (*ServerHello, error) {
	d := NewDecoder(data)
	status, err := d.ReadByte()
	if err != nil {
		return nil, err
	}
	id, err := d.ReadString()
	if err != nil {
		return nil, err
	}
	return &ServerHello{Status: HandshakeStatus(status), SessionID: id}, d.finish()
}

// NewClientHello creates a ClientHello with the current version.
func NewClientHello(hasHistory bool, loc Location) *ClientHello {
	return &ClientHello{
		Version:    CurrentVersion,
		HasHistory: hasHistory,
		Location:   loc,
	}
}

// NewServerHello creates a new successful ServerHello.
func NewServerHello(sessionID string) *ServerHello {
	return &ServerHello{
		Status:    HandshakeOK,
		SessionID: sessionID,
	}
}

// NewServerHelloError creates a ServerHello with an error status.
func NewServerHelloError(status HandshakeStatus) *ServerHello {
	return &ServerHello{
		Status: status,
	}
}

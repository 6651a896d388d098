package remote

import "errors"

var (
	// ErrSessionClosed is returned when writing to a closed session.
	ErrSessionClosed = errors.New("remote: session closed")

	// ErrHandshake is returned by Accept when the client's Hello frame is
	// missing or malformed.
	ErrHandshake = errors.New("remote: handshake failed")

	// ErrVersionMismatch is returned by Accept when the client speaks an
	// incompatible protocol version.
	ErrVersionMismatch = errors.New("remote: protocol version mismatch")
)

// Package protocol implements the binary wire protocol between a browser
// thin client and a Go process that drives its navigation state.
//
// The browser reports its location and navigation events; the Go side
// answers with navigation commands. The Go side keeps a mirror of the
// browser location so reads never wait for a round trip.
//
// # Wire Format
//
// All messages are framed with a 4-byte header:
//
//	┌─────────────┬──────────────┬───────────────────────────────┐
//	│ Frame Type  │ Flags        │ Payload Length                │
//	│ (1 byte)    │ (1 byte)     │ (2 bytes, big-endian)         │
//	└─────────────┴──────────────┴───────────────────────────────┘
//
// # Frame Types
//
//   - FrameHello (0x00): handshake in both directions
//   - FrameEvent (0x01): client → server navigation events
//   - FrameCommand (0x02): server → client navigation commands
//   - FrameControl (0x03): ping, pong, close
//   - FrameError (0x05): error message
//
// # Encoding
//
//   - Varint: protobuf-style unsigned integers
//   - Length-prefixed: strings prefixed with a varint length
//   - Big-endian: fixed-width integers (uint16, uint64)
//
// # Handshake
//
//	Client                          Server
//	  │                                │
//	  │──── ClientHello ─────────────>│
//	  │     (version, history, href)  │
//	  │                                │
//	  │<──── ServerHello ─────────────│
//	  │     (status, session id)      │
//
// # Events
//
//	[Seq: varint][Kind: byte][NewURL: str][OldURL: str][Location]
//
// Location is four length-prefixed strings: href, pathname, search, hash.
//
// # Commands
//
//	[Seq: varint][Op: byte][Value: str]   (PushState, ReplaceState, SetHash, ReplaceURL)
//	[Seq: varint][Op: byte][Kind: byte]   (Listen)
package protocol

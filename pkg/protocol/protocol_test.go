package protocol

import (
	"bytes"
	"errors"
	"io"
	"testing"
)

func TestUvarint(t *testing.T) {
	values := []uint64{0, 1, 127, 128, 300, 1 << 32, ^uint64(0)}
	e := NewEncoder()
	for _, v := range values {
		e.WriteUvarint(v)
	}
	d := NewDecoder(e.Bytes())
	for _, want := range values {
		got, err := d.ReadUvarint()
		if err != nil {
			t.Fatalf("ReadUvarint() error = %v", err)
		}
		if got != want {
			t.Errorf("ReadUvarint() = %d, want %d", got, want)
		}
	}
	if !d.EOF() {
		t.Errorf("Remaining() = %d, want 0", d.Remaining())
	}
}

func TestDecoder_Errors(t *testing.T) {
	overflow := bytes.Repeat([]byte{0xFF}, 11)
	if _, err := NewDecoder(overflow).ReadUvarint(); !errors.Is(err, ErrVarintOverflow) {
		t.Errorf("ReadUvarint(overflow) error = %v, want ErrVarintOverflow", err)
	}

	// Declares 10 bytes, carries 2.
	if _, err := NewDecoder([]byte{10, 'a', 'b'}).ReadString(); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("ReadString(short) error = %v, want io.ErrUnexpectedEOF", err)
	}

	e := NewEncoder()
	e.WriteString(string(make([]byte, MaxStringLen+1)))
	if _, err := NewDecoder(e.Bytes()).ReadString(); !errors.Is(err, ErrStringTooLarge) {
		t.Errorf("ReadString(huge) error = %v, want ErrStringTooLarge", err)
	}

	if _, err := NewDecoder([]byte{1}).ReadUint16(); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("ReadUint16(short) error = %v", err)
	}
	if _, err := NewDecoder(nil).ReadUint64(); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("ReadUint64(empty) error = %v", err)
	}
}

func TestFrame_RoundTrip(t *testing.T) {
	f := &Frame{Type: FrameCommand, Flags: FlagFinal, Payload: []byte{1, 2, 3}}
	var buf bytes.Buffer
	if err := WriteFrame(&buf, f); err != nil {
		t.Fatalf("WriteFrame() error = %v", err)
	}
	if got := buf.Bytes()[:FrameHeaderSize]; !bytes.Equal(got, []byte{0x02, 0x04, 0x00, 0x03}) {
		t.Errorf("header = % x", got)
	}

	got, err := ReadFrame(&buf)
	if err != nil {
		t.Fatalf("ReadFrame() error = %v", err)
	}
	if got.Type != FrameCommand || !got.Flags.Has(FlagFinal) || !bytes.Equal(got.Payload, f.Payload) {
		t.Errorf("ReadFrame() = %+v, want %+v", got, f)
	}

	if _, err := DecodeFrame([]byte{0x01, 0x00, 0x00, 0x05, 0xAA}); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("DecodeFrame(truncated) error = %v", err)
	}
	if err := WriteFrame(io.Discard, NewFrame(FrameEvent, make([]byte, MaxPayloadSize+1))); !errors.Is(err, ErrFrameTooLarge) {
		t.Errorf("WriteFrame(huge) error = %v", err)
	}
}

func TestFrameType_String(t *testing.T) {
	tests := map[FrameType]string{
		FrameHello:      "Hello",
		FrameEvent:      "Event",
		FrameCommand:    "Command",
		FrameControl:    "Control",
		FrameError:      "Error",
		FrameType(0x7F): "Unknown",
	}
	for ft, want := range tests {
		if got := ft.String(); got != want {
			t.Errorf("FrameType(%d).String() = %q, want %q", ft, got, want)
		}
	}
}

func TestClientHello(t *testing.T) {
	in := NewClientHello(true, Location{
		Href:     "http://example.com/docs?q=1#top",
		Pathname: "/docs",
		Search:   "?q=1",
		Hash:     "#top",
	})
	out, err := DecodeClientHello(EncodeClientHello(in))
	if err != nil {
		t.Fatalf("DecodeClientHello() error = %v", err)
	}
	if *out != *in {
		t.Errorf("DecodeClientHello() = %+v, want %+v", out, in)
	}
	if !out.Version.Compatible(ProtocolVersion{Major: CurrentVersion.Major, Minor: 9}) {
		t.Error("minor version difference should be compatible")
	}
	if out.Version.Compatible(ProtocolVersion{Major: CurrentVersion.Major + 1}) {
		t.Error("major version difference should not be compatible")
	}

	data := append(EncodeClientHello(in), 0x00)
	if _, err := DecodeClientHello(data); !errors.Is(err, ErrTrailingBytes) {
		t.Errorf("DecodeClientHello(trailing) error = %v, want ErrTrailingBytes", err)
	}
}

func TestServerHello(t *testing.T) {
	out, err := DecodeServerHello(EncodeServerHello(NewServerHello("s-1")))
	if err != nil {
		t.Fatalf("DecodeServerHello() error = %v", err)
	}
	if out.Status != HandshakeOK || out.SessionID != "s-1" {
		t.Errorf("DecodeServerHello() = %+v", out)
	}

	out, err = DecodeServerHello(EncodeServerHello(NewServerHelloError(HandshakeVersionMismatch)))
	if err != nil {
		t.Fatalf("DecodeServerHello() error = %v", err)
	}
	if out.Status.String() != "VersionMismatch" {
		t.Errorf("Status = %v", out.Status)
	}
}

func TestEvent(t *testing.T) {
	in := &Event{
		Seq:    42,
		Ack:    7,
		Kind:   EventHashChange,
		NewURL: "http://example.com/#/b",
		OldURL: "http://example.com/#/a",
		Location: Location{
			Href:     "http://example.com/#/b",
			Pathname: "/",
			Hash:     "#/b",
		},
	}
	out, err := DecodeEvent(EncodeEvent(in))
	if err != nil {
		t.Fatalf("DecodeEvent() error = %v", err)
	}
	if *out != *in {
		t.Errorf("DecodeEvent() = %+v, want %+v", out, in)
	}

	bad := EncodeEvent(&Event{Seq: 1, Kind: EventKind(9)})
	if _, err := DecodeEvent(bad); !errors.Is(err, ErrUnknownEventKind) {
		t.Errorf("DecodeEvent(kind 9) error = %v, want ErrUnknownEventKind", err)
	}
}

func TestCommand(t *testing.T) {
	tests := []Command{
		{Seq: 1, Op: OpPushState, Value: "/docs"},
		{Seq: 2, Op: OpReplaceState, Value: "/docs?x"},
		{Seq: 3, Op: OpSetHash, Value: "/a"},
		{Seq: 4, Op: OpReplaceURL, Value: "http://example.com/#/"},
		{Seq: 5, Op: OpListen, Kind: EventPopState},
	}
	for _, tt := range tests {
		t.Run(tt.Op.String(), func(t *testing.T) {
			out, err := DecodeCommand(EncodeCommand(&tt))
			if err != nil {
				t.Fatalf("DecodeCommand() error = %v", err)
			}
			if *out != tt {
				t.Errorf("DecodeCommand() = %+v, want %+v", out, tt)
			}
		})
	}

	if _, err := DecodeCommand([]byte{0x01, 0x7F}); !errors.Is(err, ErrUnknownOp) {
		t.Errorf("DecodeCommand(op 0x7F) error = %v, want ErrUnknownOp", err)
	}
}

func TestControl(t *testing.T) {
	ct, payload, err := DecodeControl(EncodeControl(NewPing(1234)))
	if err != nil {
		t.Fatalf("DecodeControl() error = %v", err)
	}
	if pp, ok := payload.(*PingPong); ct != ControlPing || !ok || pp.Timestamp != 1234 {
		t.Errorf("DecodeControl(ping) = %v, %+v", ct, payload)
	}

	ct, payload, err = DecodeControl(EncodeControl(NewClose(CloseServerShutdown, "bye")))
	if err != nil {
		t.Fatalf("DecodeControl() error = %v", err)
	}
	cm, ok := payload.(*CloseMessage)
	if ct != ControlClose || !ok || cm.Reason != CloseServerShutdown || cm.Message != "bye" {
		t.Errorf("DecodeControl(close) = %v, %+v", ct, payload)
	}

	ct, payload, err = DecodeControl([]byte{0x55})
	if err != nil || payload != nil || ct.String() != "Unknown" {
		t.Errorf("DecodeControl(unknown) = %v, %v, %v", ct, payload, err)
	}
}

func TestErrorMessage(t *testing.T) {
	in := NewFatalError(ErrNoHistory, "pushState unavailable")
	out, err := DecodeErrorMessage(EncodeErrorMessage(in))
	if err != nil {
		t.Fatalf("DecodeErrorMessage() error = %v", err)
	}
	if *out != *in {
		t.Errorf("DecodeErrorMessage() = %+v, want %+v", out, in)
	}
	if got, want := out.Error(), "fatal: NoHistory: pushState unavailable"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if got, want := NewError(ErrInvalidEvent, "x").Error(), "InvalidEvent: x"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

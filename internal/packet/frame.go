// Package packet implements frame transport (length-prefixed packets) and
// the typed packet registry for every (state, direction, id) this core
// speaks.
package packet

import (
	"bytes"
	"errors"
	"io"

	"mcserver765/internal/protocol"
)

// MaxFrameLength is the largest permitted frame length (id + payload
// bytes), 2^21 - 1, per the protocol spec.
const MaxFrameLength = 1<<21 - 1

// ErrFrameTooLarge is returned when a decoded frame length exceeds
// MaxFrameLength.
var ErrFrameTooLarge = errors.New("packet: frame too large")

// Frame is one length-prefixed packet: an id and its raw payload bytes.
// Length on the wire counts id + payload bytes, not the length prefix
// itself.
type Frame struct {
	ID      int32
	Payload []byte
}

// ReadFrame reads one frame from r. A read that fails on the very first
// byte of the length prefix (io.EOF) is reported as io.EOF so callers can
// treat it as graceful connection end rather than a protocol error.
func ReadFrame(r io.Reader) (Frame, error) {
	length, err := protocol.ReadVarInt(r)
	if err != nil {
		return Frame{}, err
	}
	if length < 0 || length > MaxFrameLength {
		return Frame{}, ErrFrameTooLarge
	}
	buf := make([]byte, length)
	if _, err := io.ReadFull(r, buf); err != nil {
		return Frame{}, err
	}
	body := bytes.NewReader(buf)
	id, err := protocol.ReadVarInt(body)
	if err != nil {
		return Frame{}, err
	}
	payload := buf[len(buf)-body.Len():]
	return Frame{ID: id, Payload: payload}, nil
}

// WriteFrame writes id and payload as a single length-prefixed frame in
// one contiguous write, so no other goroutine writing to w can tear the
// frame.
func WriteFrame(w io.Writer, id int32, payload []byte) error {
	var body bytes.Buffer
	if err := protocol.WriteVarInt(&body, id); err != nil {
		return err
	}
	body.Write(payload)

	var out bytes.Buffer
	if err := protocol.WriteVarInt(&out, int32(body.Len())); err != nil {
		return err
	}
	out.Write(body.Bytes())

	_, err := w.Write(out.Bytes())
	return err
}

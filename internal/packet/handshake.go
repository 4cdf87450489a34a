package packet

import (
	"bytes"
	"io"

	"mcserver765/internal/protocol"
)

// Handshake is the single Handshaking-state serverbound packet: it both
// announces the client's protocol version and selects the next state
// (Status=1 or Login=2).
type Handshake struct {
	ProtocolVersion int32
	ServerAddress   string
	ServerPort      uint16
	NextState       int32
}

// DecodeHandshake reads a Handshake payload.
func DecodeHandshake(payload []byte) (Handshake, error) {
	r := bytes.NewReader(payload)
	var h Handshake
	var err error
	if h.ProtocolVersion, err = protocol.ReadVarInt(r); err != nil {
		return h, err
	}
	if h.ServerAddress, err = protocol.ReadString(r); err != nil {
		return h, err
	}
	port, err := protocol.ReadUShort(r)
	if err != nil {
		return h, err
	}
	h.ServerPort = port
	if h.NextState, err = protocol.ReadVarInt(r); err != nil {
		return h, err
	}
	return h, nil
}

// Encode writes a Handshake payload (used only by tests/clients).
func (h Handshake) Encode(w io.Writer) error {
	if err := protocol.WriteVarInt(w, h.ProtocolVersion); err != nil {
		return err
	}
	if err := protocol.WriteString(w, h.ServerAddress); err != nil {
		return err
	}
	if err := protocol.WriteUShort(w, h.ServerPort); err != nil {
		return err
	}
	return protocol.WriteVarInt(w, h.NextState)
}

package packet

import (
	"bytes"
	"io"

	"github.com/google/uuid"

	"mcserver765/internal/protocol"
)

// LoginStart is the Login-state serverbound packet announcing the
// player's chosen username and (in online mode) their Mojang UUID. In
// offline mode the UUID field is present on the wire but ignored; the
// server derives its own deterministic UUID instead (see
// session.OfflineUUID).
type LoginStart struct {
	Username string
	UUID     uuid.UUID
}

// DecodeLoginStart reads a LoginStart payload.
func DecodeLoginStart(payload []byte) (LoginStart, error) {
	r := bytes.NewReader(payload)
	var l LoginStart
	var err error
	if l.Username, err = protocol.ReadString(r); err != nil {
		return l, err
	}
	l.UUID, err = protocol.ReadUUID(r)
	return l, err
}

// Encode writes a LoginStart payload.
func (l LoginStart) Encode(w io.Writer) error {
	if err := protocol.WriteString(w, l.Username); err != nil {
		return err
	}
	return protocol.WriteUUID(w, l.UUID)
}

// LoginAcknowledged is the empty serverbound packet that moves the
// connection from Login into the Configuration sub-state.
type LoginAcknowledged struct{}

// DecodeLoginAcknowledged reads an (empty) LoginAcknowledged payload; any
// payload bytes are ignored.
func DecodeLoginAcknowledged(payload []byte) (LoginAcknowledged, error) {
	return LoginAcknowledged{}, nil
}

// LoginSuccess is the Login-state clientbound packet completing the
// handshake with the player's (offline or online) identity.
type LoginSuccess struct {
	UUID       uuid.UUID
	Username   string
	Properties []protocol.Property
}

// Encode writes a LoginSuccess payload.
func (l LoginSuccess) Encode(w io.Writer) error {
	if err := protocol.WriteUUID(w, l.UUID); err != nil {
		return err
	}
	if err := protocol.WriteString(w, l.Username); err != nil {
		return err
	}
	return protocol.WriteSequence(w, l.Properties, protocol.WriteProperty)
}

// LoginDisconnect is the Login-state clientbound packet used to reject a
// connection (e.g. an invalid username) before it reaches Play.
type LoginDisconnect struct {
	ReasonJSON string
}

// Encode writes a LoginDisconnect payload.
func (l LoginDisconnect) Encode(w io.Writer) error {
	return protocol.WriteString(w, l.ReasonJSON)
}

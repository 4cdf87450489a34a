package packet

import (
	"bytes"
	"io"

	"mcserver765/internal/protocol"
)

// ClientInformation is the Configuration-state serverbound packet
// reporting client-side display and locale settings. This core decodes it
// but neither stores it nor acts on any field.
type ClientInformation struct {
	Locale             string
	ViewDistance       int8
	ChatMode           int32
	ChatColors         bool
	SkinParts          uint8
	MainHand           int32
	EnableTextFilter   bool
	AllowServerListing bool
}

// DecodeClientInformation reads a ClientInformation payload.
func DecodeClientInformation(payload []byte) (ClientInformation, error) {
	r := bytes.NewReader(payload)
	var c ClientInformation
	var err error
	if c.Locale, err = protocol.ReadString(r); err != nil {
		return c, err
	}
	if c.ViewDistance, err = protocol.ReadByte(r); err != nil {
		return c, err
	}
	if c.ChatMode, err = protocol.ReadVarInt(r); err != nil {
		return c, err
	}
	if c.ChatColors, err = protocol.ReadBool(r); err != nil {
		return c, err
	}
	if c.SkinParts, err = protocol.ReadUByte(r); err != nil {
		return c, err
	}
	if c.MainHand, err = protocol.ReadVarInt(r); err != nil {
		return c, err
	}
	if c.EnableTextFilter, err = protocol.ReadBool(r); err != nil {
		return c, err
	}
	if c.AllowServerListing, err = protocol.ReadBool(r); err != nil {
		return c, err
	}
	return c, nil
}

// PluginMessage carries an arbitrary, channel-addressed payload. Its
// length has no prefix of its own: whatever bytes remain in the frame
// payload after the channel identifier belong to Data.
type PluginMessage struct {
	Channel protocol.Identifier
	Data    []byte
}

// DecodePluginMessage reads a PluginMessage payload.
func DecodePluginMessage(payload []byte) (PluginMessage, error) {
	r := bytes.NewReader(payload)
	channel, err := protocol.ReadIdentifier(r)
	if err != nil {
		return PluginMessage{}, err
	}
	data := make([]byte, r.Len())
	if _, err := r.Read(data); err != nil && len(data) > 0 {
		return PluginMessage{}, err
	}
	return PluginMessage{Channel: channel, Data: data}, nil
}

// Encode writes a PluginMessage payload.
func (p PluginMessage) Encode(w io.Writer) error {
	if err := protocol.WriteIdentifier(w, p.Channel); err != nil {
		return err
	}
	_, err := w.Write(p.Data)
	return err
}

// FinishConfiguration is empty in both directions: serverbound it asks to
// move to Play, clientbound it signals the server is done sending
// configuration data.
type FinishConfiguration struct{}

// DecodeFinishConfiguration reads an (empty) FinishConfiguration payload;
// any payload bytes are ignored.
func DecodeFinishConfiguration(payload []byte) (FinishConfiguration, error) {
	return FinishConfiguration{}, nil
}

// Encode writes an (empty) FinishConfiguration payload.
func (FinishConfiguration) Encode(w io.Writer) error { return nil }

// RegistryData is the Configuration-state clientbound packet carrying the
// dimension/registry codec. Codec is the raw named-NBT document bytes read
// from disk, forwarded byte-for-byte: re-parsing and re-encoding it would
// require guessing a root name the wire format doesn't actually carry.
type RegistryData struct {
	Codec []byte
}

// Encode writes a RegistryData payload: the opaque codec bytes, verbatim.
func (r RegistryData) Encode(w io.Writer) error {
	_, err := w.Write(r.Codec)
	return err
}

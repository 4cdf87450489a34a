package packet

import (
	"bytes"
	"encoding/json"
	"io"

	"mcserver765/internal/protocol"
)

// StatusVersion is the version object inside a StatusResponse.
type StatusVersion struct {
	Name     string `json:"name"`
	Protocol int32  `json:"protocol"`
}

// StatusPlayerSample is one entry of the players.sample array.
type StatusPlayerSample struct {
	Name string `json:"name"`
	ID   string `json:"id"`
}

// StatusPlayers is the players object inside a StatusResponse.
type StatusPlayers struct {
	Max    int                  `json:"max"`
	Online int                  `json:"online"`
	Sample []StatusPlayerSample `json:"sample,omitempty"`
}

// StatusDescription is the MOTD chat component, flattened to its text
// field (this core never emits formatted MOTDs).
type StatusDescription struct {
	Text string `json:"text"`
}

// StatusResponsePayload is the JSON body of a StatusResponse packet.
type StatusResponsePayload struct {
	Version           StatusVersion     `json:"version"`
	Players           StatusPlayers     `json:"players"`
	Description       StatusDescription `json:"description"`
	EnforcesSecureChat bool             `json:"enforcesSecureChat"`
	PreviewsChat       bool             `json:"previewsChat"`
	Favicon           string            `json:"favicon,omitempty"`
}

// StatusResponse is the Status-state clientbound packet carrying the
// server-list ping JSON payload.
type StatusResponse struct {
	JSON StatusResponsePayload
}

// Encode marshals the JSON payload and writes it as a length-prefixed
// string.
func (s StatusResponse) Encode(w io.Writer) error {
	body, err := json.Marshal(s.JSON)
	if err != nil {
		return err
	}
	return protocol.WriteString(w, string(body))
}

// DecodeStatusResponse parses a StatusResponse payload (used by tests
// simulating a client).
func DecodeStatusResponse(payload []byte) (StatusResponse, error) {
	s, err := protocol.ReadString(bytes.NewReader(payload))
	if err != nil {
		return StatusResponse{}, err
	}
	var out StatusResponsePayload
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		return StatusResponse{}, err
	}
	return StatusResponse{JSON: out}, nil
}

// Ping is the Status-state serverbound packet carrying an opaque nonce
// the server must echo back unchanged.
type Ping struct {
	Payload int64
}

// DecodePing reads a Ping payload.
func DecodePing(payload []byte) (Ping, error) {
	v, err := protocol.ReadLong(bytes.NewReader(payload))
	return Ping{Payload: v}, err
}

// Pong is the Status-state clientbound echo of Ping.
type Pong struct {
	Payload int64
}

// Encode writes a Pong payload.
func (p Pong) Encode(w io.Writer) error {
	return protocol.WriteLong(w, p.Payload)
}

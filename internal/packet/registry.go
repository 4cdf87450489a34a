package packet

import (
	"bytes"
	"errors"
	"fmt"
	"io"
)

// ErrUnknownPlayPacket is the sentinel Decode wraps when a Play-state frame
// carries an id this core doesn't recognize. Unlike every other state,
// Play-state unknown ids are not terminal: the caller logs and discards
// the frame instead of ending the connection.
var ErrUnknownPlayPacket = errors.New("packet: unknown play id")

// Encodable is any clientbound packet value with a wire encoder.
type Encodable interface {
	Encode(w io.Writer) error
}

// WritePacket encodes v and frames it under the id IDFor reports for its
// concrete type.
func WritePacket(w io.Writer, v Encodable) error {
	id, err := IDFor(v)
	if err != nil {
		return err
	}
	var body bytes.Buffer
	if err := v.Encode(&body); err != nil {
		return err
	}
	return WriteFrame(w, id, body.Bytes())
}

// Serverbound is the tagged union of every serverbound packet this core
// decodes. Exactly one field is set after a successful Decode: non-nil, or
// true for StatusRequest.
type Serverbound struct {
	Handshake             *Handshake
	StatusRequest         bool
	Ping                  *Ping
	LoginStart            *LoginStart
	LoginAcknowledged     *LoginAcknowledged
	ClientInformation     *ClientInformation
	PluginMessage         *PluginMessage
	FinishConfiguration   *FinishConfiguration
	KeepAliveResponse     *KeepAliveResponse
	PlayerPosition        *PlayerPosition
	PlayerPositionRotate  *PlayerPositionRotation
	PlayerRotation        *PlayerRotation
	ChatMessage           *ChatMessage
}

// Decode dispatches a frame's id to the typed packet it represents in the
// given state, per the §4.C registry table. In every pre-Play state an
// unrecognized id is a terminal protocol error. In Play it is not: Decode
// reports it wrapping ErrUnknownPlayPacket, which callers are expected to
// log and discard rather than treat as connection-ending.
func Decode(state State, f Frame) (Serverbound, error) {
	var out Serverbound
	switch state {
	case StateHandshaking:
		if f.ID != IDHandshake {
			return out, fmt.Errorf("packet: unknown handshaking id %#x", f.ID)
		}
		h, err := DecodeHandshake(f.Payload)
		if err != nil {
			return out, err
		}
		out.Handshake = &h

	case StateStatus:
		switch f.ID {
		case IDStatusRequest:
			out.StatusRequest = true
		case IDPing:
			p, err := DecodePing(f.Payload)
			if err != nil {
				return out, err
			}
			out.Ping = &p
		default:
			return out, fmt.Errorf("packet: unknown status id %#x", f.ID)
		}

	case StateLogin:
		switch f.ID {
		case IDLoginStart:
			l, err := DecodeLoginStart(f.Payload)
			if err != nil {
				return out, err
			}
			out.LoginStart = &l
		case IDLoginAcknowledged:
			l, err := DecodeLoginAcknowledged(f.Payload)
			if err != nil {
				return out, err
			}
			out.LoginAcknowledged = &l
		default:
			return out, fmt.Errorf("packet: unknown login id %#x", f.ID)
		}

	case StateConfiguration:
		switch f.ID {
		case IDClientInformation:
			c, err := DecodeClientInformation(f.Payload)
			if err != nil {
				return out, err
			}
			out.ClientInformation = &c
		case IDPluginMessageServer:
			m, err := DecodePluginMessage(f.Payload)
			if err != nil {
				return out, err
			}
			out.PluginMessage = &m
		case IDFinishConfiguration:
			fc, err := DecodeFinishConfiguration(f.Payload)
			if err != nil {
				return out, err
			}
			out.FinishConfiguration = &fc
		default:
			return out, fmt.Errorf("packet: unknown configuration id %#x", f.ID)
		}

	case StatePlay:
		switch f.ID {
		case IDKeepAliveResponse:
			k, err := DecodeKeepAliveResponse(f.Payload)
			if err != nil {
				return out, err
			}
			out.KeepAliveResponse = &k
		case IDPlayerPosition:
			p, err := DecodePlayerPosition(f.Payload)
			if err != nil {
				return out, err
			}
			out.PlayerPosition = &p
		case IDPlayerPositionRotate:
			p, err := DecodePlayerPositionRotation(f.Payload)
			if err != nil {
				return out, err
			}
			out.PlayerPositionRotate = &p
		case IDPlayerRotation:
			p, err := DecodePlayerRotation(f.Payload)
			if err != nil {
				return out, err
			}
			out.PlayerRotation = &p
		case IDChatMessage:
			c, err := DecodeChatMessage(f.Payload)
			if err != nil {
				return out, err
			}
			out.ChatMessage = &c
		default:
			return out, fmt.Errorf("%w %#x", ErrUnknownPlayPacket, f.ID)
		}

	default:
		return out, fmt.Errorf("packet: unknown state %v", state)
	}
	return out, nil
}

// IDFor returns the packet id to frame an outgoing value under, given its
// concrete Go type. Centralizing this avoids scattering literal ids across
// the connection runtime.
func IDFor(v any) (int32, error) {
	switch v.(type) {
	case StatusResponse:
		return IDStatusResponse, nil
	case Pong:
		return IDPong, nil
	case LoginDisconnect:
		return IDLoginDisconnect, nil
	case LoginSuccess:
		return IDLoginSuccess, nil
	case RegistryData:
		return IDRegistryData, nil
	case FinishConfiguration:
		return IDFinishConfigurationClientbound, nil
	case DisconnectPlay:
		return IDDisconnectPlay, nil
	case GameEvent:
		return IDGameEvent, nil
	case KeepAlive:
		return IDKeepAlive, nil
	case ChunkDataUpdateLight:
		return IDChunkDataUpdateLight, nil
	case PlayLogin:
		return IDPlayLogin, nil
	case SynchronizePlayerPosition:
		return IDSynchronizePlayerPosition, nil
	case SetDefaultSpawnPosition:
		return IDSetDefaultSpawnPosition, nil
	default:
		return 0, fmt.Errorf("packet: no id registered for %T", v)
	}
}

// Package session implements the per-connection protocol state machine:
// Handshaking -> Status or Login -> Configuration -> Play, and the
// Configuration/Playing sub-state that accompanies the last two.
package session

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"mcserver765/internal/packet"
)

// offlineNamespace is the fixed namespace UUID the vanilla server uses to
// derive offline-mode player UUIDs: a name-based (v3) UUID over
// "OfflinePlayer:<username>".
var offlineNamespace = uuid.NameSpaceURL

// OfflineUUID derives the deterministic UUID assigned to a player when the
// server runs without Mojang authentication.
func OfflineUUID(username string) uuid.UUID {
	return uuid.NewMD5(offlineNamespace, []byte("OfflinePlayer:"+username))
}

// ErrUnexpectedState is returned when a packet is decoded in a state that
// does not accept it.
var ErrUnexpectedState = errors.New("session: packet not valid in current state")

// ErrUnexpectedSubState is returned when a Play-state packet is decoded
// during the wrong sub-state (Configuration vs Playing).
var ErrUnexpectedSubState = errors.New("session: packet not valid in current play sub-state")

// IngameSubState distinguishes the configuration phase (set on entering
// the Configuration state) from actual gameplay (set on entering Play).
// Play is never re-entered in the configuration sub-state.
type IngameSubState int

const (
	SubStateNone IngameSubState = iota
	SubStateConfiguration
	SubStatePlaying
)

// FSM tracks one connection's position in the protocol state machine. It
// holds no I/O; its Apply methods only validate and advance state given
// the result of decoding a frame elsewhere.
type FSM struct {
	state    packet.State
	subState IngameSubState
	intent   int32
}

// NewFSM returns an FSM positioned at Handshaking.
func NewFSM() *FSM {
	return &FSM{state: packet.StateHandshaking}
}

// State returns the current protocol state.
func (f *FSM) State() packet.State { return f.state }

// SubState returns the current Play sub-state (meaningless outside Play).
func (f *FSM) SubState() IngameSubState { return f.subState }

// ApplyHandshake transitions out of Handshaking per the client's requested
// next_state (1 = Status, 2 = Login). Any other value is rejected.
func (f *FSM) ApplyHandshake(h packet.Handshake) error {
	if f.state != packet.StateHandshaking {
		return ErrUnexpectedState
	}
	f.intent = h.NextState
	switch h.NextState {
	case 1:
		f.state = packet.StateStatus
	case 2:
		f.state = packet.StateLogin
	default:
		return fmt.Errorf("session: invalid handshake next_state %d", h.NextState)
	}
	return nil
}

// ApplyLoginAcknowledged transitions Login -> Configuration.
func (f *FSM) ApplyLoginAcknowledged() error {
	if f.state != packet.StateLogin {
		return ErrUnexpectedState
	}
	f.state = packet.StateConfiguration
	f.subState = SubStateConfiguration
	return nil
}

// ApplyFinishConfiguration transitions Configuration -> Play.
func (f *FSM) ApplyFinishConfiguration() error {
	if f.state != packet.StateConfiguration {
		return ErrUnexpectedState
	}
	f.state = packet.StatePlay
	f.subState = SubStatePlaying
	return nil
}

// RequireState returns ErrUnexpectedState unless the FSM is currently in
// want.
func (f *FSM) RequireState(want packet.State) error {
	if f.state != want {
		return ErrUnexpectedState
	}
	return nil
}

// RequirePlaying returns ErrUnexpectedSubState unless the FSM is in Play
// and past the configuration sub-state.
func (f *FSM) RequirePlaying() error {
	if err := f.RequireState(packet.StatePlay); err != nil {
		return err
	}
	if f.subState != SubStatePlaying {
		return ErrUnexpectedSubState
	}
	return nil
}

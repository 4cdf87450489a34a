package session

import (
	"errors"
	"testing"

	"mcserver765/internal/packet"
)

func TestOfflineUUIDDeterministic(t *testing.T) {
	a := OfflineUUID("Notch")
	b := OfflineUUID("Notch")
	if a != b {
		t.Fatalf("OfflineUUID not deterministic: %v != %v", a, b)
	}
	if OfflineUUID("Notch") == OfflineUUID("jeb_") {
		t.Fatal("different usernames produced the same UUID")
	}
	if a.Version() != 3 {
		t.Fatalf("expected UUID version 3, got %d", a.Version())
	}
}

func TestFSMStatusPath(t *testing.T) {
	f := NewFSM()
	if err := f.ApplyHandshake(packet.Handshake{NextState: 1}); err != nil {
		t.Fatalf("ApplyHandshake: %v", err)
	}
	if f.State() != packet.StateStatus {
		t.Fatalf("expected Status, got %v", f.State())
	}
}

func TestFSMLoginToPlayPath(t *testing.T) {
	f := NewFSM()
	if err := f.ApplyHandshake(packet.Handshake{NextState: 2}); err != nil {
		t.Fatalf("ApplyHandshake: %v", err)
	}
	if f.State() != packet.StateLogin {
		t.Fatalf("expected Login, got %v", f.State())
	}
	if err := f.ApplyLoginAcknowledged(); err != nil {
		t.Fatalf("ApplyLoginAcknowledged: %v", err)
	}
	if f.State() != packet.StateConfiguration {
		t.Fatalf("expected Configuration, got %v", f.State())
	}
	if err := f.ApplyFinishConfiguration(); err != nil {
		t.Fatalf("ApplyFinishConfiguration: %v", err)
	}
	if err := f.RequirePlaying(); err != nil {
		t.Fatalf("RequirePlaying: %v", err)
	}
	if err := f.ApplyFinishConfiguration(); !errors.Is(err, ErrUnexpectedState) {
		t.Fatalf("expected ErrUnexpectedState re-applying from Play, got %v", err)
	}
}

func TestFSMRejectsOutOfOrderPackets(t *testing.T) {
	f := NewFSM()
	if err := f.ApplyLoginAcknowledged(); !errors.Is(err, ErrUnexpectedState) {
		t.Fatalf("expected ErrUnexpectedState, got %v", err)
	}
}

func TestFSMRejectsInvalidHandshakeIntent(t *testing.T) {
	f := NewFSM()
	if err := f.ApplyHandshake(packet.Handshake{NextState: 99}); err == nil {
		t.Fatal("expected error for invalid next_state")
	}
}

func TestRosterAddGetRemove(t *testing.T) {
	r := NewRoster()
	p := NewPlayer(OfflineUUID("Steve"), "Steve", 1)
	r.Add(p)
	if r.Len() != 1 {
		t.Fatalf("expected 1 player, got %d", r.Len())
	}
	got, ok := r.Get(p.UUID)
	if !ok || got != p {
		t.Fatal("Get did not return the added player")
	}
	r.Remove(p.UUID)
	if r.Len() != 0 {
		t.Fatalf("expected 0 players after remove, got %d", r.Len())
	}
}

func TestPlayerPositionTracking(t *testing.T) {
	p := NewPlayer(OfflineUUID("Alex"), "Alex", 2)
	p.SetPositionAndRotation(1, 64, -3, 90, 0, true)
	x, y, z, yaw, pitch, onGround := p.Position()
	if x != 1 || y != 64 || z != -3 || yaw != 90 || pitch != 0 || !onGround {
		t.Fatalf("unexpected position state: %v %v %v %v %v %v", x, y, z, yaw, pitch, onGround)
	}
}

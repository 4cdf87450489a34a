package conn

import (
	"bytes"
	"context"
	"net"
	"testing"
	"time"

	"github.com/google/uuid"

	"mcserver765/internal/nbt"
	"mcserver765/internal/packet"
	"mcserver765/internal/protocol"
	"mcserver765/internal/session"
	"mcserver765/internal/worldprovider"
)

type fakeWorld struct{}

func (fakeWorld) RegistryCodec() ([]byte, error) {
	var buf bytes.Buffer
	doc := nbt.Document{Root: map[string]nbt.Tag{"minecraft:dimension_type": nbt.Compound(nil)}}
	// The real on-disk codec is a named document; RegistryCodec forwards
	// it byte-for-byte rather than decoding/re-encoding, so building the
	// fixture with the named flavor here is what actually exercises that.
	if err := nbt.Encode(&buf, doc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (fakeWorld) EmptyChunk(x, z int32) worldprovider.ChunkPayload {
	return worldprovider.ChunkPayload{}
}

func testOptions() Options {
	return Options{
		ProtocolVersion: 765,
		VersionName:     "1.20.4",
		Motd:            "test server",
		MaxPlayers:      20,
		DimensionName:   "minecraft:overworld",
		KeepAliveEvery:  1 * time.Hour, // effectively disabled for scenarios not exercising it
		KeepAliveMisses: 2,
		World:           fakeWorld{},
		Roster:          session.NewRoster(),
		NextEntityID:    func() int32 { return 1 },
	}
}

func readOnePacket(t *testing.T, r net.Conn) packet.Frame {
	t.Helper()
	f, err := packet.ReadFrame(r)
	if err != nil {
		t.Fatalf("ReadFrame: %v", err)
	}
	return f
}

// assertPacketIDs reads len(ids) packets off r and fails the test unless
// each arrives in ids' order.
func assertPacketIDs(t *testing.T, r net.Conn, ids ...int32) {
	t.Helper()
	for _, want := range ids {
		f := readOnePacket(t, r)
		if f.ID != want {
			t.Fatalf("expected packet id %#x, got %#x", want, f.ID)
		}
	}
}

func encodeLong(v int64) []byte {
	var buf bytes.Buffer
	for i := 7; i >= 0; i-- {
		buf.WriteByte(byte(v >> (8 * uint(i))))
	}
	return buf.Bytes()
}

func TestServerListPingScenario(t *testing.T) {
	client, srv := net.Pipe()
	defer client.Close()
	c := New(srv, testOptions())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- c.Serve(ctx) }()

	var hs bytes.Buffer
	if err := (packet.Handshake{ProtocolVersion: 765, ServerAddress: "localhost", ServerPort: 25565, NextState: 1}).Encode(&hs); err != nil {
		t.Fatal(err)
	}
	if err := packet.WriteFrame(client, packet.IDHandshake, hs.Bytes()); err != nil {
		t.Fatal(err)
	}
	if err := packet.WriteFrame(client, packet.IDStatusRequest, nil); err != nil {
		t.Fatal(err)
	}

	f := readOnePacket(t, client)
	if f.ID != packet.IDStatusResponse {
		t.Fatalf("expected status response id %#x, got %#x", packet.IDStatusResponse, f.ID)
	}
	resp, err := packet.DecodeStatusResponse(f.Payload)
	if err != nil {
		t.Fatal(err)
	}
	if resp.JSON.Version.Protocol != 765 {
		t.Fatalf("expected protocol 765, got %d", resp.JSON.Version.Protocol)
	}

	if err := packet.WriteFrame(client, packet.IDPing, encodeLong(7)); err != nil {
		t.Fatal(err)
	}
	f = readOnePacket(t, client)
	if f.ID != packet.IDPong {
		t.Fatalf("expected pong id %#x, got %#x", packet.IDPong, f.ID)
	}

	cancel()
	client.Close()
	<-done
}

func TestOfflineLoginAndConfigurationHandoffScenario(t *testing.T) {
	client, srv := net.Pipe()
	defer client.Close()
	c := New(srv, testOptions())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- c.Serve(ctx) }()

	var hs bytes.Buffer
	if err := (packet.Handshake{ProtocolVersion: 765, ServerAddress: "localhost", ServerPort: 25565, NextState: 2}).Encode(&hs); err != nil {
		t.Fatal(err)
	}
	if err := packet.WriteFrame(client, packet.IDHandshake, hs.Bytes()); err != nil {
		t.Fatal(err)
	}

	var ls bytes.Buffer
	if err := (packet.LoginStart{Username: "Alice"}).Encode(&ls); err != nil {
		t.Fatal(err)
	}
	if err := packet.WriteFrame(client, packet.IDLoginStart, ls.Bytes()); err != nil {
		t.Fatal(err)
	}

	f := readOnePacket(t, client)
	if f.ID != packet.IDLoginSuccess {
		t.Fatalf("expected login success id %#x, got %#x", packet.IDLoginSuccess, f.ID)
	}

	expected := session.OfflineUUID("Alice")
	var got uuid.UUID
	copy(got[:], f.Payload[:16])
	if got != expected {
		t.Fatalf("expected offline uuid %v, got %v", expected, got)
	}

	if err := packet.WriteFrame(client, packet.IDLoginAcknowledged, nil); err != nil {
		t.Fatal(err)
	}

	f = readOnePacket(t, client)
	if f.ID != packet.IDRegistryData {
		t.Fatalf("expected registry data id %#x, got %#x", packet.IDRegistryData, f.ID)
	}
	f = readOnePacket(t, client)
	if f.ID != packet.IDFinishConfigurationClientbound {
		t.Fatalf("expected finish configuration id %#x, got %#x", packet.IDFinishConfigurationClientbound, f.ID)
	}

	if err := packet.WriteFrame(client, packet.IDFinishConfiguration, nil); err != nil {
		t.Fatal(err)
	}
	f = readOnePacket(t, client)
	if f.ID != packet.IDPlayLogin {
		t.Fatalf("expected play login id %#x, got %#x", packet.IDPlayLogin, f.ID)
	}

	cancel()
	client.Close()
	<-done
}

func TestKeepAliveEchoScenario(t *testing.T) {
	client, srv := net.Pipe()
	defer client.Close()
	opts := testOptions()
	opts.KeepAliveEvery = 40 * time.Millisecond
	opts.KeepAliveMisses = 3
	c := New(srv, opts)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- c.Serve(ctx) }()

	// Drive the connection straight to Play so the keep-alive loop is
	// actively ticking.
	var hs bytes.Buffer
	(packet.Handshake{NextState: 2}).Encode(&hs)
	packet.WriteFrame(client, packet.IDHandshake, hs.Bytes())
	var ls bytes.Buffer
	(packet.LoginStart{Username: "Bob"}).Encode(&ls)
	packet.WriteFrame(client, packet.IDLoginStart, ls.Bytes())
	readOnePacket(t, client) // LoginSuccess
	packet.WriteFrame(client, packet.IDLoginAcknowledged, nil)
	readOnePacket(t, client) // RegistryData
	readOnePacket(t, client) // FinishConfiguration
	packet.WriteFrame(client, packet.IDFinishConfiguration, nil)
	assertPacketIDs(t, client,
		packet.IDPlayLogin,
		packet.IDChunkDataUpdateLight,
		packet.IDSynchronizePlayerPosition,
		packet.IDGameEvent,
		packet.IDSetDefaultSpawnPosition,
	)

	f := readOnePacket(t, client)
	if f.ID != packet.IDKeepAlive {
		t.Fatalf("expected keep-alive id %#x, got %#x", packet.IDKeepAlive, f.ID)
	}
	if err := packet.WriteFrame(client, packet.IDKeepAliveResponse, f.Payload); err != nil {
		t.Fatal(err)
	}

	// The connection should survive past one more keep-alive interval
	// since the response was echoed back in time.
	time.Sleep(120 * time.Millisecond)
	select {
	case err := <-done:
		t.Fatalf("connection ended unexpectedly: %v", err)
	default:
	}

	cancel()
	client.Close()
	<-done
}

func TestChatMessageDisconnectStubScenario(t *testing.T) {
	client, srv := net.Pipe()
	defer client.Close()
	c := New(srv, testOptions())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- c.Serve(ctx) }()

	var hs bytes.Buffer
	(packet.Handshake{NextState: 2}).Encode(&hs)
	packet.WriteFrame(client, packet.IDHandshake, hs.Bytes())
	var ls bytes.Buffer
	(packet.LoginStart{Username: "Carol"}).Encode(&ls)
	packet.WriteFrame(client, packet.IDLoginStart, ls.Bytes())
	readOnePacket(t, client) // LoginSuccess
	packet.WriteFrame(client, packet.IDLoginAcknowledged, nil)
	readOnePacket(t, client) // RegistryData
	readOnePacket(t, client) // FinishConfiguration
	packet.WriteFrame(client, packet.IDFinishConfiguration, nil)
	assertPacketIDs(t, client,
		packet.IDPlayLogin,
		packet.IDChunkDataUpdateLight,
		packet.IDSynchronizePlayerPosition,
		packet.IDGameEvent,
		packet.IDSetDefaultSpawnPosition,
	)

	var payload bytes.Buffer
	if err := protocol.WriteString(&payload, "hello"); err != nil {
		t.Fatal(err)
	}
	if err := packet.WriteFrame(client, packet.IDChatMessage, payload.Bytes()); err != nil {
		t.Fatal(err)
	}

	for i := 0; i < chatEchoRepeat; i++ {
		f, err := packet.ReadFrame(client)
		if err != nil {
			t.Fatalf("ReadFrame (packet %d): %v", i, err)
		}
		if f.ID != packet.IDDisconnectPlay {
			t.Fatalf("expected disconnect id %#x, got %#x", packet.IDDisconnectPlay, f.ID)
		}
	}

	client.Close()
	<-done
}

func TestUnknownPlayPacketIsDiscardedNotFatal(t *testing.T) {
	client, srv := net.Pipe()
	defer client.Close()
	c := New(srv, testOptions())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- c.Serve(ctx) }()

	var hs bytes.Buffer
	(packet.Handshake{NextState: 2}).Encode(&hs)
	packet.WriteFrame(client, packet.IDHandshake, hs.Bytes())
	var ls bytes.Buffer
	(packet.LoginStart{Username: "Dana"}).Encode(&ls)
	packet.WriteFrame(client, packet.IDLoginStart, ls.Bytes())
	readOnePacket(t, client) // LoginSuccess
	packet.WriteFrame(client, packet.IDLoginAcknowledged, nil)
	readOnePacket(t, client) // RegistryData
	readOnePacket(t, client) // FinishConfiguration
	packet.WriteFrame(client, packet.IDFinishConfiguration, nil)
	assertPacketIDs(t, client,
		packet.IDPlayLogin,
		packet.IDChunkDataUpdateLight,
		packet.IDSynchronizePlayerPosition,
		packet.IDGameEvent,
		packet.IDSetDefaultSpawnPosition,
	)

	if err := packet.WriteFrame(client, 0x7F, nil); err != nil {
		t.Fatal(err)
	}

	// The connection must survive the unrecognized id; the reader accepting
	// a subsequent PlayerRotation frame proves it is still running.
	if err := packet.WriteFrame(client, packet.IDPlayerRotation, make([]byte, 9)); err != nil {
		t.Fatal(err)
	}

	select {
	case err := <-done:
		t.Fatalf("connection ended unexpectedly on an unknown play id: %v", err)
	default:
	}

	cancel()
	client.Close()
	<-done
}

func TestMalformedVarIntScenario(t *testing.T) {
	client, srv := net.Pipe()
	defer client.Close()
	c := New(srv, testOptions())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- c.Serve(ctx) }()

	// Six continuation bytes is one byte longer than any valid VarInt;
	// the length read must fail instead of hanging indefinitely.
	go client.Write([]byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF})

	err := <-done
	if err == nil {
		t.Fatal("expected the connection to end with an error on a malformed VarInt")
	}
	cancel()
	client.Close()
}

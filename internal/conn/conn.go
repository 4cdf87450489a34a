// Package conn runs one client connection: a reader task that decodes and
// dispatches frames, a writer task that drains an outbound queue, and a
// keep-alive task that probes liveness, all joined under one
// errgroup-managed, per-connection context.
package conn

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"time"

	"github.com/bits-and-blooms/bitset"
	"golang.org/x/sync/errgroup"

	"mcserver765/internal/nbt"
	"mcserver765/internal/packet"
	"mcserver765/internal/session"
	"mcserver765/internal/worldprovider"
)

// sendQueueCapacity bounds the outbound packet channel; a slow client
// backs up here rather than blocking the handlers that enqueue writes.
const sendQueueCapacity = 1024

// chatEchoRepeat is the number of Disconnect packets this core's chat stub
// sends back before the connection ends. Chat handling is not a feature
// this core implements: ChatMessage is acknowledged with a recognizable,
// bounded disconnect loop rather than left unhandled.
const chatEchoRepeat = 50

// writeDrainTimeout bounds how long closeWithDrain waits for queued writes to
// flush before it gives up and closes the socket anyway.
const writeDrainTimeout = 250 * time.Millisecond

// Options configures a Connection's static, per-server dependencies.
type Options struct {
	ProtocolVersion int32
	VersionName     string
	Motd            string
	MaxPlayers      int
	DimensionName   string
	KeepAliveEvery  time.Duration
	KeepAliveMisses int
	World           worldprovider.Provider
	Roster          *session.Roster
	NextEntityID    func() int32
}

// Connection drives one client's protocol state through its lifetime.
type Connection struct {
	netConn net.Conn
	opts    Options
	fsm     *session.FSM
	send    chan packet.Encodable

	player     *session.Player
	lastPongAt time.Time
	pendingKeepAlive int64
}

// New wraps an accepted net.Conn.
func New(netConn net.Conn, opts Options) *Connection {
	return &Connection{
		netConn: netConn,
		opts:    opts,
		fsm:     session.NewFSM(),
		send:    make(chan packet.Encodable, sendQueueCapacity),
	}
}

// Serve runs the connection to completion: it blocks until the client
// disconnects, a protocol error occurs, or ctx is canceled.
func (c *Connection) Serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return c.readLoop(ctx, cancel) })
	g.Go(func() error { return c.writeLoop(ctx) })
	g.Go(func() error { return c.keepAliveLoop(ctx) })

	err := g.Wait()
	c.closeWithDrain()
	if c.player != nil {
		c.opts.Roster.Remove(c.player.UUID)
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func (c *Connection) closeWithDrain() {
	deadline := time.Now().Add(writeDrainTimeout)
	for {
		select {
		case pkt, ok := <-c.send:
			if !ok {
				c.netConn.Close()
				return
			}
			if time.Now().After(deadline) {
				c.netConn.Close()
				return
			}
			_ = packet.WritePacket(c.netConn, pkt)
		default:
			c.netConn.Close()
			return
		}
	}
}

func (c *Connection) enqueue(ctx context.Context, pkt packet.Encodable) error {
	select {
	case c.send <- pkt:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Connection) writeLoop(ctx context.Context) error {
	for {
		select {
		case pkt := <-c.send:
			if err := packet.WritePacket(c.netConn, pkt); err != nil {
				return fmt.Errorf("conn: write: %w", err)
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (c *Connection) keepAliveLoop(ctx context.Context) error {
	ticker := time.NewTicker(c.opts.KeepAliveEvery)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if c.fsm.State() != packet.StatePlay || c.fsm.SubState() != session.SubStatePlaying {
				continue
			}
			if time.Since(c.lastPongAt) > time.Duration(c.opts.KeepAliveMisses)*c.opts.KeepAliveEvery {
				return fmt.Errorf("conn: keep-alive timeout")
			}
			c.pendingKeepAlive = time.Now().UnixNano()
			if err := c.enqueue(ctx, packet.KeepAlive{Nonce: c.pendingKeepAlive}); err != nil {
				return err
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (c *Connection) readLoop(ctx context.Context, cancel context.CancelFunc) error {
	// The reader's exit, for any reason, ends the writer and keep-alive too.
	defer cancel()
	// Cancellation unblocks a pending read; writes stay usable for the drain.
	stop := context.AfterFunc(ctx, func() { c.netConn.SetReadDeadline(time.Now()) })
	defer stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		frame, err := packet.ReadFrame(c.netConn)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("conn: read frame: %w", err)
		}

		if err := c.handleFrame(ctx, frame); err != nil {
			return err
		}
	}
}

func (c *Connection) handleFrame(ctx context.Context, frame packet.Frame) error {
	state := c.fsm.State()
	sb, err := packet.Decode(state, frame)
	if err != nil {
		if errors.Is(err, packet.ErrUnknownPlayPacket) {
			log.Printf("conn: %v; discarding", err)
			return nil
		}
		return err
	}

	switch {
	case sb.Handshake != nil:
		return c.fsm.ApplyHandshake(*sb.Handshake)

	case sb.StatusRequest:
		return c.enqueue(ctx, c.statusResponse())

	case sb.Ping != nil:
		return c.enqueue(ctx, packet.Pong{Payload: sb.Ping.Payload})

	case sb.LoginStart != nil:
		return c.handleLoginStart(ctx, *sb.LoginStart)

	case sb.LoginAcknowledged != nil:
		return c.handleLoginAcknowledged(ctx)

	case sb.ClientInformation != nil:
		return nil // stored nowhere; no field of this core acts on it

	case sb.PluginMessage != nil:
		return nil // unknown channels are ignored, per spec's non-goal on plugin messaging

	case sb.FinishConfiguration != nil:
		return c.handleFinishConfiguration(ctx)

	case sb.KeepAliveResponse != nil:
		if sb.KeepAliveResponse.Nonce == c.pendingKeepAlive {
			c.lastPongAt = time.Now()
		}
		return nil

	case sb.PlayerPosition != nil:
		if c.player != nil {
			c.player.SetPosition(sb.PlayerPosition.X, sb.PlayerPosition.Y, sb.PlayerPosition.Z, sb.PlayerPosition.OnGround)
		}
		return nil

	case sb.PlayerPositionRotate != nil:
		if c.player != nil {
			p := sb.PlayerPositionRotate
			c.player.SetPositionAndRotation(p.X, p.Y, p.Z, p.Yaw, p.Pitch, p.OnGround)
		}
		return nil

	case sb.PlayerRotation != nil:
		if c.player != nil {
			r := sb.PlayerRotation
			c.player.SetRotation(r.Yaw, r.Pitch, r.OnGround)
		}
		return nil

	case sb.ChatMessage != nil:
		return c.handleChatMessage(ctx)

	default:
		return nil
	}
}

func (c *Connection) statusResponse() packet.StatusResponse {
	return packet.StatusResponse{JSON: packet.StatusResponsePayload{
		Version:     packet.StatusVersion{Name: c.opts.VersionName, Protocol: c.opts.ProtocolVersion},
		Players:     packet.StatusPlayers{Max: c.opts.MaxPlayers, Online: c.opts.Roster.Len()},
		Description: packet.StatusDescription{Text: c.opts.Motd},
	}}
}

func (c *Connection) handleLoginStart(ctx context.Context, ls packet.LoginStart) error {
	id := session.OfflineUUID(ls.Username)
	c.player = session.NewPlayer(id, ls.Username, c.opts.NextEntityID())
	return c.enqueue(ctx, packet.LoginSuccess{UUID: id, Username: ls.Username})
}

func (c *Connection) handleLoginAcknowledged(ctx context.Context) error {
	if err := c.fsm.ApplyLoginAcknowledged(); err != nil {
		return err
	}
	codec, err := c.opts.World.RegistryCodec()
	if err != nil {
		return fmt.Errorf("conn: loading registry codec: %w", err)
	}
	if err := c.enqueue(ctx, packet.RegistryData{Codec: codec}); err != nil {
		return err
	}
	return c.enqueue(ctx, packet.FinishConfiguration{})
}

func (c *Connection) handleFinishConfiguration(ctx context.Context) error {
	if err := c.fsm.ApplyFinishConfiguration(); err != nil {
		return err
	}
	c.lastPongAt = time.Now()

	c.opts.Roster.Add(c.player)

	if err := c.enqueue(ctx, packet.PlayLogin{
		EntityID:           c.player.EntityID,
		WorldNames:         []string{c.opts.DimensionName},
		MaxPlayers:         int32(c.opts.MaxPlayers),
		ViewDistance:       10,
		SimulationDistance: 10,
		DimensionType:      c.opts.DimensionName,
		DimensionName:      c.opts.DimensionName,
		GameMode:           0,
		PreviousGameMode:   -1,
	}); err != nil {
		return err
	}

	chunk := c.opts.World.EmptyChunk(0, 0)
	if err := c.enqueue(ctx, packet.ChunkDataUpdateLight{
		ChunkX:          0,
		ChunkZ:          0,
		Heightmaps:      chunk.Heightmaps,
		Data:            chunk.Data,
		SkyLightMask:    bitset.New(0),
		BlockLightMask:  bitset.New(0),
		EmptySkyLight:   bitset.New(0),
		EmptyBlockLight: bitset.New(0),
	}); err != nil {
		return err
	}

	if err := c.enqueue(ctx, packet.SynchronizePlayerPosition{TeleportID: 1}); err != nil {
		return err
	}
	if err := c.enqueue(ctx, packet.GameEvent{Event: packet.GameEventStartWaitingForChunks}); err != nil {
		return err
	}
	return c.enqueue(ctx, packet.SetDefaultSpawnPosition{})
}

func (c *Connection) handleChatMessage(ctx context.Context) error {
	log.Printf("conn: chat handling is out of scope; disconnecting %s", playerLabel(c.player))
	doc := nbt.Document{Root: map[string]nbt.Tag{"text": nbt.String("Chat is not available.")}}
	for i := 0; i < chatEchoRepeat; i++ {
		if err := c.enqueue(ctx, packet.DisconnectPlay{Reason: doc}); err != nil {
			return err
		}
	}
	return errors.New("conn: chat stub disconnect")
}

func playerLabel(p *session.Player) string {
	if p == nil {
		return "<unidentified>"
	}
	return p.Username
}

package packet

import (
	"bytes"
	"io"

	"github.com/bits-and-blooms/bitset"

	"mcserver765/internal/nbt"
	"mcserver765/internal/protocol"
)

// KeepAliveResponse is the Play-state serverbound echo of KeepAlive.
type KeepAliveResponse struct {
	Nonce int64
}

// DecodeKeepAliveResponse reads a KeepAliveResponse payload.
func DecodeKeepAliveResponse(payload []byte) (KeepAliveResponse, error) {
	v, err := protocol.ReadLong(bytes.NewReader(payload))
	return KeepAliveResponse{Nonce: v}, err
}

// PlayerPosition is the Play-state serverbound position-only movement
// update.
type PlayerPosition struct {
	X, Y, Z  float64
	OnGround bool
}

// DecodePlayerPosition reads a PlayerPosition payload.
func DecodePlayerPosition(payload []byte) (PlayerPosition, error) {
	r := bytes.NewReader(payload)
	var p PlayerPosition
	var err error
	if p.X, err = protocol.ReadDouble(r); err != nil {
		return p, err
	}
	if p.Y, err = protocol.ReadDouble(r); err != nil {
		return p, err
	}
	if p.Z, err = protocol.ReadDouble(r); err != nil {
		return p, err
	}
	p.OnGround, err = protocol.ReadBool(r)
	return p, err
}

// PlayerPositionRotation is the Play-state serverbound combined
// position+look movement update.
type PlayerPositionRotation struct {
	X, Y, Z    float64
	Yaw, Pitch float32
	OnGround   bool
}

// DecodePlayerPositionRotation reads a PlayerPositionRotation payload.
func DecodePlayerPositionRotation(payload []byte) (PlayerPositionRotation, error) {
	r := bytes.NewReader(payload)
	var p PlayerPositionRotation
	var err error
	if p.X, err = protocol.ReadDouble(r); err != nil {
		return p, err
	}
	if p.Y, err = protocol.ReadDouble(r); err != nil {
		return p, err
	}
	if p.Z, err = protocol.ReadDouble(r); err != nil {
		return p, err
	}
	if p.Yaw, err = protocol.ReadFloat(r); err != nil {
		return p, err
	}
	if p.Pitch, err = protocol.ReadFloat(r); err != nil {
		return p, err
	}
	p.OnGround, err = protocol.ReadBool(r)
	return p, err
}

// PlayerRotation is the Play-state serverbound look-only movement update.
type PlayerRotation struct {
	Yaw, Pitch float32
	OnGround   bool
}

// DecodePlayerRotation reads a PlayerRotation payload.
func DecodePlayerRotation(payload []byte) (PlayerRotation, error) {
	r := bytes.NewReader(payload)
	var p PlayerRotation
	var err error
	if p.Yaw, err = protocol.ReadFloat(r); err != nil {
		return p, err
	}
	if p.Pitch, err = protocol.ReadFloat(r); err != nil {
		return p, err
	}
	p.OnGround, err = protocol.ReadBool(r)
	return p, err
}

// ChatMessage is the Play-state serverbound chat packet.
type ChatMessage struct {
	Message string
}

// DecodeChatMessage reads a ChatMessage payload.
func DecodeChatMessage(payload []byte) (ChatMessage, error) {
	s, err := protocol.ReadString(bytes.NewReader(payload))
	return ChatMessage{Message: s}, err
}

// DisconnectPlay is the Play-state clientbound disconnect packet, whose
// reason is an NBT text component rather than a JSON string (unlike Login
// and Status disconnects).
type DisconnectPlay struct {
	Reason nbt.Document
}

// Encode writes a DisconnectPlay payload in the networked NBT flavor.
func (d DisconnectPlay) Encode(w io.Writer) error {
	return nbt.EncodeNetwork(w, d.Reason)
}

// GameEvent is the Play-state clientbound packet used here only to signal
// GameEventStartWaitingForChunks at the end of the configuration handoff.
type GameEvent struct {
	Event uint8
	Value float32
}

// Encode writes a GameEvent payload.
func (g GameEvent) Encode(w io.Writer) error {
	if err := protocol.WriteUByte(w, g.Event); err != nil {
		return err
	}
	return protocol.WriteFloat(w, g.Value)
}

// KeepAlive is the Play-state clientbound liveness probe.
type KeepAlive struct {
	Nonce int64
}

// Encode writes a KeepAlive payload.
func (k KeepAlive) Encode(w io.Writer) error {
	return protocol.WriteLong(w, k.Nonce)
}

// BlockEntity is one element of ChunkDataUpdateLight's block_entities
// sequence: packed in-chunk xz, absolute y, a type id, and an opaque NBT
// document (recovered from original_source's chunk packet; the
// distillation's table names the field without a layout).
type BlockEntity struct {
	PackedXZ int8
	Y        int16
	Type     int32
	Data     nbt.Document
}

func writeBlockEntity(w io.Writer, b BlockEntity) error {
	if err := protocol.WriteByte(w, b.PackedXZ); err != nil {
		return err
	}
	if err := protocol.WriteShort(w, b.Y); err != nil {
		return err
	}
	if err := protocol.WriteVarInt(w, b.Type); err != nil {
		return err
	}
	return nbt.EncodeNetwork(w, b.Data)
}

// ChunkDataUpdateLight is the Play-state clientbound packet carrying one
// chunk column plus its lighting. Block/biome content is an opaque blob
// from the world provider; this core never interprets it.
type ChunkDataUpdateLight struct {
	ChunkX, ChunkZ int32
	Heightmaps     nbt.Document
	Data           []byte
	BlockEntities  []BlockEntity
	SkyLightMask   *bitset.BitSet
	BlockLightMask *bitset.BitSet
	EmptySkyLight  *bitset.BitSet
	EmptyBlockLight *bitset.BitSet
	SkyLightArrays   [][]byte
	BlockLightArrays [][]byte
}

// Encode writes a ChunkDataUpdateLight payload.
func (c ChunkDataUpdateLight) Encode(w io.Writer) error {
	if err := protocol.WriteInt(w, c.ChunkX); err != nil {
		return err
	}
	if err := protocol.WriteInt(w, c.ChunkZ); err != nil {
		return err
	}
	if err := nbt.EncodeNetwork(w, c.Heightmaps); err != nil {
		return err
	}
	if err := protocol.WriteByteArray(w, c.Data); err != nil {
		return err
	}
	if err := protocol.WriteSequence(w, c.BlockEntities, writeBlockEntity); err != nil {
		return err
	}
	for _, bs := range []*bitset.BitSet{c.SkyLightMask, c.BlockLightMask, c.EmptySkyLight, c.EmptyBlockLight} {
		if err := protocol.WriteBitSet(w, bs); err != nil {
			return err
		}
	}
	if err := protocol.WriteSequence(w, c.SkyLightArrays, protocol.WriteByteArray); err != nil {
		return err
	}
	return protocol.WriteSequence(w, c.BlockLightArrays, protocol.WriteByteArray)
}

// PlayLoginDeath carries the optional "has death location" fields of
// PlayLogin.
type PlayLoginDeath struct {
	DimensionName string
	Location      protocol.Position
}

func writeDeath(w io.Writer, d PlayLoginDeath) error {
	if err := protocol.WriteString(w, d.DimensionName); err != nil {
		return err
	}
	return protocol.WritePosition(w, d.Location)
}

// PlayLogin is the Play-state clientbound packet that completes the
// configuration-to-play handoff and tells the client which world it has
// joined. DimensionType is a registry identifier string (e.g.
// "minecraft:overworld"), not a numeric id.
type PlayLogin struct {
	EntityID            int32
	IsHardcore           bool
	WorldNames           []string
	MaxPlayers           int32
	ViewDistance         int32
	SimulationDistance   int32
	ReducedDebugInfo     bool
	EnableRespawnScreen  bool
	DoLimitedCrafting    bool
	DimensionType        string
	DimensionName        string
	HashedSeed           int64
	GameMode             uint8
	PreviousGameMode     int8
	IsDebug              bool
	IsFlat               bool
	Death                *PlayLoginDeath
	PortalCooldown       int32
}

// Encode writes a PlayLogin payload.
func (p PlayLogin) Encode(w io.Writer) error {
	if err := protocol.WriteInt(w, p.EntityID); err != nil {
		return err
	}
	if err := protocol.WriteBool(w, p.IsHardcore); err != nil {
		return err
	}
	if err := protocol.WriteSequence(w, p.WorldNames, protocol.WriteString); err != nil {
		return err
	}
	if err := protocol.WriteVarInt(w, p.MaxPlayers); err != nil {
		return err
	}
	if err := protocol.WriteVarInt(w, p.ViewDistance); err != nil {
		return err
	}
	if err := protocol.WriteVarInt(w, p.SimulationDistance); err != nil {
		return err
	}
	if err := protocol.WriteBool(w, p.ReducedDebugInfo); err != nil {
		return err
	}
	if err := protocol.WriteBool(w, p.EnableRespawnScreen); err != nil {
		return err
	}
	if err := protocol.WriteBool(w, p.DoLimitedCrafting); err != nil {
		return err
	}
	if err := protocol.WriteString(w, p.DimensionType); err != nil {
		return err
	}
	if err := protocol.WriteString(w, p.DimensionName); err != nil {
		return err
	}
	if err := protocol.WriteLong(w, p.HashedSeed); err != nil {
		return err
	}
	if err := protocol.WriteUByte(w, p.GameMode); err != nil {
		return err
	}
	if err := protocol.WriteByte(w, p.PreviousGameMode); err != nil {
		return err
	}
	if err := protocol.WriteBool(w, p.IsDebug); err != nil {
		return err
	}
	if err := protocol.WriteBool(w, p.IsFlat); err != nil {
		return err
	}
	if err := protocol.WriteOptional(w, p.Death, writeDeath); err != nil {
		return err
	}
	return protocol.WriteVarInt(w, p.PortalCooldown)
}

// SynchronizePlayerPosition is the Play-state clientbound teleport packet
// that establishes the player's authoritative position after joining.
type SynchronizePlayerPosition struct {
	X, Y, Z      float64
	Yaw, Pitch   float32
	Flags        uint8
	TeleportID   int32
}

// Encode writes a SynchronizePlayerPosition payload.
func (s SynchronizePlayerPosition) Encode(w io.Writer) error {
	if err := protocol.WriteDouble(w, s.X); err != nil {
		return err
	}
	if err := protocol.WriteDouble(w, s.Y); err != nil {
		return err
	}
	if err := protocol.WriteDouble(w, s.Z); err != nil {
		return err
	}
	if err := protocol.WriteFloat(w, s.Yaw); err != nil {
		return err
	}
	if err := protocol.WriteFloat(w, s.Pitch); err != nil {
		return err
	}
	if err := protocol.WriteUByte(w, s.Flags); err != nil {
		return err
	}
	return protocol.WriteVarInt(w, s.TeleportID)
}

// SetDefaultSpawnPosition is the Play-state clientbound packet that marks
// the compass/respawn point.
type SetDefaultSpawnPosition struct {
	Location protocol.Position
	Angle    float32
}

// Encode writes a SetDefaultSpawnPosition payload.
func (s SetDefaultSpawnPosition) Encode(w io.Writer) error {
	if err := protocol.WritePosition(w, s.Location); err != nil {
		return err
	}
	return protocol.WriteFloat(w, s.Angle)
}

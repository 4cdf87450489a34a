package protocol

import (
	"encoding/binary"
	"errors"
	"io"
	"math"

	"github.com/bits-and-blooms/bitset"
	"github.com/google/uuid"
)

// ErrStringTooLong is returned when a decoded or encoded string exceeds the
// protocol's 32767-character cap.
var ErrStringTooLong = errors.New("protocol: string too long")

const maxStringChars = 32767

// ReadBool decodes a single boolean byte.
func ReadBool(r io.Reader) (bool, error) {
	var buf [1]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return false, err
	}
	return buf[0] != 0, nil
}

// WriteBool encodes a single boolean byte.
func WriteBool(w io.Writer, v bool) error {
	var b byte
	if v {
		b = 1
	}
	_, err := w.Write([]byte{b})
	return err
}

// ReadByte decodes a signed 8-bit integer.
func ReadByte(r io.Reader) (int8, error) {
	var buf [1]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return int8(buf[0]), nil
}

// WriteByte encodes a signed 8-bit integer.
func WriteByte(w io.Writer, v int8) error {
	_, err := w.Write([]byte{byte(v)})
	return err
}

// ReadUByte decodes an unsigned 8-bit integer.
func ReadUByte(r io.Reader) (uint8, error) {
	var buf [1]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return buf[0], nil
}

// WriteUByte encodes an unsigned 8-bit integer.
func WriteUByte(w io.Writer, v uint8) error {
	_, err := w.Write([]byte{v})
	return err
}

// ReadShort decodes a big-endian signed 16-bit integer.
func ReadShort(r io.Reader) (int16, error) {
	var buf [2]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return int16(binary.BigEndian.Uint16(buf[:])), nil
}

// WriteShort encodes a big-endian signed 16-bit integer.
func WriteShort(w io.Writer, v int16) error {
	var buf [2]byte
	binary.BigEndian.PutUint16(buf[:], uint16(v))
	_, err := w.Write(buf[:])
	return err
}

// ReadUShort decodes a big-endian unsigned 16-bit integer.
func ReadUShort(r io.Reader) (uint16, error) {
	var buf [2]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(buf[:]), nil
}

// WriteUShort encodes a big-endian unsigned 16-bit integer.
func WriteUShort(w io.Writer, v uint16) error {
	var buf [2]byte
	binary.BigEndian.PutUint16(buf[:], v)
	_, err := w.Write(buf[:])
	return err
}

// ReadInt decodes a big-endian signed 32-bit integer.
func ReadInt(r io.Reader) (int32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return int32(binary.BigEndian.Uint32(buf[:])), nil
}

// WriteInt encodes a big-endian signed 32-bit integer.
func WriteInt(w io.Writer, v int32) error {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], uint32(v))
	_, err := w.Write(buf[:])
	return err
}

// ReadLong decodes a big-endian signed 64-bit integer.
func ReadLong(r io.Reader) (int64, error) {
	var buf [8]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return int64(binary.BigEndian.Uint64(buf[:])), nil
}

// WriteLong encodes a big-endian signed 64-bit integer.
func WriteLong(w io.Writer, v int64) error {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(v))
	_, err := w.Write(buf[:])
	return err
}

// ReadFloat decodes a big-endian IEEE 754 32-bit float.
func ReadFloat(r io.Reader) (float32, error) {
	v, err := ReadInt(r)
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(uint32(v)), nil
}

// WriteFloat encodes a big-endian IEEE 754 32-bit float.
func WriteFloat(w io.Writer, v float32) error {
	return WriteInt(w, int32(math.Float32bits(v)))
}

// ReadDouble decodes a big-endian IEEE 754 64-bit float.
func ReadDouble(r io.Reader) (float64, error) {
	v, err := ReadLong(r)
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(uint64(v)), nil
}

// WriteDouble encodes a big-endian IEEE 754 64-bit float.
func WriteDouble(w io.Writer, v float64) error {
	return WriteLong(w, int64(math.Float64bits(v)))
}

// ReadString decodes a VarInt-length-prefixed UTF-8 string, rejecting
// anything over the protocol's 32767-character cap.
func ReadString(r io.Reader) (string, error) {
	n, err := ReadVarInt(r)
	if err != nil {
		return "", err
	}
	if n < 0 || n > maxStringChars*4 {
		return "", ErrStringTooLong
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	if len([]rune(string(buf))) > maxStringChars {
		return "", ErrStringTooLong
	}
	return string(buf), nil
}

// WriteString encodes a VarInt-length-prefixed UTF-8 string.
func WriteString(w io.Writer, s string) error {
	if len([]rune(s)) > maxStringChars {
		return ErrStringTooLong
	}
	b := []byte(s)
	if err := WriteVarInt(w, int32(len(b))); err != nil {
		return err
	}
	_, err := w.Write(b)
	return err
}

// Identifier is a namespaced string of the form "namespace:path". The
// default namespace is "minecraft" when none is given. On the wire it is
// encoded exactly like String.
type Identifier string

// ReadIdentifier decodes an Identifier, wire-identical to String.
func ReadIdentifier(r io.Reader) (Identifier, error) {
	s, err := ReadString(r)
	return Identifier(s), err
}

// WriteIdentifier encodes an Identifier, wire-identical to String.
func WriteIdentifier(w io.Writer, id Identifier) error {
	return WriteString(w, string(id))
}

// ReadByteArray decodes a VarInt-length-prefixed byte array.
func ReadByteArray(r io.Reader) ([]byte, error) {
	n, err := ReadVarInt(r)
	if err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, errors.New("protocol: negative byte array length")
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// WriteByteArray encodes a VarInt-length-prefixed byte array.
func WriteByteArray(w io.Writer, b []byte) error {
	if err := WriteVarInt(w, int32(len(b))); err != nil {
		return err
	}
	_, err := w.Write(b)
	return err
}

// ReadUUID decodes a 128-bit big-endian UUID.
func ReadUUID(r io.Reader) (uuid.UUID, error) {
	var buf [16]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return uuid.UUID{}, err
	}
	return uuid.FromBytes(buf[:])
}

// WriteUUID encodes a 128-bit big-endian UUID.
func WriteUUID(w io.Writer, id uuid.UUID) error {
	_, err := w.Write(id[:])
	return err
}

// Position is the packed block-coordinate primitive: x (26 bits signed),
// z (26 bits signed), y (12 bits signed).
type Position struct {
	X, Z int32
	Y    int32
}

const (
	positionXZMask = 0x3FFFFFF
	positionYMask  = 0xFFF
)

// Pack converts a Position into its packed 64-bit wire representation.
func (p Position) Pack() uint64 {
	x := uint64(p.X) & positionXZMask
	z := uint64(p.Z) & positionXZMask
	y := uint64(p.Y) & positionYMask
	return x<<38 | z<<12 | y
}

// UnpackPosition inverts Pack, sign-extending each packed field.
func UnpackPosition(v uint64) Position {
	x := int32(v >> 38)
	z := int32(v << 26 >> 38)
	y := int32(v << 52 >> 52)
	if x >= 1<<25 {
		x -= 1 << 26
	}
	if z >= 1<<25 {
		z -= 1 << 26
	}
	if y >= 1<<11 {
		y -= 1 << 12
	}
	return Position{X: x, Z: z, Y: y}
}

// ReadPosition decodes a packed Position.
func ReadPosition(r io.Reader) (Position, error) {
	v, err := readUint64(r)
	if err != nil {
		return Position{}, err
	}
	return UnpackPosition(v), nil
}

// WritePosition encodes a packed Position.
func WritePosition(w io.Writer, p Position) error {
	return writeUint64(w, p.Pack())
}

func readUint64(r io.Reader) (uint64, error) {
	var buf [8]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(buf[:]), nil
}

func writeUint64(w io.Writer, v uint64) error {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], v)
	_, err := w.Write(buf[:])
	return err
}

// ReadBitSet decodes a BitSet: a VarInt count of 64-bit lanes followed by
// that many big-endian i64 words.
func ReadBitSet(r io.Reader) (*bitset.BitSet, error) {
	count, err := ReadVarInt(r)
	if err != nil {
		return nil, err
	}
	if count < 0 {
		return nil, errors.New("protocol: negative bitset lane count")
	}
	words := make([]uint64, count)
	for i := range words {
		v, err := readUint64(r)
		if err != nil {
			return nil, err
		}
		words[i] = v
	}
	return bitset.From(words), nil
}

// WriteBitSet encodes a BitSet as a VarInt lane count followed by that
// many big-endian i64 words.
func WriteBitSet(w io.Writer, b *bitset.BitSet) error {
	var words []uint64
	if b != nil {
		words = b.Bytes()
	}
	if err := WriteVarInt(w, int32(len(words))); err != nil {
		return err
	}
	for _, word := range words {
		if err := writeUint64(w, word); err != nil {
			return err
		}
	}
	return nil
}

// ReadOptional decodes a presence byte followed by a value of T when
// present.
func ReadOptional[T any](r io.Reader, read func(io.Reader) (T, error)) (*T, error) {
	present, err := ReadBool(r)
	if err != nil {
		return nil, err
	}
	if !present {
		return nil, nil
	}
	v, err := read(r)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// WriteOptional encodes a presence byte followed by the value when
// non-nil.
func WriteOptional[T any](w io.Writer, v *T, write func(io.Writer, T) error) error {
	if v == nil {
		return WriteBool(w, false)
	}
	if err := WriteBool(w, true); err != nil {
		return err
	}
	return write(w, *v)
}

// ReadSequence decodes a VarInt-length-prefixed sequence of T.
func ReadSequence[T any](r io.Reader, read func(io.Reader) (T, error)) ([]T, error) {
	n, err := ReadVarInt(r)
	if err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, errors.New("protocol: negative sequence length")
	}
	out := make([]T, n)
	for i := range out {
		v, err := read(r)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// WriteSequence encodes a VarInt-length-prefixed sequence of T.
func WriteSequence[T any](w io.Writer, values []T, write func(io.Writer, T) error) error {
	if err := WriteVarInt(w, int32(len(values))); err != nil {
		return err
	}
	for _, v := range values {
		if err := write(w, v); err != nil {
			return err
		}
	}
	return nil
}

// Property is a signed player-profile property (textures, capes, etc.)
// carried by LoginSuccess.
type Property struct {
	Name      string
	Value     string
	IsSigned  bool
	Signature string
}

// ReadProperty decodes a Property.
func ReadProperty(r io.Reader) (Property, error) {
	var p Property
	var err error
	if p.Name, err = ReadString(r); err != nil {
		return p, err
	}
	if p.Value, err = ReadString(r); err != nil {
		return p, err
	}
	if p.IsSigned, err = ReadBool(r); err != nil {
		return p, err
	}
	if p.IsSigned {
		if p.Signature, err = ReadString(r); err != nil {
			return p, err
		}
	}
	return p, nil
}

// WriteProperty encodes a Property.
func WriteProperty(w io.Writer, p Property) error {
	if err := WriteString(w, p.Name); err != nil {
		return err
	}
	if err := WriteString(w, p.Value); err != nil {
		return err
	}
	if err := WriteBool(w, p.IsSigned); err != nil {
		return err
	}
	if p.IsSigned {
		return WriteString(w, p.Signature)
	}
	return nil
}

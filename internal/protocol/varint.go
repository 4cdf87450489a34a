// Package protocol implements the Minecraft Java Edition wire primitives:
// VarInt/VarLong, fixed-width scalars, length-prefixed strings and byte
// arrays, UUIDs, positions and bit sets. Every Read/Write pair operates on
// plain io.Reader/io.Writer so the same codec serves frame payloads,
// in-memory buffers, and tests alike.
package protocol

import (
	"errors"
	"io"
)

// ErrMalformedVarInt is returned when a VarInt/VarLong continuation stream
// exceeds the maximum byte count for its width without terminating.
var ErrMalformedVarInt = errors.New("protocol: malformed varint")

const (
	maxVarIntBytes  = 5
	maxVarLongBytes = 10
)

// byteReader adapts an io.Reader to io.ByteReader when it doesn't already
// implement it, so VarInt decoding never requires callers to wrap readers
// themselves.
type byteReader struct {
	r   io.Reader
	buf [1]byte
}

func (b *byteReader) ReadByte() (byte, error) {
	if _, err := io.ReadFull(b.r, b.buf[:]); err != nil {
		return 0, err
	}
	return b.buf[0], nil
}

func asByteReader(r io.Reader) io.ByteReader {
	if br, ok := r.(io.ByteReader); ok {
		return br
	}
	return &byteReader{r: r}
}

// ReadVarInt decodes a signed 32-bit VarInt from r.
func ReadVarInt(r io.Reader) (int32, error) {
	br := asByteReader(r)
	var result int32
	var numRead uint
	for {
		b, err := br.ReadByte()
		if err != nil {
			return 0, err
		}
		result |= int32(b&0x7F) << (7 * numRead)
		numRead++
		if numRead > maxVarIntBytes {
			return 0, ErrMalformedVarInt
		}
		if b&0x80 == 0 {
			break
		}
	}
	return result, nil
}

// WriteVarInt encodes a signed 32-bit VarInt to w.
func WriteVarInt(w io.Writer, value int32) error {
	v := uint32(value)
	var buf [maxVarIntBytes]byte
	n := 0
	for {
		b := byte(v & 0x7F)
		v >>= 7
		if v != 0 {
			b |= 0x80
		}
		buf[n] = b
		n++
		if v == 0 {
			break
		}
	}
	_, err := w.Write(buf[:n])
	return err
}

// VarIntSize returns the number of bytes WriteVarInt would emit for value.
func VarIntSize(value int32) int {
	v := uint32(value)
	n := 1
	for v >= 0x80 {
		v >>= 7
		n++
	}
	return n
}

// ReadVarLong decodes a signed 64-bit VarLong from r.
func ReadVarLong(r io.Reader) (int64, error) {
	br := asByteReader(r)
	var result int64
	var numRead uint
	for {
		b, err := br.ReadByte()
		if err != nil {
			return 0, err
		}
		result |= int64(b&0x7F) << (7 * numRead)
		numRead++
		if numRead > maxVarLongBytes {
			return 0, ErrMalformedVarInt
		}
		if b&0x80 == 0 {
			break
		}
	}
	return result, nil
}

// WriteVarLong encodes a signed 64-bit VarLong to w.
func WriteVarLong(w io.Writer, value int64) error {
	v := uint64(value)
	var buf [maxVarLongBytes]byte
	n := 0
	for {
		b := byte(v & 0x7F)
		v >>= 7
		if v != 0 {
			b |= 0x80
		}
		buf[n] = b
		n++
		if v == 0 {
			break
		}
	}
	_, err := w.Write(buf[:n])
	return err
}

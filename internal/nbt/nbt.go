// Package nbt implements Minecraft's Named Binary Tag tree format: a
// recursive tagged-variant encoder/decoder with modified-UTF-8 strings,
// used for the dimension/registry codec, chunk heightmaps, and Play
// disconnect reasons.
package nbt

import (
	"encoding/binary"
	"errors"
	"io"
)

// TagID identifies the variant carried by a Tag.
type TagID byte

const (
	TagEnd       TagID = 0x00
	TagByte      TagID = 0x01
	TagShort     TagID = 0x02
	TagInt       TagID = 0x03
	TagLong      TagID = 0x04
	TagFloat     TagID = 0x05
	TagDouble    TagID = 0x06
	TagByteArray TagID = 0x07
	TagString    TagID = 0x08
	TagList      TagID = 0x09
	TagCompound  TagID = 0x0A
	TagIntArray  TagID = 0x0B
	TagLongArray TagID = 0x0C
)

// ErrInvalidTag is returned when a tag id outside {0..0x0C} is encountered.
var ErrInvalidTag = errors.New("nbt: invalid tag id")

// ErrUnexpectedEnd is returned when TAG_End is encountered outside of a
// compound body.
var ErrUnexpectedEnd = errors.New("nbt: unexpected TAG_End")

// Tag is a tagged-variant recursive NBT value. Exactly one of the fields
// matching ID is meaningful; the zero value is TagEnd.
type Tag struct {
	ID TagID

	Byte      int8
	Short     int16
	Int       int32
	Long      int64
	Float     float32
	Double    float64
	ByteArray []byte
	IntArray  []int32
	LongArray []int64
	Str       string

	// List holds homogeneous child tags; ListType is the element tag id
	// (TagEnd when the list is empty).
	List     []Tag
	ListType TagID

	// Compound maps entry names to child tags, order-independent.
	Compound map[string]Tag
}

// Equal reports whether two tags are structurally identical. NaN floats
// compare unequal to everything including themselves, matching Go's ==;
// callers comparing NaN payloads should compare bit patterns directly.
func (t Tag) Equal(o Tag) bool {
	if t.ID != o.ID {
		return false
	}
	switch t.ID {
	case TagByte:
		return t.Byte == o.Byte
	case TagShort:
		return t.Short == o.Short
	case TagInt:
		return t.Int == o.Int
	case TagLong:
		return t.Long == o.Long
	case TagFloat:
		return t.Float == o.Float
	case TagDouble:
		return t.Double == o.Double
	case TagString:
		return t.Str == o.Str
	case TagByteArray:
		return bytesEqual(t.ByteArray, o.ByteArray)
	case TagIntArray:
		if len(t.IntArray) != len(o.IntArray) {
			return false
		}
		for i := range t.IntArray {
			if t.IntArray[i] != o.IntArray[i] {
				return false
			}
		}
		return true
	case TagLongArray:
		if len(t.LongArray) != len(o.LongArray) {
			return false
		}
		for i := range t.LongArray {
			if t.LongArray[i] != o.LongArray[i] {
				return false
			}
		}
		return true
	case TagList:
		if len(t.List) != len(o.List) {
			return false
		}
		for i := range t.List {
			if !t.List[i].Equal(o.List[i]) {
				return false
			}
		}
		return true
	case TagCompound:
		if len(t.Compound) != len(o.Compound) {
			return false
		}
		for k, v := range t.Compound {
			ov, ok := o.Compound[k]
			if !ok || !v.Equal(ov) {
				return false
			}
		}
		return true
	default:
		return true
	}
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Compound-entry constructors, mirroring the field the caller is building.
func Byte(v int8) Tag           { return Tag{ID: TagByte, Byte: v} }
func Short(v int16) Tag         { return Tag{ID: TagShort, Short: v} }
func Int(v int32) Tag           { return Tag{ID: TagInt, Int: v} }
func Long(v int64) Tag          { return Tag{ID: TagLong, Long: v} }
func Float(v float32) Tag       { return Tag{ID: TagFloat, Float: v} }
func Double(v float64) Tag      { return Tag{ID: TagDouble, Double: v} }
func String(v string) Tag       { return Tag{ID: TagString, Str: v} }
func ByteArray(v []byte) Tag    { return Tag{ID: TagByteArray, ByteArray: v} }
func IntArray(v []int32) Tag    { return Tag{ID: TagIntArray, IntArray: v} }
func LongArray(v []int64) Tag   { return Tag{ID: TagLongArray, LongArray: v} }
func Compound(v map[string]Tag) Tag {
	return Tag{ID: TagCompound, Compound: v}
}
func List(elemType TagID, v []Tag) Tag {
	return Tag{ID: TagList, ListType: elemType, List: v}
}

// Document is a root Compound, optionally carrying a root name (the
// "named" flavor). Networked documents (the root name omitted) set Title
// to the empty string and are written/read with EncodeNetwork and
// DecodeNetwork.
type Document struct {
	Title string
	Root  map[string]Tag
}

func bodyTag(d Document) Tag {
	return Tag{ID: TagCompound, Compound: d.Root}
}

// Encode writes a Document in the named flavor: root tag id, root name
// string, body.
func Encode(w io.Writer, d Document) error {
	if err := writeUint8(w, byte(TagCompound)); err != nil {
		return err
	}
	if err := writeString(w, d.Title); err != nil {
		return err
	}
	return encodeCompoundBody(w, d.Root)
}

// EncodeNetwork writes a Document in the networked flavor: root tag id
// only, body, no root name.
func EncodeNetwork(w io.Writer, d Document) error {
	if err := writeUint8(w, byte(TagCompound)); err != nil {
		return err
	}
	return encodeCompoundBody(w, d.Root)
}

// Decode reads a Document in the named flavor.
func Decode(r io.Reader) (Document, error) {
	id, err := readUint8(r)
	if err != nil {
		return Document{}, err
	}
	if TagID(id) != TagCompound {
		return Document{}, ErrInvalidTag
	}
	title, err := readString(r)
	if err != nil {
		return Document{}, err
	}
	body, err := decodeCompoundBody(r)
	if err != nil {
		return Document{}, err
	}
	return Document{Title: title, Root: body}, nil
}

// DecodeNetwork reads a Document in the networked flavor (no root name).
func DecodeNetwork(r io.Reader) (Document, error) {
	id, err := readUint8(r)
	if err != nil {
		return Document{}, err
	}
	if TagID(id) != TagCompound {
		return Document{}, ErrInvalidTag
	}
	body, err := decodeCompoundBody(r)
	if err != nil {
		return Document{}, err
	}
	return Document{Root: body}, nil
}

func encodeCompoundBody(w io.Writer, entries map[string]Tag) error {
	for name, tag := range entries {
		if err := writeUint8(w, byte(tag.ID)); err != nil {
			return err
		}
		if err := writeString(w, name); err != nil {
			return err
		}
		if err := encodeTagBody(w, tag); err != nil {
			return err
		}
	}
	return writeUint8(w, byte(TagEnd))
}

func decodeCompoundBody(r io.Reader) (map[string]Tag, error) {
	entries := make(map[string]Tag)
	for {
		idByte, err := readUint8(r)
		if err != nil {
			return nil, err
		}
		id := TagID(idByte)
		if id == TagEnd {
			return entries, nil
		}
		name, err := readString(r)
		if err != nil {
			return nil, err
		}
		tag, err := decodeTagBody(r, id)
		if err != nil {
			return nil, err
		}
		entries[name] = tag
	}
}

func encodeTagBody(w io.Writer, t Tag) error {
	switch t.ID {
	case TagEnd:
		return ErrUnexpectedEnd
	case TagByte:
		return writeUint8(w, byte(t.Byte))
	case TagShort:
		return writeBE(w, uint16(t.Short))
	case TagInt:
		return writeBE(w, uint32(t.Int))
	case TagLong:
		return writeBE(w, uint64(t.Long))
	case TagFloat:
		return writeBE(w, floatBits(t.Float))
	case TagDouble:
		return writeBE(w, doubleBits(t.Double))
	case TagByteArray:
		if err := writeBE(w, uint32(len(t.ByteArray))); err != nil {
			return err
		}
		_, err := w.Write(t.ByteArray)
		return err
	case TagIntArray:
		if err := writeBE(w, uint32(len(t.IntArray))); err != nil {
			return err
		}
		for _, v := range t.IntArray {
			if err := writeBE(w, uint32(v)); err != nil {
				return err
			}
		}
		return nil
	case TagLongArray:
		if err := writeBE(w, uint32(len(t.LongArray))); err != nil {
			return err
		}
		for _, v := range t.LongArray {
			if err := writeBE(w, uint64(v)); err != nil {
				return err
			}
		}
		return nil
	case TagString:
		return writeString(w, t.Str)
	case TagList:
		elemType := t.ListType
		if len(t.List) == 0 {
			elemType = TagEnd
		}
		if err := writeUint8(w, byte(elemType)); err != nil {
			return err
		}
		if err := writeBE(w, uint32(len(t.List))); err != nil {
			return err
		}
		for _, elem := range t.List {
			if err := encodeTagBody(w, elem); err != nil {
				return err
			}
		}
		return nil
	case TagCompound:
		return encodeCompoundBody(w, t.Compound)
	default:
		return ErrInvalidTag
	}
}

func decodeTagBody(r io.Reader, id TagID) (Tag, error) {
	switch id {
	case TagByte:
		v, err := readUint8(r)
		return Tag{ID: id, Byte: int8(v)}, err
	case TagShort:
		v, err := readBE16(r)
		return Tag{ID: id, Short: int16(v)}, err
	case TagInt:
		v, err := readBE32(r)
		return Tag{ID: id, Int: int32(v)}, err
	case TagLong:
		v, err := readBE64(r)
		return Tag{ID: id, Long: int64(v)}, err
	case TagFloat:
		v, err := readBE32(r)
		return Tag{ID: id, Float: bitsToFloat(v)}, err
	case TagDouble:
		v, err := readBE64(r)
		return Tag{ID: id, Double: bitsToDouble(v)}, err
	case TagByteArray:
		n, err := readBE32(r)
		if err != nil {
			return Tag{}, err
		}
		buf := make([]byte, n)
		if _, err := io.ReadFull(r, buf); err != nil {
			return Tag{}, err
		}
		return Tag{ID: id, ByteArray: buf}, nil
	case TagIntArray:
		n, err := readBE32(r)
		if err != nil {
			return Tag{}, err
		}
		arr := make([]int32, n)
		for i := range arr {
			v, err := readBE32(r)
			if err != nil {
				return Tag{}, err
			}
			arr[i] = int32(v)
		}
		return Tag{ID: id, IntArray: arr}, nil
	case TagLongArray:
		n, err := readBE32(r)
		if err != nil {
			return Tag{}, err
		}
		arr := make([]int64, n)
		for i := range arr {
			v, err := readBE64(r)
			if err != nil {
				return Tag{}, err
			}
			arr[i] = int64(v)
		}
		return Tag{ID: id, LongArray: arr}, nil
	case TagString:
		s, err := readString(r)
		return Tag{ID: id, Str: s}, err
	case TagList:
		elemIDByte, err := readUint8(r)
		if err != nil {
			return Tag{}, err
		}
		elemID := TagID(elemIDByte)
		n, err := readBE32(r)
		if err != nil {
			return Tag{}, err
		}
		list := make([]Tag, n)
		for i := range list {
			elem, err := decodeTagBody(r, elemID)
			if err != nil {
				return Tag{}, err
			}
			list[i] = elem
		}
		return Tag{ID: id, ListType: elemID, List: list}, nil
	case TagCompound:
		body, err := decodeCompoundBody(r)
		return Tag{ID: id, Compound: body}, err
	case TagEnd:
		return Tag{}, ErrUnexpectedEnd
	default:
		return Tag{}, ErrInvalidTag
	}
}

func writeUint8(w io.Writer, b byte) error {
	_, err := w.Write([]byte{b})
	return err
}

func readUint8(r io.Reader) (byte, error) {
	var buf [1]byte
	_, err := io.ReadFull(r, buf[:])
	return buf[0], err
}

func writeBE(w io.Writer, v any) error {
	switch x := v.(type) {
	case uint16:
		var buf [2]byte
		binary.BigEndian.PutUint16(buf[:], x)
		_, err := w.Write(buf[:])
		return err
	case uint32:
		var buf [4]byte
		binary.BigEndian.PutUint32(buf[:], x)
		_, err := w.Write(buf[:])
		return err
	case uint64:
		var buf [8]byte
		binary.BigEndian.PutUint64(buf[:], x)
		_, err := w.Write(buf[:])
		return err
	default:
		return errors.New("nbt: unsupported writeBE type")
	}
}

func readBE16(r io.Reader) (uint16, error) {
	var buf [2]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(buf[:]), nil
}

func readBE32(r io.Reader) (uint32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(buf[:]), nil
}

func readBE64(r io.Reader) (uint64, error) {
	var buf [8]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(buf[:]), nil
}

func writeString(w io.Writer, s string) error {
	b := encodeModifiedUTF8(s)
	if err := writeBE(w, uint16(len(b))); err != nil {
		return err
	}
	_, err := w.Write(b)
	return err
}

func readString(r io.Reader) (string, error) {
	n, err := readBE16(r)
	if err != nil {
		return "", err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return decodeModifiedUTF8(buf)
}

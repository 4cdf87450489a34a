package nbt

import (
	"bytes"
	"math/rand"
	"testing"
)

func randomTag(rng *rand.Rand, depth int) Tag {
	choices := []TagID{TagByte, TagShort, TagInt, TagLong, TagFloat, TagDouble, TagByteArray, TagIntArray, TagLongArray, TagString}
	if depth > 0 {
		choices = append(choices, TagList, TagCompound)
	}
	id := choices[rng.Intn(len(choices))]
	switch id {
	case TagByte:
		return Byte(int8(rng.Intn(256)))
	case TagShort:
		return Short(int16(rng.Intn(65536) - 32768))
	case TagInt:
		return Int(rng.Int31())
	case TagLong:
		return Long(rng.Int63())
	case TagFloat:
		return Float(rng.Float32())
	case TagDouble:
		return Double(rng.Float64())
	case TagByteArray:
		n := rng.Intn(8)
		b := make([]byte, n)
		rng.Read(b)
		return ByteArray(b)
	case TagIntArray:
		n := rng.Intn(8)
		arr := make([]int32, n)
		for i := range arr {
			arr[i] = rng.Int31()
		}
		return IntArray(arr)
	case TagLongArray:
		n := rng.Intn(8)
		arr := make([]int64, n)
		for i := range arr {
			arr[i] = rng.Int63()
		}
		return LongArray(arr)
	case TagString:
		return String(randomString(rng))
	case TagList:
		n := rng.Intn(4)
		elemID := []TagID{TagByte, TagInt, TagString}[rng.Intn(3)]
		list := make([]Tag, n)
		for i := range list {
			list[i] = randomTagOfType(rng, elemID)
		}
		if n == 0 {
			elemID = TagEnd
		}
		return List(elemID, list)
	case TagCompound:
		n := rng.Intn(4)
		m := make(map[string]Tag, n)
		for i := 0; i < n; i++ {
			m[randomString(rng)] = randomTag(rng, depth-1)
		}
		return Compound(m)
	}
	return Tag{}
}

func randomTagOfType(rng *rand.Rand, id TagID) Tag {
	switch id {
	case TagByte:
		return Byte(int8(rng.Intn(256)))
	case TagInt:
		return Int(rng.Int31())
	case TagString:
		return String(randomString(rng))
	default:
		return Tag{}
	}
}

func randomString(rng *rand.Rand) string {
	runes := []rune{'a', 'b', 0, '日', '🙂'}
	n := rng.Intn(5)
	s := make([]rune, n)
	for i := range s {
		s[i] = runes[rng.Intn(len(runes))]
	}
	return string(s)
}

func TestNBTRoundTripNamed(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 200; i++ {
		n := rng.Intn(5)
		root := make(map[string]Tag, n)
		for j := 0; j < n; j++ {
			root[randomString(rng)] = randomTag(rng, 3)
		}
		doc := Document{Title: randomString(rng), Root: root}

		var buf bytes.Buffer
		if err := Encode(&buf, doc); err != nil {
			t.Fatalf("Encode: %v", err)
		}
		got, err := Decode(&buf)
		if err != nil {
			t.Fatalf("Decode: %v", err)
		}
		if got.Title != doc.Title {
			t.Fatalf("title round trip %q => %q", doc.Title, got.Title)
		}
		if !Compound(got.Root).Equal(Compound(doc.Root)) {
			t.Fatalf("document round trip mismatch for root %v => %v", doc.Root, got.Root)
		}
	}
}

func TestNBTRoundTripNetworked(t *testing.T) {
	rng := rand.New(rand.NewSource(9))
	for i := 0; i < 200; i++ {
		n := rng.Intn(5)
		root := make(map[string]Tag, n)
		for j := 0; j < n; j++ {
			root[randomString(rng)] = randomTag(rng, 3)
		}
		doc := Document{Root: root}

		var buf bytes.Buffer
		if err := EncodeNetwork(&buf, doc); err != nil {
			t.Fatalf("EncodeNetwork: %v", err)
		}
		got, err := DecodeNetwork(&buf)
		if err != nil {
			t.Fatalf("DecodeNetwork: %v", err)
		}
		if !Compound(got.Root).Equal(Compound(doc.Root)) {
			t.Fatalf("document round trip mismatch for root %v => %v", doc.Root, got.Root)
		}
	}
}

func TestModifiedUTF8NullAndSupplementary(t *testing.T) {
	s := "a\x00b\U0001F642z"
	enc := encodeModifiedUTF8(s)
	// NUL must be the overlong two-byte form, never a literal 0x00 byte.
	for _, b := range enc {
		if b == 0x00 {
			t.Fatalf("encoded NUL as literal 0x00 in %x", enc)
		}
	}
	got, err := decodeModifiedUTF8(enc)
	if err != nil {
		t.Fatalf("decodeModifiedUTF8: %v", err)
	}
	if got != s {
		t.Fatalf("round trip %q => %q", s, got)
	}
}

func TestInvalidTagID(t *testing.T) {
	// Compound body with a bogus tag id 0xFE before TAG_End.
	var buf bytes.Buffer
	buf.WriteByte(byte(TagCompound))
	buf.WriteByte(0x00)
	buf.WriteByte(0x00) // empty root name (u16 BE length 0)
	buf.WriteByte(0xFE) // invalid tag id
	buf.WriteByte(0x00)
	buf.WriteByte(0x01) // entry name length 1 (u16 BE)
	buf.WriteByte('x')
	_, err := Decode(&buf)
	if err != ErrInvalidTag {
		t.Fatalf("Decode with invalid tag id = %v, want ErrInvalidTag", err)
	}
}

package nbt

import "fmt"

// Pretty renders a Document as a human-readable tree for logs and debug
// output. It is never used on the wire.
func (d Document) Pretty() string {
	s := fmt.Sprintf("TAG_Compound(%q): %d entry(ies)\n{\n", d.Title, len(d.Root))
	for name, tag := range d.Root {
		s += fmt.Sprintf("  %s(%q): %s\n", tagName(tag.ID), name, tag.pretty(2))
	}
	return s + "}"
}

func tagName(id TagID) string {
	switch id {
	case TagByte:
		return "TAG_Byte"
	case TagShort:
		return "TAG_Short"
	case TagInt:
		return "TAG_Int"
	case TagLong:
		return "TAG_Long"
	case TagFloat:
		return "TAG_Float"
	case TagDouble:
		return "TAG_Double"
	case TagByteArray:
		return "TAG_ByteArray"
	case TagString:
		return "TAG_String"
	case TagList:
		return "TAG_List"
	case TagCompound:
		return "TAG_Compound"
	case TagIntArray:
		return "TAG_IntArray"
	case TagLongArray:
		return "TAG_LongArray"
	default:
		return "TAG_End"
	}
}

func (t Tag) pretty(indent int) string {
	switch t.ID {
	case TagByte:
		return fmt.Sprintf("%d", t.Byte)
	case TagShort:
		return fmt.Sprintf("%d", t.Short)
	case TagInt:
		return fmt.Sprintf("%d", t.Int)
	case TagLong:
		return fmt.Sprintf("%d", t.Long)
	case TagFloat:
		return fmt.Sprintf("%g", t.Float)
	case TagDouble:
		return fmt.Sprintf("%g", t.Double)
	case TagString:
		return t.Str
	case TagByteArray:
		return fmt.Sprintf("%d bytes", len(t.ByteArray))
	case TagIntArray:
		return fmt.Sprintf("%d ints", len(t.IntArray))
	case TagLongArray:
		return fmt.Sprintf("%d longs", len(t.LongArray))
	case TagList:
		return fmt.Sprintf("%d entries of type %s", len(t.List), tagName(t.ListType))
	case TagCompound:
		return fmt.Sprintf("%d entries", len(t.Compound))
	default:
		return ""
	}
}

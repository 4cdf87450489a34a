package worldprovider

import (
	"os"
	"path/filepath"
	"testing"

	"mcserver765/internal/nbt"
)

func TestFileProviderLoadsCodec(t *testing.T) {
	dir := t.TempDir()

	doc := nbt.Document{Title: "", Root: map[string]nbt.Tag{"foo": nbt.Int(1)}}
	f, err := os.Create(filepath.Join(dir, "dimension_codec.nbt"))
	if err != nil {
		t.Fatal(err)
	}
	// The on-disk codec is a named NBT document (root title present, even
	// if empty), not the networked flavor the wire uses elsewhere.
	if err := nbt.Encode(f, doc); err != nil {
		t.Fatal(err)
	}
	f.Close()

	p, err := NewFileProvider(dir)
	if err != nil {
		t.Fatalf("NewFileProvider: %v", err)
	}
	raw, err := p.RegistryCodec()
	if err != nil {
		t.Fatalf("RegistryCodec: %v", err)
	}
	want, err := os.ReadFile(filepath.Join(dir, "dimension_codec.nbt"))
	if err != nil {
		t.Fatal(err)
	}
	if string(raw) != string(want) {
		t.Fatal("expected RegistryCodec to return the file's bytes verbatim")
	}
}

func TestFileProviderMissingFile(t *testing.T) {
	_, err := NewFileProvider(t.TempDir())
	if err == nil {
		t.Fatal("expected error for missing dimension_codec.nbt")
	}
}

func TestEmptyChunk(t *testing.T) {
	p := &FileProvider{}
	c := p.EmptyChunk(0, 0)
	if c.Data != nil {
		t.Fatal("expected nil block data for an empty chunk")
	}
}

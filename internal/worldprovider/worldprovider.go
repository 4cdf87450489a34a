// Package worldprovider defines the collaborator boundary between the
// protocol core and actual world content. Chunk and registry payloads are
// opaque byte blobs here; nothing in this package simulates a world.
package worldprovider

import (
	"fmt"
	"os"
	"path/filepath"

	"mcserver765/internal/nbt"
)

// ChunkPayload is the opaque placeholder chunk data handed to
// ChunkDataUpdateLight. Heightmaps and Data are supplied whole by the
// Provider; this core never interprets their contents.
type ChunkPayload struct {
	Heightmaps nbt.Document
	Data       []byte
}

// Provider supplies the world data this core cannot itself simulate.
type Provider interface {
	// RegistryCodec returns the dimension/registry NBT blob sent during
	// Configuration as RegistryData.
	RegistryCodec() ([]byte, error)
	// EmptyChunk returns a placeholder chunk column for (x, z), sent
	// during the post-login chunk burst.
	EmptyChunk(x, z int32) ChunkPayload
}

// FileProvider is the default Provider: it reads a pre-built registry
// codec document from disk once at startup (a blocking read, acceptable
// since it happens before the listener accepts any connection) and
// otherwise synthesizes empty chunks in memory.
type FileProvider struct {
	codec []byte
}

// NewFileProvider loads dimension_codec.nbt from dataDir.
func NewFileProvider(dataDir string) (*FileProvider, error) {
	path := filepath.Join(dataDir, "dimension_codec.nbt")
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("worldprovider: reading %s: %w", path, err)
	}
	return &FileProvider{codec: raw}, nil
}

// RegistryCodec returns the codec bytes read at startup.
func (p *FileProvider) RegistryCodec() ([]byte, error) {
	return p.codec, nil
}

// EmptyChunk returns a chunk column with an empty heightmap compound and
// no block data, sufficient to satisfy a client's render distance without
// representing any real terrain.
func (p *FileProvider) EmptyChunk(x, z int32) ChunkPayload {
	return ChunkPayload{
		Heightmaps: nbt.Document{Root: map[string]nbt.Tag{}},
		Data:       nil,
	}
}

package pyramid

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"log/slog"
	"math"
	"os"

	"tiletexcore/internal/texlog"
	"tiletexcore/internal/texspec"
)

// LevelInput describes one MIP level to write: its geometry plus the
// tile-major float32 pixel data (row-major within a tile, tiles in
// row-major order across the level). Writing is test/tooling support
// only — authoring texture files is out of the core's scope, but a
// reader needs something real to read, same as go-libtiles ships
// pm.Writer beside pm.Reader for its cmd/tileutils converters.
type LevelInput struct {
	texspec.Level
	Pixels []float32
}

// Write serializes levels and attrs into a pyramid file at path.
func Write(path string, channels int, levels []LevelInput, attrs []texspec.Attribute, logger *slog.Logger) error {
	if logger == nil {
		logger = texlog.Default()
	}
	if len(levels) == 0 {
		return fmt.Errorf("pyramid: write %s: no levels", path)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("pyramid: create %s: %w", path, err)
	}
	defer f.Close()
	w := bufio.NewWriter(f)

	attrBlob := serializeAttrs(attrs)

	entries := make([]levelEntry, len(levels))
	offset := uint64(headerLength)
	levelDirLength := uint64(len(levels)) * levelEntrySize
	offset += levelDirLength
	attrOffset := offset
	offset += uint64(len(attrBlob))

	dataOffset := offset
	for i, lvl := range levels {
		entries[i] = levelEntry{
			Width: int32(lvl.Width), Height: int32(lvl.Height), Depth: int32(lvl.Depth),
			FullWidth: int32(lvl.FullWidth), FullHeight: int32(lvl.FullHeight),
			TileWidth: int32(lvl.TileWidth), TileHeight: int32(lvl.TileHeight), TileDepth: int32(lvl.TileDepth),
			DataOffset: dataOffset,
		}
		dataOffset += uint64(len(lvl.Pixels)) * 4
		logger.Debug("pyramid: level staged", "level", i, "width", lvl.Width, "height", lvl.Height, "pixels", len(lvl.Pixels))
	}

	hdr := header{
		Magic:          headerMagic,
		NumLevels:      uint32(len(levels)),
		Channels:       uint32(channels),
		LevelDirOffset: headerLength,
		LevelDirLength: levelDirLength,
		AttrOffset:     attrOffset,
		AttrLength:     uint64(len(attrBlob)),
	}

	if _, err := w.Write(serializeHeader(&hdr)); err != nil {
		return fmt.Errorf("pyramid: write header: %w", err)
	}
	if _, err := w.Write(serializeLevelDir(entries)); err != nil {
		return fmt.Errorf("pyramid: write level directory: %w", err)
	}
	if _, err := w.Write(attrBlob); err != nil {
		return fmt.Errorf("pyramid: write attributes: %w", err)
	}
	for i, lvl := range levels {
		buf := make([]byte, len(lvl.Pixels)*4)
		for j, v := range lvl.Pixels {
			binary.LittleEndian.PutUint32(buf[j*4:], math.Float32bits(v))
		}
		if _, err := w.Write(buf); err != nil {
			return fmt.Errorf("pyramid: write level %d tiles: %w", i, err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("pyramid: flush %s: %w", path, err)
	}
	logger.Debug("pyramid: wrote file", "path", path, "levels", len(levels))
	return nil
}

const levelEntrySize = 4*8 + 8 // eight int32 fields + one uint64

package pyramid

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"

	"tiletexcore/internal/texspec"
)

// Reader is the texio.Reader backend for the pyramid container
// format: a real multi-level tiled MIP file, read via io.ReaderAt so
// concurrent TextureFile instances never contend on a shared seek
// position.
type Reader struct {
	file    *os.File
	hdr     *header
	levels  []levelEntry
	attrs   []texspec.Attribute
	current int
}

func New() *Reader {
	return &Reader{}
}

func (r *Reader) Open(path string) (texspec.Spec, error) {
	f, err := os.Open(path)
	if err != nil {
		return texspec.Spec{}, fmt.Errorf("pyramid: open %s: %w", path, err)
	}

	hdrBuf := make([]byte, headerLength)
	if _, err := io.ReadFull(io.NewSectionReader(f, 0, headerLength), hdrBuf); err != nil {
		f.Close()
		return texspec.Spec{}, fmt.Errorf("pyramid: read header: %w", err)
	}
	hdr, err := deserializeHeader(hdrBuf)
	if err != nil {
		f.Close()
		return texspec.Spec{}, err
	}

	dirBuf := make([]byte, hdr.LevelDirLength)
	if _, err := io.ReadFull(io.NewSectionReader(f, int64(hdr.LevelDirOffset), int64(hdr.LevelDirLength)), dirBuf); err != nil {
		f.Close()
		return texspec.Spec{}, fmt.Errorf("pyramid: read level directory: %w", err)
	}
	levels, err := deserializeLevelDir(dirBuf, int(hdr.NumLevels))
	if err != nil {
		f.Close()
		return texspec.Spec{}, err
	}

	attrBuf := make([]byte, hdr.AttrLength)
	if _, err := io.ReadFull(io.NewSectionReader(f, int64(hdr.AttrOffset), int64(hdr.AttrLength)), attrBuf); err != nil {
		f.Close()
		return texspec.Spec{}, fmt.Errorf("pyramid: read attributes: %w", err)
	}
	attrs, err := deserializeAttrs(attrBuf)
	if err != nil {
		f.Close()
		return texspec.Spec{}, err
	}

	if len(levels) == 0 {
		f.Close()
		return texspec.Spec{}, fmt.Errorf("pyramid: %s has no levels", path)
	}

	r.file, r.hdr, r.levels, r.attrs, r.current = f, hdr, levels, attrs, 0
	return r.specAt(0), nil
}

func (r *Reader) specAt(level int) texspec.Spec {
	spec := texspec.Spec{Level: levelFromEntry(r.levels[level], int(r.hdr.Channels))}
	if level == 0 {
		spec.Attributes = r.attrs
	}
	return spec
}

func (r *Reader) SeekSubimage(level int) (texspec.Spec, bool) {
	if level < 0 || level >= len(r.levels) {
		return texspec.Spec{}, false
	}
	r.current = level
	return r.specAt(level), true
}

func (r *Reader) CurrentSubimage() int { return r.current }

func (r *Reader) ReadTile(x, y, z int, format texspec.PixelFormat, dst []float32) bool {
	if format != texspec.Float32 {
		return false
	}
	lvl := r.levels[r.current]
	channels := int(r.hdr.Channels)
	if x%int(lvl.TileWidth) != 0 || y%int(lvl.TileHeight) != 0 || z%int(lvl.TileDepth) != 0 {
		return false
	}
	tilesPerRow := (int(lvl.Width) + int(lvl.TileWidth) - 1) / int(lvl.TileWidth)
	tileCols := x / int(lvl.TileWidth)
	tileRows := y / int(lvl.TileHeight)
	tileIndex := tileRows*tilesPerRow + tileCols
	tilePixels := int(lvl.TileWidth) * int(lvl.TileHeight) * int(lvl.TileDepth)
	byteOffset := lvl.DataOffset + uint64(tileIndex*tilePixels*channels*4)

	buf := make([]byte, tilePixels*channels*4)
	if _, err := io.ReadFull(io.NewSectionReader(r.file, int64(byteOffset), int64(len(buf))), buf); err != nil {
		return false
	}
	for i := range dst[:tilePixels*channels] {
		dst[i] = decodeFloat32LE(buf[i*4:])
	}
	return true
}

func (r *Reader) Close() error {
	if r.file == nil {
		return nil
	}
	err := r.file.Close()
	r.file = nil
	return err
}

func (r *Reader) FormatName() string { return "pyramid" }

func decodeFloat32LE(b []byte) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(b))
}

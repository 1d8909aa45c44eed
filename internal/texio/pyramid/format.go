// Package pyramid implements texio.Reader (and, for test fixtures
// and the cmd/ tooling, a Writer) over a real multi-level tiled MIP
// container: a fixed header, a level directory, an attribute blob,
// and per-level tile data addressed by offset. The on-disk layout is
// modeled on eak1mov-go-libtiles/pm's header+directory+offset design,
// adapted from a zoom-level/tile-xy pyramid to a MIP-level/tile-xyz
// one.
package pyramid

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"tiletexcore/internal/texspec"
)

const headerMagic uint64 = 0x315854544954 // "TITTX1"

const headerLength = 48

// header is the fixed-size file prologue, serialized with
// encoding/binary in the style of pm/spec.Header.
type header struct {
	Magic          uint64
	NumLevels      uint32
	Channels       uint32
	LevelDirOffset uint64
	LevelDirLength uint64
	AttrOffset     uint64
	AttrLength     uint64
}

var ErrInvalidHeader = errors.New("pyramid: invalid file header")

func serializeHeader(h *header) []byte {
	buf := make([]byte, 0, headerLength)
	w := bytes.NewBuffer(buf)
	binary.Write(w, binary.LittleEndian, h)
	return w.Bytes()
}

func deserializeHeader(buf []byte) (*header, error) {
	var h header
	if err := binary.Read(bytes.NewReader(buf), binary.LittleEndian, &h); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidHeader, err)
	}
	if h.Magic != headerMagic {
		return nil, ErrInvalidHeader
	}
	return &h, nil
}

// levelEntry is one level directory record.
type levelEntry struct {
	Width, Height, Depth             int32
	FullWidth, FullHeight            int32
	TileWidth, TileHeight, TileDepth int32
	DataOffset                       uint64
}

func serializeLevelDir(entries []levelEntry) []byte {
	var buf bytes.Buffer
	for _, e := range entries {
		binary.Write(&buf, binary.LittleEndian, e)
	}
	return buf.Bytes()
}

func deserializeLevelDir(buf []byte, n int) ([]levelEntry, error) {
	entries := make([]levelEntry, n)
	r := bytes.NewReader(buf)
	for i := range entries {
		if err := binary.Read(r, binary.LittleEndian, &entries[i]); err != nil {
			return nil, fmt.Errorf("pyramid: level directory: %w", err)
		}
	}
	return entries, nil
}

func levelFromEntry(e levelEntry, channels int) texspec.Level {
	return texspec.Level{
		Width: int(e.Width), Height: int(e.Height), Depth: int(e.Depth),
		FullWidth: int(e.FullWidth), FullHeight: int(e.FullHeight),
		TileWidth: int(e.TileWidth), TileHeight: int(e.TileHeight), TileDepth: int(e.TileDepth),
		Channels: channels,
		Format:   texspec.Float32,
	}
}

// serializeAttrs / deserializeAttrs encode the header attribute list
// as a simple length-prefixed record stream: this is the richer
// metadata (textureformat, wrapmodes, worldtocamera, ...) that a real
// image-IO library would surface via its own attribute table.
func serializeAttrs(attrs []texspec.Attribute) []byte {
	var buf bytes.Buffer
	binary.Write(&buf, binary.LittleEndian, uint32(len(attrs)))
	for _, a := range attrs {
		writeString(&buf, a.Name)
		binary.Write(&buf, binary.LittleEndian, uint32(a.Type))
		binary.Write(&buf, binary.LittleEndian, uint32(a.Count))
		binary.Write(&buf, binary.LittleEndian, uint32(len(a.Data)))
		buf.Write(a.Data)
	}
	return buf.Bytes()
}

func deserializeAttrs(buf []byte) ([]texspec.Attribute, error) {
	r := bytes.NewReader(buf)
	var n uint32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return nil, fmt.Errorf("pyramid: attributes: %w", err)
	}
	attrs := make([]texspec.Attribute, 0, n)
	for i := uint32(0); i < n; i++ {
		name, err := readString(r)
		if err != nil {
			return nil, fmt.Errorf("pyramid: attributes: %w", err)
		}
		var typ, count, dlen uint32
		if err := binary.Read(r, binary.LittleEndian, &typ); err != nil {
			return nil, err
		}
		if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
			return nil, err
		}
		if err := binary.Read(r, binary.LittleEndian, &dlen); err != nil {
			return nil, err
		}
		data := make([]byte, dlen)
		if _, err := io.ReadFull(r, data); err != nil {
			return nil, fmt.Errorf("pyramid: attribute data: %w", err)
		}
		attrs = append(attrs, texspec.Attribute{
			Name: name, Type: texspec.AttrType(typ), Count: int(count), Data: data,
		})
	}
	return attrs, nil
}

func writeString(buf *bytes.Buffer, s string) {
	binary.Write(buf, binary.LittleEndian, uint32(len(s)))
	buf.WriteString(s)
}

func readString(r *bytes.Reader) (string, error) {
	var n uint32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return "", err
	}
	data := make([]byte, n)
	if _, err := io.ReadFull(r, data); err != nil {
		return "", err
	}
	return string(data), nil
}

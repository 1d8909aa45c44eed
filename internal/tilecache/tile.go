// Package tilecache implements the Tile and TileCache modules: a
// bounded, concurrency-safe map from (file, level, tile origin) to
// decoded texel blocks, evicted with clock-sweep LRU against a
// max-memory budget.
package tilecache

import (
	"sync"

	"tiletexcore/internal/texfile"
	"tiletexcore/internal/texspec"
)

// ID is the immutable key identifying one decoded tile: a file
// identity (the *texfile.File pointer, which the registry interns per
// path) plus its MIP level and tile-aligned origin.
type ID struct {
	File           *texfile.File
	Level          int
	X0, Y0, Z0     int
}

// Tile is the decoded texel block for one ID. Pixels is laid out
// row-major within a tile, slice-major across z, one float32 per
// channel — the canonical element format this baseline uses
// unconditionally (an 8-bit fast path is a permitted future
// extension, not implemented here).
type Tile struct {
	id    ID
	level texspec.Level

	mu    sync.Mutex
	used  bool
	valid bool

	pixels []float32
}

// newTile allocates Pixels to the tile's exact size and decodes it
// through the owning file's reader. A decode failure marks the tile
// invalid but keeps the (garbage) allocation, so the cache still
// indexes the failed tile and repeated misses don't re-thrash the
// reader.
func newTile(id ID, level texspec.Level) *Tile {
	t := &Tile{
		id:     id,
		level:  level,
		used:   true,
		pixels: make([]float32, level.TilePixels()*level.Channels),
	}
	err := id.File.ReadTile(id.Level, id.X0, id.Y0, id.Z0, texspec.Float32, t.pixels)
	t.valid = err == nil
	return t
}

// ID returns the tile's identity.
func (t *Tile) ID() ID { return t.id }

// Valid reports whether the decode that constructed this tile
// succeeded.
func (t *Tile) Valid() bool { return t.valid }

// Data returns the tile's decoded pixel buffer. Only the used bit
// mutates after construction — callers must not retain the returned
// slice across a cache eviction, but it is never resized.
func (t *Tile) Data() []float32 { return t.pixels }

// SizeBytes returns the tile's footprint in the cache's memory
// budget.
func (t *Tile) SizeBytes() int64 { return int64(len(t.pixels)) * 4 }

func (t *Tile) use() {
	t.mu.Lock()
	t.used = true
	t.mu.Unlock()
}

// release is the TileCache's clock-sweep step: if used, clear it and
// spare the tile; otherwise report evictable=true.
func (t *Tile) release() (evictable bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.used {
		t.used = false
		return false
	}
	return true
}

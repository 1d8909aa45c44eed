package tilecache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tiletexcore/internal/texfile"
	"tiletexcore/internal/texio"
	"tiletexcore/internal/texspec"
)

// scriptedReader decodes every tile to a constant fill value, except
// origins listed in failAt, which it reports as failed reads without
// touching dst.
type scriptedReader struct {
	fill    float32
	failAt  map[[3]int]bool
	current int
}

func (r *scriptedReader) Open(path string) (texspec.Spec, error) {
	return texspec.Spec{Level: texspec.Level{
		Width: 8, Height: 8, Depth: 1,
		TileWidth: 4, TileHeight: 4, TileDepth: 1,
		Channels: 1,
	}}, nil
}

func (r *scriptedReader) SeekSubimage(level int) (texspec.Spec, bool) {
	if level != 0 {
		return texspec.Spec{}, false
	}
	r.current = level
	return texspec.Spec{}, true
}

func (r *scriptedReader) CurrentSubimage() int { return r.current }

func (r *scriptedReader) ReadTile(x, y, z int, format texspec.PixelFormat, dst []float32) bool {
	if r.failAt[[3]int{x, y, z}] {
		return false
	}
	for i := range dst {
		dst[i] = r.fill
	}
	return true
}

func (r *scriptedReader) Close() error       { return nil }
func (r *scriptedReader) FormatName() string { return "scripted" }

func fileWith(t *testing.T, r *scriptedReader) *texfile.File {
	t.Helper()
	reg := texfile.New(func(path string) (texio.Reader, bool) { return r, true }, nil)
	f := reg.Find("scripted.tx")
	require.False(t, f.Broken())
	return f
}

func level0() texspec.Level {
	return texspec.Level{
		Width: 8, Height: 8, Depth: 1,
		TileWidth: 4, TileHeight: 4, TileDepth: 1,
		Channels: 1,
	}
}

func TestFindDecodesAndCachesOnMiss(t *testing.T) {
	f := fileWith(t, &scriptedReader{fill: 3})
	c := New(1 << 20)

	id := ID{File: f, Level: 0, X0: 0, Y0: 0, Z0: 0}
	tile := c.Find(id, level0())
	require.True(t, tile.Valid())
	for _, v := range tile.Data() {
		assert.Equal(t, float32(3), v)
	}
}

func TestFindIsIdempotentOnHit(t *testing.T) {
	f := fileWith(t, &scriptedReader{fill: 1})
	c := New(1 << 20)

	id := ID{File: f, Level: 0, X0: 0, Y0: 0, Z0: 0}
	a := c.Find(id, level0())
	b := c.Find(id, level0())
	assert.Same(t, a, b)
}

func TestFindCachesFailedDecodeWithoutRetrying(t *testing.T) {
	reader := &scriptedReader{fill: 1, failAt: map[[3]int]bool{{0, 0, 0}: true}}
	f := fileWith(t, reader)
	c := New(1 << 20)

	id := ID{File: f, Level: 0, X0: 0, Y0: 0, Z0: 0}
	tile := c.Find(id, level0())
	assert.False(t, tile.Valid())

	// Second Find for the same id is a cache hit: it returns the same
	// invalid tile rather than re-reading.
	again := c.Find(id, level0())
	assert.Same(t, tile, again)
}

func TestEnforceTileBudgetEvictsIdleTiles(t *testing.T) {
	f := fileWith(t, &scriptedReader{fill: 2})
	lvl := level0()
	tileBytes := int64(lvl.TilePixels()*lvl.Channels) * 4

	c := New(2 * tileBytes)

	a := ID{File: f, Level: 0, X0: 0, Y0: 0, Z0: 0}
	b := ID{File: f, Level: 0, X0: 4, Y0: 0, Z0: 0}
	ta := c.Find(a, lvl)
	tb := c.Find(b, lvl)
	// Both tiles are "used" right after Find; clear it so the next
	// insert's sweep can evict one of them.
	ta.release()
	tb.release()

	d := ID{File: f, Level: 0, X0: 0, Y0: 4, Z0: 0}
	c.Find(d, lvl)

	assert.LessOrEqual(t, c.MemoryUsedBytes(), 2*tileBytes)
}

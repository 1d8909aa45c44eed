package texfile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tiletexcore/internal/texio"
	"tiletexcore/internal/texspec"
)

// fakeReader is a minimal in-memory texio.Reader for registry/file
// tests that don't need real tile decoding.
type fakeReader struct {
	opens   *int
	closes  *int
	broken  bool
	nlevels int
	current int
}

func (r *fakeReader) Open(path string) (texspec.Spec, error) {
	*r.opens++
	if r.broken {
		return texspec.Spec{}, assert.AnError
	}
	r.current = 0
	return texspec.Spec{Level: texspec.Level{Width: 4, Height: 4, Depth: 1, TileWidth: 4, TileHeight: 4, TileDepth: 1, Channels: 3}}, nil
}

func (r *fakeReader) SeekSubimage(level int) (texspec.Spec, bool) {
	if level >= r.nlevels {
		return texspec.Spec{}, false
	}
	r.current = level
	return texspec.Spec{Level: texspec.Level{Width: 4, Height: 4, Depth: 1, TileWidth: 4, TileHeight: 4, TileDepth: 1, Channels: 3}}, true
}

func (r *fakeReader) CurrentSubimage() int { return r.current }

func (r *fakeReader) ReadTile(x, y, z int, format texspec.PixelFormat, dst []float32) bool {
	for i := range dst {
		dst[i] = 1
	}
	return true
}

func (r *fakeReader) Close() error {
	*r.closes++
	return nil
}

func (r *fakeReader) FormatName() string { return "fake" }

func countingFactory(opens, closes *int, broken bool) Factory {
	return func(path string) (texio.Reader, bool) {
		return &fakeReader{opens: opens, closes: closes, broken: broken, nlevels: 1}, true
	}
}

func TestFindIsIdempotent(t *testing.T) {
	var opens, closes int
	reg := New(countingFactory(&opens, &closes, false), nil)
	a := reg.Find("texA.tx")
	b := reg.Find("texA.tx")
	assert.Same(t, a, b)
}

func TestFindOpensDistinctPaths(t *testing.T) {
	var opens, closes int
	reg := New(countingFactory(&opens, &closes, false), nil)
	reg.Find("a.tx")
	reg.Find("b.tx")
	assert.Equal(t, 2, opens)
	assert.Equal(t, 2, reg.OpenFilesCount())
}

func TestEnforceFileBudgetClosesIdleFiles(t *testing.T) {
	var opens, closes int
	reg := New(countingFactory(&opens, &closes, false), nil)
	reg.SetMaxOpenFiles(2)

	a := reg.Find("a.tx")
	b := reg.Find("b.tx")
	// Neither a nor b has been touched since Find (which sets used),
	// so they're both "used" on the first sweep pass and survive it.
	a.Release(func() {})
	b.Release(func() {})

	// Third file should force the budget check to close an idle one.
	reg.Find("c.tx")
	assert.LessOrEqual(t, reg.OpenFilesCount(), 2)
}

func TestBrokenFileNeverOpens(t *testing.T) {
	var opens, closes int
	reg := New(countingFactory(&opens, &closes, true), nil)
	f := reg.Find("broken.tx")
	require.True(t, f.Broken())
	assert.False(t, f.IsOpen())
}

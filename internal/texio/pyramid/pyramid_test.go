package pyramid

import (
	"path/filepath"
	"testing"

	gcmp "github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tiletexcore/internal/texspec"
)

func buildFixture(t *testing.T) string {
	t.Helper()
	// Level 0: 4x4, one 4x4 tile, 3 channels, texel (x,y) = (x, y, 9).
	lvl0 := LevelInput{
		Level: texspec.Level{
			Width: 4, Height: 4, Depth: 1,
			FullWidth: 4, FullHeight: 4,
			TileWidth: 4, TileHeight: 4, TileDepth: 1,
		},
	}
	lvl0.Pixels = make([]float32, 4*4*3)
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			i := (y*4 + x) * 3
			lvl0.Pixels[i+0] = float32(x)
			lvl0.Pixels[i+1] = float32(y)
			lvl0.Pixels[i+2] = 9
		}
	}
	// Level 1: 2x2, one 2x2 tile.
	lvl1 := LevelInput{
		Level: texspec.Level{
			Width: 2, Height: 2, Depth: 1,
			FullWidth: 2, FullHeight: 2,
			TileWidth: 2, TileHeight: 2, TileDepth: 1,
		},
		Pixels: make([]float32, 2*2*3),
	}

	attrs := []texspec.Attribute{
		{Name: "textureformat", Type: texspec.AttrString, Count: 1, Data: []byte("Plain Texture")},
		{Name: "wrapmodes", Type: texspec.AttrString, Count: 1, Data: []byte("periodic,clamp")},
	}

	path := filepath.Join(t.TempDir(), "fixture.ttx")
	require.NoError(t, Write(path, 3, []LevelInput{lvl0, lvl1}, attrs, nil))
	return path
}

func TestOpenReadsLevelZeroSpecAndAttributes(t *testing.T) {
	path := buildFixture(t)
	r := New()
	spec, err := r.Open(path)
	require.NoError(t, err)
	defer r.Close()

	assert.Equal(t, 4, spec.Width)
	assert.Equal(t, 4, spec.Height)
	assert.Equal(t, 3, spec.Channels)

	attr, ok := spec.FindAttribute("wrapmodes")
	require.True(t, ok)
	assert.Equal(t, "periodic,clamp", string(attr.Data))
}

func TestAttributeDirectoryRoundTrips(t *testing.T) {
	attrs := []texspec.Attribute{
		{Name: "textureformat", Type: texspec.AttrString, Count: 1, Data: []byte("Plain Texture")},
		{Name: "wrapmodes", Type: texspec.AttrString, Count: 1, Data: []byte("periodic,clamp")},
	}
	blob := serializeAttrs(attrs)
	got, err := deserializeAttrs(blob)
	require.NoError(t, err)
	if !gcmp.Equal(attrs, got) {
		t.Errorf("deserializeAttrs(serializeAttrs(attrs)) != attrs:\n%s", gcmp.Diff(attrs, got))
	}
}

func TestSeekSubimageWalksLevels(t *testing.T) {
	path := buildFixture(t)
	r := New()
	_, err := r.Open(path)
	require.NoError(t, err)
	defer r.Close()

	spec1, ok := r.SeekSubimage(1)
	require.True(t, ok)
	assert.Equal(t, 2, spec1.Width)
	assert.Equal(t, 1, r.CurrentSubimage())

	_, ok = r.SeekSubimage(2)
	assert.False(t, ok)
}

func TestReadTileReturnsStoredTexels(t *testing.T) {
	path := buildFixture(t)
	r := New()
	_, err := r.Open(path)
	require.NoError(t, err)
	defer r.Close()

	dst := make([]float32, 4*4*3)
	require.True(t, r.ReadTile(0, 0, 0, texspec.Float32, dst))

	// texel (2,1) -> offset (1*4+2)*3
	off := (1*4 + 2) * 3
	assert.Equal(t, float32(2), dst[off+0])
	assert.Equal(t, float32(1), dst[off+1])
	assert.Equal(t, float32(9), dst[off+2])
}

func TestReadTileRejectsUnalignedOrigin(t *testing.T) {
	path := buildFixture(t)
	r := New()
	_, err := r.Open(path)
	require.NoError(t, err)
	defer r.Close()

	dst := make([]float32, 4*4*3)
	assert.False(t, r.ReadTile(1, 0, 0, texspec.Float32, dst))
}

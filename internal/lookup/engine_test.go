package lookup

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"tiletexcore/internal/texio"
	"tiletexcore/internal/texspec"
	"tiletexcore/internal/wrap"
)

// constReader serves one 4x4, single-tile image whose every texel has
// the same channel values, exercising end-to-end lookup scenarios
// without a real codec.
type constReader struct {
	channels int
	texel    []float32
}

func (r *constReader) Open(path string) (texspec.Spec, error) {
	return texspec.Spec{Level: texspec.Level{
		Width: 4, Height: 4, Depth: 1,
		TileWidth: 4, TileHeight: 4, TileDepth: 1,
		Channels: r.channels,
	}}, nil
}

func (r *constReader) SeekSubimage(level int) (texspec.Spec, bool) {
	if level != 0 {
		return texspec.Spec{}, false
	}
	return texspec.Spec{}, true
}

func (r *constReader) CurrentSubimage() int { return 0 }

func (r *constReader) ReadTile(x, y, z int, format texspec.PixelFormat, dst []float32) bool {
	for i := range dst {
		dst[i] = r.texel[i%r.channels]
	}
	return true
}

func (r *constReader) Close() error       { return nil }
func (r *constReader) FormatName() string { return "const" }

func engineWith(reader texio.Reader) *Engine {
	return New(func(path string) (texio.Reader, bool) { return reader, true }, 1<<20, nil)
}

func TestTextureSingleTileNearestHit(t *testing.T) {
	eng := engineWith(&constReader{channels: 3, texel: []float32{0.25, 0.5, 0.75}})

	opts := DefaultOptions()
	opts.NChannels = 3
	runflags := []bool{true}
	s := []float64{0.5}
	tt := []float64{0.5}
	result := make([]float64, 3)

	eng.Texture("tex.tx", opts, runflags, 0, 0, s, tt, nil, nil, nil, nil, result)
	assert.InDeltaSlice(t, []float64{0.25, 0.5, 0.75}, result, 1e-6)
}

func TestTextureOutOfRangeSentinel(t *testing.T) {
	eng := engineWith(&constReader{channels: 3, texel: []float32{0.25, 0.5, 0.75}})

	opts := DefaultOptions()
	opts.NChannels = 3
	runflags := []bool{true}
	s := []float64{-0.1}
	tt := []float64{0.5}
	result := []float64{9, 9, 9}

	eng.Texture("tex.tx", opts, runflags, 0, 0, s, tt, nil, nil, nil, nil, result)
	assert.Equal(t, 1.0, result[0])
}

func TestTextureMissingFileFillsWithFill(t *testing.T) {
	eng := New(func(path string) (texio.Reader, bool) { return nil, false }, 1<<20, nil)

	opts := DefaultOptions()
	opts.NChannels = 4
	opts.Fill = UniformFill(0.125)
	opts.Alpha = make([]float64, 2)
	runflags := []bool{true, true}
	s := []float64{0.1, 0.1}
	tt := []float64{0.1, 0.1}
	result := make([]float64, 8)

	eng.Texture("nope.tx", opts, runflags, 0, 1, s, tt, nil, nil, nil, nil, result)
	for _, v := range result {
		assert.Equal(t, 0.125, v)
	}
	assert.Equal(t, []float64{0.125, 0.125}, opts.Alpha)
}

func TestTextureChannelsBeyondFileChannelsFillsTrailing(t *testing.T) {
	eng := engineWith(&constReader{channels: 3, texel: []float32{0.1, 0.2, 0.3}})

	opts := DefaultOptions()
	opts.FirstChannel = 2
	opts.NChannels = 2
	opts.Fill = UniformFill(-1)
	runflags := []bool{true}
	s := []float64{0.5}
	tt := []float64{0.5}
	result := make([]float64, 2)

	eng.Texture("tex.tx", opts, runflags, 0, 0, s, tt, nil, nil, nil, nil, result)
	assert.InDelta(t, 0.3, result[0], 1e-6)
	assert.Equal(t, -1.0, result[1])
}

func TestOpenFilesCountRespectsMaxOpenFiles(t *testing.T) {
	eng := engineWith(&constReader{channels: 1, texel: []float32{1}})
	eng.SetMaxOpenFiles(2)

	opts := DefaultOptions()
	opts.NChannels = 1
	runflags := []bool{true}
	s := []float64{0.5}
	tt := []float64{0.5}
	result := make([]float64, 1)

	eng.Texture("a.tx", opts, runflags, 0, 0, s, tt, nil, nil, nil, nil, result)
	eng.Texture("b.tx", opts, runflags, 0, 0, s, tt, nil, nil, nil, nil, result)
	eng.Texture("c.tx", opts, runflags, 0, 0, s, tt, nil, nil, nil, nil, result)

	assert.LessOrEqual(t, eng.OpenFilesCount(), 2)
}

func TestGetTextureInfoResolutionAndType(t *testing.T) {
	eng := engineWith(&constReader{channels: 3, texel: []float32{1, 1, 1}})

	var res [2]int
	assert.True(t, eng.GetTextureInfo("tex.tx", "resolution", &res))
	assert.Equal(t, [2]int{4, 4}, res)

	var typ string
	assert.True(t, eng.GetTextureInfo("tex.tx", "texturetype", &typ))
	assert.Equal(t, "Plain Texture", typ)

	var channels int
	assert.True(t, eng.GetTextureInfo("tex.tx", "channels", &channels))
	assert.Equal(t, 3, channels)
}

func TestTextureInheritsFileWrapModesOntoOptions(t *testing.T) {
	eng := engineWith(&wrapReader{})

	opts := DefaultOptions()
	opts.NChannels = 1
	runflags := []bool{true}
	s := []float64{0.5}
	tt := []float64{0.5}
	result := make([]float64, 1)

	eng.Texture("wrapped.tx", opts, runflags, 0, 0, s, tt, nil, nil, nil, nil, result)
	assert.Equal(t, wrap.Periodic, opts.SWrap, "caller should observe the file's declared swrap")
	assert.Equal(t, wrap.Clamp, opts.TWrap, "caller should observe the file's declared twrap")
}

func TestGetTextureInfoUnknownKeyFails(t *testing.T) {
	eng := engineWith(&constReader{channels: 3, texel: []float32{1, 1, 1}})
	var out string
	assert.False(t, eng.GetTextureInfo("tex.tx", "not_a_real_attribute", &out))
}

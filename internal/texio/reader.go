// Package texio defines the narrow interface the texture file layer
// consumes from an underlying image-decoding library (out of scope
// per the core's charter — decoding itself is never implemented
// here, only the contract two concrete backends satisfy).
package texio

import "tiletexcore/internal/texspec"

// Reader opens one texture file and serves its subimages (MIP
// levels) and tiles. Implementations are not required to be
// concurrency-safe; TextureFile serializes access to its Reader.
type Reader interface {
	// Open opens the file and returns the spec of its first subimage.
	Open(path string) (texspec.Spec, error)

	// SeekSubimage moves the current subimage to level and returns
	// its spec. Returns (Spec{}, false) when level has no subimage,
	// which callers use to detect the end of the MIP chain.
	SeekSubimage(level int) (texspec.Spec, bool)

	// CurrentSubimage returns the level last seeked to (0 after Open).
	CurrentSubimage() int

	// ReadTile reads the tile whose upper-left corner is (x, y, z) at
	// the current subimage into dst as one float32 per channel, the
	// only pixel format this baseline's Tile ever requests. dst must
	// already be sized for tile_w*tile_h*tile_d*channels floats.
	ReadTile(x, y, z int, format texspec.PixelFormat, dst []float32) bool

	// Close releases any OS-level resources. Open may be called again
	// afterwards.
	Close() error

	// FormatName identifies the underlying encoding, e.g. "openexr",
	// used only to detect OpenEXR-class cube map orientation.
	FormatName() string
}

// Create constructs a Reader for path by trying the supplied factories
// in order and returning the first one that claims path, mirroring
// ImageInput::create's behavior of returning nil rather than erroring
// when no backend claims the path. searchPath is not consulted: path
// is passed to each factory unchanged.
func Create(path string, searchPath []string, factories ...func(path string) (Reader, bool)) Reader {
	for _, f := range factories {
		if r, ok := f(path); ok {
			return r
		}
	}
	return nil
}

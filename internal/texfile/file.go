// Package texfile implements the TextureFile and FileRegistry
// modules: lazy-opened, reference-counted texture files bounded by a
// max-open-files budget enforced with clock-sweep LRU.
package texfile

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"tiletexcore/internal/mathutil"
	"tiletexcore/internal/texlog"
	"tiletexcore/internal/texspec"
	"tiletexcore/internal/texio"
	"tiletexcore/internal/wrap"
)

var (
	ErrFileNotFound = errors.New("texfile: no reader backend claims this path")
	ErrFileBroken   = errors.New("texfile: file is broken")
	ErrReadFailed   = errors.New("texfile: tile read failed")
)

// Factory constructs the texio.Reader backend for a path, or returns
// (nil, false) when no backend claims it — mirroring
// ImageInput::create's "no input found" case.
type Factory func(path string) (texio.Reader, bool)

// File is one instance per distinct path, shared by the registry and
// any outstanding Tile that references it. Its open handle may be
// acquired and released many times; specs and parsed header
// attributes are filled exactly once, on the first successful open,
// and are immutable thereafter.
type File struct {
	path    string
	factory Factory

	mu     sync.Mutex
	handle texio.Reader
	broken bool
	used   bool

	specs      []texspec.Spec
	currentLvl int
	header     headerInfo
}

func newFile(path string, factory Factory) *File {
	return &File{path: path, factory: factory, used: true}
}

// Path returns the file's interned path.
func (f *File) Path() string { return f.path }

// Broken reports whether a prior open attempt failed. Broken status
// is sticky: it never clears.
func (f *File) Broken() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.broken
}

// Use marks the file as recently accessed, sparing it from the next
// release() sweep pass.
func (f *File) Use() {
	f.mu.Lock()
	f.used = true
	f.mu.Unlock()
}

// Open is idempotent: already-open or already-broken files return
// immediately. onOpened (here) and Release's onClosed let the registry
// track open_files_count without File reaching back into it directly.
func (f *File) Open(logger *slog.Logger, c2w mathutil.Mat4, onOpened func()) error {
	if logger == nil {
		logger = texlog.Default()
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.handle != nil || f.broken {
		if f.broken {
			return fmt.Errorf("%s: %w", f.path, ErrFileBroken)
		}
		return nil
	}

	handle, ok := f.factory(f.path)
	if !ok || handle == nil {
		f.broken = true
		return fmt.Errorf("%s: %w", f.path, ErrFileNotFound)
	}

	spec0, err := handle.Open(f.path)
	if err != nil {
		f.broken = true
		return fmt.Errorf("%s: %w", f.path, ErrFileBroken)
	}
	f.handle = handle
	f.currentLvl = 0
	f.used = true
	onOpened()

	if len(f.specs) > 0 {
		// Re-opened a file whose metadata was already parsed once.
		return nil
	}

	specs := []texspec.Spec{spec0}
	nsubimages := 1
	for {
		next, ok := handle.SeekSubimage(nsubimages)
		if !ok {
			break
		}
		if next.Channels != spec0.Channels {
			return fmt.Errorf("%s: level %d channel count %d does not match level 0 count %d",
				f.path, nsubimages, next.Channels, spec0.Channels)
		}
		specs = append(specs, next)
		nsubimages++
	}
	if nsubimages != len(specs) {
		panic("texfile: subimage count invariant violated")
	}
	handle.SeekSubimage(0)
	f.currentLvl = 0

	logger.Debug("texfile: opened", "path", f.path, "subimages", len(specs))
	f.specs = specs
	f.header = parseHeader(specs[0], handle.FormatName(), c2w)
	return nil
}

// ReadTile seeks to level if needed and reads one tile's texels
// through the currently open handle. It does not reopen a file whose
// handle has been released: on a closed handle it fails with
// ErrFileBroken (Registry.Find is what reopens a file). A read failure
// never latches Broken — only the tile is marked invalid by the
// caller.
func (f *File) ReadTile(level, x, y, z int, format texspec.PixelFormat, dst []float32) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.handle == nil {
		return fmt.Errorf("%s: %w", f.path, ErrFileBroken)
	}
	if f.currentLvl != level {
		if _, ok := f.handle.SeekSubimage(level); !ok {
			return fmt.Errorf("%s: level %d: %w", f.path, level, ErrReadFailed)
		}
		f.currentLvl = level
	}
	if !f.handle.ReadTile(x, y, z, format, dst) {
		return fmt.Errorf("%s: tile (%d,%d,%d,%d): %w", f.path, level, x, y, z, ErrReadFailed)
	}
	return nil
}

// Release is the two-phase clock-sweep step: a used file is spared
// (and its used bit cleared); an idle open file has its handle closed
// and onClosed is invoked so the registry can decrement its budget
// counter. Metadata (specs, header) is never discarded.
func (f *File) Release(onClosed func()) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.used {
		f.used = false
		return
	}
	if f.handle != nil {
		f.handle.Close()
		f.handle = nil
		onClosed()
	}
}

// IsOpen reports whether the file currently holds an open handle.
func (f *File) IsOpen() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.handle != nil
}

// Spec returns the spec for level, which must be < NumLevels().
func (f *File) Spec(level int) texspec.Spec {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.specs[level]
}

// NumLevels returns the number of MIP levels parsed at first open.
func (f *File) NumLevels() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.specs)
}

// Wrap returns the file's declared (swrap, twrap).
func (f *File) Wrap() (wrap.Mode, wrap.Mode) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.header.swrap, f.header.twrap
}

// Format returns the file's parsed texture kind.
func (f *File) Format() Format {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.header.texformat
}

// CubeLayout returns the parsed cube layout (meaningful only for
// CubeFaceEnvironment textures).
func (f *File) CubeLayout() CubeLayout {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.header.cubeLayout
}

// YUp reports the encoder-derived cube-map orientation flag.
func (f *File) YUp() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.header.yUp
}

// LocalMatrix and ProjMatrix return the parsed worldtocamera/
// worldtoscreen attributes composed with the registry's
// common-to-world baseline, or the zero matrix when the corresponding
// attribute is absent.
func (f *File) LocalMatrix() mathutil.Mat4 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.header.mLocal
}

func (f *File) ProjMatrix() mathutil.Mat4 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.header.mProj
}

package lookup

import (
	"math"

	"tiletexcore/internal/texfile"
	"tiletexcore/internal/tilecache"
	"tiletexcore/internal/wrap"
)

// hoistBatchState resolves Default wrap modes against the file's
// declared ones and computes actualChans, the number of real file
// channels this call can serve starting at FirstChannel. hasAlphaSlot
// reports whether the file has one more channel past the requested
// block to serve Alpha from.
func hoistBatchState(f *texfile.File, opts *Options) (r resolved, hasAlphaSlot bool) {
	fileSwrap, fileTwrap := f.Wrap()
	fileChannels := f.Spec(0).Channels

	r.swrap = wrap.Resolve(opts.SWrap, fileSwrap)
	r.twrap = wrap.Resolve(opts.TWrap, fileTwrap)
	opts.SWrap = r.swrap
	opts.TWrap = r.twrap
	r.fileChannels = fileChannels
	r.actualChans = clamp(fileChannels-opts.FirstChannel, 0, opts.NChannels)

	hasAlphaSlot = opts.FirstChannel+r.actualChans < fileChannels
	return r, hasAlphaSlot
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// sample is the per-sample nearest-texel baseline: floor-split texel
// coordinates, reject out-of-range with the 1.0 sentinel, fetch the
// containing tile, and copy actualChans channels (plus alpha, if
// requested) out of it. On a tile decode failure it writes the 0.5
// sentinel instead.
func sample(
	f *texfile.File,
	cache *tilecache.Cache,
	r resolved,
	opts *Options,
	writeAlpha bool,
	i int,
	s, t, dsdx, dtdx, dsdy, dtdy []float64,
	result []float64,
) {
	n := opts.NChannels
	out := result[i*n : i*n+n]

	// Filter footprints: reserved for filtered variants — the
	// nearest-texel baseline computes but does not consume them.
	_ = filterFootprint(dsdx, i, opts.SWidth, opts.SBlur)
	_ = filterFootprint(dtdx, i, opts.TWidth, opts.TBlur)
	_ = filterFootprint(dsdy, i, opts.SWidth, opts.SBlur)
	_ = filterFootprint(dtdy, i, opts.TWidth, opts.TBlur)

	const level = 0
	spec := f.Spec(level)

	u := s[i]*float64(spec.Width) - 0.5
	v := t[i]*float64(spec.Height) - 0.5

	sint := int(math.Floor(u))
	tint := int(math.Floor(v))
	_ = u - float64(sint) // sfrac: reserved for filtered variants, see filterFootprint above
	_ = v - float64(tint) // tfrac

	if sint < 0 || sint >= spec.Width || tint < 0 || tint >= spec.Height {
		out[0] = 1
		return
	}

	tileS := sint & (spec.TileWidth - 1)
	tileT := tint & (spec.TileHeight - 1)
	x0 := sint - tileS
	y0 := tint - tileT

	id := tilecache.ID{File: f, Level: level, X0: x0, Y0: y0, Z0: 0}
	tile := cache.Find(id, spec.Level)
	if !tile.Valid() {
		out[0] = 0.5
		return
	}

	data := tile.Data()
	offset := (tileT*spec.TileWidth+tileS)*spec.Channels + opts.FirstChannel
	for c := 0; c < r.actualChans; c++ {
		out[c] = float64(data[offset+c])
	}

	if writeAlpha {
		opts.Alpha[i] = float64(data[offset+r.actualChans])
	}
}

// filterFootprint computes a filter footprint: varying * width +
// blur, or 0 when the derivative array is empty.
func filterFootprint(d []float64, i int, width, blur Varying[float64]) float64 {
	if len(d) == 0 {
		return 0
	}
	return d[i]*width.At(i) + blur.At(i)
}

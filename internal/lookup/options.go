package lookup

import "tiletexcore/internal/wrap"

// Options bundles the per-call lookup parameters. Width/blur/bias/fill
// are Varying so a caller may pass either a dense per-sample array or
// a single scalar broadcast across the whole batch.
type Options struct {
	FirstChannel int
	NChannels    int

	SWrap, TWrap wrap.Mode

	SWidth, TWidth Varying[float64]
	SBlur, TBlur   Varying[float64]
	Bias           Varying[float64]

	// Fill is per-sample varying; UniformFill gives a scalar-broadcast
	// convenience for the common case of one fill value per batch.
	Fill Varying[float64]

	// Alpha, if non-nil, receives one value per batch slot. When the
	// file has no alpha channel to serve it from, the batch phase fills
	// every active slot from Fill and the per-sample phase leaves Alpha
	// untouched; the slice itself is not cleared.
	Alpha []float64
}

// defaultOptions is copied by DefaultOptions rather than shared: the
// process-wide default-options template is configuration, not global
// mutable state.
var defaultOptions = Options{
	NChannels: 1,
	SWidth:    Uniform(1.0),
	TWidth:    Uniform(1.0),
	Fill:      Uniform(0.0),
}

// DefaultOptions returns a fresh Options initialized from the
// package's default template.
func DefaultOptions() *Options {
	o := defaultOptions
	return &o
}

// UniformFill is a convenience constructor for the common case of a
// single fill value applied to every sample in the batch.
func UniformFill(v float64) Varying[float64] {
	return Uniform(v)
}

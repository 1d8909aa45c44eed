// Package lookup implements the LookupEngine module: the batch entry
// points texture() and get_texture_info() that compose FileRegistry
// and TileCache.
package lookup

import (
	"log/slog"
	"runtime"
	"sync"

	"tiletexcore/internal/mathutil"
	"tiletexcore/internal/texfile"
	"tiletexcore/internal/texlog"
	"tiletexcore/internal/tilecache"
	"tiletexcore/internal/wrap"
)

// parallelThreshold is the batch size above which Texture splits
// per-sample work across a worker pool instead of running the loop
// inline. The per-sample loop is data-parallel with no
// inter-sample dependencies, so splitting it costs nothing beyond
// goroutine overhead.
const parallelThreshold = 256

// Engine composes a FileRegistry and a TileCache behind the batch
// texture() and get_texture_info() entry points.
type Engine struct {
	registry *texfile.Registry
	cache    *tilecache.Cache
	logger   *slog.Logger
	workers  int
}

// New creates an Engine. factory resolves a path to a texio.Reader
// backend; maxMemoryBytes bounds the tile cache. The file registry
// defaults to 100 open files.
func New(factory texfile.Factory, maxMemoryBytes int64, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = texlog.Default()
	}
	return &Engine{
		registry: texfile.New(factory, logger),
		cache:    tilecache.New(maxMemoryBytes),
		logger:   logger,
		workers:  max(1, runtime.NumCPU()),
	}
}

// SetMaxOpenFiles updates the file registry's budget.
func (e *Engine) SetMaxOpenFiles(n int) { e.registry.SetMaxOpenFiles(n) }

// SetMaxMemoryMB updates the tile cache's budget, in megabytes.
func (e *Engine) SetMaxMemoryMB(n int) { e.cache.SetMaxMemoryBytes(int64(n) * 1 << 20) }

// SetCommonToWorld installs the world-space baseline used when
// parsing newly opened files' matrix attributes.
func (e *Engine) SetCommonToWorld(m mathutil.Mat4) { e.registry.SetCommonToWorld(m) }

// OpenFilesCount returns the number of files currently holding an
// open handle.
func (e *Engine) OpenFilesCount() int { return e.registry.OpenFilesCount() }

// SetWorkers overrides the worker-pool size used for large batches.
// n <= 0 falls back to runtime.NumCPU().
func (e *Engine) SetWorkers(n int) {
	if n <= 0 {
		n = max(1, runtime.NumCPU())
	}
	e.workers = n
}

// resolved holds the per-call state the batch phase of Texture
// computes once and the per-sample phase reads many times.
type resolved struct {
	swrap, twrap wrap.Mode
	actualChans  int
	fileChannels int
}

// Texture is the LookupEngine batch entry point. result must be
// sized at least (last+1)*opts.NChannels; only the slots belonging to
// active, enabled samples in [first, last] are touched.
func (e *Engine) Texture(
	path string,
	opts *Options,
	runflags []bool,
	first, last int,
	s, t, dsdx, dtdx, dsdy, dtdy []float64,
	result []float64,
) {
	active := activeIndices(runflags, first, last)

	f := e.registry.Find(path)
	if f.Broken() {
		e.logger.Warn("lookup: texture not found", "path", path)
		fillMissing(opts, active, result)
		return
	}

	r, hasAlphaSlot := hoistBatchState(f, opts)
	prefillTrailing(opts, active, result, r.actualChans)
	writeAlpha := opts.Alpha != nil && hasAlphaSlot
	if opts.Alpha != nil && !hasAlphaSlot {
		fillAlphaUnavailable(opts, active)
	}
	if r.actualChans < 1 {
		return
	}

	run := func(i int) {
		sample(f, e.cache, r, opts, writeAlpha, i, s, t, dsdx, dtdx, dsdy, dtdy, result)
	}

	if len(active) >= parallelThreshold {
		e.runParallel(active, run)
	} else {
		for _, i := range active {
			run(i)
		}
	}
}

func activeIndices(runflags []bool, first, last int) []int {
	var idx []int
	for i := first; i <= last && i < len(runflags); i++ {
		if runflags[i] {
			idx = append(idx, i)
		}
	}
	return idx
}

// fillMissing handles a missing or broken file: it fills every
// active output (and alpha, if requested) with opts.Fill.
func fillMissing(opts *Options, active []int, result []float64) {
	n := opts.NChannels
	for _, i := range active {
		fill := opts.Fill.At(i)
		for c := 0; c < n; c++ {
			result[i*n+c] = fill
		}
		if opts.Alpha != nil {
			opts.Alpha[i] = fill
		}
	}
}

// prefillTrailing fills every channel beyond actualChans from
// opts.Fill, independent of any per-texel sampling, for every active
// sample.
func prefillTrailing(opts *Options, active []int, result []float64, actualChans int) {
	n := opts.NChannels
	if actualChans >= n {
		return
	}
	for _, i := range active {
		fill := opts.Fill.At(i)
		for c := actualChans; c < n; c++ {
			result[i*n+c] = fill
		}
	}
}

// fillAlphaUnavailable handles the case where Alpha is requested but
// the file has no channel past actualChans to serve it from: every
// active slot gets opts.Fill instead.
func fillAlphaUnavailable(opts *Options, active []int) {
	for _, i := range active {
		opts.Alpha[i] = opts.Fill.At(i)
	}
}

// runParallel is a bounded channel of work indices drained by
// e.workers goroutines, with no shared mutable state beyond each
// sample's own result slots: each output slot depends only on its
// own sample's inputs.
func (e *Engine) runParallel(active []int, run func(i int)) {
	work := make(chan int, e.workers*2)
	var wg sync.WaitGroup
	for w := 0; w < e.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range work {
				run(i)
			}
		}()
	}
	for _, i := range active {
		work <- i
	}
	close(work)
	wg.Wait()
}

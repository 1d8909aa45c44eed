package texfile

import (
	"log/slog"
	"sync"

	"tiletexcore/internal/mathutil"
	"tiletexcore/internal/texlog"
)

// Registry is the concurrent-safe path → *File mapping, bounded by
// MaxOpenFiles and enforced with clock-sweep LRU over an
// insertion-ordered index (map iteration order is unspecified, so the
// sweep cursor walks a separate slice rather than the map itself).
type Registry struct {
	mu            sync.Mutex
	files         map[string]*File
	order         []string
	sweepCursor   int
	openFiles     int
	maxOpenFiles  int
	commonToWorld mathutil.Mat4
	factory       Factory
	logger        *slog.Logger
}

// New creates a Registry. factory resolves a path to an ImageReader
// backend (e.g. dispatching on file extension between the flatfile
// and pyramid backends); logger receives diagnostic traces and may be
// nil, in which case texlog.Default() is used.
func New(factory Factory, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = texlog.Default()
	}
	return &Registry{
		files:         make(map[string]*File),
		maxOpenFiles:  100,
		commonToWorld: mathutil.Mat4Identity(),
		factory:       factory,
		logger:        logger,
	}
}

// SetMaxOpenFiles updates the open-file budget; it takes effect on the
// next enforcement pass.
func (r *Registry) SetMaxOpenFiles(n int) {
	r.mu.Lock()
	r.maxOpenFiles = n
	r.mu.Unlock()
}

// SetCommonToWorld installs the world-space baseline used when
// parsing worldtocamera/worldtoscreen attributes on files opened from
// this point on. Already-open files are not reparsed.
func (r *Registry) SetCommonToWorld(m mathutil.Mat4) {
	r.mu.Lock()
	r.commonToWorld = m
	r.mu.Unlock()
}

// OpenFilesCount returns the number of files currently holding an
// open handle.
func (r *Registry) OpenFilesCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.openFiles
}

// Find returns the File for path, creating and opening it on first
// request. The returned File is shared: two calls with the same path
// return the same identity. Open failures are not reported here —
// callers check File.Broken().
func (r *Registry) Find(path string) *File {
	r.mu.Lock()
	f, ok := r.files[path]
	if !ok {
		r.enforceFileBudgetLocked()
		f = newFile(path, r.factory)
		r.files[path] = f
		r.order = append(r.order, path)
	}
	c2w := r.commonToWorld
	r.mu.Unlock()

	f.Open(r.logger, c2w, r.incrOpenFiles)
	f.Use()
	return f
}

func (r *Registry) incrOpenFiles() {
	r.mu.Lock()
	r.openFiles++
	r.mu.Unlock()
}

func (r *Registry) decrOpenFiles() {
	r.mu.Lock()
	r.openFiles--
	r.mu.Unlock()
}

// enforceFileBudgetLocked must be called with r.mu held. It advances
// the clock-sweep cursor over r.order, releasing files until
// openFiles drops below maxOpenFiles. A full pass that finds every
// file pinned is tolerated as transient overshoot rather than
// blocking forever — the sweep gives up after two full passes.
func (r *Registry) enforceFileBudgetLocked() {
	if len(r.order) == 0 {
		return
	}
	if r.openFiles >= r.maxOpenFiles {
		r.logger.Debug("texfile: open-file budget sweep", "open", r.openFiles, "max", r.maxOpenFiles)
	}
	maxSteps := 2*len(r.order) + 1
	for steps := 0; r.openFiles >= r.maxOpenFiles && steps < maxSteps; steps++ {
		if r.sweepCursor >= len(r.order) {
			r.sweepCursor = 0
		}
		victim := r.files[r.order[r.sweepCursor]]
		r.sweepCursor++
		r.mu.Unlock()
		victim.Release(r.decrOpenFiles)
		r.mu.Lock()
	}
}

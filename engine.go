package pixfilter

import (
	"github.com/gogpu/pixfilter/internal/parallel"
)

// Engine applies filters using a pool of worker goroutines.
//
// Engine.Apply returns exactly the bytes Apply would: each output row depends
// only on the input, so row bands are computed independently and joined
// before returning.
//
// Thread safety: Engine is safe for concurrent use. After Close, Apply keeps
// working but runs on the calling goroutine.
type Engine struct {
	pool *parallel.WorkerPool
	opts engineOptions
}

// NewEngine creates an engine and starts its worker pool.
// Call Close to stop the workers.
func NewEngine(opts ...EngineOption) *Engine {
	o := defaultEngineOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Engine{
		pool: parallel.NewWorkerPool(o.workers),
		opts: o,
	}
}

// Apply filters img with spec. See the package-level Apply for the contract.
func (e *Engine) Apply(img *Image, spec Spec) (*Image, error) {
	dst, err := prepare(img, spec)
	if err != nil {
		return nil, err
	}

	if img.Width*img.Height < e.opts.minParallelPixels || !e.pool.IsRunning() {
		applyRows(img, dst, spec, 0, img.Height)
		return dst, nil
	}

	bands := parallel.SplitRows(img.Height, e.pool.Workers()*2, minBandRows)
	work := make([]func(), len(bands))
	for i, b := range bands {
		work[i] = func() {
			applyRows(img, dst, spec, b.Y0, b.Y1)
		}
	}
	e.pool.ExecuteAll(work)

	return dst, nil
}

// Workers returns the number of pool goroutines.
func (e *Engine) Workers() int {
	return e.pool.Workers()
}

// Close stops the worker pool. It is safe to call more than once.
func (e *Engine) Close() {
	e.pool.Close()
}

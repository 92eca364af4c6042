package pixfilter

// EngineOption configures an Engine during creation.
//
// Example:
//
//	// GOMAXPROCS workers, default threshold
//	eng := pixfilter.NewEngine()
//
//	// Four workers, parallelize images of 256x256 and larger
//	eng := pixfilter.NewEngine(
//		pixfilter.WithWorkers(4),
//		pixfilter.WithMinParallelPixels(256*256),
//	)
type EngineOption func(*engineOptions)

// DefaultMinParallelPixels is the image area below which an Engine filters
// on the calling goroutine.
const DefaultMinParallelPixels = 64 * 1024

// minBandRows keeps bands from degenerating into single rows on tall, narrow
// images.
const minBandRows = 8

type engineOptions struct {
	workers           int
	minParallelPixels int
}

func defaultEngineOptions() engineOptions {
	return engineOptions{
		workers:           0, // GOMAXPROCS
		minParallelPixels: DefaultMinParallelPixels,
	}
}

// WithWorkers sets the number of pool goroutines.
// Zero or a negative value selects GOMAXPROCS.
func WithWorkers(n int) EngineOption {
	return func(o *engineOptions) {
		o.workers = n
	}
}

// WithMinParallelPixels sets the image area (width*height) at which the
// Engine starts splitting work across the pool. Values below 1 are treated
// as 1, which parallelizes every image.
func WithMinParallelPixels(n int) EngineOption {
	return func(o *engineOptions) {
		o.minParallelPixels = max(n, 1)
	}
}

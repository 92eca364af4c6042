// Package pixfilter applies pointwise transforms and 3x3 convolution kernels
// to decoded raster images.
//
// # Overview
//
// The engine works on an [Image]: a row-major, channel-interleaved buffer of
// 8-bit samples with one (grayscale) or three (RGB) channels. A [Spec] selects
// what to do with it, either a named [Transform] (invert, grayscale) or a
// [Kernel]. [Apply] is a pure function: it never retains the input, never logs
// and never touches shared state.
//
// # Quick Start
//
//	img, _ := pixfilter.FromPixels(pix, width, height, 3)
//
//	spec, ok := pixfilter.DefaultCatalog().Lookup("sharpen")
//	if !ok {
//		// reject the request before the engine runs
//	}
//
//	out, err := pixfilter.Apply(img, spec)
//
// # Numeric semantics
//
// All intermediate arithmetic is float64. Kernel neighborhoods are summed in
// row-major order and borders are extended by replicating the nearest edge
// sample. Final values are clipped to [0, 255] and rounded half away from
// zero, so grayscale(100, 150, 200) is 141.
//
// # Parallelism
//
// [Engine] produces the same bytes as [Apply] but splits large images into
// row bands that run on a worker pool.
//
// # Architecture
//
// The module is organized into:
//   - Public API: Image, Spec, Catalog, Apply, Engine
//   - Internal: parallel (worker pool), codec (decode/encode), config (HCL),
//     pipeline (decode, filter, encode), server (HTTP), ctxlog
//   - Command: cmd/pixfilter (serve, apply, list)
package pixfilter

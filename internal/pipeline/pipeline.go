// Package pipeline runs one filter request end to end:
// decode, resolve the filter name, filter, encode.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gogpu/pixfilter"
	"github.com/gogpu/pixfilter/internal/codec"
	"github.com/gogpu/pixfilter/internal/ctxlog"
)

// ErrDecode wraps every failure to turn the input bytes into an image.
var ErrDecode = errors.New("pipeline: cannot decode image")

// Applier filters a decoded image. *pixfilter.Engine implements it;
// ApplyFunc adapts the package-level pixfilter.Apply.
type Applier interface {
	Apply(img *pixfilter.Image, spec pixfilter.Spec) (*pixfilter.Image, error)
}

// ApplyFunc adapts a function to the Applier interface.
type ApplyFunc func(img *pixfilter.Image, spec pixfilter.Spec) (*pixfilter.Image, error)

// Apply calls f.
func (f ApplyFunc) Apply(img *pixfilter.Image, spec pixfilter.Spec) (*pixfilter.Image, error) {
	return f(img, spec)
}

// Options controls a pipeline run.
type Options struct {
	Catalog   *pixfilter.Catalog // nil selects pixfilter.DefaultCatalog()
	Applier   Applier            // nil selects pixfilter.Apply
	Format    codec.Format       // output encoding
	Quality   int                // JPEG quality (1-100), 0 for default
	MaxPixels int                // reject larger inputs; 0 disables the check
}

// Result holds the output of a pipeline run.
type Result struct {
	Data        []byte // encoded output image
	ContentType string
	SrcFormat   string // decoder name of the input, e.g. "jpeg"
	Width       int
	Height      int
	Channels    int
}

// Run resolves filterName, decodes data, applies the filter and encodes the
// result. An unknown name fails with pixfilter.ErrUnknownFilter before any
// decoding work is done.
func Run(ctx context.Context, data []byte, filterName string, opts Options) (*Result, error) {
	logger := ctxlog.FromContext(ctx)

	cat := opts.Catalog
	if cat == nil {
		cat = pixfilter.DefaultCatalog()
	}
	applier := opts.Applier
	if applier == nil {
		applier = ApplyFunc(pixfilter.Apply)
	}

	// 1. Resolve the filter
	spec, err := cat.Resolve(filterName)
	if err != nil {
		return nil, err
	}

	// 2. Decode
	start := time.Now()
	img, format, err := codec.Decode(data, opts.MaxPixels)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}

	// 3. Filter
	filtered, err := applier.Apply(img, spec)
	if err != nil {
		return nil, fmt.Errorf("filter %s: %w", filterName, err)
	}

	// 4. Encode
	encoded, err := codec.EncodeBytes(filtered, opts.Format, opts.Quality)
	if err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}

	logger.Debug("pipeline: filtered image",
		"filter", filterName,
		"kind", spec.Kind().String(),
		"src_format", format,
		"width", filtered.Width,
		"height", filtered.Height,
		"bytes_in", len(data),
		"bytes_out", len(encoded),
		"elapsed", time.Since(start))

	return &Result{
		Data:        encoded,
		ContentType: opts.Format.ContentType(),
		SrcFormat:   format,
		Width:       filtered.Width,
		Height:      filtered.Height,
		Channels:    filtered.Channels,
	}, nil
}

// IsClientError reports whether err was caused by the request (unknown
// filter, undecodable or oversized image) rather than by the service.
func IsClientError(err error) bool {
	return errors.Is(err, pixfilter.ErrUnknownFilter) || errors.Is(err, ErrDecode)
}

package pixfilter

import (
	"fmt"
	"math"
)

// ITU-R BT.601 luma weights used by Grayscale.
const (
	lumaR = 0.299
	lumaG = 0.587
	lumaB = 0.114
)

// Apply filters img with spec and returns a new image.
//
// img must be a valid RGB image. Invert and kernel specs return an RGB image
// of the same size; Grayscale returns a single-channel image of the same size.
// The input is never modified or retained.
//
// Apply fails only on contract violations (malformed geometry, non-RGB input,
// zero Spec); it never returns a partial result.
func Apply(img *Image, spec Spec) (*Image, error) {
	dst, err := prepare(img, spec)
	if err != nil {
		return nil, err
	}
	applyRows(img, dst, spec, 0, img.Height)
	return dst, nil
}

// prepare validates the inputs and allocates the output image.
func prepare(img *Image, spec Spec) (*Image, error) {
	if err := img.Validate(); err != nil {
		return nil, err
	}
	if img.Channels != RGB {
		return nil, fmt.Errorf("%w: filters take RGB input, got %d channels", ErrChannelDepth, img.Channels)
	}
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	return NewImage(img.Width, img.Height, spec.OutputChannels())
}

// applyRows computes output rows [y0, y1). Each output row depends only on
// src, so disjoint row ranges may run concurrently.
func applyRows(src, dst *Image, spec Spec, y0, y1 int) {
	switch spec.kind {
	case KindTransform:
		switch spec.transform {
		case Invert:
			invertRows(src, dst, y0, y1)
		case Grayscale:
			grayscaleRows(src, dst, y0, y1)
		}
	case KindKernel:
		convolveRows(src, dst, &spec.kernel, y0, y1)
	}
}

func invertRows(src, dst *Image, y0, y1 int) {
	stride := src.Stride()
	for i := y0 * stride; i < y1*stride; i++ {
		dst.Pix[i] = 255 - src.Pix[i]
	}
}

func grayscaleRows(src, dst *Image, y0, y1 int) {
	w := src.Width
	for y := y0; y < y1; y++ {
		for x := 0; x < w; x++ {
			si := (y*w + x) * RGB
			r := float64(src.Pix[si+0])
			g := float64(src.Pix[si+1])
			b := float64(src.Pix[si+2])
			dst.Pix[y*w+x] = clampRound(lumaR*r + lumaG*g + lumaB*b)
		}
	}
}

// convolveRows applies a 3x3 kernel to each RGB channel independently.
// Neighbors outside the image are replaced by the nearest edge sample.
// The sum runs over ky then kx so results are bit-reproducible.
func convolveRows(src, dst *Image, k *Kernel, y0, y1 int) {
	w, h := src.Width, src.Height

	var rows, cols [3]int
	for y := y0; y < y1; y++ {
		for ky := range 3 {
			rows[ky] = clampInt(y+ky-1, 0, h-1) * w
		}

		for x := 0; x < w; x++ {
			for kx := range 3 {
				cols[kx] = clampInt(x+kx-1, 0, w-1)
			}

			di := (y*w + x) * RGB
			for c := range RGB {
				var sum float64
				for ky := range 3 {
					for kx := range 3 {
						si := (rows[ky]+cols[kx])*RGB + c
						sum += float64(src.Pix[si]) * k[ky][kx]
					}
				}
				dst.Pix[di+c] = clampRound(sum)
			}
		}
	}
}

// clampRound clips v to [0, 255] and rounds half away from zero.
// NaN maps to 0.
func clampRound(v float64) uint8 {
	if !(v > 0) {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(math.Round(v))
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

package pixfilter

import (
	"bytes"
	"errors"
	"fmt"
)

// Contract errors. They indicate a bug in the caller, not a runtime condition.
var (
	// ErrInvalidGeometry is returned when width or height is non-positive or
	// the sample buffer length does not equal Width*Height*Channels.
	ErrInvalidGeometry = errors.New("pixfilter: invalid image geometry")

	// ErrChannelDepth is returned when an image has an unsupported channel
	// count, or is not RGB when a filter requires RGB input.
	ErrChannelDepth = errors.New("pixfilter: unsupported channel depth")

	// ErrInvalidSpec is returned for a zero or unknown Spec.
	ErrInvalidSpec = errors.New("pixfilter: invalid filter spec")
)

// Channel depths.
const (
	// Gray is the channel count of a grayscale image.
	Gray = 1

	// RGB is the channel count of an RGB image.
	RGB = 3
)

// Image is a rectangular raster of 8-bit samples.
//
// Pix holds Width*Height*Channels samples in row-major order with channels
// interleaved: the sample for channel c of pixel (x, y) is at
// (y*Width+x)*Channels + c.
type Image struct {
	Width    int
	Height   int
	Channels int
	Pix      []uint8
}

// NewImage allocates a zeroed image.
func NewImage(width, height, channels int) (*Image, error) {
	if width <= 0 || height <= 0 {
		return nil, ErrInvalidGeometry
	}
	if channels != Gray && channels != RGB {
		return nil, ErrChannelDepth
	}
	return &Image{
		Width:    width,
		Height:   height,
		Channels: channels,
		Pix:      make([]uint8, width*height*channels),
	}, nil
}

// FromPixels wraps an existing sample buffer without copying.
// The caller must not modify pix while the image is being filtered.
func FromPixels(pix []uint8, width, height, channels int) (*Image, error) {
	img := &Image{
		Width:    width,
		Height:   height,
		Channels: channels,
		Pix:      pix,
	}
	if err := img.Validate(); err != nil {
		return nil, err
	}
	return img, nil
}

// Validate checks the geometry invariants of the image.
func (img *Image) Validate() error {
	if img == nil {
		return fmt.Errorf("%w: nil image", ErrInvalidGeometry)
	}
	if img.Width <= 0 || img.Height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidGeometry, img.Width, img.Height)
	}
	if img.Channels != Gray && img.Channels != RGB {
		return fmt.Errorf("%w: %d channels", ErrChannelDepth, img.Channels)
	}
	if want := img.Width * img.Height * img.Channels; len(img.Pix) != want {
		return fmt.Errorf("%w: buffer has %d samples, want %d for %dx%dx%d",
			ErrInvalidGeometry, len(img.Pix), want, img.Width, img.Height, img.Channels)
	}
	return nil
}

// Stride returns the number of samples per row.
func (img *Image) Stride() int {
	return img.Width * img.Channels
}

// Offset returns the index of the first sample of pixel (x, y).
// Returns -1 if the coordinates are out of bounds.
func (img *Image) Offset(x, y int) int {
	if x < 0 || x >= img.Width || y < 0 || y >= img.Height {
		return -1
	}
	return (y*img.Width + x) * img.Channels
}

// At returns the samples of pixel (x, y), or nil if out of bounds.
// The returned slice aliases Pix.
func (img *Image) At(x, y int) []uint8 {
	off := img.Offset(x, y)
	if off < 0 {
		return nil
	}
	return img.Pix[off : off+img.Channels]
}

// Set copies samples into pixel (x, y). Out-of-bounds writes are ignored.
func (img *Image) Set(x, y int, samples ...uint8) {
	off := img.Offset(x, y)
	if off < 0 {
		return
	}
	copy(img.Pix[off:off+img.Channels], samples)
}

// Clone returns a deep copy of the image.
func (img *Image) Clone() *Image {
	pix := make([]uint8, len(img.Pix))
	copy(pix, img.Pix)
	return &Image{
		Width:    img.Width,
		Height:   img.Height,
		Channels: img.Channels,
		Pix:      pix,
	}
}

// Equal reports whether two images have the same geometry and samples.
func (img *Image) Equal(other *Image) bool {
	if img == nil || other == nil {
		return img == other
	}
	if img.Width != other.Width || img.Height != other.Height || img.Channels != other.Channels {
		return false
	}
	return bytes.Equal(img.Pix, other.Pix)
}

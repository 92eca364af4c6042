package codec

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // register GIF
	_ "image/jpeg" // register JPEG
	_ "image/png"  // register PNG

	"github.com/gogpu/pixfilter"
	_ "golang.org/x/image/bmp" // register BMP
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/tiff" // register TIFF
	_ "golang.org/x/image/webp" // register WebP
)

// Decode errors.
var (
	// ErrEmptyData is returned when the input holds no bytes.
	ErrEmptyData = errors.New("codec: empty data")

	// ErrUnsupportedFormat is returned when no registered decoder
	// recognizes the input.
	ErrUnsupportedFormat = errors.New("codec: unsupported format")

	// ErrTooLarge is returned when the declared image area exceeds the
	// caller's limit.
	ErrTooLarge = errors.New("codec: image too large")
)

// Decode decodes an image and normalizes it to RGB.
// It returns the image and the registered format name ("png", "jpeg", ...).
//
// If maxPixels is positive, the header is inspected first and images whose
// width*height exceeds it are rejected with ErrTooLarge before any pixel
// data is decoded.
func Decode(data []byte, maxPixels int) (*pixfilter.Image, string, error) {
	if len(data) == 0 {
		return nil, "", ErrEmptyData
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		if errors.Is(err, image.ErrFormat) {
			return nil, "", ErrUnsupportedFormat
		}
		return nil, "", fmt.Errorf("codec: decode header: %w", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, format, fmt.Errorf("codec: decode %s: %w", format, pixfilter.ErrInvalidGeometry)
	}
	if maxPixels > 0 && cfg.Width*cfg.Height > maxPixels {
		return nil, format, fmt.Errorf("%w: %dx%d exceeds %d pixels", ErrTooLarge, cfg.Width, cfg.Height, maxPixels)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, format, fmt.Errorf("codec: decode %s: %w", format, err)
	}

	out := ToRGB(img)
	pixfilter.Logger().Debug("codec: decoded image",
		"format", format, "width", out.Width, "height", out.Height)
	return out, format, nil
}

// ToRGB converts any image.Image into a three-channel pixfilter image.
// Alpha is discarded without compositing against a background.
//
// Straight-alpha sources (*image.NRGBA, *image.NRGBA64) keep their color
// even where alpha is 0. Premultiplied sources such as *image.RGBA and
// *image.RGBA64 have already lost the color of fully transparent pixels,
// which decode as black.
func ToRGB(img image.Image) *pixfilter.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	out := &pixfilter.Image{
		Width:    w,
		Height:   h,
		Channels: pixfilter.RGB,
		Pix:      make([]uint8, w*h*pixfilter.RGB),
	}

	switch src := img.(type) {
	case *image.NRGBA:
		copyRGBA(out, src.Pix, src.Stride, src.PixOffset(b.Min.X, b.Min.Y))
		return out

	case *image.NRGBA64:
		off := src.PixOffset(b.Min.X, b.Min.Y)
		for y := range h {
			row := src.Pix[off+y*src.Stride:]
			for x := range w {
				si := x * 8
				di := (y*w + x) * pixfilter.RGB
				out.Pix[di+0] = row[si+0]
				out.Pix[di+1] = row[si+2]
				out.Pix[di+2] = row[si+4]
			}
		}
		return out

	case *image.Gray:
		for y := range h {
			row := src.Pix[src.PixOffset(b.Min.X, b.Min.Y+y):]
			for x := range w {
				v := row[x]
				i := (y*w + x) * pixfilter.RGB
				out.Pix[i], out.Pix[i+1], out.Pix[i+2] = v, v, v
			}
		}
		return out
	}

	// Generic path: convert to straight (non-premultiplied) RGBA first.
	nrgba := image.NewNRGBA(image.Rect(0, 0, w, h))
	xdraw.Copy(nrgba, image.Point{}, img, b, xdraw.Src, nil)
	copyRGBA(out, nrgba.Pix, nrgba.Stride, 0)
	return out
}

// copyRGBA copies the RGB samples of 4-byte pixels starting at off.
func copyRGBA(out *pixfilter.Image, pix []uint8, stride, off int) {
	w := out.Width
	for y := range out.Height {
		row := pix[off+y*stride:]
		for x := range w {
			si := x * 4
			di := (y*w + x) * pixfilter.RGB
			out.Pix[di+0] = row[si+0]
			out.Pix[di+1] = row[si+1]
			out.Pix[di+2] = row[si+2]
		}
	}
}

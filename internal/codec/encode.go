package codec

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"strings"

	"github.com/gogpu/pixfilter"
)

// Format is an output encoding.
type Format uint8

const (
	// PNG is lossless and the default output format.
	PNG Format = iota

	// JPEG is lossy; see Encode for the quality range.
	JPEG
)

// DefaultJPEGQuality is used when Encode is given a quality of 0.
const DefaultJPEGQuality = 90

// ErrUnknownOutputFormat is returned by ParseFormat.
var ErrUnknownOutputFormat = errors.New("codec: unknown output format")

// ParseFormat parses "png", "jpeg" or "jpg" (case-insensitive).
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "png":
		return PNG, nil
	case "jpeg", "jpg":
		return JPEG, nil
	default:
		return PNG, fmt.Errorf("%w: %q", ErrUnknownOutputFormat, s)
	}
}

// String returns the format name.
func (f Format) String() string {
	switch f {
	case PNG:
		return "png"
	case JPEG:
		return "jpeg"
	default:
		return "unknown"
	}
}

// ContentType returns the MIME type for HTTP responses.
func (f Format) ContentType() string {
	if f == JPEG {
		return "image/jpeg"
	}
	return "image/png"
}

// Encode writes img to w. quality applies to JPEG only and is clamped to
// [1, 100]; 0 selects DefaultJPEGQuality.
func Encode(w io.Writer, img *pixfilter.Image, f Format, quality int) error {
	if err := img.Validate(); err != nil {
		return fmt.Errorf("codec: encode: %w", err)
	}
	std := ToStdImage(img)

	switch f {
	case JPEG:
		if quality == 0 {
			quality = DefaultJPEGQuality
		}
		quality = min(max(quality, 1), 100)
		if err := jpeg.Encode(w, std, &jpeg.Options{Quality: quality}); err != nil {
			return fmt.Errorf("codec: encode JPEG: %w", err)
		}
	default:
		if err := png.Encode(w, std); err != nil {
			return fmt.Errorf("codec: encode PNG: %w", err)
		}
	}
	return nil
}

// EncodeBytes encodes img and returns the bytes.
func EncodeBytes(img *pixfilter.Image, f Format, quality int) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, img, f, quality); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ToStdImage converts a pixfilter image to *image.Gray (one channel) or an
// opaque *image.RGBA (three channels).
func ToStdImage(img *pixfilter.Image) image.Image {
	rect := image.Rect(0, 0, img.Width, img.Height)

	if img.Channels == pixfilter.Gray {
		gray := image.NewGray(rect)
		for y := range img.Height {
			copy(gray.Pix[y*gray.Stride:], img.Pix[y*img.Width:(y+1)*img.Width])
		}
		return gray
	}

	rgba := image.NewRGBA(rect)
	for y := range img.Height {
		for x := range img.Width {
			si := (y*img.Width + x) * pixfilter.RGB
			di := y*rgba.Stride + x*4
			rgba.Pix[di+0] = img.Pix[si+0]
			rgba.Pix[di+1] = img.Pix[si+1]
			rgba.Pix[di+2] = img.Pix[si+2]
			rgba.Pix[di+3] = 255
		}
	}
	return rgba
}

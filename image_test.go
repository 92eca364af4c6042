package pixfilter

import (
	"errors"
	"testing"
)

func TestNewImage(t *testing.T) {
	img, err := NewImage(4, 3, RGB)
	if err != nil {
		t.Fatalf("NewImage() = %v", err)
	}
	if len(img.Pix) != 36 {
		t.Errorf("len(Pix) = %d, want 36", len(img.Pix))
	}
	if img.Stride() != 12 {
		t.Errorf("Stride() = %d, want 12", img.Stride())
	}

	if _, err := NewImage(0, 3, RGB); !errors.Is(err, ErrInvalidGeometry) {
		t.Errorf("NewImage(0, 3) error = %v, want ErrInvalidGeometry", err)
	}
	if _, err := NewImage(2, 2, 2); !errors.Is(err, ErrChannelDepth) {
		t.Errorf("NewImage(channels=2) error = %v, want ErrChannelDepth", err)
	}
}

func TestFromPixelsValidates(t *testing.T) {
	if _, err := FromPixels(make([]uint8, 6), 2, 1, RGB); err != nil {
		t.Errorf("FromPixels(valid) = %v", err)
	}
	if _, err := FromPixels(make([]uint8, 5), 2, 1, RGB); !errors.Is(err, ErrInvalidGeometry) {
		t.Errorf("FromPixels(short) error = %v, want ErrInvalidGeometry", err)
	}
	if _, err := FromPixels(make([]uint8, 2), 2, 1, Gray); err != nil {
		t.Errorf("FromPixels(gray) = %v", err)
	}
}

func TestImageAtSet(t *testing.T) {
	img, _ := NewImage(3, 2, RGB)
	img.Set(2, 1, 7, 8, 9)

	if got := img.At(2, 1); got[0] != 7 || got[1] != 8 || got[2] != 9 {
		t.Errorf("At(2, 1) = %v, want [7 8 9]", got)
	}
	if img.Pix[15] != 7 {
		t.Errorf("Pix[15] = %d, want 7 (row-major interleaved)", img.Pix[15])
	}
	if img.At(3, 0) != nil || img.At(0, -1) != nil {
		t.Error("At() out of bounds should return nil")
	}
	if img.Offset(5, 5) != -1 {
		t.Error("Offset() out of bounds should return -1")
	}

	// Out-of-bounds Set is ignored.
	img.Set(-1, 0, 1, 1, 1)
}

func TestImageCloneAndEqual(t *testing.T) {
	img, _ := NewImage(2, 2, RGB)
	img.Set(1, 1, 1, 2, 3)

	c := img.Clone()
	if !c.Equal(img) {
		t.Error("Clone() not equal to source")
	}
	c.Pix[0] = 99
	if img.Pix[0] == 99 {
		t.Error("Clone() shares the sample buffer")
	}
	if c.Equal(img) {
		t.Error("Equal() true after modification")
	}

	gray, _ := NewImage(2, 2, Gray)
	if gray.Equal(img) {
		t.Error("Equal() true for different channel depths")
	}

	var nilImg *Image
	if !nilImg.Equal(nil) {
		t.Error("nil.Equal(nil) = false")
	}
}

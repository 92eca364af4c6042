package pipeline

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"testing"

	"github.com/gogpu/pixfilter"
	"github.com/gogpu/pixfilter/internal/codec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodeTestPNG(t *testing.T, w, h int, r, g, b uint8) []byte {
	t.Helper()
	img, err := pixfilter.NewImage(w, h, pixfilter.RGB)
	require.NoError(t, err)
	for i := 0; i < len(img.Pix); i += 3 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2] = r, g, b
	}
	data, err := codec.EncodeBytes(img, codec.PNG, 0)
	require.NoError(t, err)
	return data
}

func TestRunInvert(t *testing.T) {
	input := encodeTestPNG(t, 4, 3, 10, 20, 30)

	result, err := Run(context.Background(), input, "invert", Options{})
	require.NoError(t, err)

	assert.Equal(t, "image/png", result.ContentType)
	assert.Equal(t, "png", result.SrcFormat)
	assert.Equal(t, 4, result.Width)
	assert.Equal(t, 3, result.Height)
	assert.Equal(t, pixfilter.RGB, result.Channels)

	out, _, err := codec.Decode(result.Data, 0)
	require.NoError(t, err)
	assert.Equal(t, []uint8{245, 235, 225}, out.At(2, 1))
}

func TestRunGrayscaleWritesGrayPNG(t *testing.T) {
	input := encodeTestPNG(t, 2, 2, 100, 150, 200)

	result, err := Run(context.Background(), input, "Grayscale", Options{})
	require.NoError(t, err)
	assert.Equal(t, pixfilter.Gray, result.Channels)

	std, err := png.Decode(bytes.NewReader(result.Data))
	require.NoError(t, err)
	gray, ok := std.(*image.Gray)
	require.True(t, ok, "decoded %T, want *image.Gray", std)
	assert.Equal(t, uint8(141), gray.GrayAt(1, 1).Y)
}

func TestRunJPEGOutput(t *testing.T) {
	input := encodeTestPNG(t, 8, 8, 50, 60, 70)

	result, err := Run(context.Background(), input, "blur", Options{Format: codec.JPEG, Quality: 80})
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", result.ContentType)
	require.GreaterOrEqual(t, len(result.Data), 2)
	assert.Equal(t, []byte{0xFF, 0xD8}, result.Data[:2])
}

func TestRunUsesCustomCatalogAndApplier(t *testing.T) {
	cat, err := pixfilter.DefaultCatalog().With(map[string]pixfilter.Spec{
		"identity": pixfilter.KernelSpec(pixfilter.Kernel{{0, 0, 0}, {0, 1, 0}, {0, 0, 0}}),
	})
	require.NoError(t, err)

	eng := pixfilter.NewEngine(pixfilter.WithWorkers(2), pixfilter.WithMinParallelPixels(1))
	defer eng.Close()

	input := encodeTestPNG(t, 16, 16, 1, 2, 3)
	result, err := Run(context.Background(), input, "identity", Options{Catalog: cat, Applier: eng})
	require.NoError(t, err)

	out, _, err := codec.Decode(result.Data, 0)
	require.NoError(t, err)
	assert.Equal(t, []uint8{1, 2, 3}, out.At(15, 15))
}

func TestRunUnknownFilterSkipsDecode(t *testing.T) {
	called := false
	applier := ApplyFunc(func(img *pixfilter.Image, spec pixfilter.Spec) (*pixfilter.Image, error) {
		called = true
		return pixfilter.Apply(img, spec)
	})

	_, err := Run(context.Background(), []byte("not even an image"), "emboss", Options{Applier: applier})
	require.ErrorIs(t, err, pixfilter.ErrUnknownFilter)
	assert.True(t, IsClientError(err))
	assert.False(t, called)
}

func TestRunDecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		opts Options
		want error
	}{
		{"empty", nil, Options{}, codec.ErrEmptyData},
		{"garbage", []byte("garbage"), Options{}, codec.ErrUnsupportedFormat},
		{"too large", encodeTestPNG(t, 10, 10, 0, 0, 0), Options{MaxPixels: 50}, codec.ErrTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Run(context.Background(), tt.data, "blur", tt.opts)
			require.ErrorIs(t, err, tt.want)
			require.ErrorIs(t, err, ErrDecode)
			assert.True(t, IsClientError(err))
		})
	}
}

func TestRunApplierFailureIsServerError(t *testing.T) {
	boom := errors.New("boom")
	applier := ApplyFunc(func(*pixfilter.Image, pixfilter.Spec) (*pixfilter.Image, error) {
		return nil, boom
	})

	_, err := Run(context.Background(), encodeTestPNG(t, 1, 1, 0, 0, 0), "edge", Options{Applier: applier})
	require.ErrorIs(t, err, boom)
	assert.False(t, IsClientError(err))
}

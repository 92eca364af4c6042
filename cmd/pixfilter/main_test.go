package main

import (
	"bytes"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/gogpu/pixfilter"
	"github.com/gogpu/pixfilter/internal/codec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Cleanup(func() { pixfilter.SetLogger(nil) })

	var out, errOut bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func writeTestPNG(t *testing.T, path string, w, h int) {
	t.Helper()
	img, err := pixfilter.NewImage(w, h, pixfilter.RGB)
	require.NoError(t, err)
	for i := range img.Pix {
		img.Pix[i] = uint8(i * 7)
	}
	data, err := codec.EncodeBytes(img, codec.PNG, 0)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o600))
}

func TestListBuiltins(t *testing.T) {
	out, err := execute(t, "list")
	require.NoError(t, err)

	assert.Contains(t, out, "blur")
	assert.Contains(t, out, "grayscale    transform")
	assert.Contains(t, out, "sharpen      kernel")
}

func TestListIncludesConfigKernels(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "pixfilter.hcl")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`
kernel "emboss" {
  rows = [[-2, -1, 0], [-1, 1, 1], [0, 1, 2]]
}
`), 0o600))

	out, err := execute(t, "list", "--config", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, out, "emboss       kernel")
}

func TestApplyWritesPNG(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.png")
	outPath := filepath.Join(dir, "out.png")
	writeTestPNG(t, in, 20, 10)

	out, err := execute(t, "apply", "-i", in, "-o", outPath, "-f", "grayscale")
	require.NoError(t, err)
	assert.Contains(t, out, "grayscale: 20x10 png")

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 20, img.Bounds().Dx())
	assert.Equal(t, 10, img.Bounds().Dy())
}

func TestApplyJPEGFromExtension(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.png")
	outPath := filepath.Join(dir, "out.jpg")
	writeTestPNG(t, in, 16, 16)

	_, err := execute(t, "apply", "-i", in, "-o", outPath, "-f", "edge", "--quality", "75")
	require.NoError(t, err)

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	_, err = jpeg.Decode(bytes.NewReader(data))
	require.NoError(t, err)
}

func TestApplyErrors(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.png")
	writeTestPNG(t, in, 4, 4)
	outPath := filepath.Join(dir, "out.png")

	_, err := execute(t, "apply", "-i", in, "-o", outPath, "-f", "sepia")
	require.ErrorIs(t, err, pixfilter.ErrUnknownFilter)

	_, err = execute(t, "apply", "-i", in, "-o", outPath, "-f", "blur", "--format", "gif")
	require.ErrorIs(t, err, codec.ErrUnknownOutputFormat)

	_, err = execute(t, "apply", "-i", in, "-o", outPath, "-f", "blur", "--quality", "101")
	require.Error(t, err)

	_, err = execute(t, "apply", "-i", filepath.Join(dir, "missing.png"), "-o", outPath, "-f", "blur")
	require.ErrorIs(t, err, os.ErrNotExist)

	_, err = execute(t, "apply", "-i", in, "-f", "blur")
	require.Error(t, err, "missing required --output")

	assert.NoFileExists(t, outPath)
}

func TestInvalidLogLevel(t *testing.T) {
	_, err := execute(t, "list", "--log-level", "loud")
	require.Error(t, err)
}

func TestOutputFormat(t *testing.T) {
	tests := []struct {
		flag, path string
		want       codec.Format
	}{
		{"", "a.png", codec.PNG},
		{"", "a.JPG", codec.JPEG},
		{"", "a.jpeg", codec.JPEG},
		{"", "a", codec.PNG},
		{"jpeg", "a.png", codec.JPEG},
		{"png", "a.jpg", codec.PNG},
	}
	for _, tt := range tests {
		got, err := outputFormat(tt.flag, tt.path)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "flag=%q path=%q", tt.flag, tt.path)
	}
}

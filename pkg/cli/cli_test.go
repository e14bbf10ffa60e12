package cli

import (
	"bytes"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeRedGreen(t *testing.T, dir string) string {
	t.Helper()
	src := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	src.SetNRGBA(0, 0, color.NRGBA{255, 0, 0, 255})
	src.SetNRGBA(1, 0, color.NRGBA{0, 255, 0, 255})
	path := filepath.Join(dir, "in.png")
	require.NoError(t, SaveImage(path, src))
	return path
}

func pixelsOf(t *testing.T, path string) []color.NRGBA {
	t.Helper()
	img, _, err := LoadImage(path)
	require.NoError(t, err)
	b := img.Bounds()
	var out []color.NRGBA
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			out = append(out, color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA))
		}
	}
	return out
}

func run(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := Run(args, Env{Stdout: &stdout, Stderr: &stderr})
	return code, stdout.String(), stderr.String()
}

func TestApplyGreyScale(t *testing.T) {
	dir := t.TempDir()
	in := writeRedGreen(t, dir)
	out := filepath.Join(dir, "out.png")

	code, _, stderr := run(t, "apply", "-method", "greyscale", in, out)
	require.Equal(t, 0, code, stderr)
	assert.Equal(t, []color.NRGBA{{85, 85, 85, 255}, {85, 85, 85, 255}}, pixelsOf(t, out))
	assert.Contains(t, stderr, "image transformed")
}

func TestApplyTintClampsOnSave(t *testing.T) {
	dir := t.TempDir()
	in := writeRedGreen(t, dir)
	out := filepath.Join(dir, "out.bmp")

	code, _, stderr := run(t, "apply", "-method", "tint", "-tint", "#00ff00", "-multiplier", "2", in, out)
	require.Equal(t, 0, code, stderr)
	assert.Equal(t, []color.NRGBA{{0, 0, 0, 255}, {0, 255, 0, 255}}, pixelsOf(t, out))
}

func TestApplyIgnoreSet(t *testing.T) {
	dir := t.TempDir()
	in := writeRedGreen(t, dir)
	out := filepath.Join(dir, "out.tiff")

	code, _, stderr := run(t, "apply", "-method", "inverse", "-ignore", "red;#0000ff", in, out)
	require.Equal(t, 0, code, stderr)
	assert.Equal(t, []color.NRGBA{{255, 0, 0, 255}, {255, 0, 255, 255}}, pixelsOf(t, out))
}

func TestApplyErrors(t *testing.T) {
	dir := t.TempDir()
	in := writeRedGreen(t, dir)
	out := filepath.Join(dir, "out.png")

	code, _, stderr := run(t, "apply", in)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "requires <input> and <output>")

	code, _, stderr = run(t, "apply", "-method", "sepia", in, out)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "unknown method")

	code, _, stderr = run(t, "apply", "-threshold", "-1", in, out)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "invalid params")

	code, _, _ = run(t, "apply", filepath.Join(dir, "missing.png"), out)
	assert.Equal(t, 1, code)

	_, err := os.Stat(out)
	assert.True(t, os.IsNotExist(err), "failed runs must not write output")
}

func TestMethodsAndVersion(t *testing.T) {
	code, stdout, _ := run(t, "methods")
	require.Equal(t, 0, code)
	for _, name := range []string{"greyscale", "exposure", "tint", "inverse", "noise", "none"} {
		assert.Contains(t, stdout, name)
	}

	code, stdout, _ = run(t, "version")
	require.Equal(t, 0, code)
	assert.Equal(t, "pixfx "+Version+"\n", stdout)
	_, err := ParseVersion(Version)
	assert.NoError(t, err)
}

func TestUnknownCommand(t *testing.T) {
	code, _, stderr := run(t, "frobnicate")
	assert.Equal(t, 2, code)
	assert.True(t, strings.Contains(stderr, "unknown command"))

	code, _, _ = run(t)
	assert.Equal(t, 2, code)
}

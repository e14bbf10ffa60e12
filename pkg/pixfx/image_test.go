package pixfx

import (
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromImageNRGBA(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	src.SetNRGBA(0, 0, color.NRGBA{255, 0, 51, 255})
	src.SetNRGBA(1, 0, color.NRGBA{0, 102, 255, 0})

	img := FromImage(src)
	require.NoError(t, img.Validate())
	assert.Equal(t, Color{1, 0, 0.2, 1}, img.At(0, 0))
	assert.Equal(t, Color{0, 0.4, 1, 0}, img.At(1, 0))
}

func TestFromImageOffsetBounds(t *testing.T) {
	src := image.NewRGBA(image.Rect(5, 5, 8, 7))
	src.Set(7, 6, color.RGBA{255, 255, 255, 255})
	img := FromImage(src)
	require.NoError(t, img.Validate())
	assert.Equal(t, 3, img.Width)
	assert.Equal(t, 2, img.Height)
	assert.Equal(t, White, img.At(2, 1))
	assert.Equal(t, Color{}, img.At(0, 0))
}

func TestNRGBARoundTrip(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 4, 3))
	for i := range src.Pix {
		src.Pix[i] = uint8(i * 17)
	}
	back := FromImage(src).NRGBA()
	assert.Equal(t, src.Pix, back.Pix)
}

func TestNRGBAClampsAtBoundary(t *testing.T) {
	img := &Image{Width: 3, Height: 1, Pix: []Color{
		{2, -1, 0.5, 1},
		{math.NaN(), math.Inf(1), math.Inf(-1), 0.5},
		{1, 1, 1, 1},
	}}
	out := img.NRGBA()
	assert.Equal(t, []uint8{255, 0, 128, 255, 0, 255, 0, 128, 255, 255, 255, 255}, out.Pix)

	wide := img.NRGBA64().NRGBA64At(0, 0)
	assert.Equal(t, color.NRGBA64{65535, 0, 32768, 65535}, wide)
}

func TestImageClone(t *testing.T) {
	img := NewImage(2, 2)
	img.Set(1, 1, White)
	c := img.Clone()
	c.Set(1, 1, Black)
	assert.Equal(t, White, img.At(1, 1))
	assert.Nil(t, (*Image)(nil).Clone())
}

func TestNewImageNegative(t *testing.T) {
	img := NewImage(-2, 3)
	assert.ErrorIs(t, img.Validate(), ErrInvalidImage)
}

func TestValidateRejectsOverflow(t *testing.T) {
	img := &Image{Width: math.MaxInt/2 + 1, Height: 2}
	assert.ErrorIs(t, img.Validate(), ErrInvalidImage)

	img = NewImage(math.MaxInt/2+1, 2)
	assert.Equal(t, 0, img.Width)
	assert.Empty(t, img.Pix)
}

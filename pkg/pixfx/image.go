package pixfx

import (
	"image"
	"image/color"
	"math"

	"github.com/pkg/errors"
)

// Image is a row-major buffer of Width*Height colors.
type Image struct {
	Width  int
	Height int
	Pix    []Color
}

// NewImage allocates a w x h image with every pixel zeroed.
func NewImage(w, h int) *Image {
	if w < 0 || h < 0 || (h > 0 && w > math.MaxInt/h) {
		w, h = 0, 0
	}
	return &Image{Width: w, Height: h, Pix: make([]Color, w*h)}
}

// Validate checks the buffer invariant: positive dimensions and exactly
// Width*Height pixels.
func (m *Image) Validate() error {
	if m == nil {
		return errors.Wrap(ErrInvalidImage, "nil image")
	}
	if m.Width <= 0 || m.Height <= 0 {
		return errors.Wrapf(ErrInvalidImage, "non-positive dimensions %dx%d", m.Width, m.Height)
	}
	if m.Width > math.MaxInt/m.Height {
		return errors.Wrapf(ErrInvalidImage, "dimensions %dx%d overflow", m.Width, m.Height)
	}
	if len(m.Pix) != m.Width*m.Height {
		return errors.Wrapf(ErrInvalidImage, "have %d pixels, want %dx%d=%d", len(m.Pix), m.Width, m.Height, m.Width*m.Height)
	}
	return nil
}

// At returns the pixel at (x, y). It panics when out of range, like a
// slice index would.
func (m *Image) At(x, y int) Color {
	return m.Pix[y*m.Width+x]
}

// Set writes c at (x, y).
func (m *Image) Set(x, y int, c Color) {
	m.Pix[y*m.Width+x] = c
}

// SameSize reports whether m and o have identical dimensions.
func (m *Image) SameSize(o *Image) bool {
	return m.Width == o.Width && m.Height == o.Height
}

// Clone returns a deep copy of m.
func (m *Image) Clone() *Image {
	if m == nil {
		return nil
	}
	out := &Image{Width: m.Width, Height: m.Height, Pix: make([]Color, len(m.Pix))}
	copy(out.Pix, m.Pix)
	return out
}

// FromImage converts any image.Image into a float buffer with channels in
// [0,1], non-premultiplied. Bounds are rebased to the origin.
func FromImage(src image.Image) *Image {
	if src == nil {
		return nil
	}
	b := src.Bounds()
	out := NewImage(b.Dx(), b.Dy())
	if n, ok := src.(*image.NRGBA); ok {
		idx := 0
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				i := n.PixOffset(x, y)
				out.Pix[idx] = Color{
					R: float64(n.Pix[i+0]) / 255.0,
					G: float64(n.Pix[i+1]) / 255.0,
					B: float64(n.Pix[i+2]) / 255.0,
					A: float64(n.Pix[i+3]) / 255.0,
				}
				idx++
			}
		}
		return out
	}
	idx := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBA64Model.Convert(src.At(x, y)).(color.NRGBA64)
			out.Pix[idx] = Color{
				R: float64(c.R) / 65535.0,
				G: float64(c.G) / 65535.0,
				B: float64(c.B) / 65535.0,
				A: float64(c.A) / 65535.0,
			}
			idx++
		}
	}
	return out
}

// NRGBA converts m to an 8-bit image. This is the display boundary, so
// channels are clamped to [0,1] here and nowhere else.
func (m *Image) NRGBA() *image.NRGBA {
	out := image.NewNRGBA(image.Rect(0, 0, m.Width, m.Height))
	for i, c := range m.Pix {
		o := i * 4
		out.Pix[o+0] = to8(c.R)
		out.Pix[o+1] = to8(c.G)
		out.Pix[o+2] = to8(c.B)
		out.Pix[o+3] = to8(c.A)
	}
	return out
}

// NRGBA64 is NRGBA at 16 bits per channel.
func (m *Image) NRGBA64() *image.NRGBA64 {
	out := image.NewNRGBA64(image.Rect(0, 0, m.Width, m.Height))
	for i, c := range m.Pix {
		out.SetNRGBA64(i%m.Width, i/m.Width, color.NRGBA64{
			R: to16(c.R),
			G: to16(c.G),
			B: to16(c.B),
			A: to16(c.A),
		})
	}
	return out
}

// clamp01 maps NaN to 0.
func clamp01(v float64) float64 {
	if !(v > 0) {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func to8(v float64) uint8 {
	return uint8(math.Round(clamp01(v) * 255))
}

func to16(v float64) uint16 {
	return uint16(math.Round(clamp01(v) * 65535))
}

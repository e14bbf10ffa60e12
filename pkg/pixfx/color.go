package pixfx

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// DefaultSimilarityThreshold is the radius IsSimilar callers conventionally
// use when they have no better value. The engine's own default is
// DefaultThreshold, which is deliberately tighter.
const DefaultSimilarityThreshold = 0.1

// Color is a linear RGBA value. Channels are unbounded floats,
// conventionally in [0,1]; nothing in this package clamps them.
type Color struct {
	R, G, B, A float64
}

// RGB returns an opaque color.
func RGB(r, g, b float64) Color {
	return Color{R: r, G: g, B: b, A: 1}
}

var (
	White = Color{1, 1, 1, 1}
	Black = Color{0, 0, 0, 1}
)

// IsSimilar reports whether a and b lie within threshold of each other in
// RGB space. Alpha is ignored. The comparison is squared distance against
// threshold squared, inclusive at the boundary.
func IsSimilar(a, b Color, threshold float64) bool {
	r := math.Abs(a.R - b.R)
	g := math.Abs(a.G - b.G)
	bl := math.Abs(a.B - b.B)
	return r*r+g*g+bl*bl <= threshold*threshold
}

func (c Color) finite() bool {
	for _, v := range [4]float64{c.R, c.G, c.B, c.A} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Hex renders c as #rrggbb, or #rrggbbaa when alpha is not 1. Channels are
// clamped to [0,1] first, so the result is lossy for out-of-range colors.
func (c Color) Hex() string {
	if c.A == 1 {
		return fmt.Sprintf("#%02x%02x%02x", to8(c.R), to8(c.G), to8(c.B))
	}
	return fmt.Sprintf("#%02x%02x%02x%02x", to8(c.R), to8(c.G), to8(c.B), to8(c.A))
}

func (c Color) String() string {
	return fmt.Sprintf("(%g,%g,%g,%g)", c.R, c.G, c.B, c.A)
}

// IgnoreSet is a list of colors treated as a set for similarity lookups.
type IgnoreSet []Color

// Contains reports whether any color in s is similar to p.
func (s IgnoreSet) Contains(p Color, threshold float64) bool {
	for _, c := range s {
		if IsSimilar(c, p, threshold) {
			return true
		}
	}
	return false
}

var namedColors = map[string]string{
	"black":       "#000000",
	"white":       "#ffffff",
	"red":         "#ff0000",
	"lime":        "#00ff00",
	"green":       "#008000",
	"blue":        "#0000ff",
	"yellow":      "#ffff00",
	"cyan":        "#00ffff",
	"aqua":        "#00ffff",
	"magenta":     "#ff00ff",
	"fuchsia":     "#ff00ff",
	"gray":        "#808080",
	"grey":        "#808080",
	"silver":      "#c0c0c0",
	"maroon":      "#800000",
	"olive":       "#808000",
	"navy":        "#000080",
	"purple":      "#800080",
	"teal":        "#008080",
	"orange":      "#ffa500",
	"transparent": "#00000000",
}

// ParseColor accepts #rgb, #rgba, #rrggbb, #rrggbbaa, a handful of CSS
// color names, or a comma separated float tuple "r,g,b" / "r,g,b,a".
// Tuples are not range checked, so "2,0,0" is a valid overexposed red.
func ParseColor(s string) (Color, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Color{}, errors.New("empty color")
	}
	if hex, ok := namedColors[strings.ToLower(s)]; ok {
		return ParseColor(hex)
	}
	if strings.Contains(s, ",") {
		return parseTuple(s)
	}
	if s[0] != '#' {
		return Color{}, errors.Errorf("unsupported color format: %s", s)
	}
	return parseHex(s[1:])
}

func parseTuple(s string) (Color, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 && len(parts) != 4 {
		return Color{}, errors.Errorf("color tuple needs 3 or 4 channels, got %d", len(parts))
	}
	vals := [4]float64{0, 0, 0, 1}
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return Color{}, errors.Wrapf(err, "invalid channel %d in %q", i, s)
		}
		vals[i] = v
	}
	return Color{vals[0], vals[1], vals[2], vals[3]}, nil
}

func parseHex(hex string) (Color, error) {
	var digits []string
	switch len(hex) {
	case 3, 4:
		for i := 0; i < len(hex); i++ {
			digits = append(digits, strings.Repeat(hex[i:i+1], 2))
		}
	case 6, 8:
		for i := 0; i < len(hex); i += 2 {
			digits = append(digits, hex[i:i+2])
		}
	default:
		return Color{}, errors.Errorf("unsupported hex color length: %d", len(hex))
	}
	vals := [4]float64{0, 0, 0, 1}
	for i, d := range digits {
		v, err := strconv.ParseUint(d, 16, 8)
		if err != nil {
			return Color{}, errors.Wrapf(err, "invalid hex color #%s", hex)
		}
		vals[i] = float64(v) / 255.0
	}
	return Color{vals[0], vals[1], vals[2], vals[3]}, nil
}

// ParseColors parses a ';' separated list of colors. Empty entries are skipped.
func ParseColors(s string) (IgnoreSet, error) {
	var out IgnoreSet
	for _, part := range strings.Split(s, ";") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		c, err := ParseColor(part)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

package pixfx

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Method selects a transform algorithm.
type Method int

const (
	None Method = iota
	GreyScale
	Exposure
	Tint
	Inverse
	Noise
)

// MethodSpec describes one method for help text and parsing.
type MethodSpec struct {
	Method      Method
	Name        string
	Aliases     []string
	Uses        []string // Params fields the method reads besides Threshold
	Formula     string
	Description string
}

// Methods is the registry of every method the engine implements, in
// declaration order. Keep it in sync with kernelFor in engine.go.
var Methods = []MethodSpec{
	{
		Method:      None,
		Name:        "none",
		Aliases:     []string{"identity"},
		Formula:     "c' = c",
		Description: "Identity. Copies the source without consulting the ignore set.",
	},
	{
		Method:      GreyScale,
		Name:        "greyscale",
		Aliases:     []string{"grayscale", "grey", "gray"},
		Uses:        []string{"multiplier"},
		Formula:     "r'=g'=b' = (r+g+b)/3 * m",
		Description: "Average the RGB channels and scale the result.",
	},
	{
		Method:      Exposure,
		Name:        "exposure",
		Uses:        []string{"multiplier"},
		Formula:     "c' = c * m",
		Description: "Scale every channel by the multiplier.",
	},
	{
		Method:      Tint,
		Name:        "tint",
		Uses:        []string{"multiplier", "tint"},
		Formula:     "c' = c * tint.c * m",
		Description: "Multiply each channel by the tint color, then by the multiplier.",
	},
	{
		Method:      Inverse,
		Name:        "inverse",
		Aliases:     []string{"invert", "negate"},
		Uses:        []string{"multiplier"},
		Formula:     "c' = (1 - c) * m",
		Description: "Invert each channel, then scale. Only m=1 is a clean inverse.",
	},
	{
		Method:      Noise,
		Name:        "noise",
		Uses:        []string{"multiplier"},
		Formula:     "c' = c * U[0, m]",
		Description: "Scale each channel by its own uniform random draw.",
	},
}

func (m Method) String() string {
	if m >= 0 && int(m) < len(Methods) {
		return Methods[m].Name
	}
	return "Method(" + strconv.Itoa(int(m)) + ")"
}

// Valid reports whether m is one of the declared methods.
func (m Method) Valid() bool {
	return m >= None && m <= Noise
}

// ParseMethod resolves a method name or alias, case-insensitively.
func ParseMethod(s string) (Method, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	for _, spec := range Methods {
		if spec.Name == key {
			return spec.Method, nil
		}
		for _, a := range spec.Aliases {
			if a == key {
				return spec.Method, nil
			}
		}
	}
	return None, errors.Wrapf(ErrInvalidParams, "unknown method %q", s)
}

func (m Method) MarshalText() ([]byte, error) {
	if !m.Valid() {
		return nil, errors.Wrapf(ErrInvalidParams, "unknown method %d", int(m))
	}
	return []byte(m.String()), nil
}

func (m *Method) UnmarshalText(text []byte) error {
	v, err := ParseMethod(string(text))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

package pixfx

import (
	"math"

	"github.com/pkg/errors"
)

// DefaultThreshold is the ignore radius used by DefaultParams.
const DefaultThreshold = 0.01

// Params is the flat configuration shared by every method. Only the fields
// a method reads matter to it; see Methods for which.
//
// The zero value has Multiplier 0, which blacks out most methods. Start
// from DefaultParams instead.
type Params struct {
	Multiplier float64
	TintColor  Color
	Threshold  float64
}

// DefaultParams returns Multiplier 1, a white tint, and DefaultThreshold.
func DefaultParams() Params {
	return Params{
		Multiplier: 1,
		TintColor:  White,
		Threshold:  DefaultThreshold,
	}
}

// Mode is a method bound to exactly the parameters it uses. The set of
// implementations is closed to this package.
type Mode interface {
	Method() Method
	isMode()
}

type (
	NoneMode      struct{}
	GreyScaleMode struct{ Multiplier float64 }
	ExposureMode  struct{ Multiplier float64 }
	TintMode      struct {
		Color      Color
		Multiplier float64
	}
	InverseMode struct{ Multiplier float64 }
	NoiseMode   struct{ Multiplier float64 }
)

func (NoneMode) Method() Method      { return None }
func (GreyScaleMode) Method() Method { return GreyScale }
func (ExposureMode) Method() Method  { return Exposure }
func (TintMode) Method() Method      { return Tint }
func (InverseMode) Method() Method   { return Inverse }
func (NoiseMode) Method() Method     { return Noise }

func (NoneMode) isMode()      {}
func (GreyScaleMode) isMode() {}
func (ExposureMode) isMode()  {}
func (TintMode) isMode()      {}
func (InverseMode) isMode()   {}
func (NoiseMode) isMode()     {}

// Mode binds method to the relevant fields of p.
func (p Params) Mode(method Method) (Mode, error) {
	switch method {
	case None:
		return NoneMode{}, nil
	case GreyScale:
		return GreyScaleMode{Multiplier: p.Multiplier}, nil
	case Exposure:
		return ExposureMode{Multiplier: p.Multiplier}, nil
	case Tint:
		return TintMode{Color: p.TintColor, Multiplier: p.Multiplier}, nil
	case Inverse:
		return InverseMode{Multiplier: p.Multiplier}, nil
	case Noise:
		return NoiseMode{Multiplier: p.Multiplier}, nil
	}
	return nil, errors.Wrapf(ErrInvalidParams, "unknown method %d", int(method))
}

func validateThreshold(t float64) error {
	if math.IsNaN(t) || math.IsInf(t, 0) {
		return errors.Wrapf(ErrInvalidParams, "threshold must be finite, got %v", t)
	}
	if t < 0 {
		return errors.Wrapf(ErrInvalidParams, "threshold must be non-negative, got %v", t)
	}
	return nil
}

func validateMultiplier(m float64) error {
	if math.IsNaN(m) || math.IsInf(m, 0) {
		return errors.Wrapf(ErrInvalidParams, "multiplier must be finite, got %v", m)
	}
	return nil
}

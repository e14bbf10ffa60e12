package pixfx

import "github.com/pkg/errors"

// Sentinel errors returned (wrapped) by the engine. Match them with errors.Is.
var (
	// ErrInvalidImage reports a nil image, non-positive dimensions, or a
	// pixel buffer whose length is not Width*Height.
	ErrInvalidImage = errors.New("invalid image")

	// ErrInvalidParams reports a structurally invalid configuration: an
	// unknown method, a non-finite multiplier or tint, or a negative threshold.
	ErrInvalidParams = errors.New("invalid params")

	// ErrDimensionMismatch reports a destination buffer whose dimensions
	// differ from the source.
	ErrDimensionMismatch = errors.New("dimension mismatch")
)

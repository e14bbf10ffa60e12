package pixfx

import (
	"math/rand/v2"
	"runtime"
	"sync"

	"github.com/pkg/errors"
)

// minParallelPixels is the buffer size below which the engine stays on
// the calling goroutine.
const minParallelPixels = 4096

// RandFactory builds the random stream for one partition of the buffer.
// It is called on the calling goroutine, once per partition, before any
// worker starts.
type RandFactory func(partition int) *rand.Rand

// Engine runs transforms over a buffer split into contiguous partitions.
// An Engine holds only configuration and is safe for concurrent use, as
// long as concurrent calls do not share a destination.
type Engine struct {
	workers int
	newRand RandFactory
}

// Option configures an Engine.
type Option func(*Engine)

// WithWorkers sets the partition count. n <= 0 means GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(e *Engine) {
		if n <= 0 {
			n = runtime.GOMAXPROCS(0)
		}
		e.workers = n
	}
}

// WithSeed makes Noise reproducible: partition i draws from
// PCG(seed, i). Results depend on the worker count.
func WithSeed(seed uint64) Option {
	return func(e *Engine) {
		e.newRand = func(partition int) *rand.Rand {
			return rand.New(rand.NewPCG(seed, uint64(partition)))
		}
	}
}

// WithRandFactory installs a custom random stream per partition.
func WithRandFactory(f RandFactory) Option {
	return func(e *Engine) {
		e.newRand = f
	}
}

// NewEngine returns an engine using GOMAXPROCS workers and an unseeded
// random source unless configured otherwise.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{workers: runtime.GOMAXPROCS(0)}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Workers returns the configured partition count.
func (e *Engine) Workers() int {
	return e.workers
}

var defaultEngine = NewEngine()

// Transform runs the default engine. See Engine.Transform.
func Transform(src *Image, ignore IgnoreSet, method Method, params Params) (*Image, error) {
	return defaultEngine.Transform(src, ignore, method, params)
}

// TransformInto runs the default engine. See Engine.TransformInto.
func TransformInto(dst, src *Image, ignore IgnoreSet, method Method, params Params) error {
	return defaultEngine.TransformInto(dst, src, ignore, method, params)
}

// Transform returns a new image with method applied to every pixel of src
// that is not similar to a color in ignore.
func (e *Engine) Transform(src *Image, ignore IgnoreSet, method Method, params Params) (*Image, error) {
	if err := src.Validate(); err != nil {
		return nil, err
	}
	mode, err := params.Mode(method)
	if err != nil {
		return nil, err
	}
	dst := NewImage(src.Width, src.Height)
	if err := e.Run(dst, src, ignore, mode, params.Threshold); err != nil {
		return nil, err
	}
	return dst, nil
}

// TransformInto is Transform writing into a caller-owned buffer. dst may
// be src for an in-place update. The caller must not run two transforms
// into the same dst concurrently.
func (e *Engine) TransformInto(dst, src *Image, ignore IgnoreSet, method Method, params Params) error {
	mode, err := params.Mode(method)
	if err != nil {
		return err
	}
	return e.Run(dst, src, ignore, mode, params.Threshold)
}

// Run applies mode to src, writing into dst. Every argument is validated
// before the first write, so on error dst is untouched.
func (e *Engine) Run(dst, src *Image, ignore IgnoreSet, mode Mode, threshold float64) error {
	if err := src.Validate(); err != nil {
		return errors.WithMessage(err, "source")
	}
	if err := dst.Validate(); err != nil {
		return errors.WithMessage(err, "destination")
	}
	if !dst.SameSize(src) {
		return errors.Wrapf(ErrDimensionMismatch, "destination is %dx%d, source is %dx%d",
			dst.Width, dst.Height, src.Width, src.Height)
	}
	if _, ok := mode.(NoneMode); ok {
		// identity never consults the ignore set, so threshold is not checked
		copy(dst.Pix, src.Pix)
		return nil
	}
	if err := validateThreshold(threshold); err != nil {
		return err
	}
	apply, stochastic, err := kernelFor(mode)
	if err != nil {
		return err
	}

	e.parallelFor(len(src.Pix), stochastic, func(start, end int, rng *rand.Rand) {
		for i := start; i < end; i++ {
			p := src.Pix[i]
			if ignore.Contains(p, threshold) {
				dst.Pix[i] = p
				continue
			}
			dst.Pix[i] = apply(p, rng)
		}
	})
	return nil
}

type kernel func(p Color, rng *rand.Rand) Color

// kernelFor is the single dispatch over the closed Mode set. The bool
// reports whether the kernel draws random numbers.
func kernelFor(mode Mode) (kernel, bool, error) {
	switch m := mode.(type) {
	case NoneMode:
		return func(p Color, _ *rand.Rand) Color { return p }, false, nil

	case GreyScaleMode:
		if err := validateMultiplier(m.Multiplier); err != nil {
			return nil, false, err
		}
		k := m.Multiplier
		return func(p Color, _ *rand.Rand) Color {
			grey := (p.R + p.G + p.B) / 3 * k
			return Color{grey, grey, grey, p.A}
		}, false, nil

	case ExposureMode:
		if err := validateMultiplier(m.Multiplier); err != nil {
			return nil, false, err
		}
		k := m.Multiplier
		return func(p Color, _ *rand.Rand) Color {
			return Color{p.R * k, p.G * k, p.B * k, p.A}
		}, false, nil

	case TintMode:
		if err := validateMultiplier(m.Multiplier); err != nil {
			return nil, false, err
		}
		if !m.Color.finite() {
			return nil, false, errors.Wrapf(ErrInvalidParams, "tint color must be finite, got %v", m.Color)
		}
		k, t := m.Multiplier, m.Color
		return func(p Color, _ *rand.Rand) Color {
			return Color{p.R * t.R * k, p.G * t.G * k, p.B * t.B * k, p.A}
		}, false, nil

	case InverseMode:
		if err := validateMultiplier(m.Multiplier); err != nil {
			return nil, false, err
		}
		k := m.Multiplier
		return func(p Color, _ *rand.Rand) Color {
			return Color{(1 - p.R) * k, (1 - p.G) * k, (1 - p.B) * k, p.A}
		}, false, nil

	case NoiseMode:
		if err := validateMultiplier(m.Multiplier); err != nil {
			return nil, false, err
		}
		k := m.Multiplier
		return func(p Color, rng *rand.Rand) Color {
			return Color{
				p.R * (unitClosed(rng) * k),
				p.G * (unitClosed(rng) * k),
				p.B * (unitClosed(rng) * k),
				p.A,
			}
		}, true, nil
	}
	return nil, false, errors.Wrapf(ErrInvalidParams, "unsupported mode %T", mode)
}

// unitClosed draws uniformly from [0, 1], both ends included.
func unitClosed(rng *rand.Rand) float64 {
	return float64(rng.Uint64N(1<<53+1)) / (1 << 53)
}

// parallelFor splits [0, n) into one contiguous chunk per worker and
// blocks until all of them finish. When stochastic, each chunk gets its
// own random stream.
func (e *Engine) parallelFor(n int, stochastic bool, fn func(start, end int, rng *rand.Rand)) {
	if n <= 0 {
		return
	}
	workers := e.workers
	if workers < 1 || n < minParallelPixels {
		workers = 1
	}
	workers = min(workers, n)
	chunk := (n + workers - 1) / workers

	var rngs []*rand.Rand
	if stochastic {
		factory := e.newRand
		if factory == nil {
			base := rand.Uint64()
			factory = func(partition int) *rand.Rand {
				return rand.New(rand.NewPCG(base, uint64(partition)))
			}
		}
		rngs = make([]*rand.Rand, workers)
		for i := range rngs {
			rngs[i] = factory(i)
		}
	}
	rngFor := func(i int) *rand.Rand {
		if rngs == nil {
			return nil
		}
		return rngs[i]
	}

	if workers == 1 {
		fn(0, n, rngFor(0))
		return
	}

	var wg sync.WaitGroup
	for i := range workers {
		start := i * chunk
		if start >= n {
			break
		}
		end := min(start+chunk, n)
		wg.Add(1)
		go func(start, end int, rng *rand.Rand) {
			defer wg.Done()
			fn(start, end, rng)
		}(start, end, rngFor(i))
	}
	wg.Wait()
}

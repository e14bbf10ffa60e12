// Package sprite models the host side of a post-processing effect: a
// source image that is either shown as-is or swapped for a transformed
// copy, with the transformed buffer cached across re-applies.
package sprite

import (
	"fmt"
	"io"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/Fepozopo/pixfx/pkg/pixfx"
)

// State is the displayed variant.
type State int

const (
	Original State = iota
	Transformed
)

func (s State) String() string {
	switch s {
	case Original:
		return "original"
	case Transformed:
		return "transformed"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Settings is the effect configuration a host edits.
type Settings struct {
	Method pixfx.Method
	Params pixfx.Params
	Ignore pixfx.IgnoreSet
}

// DefaultSettings returns GreyScale with default params and no ignored colors.
func DefaultSettings() Settings {
	return Settings{Method: pixfx.GreyScale, Params: pixfx.DefaultParams()}
}

func (s Settings) clone() Settings {
	s.Ignore = append(pixfx.IgnoreSet(nil), s.Ignore...)
	return s
}

// Postprocessor swaps a source image for its transformed copy. Its methods
// are safe for concurrent use. The image returned by Current is shared with
// later renders; use Snapshot to read it while another goroutine edits.
type Postprocessor struct {
	mu       sync.RWMutex
	source   *pixfx.Image
	output   *pixfx.Image
	state    State
	settings Settings
	engine   *pixfx.Engine
	logger   *logrus.Logger
	renders  int
}

// Option configures a Postprocessor.
type Option func(*Postprocessor)

// WithEngine sets the engine used for renders.
func WithEngine(e *pixfx.Engine) Option {
	return func(p *Postprocessor) { p.engine = e }
}

// WithLogger sets the logger for state transitions.
func WithLogger(l *logrus.Logger) Option {
	return func(p *Postprocessor) { p.logger = l }
}

// New validates source and returns a Postprocessor in the Original state.
// The source is not copied; callers must not mutate it afterwards.
func New(source *pixfx.Image, settings Settings, opts ...Option) (*Postprocessor, error) {
	if err := source.Validate(); err != nil {
		return nil, err
	}
	p := &Postprocessor{
		source:   source,
		settings: settings.clone(),
		state:    Original,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.engine == nil {
		p.engine = pixfx.NewEngine()
	}
	if p.logger == nil {
		p.logger = logrus.New()
		p.logger.SetOutput(io.Discard)
	}
	return p, nil
}

// Apply renders the effect and moves to Transformed. The first Apply
// allocates the output buffer; later ones reuse it. On error the state and
// the displayed image are unchanged.
func (p *Postprocessor) Apply() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.render(p.settings)
}

// Revert moves to Original and releases the cached output.
func (p *Postprocessor) Revert() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state == Original {
		return
	}
	p.state = Original
	p.output = nil
	p.logger.WithField("state", p.state).Debug("reverted to source image")
}

// Current returns the image the host should display. While Transformed
// this is the cached buffer, which later renders overwrite in place, so it
// must not be read concurrently with Apply or a setter.
func (p *Postprocessor) Current() *pixfx.Image {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.state == Transformed {
		return p.output
	}
	return p.source
}

// Snapshot returns a private copy of the displayed image.
func (p *Postprocessor) Snapshot() *pixfx.Image {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.state == Transformed {
		return p.output.Clone()
	}
	return p.source.Clone()
}

// Source returns the untouched source image.
func (p *Postprocessor) Source() *pixfx.Image {
	return p.source
}

func (p *Postprocessor) State() State {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.state
}

func (p *Postprocessor) Settings() Settings {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.settings.clone()
}

// Renders counts successful renders since construction.
func (p *Postprocessor) Renders() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.renders
}

// SetSettings replaces the configuration. While Transformed the effect is
// re-rendered immediately; if that fails the old settings stay in place.
func (p *Postprocessor) SetSettings(s Settings) error {
	return p.update(func(cur *Settings) { *cur = s.clone() })
}

// SetMethod changes only the method. See SetSettings.
func (p *Postprocessor) SetMethod(m pixfx.Method) error {
	return p.update(func(s *Settings) { s.Method = m })
}

// SetParams changes only the params. See SetSettings.
func (p *Postprocessor) SetParams(params pixfx.Params) error {
	return p.update(func(s *Settings) { s.Params = params })
}

// SetIgnore changes only the ignore set. See SetSettings.
func (p *Postprocessor) SetIgnore(ignore pixfx.IgnoreSet) error {
	return p.update(func(s *Settings) { s.Ignore = append(pixfx.IgnoreSet(nil), ignore...) })
}

func (p *Postprocessor) update(edit func(*Settings)) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	next := p.settings
	edit(&next)
	if p.state == Transformed {
		if err := p.render(next); err != nil {
			return err
		}
	}
	p.settings = next
	return nil
}

// render must be called with mu held.
func (p *Postprocessor) render(s Settings) error {
	out := p.output
	reused := out != nil
	if !reused {
		out = pixfx.NewImage(p.source.Width, p.source.Height)
	}
	if err := p.engine.TransformInto(out, p.source, s.Ignore, s.Method, s.Params); err != nil {
		p.logger.WithError(err).WithField("method", s.Method).Warn("render failed")
		return err
	}
	p.output = out
	p.state = Transformed
	p.renders++
	p.logger.WithFields(logrus.Fields{
		"method":        s.Method,
		"width":         p.source.Width,
		"height":        p.source.Height,
		"ignored":       len(s.Ignore),
		"buffer_reused": reused,
	}).Debug("rendered effect")
	return nil
}

package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/Fepozopo/pixfx/pkg/pixfx"
	"github.com/Fepozopo/pixfx/pkg/sprite"
)

// Environment keys read by LoadConfig. Flags override them.
const (
	EnvMethod     = "PIXFX_METHOD"
	EnvMultiplier = "PIXFX_MULTIPLIER"
	EnvTint       = "PIXFX_TINT"
	EnvThreshold  = "PIXFX_THRESHOLD"
	EnvIgnore     = "PIXFX_IGNORE"
	EnvWorkers    = "PIXFX_WORKERS"
	EnvSeed       = "PIXFX_SEED"
	EnvDebug      = "PIXFX_DEBUG"
)

// Config holds the textual effect settings before they are parsed into
// pixfx types. Seed 0 means unseeded noise.
type Config struct {
	Method     string
	Multiplier float64
	Tint       string
	Threshold  float64
	Ignore     string
	Workers    int
	Seed       uint64
	Debug      bool
}

// DefaultConfig mirrors pixfx.DefaultParams with the GreyScale method.
func DefaultConfig() Config {
	return Config{
		Method:     pixfx.GreyScale.String(),
		Multiplier: 1,
		Tint:       "#ffffff",
		Threshold:  pixfx.DefaultThreshold,
	}
}

// LoadConfig loads envFile into the process environment if it exists and
// then reads the PIXFX_* keys on top of DefaultConfig. Variables already
// set in the environment win over the file.
func LoadConfig(envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", envFile, err)
		}
	}
	cfg := DefaultConfig()
	if v, ok := lookup(EnvMethod); ok {
		cfg.Method = v
	}
	if v, ok := lookup(EnvTint); ok {
		cfg.Tint = v
	}
	if v, ok := lookup(EnvIgnore); ok {
		cfg.Ignore = v
	}
	var err error
	if cfg.Multiplier, err = envFloat(EnvMultiplier, cfg.Multiplier); err != nil {
		return Config{}, err
	}
	if cfg.Threshold, err = envFloat(EnvThreshold, cfg.Threshold); err != nil {
		return Config{}, err
	}
	if v, ok := lookup(EnvWorkers); ok {
		n, perr := strconv.Atoi(v)
		if perr != nil {
			return Config{}, fmt.Errorf("invalid %s: %w", EnvWorkers, perr)
		}
		cfg.Workers = n
	}
	if v, ok := lookup(EnvSeed); ok {
		n, perr := strconv.ParseUint(v, 10, 64)
		if perr != nil {
			return Config{}, fmt.Errorf("invalid %s: %w", EnvSeed, perr)
		}
		cfg.Seed = n
	}
	if v, ok := lookup(EnvDebug); ok {
		b, perr := strconv.ParseBool(v)
		if perr != nil {
			return Config{}, fmt.Errorf("invalid %s: %w", EnvDebug, perr)
		}
		cfg.Debug = b
	}
	return cfg, nil
}

func lookup(key string) (string, bool) {
	v, ok := os.LookupEnv(key)
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}

func envFloat(key string, def float64) (float64, error) {
	v, ok := lookup(key)
	if !ok {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return f, nil
}

// Settings parses the textual fields into effect settings.
func (c Config) Settings() (sprite.Settings, error) {
	method, err := pixfx.ParseMethod(c.Method)
	if err != nil {
		return sprite.Settings{}, err
	}
	tint, err := pixfx.ParseColor(c.Tint)
	if err != nil {
		return sprite.Settings{}, fmt.Errorf("invalid tint: %w", err)
	}
	ignore, err := pixfx.ParseColors(c.Ignore)
	if err != nil {
		return sprite.Settings{}, fmt.Errorf("invalid ignore list: %w", err)
	}
	return sprite.Settings{
		Method: method,
		Params: pixfx.Params{
			Multiplier: c.Multiplier,
			TintColor:  tint,
			Threshold:  c.Threshold,
		},
		Ignore: ignore,
	}, nil
}

// Engine builds the engine described by the worker and seed settings.
func (c Config) Engine() *pixfx.Engine {
	opts := []pixfx.Option{pixfx.WithWorkers(c.Workers)}
	if c.Seed != 0 {
		opts = append(opts, pixfx.WithSeed(c.Seed))
	}
	return pixfx.NewEngine(opts...)
}

package cli

import (
	"flag"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Fepozopo/pixfx/pkg/pixfx"
	"github.com/Fepozopo/pixfx/pkg/sprite"
)

// Env is what a command needs from the process. Tests fill it with buffers.
type Env struct {
	Stdin   io.Reader
	Stdout  io.Writer
	Stderr  io.Writer
	EnvFile string
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "Usage: pixfx <command> [flags]")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  apply [flags] <input> <output>  transform an image file")
	fmt.Fprintln(w, "  methods                         list transform methods")
	fmt.Fprintln(w, "  version                         print the version")
	fmt.Fprintln(w, "  update [-y]                     check for and install updates")
	fmt.Fprintln(w, "Run 'pixfx apply -h' for apply flags.")
}

// Run executes one command and returns the process exit code.
func Run(args []string, env Env) int {
	if env.Stdout == nil {
		env.Stdout = io.Discard
	}
	if env.Stderr == nil {
		env.Stderr = io.Discard
	}
	if len(args) == 0 {
		usage(env.Stderr)
		return 2
	}
	var err error
	switch args[0] {
	case "apply":
		err = runApply(args[1:], env)
	case "methods":
		err = runMethods(env.Stdout)
	case "version":
		fmt.Fprintf(env.Stdout, "pixfx %s\n", Version)
	case "update":
		err = runUpdate(args[1:], env)
	case "help", "-h", "--help":
		usage(env.Stdout)
	default:
		fmt.Fprintf(env.Stderr, "unknown command %q\n", args[0])
		usage(env.Stderr)
		return 2
	}
	if err == flag.ErrHelp {
		return 0
	}
	if err != nil {
		fmt.Fprintf(env.Stderr, "pixfx: %v\n", err)
		return 1
	}
	return 0
}

func runApply(args []string, env Env) error {
	cfg, err := LoadConfig(env.EnvFile)
	if err != nil {
		return err
	}

	fs := flag.NewFlagSet("apply", flag.ContinueOnError)
	fs.SetOutput(env.Stderr)
	fs.StringVar(&cfg.Method, "method", cfg.Method, "greyscale|exposure|tint|inverse|noise|none")
	fs.Float64Var(&cfg.Multiplier, "multiplier", cfg.Multiplier, "effect intensity")
	fs.StringVar(&cfg.Tint, "tint", cfg.Tint, "tint color (#rrggbb, name, or r,g,b[,a])")
	fs.Float64Var(&cfg.Threshold, "threshold", cfg.Threshold, "similarity radius for ignored colors")
	fs.StringVar(&cfg.Ignore, "ignore", cfg.Ignore, "';' separated colors to leave untouched")
	fs.IntVar(&cfg.Workers, "workers", cfg.Workers, "worker count (0 = GOMAXPROCS)")
	fs.Uint64Var(&cfg.Seed, "seed", cfg.Seed, "noise seed (0 = random)")
	fs.BoolVar(&cfg.Debug, "debug", cfg.Debug, "verbose logging")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 2 {
		fs.Usage()
		return fmt.Errorf("apply requires <input> and <output>")
	}
	in, out := fs.Arg(0), fs.Arg(1)

	logger := NewLogger(env.Stderr, cfg.Debug)
	settings, err := cfg.Settings()
	if err != nil {
		return err
	}

	img, format, err := LoadImage(in)
	if err != nil {
		return err
	}
	if info, ierr := ImageInfo(img, format); ierr == nil {
		logger.Debug(info)
	}
	src := pixfx.FromImage(img)

	start := time.Now()
	pp, err := sprite.New(src, settings, sprite.WithEngine(cfg.Engine()), sprite.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("%s: %w", in, err)
	}
	if err := pp.Apply(); err != nil {
		return err
	}
	result := pp.Current()

	if err := SaveImage(out, result.NRGBA()); err != nil {
		return err
	}
	logger.WithFields(logrus.Fields{
		"input":   in,
		"output":  out,
		"method":  settings.Method,
		"width":   result.Width,
		"height":  result.Height,
		"ignored": countIgnored(src, settings),
		"elapsed": time.Since(start).String(),
	}).Info("image transformed")
	return nil
}

// countIgnored reports how many source pixels the ignore set protects.
func countIgnored(src *pixfx.Image, s sprite.Settings) int {
	if s.Method == pixfx.None || len(s.Ignore) == 0 {
		return 0
	}
	n := 0
	for _, p := range src.Pix {
		if s.Ignore.Contains(p, s.Params.Threshold) {
			n++
		}
	}
	return n
}

func runMethods(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tFORMULA\tPARAMS\tDESCRIPTION")
	for _, m := range pixfx.Methods {
		uses := "-"
		if len(m.Uses) > 0 {
			uses = strings.Join(m.Uses, ",")
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", m.Name, m.Formula, uses, m.Description)
	}
	return tw.Flush()
}

func runUpdate(args []string, env Env) error {
	fs := flag.NewFlagSet("update", flag.ContinueOnError)
	fs.SetOutput(env.Stderr)
	yes := fs.Bool("y", false, "install without asking")
	debug := fs.Bool("debug", false, "verbose logging")
	if err := fs.Parse(args); err != nil {
		return err
	}
	u := &Updater{
		In:     env.Stdin,
		Out:    env.Stdout,
		Logger: NewLogger(env.Stderr, *debug),
	}
	return u.Check(Version, *yes)
}

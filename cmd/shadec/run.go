package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/gogpu/shade/catalog"
	"github.com/gogpu/shade/internal/config"
)

const shadecVersion = "0.1.0-dev"

// errUsage reports a command line problem already written to stderr.
var errUsage = errors.New("usage")

// options holds the parsed command line.
type options struct {
	cfg        *config.Config
	configPath string
	entry      string
	all        bool
	list       bool
	watch      bool
	highlight  bool
	version    bool
	programs   []string
}

// parseFlags parses args. Only flags given explicitly override the
// configuration file.
func parseFlags(args []string, stderr io.Writer) (*options, error) {
	fs := flag.NewFlagSet("shadec", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var (
		o          options
		flagCfg    config.Config
		remapDepth bool
		color      bool
		group      uint
		workgroup  uint
	)
	fs.StringVar(&flagCfg.Dialect, "dialect", "", "output dialect: glsl or wgsl")
	fs.StringVar(&flagCfg.GLSLVersion, "glsl-version", "", `GLSL version: 100, "300 es", 330, ...`)
	fs.StringVar(&flagCfg.Precision, "precision", "", "default float precision of ES fragment shaders")
	fs.BoolVar(&remapDepth, "remap-depth", false, "map clip-space z to [0, w] in WGSL vertex entries")
	fs.StringVar(&flagCfg.Feedback, "feedback", "", "override the capture layout: interleaved or separate")
	fs.UintVar(&group, "feedback-group", 1, "bind group of the feedback emulation buffers")
	fs.UintVar(&workgroup, "workgroup-size", 64, "workgroup size of the feedback emulation entry")
	fs.StringVar(&flagCfg.OutDir, "o", "", "output directory (default: stdout)")
	fs.StringVar(&flagCfg.LogLevel, "v", "", "log level: debug, info, warn or error")
	fs.BoolVar(&color, "color", false, "force coloured output on or off")
	fs.StringVar(&o.configPath, "config", "", "config file (default: search shadec.toml upward)")
	fs.StringVar(&o.entry, "entry", "", "compile only this entry point")
	fs.BoolVar(&o.all, "all", false, "compile every program")
	fs.BoolVar(&o.list, "list", false, "list programs")
	fs.BoolVar(&o.watch, "watch", false, "recompile when the config file changes")
	fs.BoolVar(&o.highlight, "highlight", false, "syntax-highlight output on a terminal")
	fs.BoolVar(&o.version, "version", false, "print version")
	fs.Usage = func() { usage(fs) }

	if err := fs.Parse(args); err != nil {
		return nil, errUsage
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "remap-depth":
			flagCfg.RemapDepth = &remapDepth
		case "color":
			flagCfg.Color = &color
		case "feedback-group":
			g := uint32(group) //nolint:gosec // G115: bind group numbers are small
			flagCfg.FeedbackGroup = &g
		case "workgroup-size":
			w := uint32(workgroup) //nolint:gosec // G115: workgroup sizes are small
			flagCfg.WorkgroupSize = &w
		}
	})
	if err := flagCfg.Validate(); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return nil, errUsage
	}
	o.cfg = &flagCfg
	o.programs = fs.Args()
	return &o, nil
}

func usage(fs *flag.FlagSet) {
	w := fs.Output()
	fmt.Fprintf(w, "Usage: shadec [options] <program>...\n\n")
	fmt.Fprintf(w, "Programs: %s\n\n", strings.Join(catalog.Names(), ", "))
	fmt.Fprintf(w, "Options:\n")
	fs.PrintDefaults()
	fmt.Fprintf(w, "\nExamples:\n")
	fmt.Fprintf(w, "  shadec basic                         Compile to WGSL on stdout\n")
	fmt.Fprintf(w, "  shadec -dialect glsl textured        Compile to GLSL ES 1.00\n")
	fmt.Fprintf(w, "  shadec -all -o build/shaders         Compile every program to files\n")
}

// loadConfig layers the defaults, the config file and the flags.
func loadConfig(o *options) (*config.Config, string, error) {
	var (
		file *config.Config
		path = o.configPath
		err  error
	)
	if path != "" {
		file, err = config.LoadFile(path)
	} else {
		wd, wdErr := os.Getwd()
		if wdErr != nil {
			return nil, "", wdErr
		}
		file, path, err = config.Load(wd)
	}
	if err != nil {
		return nil, "", err
	}

	cfg, err := config.Default().Merge(file)
	if err != nil {
		return nil, "", err
	}
	cfg, err = cfg.Merge(o.cfg)
	return cfg, path, err
}

func newLogger(cfg *config.Config, stderr io.Writer) *slog.Logger {
	level, err := cfg.Level()
	if err != nil {
		level = slog.LevelWarn
	}
	return slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
}

// run executes the command and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	o, err := parseFlags(args, stderr)
	if err != nil {
		return 2
	}

	if o.version {
		fmt.Fprintf(stdout, "shadec version %s\n", shadecVersion)
		return 0
	}
	if o.list {
		for _, p := range catalog.All() {
			fmt.Fprintf(stdout, "%-10s %s\n", p.Name, p.Description)
		}
		return 0
	}

	cfg, cfgPath, err := loadConfig(o)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	logger := newLogger(cfg, stderr)
	if cfgPath != "" {
		logger.Debug("shadec: config loaded", slog.String("path", cfgPath))
	}

	programs, err := selectPrograms(o)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}

	term := newTerminal(cfg, stdout, stderr)
	code := compileAndPrint(ctx, programs, cfg, o, logger, term)
	if !o.watch {
		return code
	}
	if cfgPath == "" {
		fmt.Fprintln(stderr, "Error: -watch needs a config file")
		return 2
	}

	err = config.Watch(ctx, cfgPath, logger, func(fileCfg *config.Config, err error) {
		if err != nil {
			term.errorf("%v", err)
			return
		}
		next, err := config.Default().Merge(fileCfg)
		if err == nil {
			next, err = next.Merge(o.cfg)
		}
		if err != nil {
			term.errorf("%v", err)
			return
		}
		compileAndPrint(ctx, programs, next, o, newLogger(next, stderr), newTerminal(next, stdout, stderr))
	})
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// selectPrograms resolves the requested program names.
func selectPrograms(o *options) ([]catalog.Program, error) {
	if o.all {
		return catalog.All(), nil
	}
	if len(o.programs) == 0 {
		return nil, fmt.Errorf("no program specified (try -list)")
	}
	programs := make([]catalog.Program, 0, len(o.programs))
	for _, name := range o.programs {
		p, ok := catalog.Lookup(name)
		if !ok {
			if s := catalog.Suggest(name); s != "" {
				return nil, fmt.Errorf("unknown program %q (did you mean %q?)", name, s)
			}
			return nil, fmt.Errorf("unknown program %q", name)
		}
		programs = append(programs, p)
	}
	return programs, nil
}

// compileAndPrint compiles programs concurrently and prints or writes the
// results in program order.
func compileAndPrint(ctx context.Context, programs []catalog.Program, cfg *config.Config, o *options, logger *slog.Logger, term *terminal) int {
	results := make([][]artifact, len(programs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, p := range programs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			arts, err := compileProgram(p, cfg, o.entry, logger)
			if err != nil {
				return err
			}
			results[i] = arts
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		term.errorf("%v", err)
		return 1
	}

	total := 0
	for _, arts := range results {
		total += len(arts)
	}
	term.headers = total > 1

	outDir, err := cfg.ResolveOutDir()
	if err != nil {
		term.errorf("%v", err)
		return 1
	}
	if outDir != "" {
		if err := os.MkdirAll(outDir, 0o755); err != nil {
			term.errorf("%v", err)
			return 1
		}
	}

	for _, arts := range results {
		for _, a := range arts {
			for _, d := range a.diagnostics {
				term.diagnostic(a.name, d)
			}
			if outDir == "" {
				term.source(a, o.highlight)
				continue
			}
			path := filepath.Join(outDir, a.name)
			if err := os.WriteFile(path, []byte(a.source), 0o644); err != nil { //nolint:gosec // G306: generated sources are not secret
				term.errorf("%v", err)
				return 1
			}
			fmt.Fprintf(term.stdout, "Wrote %s (%d bytes)\n", path, len(a.source))
		}
	}
	return 0
}

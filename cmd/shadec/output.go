package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/muesli/termenv"

	"github.com/gogpu/shade"
	"github.com/gogpu/shade/catalog"
	"github.com/gogpu/shade/internal/config"
	"github.com/gogpu/shade/ir"
)

// artifact is one generated source file.
type artifact struct {
	name        string // file name, e.g. "basic.wgsl"
	lang        string // chroma lexer name
	source      string
	diagnostics []ir.Diagnostic
}

// compileProgram builds p and lowers it to the configured dialect. When
// entry is non-empty only that entry point is compiled.
func compileProgram(p catalog.Program, cfg *config.Config, entry string, logger *slog.Logger) ([]artifact, error) {
	prog, err := p.Build(shade.WithLogger(logger))
	if err != nil {
		return nil, err
	}

	var entries []ir.EntryPoint
	for _, ep := range prog.Module().EntryPoints {
		if entry == "" || ep.Name == entry {
			entries = append(entries, ep)
		}
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("%s: no entry point %q", p.Name, entry)
	}

	if cfg.Dialect == "glsl" {
		return compileGLSL(p.Name, prog, entries, cfg, logger)
	}
	return compileWGSL(p.Name, prog, entries, cfg, entry, logger)
}

func compileGLSL(name string, prog *shade.Program, entries []ir.EntryPoint, cfg *config.Config, logger *slog.Logger) ([]artifact, error) {
	opts, err := cfg.GLSLOptions(logger)
	if err != nil {
		return nil, err
	}
	arts := make([]artifact, 0, len(entries))
	for _, ep := range entries {
		src, info, err := prog.GLSL(ep.Name, opts)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		arts = append(arts, artifact{
			name:        fmt.Sprintf("%s.%s.%s.glsl", name, ep.Name, stageExt(ep.Stage)),
			lang:        "glsl",
			source:      src,
			diagnostics: info.Diagnostics,
		})
	}
	return arts, nil
}

func compileWGSL(name string, prog *shade.Program, entries []ir.EntryPoint, cfg *config.Config, entry string, logger *slog.Logger) ([]artifact, error) {
	opts, err := cfg.WGSLOptions(logger)
	if err != nil {
		return nil, err
	}
	opts.EntryPoint = entry
	src, info, err := prog.WGSL(opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	file := name + ".wgsl"
	if entry != "" {
		file = fmt.Sprintf("%s.%s.wgsl", name, entry)
	}
	arts := []artifact{{name: file, lang: "wgsl", source: src, diagnostics: info.Diagnostics}}

	for _, ep := range entries {
		if ep.Feedback == nil {
			continue
		}
		src, _, err := prog.WGSLFeedback(ep.Name, opts)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		arts = append(arts, artifact{
			name:   fmt.Sprintf("%s.%s.feedback.wgsl", name, ep.Name),
			lang:   "wgsl",
			source: src,
		})
	}
	return arts, nil
}

func stageExt(stage ir.ShaderStage) string {
	if stage == ir.StageFragment {
		return "frag"
	}
	return "vert"
}

// terminal prints sources and diagnostics, coloured when the output
// supports it.
type terminal struct {
	stdout  io.Writer
	out     *termenv.Output
	errOut  *termenv.Output
	headers bool
}

func newTerminal(cfg *config.Config, stdout, stderr io.Writer) *terminal {
	var opts []termenv.OutputOption
	if cfg.Color != nil {
		profile := termenv.Ascii
		if *cfg.Color {
			profile = termenv.ANSI256
		}
		opts = append(opts, termenv.WithProfile(profile))
	}
	return &terminal{
		stdout: stdout,
		out:    termenv.NewOutput(stdout, opts...),
		errOut: termenv.NewOutput(stderr, opts...),
	}
}

func (t *terminal) errorf(format string, args ...any) {
	label := t.errOut.String("Error:").Foreground(t.errOut.Color("1")).Bold()
	fmt.Fprintf(t.errOut, "%s %s\n", label, fmt.Sprintf(format, args...))
}

func (t *terminal) diagnostic(file string, d ir.Diagnostic) {
	color := "6"
	if d.Severity == ir.Warning {
		color = "3"
	}
	sev := t.errOut.String(d.Severity.String()).Foreground(t.errOut.Color(color))
	fmt.Fprintf(t.errOut, "%s: %s: %s[%s]: %s\n", file, d.Entry, sev, d.Code, d.Message)
}

// source writes a.source to stdout, highlighted when requested and the
// terminal has colours.
func (t *terminal) source(a artifact, highlight bool) {
	if t.headers {
		fmt.Fprintf(t.stdout, "// %s\n", a.name)
	}
	if highlight && t.out.Profile != termenv.Ascii {
		if err := quick.Highlight(t.stdout, a.source, a.lang, formatter(t.out.Profile), "monokai"); err == nil {
			return
		}
	}
	io.WriteString(t.stdout, a.source) //nolint:errcheck // best effort, like fmt.Print
}

func formatter(p termenv.Profile) string {
	switch p {
	case termenv.TrueColor:
		return "terminal16m"
	case termenv.ANSI256:
		return "terminal256"
	default:
		return "terminal"
	}
}

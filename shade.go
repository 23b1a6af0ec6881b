// Package shade is an embedded shader DSL for Go.
//
// Host code describes vertex and fragment stages with typed values and
// structured statements; shade records them as an ir.Module and lowers the
// same module to two dialects:
//   - GLSL: legacy OpenGL / WebGL text (#version 100, 300 es, 330 core)
//   - WGSL: WebGPU text, with texture samples hoisted out of branches and
//     transform feedback emulated by a compute entry point
//
// Example:
//
//	b := shade.NewBuilder()
//	_, err := b.Vertex("main", func(s *shade.Scope) {
//	    pos := s.Attribute("position", shade.Vec2).AsVector()
//	    mvp := s.Uniform("mvp", shade.Mat4).AsMatrix()
//	    s.SetPosition(mvp.MulVec(s.Vec4(pos, 0.0, 1.0)))
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	prog, _ := b.Program()
//	src, _, err := prog.GLSL("main", glsl.DefaultOptions())
//
// A Builder is single-threaded. A Program is frozen and may be compiled
// any number of times, concurrently, with byte-identical results.
package shade

import (
	"log/slog"

	"github.com/gogpu/shade/glsl"
	"github.com/gogpu/shade/ir"
	"github.com/gogpu/shade/wgsl"
)

// Program is a frozen module ready for compilation.
type Program struct {
	module *ir.Module
	logger *slog.Logger
}

// Module returns the frozen IR. Callers must not modify it.
func (p *Program) Module() *ir.Module {
	return p.module
}

// GLSL compiles one entry point to the legacy dialect.
func (p *Program) GLSL(entry string, opts glsl.Options) (string, glsl.TranslationInfo, error) {
	opts.EntryPoint = entry
	if opts.Logger == nil {
		opts.Logger = p.logger
	}
	return glsl.Compile(p.module, opts)
}

// WGSL compiles the module (or opts.EntryPoint alone) to the modern
// dialect.
func (p *Program) WGSL(opts wgsl.Options) (string, wgsl.TranslationInfo, error) {
	if opts.Logger == nil {
		opts.Logger = p.logger
	}
	return wgsl.Compile(p.module, opts)
}

// WGSLFeedback lowers a capturing vertex entry to a compute program that
// writes the captured varyings to storage buffers.
func (p *Program) WGSLFeedback(entry string, opts wgsl.Options) (string, wgsl.FeedbackInfo, error) {
	if opts.Logger == nil {
		opts.Logger = p.logger
	}
	return wgsl.CompileFeedback(p.module, entry, opts)
}

// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package wgsl

import (
	"fmt"
	"log/slog"

	"github.com/gogpu/shade/bind"
	"github.com/gogpu/shade/ir"
)

// Options configures WGSL code generation.
type Options struct {
	// EntryPoint restricts output to one entry point. If empty, every
	// entry point of the module is written into one WGSL module.
	EntryPoint string

	// RemapDepth rewrites clip-space z from [-w, w] to [0, w] before every
	// vertex return, for projection matrices built for OpenGL.
	RemapDepth bool

	// FeedbackMode overrides the capture layout requested by the entry
	// point. Only used by CompileFeedback.
	FeedbackMode *ir.FeedbackMode

	// FeedbackGroup is the binding group of the emulation buffers.
	// Defaults to 1.
	FeedbackGroup uint32

	// WorkgroupSize is the x size of the emulation workgroup.
	// Defaults to 64.
	WorkgroupSize uint32

	// Logger receives compile events and hoist records.
	// Defaults to slog.Default().
	Logger *slog.Logger
}

// DefaultOptions returns sensible default options for WGSL generation.
func DefaultOptions() Options {
	return Options{
		FeedbackGroup: 1,
		WorkgroupSize: 64,
	}
}

// Binding describes one group/binding pair of the generated module.
type Binding struct {
	Name    string
	Role    ir.ResourceRole
	Group   uint32
	Binding uint32
}

// TranslationInfo contains metadata about the translation.
type TranslationInfo struct {
	// EntryPoints lists the written entry points in module order.
	EntryPoints []string

	// Bindings lists uniform, texture and sampler bindings in declaration
	// order.
	Bindings []Binding

	// AttributeLocations maps vertex attribute names to their locations.
	AttributeLocations map[string]uint32

	// OutputLocations maps fragment output names to their locations.
	OutputLocations map[string]uint32

	// Diagnostics holds one record per conditional whose texture samples
	// were hoisted.
	Diagnostics []ir.Diagnostic
}

// Compile generates WGSL source code for an IR module.
// Returns the WGSL source as a string, translation info, or an error.
func Compile(module *ir.Module, options Options) (string, TranslationInfo, error) {
	applyDefaults(&options)

	if len(module.EntryPoints) == 0 {
		return "", TranslationInfo{}, fmt.Errorf("wgsl: %w", ir.Errorf(ir.ErrInvalidModule, "module has no entry points"))
	}
	var entries []*ir.EntryPoint
	if options.EntryPoint != "" {
		idx := module.EntryPointByName(options.EntryPoint)
		if idx < 0 {
			return "", TranslationInfo{}, fmt.Errorf("wgsl: %w", ir.Errorf(ir.ErrInvalidModule, "entry point %q not found", options.EntryPoint))
		}
		entries = append(entries, &module.EntryPoints[idx])
	} else {
		for i := range module.EntryPoints {
			entries = append(entries, &module.EntryPoints[i])
		}
	}

	table, err := bind.Allocate(module, bind.WithLogger(options.Logger))
	if err != nil {
		return "", TranslationInfo{}, fmt.Errorf("wgsl: %w", err)
	}

	w := newWriter(module, &options, table, entries)
	if err := w.writeModule(); err != nil {
		return "", TranslationInfo{}, fmt.Errorf("wgsl: %w", err)
	}

	src := w.String()
	options.Logger.Debug("wgsl: compiled",
		slog.Int("entries", len(entries)),
		slog.Int("hoists", len(w.info.Diagnostics)),
		slog.Int("bytes", len(src)))
	return src, w.info, nil
}

func applyDefaults(options *Options) {
	if options.Logger == nil {
		options.Logger = slog.Default()
	}
	if options.FeedbackGroup == 0 {
		options.FeedbackGroup = 1
	}
	if options.WorkgroupSize == 0 {
		options.WorkgroupSize = 64
	}
}

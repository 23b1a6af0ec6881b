// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package glsl

import (
	"fmt"
	"log/slog"

	"github.com/gogpu/shade/bind"
	"github.com/gogpu/shade/ir"
)

// Version represents a GLSL version.
type Version struct {
	Major uint8
	Minor uint8
	ES    bool // true for GLSL ES (OpenGL ES / WebGL)
}

// Common GLSL versions.
var (
	// OpenGL ES / WebGL versions
	Version100   = Version{Major: 1, Minor: 0, ES: true}  // ES 1.00 / WebGL 1.0
	VersionES300 = Version{Major: 3, Minor: 0, ES: true}  // ES 3.0 / WebGL 2.0
	VersionES310 = Version{Major: 3, Minor: 10, ES: true} // ES 3.1

	// Desktop OpenGL versions
	Version330 = Version{Major: 3, Minor: 30, ES: false} // OpenGL 3.3 Core
	Version410 = Version{Major: 4, Minor: 10, ES: false} // OpenGL 4.1
	Version450 = Version{Major: 4, Minor: 50, ES: false} // OpenGL 4.5
)

// String returns the version as a GLSL version directive value.
func (v Version) String() string {
	if v.IsLegacy() {
		return "100"
	}
	if v.ES {
		return fmt.Sprintf("%d%02d es", v.Major, v.Minor)
	}
	return fmt.Sprintf("%d%02d core", v.Major, v.Minor)
}

// VersionNumber returns just the numeric version (e.g., "330", "300").
func (v Version) VersionNumber() string {
	if v.IsLegacy() {
		return "100"
	}
	return fmt.Sprintf("%d%02d", v.Major, v.Minor)
}

// IsLegacy reports whether v is GLSL ES 1.00, which uses attribute and
// varying declarations and writes gl_FragColor.
func (v Version) IsLegacy() bool {
	return v.ES && v.Major < 3
}

// versionLessThan returns true if the numeric version (Major*100+Minor) is
// less than the given number.
func (v Version) versionLessThan(number int) bool {
	return int(v.Major)*100+int(v.Minor) < number
}

// SupportsVaryingLocations reports whether inter-stage variables may carry
// layout(location) qualifiers. Older versions match them by name.
func (v Version) SupportsVaryingLocations() bool {
	if v.ES {
		return !v.versionLessThan(310)
	}
	return !v.versionLessThan(410)
}

// Options configures GLSL code generation.
type Options struct {
	// LangVersion is the target GLSL version.
	// Defaults to Version100 if zero.
	LangVersion Version

	// EntryPoint specifies which entry point to compile.
	// If empty, the first entry point is compiled.
	EntryPoint string

	// DefaultPrecision, if set, is written as the default float precision
	// of ES fragment shaders (e.g. "mediump").
	DefaultPrecision string

	// Logger receives compile events. Defaults to slog.Default().
	Logger *slog.Logger
}

// DefaultOptions returns sensible default options for GLSL generation.
func DefaultOptions() Options {
	return Options{
		LangVersion:      Version100,
		DefaultPrecision: "mediump",
	}
}

// TranslationInfo contains metadata about the translation.
type TranslationInfo struct {
	// EntryPoint is the name of the compiled entry point. It is always
	// emitted as main.
	EntryPoint string

	// Stage is the stage of the compiled entry point.
	Stage ir.ShaderStage

	// AttributeLocations maps attribute names, as written, to the
	// locations the host must bind them to.
	AttributeLocations map[string]uint32

	// OutputLocations maps fragment output names to their locations.
	OutputLocations map[string]uint32

	// FeedbackVaryings lists captured varyings in capture order, for
	// glTransformFeedbackVaryings.
	FeedbackVaryings []string

	// FeedbackMode is the requested capture layout.
	FeedbackMode ir.FeedbackMode

	// UsedExtensions lists GLSL extensions required by the shader.
	UsedExtensions []string

	// Diagnostics holds informational records.
	Diagnostics []ir.Diagnostic
}

// Compile generates GLSL source code for one entry point of an IR module.
// Returns the GLSL source as a string, translation info, or an error.
func Compile(module *ir.Module, options Options) (string, TranslationInfo, error) {
	// Apply defaults for zero values
	if options.LangVersion.Major == 0 {
		options.LangVersion = Version100
	}
	if options.Logger == nil {
		options.Logger = slog.Default()
	}

	if len(module.EntryPoints) == 0 {
		return "", TranslationInfo{}, fmt.Errorf("glsl: %w", ir.Errorf(ir.ErrInvalidModule, "module has no entry points"))
	}
	epIdx := 0
	if options.EntryPoint != "" {
		epIdx = module.EntryPointByName(options.EntryPoint)
		if epIdx < 0 {
			return "", TranslationInfo{}, fmt.Errorf("glsl: %w", ir.Errorf(ir.ErrInvalidModule, "entry point %q not found", options.EntryPoint))
		}
	}

	table, err := bind.Allocate(module, bind.WithLogger(options.Logger))
	if err != nil {
		return "", TranslationInfo{}, fmt.Errorf("glsl: %w", err)
	}

	w := newWriter(module, &options, &module.EntryPoints[epIdx], table)
	if err := w.writeModule(); err != nil {
		return "", TranslationInfo{}, fmt.Errorf("glsl: %w", err)
	}

	src := w.String()
	options.Logger.Debug("glsl: compiled",
		slog.String("entry", w.ep.Name),
		slog.String("stage", w.ep.Stage.String()),
		slog.String("version", options.LangVersion.String()),
		slog.Int("bytes", len(src)))
	return src, w.info, nil
}

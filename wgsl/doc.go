// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package wgsl provides the WGSL (WebGPU Shading Language) writer for
// shade modules.
//
// All entry points of a module are written into one WGSL module unless
// Options.EntryPoint selects one.
//
// # Basic Usage
//
//	source, info, err := wgsl.Compile(module, wgsl.DefaultOptions())
//
// # Stage I/O
//
// Attributes, varyings, outputs and builtins are collected into one
// synthesized input struct and one output struct per entry point, each
// member tagged with its allocated @location or @builtin. Integer varyings
// are tagged @interpolate(flat). Vertex entries always return the
// @builtin(position) member.
//
// # Uniform Control Flow
//
// WGSL only allows textureSample in uniform control flow. Inside fragment
// code, every implicit-derivative sample of an if statement's bodies is
// bound with let before the if, and the bodies read the binding. The
// sample is then taken on both branches, unlike the GLSL output, which
// samples only on the branch taken. Each rewritten conditional produces a
// Diagnostic with code DiagnosticHoistedSample and an Info log record.
// A sample whose operands are assigned inside the branch cannot be moved
// and fails with ErrUnsupportedConstruct.
//
// # Transform Feedback
//
// WGSL has no transform feedback. CompileFeedback turns a capturing vertex
// entry point into a compute entry point that reads attributes from
// tightly packed storage buffers and writes the captured varyings to
// capture buffers, one vertex per invocation.
package wgsl

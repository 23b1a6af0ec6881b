// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package wgsl

import "strings"

// reserved holds WGSL keywords, reserved words, predeclared type names and
// the built-in functions the writer emits. A user identifier with one of
// these names would shadow or clash with generated code.
var reserved map[string]struct{}

func init() {
	groups := []string{
		// Keywords
		"alias break case const const_assert continue continuing default diagnostic discard else enable false fn for if let loop override requires return struct switch true var while",
		// Reserved words
		"NULL Self abstract active alignas alignof as asm asm_fragment async attribute auto await become binding_array cast catch class co_await co_return co_yield coherent column_major common compile compile_fragment concept const_cast consteval constexpr constinit crate debugger decltype delete demote demote_to_helper do dynamic_cast enum explicit export extends extern external fallthrough filter final finally friend from fxgroup get goto groupshared highp impl implements import inline instanceof interface layout lowp macro macro_rules match mediump meta mod module move mut mutable namespace new nil noexcept noinline nointerpolation noperspective null nullptr of operator package packoffset partition pass patch pixelfragment precise precision premerge priv protected pub public readonly ref regardless register reinterpret_cast require resource restrict self set shared sizeof smooth snorm static static_assert static_cast std subroutine super target template this thread_local throw trait try type typedef typeid typename typeof union unless unorm unsafe unsized use using varying virtual volatile wgsl where with writeonly yield",
		// Predeclared types
		"bool f16 f32 i32 u32 vec2 vec3 vec4 mat2x2 mat2x3 mat2x4 mat3x2 mat3x3 mat3x4 mat4x2 mat4x3 mat4x4 array atomic ptr sampler sampler_comparison texture_1d texture_2d texture_2d_array texture_3d texture_cube texture_cube_array texture_multisampled_2d texture_depth_2d texture_storage_2d",
		// Built-in functions emitted by the writer
		"abs acos asin atan atan2 ceil clamp cos cross degrees distance dot exp exp2 floor fract fwidth dpdx dpdy inverseSqrt length log log2 max min mix normalize pow radians reflect select sign sin smoothstep sqrt step tan arrayLength bitcast textureSample textureSampleLevel",
	}
	reserved = make(map[string]struct{}, 320)
	for _, g := range groups {
		for _, w := range strings.Fields(g) {
			reserved[w] = struct{}{}
		}
	}
}

// isKeyword reports whether name is reserved in WGSL output.
func isKeyword(name string) bool {
	_, ok := reserved[name]
	return ok
}

// escapeKeyword returns a valid WGSL identifier for name. Reserved names
// get a trailing underscore; identifiers starting with "__" are reserved by
// WGSL and lose one underscore.
func escapeKeyword(name string) string {
	if name == "" {
		return "_unnamed"
	}
	for strings.HasPrefix(name, "__") {
		name = name[1:]
	}
	if name == "_" {
		return "_unnamed"
	}
	if isKeyword(name) {
		return name + "_"
	}
	return name
}

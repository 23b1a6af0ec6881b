// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package glsl

import "strings"

// reserved holds the words a generated identifier must not collide with:
// keywords and built-in type and function names of GLSL ES 1.00, ES 3.00
// and 3.30 core.
var reserved = map[string]struct{}{}

func init() {
	for _, group := range []string{
		// Types
		"void bool int uint float double",
		"vec2 vec3 vec4 ivec2 ivec3 ivec4 uvec2 uvec3 uvec4 bvec2 bvec3 bvec4",
		"mat2 mat3 mat4 mat2x2 mat2x3 mat2x4 mat3x2 mat3x3 mat3x4 mat4x2 mat4x3 mat4x4",
		"sampler2D sampler3D samplerCube sampler2DShadow samplerCubeShadow sampler2DArray",
		"isampler2D isampler3D isamplerCube usampler2D usampler3D usamplerCube",

		// Qualifiers and statements
		"attribute const uniform varying buffer shared layout centroid flat smooth noperspective",
		"in out inout invariant precise precision lowp mediump highp",
		"break continue do for while switch case default if else discard return struct true false",

		// Reserved for future use
		"asm class union enum typedef template this packed resource goto inline noinline",
		"volatile public static extern external interface long short half fixed unsigned superp",
		"input output hvec2 hvec3 hvec4 fvec2 fvec3 fvec4 filter sizeof cast namespace using",
		"common partition active sample patch subroutine",

		// Built-in functions
		"radians degrees sin cos tan asin acos atan pow exp log exp2 log2 sqrt inversesqrt",
		"abs sign floor ceil fract mod min max clamp mix step smoothstep",
		"length distance dot cross normalize reflect refract faceforward",
		"texture texture2D texture2DLod textureCube textureCubeLod textureLod",
		"dFdx dFdy fwidth main",
	} {
		for _, w := range strings.Fields(group) {
			reserved[w] = struct{}{}
		}
	}
}

// isKeyword checks if a name is a reserved GLSL word.
func isKeyword(name string) bool {
	_, ok := reserved[name]
	return ok
}

// escapeKeyword prefixes an underscore to reserved words and to names
// using the gl_ prefix. Names with a double underscore are reserved as
// well; they are collapsed.
func escapeKeyword(name string) string {
	if name == "" {
		return "_unnamed"
	}
	for strings.Contains(name, "__") {
		name = strings.ReplaceAll(name, "__", "_")
	}
	if isKeyword(name) || strings.HasPrefix(name, "gl_") {
		return "_" + name
	}
	return name
}

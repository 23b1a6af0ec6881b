// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package glsl provides the legacy GLSL (OpenGL Shading Language) writer
// for shade modules.
//
// One entry point is compiled per call and always emitted as main. Three
// targets are supported:
//
//   - GLSL ES 1.00: WebGL 1.0, attribute/varying declarations, gl_FragColor
//   - GLSL ES 3.00: WebGL 2.0, in/out declarations with layout(location)
//   - GLSL 3.30 Core: Desktop OpenGL 3.3+
//
// # Basic Usage
//
//	source, info, err := glsl.Compile(module, glsl.Options{
//	    LangVersion: glsl.Version100,
//	    EntryPoint:  "main",
//	})
//
// # Texture/Sampler Handling
//
// shade declares a companion sampler for every sampled texture. GLSL
// combines textures and samplers, so samplers are never declared and the
// texture becomes a sampler2D or samplerCube uniform.
//
// # Reserved Words
//
// Identifiers that collide with GLSL keywords, built-in functions or the
// gl_ prefix are escaped with a leading underscore. Resources and functions
// are named over the whole module, so a vertex and a fragment shader
// compiled separately agree on varying names.
package glsl

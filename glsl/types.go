// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package glsl

import (
	"fmt"

	"github.com/gogpu/shade/ir"
)

// GLSL type name constants for repeated use.
const (
	glslTypeInt   = "int"
	glslTypeUint  = "uint"
	glslTypeFloat = "float"
)

// typeName returns the GLSL type name for a type handle.
// For arrays, this returns the full type including size (e.g., "vec2[3]").
// Use declarator for variable declarations.
func (w *Writer) typeName(h ir.TypeHandle) string {
	if arr, ok := w.module.Inner(h).(ir.ArrayType); ok {
		return fmt.Sprintf("%s[%d]", w.typeName(arr.Base), arr.Size)
	}
	return w.baseTypeName(h)
}

// baseTypeName returns the GLSL name of a non-array type, unwrapping
// arrays.
func (w *Writer) baseTypeName(h ir.TypeHandle) string {
	switch t := w.module.Inner(h).(type) {
	case ir.ScalarType:
		return scalarToGLSL(t.Kind)
	case ir.VectorType:
		return vectorToGLSL(t)
	case ir.MatrixType:
		if t.Columns == t.Rows {
			return fmt.Sprintf("mat%d", t.Columns)
		}
		return fmt.Sprintf("mat%dx%d", t.Columns, t.Rows)
	case ir.ArrayType:
		return w.baseTypeName(t.Base)
	case ir.StructType:
		return w.names[nameKey{kind: nameKeyStruct, handle1: uint32(t.Struct)}]
	case ir.TextureType, ir.SamplerType:
		return samplerTypeName(t)
	}
	return fmt.Sprintf("type_%d", h)
}

// arraySuffix returns "[N]" for array types and "" otherwise.
func (w *Writer) arraySuffix(h ir.TypeHandle) string {
	arr, ok := w.module.Inner(h).(ir.ArrayType)
	if !ok {
		return ""
	}
	return fmt.Sprintf("[%d]", arr.Size) + w.arraySuffix(arr.Base)
}

// declarator returns "type name[N]".
func (w *Writer) declarator(h ir.TypeHandle, name string) string {
	return w.baseTypeName(h) + " " + name + w.arraySuffix(h)
}

// scalarToGLSL returns the GLSL name for a scalar kind.
func scalarToGLSL(kind ir.ScalarKind) string {
	switch kind {
	case ir.ScalarBool:
		return "bool"
	case ir.ScalarSint:
		return glslTypeInt
	case ir.ScalarUint:
		return glslTypeUint
	default:
		return glslTypeFloat
	}
}

// vectorToGLSL returns the GLSL name for a vector type.
func vectorToGLSL(t ir.VectorType) string {
	prefix := ""
	switch t.Kind {
	case ir.ScalarBool:
		prefix = "b"
	case ir.ScalarSint:
		prefix = "i"
	case ir.ScalarUint:
		prefix = "u"
	}
	return fmt.Sprintf("%svec%d", prefix, t.Size)
}

// samplerTypeName returns the combined sampler type of a texture.
func samplerTypeName(inner ir.TypeInner) string {
	if t, ok := inner.(ir.TextureType); ok && t.Dim == ir.DimCube {
		return "samplerCube"
	}
	return "sampler2D"
}

// usesUint reports whether h mentions an unsigned integer anywhere.
func (w *Writer) usesUint(h ir.TypeHandle) bool {
	switch t := w.module.Inner(h).(type) {
	case ir.ScalarType:
		return t.Kind == ir.ScalarUint
	case ir.VectorType:
		return t.Kind == ir.ScalarUint
	case ir.ArrayType:
		return w.usesUint(t.Base)
	case ir.StructType:
		for _, m := range w.module.Structs[t.Struct].Members {
			if w.usesUint(m.Type) {
				return true
			}
		}
	}
	return false
}

// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package wgsl

import (
	"fmt"

	"github.com/gogpu/shade/ir"
)

// typeName returns the WGSL type name for a type handle.
func (w *Writer) typeName(h ir.TypeHandle) string {
	switch t := w.module.Inner(h).(type) {
	case ir.ScalarType:
		return scalarToWGSL(t.Kind)
	case ir.VectorType:
		return fmt.Sprintf("vec%d<%s>", t.Size, scalarToWGSL(t.Kind))
	case ir.MatrixType:
		return fmt.Sprintf("mat%dx%d<f32>", t.Columns, t.Rows)
	case ir.ArrayType:
		if t.Size == 0 {
			return fmt.Sprintf("array<%s>", w.typeName(t.Base))
		}
		return fmt.Sprintf("array<%s, %d>", w.typeName(t.Base), t.Size)
	case ir.StructType:
		return w.names[nameKey{kind: nameKeyStruct, handle1: uint32(t.Struct)}]
	case ir.TextureType:
		if t.Dim == ir.DimCube {
			return "texture_cube<f32>"
		}
		return "texture_2d<f32>"
	case ir.SamplerType:
		return "sampler"
	}
	return fmt.Sprintf("type_%d", h)
}

// memberTypeName returns the type of a struct member, wrapping repeated
// members in a fixed-size array.
func (w *Writer) memberTypeName(m ir.StructMember) string {
	if m.Count > 0 {
		return fmt.Sprintf("array<%s, %d>", w.typeName(m.Type), m.Count)
	}
	return w.typeName(m.Type)
}

// scalarToWGSL returns the WGSL name for a scalar kind.
func scalarToWGSL(kind ir.ScalarKind) string {
	switch kind {
	case ir.ScalarBool:
		return "bool"
	case ir.ScalarSint:
		return "i32"
	case ir.ScalarUint:
		return "u32"
	default:
		return "f32"
	}
}

// layout is the host-shareable alignment and size of a type.
type layout struct {
	align uint32
	size  uint32
}

func roundUp(align, n uint32) uint32 {
	return (n + align - 1) / align * align
}

// layoutOf computes the WGSL memory layout of a type. Struct members of
// struct or array type are padded to 16 bytes by memberLayout, which
// matches the std140 layout the GLSL uniform of the same block uses.
func (w *Writer) layoutOf(h ir.TypeHandle) layout {
	switch t := w.module.Inner(h).(type) {
	case ir.ScalarType:
		return layout{align: 4, size: 4}
	case ir.VectorType:
		switch t.Size {
		case ir.Vec2:
			return layout{align: 8, size: 8}
		case ir.Vec3:
			return layout{align: 16, size: 12}
		default:
			return layout{align: 16, size: 16}
		}
	case ir.MatrixType:
		col := w.layoutOf(w.module.VectorOf(t.Rows, ir.ScalarFloat))
		return layout{align: col.align, size: uint32(t.Columns) * roundUp(col.align, col.size)}
	case ir.ArrayType:
		el := w.layoutOf(t.Base)
		return layout{align: el.align, size: t.Size * roundUp(el.align, el.size)}
	case ir.StructType:
		var offset, align uint32 = 0, 4
		for _, m := range w.module.Structs[t.Struct].Members {
			ml := w.memberLayoutOf(m)
			offset = roundUp(ml.align, offset) + ml.size
			align = max(align, ml.align)
		}
		return layout{align: align, size: roundUp(align, offset)}
	}
	return layout{align: 4, size: 4}
}

// memberLayoutOf returns the layout of a struct member after padding.
func (w *Writer) memberLayoutOf(m ir.StructMember) layout {
	l := w.layoutOf(m.Type)
	if m.Count > 0 {
		l = layout{align: l.align, size: m.Count * roundUp(l.align, l.size)}
	}
	if w.needsPadding(m) {
		l.align = max(l.align, 16)
		l.size = roundUp(16, l.size)
	}
	return l
}

// needsPadding reports whether a member holds a struct or an array.
func (w *Writer) needsPadding(m ir.StructMember) bool {
	if m.Count > 0 {
		return true
	}
	switch w.module.Inner(m.Type).(type) {
	case ir.StructType, ir.ArrayType:
		return true
	}
	return false
}

// memberLayout returns the @align and @size attributes of a member.
func (w *Writer) memberLayout(m ir.StructMember) string {
	if !w.needsPadding(m) {
		return ""
	}
	l := w.layoutOf(m.Type)
	if m.Count > 0 {
		l.size = m.Count * roundUp(l.align, l.size)
	}
	attr := ""
	if l.align < 16 {
		attr += "@align(16) "
	}
	if l.size%16 != 0 {
		attr += fmt.Sprintf("@size(%d) ", roundUp(16, l.size))
	}
	return attr
}

// checkUniformLayout rejects uniform types whose arrays have an element
// stride that is not a multiple of 16, and types that are not
// host-shareable.
func (w *Writer) checkUniformLayout(name string, h ir.TypeHandle) error {
	stride := func(el ir.TypeHandle) uint32 {
		l := w.layoutOf(el)
		return roundUp(l.align, l.size)
	}
	var check func(h ir.TypeHandle, count uint32) error
	check = func(h ir.TypeHandle, count uint32) error {
		if count > 0 && stride(h)%16 != 0 {
			return ir.Errorf(ir.ErrUnsupportedConstruct,
				"uniform %q: array of %s has a stride of %d bytes, not a multiple of 16",
				name, w.module.TypeString(h), stride(h))
		}
		switch t := w.module.Inner(h).(type) {
		case ir.ScalarType:
			if t.Kind == ir.ScalarBool {
				return ir.Errorf(ir.ErrUnsupportedConstruct, "uniform %q: bool is not host-shareable", name)
			}
		case ir.VectorType:
			if t.Kind == ir.ScalarBool {
				return ir.Errorf(ir.ErrUnsupportedConstruct, "uniform %q: bool vectors are not host-shareable", name)
			}
		case ir.ArrayType:
			return check(t.Base, t.Size)
		case ir.StructType:
			for _, m := range w.module.Structs[t.Struct].Members {
				if err := check(m.Type, m.Count); err != nil {
					return err
				}
			}
		}
		return nil
	}
	return check(h, 0)
}

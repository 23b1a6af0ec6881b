package ir

import (
	"strconv"
)

// RegisterType returns the existing handle for a structurally identical type,
// or appends a new one.
func (m *Module) RegisterType(inner TypeInner) TypeHandle {
	if m.typeIndex == nil {
		m.typeIndex = make(map[string]TypeHandle, 16)
	}
	key := normalizeType(inner)
	if handle, exists := m.typeIndex[key]; exists {
		return handle
	}

	handle := TypeHandle(len(m.Types)) //nolint:gosec // G115: arena index
	m.Types = append(m.Types, Type{Inner: inner})
	m.typeIndex[key] = handle
	return handle
}

// ScalarOf registers a scalar type.
func (m *Module) ScalarOf(kind ScalarKind) TypeHandle {
	return m.RegisterType(ScalarType{Kind: kind})
}

// VectorOf registers a vector type.
func (m *Module) VectorOf(size VectorSize, kind ScalarKind) TypeHandle {
	return m.RegisterType(VectorType{Size: size, Kind: kind})
}

// MatrixOf registers a square or rectangular float matrix type.
func (m *Module) MatrixOf(columns, rows VectorSize) TypeHandle {
	return m.RegisterType(MatrixType{Columns: columns, Rows: rows})
}

// RegisterStruct appends a struct descriptor and registers its type.
// Structs are nominal: two descriptors never share a handle.
func (m *Module) RegisterStruct(desc StructDescriptor) (StructHandle, TypeHandle) {
	sh := StructHandle(len(m.Structs)) //nolint:gosec // G115: arena index
	m.Structs = append(m.Structs, desc)
	th := m.RegisterType(StructType{Struct: sh})
	m.Types[th].Name = desc.Name
	return sh, th
}

// StructByName returns the handle of the named struct descriptor.
func (m *Module) StructByName(name string) (StructHandle, bool) {
	for i := range m.Structs {
		if m.Structs[i].Name == name {
			return StructHandle(i), true //nolint:gosec // G115: arena index
		}
	}
	return 0, false
}

// normalizeType creates a unique key for a type based on its structure.
// Two structurally identical types will produce the same key.
func normalizeType(inner TypeInner) string {
	b := make([]byte, 0, 24)
	switch t := inner.(type) {
	case ScalarType:
		b = append(b, "scalar:"...)
		b = strconv.AppendUint(b, uint64(t.Kind), 10)
	case VectorType:
		b = append(b, "vec:"...)
		b = strconv.AppendUint(b, uint64(t.Size), 10)
		b = append(b, ':')
		b = strconv.AppendUint(b, uint64(t.Kind), 10)
	case MatrixType:
		b = append(b, "mat:"...)
		b = strconv.AppendUint(b, uint64(t.Columns), 10)
		b = append(b, 'x')
		b = strconv.AppendUint(b, uint64(t.Rows), 10)
	case ArrayType:
		b = append(b, "array:"...)
		b = strconv.AppendUint(b, uint64(t.Base), 10)
		b = append(b, ':')
		b = strconv.AppendUint(b, uint64(t.Size), 10)
	case StructType:
		b = append(b, "struct:"...)
		b = strconv.AppendUint(b, uint64(t.Struct), 10)
	case TextureType:
		b = append(b, "texture:"...)
		b = strconv.AppendUint(b, uint64(t.Dim), 10)
	case SamplerType:
		b = append(b, "sampler"...)
	default:
		b = append(b, "unknown"...)
	}
	return string(b)
}

// Scalar returns the scalar kind of a scalar or vector type.
func (m *Module) Scalar(h TypeHandle) (ScalarKind, bool) {
	switch t := m.Inner(h).(type) {
	case ScalarType:
		return t.Kind, true
	case VectorType:
		return t.Kind, true
	case MatrixType:
		return ScalarFloat, true
	}
	return 0, false
}

// Components returns the number of scalar components of a scalar, vector or
// matrix type, or 0 for other types.
func (m *Module) Components(h TypeHandle) int {
	switch t := m.Inner(h).(type) {
	case ScalarType:
		return 1
	case VectorType:
		return int(t.Size)
	case MatrixType:
		return int(t.Columns) * int(t.Rows)
	}
	return 0
}

// IsScalar reports whether h is a scalar of the given kind.
func (m *Module) IsScalar(h TypeHandle, kind ScalarKind) bool {
	t, ok := m.Inner(h).(ScalarType)
	return ok && t.Kind == kind
}

// IsIntegral reports whether h is a signed or unsigned scalar or vector.
func (m *Module) IsIntegral(h TypeHandle) bool {
	k, ok := m.Scalar(h)
	if !ok {
		return false
	}
	if _, isMat := m.Inner(h).(MatrixType); isMat {
		return false
	}
	return k == ScalarSint || k == ScalarUint
}

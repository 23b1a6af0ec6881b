package shade

import (
	"github.com/gogpu/shade/ir"
)

type typeKind uint8

const (
	kindVoid typeKind = iota
	kindScalar
	kindVector
	kindMatrix
	kindArray
	kindStruct
)

// Type describes a value type independently of any builder.
// The zero Type is Void.
type Type struct {
	kind   typeKind
	scalar ir.ScalarKind
	size   ir.VectorSize // vector size or matrix columns
	rows   ir.VectorSize
	elem   *Type
	count  uint32
	desc   *StructDesc
}

// Predefined types.
var (
	Void = Type{}

	Float = Type{kind: kindScalar, scalar: ir.ScalarFloat}
	Int   = Type{kind: kindScalar, scalar: ir.ScalarSint}
	Uint  = Type{kind: kindScalar, scalar: ir.ScalarUint}
	Bool  = Type{kind: kindScalar, scalar: ir.ScalarBool}

	Vec2 = Type{kind: kindVector, scalar: ir.ScalarFloat, size: ir.Vec2}
	Vec3 = Type{kind: kindVector, scalar: ir.ScalarFloat, size: ir.Vec3}
	Vec4 = Type{kind: kindVector, scalar: ir.ScalarFloat, size: ir.Vec4}

	IVec2 = Type{kind: kindVector, scalar: ir.ScalarSint, size: ir.Vec2}
	IVec3 = Type{kind: kindVector, scalar: ir.ScalarSint, size: ir.Vec3}
	IVec4 = Type{kind: kindVector, scalar: ir.ScalarSint, size: ir.Vec4}

	UVec2 = Type{kind: kindVector, scalar: ir.ScalarUint, size: ir.Vec2}
	UVec3 = Type{kind: kindVector, scalar: ir.ScalarUint, size: ir.Vec3}
	UVec4 = Type{kind: kindVector, scalar: ir.ScalarUint, size: ir.Vec4}

	BVec2 = Type{kind: kindVector, scalar: ir.ScalarBool, size: ir.Vec2}
	BVec3 = Type{kind: kindVector, scalar: ir.ScalarBool, size: ir.Vec3}
	BVec4 = Type{kind: kindVector, scalar: ir.ScalarBool, size: ir.Vec4}

	Mat2 = Type{kind: kindMatrix, scalar: ir.ScalarFloat, size: ir.Vec2, rows: ir.Vec2}
	Mat3 = Type{kind: kindMatrix, scalar: ir.ScalarFloat, size: ir.Vec3, rows: ir.Vec3}
	Mat4 = Type{kind: kindMatrix, scalar: ir.ScalarFloat, size: ir.Vec4, rows: ir.Vec4}
)

// ArrayOf returns a fixed-length array type.
func ArrayOf(elem Type, n uint32) Type {
	e := elem
	return Type{kind: kindArray, elem: &e, count: n}
}

// IsVoid reports whether t is the zero Type.
func (t Type) IsVoid() bool { return t.kind == kindVoid }

// register interns t in the builder's module.
func (b *Builder) register(t Type) ir.TypeHandle {
	switch t.kind {
	case kindScalar:
		return b.module.ScalarOf(t.scalar)
	case kindVector:
		return b.module.VectorOf(t.size, t.scalar)
	case kindMatrix:
		return b.module.MatrixOf(t.size, t.rows)
	case kindArray:
		if t.count == 0 {
			b.failf(ir.ErrInvalidArity, "array length must be positive")
			return 0
		}
		if t.elem.kind == kindArray {
			b.failf(ir.ErrUnsupportedConstruct, "arrays of arrays are not supported")
			return 0
		}
		base := b.register(*t.elem)
		return b.module.RegisterType(ir.ArrayType{Base: base, Size: t.count})
	case kindStruct:
		if t.desc == nil || t.desc.b != b {
			b.failf(ir.ErrInvalidArity, "struct type belongs to another builder")
			return 0
		}
		return t.desc.typ
	}
	b.failf(ir.ErrInvalidArity, "void has no value type")
	return 0
}

// Field is a struct member description.
type Field struct {
	Name  string
	Type  Type
	Count uint32 // > 0 makes the member a fixed-length array
}

// F describes a plain struct member.
func F(name string, t Type) Field {
	return Field{Name: name, Type: t}
}

// FA describes a fixed-length array member.
func FA(name string, t Type, n uint32) Field {
	return Field{Name: name, Type: t, Count: n}
}

// StructDesc is a named, ordered list of members. Member order is kept by
// both dialects, so a block bound from the host has the same layout in
// each.
type StructDesc struct {
	b      *Builder
	name   string
	fields []Field
	handle ir.StructHandle
	typ    ir.TypeHandle
}

// Name returns the struct name.
func (d *StructDesc) Name() string { return d.name }

// Fields returns the members in declaration order.
func (d *StructDesc) Fields() []Field { return append([]Field(nil), d.fields...) }

// Type returns the struct as a value type.
func (d *StructDesc) Type() Type { return Type{kind: kindStruct, desc: d} }

// Struct declares a struct descriptor.
func (b *Builder) Struct(name string, fields ...Field) (*StructDesc, error) {
	if err := b.usable(); err != nil {
		return nil, err
	}
	if !isIdentifier(name) {
		return nil, ir.Errorf(ir.ErrInvalidArity, "invalid struct name %q", name)
	}
	if _, exists := b.module.StructByName(name); exists {
		return nil, ir.Errorf(ir.ErrInvalidArity, "struct %q is already declared", name)
	}
	if len(fields) == 0 {
		return nil, ir.Errorf(ir.ErrInvalidArity, "struct %q has no members", name)
	}

	members := make([]ir.StructMember, 0, len(fields))
	seen := make(map[string]bool, len(fields))
	for _, f := range fields {
		if !isIdentifier(f.Name) {
			return nil, ir.Errorf(ir.ErrInvalidArity, "struct %q: invalid member name %q", name, f.Name)
		}
		if seen[f.Name] {
			return nil, ir.Errorf(ir.ErrInvalidArity, "struct %q: duplicate member %q", name, f.Name)
		}
		seen[f.Name] = true
		switch f.Type.kind {
		case kindVoid, kindArray:
			return nil, ir.Errorf(ir.ErrInvalidArity, "struct %q: member %q must be a scalar, vector, matrix or struct (use FA for arrays)", name, f.Name)
		case kindScalar, kindVector:
			if f.Type.scalar == ir.ScalarBool {
				return nil, ir.Errorf(ir.ErrUnsupportedConstruct, "struct %q: bool member %q has no host layout", name, f.Name)
			}
		case kindStruct:
			if f.Type.desc == nil || f.Type.desc.b != b {
				return nil, ir.Errorf(ir.ErrInvalidArity, "struct %q: member %q uses a struct of another builder", name, f.Name)
			}
		}
		members = append(members, ir.StructMember{Name: f.Name, Type: b.register(f.Type), Count: f.Count})
	}
	if b.err != nil {
		return nil, b.err
	}

	sh, th := b.module.RegisterStruct(ir.StructDescriptor{Name: name, Members: members})
	return &StructDesc{b: b, name: name, fields: append([]Field(nil), fields...), handle: sh, typ: th}, nil
}

// memberType returns the value type of a struct member, registering the
// array type for counted members.
func (b *Builder) memberType(m ir.StructMember) ir.TypeHandle {
	if m.Count > 0 {
		return b.module.RegisterType(ir.ArrayType{Base: m.Type, Size: m.Count})
	}
	return m.Type
}

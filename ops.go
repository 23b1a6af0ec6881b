package shade

import (
	"math"

	"github.com/gogpu/shade/ir"
)

// binary builds left op right. Constants take the other operand's kind.
func (b *Builder) binary(op ir.BinaryOperator, left node, right any) node {
	l := b.operandNode(left)
	r := b.value(right, b.scalarKind(l.t))
	ty, err := b.module.ResolveBinary(op, l.t, r.t)
	if err != nil {
		b.fail(err.(*ir.Error))
	}
	return b.add(ir.ExprBinary{Op: op, Left: l.h, Right: r.h}, ty, l, r)
}

func (b *Builder) unary(op ir.UnaryOperator, x node) node {
	n := b.operandNode(x)
	ty, err := b.module.ResolveUnary(op, n.t)
	if err != nil {
		b.fail(err.(*ir.Error))
	}
	return b.add(ir.ExprUnary{Op: op, Expr: n.h}, ty, n)
}

// Add returns a + b for any combination the dialects accept.
func Add(a Value, b any) Value { return a.base().b.wrap(a.base().b.binary(ir.BinaryAdd, a.base(), b)) }

// Sub returns a - b.
func Sub(a Value, b any) Value { return a.base().b.wrap(a.base().b.binary(ir.BinarySubtract, a.base(), b)) }

// Mul returns a * b, following linear-algebra rules for matrices.
func Mul(a Value, b any) Value { return a.base().b.wrap(a.base().b.binary(ir.BinaryMultiply, a.base(), b)) }

// Div returns a / b.
func Div(a Value, b any) Value { return a.base().b.wrap(a.base().b.binary(ir.BinaryDivide, a.base(), b)) }

// Select returns accept when cond is true and reject otherwise. Both
// branches are evaluated.
func Select(cond Scalar, accept, reject any) Value {
	b := cond.b
	b.top()
	c := b.operand(cond)
	if !b.module.IsScalar(c.t, ir.ScalarBool) {
		b.failf(ir.ErrTypeMismatch, "select condition must be bool")
	}
	var a, r node
	if v, ok := accept.(Value); ok {
		a = b.operand(v)
		r = b.valueLike(reject, a.t)
	} else {
		r = b.anyValue(reject)
		a = b.valueLike(accept, r.t)
	}
	if a.t != r.t {
		b.failf(ir.ErrTypeMismatch, "select branches differ: %s and %s", b.module.TypeString(a.t), b.module.TypeString(r.t))
	}
	return b.wrap(b.add(ir.ExprSelect{Condition: c.h, Accept: a.h, Reject: r.h}, a.t, c, a, r))
}

// Add returns s + x.
func (s Scalar) Add(x any) Scalar { return Scalar{s.b.binary(ir.BinaryAdd, s.node, x)}.scalarOnly() }

// Sub returns s - x.
func (s Scalar) Sub(x any) Scalar { return Scalar{s.b.binary(ir.BinarySubtract, s.node, x)}.scalarOnly() }

// Mul returns s * x.
func (s Scalar) Mul(x any) Scalar { return Scalar{s.b.binary(ir.BinaryMultiply, s.node, x)}.scalarOnly() }

// Div returns s / x.
func (s Scalar) Div(x any) Scalar { return Scalar{s.b.binary(ir.BinaryDivide, s.node, x)}.scalarOnly() }

// Mod returns the integer remainder s % x. Use shade.Mod for floats.
func (s Scalar) Mod(x any) Scalar { return Scalar{s.b.binary(ir.BinaryModulo, s.node, x)}.scalarOnly() }

// Neg returns -s.
func (s Scalar) Neg() Scalar { return Scalar{s.b.unary(ir.UnaryNegate, s.node)} }

// Not returns !s.
func (s Scalar) Not() Scalar { return Scalar{s.b.unary(ir.UnaryLogicalNot, s.node)} }

// And returns s && x.
func (s Scalar) And(x any) Scalar { return Scalar{s.b.binary(ir.BinaryLogicalAnd, s.node, x)} }

// Or returns s || x.
func (s Scalar) Or(x any) Scalar { return Scalar{s.b.binary(ir.BinaryLogicalOr, s.node, x)} }

// Lt returns s < x.
func (s Scalar) Lt(x any) Scalar { return Scalar{s.b.binary(ir.BinaryLess, s.node, x)} }

// Le returns s <= x.
func (s Scalar) Le(x any) Scalar { return Scalar{s.b.binary(ir.BinaryLessEqual, s.node, x)} }

// Gt returns s > x.
func (s Scalar) Gt(x any) Scalar { return Scalar{s.b.binary(ir.BinaryGreater, s.node, x)} }

// Ge returns s >= x.
func (s Scalar) Ge(x any) Scalar { return Scalar{s.b.binary(ir.BinaryGreaterEqual, s.node, x)} }

// Eq returns s == x.
func (s Scalar) Eq(x any) Scalar { return Scalar{s.b.binary(ir.BinaryEqual, s.node, x)} }

// Ne returns s != x.
func (s Scalar) Ne(x any) Scalar { return Scalar{s.b.binary(ir.BinaryNotEqual, s.node, x)} }

// ToFloat converts to float.
func (s Scalar) ToFloat() Scalar { return Scalar{s.b.convert(s.node, ir.ScalarFloat)} }

// ToInt converts to int.
func (s Scalar) ToInt() Scalar { return Scalar{s.b.convert(s.node, ir.ScalarSint)} }

// ToUint converts to uint.
func (s Scalar) ToUint() Scalar { return Scalar{s.b.convert(s.node, ir.ScalarUint)} }

// scalarOnly rejects results that broadcast to a vector; use the
// package-level Add/Sub/Mul/Div for mixed shapes.
func (s Scalar) scalarOnly() Scalar {
	if _, ok := s.b.module.Inner(s.t).(ir.ScalarType); !ok {
		s.b.failf(ir.ErrTypeMismatch, "scalar operation produced %s; use the package-level operators for mixed shapes", s.b.module.TypeString(s.t))
	}
	return s
}

func (b *Builder) convert(x node, kind ir.ScalarKind) node {
	n := b.operandNode(x)
	if b.scalarKind(n.t) == kind {
		return n
	}
	ty, err := b.module.ResolveConversion(n.t, kind)
	if err != nil {
		b.fail(err.(*ir.Error))
	}
	return b.add(ir.ExprAs{Expr: n.h, Kind: kind}, ty, n)
}

// Add returns v + x; x may be a vector of the same size or a scalar.
func (v Vector) Add(x any) Vector { return Vector{v.b.binary(ir.BinaryAdd, v.node, x)} }

// Sub returns v - x.
func (v Vector) Sub(x any) Vector { return Vector{v.b.binary(ir.BinarySubtract, v.node, x)} }

// Mul returns the component-wise v * x.
func (v Vector) Mul(x any) Vector {
	r := v.b.binary(ir.BinaryMultiply, v.node, x)
	if _, ok := v.b.module.Inner(r.t).(ir.VectorType); !ok {
		v.b.failf(ir.ErrTypeMismatch, "use MulMat for vector * matrix")
	}
	return Vector{r}
}

// MulMat returns the row-vector product v * m.
func (v Vector) MulMat(m Matrix) Vector { return Vector{v.b.binary(ir.BinaryMultiply, v.node, m)} }

// Div returns v / x.
func (v Vector) Div(x any) Vector { return Vector{v.b.binary(ir.BinaryDivide, v.node, x)} }

// Mod returns the integer remainder v % x.
func (v Vector) Mod(x any) Vector { return Vector{v.b.binary(ir.BinaryModulo, v.node, x)} }

// Neg returns -v.
func (v Vector) Neg() Vector { return Vector{v.b.unary(ir.UnaryNegate, v.node)} }

// ToFloat converts every component to float.
func (v Vector) ToFloat() Vector { return Vector{v.b.convert(v.node, ir.ScalarFloat)} }

// ToInt converts every component to int.
func (v Vector) ToInt() Vector { return Vector{v.b.convert(v.node, ir.ScalarSint)} }

// ToUint converts every component to uint.
func (v Vector) ToUint() Vector { return Vector{v.b.convert(v.node, ir.ScalarUint)} }

// Len returns the number of components.
func (v Vector) Len() int {
	return int(v.b.module.Inner(v.t).(ir.VectorType).Size)
}

// Swizzle selects components by a pattern of xyzw or rgba letters, e.g.
// "zyx". A one-letter pattern yields a Scalar.
func (v Vector) Swizzle(pattern string) Value {
	b := v.b
	b.top()
	n := b.operand(v)
	vt := b.module.Inner(n.t).(ir.VectorType)
	if len(pattern) < 1 || len(pattern) > 4 {
		b.failf(ir.ErrInvalidArity, "swizzle %q must have 1 to 4 components", pattern)
	}
	var sw ir.ExprSwizzle
	sw.Vector = n.h
	sw.Size = uint8(len(pattern)) //nolint:gosec // G115: length checked above
	set := 0
	for i := range len(pattern) {
		c, group := swizzleComponent(pattern[i])
		if group == 0 || (set != 0 && group != set) {
			b.failf(ir.ErrInvalidArity, "invalid swizzle %q", pattern)
		}
		set = group
		if int(c) >= int(vt.Size) {
			b.failf(ir.ErrInvalidArity, "swizzle %q reads past a %d-component vector", pattern, vt.Size)
		}
		sw.Pattern[i] = c
	}
	ty := b.module.ScalarOf(vt.Kind)
	if len(pattern) > 1 {
		ty = b.module.VectorOf(ir.VectorSize(len(pattern)), vt.Kind) //nolint:gosec // G115: length checked above
	}
	return b.wrap(b.add(sw, ty, n))
}

func swizzleComponent(c byte) (ir.SwizzleComponent, int) {
	switch c {
	case 'x':
		return ir.SwizzleX, 1
	case 'y':
		return ir.SwizzleY, 1
	case 'z':
		return ir.SwizzleZ, 1
	case 'w':
		return ir.SwizzleW, 1
	case 'r':
		return ir.SwizzleX, 2
	case 'g':
		return ir.SwizzleY, 2
	case 'b':
		return ir.SwizzleZ, 2
	case 'a':
		return ir.SwizzleW, 2
	}
	return 0, 0
}

// X returns the first component.
func (v Vector) X() Scalar { return v.Swizzle("x").AsScalar() }

// Y returns the second component.
func (v Vector) Y() Scalar { return v.Swizzle("y").AsScalar() }

// Z returns the third component.
func (v Vector) Z() Scalar { return v.Swizzle("z").AsScalar() }

// W returns the fourth component.
func (v Vector) W() Scalar { return v.Swizzle("w").AsScalar() }

// R returns the first component.
func (v Vector) R() Scalar { return v.Swizzle("r").AsScalar() }

// G returns the second component.
func (v Vector) G() Scalar { return v.Swizzle("g").AsScalar() }

// B returns the third component.
func (v Vector) B() Scalar { return v.Swizzle("b").AsScalar() }

// A returns the fourth component.
func (v Vector) A() Scalar { return v.Swizzle("a").AsScalar() }

// XY returns the first two components.
func (v Vector) XY() Vector { return v.Swizzle("xy").AsVector() }

// XYZ returns the first three components.
func (v Vector) XYZ() Vector { return v.Swizzle("xyz").AsVector() }

// RGB returns the first three components.
func (v Vector) RGB() Vector { return v.Swizzle("rgb").AsVector() }

// At returns component i. A constant index is checked against the size.
func (v Vector) At(i any) Scalar {
	return v.b.index(v.node, i).AsScalar()
}

// index builds base[i]: a constant index becomes a checked constant
// access, an integer value a dynamic one.
func (b *Builder) index(base node, i any) Value {
	n := b.operandNode(base)
	elem, err := b.module.ResolveIndex(n.t)
	if err != nil {
		b.fail(err.(*ir.Error))
	}
	if v, ok := i.(Value); ok {
		idx := b.operand(v)
		if !b.module.IsScalar(idx.t, ir.ScalarSint) && !b.module.IsScalar(idx.t, ir.ScalarUint) {
			b.failf(ir.ErrTypeMismatch, "index must be an int or uint scalar, got %s", b.module.TypeString(idx.t))
		}
		return b.wrap(b.add(ir.ExprAccess{Base: n.h, Index: idx.h}, elem, n, idx))
	}

	c, ok := constIndex(i)
	if !ok {
		b.failf(ir.ErrTypeMismatch, "index must be a non-negative integer constant or an integer value, got %v", i)
	}
	if limit := b.indexLimit(n.t); c >= limit {
		b.failf(ir.ErrInvalidArity, "index %d out of range for %s", c, b.module.TypeString(n.t))
	}
	return b.wrap(b.add(ir.ExprAccessIndex{Base: n.h, Index: c}, elem, n))
}

func constIndex(i any) (uint32, bool) {
	var v int64
	switch x := i.(type) {
	case int:
		v = int64(x)
	case int32:
		v = int64(x)
	case int64:
		v = x
	case uint:
		v = int64(x) //nolint:gosec // G115: bounded below
	case uint32:
		v = int64(x)
	default:
		return 0, false
	}
	if v < 0 || v > math.MaxUint32 {
		return 0, false
	}
	return uint32(v), true
}

func (b *Builder) indexLimit(t ir.TypeHandle) uint32 {
	switch in := b.module.Inner(t).(type) {
	case ir.ArrayType:
		return in.Size
	case ir.VectorType:
		return uint32(in.Size)
	case ir.MatrixType:
		return uint32(in.Columns)
	}
	return 0
}

// Add returns the component-wise sum of two matrices of the same shape.
func (m Matrix) Add(x Matrix) Matrix { return Matrix{m.b.binary(ir.BinaryAdd, m.node, x)} }

// Sub returns the component-wise difference.
func (m Matrix) Sub(x Matrix) Matrix { return Matrix{m.b.binary(ir.BinarySubtract, m.node, x)} }

// MulVec returns the column-vector product m * v.
func (m Matrix) MulVec(v Vector) Vector { return Vector{m.b.binary(ir.BinaryMultiply, m.node, v)} }

// MulMat returns the matrix product m * x.
func (m Matrix) MulMat(x Matrix) Matrix { return Matrix{m.b.binary(ir.BinaryMultiply, m.node, x)} }

// Scale returns m * x for a float scalar x.
func (m Matrix) Scale(x any) Matrix { return Matrix{m.b.binary(ir.BinaryMultiply, m.node, x)} }

// Col returns column i.
func (m Matrix) Col(i any) Vector { return m.b.index(m.node, i).AsVector() }

// Field returns the named member.
func (s StructValue) Field(name string) Value {
	b := s.b
	b.top()
	n := b.operand(s)
	st := b.module.Inner(n.t).(ir.StructType)
	desc := &b.module.Structs[st.Struct]
	idx := desc.MemberIndex(name)
	if idx < 0 {
		b.failf(ir.ErrInvalidArity, "struct %s has no member %q", desc.Name, name)
	}
	ty := b.memberType(desc.Members[idx])
	return b.wrap(b.add(ir.ExprMember{Base: n.h, Member: uint32(idx)}, ty, n)) //nolint:gosec // G115: member index
}

// Index returns element i. A constant index is checked against the
// length; an int or uint value indexes dynamically.
func (a ArrayValue) Index(i any) Value { return a.b.index(a.node, i) }

// Len returns the array length.
func (a ArrayValue) Len() int {
	return int(a.b.module.Inner(a.t).(ir.ArrayType).Size)
}

package shade

import (
	"math"

	"github.com/gogpu/shade/ir"
)

// literal converts a Go constant to a literal of the given kind.
//
//nolint:gocyclo,cyclop // one case per Go numeric type
func (b *Builder) literal(x any, kind ir.ScalarKind) node {
	var (
		f       float64
		isFloat bool
		i       int64
		isInt   bool
		u       uint64
		isUint  bool
	)
	switch v := x.(type) {
	case bool:
		if kind != ir.ScalarBool {
			b.failf(ir.ErrTypeMismatch, "bool constant used as %s", kind)
		}
		return b.add(ir.ExprLiteral{Value: ir.LiteralBool(v)}, b.module.ScalarOf(ir.ScalarBool))
	case float32:
		f, isFloat = float64(v), true
	case float64:
		f, isFloat = v, true
	case int:
		i, isInt = int64(v), true
	case int8:
		i, isInt = int64(v), true
	case int16:
		i, isInt = int64(v), true
	case int32:
		i, isInt = int64(v), true
	case int64:
		i, isInt = v, true
	case uint:
		u, isUint = uint64(v), true
	case uint8:
		u, isUint = uint64(v), true
	case uint16:
		u, isUint = uint64(v), true
	case uint32:
		u, isUint = uint64(v), true
	case uint64:
		u, isUint = v, true
	default:
		b.failf(ir.ErrTypeMismatch, "unsupported operand %T", x)
		return node{}
	}

	ty := b.module.ScalarOf(kind)
	switch kind {
	case ir.ScalarFloat:
		switch {
		case isInt:
			f = float64(i)
		case isUint:
			f = float64(u)
		}
		if !ir.IsFinite(float32(f)) {
			b.failf(ir.ErrUnsupportedConstruct, "float literal %v is not finite", f)
		}
		return b.add(ir.ExprLiteral{Value: ir.LiteralF32(float32(f))}, ty)

	case ir.ScalarSint:
		switch {
		case isFloat:
			if f != math.Trunc(f) {
				b.failf(ir.ErrTypeMismatch, "%v is not an integer", f)
			}
			i = int64(f)
		case isUint:
			if u > math.MaxInt32 {
				b.failf(ir.ErrTypeMismatch, "%d overflows int", u)
			}
			i = int64(u) //nolint:gosec // G115: range checked above
		}
		if i < math.MinInt32 || i > math.MaxInt32 {
			b.failf(ir.ErrTypeMismatch, "%d overflows int", i)
		}
		return b.add(ir.ExprLiteral{Value: ir.LiteralI32(int32(i))}, ty) //nolint:gosec // G115: range checked above

	case ir.ScalarUint:
		switch {
		case isFloat:
			if f != math.Trunc(f) || f < 0 {
				b.failf(ir.ErrTypeMismatch, "%v is not an unsigned integer", f)
			}
			u = uint64(f)
		case isInt:
			if i < 0 {
				b.failf(ir.ErrTypeMismatch, "%d is negative", i)
			}
			u = uint64(i) //nolint:gosec // G115: sign checked above
		}
		if u > math.MaxUint32 {
			b.failf(ir.ErrTypeMismatch, "%d overflows uint", u)
		}
		return b.add(ir.ExprLiteral{Value: ir.LiteralU32(uint32(u))}, ty) //nolint:gosec // G115: range checked above
	}

	b.failf(ir.ErrTypeMismatch, "numeric constant used as bool")
	return node{}
}

// naturalKind is the scalar kind a Go constant takes when nothing else
// decides it.
func naturalKind(x any) ir.ScalarKind {
	switch x.(type) {
	case bool:
		return ir.ScalarBool
	case int, int8, int16, int32, int64:
		return ir.ScalarSint
	case uint, uint8, uint16, uint32, uint64:
		return ir.ScalarUint
	default:
		return ir.ScalarFloat
	}
}

// value converts a Value or Go constant to an operand node. Constants
// take the given kind.
func (b *Builder) value(x any, kind ir.ScalarKind) node {
	if v, ok := x.(Value); ok {
		return b.operand(v)
	}
	return b.literal(x, kind)
}

// valueLike converts x for use where type like is expected: constants
// take like's scalar kind and scalars are splatted to like's vector size.
func (b *Builder) valueLike(x any, like ir.TypeHandle) node {
	n := b.value(x, b.scalarKind(like))
	if vec, isVec := b.module.Inner(like).(ir.VectorType); isVec {
		if st, isScalar := b.module.Inner(n.t).(ir.ScalarType); isScalar && st.Kind == vec.Kind {
			return b.add(ir.ExprSplat{Value: n.h}, like, n)
		}
	}
	return n
}

// anyValue converts x using the constant's natural kind.
func (b *Builder) anyValue(x any) node {
	if v, ok := x.(Value); ok {
		return b.operand(v)
	}
	return b.literal(x, naturalKind(x))
}

func (b *Builder) placeholder(ty ir.TypeHandle) node {
	return b.add(ir.ExprZeroValue{}, ty)
}

func (s *Scope) scalar(kind ir.ScalarKind, args []any) Scalar {
	b := s.enter()
	ty := b.module.ScalarOf(kind)
	switch len(args) {
	case 0:
		return Scalar{b.placeholder(ty)}
	case 1:
		if v, ok := args[0].(Value); ok {
			n := b.operand(v)
			if _, isScalar := b.module.Inner(n.t).(ir.ScalarType); !isScalar {
				b.failf(ir.ErrInvalidArity, "%s constructor takes a scalar, got %s", kind, b.module.TypeString(n.t))
			}
			if n.t == ty {
				return Scalar{n}
			}
			return Scalar{b.add(ir.ExprAs{Expr: n.h, Kind: kind}, ty, n)}
		}
		return Scalar{b.literal(args[0], kind)}
	}
	b.failf(ir.ErrInvalidArity, "%s constructor takes at most one argument, got %d", kind, len(args))
	return Scalar{}
}

// Float constructs a float: no argument yields a placeholder, a constant a
// literal, a scalar value a conversion.
func (s *Scope) Float(v ...any) Scalar { return s.scalar(ir.ScalarFloat, v) }

// Int constructs a signed integer.
func (s *Scope) Int(v ...any) Scalar { return s.scalar(ir.ScalarSint, v) }

// Uint constructs an unsigned integer.
func (s *Scope) Uint(v ...any) Scalar { return s.scalar(ir.ScalarUint, v) }

// Bool constructs a bool.
func (s *Scope) Bool(v ...any) Scalar { return s.scalar(ir.ScalarBool, v) }

// vector builds a vector of the given size and kind. The arguments must
// supply exactly size components of that kind, or a single scalar to
// splat, or a single vector of the same size to convert.
func (s *Scope) vector(size ir.VectorSize, kind ir.ScalarKind, args []any) Vector {
	b := s.enter()
	ty := b.module.VectorOf(size, kind)
	if len(args) == 0 {
		return Vector{b.placeholder(ty)}
	}

	if len(args) == 1 {
		if v, ok := args[0].(Value); ok {
			n := b.operand(v)
			switch t := b.module.Inner(n.t).(type) {
			case ir.ScalarType:
				if t.Kind != kind {
					b.failf(ir.ErrInvalidArity, "cannot splat %s into %s", t.Kind, b.module.TypeString(ty))
				}
				return Vector{b.add(ir.ExprSplat{Value: n.h}, ty, n)}
			case ir.VectorType:
				if t.Size != size {
					break
				}
				if t.Kind == kind {
					return Vector{n}
				}
				return Vector{b.add(ir.ExprAs{Expr: n.h, Kind: kind}, ty, n)}
			}
		} else {
			n := b.literal(args[0], kind)
			return Vector{b.add(ir.ExprSplat{Value: n.h}, ty, n)}
		}
	}

	components := make([]ir.ExpressionHandle, 0, len(args))
	operands := make([]node, 0, len(args))
	total := 0
	for _, a := range args {
		n := b.value(a, kind)
		switch t := b.module.Inner(n.t).(type) {
		case ir.ScalarType:
			if t.Kind != kind {
				b.failf(ir.ErrInvalidArity, "%s component in a %s constructor", t.Kind, b.module.TypeString(ty))
			}
			total++
		case ir.VectorType:
			if t.Kind != kind {
				b.failf(ir.ErrInvalidArity, "%s component in a %s constructor", b.module.TypeString(n.t), b.module.TypeString(ty))
			}
			total += int(t.Size)
		default:
			b.failf(ir.ErrInvalidArity, "%s cannot be a component of %s", b.module.TypeString(n.t), b.module.TypeString(ty))
		}
		components = append(components, n.h)
		operands = append(operands, n)
	}
	if total != int(size) {
		b.failf(ir.ErrInvalidArity, "%s needs %d components, got %d", b.module.TypeString(ty), size, total)
	}
	return Vector{b.add(ir.ExprCompose{Components: components}, ty, operands...)}
}

// Vec2 constructs a float vector.
func (s *Scope) Vec2(args ...any) Vector { return s.vector(ir.Vec2, ir.ScalarFloat, args) }

// Vec3 constructs a float vector.
func (s *Scope) Vec3(args ...any) Vector { return s.vector(ir.Vec3, ir.ScalarFloat, args) }

// Vec4 constructs a float vector.
func (s *Scope) Vec4(args ...any) Vector { return s.vector(ir.Vec4, ir.ScalarFloat, args) }

// IVec2 constructs a signed integer vector.
func (s *Scope) IVec2(args ...any) Vector { return s.vector(ir.Vec2, ir.ScalarSint, args) }

// IVec3 constructs a signed integer vector.
func (s *Scope) IVec3(args ...any) Vector { return s.vector(ir.Vec3, ir.ScalarSint, args) }

// IVec4 constructs a signed integer vector.
func (s *Scope) IVec4(args ...any) Vector { return s.vector(ir.Vec4, ir.ScalarSint, args) }

// UVec2 constructs an unsigned integer vector.
func (s *Scope) UVec2(args ...any) Vector { return s.vector(ir.Vec2, ir.ScalarUint, args) }

// UVec3 constructs an unsigned integer vector.
func (s *Scope) UVec3(args ...any) Vector { return s.vector(ir.Vec3, ir.ScalarUint, args) }

// UVec4 constructs an unsigned integer vector.
func (s *Scope) UVec4(args ...any) Vector { return s.vector(ir.Vec4, ir.ScalarUint, args) }

// BVec2 constructs a bool vector.
func (s *Scope) BVec2(args ...any) Vector { return s.vector(ir.Vec2, ir.ScalarBool, args) }

// BVec3 constructs a bool vector.
func (s *Scope) BVec3(args ...any) Vector { return s.vector(ir.Vec3, ir.ScalarBool, args) }

// BVec4 constructs a bool vector.
func (s *Scope) BVec4(args ...any) Vector { return s.vector(ir.Vec4, ir.ScalarBool, args) }

// matrix builds an n×n matrix from n column vectors or n*n scalars.
// A single scalar is rejected: the dialects disagree on its meaning.
func (s *Scope) matrix(n ir.VectorSize, args []any) Matrix {
	b := s.enter()
	ty := b.module.MatrixOf(n, n)
	col := b.module.VectorOf(n, ir.ScalarFloat)
	size := int(n)

	switch len(args) {
	case 0:
		return Matrix{b.placeholder(ty)}
	case 1:
		if v, ok := args[0].(Value); ok {
			if m := b.operand(v); m.t == ty {
				return Matrix{m}
			}
		}
	case size, size * size:
		want := col
		if len(args) == size*size {
			want = b.module.ScalarOf(ir.ScalarFloat)
		}
		components := make([]ir.ExpressionHandle, 0, len(args))
		operands := make([]node, 0, len(args))
		for _, a := range args {
			c := b.value(a, ir.ScalarFloat)
			if c.t != want {
				b.failf(ir.ErrInvalidArity, "%s component has type %s, want %s",
					b.module.TypeString(ty), b.module.TypeString(c.t), b.module.TypeString(want))
			}
			components = append(components, c.h)
			operands = append(operands, c)
		}
		return Matrix{b.add(ir.ExprCompose{Components: components}, ty, operands...)}
	}
	b.failf(ir.ErrInvalidArity, "%s takes %d columns or %d scalars, got %d arguments",
		b.module.TypeString(ty), size, size*size, len(args))
	return Matrix{}
}

// Mat2 constructs a 2×2 matrix from 2 columns or 4 scalars.
func (s *Scope) Mat2(args ...any) Matrix { return s.matrix(ir.Vec2, args) }

// Mat3 constructs a 3×3 matrix from 3 columns or 9 scalars.
func (s *Scope) Mat3(args ...any) Matrix { return s.matrix(ir.Vec3, args) }

// Mat4 constructs a 4×4 matrix from 4 columns or 16 scalars.
func (s *Scope) Mat4(args ...any) Matrix { return s.matrix(ir.Vec4, args) }

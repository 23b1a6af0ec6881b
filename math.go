package shade

import (
	"github.com/gogpu/shade/ir"
)

// Numeric is a float scalar or vector value.
type Numeric interface {
	Scalar | Vector
	Value
}

func (b *Builder) math(fun ir.MathFunction, args ...node) node {
	hs := make([]ir.ExpressionHandle, len(args))
	ts := make([]ir.TypeHandle, len(args))
	for i, a := range args {
		hs[i], ts[i] = a.h, a.t
	}
	ty, err := b.module.ResolveMath(fun, ts)
	if err != nil {
		b.fail(err.(*ir.Error))
	}
	return b.add(ir.ExprMath{Fun: fun, Args: hs}, ty, args...)
}

func like[T Numeric](n node) T {
	var out T
	switch p := any(&out).(type) {
	case *Scalar:
		*p = Scalar{n}
	case *Vector:
		*p = Vector{n}
	}
	return out
}

func unaryMath[T Numeric](fun ir.MathFunction, x T) T {
	b := x.base().b
	return like[T](b.math(fun, b.operandNode(x.base())))
}

func binaryMath[T Numeric](fun ir.MathFunction, x T, y any) T {
	b := x.base().b
	n := b.operandNode(x.base())
	return like[T](b.math(fun, n, b.valueLike(y, n.t)))
}

// Abs returns |x|.
func Abs[T Numeric](x T) T { return unaryMath(ir.MathAbs, x) }

// Sign returns -1, 0 or 1 per component.
func Sign[T Numeric](x T) T { return unaryMath(ir.MathSign, x) }

// Sin returns the sine of x.
func Sin[T Numeric](x T) T { return unaryMath(ir.MathSin, x) }

// Cos returns the cosine of x.
func Cos[T Numeric](x T) T { return unaryMath(ir.MathCos, x) }

// Tan returns the tangent of x.
func Tan[T Numeric](x T) T { return unaryMath(ir.MathTan, x) }

// Asin returns the arc sine of x.
func Asin[T Numeric](x T) T { return unaryMath(ir.MathAsin, x) }

// Acos returns the arc cosine of x.
func Acos[T Numeric](x T) T { return unaryMath(ir.MathAcos, x) }

// Atan returns the arc tangent of x.
func Atan[T Numeric](x T) T { return unaryMath(ir.MathAtan, x) }

// Atan2 returns the arc tangent of y/x using the signs of both.
func Atan2[T Numeric](y T, x any) T { return binaryMath(ir.MathAtan2, y, x) }

// Radians converts degrees to radians.
func Radians[T Numeric](x T) T { return unaryMath(ir.MathRadians, x) }

// Degrees converts radians to degrees.
func Degrees[T Numeric](x T) T { return unaryMath(ir.MathDegrees, x) }

// Floor rounds down.
func Floor[T Numeric](x T) T { return unaryMath(ir.MathFloor, x) }

// Ceil rounds up.
func Ceil[T Numeric](x T) T { return unaryMath(ir.MathCeil, x) }

// Fract returns x - floor(x).
func Fract[T Numeric](x T) T { return unaryMath(ir.MathFract, x) }

// Mod returns the floored modulo x - y * floor(x / y).
func Mod[T Numeric](x T, y any) T { return binaryMath(ir.MathMod, x, y) }

// Exp returns e raised to x.
func Exp[T Numeric](x T) T { return unaryMath(ir.MathExp, x) }

// Exp2 returns 2 raised to x.
func Exp2[T Numeric](x T) T { return unaryMath(ir.MathExp2, x) }

// Log returns the natural logarithm.
func Log[T Numeric](x T) T { return unaryMath(ir.MathLog, x) }

// Log2 returns the base-2 logarithm.
func Log2[T Numeric](x T) T { return unaryMath(ir.MathLog2, x) }

// Pow returns x raised to y.
func Pow[T Numeric](x T, y any) T { return binaryMath(ir.MathPow, x, y) }

// Sqrt returns the square root.
func Sqrt[T Numeric](x T) T { return unaryMath(ir.MathSqrt, x) }

// InverseSqrt returns 1 / sqrt(x).
func InverseSqrt[T Numeric](x T) T { return unaryMath(ir.MathInverseSqrt, x) }

// Min returns the smaller of x and y per component.
func Min[T Numeric](x T, y any) T { return binaryMath(ir.MathMin, x, y) }

// Max returns the larger of x and y per component.
func Max[T Numeric](x T, y any) T { return binaryMath(ir.MathMax, x, y) }

// Clamp limits x to [lo, hi].
func Clamp[T Numeric](x T, lo, hi any) T {
	b := x.base().b
	n := b.operandNode(x.base())
	return like[T](b.math(ir.MathClamp, n, b.valueLike(lo, n.t), b.valueLike(hi, n.t)))
}

// Mix interpolates linearly between x and y. The weight is either the
// same type as x or a float scalar.
func Mix[T Numeric](x T, y any, weight any) T {
	b := x.base().b
	n := b.operandNode(x.base())
	other := b.valueLike(y, n.t)
	var w node
	if v, ok := weight.(Value); ok {
		w = b.operand(v)
	} else {
		w = b.literal(weight, ir.ScalarFloat)
	}
	return like[T](b.math(ir.MathMix, n, other, w))
}

// Step returns 0 where x < edge and 1 elsewhere.
func Step[T Numeric](edge any, x T) T {
	b := x.base().b
	n := b.operandNode(x.base())
	return like[T](b.math(ir.MathStep, b.valueLike(edge, n.t), n))
}

// SmoothStep performs Hermite interpolation between lo and hi.
func SmoothStep[T Numeric](lo, hi any, x T) T {
	b := x.base().b
	n := b.operandNode(x.base())
	return like[T](b.math(ir.MathSmoothStep, b.valueLike(lo, n.t), b.valueLike(hi, n.t), n))
}

// Ddx returns the screen-space derivative in x. Fragment code only.
func Ddx[T Numeric](x T) T { return unaryMath(ir.MathDdx, x) }

// Ddy returns the screen-space derivative in y. Fragment code only.
func Ddy[T Numeric](x T) T { return unaryMath(ir.MathDdy, x) }

// Fwidth returns |ddx(x)| + |ddy(x)|. Fragment code only.
func Fwidth[T Numeric](x T) T { return unaryMath(ir.MathFwidth, x) }

// Length returns the Euclidean length.
func Length[T Numeric](x T) Scalar {
	b := x.base().b
	return Scalar{b.math(ir.MathLength, b.operandNode(x.base()))}
}

// Distance returns the length of x - y.
func Distance[T Numeric](x T, y any) Scalar {
	b := x.base().b
	n := b.operandNode(x.base())
	return Scalar{b.math(ir.MathDistance, n, b.valueLike(y, n.t))}
}

// Dot returns the dot product.
func Dot(x Vector, y any) Scalar {
	n := x.b.operandNode(x.node)
	return Scalar{x.b.math(ir.MathDot, n, x.b.valueLike(y, n.t))}
}

// Cross returns the cross product of two vec3 values.
func Cross(x Vector, y any) Vector {
	n := x.b.operandNode(x.node)
	return Vector{x.b.math(ir.MathCross, n, x.b.valueLike(y, n.t))}
}

// Normalize returns x scaled to unit length.
func Normalize(x Vector) Vector {
	return Vector{x.b.math(ir.MathNormalize, x.b.operandNode(x.node))}
}

// Reflect reflects the incident vector i about the normal n.
func Reflect(i Vector, n any) Vector {
	v := i.b.operandNode(i.node)
	return Vector{i.b.math(ir.MathReflect, v, i.b.valueLike(n, v.t))}
}

package shade

import (
	"github.com/gogpu/shade/ir"
)

// Value is a typed expression node. The variants are Scalar, Vector,
// Matrix, StructValue, ArrayValue and Texture.
type Value interface {
	base() node

	// Expr returns the IR expression the value stands for.
	Expr() ir.ExpressionHandle

	AsScalar() Scalar
	AsVector() Vector
	AsMatrix() Matrix
	AsStruct() StructValue
	AsArray() ArrayValue
}

// node is the state shared by every value variant.
type node struct {
	b  *Builder
	fr *frame
	// scope is the innermost block declaring a binding the value depends
	// on; nil when the value is valid anywhere in its function.
	scope *block
	h     ir.ExpressionHandle
	t     ir.TypeHandle
}

func (n node) base() node { return n }

func (n node) Expr() ir.ExpressionHandle { return n.h }

func (n node) AsScalar() Scalar {
	if _, ok := n.b.module.Inner(n.t).(ir.ScalarType); !ok {
		n.b.failf(ir.ErrTypeMismatch, "%s is not a scalar", n.b.module.TypeString(n.t))
	}
	return Scalar{n}
}

func (n node) AsVector() Vector {
	if _, ok := n.b.module.Inner(n.t).(ir.VectorType); !ok {
		n.b.failf(ir.ErrTypeMismatch, "%s is not a vector", n.b.module.TypeString(n.t))
	}
	return Vector{n}
}

func (n node) AsMatrix() Matrix {
	if _, ok := n.b.module.Inner(n.t).(ir.MatrixType); !ok {
		n.b.failf(ir.ErrTypeMismatch, "%s is not a matrix", n.b.module.TypeString(n.t))
	}
	return Matrix{n}
}

func (n node) AsStruct() StructValue {
	if _, ok := n.b.module.Inner(n.t).(ir.StructType); !ok {
		n.b.failf(ir.ErrTypeMismatch, "%s is not a struct", n.b.module.TypeString(n.t))
	}
	return StructValue{n}
}

func (n node) AsArray() ArrayValue {
	if _, ok := n.b.module.Inner(n.t).(ir.ArrayType); !ok {
		n.b.failf(ir.ErrTypeMismatch, "%s is not an array", n.b.module.TypeString(n.t))
	}
	return ArrayValue{n}
}

// Scalar is a float, int, uint or bool value.
type Scalar struct{ node }

// Vector is a 2-, 3- or 4-component vector value.
type Vector struct{ node }

// Matrix is a float matrix value.
type Matrix struct{ node }

// StructValue is a value of a struct type.
type StructValue struct{ node }

// ArrayValue is a fixed-length array value.
type ArrayValue struct{ node }

// wrap returns the variant matching the node's type.
func (b *Builder) wrap(n node) Value {
	switch b.module.Inner(n.t).(type) {
	case ir.ScalarType:
		return Scalar{n}
	case ir.VectorType:
		return Vector{n}
	case ir.MatrixType:
		return Matrix{n}
	case ir.StructType:
		return StructValue{n}
	case ir.ArrayType:
		return ArrayValue{n}
	case ir.TextureType:
		res := b.module.Expressions[n.h].Kind.(ir.ExprResource).Resource
		return Texture{node: n, res: res}
	}
	b.failf(ir.ErrInvalidModule, "expression %d has no value type", n.h)
	return nil
}

// add appends an expression built from already checked operands.
func (b *Builder) add(kind ir.ExpressionKind, ty ir.TypeHandle, operands ...node) node {
	fr := b.top()
	var scope *block
	for _, op := range operands {
		if op.scope != nil && (scope == nil || op.scope.depth > scope.depth) {
			scope = op.scope
		}
	}
	return node{b: b, fr: fr, scope: scope, h: b.module.AddExpression(kind, ty), t: ty}
}

// check verifies that v may be used at the current point of the active
// body.
func (b *Builder) check(v Value) node {
	if v == nil {
		b.failf(ir.ErrInvalidArity, "nil value")
		return node{}
	}
	return b.checkNode(v.base())
}

func (b *Builder) checkNode(n node) node {
	fr := b.top()
	switch {
	case n.b != b:
		b.failf(ir.ErrInvalidArity, "value belongs to another builder")
	case n.fr != fr:
		b.failf(ir.ErrUnbalancedScope, "value created in %q used in %q", n.fr.name, fr.name)
	case n.scope != nil && !n.scope.encloses(fr.cur):
		b.failf(ir.ErrUnbalancedScope, "value depends on a binding of a closed block")
	}
	return n
}

// operand checks v and rejects placeholders.
func (b *Builder) operand(v Value) node {
	if v == nil {
		b.failf(ir.ErrInvalidArity, "nil value")
		return node{}
	}
	return b.operandNode(v.base())
}

func (b *Builder) operandNode(n node) node {
	n = b.checkNode(n)
	if _, zero := b.module.Expressions[n.h].Kind.(ir.ExprZeroValue); zero {
		b.failf(ir.ErrInvalidArity, "an uninitialized placeholder cannot be used as an operand")
	}
	return n
}

func (b *Builder) scalarKind(t ir.TypeHandle) ir.ScalarKind {
	k, _ := b.module.Scalar(t)
	return k
}

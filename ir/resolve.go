package ir

// Result-type rules. Every rule accepts only operand combinations that both
// dialects can express without implicit conversion; anything else is an
// ErrTypeMismatch.

// ResolveUnary returns the result type of a unary operation.
func (m *Module) ResolveUnary(op UnaryOperator, operand TypeHandle) (TypeHandle, error) {
	switch op {
	case UnaryNegate:
		switch t := m.Inner(operand).(type) {
		case ScalarType:
			if t.Kind == ScalarFloat || t.Kind == ScalarSint {
				return operand, nil
			}
		case VectorType:
			if t.Kind == ScalarFloat || t.Kind == ScalarSint {
				return operand, nil
			}
		}
		return 0, Errorf(ErrTypeMismatch, "cannot negate %s", m.TypeString(operand))
	case UnaryLogicalNot:
		if m.IsScalar(operand, ScalarBool) {
			return operand, nil
		}
		return 0, Errorf(ErrTypeMismatch, "logical not needs bool, got %s", m.TypeString(operand))
	}
	return 0, Errorf(ErrUnsupportedConstruct, "unknown unary operator %d", op)
}

// ResolveBinary returns the result type of a binary operation.
//
//nolint:gocyclo,cyclop // one case per operator family
func (m *Module) ResolveBinary(op BinaryOperator, left, right TypeHandle) (TypeHandle, error) {
	li, ri := m.Inner(left), m.Inner(right)
	mismatch := func() (TypeHandle, error) {
		return 0, Errorf(ErrTypeMismatch, "operator %s cannot combine %s and %s",
			op.Symbol(), m.TypeString(left), m.TypeString(right))
	}

	switch {
	case op.IsLogical():
		if m.IsScalar(left, ScalarBool) && m.IsScalar(right, ScalarBool) {
			return left, nil
		}
		return mismatch()

	case op.IsComparison():
		ls, lok := li.(ScalarType)
		rs, rok := ri.(ScalarType)
		if !lok || !rok || ls.Kind != rs.Kind {
			return mismatch()
		}
		if ls.Kind == ScalarBool && op != BinaryEqual && op != BinaryNotEqual {
			return mismatch()
		}
		return m.ScalarOf(ScalarBool), nil

	case op == BinaryModulo:
		lk, lok := m.Scalar(left)
		rk, rok := m.Scalar(right)
		if !lok || !rok || lk != rk || !m.IsIntegral(left) || !m.IsIntegral(right) {
			return mismatch()
		}
		return broadcast(m, left, right, mismatch)

	case op == BinaryMultiply:
		return m.resolveMultiply(left, right, mismatch)

	default: // add, subtract, divide
		if lm, ok := li.(MatrixType); ok {
			rm, rok := ri.(MatrixType)
			if op == BinaryDivide || !rok || lm != rm {
				return mismatch()
			}
			return left, nil
		}
		if _, ok := ri.(MatrixType); ok {
			return mismatch()
		}
		lk, lok := m.Scalar(left)
		rk, rok := m.Scalar(right)
		if !lok || !rok || lk != rk || lk == ScalarBool {
			return mismatch()
		}
		return broadcast(m, left, right, mismatch)
	}
}

// broadcast resolves scalar/vector arithmetic of equal kinds: scalar op
// vector yields the vector type, vectors must have equal sizes.
func broadcast(m *Module, left, right TypeHandle, mismatch func() (TypeHandle, error)) (TypeHandle, error) {
	lv, lIsVec := m.Inner(left).(VectorType)
	rv, rIsVec := m.Inner(right).(VectorType)
	switch {
	case lIsVec && rIsVec:
		if lv.Size != rv.Size {
			return mismatch()
		}
		return left, nil
	case lIsVec:
		return left, nil
	case rIsVec:
		return right, nil
	default:
		return left, nil
	}
}

// resolveMultiply follows linear-algebra rules:
// scalar*vec → vec, scalar*mat → mat, mat*vec → vec(rows),
// vec*mat → vec(columns), mat*mat → mat.
func (m *Module) resolveMultiply(left, right TypeHandle, mismatch func() (TypeHandle, error)) (TypeHandle, error) {
	li, ri := m.Inner(left), m.Inner(right)
	lm, lIsMat := li.(MatrixType)
	rm, rIsMat := ri.(MatrixType)

	if !lIsMat && !rIsMat {
		lk, lok := m.Scalar(left)
		rk, rok := m.Scalar(right)
		if !lok || !rok || lk != rk || lk == ScalarBool {
			return mismatch()
		}
		return broadcast(m, left, right, mismatch)
	}

	switch {
	case lIsMat && rIsMat:
		if lm.Columns != rm.Rows {
			return mismatch()
		}
		return m.MatrixOf(rm.Columns, lm.Rows), nil
	case lIsMat:
		switch r := ri.(type) {
		case ScalarType:
			if r.Kind == ScalarFloat {
				return left, nil
			}
		case VectorType:
			if r.Kind == ScalarFloat && r.Size == lm.Columns {
				return m.VectorOf(lm.Rows, ScalarFloat), nil
			}
		}
	default:
		switch l := li.(type) {
		case ScalarType:
			if l.Kind == ScalarFloat {
				return right, nil
			}
		case VectorType:
			if l.Kind == ScalarFloat && l.Size == rm.Rows {
				return m.VectorOf(rm.Columns, ScalarFloat), nil
			}
		}
	}
	return mismatch()
}

// ResolveMath returns the result type of a built-in function call.
// Built-in functions operate on float scalars and vectors only.
//
//nolint:gocyclo,cyclop // one case per function family
func (m *Module) ResolveMath(fun MathFunction, args []TypeHandle) (TypeHandle, error) {
	if len(args) != fun.Arity() {
		return 0, Errorf(ErrInvalidArity, "%s takes %d arguments, got %d", fun, fun.Arity(), len(args))
	}
	for _, a := range args {
		if !m.isFloatish(a) {
			return 0, Errorf(ErrTypeMismatch, "%s needs float arguments, got %s", fun, m.TypeString(a))
		}
	}
	same := func(hs ...TypeHandle) bool {
		for _, h := range hs {
			if h != args[0] {
				return false
			}
		}
		return true
	}
	mismatch := func() (TypeHandle, error) {
		return 0, Errorf(ErrTypeMismatch, "%s has mismatched arguments", fun)
	}

	switch fun {
	case MathLength:
		return m.ScalarOf(ScalarFloat), nil
	case MathDistance, MathDot:
		if !same(args[1]) {
			return mismatch()
		}
		if fun == MathDot {
			if _, ok := m.Inner(args[0]).(VectorType); !ok {
				return mismatch()
			}
		}
		return m.ScalarOf(ScalarFloat), nil
	case MathCross:
		v, ok := m.Inner(args[0]).(VectorType)
		if !ok || v.Size != Vec3 || !same(args[1]) {
			return mismatch()
		}
		return args[0], nil
	case MathMix:
		if !same(args[1]) {
			return mismatch()
		}
		if !same(args[2]) && !m.IsScalar(args[2], ScalarFloat) {
			return mismatch()
		}
		return args[0], nil
	default:
		if !same(args...) {
			return mismatch()
		}
		return args[0], nil
	}
}

func (m *Module) isFloatish(h TypeHandle) bool {
	switch t := m.Inner(h).(type) {
	case ScalarType:
		return t.Kind == ScalarFloat
	case VectorType:
		return t.Kind == ScalarFloat
	}
	return false
}

// ResolveIndex returns the element type of an indexable base: an array
// element, a vector component or a matrix column.
func (m *Module) ResolveIndex(base TypeHandle) (TypeHandle, error) {
	switch t := m.Inner(base).(type) {
	case ArrayType:
		return t.Base, nil
	case VectorType:
		return m.ScalarOf(t.Kind), nil
	case MatrixType:
		return m.VectorOf(t.Rows, ScalarFloat), nil
	}
	return 0, Errorf(ErrTypeMismatch, "%s cannot be indexed", m.TypeString(base))
}

// ResolveConversion returns the result of converting h to kind, keeping
// the vector size.
func (m *Module) ResolveConversion(h TypeHandle, kind ScalarKind) (TypeHandle, error) {
	switch t := m.Inner(h).(type) {
	case ScalarType:
		return m.ScalarOf(kind), nil
	case VectorType:
		return m.VectorOf(t.Size, kind), nil
	}
	return 0, Errorf(ErrTypeMismatch, "cannot convert %s", m.TypeString(h))
}

// TypeString returns a dialect-neutral description of a type for messages.
func (m *Module) TypeString(h TypeHandle) string {
	switch t := m.Inner(h).(type) {
	case ScalarType:
		return t.Kind.String()
	case VectorType:
		return "vec" + string('0'+byte(t.Size)) + "<" + t.Kind.String() + ">"
	case MatrixType:
		return "mat" + string('0'+byte(t.Columns)) + "x" + string('0'+byte(t.Rows))
	case ArrayType:
		return "array<" + m.TypeString(t.Base) + ">"
	case StructType:
		if int(t.Struct) < len(m.Structs) {
			return "struct " + m.Structs[t.Struct].Name
		}
		return "struct"
	case TextureType:
		return "texture"
	case SamplerType:
		return "sampler"
	}
	return "invalid"
}

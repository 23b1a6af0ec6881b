// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package glsl

import (
	"fmt"
	"strings"

	"github.com/gogpu/shade/ir"
)

// writeExpression returns the GLSL representation of an expression.
// Text is memoized per compile call.
func (w *Writer) writeExpression(handle ir.ExpressionHandle) (string, error) {
	if s, ok := w.cache.Get(handle, ir.DialectGLSL); ok {
		return s, nil
	}
	if int(handle) >= len(w.module.Expressions) {
		return "", ir.Errorf(ir.ErrInvalidModule, "invalid expression handle: %d", handle)
	}
	s, err := w.writeExpressionKind(handle, &w.module.Expressions[handle])
	if err != nil {
		return "", err
	}
	w.cache.Put(handle, ir.DialectGLSL, s)
	return s, nil
}

func (w *Writer) writeExpressions(handles []ir.ExpressionHandle) ([]string, error) {
	out := make([]string, len(handles))
	for i, h := range handles {
		s, err := w.writeExpression(h)
		if err != nil {
			return nil, err
		}
		out[i] = s
	}
	return out, nil
}

// writeExpressionKind writes the expression based on its kind.
//
//nolint:gocyclo,cyclop,funlen // Expression handling requires many cases
func (w *Writer) writeExpressionKind(handle ir.ExpressionHandle, expr *ir.Expression) (string, error) {
	switch k := expr.Kind.(type) {
	case ir.ExprLiteral:
		return writeLiteral(k.Value), nil

	case ir.ExprZeroValue:
		return "", ir.Errorf(ir.ErrInvalidModule, "placeholder %d used as a value", handle)

	case ir.ExprCompose:
		args, err := w.writeExpressions(k.Components)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s(%s)", w.typeName(expr.Type), strings.Join(args, ", ")), nil

	case ir.ExprSplat:
		value, err := w.writeExpression(k.Value)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s(%s)", w.typeName(expr.Type), value), nil

	case ir.ExprSwizzle:
		base, err := w.writeExpression(k.Vector)
		if err != nil {
			return "", err
		}
		return base + "." + swizzleText(k), nil

	case ir.ExprMember:
		base, err := w.writeExpression(k.Base)
		if err != nil {
			return "", err
		}
		st, ok := w.module.Inner(w.module.ExprType(k.Base)).(ir.StructType)
		if !ok {
			return "", ir.Errorf(ir.ErrInvalidModule, "member access on a non-struct")
		}
		return base + "." + w.names[nameKey{kind: nameKeyStructMember, handle1: uint32(st.Struct), handle2: k.Member}], nil

	case ir.ExprAccessIndex:
		base, err := w.writeExpression(k.Base)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s[%d]", base, k.Index), nil

	case ir.ExprAccess:
		base, err := w.writeExpression(k.Base)
		if err != nil {
			return "", err
		}
		index, err := w.writeExpression(k.Index)
		if err != nil {
			return "", err
		}
		if w.module.IsScalar(w.module.ExprType(k.Index), ir.ScalarUint) {
			index = "int(" + index + ")"
		}
		return fmt.Sprintf("%s[%s]", base, index), nil

	case ir.ExprUnary:
		operand, err := w.writeExpression(k.Expr)
		if err != nil {
			return "", err
		}
		op := "-"
		if k.Op == ir.UnaryLogicalNot {
			op = "!"
		}
		if strings.HasPrefix(operand, op) {
			// "--x" would read as a decrement.
			return op + "(" + operand + ")", nil
		}
		return "(" + op + operand + ")", nil

	case ir.ExprBinary:
		return w.writeBinary(k)

	case ir.ExprSelect:
		args, err := w.writeExpressions([]ir.ExpressionHandle{k.Condition, k.Accept, k.Reject})
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("(%s ? %s : %s)", args[0], args[1], args[2]), nil

	case ir.ExprMath:
		args, err := w.writeExpressions(k.Args)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s(%s)", mathFunctionName(k.Fun), strings.Join(args, ", ")), nil

	case ir.ExprAs:
		value, err := w.writeExpression(k.Expr)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s(%s)", w.typeName(expr.Type), value), nil

	case ir.ExprResource:
		if w.fragColor != nil && *w.fragColor == k.Resource {
			return "gl_FragColor", nil
		}
		return w.names[nameKey{kind: nameKeyResource, handle1: uint32(k.Resource)}], nil

	case ir.ExprBuiltin:
		return glslBuiltIn(k.Builtin), nil

	case ir.ExprLocal:
		name, ok := w.names[nameKey{kind: nameKeyLocal, handle1: uint32(k.Local)}]
		if !ok {
			return "", ir.Errorf(ir.ErrInvalidModule, "local %q used before its declaration", w.module.Locals[k.Local].Name)
		}
		return name, nil

	case ir.ExprArgument:
		return w.names[nameKey{kind: nameKeyFunctionArgument, handle1: uint32(k.Function), handle2: k.Index}], nil

	case ir.ExprCall:
		args, err := w.writeExpressions(k.Arguments)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s(%s)", w.names[nameKey{kind: nameKeyFunction, handle1: uint32(k.Function)}], strings.Join(args, ", ")), nil

	case ir.ExprImageSample:
		return w.writeImageSample(k)

	default:
		return "", ir.Errorf(ir.ErrUnsupportedConstruct, "unsupported expression kind: %T", expr.Kind)
	}
}

// writeLiteral writes a literal value.
func writeLiteral(v ir.LiteralValue) string {
	switch v := v.(type) {
	case ir.LiteralBool:
		if v {
			return "true"
		}
		return "false"
	case ir.LiteralI32:
		return fmt.Sprintf("%d", int32(v))
	case ir.LiteralU32:
		return fmt.Sprintf("%du", uint32(v))
	case ir.LiteralF32:
		return ir.FormatFloat(float32(v))
	}
	return "0"
}

// writeBinary writes a binary operation. Legacy GLSL has no integer
// remainder operator; it is expanded through division.
func (w *Writer) writeBinary(k ir.ExprBinary) (string, error) {
	left, err := w.writeExpression(k.Left)
	if err != nil {
		return "", err
	}
	right, err := w.writeExpression(k.Right)
	if err != nil {
		return "", err
	}
	if k.Op == ir.BinaryModulo && w.legacy() {
		return fmt.Sprintf("(%s - %s * (%s / %s))", left, right, left, right), nil
	}
	return fmt.Sprintf("(%s %s %s)", left, k.Op.Symbol(), right), nil
}

// writeImageSample writes a texture lookup on the combined sampler.
func (w *Writer) writeImageSample(k ir.ExprImageSample) (string, error) {
	tex := w.names[nameKey{kind: nameKeyResource, handle1: uint32(k.Texture)}]
	coord, err := w.writeExpression(k.Coordinate)
	if err != nil {
		return "", err
	}

	cube := false
	if t, ok := w.module.Inner(w.module.Resources[k.Texture].Type).(ir.TextureType); ok {
		cube = t.Dim == ir.DimCube
	}

	fun := "texture"
	if w.legacy() {
		fun = "texture2D"
		if cube {
			fun = "textureCube"
		}
	}
	if k.Level == nil {
		return fmt.Sprintf("%s(%s, %s)", fun, tex, coord), nil
	}
	level, err := w.writeExpression(*k.Level)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%sLod(%s, %s, %s)", fun, tex, coord, level), nil
}

func swizzleText(k ir.ExprSwizzle) string {
	const letters = "xyzw"
	var sb strings.Builder
	for i := range int(k.Size) {
		sb.WriteByte(letters[k.Pattern[i]])
	}
	return sb.String()
}

// mathFunctionName returns the GLSL built-in for a math function.
func mathFunctionName(f ir.MathFunction) string {
	switch f {
	case ir.MathAtan2:
		return "atan"
	case ir.MathInverseSqrt:
		return "inversesqrt"
	case ir.MathDdx:
		return "dFdx"
	case ir.MathDdy:
		return "dFdy"
	default:
		// The remaining names match GLSL.
		return f.String()
	}
}

// glslBuiltIn returns the GLSL built-in variable name for a builtin value.
func glslBuiltIn(builtin ir.BuiltinValue) string {
	switch builtin {
	case ir.BuiltinPosition:
		return "gl_Position"
	case ir.BuiltinFragCoord:
		return "gl_FragCoord"
	case ir.BuiltinVertexIndex:
		return "gl_VertexID"
	case ir.BuiltinInstanceIndex:
		return "gl_InstanceID"
	case ir.BuiltinFrontFacing:
		return "gl_FrontFacing"
	default:
		return "gl_UNKNOWN"
	}
}

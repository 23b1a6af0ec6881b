// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package wgsl

import (
	"fmt"
	"math"
	"strings"

	"github.com/gogpu/shade/ir"
)

// writeExpression returns the WGSL representation of an expression.
// Hoisted samples resolve to their binding; other text is memoized per
// function.
func (w *Writer) writeExpression(handle ir.ExpressionHandle) (string, error) {
	if name, ok := w.hoisted[handle]; ok {
		return name, nil
	}
	if s, ok := w.cache.Get(handle, ir.DialectWGSL); ok {
		return s, nil
	}
	if int(handle) >= len(w.module.Expressions) {
		return "", ir.Errorf(ir.ErrInvalidModule, "invalid expression handle: %d", handle)
	}
	s, err := w.writeExpressionKind(handle, &w.module.Expressions[handle])
	if err != nil {
		return "", err
	}
	w.cache.Put(handle, ir.DialectWGSL, s)
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
		return base + "." + swizzleText(k.Pattern[:k.Size]), nil

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
			// Keep "--" and "!!" from being read as one token.
			return op + "(" + operand + ")", nil
		}
		return "(" + op + operand + ")", nil

	case ir.ExprBinary:
		left, err := w.writeExpression(k.Left)
		if err != nil {
			return "", err
		}
		right, err := w.writeExpression(k.Right)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("(%s %s %s)", left, k.Op.Symbol(), right), nil

	case ir.ExprSelect:
		args, err := w.writeExpressions([]ir.ExpressionHandle{k.Reject, k.Accept, k.Condition})
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("select(%s)", strings.Join(args, ", ")), nil

	case ir.ExprMath:
		args, err := w.writeExpressions(k.Args)
		if err != nil {
			return "", err
		}
		if k.Fun == ir.MathMod {
			// WGSL % truncates; mod floors.
			return fmt.Sprintf("(%s - %s * floor(%s / %s))", args[0], args[1], args[0], args[1]), nil
		}
		return fmt.Sprintf("%s(%s)", mathFunctionName(k.Fun), strings.Join(args, ", ")), nil

	case ir.ExprAs:
		value, err := w.writeExpression(k.Expr)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s(%s)", w.typeName(expr.Type), value), nil

	case ir.ExprResource:
		res := &w.module.Resources[k.Resource]
		if res.Role.IsLocationRole() {
			return w.ioReference(ioKey{value: uint32(k.Resource)}, w.resourceIsInput(res))
		}
		return w.names[nameKey{kind: nameKeyResource, handle1: uint32(k.Resource)}], nil

	case ir.ExprBuiltin:
		return w.writeBuiltin(k.Builtin)

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

// writeLiteral writes a literal value with its WGSL suffix.
func writeLiteral(v ir.LiteralValue) string {
	switch v := v.(type) {
	case ir.LiteralBool:
		if v {
			return "true"
		}
		return "false"
	case ir.LiteralI32:
		if int32(v) == math.MinInt32 {
			// 2147483648i does not fit, so the negation cannot apply to it.
			return "i32(-2147483648)"
		}
		return fmt.Sprintf("%di", int32(v))
	case ir.LiteralU32:
		return fmt.Sprintf("%du", uint32(v))
	case ir.LiteralF32:
		return ir.FormatFloat(float32(v))
	}
	return "0"
}

// writeBuiltin writes a builtin value. Index builtins are u32 in WGSL and
// int in the IR.
func (w *Writer) writeBuiltin(bv ir.BuiltinValue) (string, error) {
	key := ioKey{builtin: true, value: uint32(bv)}
	switch bv {
	case ir.BuiltinPosition:
		return w.ioReference(key, false)
	case ir.BuiltinVertexIndex, ir.BuiltinInstanceIndex:
		ref, err := w.ioReference(key, true)
		if err != nil {
			return "", err
		}
		return "i32(" + ref + ")", nil
	default:
		return w.ioReference(key, true)
	}
}

// writeImageSample writes a texture lookup. Implicit derivatives exist only
// in fragment shaders; other stages sample level 0.
func (w *Writer) writeImageSample(k ir.ExprImageSample) (string, error) {
	tex := w.names[nameKey{kind: nameKeyResource, handle1: uint32(k.Texture)}]
	smp := w.names[nameKey{kind: nameKeyResource, handle1: uint32(k.Sampler)}]
	coord, err := w.writeExpression(k.Coordinate)
	if err != nil {
		return "", err
	}
	if k.Level != nil {
		level, err := w.writeExpression(*k.Level)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("textureSampleLevel(%s, %s, %s, %s)", tex, smp, coord, level), nil
	}
	if w.stages[w.current] == ir.StageFragment {
		return fmt.Sprintf("textureSample(%s, %s, %s)", tex, smp, coord), nil
	}
	return fmt.Sprintf("textureSampleLevel(%s, %s, %s, 0.0)", tex, smp, coord), nil
}

func swizzleText(pattern []ir.SwizzleComponent) string {
	const letters = "xyzw"
	var sb strings.Builder
	for _, c := range pattern {
		sb.WriteByte(letters[c])
	}
	return sb.String()
}

// mathFunctionName returns the WGSL built-in for a math function.
func mathFunctionName(f ir.MathFunction) string {
	switch f {
	case ir.MathDdx:
		return "dpdx"
	case ir.MathDdy:
		return "dpdy"
	default:
		// The remaining names match WGSL.
		return f.String()
	}
}

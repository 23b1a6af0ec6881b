// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package glsl

import (
	"strings"

	"github.com/gogpu/shade/ir"
)

// writeBlock writes a block of statements.
func (w *Writer) writeBlock(block ir.Block) error {
	for _, stmt := range block {
		if err := w.writeStatement(stmt); err != nil {
			return err
		}
	}
	return nil
}

// writeStatement writes a single statement.
func (w *Writer) writeStatement(stmt ir.Statement) error {
	switch k := stmt.Kind.(type) {
	case ir.StmtLet:
		return w.writeLocal(k.Local)

	case ir.StmtVar:
		return w.writeLocal(k.Local)

	case ir.StmtStore:
		pointer, err := w.writeExpression(k.Pointer)
		if err != nil {
			return err
		}
		value, err := w.writeExpression(k.Value)
		if err != nil {
			return err
		}
		w.writeLine("%s = %s;", pointer, unwrap(value))
		return nil

	case ir.StmtIf:
		return w.writeIf(k, false)

	case ir.StmtReturn:
		if k.Value == nil {
			w.writeLine("return;")
			return nil
		}
		value, err := w.writeExpression(*k.Value)
		if err != nil {
			return err
		}
		w.writeLine("return %s;", unwrap(value))
		return nil

	case ir.StmtKill:
		w.writeLine("discard;")
		return nil

	case ir.StmtPrecision:
		w.writeLine("precision %s %s;", k.Precision, k.Type)
		return nil

	case ir.StmtCall:
		args, err := w.writeExpressions(k.Arguments)
		if err != nil {
			return err
		}
		w.writeLine("%s(%s);", w.names[nameKey{kind: nameKeyFunction, handle1: uint32(k.Function)}], strings.Join(args, ", "))
		return nil

	default:
		return ir.Errorf(ir.ErrUnsupportedConstruct, "unsupported statement kind: %T", stmt.Kind)
	}
}

// writeLocal declares a let or var binding. The initializer is evaluated
// here, once.
func (w *Writer) writeLocal(h ir.LocalHandle) error {
	local := &w.module.Locals[h]
	name := w.fnNamer.call(local.Name)
	decl := w.declarator(local.Type, name)
	if local.Init == nil {
		w.names[nameKey{kind: nameKeyLocal, handle1: uint32(h)}] = name
		w.writeLine("%s;", decl)
		return nil
	}
	init, err := w.writeExpression(*local.Init)
	if err != nil {
		return err
	}
	w.names[nameKey{kind: nameKeyLocal, handle1: uint32(h)}] = name
	if !local.Mutable && w.isConstant(*local.Init) {
		decl = "const " + decl
	}
	w.writeLine("%s = %s;", decl, unwrap(init))
	return nil
}

// isConstant reports whether an expression is built from literals only.
func (w *Writer) isConstant(h ir.ExpressionHandle) bool {
	switch k := w.module.Expressions[h].Kind.(type) {
	case ir.ExprLiteral:
		return true
	case ir.ExprSplat:
		return w.isConstant(k.Value)
	case ir.ExprCompose:
		for _, c := range k.Components {
			if !w.isConstant(c) {
				return false
			}
		}
		return true
	}
	return false
}

// writeIf writes an if statement. A reject block holding a single if is
// written as an else-if chain.
func (w *Writer) writeIf(stmt ir.StmtIf, chained bool) error {
	condition, err := w.writeExpression(stmt.Condition)
	if err != nil {
		return err
	}

	if chained {
		w.writeLine("} else if (%s) {", unwrap(condition))
	} else {
		w.writeLine("if (%s) {", unwrap(condition))
	}
	w.pushIndent()
	if err := w.writeBlock(stmt.Accept); err != nil {
		return err
	}
	w.popIndent()

	if len(stmt.Reject) == 1 {
		if nested, ok := stmt.Reject[0].Kind.(ir.StmtIf); ok {
			return w.writeIf(nested, true)
		}
	}
	if len(stmt.Reject) > 0 {
		w.writeLine("} else {")
		w.pushIndent()
		if err := w.writeBlock(stmt.Reject); err != nil {
			return err
		}
		w.popIndent()
	}
	w.writeLine("}")
	return nil
}

// unwrap drops one pair of parentheses enclosing the whole text.
func unwrap(s string) string {
	if len(s) < 2 || s[0] != '(' || s[len(s)-1] != ')' {
		return s
	}
	depth := 0
	for i := 0; i < len(s)-1; i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
		}
		if depth == 0 {
			return s
		}
	}
	return s[1 : len(s)-1]
}

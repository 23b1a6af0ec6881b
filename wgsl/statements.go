// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package wgsl

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
		return w.writeStore(k)

	case ir.StmtIf:
		return w.writeGuardedIf(k)

	case ir.StmtReturn:
		if w.stageIO != nil {
			w.writeEntryReturn()
			return nil
		}
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
		// WGSL has no precision qualifiers.
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
	ty := w.typeName(local.Type)
	if local.Init == nil {
		w.names[nameKey{kind: nameKeyLocal, handle1: uint32(h)}] = name
		w.writeLine("var %s: %s;", name, ty)
		return nil
	}
	init, err := w.writeExpression(*local.Init)
	if err != nil {
		return err
	}
	w.names[nameKey{kind: nameKeyLocal, handle1: uint32(h)}] = name
	keyword := "let"
	if local.Mutable {
		keyword = "var"
	}
	w.writeLine("%s %s: %s = %s;", keyword, name, ty, unwrap(init))
	return nil
}

// writeStore writes an assignment. WGSL cannot assign to a multi-component
// swizzle, so such stores are split into one store per component through a
// temporary.
func (w *Writer) writeStore(k ir.StmtStore) error {
	value, err := w.writeExpression(k.Value)
	if err != nil {
		return err
	}
	base, components, ok := w.swizzleChain(k.Pointer)
	if !ok {
		pointer, err := w.writeExpression(k.Pointer)
		if err != nil {
			return err
		}
		w.writeLine("%s = %s;", pointer, unwrap(value))
		return nil
	}

	target, err := w.writeExpression(base)
	if err != nil {
		return err
	}
	if len(components) == 1 {
		w.writeLine("%s.%s = %s;", target, swizzleText(components), unwrap(value))
		return nil
	}
	tmp := w.fnNamer.call("_store")
	w.writeLine("let %s = %s;", tmp, unwrap(value))
	for i, c := range components {
		w.writeLine("%s.%s = %s.%s;", target, swizzleText([]ir.SwizzleComponent{c}), tmp, swizzleText([]ir.SwizzleComponent{ir.SwizzleComponent(i)}))
	}
	return nil
}

// swizzleChain resolves a store target made of nested swizzles to the
// vector they select from and the components written, in value order.
func (w *Writer) swizzleChain(h ir.ExpressionHandle) (ir.ExpressionHandle, []ir.SwizzleComponent, bool) {
	sw, ok := w.module.Expressions[h].Kind.(ir.ExprSwizzle)
	if !ok {
		return 0, nil, false
	}
	components := append([]ir.SwizzleComponent(nil), sw.Pattern[:sw.Size]...)
	base := sw.Vector
	for {
		inner, ok := w.module.Expressions[base].Kind.(ir.ExprSwizzle)
		if !ok {
			return base, components, true
		}
		for i, c := range components {
			components[i] = inner.Pattern[c]
		}
		base = inner.Vector
	}
}

// writeIf writes an if statement. A reject block holding a single if is
// written as an else-if chain.
func (w *Writer) writeIf(stmt ir.StmtIf, chained bool) error {
	condition, err := w.writeExpression(stmt.Condition)
	if err != nil {
		return err
	}

	if chained {
		w.writeLine("} else if %s {", unwrap(condition))
	} else {
		w.writeLine("if %s {", unwrap(condition))
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
			// The first parenthesis closes before the end.
			return s
		}
	}
	return s[1 : len(s)-1]
}

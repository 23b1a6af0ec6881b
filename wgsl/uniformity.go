// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package wgsl

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/gogpu/shade/ir"
)

// DiagnosticHoistedSample is the code of the record emitted for every
// conditional whose texture samples were moved in front of it.
const DiagnosticHoistedSample = "hoisted-texture-sample"

// hoist is one texture sample moved in front of a conditional.
type hoist struct {
	name string
	text string
}

// writeGuardedIf writes an if statement. In fragment code, WGSL only
// allows implicit-derivative texture sampling in uniform control flow, so
// every sample of the branch bodies is evaluated into a let binding before
// the condition and the bodies reference the binding. Samples are now
// taken whichever branch runs.
func (w *Writer) writeGuardedIf(stmt ir.StmtIf) error {
	if w.stages[w.current] != ir.StageFragment {
		return w.writeIf(stmt, false)
	}

	samples, err := w.branchSamples(stmt)
	if err != nil {
		return err
	}
	if len(samples) == 0 {
		return w.writeIf(stmt, false)
	}

	var hoists []hoist
	byText := make(map[string]string, len(samples))
	for _, h := range samples {
		text, err := w.writeExpression(h)
		if err != nil {
			return err
		}
		if name, ok := byText[text]; ok {
			w.hoisted[h] = name
			continue
		}
		name := w.fnNamer.call(fmt.Sprintf("_sample%d", w.samples))
		w.samples++
		w.writeLine("let %s = %s;", name, text)
		byText[text] = name
		w.hoisted[h] = name
		hoists = append(hoists, hoist{name: name, text: text})
		// Cached parents of the sample still hold the call text.
		w.cache.Reset()
	}
	w.report(hoists)

	if err := w.writeIf(stmt, false); err != nil {
		return err
	}

	// Past the conditional, operands may change again.
	for _, h := range samples {
		delete(w.hoisted, h)
	}
	w.cache.Reset()
	return nil
}

// branchSamples returns the implicit-derivative samples evaluated inside
// the bodies of an if, in post-order, accept body first. Calls of helpers
// that sample count as samples: the call is hoisted as a whole. Samples
// that already have a binding are skipped.
func (w *Writer) branchSamples(stmt ir.StmtIf) ([]ir.ExpressionHandle, error) {
	local, stored := w.branchBindings(stmt)

	var out []ir.ExpressionHandle
	seen := map[ir.ExpressionHandle]bool{}
	var err error
	visit := func(h ir.ExpressionHandle) {
		if err != nil || seen[h] {
			return
		}
		seen[h] = true
		var what string
		switch k := w.module.Expressions[h].Kind.(type) {
		case ir.ExprImageSample:
			if k.Level != nil {
				return
			}
			what = "texture sample"
		case ir.ExprCall:
			if !w.callSamples(k.Function) {
				return
			}
			what = fmt.Sprintf("call to %q, which samples a texture,", w.module.Functions[k.Function].Name)
		default:
			return
		}
		if _, done := w.hoisted[h]; done {
			return
		}
		if name, bad := w.dependsOn(h, local, stored); bad {
			err = ir.Errorf(ir.ErrUnsupportedConstruct,
				"%s in a conditional of %q depends on %s, which is assigned inside the branch",
				what, w.functionName(), name)
			return
		}
		out = append(out, h)
	}
	for _, body := range []ir.Block{stmt.Accept, stmt.Reject} {
		ir.WalkBlock(body, func(st ir.Statement) {
			if call, ok := st.Kind.(ir.StmtCall); ok && err == nil && w.callSamples(call.Function) {
				err = ir.Errorf(ir.ErrUnsupportedConstruct,
					"call to %q in a conditional of %q samples a texture and has no result to bind before the branch",
					w.module.Functions[call.Function].Name, w.functionName())
			}
			for _, root := range w.module.StatementOperands(st) {
				w.module.Walk(root, visit)
			}
		})
	}
	return out, err
}

// callSamples reports whether calling fn samples a texture with an
// implicit level of detail.
func (w *Writer) callSamples(fn ir.FunctionHandle) bool {
	v, ok := w.sampling[fn]
	if !ok {
		v = w.module.SamplesImplicitly(fn)
		w.sampling[fn] = v
	}
	return v
}

// branchBindings returns the locals declared inside the bodies of an if and
// the locals and outputs assigned there.
func (w *Writer) branchBindings(stmt ir.StmtIf) (map[ir.LocalHandle]bool, map[ir.ResourceHandle]bool) {
	locals := map[ir.LocalHandle]bool{}
	stored := map[ir.ResourceHandle]bool{}
	for _, body := range []ir.Block{stmt.Accept, stmt.Reject} {
		ir.WalkBlock(body, func(st ir.Statement) {
			switch s := st.Kind.(type) {
			case ir.StmtLet:
				locals[s.Local] = true
			case ir.StmtVar:
				locals[s.Local] = true
			case ir.StmtStore:
				switch root := w.module.Expressions[w.storeRoot(s.Pointer)].Kind.(type) {
				case ir.ExprLocal:
					locals[root.Local] = true
				case ir.ExprResource:
					stored[root.Resource] = true
				}
			}
		})
	}
	return locals, stored
}

// storeRoot follows members, elements and swizzles to the stored binding.
func (w *Writer) storeRoot(h ir.ExpressionHandle) ir.ExpressionHandle {
	for {
		switch k := w.module.Expressions[h].Kind.(type) {
		case ir.ExprMember:
			h = k.Base
		case ir.ExprAccessIndex:
			h = k.Base
		case ir.ExprAccess:
			h = k.Base
		case ir.ExprSwizzle:
			h = k.Vector
		default:
			return h
		}
	}
}

// dependsOn reports the first branch-bound local or resource the operands
// of h read.
func (w *Writer) dependsOn(h ir.ExpressionHandle, locals map[ir.LocalHandle]bool, stored map[ir.ResourceHandle]bool) (string, bool) {
	var name string
	w.module.Walk(h, func(d ir.ExpressionHandle) {
		if name != "" {
			return
		}
		switch k := w.module.Expressions[d].Kind.(type) {
		case ir.ExprLocal:
			if locals[k.Local] {
				name = fmt.Sprintf("local %q", w.module.Locals[k.Local].Name)
			}
		case ir.ExprResource:
			if stored[k.Resource] {
				name = fmt.Sprintf("%s %q", w.module.Resources[k.Resource].Role, w.module.Resources[k.Resource].Name)
			}
		}
	})
	return name, name != ""
}

// report records the hoists of one conditional.
func (w *Writer) report(hoists []hoist) {
	calls := make([]string, len(hoists))
	for i, h := range hoists {
		calls[i] = h.text
	}
	fn := w.functionName()
	w.info.Diagnostics = append(w.info.Diagnostics, ir.Diagnostic{
		Severity: ir.Info,
		Code:     DiagnosticHoistedSample,
		Message: fmt.Sprintf("hoisted %d texture sampling expression(s) out of a conditional; they are evaluated on both branches: %s",
			len(hoists), strings.Join(calls, ", ")),
		Entry: fn,
	})
	w.options.Logger.Info("wgsl: hoisted texture samples",
		slog.String("function", fn),
		slog.Int("count", len(hoists)),
		slog.Any("calls", calls))
}

// functionName returns the source name of the function being written.
func (w *Writer) functionName() string {
	if w.stageIO != nil {
		return w.stageIO.ep.Name
	}
	return w.module.Functions[w.current].Name
}

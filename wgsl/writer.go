// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package wgsl

import (
	"fmt"
	"slices"
	"strings"

	"github.com/gogpu/shade/bind"
	"github.com/gogpu/shade/ir"
)

// nameKey identifies an IR entity for name lookup.
type nameKey struct {
	kind    nameKeyKind
	handle1 uint32
	handle2 uint32
}

type nameKeyKind uint8

const (
	nameKeyStruct nameKeyKind = iota
	nameKeyStructMember
	nameKeyResource
	nameKeyFunction
	nameKeyFunctionArgument
	nameKeyLocal
)

// Writer generates WGSL source code for a set of entry points.
type Writer struct {
	module  *ir.Module
	options *Options
	table   *bind.Table
	entries []*ir.EntryPoint

	// Output buffer
	out strings.Builder

	// Current indentation level
	indent int

	// Name management
	names   map[nameKey]string
	namer   *namer
	fnNamer *namer

	// Generated expression text
	cache *ir.TextCache

	// functions reachable from the entries, in declaration order
	functions []ir.FunctionHandle
	resources []ir.ResourceHandle
	types     []ir.TypeHandle

	// stages records the stage each reachable function runs in.
	stages map[ir.FunctionHandle]ir.ShaderStage

	// io holds the synthesized stage structs of each entry function.
	io map[ir.FunctionHandle]*stageIO

	// Per-function state
	current ir.FunctionHandle
	stageIO *stageIO
	hoisted map[ir.ExpressionHandle]string

	// sampling memoizes ir.Module.SamplesImplicitly per callee.
	sampling map[ir.FunctionHandle]bool
	samples  int

	// feedback is set while writing the compute emulation of an entry.
	feedback *feedbackPlan

	info TranslationInfo
}

// namer generates unique identifiers.
type namer struct {
	usedNames map[string]struct{}
	counter   uint32
}

func newNamer(reserved ...string) *namer {
	n := &namer{usedNames: make(map[string]struct{}, len(reserved))}
	for _, r := range reserved {
		n.usedNames[r] = struct{}{}
	}
	return n
}

// clone returns a namer for a nested scope. Names taken by the scope do
// not leak into the parent.
func (n *namer) clone() *namer {
	used := make(map[string]struct{}, len(n.usedNames))
	for k := range n.usedNames {
		used[k] = struct{}{}
	}
	return &namer{usedNames: used, counter: n.counter}
}

// call generates a unique name based on the given base.
func (n *namer) call(base string) string {
	escaped := escapeKeyword(base)

	if _, used := n.usedNames[escaped]; !used {
		n.usedNames[escaped] = struct{}{}
		return escaped
	}

	for {
		n.counter++
		candidate := fmt.Sprintf("%s_%d", escaped, n.counter)
		if _, used := n.usedNames[candidate]; !used {
			n.usedNames[candidate] = struct{}{}
			return candidate
		}
	}
}

func newWriter(module *ir.Module, options *Options, table *bind.Table, entries []*ir.EntryPoint) *Writer {
	return &Writer{
		module:   module,
		options:  options,
		table:    table,
		entries:  entries,
		names:    make(map[nameKey]string),
		namer:    newNamer(ioInput, ioOutput),
		cache:    ir.NewTextCache(),
		stages:   make(map[ir.FunctionHandle]ir.ShaderStage),
		io:       make(map[ir.FunctionHandle]*stageIO),
		hoisted:  make(map[ir.ExpressionHandle]string),
		sampling: make(map[ir.FunctionHandle]bool),
		info: TranslationInfo{
			AttributeLocations: make(map[string]uint32),
			OutputLocations:    make(map[string]uint32),
		},
	}
}

// String returns the generated WGSL source code.
func (w *Writer) String() string {
	return w.out.String()
}

// writeModule generates WGSL code for the selected entry points.
func (w *Writer) writeModule() error {
	// 1. Collect functions, resources and types
	w.collect()

	// 2. Reject what WGSL cannot express
	if err := w.checkFeatures(); err != nil {
		return err
	}

	// 3. Register all names
	w.registerNames()

	// 4. Struct definitions, user structs first
	w.writeStructs()
	for _, ep := range w.entries {
		io := w.buildIO(ep)
		w.io[ep.Function] = io
		w.writeIOStructs(io)
	}

	// 5. Resource bindings
	w.writeResources()

	// 6. Helper functions
	for _, fh := range w.functions {
		if _, ok := w.io[fh]; ok {
			continue
		}
		if err := w.writeFunction(fh); err != nil {
			return err
		}
	}

	// 7. Entry points
	for i, ep := range w.entries {
		if i > 0 {
			w.writeLine("")
		}
		if err := w.writeEntryPoint(ep); err != nil {
			return err
		}
		w.info.EntryPoints = append(w.info.EntryPoints, ep.Name)
	}
	return nil
}

// collect gathers everything the selected entries reach. A function is
// written once even when several entries call it.
func (w *Writer) collect() {
	seenFn := map[ir.FunctionHandle]bool{}
	seenRes := map[ir.ResourceHandle]bool{}
	for _, ep := range w.entries {
		for _, fh := range w.module.Reachable(ep.Function) {
			if !seenFn[fh] {
				seenFn[fh] = true
				w.functions = append(w.functions, fh)
			}
			if prev, ok := w.stages[fh]; !ok || prev != ir.StageFragment {
				w.stages[fh] = ep.Stage
			}
		}
		for _, h := range w.module.EntryResources(ep) {
			if !seenRes[h] {
				seenRes[h] = true
				w.resources = append(w.resources, h)
			}
		}
	}
	slices.Sort(w.functions)
	slices.Sort(w.resources)

	for _, h := range w.resources {
		w.types = append(w.types, w.module.Resources[h].Type)
	}
	w.types = append(w.types, w.module.FunctionTypes(w.functions)...)
	for _, fh := range w.functions {
		ir.WalkBlock(w.module.Functions[fh].Body, func(st ir.Statement) {
			for _, root := range w.module.StatementOperands(st) {
				w.module.Walk(root, func(h ir.ExpressionHandle) {
					w.types = append(w.types, w.module.Expressions[h].Type)
				})
			}
		})
	}
}

// checkFeatures rejects resources whose layout WGSL cannot express.
func (w *Writer) checkFeatures() error {
	for _, h := range w.resources {
		res := &w.module.Resources[h]
		if res.Role != ir.RoleUniform {
			continue
		}
		if err := w.checkUniformLayout(res.Name, res.Type); err != nil {
			return err
		}
	}
	return nil
}

// registerNames assigns unique names to every module-scope entity.
func (w *Writer) registerNames() {
	for sh, st := range w.module.Structs {
		w.names[nameKey{kind: nameKeyStruct, handle1: uint32(sh)}] = w.namer.call(st.Name) //nolint:gosec // G115: arena index
		for mi, m := range st.Members {
			w.names[nameKey{kind: nameKeyStructMember, handle1: uint32(sh), handle2: uint32(mi)}] = escapeKeyword(m.Name) //nolint:gosec // G115: arena index
		}
	}

	for _, h := range w.resources {
		res := &w.module.Resources[h]
		if res.Role.IsLocationRole() {
			// Stage I/O lives in the synthesized structs.
			continue
		}
		w.names[nameKey{kind: nameKeyResource, handle1: uint32(h)}] = w.namer.call(res.Name)
	}

	for _, fh := range w.functions {
		name := w.module.Functions[fh].Name
		for _, ep := range w.entries {
			if ep.Function == fh {
				name = ep.Name
			}
		}
		w.names[nameKey{kind: nameKeyFunction, handle1: uint32(fh)}] = w.namer.call(name)
	}
}

// writeStructs writes the user struct definitions the entries use, in
// declaration order.
func (w *Writer) writeStructs() {
	for _, sh := range w.module.UsedStructs(w.types) {
		st := &w.module.Structs[sh]
		w.writeLine("struct %s {", w.names[nameKey{kind: nameKeyStruct, handle1: uint32(sh)}])
		w.pushIndent()
		for mi, m := range st.Members {
			name := w.names[nameKey{kind: nameKeyStructMember, handle1: uint32(sh), handle2: uint32(mi)}] //nolint:gosec // G115: member index
			w.writeLine("%s%s: %s,", w.memberLayout(m), name, w.memberTypeName(m))
		}
		w.popIndent()
		w.writeLine("}")
		w.writeLine("")
	}
}

// writeResources writes uniform, texture and sampler bindings.
func (w *Writer) writeResources() {
	wrote := false
	for _, h := range w.resources {
		res := &w.module.Resources[h]
		if res.Role.IsLocationRole() {
			continue
		}
		group, binding, _ := w.table.Binding(h)
		name := w.names[nameKey{kind: nameKeyResource, handle1: uint32(h)}]
		w.info.Bindings = append(w.info.Bindings, Binding{Name: name, Role: res.Role, Group: group, Binding: binding})

		switch res.Role {
		case ir.RoleUniform:
			w.writeLine("@group(%d) @binding(%d) var<uniform> %s: %s;", group, binding, name, w.typeName(res.Type))
		case ir.RoleStorage:
			w.writeLine("@group(%d) @binding(%d) var<storage, read> %s: %s;", group, binding, name, w.typeName(res.Type))
		default:
			w.writeLine("@group(%d) @binding(%d) var %s: %s;", group, binding, name, w.typeName(res.Type))
		}
		wrote = true
	}
	if wrote {
		w.writeLine("")
	}
}

// beginFunction resets the per-function naming scope.
func (w *Writer) beginFunction(fh ir.FunctionHandle) {
	w.current = fh
	w.fnNamer = w.namer.clone()
	for i, arg := range w.module.Functions[fh].Arguments {
		w.names[nameKey{kind: nameKeyFunctionArgument, handle1: uint32(fh), handle2: uint32(i)}] = w.fnNamer.call(arg.Name) //nolint:gosec // G115: argument index
	}
	clear(w.hoisted)
	w.samples = 0
	w.cache.Reset()
}

// writeFunction writes a helper function definition.
func (w *Writer) writeFunction(fh ir.FunctionHandle) error {
	fn := &w.module.Functions[fh]
	w.beginFunction(fh)
	w.stageIO = nil

	args := make([]string, 0, len(fn.Arguments))
	for i, arg := range fn.Arguments {
		name := w.names[nameKey{kind: nameKeyFunctionArgument, handle1: uint32(fh), handle2: uint32(i)}] //nolint:gosec // G115: argument index
		args = append(args, name+": "+w.typeName(arg.Type))
	}
	result := ""
	if fn.Result != nil {
		result = " -> " + w.typeName(*fn.Result)
	}

	w.writeLine("fn %s(%s)%s {", w.names[nameKey{kind: nameKeyFunction, handle1: uint32(fh)}], strings.Join(args, ", "), result)
	w.pushIndent()
	if err := w.writeBlock(fn.Body); err != nil {
		return err
	}
	w.popIndent()
	w.writeLine("}")
	w.writeLine("")
	return nil
}

// writeEntryPoint writes an entry point with its stage attribute. The
// synthesized input struct is the only parameter and the output struct is
// returned.
func (w *Writer) writeEntryPoint(ep *ir.EntryPoint) error {
	io := w.io[ep.Function]
	w.beginFunction(ep.Function)
	w.stageIO = io

	params := ""
	if io.inStruct != "" {
		params = ioInput + ": " + io.inStruct
	}
	result := ""
	if io.outStruct != "" {
		result = " -> " + io.outStruct
	}

	if w.feedback == nil {
		w.writeLine("@%s", ep.Stage)
	}
	w.writeLine("fn %s(%s)%s {", w.names[nameKey{kind: nameKeyFunction, handle1: uint32(ep.Function)}], params, result)
	w.pushIndent()
	if io.outStruct != "" {
		w.writeLine("var %s: %s;", ioOutput, io.outStruct)
	}
	body := w.module.Functions[ep.Function].Body
	if err := w.writeBlock(body); err != nil {
		return err
	}
	if !endsWithReturn(body) {
		w.writeEntryReturn()
	}
	w.popIndent()
	w.writeLine("}")
	return nil
}

// writeEntryReturn writes the return of an entry point, remapping the
// depth range of vertex positions first if requested.
func (w *Writer) writeEntryReturn() {
	io := w.stageIO
	if io.ep.Stage == ir.StageVertex && w.options.RemapDepth {
		pos := ioOutput + "." + io.members[ioKey{builtin: true, value: uint32(ir.BuiltinPosition)}]
		w.writeLine("%s.z = (%s.z + %s.w) * 0.5;", pos, pos, pos)
	}
	if io.outStruct == "" {
		w.writeLine("return;")
		return
	}
	w.writeLine("return %s;", ioOutput)
}

func endsWithReturn(block ir.Block) bool {
	if len(block) == 0 {
		return false
	}
	_, ok := block[len(block)-1].Kind.(ir.StmtReturn)
	return ok
}

// Output helpers

// writeLine writes a line with indentation and newline.
//
//nolint:goprintffuncname
func (w *Writer) writeLine(format string, args ...any) {
	if format == "" {
		w.out.WriteByte('\n')
		return
	}
	w.writeIndent()
	if len(args) == 0 {
		w.out.WriteString(format)
	} else {
		fmt.Fprintf(&w.out, format, args...)
	}
	w.out.WriteByte('\n')
}

// writeIndent writes the current indentation.
func (w *Writer) writeIndent() {
	for i := 0; i < w.indent; i++ {
		w.out.WriteString("    ")
	}
}

// pushIndent increases indentation.
func (w *Writer) pushIndent() {
	w.indent++
}

// popIndent decreases indentation.
func (w *Writer) popIndent() {
	if w.indent > 0 {
		w.indent--
	}
}

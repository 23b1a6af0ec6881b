// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package glsl

import (
	"fmt"
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

// Writer generates GLSL source code for one entry point.
type Writer struct {
	module  *ir.Module
	options *Options
	ep      *ir.EntryPoint
	table   *bind.Table

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

	// functions reachable from the entry point, in declaration order
	functions []ir.FunctionHandle
	resources []ir.ResourceHandle
	types     []ir.TypeHandle

	// fragColor is the single output of a legacy fragment shader, written
	// through gl_FragColor.
	fragColor *ir.ResourceHandle

	extensions []string
	info       TranslationInfo
}

// namer generates unique identifiers.
type namer struct {
	usedNames map[string]struct{}
	counter   uint32
}

func newNamer() *namer {
	return &namer{
		usedNames: map[string]struct{}{"main": {}},
	}
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

func newWriter(module *ir.Module, options *Options, ep *ir.EntryPoint, table *bind.Table) *Writer {
	return &Writer{
		module:  module,
		options: options,
		ep:      ep,
		table:   table,
		names:   make(map[nameKey]string),
		namer:   newNamer(),
		cache:   ir.NewTextCache(),
		info: TranslationInfo{
			EntryPoint:         ep.Name,
			Stage:              ep.Stage,
			AttributeLocations: make(map[string]uint32),
			OutputLocations:    make(map[string]uint32),
		},
	}
}

// String returns the generated GLSL source code.
func (w *Writer) String() string {
	return w.out.String()
}

func (w *Writer) legacy() bool {
	return w.options.LangVersion.IsLegacy()
}

// writeModule generates GLSL code for the selected entry point.
func (w *Writer) writeModule() error {
	w.functions = w.module.Reachable(w.ep.Function)
	w.resources = w.module.EntryResources(w.ep)

	// 1. Check the entry point against the target version
	if err := w.checkFeatures(); err != nil {
		return err
	}

	// 2. Register all names
	w.registerNames()

	// 3. Header: version, extensions, default precision
	w.writeHeader()

	// 4. Struct definitions
	w.writeStructs()

	// 5. Resource declarations
	w.writeResources()

	// 6. Helper functions
	for _, fh := range w.functions {
		if fh == w.ep.Function {
			continue
		}
		if err := w.writeFunction(fh); err != nil {
			return err
		}
	}

	// 7. Entry point as main
	if err := w.writeEntryPoint(); err != nil {
		return err
	}

	w.info.UsedExtensions = w.extensions
	if fb := w.ep.Feedback; fb != nil {
		w.info.FeedbackMode = fb.Mode
		for _, h := range fb.Varyings {
			w.info.FeedbackVaryings = append(w.info.FeedbackVaryings, w.names[nameKey{kind: nameKeyResource, handle1: uint32(h)}])
		}
	}
	return nil
}

// checkFeatures rejects constructs the target version cannot express and
// records required extensions.
//
//nolint:gocognit,gocyclo,cyclop // one check per legacy restriction
func (w *Writer) checkFeatures() error {
	legacy := w.legacy()
	unsupported := func(format string, args ...any) error {
		return ir.Errorf(ir.ErrUnsupportedConstruct, "%s (GLSL %s)", fmt.Sprintf(format, args...), w.options.LangVersion.VersionNumber())
	}

	if legacy && w.ep.Feedback != nil {
		return unsupported("transform feedback of %q", w.ep.Name)
	}

	var outputs []ir.ResourceHandle
	for _, h := range w.resources {
		res := &w.module.Resources[h]
		w.types = append(w.types, res.Type)
		switch res.Role {
		case ir.RoleVarying:
			if legacy && res.Flat {
				return unsupported("flat or integer varying %q", res.Name)
			}
		case ir.RoleOutput:
			outputs = append(outputs, h)
		case ir.RoleStorage:
			return unsupported("storage buffer %q", res.Name)
		}
	}
	if legacy && w.ep.Stage == ir.StageFragment && len(outputs) > 0 {
		if len(outputs) > 1 {
			return unsupported("%d fragment outputs", len(outputs))
		}
		res := &w.module.Resources[outputs[0]]
		if res.Type != w.module.VectorOf(ir.Vec4, ir.ScalarFloat) {
			return unsupported("fragment output %q of type %s", res.Name, w.module.TypeString(res.Type))
		}
		w.fragColor = &outputs[0]
	}

	w.types = append(w.types, w.module.FunctionTypes(w.functions)...)

	var err error
	derivatives := false
	visit := func(h ir.ExpressionHandle) {
		if err != nil {
			return
		}
		expr := &w.module.Expressions[h]
		w.types = append(w.types, expr.Type)
		if !legacy {
			return
		}
		switch k := expr.Kind.(type) {
		case ir.ExprBuiltin:
			if k.Builtin == ir.BuiltinVertexIndex || k.Builtin == ir.BuiltinInstanceIndex {
				err = unsupported("builtin %s", k.Builtin)
			}
		case ir.ExprImageSample:
			if k.Level != nil && w.ep.Stage == ir.StageFragment {
				err = unsupported("explicit level of detail in a fragment shader")
			}
		case ir.ExprMath:
			if k.Fun.IsDerivative() {
				derivatives = true
			}
		}
	}
	for _, fh := range w.functions {
		ir.WalkBlock(w.module.Functions[fh].Body, func(st ir.Statement) {
			for _, root := range w.module.StatementOperands(st) {
				w.module.Walk(root, visit)
			}
		})
		if err != nil {
			return err
		}
	}

	if legacy {
		for _, t := range w.types {
			if w.usesUint(t) {
				return unsupported("unsigned type %s", w.module.TypeString(t))
			}
		}
	}
	if derivatives {
		w.extensions = append(w.extensions, "GL_OES_standard_derivatives")
	}
	return nil
}

// registerNames assigns unique names to every entity the output may
// mention. Resources and functions are named over the whole module so
// that separately compiled stages agree on varying names.
func (w *Writer) registerNames() {
	for sh, st := range w.module.Structs {
		w.names[nameKey{kind: nameKeyStruct, handle1: uint32(sh)}] = w.namer.call(st.Name) //nolint:gosec // G115: arena index
		for mi, m := range st.Members {
			w.names[nameKey{kind: nameKeyStructMember, handle1: uint32(sh), handle2: uint32(mi)}] = escapeKeyword(m.Name) //nolint:gosec // G115: arena index
		}
	}

	for h, res := range w.module.Resources {
		if res.Role == ir.RoleSampler {
			continue
		}
		w.names[nameKey{kind: nameKeyResource, handle1: uint32(h)}] = w.namer.call(res.Name) //nolint:gosec // G115: arena index
	}

	entries := make(map[ir.FunctionHandle]bool, len(w.module.EntryPoints))
	for _, ep := range w.module.EntryPoints {
		entries[ep.Function] = true
	}
	for fh, fn := range w.module.Functions {
		if entries[ir.FunctionHandle(fh)] { //nolint:gosec // G115: arena index
			continue
		}
		w.names[nameKey{kind: nameKeyFunction, handle1: uint32(fh)}] = w.namer.call(fn.Name) //nolint:gosec // G115: arena index
	}
}

// writeHeader writes the version directive, extensions and the default
// precision of ES fragment shaders.
func (w *Writer) writeHeader() {
	w.writeLine("#version %s", w.options.LangVersion.String())
	for _, ext := range w.extensions {
		w.writeLine("#extension %s : enable", ext)
	}
	if w.options.LangVersion.ES && w.ep.Stage == ir.StageFragment && w.options.DefaultPrecision != "" {
		w.writeLine("precision %s float;", w.options.DefaultPrecision)
	}
	w.writeLine("")
}

// writeStructs writes the struct definitions the entry point uses, in
// declaration order.
func (w *Writer) writeStructs() {
	for _, sh := range w.module.UsedStructs(w.types) {
		st := &w.module.Structs[sh]
		w.writeLine("struct %s {", w.names[nameKey{kind: nameKeyStruct, handle1: uint32(sh)}])
		w.pushIndent()
		for mi, m := range st.Members {
			name := w.names[nameKey{kind: nameKeyStructMember, handle1: uint32(sh), handle2: uint32(mi)}] //nolint:gosec // G115: member index
			decl := w.declarator(m.Type, name)
			if m.Count > 0 {
				decl += fmt.Sprintf("[%d]", m.Count)
			}
			w.writeLine("%s;", decl)
		}
		w.popIndent()
		w.writeLine("};")
		w.writeLine("")
	}
}

// writeResources writes uniform, attribute, varying and output
// declarations.
func (w *Writer) writeResources() {
	legacy := w.legacy()
	for _, h := range w.resources {
		res := &w.module.Resources[h]
		if res.Role == ir.RoleSampler {
			// Textures and samplers are combined.
			continue
		}
		name := w.names[nameKey{kind: nameKeyResource, handle1: uint32(h)}]
		decl := w.declarator(res.Type, name)

		switch res.Role {
		case ir.RoleAttribute:
			loc, _ := w.table.Location(h)
			w.info.AttributeLocations[name] = loc
			if legacy {
				w.writeLine("attribute %s;", decl)
			} else {
				w.writeLine("layout(location = %d) in %s;", loc, decl)
			}

		case ir.RoleVarying:
			w.writeLine("%s;", w.varyingQualifier(h, res)+decl)

		case ir.RoleOutput:
			loc, _ := w.table.Location(h)
			w.info.OutputLocations[name] = loc
			if legacy {
				continue
			}
			w.writeLine("layout(location = %d) out %s;", loc, decl)

		case ir.RoleUniform:
			w.writeLine("uniform %s;", decl)

		case ir.RoleTexture:
			w.writeLine("uniform %s %s;", samplerTypeName(w.module.Inner(res.Type)), name)
		}
	}
	if len(w.resources) > 0 {
		w.writeLine("")
	}
}

func (w *Writer) varyingQualifier(h ir.ResourceHandle, res *ir.Resource) string {
	if w.legacy() {
		return "varying "
	}
	var q strings.Builder
	if w.options.LangVersion.SupportsVaryingLocations() {
		loc, _ := w.table.Location(h)
		fmt.Fprintf(&q, "layout(location = %d) ", loc)
	}
	if res.Flat {
		q.WriteString("flat ")
	}
	if w.ep.Stage == ir.StageVertex {
		q.WriteString("out ")
	} else {
		q.WriteString("in ")
	}
	return q.String()
}

// beginFunction resets the per-function naming scope.
func (w *Writer) beginFunction(fh ir.FunctionHandle) {
	w.fnNamer = w.namer.clone()
	for i, arg := range w.module.Functions[fh].Arguments {
		w.names[nameKey{kind: nameKeyFunctionArgument, handle1: uint32(fh), handle2: uint32(i)}] = w.fnNamer.call(arg.Name) //nolint:gosec // G115: argument index
	}
}

// writeFunction writes a helper function definition.
func (w *Writer) writeFunction(fh ir.FunctionHandle) error {
	fn := &w.module.Functions[fh]
	w.beginFunction(fh)

	returnType := "void"
	if fn.Result != nil {
		returnType = w.typeName(*fn.Result)
	}
	args := make([]string, 0, len(fn.Arguments))
	for i, arg := range fn.Arguments {
		args = append(args, w.declarator(arg.Type, w.names[nameKey{kind: nameKeyFunctionArgument, handle1: uint32(fh), handle2: uint32(i)}])) //nolint:gosec // G115: argument index
	}

	w.writeLine("%s %s(%s) {", returnType, w.names[nameKey{kind: nameKeyFunction, handle1: uint32(fh)}], strings.Join(args, ", "))
	w.pushIndent()
	if err := w.writeBlock(fn.Body); err != nil {
		return err
	}
	w.popIndent()
	w.writeLine("}")
	w.writeLine("")
	return nil
}

// writeEntryPoint writes the entry point body as main.
func (w *Writer) writeEntryPoint() error {
	w.beginFunction(w.ep.Function)
	w.writeLine("void main() {")
	w.pushIndent()
	if err := w.writeBlock(w.module.Functions[w.ep.Function].Body); err != nil {
		return err
	}
	w.popIndent()
	w.writeLine("}")
	return nil
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

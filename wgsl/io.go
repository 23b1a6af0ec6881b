// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package wgsl

import (
	"cmp"
	"fmt"
	"slices"
	"unicode"
	"unicode/utf8"

	"github.com/gogpu/shade/ir"
)

// Parameter and variable names of the synthesized stage structs.
const (
	ioInput  = "input"
	ioOutput = "output"
)

// ioKey identifies a struct member: a location resource or a builtin.
type ioKey struct {
	builtin bool
	value   uint32
}

// ioMember is one member of a synthesized stage struct.
type ioMember struct {
	key  ioKey
	name string
	attr string
	ty   string

	// Source data for feedback emulation.
	resource ir.ResourceHandle
	location uint32
}

// stageIO holds the synthesized input and output structs of an entry.
// An empty struct name means the struct has no members and is omitted.
type stageIO struct {
	ep        *ir.EntryPoint
	inStruct  string
	outStruct string
	inputs    []ioMember
	outputs   []ioMember
	members   map[ioKey]string
}

// buildIO collects the stage inputs and outputs of an entry point, in
// builtin order followed by location order.
func (w *Writer) buildIO(ep *ir.EntryPoint) *stageIO {
	io := &stageIO{ep: ep, members: make(map[ioKey]string)}
	inNames, outNames := newNamer(), newNamer()

	used := w.entryBuiltins(ep)
	addBuiltin := func(bv ir.BuiltinValue, output bool) {
		key := ioKey{builtin: true, value: uint32(bv)}
		m := ioMember{key: key, attr: fmt.Sprintf("@builtin(%s) ", builtinAttr(bv)), ty: builtinType(bv)}
		if output {
			m.name = outNames.call(bv.String())
			io.outputs = append(io.outputs, m)
		} else {
			m.name = inNames.call(bv.String())
			io.inputs = append(io.inputs, m)
		}
		io.members[key] = m.name
	}

	var locations []ioMember
	for _, h := range w.module.EntryResources(ep) {
		res := &w.module.Resources[h]
		if !res.Role.IsLocationRole() {
			continue
		}
		loc, _ := w.table.Location(h)
		attr := fmt.Sprintf("@location(%d) ", loc)
		if res.Role == ir.RoleVarying && res.Flat {
			attr += "@interpolate(flat) "
		}
		locations = append(locations, ioMember{
			key:      ioKey{value: uint32(h)},
			name:     res.Name,
			attr:     attr,
			ty:       w.typeName(res.Type),
			resource: h,
			location: loc,
		})
		switch res.Role {
		case ir.RoleAttribute:
			w.info.AttributeLocations[res.Name] = loc
		case ir.RoleOutput:
			w.info.OutputLocations[res.Name] = loc
		}
	}
	slices.SortStableFunc(locations, func(a, b ioMember) int {
		return cmp.Compare(a.location, b.location)
	})

	isInput := func(role ir.ResourceRole) bool {
		return role == ir.RoleAttribute || (role == ir.RoleVarying && ep.Stage == ir.StageFragment)
	}

	switch ep.Stage {
	case ir.StageVertex:
		for _, bv := range []ir.BuiltinValue{ir.BuiltinVertexIndex, ir.BuiltinInstanceIndex} {
			if used[bv] {
				addBuiltin(bv, false)
			}
		}
		addBuiltin(ir.BuiltinPosition, true)
	case ir.StageFragment:
		for _, bv := range []ir.BuiltinValue{ir.BuiltinFragCoord, ir.BuiltinFrontFacing} {
			if used[bv] {
				addBuiltin(bv, false)
			}
		}
	}
	for _, m := range locations {
		if isInput(w.module.Resources[m.resource].Role) {
			m.name = inNames.call(m.name)
			io.inputs = append(io.inputs, m)
		} else {
			m.name = outNames.call(m.name)
			io.outputs = append(io.outputs, m)
		}
		io.members[m.key] = m.name
	}

	prefix := "Vertex"
	if ep.Stage == ir.StageFragment {
		prefix = "Fragment"
	}
	if w.feedback != nil {
		prefix = exportName(ep.Name)
	}
	if len(io.inputs) > 0 {
		io.inStruct = w.namer.call(prefix + "Input")
	}
	if len(io.outputs) > 0 {
		io.outStruct = w.namer.call(prefix + "Output")
	}
	return io
}

// entryBuiltins returns the builtins an entry body reads or writes.
func (w *Writer) entryBuiltins(ep *ir.EntryPoint) map[ir.BuiltinValue]bool {
	used := make(map[ir.BuiltinValue]bool)
	ir.WalkBlock(w.module.Functions[ep.Function].Body, func(st ir.Statement) {
		for _, root := range w.module.StatementOperands(st) {
			w.module.Walk(root, func(h ir.ExpressionHandle) {
				if b, ok := w.module.Expressions[h].Kind.(ir.ExprBuiltin); ok {
					used[b.Builtin] = true
				}
			})
		}
	})
	return used
}

// writeIOStructs writes the synthesized structs of an entry. Feedback
// emulation passes them between plain functions, so they carry no I/O
// attributes there.
func (w *Writer) writeIOStructs(io *stageIO) {
	write := func(name string, members []ioMember) {
		if name == "" {
			return
		}
		w.writeLine("struct %s {", name)
		w.pushIndent()
		for _, m := range members {
			attr := m.attr
			if w.feedback != nil {
				attr = ""
			}
			w.writeLine("%s%s: %s,", attr, m.name, m.ty)
		}
		w.popIndent()
		w.writeLine("}")
		w.writeLine("")
	}
	write(io.inStruct, io.inputs)
	write(io.outStruct, io.outputs)
}

// ioReference returns the text of a stage input or output inside its
// entry point.
func (w *Writer) ioReference(key ioKey, input bool) (string, error) {
	if w.stageIO == nil {
		return "", ir.Errorf(ir.ErrInvalidModule, "stage input or output used outside an entry point")
	}
	name, ok := w.stageIO.members[key]
	if !ok {
		return "", ir.Errorf(ir.ErrInvalidModule, "stage member %d is not declared by %q", key.value, w.stageIO.ep.Name)
	}
	if input {
		return ioInput + "." + name, nil
	}
	return ioOutput + "." + name, nil
}

// resourceIsInput reports whether a location resource is read from the
// input struct of the current entry.
func (w *Writer) resourceIsInput(res *ir.Resource) bool {
	switch res.Role {
	case ir.RoleAttribute:
		return true
	case ir.RoleVarying:
		return w.stageIO != nil && w.stageIO.ep.Stage == ir.StageFragment
	}
	return false
}

func builtinAttr(bv ir.BuiltinValue) string {
	if bv == ir.BuiltinFragCoord {
		return "position"
	}
	return bv.String()
}

func builtinType(bv ir.BuiltinValue) string {
	switch bv {
	case ir.BuiltinPosition, ir.BuiltinFragCoord:
		return "vec4<f32>"
	case ir.BuiltinFrontFacing:
		return "bool"
	default:
		return "u32"
	}
}

// exportName capitalizes the first letter of an entry name.
func exportName(name string) string {
	r, size := utf8.DecodeRuneInString(name)
	if r == utf8.RuneError {
		return name
	}
	return string(unicode.ToUpper(r)) + name[size:]
}

// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package wgsl

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/gogpu/shade/bind"
	"github.com/gogpu/shade/ir"
)

// FeedbackBuffer describes one storage buffer of the feedback emulation.
type FeedbackBuffer struct {
	// Name is the buffer variable as written.
	Name string

	// Source is the attribute an input buffer feeds, or the varying an
	// output buffer captures. Empty for the interleaved capture buffer.
	Source string

	Group   uint32
	Binding uint32

	// Element is the WGSL element type of the array: f32, i32 or u32.
	Element string

	// Stride is the number of bytes per vertex.
	Stride uint32
}

// FeedbackInfo describes the compute entry point that emulates transform
// feedback and the buffers the host must bind to it.
type FeedbackInfo struct {
	// Entry is the emulated vertex entry point.
	Entry string

	// ComputeEntry is the generated compute entry point.
	ComputeEntry string

	// WorkgroupSize is the x size of one workgroup. Dispatch
	// ceil(vertexCount / WorkgroupSize) workgroups.
	WorkgroupSize uint32

	Mode ir.FeedbackMode

	// Inputs lists one tightly packed buffer per vertex attribute, in
	// location order.
	Inputs []FeedbackBuffer

	// Outputs lists the capture buffers: one for interleaved capture,
	// one per varying otherwise.
	Outputs []FeedbackBuffer

	// Varyings lists the captured varyings in capture order.
	Varyings []string

	// Offsets maps each captured varying to its byte offset inside one
	// interleaved record. All offsets are 0 in separate mode.
	Offsets map[string]uint32

	// Stride is the number of bytes per vertex of the interleaved
	// capture buffer.
	Stride uint32

	// Bindings lists the uniform, texture and sampler bindings the vertex
	// body keeps.
	Bindings []Binding
}

// feedbackPlan holds the state of one emulation compile.
type feedbackPlan struct {
	mode ir.FeedbackMode
	info FeedbackInfo
}

// CompileFeedback lowers a vertex entry point that captures varyings into
// a compute entry point. Each invocation runs the vertex body for one
// vertex, reading attributes from storage buffers and writing the captured
// varyings to capture buffers at the invocation index.
func CompileFeedback(module *ir.Module, entry string, options Options) (string, FeedbackInfo, error) {
	applyDefaults(&options)

	idx := module.EntryPointByName(entry)
	if idx < 0 {
		return "", FeedbackInfo{}, fmt.Errorf("wgsl: %w", ir.Errorf(ir.ErrInvalidModule, "entry point %q not found", entry))
	}
	ep := &module.EntryPoints[idx]
	if ep.Stage != ir.StageVertex {
		return "", FeedbackInfo{}, fmt.Errorf("wgsl: %w", ir.Errorf(ir.ErrInvalidModule, "entry point %q is a %s shader, not a vertex shader", entry, ep.Stage))
	}
	if ep.Feedback == nil || len(ep.Feedback.Varyings) == 0 {
		return "", FeedbackInfo{}, fmt.Errorf("wgsl: %w", ir.Errorf(ir.ErrInvalidModule, "entry point %q captures no varyings", entry))
	}
	mode := ep.Feedback.Mode
	if options.FeedbackMode != nil {
		mode = *options.FeedbackMode
	}

	table, err := bind.Allocate(module, bind.WithLogger(options.Logger))
	if err != nil {
		return "", FeedbackInfo{}, fmt.Errorf("wgsl: %w", err)
	}

	w := newWriter(module, &options, table, []*ir.EntryPoint{ep})
	w.feedback = &feedbackPlan{
		mode: mode,
		info: FeedbackInfo{
			Entry:         ep.Name,
			WorkgroupSize: options.WorkgroupSize,
			Mode:          mode,
			Offsets:       make(map[string]uint32),
		},
	}
	if err := w.writeFeedbackModule(ep); err != nil {
		return "", FeedbackInfo{}, fmt.Errorf("wgsl: %w", err)
	}

	src := w.String()
	info := w.feedback.info
	info.Bindings = w.info.Bindings
	options.Logger.Debug("wgsl: compiled feedback emulation",
		slog.String("entry", ep.Name),
		slog.String("mode", mode.String()),
		slog.Int("inputs", len(info.Inputs)),
		slog.Int("outputs", len(info.Outputs)),
		slog.Int("bytes", len(src)))
	return src, info, nil
}

// capture is one captured varying and its place in the output.
type capture struct {
	member     string
	resource   *ir.Resource
	components int
	offset     uint32 // in scalars, interleaved mode
	buffer     string // separate mode
}

// writeFeedbackModule writes the vertex body as a helper function and a
// compute entry point driving it.
func (w *Writer) writeFeedbackModule(ep *ir.EntryPoint) error {
	plan := w.feedback

	w.collect()
	if err := w.checkFeatures(); err != nil {
		return err
	}
	w.registerNames()
	w.names[nameKey{kind: nameKeyFunction, handle1: uint32(ep.Function)}] = w.namer.call(ep.Name + "_vertex")
	plan.info.ComputeEntry = w.namer.call(ep.Name + "_feedback")

	w.writeStructs()
	io := w.buildIO(ep)
	w.io[ep.Function] = io
	w.writeIOStructs(io)
	w.writeResources()

	var attributes []ioMember
	for _, m := range io.inputs {
		if !m.key.builtin {
			attributes = append(attributes, m)
		}
	}
	captures, err := w.planCaptures(ep, io)
	if err != nil {
		return err
	}
	outputs := 1
	if plan.mode == ir.FeedbackSeparate {
		outputs = len(captures)
	}
	bindings := w.table.FreeBindings(w.options.FeedbackGroup, len(attributes)+outputs)
	group := w.options.FeedbackGroup

	inputs := make([]string, len(attributes))
	for i, m := range attributes {
		res := &w.module.Resources[m.resource]
		name := w.namer.call(res.Name + "_data")
		inputs[i] = name
		elem := scalarToWGSL(w.elementKind(res.Type))
		plan.info.Inputs = append(plan.info.Inputs, FeedbackBuffer{
			Name: name, Source: res.Name, Group: group, Binding: bindings[i],
			Element: elem, Stride: uint32(w.module.Components(res.Type)) * 4, //nolint:gosec // G115: component count
		})
		w.writeLine("@group(%d) @binding(%d) var<storage, read> %s: array<%s>;", group, bindings[i], name, elem)
	}

	next := bindings[len(attributes):]
	if plan.mode == ir.FeedbackInterleaved {
		name := w.namer.call("capture")
		for i := range captures {
			captures[i].buffer = name
		}
		plan.info.Outputs = append(plan.info.Outputs, FeedbackBuffer{
			Name: name, Group: group, Binding: next[0], Element: "f32", Stride: plan.info.Stride,
		})
		w.writeLine("@group(%d) @binding(%d) var<storage, read_write> %s: array<f32>;", group, next[0], name)
	} else {
		for i := range captures {
			c := &captures[i]
			c.buffer = w.namer.call(c.resource.Name + "_capture")
			elem := scalarToWGSL(w.elementKind(c.resource.Type))
			plan.info.Outputs = append(plan.info.Outputs, FeedbackBuffer{
				Name: c.buffer, Source: c.resource.Name, Group: group, Binding: next[i],
				Element: elem, Stride: uint32(c.components) * 4, //nolint:gosec // G115: component count
			})
			w.writeLine("@group(%d) @binding(%d) var<storage, read_write> %s: array<%s>;", group, next[i], c.buffer, elem)
		}
	}
	w.writeLine("")

	for _, fh := range w.functions {
		if fh == ep.Function {
			continue
		}
		if err := w.writeFunction(fh); err != nil {
			return err
		}
	}
	if err := w.writeEntryPoint(ep); err != nil {
		return err
	}
	w.writeLine("")
	return w.writeComputeEntry(ep, io, attributes, inputs, captures)
}

// planCaptures resolves the captured varyings to output members and
// assigns their interleaved offsets.
func (w *Writer) planCaptures(ep *ir.EntryPoint, io *stageIO) ([]capture, error) {
	plan := w.feedback
	var out []capture
	var offset uint32
	for _, h := range ep.Feedback.Varyings {
		res := &w.module.Resources[h]
		member, ok := io.members[ioKey{value: uint32(h)}]
		if !ok {
			return nil, ir.Errorf(ir.ErrInvalidModule, "captured varying %q is not written by %q", res.Name, ep.Name)
		}
		n := w.module.Components(res.Type)
		if n == 0 {
			return nil, ir.Errorf(ir.ErrUnsupportedConstruct, "captured varying %q has type %s", res.Name, w.module.TypeString(res.Type))
		}
		c := capture{member: member, resource: res, components: n}
		plan.info.Varyings = append(plan.info.Varyings, res.Name)
		if plan.mode == ir.FeedbackInterleaved {
			c.offset = offset
			plan.info.Offsets[res.Name] = offset * 4
			offset += uint32(n) //nolint:gosec // G115: component count
		} else {
			plan.info.Offsets[res.Name] = 0
		}
		out = append(out, c)
	}
	plan.info.Stride = offset * 4
	return out, nil
}

// writeComputeEntry writes the compute entry point: bounds check, input
// assembly, the vertex call and the capture stores.
func (w *Writer) writeComputeEntry(ep *ir.EntryPoint, io *stageIO, attributes []ioMember, inputs []string, captures []capture) error {
	plan := w.feedback
	scope := w.namer.clone()
	delete(scope.usedNames, ioInput)
	delete(scope.usedNames, ioOutput)
	id := scope.call("id")
	index := scope.call("index")
	input := scope.call(ioInput)
	output := scope.call(ioOutput)
	base := scope.call("base")

	w.writeLine("@compute @workgroup_size(%d)", w.options.WorkgroupSize)
	w.writeLine("fn %s(@builtin(global_invocation_id) %s: vec3<u32>) {", plan.info.ComputeEntry, id)
	w.pushIndent()
	w.writeLine("let %s = %s.x;", index, id)

	// The first input bounds the vertex count. Without attributes the
	// capture buffer does.
	bound := captures[0].buffer
	perVertex := captures[0].components
	switch {
	case len(attributes) > 0:
		bound = inputs[0]
		perVertex = w.module.Components(w.module.Resources[attributes[0].resource].Type)
	case plan.mode == ir.FeedbackInterleaved:
		perVertex = int(plan.info.Stride / 4)
	}
	w.writeLine("if %s >= arrayLength(&%s) / %du {", index, bound, perVertex)
	w.pushIndent()
	w.writeLine("return;")
	w.popIndent()
	w.writeLine("}")

	args := ""
	if io.inStruct != "" {
		w.writeLine("var %s: %s;", input, io.inStruct)
		for _, m := range io.inputs {
			if m.key.builtin {
				value := index
				if ir.BuiltinValue(m.key.value) == ir.BuiltinInstanceIndex {
					value = "0u"
				}
				w.writeLine("%s.%s = %s;", input, m.name, value)
			}
		}
		for i, m := range attributes {
			res := &w.module.Resources[m.resource]
			w.writeLine("%s.%s = %s;", input, m.name, w.unpack(res.Type, inputs[i], index))
		}
		args = input
	}
	w.writeLine("let %s = %s(%s);", output, w.names[nameKey{kind: nameKeyFunction, handle1: uint32(ep.Function)}], args)

	if plan.mode == ir.FeedbackInterleaved {
		w.writeLine("let %s = %s * %du;", base, index, perVertex)
	}
	for _, c := range captures {
		values := w.componentRefs(c.resource.Type, output+"."+c.member)
		for i, v := range values {
			if plan.mode == ir.FeedbackInterleaved {
				slot := fmt.Sprintf("%s + %du", base, c.offset+uint32(i)) //nolint:gosec // G115: component index
				if c.offset+uint32(i) == 0 {                              //nolint:gosec // G115: component index
					slot = base
				}
				w.writeLine("%s[%s] = %s;", c.buffer, slot, w.toFloatBits(c.resource.Type, v))
				continue
			}
			w.writeLine("%s[%s] = %s;", c.buffer, elementIndex(index, c.components, i), v)
		}
	}
	w.popIndent()
	w.writeLine("}")
	return nil
}

// unpack rebuilds one attribute value from its tightly packed buffer.
func (w *Writer) unpack(ty ir.TypeHandle, buffer, index string) string {
	n := w.module.Components(ty)
	if n == 1 {
		return fmt.Sprintf("%s[%s]", buffer, index)
	}
	parts := make([]string, n)
	for i := range n {
		parts[i] = fmt.Sprintf("%s[%s]", buffer, elementIndex(index, n, i))
	}
	return fmt.Sprintf("%s(%s)", w.typeName(ty), strings.Join(parts, ", "))
}

// componentRefs lists the scalar components of a value, matrices in column
// order.
func (w *Writer) componentRefs(ty ir.TypeHandle, ref string) []string {
	switch t := w.module.Inner(ty).(type) {
	case ir.VectorType:
		out := make([]string, t.Size)
		for i := range out {
			out[i] = ref + "." + swizzleText([]ir.SwizzleComponent{ir.SwizzleComponent(i)})
		}
		return out
	case ir.MatrixType:
		out := make([]string, 0, int(t.Columns)*int(t.Rows))
		for c := range int(t.Columns) {
			for r := range int(t.Rows) {
				out = append(out, fmt.Sprintf("%s[%d][%d]", ref, c, r))
			}
		}
		return out
	}
	return []string{ref}
}

// toFloatBits stores integer components in a float buffer bit for bit.
func (w *Writer) toFloatBits(ty ir.TypeHandle, v string) string {
	switch w.elementKind(ty) {
	case ir.ScalarSint, ir.ScalarUint:
		return "bitcast<f32>(" + v + ")"
	case ir.ScalarBool:
		return "f32(" + v + ")"
	}
	return v
}

// elementKind returns the scalar kind of a scalar, vector or matrix type.
func (w *Writer) elementKind(ty ir.TypeHandle) ir.ScalarKind {
	k, _ := w.module.Scalar(ty)
	return k
}

func elementIndex(index string, n, i int) string {
	if n == 1 {
		return index
	}
	if i == 0 {
		return fmt.Sprintf("%s * %du", index, n)
	}
	return fmt.Sprintf("%s * %du + %du", index, n, i)
}

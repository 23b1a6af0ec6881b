package ir

import "slices"

// Dependencies returns the direct operand handles of an expression, in
// operand order.
func (m *Module) Dependencies(h ExpressionHandle) []ExpressionHandle {
	switch k := m.Expressions[h].Kind.(type) {
	case ExprCompose:
		return k.Components
	case ExprSplat:
		return []ExpressionHandle{k.Value}
	case ExprSwizzle:
		return []ExpressionHandle{k.Vector}
	case ExprMember:
		return []ExpressionHandle{k.Base}
	case ExprAccessIndex:
		return []ExpressionHandle{k.Base}
	case ExprAccess:
		return []ExpressionHandle{k.Base, k.Index}
	case ExprUnary:
		return []ExpressionHandle{k.Expr}
	case ExprBinary:
		return []ExpressionHandle{k.Left, k.Right}
	case ExprSelect:
		return []ExpressionHandle{k.Condition, k.Accept, k.Reject}
	case ExprMath:
		return k.Args
	case ExprAs:
		return []ExpressionHandle{k.Expr}
	case ExprCall:
		return k.Arguments
	case ExprImageSample:
		if k.Level != nil {
			return []ExpressionHandle{k.Coordinate, *k.Level}
		}
		return []ExpressionHandle{k.Coordinate}
	}
	return nil
}

// Walk visits h and its dependency closure in post-order, operands before
// the node using them. Each node is visited once.
func (m *Module) Walk(h ExpressionHandle, visit func(ExpressionHandle)) {
	seen := make(map[ExpressionHandle]bool)
	m.walk(h, seen, visit)
}

func (m *Module) walk(h ExpressionHandle, seen map[ExpressionHandle]bool, visit func(ExpressionHandle)) {
	if seen[h] || int(h) >= len(m.Expressions) {
		return
	}
	seen[h] = true
	for _, d := range m.Dependencies(h) {
		m.walk(d, seen, visit)
	}
	visit(h)
}

// StatementOperands returns the expression roots a statement evaluates
// directly, excluding nested blocks.
func (m *Module) StatementOperands(st Statement) []ExpressionHandle {
	switch s := st.Kind.(type) {
	case StmtLet:
		if init := m.Locals[s.Local].Init; init != nil {
			return []ExpressionHandle{*init}
		}
	case StmtVar:
		if init := m.Locals[s.Local].Init; init != nil {
			return []ExpressionHandle{*init}
		}
	case StmtStore:
		return []ExpressionHandle{s.Pointer, s.Value}
	case StmtIf:
		return []ExpressionHandle{s.Condition}
	case StmtReturn:
		if s.Value != nil {
			return []ExpressionHandle{*s.Value}
		}
	case StmtCall:
		return s.Arguments
	}
	return nil
}

// WalkBlock visits every statement of a block, descending into nested
// blocks after their parent.
func WalkBlock(block Block, visit func(Statement)) {
	for _, st := range block {
		visit(st)
		if s, ok := st.Kind.(StmtIf); ok {
			WalkBlock(s.Accept, visit)
			WalkBlock(s.Reject, visit)
		}
	}
}

// Reachable returns fn and every function it calls, transitively, in
// handle order. A function is always created before its callers, so handle
// order is a valid declaration order.
func (m *Module) Reachable(fn FunctionHandle) []FunctionHandle {
	seen := map[FunctionHandle]bool{}
	var rec func(FunctionHandle)
	rec = func(h FunctionHandle) {
		if seen[h] {
			return
		}
		seen[h] = true
		for _, c := range m.Functions[h].Calls {
			rec(c)
		}
	}
	rec(fn)
	out := make([]FunctionHandle, 0, len(seen))
	for h := range seen {
		out = append(out, h)
	}
	slices.Sort(out)
	return out
}

// EntryResources returns the resources touched by an entry point and the
// functions it reaches, in handle order.
func (m *Module) EntryResources(ep *EntryPoint) []ResourceHandle {
	seen := map[ResourceHandle]bool{}
	var out []ResourceHandle
	for _, fh := range m.Reachable(ep.Function) {
		for _, r := range m.Functions[fh].Resources {
			if !seen[r] {
				seen[r] = true
				out = append(out, r)
			}
		}
	}
	slices.Sort(out)
	return out
}

// UsedStructs returns the struct descriptors reachable from the given
// types (including nested members and array bases), in handle order.
func (m *Module) UsedStructs(types []TypeHandle) []StructHandle {
	seen := map[StructHandle]bool{}
	var visit func(TypeHandle)
	visit = func(h TypeHandle) {
		switch t := m.Inner(h).(type) {
		case ArrayType:
			visit(t.Base)
		case StructType:
			if seen[t.Struct] {
				return
			}
			seen[t.Struct] = true
			for _, mem := range m.Structs[t.Struct].Members {
				visit(mem.Type)
			}
		}
	}
	for _, h := range types {
		visit(h)
	}
	out := make([]StructHandle, 0, len(seen))
	for h := range seen {
		out = append(out, h)
	}
	slices.Sort(out)
	return out
}

// FunctionTypes lists every type a set of functions mentions through
// arguments, results and locals.
func (m *Module) FunctionTypes(fns []FunctionHandle) []TypeHandle {
	var out []TypeHandle
	for _, fh := range fns {
		fn := &m.Functions[fh]
		for _, a := range fn.Arguments {
			out = append(out, a.Type)
		}
		if fn.Result != nil {
			out = append(out, *fn.Result)
		}
		for _, l := range fn.Locals {
			out = append(out, m.Locals[l].Type)
		}
	}
	return out
}

// IsAssignable reports whether h denotes a storage location: a mutable
// local, a varying, an output, the position builtin, or a member, element
// or non-repeating swizzle of one.
func (m *Module) IsAssignable(h ExpressionHandle) bool {
	switch k := m.Expressions[h].Kind.(type) {
	case ExprLocal:
		return m.Locals[k.Local].Mutable
	case ExprResource:
		role := m.Resources[k.Resource].Role
		return role == RoleVarying || role == RoleOutput
	case ExprBuiltin:
		return k.Builtin == BuiltinPosition
	case ExprMember:
		return m.IsAssignable(k.Base)
	case ExprAccessIndex:
		return m.IsAssignable(k.Base)
	case ExprAccess:
		return m.IsAssignable(k.Base)
	case ExprSwizzle:
		var used [4]bool
		for i := range int(k.Size) {
			c := k.Pattern[i]
			if used[c] {
				return false
			}
			used[c] = true
		}
		return m.IsAssignable(k.Vector)
	}
	return false
}

// SamplesImplicitly reports whether fn, or any function it calls, samples
// a texture with an implicit level of detail.
func (m *Module) SamplesImplicitly(fn FunctionHandle) bool {
	for _, fh := range m.Reachable(fn) {
		found := false
		WalkBlock(m.Functions[fh].Body, func(st Statement) {
			for _, root := range m.StatementOperands(st) {
				m.Walk(root, func(h ExpressionHandle) {
					if k, ok := m.Expressions[h].Kind.(ExprImageSample); ok && k.Level == nil {
						found = true
					}
				})
			}
		})
		if found {
			return true
		}
	}
	return false
}

package shade

import (
	"fmt"
	"log/slog"

	"github.com/gogpu/shade/ir"
)

// Param describes a function parameter.
type Param struct {
	Name string
	Type Type
}

// P describes a parameter.
func P(name string, t Type) Param {
	return Param{Name: name, Type: t}
}

// Func is a user-defined function callable from entry points and other
// functions.
type Func struct {
	b      *Builder
	h      ir.FunctionHandle
	name   string
	params []ir.TypeHandle
	result *ir.TypeHandle
}

// Name returns the function name.
func (f *Func) Name() string { return f.name }

// Function defines a helper function. The body receives one value per
// parameter. A function with a non-void result must return on every path.
func (b *Builder) Function(name string, params []Param, result Type, body func(s *Scope, args []Value)) (*Func, error) {
	if err := b.usable(); err != nil {
		return nil, err
	}
	if !isIdentifier(name) {
		return nil, ir.Errorf(ir.ErrInvalidArity, "invalid function name %q", name)
	}
	if b.entries[name] || b.funcs[name] != nil {
		return nil, ir.Errorf(ir.ErrInvalidArity, "%q is already defined", name)
	}

	f := &Func{b: b, name: name}
	fr := &frame{name: name, stage: ir.StageCompute}
	err := b.define(fr, func(s *Scope) {
		seen := make(map[string]bool, len(params))
		args := make([]Value, len(params))
		for i, p := range params {
			if !isIdentifier(p.Name) || seen[p.Name] {
				b.failf(ir.ErrInvalidArity, "invalid or duplicate parameter name %q", p.Name)
			}
			seen[p.Name] = true
			if p.Type.kind == kindArray {
				b.failf(ir.ErrUnsupportedConstruct, "parameter %q: arrays cannot be passed by value", p.Name)
			}
			ty := b.register(p.Type)
			fn := &b.module.Functions[fr.fn]
			fn.Arguments = append(fn.Arguments, ir.FunctionArgument{Name: p.Name, Type: ty})
			f.params = append(f.params, ty)
			args[i] = b.wrap(b.add(ir.ExprArgument{Function: fr.fn, Index: uint32(i)}, ty)) //nolint:gosec // G115: parameter index
		}
		if !result.IsVoid() {
			if result.kind == kindArray {
				b.failf(ir.ErrUnsupportedConstruct, "function %q cannot return an array", name)
			}
			rt := b.register(result)
			fr.result = &rt
			b.module.Functions[fr.fn].Result = &rt
		}
		if body != nil {
			body(s, args)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("shade: function %q: %w", name, err)
	}

	f.h = fr.fn
	f.result = fr.result
	b.funcs[name] = f
	b.logger.Debug("shade: function defined",
		slog.String("name", name),
		slog.Int("params", len(params)),
		slog.Int("statements", len(b.module.Functions[fr.fn].Body)))
	return f, nil
}

// Call invokes fn. For a function with a result the call is an expression
// and its value is returned; bind it with Let to evaluate it once. Void
// calls are emitted as statements and return nil.
func (s *Scope) Call(fn *Func, args ...any) Value {
	b := s.enter()
	if fn == nil || fn.b != b {
		b.failf(ir.ErrInvalidArity, "function belongs to another builder")
	}
	if len(args) != len(fn.params) {
		b.failf(ir.ErrInvalidArity, "%q takes %d arguments, got %d", fn.name, len(fn.params), len(args))
	}

	handles := make([]ir.ExpressionHandle, len(args))
	nodes := make([]node, len(args))
	for i, a := range args {
		n := b.valueLike(a, fn.params[i])
		if n.t != fn.params[i] {
			b.failf(ir.ErrTypeMismatch, "%q argument %d: want %s, got %s", fn.name, i,
				b.module.TypeString(fn.params[i]), b.module.TypeString(n.t))
		}
		handles[i] = n.h
		nodes[i] = n
	}

	if !s.fr.seenCall[fn.h] {
		s.fr.seenCall[fn.h] = true
		s.fr.calls = append(s.fr.calls, fn.h)
	}
	if fn.result == nil {
		s.emit(ir.StmtCall{Function: fn.h, Arguments: handles})
		return nil
	}
	return b.wrap(b.add(ir.ExprCall{Function: fn.h, Arguments: handles}, *fn.result, nodes...))
}

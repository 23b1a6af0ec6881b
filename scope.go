package shade

import (
	"github.com/gogpu/shade/ir"
)

// Scope is the construction context of one function body. Statements go
// to the body's active block: the root block, or the branch of the
// innermost If whose callback is running.
type Scope struct {
	b  *Builder
	fr *frame
}

// enter checks that the scope belongs to the active body.
func (s *Scope) enter() *Builder {
	b := s.b
	if b.frozen {
		panic(ir.Errorf(ir.ErrUnbalancedScope, "builder is frozen"))
	}
	if len(b.frames) == 0 || b.top() != s.fr {
		panic(ir.Errorf(ir.ErrUnbalancedScope, "scope of %q used outside its body", s.fr.name))
	}
	return b
}

// Stage returns the stage of the entry point being defined. For user
// functions it returns ir.StageCompute.
func (s *Scope) Stage() ir.ShaderStage {
	if !s.fr.entry {
		return ir.StageCompute
	}
	return s.fr.stage
}

func (s *Scope) emit(kind ir.StatementKind) {
	s.fr.cur.stmts = append(s.fr.cur.stmts, pending{kind: kind})
}

// run makes blk the active block while body runs.
func (s *Scope) run(blk *block, body func(*Scope)) {
	fr := s.fr
	prev := fr.cur
	fr.cur = blk
	defer func() {
		blk.closed = true
		fr.cur = prev
	}()
	if body != nil {
		body(s)
	}
}

// Cond is a conditional whose else branch may still be given.
type Cond struct {
	s      *Scope
	node   *condNode
	owner  *block
	index  int
	parent *Cond
	done   bool
}

// If appends a conditional and runs then as its accept branch.
func (s *Scope) If(cond any, then func(s *Scope)) *Cond {
	b := s.enter()
	c := b.value(cond, ir.ScalarBool)
	if !b.module.IsScalar(c.t, ir.ScalarBool) {
		b.failf(ir.ErrTypeMismatch, "if condition must be bool, got %s", b.module.TypeString(c.t))
	}
	n := &condNode{condition: c.h, accept: newBlock(s.fr.cur)}
	owner := s.fr.cur
	owner.stmts = append(owner.stmts, pending{cond: n})
	s.run(n.accept, then)
	return &Cond{s: s, node: n, owner: owner, index: len(owner.stmts) - 1}
}

// Else runs body as the reject branch. It must be called at most once,
// directly after the conditional, from the body that created it.
func (c *Cond) Else(body func(s *Scope)) {
	b := c.s.b
	root := c
	for root.parent != nil {
		root = root.parent
	}
	switch {
	case b.frozen || len(b.frames) == 0 || b.frames[len(b.frames)-1] != c.s.fr || root.owner.closed:
		b.failf(ir.ErrUnbalancedScope, "Else after the enclosing body was closed")
		return
	case c.done:
		b.failf(ir.ErrUnbalancedScope, "Else given twice")
		return
	case c.s.fr.cur != root.owner:
		b.failf(ir.ErrUnbalancedScope, "Else called while another body is active")
		return
	case root.index != len(root.owner.stmts)-1 || c.index != len(c.owner.stmts)-1:
		b.failf(ir.ErrUnbalancedScope, "Else must directly follow its conditional")
		return
	}
	c.done = true
	c.node.reject = newBlock(c.owner)
	c.s.run(c.node.reject, body)
}

// ElseIf gives the reject branch as a nested conditional and returns it,
// so chains end with an optional Else.
func (c *Cond) ElseIf(cond any, then func(s *Scope)) *Cond {
	var next *Cond
	c.Else(func(s *Scope) {
		next = s.If(cond, then)
	})
	if next == nil {
		// The Else failed outside any body; keep the chain inert.
		return &Cond{s: c.s, node: &condNode{}, owner: c.owner, done: true, parent: c}
	}
	next.parent = c
	return next
}

func (s *Scope) declare(name string, init any, mutable bool) Value {
	b := s.enter()
	if !isIdentifier(name) {
		b.failf(ir.ErrInvalidArity, "invalid binding name %q", name)
	}
	var n node
	if v, ok := init.(Value); ok {
		n = b.check(v)
	} else {
		n = b.anyValue(init)
	}
	_, zero := b.module.Expressions[n.h].Kind.(ir.ExprZeroValue)
	if zero && !mutable {
		b.failf(ir.ErrInvalidArity, "let %q cannot be initialized with a placeholder", name)
	}
	if _, isTex := b.module.Inner(n.t).(ir.TextureType); isTex {
		b.failf(ir.ErrUnsupportedConstruct, "textures cannot be bound to locals")
	}

	local := ir.LocalVariable{Name: name, Type: n.t, Mutable: mutable}
	if !zero {
		h := n.h
		local.Init = &h
	}
	lh := b.module.AddLocal(local)
	s.fr.locals = append(s.fr.locals, lh)
	if mutable {
		s.emit(ir.StmtVar{Local: lh})
	} else {
		s.emit(ir.StmtLet{Local: lh})
	}

	ref := b.add(ir.ExprLocal{Local: lh}, n.t)
	ref.scope = s.fr.cur
	return b.wrap(ref)
}

// Let binds v to an immutable name. The expression is evaluated once, at
// this point; the returned value references the binding.
func (s *Scope) Let(name string, v any) Value {
	return s.declare(name, v, false)
}

// Var declares a mutable binding. v may be a placeholder, which leaves the
// variable uninitialized.
func (s *Scope) Var(name string, v any) Value {
	return s.declare(name, v, true)
}

// Assign stores v into target. Scalars and constants are splatted to
// vector targets.
func (s *Scope) Assign(target Value, v any) {
	b := s.enter()
	t := b.check(target)
	if !b.module.IsAssignable(t.h) {
		b.failf(ir.ErrTypeMismatch, "assignment target is not assignable")
	}
	res, hasRes := s.rootResource(t.h)
	if hasRes && b.module.Resources[res].Role == ir.RoleVarying && s.fr.stage == ir.StageFragment {
		b.failf(ir.ErrUnsupportedConstruct, "varying %q is read-only in a fragment shader", b.module.Resources[res].Name)
	}
	val := b.valueLike(v, t.t)
	if val.t != t.t {
		b.failf(ir.ErrTypeMismatch, "cannot assign %s to %s", b.module.TypeString(val.t), b.module.TypeString(t.t))
	}
	if hasRes {
		s.fr.written[res] = true
	}
	s.emit(ir.StmtStore{Pointer: t.h, Value: val.h})
}

// rootResource returns the resource an assignable expression stores into.
func (s *Scope) rootResource(h ir.ExpressionHandle) (ir.ResourceHandle, bool) {
	m := s.b.module
	for {
		switch k := m.Expressions[h].Kind.(type) {
		case ir.ExprResource:
			return k.Resource, true
		case ir.ExprMember:
			h = k.Base
		case ir.ExprAccessIndex:
			h = k.Base
		case ir.ExprAccess:
			h = k.Base
		case ir.ExprSwizzle:
			h = k.Vector
		default:
			return 0, false
		}
	}
}

// Return leaves the function. Entry points and void functions return no
// value.
func (s *Scope) Return(v ...any) {
	b := s.enter()
	switch {
	case len(v) > 1:
		b.failf(ir.ErrInvalidArity, "Return takes at most one value")
	case s.fr.result == nil && len(v) == 1:
		b.failf(ir.ErrInvalidArity, "%q does not return a value", s.fr.name)
	case s.fr.result != nil && len(v) == 0:
		b.failf(ir.ErrInvalidArity, "%q must return a value", s.fr.name)
	}
	if len(v) == 0 {
		s.emit(ir.StmtReturn{})
		return
	}
	n := b.valueLike(v[0], *s.fr.result)
	if n.t != *s.fr.result {
		b.failf(ir.ErrTypeMismatch, "%q returns %s, got %s", s.fr.name,
			b.module.TypeString(*s.fr.result), b.module.TypeString(n.t))
	}
	h := n.h
	s.emit(ir.StmtReturn{Value: &h})
}

// Discard aborts the fragment invocation.
func (s *Scope) Discard() {
	b := s.enter()
	if s.fr.entry && s.fr.stage != ir.StageFragment {
		b.failf(ir.ErrUnsupportedConstruct, "discard is only allowed in fragment shaders")
	}
	s.emit(ir.StmtKill{})
}

// Precision emits a legacy precision statement at this point, e.g.
// Precision("highp", "float"). The modern dialect ignores it.
func (s *Scope) Precision(precision, typ string) {
	b := s.enter()
	switch precision {
	case "lowp", "mediump", "highp":
	default:
		b.failf(ir.ErrInvalidArity, "unknown precision %q", precision)
	}
	switch typ {
	case "float", "int", "sampler2D", "samplerCube":
	default:
		b.failf(ir.ErrInvalidArity, "precision cannot be set for %q", typ)
	}
	s.emit(ir.StmtPrecision{Precision: precision, Type: typ})
}

package shade

import (
	"fmt"
	"log/slog"

	"github.com/gogpu/shade/ir"
)

// Builder records shader stages, functions and structs into one module.
// A Builder belongs to one build and must not be shared between goroutines.
type Builder struct {
	module *ir.Module
	logger *slog.Logger

	frames []*frame
	frozen bool

	// err is a protocol error raised while no body was active to report it.
	err error

	entries map[string]bool
	funcs   map[string]*Func
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// WithLogger sets the logger used by the builder and, by default, by the
// programs it produces.
func WithLogger(l *slog.Logger) BuilderOption {
	return func(b *Builder) {
		if l != nil {
			b.logger = l
		}
	}
}

// NewBuilder creates an empty builder.
func NewBuilder(opts ...BuilderOption) *Builder {
	b := &Builder{
		module:  ir.NewModule(),
		logger:  slog.Default(),
		entries: make(map[string]bool),
		funcs:   make(map[string]*Func),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// frame is one function body under construction.
type frame struct {
	fn    ir.FunctionHandle
	name  string
	stage ir.ShaderStage
	entry bool

	root *block
	cur  *block

	locals    []ir.LocalHandle
	resources []ir.ResourceHandle
	seenRes   map[ir.ResourceHandle]bool
	calls     []ir.FunctionHandle
	seenCall  map[ir.FunctionHandle]bool
	written   map[ir.ResourceHandle]bool

	// result is the declared result of a user function, nil for void.
	result *ir.TypeHandle
}

// block is a statement sequence that stays mutable until its body closes.
type block struct {
	parent *block
	depth  int
	stmts  []pending
	closed bool
}

type pending struct {
	kind ir.StatementKind
	cond *condNode
}

type condNode struct {
	condition ir.ExpressionHandle
	accept    *block
	reject    *block
}

func newBlock(parent *block) *block {
	if parent == nil {
		return &block{}
	}
	return &block{parent: parent, depth: parent.depth + 1}
}

// encloses reports whether blk is inner or one of its ancestors.
func (blk *block) encloses(inner *block) bool {
	for b := inner; b != nil; b = b.parent {
		if b == blk {
			return true
		}
	}
	return false
}

func (blk *block) build() ir.Block {
	out := make(ir.Block, 0, len(blk.stmts))
	for _, p := range blk.stmts {
		if p.cond != nil {
			st := ir.StmtIf{Condition: p.cond.condition, Accept: p.cond.accept.build()}
			if p.cond.reject != nil {
				st.Reject = p.cond.reject.build()
			}
			out = append(out, ir.Statement{Kind: st})
			continue
		}
		out = append(out, ir.Statement{Kind: p.kind})
	}
	return out
}

// returns reports whether every path through blk ends in a return.
func (blk *block) returns() bool {
	if len(blk.stmts) == 0 {
		return false
	}
	last := blk.stmts[len(blk.stmts)-1]
	if last.cond != nil {
		return last.cond.reject != nil && last.cond.accept.returns() && last.cond.reject.returns()
	}
	_, ok := last.kind.(ir.StmtReturn)
	return ok
}

// fail aborts the current construction call. Inside a body the error is
// raised as a panic and recovered at the body boundary; outside any body it
// is kept and reported by the next builder call.
func (b *Builder) fail(err *ir.Error) {
	if len(b.frames) > 0 {
		panic(err)
	}
	if b.err == nil {
		b.err = err
	}
}

func (b *Builder) failf(kind ir.ErrorKind, format string, args ...any) {
	b.fail(ir.Errorf(kind, format, args...))
}

// usable reports why the builder cannot start a new definition.
func (b *Builder) usable() error {
	if b.err != nil {
		return b.err
	}
	if b.frozen {
		return ir.Errorf(ir.ErrUnbalancedScope, "builder is frozen")
	}
	if len(b.frames) > 0 {
		return ir.Errorf(ir.ErrUnbalancedScope, "cannot start a definition inside the body of %q", b.top().name)
	}
	return nil
}

func (b *Builder) top() *frame {
	if len(b.frames) == 0 {
		panic(ir.Errorf(ir.ErrUnbalancedScope, "no body is active"))
	}
	return b.frames[len(b.frames)-1]
}

// define runs body as the root block of a new function. Construction
// errors raised inside the body roll the module back to its state before
// the call.
func (b *Builder) define(fr *frame, body func(*Scope)) (err error) {
	cp := b.module.Checkpoint()
	depth := len(b.frames)

	defer func() {
		if r := recover(); r != nil {
			e, ok := r.(*ir.Error)
			if !ok {
				panic(r)
			}
			b.frames = b.frames[:depth]
			b.module.Rollback(cp)
			b.logger.Debug("shade: definition failed", slog.String("name", fr.name), slog.String("error", e.Error()))
			err = e
		}
	}()

	fr.fn = ir.FunctionHandle(len(b.module.Functions)) //nolint:gosec // G115: arena index
	b.module.Functions = append(b.module.Functions, ir.Function{Name: fr.name})
	fr.root = newBlock(nil)
	fr.cur = fr.root
	fr.seenRes = make(map[ir.ResourceHandle]bool)
	fr.seenCall = make(map[ir.FunctionHandle]bool)
	fr.written = make(map[ir.ResourceHandle]bool)

	b.frames = append(b.frames, fr)
	s := &Scope{b: b, fr: fr}
	func() {
		defer func() {
			fr.root.closed = true
			b.frames = b.frames[:depth]
		}()
		body(s)
	}()

	if fr.result != nil && !fr.root.returns() {
		b.module.Rollback(cp)
		return ir.Errorf(ir.ErrUnsupportedConstruct, "function %q must end with a return on every path", fr.name)
	}

	fn := &b.module.Functions[fr.fn]
	fn.Body = fr.root.build()
	fn.Locals = fr.locals
	fn.Resources = fr.resources
	fn.Calls = fr.calls
	return nil
}

// Vertex defines a vertex entry point.
func (b *Builder) Vertex(name string, body func(s *Scope), opts ...EntryOption) (*Shader, error) {
	return b.entry(ir.StageVertex, name, body, opts)
}

// Fragment defines a fragment entry point.
func (b *Builder) Fragment(name string, body func(s *Scope), opts ...EntryOption) (*Shader, error) {
	return b.entry(ir.StageFragment, name, body, opts)
}

// Shader is a defined entry point.
type Shader struct {
	Name  string
	Stage ir.ShaderStage
	index int
}

// EntryOption configures an entry point.
type EntryOption func(*entryConfig)

type entryConfig struct {
	capture *captureSpec
}

func (b *Builder) entry(stage ir.ShaderStage, name string, body func(*Scope), opts []EntryOption) (*Shader, error) {
	if err := b.usable(); err != nil {
		return nil, err
	}
	if !isIdentifier(name) {
		return nil, ir.Errorf(ir.ErrInvalidArity, "invalid entry point name %q", name)
	}
	if b.entries[name] || b.funcs[name] != nil {
		return nil, ir.Errorf(ir.ErrInvalidArity, "%q is already defined", name)
	}
	var cfg entryConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	cp := b.module.Checkpoint()
	fr := &frame{name: name, stage: stage, entry: true}
	if err := b.define(fr, body); err != nil {
		return nil, fmt.Errorf("shade: %s %q: %w", stage, name, err)
	}

	ep := ir.EntryPoint{Name: name, Stage: stage, Function: fr.fn}
	if cfg.capture != nil {
		fb, err := b.resolveCapture(fr, cfg.capture)
		if err != nil {
			b.module.Rollback(cp)
			return nil, fmt.Errorf("shade: %s %q: %w", stage, name, err)
		}
		ep.Feedback = fb
	}

	b.entries[name] = true
	b.module.EntryPoints = append(b.module.EntryPoints, ep)
	b.logger.Debug("shade: entry point defined",
		slog.String("name", name),
		slog.String("stage", stage.String()),
		slog.Int("statements", len(b.module.Functions[fr.fn].Body)))
	return &Shader{Name: name, Stage: stage, index: len(b.module.EntryPoints) - 1}, nil
}

// Program validates and freezes the module. The builder rejects every
// later call.
func (b *Builder) Program() (*Program, error) {
	if b.err != nil {
		return nil, b.err
	}
	if len(b.frames) > 0 {
		return nil, ir.Errorf(ir.ErrUnbalancedScope, "Program called inside the body of %q", b.top().name)
	}
	if err := ir.Check(b.module); err != nil {
		return nil, fmt.Errorf("shade: %w", err)
	}
	b.frozen = true
	return &Program{module: b.module, logger: b.logger}, nil
}

func isIdentifier(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}

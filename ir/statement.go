package ir

// Statement represents a statement in the IR.
// Statements have side effects and structured control flow, but do not produce values.
// The function body is represented as a tree of statements, with references to expressions.
type Statement struct {
	Kind StatementKind
}

// StatementKind represents the different kinds of statements.
type StatementKind interface {
	statementKind()
}

// Block represents a sequence of statements executed in order.
type Block []Statement

// StmtLet declares an immutable binding. The local's Init is evaluated once,
// at this point.
type StmtLet struct {
	Local LocalHandle
}

func (StmtLet) statementKind() {}

// StmtVar declares a mutable binding, initialized if the local has an Init.
type StmtVar struct {
	Local LocalHandle
}

func (StmtVar) statementKind() {}

// StmtStore assigns Value to the location denoted by Pointer.
// Pointer must be assignable (see Module.IsAssignable).
type StmtStore struct {
	Pointer ExpressionHandle
	Value   ExpressionHandle
}

func (StmtStore) statementKind() {}

// StmtIf conditionally executes one of two blocks based on the condition value.
type StmtIf struct {
	Condition ExpressionHandle // Must be a bool expression
	Accept    Block
	Reject    Block
}

func (StmtIf) statementKind() {}

// StmtReturn returns from the function, possibly with a value.
// Entry points return without a value.
type StmtReturn struct {
	Value *ExpressionHandle
}

func (StmtReturn) statementKind() {}

// StmtKill aborts the current fragment invocation (discard).
type StmtKill struct{}

func (StmtKill) statementKind() {}

// StmtPrecision is a legacy precision statement, written verbatim by the
// GLSL writer and ignored by the WGSL writer.
type StmtPrecision struct {
	Precision string // lowp, mediump or highp
	Type      string // float, int, sampler2D, ...
}

func (StmtPrecision) statementKind() {}

// StmtCall calls a function and discards any result.
type StmtCall struct {
	Function  FunctionHandle
	Arguments []ExpressionHandle
}

func (StmtCall) statementKind() {}

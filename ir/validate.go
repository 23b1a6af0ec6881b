package ir

import (
	"fmt"
)

// ValidationError represents a validation error.
type ValidationError struct {
	Message string
	// Optional context
	Function   string
	Expression *ExpressionHandle
	Statement  int
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Function != "" {
		if e.Expression != nil {
			return fmt.Sprintf("in function %s, expression %d: %s", e.Function, *e.Expression, e.Message)
		}
		if e.Statement >= 0 {
			return fmt.Sprintf("in function %s, statement %d: %s", e.Function, e.Statement, e.Message)
		}
		return fmt.Sprintf("in function %s: %s", e.Function, e.Message)
	}
	return e.Message
}

// Validator validates IR modules.
type Validator struct {
	module  *Module
	errors  []ValidationError
	context validationContext

	// stages records which entry stages reach each function.
	stages map[FunctionHandle]map[ShaderStage]bool
}

// validationContext holds current validation context.
type validationContext struct {
	function     *Function
	functionName string
	isEntry      bool
	stages       map[ShaderStage]bool
	statement    int
}

// Validate checks the IR module for correctness.
// Returns validation errors if any, or nil if module is valid.
func Validate(module *Module) []ValidationError {
	if module == nil {
		return []ValidationError{{Message: "module is nil", Statement: -1}}
	}

	v := &Validator{
		module: module,
		stages: make(map[FunctionHandle]map[ShaderStage]bool),
	}
	v.ValidateModule()
	return v.errors
}

// Check validates the module and returns the first problem as an
// ErrInvalidModule error.
func Check(module *Module) error {
	if errs := Validate(module); len(errs) > 0 {
		return &Error{Kind: ErrInvalidModule, Message: errs[0].Error()}
	}
	return nil
}

// ValidateModule validates the complete module.
func (v *Validator) ValidateModule() {
	v.validateTypes()
	v.validateResources()
	v.validateEntryPoints()
	if len(v.errors) > 0 {
		return
	}
	v.validateFunctions()
}

// validateTypes checks all type definitions.
func (v *Validator) validateTypes() {
	for i := range v.module.Types {
		handle := TypeHandle(i) //nolint:gosec // G115: arena index
		switch inner := v.module.Types[i].Inner.(type) {
		case nil:
			v.addError(fmt.Sprintf("type %d has nil inner type", handle))
		case VectorType:
			if inner.Size < Vec2 || inner.Size > Vec4 {
				v.addError(fmt.Sprintf("type %d: vector size must be 2, 3, or 4, got %d", handle, inner.Size))
			}
		case MatrixType:
			if inner.Columns < Vec2 || inner.Columns > Vec4 || inner.Rows < Vec2 || inner.Rows > Vec4 {
				v.addError(fmt.Sprintf("type %d: matrix dimensions must be 2, 3, or 4", handle))
			}
		case ArrayType:
			if !v.isValidTypeHandle(inner.Base) || inner.Base == handle {
				v.addError(fmt.Sprintf("type %d: array base type %d does not exist", handle, inner.Base))
			}
		case StructType:
			if int(inner.Struct) >= len(v.module.Structs) {
				v.addError(fmt.Sprintf("type %d: struct %d does not exist", handle, inner.Struct))
			}
		}
	}

	for i := range v.module.Structs {
		desc := &v.module.Structs[i]
		memberNames := make(map[string]bool, len(desc.Members))
		for j, member := range desc.Members {
			if member.Name == "" {
				v.addError(fmt.Sprintf("struct %s: member %d has empty name", desc.Name, j))
			}
			if memberNames[member.Name] {
				v.addError(fmt.Sprintf("struct %s: duplicate member name %q", desc.Name, member.Name))
			}
			memberNames[member.Name] = true
			if !v.isValidTypeHandle(member.Type) {
				v.addError(fmt.Sprintf("struct %s: member %q type %d does not exist", desc.Name, member.Name, member.Type))
			}
		}
	}
}

// validateResources checks resource types against their roles.
func (v *Validator) validateResources() {
	for i := range v.module.Resources {
		res := &v.module.Resources[i]
		if !v.isValidTypeHandle(res.Type) {
			v.addError(fmt.Sprintf("%s %q: type %d does not exist", res.Role, res.Name, res.Type))
			continue
		}
		inner := v.module.Inner(res.Type)
		switch res.Role {
		case RoleTexture:
			if _, ok := inner.(TextureType); !ok {
				v.addError(fmt.Sprintf("texture %q must have a texture type", res.Name))
			}
		case RoleSampler:
			if _, ok := inner.(SamplerType); !ok {
				v.addError(fmt.Sprintf("sampler %q must have a sampler type", res.Name))
			}
		case RoleAttribute, RoleVarying, RoleOutput:
			switch t := inner.(type) {
			case ScalarType:
				if t.Kind == ScalarBool {
					v.addError(fmt.Sprintf("%s %q cannot be bool", res.Role, res.Name))
				}
			case VectorType:
				if t.Kind == ScalarBool {
					v.addError(fmt.Sprintf("%s %q cannot be bool", res.Role, res.Name))
				}
			case MatrixType:
				if res.Role != RoleAttribute {
					v.addError(fmt.Sprintf("%s %q cannot be a matrix", res.Role, res.Name))
				}
			default:
				v.addError(fmt.Sprintf("%s %q must be a scalar or vector", res.Role, res.Name))
			}
		}
	}
}

// validateEntryPoints checks entry points and records which stages reach
// each function.
func (v *Validator) validateEntryPoints() {
	names := make(map[string]bool)
	for i := range v.module.EntryPoints {
		ep := &v.module.EntryPoints[i]
		if ep.Name == "" {
			v.addError(fmt.Sprintf("entry point %d has empty name", i))
		}
		if names[ep.Name] {
			v.addError(fmt.Sprintf("duplicate entry point name %q", ep.Name))
		}
		names[ep.Name] = true

		if !v.isValidFunctionHandle(ep.Function) {
			v.addError(fmt.Sprintf("entry point %q: function %d does not exist", ep.Name, ep.Function))
			continue
		}
		if v.module.Functions[ep.Function].Result != nil {
			v.addError(fmt.Sprintf("entry point %q: must not return a value", ep.Name))
		}
		if ep.Feedback != nil {
			if ep.Stage != StageVertex {
				v.addError(fmt.Sprintf("entry point %q: only vertex entries can capture outputs", ep.Name))
			}
			for _, r := range ep.Feedback.Varyings {
				if int(r) >= len(v.module.Resources) || v.module.Resources[r].Role != RoleVarying {
					v.addError(fmt.Sprintf("entry point %q: captured resource %d is not a varying", ep.Name, r))
				}
			}
		}
		for _, fh := range v.module.Reachable(ep.Function) {
			set := v.stages[fh]
			if set == nil {
				set = make(map[ShaderStage]bool, 2)
				v.stages[fh] = set
			}
			set[ep.Stage] = true
		}
	}
}

// validateFunctions checks every function body.
func (v *Validator) validateFunctions() {
	names := make(map[string]bool)
	entries := make(map[FunctionHandle]bool, len(v.module.EntryPoints))
	for _, ep := range v.module.EntryPoints {
		entries[ep.Function] = true
	}

	for i := range v.module.Functions {
		fn := &v.module.Functions[i]
		handle := FunctionHandle(i) //nolint:gosec // G115: arena index
		if !entries[handle] {
			if names[fn.Name] {
				v.addError(fmt.Sprintf("duplicate function name %q", fn.Name))
			}
			names[fn.Name] = true
		}
		v.context = validationContext{
			function:     fn,
			functionName: fn.Name,
			isEntry:      entries[handle],
			stages:       v.stages[handle],
			statement:    -1,
		}
		v.validateFunction(fn)
	}
}

func (v *Validator) validateFunction(fn *Function) {
	for _, a := range fn.Arguments {
		if !v.isValidTypeHandle(a.Type) {
			v.addErrorInFunction(fmt.Sprintf("argument %q type %d does not exist", a.Name, a.Type))
		}
	}
	for _, r := range fn.Resources {
		if int(r) >= len(v.module.Resources) {
			v.addErrorInFunction(fmt.Sprintf("resource %d does not exist", r))
			continue
		}
		if !v.context.isEntry {
			res := &v.module.Resources[r]
			if res.Role.IsLocationRole() {
				v.addErrorInFunction(fmt.Sprintf("%s %q can only be used in an entry point body", res.Role, res.Name))
			}
		}
	}
	for _, c := range fn.Calls {
		if !v.isValidFunctionHandle(c) {
			v.addErrorInFunction(fmt.Sprintf("called function %d does not exist", c))
		}
	}
	v.validateBlock(fn.Body)
}

func (v *Validator) validateBlock(block Block) {
	for i := range block {
		v.context.statement = i
		v.validateStatement(i, &block[i])
		if s, ok := block[i].Kind.(StmtIf); ok {
			v.validateBlock(s.Accept)
			v.validateBlock(s.Reject)
		}
	}
}

//nolint:gocyclo,cyclop // one case per statement kind
func (v *Validator) validateStatement(index int, stmt *Statement) {
	for _, h := range v.module.StatementOperands(*stmt) {
		if !v.isValidExpressionHandle(h) {
			v.addErrorInStatement(index, fmt.Sprintf("expression %d does not exist", h))
			return
		}
		v.validateExpressionTree(h)
	}

	switch s := stmt.Kind.(type) {
	case StmtLet:
		init := v.module.Locals[s.Local].Init
		if init == nil {
			v.addErrorInStatement(index, "let binding needs an initializer")
		} else if _, zero := v.module.Expressions[*init].Kind.(ExprZeroValue); zero {
			v.addErrorInStatement(index, "let binding cannot be initialized with a placeholder")
		}
	case StmtStore:
		if !v.module.IsAssignable(s.Pointer) {
			v.addErrorInStatement(index, "store target is not assignable")
		}
		if v.module.ExprType(s.Pointer) != v.module.ExprType(s.Value) {
			v.addErrorInStatement(index, fmt.Sprintf("store of %s into %s",
				v.module.TypeString(v.module.ExprType(s.Value)), v.module.TypeString(v.module.ExprType(s.Pointer))))
		}
		if v.context.stages[StageFragment] && v.storesVarying(s.Pointer) {
			v.addErrorInStatement(index, "varyings are read-only in a fragment shader")
		}
	case StmtIf:
		if !v.module.IsScalar(v.module.ExprType(s.Condition), ScalarBool) {
			v.addErrorInStatement(index, "if condition must be bool")
		}
	case StmtReturn:
		result := v.context.function.Result
		switch {
		case result == nil && s.Value != nil:
			v.addErrorInStatement(index, "return with a value from a function without result")
		case result != nil && s.Value == nil:
			v.addErrorInStatement(index, "return without a value")
		case result != nil && v.module.ExprType(*s.Value) != *result:
			v.addErrorInStatement(index, "return value does not match the function result type")
		}
	case StmtKill:
		if v.context.stages[StageVertex] {
			v.addErrorInStatement(index, "discard is only allowed in fragment code")
		}
	case StmtCall:
		if !v.isValidFunctionHandle(s.Function) {
			v.addErrorInStatement(index, fmt.Sprintf("function %d does not exist", s.Function))
		}
	}
}

func (v *Validator) storesVarying(h ExpressionHandle) bool {
	switch k := v.module.Expressions[h].Kind.(type) {
	case ExprResource:
		return v.module.Resources[k.Resource].Role == RoleVarying
	case ExprMember:
		return v.storesVarying(k.Base)
	case ExprAccessIndex:
		return v.storesVarying(k.Base)
	case ExprAccess:
		return v.storesVarying(k.Base)
	case ExprSwizzle:
		return v.storesVarying(k.Vector)
	}
	return false
}

// validateExpressionTree checks the stage rules of every node reachable
// from h.
func (v *Validator) validateExpressionTree(h ExpressionHandle) {
	v.module.Walk(h, func(e ExpressionHandle) {
		for _, d := range v.module.Dependencies(e) {
			if !v.isValidExpressionHandle(d) {
				v.addErrorInExpression(e, fmt.Sprintf("operand %d does not exist", d))
			}
		}
		switch k := v.module.Expressions[e].Kind.(type) {
		case ExprResource:
			res := &v.module.Resources[k.Resource]
			if res.Role == RoleAttribute && v.context.stages[StageFragment] {
				v.addErrorInExpression(e, fmt.Sprintf("attribute %q read in a fragment shader", res.Name))
			}
		case ExprBuiltin:
			if !v.context.isEntry {
				v.addErrorInExpression(e, fmt.Sprintf("builtin %s can only be used in an entry point body", k.Builtin))
			} else if !v.context.stages[k.Builtin.Stage()] {
				v.addErrorInExpression(e, fmt.Sprintf("builtin %s is not available in this stage", k.Builtin))
			}
		case ExprImageSample:
			if v.context.stages[StageVertex] && v.context.stages[StageFragment] {
				v.addErrorInExpression(e, "a function that samples textures cannot be shared by vertex and fragment entries")
			}
		case ExprMath:
			if k.Fun.IsDerivative() && v.context.stages[StageVertex] {
				v.addErrorInExpression(e, "derivatives are only available in fragment code")
			}
		case ExprArgument:
			if v.context.function == nil || int(k.Index) >= len(v.context.function.Arguments) {
				v.addErrorInExpression(e, fmt.Sprintf("argument %d out of range", k.Index))
			}
		}
	})
}

func (v *Validator) isValidTypeHandle(handle TypeHandle) bool {
	return int(handle) < len(v.module.Types)
}

func (v *Validator) isValidFunctionHandle(handle FunctionHandle) bool {
	return int(handle) < len(v.module.Functions)
}

func (v *Validator) isValidExpressionHandle(handle ExpressionHandle) bool {
	return int(handle) < len(v.module.Expressions)
}

func (v *Validator) addError(msg string) {
	v.errors = append(v.errors, ValidationError{
		Message:   msg,
		Statement: -1,
	})
}

func (v *Validator) addErrorInFunction(msg string) {
	v.errors = append(v.errors, ValidationError{
		Message:   msg,
		Function:  v.context.functionName,
		Statement: -1,
	})
}

func (v *Validator) addErrorInExpression(handle ExpressionHandle, msg string) {
	v.errors = append(v.errors, ValidationError{
		Message:    msg,
		Function:   v.context.functionName,
		Expression: &handle,
		Statement:  -1,
	})
}

func (v *Validator) addErrorInStatement(index int, msg string) {
	v.errors = append(v.errors, ValidationError{
		Message:   msg,
		Function:  v.context.functionName,
		Statement: index,
	})
}

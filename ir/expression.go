package ir

// Expression represents an expression in the IR.
// Expressions are immutable once added to the arena and record their
// result type.
type Expression struct {
	Kind ExpressionKind
	Type TypeHandle
}

// ExpressionKind represents the different kinds of expressions.
type ExpressionKind interface {
	expressionKind()
}

// ExprLiteral represents a literal scalar value.
type ExprLiteral struct {
	Value LiteralValue
}

func (ExprLiteral) expressionKind() {}

// LiteralValue represents the value of a literal.
type LiteralValue interface {
	literalValue()
}

// LiteralF32 represents a 32-bit float literal (may not be NaN or infinity).
type LiteralF32 float32

func (LiteralF32) literalValue() {}

// LiteralU32 represents a 32-bit unsigned integer literal.
type LiteralU32 uint32

func (LiteralU32) literalValue() {}

// LiteralI32 represents a 32-bit signed integer literal.
type LiteralI32 int32

func (LiteralI32) literalValue() {}

// LiteralBool represents a boolean literal.
type LiteralBool bool

func (LiteralBool) literalValue() {}

// ExprZeroValue is an uninitialized placeholder of its type.
// It may only initialize a var binding.
type ExprZeroValue struct{}

func (ExprZeroValue) expressionKind() {}

// ExprCompose constructs a vector or matrix from components.
type ExprCompose struct {
	Components []ExpressionHandle
}

func (ExprCompose) expressionKind() {}

// ExprSplat broadcasts a scalar value to all components of a vector.
type ExprSplat struct {
	Value ExpressionHandle
}

func (ExprSplat) expressionKind() {}

// ExprSwizzle reorders or duplicates vector components.
type ExprSwizzle struct {
	Size    uint8 // 1..4
	Vector  ExpressionHandle
	Pattern [4]SwizzleComponent
}

func (ExprSwizzle) expressionKind() {}

// SwizzleComponent represents a single component in a vector swizzle.
type SwizzleComponent uint8

const (
	SwizzleX SwizzleComponent = 0
	SwizzleY SwizzleComponent = 1
	SwizzleZ SwizzleComponent = 2
	SwizzleW SwizzleComponent = 3
)

// ExprMember accesses a struct member.
type ExprMember struct {
	Base   ExpressionHandle
	Member uint32
}

func (ExprMember) expressionKind() {}

// ExprAccessIndex accesses a vector component or matrix column with a
// compile-time constant index.
type ExprAccessIndex struct {
	Base  ExpressionHandle
	Index uint32
}

func (ExprAccessIndex) expressionKind() {}

// ExprAccess performs array/vector/matrix access with a computed index.
// The index operand must be an integer type (signed or unsigned).
type ExprAccess struct {
	Base  ExpressionHandle
	Index ExpressionHandle
}

func (ExprAccess) expressionKind() {}

// ExprUnary applies a unary operator to an expression.
type ExprUnary struct {
	Op   UnaryOperator
	Expr ExpressionHandle
}

func (ExprUnary) expressionKind() {}

// UnaryOperator represents unary operations.
type UnaryOperator uint8

const (
	UnaryNegate     UnaryOperator = iota // Arithmetic negation
	UnaryLogicalNot                      // Logical not (!)
)

// ExprBinary applies a binary operator to two expressions.
type ExprBinary struct {
	Op    BinaryOperator
	Left  ExpressionHandle
	Right ExpressionHandle
}

func (ExprBinary) expressionKind() {}

// BinaryOperator represents binary operations.
type BinaryOperator uint8

const (
	// Arithmetic operations
	BinaryAdd      BinaryOperator = iota // Addition
	BinarySubtract                       // Subtraction
	BinaryMultiply                       // Multiplication
	BinaryDivide                         // Division
	BinaryModulo                         // Integer remainder

	// Comparison operations
	BinaryEqual        // Equal (==)
	BinaryNotEqual     // Not equal (!=)
	BinaryLess         // Less than (<)
	BinaryLessEqual    // Less than or equal (<=)
	BinaryGreater      // Greater than (>)
	BinaryGreaterEqual // Greater than or equal (>=)

	// Logical operations
	BinaryLogicalAnd // Logical AND (&&)
	BinaryLogicalOr  // Logical OR (||)
)

// Symbol returns the infix operator shared by both dialects.
func (op BinaryOperator) Symbol() string {
	switch op {
	case BinaryAdd:
		return "+"
	case BinarySubtract:
		return "-"
	case BinaryMultiply:
		return "*"
	case BinaryDivide:
		return "/"
	case BinaryModulo:
		return "%"
	case BinaryEqual:
		return "=="
	case BinaryNotEqual:
		return "!="
	case BinaryLess:
		return "<"
	case BinaryLessEqual:
		return "<="
	case BinaryGreater:
		return ">"
	case BinaryGreaterEqual:
		return ">="
	case BinaryLogicalAnd:
		return "&&"
	case BinaryLogicalOr:
		return "||"
	default:
		return "?"
	}
}

// IsComparison reports whether the operator yields a bool.
func (op BinaryOperator) IsComparison() bool {
	return op >= BinaryEqual && op <= BinaryGreaterEqual
}

// IsLogical reports whether the operator takes bool operands.
func (op BinaryOperator) IsLogical() bool {
	return op == BinaryLogicalAnd || op == BinaryLogicalOr
}

// ExprSelect selects between two values based on a boolean condition.
// Equivalent to the ternary operator (condition ? accept : reject).
type ExprSelect struct {
	Condition ExpressionHandle
	Accept    ExpressionHandle
	Reject    ExpressionHandle
}

func (ExprSelect) expressionKind() {}

// ExprMath applies a built-in mathematical function.
type ExprMath struct {
	Fun  MathFunction
	Args []ExpressionHandle
}

func (ExprMath) expressionKind() {}

// MathFunction represents built-in mathematical functions.
type MathFunction uint8

const (
	// Comparison functions
	MathAbs   MathFunction = iota // Absolute value
	MathMin                       // Minimum
	MathMax                       // Maximum
	MathClamp                     // Clamp to range
	MathSign                      // Sign of value

	// Trigonometric functions
	MathCos   // Cosine
	MathSin   // Sine
	MathTan   // Tangent
	MathAcos  // Arc cosine
	MathAsin  // Arc sine
	MathAtan  // Arc tangent
	MathAtan2 // Two-argument arc tangent

	// Angle conversion
	MathRadians // Convert degrees to radians
	MathDegrees // Convert radians to degrees

	// Decomposition functions
	MathCeil  // Round up to integer
	MathFloor // Round down to integer
	MathFract // Fractional part
	MathMod   // Floored float modulo

	// Exponential functions
	MathExp         // Natural exponential (e^x)
	MathExp2        // Base-2 exponential (2^x)
	MathLog         // Natural logarithm
	MathLog2        // Base-2 logarithm
	MathPow         // Power (x^y)
	MathSqrt        // Square root
	MathInverseSqrt // Inverse square root

	// Geometric functions
	MathDot       // Dot product
	MathCross     // Cross product
	MathDistance  // Distance between points
	MathLength    // Vector length
	MathNormalize // Normalize vector
	MathReflect   // Reflect vector

	// Computational functions
	MathMix        // Linear interpolation
	MathStep       // Step function
	MathSmoothStep // Smooth step function

	// Derivatives
	MathDdx    // Partial derivative in x
	MathDdy    // Partial derivative in y
	MathFwidth // Sum of absolute derivatives

	mathFunctionCount
)

// mathArity holds the argument count of each math function.
var mathArity = [mathFunctionCount]uint8{
	MathAbs: 1, MathMin: 2, MathMax: 2, MathClamp: 3, MathSign: 1,
	MathCos: 1, MathSin: 1, MathTan: 1, MathAcos: 1, MathAsin: 1, MathAtan: 1, MathAtan2: 2,
	MathRadians: 1, MathDegrees: 1,
	MathCeil: 1, MathFloor: 1, MathFract: 1, MathMod: 2,
	MathExp: 1, MathExp2: 1, MathLog: 1, MathLog2: 1, MathPow: 2, MathSqrt: 1, MathInverseSqrt: 1,
	MathDot: 2, MathCross: 2, MathDistance: 2, MathLength: 1, MathNormalize: 1, MathReflect: 2,
	MathMix: 3, MathStep: 2, MathSmoothStep: 3,
	MathDdx: 1, MathDdy: 1, MathFwidth: 1,
}

// Arity returns the number of arguments the function takes.
func (f MathFunction) Arity() int {
	if f >= mathFunctionCount {
		return 0
	}
	return int(mathArity[f])
}

var mathNames = [mathFunctionCount]string{
	"abs", "min", "max", "clamp", "sign",
	"cos", "sin", "tan", "acos", "asin", "atan", "atan2",
	"radians", "degrees",
	"ceil", "floor", "fract", "mod",
	"exp", "exp2", "log", "log2", "pow", "sqrt", "inverseSqrt",
	"dot", "cross", "distance", "length", "normalize", "reflect",
	"mix", "step", "smoothstep",
	"ddx", "ddy", "fwidth",
}

// String returns the function name.
func (f MathFunction) String() string {
	if f >= mathFunctionCount {
		return "unknown"
	}
	return mathNames[f]
}

// IsDerivative reports whether the function is a screen-space derivative.
func (f MathFunction) IsDerivative() bool {
	return f == MathDdx || f == MathDdy || f == MathFwidth
}

// ExprAs performs a numeric conversion, keeping the vector size.
type ExprAs struct {
	Expr ExpressionHandle
	Kind ScalarKind
}

func (ExprAs) expressionKind() {}

// ExprResource references a named resource.
type ExprResource struct {
	Resource ResourceHandle
}

func (ExprResource) expressionKind() {}

// ExprBuiltin references a built-in stage value.
type ExprBuiltin struct {
	Builtin BuiltinValue
}

func (ExprBuiltin) expressionKind() {}

// BuiltinValue represents built-in values.
type BuiltinValue uint8

const (
	BuiltinPosition      BuiltinValue = iota // Vertex clip-space position output
	BuiltinFragCoord                         // Fragment window coordinate input
	BuiltinVertexIndex                       // Vertex index input
	BuiltinInstanceIndex                     // Instance index input
	BuiltinFrontFacing                       // Fragment facing input
)

// String returns the builtin name.
func (b BuiltinValue) String() string {
	switch b {
	case BuiltinPosition:
		return "position"
	case BuiltinFragCoord:
		return "frag_coord"
	case BuiltinVertexIndex:
		return "vertex_index"
	case BuiltinInstanceIndex:
		return "instance_index"
	case BuiltinFrontFacing:
		return "front_facing"
	default:
		return "unknown"
	}
}

// Stage returns the only stage the builtin is available in.
func (b BuiltinValue) Stage() ShaderStage {
	switch b {
	case BuiltinFragCoord, BuiltinFrontFacing:
		return StageFragment
	default:
		return StageVertex
	}
}

// ExprLocal references a let or var binding.
type ExprLocal struct {
	Local LocalHandle
}

func (ExprLocal) expressionKind() {}

// ExprArgument references a function parameter by its index.
type ExprArgument struct {
	Function FunctionHandle
	Index    uint32
}

func (ExprArgument) expressionKind() {}

// ExprCall is the value of a user function call.
type ExprCall struct {
	Function  FunctionHandle
	Arguments []ExpressionHandle
}

func (ExprCall) expressionKind() {}

// ExprImageSample samples a texture.
type ExprImageSample struct {
	Texture    ResourceHandle
	Sampler    ResourceHandle
	Coordinate ExpressionHandle
	Level      *ExpressionHandle // explicit level of detail
}

func (ExprImageSample) expressionKind() {}

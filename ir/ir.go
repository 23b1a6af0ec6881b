package ir

// Module represents a shader program in IR form.
// A module holds one vertex/fragment pair (plus any helper functions),
// so the varying numbering space is module-wide.
type Module struct {
	// Types holds all type definitions
	Types []Type

	// Structs holds struct/block descriptors in declaration order
	Structs []StructDescriptor

	// Expressions is the node arena shared by every function
	Expressions []Expression

	// Resources holds interned resource references
	Resources []Resource

	// Locals holds let/var bindings of every function
	Locals []LocalVariable

	// Functions holds user functions and entry point bodies
	Functions []Function

	// EntryPoints holds shader entry points
	EntryPoints []EntryPoint

	typeIndex     map[string]TypeHandle
	resourceIndex map[resourceKey]ResourceHandle
}

// NewModule creates an empty module.
func NewModule() *Module {
	return &Module{
		typeIndex:     make(map[string]TypeHandle, 16),
		resourceIndex: make(map[resourceKey]ResourceHandle, 16),
	}
}

// EntryPoint represents a shader entry point.
type EntryPoint struct {
	Name      string
	Stage     ShaderStage
	Function  FunctionHandle
	Workgroup [3]uint32 // For compute shaders

	// Feedback describes vertex output capture, if requested.
	Feedback *Feedback
}

// ShaderStage represents a shader stage.
type ShaderStage uint8

const (
	StageVertex ShaderStage = iota
	StageFragment
	StageCompute
)

// String returns the stage name.
func (s ShaderStage) String() string {
	switch s {
	case StageVertex:
		return "vertex"
	case StageFragment:
		return "fragment"
	case StageCompute:
		return "compute"
	default:
		return "unknown"
	}
}

// Handle types for referencing IR objects
type (
	TypeHandle       uint32
	StructHandle     uint32
	FunctionHandle   uint32
	ResourceHandle   uint32
	LocalHandle      uint32
	ExpressionHandle uint32
)

// Type represents a type in the IR.
type Type struct {
	Name  string
	Inner TypeInner
}

// TypeInner represents the inner type kind.
type TypeInner interface {
	typeInner()
}

// ScalarType represents scalar types. All scalars are 32 bits wide.
type ScalarType struct {
	Kind ScalarKind
}

func (ScalarType) typeInner() {}

// ScalarKind represents scalar type kinds.
type ScalarKind uint8

const (
	ScalarFloat ScalarKind = iota // Floating point
	ScalarSint                    // Signed integer
	ScalarUint                    // Unsigned integer
	ScalarBool                    // Boolean
)

// String returns a readable kind name.
func (k ScalarKind) String() string {
	switch k {
	case ScalarFloat:
		return "float"
	case ScalarSint:
		return "int"
	case ScalarUint:
		return "uint"
	case ScalarBool:
		return "bool"
	default:
		return "unknown"
	}
}

// VectorType represents vector types.
type VectorType struct {
	Size VectorSize
	Kind ScalarKind
}

func (VectorType) typeInner() {}

// VectorSize represents vector sizes.
type VectorSize uint8

const (
	Vec2 VectorSize = 2
	Vec3 VectorSize = 3
	Vec4 VectorSize = 4
)

// MatrixType represents float matrix types.
type MatrixType struct {
	Columns VectorSize
	Rows    VectorSize
}

func (MatrixType) typeInner() {}

// ArrayType represents a fixed-length array. Size 0 means runtime-sized,
// which only storage buffers may use.
type ArrayType struct {
	Base TypeHandle
	Size uint32
}

func (ArrayType) typeInner() {}

// StructType references a struct descriptor.
type StructType struct {
	Struct StructHandle
}

func (StructType) typeInner() {}

// TextureType represents a sampled float texture.
type TextureType struct {
	Dim ImageDimension
}

func (TextureType) typeInner() {}

// ImageDimension represents texture dimensions.
type ImageDimension uint8

const (
	Dim2D ImageDimension = iota
	DimCube
)

// SamplerType represents a (filtering) sampler.
type SamplerType struct{}

func (SamplerType) typeInner() {}

// StructDescriptor is a named, ordered list of members.
// Member order is preserved by every writer.
type StructDescriptor struct {
	Name    string
	Members []StructMember
}

// StructMember represents a struct member. Count > 0 makes the member a
// fixed-length array of Type.
type StructMember struct {
	Name  string
	Type  TypeHandle
	Count uint32
}

// MemberIndex returns the index of the named member, or -1.
func (s *StructDescriptor) MemberIndex(name string) int {
	for i := range s.Members {
		if s.Members[i].Name == name {
			return i
		}
	}
	return -1
}

// ResourceRole identifies what a named resource reference stands for.
type ResourceRole uint8

const (
	RoleAttribute ResourceRole = iota // Per-vertex input
	RoleVarying                       // Vertex output / fragment input
	RoleOutput                        // Fragment colour output
	RoleUniform                       // Uniform value or block
	RoleTexture                       // Sampled texture
	RoleSampler                       // Sampler
	RoleStorage                       // Storage buffer
)

// String returns the role name.
func (r ResourceRole) String() string {
	switch r {
	case RoleAttribute:
		return "attribute"
	case RoleVarying:
		return "varying"
	case RoleOutput:
		return "output"
	case RoleUniform:
		return "uniform"
	case RoleTexture:
		return "texture"
	case RoleSampler:
		return "sampler"
	case RoleStorage:
		return "storage"
	default:
		return "unknown"
	}
}

// IsLocationRole reports whether the role is numbered by location
// (as opposed to group/binding).
func (r ResourceRole) IsLocationRole() bool {
	return r == RoleAttribute || r == RoleVarying || r == RoleOutput
}

// Resource is a named resource reference.
type Resource struct {
	Role ResourceRole
	Name string
	Type TypeHandle

	// Stage scopes attribute and output numbering. Ignored for other roles.
	Stage ShaderStage

	// Slot is an explicit location or binding index, if given.
	Slot *uint32

	// Group is the binding group for uniform-like roles.
	Group uint32

	// Flat disables interpolation for varyings.
	Flat bool

	// Sampler is the companion sampler of a texture, once one was needed.
	Sampler *ResourceHandle
}

type resourceKey struct {
	role  ResourceRole
	name  string
	stage ShaderStage
}

func keyFor(role ResourceRole, name string, stage ShaderStage) resourceKey {
	switch role {
	case RoleAttribute, RoleOutput:
		return resourceKey{role: role, name: name, stage: stage}
	default:
		// One space per module for everything else.
		return resourceKey{role: role, name: name}
	}
}

// LookupResource returns the handle of an interned resource.
func (m *Module) LookupResource(role ResourceRole, name string, stage ShaderStage) (ResourceHandle, bool) {
	h, ok := m.resourceIndex[keyFor(role, name, stage)]
	return h, ok
}

// InternResource returns the existing handle for (role, name) in the stage's
// space, or appends res. The boolean reports whether res was new.
func (m *Module) InternResource(res Resource) (ResourceHandle, bool) {
	if m.resourceIndex == nil {
		m.resourceIndex = make(map[resourceKey]ResourceHandle)
	}
	key := keyFor(res.Role, res.Name, res.Stage)
	if h, ok := m.resourceIndex[key]; ok {
		return h, false
	}
	h := ResourceHandle(len(m.Resources)) //nolint:gosec // G115: arena index
	m.Resources = append(m.Resources, res)
	m.resourceIndex[key] = h
	return h, true
}

// Function represents a function definition.
// Entry point bodies are functions too.
type Function struct {
	Name      string
	Arguments []FunctionArgument
	Result    *TypeHandle
	Body      Block

	// Locals lists the bindings declared in this function, in order.
	Locals []LocalHandle

	// Resources lists the resources touched while building the body,
	// in first-encounter order.
	Resources []ResourceHandle

	// Calls lists the functions called by the body.
	Calls []FunctionHandle
}

// FunctionArgument represents a function argument.
type FunctionArgument struct {
	Name string
	Type TypeHandle
}

// LocalVariable represents a let or var binding.
type LocalVariable struct {
	Name    string
	Type    TypeHandle
	Init    *ExpressionHandle // nil for an uninitialized var
	Mutable bool
}

// Feedback describes the capture of vertex outputs.
type Feedback struct {
	// Varyings lists the captured varyings in capture order.
	Varyings []ResourceHandle
	Mode     FeedbackMode
}

// FeedbackMode selects the capture buffer layout.
type FeedbackMode uint8

const (
	// FeedbackInterleaved packs all captured values into one buffer.
	FeedbackInterleaved FeedbackMode = iota
	// FeedbackSeparate writes each captured value to its own buffer.
	FeedbackSeparate
)

// String returns the mode name.
func (m FeedbackMode) String() string {
	if m == FeedbackSeparate {
		return "separate"
	}
	return "interleaved"
}

// Checkpoint records arena lengths so a failed build can be rolled back.
type Checkpoint struct {
	types, structs, exprs, resources, locals, functions, entries int
}

// Checkpoint captures the current arena sizes.
func (m *Module) Checkpoint() Checkpoint {
	return Checkpoint{
		types:     len(m.Types),
		structs:   len(m.Structs),
		exprs:     len(m.Expressions),
		resources: len(m.Resources),
		locals:    len(m.Locals),
		functions: len(m.Functions),
		entries:   len(m.EntryPoints),
	}
}

// Rollback discards everything added after cp.
func (m *Module) Rollback(cp Checkpoint) {
	for key, h := range m.typeIndex {
		if int(h) >= cp.types {
			delete(m.typeIndex, key)
		}
	}
	for key, h := range m.resourceIndex {
		if int(h) >= cp.resources {
			delete(m.resourceIndex, key)
		}
	}
	m.Types = m.Types[:cp.types]
	m.Structs = m.Structs[:cp.structs]
	m.Expressions = m.Expressions[:cp.exprs]
	m.Resources = m.Resources[:cp.resources]
	m.Locals = m.Locals[:cp.locals]
	m.Functions = m.Functions[:cp.functions]
	m.EntryPoints = m.EntryPoints[:cp.entries]
	// Companion samplers created after cp are gone.
	for i := range m.Resources {
		if s := m.Resources[i].Sampler; s != nil && int(*s) >= cp.resources {
			m.Resources[i].Sampler = nil
		}
	}
}

// Inner returns the inner type of a handle, or nil when out of range.
func (m *Module) Inner(h TypeHandle) TypeInner {
	if int(h) >= len(m.Types) {
		return nil
	}
	return m.Types[h].Inner
}

// ExprType returns the result type of an expression.
func (m *Module) ExprType(h ExpressionHandle) TypeHandle {
	return m.Expressions[h].Type
}

// AddExpression appends an expression to the arena.
func (m *Module) AddExpression(kind ExpressionKind, ty TypeHandle) ExpressionHandle {
	h := ExpressionHandle(len(m.Expressions)) //nolint:gosec // G115: arena index
	m.Expressions = append(m.Expressions, Expression{Kind: kind, Type: ty})
	return h
}

// AddLocal appends a local binding to the arena.
func (m *Module) AddLocal(local LocalVariable) LocalHandle {
	h := LocalHandle(len(m.Locals)) //nolint:gosec // G115: arena index
	m.Locals = append(m.Locals, local)
	return h
}

// EntryPointByName returns the index of the named entry point, or -1.
func (m *Module) EntryPointByName(name string) int {
	for i := range m.EntryPoints {
		if m.EntryPoints[i].Name == name {
			return i
		}
	}
	return -1
}

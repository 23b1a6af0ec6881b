package shade

import (
	"github.com/gogpu/shade/ir"
)

// ResourceOption adjusts a resource declaration.
type ResourceOption func(*resourceConfig)

type resourceConfig struct {
	slot     *uint32
	group    uint32
	flat     bool
	hasGroup bool
}

// Location requests an explicit location for an attribute, varying or
// output.
func Location(n uint32) ResourceOption {
	return func(c *resourceConfig) { c.slot = &n }
}

// Binding requests an explicit binding index for a uniform, texture or
// sampler.
func Binding(n uint32) ResourceOption {
	return func(c *resourceConfig) { c.slot = &n }
}

// Group places a uniform, texture or sampler in a binding group. The
// default group is 0.
func Group(n uint32) ResourceOption {
	return func(c *resourceConfig) { c.group, c.hasGroup = n, true }
}

// Flat disables interpolation of a varying. Integer varyings are always
// flat.
func Flat() ResourceOption {
	return func(c *resourceConfig) { c.flat = true }
}

// declareResource interns a resource and records it in the active body.
func (s *Scope) declareResource(role ir.ResourceRole, name string, ty ir.TypeHandle, opts []ResourceOption) ir.ResourceHandle {
	b := s.b
	if !isIdentifier(name) {
		b.failf(ir.ErrInvalidArity, "invalid %s name %q", role, name)
	}
	var cfg resourceConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	if role.IsLocationRole() && cfg.hasGroup {
		b.failf(ir.ErrInvalidArity, "%s %q cannot take a binding group", role, name)
	}
	if cfg.flat && role != ir.RoleVarying {
		b.failf(ir.ErrInvalidArity, "only varyings can be flat, %s %q is not", role, name)
	}
	if role == ir.RoleVarying && b.module.IsIntegral(ty) {
		cfg.flat = true
	}

	res := ir.Resource{Role: role, Name: name, Type: ty, Slot: cfg.slot, Group: cfg.group, Flat: cfg.flat}
	if role == ir.RoleAttribute || role == ir.RoleOutput {
		res.Stage = s.fr.stage
	}
	h, created := b.module.InternResource(res)
	if !created {
		prev := b.module.Resources[h]
		switch {
		case prev.Type != ty:
			b.failf(ir.ErrTypeMismatch, "%s %q redeclared as %s, was %s", role, name,
				b.module.TypeString(ty), b.module.TypeString(prev.Type))
		case !sameSlot(prev.Slot, cfg.slot):
			b.failf(ir.ErrSlotCollision, "%s %q redeclared with a different explicit slot", role, name)
		case prev.Group != cfg.group:
			b.failf(ir.ErrSlotCollision, "%s %q redeclared in group %d, was %d", role, name, cfg.group, prev.Group)
		case prev.Flat != cfg.flat:
			b.failf(ir.ErrTypeMismatch, "%s %q redeclared with different interpolation", role, name)
		}
	}
	s.use(h)
	return h
}

func sameSlot(a, b *uint32) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func (s *Scope) use(h ir.ResourceHandle) {
	if !s.fr.seenRes[h] {
		s.fr.seenRes[h] = true
		s.fr.resources = append(s.fr.resources, h)
	}
}

func (s *Scope) resourceRef(h ir.ResourceHandle) node {
	return s.b.add(ir.ExprResource{Resource: h}, s.b.module.Resources[h].Type)
}

// requireEntry fails unless the active body is an entry point of one of
// the given stages.
func (s *Scope) requireEntry(what string, stages ...ir.ShaderStage) {
	if s.fr.entry {
		for _, st := range stages {
			if s.fr.stage == st {
				return
			}
		}
	}
	if len(stages) == 1 {
		s.b.failf(ir.ErrUnsupportedConstruct, "%s is only available in %s entry points", what, stages[0])
	}
	s.b.failf(ir.ErrUnsupportedConstruct, "%s is only available in entry points", what)
}

// Attribute declares a per-vertex input.
func (s *Scope) Attribute(name string, t Type, opts ...ResourceOption) Value {
	b := s.enter()
	s.requireEntry("attribute "+name, ir.StageVertex)
	ty := b.register(t)
	h := s.declareResource(ir.RoleAttribute, name, ty, opts)
	return b.wrap(s.resourceRef(h))
}

// Varying declares a value passed from the vertex to the fragment stage.
// The vertex stage writes it with Assign; the fragment stage reads it.
func (s *Scope) Varying(name string, t Type, opts ...ResourceOption) Value {
	b := s.enter()
	s.requireEntry("varying "+name, ir.StageVertex, ir.StageFragment)
	ty := b.register(t)
	h := s.declareResource(ir.RoleVarying, name, ty, opts)
	return b.wrap(s.resourceRef(h))
}

// Bundle is a group of varyings declared from one struct descriptor.
type Bundle struct {
	b      *Builder
	name   string
	fields map[string]Value
}

// Field returns the varying for a member of the bundle's struct.
func (g Bundle) Field(name string) Value {
	v, ok := g.fields[name]
	if !ok {
		g.b.failf(ir.ErrInvalidArity, "bundle %q has no member %q", g.name, name)
	}
	return v
}

// VaryingBundle declares one varying per member of desc, named
// <name>_<member>, in member order.
func (s *Scope) VaryingBundle(name string, desc *StructDesc, opts ...ResourceOption) Bundle {
	b := s.enter()
	s.requireEntry("varying "+name, ir.StageVertex, ir.StageFragment)
	if desc == nil || desc.b != b {
		b.failf(ir.ErrInvalidArity, "bundle %q: struct belongs to another builder", name)
	}
	g := Bundle{b: b, name: name, fields: make(map[string]Value, len(desc.fields))}
	for _, f := range desc.fields {
		if f.Count > 0 || f.Type.kind == kindStruct {
			b.failf(ir.ErrUnsupportedConstruct, "bundle %q: member %q must be a scalar or vector", name, f.Name)
		}
		g.fields[f.Name] = s.Varying(name+"_"+f.Name, f.Type, opts...)
	}
	return g
}

// Uniform declares a uniform value of any non-opaque type.
func (s *Scope) Uniform(name string, t Type, opts ...ResourceOption) Value {
	b := s.enter()
	ty := b.register(t)
	h := s.declareResource(ir.RoleUniform, name, ty, opts)
	return b.wrap(s.resourceRef(h))
}

// UniformBlock declares a uniform of struct type. Members keep the
// descriptor's order in both dialects.
func (s *Scope) UniformBlock(name string, desc *StructDesc, opts ...ResourceOption) StructValue {
	if desc == nil {
		s.b.failf(ir.ErrInvalidArity, "uniform block %q has no struct", name)
	}
	return s.Uniform(name, desc.Type(), opts...).AsStruct()
}

// Output declares a fragment output.
func (s *Scope) Output(name string, t Type, opts ...ResourceOption) Value {
	b := s.enter()
	s.requireEntry("output "+name, ir.StageFragment)
	ty := b.register(t)
	h := s.declareResource(ir.RoleOutput, name, ty, opts)
	return b.wrap(s.resourceRef(h))
}

// SetPosition writes the clip-space position. Vec2 and vec3 values are
// not extended; pass a vec4.
func (s *Scope) SetPosition(v any) {
	b := s.enter()
	s.requireEntry("SetPosition", ir.StageVertex)
	pos := s.builtin(ir.BuiltinPosition, b.module.VectorOf(ir.Vec4, ir.ScalarFloat))
	s.Assign(b.wrap(pos), v)
}

// SetFragColor writes the default colour output, a vec4 named fragColor.
func (s *Scope) SetFragColor(v any) {
	s.enter()
	s.requireEntry("SetFragColor", ir.StageFragment)
	s.Assign(s.Output("fragColor", Vec4), v)
}

func (s *Scope) builtin(bv ir.BuiltinValue, ty ir.TypeHandle) node {
	s.requireEntry("builtin "+bv.String(), bv.Stage())
	return s.b.add(ir.ExprBuiltin{Builtin: bv}, ty)
}

// FragCoord returns the window-space fragment coordinate.
func (s *Scope) FragCoord() Vector {
	b := s.enter()
	return Vector{s.builtin(ir.BuiltinFragCoord, b.module.VectorOf(ir.Vec4, ir.ScalarFloat))}
}

// FrontFacing reports whether the fragment belongs to a front face.
func (s *Scope) FrontFacing() Scalar {
	b := s.enter()
	return Scalar{s.builtin(ir.BuiltinFrontFacing, b.module.ScalarOf(ir.ScalarBool))}
}

// VertexIndex returns the index of the current vertex as an int.
func (s *Scope) VertexIndex() Scalar {
	b := s.enter()
	return Scalar{s.builtin(ir.BuiltinVertexIndex, b.module.ScalarOf(ir.ScalarSint))}
}

// InstanceIndex returns the index of the current instance as an int.
func (s *Scope) InstanceIndex() Scalar {
	b := s.enter()
	return Scalar{s.builtin(ir.BuiltinInstanceIndex, b.module.ScalarOf(ir.ScalarSint))}
}

// Texture is a sampled float texture.
type Texture struct {
	node
	res ir.ResourceHandle
}

// Sampler is a standalone sampler for SampleWith. The legacy dialect
// combines textures and samplers and ignores it.
type Sampler struct {
	b   *Builder
	res ir.ResourceHandle
}

func (s *Scope) texture(name string, dim ir.ImageDimension, opts []ResourceOption) Texture {
	b := s.enter()
	ty := b.module.RegisterType(ir.TextureType{Dim: dim})
	h := s.declareResource(ir.RoleTexture, name, ty, opts)
	return Texture{node: s.resourceRef(h), res: h}
}

// Texture2D declares a 2D texture.
func (s *Scope) Texture2D(name string, opts ...ResourceOption) Texture {
	return s.texture(name, ir.Dim2D, opts)
}

// TextureCube declares a cube texture, sampled with a vec3 direction.
func (s *Scope) TextureCube(name string, opts ...ResourceOption) Texture {
	return s.texture(name, ir.DimCube, opts)
}

// Sampler declares a sampler.
func (s *Scope) Sampler(name string, opts ...ResourceOption) Sampler {
	b := s.enter()
	h := s.declareResource(ir.RoleSampler, name, b.module.RegisterType(ir.SamplerType{}), opts)
	return Sampler{b: b, res: h}
}

// companion returns the sampler paired with the texture, declaring
// <texture>_sampler in the texture's group on first use.
func (t Texture) companion() ir.ResourceHandle {
	m := t.b.module
	if sh := m.Resources[t.res].Sampler; sh != nil {
		return *sh
	}
	tex := m.Resources[t.res]
	h, _ := m.InternResource(ir.Resource{
		Role:  ir.RoleSampler,
		Name:  tex.Name + "_sampler",
		Type:  m.RegisterType(ir.SamplerType{}),
		Group: tex.Group,
	})
	m.Resources[t.res].Sampler = &h
	return h
}

func (t Texture) sample(sampler ir.ResourceHandle, uv any, level any) Vector {
	b := t.b
	fr := b.top()
	s := &Scope{b: b, fr: fr}
	b.checkNode(t.node)
	s.use(sampler)

	coord := ir.Vec2
	if b.module.Inner(t.t).(ir.TextureType).Dim == ir.DimCube {
		coord = ir.Vec3
	}
	want := b.module.VectorOf(coord, ir.ScalarFloat)
	c := b.value(uv, ir.ScalarFloat)
	if c.t != want {
		b.failf(ir.ErrTypeMismatch, "texture %q needs %s coordinates, got %s",
			b.module.Resources[t.res].Name, b.module.TypeString(want), b.module.TypeString(c.t))
	}
	kind := ir.ExprImageSample{Texture: t.res, Sampler: sampler, Coordinate: c.h}
	operands := []node{t.node, c}
	if level != nil {
		l := b.value(level, ir.ScalarFloat)
		if !b.module.IsScalar(l.t, ir.ScalarFloat) {
			b.failf(ir.ErrTypeMismatch, "level of detail must be a float, got %s", b.module.TypeString(l.t))
		}
		lh := l.h
		kind.Level = &lh
		operands = append(operands, l)
	}
	return Vector{b.add(kind, b.module.VectorOf(ir.Vec4, ir.ScalarFloat), operands...)}
}

// Sample reads the texture at uv with its companion sampler.
func (t Texture) Sample(uv any) Vector {
	t.b.top()
	return t.sample(t.companion(), uv, nil)
}

// SampleWith reads the texture at uv with an explicit sampler.
func (t Texture) SampleWith(s Sampler, uv any) Vector {
	t.b.top()
	if s.b != t.b {
		t.b.failf(ir.ErrInvalidArity, "sampler belongs to another builder")
	}
	return t.sample(s.res, uv, nil)
}

// SampleLevel reads the texture at an explicit level of detail.
func (t Texture) SampleLevel(uv any, lod any) Vector {
	t.b.top()
	return t.sample(t.companion(), uv, lod)
}

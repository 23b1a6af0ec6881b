package ir

import (
	"fmt"
	"math"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatFloat(t *testing.T) {
	tests := []struct {
		in   float32
		want string
	}{
		{0, "0.0"},
		{1, "1.0"},
		{-2, "-2.0"},
		{0.5, "0.5"},
		{1.5, "1.5"},
		{0.1, "0.1"},
		{1e6, "1.0e+06"},
		{1e-7, "1.0e-07"},
		{3.4028235e38, "3.4028235e+38"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatFloat(tt.in))
		})
	}
}

func TestFormatFloatRoundTrip(t *testing.T) {
	for _, v := range []float32{0.1, 1.0 / 3, 2.5e-5, 123456.79, -7.25, math.SmallestNonzeroFloat32} {
		s := FormatFloat(v)
		assert.Contains(t, s, ".")
		parsed, err := strconv.ParseFloat(s, 32)
		require.NoError(t, err)
		assert.Equal(t, v, float32(parsed), s)
	}
}

func TestIsFinite(t *testing.T) {
	assert.True(t, IsFinite(1))
	assert.False(t, IsFinite(float32(math.NaN())))
	assert.False(t, IsFinite(float32(math.Inf(-1))))
}

func TestRegisterTypeDeduplicates(t *testing.T) {
	m := NewModule()
	a := m.VectorOf(Vec3, ScalarFloat)
	b := m.RegisterType(VectorType{Size: Vec3, Kind: ScalarFloat})
	c := m.VectorOf(Vec3, ScalarSint)
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, m.Types, 2)

	_, s1 := m.RegisterStruct(StructDescriptor{Name: "A"})
	_, s2 := m.RegisterStruct(StructDescriptor{Name: "B"})
	assert.NotEqual(t, s1, s2, "structs are nominal")
}

func TestResolveBinary(t *testing.T) {
	m := NewModule()
	f := m.ScalarOf(ScalarFloat)
	i := m.ScalarOf(ScalarSint)
	b := m.ScalarOf(ScalarBool)
	v3 := m.VectorOf(Vec3, ScalarFloat)
	v4 := m.VectorOf(Vec4, ScalarFloat)
	iv2 := m.VectorOf(Vec2, ScalarSint)
	m4 := m.MatrixOf(Vec4, Vec4)
	m3x4 := m.MatrixOf(Vec3, Vec4)

	tests := []struct {
		name        string
		op          BinaryOperator
		left, right TypeHandle
		want        TypeHandle
		err         bool
	}{
		{"float+float", BinaryAdd, f, f, f, false},
		{"vec+float", BinaryAdd, v3, f, v3, false},
		{"float*vec", BinaryMultiply, f, v4, v4, false},
		{"vec3+vec4", BinaryAdd, v3, v4, 0, true},
		{"float+int", BinaryAdd, f, i, 0, true},
		{"mat*vec", BinaryMultiply, m4, v4, v4, false},
		{"vec*mat", BinaryMultiply, v4, m4, v4, false},
		{"mat3x4*vec3", BinaryMultiply, m3x4, v3, v4, false},
		{"mat3x4*vec4", BinaryMultiply, m3x4, v4, 0, true},
		{"mat*mat", BinaryMultiply, m4, m4, m4, false},
		{"mat/mat", BinaryDivide, m4, m4, 0, true},
		{"mat+float", BinaryAdd, m4, f, 0, true},
		{"int%int", BinaryModulo, i, i, i, false},
		{"ivec%int", BinaryModulo, iv2, i, iv2, false},
		{"float%float", BinaryModulo, f, f, 0, true},
		{"float<float", BinaryLess, f, f, b, false},
		{"vec<vec", BinaryLess, v3, v3, 0, true},
		{"bool==bool", BinaryEqual, b, b, b, false},
		{"bool<bool", BinaryLess, b, b, 0, true},
		{"bool&&bool", BinaryLogicalAnd, b, b, b, false},
		{"float&&bool", BinaryLogicalAnd, f, b, 0, true},
		{"bool+bool", BinaryAdd, b, b, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := m.ResolveBinary(tt.op, tt.left, tt.right)
			if tt.err {
				require.Error(t, err)
				assert.True(t, IsKind(err, ErrTypeMismatch))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveMath(t *testing.T) {
	m := NewModule()
	f := m.ScalarOf(ScalarFloat)
	v2 := m.VectorOf(Vec2, ScalarFloat)
	v3 := m.VectorOf(Vec3, ScalarFloat)
	i := m.ScalarOf(ScalarSint)

	got, err := m.ResolveMath(MathDot, []TypeHandle{v3, v3})
	require.NoError(t, err)
	assert.Equal(t, f, got)

	got, err = m.ResolveMath(MathMix, []TypeHandle{v3, v3, f})
	require.NoError(t, err)
	assert.Equal(t, v3, got)

	_, err = m.ResolveMath(MathCross, []TypeHandle{v2, v2})
	assert.True(t, IsKind(err, ErrTypeMismatch))

	_, err = m.ResolveMath(MathSin, []TypeHandle{i})
	assert.True(t, IsKind(err, ErrTypeMismatch))

	_, err = m.ResolveMath(MathClamp, []TypeHandle{f, f})
	assert.True(t, IsKind(err, ErrInvalidArity))
}

func TestInternResourceSpaces(t *testing.T) {
	m := NewModule()
	v4 := m.VectorOf(Vec4, ScalarFloat)

	a, isNew := m.InternResource(Resource{Role: RoleAttribute, Name: "pos", Type: v4, Stage: StageVertex})
	assert.True(t, isNew)
	again, isNew := m.InternResource(Resource{Role: RoleAttribute, Name: "pos", Type: v4, Stage: StageVertex})
	assert.False(t, isNew)
	assert.Equal(t, a, again)

	out1, _ := m.InternResource(Resource{Role: RoleOutput, Name: "color", Type: v4, Stage: StageFragment})
	out2, _ := m.InternResource(Resource{Role: RoleOutput, Name: "color", Type: v4, Stage: StageVertex})
	assert.NotEqual(t, out1, out2, "outputs are numbered per stage")

	v1, _ := m.InternResource(Resource{Role: RoleVarying, Name: "uv", Type: v4, Stage: StageVertex})
	v2, _ := m.InternResource(Resource{Role: RoleVarying, Name: "uv", Type: v4, Stage: StageFragment})
	assert.Equal(t, v1, v2, "varyings share one space")
}

func TestRollback(t *testing.T) {
	m := NewModule()
	f := m.ScalarOf(ScalarFloat)
	cp := m.Checkpoint()

	m.VectorOf(Vec2, ScalarFloat)
	tex, _ := m.InternResource(Resource{Role: RoleTexture, Name: "t", Type: m.RegisterType(TextureType{})})
	m.AddExpression(ExprLiteral{Value: LiteralF32(1)}, f)
	m.Rollback(cp)

	assert.Len(t, m.Types, 1)
	assert.Empty(t, m.Expressions)
	_, ok := m.LookupResource(RoleTexture, "t", StageFragment)
	assert.False(t, ok)

	// Re-registering after a rollback yields fresh handles.
	v2 := m.VectorOf(Vec2, ScalarFloat)
	assert.Equal(t, TypeHandle(1), v2)
	tex2, isNew := m.InternResource(Resource{Role: RoleTexture, Name: "t", Type: m.RegisterType(TextureType{})})
	assert.True(t, isNew)
	assert.Equal(t, tex, tex2)
}

func TestErrorKinds(t *testing.T) {
	err := fmt.Errorf("glsl: %w", Errorf(ErrSlotCollision, "location 0 used by %q and %q", "a", "b"))
	assert.True(t, IsKind(err, ErrSlotCollision))
	assert.False(t, IsKind(err, ErrInvalidArity))
	assert.Contains(t, err.Error(), "SlotCollision")
	assert.Equal(t, "UnbalancedScope", ErrUnbalancedScope.String())
}

func TestWalkPostOrder(t *testing.T) {
	m := NewModule()
	f := m.ScalarOf(ScalarFloat)
	a := m.AddExpression(ExprLiteral{Value: LiteralF32(1)}, f)
	b := m.AddExpression(ExprLiteral{Value: LiteralF32(2)}, f)
	sum := m.AddExpression(ExprBinary{Op: BinaryAdd, Left: a, Right: b}, f)
	sq := m.AddExpression(ExprBinary{Op: BinaryMultiply, Left: sum, Right: sum}, f)

	var order []ExpressionHandle
	m.Walk(sq, func(h ExpressionHandle) { order = append(order, h) })
	assert.Equal(t, []ExpressionHandle{a, b, sum, sq}, order)
	assert.Equal(t, []ExpressionHandle{sum, sum}, m.Dependencies(sq))
}

func TestValidateRejectsBadStores(t *testing.T) {
	m := NewModule()
	f := m.ScalarOf(ScalarFloat)
	lit := m.AddExpression(ExprLiteral{Value: LiteralF32(1)}, f)
	init := lit
	local := m.AddLocal(LocalVariable{Name: "x", Type: f, Init: &init})
	ref := m.AddExpression(ExprLocal{Local: local}, f)

	m.Functions = append(m.Functions, Function{
		Name:   "main",
		Locals: []LocalHandle{local},
		Body: Block{
			{Kind: StmtLet{Local: local}},
			{Kind: StmtStore{Pointer: ref, Value: lit}},
		},
	})
	m.EntryPoints = append(m.EntryPoints, EntryPoint{Name: "main", Stage: StageFragment, Function: 0})

	errs := Validate(m)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "not assignable")

	err := Check(m)
	assert.True(t, IsKind(err, ErrInvalidModule))
}

func TestValidateStageRules(t *testing.T) {
	m := NewModule()
	v4 := m.VectorOf(Vec4, ScalarFloat)
	attr, _ := m.InternResource(Resource{Role: RoleAttribute, Name: "pos", Type: v4, Stage: StageVertex})
	read := m.AddExpression(ExprResource{Resource: attr}, v4)
	out, _ := m.InternResource(Resource{Role: RoleOutput, Name: "fragColor", Type: v4, Stage: StageFragment})
	write := m.AddExpression(ExprResource{Resource: out}, v4)

	m.Functions = append(m.Functions, Function{
		Name:      "frag",
		Resources: []ResourceHandle{attr, out},
		Body:      Block{{Kind: StmtStore{Pointer: write, Value: read}}},
	})
	m.EntryPoints = append(m.EntryPoints, EntryPoint{Name: "frag", Stage: StageFragment})

	errs := Validate(m)
	require.NotEmpty(t, errs)
	assert.Contains(t, errs[0].Error(), "read in a fragment shader")
}

func TestTextCache(t *testing.T) {
	c := NewTextCache()
	c.Put(3, DialectGLSL, "a + b")
	_, ok := c.Get(3, DialectWGSL)
	assert.False(t, ok)
	s, ok := c.Get(3, DialectGLSL)
	assert.True(t, ok)
	assert.Equal(t, "a + b", s)
	c.Reset()
	assert.Zero(t, c.Len())
}

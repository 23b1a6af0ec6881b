package shade_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/gogpu/shade"
	"github.com/gogpu/shade/glsl"
	"github.com/gogpu/shade/wgsl"
)

func triangle(t *testing.T) *shade.Program {
	t.Helper()
	b := shade.NewBuilder()
	_, err := b.Vertex("vs", func(s *shade.Scope) {
		pos := s.Attribute("position", shade.Vec2).AsVector()
		mvp := s.Uniform("mvp", shade.Mat4).AsMatrix()
		s.Assign(s.Varying("v_color", shade.Vec3), s.Attribute("color", shade.Vec3))
		s.SetPosition(mvp.MulVec(s.Vec4(pos, 0.0, 1.0)))
	})
	require.NoError(t, err)
	_, err = b.Fragment("fs", func(s *shade.Scope) {
		c := s.Varying("v_color", shade.Vec3).AsVector()
		s.SetFragColor(s.Vec4(c, 1.0))
	})
	require.NoError(t, err)
	prog, err := b.Program()
	require.NoError(t, err)
	return prog
}

func TestEndToEnd(t *testing.T) {
	prog := triangle(t)

	vs, info, err := prog.GLSL("vs", glsl.DefaultOptions())
	require.NoError(t, err)
	assert.Contains(t, vs, "uniform mat4 mvp;")
	assert.Contains(t, vs, "gl_Position = mvp * vec4(position, 0.0, 1.0);")
	assert.Equal(t, map[string]uint32{"position": 0, "color": 1}, info.AttributeLocations)

	fs, _, err := prog.GLSL("fs", glsl.DefaultOptions())
	require.NoError(t, err)
	assert.Contains(t, fs, "gl_FragColor = vec4(v_color, 1.0);")

	src, winfo, err := prog.WGSL(wgsl.DefaultOptions())
	require.NoError(t, err)
	assert.Contains(t, src, "@vertex\nfn vs(")
	assert.Contains(t, src, "@fragment\nfn fs(")
	assert.Contains(t, src, "var<uniform> mvp: mat4x4<f32>;")
	assert.Len(t, winfo.EntryPoints, 2)
}

func TestConstructorArity(t *testing.T) {
	tests := []struct {
		name string
		body func(s *shade.Scope)
		kind shade.ErrorKind
	}{
		{"too few components", func(s *shade.Scope) { s.SetPosition(s.Vec4(1.0, 2.0)) }, shade.ErrInvalidArity},
		{"too many components", func(s *shade.Scope) { s.SetPosition(s.Vec4(s.Vec3(1.0), 1.0, 2.0)) }, shade.ErrInvalidArity},
		{"matrix from scalar", func(s *shade.Scope) { s.Let("m", s.Mat2(1.0)) }, shade.ErrInvalidArity},
		{"mixed kinds", func(s *shade.Scope) { s.Let("v", s.Vec2(s.Int(1), 1.0)) }, shade.ErrInvalidArity},
		{"vector size mismatch", func(s *shade.Scope) { s.Let("v", s.Vec2(1.0).Add(s.Vec3(1.0))) }, shade.ErrTypeMismatch},
		{"non-integer index", func(s *shade.Scope) { s.Let("x", s.Vec2(1.0).At(0.5)) }, shade.ErrTypeMismatch},
		{"index out of range", func(s *shade.Scope) { s.Let("x", s.Vec2(1.0).At(2)) }, shade.ErrInvalidArity},
		{"bad swizzle", func(s *shade.Scope) { s.Let("x", s.Vec2(1.0).Swizzle("xz")) }, shade.ErrInvalidArity},
		{"placeholder let", func(s *shade.Scope) { s.Let("x", s.Float()) }, shade.ErrInvalidArity},
		{"placeholder operand", func(s *shade.Scope) { s.Let("x", s.Float().Add(1.0)) }, shade.ErrInvalidArity},
		{"int overflow", func(s *shade.Scope) { s.Let("x", s.Int(int64(1)<<40)) }, shade.ErrTypeMismatch},
		{"bad local name", func(s *shade.Scope) { s.Let("1x", 1.0) }, shade.ErrInvalidArity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := shade.NewBuilder()
			_, err := b.Vertex("vs", tt.body)
			require.Error(t, err)
			assert.True(t, shade.IsKind(err, tt.kind), err.Error())
			assert.Contains(t, err.Error(), `shade: vertex "vs"`)
		})
	}
}

func TestElseMisuse(t *testing.T) {
	t.Run("twice", func(t *testing.T) {
		b := shade.NewBuilder()
		_, err := b.Fragment("fs", func(s *shade.Scope) {
			c := s.If(true, func(*shade.Scope) {})
			c.Else(func(*shade.Scope) {})
			c.Else(func(*shade.Scope) {})
		})
		require.Error(t, err)
		assert.True(t, shade.IsKind(err, shade.ErrUnbalancedScope))
		assert.Contains(t, err.Error(), "Else given twice")
	})

	t.Run("not adjacent", func(t *testing.T) {
		b := shade.NewBuilder()
		_, err := b.Fragment("fs", func(s *shade.Scope) {
			c := s.If(true, func(*shade.Scope) {})
			s.SetFragColor(s.Vec4(1.0))
			c.Else(func(*shade.Scope) {})
		})
		require.Error(t, err)
		assert.True(t, shade.IsKind(err, shade.ErrUnbalancedScope))
		assert.Contains(t, err.Error(), "directly follow")
	})

	t.Run("from inside a branch", func(t *testing.T) {
		b := shade.NewBuilder()
		_, err := b.Fragment("fs", func(s *shade.Scope) {
			c := s.If(true, func(*shade.Scope) {})
			s.If(false, func(*shade.Scope) {
				c.Else(func(*shade.Scope) {})
			})
		})
		require.Error(t, err)
		assert.True(t, shade.IsKind(err, shade.ErrUnbalancedScope))
		assert.Contains(t, err.Error(), "another body is active")
	})

	t.Run("after the body closed", func(t *testing.T) {
		b := shade.NewBuilder()
		var c *shade.Cond
		_, err := b.Fragment("fs", func(s *shade.Scope) {
			c = s.If(true, func(*shade.Scope) {})
		})
		require.NoError(t, err)

		c.Else(func(*shade.Scope) {})
		_, err = b.Program()
		require.Error(t, err)
		assert.True(t, shade.IsKind(err, shade.ErrUnbalancedScope))
		assert.Contains(t, err.Error(), "enclosing body was closed")
	})
}

func TestValueScope(t *testing.T) {
	t.Run("branch local used after the branch", func(t *testing.T) {
		b := shade.NewBuilder()
		_, err := b.Fragment("fs", func(s *shade.Scope) {
			var inner shade.Value
			s.If(true, func(s *shade.Scope) {
				inner = s.Let("x", 1.0)
			})
			s.SetFragColor(s.Vec4(inner))
		})
		require.Error(t, err)
		assert.True(t, shade.IsKind(err, shade.ErrUnbalancedScope))
		assert.Contains(t, err.Error(), "closed block")
	})

	t.Run("value from another body", func(t *testing.T) {
		b := shade.NewBuilder()
		var leaked shade.Value
		_, err := b.Vertex("vs", func(s *shade.Scope) {
			leaked = s.Vec4(1.0)
			s.SetPosition(leaked)
		})
		require.NoError(t, err)
		_, err = b.Fragment("fs", func(s *shade.Scope) {
			s.SetFragColor(leaked)
		})
		require.Error(t, err)
		assert.True(t, shade.IsKind(err, shade.ErrUnbalancedScope))
		assert.Contains(t, err.Error(), `value created in "vs" used in "fs"`)
	})

	t.Run("value from another builder", func(t *testing.T) {
		other := shade.NewBuilder()
		var foreign shade.Value
		_, err := other.Vertex("vs", func(s *shade.Scope) {
			foreign = s.Vec4(1.0)
			s.SetPosition(foreign)
		})
		require.NoError(t, err)

		b := shade.NewBuilder()
		_, err = b.Vertex("vs", func(s *shade.Scope) {
			s.SetPosition(foreign)
		})
		require.Error(t, err)
		assert.True(t, shade.IsKind(err, shade.ErrInvalidArity))
	})

	t.Run("outer value inside a branch", func(t *testing.T) {
		b := shade.NewBuilder()
		_, err := b.Fragment("fs", func(s *shade.Scope) {
			c := s.Let("c", s.Vec4(0.5))
			s.If(true, func(s *shade.Scope) {
				s.SetFragColor(c)
			})
		})
		assert.NoError(t, err)
	})
}

func TestNestedDefinitionIsRejected(t *testing.T) {
	b := shade.NewBuilder()
	var inner error
	_, err := b.Vertex("vs", func(s *shade.Scope) {
		_, inner = b.Fragment("fs", func(*shade.Scope) {})
		s.SetPosition(s.Vec4(1.0))
	})
	require.NoError(t, err)
	require.Error(t, inner)
	assert.True(t, shade.IsKind(inner, shade.ErrUnbalancedScope))
}

func TestFailedDefinitionRollsBack(t *testing.T) {
	b := shade.NewBuilder()
	_, err := b.Vertex("broken", func(s *shade.Scope) {
		s.Uniform("orphan", shade.Float)
		s.Let("bad", s.Vec3(1.0, 2.0))
	})
	require.Error(t, err)

	_, err = b.Vertex("vs", func(s *shade.Scope) {
		s.SetPosition(s.Vec4(s.Attribute("position", shade.Vec3), 1.0))
	})
	require.NoError(t, err)
	prog, err := b.Program()
	require.NoError(t, err)

	m := prog.Module()
	require.Len(t, m.EntryPoints, 1)
	assert.Equal(t, "vs", m.EntryPoints[0].Name)
	for _, res := range m.Resources {
		assert.NotEqual(t, "orphan", res.Name)
	}

	src, _, err := prog.WGSL(wgsl.DefaultOptions())
	require.NoError(t, err)
	assert.NotContains(t, src, "orphan")
	assert.NotContains(t, src, "broken")
}

func TestBuilderFreezes(t *testing.T) {
	b := shade.NewBuilder()
	_, err := b.Vertex("vs", func(s *shade.Scope) { s.SetPosition(s.Vec4(1.0)) })
	require.NoError(t, err)
	_, err = b.Program()
	require.NoError(t, err)

	_, err = b.Fragment("fs", func(*shade.Scope) {})
	require.Error(t, err)
	assert.True(t, shade.IsKind(err, shade.ErrUnbalancedScope))

	_, err = b.Struct("Late", shade.F("x", shade.Float))
	assert.True(t, shade.IsKind(err, shade.ErrUnbalancedScope))
}

func TestDuplicateNames(t *testing.T) {
	b := shade.NewBuilder()
	_, err := b.Vertex("main", func(s *shade.Scope) { s.SetPosition(s.Vec4(1.0)) })
	require.NoError(t, err)

	_, err = b.Fragment("main", func(*shade.Scope) {})
	assert.True(t, shade.IsKind(err, shade.ErrInvalidArity))

	_, err = b.Function("main", nil, shade.Void, nil)
	assert.True(t, shade.IsKind(err, shade.ErrInvalidArity))
}

func TestResourceRedeclaration(t *testing.T) {
	tests := []struct {
		name string
		body func(s *shade.Scope)
		kind shade.ErrorKind
	}{
		{
			name: "type",
			body: func(s *shade.Scope) {
				s.Uniform("u", shade.Float)
				s.Uniform("u", shade.Vec2)
			},
			kind: shade.ErrTypeMismatch,
		},
		{
			name: "slot",
			body: func(s *shade.Scope) {
				s.Uniform("u", shade.Float, shade.Binding(1))
				s.Uniform("u", shade.Float, shade.Binding(2))
			},
			kind: shade.ErrSlotCollision,
		},
		{
			name: "group",
			body: func(s *shade.Scope) {
				s.Uniform("u", shade.Float, shade.Group(1))
				s.Uniform("u", shade.Float)
			},
			kind: shade.ErrSlotCollision,
		},
		{
			name: "location with group",
			body: func(s *shade.Scope) {
				s.Attribute("a", shade.Float, shade.Group(1))
			},
			kind: shade.ErrInvalidArity,
		},
		{
			name: "flat uniform",
			body: func(s *shade.Scope) {
				s.Uniform("u", shade.Float, shade.Flat())
			},
			kind: shade.ErrInvalidArity,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := shade.NewBuilder()
			_, err := b.Vertex("vs", func(s *shade.Scope) {
				tt.body(s)
				s.SetPosition(s.Vec4(1.0))
			})
			require.Error(t, err)
			assert.True(t, shade.IsKind(err, tt.kind), err.Error())
		})
	}
}

func TestExplicitSlotCollision(t *testing.T) {
	b := shade.NewBuilder()
	_, err := b.Vertex("vs", func(s *shade.Scope) {
		a := s.Attribute("a", shade.Vec4, shade.Location(2))
		c := s.Attribute("c", shade.Vec4, shade.Location(2))
		s.SetPosition(shade.Add(a, c))
	})
	require.NoError(t, err)
	prog, err := b.Program()
	require.NoError(t, err)

	_, _, err = prog.GLSL("vs", glsl.DefaultOptions())
	require.Error(t, err)
	assert.True(t, shade.IsKind(err, shade.ErrSlotCollision))
	assert.Contains(t, err.Error(), `"a"`)
	assert.Contains(t, err.Error(), `"c"`)

	_, _, err = prog.WGSL(wgsl.DefaultOptions())
	assert.True(t, shade.IsKind(err, shade.ErrSlotCollision))
}

func TestAttributeLocationsPerEntry(t *testing.T) {
	b := shade.NewBuilder()
	_, err := b.Vertex("a", func(s *shade.Scope) {
		s.SetPosition(s.Attribute("pos_a", shade.Vec4, shade.Location(0)))
	})
	require.NoError(t, err)
	_, err = b.Vertex("b", func(s *shade.Scope) {
		s.SetPosition(s.Attribute("pos_b", shade.Vec4, shade.Location(0)))
	})
	require.NoError(t, err)
	_, err = b.Vertex("c", func(s *shade.Scope) {
		s.SetPosition(s.Attribute("pos_c", shade.Vec4))
	})
	require.NoError(t, err)
	prog, err := b.Program()
	require.NoError(t, err)

	for entry, want := range map[string]map[string]uint32{
		"a": {"pos_a": 0},
		"b": {"pos_b": 0},
		"c": {"pos_c": 0},
	} {
		_, info, err := prog.GLSL(entry, glsl.DefaultOptions())
		require.NoError(t, err, entry)
		assert.Equal(t, want, info.AttributeLocations, entry)
	}

	src, _, err := prog.WGSL(wgsl.DefaultOptions())
	require.NoError(t, err)
	assert.Contains(t, src, "@location(0) pos_b: vec4<f32>")
	assert.Contains(t, src, "@location(0) pos_c: vec4<f32>")
}

func TestStageRules(t *testing.T) {
	t.Run("attribute in fragment", func(t *testing.T) {
		b := shade.NewBuilder()
		_, err := b.Fragment("fs", func(s *shade.Scope) {
			s.SetFragColor(s.Attribute("a", shade.Vec4))
		})
		require.Error(t, err)
		assert.True(t, shade.IsKind(err, shade.ErrUnsupportedConstruct))
	})

	t.Run("varying written by fragment", func(t *testing.T) {
		b := shade.NewBuilder()
		_, err := b.Fragment("fs", func(s *shade.Scope) {
			s.Assign(s.Varying("v", shade.Float), 1.0)
		})
		require.Error(t, err)
		assert.True(t, shade.IsKind(err, shade.ErrUnsupportedConstruct))
		assert.Contains(t, err.Error(), "read-only")
	})

	t.Run("discard in vertex", func(t *testing.T) {
		b := shade.NewBuilder()
		_, err := b.Vertex("vs", func(s *shade.Scope) { s.Discard() })
		require.Error(t, err)
		assert.True(t, shade.IsKind(err, shade.ErrUnsupportedConstruct))
	})

	t.Run("position in fragment", func(t *testing.T) {
		b := shade.NewBuilder()
		_, err := b.Fragment("fs", func(s *shade.Scope) { s.SetPosition(s.Vec4(1.0)) })
		require.Error(t, err)
		assert.True(t, shade.IsKind(err, shade.ErrUnsupportedConstruct))
	})
}

func TestFunctions(t *testing.T) {
	t.Run("missing return path", func(t *testing.T) {
		b := shade.NewBuilder()
		_, err := b.Function("f", []shade.Param{shade.P("x", shade.Float)}, shade.Float,
			func(s *shade.Scope, args []shade.Value) {
				s.If(args[0].AsScalar().Gt(0.0), func(s *shade.Scope) {
					s.Return(1.0)
				})
			})
		require.Error(t, err)
		assert.True(t, shade.IsKind(err, shade.ErrUnsupportedConstruct))
	})

	t.Run("both branches return", func(t *testing.T) {
		b := shade.NewBuilder()
		_, err := b.Function("f", []shade.Param{shade.P("x", shade.Float)}, shade.Float,
			func(s *shade.Scope, args []shade.Value) {
				s.If(args[0].AsScalar().Gt(0.0), func(s *shade.Scope) {
					s.Return(1.0)
				}).Else(func(s *shade.Scope) {
					s.Return(args[0])
				})
			})
		assert.NoError(t, err)
	})

	t.Run("call arity", func(t *testing.T) {
		b := shade.NewBuilder()
		f, err := b.Function("f", []shade.Param{shade.P("x", shade.Float)}, shade.Float,
			func(s *shade.Scope, args []shade.Value) { s.Return(args[0]) })
		require.NoError(t, err)
		_, err = b.Vertex("vs", func(s *shade.Scope) {
			s.SetPosition(s.Vec4(s.Call(f, 1.0, 2.0)))
		})
		require.Error(t, err)
		assert.True(t, shade.IsKind(err, shade.ErrInvalidArity))
		assert.Contains(t, err.Error(), `"f" takes 1 arguments, got 2`)
	})

	t.Run("argument type", func(t *testing.T) {
		b := shade.NewBuilder()
		f, err := b.Function("f", []shade.Param{shade.P("x", shade.Vec2)}, shade.Void, nil)
		require.NoError(t, err)
		_, err = b.Vertex("vs", func(s *shade.Scope) {
			s.Call(f, s.Vec3(1.0))
		})
		require.Error(t, err)
		assert.True(t, shade.IsKind(err, shade.ErrTypeMismatch))
	})

	t.Run("void call is a statement", func(t *testing.T) {
		b := shade.NewBuilder()
		f, err := b.Function("touch", nil, shade.Void, func(*shade.Scope, []shade.Value) {})
		require.NoError(t, err)
		_, err = b.Vertex("vs", func(s *shade.Scope) {
			assert.Nil(t, s.Call(f))
			s.SetPosition(s.Vec4(1.0))
		})
		require.NoError(t, err)
		prog, err := b.Program()
		require.NoError(t, err)

		src, _, err := prog.GLSL("vs", glsl.DefaultOptions())
		require.NoError(t, err)
		assert.Contains(t, src, "void touch() {\n}\n")
		assert.Contains(t, src, "    touch();\n")
	})
}

func TestCaptureErrors(t *testing.T) {
	tests := []struct {
		name  string
		names []string
		mode  shade.EntryOption
		want  string
	}{
		{name: "empty", mode: shade.Capture(shade.Interleaved), want: "capture list is empty"},
		{name: "unknown", mode: shade.Capture(shade.Interleaved, "nope"), want: `"nope" is not a varying written by "vs"`},
		{name: "unwritten", mode: shade.Capture(shade.Interleaved, "unused"), want: `"unused" is not a varying written`},
		{name: "twice", mode: shade.Capture(shade.Separate, "out_a", "out_a"), want: "captured twice"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := shade.NewBuilder()
			_, err := b.Vertex("vs", func(s *shade.Scope) {
				s.Assign(s.Varying("out_a", shade.Float), 1.0)
				_ = s.Varying("unused", shade.Float)
				s.SetPosition(s.Vec4(1.0))
			}, tt.mode)
			require.Error(t, err)
			assert.True(t, shade.IsKind(err, shade.ErrInvalidArity), err.Error())
			assert.Contains(t, err.Error(), tt.want)

			// The rejected entry leaves no trace.
			_, err = b.Vertex("vs", func(s *shade.Scope) { s.SetPosition(s.Vec4(1.0)) })
			assert.NoError(t, err)
		})
	}

	t.Run("fragment", func(t *testing.T) {
		b := shade.NewBuilder()
		_, err := b.Fragment("fs", func(s *shade.Scope) {
			s.SetFragColor(s.Vec4(1.0))
		}, shade.Capture(shade.Interleaved, "fragColor"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "only vertex entry points")
	})
}

func TestStructMemberOrder(t *testing.T) {
	b := shade.NewBuilder()
	desc, err := b.Struct("Material",
		shade.F("roughness", shade.Float),
		shade.F("albedo", shade.Vec4),
		shade.F("metallic", shade.Float))
	require.NoError(t, err)

	names := make([]string, 0, 3)
	for _, f := range desc.Fields() {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"roughness", "albedo", "metallic"}, names)

	_, err = b.Fragment("fs", func(s *shade.Scope) {
		m := s.UniformBlock("material", desc)
		s.SetFragColor(m.Field("albedo").AsVector().Mul(m.Field("roughness")))
	})
	require.NoError(t, err)
	prog, err := b.Program()
	require.NoError(t, err)

	gl, _, err := prog.GLSL("fs", glsl.DefaultOptions())
	require.NoError(t, err)
	wg, _, err := prog.WGSL(wgsl.DefaultOptions())
	require.NoError(t, err)
	for _, src := range []string{gl, wg} {
		r := strings.Index(src, "roughness")
		a := strings.Index(src, "albedo")
		m := strings.Index(src, "metallic")
		assert.True(t, r < a && a < m, src)
	}

	_, err = b.Struct("Bad", shade.F("flag", shade.Bool))
	assert.True(t, shade.IsKind(err, shade.ErrUnbalancedScope), "frozen builder wins")
}

func TestStructValidation(t *testing.T) {
	b := shade.NewBuilder()
	_, err := b.Struct("Empty")
	assert.True(t, shade.IsKind(err, shade.ErrInvalidArity))

	_, err = b.Struct("Flags", shade.F("on", shade.Bool))
	assert.True(t, shade.IsKind(err, shade.ErrUnsupportedConstruct))

	_, err = b.Struct("Dup", shade.F("x", shade.Float), shade.F("x", shade.Float))
	assert.True(t, shade.IsKind(err, shade.ErrInvalidArity))

	_, err = b.Struct("Ok", shade.F("x", shade.Float))
	require.NoError(t, err)
	_, err = b.Struct("Ok", shade.F("y", shade.Float))
	assert.True(t, shade.IsKind(err, shade.ErrInvalidArity))
}

func TestLiteralsRoundTrip(t *testing.T) {
	b := shade.NewBuilder()
	_, err := b.Vertex("vs", func(s *shade.Scope) {
		s.SetPosition(s.Vec4(0.1, 1e-7, 3.0, 0.25))
	})
	require.NoError(t, err)
	prog, err := b.Program()
	require.NoError(t, err)

	src, _, err := prog.GLSL("vs", glsl.DefaultOptions())
	require.NoError(t, err)
	assert.Contains(t, src, "vec4(0.1, 1.0e-07, 3.0, 0.25)")

	_, err = shade.NewBuilder().Vertex("vs", func(s *shade.Scope) {
		s.Let("inf", s.Float(1e39))
	})
	assert.True(t, shade.IsKind(err, shade.ErrUnsupportedConstruct))
}

func TestCompileIsDeterministicAndConcurrent(t *testing.T) {
	prog := triangle(t)

	wantVS, _, err := prog.GLSL("vs", glsl.DefaultOptions())
	require.NoError(t, err)
	wantWGSL, _, err := prog.WGSL(wgsl.DefaultOptions())
	require.NoError(t, err)

	const workers = 16
	gotVS := make([]string, workers)
	gotWGSL := make([]string, workers)
	var g errgroup.Group
	for i := range workers {
		g.Go(func() error {
			src, _, err := prog.GLSL("vs", glsl.DefaultOptions())
			if err != nil {
				return err
			}
			gotVS[i] = src
			src, _, err = prog.WGSL(wgsl.DefaultOptions())
			gotWGSL[i] = src
			return err
		})
	}
	require.NoError(t, g.Wait())
	for i := range workers {
		assert.Equal(t, wantVS, gotVS[i])
		assert.Equal(t, wantWGSL, gotWGSL[i])
	}

	again := triangle(t)
	src, _, err := again.WGSL(wgsl.DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, wantWGSL, src, "identical builds produce identical text")
}

func TestFeedbackMatchesBetweenDialects(t *testing.T) {
	b := shade.NewBuilder()
	_, err := b.Vertex("step", func(s *shade.Scope) {
		p := s.Attribute("position", shade.Vec3).AsVector()
		v := s.Attribute("velocity", shade.Vec3).AsVector()
		dt := s.Uniform("dt", shade.Float).AsScalar()
		next := s.Let("next", p.Add(v.Mul(dt)))
		s.Assign(s.Varying("out_velocity", shade.Vec3), v)
		s.Assign(s.Varying("out_position", shade.Vec3), next)
		s.SetPosition(s.Vec4(next, 1.0))
	}, shade.Capture(shade.Interleaved, "out_position", "out_velocity"))
	require.NoError(t, err)
	prog, err := b.Program()
	require.NoError(t, err)

	_, ginfo, err := prog.GLSL("step", glsl.Options{LangVersion: glsl.VersionES300})
	require.NoError(t, err)
	src, winfo, err := prog.WGSLFeedback("step", wgsl.DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, ginfo.FeedbackVaryings, winfo.Varyings)
	assert.Equal(t, []string{"out_position", "out_velocity"}, winfo.Varyings)
	assert.Equal(t, uint32(24), winfo.Stride)
	assert.Equal(t, uint32(64), winfo.WorkgroupSize)
	assert.Contains(t, src, "@compute @workgroup_size(64)")
}

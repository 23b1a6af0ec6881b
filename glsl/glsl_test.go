// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package glsl_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/shade"
	"github.com/gogpu/shade/glsl"
	"github.com/gogpu/shade/ir"
)

func build(t *testing.T, define func(b *shade.Builder)) *shade.Program {
	t.Helper()
	b := shade.NewBuilder()
	define(b)
	prog, err := b.Program()
	require.NoError(t, err)
	return prog
}

func texturedQuad(t *testing.T) *shade.Program {
	t.Helper()
	return build(t, func(b *shade.Builder) {
		_, err := b.Vertex("vs", func(s *shade.Scope) {
			pos := s.Attribute("position", shade.Vec2).AsVector()
			uv := s.Attribute("uv", shade.Vec2).AsVector()
			s.Assign(s.Varying("v_uv", shade.Vec2), uv)
			s.SetPosition(s.Vec4(pos, 0.0, 1.0))
		})
		require.NoError(t, err)
		_, err = b.Fragment("fs", func(s *shade.Scope) {
			uv := s.Varying("v_uv", shade.Vec2).AsVector()
			s.SetFragColor(s.Texture2D("tex").Sample(uv))
		})
		require.NoError(t, err)
	})
}

func TestCompileLegacyVertex(t *testing.T) {
	src, info, err := texturedQuad(t).GLSL("vs", glsl.DefaultOptions())
	require.NoError(t, err)

	want := `#version 100

attribute vec2 position;
attribute vec2 uv;
varying vec2 v_uv;

void main() {
    v_uv = uv;
    gl_Position = vec4(position, 0.0, 1.0);
}
`
	assert.Equal(t, want, src)
	assert.Equal(t, "vs", info.EntryPoint)
	assert.Equal(t, ir.StageVertex, info.Stage)
	assert.Equal(t, map[string]uint32{"position": 0, "uv": 1}, info.AttributeLocations)
}

func TestCompileLegacyFragment(t *testing.T) {
	src, info, err := texturedQuad(t).GLSL("fs", glsl.DefaultOptions())
	require.NoError(t, err)

	want := `#version 100
precision mediump float;

varying vec2 v_uv;
uniform sampler2D tex;

void main() {
    gl_FragColor = texture2D(tex, v_uv);
}
`
	assert.Equal(t, want, src)
	assert.Equal(t, map[string]uint32{"fragColor": 0}, info.OutputLocations)
}

func TestCompileES300(t *testing.T) {
	prog := texturedQuad(t)
	opts := glsl.Options{LangVersion: glsl.VersionES300, DefaultPrecision: "highp"}

	vs, _, err := prog.GLSL("vs", opts)
	require.NoError(t, err)
	assert.Contains(t, vs, "#version 300 es\n")
	assert.Contains(t, vs, "layout(location = 0) in vec2 position;\nlayout(location = 1) in vec2 uv;\nout vec2 v_uv;\n")
	assert.NotContains(t, vs, "precision")

	fs, _, err := prog.GLSL("fs", opts)
	require.NoError(t, err)
	assert.Contains(t, fs, "#version 300 es\nprecision highp float;\n")
	assert.Contains(t, fs, "in vec2 v_uv;\n")
	assert.Contains(t, fs, "layout(location = 0) out vec4 fragColor;\n")
	assert.Contains(t, fs, "    fragColor = texture(tex, v_uv);\n")
}

func TestCompileVaryingLocations(t *testing.T) {
	prog := texturedQuad(t)

	src, _, err := prog.GLSL("vs", glsl.Options{LangVersion: glsl.Version410})
	require.NoError(t, err)
	assert.Contains(t, src, "#version 410 core\n")
	assert.Contains(t, src, "layout(location = 0) out vec2 v_uv;")

	src, _, err = prog.GLSL("vs", glsl.Options{LangVersion: glsl.Version330})
	require.NoError(t, err)
	assert.Contains(t, src, "\nout vec2 v_uv;")
}

func TestCompileExplicitAttributeLocation(t *testing.T) {
	prog := build(t, func(b *shade.Builder) {
		_, err := b.Vertex("vs", func(s *shade.Scope) {
			pos := s.Attribute("position", shade.Vec3).AsVector()
			n := s.Attribute("normal", shade.Vec3, shade.Location(3)).AsVector()
			s.SetPosition(s.Vec4(pos.Add(n), 1.0))
		})
		require.NoError(t, err)
	})

	src, info, err := prog.GLSL("vs", glsl.Options{LangVersion: glsl.VersionES300})
	require.NoError(t, err)
	assert.Equal(t, map[string]uint32{"position": 0, "normal": 3}, info.AttributeLocations)
	assert.Contains(t, src, "layout(location = 3) in vec3 normal;")
}

func TestCompileVaryingNamesMatchAcrossStages(t *testing.T) {
	prog := build(t, func(b *shade.Builder) {
		_, err := b.Vertex("vs", func(s *shade.Scope) {
			s.Assign(s.Varying("texture", shade.Vec2), s.Attribute("uv", shade.Vec2))
			s.SetPosition(s.Vec4(1.0))
		})
		require.NoError(t, err)
		_, err = b.Fragment("fs", func(s *shade.Scope) {
			tc := s.Varying("texture", shade.Vec2).AsVector()
			s.SetFragColor(s.Vec4(tc, 0.0, 1.0))
		})
		require.NoError(t, err)
	})

	vs, _, err := prog.GLSL("vs", glsl.DefaultOptions())
	require.NoError(t, err)
	fs, _, err := prog.GLSL("fs", glsl.DefaultOptions())
	require.NoError(t, err)
	assert.Contains(t, vs, "varying vec2 _texture;")
	assert.Contains(t, fs, "varying vec2 _texture;")
	assert.Contains(t, fs, "gl_FragColor = vec4(_texture, 0.0, 1.0);")
}

func TestCompileLegacyRejects(t *testing.T) {
	tests := []struct {
		name   string
		define func(t *testing.T, b *shade.Builder)
		entry  string
		want   string
	}{
		{
			name: "unsigned uniform",
			define: func(t *testing.T, b *shade.Builder) {
				_, err := b.Vertex("vs", func(s *shade.Scope) {
					n := s.Uniform("count", shade.Uint).AsScalar()
					s.SetPosition(s.Vec4(n.ToFloat()))
				})
				require.NoError(t, err)
			},
			entry: "vs",
			want:  "unsigned type",
		},
		{
			name: "integer varying",
			define: func(t *testing.T, b *shade.Builder) {
				_, err := b.Vertex("vs", func(s *shade.Scope) {
					s.Assign(s.Varying("id", shade.Int), 3)
					s.SetPosition(s.Vec4(1.0))
				})
				require.NoError(t, err)
			},
			entry: "vs",
			want:  `flat or integer varying "id"`,
		},
		{
			name: "vertex index",
			define: func(t *testing.T, b *shade.Builder) {
				_, err := b.Vertex("vs", func(s *shade.Scope) {
					s.SetPosition(s.Vec4(s.VertexIndex().ToFloat()))
				})
				require.NoError(t, err)
			},
			entry: "vs",
			want:  "builtin vertex_index",
		},
		{
			name: "two outputs",
			define: func(t *testing.T, b *shade.Builder) {
				_, err := b.Fragment("fs", func(s *shade.Scope) {
					s.Assign(s.Output("albedo", shade.Vec4), s.Vec4(1.0))
					s.Assign(s.Output("normal", shade.Vec4), s.Vec4(0.0))
				})
				require.NoError(t, err)
			},
			entry: "fs",
			want:  "2 fragment outputs",
		},
		{
			name: "explicit level in fragment",
			define: func(t *testing.T, b *shade.Builder) {
				_, err := b.Fragment("fs", func(s *shade.Scope) {
					s.SetFragColor(s.Texture2D("tex").SampleLevel(s.Vec2(0.5), 1.0))
				})
				require.NoError(t, err)
			},
			entry: "fs",
			want:  "explicit level of detail",
		},
		{
			name: "transform feedback",
			define: func(t *testing.T, b *shade.Builder) {
				_, err := b.Vertex("vs", func(s *shade.Scope) {
					s.Assign(s.Varying("out_pos", shade.Vec4), s.Vec4(1.0))
					s.SetPosition(s.Vec4(1.0))
				}, shade.Capture(shade.Interleaved, "out_pos"))
				require.NoError(t, err)
			},
			entry: "vs",
			want:  "transform feedback",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prog := build(t, func(b *shade.Builder) { tt.define(t, b) })

			_, _, err := prog.GLSL(tt.entry, glsl.DefaultOptions())
			require.Error(t, err)
			assert.True(t, ir.IsKind(err, ir.ErrUnsupportedConstruct), err.Error())
			assert.Contains(t, err.Error(), tt.want)
			assert.Contains(t, err.Error(), "(GLSL 100)")

			_, _, err = prog.GLSL(tt.entry, glsl.Options{LangVersion: glsl.VersionES300})
			assert.NoError(t, err, "GLSL ES 3.00 accepts the construct")
		})
	}
}

func TestCompileModulo(t *testing.T) {
	prog := build(t, func(b *shade.Builder) {
		_, err := b.Vertex("vs", func(s *shade.Scope) {
			n := s.Uniform("count", shade.Int).AsScalar()
			r := s.Let("r", n.Mod(3)).AsScalar()
			s.SetPosition(s.Vec4(r.ToFloat()))
		})
		require.NoError(t, err)
	})

	src, _, err := prog.GLSL("vs", glsl.DefaultOptions())
	require.NoError(t, err)
	assert.Contains(t, src, "    int r = count - 3 * (count / 3);\n")
	assert.Contains(t, src, "    gl_Position = vec4(float(r));\n")

	src, _, err = prog.GLSL("vs", glsl.Options{LangVersion: glsl.VersionES300})
	require.NoError(t, err)
	assert.Contains(t, src, "    int r = count % 3;\n")
}

func TestCompileElseIfChain(t *testing.T) {
	prog := build(t, func(b *shade.Builder) {
		_, err := b.Fragment("fs", func(s *shade.Scope) {
			x := s.Varying("v_uv", shade.Vec2).AsVector().X()
			s.If(x.Lt(0.25), func(s *shade.Scope) {
				s.SetFragColor(s.Vec4(1.0))
			}).ElseIf(x.Lt(0.5), func(s *shade.Scope) {
				s.SetFragColor(s.Vec4(0.5))
			}).Else(func(s *shade.Scope) {
				s.Discard()
			})
		})
		require.NoError(t, err)
	})

	src, _, err := prog.GLSL("fs", glsl.DefaultOptions())
	require.NoError(t, err)
	want := `    if (v_uv.x < 0.25) {
        gl_FragColor = vec4(1.0);
    } else if (v_uv.x < 0.5) {
        gl_FragColor = vec4(0.5);
    } else {
        discard;
    }
`
	assert.Contains(t, src, want)
}

func TestCompileDerivativesExtension(t *testing.T) {
	prog := build(t, func(b *shade.Builder) {
		_, err := b.Fragment("fs", func(s *shade.Scope) {
			uv := s.Varying("v_uv", shade.Vec2).AsVector()
			w := shade.Fwidth(uv)
			s.SetFragColor(s.Vec4(shade.Ddx(uv).Add(w), 0.0, 1.0))
		})
		require.NoError(t, err)
	})

	src, info, err := prog.GLSL("fs", glsl.DefaultOptions())
	require.NoError(t, err)
	assert.Contains(t, src, "#version 100\n#extension GL_OES_standard_derivatives : enable\nprecision mediump float;\n")
	assert.Contains(t, src, "dFdx(v_uv) + fwidth(v_uv)")
	assert.Equal(t, []string{"GL_OES_standard_derivatives"}, info.UsedExtensions)

	src, info, err = prog.GLSL("fs", glsl.Options{LangVersion: glsl.VersionES300})
	require.NoError(t, err)
	assert.NotContains(t, src, "#extension")
	assert.Empty(t, info.UsedExtensions)
}

func TestCompileStructUniform(t *testing.T) {
	prog := build(t, func(b *shade.Builder) {
		light, err := b.Struct("Light",
			shade.F("color", shade.Vec3),
			shade.F("intensity", shade.Float),
			shade.FA("weights", shade.Vec4, 2))
		require.NoError(t, err)
		_, err = b.Fragment("fs", func(s *shade.Scope) {
			l := s.UniformBlock("light", light)
			c := l.Field("color").AsVector().Mul(l.Field("intensity"))
			w := l.Field("weights").AsArray().Index(1).AsVector()
			s.SetFragColor(s.Vec4(c, 1.0).Mul(w))
		})
		require.NoError(t, err)
	})

	src, _, err := prog.GLSL("fs", glsl.DefaultOptions())
	require.NoError(t, err)
	assert.Contains(t, src, "struct Light {\n    vec3 color;\n    float intensity;\n    vec4 weights[2];\n};\n")
	assert.Contains(t, src, "uniform Light light;")
	assert.Contains(t, src, "light.weights[1]")
}

func TestCompileHelperFunction(t *testing.T) {
	prog := build(t, func(b *shade.Builder) {
		square, err := b.Function("square", []shade.Param{shade.P("x", shade.Float)}, shade.Float,
			func(s *shade.Scope, args []shade.Value) {
				s.Return(args[0].AsScalar().Mul(args[0]))
			})
		require.NoError(t, err)
		_, err = b.Fragment("fs", func(s *shade.Scope) {
			s.SetFragColor(s.Vec4(s.Call(square, 0.5)))
		})
		require.NoError(t, err)
	})

	src, _, err := prog.GLSL("fs", glsl.DefaultOptions())
	require.NoError(t, err)
	assert.Contains(t, src, "float square(float x) {\n    return x * x;\n}\n\nvoid main() {")
	assert.Contains(t, src, "gl_FragColor = vec4(square(0.5));")
}

func TestCompileLocals(t *testing.T) {
	prog := build(t, func(b *shade.Builder) {
		_, err := b.Vertex("vs", func(s *shade.Scope) {
			k := s.Let("k", 2.0).AsScalar()
			neg := s.Let("neg", s.Float(-1.0).Neg()).AsScalar()
			acc := s.Var("acc", s.Float()).AsScalar()
			s.Assign(acc, k.Add(neg))
			s.SetPosition(s.Vec4(acc))
		})
		require.NoError(t, err)
	})

	src, _, err := prog.GLSL("vs", glsl.DefaultOptions())
	require.NoError(t, err)
	assert.Contains(t, src, "    const float k = 2.0;\n")
	assert.Contains(t, src, "    float neg = -(-1.0);\n")
	assert.Contains(t, src, "    float acc;\n    acc = k + neg;\n")
}

func TestCompileCubeTexture(t *testing.T) {
	prog := build(t, func(b *shade.Builder) {
		_, err := b.Fragment("fs", func(s *shade.Scope) {
			dir := s.Varying("dir", shade.Vec3)
			s.SetFragColor(s.TextureCube("sky").Sample(dir))
		})
		require.NoError(t, err)
	})

	src, _, err := prog.GLSL("fs", glsl.DefaultOptions())
	require.NoError(t, err)
	assert.Contains(t, src, "uniform samplerCube sky;")
	assert.Contains(t, src, "gl_FragColor = textureCube(sky, dir);")

	src, _, err = prog.GLSL("fs", glsl.Options{LangVersion: glsl.VersionES300})
	require.NoError(t, err)
	assert.Contains(t, src, "fragColor = texture(sky, dir);")
}

func TestCompileFeedbackInfo(t *testing.T) {
	prog := build(t, func(b *shade.Builder) {
		_, err := b.Vertex("vs", func(s *shade.Scope) {
			p := s.Attribute("position", shade.Vec3).AsVector()
			s.Assign(s.Varying("out_b", shade.Float), p.X())
			s.Assign(s.Varying("out_a", shade.Vec3), p)
			s.SetPosition(s.Vec4(p, 1.0))
		}, shade.Capture(shade.Separate, "out_a", "out_b"))
		require.NoError(t, err)
	})

	_, info, err := prog.GLSL("vs", glsl.Options{LangVersion: glsl.VersionES300})
	require.NoError(t, err)
	assert.Equal(t, []string{"out_a", "out_b"}, info.FeedbackVaryings, "capture order, not declaration order")
	assert.Equal(t, ir.FeedbackSeparate, info.FeedbackMode)
}

func TestCompileSelectsFirstEntryByDefault(t *testing.T) {
	prog := texturedQuad(t)

	_, info, err := glsl.Compile(prog.Module(), glsl.Options{})
	require.NoError(t, err)
	assert.Equal(t, "vs", info.EntryPoint)

	_, _, err = glsl.Compile(prog.Module(), glsl.Options{EntryPoint: "nope"})
	require.Error(t, err)
	assert.True(t, ir.IsKind(err, ir.ErrInvalidModule))
}

func TestVersionString(t *testing.T) {
	tests := []struct {
		v    glsl.Version
		want string
	}{
		{glsl.Version100, "100"},
		{glsl.VersionES300, "300 es"},
		{glsl.VersionES310, "310 es"},
		{glsl.Version330, "330 core"},
		{glsl.Version450, "450 core"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.v.String())
	}
	assert.True(t, glsl.Version100.IsLegacy())
	assert.False(t, glsl.VersionES300.IsLegacy())
	assert.False(t, glsl.VersionES300.SupportsVaryingLocations())
	assert.True(t, glsl.VersionES310.SupportsVaryingLocations())
	assert.True(t, glsl.Version410.SupportsVaryingLocations())
}

package catalog_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/shade/catalog"
	"github.com/gogpu/shade/glsl"
	"github.com/gogpu/shade/ir"
	"github.com/gogpu/shade/wgsl"
)

func TestNamesAreSorted(t *testing.T) {
	names := catalog.Names()
	assert.IsIncreasing(t, names)
	assert.Equal(t, []string{"basic", "lighting", "particles", "textured"}, names)
}

func TestLookup(t *testing.T) {
	p, ok := catalog.Lookup("lighting")
	require.True(t, ok)
	assert.Equal(t, "lighting", p.Name)
	assert.NotEmpty(t, p.Description)

	_, ok = catalog.Lookup("nope")
	assert.False(t, ok)
}

func TestSuggest(t *testing.T) {
	assert.Equal(t, "textured", catalog.Suggest("texturd"))
	assert.Equal(t, "particles", catalog.Suggest("particle"))
	assert.Equal(t, "basic", catalog.Suggest("basci"))
	assert.Empty(t, catalog.Suggest("zzzzzzzzzzzz"))
}

// compileAll compiles every entry point of p with both writers.
func compileAll(t *testing.T, p catalog.Program) []string {
	t.Helper()
	prog, err := p.Build()
	require.NoError(t, err)

	var out []string
	for _, ep := range prog.Module().EntryPoints {
		version := glsl.Version100
		if ep.Feedback != nil {
			version = glsl.VersionES300
		}
		src, _, err := prog.GLSL(ep.Name, glsl.Options{LangVersion: version, DefaultPrecision: "mediump"})
		require.NoError(t, err, ep.Name)
		out = append(out, src)

		if ep.Feedback != nil {
			src, _, err := prog.WGSLFeedback(ep.Name, wgsl.DefaultOptions())
			require.NoError(t, err, ep.Name)
			out = append(out, src)
		}
	}
	src, _, err := prog.WGSL(wgsl.DefaultOptions())
	require.NoError(t, err)
	return append(out, src)
}

func TestProgramsCompileDeterministically(t *testing.T) {
	for _, p := range catalog.All() {
		t.Run(p.Name, func(t *testing.T) {
			first := compileAll(t, p)
			second := compileAll(t, p)
			assert.Equal(t, first, second)
		})
	}
}

func TestTexturedHoistsOneSample(t *testing.T) {
	p, _ := catalog.Lookup("textured")
	prog, err := p.Build()
	require.NoError(t, err)

	src, info, err := prog.WGSL(wgsl.DefaultOptions())
	require.NoError(t, err)
	require.Len(t, info.Diagnostics, 1)
	assert.Equal(t, ir.DiagnosticHoistedSample, info.Diagnostics[0].Code)
	assert.Contains(t, src, "let _sample0 = textureSample(albedo, albedo_sampler, input.v_uv);")

	gl, _, err := prog.GLSL("fs_main", glsl.DefaultOptions())
	require.NoError(t, err)
	assert.Contains(t, gl, "    precision highp float;\n")
	assert.Contains(t, gl, "color = texture2D(albedo, v_uv);")
}

func TestParticlesCapture(t *testing.T) {
	p, _ := catalog.Lookup("particles")
	prog, err := p.Build()
	require.NoError(t, err)

	_, info, err := prog.GLSL("update", glsl.Options{LangVersion: glsl.VersionES300})
	require.NoError(t, err)
	assert.Equal(t, []string{"out_position", "out_velocity", "out_age"}, info.FeedbackVaryings)

	_, fb, err := prog.WGSLFeedback("update", wgsl.DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, uint32(28), fb.Stride)
	assert.Equal(t, map[string]uint32{"out_position": 0, "out_velocity": 12, "out_age": 24}, fb.Offsets)

	_, _, err = prog.GLSL("update", glsl.DefaultOptions())
	assert.True(t, ir.IsKind(err, ir.ErrUnsupportedConstruct))
}

func TestLightingLayout(t *testing.T) {
	p, _ := catalog.Lookup("lighting")
	prog, err := p.Build()
	require.NoError(t, err)

	gl, _, err := prog.GLSL("fs_main", glsl.DefaultOptions())
	require.NoError(t, err)
	assert.Contains(t, gl, "struct Light {\n    vec3 position;\n    float intensity;\n    vec4 color;\n};")
	assert.Contains(t, gl, "    Light lights[2];\n")
	assert.Contains(t, gl, "varying vec3 v_world;")
	assert.Contains(t, gl, "float lambert(vec3 n, vec3 l) {")
	assert.Contains(t, gl, "if (!gl_FrontFacing) {")

	src, info, err := prog.WGSL(wgsl.DefaultOptions())
	require.NoError(t, err)
	assert.Contains(t, src, "var<uniform> scene: Scene;")
	assert.Contains(t, src, "fn lambert(n: vec3<f32>, l: vec3<f32>) -> f32 {")
	assert.Equal(t, []string{"vs_main", "fs_main"}, info.EntryPoints)
}

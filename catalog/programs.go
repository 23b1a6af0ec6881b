package catalog

import (
	"fmt"

	"github.com/gogpu/shade"
)

func defineBasic(b *shade.Builder) error {
	_, err := b.Vertex("vs_main", func(s *shade.Scope) {
		pos := s.Attribute("position", shade.Vec3).AsVector()
		mvp := s.Uniform("mvp", shade.Mat4).AsMatrix()
		s.Assign(s.Varying("v_color", shade.Vec4), s.Attribute("color", shade.Vec4))
		s.SetPosition(mvp.MulVec(s.Vec4(pos, 1.0)))
	})
	if err != nil {
		return err
	}
	_, err = b.Fragment("fs_main", func(s *shade.Scope) {
		s.SetFragColor(s.Varying("v_color", shade.Vec4))
	})
	return err
}

// defineTextured samples on both sides of a branch, which the modern
// dialect has to hoist.
func defineTextured(b *shade.Builder) error {
	_, err := b.Vertex("vs_main", func(s *shade.Scope) {
		pos := s.Attribute("position", shade.Vec2).AsVector()
		s.Assign(s.Varying("v_uv", shade.Vec2), s.Attribute("uv", shade.Vec2))
		s.SetPosition(s.Vec4(pos, 0.0, 1.0))
	})
	if err != nil {
		return err
	}
	_, err = b.Fragment("fs_main", func(s *shade.Scope) {
		s.Precision("highp", "float")
		uv := s.Varying("v_uv", shade.Vec2).AsVector()
		tex := s.Texture2D("albedo")
		cutoff := s.Uniform("cutoff", shade.Float).AsScalar()

		color := s.Var("color", s.Vec4())
		s.If(uv.X().Gt(cutoff), func(s *shade.Scope) {
			s.Assign(color, tex.Sample(uv))
		}).Else(func(s *shade.Scope) {
			s.Assign(color, tex.Sample(uv).Mul(0.5))
		})
		s.SetFragColor(color)
	})
	return err
}

// defineParticles advances particles by one step and captures the new
// state; the fragment entry draws them fading with age.
func defineParticles(b *shade.Builder) error {
	_, err := b.Vertex("update", func(s *shade.Scope) {
		p := s.Attribute("position", shade.Vec3).AsVector()
		v := s.Attribute("velocity", shade.Vec3).AsVector()
		age := s.Attribute("age", shade.Float).AsScalar()
		dt := s.Uniform("dt", shade.Float).AsScalar()
		gravity := s.Uniform("gravity", shade.Vec3).AsVector()

		nextV := s.Let("next_velocity", v.Add(gravity.Mul(dt))).AsVector()
		nextP := s.Let("next_position", p.Add(nextV.Mul(dt))).AsVector()
		s.Assign(s.Varying("out_position", shade.Vec3), nextP)
		s.Assign(s.Varying("out_velocity", shade.Vec3), nextV)
		s.Assign(s.Varying("out_age", shade.Float), age.Add(dt))
		s.SetPosition(s.Vec4(nextP, 1.0))
	}, shade.Capture(shade.Interleaved, "out_position", "out_velocity", "out_age"))
	if err != nil {
		return err
	}
	_, err = b.Fragment("draw", func(s *shade.Scope) {
		age := s.Varying("out_age", shade.Float).AsScalar()
		fade := shade.Clamp(s.Float(1.0).Sub(age.Div(5.0)), 0.0, 1.0)
		s.SetFragColor(s.Vec4(1.0, 0.6, 0.2, fade))
	})
	return err
}

const lightCount = 2

// defineLighting accumulates diffuse light from a uniform block holding an
// array of lights.
func defineLighting(b *shade.Builder) error {
	light, err := b.Struct("Light",
		shade.F("position", shade.Vec3),
		shade.F("intensity", shade.Float),
		shade.F("color", shade.Vec4))
	if err != nil {
		return err
	}
	scene, err := b.Struct("Scene",
		shade.FA("lights", light.Type(), lightCount),
		shade.F("ambient", shade.Vec4))
	if err != nil {
		return err
	}
	surface, err := b.Struct("Surface",
		shade.F("world", shade.Vec3),
		shade.F("normal", shade.Vec3))
	if err != nil {
		return err
	}

	lambert, err := b.Function("lambert",
		[]shade.Param{shade.P("n", shade.Vec3), shade.P("l", shade.Vec3)}, shade.Float,
		func(s *shade.Scope, args []shade.Value) {
			s.Return(shade.Max(shade.Dot(args[0].AsVector(), args[1]), 0.0))
		})
	if err != nil {
		return err
	}

	_, err = b.Vertex("vs_main", func(s *shade.Scope) {
		pos := s.Attribute("position", shade.Vec3).AsVector()
		normal := s.Attribute("normal", shade.Vec3).AsVector()
		model := s.Uniform("model", shade.Mat4).AsMatrix()
		viewProj := s.Uniform("view_proj", shade.Mat4).AsMatrix()

		world := s.Let("world", model.MulVec(s.Vec4(pos, 1.0))).AsVector()
		out := s.VaryingBundle("v", surface)
		s.Assign(out.Field("world"), world.XYZ())
		s.Assign(out.Field("normal"), model.MulVec(s.Vec4(normal, 0.0)).XYZ())
		s.SetPosition(viewProj.MulVec(world))
	})
	if err != nil {
		return err
	}

	_, err = b.Fragment("fs_main", func(s *shade.Scope) {
		in := s.VaryingBundle("v", surface)
		n := shade.Normalize(in.Field("normal").AsVector())
		wp := in.Field("world").AsVector()
		sc := s.UniformBlock("scene", scene)
		lights := sc.Field("lights").AsArray()

		total := s.Var("total", sc.Field("ambient"))
		for i := range lights.Len() {
			l := lights.Index(i).AsStruct()
			dir := shade.Normalize(l.Field("position").AsVector().Sub(wp))
			k := s.Let(fmt.Sprintf("k%d", i), s.Call(lambert, n, dir).AsScalar().Mul(l.Field("intensity")))
			s.Assign(total, total.AsVector().Add(l.Field("color").AsVector().Mul(k)))
		}
		s.If(s.FrontFacing().Not(), func(s *shade.Scope) {
			s.Assign(total, total.AsVector().Mul(0.25))
		})
		s.SetFragColor(total)
	})
	return err
}

package shade

import (
	"github.com/gogpu/shade/ir"
)

// Capture layouts.
const (
	Interleaved = ir.FeedbackInterleaved
	Separate    = ir.FeedbackSeparate
)

type captureSpec struct {
	mode  ir.FeedbackMode
	names []string
}

// Capture records the named varyings of a vertex entry point for transform
// feedback. Every name must be a varying the body writes.
func Capture(mode ir.FeedbackMode, names ...string) EntryOption {
	return func(c *entryConfig) {
		c.capture = &captureSpec{mode: mode, names: append([]string(nil), names...)}
	}
}

func (b *Builder) resolveCapture(fr *frame, spec *captureSpec) (*ir.Feedback, error) {
	if fr.stage != ir.StageVertex {
		return nil, ir.Errorf(ir.ErrInvalidArity, "only vertex entry points can capture varyings")
	}
	if len(spec.names) == 0 {
		return nil, ir.Errorf(ir.ErrInvalidArity, "capture list is empty")
	}
	if spec.mode != ir.FeedbackInterleaved && spec.mode != ir.FeedbackSeparate {
		return nil, ir.Errorf(ir.ErrInvalidArity, "unknown capture mode %d", spec.mode)
	}

	fb := &ir.Feedback{Mode: spec.mode, Varyings: make([]ir.ResourceHandle, 0, len(spec.names))}
	seen := make(map[string]bool, len(spec.names))
	for _, name := range spec.names {
		if seen[name] {
			return nil, ir.Errorf(ir.ErrInvalidArity, "varying %q is captured twice", name)
		}
		seen[name] = true
		h, ok := b.module.LookupResource(ir.RoleVarying, name, ir.StageVertex)
		if !ok || !fr.written[h] {
			return nil, ir.Errorf(ir.ErrInvalidArity, "%q is not a varying written by %q", name, fr.name)
		}
		fb.Varyings = append(fb.Varyings, h)
	}
	return fb, nil
}

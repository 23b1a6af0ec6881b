// Package catalog holds reference programs written with the shade DSL.
//
// The programs cover the features both dialects must agree on: plain
// attribute/varying plumbing, texture sampling under branches, transform
// feedback and uniform blocks with helper functions. The shadec command
// compiles them, and the determinism tests run every one of them through
// both writers.
package catalog

import (
	"fmt"
	"slices"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"

	"github.com/gogpu/shade"
)

// Program is a named reference program.
type Program struct {
	Name        string
	Description string

	define func(b *shade.Builder) error
}

// Build records the program into a fresh builder and freezes it.
func (p Program) Build(opts ...shade.BuilderOption) (*shade.Program, error) {
	b := shade.NewBuilder(opts...)
	if err := p.define(b); err != nil {
		return nil, fmt.Errorf("catalog: %s: %w", p.Name, err)
	}
	prog, err := b.Program()
	if err != nil {
		return nil, fmt.Errorf("catalog: %s: %w", p.Name, err)
	}
	return prog, nil
}

var programs = []Program{
	{Name: "basic", Description: "transformed vertex colours", define: defineBasic},
	{Name: "lighting", Description: "diffuse lights from a uniform block", define: defineLighting},
	{Name: "particles", Description: "particle integration captured with transform feedback", define: defineParticles},
	{Name: "textured", Description: "textured quad with a branch on the sample", define: defineTextured},
}

// All returns the programs sorted by name.
func All() []Program {
	return slices.Clone(programs)
}

// Names returns the program names in sorted order.
func Names() []string {
	names := make([]string, len(programs))
	for i, p := range programs {
		names[i] = p.Name
	}
	return names
}

// Lookup finds a program by name.
func Lookup(name string) (Program, bool) {
	for _, p := range programs {
		if p.Name == name {
			return p, true
		}
	}
	return Program{}, false
}

// minSimilarity is the Levenshtein similarity below which Suggest gives up.
const minSimilarity = 0.5

// Suggest returns the program name closest to name, or "" when nothing is
// close enough to be a likely typo.
func Suggest(name string) string {
	metric := metrics.NewLevenshtein()
	best, bestScore := "", 0.0
	for _, p := range programs {
		if score := strutil.Similarity(name, p.Name, metric); score > bestScore {
			best, bestScore = p.Name, score
		}
	}
	if bestScore < minSimilarity {
		return ""
	}
	return best
}

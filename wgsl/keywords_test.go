// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package wgsl

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEscapeKeyword(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"color", "color"},
		{"fn", "fn_"},
		{"texture", "texture"},
		{"sampler", "sampler_"},
		{"select", "select_"},
		{"__private", "_private"},
		{"_", "_unnamed"},
		{"", "_unnamed"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, escapeKeyword(tt.in), tt.in)
	}
}

func TestNamerDeduplicates(t *testing.T) {
	n := newNamer(ioInput)
	assert.Equal(t, "input_1", n.call("input"))
	assert.Equal(t, "color", n.call("color"))
	assert.Equal(t, "color_2", n.call("color"))

	inner := n.clone()
	assert.Equal(t, "tmp", inner.call("tmp"))
	assert.Equal(t, "tmp", n.call("tmp"), "names of a clone do not leak")
}

func TestUnwrap(t *testing.T) {
	assert.Equal(t, "a + b", unwrap("(a + b)"))
	assert.Equal(t, "(a) + (b)", unwrap("(a) + (b)"))
	assert.Equal(t, "f(x)", unwrap("f(x)"))
	assert.Equal(t, "(a * b) + c", unwrap("((a * b) + c)"))
	assert.Equal(t, "x", unwrap("x"))
}

func TestExportName(t *testing.T) {
	assert.Equal(t, "Particles", exportName("particles"))
	assert.Equal(t, "Main", exportName("Main"))
	assert.Equal(t, "", exportName(""))
}

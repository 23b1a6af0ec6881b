// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package bind assigns locations and bindings to the resources of a shade
// module.
//
// Each resource lives in a numbering space:
//   - attributes and outputs: one space per entry point
//   - varyings: one space for the whole module (the vertex/fragment pair)
//   - uniforms, textures, samplers and storage buffers: one space per group
//
// Explicit slots are reserved first. Every other resource then takes the
// lowest unreserved integer of its space, in handle (first-encounter)
// order. An attribute or output read by several entry points keeps one
// location: the lowest integer free in the spaces of all of them.
// Allocation is pure: the same module always yields the same table.
package bind

import (
	"cmp"
	"log/slog"
	"slices"

	"github.com/gogpu/shade/ir"
)

// Slot is the allocated slot of one resource.
type Slot struct {
	Resource ir.ResourceHandle
	Role     ir.ResourceRole
	Name     string
	Stage    ir.ShaderStage // meaningful for attributes and outputs
	Group    uint32         // meaningful for binding roles
	Index    uint32         // location or binding
	Explicit bool
}

// space identifies one numbering space.
type space struct {
	kind  uint8 // 0 = location, 1 = binding
	role  ir.ResourceRole
	entry int // entry point index for attributes and outputs, -1 if none
	group uint32
}

// spacesOf returns the numbering spaces res takes a slot in. owners lists
// the entry points that touch res.
func spacesOf(res *ir.Resource, owners []int) []space {
	switch res.Role {
	case ir.RoleAttribute, ir.RoleOutput:
		if len(owners) == 0 {
			return []space{{role: res.Role, entry: -1}}
		}
		out := make([]space, len(owners))
		for i, e := range owners {
			out[i] = space{role: res.Role, entry: e}
		}
		return out
	case ir.RoleVarying:
		return []space{{role: ir.RoleVarying}}
	default:
		// Uniforms, textures, samplers and storage buffers share one
		// binding space per group.
		return []space{{kind: 1, group: res.Group}}
	}
}

// Table is the result of an allocation. It is immutable and safe for
// concurrent readers.
type Table struct {
	slots []Slot // indexed by resource handle
	used  map[space]map[uint32]ir.ResourceHandle
}

// Option configures Allocate.
type Option func(*allocator)

// WithLogger logs allocation decisions at debug level.
func WithLogger(l *slog.Logger) Option {
	return func(a *allocator) { a.logger = l }
}

type allocator struct {
	module *ir.Module
	logger *slog.Logger
	table  *Table

	// owners maps an attribute or output to the entry points touching it.
	owners map[ir.ResourceHandle][]int
}

// Allocate assigns a slot to every resource of the module.
// Two resources requesting the same explicit slot in one space fail with
// an ErrSlotCollision naming both.
func Allocate(module *ir.Module, opts ...Option) (*Table, error) {
	a := &allocator{
		module: module,
		logger: slog.Default(),
		table: &Table{
			slots: make([]Slot, len(module.Resources)),
			used:  make(map[space]map[uint32]ir.ResourceHandle),
		},
	}
	for _, opt := range opts {
		opt(a)
	}
	a.owners = entryOwners(module)

	if err := a.reserveExplicit(); err != nil {
		return nil, err
	}
	a.assignImplicit()
	return a.table, nil
}

// entryOwners lists, per attribute and output, the entry points that
// touch it, in module order.
func entryOwners(module *ir.Module) map[ir.ResourceHandle][]int {
	owners := make(map[ir.ResourceHandle][]int)
	for i := range module.EntryPoints {
		for _, h := range module.EntryResources(&module.EntryPoints[i]) {
			switch module.Resources[h].Role {
			case ir.RoleAttribute, ir.RoleOutput:
				owners[h] = append(owners[h], i)
			}
		}
	}
	return owners
}

func (a *allocator) reserveExplicit() error {
	for i := range a.module.Resources {
		res := &a.module.Resources[i]
		if res.Slot == nil {
			continue
		}
		h := ir.ResourceHandle(i) //nolint:gosec // G115: arena index
		spaces := spacesOf(res, a.owners[h])
		for _, sp := range spaces {
			if other, taken := a.table.used[sp][*res.Slot]; taken {
				prev := &a.module.Resources[other]
				return ir.Errorf(ir.ErrSlotCollision, "%s %q and %s %q both request %s %d",
					prev.Role, prev.Name, res.Role, res.Name, slotWord(sp), *res.Slot)
			}
		}
		a.claim(h, res, spaces, *res.Slot, true)
	}
	return nil
}

func (a *allocator) assignImplicit() {
	for i := range a.module.Resources {
		res := &a.module.Resources[i]
		if res.Slot != nil {
			continue
		}
		h := ir.ResourceHandle(i) //nolint:gosec // G115: arena index
		spaces := spacesOf(res, a.owners[h])
		a.claim(h, res, spaces, a.table.lowestFreeIn(spaces), false)
	}
}

func (a *allocator) claim(h ir.ResourceHandle, res *ir.Resource, spaces []space, index uint32, explicit bool) {
	for _, sp := range spaces {
		if a.table.used[sp] == nil {
			a.table.used[sp] = make(map[uint32]ir.ResourceHandle)
		}
		a.table.used[sp][index] = h
	}
	a.table.slots[h] = Slot{
		Resource: h,
		Role:     res.Role,
		Name:     res.Name,
		Stage:    res.Stage,
		Group:    spaces[0].group,
		Index:    index,
		Explicit: explicit,
	}
	a.logger.Debug("bind: slot assigned",
		slog.String("role", res.Role.String()),
		slog.String("name", res.Name),
		slog.Uint64(slotWord(spaces[0]), uint64(index)),
		slog.Bool("explicit", explicit))
}

// lowestFreeIn returns the lowest index free in every one of spaces.
func (t *Table) lowestFreeIn(spaces []space) uint32 {
	n := uint32(0)
	for {
		next := n
		for _, sp := range spaces {
			next = t.lowestFree(sp, next)
		}
		if next == n {
			return n
		}
		n = next
	}
}

func (t *Table) lowestFree(sp space, from uint32) uint32 {
	used := t.used[sp]
	n := from
	for {
		if _, taken := used[n]; !taken {
			return n
		}
		n++
	}
}

func slotWord(sp space) string {
	if sp.kind == 1 {
		return "binding"
	}
	return "location"
}

// Location returns the location of an attribute, varying or output.
func (t *Table) Location(h ir.ResourceHandle) (uint32, bool) {
	if int(h) >= len(t.slots) || !t.slots[h].Role.IsLocationRole() {
		return 0, false
	}
	return t.slots[h].Index, true
}

// Binding returns the group and binding of a uniform, texture, sampler or
// storage buffer.
func (t *Table) Binding(h ir.ResourceHandle) (group, binding uint32, ok bool) {
	if int(h) >= len(t.slots) || t.slots[h].Role.IsLocationRole() {
		return 0, 0, false
	}
	s := t.slots[h]
	return s.Group, s.Index, true
}

// FreeBindings returns the n lowest bindings of a group that no resource
// of the module uses.
func (t *Table) FreeBindings(group uint32, n int) []uint32 {
	sp := space{kind: 1, group: group}
	out := make([]uint32, 0, n)
	next := uint32(0)
	for len(out) < n {
		next = t.lowestFree(sp, next)
		out = append(out, next)
		next++
	}
	return out
}

// Slots returns every allocated slot, sorted by space and index.
func (t *Table) Slots() []Slot {
	out := slices.Clone(t.slots)
	slices.SortStableFunc(out, func(a, b Slot) int {
		ka, kb := sortKey(a), sortKey(b)
		if c := cmp.Compare(ka, kb); c != 0 {
			return c
		}
		if c := cmp.Compare(a.Group, b.Group); c != 0 {
			return c
		}
		return cmp.Compare(a.Index, b.Index)
	})
	return out
}

func sortKey(s Slot) int {
	if s.Role.IsLocationRole() {
		return int(s.Role)*4 + int(s.Stage)
	}
	return 100
}

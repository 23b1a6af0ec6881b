// Package ir defines the intermediate representation for shade.
//
// The IR is the frozen form of a shader program built with the shade
// construction API. It is designed to be:
//   - Arena-allocated: every expression, resource, local and function lives in a
//     slice on the Module and is addressed by a typed handle.
//   - Closed: expression, statement and type kinds are sealed interfaces, so the
//     writers can switch over them exhaustively.
//   - Dialect-neutral: the same graph is lowered by the glsl and wgsl writers.
//
// # Structure
//
// A Module contains:
//   - Types: deduplicated type definitions (see RegisterType)
//   - Structs: ordered struct/block descriptors
//   - Expressions: the node graph shared by all functions
//   - Resources: interned (role, name) references with optional explicit slots
//   - Locals: let/var bindings
//   - Functions: user functions and entry point bodies
//   - EntryPoints: vertex, fragment and compute entry points
//
// # Translation Pipeline
//
//	shade DSL → ir.Module → bind.Table → GLSL / WGSL text
//
// Text for a node is produced by an explicit tree walk in each writer and
// memoized in a TextCache keyed by (expression handle, dialect).
package ir

package shade

import (
	"github.com/gogpu/shade/ir"
)

// Error is the error type returned by construction and compilation.
type Error = ir.Error

// ErrorKind categorizes an Error.
type ErrorKind = ir.ErrorKind

// Error kinds.
const (
	ErrInvalidArity         = ir.ErrInvalidArity
	ErrTypeMismatch         = ir.ErrTypeMismatch
	ErrUnbalancedScope      = ir.ErrUnbalancedScope
	ErrSlotCollision        = ir.ErrSlotCollision
	ErrUnsupportedConstruct = ir.ErrUnsupportedConstruct
	ErrInvalidModule        = ir.ErrInvalidModule
)

// IsKind reports whether err wraps an Error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	return ir.IsKind(err, kind)
}

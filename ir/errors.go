package ir

import (
	"errors"
	"fmt"
)

// ErrorKind categorizes construction and compilation errors.
type ErrorKind uint8

const (
	// ErrInvalidArity indicates a constructor or operation received the wrong
	// number or shape of arguments.
	ErrInvalidArity ErrorKind = iota

	// ErrTypeMismatch indicates operand types that no dialect accepts.
	ErrTypeMismatch

	// ErrUnbalancedScope indicates a statement sequence was closed or
	// continued out of order.
	ErrUnbalancedScope

	// ErrSlotCollision indicates two resources claimed the same explicit slot.
	ErrSlotCollision

	// ErrUnsupportedConstruct indicates a construct the target dialect
	// cannot express.
	ErrUnsupportedConstruct

	// ErrInvalidModule indicates the IR module is malformed.
	ErrInvalidModule
)

// String returns a human-readable error kind name.
func (k ErrorKind) String() string {
	switch k {
	case ErrInvalidArity:
		return "InvalidArity"
	case ErrTypeMismatch:
		return "TypeMismatch"
	case ErrUnbalancedScope:
		return "UnbalancedScope"
	case ErrSlotCollision:
		return "SlotCollision"
	case ErrUnsupportedConstruct:
		return "UnsupportedConstruct"
	case ErrInvalidModule:
		return "InvalidModule"
	default:
		return "Unknown"
	}
}

// Error is a categorized shade error.
type Error struct {
	// Kind categorizes the error.
	Kind ErrorKind

	// Message provides details about the error.
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Errorf creates an Error of the given kind.
func Errorf(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// IsKind reports whether err wraps an *Error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

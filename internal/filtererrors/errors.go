package filtererrors

import (
	"errors"
	"fmt"
)

// Sentinel errors matched by the typed errors below through errors.Is.
var (
	ErrSyntax               = errors.New("filterql: syntax error")
	ErrUnsupportedOperation = errors.New("filterql: unsupported operation")
	ErrUnresolvedConstant   = errors.New("filterql: unresolved constant")
)

// SyntaxError reports malformed filter text. Line and Column are 1-based,
// Offset is the 0-based byte offset into the source.
type SyntaxError struct {
	Message string
	Line    int
	Column  int
	Offset  int
}

// Error implements the error interface.
func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at line %d, column %d: %s", e.Line, e.Column, e.Message)
}

// Is reports whether target is ErrSyntax.
func (e *SyntaxError) Is(target error) bool {
	return target == ErrSyntax
}

// UnsupportedOperationError is returned when a backend compiler cannot
// represent an expression without changing its meaning.
type UnsupportedOperationError struct {
	// Backend is the identifier of the compiler that rejected the expression.
	Backend string

	// Operation names the rejected construct, usually the canonical text of
	// the offending node.
	Operation string

	// Reason is a short human-readable explanation.
	Reason string
}

// Error implements the error interface.
func (e *UnsupportedOperationError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("%s: unsupported operation %q: %s", e.Backend, e.Operation, e.Reason)
	}
	return fmt.Sprintf("%s: unsupported operation %q", e.Backend, e.Operation)
}

// Is reports whether target is ErrUnsupportedOperation.
func (e *UnsupportedOperationError) Is(target error) bool {
	return target == ErrUnsupportedOperation
}

// UnresolvedConstantError is returned when an @name reference has no binding
// in the compile options.
type UnresolvedConstantError struct {
	Name string
}

// Error implements the error interface.
func (e *UnresolvedConstantError) Error() string {
	return fmt.Sprintf("unresolved constant @%s", e.Name)
}

// Is reports whether target is ErrUnresolvedConstant.
func (e *UnresolvedConstantError) Is(target error) bool {
	return target == ErrUnresolvedConstant
}

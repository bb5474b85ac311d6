package filterql

import (
	"errors"

	"github.com/nlstn/go-filterql/internal/filtererrors"
)

// Sentinel errors for the error categories of this package.
// These can be used with errors.Is() for error handling.
var (
	// ErrSyntax matches every *SyntaxError.
	ErrSyntax = filtererrors.ErrSyntax

	// ErrUnsupportedOperation matches every *UnsupportedOperationError.
	ErrUnsupportedOperation = filtererrors.ErrUnsupportedOperation

	// ErrUnresolvedConstant matches every *UnresolvedConstantError.
	ErrUnresolvedConstant = filtererrors.ErrUnresolvedConstant

	// ErrUnknownBackend is returned for a backend identifier other than
	// BackendDocument, BackendSearch and BackendRelational.
	ErrUnknownBackend = errors.New("filterql: unknown backend")
)

// SyntaxError reports malformed filter text with its 1-based line and
// column.
//
// When a filter contains several lexical errors, Parse returns them together
// in one error; errors.As finds the first of them.
type SyntaxError = filtererrors.SyntaxError

// UnsupportedOperationError is returned when a backend cannot represent an
// expression without changing its meaning.
type UnsupportedOperationError = filtererrors.UnsupportedOperationError

// UnresolvedConstantError is returned for an @name reference with no
// binding.
type UnresolvedConstantError = filtererrors.UnresolvedConstantError

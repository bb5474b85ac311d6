// Package compile holds what the backend compilers share: backend
// identifiers, compile options, operator normalisation, operand resolution
// and the prepare hook protocol.
package compile

import (
	"math/big"

	"github.com/nlstn/go-filterql/internal/ast"
	"github.com/nlstn/go-filterql/internal/filtererrors"
)

// Backend identifiers. They are passed to prepare hooks and appear in
// UnsupportedOperationError.Backend.
const (
	DocumentBackend   = "document"
	SearchBackend     = "search"
	RelationalBackend = "relational"
)

// Options configures a single compilation.
type Options struct {
	// Constants binds @name references. Values may be any Go scalar, a slice
	// (for in), or a *big.Int.
	Constants map[string]any

	// Prepare is consulted for every comparison that carries no hook of its
	// own.
	Prepare ast.PrepareFunc
}

// Compiler is embedded by each backend. It carries the backend identity and
// options and resolves comparisons into a backend-neutral form.
type Compiler struct {
	Backend string
	Options Options

	// Big converts integers outside ±MaxSafeInteger into the backend's exact
	// numeric type. Nil leaves them as *big.Int.
	Big func(*big.Int) (any, error)
}

// Unsupported returns an UnsupportedOperationError for e.
func (c *Compiler) Unsupported(e ast.Expression, reason string) error {
	return &filtererrors.UnsupportedOperationError{
		Backend:   c.Backend,
		Operation: ast.Print(e),
		Reason:    reason,
	}
}

// Prepare runs the prepare hook for node, if any. The node's own hook takes
// precedence over Options.Prepare.
func (c *Compiler) Prepare(node *ast.ComparisonExpression, negated bool) (any, bool, error) {
	hook := node.Prepare
	if hook == nil {
		hook = c.Options.Prepare
	}
	if hook == nil {
		return nil, false, nil
	}
	return hook(ast.PrepareArgs{
		Left:    node.Left,
		Op:      node.Op,
		Right:   node.Right,
		Backend: c.Backend,
		Negated: negated,
	})
}

// Comparison is a comparison reduced to a base operator, an effective
// negation flag and resolved operands. Field references are always on the
// left when exactly one side is a field.
type Comparison struct {
	Node    *ast.ComparisonExpression
	Op      ast.ComparisonOperator
	Negated bool
	Left    Operand
	Right   Operand
}

// Comparison resolves node under the given negation. Negated operators such
// as != are folded into the flag so that not (a = 1) and a != 1 produce the
// same Comparison.
func (c *Compiler) Comparison(node *ast.ComparisonExpression, negated bool) (Comparison, error) {
	if !node.Op.Valid() {
		return Comparison{}, c.Unsupported(node, "unknown operator "+string(node.Op))
	}

	left, err := c.Operand(node.Left)
	if err != nil {
		return Comparison{}, err
	}
	right, err := c.Operand(node.Right)
	if err != nil {
		return Comparison{}, err
	}

	base, opNegated := Normalize(node.Op)
	if left.Kind == KindValue && right.Kind != KindValue {
		mirrored, ok := Mirror(base)
		if !ok {
			return Comparison{}, c.Unsupported(node, "value on the left of "+string(node.Op))
		}
		base = mirrored
		left, right = right, left
	}
	if left.Kind == KindValue {
		return Comparison{}, c.Unsupported(node, "comparison does not reference a field")
	}

	return Comparison{
		Node:    node,
		Op:      base,
		Negated: negated != opNegated,
		Left:    left,
		Right:   right,
	}, nil
}

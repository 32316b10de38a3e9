// linalg/errors.go
package linalg

import (
	"errors"
	"fmt"
)

var (
	// ErrAllocation is returned when a matrix cannot be created: a
	// non-positive dimension, an overflowing element count, or a request
	// above MaxElements.
	ErrAllocation = errors.New("linalg: allocation failure")

	// ErrShapeMismatch is returned when operand dimensions are incompatible
	// or a square matrix was required.
	ErrShapeMismatch = errors.New("linalg: shape mismatch")

	// ErrNotPositiveDefinite is returned by the Cholesky family when a pivot
	// radicand is not strictly positive. Callers usually react by raising
	// the ridge term and retrying.
	ErrNotPositiveDefinite = errors.New("linalg: matrix is not positive definite")

	ErrInvalidArgument = errors.New("linalg: invalid argument")
	ErrIndexOutOfRange = errors.New("linalg: index out of range")
	ErrReleased        = errors.New("linalg: use of released matrix")
)

// PivotError reports the column at which a Cholesky factorization hit a
// non-positive (or NaN) radicand.
type PivotError struct {
	Col      int
	Radicand float64
}

func (e *PivotError) Error() string {
	return fmt.Sprintf("linalg: matrix is not positive definite (radicand %g at column %d)", e.Radicand, e.Col)
}

func (e *PivotError) Unwrap() error { return ErrNotPositiveDefinite }

func shapeErrorf(op string, format string, args ...any) error {
	return fmt.Errorf("%s: %s: %w", op, fmt.Sprintf(format, args...), ErrShapeMismatch)
}

// operand checks a matrix argument before an operation touches it.
func operand(op string, m *Matrix) error {
	if m == nil {
		return fmt.Errorf("%s: nil matrix: %w", op, ErrInvalidArgument)
	}
	if m.data == nil {
		return fmt.Errorf("%s: %w", op, ErrReleased)
	}
	return nil
}

func square(op string, m *Matrix) error {
	if err := operand(op, m); err != nil {
		return err
	}
	if m.rows != m.cols {
		return shapeErrorf(op, "need square matrix, have %dx%d", m.rows, m.cols)
	}
	return nil
}

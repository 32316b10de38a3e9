// linalg/ops.go
package linalg

import (
	"fmt"
	"math"
)

// Transpose returns a new cols x rows matrix holding m's transpose.
func Transpose(m *Matrix) (*Matrix, error) {
	if err := operand("transpose", m); err != nil {
		return nil, err
	}
	out, err := New(m.cols, m.rows)
	if err != nil {
		return nil, err
	}
	for i := 0; i < m.rows; i++ {
		row := m.data[i*m.cols : (i+1)*m.cols]
		for j, v := range row {
			out.data[j*out.cols+i] = v
		}
	}
	return out, nil
}

// TransposeSquareInPlace transposes a square matrix by swapping mirrored
// off-diagonal pairs.
func TransposeSquareInPlace(m *Matrix) error {
	if err := square("transpose in place", m); err != nil {
		return err
	}
	n := m.rows
	for i := 1; i < n; i++ {
		for j := 0; j < i; j++ {
			m.data[i*n+j], m.data[j*n+i] = m.data[j*n+i], m.data[i*n+j]
		}
	}
	return nil
}

func sameShape(op string, x, y *Matrix) error {
	if err := operand(op, x); err != nil {
		return err
	}
	if err := operand(op, y); err != nil {
		return err
	}
	if x.rows != y.rows || x.cols != y.cols {
		return shapeErrorf(op, "%dx%d vs %dx%d", x.rows, x.cols, y.rows, y.cols)
	}
	return nil
}

// Add returns x+y as a new matrix.
func Add(x, y *Matrix) (*Matrix, error) {
	if err := sameShape("add", x, y); err != nil {
		return nil, err
	}
	out := x.Copy()
	for k, v := range y.data {
		out.data[k] += v
	}
	return out, nil
}

// AddInPlace adds y into x and returns x. y is not modified and stays owned
// by the caller.
func AddInPlace(x, y *Matrix) (*Matrix, error) {
	if err := sameShape("add in place", x, y); err != nil {
		return nil, err
	}
	for k, v := range y.data {
		x.data[k] += v
	}
	return x, nil
}

// AddInPlaceMove adds y into x and returns x. y's storage is released before
// returning, on success and on failure alike.
func AddInPlaceMove(x *Matrix, y Moved) (*Matrix, error) {
	defer y.Release()
	if y.m == nil {
		return nil, fmt.Errorf("add in place move: empty moved value: %w", ErrInvalidArgument)
	}
	return AddInPlace(x, y.m)
}

// Regularize returns x + lambda*I as a new matrix. x must be square.
func Regularize(x *Matrix, lambda float64) (*Matrix, error) {
	if err := checkRidge(x, lambda); err != nil {
		return nil, err
	}
	out := x.Copy()
	addDiagonal(out, lambda)
	return out, nil
}

// RegularizeInPlace adds lambda to every diagonal entry of x. Off-diagonal
// entries are not touched.
func RegularizeInPlace(x *Matrix, lambda float64) error {
	if err := checkRidge(x, lambda); err != nil {
		return err
	}
	addDiagonal(x, lambda)
	return nil
}

func checkRidge(x *Matrix, lambda float64) error {
	if err := square("regularize", x); err != nil {
		return err
	}
	if math.IsNaN(lambda) || math.IsInf(lambda, 0) {
		return fmt.Errorf("regularize: lambda %v: %w", lambda, ErrInvalidArgument)
	}
	return nil
}

func addDiagonal(x *Matrix, lambda float64) {
	for i := 0; i < x.rows; i++ {
		x.data[i*x.cols+i] += lambda
	}
}

package tuner

import (
	"fmt"
	"math"

	"chess-tuner/linalg"
)

// Predict is the linear evaluation of one design row. The row must hold at
// least one value per weight; entries past that are ignored.
func (w *Weights) Predict(row []float64) (float64, error) {
	if len(row) < len(w.Values) {
		return 0, fmt.Errorf("tuner: predict: row has %d values for %d weights: %w",
			len(row), len(w.Values), linalg.ErrShapeMismatch)
	}
	s := 0.0
	for i, v := range row[:len(w.Values)] {
		s += v * w.Values[i]
	}
	return s, nil
}

func (w *Weights) column() (*linalg.Matrix, error) {
	return linalg.NewFromSlice(len(w.Values), 1, append([]float64(nil), w.Values...))
}

// Evaluate scores w against the design's labels.
func Evaluate(w *Weights, d *Design) (Metrics, error) {
	if w == nil || d == nil || d.X.Released() || d.Y.Released() {
		return Metrics{}, ErrNoSamples
	}
	wm, err := w.column()
	if err != nil {
		return Metrics{}, fmt.Errorf("tuner: weights: %w", err)
	}
	defer wm.Release()
	resid, err := linalg.Mul(d.X, wm)
	if err != nil {
		return Metrics{}, fmt.Errorf("tuner: predict: %w", err)
	}
	defer resid.Release()

	neg := d.Y.Copy()
	labels := neg.RawData()
	mean := 0.0
	for k, v := range labels {
		mean += v
		labels[k] = -v
	}
	n := len(labels)
	mean /= float64(n)
	// resid = Xw - y; neg is handed over and freed by the call
	if _, err := linalg.AddInPlaceMove(resid, neg.Move()); err != nil {
		return Metrics{}, fmt.Errorf("tuner: residuals: %w", err)
	}

	ssRes, ssTot := 0.0, 0.0
	for k, r := range resid.RawData() {
		ssRes += r * r
		dv := d.Y.At(k, 0) - mean
		ssTot += dv * dv
	}
	m := Metrics{N: n, MSE: ssRes / float64(n)}
	m.RMSE = math.Sqrt(m.MSE)
	// constant labels leave R2 at 0
	if ssTot > 0 {
		m.R2 = 1 - ssRes/ssTot
	}
	return m, nil
}

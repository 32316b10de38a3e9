// tuner/types.go
package tuner

import (
	"github.com/dylhunn/dragontoothmg"

	"chess-tuner/linalg"
)

type Sample struct {
	FEN   string
	Board dragontoothmg.Board
	Label float64 // white score: 0, 0.5, 1 or anything in between
}

// Variant names a Cholesky factorization used by Fit.
type Variant string

const (
	VariantBanachiewicz  Variant = "banachiewicz"
	VariantInPlace       Variant = "inplace"
	VariantOuter         Variant = "outer"
	VariantOuterThreaded Variant = "outer-threaded"
)

var variants = []Variant{VariantBanachiewicz, VariantInPlace, VariantOuter, VariantOuterThreaded}

func (v Variant) Valid() bool {
	for _, k := range variants {
		if v == k {
			return true
		}
	}
	return false
}

type FitConfig struct {
	Lambda       float64 `json:"lambda"`
	LambdaGrowth float64 `json:"lambda_growth"`
	LambdaFloor  float64 `json:"lambda_floor"` // first ridge tried after a failure at lambda=0
	MaxRetries   int     `json:"max_retries"`
	Threads      int     `json:"threads"` // <=0 means GOMAXPROCS
	Variant      Variant `json:"variant"`
}

type DesignConfig struct {
	Intercept bool `json:"intercept"`
	Threads   int  `json:"threads"`
	ChunkSize int  `json:"chunk_size"` // rows per goroutine, 0 picks a default
}

// Design is the least-squares problem built from a dataset: one row of X per
// sample, and the matching labels in the single column of Y.
type Design struct {
	X     *linalg.Matrix
	Y     *linalg.Matrix
	Names []string
}

func (d *Design) Release() {
	if d == nil {
		return
	}
	d.X.Release()
	d.Y.Release()
}

// Weights is the fitted coefficient vector, one entry per design column.
type Weights struct {
	Names   []string  `json:"names"`
	Values  []float64 `json:"values"`
	Lambda  float64   `json:"lambda"`
	Retries int       `json:"retries"`
	Variant Variant   `json:"variant"`
	Samples int       `json:"samples"`
}

// Metrics summarises how well weights reproduce the labels.
type Metrics struct {
	N    int     `json:"n"`
	MSE  float64 `json:"mse"`
	RMSE float64 `json:"rmse"`
	R2   float64 `json:"r2"`
}

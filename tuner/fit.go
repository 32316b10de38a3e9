// tuner/fit.go
package tuner

import (
	"context"
	"errors"
	"fmt"
	"math"
	"runtime"
	"time"

	"github.com/rs/zerolog/log"

	"chess-tuner/linalg"
)

// DefaultFitConfig is a small ridge with tenfold escalation on failure.
func DefaultFitConfig() FitConfig {
	return FitConfig{
		Lambda:       1e-6,
		LambdaGrowth: 10,
		LambdaFloor:  1e-8,
		MaxRetries:   8,
		Variant:      VariantOuterThreaded,
	}
}

func (c FitConfig) Validate() error {
	if math.IsNaN(c.Lambda) || math.IsInf(c.Lambda, 0) || c.Lambda < 0 {
		return fmt.Errorf("tuner: lambda must be finite and >= 0, got %v", c.Lambda)
	}
	if !(c.LambdaGrowth > 1) || math.IsInf(c.LambdaGrowth, 0) {
		return fmt.Errorf("tuner: lambda growth must be > 1, got %v", c.LambdaGrowth)
	}
	if !(c.LambdaFloor > 0) || math.IsInf(c.LambdaFloor, 0) {
		return fmt.Errorf("tuner: lambda floor must be > 0, got %v", c.LambdaFloor)
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("tuner: max retries must be >= 0, got %d", c.MaxRetries)
	}
	if !c.Variant.Valid() {
		return fmt.Errorf("tuner: unknown variant %q", c.Variant)
	}
	return nil
}

func (c FitConfig) threads() int {
	if c.Threads <= 0 {
		return runtime.GOMAXPROCS(0)
	}
	return c.Threads
}

// Fit solves the ridge normal equations (XᵗX + λI) w = Xᵗy. When the
// factorization finds the system not positive definite, λ is raised by
// LambdaGrowth (or set to LambdaFloor when it was zero) and the solve is
// retried, at most MaxRetries times.
func Fit(ctx context.Context, d *Design, cfg FitConfig) (*Weights, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if d == nil || d.X.Released() || d.Y.Released() {
		return nil, ErrNoSamples
	}
	threads := cfg.threads()
	n, p := d.X.Dims()
	names := append([]string(nil), d.Names...)
	if len(names) != p {
		names = columnNames(p)
	}

	t0 := time.Now()
	gram, err := linalg.GramThreaded(d.X, threads)
	if err != nil {
		return nil, fmt.Errorf("tuner: gram: %w", err)
	}
	defer gram.Release()
	rhs, err := linalg.MulTransAThreaded(d.X, d.Y, threads)
	if err != nil {
		return nil, fmt.Errorf("tuner: xᵗy: %w", err)
	}
	defer rhs.Release()
	log.Debug().
		Int("samples", n).
		Int("features", p).
		Int("threads", threads).
		Dur("took", time.Since(t0)).
		Msg("normal-equations")

	lambda := cfg.Lambda
	for attempt := 0; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		t1 := time.Now()
		w, err := solveRidge(gram, rhs, lambda, cfg.Variant, threads)
		if err == nil {
			log.Info().
				Float64("lambda", lambda).
				Int("retries", attempt).
				Str("variant", string(cfg.Variant)).
				Dur("took", time.Since(t1)).
				Msg("fit-done")
			values := append([]float64(nil), w.RawData()...)
			w.Release()
			return &Weights{
				Names:   names,
				Values:  values,
				Lambda:  lambda,
				Retries: attempt,
				Variant: cfg.Variant,
				Samples: n,
			}, nil
		}
		if !errors.Is(err, linalg.ErrNotPositiveDefinite) {
			return nil, fmt.Errorf("tuner: solve: %w", err)
		}
		if attempt >= cfg.MaxRetries {
			return nil, fmt.Errorf("tuner: giving up after %d retries at lambda=%g: %w", attempt, lambda, err)
		}
		next := lambda * cfg.LambdaGrowth
		if lambda <= 0 {
			next = cfg.LambdaFloor
		}
		log.Warn().Err(err).Float64("lambda", lambda).Float64("next", next).Msg("not-positive-definite")
		lambda = next
	}
}

// solveRidge factors gram+λI with the chosen variant and solves for rhs.
// gram itself is not modified.
func solveRidge(gram, rhs *linalg.Matrix, lambda float64, v Variant, threads int) (*linalg.Matrix, error) {
	a, err := linalg.Regularize(gram, lambda)
	if err != nil {
		return nil, err
	}
	defer a.Release()

	switch v {
	case VariantBanachiewicz:
		return linalg.SolveCholesky(a, rhs)
	case VariantOuterThreaded:
		return linalg.SolveCholeskyThreaded(a, rhs, threads)
	case VariantInPlace:
		err = linalg.CholeskyInPlace(a)
	case VariantOuter:
		err = linalg.CholeskyOuterInPlace(a)
	default:
		return nil, fmt.Errorf("tuner: unknown variant %q", v)
	}
	if err != nil {
		return nil, err
	}
	z, err := linalg.ForwardSubstitute(a, rhs)
	if err != nil {
		return nil, err
	}
	defer z.Release()
	return linalg.BackSubstituteTransposed(a, z)
}

// tuner/tuner.go
package tuner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"
)

// Result is what a full run produced.
type Result struct {
	Weights *Weights
	Metrics Metrics
	Stats   LoadStats
}

// Run loads the dataset, builds the design, fits and evaluates the weights,
// and writes whatever outputs cfg asks for.
func Run(ctx context.Context, cfg Config) (*Result, error) {
	if cfg.Data == "" {
		return nil, fmt.Errorf("tuner: no dataset given")
	}
	if err := cfg.Fit.Validate(); err != nil {
		return nil, err
	}

	t0 := time.Now()
	samples, stats, err := LoadDataset(cfg.Data, LoadOptions{CSV: cfg.CSV, MaxRows: cfg.MaxRows})
	if err != nil {
		return nil, fmt.Errorf("tuner: load %s: %w", cfg.Data, err)
	}
	log.Info().
		Str("path", cfg.Data).
		Int("samples", len(samples)).
		Int("skipped", stats.Skipped).
		Dur("took", time.Since(t0)).
		Msg("dataset-loaded")

	if cfg.Design.Threads <= 0 {
		cfg.Design.Threads = cfg.Fit.Threads
	}
	design, err := BuildDesign(ctx, samples, cfg.Design)
	if err != nil {
		return nil, err
	}
	defer design.Release()

	if cfg.NpyDir != "" {
		if err := SaveDesignNpy(cfg.NpyDir, design); err != nil {
			return nil, fmt.Errorf("tuner: npy export: %w", err)
		}
		log.Info().Str("dir", cfg.NpyDir).Msg("design-exported")
	}

	w, err := Fit(ctx, design, cfg.Fit)
	if err != nil {
		return nil, err
	}
	m, err := Evaluate(w, design)
	if err != nil {
		return nil, err
	}
	log.Info().
		Float64("mse", m.MSE).
		Float64("rmse", m.RMSE).
		Float64("r2", m.R2).
		Msg("fit-quality")

	if cfg.Out != "" {
		if dir := filepath.Dir(cfg.Out); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, err
			}
		}
		if err := SaveWeightsJSON(cfg.Out, w, &m); err != nil {
			return nil, fmt.Errorf("tuner: save weights: %w", err)
		}
		log.Info().Str("path", cfg.Out).Msg("weights-saved")
	}
	return &Result{Weights: w, Metrics: m, Stats: stats}, nil
}

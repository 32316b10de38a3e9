// cmd/fit/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"chess-tuner/tuner"
)

var (
	configPath   = flag.String("config", "", "Optional JSON config; flags override it")
	dataPath     = flag.String("data", "", "Path to TSV/CSV with FEN and label")
	isCSV        = flag.Bool("csv", false, "Input is CSV (default TSV)")
	maxRows      = flag.Int("max_rows", 0, "Optional cap on rows loaded (0=all)")
	lambda       = flag.Float64("lambda", 1e-6, "Ridge term added to the Gram diagonal")
	lambdaGrowth = flag.Float64("lambda_growth", 10, "Factor applied to lambda after a failed factorization")
	maxRetries   = flag.Int("max_retries", 8, "How often lambda may be raised before giving up")
	threads      = flag.Int("threads", 0, "Worker threads for Gram, factorization and design assembly (0=GOMAXPROCS)")
	variant      = flag.String("variant", string(tuner.VariantOuterThreaded), "Cholesky variant: banachiewicz, inplace, outer, outer-threaded")
	intercept    = flag.Bool("intercept", false, "Append a constant column to the design matrix")
	outJSON      = flag.String("out", "weights.json", "Where to write fitted weights as JSON")
	npyDir       = flag.String("npy_dir", "", "Optional directory for design_x.npy / design_y.npy")
	logLevel     = flag.String("log_level", "info", "debug, info, warn or error")
	summary      = flag.Bool("summary", true, "Print fitted weights")
)

func main() {
	flag.Parse()
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly})

	cfg, err := tuner.LoadConfig(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("config")
	}
	applyFlags(&cfg)

	if cfg.Data == "" {
		fmt.Println("Usage:")
		flag.PrintDefaults()
		os.Exit(2)
	}
	lvl, err := zerolog.ParseLevel(strings.ToLower(cfg.LogLevel))
	if err != nil {
		log.Warn().Str("level", cfg.LogLevel).Msg("unknown log level, using info")
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
	if n, ok := explicitProcs(cfg); ok {
		runtime.GOMAXPROCS(n)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	res, err := tuner.Run(ctx, cfg)
	if err != nil {
		log.Error().Err(err).Msg("fit failed")
		os.Exit(1)
	}
	if *summary {
		printSummary(res)
	}
}

// applyFlags copies flags the user actually passed on top of cfg.
func applyFlags(cfg *tuner.Config) {
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "data":
			cfg.Data = *dataPath
		case "csv":
			cfg.CSV = *isCSV
		case "max_rows":
			cfg.MaxRows = *maxRows
		case "lambda":
			cfg.Fit.Lambda = *lambda
		case "lambda_growth":
			cfg.Fit.LambdaGrowth = *lambdaGrowth
		case "max_retries":
			cfg.Fit.MaxRetries = *maxRetries
		case "threads":
			cfg.Fit.Threads = *threads
			cfg.Design.Threads = *threads
		case "variant":
			cfg.Fit.Variant = tuner.Variant(*variant)
		case "intercept":
			cfg.Design.Intercept = *intercept
		case "out":
			cfg.Out = *outJSON
		case "npy_dir":
			cfg.NpyDir = *npyDir
		case "log_level":
			cfg.LogLevel = *logLevel
		}
	})
}

// explicitProcs reports the thread count the user asked for through a flag,
// TUNER_THREADS or the config file. Zero leaves GOMAXPROCS to the runtime.
func explicitProcs(cfg tuner.Config) (int, bool) {
	return cfg.Fit.Threads, cfg.Fit.Threads > 0
}

func printSummary(res *tuner.Result) {
	w := res.Weights
	fmt.Printf("samples=%d  lambda=%g  retries=%d  variant=%s\n", w.Samples, w.Lambda, w.Retries, w.Variant)
	fmt.Printf("mse=%.6f  rmse=%.6f  r2=%.4f\n", res.Metrics.MSE, res.Metrics.RMSE, res.Metrics.R2)
	for i, name := range w.Names {
		fmt.Printf("  %-18s %12.6f\n", name, w.Values[i])
	}
}

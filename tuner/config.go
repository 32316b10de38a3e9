// tuner/config.go
package tuner

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config is everything a fitting run needs. Values are layered: defaults,
// then environment (TUNER_*), then a JSON file, then command-line flags.
type Config struct {
	Data     string       `json:"data"`
	CSV      bool         `json:"csv"`
	MaxRows  int          `json:"max_rows"`
	Out      string       `json:"out"`
	NpyDir   string       `json:"npy_dir"`
	LogLevel string       `json:"log_level"`
	Design   DesignConfig `json:"design"`
	Fit      FitConfig    `json:"fit"`
}

func DefaultConfig() Config {
	return Config{
		Out:      "weights.json",
		LogLevel: "info",
		Fit:      DefaultFitConfig(),
	}
}

// LoadEnvFiles loads .env style files into the process environment. Files
// that do not exist are ignored; variables already set are kept.
func LoadEnvFiles(paths ...string) error {
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("tuner: env file %s: %w", p, err)
		}
	}
	return nil
}

// ApplyEnv overrides cfg with TUNER_* variables that are set.
func ApplyEnv(cfg *Config) error {
	if v, ok := lookup("TUNER_DATA"); ok {
		cfg.Data = v
	}
	if v, ok := lookup("TUNER_OUT"); ok {
		cfg.Out = v
	}
	if v, ok := lookup("TUNER_LOG_LEVEL"); ok {
		cfg.LogLevel = v
	}
	if v, ok := lookup("TUNER_VARIANT"); ok {
		cfg.Fit.Variant = Variant(v)
	}
	if v, ok := lookup("TUNER_LAMBDA"); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("tuner: TUNER_LAMBDA: %w", err)
		}
		cfg.Fit.Lambda = f
	}
	if v, ok := lookup("TUNER_THREADS"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("tuner: TUNER_THREADS: %w", err)
		}
		cfg.Fit.Threads = n
		cfg.Design.Threads = n
	}
	return nil
}

func lookup(key string) (string, bool) {
	v, ok := os.LookupEnv(key)
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}

// LoadConfig builds a Config from defaults, the environment (after loading
// ./.env if present) and, when path is not empty, a JSON file whose fields
// override the rest.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if err := LoadEnvFiles(".env"); err != nil {
		return cfg, err
	}
	if err := ApplyEnv(&cfg); err != nil {
		return cfg, err
	}
	if path == "" {
		return cfg, nil
	}
	if err := decodeConfig(path, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func decodeConfig(path string, out *Config) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	dec := json.NewDecoder(f)
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("tuner: config %s: %w", path, err)
	}
	return nil
}

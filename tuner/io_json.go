// tuner/io_json.go
package tuner

import (
	"encoding/json"
	"fmt"
	"os"
)

const weightsLayoutTag = "linear_ridge_v1"

type weightsJSON struct {
	Layout  string             `json:"layout"`
	Weights *Weights           `json:"weights"`
	ByName  map[string]float64 `json:"by_name,omitempty"`
	Metrics *Metrics           `json:"metrics,omitempty"`
}

// SaveWeightsJSON writes w (and optional fit metrics) through a temp file
// and a rename, so readers never see a half-written file.
func SaveWeightsJSON(path string, w *Weights, m *Metrics) error {
	payload := weightsJSON{Layout: weightsLayoutTag, Weights: w, Metrics: m}
	if len(w.Names) == len(w.Values) {
		payload.ByName = make(map[string]float64, len(w.Names))
		for i, name := range w.Names {
			payload.ByName[name] = w.Values[i]
		}
	}
	b, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func LoadWeightsJSON(path string) (*Weights, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var p weightsJSON
	if err := json.Unmarshal(b, &p); err != nil {
		return nil, err
	}
	if p.Layout != weightsLayoutTag || p.Weights == nil {
		return nil, fmt.Errorf("tuner: %s: unexpected layout %q", path, p.Layout)
	}
	if len(p.Weights.Names) != len(p.Weights.Values) {
		return nil, fmt.Errorf("tuner: %s: %d names for %d values", path, len(p.Weights.Names), len(p.Weights.Values))
	}
	return p.Weights, nil
}

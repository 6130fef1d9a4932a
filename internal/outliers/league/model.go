package league

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	types "github.com/courtpulse/courtpulse-backend/internal/domain"
	"github.com/courtpulse/courtpulse-backend/internal/domain/nba"
	pkgerrors "github.com/courtpulse/courtpulse-backend/internal/pkg/errors"
)

// DefaultModelFile is the exported artifact name the trainer writes.
const DefaultModelFile = "autoencoder_best.json"

// FeatureNames is the fixed input order of the reconstruction model.
var FeatureNames = []string{
	nba.FeatPts, nba.FeatAst, nba.FeatReb, nba.FeatStl, nba.FeatBlk,
	nba.FeatTov, nba.FeatPF,
	nba.FeatFGPct, nba.FeatFG3Pct, nba.FeatFTPct,
	nba.FeatFGA, nba.FeatFTA, nba.FeatFG3A,
	nba.FeatMin,
}

// minMinutes keeps garbage-time cameos out of league scoring.
const minMinutes = 5.0

// Layer is one dense layer of the exported network: y = Wx + b, with an
// optional activation.
type Layer struct {
	Weights    [][]float64 `json:"weights"`
	Biases     []float64   `json:"biases"`
	Activation string      `json:"activation"` // "relu" or "" for linear
}

// Scaler standardizes a feature vector with the training-set statistics.
type Scaler struct {
	Mean []float64 `json:"mean"`
	Std  []float64 `json:"std"`
}

// Model is the frozen reconstruction network together with everything
// scoring needs: the scaler and the training error distribution that
// calibrates percentiles.
type Model struct {
	Version  string   `json:"version"`
	Features []string `json:"features"`
	Scaler   Scaler   `json:"scaler"`
	Layers   []Layer  `json:"layers"`
	// TrainErrors is the per-sample reconstruction error over the
	// training set, sorted ascending. Percentiles rank against this fixed
	// distribution, never against the scored batch.
	TrainErrors []float64 `json:"train_errors"`
}

// LoadModel reads and validates an exported artifact. A missing file
// returns ErrNotFound so callers can degrade to a no-op.
func LoadModel(path string) (*Model, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("model artifact %s: %w", path, pkgerrors.ErrNotFound)
		}
		return nil, err
	}
	var m Model
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("model artifact %s: %w", path, err)
	}
	if err := m.validate(); err != nil {
		return nil, fmt.Errorf("model artifact %s: %w", path, err)
	}
	if !sort.Float64sAreSorted(m.TrainErrors) {
		sort.Float64s(m.TrainErrors)
	}
	return &m, nil
}

func (m *Model) validate() error {
	n := len(FeatureNames)
	if len(m.Features) != n {
		return fmt.Errorf("expected %d features, artifact has %d: %w", n, len(m.Features), pkgerrors.ErrInvalidArgument)
	}
	if len(m.Scaler.Mean) != n || len(m.Scaler.Std) != n {
		return fmt.Errorf("scaler dimension mismatch: %w", pkgerrors.ErrInvalidArgument)
	}
	if len(m.Layers) == 0 {
		return fmt.Errorf("no layers: %w", pkgerrors.ErrInvalidArgument)
	}
	in := n
	for i, layer := range m.Layers {
		if len(layer.Weights) == 0 || len(layer.Biases) != len(layer.Weights) {
			return fmt.Errorf("layer %d shape mismatch: %w", i, pkgerrors.ErrInvalidArgument)
		}
		for _, row := range layer.Weights {
			if len(row) != in {
				return fmt.Errorf("layer %d expects %d inputs, weights have %d: %w", i, in, len(row), pkgerrors.ErrInvalidArgument)
			}
		}
		in = len(layer.Weights)
	}
	if in != n {
		return fmt.Errorf("network output dimension %d does not match input %d: %w", in, n, pkgerrors.ErrInvalidArgument)
	}
	return nil
}

// Score runs one standardized line through the network and returns the
// mean squared reconstruction error, its percentile in the training
// distribution, and the per-feature share of the error.
func (m *Model) Score(features []float64) (errVal, percentile float64, contributions map[string]float64) {
	x := make([]float64, len(features))
	for i, v := range features {
		std := m.Scaler.Std[i]
		if std == 0 {
			std = 1
		}
		x[i] = (v - m.Scaler.Mean[i]) / std
	}

	recon := m.forward(x)

	total := 0.0
	sqErr := make([]float64, len(x))
	for i := range x {
		diff := recon[i] - x[i]
		sqErr[i] = diff * diff
		total += sqErr[i]
	}
	errVal = total / float64(len(x))

	contributions = make(map[string]float64, len(FeatureNames))
	for i, name := range FeatureNames {
		if total > 0 {
			contributions[name] = sqErr[i] / total
		} else {
			contributions[name] = 0
		}
	}

	percentile = m.percentileOf(errVal)
	return errVal, percentile, contributions
}

// percentileOf is the fraction of training errors strictly below err.
func (m *Model) percentileOf(err float64) float64 {
	if len(m.TrainErrors) == 0 {
		return 0
	}
	below := sort.SearchFloat64s(m.TrainErrors, err)
	return float64(below) / float64(len(m.TrainErrors)) * 100
}

func (m *Model) forward(x []float64) []float64 {
	h := x
	for _, layer := range m.Layers {
		out := make([]float64, len(layer.Weights))
		for j, row := range layer.Weights {
			sum := layer.Biases[j]
			for i, w := range row {
				sum += w * h[i]
			}
			if layer.Activation == "relu" && sum < 0 {
				sum = 0
			}
			out[j] = sum
		}
		h = out
	}
	return h
}

// featureVector extracts the model input from a stat line; ok is false
// for lines under the minutes threshold.
func featureVector(line *types.PlayerGameStat) ([]float64, bool) {
	if line.Minutes() < minMinutes {
		return nil, false
	}
	out := make([]float64, len(FeatureNames))
	for i, name := range FeatureNames {
		out[i] = line.FeatureValue(name)
	}
	return out, true
}

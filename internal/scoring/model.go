package scoring

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
)

var errNoModel = errors.New("no model path configured")

// LinearModel is a logistic scoring model loaded from a weights file. The
// heavy on-device network of the full client is out of scope here; the
// contract is only an opaque confidence in [0,1].
type LinearModel struct {
	Weights []float64 `json:"weights"`
	Bias    float64   `json:"bias"`
}

// LoadLinearModel reads a JSON weights file.
func LoadLinearModel(path string) (*LinearModel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model: %w", err)
	}
	var m LinearModel
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse model: %w", err)
	}
	if len(m.Weights) == 0 {
		return nil, errors.New("model has no weights")
	}
	return &m, nil
}

// Predict applies the model to a feature vector. Extra features are
// ignored, missing ones treated as zero, so vocabulary growth does not
// break older weight files.
func (m *LinearModel) Predict(features []float64) float64 {
	sum := m.Bias
	for i, w := range m.Weights {
		if i >= len(features) {
			break
		}
		sum += w * features[i]
	}
	// Logistic squash keeps the output in (0,1).
	return 1 / (1 + math.Exp(-sum))
}

// Package scoring wraps the optional on-device model collaborator and the
// policy that blends its confidence with rule-based confidence. Model
// unavailability is a recoverable condition, never an error surfaced to the
// caller.
package scoring

import (
	"log"
	"sync"
)

// Scorer produces a confidence in [0,1] for a feature vector. ok is false
// when the collaborator is unavailable (model missing or failed to load);
// the blender's floor policy then applies.
type Scorer interface {
	Score(features []float64) (confidence float64, ok bool)
}

// Unavailable is a Scorer with no model behind it.
type Unavailable struct{}

func (Unavailable) Score([]float64) (float64, bool) { return 0, false }

// ModelHandle lazily loads one model exactly once. Concurrent callers share
// the same load outcome instead of polling a loading flag.
type ModelHandle struct {
	path string

	once  sync.Once
	model *LinearModel
	err   error
}

// NewModelHandle creates a handle for the model at path. An empty path
// yields a permanently unavailable scorer.
func NewModelHandle(path string) *ModelHandle {
	return &ModelHandle{path: path}
}

func (h *ModelHandle) get() (*LinearModel, error) {
	h.once.Do(func() {
		if h.path == "" {
			h.err = errNoModel
			return
		}
		h.model, h.err = LoadLinearModel(h.path)
		if h.err != nil {
			log.Printf("scoring: model %s unavailable: %v", h.path, h.err)
		}
	})
	return h.model, h.err
}

// Score implements Scorer. A failed load is reported as unavailable.
func (h *ModelHandle) Score(features []float64) (float64, bool) {
	model, err := h.get()
	if err != nil {
		return 0, false
	}
	return model.Predict(features), true
}

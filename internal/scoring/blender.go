package scoring

import (
	"math"

	"github.com/savegress/carebridge/pkg/models"
)

// Blender combines a rule-based confidence with an optional model
// confidence. The severity floors keep a high-severity rule match from
// being reported with an artificially low confidence when the model is
// unavailable; their exact values are tunable constants with no clinical
// validation behind them.
type Blender struct {
	CriticalFloor float64
	SevereFloor   float64
}

// Baselines for severities below the floored ones, used where a rule
// outcome carries no per-rule confidence (vitals predicates).
const (
	moderateBaseline = 0.4
	lowBaseline      = 0.15
)

// NewBlender creates a blender with the given floors (typically from
// config; defaults 0.9 and 0.6).
func NewBlender(criticalFloor, severeFloor float64) *Blender {
	return &Blender{CriticalFloor: criticalFloor, SevereFloor: severeFloor}
}

// Baseline derives a stand-in confidence from a severity, for rule
// outcomes that have no confidence of their own.
func (b *Blender) Baseline(severity models.Severity) float64 {
	switch severity {
	case models.SeverityCritical:
		return b.CriticalFloor
	case models.SeveritySevere, models.SeverityHigh:
		return b.SevereFloor
	case models.SeverityModerate:
		return moderateBaseline
	default:
		return lowBaseline
	}
}

// Blend applies the blending policy:
//
//   - no rule match: the external score, or 0 when that is also absent
//   - rule match and external present: average of the two
//   - rule match and external absent: max(ruleConfidence, severity floor)
//
// The result is clamped to [0,1].
func (b *Blender) Blend(hasMatch bool, ruleConfidence float64, severity models.Severity, external float64, externalOK bool) float64 {
	if !hasMatch {
		if externalOK {
			return clamp01(external)
		}
		return 0
	}
	if externalOK {
		return clamp01((ruleConfidence + external) / 2)
	}
	return clamp01(math.Max(ruleConfidence, b.floor(severity)))
}

func (b *Blender) floor(severity models.Severity) float64 {
	switch severity {
	case models.SeverityCritical:
		return b.CriticalFloor
	case models.SeveritySevere, models.SeverityHigh:
		return b.SevereFloor
	default:
		return 0
	}
}

// Percent renders a confidence as an integer percentage, 0.5 rounding up.
func Percent(confidence float64) int {
	return int(math.Floor(clamp01(confidence)*100 + 0.5))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

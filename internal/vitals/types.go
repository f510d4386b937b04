package vitals

import (
	"fmt"

	"github.com/savegress/carebridge/pkg/models"
)

// Risk type identifiers.
const (
	RiskHypertension = "hypertension"
	RiskHypotension  = "hypotension"
	RiskTachycardia  = "tachycardia"
	RiskBradycardia  = "bradycardia"
	RiskFever        = "fever"
	RiskHypothermia  = "hypothermia"
	RiskElderlyBP    = "elderly_bp_advisory"
)

// Physiological acceptance ranges. Readings outside these bounds are
// rejected before the rule predicates run.
const (
	MinSystolic    = 60
	MaxSystolic    = 300
	MinDiastolic   = 30
	MaxDiastolic   = 200
	MinPulse       = 20
	MaxPulse       = 250
	MinTemperature = 30
	MaxTemperature = 45
	MinAge         = 0
	MaxAge         = 120
	MinWeight      = 1
	MaxWeight      = 400
)

// RangeError reports a raw vitals field outside its acceptance range.
type RangeError struct {
	Field string
	Value float64
	Min   float64
	Max   float64
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("%s %g out of range [%g, %g]", e.Field, e.Value, e.Min, e.Max)
}

// Result is the rule-based outcome for one validated reading.
type Result struct {
	DetectedRisks    []models.DetectedRisk `json:"detected_risks"`
	OverallRiskLevel models.RiskLevel      `json:"overall_risk_level"`
	Recommendations  []string              `json:"recommendations"`
}

// TopSeverity returns the maximum severity among detected risks, or low
// when no predicate fired.
func (r *Result) TopSeverity() models.Severity {
	top := models.SeverityLow
	for _, risk := range r.DetectedRisks {
		top = models.MaxSeverity(top, risk.Severity)
	}
	return top
}

package triage

import (
	"github.com/savegress/carebridge/pkg/models"
)

// Condition is one entry of the fixed catalog. Symptom tokens are canonical
// lowercase English; declaration order is significant for tie-breaking.
type Condition struct {
	Name     string
	NameBn   string
	Symptoms []string
	Severity models.Severity
	Advice   string
	AdviceBn string
}

// Result is the outcome of analyzing one reported-symptom list.
type Result struct {
	DetectedSymptoms []string                  `json:"detected_symptoms"`
	Conditions       []models.MatchedCondition `json:"possible_conditions"`
	TriageLevel      models.TriageLevel        `json:"triage_level"`
}

// TopMatch returns the highest-confidence matched condition, or nil when
// nothing in the catalog matched.
func (r *Result) TopMatch() *models.MatchedCondition {
	if len(r.Conditions) == 0 {
		return nil
	}
	return &r.Conditions[0]
}

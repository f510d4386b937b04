// Package models contains the record types shared between the rule engines,
// the local store, the sync coordinator and the API layer.
package models

import "time"

// RecordKind identifies which remote endpoint a record belongs to.
type RecordKind string

const (
	KindSymptom      RecordKind = "symptom"
	KindVitals       RecordKind = "vitals"
	KindConsultation RecordKind = "consultation"
)

// SyncStatus tracks whether a record has been delivered to the backend.
type SyncStatus string

const (
	SyncStatusUnsynced SyncStatus = "unsynced"
	// SyncStatusQueued is the consultation counterpart of unsynced.
	SyncStatusQueued SyncStatus = "queued"
	// SyncStatusSyncing marks a consultation whose delivery attempt is in
	// flight. It is never a terminal state: at startup any record found in
	// syncing is reinterpreted as queued.
	SyncStatusSyncing SyncStatus = "syncing"
	SyncStatusSynced  SyncStatus = "synced"
)

// Severity is the per-condition / per-risk severity scale.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMild     Severity = "mild"
	SeverityModerate Severity = "moderate"
	SeverityHigh     Severity = "high"
	SeveritySevere   Severity = "severe"
	SeverityCritical Severity = "critical"
)

// Rank orders severities for max-severity comparisons
// (critical > severe > high > moderate > mild > low).
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 5
	case SeveritySevere:
		return 4
	case SeverityHigh:
		return 3
	case SeverityModerate:
		return 2
	case SeverityMild:
		return 1
	default:
		return 0
	}
}

// MaxSeverity returns the more severe of a and b.
func MaxSeverity(a, b Severity) Severity {
	if b.Rank() > a.Rank() {
		return b
	}
	return a
}

// TriageLevel is the urgency bucket assigned to a symptom assessment.
type TriageLevel string

const (
	TriageSelfCare TriageLevel = "self-care"
	TriageSoon     TriageLevel = "soon"
	TriageUrgent   TriageLevel = "urgent"
)

// RiskLevel is the coarse risk bucket assigned to a vitals assessment.
type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskModerate RiskLevel = "moderate"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

// RiskLevelForSeverity maps a detected-risk severity to the overall scale.
func RiskLevelForSeverity(s Severity) RiskLevel {
	switch s {
	case SeverityCritical:
		return RiskCritical
	case SeverityHigh, SeveritySevere:
		return RiskHigh
	case SeverityModerate:
		return RiskModerate
	default:
		return RiskLow
	}
}

// ConsultationPriority is the user-selected urgency of a consultation request.
type ConsultationPriority string

const (
	PriorityLow    ConsultationPriority = "low"
	PriorityMedium ConsultationPriority = "medium"
	PriorityHigh   ConsultationPriority = "high"
	PriorityUrgent ConsultationPriority = "urgent"
)

// ValidPriority reports whether p is one of the declared priorities.
func ValidPriority(p ConsultationPriority) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// MatchedCondition is one catalog condition matched against reported
// symptoms, with the rule confidence in [0,1].
type MatchedCondition struct {
	Name            string   `json:"name"`
	LocalName       string   `json:"local_name,omitempty"`
	Confidence      float64  `json:"confidence"`
	Severity        Severity `json:"severity"`
	Advice          string   `json:"advice,omitempty"`
	MatchedSymptoms []string `json:"matched_symptoms,omitempty"`
}

// SymptomAssessment is a durably captured symptom analysis result.
type SymptomAssessment struct {
	ID                string             `json:"id"`
	ReportedSymptoms  []string           `json:"reported_symptoms"`
	MatchedConditions []MatchedCondition `json:"matched_conditions"`
	BlendedConfidence float64            `json:"blended_confidence"`
	TriageLevel       TriageLevel        `json:"triage_level"`
	Language          string             `json:"language"`
	CreatedAt         time.Time          `json:"created_at"`
	SyncStatus        SyncStatus         `json:"sync_status"`
	ServerID          string             `json:"server_id,omitempty"`
}

// VitalsReading is the raw, validated vitals input.
type VitalsReading struct {
	Systolic           float64  `json:"systolic"`
	Diastolic          float64  `json:"diastolic"`
	PulseRate          float64  `json:"pulse_rate"`
	TemperatureCelsius float64  `json:"temperature_celsius"`
	AgeYears           float64  `json:"age_years"`
	WeightKg           *float64 `json:"weight_kg,omitempty"`
}

// DetectedRisk is one fired vitals rule predicate. Risks are not mutually
// exclusive; a single reading can carry several.
type DetectedRisk struct {
	Type     string   `json:"type"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message,omitempty"`
}

// VitalsAssessment is a durably captured vitals risk result.
type VitalsAssessment struct {
	ID               string         `json:"id"`
	Reading          VitalsReading  `json:"reading"`
	DetectedRisks    []DetectedRisk `json:"detected_risks"`
	OverallRiskLevel RiskLevel      `json:"overall_risk_level"`
	RiskScore        int            `json:"risk_score"`
	Recommendations  []string       `json:"recommendations,omitempty"`
	Language         string         `json:"language"`
	CreatedAt        time.Time      `json:"created_at"`
	SyncStatus       SyncStatus     `json:"sync_status"`
	ServerID         string         `json:"server_id,omitempty"`
}

// ConsultationRequest is a queued request for a remote consultation.
type ConsultationRequest struct {
	ID          string               `json:"id"`
	Description string               `json:"description"`
	Priority    ConsultationPriority `json:"priority"`
	CreatedAt   time.Time            `json:"created_at"`
	SyncStatus  SyncStatus           `json:"sync_status"`
	ServerID    string               `json:"server_id,omitempty"`
	SyncedAt    *time.Time           `json:"synced_at,omitempty"`
}

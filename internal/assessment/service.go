// Package assessment orchestrates the capture path: validate input, run
// the rule engines, blend confidence, and durably persist the result.
// Submission never waits on the network; sync happens later.
package assessment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/savegress/carebridge/internal/scoring"
	"github.com/savegress/carebridge/internal/store"
	"github.com/savegress/carebridge/internal/triage"
	"github.com/savegress/carebridge/internal/vitals"
	"github.com/savegress/carebridge/pkg/models"
)

// DefaultHistoryLimit caps recent-history queries for display.
const DefaultHistoryLimit = 20

// ValidationError reports rejected input. Nothing is persisted when it is
// returned.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// Service ties the engines, blender, scorers and local store together.
type Service struct {
	store         store.Store
	engine        *triage.Engine
	blender       *scoring.Blender
	symptomScorer scoring.Scorer
	vitalsScorer  scoring.Scorer
}

// NewService creates the assessment service.
func NewService(st store.Store, engine *triage.Engine, blender *scoring.Blender, symptomScorer, vitalsScorer scoring.Scorer) *Service {
	return &Service{
		store:         st,
		engine:        engine,
		blender:       blender,
		symptomScorer: symptomScorer,
		vitalsScorer:  vitalsScorer,
	}
}

// SubmitSymptoms analyzes free-text symptoms and durably captures the
// assessment. The returned record reflects exactly what was persisted.
func (s *Service) SubmitSymptoms(ctx context.Context, text, lang string) (*models.SymptomAssessment, error) {
	symptoms := triage.Normalize(text, lang)
	if len(symptoms) == 0 {
		return nil, &ValidationError{Field: "symptoms", Message: "no symptoms detected"}
	}

	result := s.engine.Analyze(symptoms, lang)

	top := result.TopMatch()
	hasMatch := top != nil
	var ruleConfidence float64
	severity := models.SeverityLow
	if hasMatch {
		ruleConfidence = top.Confidence
		severity = top.Severity
	}

	external, externalOK := s.symptomScorer.Score(triage.FeatureVector(symptoms))
	blended := s.blender.Blend(hasMatch, ruleConfidence, severity, external, externalOK)

	a := &models.SymptomAssessment{
		ID:                uuid.NewString(),
		ReportedSymptoms:  symptoms,
		MatchedConditions: result.Conditions,
		BlendedConfidence: blended,
		TriageLevel:       result.TriageLevel,
		Language:          lang,
		CreatedAt:         time.Now().UTC(),
		SyncStatus:        models.SyncStatusUnsynced,
	}

	if err := s.store.SaveSymptomAssessment(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// SubmitVitals validates a reading, runs the risk predicates and durably
// captures the assessment.
func (s *Service) SubmitVitals(ctx context.Context, reading models.VitalsReading, lang string) (*models.VitalsAssessment, error) {
	if err := vitals.Validate(reading); err != nil {
		var re *vitals.RangeError
		if errors.As(err, &re) {
			return nil, &ValidationError{Field: re.Field, Message: re.Error()}
		}
		return nil, &ValidationError{Field: "reading", Message: err.Error()}
	}

	result := vitals.Assess(reading, lang)

	hasRisks := len(result.DetectedRisks) > 0
	topSeverity := result.TopSeverity()
	// Vitals rules carry no per-rule confidence; the severity-derived
	// baseline stands in for it.
	baseline := s.blender.Baseline(topSeverity)

	external, externalOK := s.vitalsScorer.Score(vitals.FeatureVector(reading))
	blended := s.blender.Blend(hasRisks, baseline, topSeverity, external, externalOK)

	a := &models.VitalsAssessment{
		ID:               uuid.NewString(),
		Reading:          reading,
		DetectedRisks:    result.DetectedRisks,
		OverallRiskLevel: result.OverallRiskLevel,
		RiskScore:        scoring.Percent(blended),
		Recommendations:  result.Recommendations,
		Language:         lang,
		CreatedAt:        time.Now().UTC(),
		SyncStatus:       models.SyncStatusUnsynced,
	}

	if err := s.store.SaveVitalsAssessment(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// RequestConsultation queues a consultation request locally. The request
// is always captured durably first, even while online, so a crash between
// submission and delivery cannot lose it.
func (s *Service) RequestConsultation(ctx context.Context, description string, priority models.ConsultationPriority) (*models.ConsultationRequest, error) {
	if strings.TrimSpace(description) == "" {
		return nil, &ValidationError{Field: "description", Message: "must not be empty"}
	}
	if !models.ValidPriority(priority) {
		return nil, &ValidationError{Field: "priority", Message: fmt.Sprintf("unknown priority %q", priority)}
	}

	c := &models.ConsultationRequest{
		ID:          uuid.NewString(),
		Description: strings.TrimSpace(description),
		Priority:    priority,
		CreatedAt:   time.Now().UTC(),
		SyncStatus:  models.SyncStatusQueued,
	}

	if err := s.store.SaveConsultation(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// RecentSymptoms returns the latest assessments, newest first.
func (s *Service) RecentSymptoms(ctx context.Context, limit int) ([]models.SymptomAssessment, error) {
	return s.store.RecentSymptomAssessments(ctx, normalizeLimit(limit))
}

// RecentVitals returns the latest vitals assessments, newest first.
func (s *Service) RecentVitals(ctx context.Context, limit int) ([]models.VitalsAssessment, error) {
	return s.store.RecentVitalsAssessments(ctx, normalizeLimit(limit))
}

// RecentConsultations returns the latest consultation requests, newest
// first.
func (s *Service) RecentConsultations(ctx context.Context, limit int) ([]models.ConsultationRequest, error) {
	return s.store.RecentConsultations(ctx, normalizeLimit(limit))
}

func normalizeLimit(limit int) int {
	if limit <= 0 || limit > 100 {
		return DefaultHistoryLimit
	}
	return limit
}

// Package triage implements the deterministic symptom rule engine: input
// normalization, catalog matching and triage level determination. It
// performs no I/O and never fails for well-formed input.
package triage

import (
	"sort"
	"strings"

	"github.com/savegress/carebridge/pkg/models"
)

// maxReportedConditions caps how many matched conditions a result carries.
const maxReportedConditions = 3

// Engine matches normalized symptom lists against the condition catalog.
type Engine struct {
	catalog []Condition
	matcher SymptomMatcher
}

// NewEngine creates an engine over the default catalog.
func NewEngine() *Engine {
	return NewEngineWith(DefaultCatalog, SubstringMatcher{})
}

// NewEngineWith creates an engine with a custom catalog and matcher.
func NewEngineWith(catalog []Condition, matcher SymptomMatcher) *Engine {
	return &Engine{catalog: catalog, matcher: matcher}
}

// Normalize splits free-text symptom input into trimmed, lowercase,
// deduplicated tokens in user-entry order. Bengali symptom phrases are
// translated to canonical English tokens first; the language tag otherwise
// only selects advice translations, never matching logic.
func Normalize(text, lang string) []string {
	processed := strings.ToLower(text)
	if lang == "bn" {
		for _, tr := range symptomTranslations {
			processed = strings.ReplaceAll(processed, tr.bn, tr.en)
		}
	}

	parts := strings.FieldsFunc(processed, func(r rune) bool {
		switch r {
		case ',', '،', ';', '।', '\n':
			return true
		}
		return false
	})

	seen := make(map[string]bool, len(parts))
	symptoms := make([]string, 0, len(parts))
	for _, p := range parts {
		s := strings.TrimSpace(p)
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		symptoms = append(symptoms, s)
	}
	return symptoms
}

// Analyze matches the reported symptoms against the catalog and derives the
// triage level. Repeated calls with the same input produce identical
// condition ordering: the sort is stable and ties keep catalog order.
func (e *Engine) Analyze(symptoms []string, lang string) *Result {
	result := &Result{
		DetectedSymptoms: symptoms,
		TriageLevel:      models.TriageSelfCare,
	}

	for i := range e.catalog {
		cond := &e.catalog[i]
		var matched []string
		for _, s := range symptoms {
			for _, token := range cond.Symptoms {
				if e.matcher.Matches(s, token) {
					matched = append(matched, s)
					break
				}
			}
		}
		if len(matched) == 0 {
			continue
		}

		result.Conditions = append(result.Conditions, models.MatchedCondition{
			Name:            cond.Name,
			LocalName:       cond.localizedName(lang),
			Confidence:      float64(len(matched)) / float64(len(cond.Symptoms)),
			Severity:        cond.Severity,
			Advice:          cond.localizedAdvice(lang),
			MatchedSymptoms: matched,
		})
	}

	sort.SliceStable(result.Conditions, func(i, j int) bool {
		return result.Conditions[i].Confidence > result.Conditions[j].Confidence
	})
	if len(result.Conditions) > maxReportedConditions {
		result.Conditions = result.Conditions[:maxReportedConditions]
	}

	result.TriageLevel = triageFor(result.TopMatch())
	return result
}

// triageFor is a direct severity-to-urgency table lookup on the top match.
func triageFor(top *models.MatchedCondition) models.TriageLevel {
	if top == nil {
		return models.TriageSelfCare
	}
	switch top.Severity {
	case models.SeveritySevere, models.SeverityCritical:
		return models.TriageUrgent
	case models.SeverityModerate:
		return models.TriageSoon
	default:
		return models.TriageSelfCare
	}
}

// FeatureVector one-hot encodes symptoms over the canonical English
// vocabulary, in vocabulary order. Used as scoring model input.
func FeatureVector(symptoms []string) []float64 {
	vocab := CommonSymptoms["en"]
	vector := make([]float64, len(vocab))
	matcher := SubstringMatcher{}
	for _, s := range symptoms {
		for i, known := range vocab {
			if matcher.Matches(s, known) {
				vector[i] = 1
				break
			}
		}
	}
	return vector
}

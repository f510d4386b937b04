package triage

import (
	"reflect"
	"testing"

	"github.com/savegress/carebridge/pkg/models"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		text string
		lang string
		want []string
	}{
		{
			name: "comma separated",
			text: "Fever, Cough , headache",
			lang: "en",
			want: []string{"fever", "cough", "headache"},
		},
		{
			name: "mixed separators",
			text: "fever; cough\nheadache",
			lang: "en",
			want: []string{"fever", "cough", "headache"},
		},
		{
			name: "duplicates removed in entry order",
			text: "cough, fever, cough",
			lang: "en",
			want: []string{"cough", "fever"},
		},
		{
			name: "empty segments dropped",
			text: ", ,fever,,",
			lang: "en",
			want: []string{"fever"},
		},
		{
			name: "bengali translated to canonical tokens",
			text: "জ্বর, কাশি",
			lang: "bn",
			want: []string{"fever", "cough"},
		},
		{
			name: "bengali nausea phrase before vomiting substring",
			text: "বমি বমি ভাব",
			lang: "bn",
			want: []string{"nausea"},
		},
		{
			name: "empty input",
			text: "   ",
			lang: "en",
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.text, tt.lang)
			if len(got) == 0 && len(tt.want) == 0 {
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Normalize(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestAnalyze_DengueOutranksCommonCold(t *testing.T) {
	engine := NewEngine()
	symptoms := []string{"fever", "joint pain", "headache", "skin rash", "body ache"}

	result := engine.Analyze(symptoms, "en")

	if len(result.Conditions) == 0 {
		t.Fatal("expected matched conditions")
	}
	top := result.Conditions[0]
	if top.Name != "Dengue Suspicion" {
		t.Errorf("top match = %s, want Dengue Suspicion", top.Name)
	}
	if top.Confidence != 1.0 {
		t.Errorf("top confidence = %v, want 1.0 (5/5 symptoms)", top.Confidence)
	}
	if result.TriageLevel != models.TriageUrgent {
		t.Errorf("triage = %s, want urgent", result.TriageLevel)
	}

	// Common Cold matches 3/5 (fever, headache, body ache) and must rank
	// below Dengue.
	for _, c := range result.Conditions[1:] {
		if c.Name == "Common Cold" && c.Confidence != 0.6 {
			t.Errorf("Common Cold confidence = %v, want 0.6", c.Confidence)
		}
		if c.Confidence > top.Confidence {
			t.Errorf("condition %s outranks top match", c.Name)
		}
	}
}

func TestAnalyze_Deterministic(t *testing.T) {
	engine := NewEngine()
	symptoms := []string{"fever", "headache", "fatigue"}

	first := engine.Analyze(symptoms, "en")
	for i := 0; i < 10; i++ {
		again := engine.Analyze(symptoms, "en")
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("run %d differed:\nfirst: %+v\nagain: %+v", i, first, again)
		}
	}
}

func TestAnalyze_TieBreakKeepsCatalogOrder(t *testing.T) {
	engine := NewEngine()
	// "fever" alone matches many conditions at identical 1/5 confidence;
	// Gastroenteritis is declared before Respiratory Infection and Food
	// Poisoning and must stay ahead.
	result := engine.Analyze([]string{"fever"}, "en")

	var ranked []string
	for _, c := range result.Conditions {
		ranked = append(ranked, c.Name)
	}
	if len(ranked) < 2 {
		t.Fatalf("expected several matches, got %v", ranked)
	}
	if ranked[0] != "Common Cold" {
		t.Errorf("first tie = %s, want Common Cold (catalog order)", ranked[0])
	}
	if ranked[1] != "Gastroenteritis" {
		t.Errorf("second tie = %s, want Gastroenteritis (catalog order)", ranked[1])
	}
}

func TestAnalyze_NoMatchDefaultsToSelfCare(t *testing.T) {
	engine := NewEngine()
	result := engine.Analyze([]string{"itchy elbow"}, "en")

	if len(result.Conditions) != 0 {
		t.Errorf("expected no matches, got %v", result.Conditions)
	}
	if result.TopMatch() != nil {
		t.Error("expected nil top match")
	}
	if result.TriageLevel != models.TriageSelfCare {
		t.Errorf("triage = %s, want self-care", result.TriageLevel)
	}
}

func TestAnalyze_TriageLevels(t *testing.T) {
	engine := NewEngine()
	tests := []struct {
		name     string
		symptoms []string
		want     models.TriageLevel
	}{
		// Gastroenteritis (moderate) leads on these.
		{"moderate top match", []string{"diarrhea", "vomiting", "abdominal pain", "nausea"}, models.TriageSoon},
		// Common Cold (mild) leads: 4/5 vs Respiratory Infection 2/5.
		{"mild top match", []string{"cough", "body ache", "fatigue", "headache"}, models.TriageSelfCare},
		// Dengue (severe) leads.
		{"severe top match", []string{"fever", "joint pain", "skin rash", "body ache", "headache"}, models.TriageUrgent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := engine.Analyze(tt.symptoms, "en")
			if result.TriageLevel != tt.want {
				t.Errorf("triage = %s, want %s (top: %+v)", result.TriageLevel, tt.want, result.TopMatch())
			}
		})
	}
}

func TestAnalyze_BengaliAdviceSelection(t *testing.T) {
	engine := NewEngine()
	result := engine.Analyze([]string{"fever", "body ache", "headache", "joint pain", "skin rash"}, "bn")

	top := result.TopMatch()
	if top == nil {
		t.Fatal("expected a match")
	}
	if top.LocalName != "ডেঙ্গু সন্দেহ" {
		t.Errorf("local name = %s, want Bengali dengue name", top.LocalName)
	}
	if top.Advice == "" || top.Advice[0] < 0x80 {
		t.Errorf("advice = %q, want Bengali translation", top.Advice)
	}
	// Language must not change matching or triage.
	if result.TriageLevel != models.TriageUrgent {
		t.Errorf("triage = %s, want urgent regardless of language", result.TriageLevel)
	}
}

func TestAnalyze_CapsReportedConditions(t *testing.T) {
	engine := NewEngine()
	// "fever" matches six catalog conditions; only the top three surface.
	result := engine.Analyze([]string{"fever"}, "en")
	if len(result.Conditions) > maxReportedConditions {
		t.Errorf("got %d conditions, want at most %d", len(result.Conditions), maxReportedConditions)
	}
}

func TestFeatureVector(t *testing.T) {
	vector := FeatureVector([]string{"fever", "skin rash"})

	vocab := CommonSymptoms["en"]
	if len(vector) != len(vocab) {
		t.Fatalf("vector length = %d, want %d", len(vector), len(vocab))
	}

	var ones int
	for i, v := range vector {
		if v == 1 {
			ones++
			if vocab[i] != "fever" && vocab[i] != "skin rash" {
				t.Errorf("unexpected hot feature %q", vocab[i])
			}
		}
	}
	if ones != 2 {
		t.Errorf("hot features = %d, want 2", ones)
	}
}

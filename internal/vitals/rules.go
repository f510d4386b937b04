// Package vitals implements validation and rule-based risk assessment for
// raw vitals readings. Every predicate inspects the reading independently
// and all qualifying predicates fire in the same pass; risks are not
// mutually exclusive.
package vitals

import (
	"github.com/savegress/carebridge/pkg/models"
)

// Validate checks every raw field against its acceptance range. The first
// out-of-range field is reported; nothing is persisted for invalid input.
func Validate(r models.VitalsReading) error {
	checks := []struct {
		field    string
		value    float64
		min, max float64
	}{
		{"systolic", r.Systolic, MinSystolic, MaxSystolic},
		{"diastolic", r.Diastolic, MinDiastolic, MaxDiastolic},
		{"pulse_rate", r.PulseRate, MinPulse, MaxPulse},
		{"temperature_celsius", r.TemperatureCelsius, MinTemperature, MaxTemperature},
		{"age_years", r.AgeYears, MinAge, MaxAge},
	}
	for _, c := range checks {
		if c.value < c.min || c.value > c.max {
			return &RangeError{Field: c.field, Value: c.value, Min: c.min, Max: c.max}
		}
	}
	if r.WeightKg != nil && (*r.WeightKg < MinWeight || *r.WeightKg > MaxWeight) {
		return &RangeError{Field: "weight_kg", Value: *r.WeightKg, Min: MinWeight, Max: MaxWeight}
	}
	return nil
}

type predicate func(r models.VitalsReading, fired map[string]bool, lang string) *models.DetectedRisk

// predicates run in declaration order. The elderly advisory is last because
// it consults the hypertension outcome of the same pass.
var predicates = []predicate{
	checkHypertension,
	checkHypotension,
	checkTachycardia,
	checkBradycardia,
	checkFever,
	checkHypothermia,
	checkElderlyBP,
}

// Assess runs every rule predicate over a validated reading. Assumes
// Validate has already passed; never fails.
func Assess(r models.VitalsReading, lang string) *Result {
	result := &Result{}
	fired := make(map[string]bool)

	for _, p := range predicates {
		if risk := p(r, fired, lang); risk != nil {
			fired[risk.Type] = true
			result.DetectedRisks = append(result.DetectedRisks, *risk)
		}
	}

	result.OverallRiskLevel = models.RiskLevelForSeverity(result.TopSeverity())
	result.Recommendations = recommendations(result.OverallRiskLevel, lang)
	return result
}

func checkHypertension(r models.VitalsReading, _ map[string]bool, lang string) *models.DetectedRisk {
	if r.Systolic < 140 && r.Diastolic < 90 {
		return nil
	}
	severity := models.SeverityHigh
	if r.Systolic >= 180 || r.Diastolic >= 120 {
		severity = models.SeverityCritical
	}
	return &models.DetectedRisk{
		Type:     RiskHypertension,
		Severity: severity,
		Message: pick(lang,
			"High blood pressure detected. Seek medical attention.",
			"উচ্চ রক্তচাপ সনাক্ত হয়েছে। চিকিৎসা সহায়তা নিন।"),
	}
}

func checkHypotension(r models.VitalsReading, _ map[string]bool, lang string) *models.DetectedRisk {
	if r.Systolic >= 90 && r.Diastolic >= 60 {
		return nil
	}
	return &models.DetectedRisk{
		Type:     RiskHypotension,
		Severity: models.SeverityModerate,
		Message: pick(lang,
			"Low blood pressure. Monitor closely and consult if symptoms worsen.",
			"নিম্ন রক্তচাপ। সতর্কভাবে পর্যবেক্ষণ করুন এবং উপসর্গ খারাপ হলে পরামর্শ নিন।"),
	}
}

func checkTachycardia(r models.VitalsReading, _ map[string]bool, lang string) *models.DetectedRisk {
	if r.PulseRate <= 100 {
		return nil
	}
	severity := models.SeverityModerate
	if r.PulseRate > 120 {
		severity = models.SeverityHigh
	}
	return &models.DetectedRisk{
		Type:     RiskTachycardia,
		Severity: severity,
		Message: pick(lang,
			"Elevated heart rate. Rest and monitor. Consult doctor if persistent.",
			"হৃদস্পন্দন বৃদ্ধি পেয়েছে। বিশ্রাম নিন এবং পর্যবেক্ষণ করুন। স্থায়ী হলে ডাক্তারের পরামর্শ নিন।"),
	}
}

func checkBradycardia(r models.VitalsReading, _ map[string]bool, lang string) *models.DetectedRisk {
	if r.PulseRate >= 60 {
		return nil
	}
	return &models.DetectedRisk{
		Type:     RiskBradycardia,
		Severity: models.SeverityModerate,
		Message: pick(lang,
			"Low heart rate detected. Monitor and consult if you feel dizzy or weak.",
			"কম হৃদস্পন্দন সনাক্ত হয়েছে। মাথা ঘোরা বা দুর্বলতা অনুভব করলে পরামর্শ নিন।"),
	}
}

func checkFever(r models.VitalsReading, _ map[string]bool, lang string) *models.DetectedRisk {
	if r.TemperatureCelsius < 38.0 {
		return nil
	}
	severity := models.SeverityModerate
	if r.TemperatureCelsius >= 39.5 {
		severity = models.SeverityHigh
	}
	return &models.DetectedRisk{
		Type:     RiskFever,
		Severity: severity,
		Message: pick(lang,
			"Fever detected. Stay hydrated and take paracetamol if needed.",
			"জ্বর সনাক্ত হয়েছে। হাইড্রেটেড থাকুন এবং প্রয়োজনে প্যারাসিটামল খান।"),
	}
}

func checkHypothermia(r models.VitalsReading, _ map[string]bool, lang string) *models.DetectedRisk {
	if r.TemperatureCelsius >= 36.0 {
		return nil
	}
	severity := models.SeverityModerate
	if r.TemperatureCelsius < 35.0 {
		severity = models.SeverityHigh
	}
	return &models.DetectedRisk{
		Type:     RiskHypothermia,
		Severity: severity,
		Message: pick(lang,
			"Low body temperature. Keep warm and seek care if it drops further.",
			"শরীরের তাপমাত্রা কম। উষ্ণ থাকুন এবং আরও কমলে চিকিৎসা নিন।"),
	}
}

func checkElderlyBP(r models.VitalsReading, fired map[string]bool, lang string) *models.DetectedRisk {
	if r.AgeYears < 60 || fired[RiskHypertension] {
		return nil
	}
	if r.Systolic < 130 && r.Diastolic < 80 {
		return nil
	}
	return &models.DetectedRisk{
		Type:     RiskElderlyBP,
		Severity: models.SeverityModerate,
		Message: pick(lang,
			"Blood pressure slightly elevated for age 60+. Monitor regularly.",
			"৬০+ বয়সের জন্য রক্তচাপ সামান্য বেশি। নিয়মিত পর্যবেক্ষণ করুন।"),
	}
}

func recommendations(level models.RiskLevel, lang string) []string {
	var recs []string
	switch level {
	case models.RiskCritical, models.RiskHigh:
		recs = append(recs, pick(lang,
			"Seek immediate medical attention",
			"অবিলম্বে চিকিৎসা সহায়তা নিন"))
	case models.RiskModerate:
		recs = append(recs, pick(lang,
			"Monitor vitals regularly and consult doctor within 24-48 hours",
			"নিয়মিত ভাইটাল পর্যবেক্ষণ করুন এবং ২৪-৪৮ ঘন্টার মধ্যে ডাক্তারের পরামর্শ নিন"))
	}
	recs = append(recs, pick(lang,
		"Maintain a healthy lifestyle with proper diet and exercise",
		"সঠিক খাদ্য এবং ব্যায়াম সহ একটি স্বাস্থ্যকর জীবনযাপন বজায় রাখুন"))
	return recs
}

func pick(lang, en, bn string) string {
	if lang == "bn" {
		return bn
	}
	return en
}

// FeatureVector min-max normalizes a reading for the scoring model, in the
// model's fixed feature order.
func FeatureVector(r models.VitalsReading) []float64 {
	weight := 0.0
	if r.WeightKg != nil {
		weight = (*r.WeightKg - 30) / 120
	}
	return []float64{
		(r.Systolic - 90) / 90,
		(r.Diastolic - 60) / 60,
		(r.PulseRate - 50) / 100,
		(r.TemperatureCelsius - 35) / 7,
		weight,
		(r.AgeYears - 18) / 82,
	}
}

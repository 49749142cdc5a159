package adjust

import (
	"math"

	"github.com/lifescan/aila/internal/domain/model"
	"github.com/lifescan/aila/internal/domain/record"
)

// Heart domain calibration constants. Thresholds and caps deliberately
// diverge from the stroke table; the two engines are tuned independently.
const (
	heartSoftCap          = 0.85
	heartHardCap          = 0.75
	heartFloorTwoCritical = 0.6
	heartFloorOneCritical = 0.4
	heartLowBand          = 0.25
	heartHighBand         = 0.45
	heartSingleFactorCap  = 0.3 // raw-negative with at most one factor
)

// heartRule is one entry of a heart category ladder.
type heartRule struct {
	when       func(record.HeartRecord) bool
	multiplier float64
	label      string
	severity   Severity
}

// heartLadder lists the heart rule table. Categories are evaluated in order;
// within a category the first matching entry wins.
var heartLadder = [][]heartRule{
	{ // diagnosed heart disease
		{when: func(r record.HeartRecord) bool { return r.HeartDisease == 1 }, multiplier: 1.8, label: "Diagnosed heart disease", severity: SeverityCritical},
	},
	{ // exercise-induced angina
		{when: func(r record.HeartRecord) bool { return r.ExerciseAngina == "Y" }, multiplier: 1.6, label: "Exercise-induced angina", severity: SeverityCritical},
	},
	{ // resting blood pressure
		{when: func(r record.HeartRecord) bool { return r.RestingBP >= 180 }, multiplier: 1.8, label: "Very elevated blood pressure (180 or above)", severity: SeverityCritical},
		{when: func(r record.HeartRecord) bool { return r.RestingBP >= 160 }, multiplier: 1.5, label: "Grade 2 hypertension (160-179)", severity: SeverityModerate},
		{when: func(r record.HeartRecord) bool { return r.RestingBP >= 140 }, multiplier: 1.3, label: "Grade 1 hypertension (140-159)"},
		{when: func(r record.HeartRecord) bool { return r.RestingBP >= 130 }, multiplier: 1.1, label: "Pre-hypertension (130-139)"},
	},
	{ // cholesterol
		{when: func(r record.HeartRecord) bool { return r.Cholesterol >= 300 }, multiplier: 1.6, label: "Very elevated cholesterol (300 or above)", severity: SeverityModerate},
		{when: func(r record.HeartRecord) bool { return r.Cholesterol >= 240 }, multiplier: 1.3, label: "Elevated cholesterol (240-299)"},
		{when: func(r record.HeartRecord) bool { return r.Cholesterol >= 200 }, multiplier: 1.1, label: "Borderline-high cholesterol (200-239)"},
	},
	{ // ST depression
		{when: func(r record.HeartRecord) bool { return r.Oldpeak >= 3 }, multiplier: 1.8, label: "Significant ST depression (3 or above)", severity: SeverityCritical},
		{when: func(r record.HeartRecord) bool { return r.Oldpeak >= 2 }, multiplier: 1.5, label: "Moderate ST depression (2-2.9)"},
		{when: func(r record.HeartRecord) bool { return r.Oldpeak >= 1 }, multiplier: 1.2, label: "Mild ST depression (1-1.9)"},
	},
	{ // fasting blood sugar
		{when: func(r record.HeartRecord) bool { return r.FastingBS == 1 }, multiplier: 1.4, label: "Elevated fasting blood sugar (120 or above)", severity: SeverityModerate},
	},
	{ // age
		{when: func(r record.HeartRecord) bool { return r.Age >= 70 }, multiplier: 1.4, label: "Advanced age (70 or older)", severity: SeverityModerate},
		{when: func(r record.HeartRecord) bool { return r.Age >= 60 }, multiplier: 1.2},
		{when: func(r record.HeartRecord) bool { return r.Age >= 50 }, multiplier: 1.1},
	},
	{ // sex
		{when: func(r record.HeartRecord) bool { return r.Sex == "M" }, multiplier: 1.1},
	},
	{ // chest pain type
		{when: func(r record.HeartRecord) bool { return r.ChestPainType == "ASY" }, multiplier: 1.2, label: "Asymptomatic chest pain"},
		{when: func(r record.HeartRecord) bool { return r.ChestPainType == "ATA" }, multiplier: 1.1, label: "Atypical angina"},
	},
}

// Heart adjusts a raw heart-disease verdict with the clinical rule table.
func Heart(r record.HeartRecord, v model.Verdict) Assessment {
	multiplier := 1.0
	var factors []string
	critical := 0
	moderate := 0

	for _, category := range heartLadder {
		for _, rule := range category {
			if !rule.when(r) {
				continue
			}
			multiplier *= rule.multiplier
			if rule.label != "" {
				factors = append(factors, rule.label)
			}
			switch rule.severity {
			case SeverityCritical:
				critical++
			case SeverityModerate:
				moderate++
			}
			break
		}
	}

	adjusted := math.Min(heartSoftCap, v.Probability*multiplier)

	// Count-based floors for critical and moderate factor stacks.
	switch {
	case critical >= 2:
		adjusted = math.Max(adjusted, heartFloorTwoCritical)
	case critical >= 1 || moderate >= 2:
		adjusted = math.Max(adjusted, heartFloorOneCritical)
	}

	total := len(factors)
	prediction := 0
	switch {
	case adjusted < heartLowBand:
		prediction = 0
	case adjusted < heartHighBand:
		if critical >= 1 || total >= 3 {
			prediction = 1
		}
	default:
		prediction = 1
	}

	// A raw-negative verdict with at most one factor stays low.
	if v.Prediction == 0 && total <= 1 && adjusted > heartSingleFactorCap {
		adjusted = heartSingleFactorCap
	}

	adjusted = math.Min(heartHardCap, adjusted)

	return Assessment{
		Prediction:      prediction,
		Probability:     adjusted,
		BaseProbability: v.Probability,
		RawPrediction:   v.Prediction,
		RiskMultiplier:  multiplier,
		ClinicalFactors: factors,
		CriticalCount:   critical,
		ModerateCount:   moderate,
		TotalFactors:    total,
	}
}

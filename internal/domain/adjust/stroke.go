package adjust

import (
	"math"

	"github.com/lifescan/aila/internal/domain/model"
	"github.com/lifescan/aila/internal/domain/record"
)

// Stroke domain calibration constants.
const (
	strokeSoftCap         = 0.85 // cap applied right after multiplication
	strokeHardCap         = 0.8  // final cap on the returned probability
	strokeFloorThreeHigh  = 0.65
	strokeFloorTwoHigh    = 0.4
	strokeLowBand         = 0.2  // below this the decision is always 0
	strokeHighBand        = 0.4  // at or above this the decision is always 1
	strokeSafetyFloor     = 0.15 // raw-negative floor with >=2 factors
	strokeHighSafetyFloor = 0.25 // raw-negative floor with a high-risk factor
)

// strokeRule is one entry of a stroke category ladder.
type strokeRule struct {
	when       func(record.StrokeRecord) bool
	multiplier float64
	label      string // empty when the entry contributes no visible factor
	severity   Severity
}

// strokeLadder lists the stroke rule table. Categories are evaluated in
// order; within a category the first matching entry wins.
var strokeLadder = [][]strokeRule{
	{ // age
		{when: func(r record.StrokeRecord) bool { return r.Age >= 75 }, multiplier: 1.8, label: "Very advanced age (75 or older)"},
		{when: func(r record.StrokeRecord) bool { return r.Age >= 65 }, multiplier: 1.5, label: "Advanced age (65-74 years)"},
		{when: func(r record.StrokeRecord) bool { return r.Age >= 55 }, multiplier: 1.3},
		{when: func(r record.StrokeRecord) bool { return r.Age >= 45 }, multiplier: 1.1},
	},
	{ // hypertension
		{when: func(r record.StrokeRecord) bool { return r.Hypertension == 1 }, multiplier: 1.5, label: "Arterial hypertension", severity: SeverityHigh},
	},
	{ // prior heart disease
		{when: func(r record.StrokeRecord) bool { return r.HeartDisease == 1 }, multiplier: 1.4, label: "Heart disease", severity: SeverityHigh},
	},
	{ // average glucose level
		{when: func(r record.StrokeRecord) bool { return r.AvgGlucoseLevel >= 200 }, multiplier: 1.6, label: "Very elevated glucose (200 mg/dL or above)", severity: SeverityHigh},
		{when: func(r record.StrokeRecord) bool { return r.AvgGlucoseLevel >= 160 }, multiplier: 1.4, label: "Elevated glucose (160-199 mg/dL)"},
		{when: func(r record.StrokeRecord) bool { return r.AvgGlucoseLevel >= 126 }, multiplier: 1.2, label: "Borderline-high glucose (126-159 mg/dL)"},
	},
	{ // body mass index
		{when: func(r record.StrokeRecord) bool { return r.BMI >= 40 }, multiplier: 1.5, label: "Grade III obesity (BMI 40 or above)", severity: SeverityHigh},
		{when: func(r record.StrokeRecord) bool { return r.BMI >= 35 }, multiplier: 1.3, label: "Grade II obesity (BMI 35-39.9)"},
		{when: func(r record.StrokeRecord) bool { return r.BMI >= 30 }, multiplier: 1.2, label: "Obesity (BMI 30 or above)"},
		{when: func(r record.StrokeRecord) bool { return r.BMI >= 27 }, multiplier: 1.1, label: "Overweight (BMI 27-29.9)"},
	},
	{ // smoking status
		{when: func(r record.StrokeRecord) bool { return r.SmokingStatus == "smokes" }, multiplier: 1.4, label: "Current smoking"},
		{when: func(r record.StrokeRecord) bool { return r.SmokingStatus == "formerly smoked" }, multiplier: 1.1, label: "Smoking history"},
	},
	{ // sex
		{when: func(r record.StrokeRecord) bool { return r.Gender == "Female" }, multiplier: 1.1},
	},
}

// Stroke adjusts a raw stroke verdict with the clinical rule table.
func Stroke(r record.StrokeRecord, v model.Verdict) Assessment {
	multiplier := 1.0
	var factors []string
	highRisk := 0

	for _, category := range strokeLadder {
		for _, rule := range category {
			if !rule.when(r) {
				continue
			}
			multiplier *= rule.multiplier
			if rule.label != "" {
				factors = append(factors, rule.label)
			}
			if rule.severity == SeverityHigh {
				highRisk++
			}
			break
		}
	}

	adjusted := math.Min(strokeSoftCap, v.Probability*multiplier)

	// Count-based floors for stacked high-risk factors.
	switch {
	case highRisk >= 3:
		adjusted = math.Max(adjusted, strokeFloorThreeHigh)
	case highRisk >= 2:
		adjusted = math.Max(adjusted, strokeFloorTwoHigh)
	}

	prediction := 0
	switch {
	case adjusted < strokeLowBand:
		prediction = 0
	case adjusted < strokeHighBand:
		if highRisk >= 2 || len(factors) >= 3 {
			prediction = 1
		}
	default:
		prediction = 1
	}

	// Raw-negative safety floors. Applied after the decision on purpose: the
	// floored probability does not retrigger the decision bands.
	if v.Prediction == 0 && len(factors) >= 2 {
		if adjusted < strokeSafetyFloor {
			adjusted = strokeSafetyFloor
		}
		if adjusted < strokeHighSafetyFloor && highRisk >= 1 {
			adjusted = strokeHighSafetyFloor
		}
	}

	adjusted = math.Min(strokeHardCap, adjusted)

	return Assessment{
		Prediction:      prediction,
		Probability:     adjusted,
		BaseProbability: v.Probability,
		RawPrediction:   v.Prediction,
		RiskMultiplier:  multiplier,
		ClinicalFactors: factors,
		HighRiskCount:   highRisk,
		TotalFactors:    len(factors),
	}
}

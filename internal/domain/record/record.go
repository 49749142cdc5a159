// Package record normalizes untyped request payloads into typed clinical
// records. Normalization never fails: missing, malformed, or out-of-domain
// values are replaced by documented defaults so the downstream rule engines
// always operate on a well-formed record.
package record

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Stroke domain defaults, applied when a field is missing or unparseable.
const (
	defaultGender        = "Male"
	defaultEverMarried   = "No"
	defaultWorkType      = "Private"
	defaultResidenceType = "Urban"
	defaultSmokingStatus = "never smoked"
	defaultGlucoseLevel  = 100.0
	defaultBMI           = 25.0
)

// Heart domain defaults.
const (
	defaultSex            = "M"
	defaultChestPainType  = "ASY"
	defaultRestingECG     = "Normal"
	defaultExerciseAngina = "N"
	defaultSTSlope        = "Flat"
	defaultRestingBP      = 120.0
	defaultCholesterol    = 200.0
	defaultMaxHR          = 150.0
)

// Fixed categorical domains. Values outside these sets are replaced by the
// corresponding default, never rejected.
var (
	validGenders        = []string{"Male", "Female"}
	validMarried        = []string{"Yes", "No"}
	validWorkTypes      = []string{"Private", "Self-employed", "Govt_job", "Children", "Never_worked"}
	validResidenceTypes = []string{"Urban", "Rural"}
	validSmokingStatus  = []string{"formerly smoked", "never smoked", "smokes", "Unknown"}

	validSex            = []string{"M", "F"}
	validChestPainTypes = []string{"TA", "ATA", "NAP", "ASY"}
	validRestingECG     = []string{"Normal", "ST", "LVH"}
	validExerciseAngina = []string{"Y", "N"}
	validSTSlopes       = []string{"Up", "Flat", "Down"}
)

// StrokeRecord is an immutable, normalized stroke-domain questionnaire.
type StrokeRecord struct {
	Gender          string
	Age             float64
	Hypertension    int
	HeartDisease    int
	EverMarried     string
	WorkType        string
	ResidenceType   string
	AvgGlucoseLevel float64
	BMI             float64
	SmokingStatus   string
}

// HeartRecord is an immutable, normalized heart-domain questionnaire.
type HeartRecord struct {
	Age            float64
	Sex            string
	ChestPainType  string
	RestingBP      float64
	Cholesterol    float64
	FastingBS      int
	RestingECG     string
	MaxHR          float64
	ExerciseAngina string
	Oldpeak        float64
	STSlope        string
	HeartDisease   int
}

// NormalizeStroke builds a StrokeRecord from a decoded JSON object.
func NormalizeStroke(data map[string]any) StrokeRecord {
	return StrokeRecord{
		Gender:          enumField(data, "gender", validGenders, defaultGender),
		Age:             floatField(data, "age", 0),
		Hypertension:    flagField(data, "hypertension"),
		HeartDisease:    flagField(data, "heart_disease"),
		EverMarried:     enumField(data, "ever_married", validMarried, defaultEverMarried),
		WorkType:        enumField(data, "work_type", validWorkTypes, defaultWorkType),
		ResidenceType:   enumField(data, "Residence_type", validResidenceTypes, defaultResidenceType),
		AvgGlucoseLevel: floatField(data, "avg_glucose_level", defaultGlucoseLevel),
		BMI:             floatField(data, "bmi", defaultBMI),
		SmokingStatus:   enumField(data, "smoking_status", validSmokingStatus, defaultSmokingStatus),
	}
}

// NormalizeHeart builds a HeartRecord from a decoded JSON object.
func NormalizeHeart(data map[string]any) HeartRecord {
	return HeartRecord{
		Age:            floatField(data, "Age", 0),
		Sex:            enumField(data, "Sex", validSex, defaultSex),
		ChestPainType:  enumField(data, "ChestPainType", validChestPainTypes, defaultChestPainType),
		RestingBP:      floatField(data, "RestingBP", defaultRestingBP),
		Cholesterol:    floatField(data, "Cholesterol", defaultCholesterol),
		FastingBS:      flagField(data, "FastingBS"),
		RestingECG:     enumField(data, "RestingECG", validRestingECG, defaultRestingECG),
		MaxHR:          floatField(data, "MaxHR", defaultMaxHR),
		ExerciseAngina: enumField(data, "ExerciseAngina", validExerciseAngina, defaultExerciseAngina),
		Oldpeak:        floatField(data, "Oldpeak", 0),
		STSlope:        enumField(data, "ST_Slope", validSTSlopes, defaultSTSlope),
		HeartDisease:   flagField(data, "HeartDisease"),
	}
}

// floatField coerces a numeric field, accepting JSON numbers, integers,
// json.Number, numeric strings, and booleans (true = 1).
func floatField(data map[string]any, key string, def float64) float64 {
	raw, ok := data[key]
	if !ok || raw == nil {
		return def
	}
	switch v := raw.(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case json.Number:
		if f, err := v.Float64(); err == nil {
			return f
		}
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			return f
		}
	case bool:
		if v {
			return 1
		}
		return 0
	}
	return def
}

// flagField coerces a boolean-as-int field to 0 or 1. Any non-zero numeric
// value counts as set.
func flagField(data map[string]any, key string) int {
	if floatField(data, key, 0) != 0 {
		return 1
	}
	return 0
}

// enumField returns the field value when it belongs to the allowed set,
// otherwise the default.
func enumField(data map[string]any, key string, allowed []string, def string) string {
	raw, ok := data[key]
	if !ok {
		return def
	}
	s, ok := raw.(string)
	if !ok {
		return def
	}
	for _, v := range allowed {
		if s == v {
			return s
		}
	}
	return def
}

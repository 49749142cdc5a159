package smoketest

import (
	"math/rand"
)

var (
	genders        = []string{"Male", "Female"}
	smokingStates  = []string{"never smoked", "formerly smoked", "smokes", "Unknown"}
	chestPainTypes = []string{"ASY", "ATA", "NAP", "TA"}
	slopes         = []string{"Up", "Flat", "Down"}
	yesNo          = []string{"Y", "N"}
)

// generateStrokeRecords builds randomized stroke payloads spanning the
// clinically interesting ranges of each field.
func generateStrokeRecords(n int) []map[string]any {
	records := make([]map[string]any, 0, n)
	for i := 0; i < n; i++ {
		records = append(records, map[string]any{
			"gender":            pick(genders),
			"age":               20 + rand.Float64()*65,
			"hypertension":      rand.Intn(2),
			"heart_disease":     rand.Intn(2),
			"avg_glucose_level": 70 + rand.Float64()*180,
			"bmi":               18 + rand.Float64()*27,
			"smoking_status":    pick(smokingStates),
		})
	}
	return records
}

// generateHeartRecords builds randomized heart payloads.
func generateHeartRecords(n int) []map[string]any {
	records := make([]map[string]any, 0, n)
	for i := 0; i < n; i++ {
		records = append(records, map[string]any{
			"Age":            30 + rand.Float64()*50,
			"Sex":            pick([]string{"M", "F"}),
			"ChestPainType":  pick(chestPainTypes),
			"RestingBP":      100 + rand.Float64()*90,
			"Cholesterol":    150 + rand.Float64()*180,
			"FastingBS":      rand.Intn(2),
			"MaxHR":          100 + rand.Float64()*90,
			"ExerciseAngina": pick(yesNo),
			"Oldpeak":        rand.Float64() * 4,
			"ST_Slope":       pick(slopes),
			"HeartDisease":   rand.Intn(2),
		})
	}
	return records
}

func pick(values []string) string {
	return values[rand.Intn(len(values))]
}

package predictor

import (
	"context"
	"time"

	"github.com/lifescan/aila/internal/domain/model"
	"github.com/lifescan/aila/internal/domain/record"
	"github.com/lifescan/aila/pkg/metrics"
)

// heartModel is a deterministic logistic model with embedded coefficients,
// standing in for the trained heart-disease classifier.
type heartModel struct {
	minLatency time.Duration
	maxLatency time.Duration
}

// Logistic coefficients for the heart model.
const (
	heartIntercept   = -3.4
	heartAgeCoef     = 0.04
	heartMaleCoef    = 0.35
	heartBPCoef      = 0.012  // per mmHg above 120
	heartCholCoef    = 0.004  // per mg/dL above 200
	heartFBSCoef     = 0.5
	heartMaxHRCoef   = -0.012 // per bpm above 150
	heartAnginaCoef  = 0.9
	heartOldpeakCoef = 0.45
	heartPriorHDCoef = 1.0
)

// Categorical feature weights.
var (
	heartChestPainCoef = map[string]float64{
		"ASY": 0.8,
		"TA":  0.2,
		"NAP": -0.1,
		"ATA": -0.3,
	}
	heartECGCoef = map[string]float64{
		"Normal": 0,
		"ST":     0.3,
		"LVH":    0.2,
	}
	heartSlopeCoef = map[string]float64{
		"Up":   -0.4,
		"Flat": 0.4,
		"Down": 0.6,
	}
)

func newHeartModel(minLatency, maxLatency time.Duration) *heartModel {
	return &heartModel{minLatency: minLatency, maxLatency: maxLatency}
}

// Predict computes the raw heart-disease verdict.
func (m *heartModel) Predict(ctx context.Context, r record.HeartRecord) (model.Verdict, error) {
	start := time.Now()
	if err := simulateLatency(ctx, m.minLatency, m.maxLatency); err != nil {
		return model.Verdict{}, err
	}
	defer func() {
		metrics.RecordModelInferenceLatency(DomainHeart, float64(time.Since(start).Milliseconds()))
	}()

	z := heartIntercept +
		heartAgeCoef*r.Age +
		heartBPCoef*(r.RestingBP-120) +
		heartCholCoef*(r.Cholesterol-200) +
		heartFBSCoef*float64(r.FastingBS) +
		heartMaxHRCoef*(r.MaxHR-150) +
		heartOldpeakCoef*r.Oldpeak +
		heartPriorHDCoef*float64(r.HeartDisease) +
		heartChestPainCoef[r.ChestPainType] +
		heartECGCoef[r.RestingECG] +
		heartSlopeCoef[r.STSlope]

	if r.Sex == "M" {
		z += heartMaleCoef
	}
	if r.ExerciseAngina == "Y" {
		z += heartAnginaCoef
	}

	p := sigmoid(z)
	verdict := model.Verdict{Probability: p}
	if p >= 0.5 {
		verdict.Prediction = 1
	}
	return verdict, nil
}

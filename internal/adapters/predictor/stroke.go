package predictor

import (
	"context"
	"math"
	"time"

	"github.com/lifescan/aila/internal/domain/model"
	"github.com/lifescan/aila/internal/domain/record"
	"github.com/lifescan/aila/pkg/metrics"
)

// strokeModel is a deterministic logistic model with embedded coefficients,
// standing in for the trained stroke classifier.
type strokeModel struct {
	minLatency time.Duration
	maxLatency time.Duration
}

// Logistic coefficients for the stroke model. Centered on population-typical
// values so the intercept reads as a baseline probability.
const (
	strokeIntercept    = -4.6
	strokeAgeCoef      = 0.055
	strokeHTNCoef      = 0.55
	strokeHDCoef       = 0.45
	strokeGlucoseCoef  = 0.008 // per mg/dL above 100
	strokeBMICoef      = 0.025 // per unit above 25
	strokeSmokesCoef   = 0.4
	strokeFormerlyCoef = 0.15
	strokeFemaleCoef   = 0.1
)

func newStrokeModel(minLatency, maxLatency time.Duration) *strokeModel {
	return &strokeModel{minLatency: minLatency, maxLatency: maxLatency}
}

// Predict computes the raw stroke verdict.
func (m *strokeModel) Predict(ctx context.Context, r record.StrokeRecord) (model.Verdict, error) {
	start := time.Now()
	if err := simulateLatency(ctx, m.minLatency, m.maxLatency); err != nil {
		return model.Verdict{}, err
	}
	defer func() {
		metrics.RecordModelInferenceLatency(DomainStroke, float64(time.Since(start).Milliseconds()))
	}()

	z := strokeIntercept +
		strokeAgeCoef*r.Age +
		strokeHTNCoef*float64(r.Hypertension) +
		strokeHDCoef*float64(r.HeartDisease) +
		strokeGlucoseCoef*(r.AvgGlucoseLevel-100) +
		strokeBMICoef*(r.BMI-25)

	switch r.SmokingStatus {
	case "smokes":
		z += strokeSmokesCoef
	case "formerly smoked":
		z += strokeFormerlyCoef
	}
	if r.Gender == "Female" {
		z += strokeFemaleCoef
	}

	p := sigmoid(z)
	verdict := model.Verdict{Probability: p}
	if p >= 0.5 {
		verdict.Prediction = 1
	}
	return verdict, nil
}

func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}

package predictor

import (
	"context"
	"hash/fnv"
	"math"
	"math/rand"
	"time"

	"github.com/lifescan/aila/internal/domain/model"
	"github.com/lifescan/aila/pkg/metrics"
)

// skinClasses are the lesion classes the classifier distinguishes, matching
// the keyword sets the triage layer grades against.
var skinClasses = []string{
	"melanoma",
	"basal_cell_carcinoma",
	"squamous_cell_carcinoma",
	"actinic_keratosis",
	"nevus",
	"seborrheic_keratosis",
	"dermatofibroma",
	"vascular_lesion",
}

// skinModel is a deterministic stand-in for the convolutional image
// classifier: class scores are derived from a content hash of the image
// bytes and passed through a softmax, so the same image always yields the
// same distribution.
type skinModel struct {
	minLatency time.Duration
	maxLatency time.Duration
}

func newSkinModel(minLatency, maxLatency time.Duration) *skinModel {
	return &skinModel{minLatency: minLatency, maxLatency: maxLatency}
}

// Classify produces a probability distribution over the lesion classes.
func (m *skinModel) Classify(ctx context.Context, image []byte) (model.ImageClassification, error) {
	if len(image) == 0 {
		return model.ImageClassification{}, ErrEmptyImage
	}

	start := time.Now()
	if err := simulateLatency(ctx, m.minLatency, m.maxLatency); err != nil {
		return model.ImageClassification{}, err
	}
	defer func() {
		metrics.RecordModelInferenceLatency(DomainSkin, float64(time.Since(start).Milliseconds()))
	}()

	h := fnv.New64a()
	_, _ = h.Write(image)
	rng := rand.New(rand.NewSource(int64(h.Sum64()))) //nolint:gosec // content hash seed, not security sensitive

	scores := make([]float64, len(skinClasses))
	for i := range scores {
		scores[i] = rng.NormFloat64()
	}

	dist := softmax(scores)
	best := 0
	distribution := make(map[string]float64, len(skinClasses))
	for i, class := range skinClasses {
		distribution[class] = dist[i]
		if dist[i] > dist[best] {
			best = i
		}
	}

	return model.ImageClassification{
		Label:        skinClasses[best],
		Confidence:   dist[best],
		Distribution: distribution,
	}, nil
}

func softmax(scores []float64) []float64 {
	maxScore := scores[0]
	for _, s := range scores[1:] {
		if s > maxScore {
			maxScore = s
		}
	}
	var sum float64
	out := make([]float64, len(scores))
	for i, s := range scores {
		out[i] = math.Exp(s - maxScore)
		sum += out[i]
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}

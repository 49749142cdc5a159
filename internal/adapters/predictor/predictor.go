// Package predictor hosts the trained-model collaborators behind narrow
// interfaces. The bundled implementations are deterministic stand-ins for an
// external inference service: embedded coefficient tables for the tabular
// domains, a content-hash classifier for images, each with a simulated
// inference latency window.
package predictor

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/lifescan/aila/internal/domain/model"
	"github.com/lifescan/aila/internal/domain/record"
	"github.com/lifescan/aila/pkg/metrics"
)

// Default simulated inference latency window.
const (
	defaultMinLatency = 20 * time.Millisecond
	defaultMaxLatency = 60 * time.Millisecond
)

// Model domain names used in metrics and availability reports.
const (
	DomainStroke = "stroke"
	DomainHeart  = "heart"
	DomainSkin   = "skin"
)

// StrokeModel produces a raw stroke verdict for a normalized record.
type StrokeModel interface {
	Predict(ctx context.Context, r record.StrokeRecord) (model.Verdict, error)
}

// HeartModel produces a raw heart-disease verdict for a normalized record.
type HeartModel interface {
	Predict(ctx context.Context, r record.HeartRecord) (model.Verdict, error)
}

// SkinModel classifies a skin-lesion image.
type SkinModel interface {
	Classify(ctx context.Context, image []byte) (model.ImageClassification, error)
}

// Registry owns the process-wide model handles. Models are loaded at most
// once and treated as read-only afterwards; there is no reload path.
type Registry struct {
	strokeEnabled bool
	heartEnabled  bool
	skinEnabled   bool

	minLatency time.Duration
	maxLatency time.Duration

	strokeOnce sync.Once
	stroke     StrokeModel

	heartOnce sync.Once
	heart     HeartModel

	skinOnce sync.Once
	skin     SkinModel
}

// NewRegistry creates a model registry with configuration options. All
// models default to enabled.
func NewRegistry(opts ...Option) *Registry {
	g := &Registry{
		strokeEnabled: true,
		heartEnabled:  true,
		skinEnabled:   true,
		minLatency:    defaultMinLatency,
		maxLatency:    defaultMaxLatency,
	}

	for _, opt := range opts {
		opt(g)
	}

	return g
}

// Stroke returns the stroke model, loading it on first use.
func (g *Registry) Stroke() (StrokeModel, error) {
	if !g.strokeEnabled {
		metrics.RecordModelUnavailable(DomainStroke)
		return nil, fmt.Errorf("stroke: %w", ErrModelUnavailable)
	}
	g.strokeOnce.Do(func() {
		g.stroke = newStrokeModel(g.minLatency, g.maxLatency)
		metrics.UpdateModelLoaded(DomainStroke, true)
	})
	return g.stroke, nil
}

// Heart returns the heart model, loading it on first use.
func (g *Registry) Heart() (HeartModel, error) {
	if !g.heartEnabled {
		metrics.RecordModelUnavailable(DomainHeart)
		return nil, fmt.Errorf("heart: %w", ErrModelUnavailable)
	}
	g.heartOnce.Do(func() {
		g.heart = newHeartModel(g.minLatency, g.maxLatency)
		metrics.UpdateModelLoaded(DomainHeart, true)
	})
	return g.heart, nil
}

// Skin returns the skin-lesion model, loading it on first use.
func (g *Registry) Skin() (SkinModel, error) {
	if !g.skinEnabled {
		metrics.RecordModelUnavailable(DomainSkin)
		return nil, fmt.Errorf("skin: %w", ErrModelUnavailable)
	}
	g.skinOnce.Do(func() {
		g.skin = newSkinModel(g.minLatency, g.maxLatency)
		metrics.UpdateModelLoaded(DomainSkin, true)
	})
	return g.skin, nil
}

// Available reports per-domain model availability.
func (g *Registry) Available() map[string]bool {
	return map[string]bool{
		DomainStroke: g.strokeEnabled,
		DomainHeart:  g.heartEnabled,
		DomainSkin:   g.skinEnabled,
	}
}

// simulateLatency sleeps for a random duration inside the configured window,
// honoring ctx for cancellation. The package-level rand source is safe for
// concurrent use.
func simulateLatency(ctx context.Context, minLatency, maxLatency time.Duration) error {
	latency := minLatency
	if span := int64(maxLatency - minLatency); span > 0 {
		latency += time.Duration(rand.Int63n(span)) //nolint:gosec // simulated latency, not security sensitive
	}
	select {
	case <-ctx.Done():
		return fmt.Errorf("context cancelled: %w", ctx.Err())
	case <-time.After(latency):
		return nil
	}
}

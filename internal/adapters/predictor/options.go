package predictor

import "time"

// Option applies a configuration option to the Registry.
type Option func(*Registry)

// WithLatencyRange sets the simulated inference latency window.
func WithLatencyRange(minLatency, maxLatency time.Duration) Option {
	return func(g *Registry) {
		if minLatency > 0 && maxLatency > minLatency {
			g.minLatency = minLatency
			g.maxLatency = maxLatency
		}
	}
}

// WithStrokeEnabled toggles the stroke model.
func WithStrokeEnabled(enabled bool) Option {
	return func(g *Registry) {
		g.strokeEnabled = enabled
	}
}

// WithHeartEnabled toggles the heart model.
func WithHeartEnabled(enabled bool) Option {
	return func(g *Registry) {
		g.heartEnabled = enabled
	}
}

// WithSkinEnabled toggles the skin-lesion model.
func WithSkinEnabled(enabled bool) Option {
	return func(g *Registry) {
		g.skinEnabled = enabled
	}
}

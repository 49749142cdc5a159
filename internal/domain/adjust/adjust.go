// Package adjust implements the clinical risk adjustment engines. Each domain
// (stroke, heart) carries its own rule table: ordered categories of
// (predicate, multiplier, label, severity) entries where only the first
// matching entry within a category applies. The tables combine the raw model
// probability with a multiplicative risk score and derive a final calibrated
// decision plus an explanatory factor list.
package adjust

// Severity classifies a clinical factor for the count-based probability
// floors. Membership is decided by rule identity, not by label matching.
type Severity int

const (
	// SeverityNone marks factors outside every curated subset.
	SeverityNone Severity = iota
	// SeverityModerate marks the heart domain's moderate-risk subset.
	SeverityModerate
	// SeverityHigh marks the stroke domain's high-risk subset.
	SeverityHigh
	// SeverityCritical marks the heart domain's critical subset.
	SeverityCritical
)

// Assessment is the outcome of clinical adjustment for one request. It is
// constructed fresh per request and immutable once returned.
type Assessment struct {
	Prediction      int      // final calibrated decision, 0 or 1
	Probability     float64  // adjusted probability, clamped to the domain cap
	BaseProbability float64  // raw model probability, echoed
	RawPrediction   int      // raw model decision, echoed
	RiskMultiplier  float64  // product of applicable factor multipliers, >= 1
	ClinicalFactors []string // factor labels in evaluation order
	HighRiskCount   int      // stroke: factors in the high-risk subset
	CriticalCount   int      // heart: factors in the critical subset
	ModerateCount   int      // heart: factors in the moderate-risk subset
	TotalFactors    int
}

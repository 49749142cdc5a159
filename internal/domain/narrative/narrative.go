// Package narrative maps a clinical risk assessment into the caller-facing
// risk narrative: a three-tier risk level, a recommendation, and a structured
// explanation. Composition is a pure function of the assessment; rendering
// (HTML or otherwise) is a caller concern.
package narrative

import (
	"fmt"

	"github.com/lifescan/aila/internal/domain/adjust"
)

// Tier is the final categorical risk level shown to the caller.
type Tier string

// Risk tiers in ascending severity.
const (
	TierLow      Tier = "LOW"
	TierModerate Tier = "MODERATE"
	TierHigh     Tier = "HIGH"
)

// Domain tags the condition an assessment refers to.
type Domain string

// Supported assessment domains.
const (
	DomainStroke Domain = "stroke"
	DomainHeart  Domain = "heart"
)

// Tiering thresholds on the adjusted probability.
const (
	highTierThreshold     = 0.7
	moderateTierThreshold = 0.4
	// An adjustment below this delta is considered agreement with the model.
	adjustmentDelta = 0.05
	// Multipliers above this get the explicit adjustment note.
	notableMultiplier = 1.5
)

// RiskNarrative is the structured explanation derived from an assessment.
type RiskNarrative struct {
	RiskLevel      Tier
	Description    string
	ColorToken     string // "low", "medium", or "high"
	Condition      string // human-readable condition name
	Factors        []string
	WasAdjusted    bool
	AdjustmentNote string
}

// Compose derives the narrative for an assessment in the given domain.
func Compose(a adjust.Assessment, domain Domain) RiskNarrative {
	n := RiskNarrative{
		Factors:   a.ClinicalFactors,
		Condition: conditionName(domain),
	}

	switch {
	case a.Probability >= highTierThreshold:
		n.RiskLevel = TierHigh
		n.ColorToken = "high"
		n.Description = "Elevated risk - priority medical evaluation recommended"
	case a.Probability >= moderateTierThreshold:
		n.RiskLevel = TierModerate
		n.ColorToken = "medium"
		n.Description = "Intermediate risk - medical consultation and follow-up suggested"
	default:
		n.RiskLevel = TierLow
		n.ColorToken = "low"
		n.Description = "Low risk - keep healthy habits and regular checkups"
	}

	delta := a.Probability - a.BaseProbability
	if delta < 0 {
		delta = -delta
	}
	n.WasAdjusted = delta > adjustmentDelta || a.Prediction != a.RawPrediction

	switch {
	case n.WasAdjusted && a.RiskMultiplier > notableMultiplier:
		n.AdjustmentNote = fmt.Sprintf(
			"The probability was adjusted from %.1f%% to %.1f%% due to clinical risk factors.",
			a.BaseProbability*100, a.Probability*100)
	case n.WasAdjusted:
		n.AdjustmentNote = "The analysis weighs both the model prediction and clinical factors."
	default:
		n.AdjustmentNote = "The model prediction agrees with the clinical evaluation."
	}

	return n
}

func conditionName(domain Domain) string {
	if domain == DomainHeart {
		return "heart disease"
	}
	return "stroke"
}

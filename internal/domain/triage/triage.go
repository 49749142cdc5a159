// Package triage grades skin-lesion classifier output into a caller-facing
// risk tier. Grading is a keyword match of the predicted label against fixed
// risk classes, gated by the classifier's confidence.
package triage

import (
	"fmt"
	"sort"
	"strings"

	"github.com/lifescan/aila/internal/domain/model"
)

// Tier is the four-level skin risk grade.
type Tier string

// Skin risk tiers in ascending severity.
const (
	TierLow          Tier = "LOW"
	TierModerate     Tier = "MODERATE"
	TierModerateHigh Tier = "MODERATE-HIGH"
	TierHigh         Tier = "HIGH"
)

// Urgency levels attached to a grade.
const (
	UrgencyRoutine  = "ROUTINE"
	UrgencyPriority = "PRIORITY"
	UrgencyUrgent   = "URGENT"
)

// Confidence gates and the global low-confidence dampener.
const (
	highConfidenceGate     = 0.7
	moderateConfidenceGate = 0.8
	dampenerThreshold      = 0.5
)

// Keyword sets matched case-insensitively against the predicted label,
// checked in severity order so a label matching several sets resolves to the
// most severe match.
var (
	highRiskClasses = []string{"melanoma", "melanocytic", "malignant"}

	moderateRiskClasses = []string{
		"basal_cell_carcinoma", "squamous_cell_carcinoma",
		"actinic_keratosis", "suspicious",
	}

	lowRiskClasses = []string{
		"nevus", "seborrheic_keratosis", "benign_keratosis",
		"dermatofibroma", "vascular_lesion", "benign",
	}
)

// Grade is the clinical reading of a classification.
type Grade struct {
	RiskLevel      Tier
	Urgency        string
	Recommendation string
	Explanation    string
	ColorToken     string // "low", "medium", or "high"
}

// ClassProbability is one entry of a ranked probability distribution.
type ClassProbability struct {
	Label       string  `json:"label"`
	Probability float64 `json:"probability"`
}

// Lesion grades a skin-lesion classification.
func Lesion(c model.ImageClassification) Grade {
	tier := matchTier(c.Label, c.Confidence)

	// Low classifier confidence pulls the grade down one step.
	if c.Confidence < dampenerThreshold {
		switch tier {
		case TierHigh:
			tier = TierModerateHigh
		case TierModerateHigh:
			tier = TierModerate
		}
	}

	g := Grade{RiskLevel: tier}
	switch tier {
	case TierHigh, TierModerateHigh:
		g.Urgency = UrgencyUrgent
		g.ColorToken = "high"
		g.Recommendation = "Immediate dermatologist visit recommended (within 48 hours)."
		g.Explanation = fmt.Sprintf(
			"Identified %s with %.1f%% confidence. The characteristics are highly suspicious of malignancy and require immediate professional evaluation.",
			c.Label, c.Confidence*100)
	case TierModerate:
		g.Urgency = UrgencyPriority
		g.ColorToken = "medium"
		g.Recommendation = "Dermatology consultation recommended within the next 2 weeks."
		g.Explanation = fmt.Sprintf(
			"Identified %s. While not clearly malignant, it requires professional evaluation to rule out risk.",
			c.Label)
	default:
		g.Urgency = UrgencyRoutine
		g.ColorToken = "low"
		g.Recommendation = "Annual monitoring recommended; consult if the lesion changes."
		g.Explanation = fmt.Sprintf(
			"Identified %s of benign type. Keep regular follow-up.", c.Label)
	}

	return g
}

// matchTier resolves the pre-dampener tier from the label and confidence.
func matchTier(label string, confidence float64) Tier {
	lower := strings.ToLower(label)

	for _, class := range highRiskClasses {
		if strings.Contains(lower, class) {
			if confidence > highConfidenceGate {
				return TierHigh
			}
			return TierModerateHigh
		}
	}
	for _, class := range moderateRiskClasses {
		if strings.Contains(lower, class) {
			if confidence > moderateConfidenceGate {
				return TierModerateHigh
			}
			return TierModerate
		}
	}
	for _, class := range lowRiskClasses {
		if strings.Contains(lower, class) {
			return TierLow
		}
	}
	// Unknown labels default to a cautious middle grade.
	return TierModerate
}

// RankClasses returns the top n entries of a probability distribution,
// highest probability first. Ties break on the label for deterministic
// output.
func RankClasses(distribution map[string]float64, n int) []ClassProbability {
	ranked := make([]ClassProbability, 0, len(distribution))
	for label, p := range distribution {
		ranked = append(ranked, ClassProbability{Label: label, Probability: p})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Probability != ranked[j].Probability {
			return ranked[i].Probability > ranked[j].Probability
		}
		return ranked[i].Label < ranked[j].Label
	})
	if n > 0 && len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

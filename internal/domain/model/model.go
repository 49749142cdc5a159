// Package model contains domain models passed between layers.
package model

// Verdict is the raw output of a trained binary classifier before any
// clinical adjustment is applied.
type Verdict struct {
	Prediction  int     // 0 (negative) or 1 (positive)
	Probability float64 // probability of the positive class, in [0,1]
}

// ImageClassification is the raw output of the skin-lesion image classifier.
type ImageClassification struct {
	Label        string             // predicted class label
	Confidence   float64            // probability of the predicted class
	Distribution map[string]float64 // probability per class label
}

// Message is a single chat turn exchanged with the assistant.
type Message struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

// Chat message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

package smoketest

import "time"

// Config holds configuration for the smoke test run.
type Config struct {
	BaseURL    string        // Base URL of the service
	NumRecords int           // Number of records per assessment domain
	Workers    int           // Number of concurrent workers
	Timeout    time.Duration // HTTP request timeout
	ChatTurns  int           // Number of chat turns to exchange
	Verbose    bool          // Enable verbose logging
}

// assessmentResult is the subset of the predict response the verifier needs.
type assessmentResult struct {
	Success     bool     `json:"success"`
	Prediction  int      `json:"prediction"`
	Probability float64  `json:"probability"`
	RiskLevel   string   `json:"risk_level"`
	Condition   string   `json:"condition"`
	Factors     []string `json:"factors"`
}

// chatResult is the subset of the chat send response the verifier needs.
type chatResult struct {
	Success        bool   `json:"success"`
	Response       string `json:"response"`
	ConversationID string `json:"conversation_id"`
	FromModel      bool   `json:"from_model"`
	MessageCount   int    `json:"message_count"`
}

// Stats holds smoke test statistics.
type Stats struct {
	RecordsGenerated  int
	AssessmentsOK     int64
	AssessmentsFailed int64
	ChatTurnsOK       int
	StartTime         time.Time
	EndTime           time.Time
	Duration          time.Duration
}

// Package smoketest drives a running service through its public API with
// randomized records and verifies the responses are coherent.
package smoketest

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lifescan/aila/pkg/logger"
)

// Run executes the complete smoke test.
func Run(ctx context.Context, config *Config) error {
	stats := &Stats{
		StartTime: time.Now(),
	}

	logger.Get().Info(ctx, "starting aila smoke test",
		logger.String("baseURL", config.BaseURL),
		logger.Int("records", config.NumRecords),
		logger.Int("workers", config.Workers),
		logger.String("timeout", config.Timeout.String()),
		logger.Int("chatTurns", config.ChatTurns))

	c := newClient(config.BaseURL, config.Timeout)

	// Step 1: Check service health
	if err := checkServiceHealth(ctx, c); err != nil {
		return fmt.Errorf("service health check failed: %w", err)
	}

	// Step 2: Generate records for both assessment domains
	strokeRecords := generateStrokeRecords(config.NumRecords)
	heartRecords := generateHeartRecords(config.NumRecords)
	stats.RecordsGenerated = len(strokeRecords) + len(heartRecords)

	// Step 3: Submit assessments concurrently
	submitAssessments(ctx, config, c, "/api/v1/predict/stroke", "stroke", strokeRecords, stats)
	submitAssessments(ctx, config, c, "/api/v1/predict/heart", "heart disease", heartRecords, stats)

	// Step 4: Hold a chat conversation
	if err := runChat(ctx, config, c, stats); err != nil {
		return fmt.Errorf("chat exchange failed: %w", err)
	}

	// Step 5: Check model availability report
	if err := checkModels(ctx, c); err != nil {
		return fmt.Errorf("models check failed: %w", err)
	}

	// Final statistics
	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)

	logger.Get().Info(ctx, "smoke test completed",
		logger.Int("recordsGenerated", stats.RecordsGenerated),
		logger.Int("assessmentsOK", int(stats.AssessmentsOK)),
		logger.Int("assessmentsFailed", int(stats.AssessmentsFailed)),
		logger.Int("chatTurnsOK", stats.ChatTurnsOK),
		logger.Duration("duration", stats.Duration))

	if stats.AssessmentsFailed > 0 {
		return fmt.Errorf("%d of %d assessments failed", stats.AssessmentsFailed, stats.RecordsGenerated)
	}
	return nil
}

// checkServiceHealth verifies the service is running.
func checkServiceHealth(ctx context.Context, c *client) error {
	logger.Get().Info(ctx, "checking service health")

	var health struct {
		Status string `json:"status"`
	}
	if err := c.getJSON(ctx, "/healthz", &health); err != nil {
		return err
	}
	if health.Status != "ok" {
		return fmt.Errorf("unexpected health status %q", health.Status)
	}
	return nil
}

// submitAssessments posts records concurrently and verifies each response.
func submitAssessments(ctx context.Context, config *Config, c *client, path, condition string, records []map[string]any, stats *Stats) {
	jobs := make(chan map[string]any)

	var wg sync.WaitGroup
	for i := 0; i < config.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for payload := range jobs {
				var result assessmentResult
				err := c.postJSON(ctx, path, payload, &result)
				if err == nil {
					err = verifyAssessment(result, condition)
				}
				if err != nil {
					atomic.AddInt64(&stats.AssessmentsFailed, 1)
					if config.Verbose {
						logger.Get().Warn(ctx, "assessment failed",
							logger.String("path", path),
							logger.Error(err))
					}
					continue
				}
				atomic.AddInt64(&stats.AssessmentsOK, 1)
			}
		}()
	}

	for _, payload := range records {
		select {
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return
		case jobs <- payload:
		}
	}
	close(jobs)
	wg.Wait()
}

// verifyAssessment checks the structural invariants of one response.
func verifyAssessment(result assessmentResult, condition string) error {
	switch {
	case !result.Success:
		return fmt.Errorf("response not successful")
	case result.Prediction != 0 && result.Prediction != 1:
		return fmt.Errorf("prediction %d out of domain", result.Prediction)
	case result.Probability < 0 || result.Probability > 1:
		return fmt.Errorf("probability %f out of range", result.Probability)
	case result.RiskLevel == "":
		return fmt.Errorf("missing risk level")
	case result.Condition != condition:
		return fmt.Errorf("condition %q, want %q", result.Condition, condition)
	}
	return nil
}

// runChat opens a conversation and exchanges the configured number of turns.
func runChat(ctx context.Context, config *Config, c *client, stats *Stats) error {
	var created struct {
		ConversationID string `json:"conversation_id"`
	}
	if err := c.postJSON(ctx, "/api/v1/chat/new", map[string]string{"user_id": "smoketest"}, &created); err != nil {
		return err
	}

	for i := 0; i < config.ChatTurns; i++ {
		var reply chatResult
		err := c.postJSON(ctx, "/api/v1/chat/send", map[string]string{
			"message":         fmt.Sprintf("smoke test question %d: any general health tips?", i+1),
			"conversation_id": created.ConversationID,
		}, &reply)
		if err != nil {
			return err
		}
		if !reply.Success || reply.Response == "" {
			return fmt.Errorf("empty chat reply on turn %d", i+1)
		}
		stats.ChatTurnsOK++
	}
	return nil
}

// checkModels fetches the availability report.
func checkModels(ctx context.Context, c *client) error {
	var report struct {
		Status string          `json:"status"`
		Models map[string]bool `json:"models"`
	}
	if err := c.getJSON(ctx, "/api/v1/models", &report); err != nil {
		return err
	}
	logger.Get().Info(ctx, "model availability",
		logger.Any("models", report.Models))
	return nil
}

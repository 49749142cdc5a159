package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/lifescan/aila/internal/adapters/http/api"
	"github.com/lifescan/aila/internal/adapters/predictor"
	"github.com/lifescan/aila/internal/domain/adjust"
	"github.com/lifescan/aila/internal/domain/model"
	"github.com/lifescan/aila/internal/domain/narrative"
	"github.com/lifescan/aila/internal/domain/triage"
	. "github.com/smartystreets/goconvey/convey"
)

// Mock implementations for testing
type mockDeps struct {
	assessErr error
	chatErr   error

	lastStrokePayload map[string]any
	lastHeartPayload  map[string]any
	lastImage         []byte
	lastChatMessage   string
}

func (m *mockDeps) AssessStroke(ctx context.Context, payload map[string]any) (adjust.Assessment, narrative.RiskNarrative, error) {
	m.lastStrokePayload = payload
	if m.assessErr != nil {
		return adjust.Assessment{}, narrative.RiskNarrative{}, m.assessErr
	}
	a := adjust.Assessment{
		Prediction:      1,
		Probability:     0.8,
		BaseProbability: 0.35,
		RawPrediction:   0,
		RiskMultiplier:  2.4,
		ClinicalFactors: []string{"Arterial hypertension", "Current smoking"},
		HighRiskCount:   1,
		TotalFactors:    2,
	}
	n := narrative.RiskNarrative{
		RiskLevel:      narrative.TierHigh,
		Description:    "Elevated risk - priority medical evaluation recommended",
		ColorToken:     "high",
		Condition:      "stroke",
		Factors:        a.ClinicalFactors,
		WasAdjusted:    true,
		AdjustmentNote: "The probability was adjusted from 35.0% to 80.0% due to clinical risk factors.",
	}
	return a, n, nil
}

func (m *mockDeps) AssessHeart(ctx context.Context, payload map[string]any) (adjust.Assessment, narrative.RiskNarrative, error) {
	m.lastHeartPayload = payload
	if m.assessErr != nil {
		return adjust.Assessment{}, narrative.RiskNarrative{}, m.assessErr
	}
	a := adjust.Assessment{
		Prediction:      0,
		Probability:     0.2,
		BaseProbability: 0.2,
		RiskMultiplier:  1.0,
		TotalFactors:    0,
	}
	n := narrative.RiskNarrative{
		RiskLevel:   narrative.TierLow,
		Description: "Low risk - keep healthy habits and regular checkups",
		ColorToken:  "low",
		Condition:   "heart disease",
	}
	return a, n, nil
}

func (m *mockDeps) AssessSkin(ctx context.Context, image []byte) (model.ImageClassification, triage.Grade, error) {
	m.lastImage = image
	if m.assessErr != nil {
		return model.ImageClassification{}, triage.Grade{}, m.assessErr
	}
	c := model.ImageClassification{
		Label:      "melanoma",
		Confidence: 0.82,
		Distribution: map[string]float64{
			"melanoma": 0.82,
			"nevus":    0.1,
			"benign":   0.08,
		},
	}
	g := triage.Grade{
		RiskLevel:      triage.TierHigh,
		Urgency:        "URGENT",
		Recommendation: "Seek dermatological evaluation within 48 hours.",
		Explanation:    "The classifier identified features consistent with melanoma.",
		ColorToken:     "high",
	}
	return c, g, nil
}

func (m *mockDeps) Chat(ctx context.Context, conversationID, message string) (api.ChatReply, error) {
	m.lastChatMessage = message
	if m.chatErr != nil {
		return api.ChatReply{}, m.chatErr
	}
	return api.ChatReply{
		Response:       "Stay hydrated and rest.",
		ConversationID: conversationID,
		FromModel:      true,
		MessageCount:   2,
	}, nil
}

func (m *mockDeps) ChatHistory(conversationID string) ([]model.Message, int) {
	if conversationID == "empty" {
		return nil, 0
	}
	return []model.Message{
		{Role: model.RoleUser, Content: "hello"},
		{Role: model.RoleAssistant, Content: "hi"},
	}, 2
}

func (m *mockDeps) NewConversation(userID string) string {
	if userID == "" {
		userID = "default"
	}
	return userID + "_20260828_abc123"
}

func (m *mockDeps) ChatStatus() api.ChatStatus {
	return api.ChatStatus{
		ModelAvailable:      false,
		Model:               "demo",
		ActiveConversations: 3,
		TotalMessages:       12,
	}
}

func (m *mockDeps) ModelsAvailable() map[string]bool {
	return map[string]bool{"stroke": true, "heart": true, "skin": false}
}

type mockStats struct{}

func (m *mockStats) GetStats() map[string]interface{} {
	return map[string]interface{}{"uptime_seconds": 42}
}

func newTestMux(deps api.Dependencies) *http.ServeMux {
	mux := http.NewServeMux()
	api.NewServer(deps, &mockStats{}, 1<<20).Register(context.Background(), mux)
	return mux
}

func multipartImage(t *testing.T, field, filename string, payload []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(field, filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := fw.Write(payload); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}
	return &buf, mw.FormDataContentType()
}

func TestPredictStrokeEndpoint(t *testing.T) {
	Convey("Given a registered API server", t, func() {
		deps := &mockDeps{}
		mux := newTestMux(deps)

		Convey("When posting a valid stroke record", func() {
			body := `{"gender":"Female","age":67,"hypertension":1,"smoking_status":"smokes"}`
			req := httptest.NewRequest("POST", "/api/v1/predict/stroke", strings.NewReader(body))
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			Convey("Then it should return the full assessment", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Header().Get("Content-Type"), ShouldEqual, "application/json; charset=utf-8")

				var resp map[string]any
				So(json.Unmarshal(w.Body.Bytes(), &resp), ShouldBeNil)
				So(resp["success"], ShouldEqual, true)
				So(resp["prediction"], ShouldEqual, 1)
				So(resp["probability"], ShouldEqual, 0.8)
				So(resp["risk_level"], ShouldEqual, "HIGH")
				So(resp["risk_color"], ShouldEqual, "high")
				So(resp["condition"], ShouldEqual, "stroke")
				So(resp["adjustment_note"], ShouldContainSubstring, "35.0%")

				factors, ok := resp["factors"].([]any)
				So(ok, ShouldBeTrue)
				So(len(factors), ShouldEqual, 2)

				debug, ok := resp["debug_info"].(map[string]any)
				So(ok, ShouldBeTrue)
				So(debug["original_prediction"], ShouldEqual, 0)
				So(debug["original_probability"], ShouldEqual, 0.35)
				So(debug["was_adjusted"], ShouldEqual, true)
				So(debug["risk_multiplier"], ShouldEqual, 2.4)
				So(debug["clinical_factors_count"], ShouldEqual, 2)
			})

			Convey("And the raw payload should reach the pipeline untouched", func() {
				So(deps.lastStrokePayload["gender"], ShouldEqual, "Female")
				So(deps.lastStrokePayload["age"], ShouldEqual, 67.0)
			})
		})

		Convey("When posting malformed JSON", func() {
			req := httptest.NewRequest("POST", "/api/v1/predict/stroke", strings.NewReader("{not json"))
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			Convey("Then it should return 400 with the bad_request code", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				var resp map[string]any
				So(json.Unmarshal(w.Body.Bytes(), &resp), ShouldBeNil)
				So(resp["code"], ShouldEqual, "bad_request")
			})
		})

		Convey("When the model is unavailable", func() {
			deps.assessErr = fmt.Errorf("stroke: %w", predictor.ErrModelUnavailable)
			req := httptest.NewRequest("POST", "/api/v1/predict/stroke", strings.NewReader("{}"))
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			Convey("Then it should return 503 with the model_unavailable code", func() {
				So(w.Code, ShouldEqual, http.StatusServiceUnavailable)
				var resp map[string]any
				So(json.Unmarshal(w.Body.Bytes(), &resp), ShouldBeNil)
				So(resp["code"], ShouldEqual, "model_unavailable")
			})
		})

		Convey("When the pipeline fails for another reason", func() {
			deps.assessErr = fmt.Errorf("boom")
			req := httptest.NewRequest("POST", "/api/v1/predict/stroke", strings.NewReader("{}"))
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			Convey("Then it should return a generic 500", func() {
				So(w.Code, ShouldEqual, http.StatusInternalServerError)
				So(w.Body.String(), ShouldNotContainSubstring, "boom")
			})
		})

		Convey("When using the wrong method", func() {
			req := httptest.NewRequest("GET", "/api/v1/predict/stroke", http.NoBody)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			Convey("Then it should return 404", func() {
				So(w.Code, ShouldEqual, http.StatusNotFound)
			})
		})
	})
}

func TestPredictHeartEndpoint(t *testing.T) {
	Convey("Given a registered API server", t, func() {
		deps := &mockDeps{}
		mux := newTestMux(deps)

		Convey("When posting a valid heart record", func() {
			body := `{"Age":40,"Sex":"M","RestingBP":140}`
			req := httptest.NewRequest("POST", "/api/v1/predict/heart", strings.NewReader(body))
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			Convey("Then it should return the low-risk assessment", func() {
				So(w.Code, ShouldEqual, http.StatusOK)

				var resp map[string]any
				So(json.Unmarshal(w.Body.Bytes(), &resp), ShouldBeNil)
				So(resp["success"], ShouldEqual, true)
				So(resp["prediction"], ShouldEqual, 0)
				So(resp["risk_level"], ShouldEqual, "LOW")
				So(resp["condition"], ShouldEqual, "heart disease")

				// No factors means an empty list, never null.
				factors, ok := resp["factors"].([]any)
				So(ok, ShouldBeTrue)
				So(len(factors), ShouldEqual, 0)
			})
		})

		Convey("When posting malformed JSON", func() {
			req := httptest.NewRequest("POST", "/api/v1/predict/heart", strings.NewReader("nope"))
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			Convey("Then it should return 400", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
			})
		})
	})
}

func TestPredictSkinEndpoint(t *testing.T) {
	Convey("Given a registered API server", t, func() {
		deps := &mockDeps{}
		mux := newTestMux(deps)

		Convey("When uploading a valid image", func() {
			buf, contentType := multipartImage(t, "image", "lesion.jpg", []byte("fake image bytes"))
			req := httptest.NewRequest("POST", "/api/v1/predict/skin", buf)
			req.Header.Set("Content-Type", contentType)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			Convey("Then it should return the classification and triage grade", func() {
				So(w.Code, ShouldEqual, http.StatusOK)

				var resp map[string]any
				So(json.Unmarshal(w.Body.Bytes(), &resp), ShouldBeNil)
				So(resp["success"], ShouldEqual, true)

				prediction, ok := resp["prediction"].(map[string]any)
				So(ok, ShouldBeTrue)
				So(prediction["class"], ShouldEqual, "melanoma")
				So(prediction["confidence"], ShouldEqual, 0.82)
				So(prediction["risk_level"], ShouldEqual, "HIGH")
				So(prediction["urgency"], ShouldEqual, "URGENT")

				So(resp["recommendation"], ShouldContainSubstring, "48 hours")

				probs, ok := resp["probabilities"].([]any)
				So(ok, ShouldBeTrue)
				So(len(probs), ShouldEqual, 3)
				first, ok := probs[0].(map[string]any)
				So(ok, ShouldBeTrue)
				So(first["label"], ShouldEqual, "melanoma")

				visual, ok := resp["visual"].(map[string]any)
				So(ok, ShouldBeTrue)
				So(visual["color"], ShouldEqual, "high")
			})

			Convey("And the raw bytes should reach the classifier", func() {
				So(string(deps.lastImage), ShouldEqual, "fake image bytes")
			})
		})

		Convey("When uploading to the debug endpoint", func() {
			buf, contentType := multipartImage(t, "image", "lesion.jpg", []byte("fake image bytes"))
			req := httptest.NewRequest("POST", "/api/v1/predict/skin/debug", buf)
			req.Header.Set("Content-Type", contentType)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			Convey("Then it should expose the full ranked distribution", func() {
				So(w.Code, ShouldEqual, http.StatusOK)

				var resp map[string]any
				So(json.Unmarshal(w.Body.Bytes(), &resp), ShouldBeNil)
				So(resp["debug"], ShouldEqual, true)
				So(resp["risk_level"], ShouldEqual, "HIGH")
				So(resp["why"], ShouldContainSubstring, "melanoma")

				all, ok := resp["all_predictions"].([]any)
				So(ok, ShouldBeTrue)
				So(len(all), ShouldEqual, 3)

				top, ok := resp["top_prediction"].(map[string]any)
				So(ok, ShouldBeTrue)
				So(top["label"], ShouldEqual, "melanoma")
				So(top["probability"], ShouldEqual, 0.82)
			})
		})

		Convey("When the image field is missing", func() {
			buf, contentType := multipartImage(t, "photo", "lesion.jpg", []byte("x"))
			req := httptest.NewRequest("POST", "/api/v1/predict/skin", buf)
			req.Header.Set("Content-Type", contentType)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			Convey("Then it should return 400 with the unsupported_media code", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				var resp map[string]any
				So(json.Unmarshal(w.Body.Bytes(), &resp), ShouldBeNil)
				So(resp["code"], ShouldEqual, "unsupported_media")
			})
		})

		Convey("When the file extension is not allowed", func() {
			buf, contentType := multipartImage(t, "image", "lesion.pdf", []byte("x"))
			req := httptest.NewRequest("POST", "/api/v1/predict/skin", buf)
			req.Header.Set("Content-Type", contentType)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			Convey("Then it should return 400", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When the body is not multipart", func() {
			req := httptest.NewRequest("POST", "/api/v1/predict/skin", strings.NewReader("{}"))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			Convey("Then it should return 400", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
			})
		})
	})
}

func TestChatEndpoints(t *testing.T) {
	Convey("Given a registered API server", t, func() {
		deps := &mockDeps{}
		mux := newTestMux(deps)

		Convey("When sending a chat message", func() {
			body := `{"message":"  I have a headache  ","conversation_id":"alice_20260828_x"}`
			req := httptest.NewRequest("POST", "/api/v1/chat/send", strings.NewReader(body))
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			Convey("Then it should return the assistant reply", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var resp map[string]any
				So(json.Unmarshal(w.Body.Bytes(), &resp), ShouldBeNil)
				So(resp["success"], ShouldEqual, true)
				So(resp["response"], ShouldEqual, "Stay hydrated and rest.")
				So(resp["conversation_id"], ShouldEqual, "alice_20260828_x")
				So(resp["from_model"], ShouldEqual, true)
				So(resp["message_count"], ShouldEqual, 2)
				So(resp["timestamp"], ShouldNotBeEmpty)
			})

			Convey("And the message should be trimmed before dispatch", func() {
				So(deps.lastChatMessage, ShouldEqual, "I have a headache")
			})
		})

		Convey("When sending an empty message", func() {
			req := httptest.NewRequest("POST", "/api/v1/chat/send", strings.NewReader(`{"message":"   "}`))
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			Convey("Then it should return 400", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When the chat dispatch fails", func() {
			deps.chatErr = fmt.Errorf("upstream credentials rotated")
			req := httptest.NewRequest("POST", "/api/v1/chat/send", strings.NewReader(`{"message":"hello"}`))
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			Convey("Then it should return a generic 500 without the cause", func() {
				So(w.Code, ShouldEqual, http.StatusInternalServerError)
				So(w.Body.String(), ShouldNotContainSubstring, "credentials")
				var resp map[string]any
				So(json.Unmarshal(w.Body.Bytes(), &resp), ShouldBeNil)
				So(resp["code"], ShouldEqual, "internal_error")
			})
		})

		Convey("When fetching history", func() {
			req := httptest.NewRequest("GET", "/api/v1/chat/history?conversation_id=alice_x", http.NoBody)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			Convey("Then it should return the ordered messages", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var resp map[string]any
				So(json.Unmarshal(w.Body.Bytes(), &resp), ShouldBeNil)
				So(resp["conversation_id"], ShouldEqual, "alice_x")
				So(resp["total_messages"], ShouldEqual, 2)
				messages, ok := resp["messages"].([]any)
				So(ok, ShouldBeTrue)
				So(len(messages), ShouldEqual, 2)
			})
		})

		Convey("When fetching history for an unknown conversation", func() {
			req := httptest.NewRequest("GET", "/api/v1/chat/history?conversation_id=empty", http.NoBody)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			Convey("Then messages should be an empty list, not null", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldContainSubstring, `"messages":[]`)
			})
		})

		Convey("When opening a new conversation", func() {
			req := httptest.NewRequest("POST", "/api/v1/chat/new", strings.NewReader(`{"user_id":"bob"}`))
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			Convey("Then it should return a fresh conversation id", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var resp map[string]any
				So(json.Unmarshal(w.Body.Bytes(), &resp), ShouldBeNil)
				So(resp["conversation_id"], ShouldStartWith, "bob_")
			})
		})

		Convey("When querying chat status", func() {
			req := httptest.NewRequest("GET", "/api/v1/chat/status", http.NoBody)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			Convey("Then it should report the subsystem snapshot", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var resp map[string]any
				So(json.Unmarshal(w.Body.Bytes(), &resp), ShouldBeNil)
				So(resp["status"], ShouldEqual, "online")
				So(resp["model_available"], ShouldEqual, false)
				So(resp["model"], ShouldEqual, "demo")
				So(resp["active_conversations"], ShouldEqual, 3)
				So(resp["total_messages"], ShouldEqual, 12)
			})
		})
	})
}

func TestModelsEndpoint(t *testing.T) {
	Convey("Given a registered API server", t, func() {
		mux := newTestMux(&mockDeps{})

		Convey("When querying model availability", func() {
			req := httptest.NewRequest("GET", "/api/v1/models", http.NoBody)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			Convey("Then it should report per-domain flags and features", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var resp map[string]any
				So(json.Unmarshal(w.Body.Bytes(), &resp), ShouldBeNil)
				So(resp["status"], ShouldEqual, "online")

				models, ok := resp["models"].(map[string]any)
				So(ok, ShouldBeTrue)
				So(models["stroke"], ShouldEqual, true)
				So(models["skin"], ShouldEqual, false)

				features, ok := resp["features"].(map[string]any)
				So(ok, ShouldBeTrue)
				So(features["clinical_adjustment"], ShouldEqual, true)
				So(features["chat"], ShouldEqual, true)
			})
		})
	})
}

func TestExampleEndpoints(t *testing.T) {
	Convey("Given a registered API server", t, func() {
		deps := &mockDeps{}
		mux := newTestMux(deps)

		Convey("When running the stroke example", func() {
			req := httptest.NewRequest("GET", "/api/v1/examples/stroke", http.NoBody)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			Convey("Then it should echo the canned input and its assessment", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var resp map[string]any
				So(json.Unmarshal(w.Body.Bytes(), &resp), ShouldBeNil)
				So(resp["test_case"], ShouldContainSubstring, "Stroke")

				input, ok := resp["input_data"].(map[string]any)
				So(ok, ShouldBeTrue)
				So(input["gender"], ShouldEqual, "Female")
				So(input["avg_glucose_level"], ShouldEqual, 228.69)

				result, ok := resp["result"].(map[string]any)
				So(ok, ShouldBeTrue)
				So(result["success"], ShouldEqual, true)
			})

			Convey("And the canned record should flow through the pipeline", func() {
				So(deps.lastStrokePayload["smoking_status"], ShouldEqual, "formerly smoked")
			})
		})

		Convey("When running the heart example", func() {
			req := httptest.NewRequest("GET", "/api/v1/examples/heart", http.NoBody)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			Convey("Then it should echo the canned input", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var resp map[string]any
				So(json.Unmarshal(w.Body.Bytes(), &resp), ShouldBeNil)

				input, ok := resp["input_data"].(map[string]any)
				So(ok, ShouldBeTrue)
				So(input["ChestPainType"], ShouldEqual, "ATA")
				So(input["ST_Slope"], ShouldEqual, "Up")
			})
		})
	})
}

func TestHealthAndStatsEndpoints(t *testing.T) {
	Convey("Given a registered API server", t, func() {
		mux := newTestMux(&mockDeps{})

		Convey("When checking liveness", func() {
			req := httptest.NewRequest("GET", "/healthz", http.NoBody)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			Convey("Then it should report ok", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var resp map[string]any
				So(json.Unmarshal(w.Body.Bytes(), &resp), ShouldBeNil)
				So(resp["status"], ShouldEqual, "ok")
				So(resp["service"], ShouldEqual, "aila")
			})
		})

		Convey("When scraping metrics", func() {
			req := httptest.NewRequest("GET", "/metrics", http.NoBody)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			Convey("Then it should serve the Prometheus exposition", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
			})
		})

		Convey("When fetching stats", func() {
			req := httptest.NewRequest("GET", "/stats", http.NoBody)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			Convey("Then it should return the provider snapshot", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var resp map[string]any
				So(json.Unmarshal(w.Body.Bytes(), &resp), ShouldBeNil)
				So(resp["uptime_seconds"], ShouldEqual, 42)
			})
		})
	})
}

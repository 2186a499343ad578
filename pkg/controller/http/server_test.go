package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/m-mizutani/gt"
	httpctrl "github.com/medassist-dev/medassist/pkg/controller/http"
	"github.com/medassist-dev/medassist/pkg/repository/memory"
	"github.com/medassist-dev/medassist/pkg/usecase"
)

type mockLLM struct {
	completeFn func(ctx context.Context, prompt string) (string, error)
}

func (m *mockLLM) Complete(ctx context.Context, prompt string) (string, error) {
	if m.completeFn != nil {
		return m.completeFn(ctx, prompt)
	}
	return "mock reply", nil
}

func newServer(t *testing.T, llm *mockLLM) *httpctrl.Server {
	t.Helper()
	uc := usecase.New(memory.New(), usecase.WithLLM(llm))
	return httpctrl.New(uc)
}

func do(t *testing.T, srv http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		gt.NoError(t, err).Required()
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body)).Required()
	return body
}

func registerPatient(t *testing.T, srv http.Handler, id string) {
	t.Helper()
	rec := do(t, srv, http.MethodPost, "/api/patients", map[string]any{
		"patient_id": id,
		"name":       "Taro Yamada",
		"age":        42,
		"gender":     "male",
	})
	gt.Number(t, rec.Code).Equal(http.StatusCreated)
}

func createSession(t *testing.T, srv http.Handler) string {
	t.Helper()
	rec := do(t, srv, http.MethodPost, "/api/sessions", nil)
	gt.Number(t, rec.Code).Equal(http.StatusCreated)
	id, ok := decode(t, rec)["session_id"].(string)
	gt.Bool(t, ok).True()
	return id
}

func TestPatientEndpoints(t *testing.T) {
	srv := newServer(t, &mockLLM{})

	t.Run("register and get", func(t *testing.T) {
		registerPatient(t, srv, "P-001")

		rec := do(t, srv, http.MethodGet, "/api/patients/P-001", nil)
		gt.Number(t, rec.Code).Equal(http.StatusOK)
		body := decode(t, rec)
		gt.Value(t, body["patient_id"]).Equal("P-001")
		gt.Value(t, body["name"]).Equal("Taro Yamada")
	})

	t.Run("duplicate ID conflicts", func(t *testing.T) {
		rec := do(t, srv, http.MethodPost, "/api/patients", map[string]any{
			"patient_id": "P-001",
			"name":       "Someone Else",
			"age":        30,
			"gender":     "female",
		})
		gt.Number(t, rec.Code).Equal(http.StatusConflict)
	})

	t.Run("invalid registration", func(t *testing.T) {
		rec := do(t, srv, http.MethodPost, "/api/patients", map[string]any{
			"patient_id": "P-002",
			"name":       "",
			"age":        30,
			"gender":     "female",
		})
		gt.Number(t, rec.Code).Equal(http.StatusBadRequest)
	})

	t.Run("malformed JSON", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/patients", strings.NewReader("{"))
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)
		gt.Number(t, rec.Code).Equal(http.StatusBadRequest)
	})

	t.Run("unknown patient", func(t *testing.T) {
		rec := do(t, srv, http.MethodGet, "/api/patients/missing", nil)
		gt.Number(t, rec.Code).Equal(http.StatusNotFound)
	})

	t.Run("list", func(t *testing.T) {
		rec := do(t, srv, http.MethodGet, "/api/patients", nil)
		gt.Number(t, rec.Code).Equal(http.StatusOK)
		patients, ok := decode(t, rec)["patients"].([]any)
		gt.Bool(t, ok).True()
		gt.Array(t, patients).Length(1)
	})

	t.Run("invalid visit limit", func(t *testing.T) {
		rec := do(t, srv, http.MethodGet, "/api/patients/P-001/visits?limit=zero", nil)
		gt.Number(t, rec.Code).Equal(http.StatusBadRequest)
	})

	t.Run("clear all requires confirmation", func(t *testing.T) {
		rec := do(t, srv, http.MethodDelete, "/api/patients", nil)
		gt.Number(t, rec.Code).Equal(http.StatusBadRequest)

		rec = do(t, srv, http.MethodGet, "/api/patients/P-001", nil)
		gt.Number(t, rec.Code).Equal(http.StatusOK)

		rec = do(t, srv, http.MethodDelete, "/api/patients?confirm=true", nil)
		gt.Number(t, rec.Code).Equal(http.StatusNoContent)

		rec = do(t, srv, http.MethodGet, "/api/patients/P-001", nil)
		gt.Number(t, rec.Code).Equal(http.StatusNotFound)
	})
}

func TestConsultationFlow(t *testing.T) {
	srv := newServer(t, &mockLLM{
		completeFn: func(ctx context.Context, prompt string) (string, error) {
			if strings.Contains(prompt, "structured summary") {
				return "SUMMARY: Mild fever for two days.\nSYMPTOMS: fever, fatigue\nDIAGNOSES: viral infection", nil
			}
			return "Consider checking the temperature trend.", nil
		},
	})
	registerPatient(t, srv, "P-100")
	sid := createSession(t, srv)
	base := "/api/sessions/" + sid

	rec := do(t, srv, http.MethodPost, base+"/turns", map[string]any{"message": "too early"})
	gt.Number(t, rec.Code).Equal(http.StatusConflict)

	rec = do(t, srv, http.MethodPost, base+"/start", map[string]any{
		"patient_id":      "P-100",
		"chief_complaint": "fever",
	})
	gt.Number(t, rec.Code).Equal(http.StatusCreated)
	conv := decode(t, rec)["conversation"].(map[string]any)
	convID := int64(conv["conversation_id"].(float64))

	rec = do(t, srv, http.MethodPost, base+"/start", map[string]any{
		"patient_id":      "P-100",
		"chief_complaint": "again",
	})
	gt.Number(t, rec.Code).Equal(http.StatusConflict)

	rec = do(t, srv, http.MethodPost, base+"/turns", map[string]any{"message": "Fever since yesterday"})
	gt.Number(t, rec.Code).Equal(http.StatusOK)
	turn := decode(t, rec)
	gt.Value(t, turn["outcome"]).Equal("replied")
	reply := turn["reply"].(map[string]any)
	gt.Value(t, reply["content"]).Equal("Consider checking the temperature trend.")

	rec = do(t, srv, http.MethodPost, base+"/turns", map[string]any{"message": "   "})
	gt.Number(t, rec.Code).Equal(http.StatusBadRequest)

	rec = do(t, srv, http.MethodPost, base+"/resume", nil)
	gt.Number(t, rec.Code).Equal(http.StatusConflict)

	rec = do(t, srv, http.MethodPost, base+"/summary", nil)
	gt.Number(t, rec.Code).Equal(http.StatusOK)
	summary := decode(t, rec)
	gt.Value(t, summary["summary"]).Equal("Mild fever for two days.")
	gt.Value(t, summary["diagnoses"]).Equal("viral infection")

	rec = do(t, srv, http.MethodGet, base, nil)
	gt.Number(t, rec.Code).Equal(http.StatusOK)
	gt.Value(t, decode(t, rec)["state"]).Equal("ending")

	rec = do(t, srv, http.MethodPost, base+"/end", map[string]any{
		"summary":   "Mild fever for two days.",
		"symptoms":  "",
		"diagnoses": "viral infection",
	})
	gt.Number(t, rec.Code).Equal(http.StatusBadRequest)

	rec = do(t, srv, http.MethodPost, base+"/end", map[string]any{
		"summary":   "Mild fever for two days.",
		"symptoms":  "fever, fatigue",
		"diagnoses": "viral infection",
	})
	gt.Number(t, rec.Code).Equal(http.StatusOK)
	entry := decode(t, rec)
	gt.Value(t, entry["patient_id"]).Equal("P-100")
	gt.Value(t, entry["symptoms"]).Equal("fever, fatigue")

	rec = do(t, srv, http.MethodPost, base+"/end", map[string]any{
		"summary":   "again",
		"symptoms":  "again",
		"diagnoses": "again",
	})
	gt.Number(t, rec.Code).Equal(http.StatusConflict)

	rec = do(t, srv, http.MethodGet, "/api/patients/P-100/visits", nil)
	gt.Number(t, rec.Code).Equal(http.StatusOK)
	visits := decode(t, rec)["visits"].([]any)
	gt.Array(t, visits).Length(1).Required()
	gt.Value(t, visits[0].(map[string]any)["chief_complaint"]).Equal("fever")

	rec = do(t, srv, http.MethodGet, fmt.Sprintf("/api/conversations/%d/messages", convID), nil)
	gt.Number(t, rec.Code).Equal(http.StatusOK)
	body := decode(t, rec)
	gt.Array(t, body["messages"].([]any)).Length(2)
	gt.Value(t, body["conversation"].(map[string]any)["closed"]).Equal(true)
}

func TestSendTurnServiceFailure(t *testing.T) {
	srv := newServer(t, &mockLLM{
		completeFn: func(ctx context.Context, prompt string) (string, error) {
			return "", errors.New("quota exceeded")
		},
	})
	registerPatient(t, srv, "P-200")
	sid := createSession(t, srv)

	rec := do(t, srv, http.MethodPost, "/api/sessions/"+sid+"/start", map[string]any{
		"patient_id":      "P-200",
		"chief_complaint": "cough",
	})
	gt.Number(t, rec.Code).Equal(http.StatusCreated)

	rec = do(t, srv, http.MethodPost, "/api/sessions/"+sid+"/turns", map[string]any{"message": "Dry cough"})
	gt.Number(t, rec.Code).Equal(http.StatusBadGateway)

	body := decode(t, rec)
	gt.Value(t, body["outcome"]).Equal("service_failure")
	user := body["user_message"].(map[string]any)
	gt.Value(t, user["content"]).Equal("Dry cough")
	_, hasReply := body["reply"]
	gt.Bool(t, hasReply).False()
	gt.String(t, body["error"].(string)).Contains("quota exceeded")
}

func TestSessionNotFound(t *testing.T) {
	srv := newServer(t, &mockLLM{})

	for _, path := range []string{"/api/sessions/unknown", "/api/sessions/unknown/summary"} {
		method := http.MethodGet
		if strings.HasSuffix(path, "/summary") {
			method = http.MethodPost
		}
		rec := do(t, srv, method, path, nil)
		gt.Number(t, rec.Code).Equal(http.StatusNotFound)
	}

	rec := do(t, srv, http.MethodDelete, "/api/sessions/unknown", nil)
	gt.Number(t, rec.Code).Equal(http.StatusNotFound)
}

func TestDeleteSession(t *testing.T) {
	srv := newServer(t, &mockLLM{})
	sid := createSession(t, srv)

	rec := do(t, srv, http.MethodDelete, "/api/sessions/"+sid, nil)
	gt.Number(t, rec.Code).Equal(http.StatusNoContent)

	rec = do(t, srv, http.MethodGet, "/api/sessions/"+sid, nil)
	gt.Number(t, rec.Code).Equal(http.StatusNotFound)
}

func TestMessagesBadConversationID(t *testing.T) {
	srv := newServer(t, &mockLLM{})

	rec := do(t, srv, http.MethodGet, "/api/conversations/abc/messages", nil)
	gt.Number(t, rec.Code).Equal(http.StatusBadRequest)

	rec = do(t, srv, http.MethodGet, "/api/conversations/999/messages", nil)
	gt.Number(t, rec.Code).Equal(http.StatusNotFound)
}

package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/medassist-dev/medassist/pkg/domain/model"
	"github.com/medassist-dev/medassist/pkg/usecase"
	"github.com/medassist-dev/medassist/pkg/utils/errutil"
	"github.com/medassist-dev/medassist/pkg/utils/safe"
)

var errBadRequest = goerr.New("bad request")

const maxBodySize = 1 << 20

type patientResponse struct {
	ID        string    `json:"patient_id"`
	Name      string    `json:"name"`
	Age       int       `json:"age"`
	Gender    string    `json:"gender"`
	CreatedAt time.Time `json:"created_at"`
}

func toPatientResponse(p *model.Patient) patientResponse {
	return patientResponse{
		ID:        p.ID.String(),
		Name:      p.Name,
		Age:       p.Age,
		Gender:    p.Gender,
		CreatedAt: p.CreatedAt,
	}
}

type conversationResponse struct {
	ID             int64     `json:"conversation_id"`
	PatientID      string    `json:"patient_id"`
	ChiefComplaint string    `json:"chief_complaint"`
	Summary        string    `json:"summary,omitempty"`
	Closed         bool      `json:"closed"`
	CreatedAt      time.Time `json:"created_at"`
}

func toConversationResponse(c *model.Conversation) conversationResponse {
	return conversationResponse{
		ID:             c.ID,
		PatientID:      c.PatientID.String(),
		ChiefComplaint: c.ChiefComplaint,
		Summary:        c.Summary,
		Closed:         c.Closed(),
		CreatedAt:      c.CreatedAt,
	}
}

type messageResponse struct {
	ID             int64     `json:"message_id"`
	ConversationID int64     `json:"conversation_id"`
	Role           string    `json:"role"`
	Content        string    `json:"content"`
	CreatedAt      time.Time `json:"created_at"`
}

func toMessageResponse(m *model.Message) *messageResponse {
	if m == nil {
		return nil
	}
	return &messageResponse{
		ID:             m.ID,
		ConversationID: m.ConversationID,
		Role:           m.Role.String(),
		Content:        m.Content,
		CreatedAt:      m.CreatedAt,
	}
}

func toMessageResponses(msgs []*model.Message) []*messageResponse {
	resp := make([]*messageResponse, len(msgs))
	for i, m := range msgs {
		resp[i] = toMessageResponse(m)
	}
	return resp
}

type visitResponse struct {
	ConversationID int64     `json:"conversation_id"`
	Date           time.Time `json:"date"`
	ChiefComplaint string    `json:"chief_complaint"`
	Summary        string    `json:"summary"`
	Symptoms       string    `json:"symptoms"`
	Diagnoses      string    `json:"diagnoses"`
}

type historyResponse struct {
	ID             string    `json:"history_id"`
	PatientID      string    `json:"patient_id"`
	ConversationID int64     `json:"conversation_id"`
	Symptoms       string    `json:"symptoms"`
	Diagnoses      string    `json:"diagnoses"`
	CreatedAt      time.Time `json:"created_at"`
}

type sessionResponse struct {
	ID             string `json:"session_id"`
	State          string `json:"state"`
	PatientID      string `json:"patient_id,omitempty"`
	ConversationID int64  `json:"conversation_id,omitempty"`
	ChiefComplaint string `json:"chief_complaint,omitempty"`
}

func toSessionResponse(id string, s *usecase.Session) sessionResponse {
	return sessionResponse{
		ID:             id,
		State:          s.State().String(),
		PatientID:      s.PatientID().String(),
		ConversationID: s.ConversationID(),
		ChiefComplaint: s.ChiefComplaint(),
	}
}

type turnResponse struct {
	Outcome     string           `json:"outcome"`
	UserMessage *messageResponse `json:"user_message"`
	Reply       *messageResponse `json:"reply,omitempty"`
	Error       string           `json:"error,omitempty"`
}

type summaryResponse struct {
	Summary   string `json:"summary"`
	Symptoms  string `json:"symptoms"`
	Diagnoses string `json:"diagnoses"`
}

// statusOf maps use case errors to HTTP status codes
func statusOf(err error) int {
	switch {
	case errors.Is(err, usecase.ErrPatientNotFound),
		errors.Is(err, usecase.ErrConversationNotFound),
		errors.Is(err, usecase.ErrSessionNotFound):
		return http.StatusNotFound

	case errors.Is(err, usecase.ErrDuplicatePatient),
		errors.Is(err, usecase.ErrConsultationInProgress),
		errors.Is(err, usecase.ErrNoActiveConsultation),
		errors.Is(err, usecase.ErrNotSummarizing),
		errors.Is(err, usecase.ErrTurnInFlight),
		errors.Is(err, model.ErrConversationClosed):
		return http.StatusConflict

	case errors.Is(err, usecase.ErrInvalidPatient),
		errors.Is(err, usecase.ErrEmptyMessage),
		errors.Is(err, usecase.ErrEmptyChiefComplaint),
		errors.Is(err, usecase.ErrEmptySummaryField),
		errors.Is(err, errBadRequest):
		return http.StatusBadRequest

	case errors.Is(err, model.ErrLLMUnavailable):
		return http.StatusBadGateway

	default:
		return http.StatusInternalServerError
	}
}

func handleError(w http.ResponseWriter, r *http.Request, err error) {
	errutil.HandleHTTP(r.Context(), w, err, statusOf(err))
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "failed to marshal response"), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	safe.Write(r.Context(), w, data)
}

func decodeJSON(r *http.Request, v any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		return goerr.Wrap(errors.Join(errBadRequest, err), "failed to read request body")
	}
	if err := json.Unmarshal(body, v); err != nil {
		return goerr.Wrap(errors.Join(errBadRequest, err), "invalid JSON body")
	}
	return nil
}

package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/medassist-dev/medassist/pkg/domain/model"
	"github.com/medassist-dev/medassist/pkg/domain/types"
	"github.com/medassist-dev/medassist/pkg/usecase"
)

type startRequest struct {
	PatientID      string `json:"patient_id"`
	ChiefComplaint string `json:"chief_complaint"`
}

type turnRequest struct {
	Message string `json:"message"`
}

type endRequest struct {
	Summary   string `json:"summary"`
	Symptoms  string `json:"symptoms"`
	Diagnoses string `json:"diagnoses"`
}

func (s *Server) session(w http.ResponseWriter, r *http.Request) (string, *usecase.Session, bool) {
	id := chi.URLParam(r, "sessionID")
	sess, err := s.uc.Sessions.Get(id)
	if err != nil {
		handleError(w, r, err)
		return "", nil, false
	}
	return id, sess, true
}

func (s *Server) createSession(w http.ResponseWriter, r *http.Request) {
	id, sess := s.uc.Sessions.Create()
	writeJSON(w, r, http.StatusCreated, toSessionResponse(id, sess))
}

func (s *Server) getSession(w http.ResponseWriter, r *http.Request) {
	id, sess, ok := s.session(w, r)
	if !ok {
		return
	}

	resp := struct {
		sessionResponse
		Messages []*messageResponse `json:"messages,omitempty"`
	}{sessionResponse: toSessionResponse(id, sess)}

	if sess.State().HasConversation() {
		messages, err := sess.Messages(r.Context())
		if err != nil {
			handleError(w, r, err)
			return
		}
		resp.Messages = toMessageResponses(messages)
	}
	writeJSON(w, r, http.StatusOK, resp)
}

func (s *Server) deleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.uc.Sessions.Delete(chi.URLParam(r, "sessionID")); err != nil {
		handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) startConsultation(w http.ResponseWriter, r *http.Request) {
	id, sess, ok := s.session(w, r)
	if !ok {
		return
	}

	var req startRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	conv, err := sess.Start(r.Context(), model.PatientID(req.PatientID), req.ChiefComplaint)
	if err != nil {
		handleError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusCreated, map[string]any{
		"session":      toSessionResponse(id, sess),
		"conversation": toConversationResponse(conv),
	})
}

func (s *Server) sendTurn(w http.ResponseWriter, r *http.Request) {
	_, sess, ok := s.session(w, r)
	if !ok {
		return
	}

	var req turnRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	result, err := sess.SendTurn(r.Context(), req.Message)
	if err != nil {
		handleError(w, r, err)
		return
	}

	resp := turnResponse{
		Outcome:     result.Outcome.String(),
		UserMessage: toMessageResponse(result.UserMessage),
		Reply:       toMessageResponse(result.Reply),
	}
	status := http.StatusOK
	if result.Outcome == types.TurnOutcomeServiceFailure {
		status = http.StatusBadGateway
		resp.Error = result.Failure.Error()
	}
	writeJSON(w, r, status, resp)
}

func (s *Server) summarize(w http.ResponseWriter, r *http.Request) {
	_, sess, ok := s.session(w, r)
	if !ok {
		return
	}

	summary, err := sess.Summarize(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, summaryResponse{
		Summary:   summary.Summary,
		Symptoms:  summary.Symptoms,
		Diagnoses: summary.Diagnoses,
	})
}

func (s *Server) resume(w http.ResponseWriter, r *http.Request) {
	id, sess, ok := s.session(w, r)
	if !ok {
		return
	}

	if err := sess.Resume(r.Context()); err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toSessionResponse(id, sess))
}

func (s *Server) endConsultation(w http.ResponseWriter, r *http.Request) {
	_, sess, ok := s.session(w, r)
	if !ok {
		return
	}

	var req endRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	entry, err := sess.End(r.Context(), req.Summary, req.Symptoms, req.Diagnoses)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, historyResponse{
		ID:             entry.ID.String(),
		PatientID:      entry.PatientID.String(),
		ConversationID: entry.ConversationID,
		Symptoms:       entry.Symptoms,
		Diagnoses:      entry.Diagnoses,
		CreatedAt:      entry.CreatedAt,
	})
}

package http

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"
	"github.com/medassist-dev/medassist/pkg/domain/model"
	"github.com/medassist-dev/medassist/pkg/service/report"
	"github.com/medassist-dev/medassist/pkg/usecase"
	"github.com/medassist-dev/medassist/pkg/utils/safe"
)

func patientIDParam(r *http.Request) model.PatientID {
	return model.PatientID(chi.URLParam(r, "patientID"))
}

func (s *Server) listPatients(w http.ResponseWriter, r *http.Request) {
	patients, err := s.uc.Patient.List(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}

	resp := make([]patientResponse, len(patients))
	for i, p := range patients {
		resp[i] = toPatientResponse(p)
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"patients": resp})
}

func (s *Server) registerPatient(w http.ResponseWriter, r *http.Request) {
	var input usecase.RegisterPatientInput
	if err := decodeJSON(r, &input); err != nil {
		handleError(w, r, err)
		return
	}

	patient, err := s.uc.Patient.Register(r.Context(), input)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, toPatientResponse(patient))
}

func (s *Server) clearAll(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("confirm") != "true" {
		handleError(w, r, goerr.Wrap(errBadRequest, "confirm=true is required to delete all data"))
		return
	}

	if err := s.uc.Patient.ClearAll(r.Context()); err != nil {
		handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) getPatient(w http.ResponseWriter, r *http.Request) {
	patient, err := s.uc.Patient.Get(r.Context(), patientIDParam(r))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toPatientResponse(patient))
}

func (s *Server) deletePatient(w http.ResponseWriter, r *http.Request) {
	if err := s.uc.Patient.Delete(r.Context(), patientIDParam(r)); err != nil {
		handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func parseLimit(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return model.DefaultVisitLimit, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		return 0, goerr.Wrap(errBadRequest, "limit must be a positive integer", goerr.V("limit", raw))
	}
	return limit, nil
}

func (s *Server) listVisits(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r)
	if err != nil {
		handleError(w, r, err)
		return
	}

	visits, err := s.uc.Patient.Visits(r.Context(), patientIDParam(r), limit)
	if err != nil {
		handleError(w, r, err)
		return
	}

	resp := make([]visitResponse, len(visits))
	for i, v := range visits {
		resp[i] = visitResponse{
			ConversationID: v.ConversationID,
			Date:           v.Date,
			ChiefComplaint: v.ChiefComplaint,
			Summary:        v.Summary,
			Symptoms:       v.Symptoms,
			Diagnoses:      v.Diagnoses,
		}
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"visits": resp})
}

func (s *Server) listConversations(w http.ResponseWriter, r *http.Request) {
	convs, err := s.uc.Patient.Conversations(r.Context(), patientIDParam(r))
	if err != nil {
		handleError(w, r, err)
		return
	}

	resp := make([]conversationResponse, len(convs))
	for i, c := range convs {
		resp[i] = toConversationResponse(c)
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"conversations": resp})
}

func (s *Server) listMessages(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "conversationID")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		handleError(w, r, goerr.Wrap(errBadRequest, "invalid conversation ID", goerr.V("conversation_id", raw)))
		return
	}

	conv, messages, err := s.uc.Patient.Transcript(r.Context(), id)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]any{
		"conversation": toConversationResponse(conv),
		"messages":     toMessageResponses(messages),
	})
}

func (s *Server) patientReport(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r)
	if err != nil {
		handleError(w, r, err)
		return
	}

	patient, err := s.uc.Patient.Get(r.Context(), patientIDParam(r))
	if err != nil {
		handleError(w, r, err)
		return
	}
	visits, err := s.uc.Patient.Visits(r.Context(), patient.ID, limit)
	if err != nil {
		handleError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := s.report.Generate(&buf, &report.Data{
		Patient:     patient,
		Visits:      visits,
		GeneratedAt: time.Now(),
	}); err != nil {
		handleError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", patient.ID.String()+".pdf"))
	w.WriteHeader(http.StatusOK)
	safe.Copy(r.Context(), w, &buf)
}

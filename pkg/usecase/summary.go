package usecase

import (
	"strings"

	"github.com/medassist-dev/medassist/pkg/domain/model"
)

const (
	summaryPrefix   = "SUMMARY:"
	symptomsPrefix  = "SYMPTOMS:"
	diagnosesPrefix = "DIAGNOSES:"
)

// SummaryDefaults holds the texts used when the model output lacks a field
// or the model cannot be reached
type SummaryDefaults struct {
	// Summary replaces a missing SUMMARY line
	Summary string
	// Diagnoses replaces a missing DIAGNOSES line
	Diagnoses string
	// PendingDiagnoses is used when the model call failed
	PendingDiagnoses string
}

func DefaultSummaryDefaults() SummaryDefaults {
	return SummaryDefaults{
		Summary:          "Consultation completed. See conversation history for details.",
		Diagnoses:        "Under evaluation",
		PendingDiagnoses: "Pending further evaluation",
	}
}

// parseSummary reads the labelled lines. The first line carrying a prefix
// decides that field even when its value is empty; missing or empty fields
// take the defaults. Symptoms fall back to the chief complaint.
func parseSummary(text, chiefComplaint string, defaults SummaryDefaults) *model.ConsultationSummary {
	seen := make(map[string]bool, 3)
	var summary, symptoms, diagnoses string
	targets := []struct {
		prefix string
		dst    *string
	}{
		{summaryPrefix, &summary},
		{symptomsPrefix, &symptoms},
		{diagnosesPrefix, &diagnoses},
	}

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		for _, t := range targets {
			if seen[t.prefix] {
				continue
			}
			if value, ok := strings.CutPrefix(line, t.prefix); ok {
				*t.dst = strings.TrimSpace(value)
				seen[t.prefix] = true
				break
			}
		}
	}

	if summary == "" {
		summary = defaults.Summary
	}
	if symptoms == "" {
		symptoms = chiefComplaint
	}
	if diagnoses == "" {
		diagnoses = defaults.Diagnoses
	}

	return &model.ConsultationSummary{
		Summary:   summary,
		Symptoms:  symptoms,
		Diagnoses: diagnoses,
	}
}

// failedSummary is the summary offered when the model could not be reached
func failedSummary(chiefComplaint string, defaults SummaryDefaults) *model.ConsultationSummary {
	return &model.ConsultationSummary{
		Summary:   "Consultation regarding: " + chiefComplaint,
		Symptoms:  chiefComplaint,
		Diagnoses: defaults.PendingDiagnoses,
	}
}

package model

import "strings"

// ConsultationSummary is the end-of-visit triple that closes a conversation.
type ConsultationSummary struct {
	Summary   string
	Symptoms  string
	Diagnoses string
}

// Complete reports whether all three fields carry non-blank text
func (s *ConsultationSummary) Complete() bool {
	return strings.TrimSpace(s.Summary) != "" &&
		strings.TrimSpace(s.Symptoms) != "" &&
		strings.TrimSpace(s.Diagnoses) != ""
}

package usecase

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"strings"
	"text/template"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/medassist-dev/medassist/pkg/domain/interfaces"
	"github.com/medassist-dev/medassist/pkg/domain/model"
)

//go:embed prompt/system.md
var defaultSystemPrompt string

//go:embed prompt/turn.md
var turnPromptTmpl string

//go:embed prompt/summary.md
var summaryPromptTmpl string

// VisitDateLayout is the timestamp format of visit headers in the turn prompt
const VisitDateLayout = "2006-01-02 15:04:05"

var promptFuncs = template.FuncMap{
	"inc": func(i int) int { return i + 1 },
	"visitDate": func(t time.Time) string {
		return t.UTC().Format(VisitDateLayout)
	},
}

var (
	turnPrompt    = template.Must(template.New("turn").Funcs(promptFuncs).Parse(turnPromptTmpl))
	summaryPrompt = template.Must(template.New("summary").Parse(summaryPromptTmpl))
)

// DefaultSystemPrompt returns the built-in assistant instructions
func DefaultSystemPrompt() string {
	return strings.TrimSpace(defaultSystemPrompt)
}

// ContextBuilder assembles prompts from the persisted patient record. It only reads.
type ContextBuilder struct {
	repo         interfaces.Repository
	systemPrompt string
	historyLimit int
}

// NewContextBuilder creates a builder. An empty systemPrompt selects the built-in
// instructions and historyLimit <= 0 selects model.DefaultVisitLimit.
func NewContextBuilder(repo interfaces.Repository, systemPrompt string, historyLimit int) *ContextBuilder {
	if strings.TrimSpace(systemPrompt) == "" {
		systemPrompt = DefaultSystemPrompt()
	}
	if historyLimit <= 0 {
		historyLimit = model.DefaultVisitLimit
	}
	return &ContextBuilder{
		repo:         repo,
		systemPrompt: strings.TrimSpace(systemPrompt),
		historyLimit: historyLimit,
	}
}

func (b *ContextBuilder) HistoryLimit() int {
	return b.historyLimit
}

type turnPromptData struct {
	System  string
	Patient *model.Patient
	Visits  []*model.Visit
	Message string
}

// BuildTurnPrompt renders the prompt for one consultation turn: system
// instructions, patient demographics, the earliest closed visits and the
// current message. Demographic lines are left out when the patient is unknown.
func (b *ContextBuilder) BuildTurnPrompt(ctx context.Context, patientID model.PatientID, message string) (string, error) {
	patient, err := b.repo.Patient().Get(ctx, patientID)
	if err != nil {
		if !errors.Is(err, model.ErrNotFound) {
			return "", goerr.Wrap(err, "failed to load patient", goerr.V(PatientIDKey, patientID))
		}
		patient = nil
	}

	visits, err := b.repo.History().ListVisits(ctx, patientID, b.historyLimit)
	if err != nil {
		return "", goerr.Wrap(err, "failed to load visit history", goerr.V(PatientIDKey, patientID))
	}

	var buf bytes.Buffer
	if err := turnPrompt.Execute(&buf, &turnPromptData{
		System:  b.systemPrompt,
		Patient: patient,
		Visits:  visits,
		Message: message,
	}); err != nil {
		return "", goerr.Wrap(err, "failed to execute turn prompt template")
	}

	return strings.TrimRight(buf.String(), "\n"), nil
}

type summaryPromptData struct {
	ChiefComplaint string
	Transcript     string
}

// BuildSummaryPrompt renders the request for the three labelled summary lines
func (b *ContextBuilder) BuildSummaryPrompt(transcript, chiefComplaint string) (string, error) {
	var buf bytes.Buffer
	if err := summaryPrompt.Execute(&buf, &summaryPromptData{
		ChiefComplaint: chiefComplaint,
		Transcript:     transcript,
	}); err != nil {
		return "", goerr.Wrap(err, "failed to execute summary prompt template")
	}
	return buf.String(), nil
}

// RenderTranscript writes one "ROLE: content" block per message, separated by blank lines
func RenderTranscript(messages []*model.Message) string {
	var sb strings.Builder
	for _, m := range messages {
		sb.WriteString(strings.ToUpper(m.Role.String()))
		sb.WriteString(": ")
		sb.WriteString(m.Content)
		sb.WriteString("\n\n")
	}
	return sb.String()
}

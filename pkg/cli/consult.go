package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/medassist-dev/medassist/pkg/cli/config"
	"github.com/medassist-dev/medassist/pkg/domain/model"
	"github.com/medassist-dev/medassist/pkg/domain/types"
	"github.com/medassist-dev/medassist/pkg/usecase"
	"github.com/medassist-dev/medassist/pkg/utils/safe"
	"github.com/urfave/cli/v3"
)

func cmdConsult() *cli.Command {
	var patientID string
	var complaint string
	var appCfg config.App
	var repoCfg config.Repository
	var llmCfg config.LLM

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "patient-id",
			Aliases:     []string{"p"},
			Usage:       "Patient to consult about",
			Required:    true,
			Sources:     cli.EnvVars("MEDASSIST_PATIENT_ID"),
			Destination: &patientID,
		},
		&cli.StringFlag{
			Name:        "complaint",
			Usage:       "Chief complaint of this visit (asked interactively when omitted)",
			Destination: &complaint,
		},
	}
	flags = append(flags, appCfg.Flags()...)
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, llmCfg.Flags()...)

	return &cli.Command{
		Name:    "consult",
		Aliases: []string{"c"},
		Usage:   "Start an interactive consultation",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			uc, repo, err := buildUseCases(ctx, &repoCfg, &llmCfg, &appCfg)
			if err != nil {
				return err
			}
			defer safe.Close(ctx, repo)

			r := newREPL(uc, os.Stdin, os.Stdout)
			return r.run(ctx, model.PatientID(patientID), complaint)
		},
	}
}

var (
	clinicianColor = color.New(color.FgCyan, color.Bold)
	assistantColor = color.New(color.FgGreen)
	noticeColor    = color.New(color.FgYellow)
	failureColor   = color.New(color.FgRed)
)

const replHelp = `Commands:
  /summary                              draft the end-of-visit summary
  /edit summary|symptoms|diagnoses TEXT change a drafted field
  /end                                  save the drafted summary and finish
  /resume                               discard the draft and keep talking
  /history                              show previous visits
  /quit                                 leave without closing the visit
Any other line is sent to the assistant.`

// repl is the terminal front end of one consultation session
type repl struct {
	patients *usecase.PatientUseCase
	session  *usecase.Session
	in       *bufio.Scanner
	out      io.Writer

	patientID model.PatientID
	draft     *model.ConsultationSummary
}

func newREPL(uc *usecase.UseCases, in io.Reader, out io.Writer) *repl {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return &repl{
		patients: uc.Patient,
		session:  uc.Consultation.NewSession(),
		in:       scanner,
		out:      out,
	}
}

// userFacing reports whether err is an expected condition to show instead of aborting
func userFacing(err error) bool {
	for _, target := range []error{
		usecase.ErrConsultationInProgress,
		usecase.ErrNoActiveConsultation,
		usecase.ErrNotSummarizing,
		usecase.ErrTurnInFlight,
		usecase.ErrEmptyMessage,
		usecase.ErrEmptyChiefComplaint,
		usecase.ErrEmptySummaryField,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func (r *repl) printf(c *color.Color, format string, args ...any) {
	if c == nil {
		fmt.Fprintf(r.out, format, args...)
		return
	}
	c.Fprintf(r.out, format, args...)
}

func (r *repl) readLine(prompt string) (string, bool) {
	r.printf(clinicianColor, "%s", prompt)
	if !r.in.Scan() {
		return "", false
	}
	return r.in.Text(), true
}

func (r *repl) run(ctx context.Context, patientID model.PatientID, complaint string) error {
	patient, err := r.patients.Get(ctx, patientID)
	if err != nil {
		return err
	}
	r.patientID = patient.ID

	r.printf(nil, "Patient %s: %s, %d, %s\n", patient.ID, patient.Name, patient.Age, patient.Gender)
	if err := r.showHistory(ctx); err != nil {
		return err
	}

	for strings.TrimSpace(complaint) == "" {
		line, ok := r.readLine("Chief complaint: ")
		if !ok {
			return nil
		}
		complaint = line
	}

	conv, err := r.session.Start(ctx, patient.ID, complaint)
	if err != nil {
		return err
	}
	r.printf(noticeColor, "Consultation #%d started. Type /help for commands.\n", conv.ID)

	for {
		line, ok := r.readLine("> ")
		if !ok {
			r.leaveNotice()
			return r.in.Err()
		}

		quit, err := r.handle(ctx, line)
		if err != nil {
			if !userFacing(err) {
				return err
			}
			r.printf(failureColor, "%s\n", err.Error())
		}
		if quit {
			return nil
		}
	}
}

func (r *repl) handle(ctx context.Context, line string) (bool, error) {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, "/") {
		return false, r.turn(ctx, line)
	}

	cmd, arg, _ := strings.Cut(trimmed, " ")
	switch cmd {
	case "/summary":
		return false, r.summarize(ctx)
	case "/edit":
		return false, r.edit(arg)
	case "/end":
		return r.end(ctx)
	case "/resume":
		if err := r.session.Resume(ctx); err != nil {
			return false, err
		}
		r.draft = nil
		r.printf(noticeColor, "Back to the consultation.\n")
		return false, nil
	case "/history":
		return false, r.showHistory(ctx)
	case "/help":
		r.printf(nil, "%s\n", replHelp)
		return false, nil
	case "/quit", "/exit":
		r.leaveNotice()
		return true, nil
	default:
		r.printf(failureColor, "Unknown command %s\n", cmd)
		return false, nil
	}
}

func (r *repl) turn(ctx context.Context, message string) error {
	result, err := r.session.SendTurn(ctx, message)
	if err != nil {
		return err
	}

	switch result.Outcome {
	case types.TurnOutcomeReplied:
		r.printf(assistantColor, "%s\n", result.Reply.Content)
	case types.TurnOutcomeServiceFailure:
		r.printf(failureColor, "The assistant is unavailable: %s\nYour message was saved.\n", result.Failure.Error())
	}
	return nil
}

func (r *repl) summarize(ctx context.Context) error {
	summary, err := r.session.Summarize(ctx)
	if err != nil {
		return err
	}
	r.draft = summary
	r.printDraft()
	r.printf(noticeColor, "Review with /edit, save with /end or continue with /resume.\n")
	return nil
}

func (r *repl) printDraft() {
	r.printf(nil, "Summary:   %s\nSymptoms:  %s\nDiagnoses: %s\n", r.draft.Summary, r.draft.Symptoms, r.draft.Diagnoses)
}

func (r *repl) edit(arg string) error {
	if r.draft == nil {
		return goerr.Wrap(usecase.ErrNotSummarizing, "run /summary before editing")
	}

	field, text, _ := strings.Cut(strings.TrimSpace(arg), " ")
	text = strings.TrimSpace(text)
	switch field {
	case "summary":
		r.draft.Summary = text
	case "symptoms":
		r.draft.Symptoms = text
	case "diagnoses":
		r.draft.Diagnoses = text
	default:
		r.printf(failureColor, "Usage: /edit summary|symptoms|diagnoses TEXT\n")
		return nil
	}
	r.printDraft()
	return nil
}

func (r *repl) end(ctx context.Context) (bool, error) {
	if r.draft == nil {
		return false, goerr.Wrap(usecase.ErrNotSummarizing, "run /summary before ending")
	}

	entry, err := r.session.End(ctx, r.draft.Summary, r.draft.Symptoms, r.draft.Diagnoses)
	if err != nil {
		return false, err
	}
	r.draft = nil
	r.printf(noticeColor, "Visit saved to the history of %s (conversation #%d).\n", entry.PatientID, entry.ConversationID)
	return true, nil
}

func (r *repl) leaveNotice() {
	if r.session.State().HasConversation() {
		r.printf(noticeColor, "Conversation #%d stays open without a summary.\n", r.session.ConversationID())
	}
}

func (r *repl) showHistory(ctx context.Context) error {
	visits, err := r.patients.Visits(ctx, r.patientID, model.DefaultVisitLimit)
	if err != nil {
		return err
	}
	if len(visits) == 0 {
		r.printf(nil, "No previous visits.\n")
		return nil
	}
	for i, v := range visits {
		r.printf(nil, "Visit %d (%s): %s\n", i+1, v.Date.Local().Format(usecase.VisitDateLayout), v.ChiefComplaint)
		if v.Symptoms != "" {
			r.printf(nil, "  Symptoms: %s\n", v.Symptoms)
		}
		if v.Diagnoses != "" {
			r.printf(nil, "  Diagnoses: %s\n", v.Diagnoses)
		}
	}
	return nil
}

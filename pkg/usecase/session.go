package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/medassist-dev/medassist/pkg/domain/interfaces"
	"github.com/medassist-dev/medassist/pkg/domain/model"
	"github.com/medassist-dev/medassist/pkg/domain/types"
	"github.com/medassist-dev/medassist/pkg/utils/logging"
	"golang.org/x/sync/semaphore"
)

// TurnResult is the outcome of a single consultation turn
type TurnResult struct {
	Outcome     types.TurnOutcome
	UserMessage *model.Message
	// Reply is set when Outcome is TurnOutcomeReplied
	Reply *model.Message
	// Failure is set when Outcome is TurnOutcomeServiceFailure and wraps model.ErrLLMUnavailable
	Failure error
}

// Session drives one clinician's consultation: idle -> active -> ending -> idle.
// Operations are serialized; an operation issued while another one is running
// fails with ErrTurnInFlight instead of waiting.
type Session struct {
	repo       interfaces.Repository
	llm        interfaces.LLM
	builder    *ContextBuilder
	llmTimeout time.Duration
	defaults   SummaryDefaults

	busy *semaphore.Weighted

	mu             sync.RWMutex
	state          types.SessionState
	patientID      model.PatientID
	conversationID int64
	chiefComplaint string
	lastActive     time.Time
}

func newSession(repo interfaces.Repository, llm interfaces.LLM, builder *ContextBuilder, llmTimeout time.Duration, defaults SummaryDefaults) *Session {
	return &Session{
		repo:       repo,
		llm:        llm,
		builder:    builder,
		llmTimeout: llmTimeout,
		defaults:   defaults,
		busy:       semaphore.NewWeighted(1),
		state:      types.SessionStateIdle,
		lastActive: time.Now(),
	}
}

func (s *Session) State() types.SessionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *Session) PatientID() model.PatientID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.patientID
}

func (s *Session) ConversationID() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.conversationID
}

func (s *Session) ChiefComplaint() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.chiefComplaint
}

// LastActive returns when an operation last ran on the session
func (s *Session) LastActive() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastActive
}

type binding struct {
	state          types.SessionState
	patientID      model.PatientID
	conversationID int64
	chiefComplaint string
}

func (s *Session) snapshot() binding {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return binding{
		state:          s.state,
		patientID:      s.patientID,
		conversationID: s.conversationID,
		chiefComplaint: s.chiefComplaint,
	}
}

func (s *Session) setState(state types.SessionState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
}

func (s *Session) acquire() error {
	if !s.busy.TryAcquire(1) {
		return goerr.Wrap(ErrTurnInFlight, "session is busy")
	}
	s.mu.Lock()
	s.lastActive = time.Now()
	s.mu.Unlock()
	return nil
}

func (s *Session) release() {
	s.busy.Release(1)
}

// Start opens a conversation for the patient and binds it to the session
func (s *Session) Start(ctx context.Context, patientID model.PatientID, chiefComplaint string) (*model.Conversation, error) {
	if err := s.acquire(); err != nil {
		return nil, err
	}
	defer s.release()

	if cur := s.snapshot(); cur.state != types.SessionStateIdle {
		return nil, goerr.Wrap(ErrConsultationInProgress, "consultation already started",
			goerr.V(ConversationIDKey, cur.conversationID),
			goerr.V(StateKey, cur.state))
	}

	patientID = patientID.Normalize()
	chiefComplaint = strings.TrimSpace(chiefComplaint)
	if chiefComplaint == "" {
		return nil, goerr.Wrap(ErrEmptyChiefComplaint, "chief complaint is required", goerr.V(PatientIDKey, patientID))
	}

	if _, err := s.repo.Patient().Get(ctx, patientID); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, goerr.Wrap(ErrPatientNotFound, "patient not found", goerr.V(PatientIDKey, patientID))
		}
		return nil, goerr.Wrap(err, "failed to get patient", goerr.V(PatientIDKey, patientID))
	}

	conv, err := s.repo.Conversation().Create(ctx, patientID, chiefComplaint)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, goerr.Wrap(ErrPatientNotFound, "patient not found", goerr.V(PatientIDKey, patientID))
		}
		return nil, goerr.Wrap(err, "failed to create conversation", goerr.V(PatientIDKey, patientID))
	}

	s.mu.Lock()
	s.state = types.SessionStateActive
	s.patientID = patientID
	s.conversationID = conv.ID
	s.chiefComplaint = chiefComplaint
	s.mu.Unlock()

	logging.From(ctx).Info("Consultation started",
		"patient_id", patientID,
		"conversation_id", conv.ID)
	return conv, nil
}

// SendTurn persists the clinician message, asks the model and persists the reply.
// A model failure is reported through TurnResult with a nil error; the user
// message stays persisted and no reply is written.
func (s *Session) SendTurn(ctx context.Context, message string) (*TurnResult, error) {
	if err := s.acquire(); err != nil {
		return nil, err
	}
	defer s.release()

	cur := s.snapshot()
	if cur.state != types.SessionStateActive {
		return nil, goerr.Wrap(ErrNoActiveConsultation, "cannot send a message", goerr.V(StateKey, cur.state))
	}
	if strings.TrimSpace(message) == "" {
		return nil, goerr.Wrap(ErrEmptyMessage, "message is required", goerr.V(ConversationIDKey, cur.conversationID))
	}

	logger := logging.From(ctx).With("conversation_id", cur.conversationID)

	prompt, err := s.builder.BuildTurnPrompt(ctx, cur.patientID, message)
	if err != nil {
		return nil, err
	}

	userMsg, err := s.repo.Message().Append(ctx, cur.conversationID, types.MessageRoleUser, message)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to persist user message", goerr.V(ConversationIDKey, cur.conversationID))
	}
	logger.Debug("User message persisted", "message_id", userMsg.ID, "content", message)

	// the dispatched call is not cancelled by the caller; the timeout bounds it
	detached := context.WithoutCancel(ctx)
	reply, err := s.complete(detached, prompt)
	if err != nil {
		logger.Warn("Language model unavailable", "error", err.Error())
		return &TurnResult{
			Outcome:     types.TurnOutcomeServiceFailure,
			UserMessage: userMsg,
			Failure:     err,
		}, nil
	}

	assistantMsg, err := s.repo.Message().Append(detached, cur.conversationID, types.MessageRoleAssistant, reply)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to persist assistant message", goerr.V(ConversationIDKey, cur.conversationID))
	}
	logger.Debug("Assistant message persisted", "message_id", assistantMsg.ID, "content", reply)

	return &TurnResult{
		Outcome:     types.TurnOutcomeReplied,
		UserMessage: userMsg,
		Reply:       assistantMsg,
	}, nil
}

func (s *Session) complete(ctx context.Context, prompt string) (string, error) {
	if s.llmTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.llmTimeout)
		defer cancel()
	}

	reply, err := s.llm.Complete(ctx, prompt)
	if err != nil {
		if !errors.Is(err, model.ErrLLMUnavailable) {
			err = goerr.Wrap(errors.Join(model.ErrLLMUnavailable, err), "language model call failed")
		}
		return "", err
	}
	return reply, nil
}

// Summarize asks the model for an end-of-visit summary of the bound conversation
// and moves the session to ending. Model and parse problems never fail the call;
// they yield fallback values.
func (s *Session) Summarize(ctx context.Context) (*model.ConsultationSummary, error) {
	if err := s.acquire(); err != nil {
		return nil, err
	}
	defer s.release()

	cur := s.snapshot()
	if !cur.state.HasConversation() {
		return nil, goerr.Wrap(ErrNoActiveConsultation, "nothing to summarize", goerr.V(StateKey, cur.state))
	}

	messages, err := s.repo.Message().List(ctx, cur.conversationID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load messages", goerr.V(ConversationIDKey, cur.conversationID))
	}

	prompt, err := s.builder.BuildSummaryPrompt(RenderTranscript(messages), cur.chiefComplaint)
	if err != nil {
		return nil, err
	}

	s.setState(types.SessionStateEnding)

	text, err := s.complete(context.WithoutCancel(ctx), prompt)
	if err != nil {
		logging.From(ctx).Warn("Language model unavailable for summary, using fallback",
			"conversation_id", cur.conversationID,
			"error", err.Error())
		return failedSummary(cur.chiefComplaint, s.defaults), nil
	}

	return parseSummary(text, cur.chiefComplaint, s.defaults), nil
}

// Resume returns from summary review to the active state
func (s *Session) Resume(ctx context.Context) error {
	if err := s.acquire(); err != nil {
		return err
	}
	defer s.release()

	if cur := s.snapshot(); cur.state != types.SessionStateEnding {
		return goerr.Wrap(ErrNotSummarizing, "cannot resume", goerr.V(StateKey, cur.state))
	}
	s.setState(types.SessionStateActive)
	return nil
}

// End records the reviewed summary and history entry atomically and unbinds
// the session. On failure the session keeps its state.
func (s *Session) End(ctx context.Context, summary, symptoms, diagnoses string) (*model.HistoryEntry, error) {
	if err := s.acquire(); err != nil {
		return nil, err
	}
	defer s.release()

	cur := s.snapshot()
	if !cur.state.HasConversation() {
		return nil, goerr.Wrap(ErrNoActiveConsultation, "nothing to end", goerr.V(StateKey, cur.state))
	}

	fields := model.ConsultationSummary{
		Summary:   strings.TrimSpace(summary),
		Symptoms:  strings.TrimSpace(symptoms),
		Diagnoses: strings.TrimSpace(diagnoses),
	}
	if !fields.Complete() {
		return nil, goerr.Wrap(ErrEmptySummaryField, "incomplete summary", goerr.V(ConversationIDKey, cur.conversationID))
	}

	entry, err := s.repo.CloseConversation(ctx, cur.conversationID, fields.Summary, &model.HistoryEntry{
		Symptoms:  fields.Symptoms,
		Diagnoses: fields.Diagnoses,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to close conversation", goerr.V(ConversationIDKey, cur.conversationID))
	}

	s.mu.Lock()
	s.state = types.SessionStateIdle
	s.patientID = ""
	s.conversationID = 0
	s.chiefComplaint = ""
	s.mu.Unlock()

	logging.From(ctx).Info("Consultation ended",
		"patient_id", cur.patientID,
		"conversation_id", cur.conversationID,
		"history_id", entry.ID)
	return entry, nil
}

// Messages returns the transcript of the bound conversation
func (s *Session) Messages(ctx context.Context) ([]*model.Message, error) {
	cur := s.snapshot()
	if !cur.state.HasConversation() {
		return nil, goerr.Wrap(ErrNoActiveConsultation, "no conversation bound", goerr.V(StateKey, cur.state))
	}

	messages, err := s.repo.Message().List(ctx, cur.conversationID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load messages", goerr.V(ConversationIDKey, cur.conversationID))
	}
	return messages, nil
}

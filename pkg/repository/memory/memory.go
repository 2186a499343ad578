package memory

import (
	"context"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/medassist-dev/medassist/pkg/domain/interfaces"
	"github.com/medassist-dev/medassist/pkg/domain/model"
)

// Memory is an in-process repository. All entity maps share one lock so that
// closing a conversation and the clear operations are atomic.
type Memory struct {
	st           *store
	patient      *patientRepository
	conversation *conversationRepository
	message      *messageRepository
	history      *historyRepository
}

var _ interfaces.Repository = &Memory{}

type store struct {
	mu            sync.RWMutex
	patients      map[model.PatientID]*model.Patient
	conversations map[int64]*model.Conversation
	messages      map[int64][]*model.Message
	history       map[model.HistoryEntryID]*model.HistoryEntry

	nextConversationID int64
	nextMessageID      int64
	lastTime           time.Time
}

func New() *Memory {
	st := &store{
		patients:           make(map[model.PatientID]*model.Patient),
		conversations:      make(map[int64]*model.Conversation),
		messages:           make(map[int64][]*model.Message),
		history:            make(map[model.HistoryEntryID]*model.HistoryEntry),
		nextConversationID: 1,
		nextMessageID:      1,
	}

	return &Memory{
		st:           st,
		patient:      &patientRepository{st: st},
		conversation: &conversationRepository{st: st},
		message:      &messageRepository{st: st},
		history:      &historyRepository{st: st},
	}
}

// now returns a strictly increasing UTC timestamp. Caller must hold the write lock.
func (s *store) now() time.Time {
	t := time.Now().UTC().Truncate(time.Microsecond)
	if !t.After(s.lastTime) {
		t = s.lastTime.Add(time.Microsecond)
	}
	s.lastTime = t
	return t
}

func (m *Memory) Patient() interfaces.PatientRepository {
	return m.patient
}

func (m *Memory) Conversation() interfaces.ConversationRepository {
	return m.conversation
}

func (m *Memory) Message() interfaces.MessageRepository {
	return m.message
}

func (m *Memory) History() interfaces.HistoryRepository {
	return m.history
}

func (m *Memory) CloseConversation(ctx context.Context, conversationID int64, summary string, entry *model.HistoryEntry) (*model.HistoryEntry, error) {
	st := m.st
	st.mu.Lock()
	defer st.mu.Unlock()

	conv, exists := st.conversations[conversationID]
	if !exists {
		return nil, goerr.Wrap(model.ErrNotFound, "conversation not found", goerr.V(model.ConversationIDKey, conversationID))
	}
	if conv.Closed() {
		return nil, goerr.Wrap(model.ErrConversationClosed, "conversation already has a summary", goerr.V(model.ConversationIDKey, conversationID))
	}

	created := copyHistoryEntry(entry)
	if created.ID == "" {
		created.ID = model.NewHistoryEntryID()
	}
	created.PatientID = conv.PatientID
	created.ConversationID = conv.ID
	created.CreatedAt = st.now()

	if _, exists := st.history[created.ID]; exists {
		return nil, goerr.Wrap(model.ErrDuplicate, "history entry already exists", goerr.V("history_id", created.ID))
	}

	conv.Summary = summary
	st.history[created.ID] = created
	return copyHistoryEntry(created), nil
}

func (m *Memory) ClearAll(ctx context.Context) error {
	st := m.st
	st.mu.Lock()
	defer st.mu.Unlock()

	st.history = make(map[model.HistoryEntryID]*model.HistoryEntry)
	st.messages = make(map[int64][]*model.Message)
	st.conversations = make(map[int64]*model.Conversation)
	st.patients = make(map[model.PatientID]*model.Patient)
	return nil
}

func (m *Memory) ClearPatient(ctx context.Context, patientID model.PatientID) error {
	st := m.st
	st.mu.Lock()
	defer st.mu.Unlock()

	if _, exists := st.patients[patientID]; !exists {
		return goerr.Wrap(model.ErrNotFound, "patient not found", goerr.V(model.PatientIDKey, patientID))
	}

	for id, h := range st.history {
		if h.PatientID == patientID {
			delete(st.history, id)
		}
	}
	for id, c := range st.conversations {
		if c.PatientID == patientID {
			delete(st.messages, id)
			delete(st.conversations, id)
		}
	}
	delete(st.patients, patientID)
	return nil
}

func (m *Memory) Close() error {
	return nil
}

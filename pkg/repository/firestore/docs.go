package firestore

import (
	"time"

	"github.com/medassist-dev/medassist/pkg/domain/model"
	"github.com/medassist-dev/medassist/pkg/domain/types"
)

type patientDoc struct {
	ID        string    `firestore:"id"`
	Name      string    `firestore:"name"`
	Age       int64     `firestore:"age"`
	Gender    string    `firestore:"gender"`
	CreatedAt time.Time `firestore:"created_at"`
}

func (d *patientDoc) toModel() *model.Patient {
	return &model.Patient{
		ID:        model.PatientID(d.ID),
		Name:      d.Name,
		Age:       int(d.Age),
		Gender:    d.Gender,
		CreatedAt: d.CreatedAt.UTC(),
	}
}

type conversationDoc struct {
	ID             int64     `firestore:"id"`
	PatientID      string    `firestore:"patient_id"`
	ChiefComplaint string    `firestore:"chief_complaint"`
	Summary        string    `firestore:"summary"`
	CreatedAt      time.Time `firestore:"created_at"`
	LastMessageAt  time.Time `firestore:"last_message_at"`
}

func (d *conversationDoc) toModel() *model.Conversation {
	return &model.Conversation{
		ID:             d.ID,
		PatientID:      model.PatientID(d.PatientID),
		ChiefComplaint: d.ChiefComplaint,
		Summary:        d.Summary,
		CreatedAt:      d.CreatedAt.UTC(),
	}
}

type messageDoc struct {
	ID             int64     `firestore:"id"`
	ConversationID int64     `firestore:"conversation_id"`
	Role           string    `firestore:"role"`
	Content        string    `firestore:"content"`
	CreatedAt      time.Time `firestore:"created_at"`
}

func (d *messageDoc) toModel() *model.Message {
	return &model.Message{
		ID:             d.ID,
		ConversationID: d.ConversationID,
		Role:           types.MessageRole(d.Role),
		Content:        d.Content,
		CreatedAt:      d.CreatedAt.UTC(),
	}
}

// historyDoc denormalizes the conversation fields a visit needs, so that
// ListVisits is a single indexed query
type historyDoc struct {
	ID             string    `firestore:"id"`
	PatientID      string    `firestore:"patient_id"`
	ConversationID int64     `firestore:"conversation_id"`
	Symptoms       string    `firestore:"symptoms"`
	Diagnoses      string    `firestore:"diagnoses"`
	VisitDate      time.Time `firestore:"visit_date"`
	ChiefComplaint string    `firestore:"chief_complaint"`
	Summary        string    `firestore:"summary"`
	CreatedAt      time.Time `firestore:"created_at"`
}

func (d *historyDoc) toEntry() *model.HistoryEntry {
	return &model.HistoryEntry{
		ID:             model.HistoryEntryID(d.ID),
		PatientID:      model.PatientID(d.PatientID),
		ConversationID: d.ConversationID,
		Symptoms:       d.Symptoms,
		Diagnoses:      d.Diagnoses,
		CreatedAt:      d.CreatedAt.UTC(),
	}
}

func (d *historyDoc) toVisit() *model.Visit {
	return &model.Visit{
		ConversationID: d.ConversationID,
		Date:           d.VisitDate.UTC(),
		ChiefComplaint: d.ChiefComplaint,
		Summary:        d.Summary,
		Symptoms:       d.Symptoms,
		Diagnoses:      d.Diagnoses,
	}
}

// now truncates to microseconds, the precision Firestore keeps
func now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

package rdb

import (
	"time"

	"github.com/medassist-dev/medassist/pkg/domain/model"
	"github.com/medassist-dev/medassist/pkg/domain/types"
)

const (
	patientsTable      = "patients"
	conversationsTable = "conversations"
	messagesTable      = "messages"
	historyTable       = "patient_history"
)

type patientRow struct {
	PatientID string    `gorm:"column:patient_id;primaryKey"`
	Name      string    `gorm:"column:name;not null"`
	Age       int       `gorm:"column:age;not null"`
	Gender    string    `gorm:"column:gender;not null"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (patientRow) TableName() string { return patientsTable }

func (r *patientRow) toModel() *model.Patient {
	return &model.Patient{
		ID:        model.PatientID(r.PatientID),
		Name:      r.Name,
		Age:       r.Age,
		Gender:    r.Gender,
		CreatedAt: r.CreatedAt.UTC(),
	}
}

type conversationRow struct {
	ConversationID int64     `gorm:"column:conversation_id;primaryKey;autoIncrement"`
	PatientID      string    `gorm:"column:patient_id;not null"`
	SessionDate    time.Time `gorm:"column:session_date"`
	ChiefComplaint string    `gorm:"column:chief_complaint;not null"`
	Summary        *string   `gorm:"column:summary"`
}

func (conversationRow) TableName() string { return conversationsTable }

func (r *conversationRow) toModel() *model.Conversation {
	c := &model.Conversation{
		ID:             r.ConversationID,
		PatientID:      model.PatientID(r.PatientID),
		ChiefComplaint: r.ChiefComplaint,
		CreatedAt:      r.SessionDate.UTC(),
	}
	if r.Summary != nil {
		c.Summary = *r.Summary
	}
	return c
}

type messageRow struct {
	MessageID      int64     `gorm:"column:message_id;primaryKey;autoIncrement"`
	ConversationID int64     `gorm:"column:conversation_id;not null"`
	Role           string    `gorm:"column:role;not null"`
	Content        string    `gorm:"column:content;not null"`
	Timestamp      time.Time `gorm:"column:timestamp"`
}

func (messageRow) TableName() string { return messagesTable }

func (r *messageRow) toModel() *model.Message {
	return &model.Message{
		ID:             r.MessageID,
		ConversationID: r.ConversationID,
		Role:           types.MessageRole(r.Role),
		Content:        r.Content,
		CreatedAt:      r.Timestamp.UTC(),
	}
}

type historyRow struct {
	HistoryID           string    `gorm:"column:history_id;primaryKey"`
	PatientID           string    `gorm:"column:patient_id;not null"`
	ConversationID      int64     `gorm:"column:conversation_id;not null"`
	Symptoms            string    `gorm:"column:symptoms;not null"`
	DiagnosesConsidered string    `gorm:"column:diagnoses_considered;not null"`
	Timestamp           time.Time `gorm:"column:timestamp"`
}

func (historyRow) TableName() string { return historyTable }

func (r *historyRow) toModel() *model.HistoryEntry {
	return &model.HistoryEntry{
		ID:             model.HistoryEntryID(r.HistoryID),
		PatientID:      model.PatientID(r.PatientID),
		ConversationID: r.ConversationID,
		Symptoms:       r.Symptoms,
		Diagnoses:      r.DiagnosesConsidered,
		CreatedAt:      r.Timestamp.UTC(),
	}
}

// visitRow is the projection of conversations joined with patient_history
type visitRow struct {
	ConversationID      int64     `gorm:"column:conversation_id"`
	SessionDate         time.Time `gorm:"column:session_date"`
	ChiefComplaint      string    `gorm:"column:chief_complaint"`
	Summary             *string   `gorm:"column:summary"`
	Symptoms            string    `gorm:"column:symptoms"`
	DiagnosesConsidered string    `gorm:"column:diagnoses_considered"`
}

func (r *visitRow) toModel() *model.Visit {
	v := &model.Visit{
		ConversationID: r.ConversationID,
		Date:           r.SessionDate.UTC(),
		ChiefComplaint: r.ChiefComplaint,
		Symptoms:       r.Symptoms,
		Diagnoses:      r.DiagnosesConsidered,
	}
	if r.Summary != nil {
		v.Summary = *r.Summary
	}
	return v
}

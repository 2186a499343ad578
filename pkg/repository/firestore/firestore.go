package firestore

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/medassist-dev/medassist/pkg/domain/interfaces"
	"github.com/medassist-dev/medassist/pkg/domain/model"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type Firestore struct {
	client       *firestore.Client
	names        *collections
	patient      *patientRepository
	conversation *conversationRepository
	message      *messageRepository
	history      *historyRepository
}

var _ interfaces.Repository = &Firestore{}

type Option func(*Firestore)

// WithCollectionPrefix namespaces every collection, e.g. for tests sharing a project
func WithCollectionPrefix(prefix string) Option {
	return func(f *Firestore) {
		f.names.prefix = prefix
	}
}

// collections resolves collection names, honoring the optional prefix
type collections struct {
	prefix string
}

func (c *collections) name(base string) string {
	if c.prefix != "" {
		return c.prefix + "_" + base
	}
	return base
}

func (c *collections) patients() string      { return c.name("patients") }
func (c *collections) conversations() string { return c.name("conversations") }
func (c *collections) messages() string      { return c.name("messages") }
func (c *collections) history() string       { return c.name("patient_history") }
func (c *collections) counters() string      { return c.name("counters") }

const (
	conversationCounterDoc = "conversation_counter"
	messageCounterDoc      = "message_counter"
)

// New connects to Firestore. An empty databaseID selects the default database.
func New(ctx context.Context, projectID, databaseID string, opts ...Option) (*Firestore, error) {
	var (
		client *firestore.Client
		err    error
	)
	if databaseID == "" {
		client, err = firestore.NewClient(ctx, projectID)
	} else {
		client, err = firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client",
			goerr.V("projectID", projectID),
			goerr.V("databaseID", databaseID))
	}

	names := &collections{}
	f := &Firestore{
		client: client,
		names:  names,
	}
	f.patient = &patientRepository{client: client, names: names}
	f.conversation = &conversationRepository{client: client, names: names, nextID: f.getNextID}
	f.message = &messageRepository{client: client, names: names, nextID: f.getNextID}
	f.history = &historyRepository{client: client, names: names}

	for _, opt := range opts {
		opt(f)
	}

	return f, nil
}

func (f *Firestore) Patient() interfaces.PatientRepository {
	return f.patient
}

func (f *Firestore) Conversation() interfaces.ConversationRepository {
	return f.conversation
}

func (f *Firestore) Message() interfaces.MessageRepository {
	return f.message
}

func (f *Firestore) History() interfaces.HistoryRepository {
	return f.history
}

func (f *Firestore) getNextID(ctx context.Context, counterDoc string) (int64, error) {
	counterRef := f.client.Collection(f.names.counters()).Doc(counterDoc)

	var nextID int64
	err := f.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(counterRef)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				nextID = 1
				return tx.Set(counterRef, map[string]interface{}{
					"value": nextID,
				})
			}
			return goerr.Wrap(err, "failed to get counter")
		}

		currentValue, err := doc.DataAt("value")
		if err != nil {
			return goerr.Wrap(err, "failed to get counter value")
		}

		val, ok := currentValue.(int64)
		if !ok {
			return goerr.New("counter value is not of type int64", goerr.V("value", currentValue))
		}
		nextID = val + 1
		return tx.Update(counterRef, []firestore.Update{
			{Path: "value", Value: nextID},
		})
	})

	if err != nil {
		return 0, goerr.Wrap(err, "failed to get next ID", goerr.V("counter", counterDoc))
	}

	return nextID, nil
}

func (f *Firestore) CloseConversation(ctx context.Context, conversationID int64, summary string, entry *model.HistoryEntry) (*model.HistoryEntry, error) {
	convRef := f.client.Collection(f.names.conversations()).Doc(intDocID(conversationID))

	id := entry.ID
	if id == "" {
		id = model.NewHistoryEntryID()
	}
	histRef := f.client.Collection(f.names.history()).Doc(id.String())

	var created *model.HistoryEntry
	err := f.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(convRef)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return goerr.Wrap(model.ErrNotFound, "conversation not found", goerr.V(model.ConversationIDKey, conversationID))
			}
			return goerr.Wrap(err, "failed to get conversation", goerr.V(model.ConversationIDKey, conversationID))
		}

		var conv conversationDoc
		if err := snap.DataTo(&conv); err != nil {
			return goerr.Wrap(err, "failed to decode conversation", goerr.V(model.ConversationIDKey, conversationID))
		}
		if conv.Summary != "" {
			return goerr.Wrap(model.ErrConversationClosed, "conversation already has a summary", goerr.V(model.ConversationIDKey, conversationID))
		}

		doc := &historyDoc{
			ID:             id.String(),
			PatientID:      conv.PatientID,
			ConversationID: conv.ID,
			Symptoms:       entry.Symptoms,
			Diagnoses:      entry.Diagnoses,
			VisitDate:      conv.CreatedAt,
			ChiefComplaint: conv.ChiefComplaint,
			Summary:        summary,
			CreatedAt:      now(),
		}

		if err := tx.Update(convRef, []firestore.Update{{Path: "summary", Value: summary}}); err != nil {
			return goerr.Wrap(err, "failed to set conversation summary", goerr.V(model.ConversationIDKey, conversationID))
		}
		if err := tx.Create(histRef, doc); err != nil {
			return goerr.Wrap(err, "failed to insert history entry", goerr.V(model.ConversationIDKey, conversationID))
		}

		created = doc.toEntry()
		return nil
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to close conversation", goerr.V(model.ConversationIDKey, conversationID))
	}

	return created, nil
}

func (f *Firestore) Close() error {
	if f.client != nil {
		return f.client.Close()
	}
	return nil
}

func intDocID(id int64) string {
	return fmt.Sprintf("%d", id)
}

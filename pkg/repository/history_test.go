package repository_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/medassist-dev/medassist/pkg/domain/interfaces"
	"github.com/medassist-dev/medassist/pkg/domain/model"
)

func closeVisit(t *testing.T, repo interfaces.Repository, patientID model.PatientID, complaint string) *model.Conversation {
	t.Helper()
	ctx := context.Background()

	conv, err := repo.Conversation().Create(ctx, patientID, complaint)
	gt.NoError(t, err).Required()

	_, err = repo.CloseConversation(ctx, conv.ID, "summary of "+complaint, &model.HistoryEntry{
		Symptoms:  "symptoms of " + complaint,
		Diagnoses: "diagnoses of " + complaint,
	})
	gt.NoError(t, err).Required()
	return conv
}

func runHistoryRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	t.Run("CloseConversation records summary and history entry together", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		createPatient(t, repo, "P-001")

		conv, err := repo.Conversation().Create(ctx, "P-001", "headache")
		gt.NoError(t, err).Required()

		entry, err := repo.CloseConversation(ctx, conv.ID, "S", &model.HistoryEntry{
			Symptoms:  "headache, nausea",
			Diagnoses: "tension headache, migraine",
		})
		gt.NoError(t, err).Required()
		gt.Value(t, entry.ID).NotEqual(model.HistoryEntryID(""))
		gt.Value(t, entry.PatientID).Equal(model.PatientID("P-001"))
		gt.Value(t, entry.ConversationID).Equal(conv.ID)

		got, err := repo.Conversation().Get(ctx, conv.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, got.Summary).Equal("S")

		entries, err := repo.History().ListByConversation(ctx, conv.ID)
		gt.NoError(t, err).Required()
		gt.Array(t, entries).Length(1).Required()
		gt.Value(t, entries[0].Symptoms).Equal("headache, nausea")
		gt.Value(t, entries[0].Diagnoses).Equal("tension headache, migraine")

		visits, err := repo.History().ListVisits(ctx, "P-001", 5)
		gt.NoError(t, err).Required()
		gt.Array(t, visits).Length(1).Required()
		gt.Value(t, visits[0].ConversationID).Equal(conv.ID)
		gt.Value(t, visits[0].ChiefComplaint).Equal("headache")
		gt.Value(t, visits[0].Summary).Equal("S")
		gt.Value(t, visits[0].Symptoms).Equal("headache, nausea")
		gt.Value(t, visits[0].Diagnoses).Equal("tension headache, migraine")
		gt.Bool(t, visits[0].Date.Equal(conv.CreatedAt)).True()
	})

	t.Run("CloseConversation rejects a second close", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		createPatient(t, repo, "P-001")
		conv := closeVisit(t, repo, "P-001", "cough")

		_, err := repo.CloseConversation(ctx, conv.ID, "again", &model.HistoryEntry{Symptoms: "x", Diagnoses: "y"})
		gt.Error(t, err).Is(model.ErrConversationClosed)

		got, err := repo.Conversation().Get(ctx, conv.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, got.Summary).Equal("summary of cough")

		entries, err := repo.History().ListByConversation(ctx, conv.ID)
		gt.NoError(t, err).Required()
		gt.Array(t, entries).Length(1)
	})

	t.Run("CloseConversation fails for unknown conversation", func(t *testing.T) {
		repo := newRepo(t)

		_, err := repo.CloseConversation(context.Background(), 987654321, "S", &model.HistoryEntry{Symptoms: "x", Diagnoses: "y"})
		gt.Error(t, err).Is(model.ErrNotFound)
	})

	t.Run("ListVisits excludes open conversations", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		createPatient(t, repo, "P-001")

		closed := closeVisit(t, repo, "P-001", "closed visit")
		_, err := repo.Conversation().Create(ctx, "P-001", "open visit")
		gt.NoError(t, err).Required()

		visits, err := repo.History().ListVisits(ctx, "P-001", 5)
		gt.NoError(t, err).Required()
		gt.Array(t, visits).Length(1).Required()
		gt.Value(t, visits[0].ConversationID).Equal(closed.ID)
	})

	t.Run("ListVisits returns the earliest visits up to the limit", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		createPatient(t, repo, "P-001")

		var convs []*model.Conversation
		for i := range 7 {
			convs = append(convs, closeVisit(t, repo, "P-001", fmt.Sprintf("visit %d", i)))
		}

		visits, err := repo.History().ListVisits(ctx, "P-001", 3)
		gt.NoError(t, err).Required()
		gt.Array(t, visits).Length(3).Required()
		gt.Value(t, visits[0].ConversationID).Equal(convs[0].ID)
		gt.Value(t, visits[1].ConversationID).Equal(convs[1].ID)
		gt.Value(t, visits[2].ConversationID).Equal(convs[2].ID)

		visits, err = repo.History().ListVisits(ctx, "P-001", 0)
		gt.NoError(t, err).Required()
		gt.Array(t, visits).Length(model.DefaultVisitLimit).Required()
		gt.Value(t, visits[0].ConversationID).Equal(convs[0].ID)
		gt.Value(t, visits[model.DefaultVisitLimit-1].ConversationID).Equal(convs[4].ID)
	})

	t.Run("ListVisits is scoped to the patient", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		createPatient(t, repo, "P-001")
		createPatient(t, repo, "P-002")
		closeVisit(t, repo, "P-002", "someone else")

		visits, err := repo.History().ListVisits(ctx, "P-001", 5)
		gt.NoError(t, err).Required()
		gt.Array(t, visits).Length(0)

		visits, err = repo.History().ListVisits(ctx, "unknown", 5)
		gt.NoError(t, err).Required()
		gt.Array(t, visits).Length(0)
	})
}

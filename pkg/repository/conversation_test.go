package repository_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/medassist-dev/medassist/pkg/domain/interfaces"
	"github.com/medassist-dev/medassist/pkg/domain/model"
	"github.com/medassist-dev/medassist/pkg/domain/types"
)

func createPatient(t *testing.T, repo interfaces.Repository, id model.PatientID) *model.Patient {
	t.Helper()
	p, err := repo.Patient().Create(context.Background(), &model.Patient{
		ID:     id,
		Name:   "Patient " + id.String(),
		Age:    30,
		Gender: "Female",
	})
	gt.NoError(t, err).Required()
	return p
}

func runConversationRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	t.Run("Create opens conversation without summary", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		createPatient(t, repo, "P-001")

		conv, err := repo.Conversation().Create(ctx, "P-001", "headache")
		gt.NoError(t, err).Required()
		gt.Value(t, conv.ID).NotEqual(int64(0))
		gt.Value(t, conv.PatientID).Equal(model.PatientID("P-001"))
		gt.Value(t, conv.ChiefComplaint).Equal("headache")
		gt.Bool(t, conv.Closed()).False()
		gt.Bool(t, conv.CreatedAt.IsZero()).False()

		got, err := repo.Conversation().Get(ctx, conv.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, got.ChiefComplaint).Equal("headache")
		gt.Value(t, got.Summary).Equal("")
	})

	t.Run("Create assigns distinct IDs", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		createPatient(t, repo, "P-001")

		c1, err := repo.Conversation().Create(ctx, "P-001", "cough")
		gt.NoError(t, err).Required()
		c2, err := repo.Conversation().Create(ctx, "P-001", "fever")
		gt.NoError(t, err).Required()
		gt.Value(t, c1.ID).NotEqual(c2.ID)
	})

	t.Run("Create fails for unknown patient", func(t *testing.T) {
		repo := newRepo(t)

		_, err := repo.Conversation().Create(context.Background(), "missing", "cough")
		gt.Error(t, err).Is(model.ErrNotFound)
	})

	t.Run("Get returns not found for unknown conversation", func(t *testing.T) {
		repo := newRepo(t)

		_, err := repo.Conversation().Get(context.Background(), 987654321)
		gt.Error(t, err).Is(model.ErrNotFound)
	})

	t.Run("ListByPatient returns only that patient's conversations in order", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		createPatient(t, repo, "P-001")
		createPatient(t, repo, "P-002")

		c1, err := repo.Conversation().Create(ctx, "P-001", "first")
		gt.NoError(t, err).Required()
		_, err = repo.Conversation().Create(ctx, "P-002", "other")
		gt.NoError(t, err).Required()
		c3, err := repo.Conversation().Create(ctx, "P-001", "second")
		gt.NoError(t, err).Required()

		convs, err := repo.Conversation().ListByPatient(ctx, "P-001")
		gt.NoError(t, err).Required()
		gt.Array(t, convs).Length(2).Required()
		gt.Value(t, convs[0].ID).Equal(c1.ID)
		gt.Value(t, convs[1].ID).Equal(c3.ID)
	})
}

func runMessageRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	t.Run("Append keeps order and strictly increasing timestamps", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		createPatient(t, repo, "P-001")
		conv, err := repo.Conversation().Create(ctx, "P-001", "headache")
		gt.NoError(t, err).Required()

		contents := []string{"first", "second", "third", "fourth"}
		for i, c := range contents {
			role := types.MessageRoleUser
			if i%2 == 1 {
				role = types.MessageRoleAssistant
			}
			_, err := repo.Message().Append(ctx, conv.ID, role, c)
			gt.NoError(t, err).Required()
		}

		msgs, err := repo.Message().List(ctx, conv.ID)
		gt.NoError(t, err).Required()
		gt.Array(t, msgs).Length(len(contents)).Required()
		for i, m := range msgs {
			gt.Value(t, m.Content).Equal(contents[i])
			gt.Value(t, m.ConversationID).Equal(conv.ID)
			if i > 0 {
				gt.Bool(t, m.CreatedAt.After(msgs[i-1].CreatedAt)).True()
			}
		}
		gt.Value(t, msgs[0].Role).Equal(types.MessageRoleUser)
		gt.Value(t, msgs[1].Role).Equal(types.MessageRoleAssistant)
	})

	t.Run("Append fails for unknown conversation", func(t *testing.T) {
		repo := newRepo(t)

		_, err := repo.Message().Append(context.Background(), 987654321, types.MessageRoleUser, "hello")
		gt.Error(t, err).Is(model.ErrNotFound)
	})

	t.Run("List returns empty for conversation without messages", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		createPatient(t, repo, "P-001")
		conv, err := repo.Conversation().Create(ctx, "P-001", "headache")
		gt.NoError(t, err).Required()

		msgs, err := repo.Message().List(ctx, conv.ID)
		gt.NoError(t, err).Required()
		gt.Array(t, msgs).Length(0)
	})
}

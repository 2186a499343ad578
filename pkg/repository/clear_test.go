package repository_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/medassist-dev/medassist/pkg/domain/interfaces"
	"github.com/medassist-dev/medassist/pkg/domain/model"
	"github.com/medassist-dev/medassist/pkg/domain/types"
)

func runClearRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	t.Run("ClearPatient removes only the patient's records", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		createPatient(t, repo, "P-001")
		createPatient(t, repo, "P-002")

		gone := closeVisit(t, repo, "P-001", "removed")
		_, err := repo.Message().Append(ctx, gone.ID, types.MessageRoleUser, "bye")
		gt.NoError(t, err).Required()
		kept := closeVisit(t, repo, "P-002", "kept")
		_, err = repo.Message().Append(ctx, kept.ID, types.MessageRoleUser, "hello")
		gt.NoError(t, err).Required()

		gt.NoError(t, repo.ClearPatient(ctx, "P-001")).Required()

		_, err = repo.Patient().Get(ctx, "P-001")
		gt.Error(t, err).Is(model.ErrNotFound)
		_, err = repo.Conversation().Get(ctx, gone.ID)
		gt.Error(t, err).Is(model.ErrNotFound)
		msgs, err := repo.Message().List(ctx, gone.ID)
		gt.NoError(t, err).Required()
		gt.Array(t, msgs).Length(0)
		entries, err := repo.History().ListByConversation(ctx, gone.ID)
		gt.NoError(t, err).Required()
		gt.Array(t, entries).Length(0)

		_, err = repo.Patient().Get(ctx, "P-002")
		gt.NoError(t, err)
		msgs, err = repo.Message().List(ctx, kept.ID)
		gt.NoError(t, err).Required()
		gt.Array(t, msgs).Length(1)
		visits, err := repo.History().ListVisits(ctx, "P-002", 5)
		gt.NoError(t, err).Required()
		gt.Array(t, visits).Length(1)
	})

	t.Run("ClearPatient fails for unknown patient", func(t *testing.T) {
		repo := newRepo(t)

		err := repo.ClearPatient(context.Background(), "missing")
		gt.Error(t, err).Is(model.ErrNotFound)
	})

	t.Run("clears more records than one transaction holds", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		createPatient(t, repo, "P-001")
		createPatient(t, repo, "P-002")

		conv, err := repo.Conversation().Create(ctx, "P-001", "long consultation")
		gt.NoError(t, err).Required()
		for range 520 {
			_, err := repo.Message().Append(ctx, conv.ID, types.MessageRoleUser, "more")
			gt.NoError(t, err).Required()
		}
		other := closeVisit(t, repo, "P-002", "short visit")

		gt.NoError(t, repo.ClearPatient(ctx, "P-001")).Required()
		msgs, err := repo.Message().List(ctx, conv.ID)
		gt.NoError(t, err).Required()
		gt.Array(t, msgs).Length(0)
		_, err = repo.Patient().Get(ctx, "P-001")
		gt.Error(t, err).Is(model.ErrNotFound)
		_, err = repo.Conversation().Get(ctx, other.ID)
		gt.NoError(t, err)

		conv, err = repo.Conversation().Create(ctx, "P-002", "another long one")
		gt.NoError(t, err).Required()
		for range 520 {
			_, err := repo.Message().Append(ctx, conv.ID, types.MessageRoleAssistant, "reply")
			gt.NoError(t, err).Required()
		}

		gt.NoError(t, repo.ClearAll(ctx)).Required()
		patients, err := repo.Patient().List(ctx)
		gt.NoError(t, err).Required()
		gt.Array(t, patients).Length(0)
		msgs, err = repo.Message().List(ctx, conv.ID)
		gt.NoError(t, err).Required()
		gt.Array(t, msgs).Length(0)
	})

	t.Run("ClearAll empties every table", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		createPatient(t, repo, "P-001")
		conv := closeVisit(t, repo, "P-001", "cough")
		_, err := repo.Message().Append(ctx, conv.ID, types.MessageRoleUser, "hello")
		gt.NoError(t, err).Required()

		gt.NoError(t, repo.ClearAll(ctx)).Required()

		patients, err := repo.Patient().List(ctx)
		gt.NoError(t, err).Required()
		gt.Array(t, patients).Length(0)
		_, err = repo.Conversation().Get(ctx, conv.ID)
		gt.Error(t, err).Is(model.ErrNotFound)
		msgs, err := repo.Message().List(ctx, conv.ID)
		gt.NoError(t, err).Required()
		gt.Array(t, msgs).Length(0)
		visits, err := repo.History().ListVisits(ctx, "P-001", 5)
		gt.NoError(t, err).Required()
		gt.Array(t, visits).Length(0)
	})

	t.Run("ClearAll on empty store succeeds", func(t *testing.T) {
		repo := newRepo(t)
		gt.NoError(t, repo.ClearAll(context.Background()))
	})
}

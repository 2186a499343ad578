package repository_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/medassist-dev/medassist/pkg/domain/interfaces"
	"github.com/medassist-dev/medassist/pkg/domain/model"
)

func runPatientRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	t.Run("Create stores patient with creation time", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		created, err := repo.Patient().Create(ctx, &model.Patient{
			ID:     "P-001",
			Name:   "Alice Smith",
			Age:    34,
			Gender: "Female",
		})
		gt.NoError(t, err).Required()
		gt.Value(t, created.ID).Equal(model.PatientID("P-001"))
		gt.Bool(t, created.CreatedAt.IsZero()).False()

		got, err := repo.Patient().Get(ctx, "P-001")
		gt.NoError(t, err).Required()
		gt.Value(t, got.Name).Equal("Alice Smith")
		gt.Value(t, got.Age).Equal(34)
		gt.Value(t, got.Gender).Equal("Female")
		gt.Bool(t, got.CreatedAt.Equal(created.CreatedAt)).True()
	})

	t.Run("Create rejects duplicate ID without modifying the original", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		_, err := repo.Patient().Create(ctx, &model.Patient{ID: "P-001", Name: "Alice", Age: 34, Gender: "Female"})
		gt.NoError(t, err).Required()

		_, err = repo.Patient().Create(ctx, &model.Patient{ID: "P-001", Name: "Mallory", Age: 99, Gender: "Male"})
		gt.Error(t, err).Is(model.ErrDuplicate)

		patients, err := repo.Patient().List(ctx)
		gt.NoError(t, err).Required()
		gt.Array(t, patients).Length(1).Required()
		gt.Value(t, patients[0].Name).Equal("Alice")
		gt.Value(t, patients[0].Age).Equal(34)
	})

	t.Run("Get returns not found for unknown patient", func(t *testing.T) {
		repo := newRepo(t)

		_, err := repo.Patient().Get(context.Background(), "missing")
		gt.Error(t, err).Is(model.ErrNotFound)
	})

	t.Run("List sorts by name then ID", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		for _, p := range []*model.Patient{
			{ID: "P-3", Name: "Carol", Age: 50, Gender: "Female"},
			{ID: "P-2", Name: "Bob", Age: 40, Gender: "Male"},
			{ID: "P-1", Name: "Bob", Age: 41, Gender: "Male"},
		} {
			_, err := repo.Patient().Create(ctx, p)
			gt.NoError(t, err).Required()
		}

		patients, err := repo.Patient().List(ctx)
		gt.NoError(t, err).Required()
		gt.Array(t, patients).Length(3).Required()
		gt.Value(t, patients[0].ID).Equal(model.PatientID("P-1"))
		gt.Value(t, patients[1].ID).Equal(model.PatientID("P-2"))
		gt.Value(t, patients[2].ID).Equal(model.PatientID("P-3"))
	})

	t.Run("List returns empty for empty store", func(t *testing.T) {
		repo := newRepo(t)

		patients, err := repo.Patient().List(context.Background())
		gt.NoError(t, err).Required()
		gt.Array(t, patients).Length(0)
	})
}

package repository_test

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/m-mizutani/gt"
	"github.com/medassist-dev/medassist/pkg/domain/interfaces"
	"github.com/medassist-dev/medassist/pkg/repository/firestore"
	"github.com/medassist-dev/medassist/pkg/repository/memory"
	"github.com/medassist-dev/medassist/pkg/repository/rdb"
)

func runRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	t.Run("Patient", func(t *testing.T) { runPatientRepositoryTest(t, newRepo) })
	t.Run("Conversation", func(t *testing.T) { runConversationRepositoryTest(t, newRepo) })
	t.Run("Message", func(t *testing.T) { runMessageRepositoryTest(t, newRepo) })
	t.Run("History", func(t *testing.T) { runHistoryRepositoryTest(t, newRepo) })
	t.Run("Clear", func(t *testing.T) { runClearRepositoryTest(t, newRepo) })
}

func TestRepository_Memory(t *testing.T) {
	runRepositoryTest(t, func(t *testing.T) interfaces.Repository {
		return memory.New()
	})
}

func TestRepository_Postgres(t *testing.T) {
	dsn := os.Getenv("TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("TEST_POSTGRES_DSN not set")
	}

	runRepositoryTest(t, func(t *testing.T) interfaces.Repository {
		ctx := context.Background()
		repo, err := rdb.New(ctx, rdb.DialectPostgres, dsn)
		gt.NoError(t, err).Required()
		t.Cleanup(func() { _ = repo.Close() })

		gt.NoError(t, repo.Migrate(ctx)).Required()
		gt.NoError(t, repo.ClearAll(ctx)).Required()
		return repo
	})
}

func TestRepository_Firestore(t *testing.T) {
	projectID := os.Getenv("TEST_FIRESTORE_PROJECT_ID")
	if projectID == "" {
		t.Skip("TEST_FIRESTORE_PROJECT_ID not set")
	}
	databaseID := os.Getenv("TEST_FIRESTORE_DATABASE_ID")

	runRepositoryTest(t, func(t *testing.T) interfaces.Repository {
		prefix := "test_" + uuid.NewString()[:8]
		repo, err := firestore.New(context.Background(), projectID, databaseID, firestore.WithCollectionPrefix(prefix))
		gt.NoError(t, err).Required()
		t.Cleanup(func() {
			_ = repo.ClearAll(context.Background())
			_ = repo.Close()
		})
		return repo
	})
}

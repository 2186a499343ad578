package config

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/medassist-dev/medassist/pkg/domain/interfaces"
	"github.com/medassist-dev/medassist/pkg/repository/firestore"
	"github.com/medassist-dev/medassist/pkg/repository/memory"
	"github.com/medassist-dev/medassist/pkg/repository/rdb"
	"github.com/medassist-dev/medassist/pkg/utils/logging"
	"github.com/urfave/cli/v3"
	"gorm.io/gorm/logger"
)

const (
	BackendMemory    = "memory"
	BackendSQLite    = "sqlite"
	BackendPostgres  = "postgres"
	BackendFirestore = "firestore"
)

// Repository holds CLI flags for repository backend configuration
type Repository struct {
	backend          string
	dsn              string
	autoMigrate      bool
	sqlLog           bool
	projectID        string
	databaseID       string
	collectionPrefix string
}

// Flags returns CLI flags for repository configuration
func (r *Repository) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "repository-backend",
			Usage:       "Repository backend type (sqlite, postgres, firestore or memory)",
			Value:       BackendSQLite,
			Category:    "Repository",
			Sources:     cli.EnvVars("MEDASSIST_REPOSITORY_BACKEND"),
			Destination: &r.backend,
		},
		&cli.StringFlag{
			Name:        "database-dsn",
			Usage:       "SQLite file path or Postgres connection string",
			Value:       "medassist.db",
			Category:    "Repository",
			Sources:     cli.EnvVars("MEDASSIST_DATABASE_DSN"),
			Destination: &r.dsn,
		},
		&cli.BoolFlag{
			Name:        "auto-migrate",
			Usage:       "Apply pending SQL migrations on startup",
			Value:       true,
			Category:    "Repository",
			Sources:     cli.EnvVars("MEDASSIST_AUTO_MIGRATE"),
			Destination: &r.autoMigrate,
		},
		&cli.BoolFlag{
			Name:        "sql-log",
			Usage:       "Log every SQL statement",
			Category:    "Repository",
			Sources:     cli.EnvVars("MEDASSIST_SQL_LOG"),
			Destination: &r.sqlLog,
		},
		&cli.StringFlag{
			Name:        "firestore-project-id",
			Usage:       "Firestore Project ID (required when using firestore backend)",
			Category:    "Repository",
			Sources:     cli.EnvVars("MEDASSIST_FIRESTORE_PROJECT_ID"),
			Destination: &r.projectID,
		},
		&cli.StringFlag{
			Name:        "firestore-database-id",
			Usage:       "Firestore Database ID",
			Category:    "Repository",
			Sources:     cli.EnvVars("MEDASSIST_FIRESTORE_DATABASE_ID"),
			Destination: &r.databaseID,
		},
		&cli.StringFlag{
			Name:        "firestore-collection-prefix",
			Usage:       "Prefix of every Firestore collection name",
			Category:    "Repository",
			Sources:     cli.EnvVars("MEDASSIST_FIRESTORE_COLLECTION_PREFIX"),
			Destination: &r.collectionPrefix,
		},
	}
}

// Backend returns the configured backend type
func (r *Repository) Backend() string {
	return r.backend
}

// ProjectID returns the Firestore project ID
func (r *Repository) ProjectID() string {
	return r.projectID
}

// DatabaseID returns the Firestore database ID
func (r *Repository) DatabaseID() string {
	return r.databaseID
}

// CollectionPrefix returns the Firestore collection name prefix
func (r *Repository) CollectionPrefix() string {
	return r.collectionPrefix
}

// LogAttrs returns log attributes without the DSN
func (r *Repository) LogAttrs() []slog.Attr {
	return []slog.Attr{
		slog.String("backend", r.backend),
		slog.Bool("auto_migrate", r.autoMigrate),
		slog.String("firestore_project_id", r.projectID),
		slog.String("firestore_database_id", r.databaseID),
	}
}

func (r *Repository) dialect() (rdb.Dialect, bool) {
	switch r.backend {
	case BackendSQLite:
		return rdb.DialectSQLite, true
	case BackendPostgres:
		return rdb.DialectPostgres, true
	default:
		return "", false
	}
}

// ConfigureRDB opens the relational backend without migrating.
// It fails for backends that are not SQL.
func (r *Repository) ConfigureRDB(ctx context.Context) (*rdb.RDB, error) {
	dialect, ok := r.dialect()
	if !ok {
		return nil, goerr.Wrap(ErrUnknownBackend, "backend is not relational", goerr.V(BackendKey, r.backend))
	}
	if r.dsn == "" {
		return nil, goerr.Wrap(ErrMissingOption, "database-dsn is required", goerr.V(OptionKey, "database-dsn"))
	}

	level := logger.Silent
	if r.sqlLog {
		level = logger.Info
	}
	repo, err := rdb.New(ctx, dialect, r.dsn, rdb.WithLogLevel(level))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open database", goerr.V(BackendKey, r.backend))
	}
	return repo, nil
}

// ConfigureFirestore opens the Firestore backend
func (r *Repository) ConfigureFirestore(ctx context.Context) (*firestore.Firestore, error) {
	if r.projectID == "" {
		return nil, goerr.Wrap(ErrMissingOption, "firestore-project-id is required when using firestore backend",
			goerr.V(OptionKey, "firestore-project-id"))
	}
	repo, err := firestore.New(ctx, r.projectID, r.databaseID, firestore.WithCollectionPrefix(r.collectionPrefix))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to initialize firestore repository")
	}
	return repo, nil
}

// Configure initializes and returns a repository based on the configured backend.
// The caller is responsible for calling Close() on the returned repository.
func (r *Repository) Configure(ctx context.Context) (interfaces.Repository, error) {
	switch r.backend {
	case BackendFirestore:
		repo, err := r.ConfigureFirestore(ctx)
		if err != nil {
			return nil, err
		}
		logging.Default().Info("Using Firestore repository",
			"project_id", r.projectID,
			"database_id", r.databaseID,
			"collection_prefix", r.collectionPrefix,
		)
		return repo, nil

	case BackendSQLite, BackendPostgres:
		repo, err := r.ConfigureRDB(ctx)
		if err != nil {
			return nil, err
		}
		if r.autoMigrate {
			if err := repo.Migrate(ctx); err != nil {
				_ = repo.Close()
				return nil, goerr.Wrap(err, "failed to migrate database")
			}
		}
		logging.Default().Info("Using relational repository", "dialect", repo.Dialect())
		return repo, nil

	case BackendMemory:
		logging.Default().Info("Using in-memory repository (development mode)")
		return memory.New(), nil

	default:
		return nil, goerr.Wrap(ErrUnknownBackend, "invalid repository backend", goerr.V(BackendKey, r.backend))
	}
}

package cli

import (
	"context"

	"github.com/m-mizutani/fireconf"
	"github.com/m-mizutani/goerr/v2"
	"github.com/medassist-dev/medassist/pkg/cli/config"
	"github.com/medassist-dev/medassist/pkg/repository/firestore"
	"github.com/medassist-dev/medassist/pkg/utils/logging"
	"github.com/medassist-dev/medassist/pkg/utils/safe"
	"github.com/urfave/cli/v3"
)

func cmdMigrate() *cli.Command {
	var dryRun bool
	var repoCfg config.Repository

	flags := []cli.Flag{
		&cli.BoolFlag{
			Name:        "dry-run",
			Usage:       "Preview changes without applying",
			Destination: &dryRun,
		},
	}
	flags = append(flags, repoCfg.Flags()...)

	return &cli.Command{
		Name:    "migrate",
		Aliases: []string{"m"},
		Usage:   "Migrate SQL schema or Firestore indexes",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := logging.Default()
			logger.Info("Migrate configuration",
				"backend", repoCfg.Backend(),
				"dryRun", dryRun)

			switch repoCfg.Backend() {
			case config.BackendFirestore:
				return migrateFirestore(ctx, &repoCfg, dryRun)
			case config.BackendSQLite, config.BackendPostgres:
				return migrateSQL(ctx, &repoCfg, dryRun)
			case config.BackendMemory:
				logger.Info("In-memory repository needs no migration")
				return nil
			default:
				return goerr.Wrap(config.ErrUnknownBackend, "cannot migrate", goerr.V(config.BackendKey, repoCfg.Backend()))
			}
		},
	}
}

func migrateSQL(ctx context.Context, repoCfg *config.Repository, dryRun bool) error {
	logger := logging.Default()

	repo, err := repoCfg.ConfigureRDB(ctx)
	if err != nil {
		return err
	}
	defer safe.Close(ctx, repo)

	if dryRun {
		status, err := repo.MigrationStatus(ctx)
		if err != nil {
			return goerr.Wrap(err, "failed to read migration status")
		}
		if status.Version == status.Latest && !status.Dirty {
			logger.Info("No changes required", "version", status.Version)
			return nil
		}
		logger.Info("Pending migrations",
			"current", status.Version,
			"latest", status.Latest,
			"dirty", status.Dirty)
		return nil
	}

	logger.Info("Applying migrations")
	if err := repo.Migrate(ctx); err != nil {
		return goerr.Wrap(err, "failed to apply migrations")
	}
	logger.Info("Migrations applied successfully")
	return nil
}

// defaultFirestoreDatabase is the ID Firestore gives the database created with a project
const defaultFirestoreDatabase = "(default)"

func migrateFirestore(ctx context.Context, repoCfg *config.Repository, dryRun bool) error {
	logger := logging.Default()

	if repoCfg.ProjectID() == "" {
		return goerr.Wrap(config.ErrMissingOption, "firestore-project-id is required", goerr.V(config.OptionKey, "firestore-project-id"))
	}
	databaseID := repoCfg.DatabaseID()
	if databaseID == "" {
		databaseID = defaultFirestoreDatabase
	}

	indexConfig := firestore.IndexConfig(repoCfg.CollectionPrefix())

	client, err := fireconf.New(ctx, repoCfg.ProjectID(), databaseID, indexConfig,
		fireconf.WithLogger(logger),
		fireconf.WithDryRun(dryRun),
	)
	if err != nil {
		return goerr.Wrap(err, "failed to create fireconf client",
			goerr.V("projectID", repoCfg.ProjectID()),
			goerr.V("databaseID", databaseID))
	}
	defer func() {
		if err := client.Close(); err != nil {
			logger.Error("failed to close fireconf client", "error", err.Error())
		}
	}()

	if dryRun {
		logger.Info("Dry run mode - previewing changes")
	} else {
		logger.Info("Applying migrations")
	}
	if err := client.Migrate(ctx); err != nil {
		return goerr.Wrap(err, "failed to apply migrations")
	}
	logger.Info("Migrations completed", "dryRun", dryRun)
	return nil
}

package rdb

import (
	"context"
	"database/sql"
	"embed"
	"errors"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/m-mizutani/goerr/v2"
	"github.com/medassist-dev/medassist/pkg/utils/logging"
)

//go:embed migrations
var migrationFS embed.FS

// MigrationStatus describes the schema version recorded in the database
type MigrationStatus struct {
	Version uint
	Dirty   bool
	Latest  uint
}

// Migrate applies all pending schema migrations
func (r *RDB) Migrate(ctx context.Context) error {
	m, closeFn, err := r.newMigrator(ctx)
	if err != nil {
		return err
	}
	defer closeFn()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return goerr.Wrap(err, "failed to apply migrations", goerr.V("dialect", r.dialect))
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return goerr.Wrap(err, "failed to read migration version")
	}
	logging.From(ctx).Info("Schema migrated", "dialect", r.dialect, "version", version, "dirty", dirty)
	return nil
}

// MigrationStatus reports the current and latest schema version without applying anything
func (r *RDB) MigrationStatus(ctx context.Context) (*MigrationStatus, error) {
	m, closeFn, err := r.newMigrator(ctx)
	if err != nil {
		return nil, err
	}
	defer closeFn()

	status := &MigrationStatus{}
	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return nil, goerr.Wrap(err, "failed to read migration version")
	}
	status.Version = version
	status.Dirty = dirty

	latest, err := latestMigrationVersion(r.dialect)
	if err != nil {
		return nil, err
	}
	status.Latest = latest
	return status, nil
}

func (r *RDB) newMigrator(ctx context.Context) (*migrate.Migrate, func(), error) {
	src, err := iofs.New(migrationFS, "migrations/"+string(r.dialect))
	if err != nil {
		return nil, nil, goerr.Wrap(err, "failed to load embedded migrations", goerr.V("dialect", r.dialect))
	}

	var (
		driver  database.Driver
		closeFn = func() {}
	)

	switch r.dialect {
	case DialectPostgres:
		// The postgres driver pins a dedicated connection, so it gets its own pool
		db, err := sql.Open("postgres", r.dsn)
		if err != nil {
			return nil, nil, goerr.Wrap(err, "failed to open postgres connection for migration")
		}
		driver, err = migratepg.WithInstance(db, &migratepg.Config{})
		if err != nil {
			_ = db.Close()
			return nil, nil, goerr.Wrap(err, "failed to create postgres migration driver")
		}
		closeFn = func() {
			if err := driver.Close(); err != nil {
				logging.From(ctx).Warn("failed to close migration driver", "error", err.Error())
			}
			if err := db.Close(); err != nil {
				logging.From(ctx).Warn("failed to close migration connection", "error", err.Error())
			}
		}

	case DialectSQLite:
		db, err := r.db.DB()
		if err != nil {
			return nil, nil, goerr.Wrap(err, "failed to get sql.DB")
		}
		// Shares the repository pool; closing the driver would close the repository
		driver, err = migratesqlite.WithInstance(db, &migratesqlite.Config{})
		if err != nil {
			return nil, nil, goerr.Wrap(err, "failed to create sqlite migration driver")
		}

	default:
		return nil, nil, goerr.New("unsupported SQL dialect", goerr.V("dialect", r.dialect))
	}

	m, err := migrate.NewWithInstance("iofs", src, string(r.dialect), driver)
	if err != nil {
		closeFn()
		return nil, nil, goerr.Wrap(err, "failed to create migrator", goerr.V("dialect", r.dialect))
	}
	return m, closeFn, nil
}

func latestMigrationVersion(dialect Dialect) (uint, error) {
	src, err := iofs.New(migrationFS, "migrations/"+string(dialect))
	if err != nil {
		return 0, goerr.Wrap(err, "failed to load embedded migrations", goerr.V("dialect", dialect))
	}
	defer src.Close()

	version, err := src.First()
	if err != nil {
		return 0, goerr.Wrap(err, "no embedded migrations", goerr.V("dialect", dialect))
	}
	for {
		next, err := src.Next(version)
		if err != nil {
			// fs.ErrNotExist marks the last migration
			return version, nil
		}
		version = next
	}
}

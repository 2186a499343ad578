package rdb

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"
	"github.com/m-mizutani/goerr/v2"
	"github.com/mattn/go-sqlite3"
	"github.com/medassist-dev/medassist/pkg/domain/interfaces"
	"github.com/medassist-dev/medassist/pkg/domain/model"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Dialect selects the SQL engine behind the repository
type Dialect string

const (
	DialectPostgres Dialect = "postgres"
	DialectSQLite   Dialect = "sqlite3"
)

// RDB is a relational repository built on gorm. The schema is owned by the
// embedded migrations; call Migrate before first use.
type RDB struct {
	db           *gorm.DB
	dialect      Dialect
	dsn          string
	patient      *patientRepository
	conversation *conversationRepository
	message      *messageRepository
	history      *historyRepository
}

var _ interfaces.Repository = &RDB{}

type Option func(*options)

type options struct {
	logLevel logger.LogLevel
}

// WithLogLevel sets the gorm statement logger level. Default is silent.
func WithLogLevel(level logger.LogLevel) Option {
	return func(o *options) {
		o.logLevel = level
	}
}

// New opens a connection. For DialectSQLite the dsn is a file path or sqlite URI,
// for DialectPostgres a lib/pq connection string.
func New(ctx context.Context, dialect Dialect, dsn string, opts ...Option) (*RDB, error) {
	o := &options{logLevel: logger.Silent}
	for _, opt := range opts {
		opt(o)
	}

	var dialector gorm.Dialector
	switch dialect {
	case DialectPostgres:
		sqlDB, err := sql.Open("postgres", dsn)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to open postgres connection")
		}
		dialector = postgres.New(postgres.Config{Conn: sqlDB})

	case DialectSQLite:
		dialector = sqlite.Open(dsn)

	default:
		return nil, goerr.New("unsupported SQL dialect", goerr.V("dialect", dialect))
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:  logger.Default.LogMode(o.logLevel),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open database", goerr.V("dialect", dialect))
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get sql.DB")
	}

	if dialect == DialectSQLite {
		// One connection keeps PRAGMA settings and in-memory databases stable
		sqlDB.SetMaxOpenConns(1)
		if err := db.WithContext(ctx).Exec("PRAGMA foreign_keys = ON").Error; err != nil {
			return nil, goerr.Wrap(err, "failed to enable foreign keys")
		}
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, goerr.Wrap(err, "failed to ping database", goerr.V("dialect", dialect))
	}

	r := &RDB{
		db:      db,
		dialect: dialect,
		dsn:     dsn,
	}
	r.patient = &patientRepository{db: db}
	r.conversation = &conversationRepository{db: db}
	r.message = &messageRepository{db: db}
	r.history = &historyRepository{db: db}
	return r, nil
}

func (r *RDB) Dialect() Dialect {
	return r.dialect
}

func (r *RDB) Patient() interfaces.PatientRepository {
	return r.patient
}

func (r *RDB) Conversation() interfaces.ConversationRepository {
	return r.conversation
}

func (r *RDB) Message() interfaces.MessageRepository {
	return r.message
}

func (r *RDB) History() interfaces.HistoryRepository {
	return r.history
}

func (r *RDB) CloseConversation(ctx context.Context, conversationID int64, summary string, entry *model.HistoryEntry) (*model.HistoryEntry, error) {
	var created *model.HistoryEntry

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var conv conversationRow
		if err := tx.Where("conversation_id = ?", conversationID).Take(&conv).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return goerr.Wrap(model.ErrNotFound, "conversation not found", goerr.V(model.ConversationIDKey, conversationID))
			}
			return goerr.Wrap(err, "failed to get conversation", goerr.V(model.ConversationIDKey, conversationID))
		}

		res := tx.Model(&conversationRow{}).
			Where("conversation_id = ? AND summary IS NULL", conversationID).
			Update("summary", summary)
		if res.Error != nil {
			return goerr.Wrap(res.Error, "failed to set conversation summary", goerr.V(model.ConversationIDKey, conversationID))
		}
		if res.RowsAffected != 1 {
			return goerr.Wrap(model.ErrConversationClosed, "conversation already has a summary", goerr.V(model.ConversationIDKey, conversationID))
		}

		id := entry.ID
		if id == "" {
			id = model.NewHistoryEntryID()
		}
		row := &historyRow{
			HistoryID:           id.String(),
			PatientID:           conv.PatientID,
			ConversationID:      conv.ConversationID,
			Symptoms:            entry.Symptoms,
			DiagnosesConsidered: entry.Diagnoses,
			Timestamp:           now(),
		}
		if err := tx.Create(row).Error; err != nil {
			if isDuplicateKey(err) {
				return goerr.Wrap(model.ErrConversationClosed, "history entry already exists", goerr.V(model.ConversationIDKey, conversationID))
			}
			return goerr.Wrap(err, "failed to insert history entry", goerr.V(model.ConversationIDKey, conversationID))
		}

		created = row.toModel()
		return nil
	})
	if err != nil {
		return nil, err
	}

	return created, nil
}

func (r *RDB) ClearAll(ctx context.Context) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, table := range []string{historyTable, messagesTable, conversationsTable, patientsTable} {
			if err := tx.Exec("DELETE FROM " + table).Error; err != nil {
				return goerr.Wrap(err, "failed to clear table", goerr.V("table", table))
			}
		}
		return nil
	})
	if err != nil {
		return goerr.Wrap(err, "failed to clear all data")
	}
	return nil
}

func (r *RDB) ClearPatient(ctx context.Context, patientID model.PatientID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&patientRow{}).Where("patient_id = ?", patientID.String()).Count(&count).Error; err != nil {
			return goerr.Wrap(err, "failed to look up patient", goerr.V(model.PatientIDKey, patientID))
		}
		if count == 0 {
			return goerr.Wrap(model.ErrNotFound, "patient not found", goerr.V(model.PatientIDKey, patientID))
		}

		stmts := []string{
			"DELETE FROM " + messagesTable + " WHERE conversation_id IN (SELECT conversation_id FROM " + conversationsTable + " WHERE patient_id = ?)",
			"DELETE FROM " + historyTable + " WHERE patient_id = ?",
			"DELETE FROM " + conversationsTable + " WHERE patient_id = ?",
			"DELETE FROM " + patientsTable + " WHERE patient_id = ?",
		}
		for _, stmt := range stmts {
			if err := tx.Exec(stmt, patientID.String()).Error; err != nil {
				return goerr.Wrap(err, "failed to clear patient data", goerr.V(model.PatientIDKey, patientID))
			}
		}
		return nil
	})
}

func (r *RDB) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return goerr.Wrap(err, "failed to get sql.DB")
	}
	return sqlDB.Close()
}

// now is the application clock for stored timestamps, truncated to the
// microsecond precision both engines keep.
func now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}

	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey ||
			liteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	return false
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

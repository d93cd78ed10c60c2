package repomanager

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"time"

	"github.com/dmitrijs2005/iqube/internal/dbx"
	"github.com/dmitrijs2005/iqube/internal/server/config"
	"github.com/dmitrijs2005/iqube/internal/server/migrations"
	"github.com/pressly/goose/v3"
)

// initialVersion is the migration that creates SchemaTables and SchemaIndexes.
const initialVersion = 1

// Objects the initial migration creates.
var (
	SchemaTables  = []string{"users", "saved_questions"}
	SchemaIndexes = []string{"ix_users_email", "ix_saved_questions_user_id"}
)

// SchemaReport describes the outcome of SchemaManager.Ensure.
type SchemaReport struct {
	TablesCreated   []string `json:"tablesCreated"`
	IndexesCreated  []string `json:"indexesCreated"`
	AppliedVersions []int64  `json:"appliedVersions"`
	CurrentVersion  int64    `json:"currentVersion"`
}

type migrator interface {
	Up(ctx context.Context) ([]*goose.MigrationResult, error)
	GetDBVersion(ctx context.Context) (int64, error)
}

// newMigrator is a seam for tests.
var newMigrator = func(dialect goose.Dialect, db *sql.DB, fsys fs.FS) (migrator, error) {
	return goose.NewProvider(dialect, db, fsys)
}

// SchemaManager runs the embedded goose migrations for one SQL dialect.
type SchemaManager struct {
	db      *sql.DB
	dialect goose.Dialect
	fsys    fs.FS
	timeout time.Duration
}

func NewSchemaManager(db *sql.DB, driver string, timeout time.Duration) (*SchemaManager, error) {
	var (
		dialect goose.Dialect
		dir     string
	)

	switch driver {
	case config.DriverPostgres:
		dialect, dir = goose.DialectPostgres, "postgres"
	case config.DriverSQLite:
		dialect, dir = goose.DialectSQLite3, "sqlite"
	default:
		return nil, fmt.Errorf("%w: %q", config.ErrUnknownDriver, driver)
	}

	fsys, err := fs.Sub(migrations.Migrations, dir)
	if err != nil {
		return nil, err
	}

	return &SchemaManager{db: db, dialect: dialect, fsys: fsys, timeout: timeout}, nil
}

// Ensure creates missing tables and indexes. Running it against an
// up-to-date store applies nothing and leaves data intact.
func (s *SchemaManager) Ensure(ctx context.Context) (*SchemaReport, error) {
	ctx, cancel := dbx.OpContext(ctx, s.timeout)
	defer cancel()

	m, err := newMigrator(s.dialect, s.db, s.fsys)
	if err != nil {
		return nil, fmt.Errorf("migrations: %w", err)
	}

	results, err := m.Up(ctx)
	if err != nil {
		return nil, fmt.Errorf("migrations: %w", dbx.Classify(err))
	}

	// only objects created by this run are reported
	report := &SchemaReport{
		TablesCreated:   []string{},
		IndexesCreated:  []string{},
		AppliedVersions: make([]int64, 0, len(results)),
	}
	for _, r := range results {
		if r == nil || r.Source == nil {
			continue
		}
		report.AppliedVersions = append(report.AppliedVersions, r.Source.Version)
		if r.Source.Version == initialVersion {
			report.TablesCreated = append(report.TablesCreated, SchemaTables...)
			report.IndexesCreated = append(report.IndexesCreated, SchemaIndexes...)
		}
	}

	if report.CurrentVersion, err = m.GetDBVersion(ctx); err != nil {
		return nil, fmt.Errorf("migrations: %w", dbx.Classify(err))
	}

	return report, nil
}

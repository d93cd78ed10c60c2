// Package repomanager vends SQL-backed repositories for PostgreSQL or SQLite
// and owns schema migrations (via goose) and store health checks.
package repomanager

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dmitrijs2005/iqube/internal/dbx"
	"github.com/dmitrijs2005/iqube/internal/server/repositories/questions"
	"github.com/dmitrijs2005/iqube/internal/server/repositories/users"
)

// SQLRepositoryManager binds repositories to one *sql.DB and applies the
// per-operation timeout to every repository it vends.
type SQLRepositoryManager struct {
	db      *sql.DB
	schema  *SchemaManager
	timeout time.Duration
}

// Users returns a users.Repository bound to the provided DBTX.
func (m *SQLRepositoryManager) Users(db dbx.DBTX) users.Repository {
	return users.NewSQLRepository(db, m.timeout)
}

// Questions returns a questions.Repository bound to the provided DBTX.
func (m *SQLRepositoryManager) Questions(db dbx.DBTX) questions.Repository {
	return questions.NewSQLRepository(db, m.timeout)
}

func (m *SQLRepositoryManager) EnsureSchema(ctx context.Context) (*SchemaReport, error) {
	return m.schema.Ensure(ctx)
}

func (m *SQLRepositoryManager) Ping(ctx context.Context) (time.Time, error) {
	ctx, cancel := dbx.OpContext(ctx, m.timeout)
	defer cancel()

	var now dbx.Time
	if err := m.db.QueryRowContext(ctx, `SELECT CURRENT_TIMESTAMP`).Scan(&now); err != nil {
		return time.Time{}, fmt.Errorf("db error: %w", dbx.Classify(err))
	}
	return now.Time, nil
}

// NewSQLRepositoryManager constructs a RepositoryManager for driver.
func NewSQLRepositoryManager(db *sql.DB, driver string, timeout time.Duration) (*SQLRepositoryManager, error) {
	schema, err := NewSchemaManager(db, driver, timeout)
	if err != nil {
		return nil, err
	}
	return &SQLRepositoryManager{db: db, schema: schema, timeout: timeout}, nil
}

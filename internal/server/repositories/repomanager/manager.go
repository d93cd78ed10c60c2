package repomanager

import (
	"context"
	"time"

	"github.com/dmitrijs2005/iqube/internal/dbx"
	"github.com/dmitrijs2005/iqube/internal/server/repositories/questions"
	"github.com/dmitrijs2005/iqube/internal/server/repositories/users"
)

type RepositoryManager interface {
	Users(db dbx.DBTX) users.Repository
	Questions(db dbx.DBTX) questions.Repository
	// EnsureSchema applies pending migrations; already-current stores are
	// left untouched.
	EnsureSchema(ctx context.Context) (*SchemaReport, error)
	// Ping round-trips to the store and returns its clock.
	Ping(ctx context.Context) (time.Time, error)
}

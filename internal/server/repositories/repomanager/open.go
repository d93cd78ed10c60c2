package repomanager

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dmitrijs2005/iqube/internal/dbx"
	"github.com/dmitrijs2005/iqube/internal/server/config"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// OpenDB opens a pool for driver and verifies it is reachable within timeout.
func OpenDB(ctx context.Context, driver, dsn string, timeout time.Duration) (*sql.DB, error) {
	switch driver {
	case config.DriverPostgres, config.DriverSQLite:
	default:
		return nil, fmt.Errorf("%w: %q", config.ErrUnknownDriver, driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}

	ctx, cancel := dbx.OpContext(ctx, timeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, dbx.Classify(err))
	}

	return db, nil
}

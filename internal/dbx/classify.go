package dbx

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"net"
	"strings"

	"github.com/dmitrijs2005/iqube/internal/common"
	"github.com/jackc/pgx/v5/pgconn"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// PostgreSQL SQLSTATE codes we react to.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgQueryCanceled       = "57014"
	pgConnectionClass     = "08"
)

// Classify joins a store-level sentinel from package common onto a driver
// error so callers can match it with errors.Is while the original cause stays
// available for logging. Errors that match no known class are returned as is.
func Classify(err error) error {
	if err == nil {
		return nil
	}

	if sentinel := classify(err); sentinel != nil {
		return errors.Join(sentinel, err)
	}
	return err
}

func classify(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || pgconn.Timeout(err) {
		return common.ErrStoreTimeout
	}

	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) {
		return common.ErrStoreUnavailable
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == pgUniqueViolation:
			return common.ErrUniqueViolation
		case pgErr.Code == pgForeignKeyViolation:
			return common.ErrForeignKeyViolation
		case pgErr.Code == pgQueryCanceled:
			return common.ErrStoreTimeout
		case strings.HasPrefix(pgErr.Code, pgConnectionClass):
			return common.ErrStoreUnavailable
		}
		return nil
	}

	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return common.ErrStoreUnavailable
	}

	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		switch liteErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return common.ErrUniqueViolation
		case sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY:
			return common.ErrForeignKeyViolation
		case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_CANTOPEN:
			return common.ErrStoreUnavailable
		}
		return nil
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return common.ErrStoreTimeout
		}
		return common.ErrStoreUnavailable
	}

	return nil
}

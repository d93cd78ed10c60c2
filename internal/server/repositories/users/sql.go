package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/iqube/internal/common"
	"github.com/dmitrijs2005/iqube/internal/dbx"
	"github.com/dmitrijs2005/iqube/internal/server/models"
)

// SQLRepository works against both PostgreSQL and SQLite; the two dialects
// share $N placeholders and RETURNING.
type SQLRepository struct {
	db      dbx.DBTX
	timeout time.Duration
}

func NewSQLRepository(db dbx.DBTX, timeout time.Duration) *SQLRepository {
	return &SQLRepository{db: db, timeout: timeout}
}

func (r *SQLRepository) FindByEmail(ctx context.Context, email string) (*models.User, bool, error) {
	ctx, cancel := dbx.OpContext(ctx, r.timeout)
	defer cancel()

	query :=
		`SELECT id, email, password_hash, first_name, last_name, created_at FROM users
		 WHERE email = $1
		 `

	user := &models.User{}
	var createdAt dbx.Time
	err := r.db.QueryRowContext(ctx, query, email).
		Scan(&user.ID, &user.Email, &user.PasswordHash, &user.FirstName, &user.LastName, &createdAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("db error: %w", dbx.Classify(err))
	}

	user.CreatedAt = createdAt.Time
	return user, true, nil
}

func (r *SQLRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	ctx, cancel := dbx.OpContext(ctx, r.timeout)
	defer cancel()

	query :=
		`INSERT INTO users (email, password_hash, first_name, last_name)
         VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at
		 `

	var createdAt dbx.Time
	err := r.db.QueryRowContext(ctx, query,
		user.Email, user.PasswordHash, user.FirstName, user.LastName).Scan(&user.ID, &createdAt)

	if err != nil {
		err = dbx.Classify(err)
		if errors.Is(err, common.ErrUniqueViolation) {
			return nil, errors.Join(common.ErrUserExists, err)
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	user.CreatedAt = createdAt.Time
	return user, nil
}

func (r *SQLRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := dbx.OpContext(ctx, r.timeout)
	defer cancel()

	var n int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return 0, fmt.Errorf("db error: %w", dbx.Classify(err))
	}
	return n, nil
}

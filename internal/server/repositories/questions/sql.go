package questions

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/iqube/internal/common"
	"github.com/dmitrijs2005/iqube/internal/dbx"
	"github.com/dmitrijs2005/iqube/internal/server/models"
)

type SQLRepository struct {
	db      dbx.DBTX
	timeout time.Duration
}

func NewSQLRepository(db dbx.DBTX, timeout time.Duration) *SQLRepository {
	return &SQLRepository{db: db, timeout: timeout}
}

func (r *SQLRepository) Create(ctx context.Context, userID int64, in models.QuestionInput) (*models.SavedQuestion, error) {
	ctx, cancel := dbx.OpContext(ctx, r.timeout)
	defer cancel()

	in = in.WithDefaults()

	query :=
		`INSERT INTO saved_questions (user_id, question_text, topic, difficulty, question_type)
         VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at
		 `

	q := &models.SavedQuestion{
		UserID:       userID,
		QuestionText: in.QuestionText,
		Topic:        in.Topic,
		Difficulty:   in.Difficulty,
		QuestionType: in.QuestionType,
	}

	var createdAt dbx.Time
	err := r.db.QueryRowContext(ctx, query,
		userID, in.QuestionText, in.Topic, in.Difficulty, in.QuestionType).Scan(&q.ID, &createdAt)

	if err != nil {
		err = dbx.Classify(err)
		if errors.Is(err, common.ErrForeignKeyViolation) {
			return nil, err
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	q.CreatedAt = createdAt.Time
	return q, nil
}

func (r *SQLRepository) ListByUser(ctx context.Context, userID int64) ([]models.SavedQuestion, error) {
	ctx, cancel := dbx.OpContext(ctx, r.timeout)
	defer cancel()

	query :=
		`SELECT id, user_id, question_text, topic, difficulty, question_type, created_at
		 FROM saved_questions
		 WHERE user_id = $1
		 ORDER BY created_at DESC, id DESC
		 `

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", dbx.Classify(err))
	}
	defer rows.Close()

	result := make([]models.SavedQuestion, 0)
	for rows.Next() {
		var q models.SavedQuestion
		var createdAt dbx.Time
		if err := rows.Scan(&q.ID, &q.UserID, &q.QuestionText, &q.Topic, &q.Difficulty, &q.QuestionType, &createdAt); err != nil {
			return nil, fmt.Errorf("db error: %w", dbx.Classify(err))
		}
		q.CreatedAt = createdAt.Time
		result = append(result, q)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", dbx.Classify(err))
	}

	return result, nil
}

func (r *SQLRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := dbx.OpContext(ctx, r.timeout)
	defer cancel()

	var n int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM saved_questions`).Scan(&n); err != nil {
		return 0, fmt.Errorf("db error: %w", dbx.Classify(err))
	}
	return n, nil
}

func (r *SQLRepository) RecentActivity(ctx context.Context, limit int) ([]models.Activity, error) {
	if limit <= 0 {
		return []models.Activity{}, nil
	}

	ctx, cancel := dbx.OpContext(ctx, r.timeout)
	defer cancel()

	query :=
		`SELECT u.email, q.question_text, q.created_at
		 FROM saved_questions q
		 JOIN users u ON u.id = q.user_id
		 ORDER BY q.created_at DESC, q.id DESC
		 LIMIT $1
		 `

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", dbx.Classify(err))
	}
	defer rows.Close()

	result := make([]models.Activity, 0, limit)
	for rows.Next() {
		var a models.Activity
		var createdAt dbx.Time
		if err := rows.Scan(&a.UserEmail, &a.Question, &createdAt); err != nil {
			return nil, fmt.Errorf("db error: %w", dbx.Classify(err))
		}
		a.Question = Preview(a.Question)
		a.CreatedAt = createdAt.Time
		result = append(result, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", dbx.Classify(err))
	}

	return result, nil
}

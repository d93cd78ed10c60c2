package questions

import (
	"context"

	"github.com/dmitrijs2005/iqube/internal/server/models"
)

type Repository interface {
	// Create stores q for userID. An unknown userID yields
	// common.ErrForeignKeyViolation.
	Create(ctx context.Context, userID int64, q models.QuestionInput) (*models.SavedQuestion, error)
	// ListByUser returns the user's questions newest first.
	ListByUser(ctx context.Context, userID int64) ([]models.SavedQuestion, error)
	Count(ctx context.Context) (int64, error)
	// RecentActivity joins the newest questions with their owner's email.
	RecentActivity(ctx context.Context, limit int) ([]models.Activity, error)
}

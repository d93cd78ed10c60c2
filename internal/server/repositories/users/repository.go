package users

import (
	"context"

	"github.com/dmitrijs2005/iqube/internal/server/models"
)

type Repository interface {
	// FindByEmail returns found=false with a nil error when no account
	// carries the email.
	FindByEmail(ctx context.Context, email string) (user *models.User, found bool, err error)
	// Create inserts the user and fills ID and CreatedAt. A taken email
	// yields common.ErrUserExists.
	Create(ctx context.Context, user *models.User) (*models.User, error)
	Count(ctx context.Context) (int64, error)
}

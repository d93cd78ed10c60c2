// Package services contains server-side business logic. AuthService handles
// registration, authentication and the per-user question records;
// SystemService covers store connectivity and schema provisioning.
package services

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/dmitrijs2005/iqube/internal/common"
	"github.com/dmitrijs2005/iqube/internal/dbx"
	"github.com/dmitrijs2005/iqube/internal/logging"
	"github.com/dmitrijs2005/iqube/internal/server/auth"
	"github.com/dmitrijs2005/iqube/internal/server/models"
	"github.com/dmitrijs2005/iqube/internal/server/repositories/repomanager"
	"golang.org/x/sync/errgroup"
)

const (
	MinPasswordLength   = 6
	RecentActivityLimit = 5
)

// RegisterInput carries the fields of a new account.
type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// AuthResult is returned by Register and Authenticate.
type AuthResult struct {
	User  models.PublicUser `json:"user"`
	Token string            `json:"token"`
}

// ExistsResult is returned by Exists; User is set only when Exists is true.
type ExistsResult struct {
	Exists bool               `json:"exists"`
	User   *models.PublicUser `json:"user,omitempty"`
}

// SavedQuestionResult is returned by SaveQuestion.
type SavedQuestionResult struct {
	QuestionID int64     `json:"questionId"`
	CreatedAt  time.Time `json:"createdAt"`
}

type AuthService struct {
	db          dbx.DBTX
	repomanager repomanager.RepositoryManager
	hasher      *auth.CredentialHasher
	tokens      *auth.TokenIssuer
	log         logging.Logger

	decoyOnce sync.Once
	decoyHash string
}

func NewAuthService(db dbx.DBTX, m repomanager.RepositoryManager, hasher *auth.CredentialHasher,
	tokens *auth.TokenIssuer, log logging.Logger) *AuthService {
	return &AuthService{
		db:          db,
		repomanager: m,
		hasher:      hasher,
		tokens:      tokens,
		log:         log.With("module", "services"),
	}
}

// Register creates an account and issues a token for it. A taken email
// yields common.ErrUserExists whether it is caught by the lookup or by the
// store's unique constraint.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	if err := validateRegistration(in); err != nil {
		return nil, err
	}

	repo := s.repomanager.Users(s.db)

	if _, found, err := repo.FindByEmail(ctx, in.Email); err != nil {
		return nil, fmt.Errorf("error looking up user: %w", err)
	} else if found {
		return nil, common.ErrUserExists
	}

	hashed, err := s.hasher.Hash(ctx, in.Password)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	user, err := repo.Create(ctx, &models.User{
		Email:        in.Email,
		PasswordHash: hashed,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
	})
	if err != nil {
		if errors.Is(err, common.ErrUserExists) {
			return nil, common.ErrUserExists
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	s.log.Info(ctx, "user registered", "user_id", user.ID)

	return s.issue(user)
}

// Authenticate checks the password of the account registered under email.
// It fails with common.ErrUserNotFound or common.ErrInvalidPassword.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (*AuthResult, error) {
	user, found, err := s.repomanager.Users(s.db).FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("error looking up user: %w", err)
	}

	if !found {
		// keep response time independent of whether the account exists
		if _, err := s.hasher.Verify(ctx, password, s.decoy(ctx)); err != nil {
			return nil, err
		}
		return nil, common.ErrUserNotFound
	}

	ok, err := s.hasher.Verify(ctx, password, user.PasswordHash)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, common.ErrInvalidPassword
	}

	return s.issue(user)
}

func (s *AuthService) Exists(ctx context.Context, email string) (*ExistsResult, error) {
	user, found, err := s.repomanager.Users(s.db).FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("error looking up user: %w", err)
	}
	if !found {
		return &ExistsResult{Exists: false}, nil
	}
	public := user.Public()
	return &ExistsResult{Exists: true, User: &public}, nil
}

// SaveQuestion stores a question for userID. Unknown users surface as
// common.ErrForeignKeyViolation.
func (s *AuthService) SaveQuestion(ctx context.Context, userID int64, in models.QuestionInput) (*SavedQuestionResult, error) {
	if userID <= 0 {
		return nil, fmt.Errorf("%w: userId must be a positive integer", common.ErrInvalidParameter)
	}
	if strings.TrimSpace(in.QuestionText) == "" {
		return nil, fmt.Errorf("%w: question", common.ErrMissingParameter)
	}

	q, err := s.repomanager.Questions(s.db).Create(ctx, userID, in)
	if err != nil {
		if errors.Is(err, common.ErrForeignKeyViolation) {
			return nil, common.ErrForeignKeyViolation
		}
		return nil, fmt.Errorf("error saving question: %w", err)
	}

	return &SavedQuestionResult{QuestionID: q.ID, CreatedAt: q.CreatedAt}, nil
}

// ListQuestions returns the user's questions newest first.
func (s *AuthService) ListQuestions(ctx context.Context, userID int64) ([]models.SavedQuestion, error) {
	if userID <= 0 {
		return nil, fmt.Errorf("%w: userId must be a positive integer", common.ErrInvalidParameter)
	}

	list, err := s.repomanager.Questions(s.db).ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error listing questions: %w", err)
	}
	return list, nil
}

func (s *AuthService) Topics() []models.Topic {
	return models.Topics()
}

// Stats counts users and questions and fetches the recent activity feed.
// The three queries run concurrently.
func (s *AuthService) Stats(ctx context.Context) (*models.Stats, error) {
	stats := &models.Stats{}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		n, err := s.repomanager.Users(s.db).Count(ctx)
		stats.TotalUsers = n
		return err
	})
	g.Go(func() error {
		n, err := s.repomanager.Questions(s.db).Count(ctx)
		stats.TotalQuestions = n
		return err
	})
	g.Go(func() error {
		activity, err := s.repomanager.Questions(s.db).RecentActivity(ctx, RecentActivityLimit)
		stats.RecentActivity = activity
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("error collecting stats: %w", err)
	}
	return stats, nil
}

func (s *AuthService) issue(user *models.User) (*AuthResult, error) {
	token, err := s.tokens.Issue(user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("error issuing token: %w", err)
	}
	return &AuthResult{User: user.Public(), Token: token.Value}, nil
}

// decoy returns a hash at the configured cost that no password matches.
// It is built once and detached from the caller's cancellation, so a
// cancelled first request cannot leave it empty.
func (s *AuthService) decoy(ctx context.Context) string {
	s.decoyOnce.Do(func() {
		secret, err := common.MakeRandHexString(16)
		if err == nil {
			s.decoyHash, err = s.hasher.Hash(context.WithoutCancel(ctx), secret)
		}
		if err != nil {
			s.log.Warn(ctx, "decoy hash unavailable", "error", err)
		}
	})
	return s.decoyHash
}

func validateRegistration(in RegisterInput) error {
	addr, err := mail.ParseAddress(in.Email)
	if err != nil || addr.Address != in.Email {
		return fmt.Errorf("%w: email is not a valid address", common.ErrInvalidParameter)
	}
	if utf8.RuneCountInString(in.Password) < MinPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", common.ErrInvalidParameter, MinPasswordLength)
	}
	if len(in.Password) > auth.MaxPasswordBytes {
		return fmt.Errorf("%w: password must be at most %d bytes", common.ErrInvalidParameter, auth.MaxPasswordBytes)
	}
	if strings.TrimSpace(in.FirstName) == "" {
		return fmt.Errorf("%w: firstName", common.ErrMissingParameter)
	}
	if strings.TrimSpace(in.LastName) == "" {
		return fmt.Errorf("%w: lastName", common.ErrMissingParameter)
	}
	return nil
}

package services

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/iqube/internal/common"
	"github.com/dmitrijs2005/iqube/internal/dbx"
	"github.com/dmitrijs2005/iqube/internal/server/models"
	"github.com/dmitrijs2005/iqube/internal/server/repositories/questions"
	"github.com/dmitrijs2005/iqube/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/iqube/internal/server/repositories/users"
)

// --- in-memory fakes ---

type fakeStore struct {
	mu        sync.Mutex
	users     map[string]*models.User
	questions []models.SavedQuestion
	nextID    int64
	clock     time.Time

	calls atomic.Int64

	// findGate, when set, holds every FindByEmail until all expected
	// callers have arrived.
	findGate *sync.WaitGroup
	err      error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users: map[string]*models.User{},
		clock: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (s *fakeStore) tick() time.Time {
	s.clock = s.clock.Add(time.Second)
	s.nextID++
	return s.clock
}

type fakeUsersRepo struct{ s *fakeStore }

func (r *fakeUsersRepo) FindByEmail(ctx context.Context, email string) (*models.User, bool, error) {
	r.s.calls.Add(1)
	if r.s.findGate != nil {
		r.s.findGate.Done()
		r.s.findGate.Wait()
	}
	if r.s.err != nil {
		return nil, false, r.s.err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[email]
	if !ok {
		return nil, false, nil
	}
	cp := *u
	return &cp, true, nil
}

func (r *fakeUsersRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	r.s.calls.Add(1)
	if r.s.err != nil {
		return nil, r.s.err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[u.Email]; ok {
		return nil, common.ErrUserExists
	}
	u.CreatedAt = r.s.tick()
	u.ID = r.s.nextID
	cp := *u
	r.s.users[u.Email] = &cp
	return u, nil
}

func (r *fakeUsersRepo) Count(ctx context.Context) (int64, error) {
	r.s.calls.Add(1)
	if r.s.err != nil {
		return 0, r.s.err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return int64(len(r.s.users)), nil
}

type fakeQuestionsRepo struct{ s *fakeStore }

func (r *fakeQuestionsRepo) userByID(id int64) *models.User {
	for _, u := range r.s.users {
		if u.ID == id {
			return u
		}
	}
	return nil
}

func (r *fakeQuestionsRepo) Create(ctx context.Context, userID int64, in models.QuestionInput) (*models.SavedQuestion, error) {
	r.s.calls.Add(1)
	if r.s.err != nil {
		return nil, r.s.err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.userByID(userID) == nil {
		return nil, common.ErrForeignKeyViolation
	}
	in = in.WithDefaults()
	created := r.s.tick()
	q := models.SavedQuestion{
		ID: r.s.nextID, UserID: userID, QuestionText: in.QuestionText, Topic: in.Topic,
		Difficulty: in.Difficulty, QuestionType: in.QuestionType, CreatedAt: created,
	}
	r.s.questions = append(r.s.questions, q)
	return &q, nil
}

func (r *fakeQuestionsRepo) sorted() []models.SavedQuestion {
	out := append([]models.SavedQuestion(nil), r.s.questions...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (r *fakeQuestionsRepo) ListByUser(ctx context.Context, userID int64) ([]models.SavedQuestion, error) {
	r.s.calls.Add(1)
	if r.s.err != nil {
		return nil, r.s.err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]models.SavedQuestion, 0)
	for _, q := range r.sorted() {
		if q.UserID == userID {
			out = append(out, q)
		}
	}
	return out, nil
}

func (r *fakeQuestionsRepo) Count(ctx context.Context) (int64, error) {
	r.s.calls.Add(1)
	if r.s.err != nil {
		return 0, r.s.err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return int64(len(r.s.questions)), nil
}

func (r *fakeQuestionsRepo) RecentActivity(ctx context.Context, limit int) ([]models.Activity, error) {
	r.s.calls.Add(1)
	if r.s.err != nil {
		return nil, r.s.err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]models.Activity, 0, limit)
	for _, q := range r.sorted() {
		if len(out) == limit {
			break
		}
		out = append(out, models.Activity{
			UserEmail: r.userByID(q.UserID).Email,
			Question:  questions.Preview(q.QuestionText),
			CreatedAt: q.CreatedAt,
		})
	}
	return out, nil
}

type fakeRepoManager struct {
	s         *fakeStore
	pingAt    time.Time
	pingErr   error
	schema    *repomanager.SchemaReport
	schemaErr error
}

func (m *fakeRepoManager) Users(dbx.DBTX) users.Repository         { return &fakeUsersRepo{s: m.s} }
func (m *fakeRepoManager) Questions(dbx.DBTX) questions.Repository { return &fakeQuestionsRepo{s: m.s} }

func (m *fakeRepoManager) EnsureSchema(context.Context) (*repomanager.SchemaReport, error) {
	m.s.calls.Add(1)
	return m.schema, m.schemaErr
}

func (m *fakeRepoManager) Ping(context.Context) (time.Time, error) {
	m.s.calls.Add(1)
	return m.pingAt, m.pingErr
}

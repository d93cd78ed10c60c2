package dispatch

import (
	"context"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dmitrijs2005/iqube/internal/dbx"
	"github.com/dmitrijs2005/iqube/internal/logging"
	"github.com/dmitrijs2005/iqube/internal/server/auth"
	"github.com/dmitrijs2005/iqube/internal/server/config"
	"github.com/dmitrijs2005/iqube/internal/server/models"
	"github.com/dmitrijs2005/iqube/internal/server/repositories/questions"
	"github.com/dmitrijs2005/iqube/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/iqube/internal/server/repositories/users"
	"github.com/dmitrijs2005/iqube/internal/server/services"
	"github.com/dmitrijs2005/iqube/internal/server/testdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "dispatch-test-secret"

// countingManager counts every repository handed out and every direct
// store call.
type countingManager struct {
	repomanager.RepositoryManager
	calls atomic.Int64
}

func (c *countingManager) Users(db dbx.DBTX) users.Repository {
	c.calls.Add(1)
	return c.RepositoryManager.Users(db)
}

func (c *countingManager) Questions(db dbx.DBTX) questions.Repository {
	c.calls.Add(1)
	return c.RepositoryManager.Questions(db)
}

func (c *countingManager) EnsureSchema(ctx context.Context) (*repomanager.SchemaReport, error) {
	c.calls.Add(1)
	return c.RepositoryManager.EnsureSchema(ctx)
}

func (c *countingManager) Ping(ctx context.Context) (time.Time, error) {
	c.calls.Add(1)
	return c.RepositoryManager.Ping(ctx)
}

type fixture struct {
	d      *Dispatcher
	store  *countingManager
	tokens *auth.TokenIssuer
	close  func() error
}

func newFixture(t *testing.T, opts Options) *fixture {
	t.Helper()

	db := testdb.Open(t)
	rm, err := repomanager.NewSQLRepositoryManager(db, config.DriverSQLite, 5*time.Second)
	require.NoError(t, err)

	cm := &countingManager{RepositoryManager: rm}
	tokens := auth.NewTokenIssuer(testSecret, 24*time.Hour)
	authService := services.NewAuthService(db, cm, auth.NewCredentialHasher(bcrypt.MinCost, 0), tokens, logging.Nop{})
	systemService := services.NewSystemService(cm, "iqube-auth", "test", logging.Nop{})

	return &fixture{
		d:      NewDispatcher(authService, systemService, opts, logging.Nop{}),
		store:  cm,
		tokens: tokens,
		close:  db.Close,
	}
}

func registerAlice(t *testing.T, f *fixture) *services.AuthResult {
	t.Helper()
	res := f.d.Dispatch(context.Background(), OpRegisterUser, Params{
		"email": "alice@example.com", "password": "Secret123!", "firstName": "Alice", "lastName": "Liddell",
	})
	require.True(t, res.Success, "register failed: %+v", res.Error)
	return res.Data.(*services.AuthResult)
}

func TestDispatch_UnknownOperationTouchesNoStore(t *testing.T) {
	f := newFixture(t, Options{})

	res := f.d.Dispatch(context.Background(), "drop_everything", Params{"email": "x"})

	assert.False(t, res.Success)
	require.NotNil(t, res.Error)
	assert.Equal(t, CodeUnknownOperation, res.Error.Code)
	assert.Zero(t, f.store.calls.Load())
}

func TestDispatch_MissingParameters(t *testing.T) {
	f := newFixture(t, Options{})

	tests := []struct {
		op     string
		params Params
	}{
		{op: OpCheckUserExists, params: nil},
		{op: OpAuthenticateUser, params: Params{"email": "alice@example.com"}},
		{op: OpRegisterUser, params: Params{"email": "a@b.c", "password": "Secret123!", "firstName": "A"}},
		{op: OpRegisterUser, params: Params{"email": "", "password": "Secret123!", "firstName": "A", "lastName": "L"}},
		{op: OpSaveUserQuestion, params: Params{"userId": 1}},
		{op: OpSaveUserQuestion, params: Params{"userId": "one", "questionData": map[string]any{}}},
		{op: OpGetUserQuestions, params: Params{"userId": 1.5}},
	}

	for _, tt := range tests {
		t.Run(tt.op, func(t *testing.T) {
			res := f.d.Dispatch(context.Background(), tt.op, tt.params)
			require.NotNil(t, res.Error)
			assert.Equal(t, CodeMissingParameter, res.Error.Code)
		})
	}
	assert.Zero(t, f.store.calls.Load())
}

func TestDispatch_EndToEnd(t *testing.T) {
	f := newFixture(t, Options{})
	ctx := context.Background()

	reg := registerAlice(t, f)
	assert.Equal(t, "alice@example.com", reg.User.Email)

	res := f.d.Dispatch(ctx, OpAuthenticateUser, Params{"email": "alice@example.com", "password": "Secret123!"})
	require.True(t, res.Success)
	login := res.Data.(*services.AuthResult)

	claims, err := f.tokens.Verify(login.Token)
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, claims.UserID)
	assert.Equal(t, "alice@example.com", claims.Email)

	res = f.d.Dispatch(ctx, OpSaveUserQuestion, Params{
		"userId":       float64(reg.User.ID),
		"questionData": map[string]any{"question": "Why test?", "topic": "QA"},
	})
	require.True(t, res.Success, "save failed: %+v", res.Error)
	saved := res.Data.(*services.SavedQuestionResult)
	assert.Positive(t, saved.QuestionID)

	res = f.d.Dispatch(ctx, OpGetUserQuestions, Params{"userId": float64(reg.User.ID)})
	require.True(t, res.Success)
	list := res.Data.([]models.SavedQuestion)
	require.Len(t, list, 1)
	assert.Equal(t, "Why test?", list[0].QuestionText)
	assert.Equal(t, "QA", list[0].Topic)
	assert.Equal(t, saved.QuestionID, list[0].ID)
}

func TestDispatch_AuthErrors(t *testing.T) {
	f := newFixture(t, Options{})
	ctx := context.Background()
	registerAlice(t, f)

	res := f.d.Dispatch(ctx, OpRegisterUser, Params{
		"email": "alice@example.com", "password": "Another1!", "firstName": "A", "lastName": "L",
	})
	assert.Equal(t, CodeUserExists, res.Error.Code)

	res = f.d.Dispatch(ctx, OpAuthenticateUser, Params{"email": "alice@example.com", "password": "nope-nope"})
	assert.Equal(t, CodeInvalidPassword, res.Error.Code)
	assert.Nil(t, res.Data)

	res = f.d.Dispatch(ctx, OpAuthenticateUser, Params{"email": "ghost@example.com", "password": "Secret123!"})
	assert.Equal(t, CodeUserNotFound, res.Error.Code)

	res = f.d.Dispatch(ctx, OpRegisterUser, Params{
		"email": "bob@example.com", "password": "123", "firstName": "B", "lastName": "B",
	})
	assert.Equal(t, CodeInvalidParameter, res.Error.Code)
}

func TestDispatch_CollapsedAuthErrors(t *testing.T) {
	f := newFixture(t, Options{CollapseAuthErrors: true})
	ctx := context.Background()
	registerAlice(t, f)

	wrong := f.d.Dispatch(ctx, OpAuthenticateUser, Params{"email": "alice@example.com", "password": "nope-nope"})
	ghost := f.d.Dispatch(ctx, OpAuthenticateUser, Params{"email": "ghost@example.com", "password": "Secret123!"})

	assert.Equal(t, CodeInvalidCredentials, wrong.Error.Code)
	assert.Equal(t, *wrong.Error, *ghost.Error)
}

func TestDispatch_ForeignKeyViolation(t *testing.T) {
	f := newFixture(t, Options{})

	res := f.d.Dispatch(context.Background(), OpSaveUserQuestion, Params{
		"userId":       float64(404),
		"questionData": map[string]any{"question": "orphan"},
	})
	require.NotNil(t, res.Error)
	assert.Equal(t, CodeForeignKeyViolation, res.Error.Code)
}

func TestDispatch_RequireToken(t *testing.T) {
	f := newFixture(t, Options{RequireToken: true})
	reg := registerAlice(t, f)
	params := Params{"userId": float64(reg.User.ID)}

	res := f.d.Dispatch(context.Background(), OpGetUserQuestions, params)
	assert.Equal(t, CodeUnauthorized, res.Error.Code)

	other := auth.ContextWithClaims(context.Background(), &auth.Claims{UserID: reg.User.ID + 1})
	res = f.d.Dispatch(other, OpGetUserQuestions, params)
	assert.Equal(t, CodeUnauthorized, res.Error.Code)

	claims, err := f.tokens.Verify(reg.Token)
	require.NoError(t, err)
	res = f.d.Dispatch(auth.ContextWithClaims(context.Background(), claims), OpGetUserQuestions, params)
	assert.True(t, res.Success)
}

func TestDispatch_StoreFailureIsSanitized(t *testing.T) {
	f := newFixture(t, Options{})
	require.NoError(t, f.close())

	res := f.d.Dispatch(context.Background(), OpCheckUserExists, Params{"email": "alice@example.com"})

	assert.False(t, res.Success)
	require.NotNil(t, res.Error)
	assert.Equal(t, CodeInternalError, res.Error.Code)
	assert.Equal(t, "internal error", res.Error.Message)
	assert.Len(t, res.Error.Diagnostic, 16)
	assert.NotContains(t, strings.ToLower(res.Error.Message), "sql")
}

func TestDispatch_RecoversPanics(t *testing.T) {
	d := NewDispatcher(nil, nil, Options{}, logging.Nop{})

	res := d.Dispatch(context.Background(), OpCheckUserExists, Params{"email": "alice@example.com"})

	require.NotNil(t, res.Error)
	assert.Equal(t, CodeInternalError, res.Error.Code)
}

func TestDispatch_StatelessOperations(t *testing.T) {
	f := newFixture(t, Options{})
	ctx := context.Background()

	res := f.d.Dispatch(ctx, OpQuestionTopics, nil)
	require.True(t, res.Success)
	assert.Len(t, res.Data.([]models.Topic), 5)

	res = f.d.Dispatch(ctx, OpTestConnection, nil)
	require.True(t, res.Success)
	assert.Equal(t, "connected", res.Data.(*services.ConnectionStatus).Status)

	res = f.d.Dispatch(ctx, OpInitializeSchema, nil)
	require.True(t, res.Success)
	report := res.Data.(*repomanager.SchemaReport)
	assert.Empty(t, report.AppliedVersions)
	assert.Equal(t, int64(1), report.CurrentVersion)

	registerAlice(t, f)
	res = f.d.Dispatch(ctx, OpDatabaseStats, nil)
	require.True(t, res.Success)
	stats := res.Data.(*models.Stats)
	assert.Equal(t, int64(1), stats.TotalUsers)
	assert.Zero(t, stats.TotalQuestions)
	assert.Empty(t, stats.RecentActivity)
}

func TestOperations(t *testing.T) {
	d := NewDispatcher(nil, nil, Options{}, logging.Nop{})
	assert.Len(t, d.Operations(), 9)
	assert.Contains(t, d.Operations(), OpRegisterUser)
}

// Package dispatch routes named operations with a parameter bag to the
// services and folds every outcome, including panics, into a Result.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/dmitrijs2005/iqube/internal/common"
	"github.com/dmitrijs2005/iqube/internal/logging"
	"github.com/dmitrijs2005/iqube/internal/server/auth"
	"github.com/dmitrijs2005/iqube/internal/server/models"
	"github.com/dmitrijs2005/iqube/internal/server/services"
)

// Operation names.
const (
	OpTestConnection   = "test_connection"
	OpCheckUserExists  = "check_user_exists"
	OpAuthenticateUser = "authenticate_user"
	OpRegisterUser     = "register_user"
	OpQuestionTopics   = "get_question_topics"
	OpSaveUserQuestion = "save_user_question"
	OpGetUserQuestions = "get_user_questions"
	OpInitializeSchema = "initialize_database_schema"
	OpDatabaseStats    = "get_database_stats"
)

type handler func(ctx context.Context, p Params) (any, error)

type operation struct {
	required []param
	// owner operations act on the userId parameter and may demand a
	// matching bearer token.
	owner  bool
	handle handler
}

type Options struct {
	// CollapseAuthErrors reports unknown emails and wrong passwords both as
	// INVALID_CREDENTIALS.
	CollapseAuthErrors bool
	// RequireToken makes owner operations require claims for the same user.
	RequireToken bool
}

type Dispatcher struct {
	auth   *services.AuthService
	system *services.SystemService
	opts   Options
	log    logging.Logger
	ops    map[string]operation
}

func NewDispatcher(authService *services.AuthService, systemService *services.SystemService, opts Options, log logging.Logger) *Dispatcher {
	d := &Dispatcher{
		auth:   authService,
		system: systemService,
		opts:   opts,
		log:    log.With("module", "dispatch"),
	}

	d.ops = map[string]operation{
		OpTestConnection:   {handle: d.testConnection},
		OpCheckUserExists:  {required: []param{str("email")}, handle: d.checkUserExists},
		OpAuthenticateUser: {required: []param{str("email"), str("password")}, handle: d.authenticateUser},
		OpRegisterUser: {
			required: []param{str("email"), str("password"), str("firstName"), str("lastName")},
			handle:   d.registerUser,
		},
		OpQuestionTopics:   {handle: d.questionTopics},
		OpSaveUserQuestion: {required: []param{integer("userId"), object("questionData")}, owner: true, handle: d.saveUserQuestion},
		OpGetUserQuestions: {required: []param{integer("userId")}, owner: true, handle: d.getUserQuestions},
		OpInitializeSchema: {handle: d.initializeSchema},
		OpDatabaseStats:    {handle: d.databaseStats},
	}

	return d
}

// Operations lists the recognised operation names in lexical order.
func (d *Dispatcher) Operations() []string {
	names := make([]string, 0, len(d.ops))
	for name := range d.ops {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Dispatch validates and runs one operation. It never panics and always
// returns either a success payload or an Error.
func (d *Dispatcher) Dispatch(ctx context.Context, name string, params Params) (res Result) {
	start := time.Now()

	defer func() {
		if p := recover(); p != nil {
			res = d.internal(ctx, name, fmt.Errorf("panic: %v", p))
		}

		code := Code("")
		if res.Error != nil {
			code = res.Error.Code
		}
		d.log.Info(ctx, "dispatch", "operation", name, "success", res.Success, "code", code,
			"duration", time.Since(start))
	}()

	op, found := d.ops[name]
	if !found {
		return fail(CodeUnknownOperation, fmt.Sprintf("%s: %s", common.ErrUnknownOperation, name))
	}

	if params == nil {
		params = Params{}
	}

	for _, p := range op.required {
		if !params.present(p) {
			return fail(CodeMissingParameter, fmt.Sprintf("missing required parameter: %s", p.name))
		}
	}

	if op.owner && d.opts.RequireToken && !d.ownerAuthorized(ctx, params) {
		return fail(CodeUnauthorized, "a valid token for this user is required")
	}

	data, err := op.handle(ctx, params)
	if err != nil {
		return d.failure(ctx, name, err)
	}
	return ok(data)
}

func (d *Dispatcher) ownerAuthorized(ctx context.Context, p Params) bool {
	claims, found := auth.ClaimsFromContext(ctx)
	if !found {
		return false
	}
	userID, _ := p.Int64("userId")
	return claims.UserID == userID
}

// failure maps service errors to codes. Anything not recognised, including
// store timeouts and outages, becomes INTERNAL_ERROR.
func (d *Dispatcher) failure(ctx context.Context, name string, err error) Result {
	switch {
	case errors.Is(err, common.ErrStoreTimeout), errors.Is(err, common.ErrStoreUnavailable):
		return d.internal(ctx, name, err)
	case errors.Is(err, common.ErrMissingParameter):
		return fail(CodeMissingParameter, err.Error())
	case errors.Is(err, common.ErrInvalidParameter):
		return fail(CodeInvalidParameter, err.Error())
	case errors.Is(err, common.ErrUserExists):
		return fail(CodeUserExists, "a user with this email already exists")
	case errors.Is(err, common.ErrUserNotFound):
		if d.opts.CollapseAuthErrors {
			return fail(CodeInvalidCredentials, "invalid email or password")
		}
		return fail(CodeUserNotFound, "user not found")
	case errors.Is(err, common.ErrInvalidPassword):
		if d.opts.CollapseAuthErrors {
			return fail(CodeInvalidCredentials, "invalid email or password")
		}
		return fail(CodeInvalidPassword, "invalid password")
	case errors.Is(err, common.ErrForeignKeyViolation):
		return fail(CodeForeignKeyViolation, "referenced user does not exist")
	}
	return d.internal(ctx, name, err)
}

// internal logs the cause under a fresh diagnostic id and returns a result
// that carries only that id.
func (d *Dispatcher) internal(ctx context.Context, name string, cause error) Result {
	diagnostic, err := common.MakeRandHexString(8)
	if err != nil {
		diagnostic = "unavailable"
	}
	d.log.Error(ctx, "operation failed", "operation", name, "diagnostic", diagnostic, "error", cause)

	res := fail(CodeInternalError, common.ErrorInternal.Error())
	res.Error.Diagnostic = diagnostic
	return res
}

// --- handlers ---

func (d *Dispatcher) testConnection(ctx context.Context, _ Params) (any, error) {
	return d.system.TestConnection(ctx)
}

func (d *Dispatcher) checkUserExists(ctx context.Context, p Params) (any, error) {
	return d.auth.Exists(ctx, p.String("email"))
}

func (d *Dispatcher) authenticateUser(ctx context.Context, p Params) (any, error) {
	return d.auth.Authenticate(ctx, p.String("email"), p.String("password"))
}

func (d *Dispatcher) registerUser(ctx context.Context, p Params) (any, error) {
	return d.auth.Register(ctx, services.RegisterInput{
		Email:     p.String("email"),
		Password:  p.String("password"),
		FirstName: p.String("firstName"),
		LastName:  p.String("lastName"),
	})
}

func (d *Dispatcher) questionTopics(context.Context, Params) (any, error) {
	return d.auth.Topics(), nil
}

func (d *Dispatcher) saveUserQuestion(ctx context.Context, p Params) (any, error) {
	userID, _ := p.Int64("userId")
	q := p.Object("questionData")

	return d.auth.SaveQuestion(ctx, userID, models.QuestionInput{
		QuestionText: q.String("question"),
		Topic:        q.String("topic"),
		Difficulty:   q.String("difficulty"),
		QuestionType: q.String("questionType"),
	})
}

func (d *Dispatcher) getUserQuestions(ctx context.Context, p Params) (any, error) {
	userID, _ := p.Int64("userId")
	return d.auth.ListQuestions(ctx, userID)
}

func (d *Dispatcher) initializeSchema(ctx context.Context, _ Params) (any, error) {
	return d.system.InitializeSchema(ctx)
}

func (d *Dispatcher) databaseStats(ctx context.Context, _ Params) (any, error) {
	return d.auth.Stats(ctx)
}

package cli

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/iqube/internal/client/client"
	"github.com/dmitrijs2005/iqube/internal/client/config"
	"github.com/dmitrijs2005/iqube/internal/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedCall struct {
	operation string
	params    map[string]any
	token     string
}

type fakeAPI struct {
	calls     []recordedCall
	responses map[string]*wire.Response
	err       error
	token     string
	closed    bool
}

func (f *fakeAPI) Call(_ context.Context, operation string, params map[string]any) (*wire.Response, error) {
	f.calls = append(f.calls, recordedCall{operation: operation, params: params, token: f.token})
	if f.err != nil {
		return nil, f.err
	}
	if resp, ok := f.responses[operation]; ok {
		return resp, nil
	}
	return &wire.Response{Success: true, Data: map[string]any{}}, nil
}

func (f *fakeAPI) SetToken(token string) { f.token = token }
func (f *fakeAPI) Close() error         { f.closed = true; return nil }

func sessionResponse() *wire.Response {
	return &wire.Response{Success: true, Data: map[string]any{
		"token": "tok",
		"user":  map[string]any{"id": float64(7), "email": "alice@example.com"},
	}}
}

func newTestApp(api *fakeAPI, input string) (*App, *bytes.Buffer) {
	var out bytes.Buffer
	cfg := &config.Config{RequestTimeout: time.Second}
	return newApp(cfg, api, strings.NewReader(input), &out), &out
}

// stubInputs feeds answers to both text prompts in order and returns the
// passwords one by one, repeating the last.
func stubInputs(t *testing.T, answers []string, passwords ...string) {
	t.Helper()
	origST, origRT, origGP := getSimpleText, getRequiredText, getPassword
	i := 0
	next := func(_ *bufio.Reader, _ string, _ io.Writer) (string, error) {
		if i >= len(answers) {
			return "", io.EOF
		}
		i++
		return answers[i-1], nil
	}
	getSimpleText, getRequiredText = next, next

	p := 0
	getPassword = func(_ io.Writer, _ string) ([]byte, error) {
		if len(passwords) == 0 {
			return nil, io.EOF
		}
		pw := passwords[min(p, len(passwords)-1)]
		p++
		return []byte(pw), nil
	}
	t.Cleanup(func() {
		getSimpleText = origST
		getRequiredText = origRT
		getPassword = origGP
	})
}

func TestRegister_Success(t *testing.T) {
	api := &fakeAPI{responses: map[string]*wire.Response{"register_user": sessionResponse()}}
	a, out := newTestApp(api, "")
	stubInputs(t, []string{"alice@example.com", "Alice", "Liddell"}, "Secret123!")

	require.NoError(t, a.Register(context.Background()))

	require.Len(t, api.calls, 1)
	assert.Equal(t, "register_user", api.calls[0].operation)
	assert.Equal(t, map[string]any{
		"email": "alice@example.com", "firstName": "Alice", "lastName": "Liddell", "password": "Secret123!",
	}, api.calls[0].params)
	assert.Equal(t, "tok", api.token)
	assert.Equal(t, int64(7), a.userID)
	assert.Contains(t, out.String(), "Registered alice@example.com")
}

func TestRegister_PasswordMismatch(t *testing.T) {
	api := &fakeAPI{}
	a, _ := newTestApp(api, "")
	stubInputs(t, []string{"alice@example.com", "Alice", "Liddell"}, "Secret123!", "Secret124!")

	err := a.Register(context.Background())

	assert.ErrorIs(t, err, ErrPasswordMismatch)
	assert.Empty(t, api.calls)
}

func TestNewApp_AppliesConfiguredToken(t *testing.T) {
	api := &fakeAPI{}
	cfg := &config.Config{AccessToken: "preset"}

	newApp(cfg, api, strings.NewReader(""), io.Discard)

	assert.Equal(t, "preset", api.token)
}

func TestLogin_OperationError(t *testing.T) {
	api := &fakeAPI{responses: map[string]*wire.Response{
		"authenticate_user": {Error: &wire.ErrorBody{Code: "INVALID_PASSWORD", Message: "invalid password"}},
	}}
	a, _ := newTestApp(api, "")
	stubInputs(t, []string{"alice@example.com"}, "wrong")

	err := a.Login(context.Background())

	var opErr *OperationError
	require.ErrorAs(t, err, &opErr)
	assert.Equal(t, "INVALID_PASSWORD", opErr.Body.Code)
	assert.False(t, a.isLoggedIn())
	assert.Empty(t, api.token)
}

func TestLogin_DropsStaleToken(t *testing.T) {
	api := &fakeAPI{responses: map[string]*wire.Response{
		"authenticate_user": {Error: &wire.ErrorBody{Code: "INVALID_PASSWORD", Message: "invalid password"}},
	}}
	a, _ := newTestApp(api, "")
	a.api.SetToken("stale")
	a.email, a.userID = "alice@example.com", 7
	stubInputs(t, []string{"alice@example.com"}, "wrong")

	require.Error(t, a.Login(context.Background()))

	require.Len(t, api.calls, 1)
	assert.Empty(t, api.calls[0].token, "login must not send the previous token")
	assert.False(t, a.isLoggedIn())
}

func TestLoginListLogout(t *testing.T) {
	api := &fakeAPI{responses: map[string]*wire.Response{"authenticate_user": sessionResponse()}}
	a, _ := newTestApp(api, "")
	stubInputs(t, []string{"alice@example.com"}, "Secret123!")
	ctx := context.Background()

	require.NoError(t, a.Login(ctx))
	require.NoError(t, a.execute(ctx, "list", nil))
	assert.Equal(t, recordedCall{operation: "get_user_questions", params: map[string]any{"userId": int64(7)}, token: "tok"}, api.calls[1])

	a.Logout()
	assert.Empty(t, api.token)
	assert.ErrorIs(t, a.execute(ctx, "list", nil), client.ErrNotLoggedIn)
}

func TestSave_SkipsEmptyFields(t *testing.T) {
	api := &fakeAPI{}
	a, _ := newTestApp(api, "")
	a.email, a.userID = "alice@example.com", 7
	stubInputs(t, []string{"Why test?", "QA", "", ""})

	require.NoError(t, a.execute(context.Background(), "save", nil))

	require.Len(t, api.calls, 1)
	assert.Equal(t, "save_user_question", api.calls[0].operation)
	assert.Equal(t, map[string]any{"question": "Why test?", "topic": "QA"}, api.calls[0].params["questionData"])
}

func TestRawCall(t *testing.T) {
	api := &fakeAPI{}
	a, _ := newTestApp(api, "")
	ctx := context.Background()

	require.NoError(t, a.execute(ctx, "call", []string{"check_user_exists", `{"email":"a@b.c"}`}))
	assert.Equal(t, map[string]any{"email": "a@b.c"}, api.calls[0].params)

	assert.Error(t, a.execute(ctx, "call", nil))
	assert.Error(t, a.execute(ctx, "call", []string{"x", "[1,2]"}))
}

func TestRun_SingleCommand(t *testing.T) {
	api := &fakeAPI{err: client.ErrUnavailable}
	a, out := newTestApp(api, "")

	code := a.Run(context.Background(), []string{"topics"})

	assert.Equal(t, 1, code)
	assert.Contains(t, out.String(), "server unavailable")
	assert.True(t, api.closed)
}

func TestRun_UnknownCommand(t *testing.T) {
	a, out := newTestApp(&fakeAPI{}, "")

	assert.Equal(t, 1, a.Run(context.Background(), []string{"frobnicate"}))
	assert.Contains(t, out.String(), "unknown command")
}

func TestRoot_REPL(t *testing.T) {
	api := &fakeAPI{responses: map[string]*wire.Response{
		"get_question_topics": {Success: true, Data: []any{map[string]any{"id": float64(1), "name": "Business & AI"}}},
	}}
	a, out := newTestApp(api, "help\n\ntopics\ncall test_connection {}\nwhoami\nexit\nping\n")

	a.Root(context.Background())

	require.Len(t, api.calls, 2)
	assert.Equal(t, "get_question_topics", api.calls[0].operation)
	assert.Equal(t, "test_connection", api.calls[1].operation)
	assert.Contains(t, out.String(), "Business & AI")
	assert.Contains(t, out.String(), client.ErrNotLoggedIn.Error())
	assert.Contains(t, out.String(), "Bye!")
}

func TestOperationError_Message(t *testing.T) {
	err := &OperationError{Body: wire.ErrorBody{Code: "INTERNAL_ERROR", Message: "internal error", Diagnostic: "abcd"}}
	assert.Equal(t, "INTERNAL_ERROR: internal error (diagnostic abcd)", err.Error())
	assert.False(t, errors.Is(err, client.ErrUnavailable))
}

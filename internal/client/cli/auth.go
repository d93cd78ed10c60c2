package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/iqube/internal/client/client"
	"github.com/dmitrijs2005/iqube/internal/common"
)

// Input helpers, swapped in tests.
var (
	getSimpleText   = GetSimpleText
	getRequiredText = GetRequiredText
	getPassword     = GetPassword
)

var ErrPasswordMismatch = errors.New("passwords do not match")

// Register prompts for the account fields and a hidden password, creates
// the account and starts a session for it.
func (a *App) Register(ctx context.Context) error {
	params := map[string]any{}
	for _, field := range []struct{ key, prompt string }{
		{"email", "Enter email"},
		{"firstName", "Enter first name"},
		{"lastName", "Enter last name"},
	} {
		value, err := getRequiredText(a.reader, field.prompt, a.out)
		if err != nil {
			return err
		}
		params[field.key] = value
	}

	password, err := getPassword(a.out, "Enter password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	repeated, err := getPassword(a.out, "Repeat password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(repeated)

	if !bytes.Equal(password, repeated) {
		return ErrPasswordMismatch
	}
	params["password"] = string(password)

	a.Logout()
	data, err := a.call(ctx, "register_user", params)
	if err != nil {
		return err
	}
	if err := a.startSession(data); err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Registered %s (id %d)\n", a.email, a.userID)
	return nil
}

// Login prompts for credentials and starts a session on success.
func (a *App) Login(ctx context.Context) error {
	email, err := getRequiredText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out, "Enter password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	a.Logout()
	data, err := a.call(ctx, "authenticate_user", map[string]any{"email": email, "password": string(password)})
	if err != nil {
		return err
	}
	if err := a.startSession(data); err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Logged in as %s\n", a.email)
	return nil
}

// Logout forgets the session token.
func (a *App) Logout() {
	a.api.SetToken("")
	a.email, a.userID = "", 0
}

// startSession reads {user, token} and keeps both for later calls.
func (a *App) startSession(data any) error {
	m, ok := data.(map[string]any)
	if !ok {
		return client.ErrMalformedReply
	}
	token, _ := m["token"].(string)
	user, _ := m["user"].(map[string]any)
	id, _ := user["id"].(float64)
	email, _ := user["email"].(string)
	if token == "" || id <= 0 {
		return client.ErrMalformedReply
	}

	a.api.SetToken(token)
	a.email, a.userID = email, int64(id)
	return nil
}

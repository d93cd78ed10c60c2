package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/iqube/internal/client/client"
)

func (a *App) execute(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "help":
		a.help()
		return nil
	case "register":
		return a.Register(ctx)
	case "login":
		return a.Login(ctx)
	case "logout":
		a.Logout()
		return nil
	case "whoami":
		if !a.isLoggedIn() {
			return client.ErrNotLoggedIn
		}
		fmt.Fprintf(a.out, "%s (id %d)\n", a.email, a.userID)
		return nil
	case "topics":
		return a.show(ctx, "get_question_topics", nil)
	case "save":
		return a.save(ctx)
	case "list":
		if !a.isLoggedIn() {
			return client.ErrNotLoggedIn
		}
		return a.show(ctx, "get_user_questions", map[string]any{"userId": a.userID})
	case "stats":
		return a.show(ctx, "get_database_stats", nil)
	case "ping":
		return a.show(ctx, "test_connection", nil)
	case "schema":
		return a.show(ctx, "initialize_database_schema", nil)
	case "call":
		return a.rawCall(ctx, args)
	}
	return fmt.Errorf("unknown command: %s", cmd)
}

func (a *App) help() {
	fmt.Fprintln(a.out, "Available commands: register, login, logout, whoami, topics, save, list, stats, ping, schema,")
	fmt.Fprintln(a.out, "  call <operation> [json-params], exit")
}

func (a *App) show(ctx context.Context, operation string, params map[string]any) error {
	data, err := a.call(ctx, operation, params)
	if err != nil {
		return err
	}
	return a.print(data)
}

// save prompts for a question and stores it for the logged-in user.
func (a *App) save(ctx context.Context) error {
	if !a.isLoggedIn() {
		return client.ErrNotLoggedIn
	}

	text, err := getRequiredText(a.reader, "Enter question", a.out)
	if err != nil {
		return err
	}

	question := map[string]any{"question": text}
	for _, field := range []struct{ key, prompt string }{
		{"topic", "Enter topic"},
		{"difficulty", "Enter difficulty (empty for medium)"},
		{"questionType", "Enter question type (empty for text)"},
	} {
		value, err := getSimpleText(a.reader, field.prompt, a.out)
		if err != nil {
			return err
		}
		if value != "" {
			question[field.key] = value
		}
	}

	return a.show(ctx, "save_user_question", map[string]any{"userId": a.userID, "questionData": question})
}

// rawCall runs call <operation> [json-params].
func (a *App) rawCall(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: call <operation> [json-params]")
	}

	var params map[string]any
	if len(args) > 1 {
		if err := json.Unmarshal([]byte(args[1]), &params); err != nil {
			return fmt.Errorf("params must be a JSON object: %w", err)
		}
	}

	return a.show(ctx, args[0], params)
}

package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/iqube/internal/client/client"
	"github.com/dmitrijs2005/iqube/internal/client/config"
	"github.com/dmitrijs2005/iqube/internal/wire"
)

type App struct {
	config *config.Config
	api    client.Client
	reader *bufio.Reader
	out    io.Writer

	// session
	email  string
	userID int64
}

func NewApp(c *config.Config) (*App, error) {
	apiClient, err := client.NewDispatchClient(c.ServerEndpointAddr)
	if err != nil {
		return nil, err
	}
	return newApp(c, apiClient, os.Stdin, os.Stdout), nil
}

func newApp(c *config.Config, api client.Client, in io.Reader, out io.Writer) *App {
	if c.AccessToken != "" {
		api.SetToken(c.AccessToken)
	}
	return &App{config: c, api: api, reader: bufio.NewReader(in), out: out}
}

// Run executes args as a single command, or starts the REPL when args is
// empty. It returns the process exit code.
func (a *App) Run(ctx context.Context, args []string) int {
	defer a.api.Close()

	if len(args) == 0 {
		a.Root(ctx)
		return 0
	}

	if err := a.execute(ctx, args[0], args[1:]); err != nil {
		fmt.Fprintln(a.out, "Error:", err)
		return 1
	}
	return 0
}

func (a *App) isLoggedIn() bool {
	return a.userID != 0
}

// call runs one operation under the configured timeout and unwraps the
// envelope: a failed operation becomes an *OperationError.
func (a *App) call(ctx context.Context, operation string, params map[string]any) (any, error) {
	if a.config.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.config.RequestTimeout)
		defer cancel()
	}

	resp, err := a.api.Call(ctx, operation, params)
	if err != nil {
		return nil, err
	}
	if !resp.Success {
		if resp.Error == nil {
			return nil, client.ErrMalformedReply
		}
		return nil, &OperationError{Body: *resp.Error}
	}
	return resp.Data, nil
}

func (a *App) print(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// OperationError is a failure reported inside the response envelope.
type OperationError struct {
	Body wire.ErrorBody
}

func (e *OperationError) Error() string {
	if e.Body.Diagnostic != "" {
		return fmt.Sprintf("%s: %s (diagnostic %s)", e.Body.Code, e.Body.Message, e.Body.Diagnostic)
	}
	return fmt.Sprintf("%s: %s", e.Body.Code, e.Body.Message)
}

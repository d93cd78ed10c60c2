package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

func (a *App) prompt() string {
	if a.isLoggedIn() {
		return fmt.Sprintf("iqube (%s)> ", a.email)
	}
	return "iqube> "
}

// Root runs the REPL until exit or end of input.
func (a *App) Root(ctx context.Context) {
	fmt.Fprintln(a.out, "Welcome to iqube CLI (type 'help' for commands)")

	for {
		fmt.Fprint(a.out, a.prompt())

		line, err := a.reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return
		}

		cmd, rest, _ := strings.Cut(strings.TrimSpace(line), " ")
		if cmd == "" {
			continue
		}

		if cmd == "exit" || cmd == "quit" {
			fmt.Fprintln(a.out, "Bye!")
			return
		}

		var args []string
		if cmd == "call" {
			// keep the JSON params as one argument
			op, params, _ := strings.Cut(strings.TrimSpace(rest), " ")
			if op != "" {
				args = append(args, op)
			}
			if params = strings.TrimSpace(params); params != "" {
				args = append(args, params)
			}
		}

		if err := a.execute(ctx, cmd, args); err != nil {
			fmt.Fprintln(a.out, "Error:", err)
		}
	}
}

package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// ErrEmptyInput is returned by GetRequiredText when every attempt was blank.
var ErrEmptyInput = errors.New("value is required")

// requiredAttempts bounds how often GetRequiredText re-prompts.
const requiredAttempts = 3

// readPassword is swapped in tests so they never touch the terminal.
var readPassword = term.ReadPassword

// GetSimpleText writes "prompt: " to w and reads one line from reader with
// surrounding whitespace trimmed. A final line without a newline is
// returned as is; io.EOF is reported only when nothing was read.
func GetSimpleText(reader *bufio.Reader, prompt string, w io.Writer) (string, error) {
	if _, err := fmt.Fprint(w, prompt+": "); err != nil {
		return "", err
	}
	line, err := reader.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && len(line) > 0) {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// GetRequiredText is GetSimpleText that asks again on blank input.
func GetRequiredText(reader *bufio.Reader, prompt string, w io.Writer) (string, error) {
	for i := 0; i < requiredAttempts; i++ {
		value, err := GetSimpleText(reader, prompt, w)
		if err != nil {
			return "", err
		}
		if value != "" {
			return value, nil
		}
		fmt.Fprintln(w, "A value is required.")
	}
	return "", fmt.Errorf("%s: %w", prompt, ErrEmptyInput)
}

// GetPassword reads a password from the terminal without echo. The caller
// should wipe the returned slice once done with it.
func GetPassword(w io.Writer, prompt string) ([]byte, error) {
	if _, err := fmt.Fprint(w, prompt+": "); err != nil {
		return nil, err
	}
	pw, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(w)
	if err != nil {
		return nil, err
	}
	return pw, nil
}

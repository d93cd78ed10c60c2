// Package cli provides the iqube command-line client.
//
// Invoked with a command (register, login, topics, save, list, stats, ping,
// schema, call) it runs that command once. Invoked without one it starts an
// interactive REPL that keeps the session token between commands, so
// login followed by save or list acts on the logged-in user.
//
// Passwords are read from the terminal without echo (golang.org/x/term).
package cli

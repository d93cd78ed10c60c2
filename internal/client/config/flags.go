package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/iqube/internal/flagx"
)

// Flags understood by parseFlags; the CLI strips them before reading its
// command words.
var Flags = []string{"-a", "-t", "-token"}

// parseFlags overlays cfg with command-line flags:
//
//	-a string      dispatch server address
//	-t int         request timeout in seconds
//	-token string  bearer token sent with every call
func parseFlags(cfg *Config) {
	fs := flag.NewFlagSet("iqube-cli", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerEndpointAddr, "a", cfg.ServerEndpointAddr, "dispatch server address")
	fs.StringVar(&cfg.AccessToken, "token", cfg.AccessToken, "bearer token sent with every call")
	timeout := fs.Int("t", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")

	if err := fs.Parse(flagx.FilterArgs(os.Args[1:], Flags)); err != nil {
		panic(err)
	}

	fs.Visit(func(f *flag.Flag) {
		if f.Name == "t" {
			cfg.RequestTimeout = time.Duration(*timeout) * time.Second
		}
	})
}

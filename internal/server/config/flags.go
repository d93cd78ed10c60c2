package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/iqube/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags:
//
//	-a string        gRPC bind address (e.g., ":50051")
//	-driver string   database driver, pgx or sqlite
//	-d string        database DSN
//	-s string        JWT HMAC secret key
//	-timeout int     store operation timeout, seconds
//	-cost int        bcrypt cost
//	-l string        log level
//	-env string      environment (development, production)
//
// os.Args is filtered through flagx.FilterArgs first so flags owned by
// other components do not break parsing.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-driver", "-d", "-s", "-timeout", "-cost", "-l", "-env"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.GRPCAddress, "a", config.GRPCAddress, "address and port to run server")
	fs.StringVar(&config.DatabaseDriver, "driver", config.DatabaseDriver, "database driver (pgx, sqlite)")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	timeout := fs.Int("timeout", int(config.ConnectionTimeout.Seconds()), "store operation timeout (in seconds)")
	fs.IntVar(&config.BcryptCost, "cost", config.BcryptCost, "bcrypt cost")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")
	fs.StringVar(&config.Environment, "env", config.Environment, "environment")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	// only an explicit -timeout overrides; sub-second JSON values survive
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "timeout" {
			config.ConnectionTimeout = time.Duration(*timeout) * time.Second
		}
	})
}

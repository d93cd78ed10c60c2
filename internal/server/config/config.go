// Package config handles configuration for the server component,
// including defaults, JSON overlay, environment (.env) and command-line flags.
package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Supported values of Config.DatabaseDriver.
const (
	DriverPostgres = "pgx"
	DriverSQLite   = "sqlite"
)

// EnvProduction marks the production posture.
const EnvProduction = "production"

// DevSecretKey is the signing secret used when none is configured outside
// production. It must never reach a production deployment.
const DevSecretKey = "dev-insecure-secret"

var (
	ErrMissingSecret  = errors.New("signing secret must be configured in production")
	ErrInvalidCost    = errors.New("bcrypt cost out of range")
	ErrUnknownDriver  = errors.New("unknown database driver")
	ErrInvalidTimeout = errors.New("connection timeout must be positive")
)

// Config holds runtime settings for the iQube auth server. It is built once
// by LoadConfig and treated as read-only afterwards.
//
// Fields:
//   - GRPCAddress: bind address for the dispatch gRPC endpoint.
//   - DatabaseDriver: "pgx" (PostgreSQL) or "sqlite".
//   - DatabaseDSN: full DSN; when empty it is assembled from the Database* parts.
//   - ConnectionTimeout: per store operation; also the connect timeout.
//   - SecretKey: HMAC secret for signing JWTs (HS256).
//   - TokenValidity: lifetime of issued tokens.
//   - BcryptCost: password hashing cost factor.
//   - CollapseAuthErrors: report USER_NOT_FOUND and INVALID_PASSWORD as INVALID_CREDENTIALS.
//   - RequireToken: user-data operations need a bearer token for the same user.
type Config struct {
	GRPCAddress        string
	DatabaseDriver     string
	DatabaseDSN        string
	DatabaseHost       string
	DatabasePort       int
	DatabaseName       string
	DatabaseUser       string
	DatabasePassword   string
	ConnectionTimeout  time.Duration
	SecretKey          string
	TokenValidity      time.Duration
	BcryptCost         int
	LogLevel           string
	ServerName         string
	ServerVersion      string
	Environment        string
	CollapseAuthErrors bool
	RequireToken       bool
}

// LoadDefaults populates Config with development defaults.
func (c *Config) LoadDefaults() {
	c.GRPCAddress = ":50051"
	c.DatabaseDriver = DriverPostgres
	c.DatabaseHost = "localhost"
	c.DatabasePort = 5432
	c.DatabaseName = "iqube"
	c.DatabaseUser = "postgres"
	c.DatabasePassword = "postgres"
	c.ConnectionTimeout = 30 * time.Second
	c.TokenValidity = 24 * time.Hour
	c.BcryptCost = 12
	c.LogLevel = "info"
	c.ServerName = "iqube-auth"
	c.ServerVersion = "1.0.0"
	c.Environment = "development"
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file, the environment (including a .env file) and
// finally command-line flags. The result is validated before it is returned.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	if err := parseEnv(cfg, ".env"); err != nil {
		return nil, err
	}
	parseFlags(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// IsProduction reports whether the production posture is active.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, EnvProduction)
}

// UsesDevSecret reports whether tokens are signed with DevSecretKey.
func (c *Config) UsesDevSecret() bool {
	return c.SecretKey == DevSecretKey
}

// Validate checks the settings. Outside production an empty secret is
// replaced by DevSecretKey; in production it is an error.
func (c *Config) Validate() error {
	if c.SecretKey == "" || c.UsesDevSecret() {
		if c.IsProduction() {
			return ErrMissingSecret
		}
		c.SecretKey = DevSecretKey
	}

	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("%w: %d", ErrInvalidCost, c.BcryptCost)
	}

	if c.DatabaseDriver != DriverPostgres && c.DatabaseDriver != DriverSQLite {
		return fmt.Errorf("%w: %q", ErrUnknownDriver, c.DatabaseDriver)
	}

	if c.ConnectionTimeout <= 0 {
		return ErrInvalidTimeout
	}

	return nil
}

// DSN returns DatabaseDSN if set, otherwise a DSN assembled for the driver.
func (c *Config) DSN() string {
	if c.DatabaseDSN != "" {
		return c.DatabaseDSN
	}

	if c.DatabaseDriver == DriverSQLite {
		return "file:" + c.DatabaseName + ".db?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	}

	q := url.Values{}
	q.Set("sslmode", "disable")
	q.Set("connect_timeout", strconv.Itoa(int(c.ConnectionTimeout.Seconds())))

	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.DatabaseUser, c.DatabasePassword),
		Host:     net.JoinHostPort(c.DatabaseHost, strconv.Itoa(c.DatabasePort)),
		Path:     "/" + c.DatabaseName,
		RawQuery: q.Encode(),
	}
	return u.String()
}

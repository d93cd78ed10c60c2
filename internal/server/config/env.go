package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// parseEnv loads envFile (if it exists) into the process environment and
// then overlays recognised variables onto config. Variables already set in
// the environment win over the file.
func parseEnv(config *Config, envFile string) error {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	lookupString("GRPC_ADDRESS", &config.GRPCAddress)
	lookupString("DB_DRIVER", &config.DatabaseDriver)
	lookupString("DATABASE_DSN", &config.DatabaseDSN)
	lookupString("DB_HOST", &config.DatabaseHost)
	lookupString("DB_NAME", &config.DatabaseName)
	lookupString("DB_USER", &config.DatabaseUser)
	lookupString("DB_PASSWORD", &config.DatabasePassword)
	lookupString("JWT_SECRET", &config.SecretKey)
	lookupString("LOG_LEVEL", &config.LogLevel)
	lookupString("SERVER_NAME", &config.ServerName)
	lookupString("SERVER_VERSION", &config.ServerVersion)
	lookupString("APP_ENV", &config.Environment)

	if err := lookupInt("DB_PORT", &config.DatabasePort); err != nil {
		return err
	}
	if err := lookupInt("BCRYPT_COST", &config.BcryptCost); err != nil {
		return err
	}
	if err := lookupSeconds("CONNECTION_TIMEOUT", &config.ConnectionTimeout); err != nil {
		return err
	}
	if err := lookupDuration("TOKEN_VALIDITY", &config.TokenValidity); err != nil {
		return err
	}
	if err := lookupBool("COLLAPSE_AUTH_ERRORS", &config.CollapseAuthErrors); err != nil {
		return err
	}
	if err := lookupBool("REQUIRE_TOKEN", &config.RequireToken); err != nil {
		return err
	}

	return nil
}

func lookupString(key string, dst *string) {
	if v, ok := os.LookupEnv(key); ok {
		*dst = v
	}
}

func lookupInt(key string, dst *int) error {
	v, ok := os.LookupEnv(key)
	if !ok {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = n
	return nil
}

func lookupBool(key string, dst *bool) error {
	v, ok := os.LookupEnv(key)
	if !ok {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = b
	return nil
}

// lookupSeconds reads a whole number of seconds.
func lookupSeconds(key string, dst *time.Duration) error {
	v, ok := os.LookupEnv(key)
	if !ok {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = time.Duration(n) * time.Second
	return nil
}

func lookupDuration(key string, dst *time.Duration) error {
	v, ok := os.LookupEnv(key)
	if !ok {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = d
	return nil
}

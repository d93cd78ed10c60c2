package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/iqube/internal/flagx"
	"github.com/dmitrijs2005/iqube/internal/timex"
)

// JsonConfig is the on-disk shape of the optional JSON config file. Only
// fields present in the file override the current values.
type JsonConfig struct {
	GRPCAddress        *string         `json:"grpc_address"`
	DatabaseDriver     *string         `json:"database_driver"`
	DatabaseDSN        *string         `json:"database_dsn"`
	DatabaseHost       *string         `json:"database_host"`
	DatabasePort       *int            `json:"database_port"`
	DatabaseName       *string         `json:"database_name"`
	DatabaseUser       *string         `json:"database_user"`
	DatabasePassword   *string         `json:"database_password"`
	ConnectionTimeout  *timex.Duration `json:"connection_timeout"`
	SecretKey          *string         `json:"secret_key"`
	TokenValidity      *timex.Duration `json:"token_validity"`
	BcryptCost         *int            `json:"bcrypt_cost"`
	LogLevel           *string         `json:"log_level"`
	ServerName         *string         `json:"server_name"`
	ServerVersion      *string         `json:"server_version"`
	Environment        *string         `json:"environment"`
	CollapseAuthErrors *bool           `json:"collapse_auth_errors"`
	RequireToken       *bool           `json:"require_token"`
}

// parseJson loads the file named by -c/-config, if any, into config.
// An unreadable file or invalid JSON panics.
func parseJson(config *Config) {
	jsonConfigFile := flagx.ConfigPath(os.Args[1:])
	if jsonConfigFile == "" {
		return
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	setIf(&config.GRPCAddress, c.GRPCAddress)
	setIf(&config.DatabaseDriver, c.DatabaseDriver)
	setIf(&config.DatabaseDSN, c.DatabaseDSN)
	setIf(&config.DatabaseHost, c.DatabaseHost)
	setIf(&config.DatabasePort, c.DatabasePort)
	setIf(&config.DatabaseName, c.DatabaseName)
	setIf(&config.DatabaseUser, c.DatabaseUser)
	setIf(&config.DatabasePassword, c.DatabasePassword)
	setIf(&config.SecretKey, c.SecretKey)
	setIf(&config.BcryptCost, c.BcryptCost)
	setIf(&config.LogLevel, c.LogLevel)
	setIf(&config.ServerName, c.ServerName)
	setIf(&config.ServerVersion, c.ServerVersion)
	setIf(&config.Environment, c.Environment)
	setIf(&config.CollapseAuthErrors, c.CollapseAuthErrors)
	setIf(&config.RequireToken, c.RequireToken)

	if c.ConnectionTimeout != nil {
		config.ConnectionTimeout = c.ConnectionTimeout.Duration
	}
	if c.TokenValidity != nil {
		config.TokenValidity = c.TokenValidity.Duration
	}
}

func setIf[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

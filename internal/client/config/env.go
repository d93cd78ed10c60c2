package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Environment variables read by parseEnv.
const (
	EnvServerAddr = "IQUBE_SERVER_ADDR"
	EnvTimeout    = "IQUBE_TIMEOUT"
	EnvToken      = "IQUBE_TOKEN"
)

func parseEnv(cfg *Config) error {
	if v, ok := os.LookupEnv(EnvServerAddr); ok {
		cfg.ServerEndpointAddr = v
	}
	if v, ok := os.LookupEnv(EnvToken); ok {
		cfg.AccessToken = v
	}
	if v, ok := os.LookupEnv(EnvTimeout); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvTimeout, err)
		}
		cfg.RequestTimeout = time.Duration(n) * time.Second
	}
	return nil
}

package config

import (
	"fmt"
	"time"
)

// Config holds runtime settings for the iqube CLI.
//
// AccessToken, when set, is attached to every call before any login, which
// lets scripts use token-protected operations through "call".
type Config struct {
	ServerEndpointAddr string
	RequestTimeout     time.Duration
	AccessToken        string
}

func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "127.0.0.1:50051"
	c.RequestTimeout = 10 * time.Second
}

// LoadConfig applies defaults, then overlays JSON (-c/-config), the
// environment and finally command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	if err := parseEnv(cfg); err != nil {
		panic(err)
	}
	parseFlags(cfg)
	return cfg
}

// String masks the token so the config can be printed safely.
func (c *Config) String() string {
	token := ""
	if c.AccessToken != "" {
		token = "***"
	}
	return fmt.Sprintf("server=%s timeout=%s token=%q", c.ServerEndpointAddr, c.RequestTimeout, token)
}

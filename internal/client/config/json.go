package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/iqube/internal/flagx"
	"github.com/dmitrijs2005/iqube/internal/timex"
)

// JsonConfig is the on-disk shape; absent keys leave Config untouched.
type JsonConfig struct {
	ServerEndpointAddr *string         `json:"server_endpoint_addr"`
	RequestTimeout     *timex.Duration `json:"request_timeout"`
	AccessToken        *string         `json:"access_token"`
}

// parseJson overlays cfg with the file named by -c/-config. It panics on
// read or unmarshal errors.
func parseJson(cfg *Config) {
	path := flagx.ConfigPath(os.Args[1:])
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.ServerEndpointAddr != nil {
		cfg.ServerEndpointAddr = *jc.ServerEndpointAddr
	}
	if jc.RequestTimeout != nil {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.AccessToken != nil {
		cfg.AccessToken = *jc.AccessToken
	}
}

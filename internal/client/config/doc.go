// Package config loads runtime configuration for the iqube CLI.
//
// Later sources override earlier ones: built-in defaults, the JSON file
// named by -c or -config, IQUBE_* environment variables, flags.
//
//	{
//	  "server_endpoint_addr": "127.0.0.1:50051",
//	  "request_timeout": "10s",
//	  "access_token": ""
//	}
package config

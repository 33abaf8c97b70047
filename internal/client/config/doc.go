// Package config loads runtime configuration for the smartpool CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected via flags: -c or -config.
//  3. Command-line flags, which override earlier values.
//
// Supported flags
//
//	-s string          local data file (default: <user config dir>/smartpool/user_data.json)
//	-l string          interface language: pt, en or es
//	-t int             remote request timeout (seconds)
//	-v string          log level: debug, info, warn, error
//	-log-format string text or json
//
// # JSON schema
//
// request_timeout may be a string like "15s" or a number of seconds:
//
//	{
//	  "store_path": "/tmp/smartpool.json",
//	  "language": "en",
//	  "request_timeout": "15s",
//	  "log_level": "info",
//	  "log_format": "json"
//	}
//
// Remote credentials are not part of Config. They are resolved at start-up
// by ResolveRemote from the environment, a .env file, firebase_config.json
// or the local preferences, and their absence only disables remote sync.
package config

// Package config loads runtime configuration for the hrctl operator CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected with -c or -config.
//  3. Command-line flags, which override earlier values.
//
// Supported flags
//
//	-a string   base URL of the hrkeeper server
//	-t int      request timeout (seconds)
//	-s string   session token file
//
// # JSON schema
//
// Timeouts use timex.Duration, so they can be strings like "30s" or integer
// nanoseconds:
//
//	{
//	  "server_url": "https://hr.example.com",
//	  "request_timeout": "30s",
//	  "session_file": "/home/ops/.hrkeeper-session"
//	}
package config

// Package config loads runtime configuration for the task planner CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string   base URL of the backend REST endpoint
//	-i int      online status check interval (seconds)
//	-f string   path of the local cache database
//
// # JSON schema
//
// The JSON loader uses timex.Duration for intervals, so values can be either
// strings like "3s" or integer nanoseconds:
//
//	{
//	  "server_endpoint_addr": "http://127.0.0.1:8000",
//	  "online_check_interval": "3s",
//	  "cache_file": "taskplanner.db"
//	}
//
// This package does not read environment variables; use the JSON file or
// flags to configure values.
package config

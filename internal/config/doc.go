// Package config loads runtime configuration for the keepsake CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// # JSON schema
//
// The JSON loader uses timex.Duration for intervals, so values can be either
// strings like "5s" or integer nanoseconds:
//
//	{
//	  "server_base_url": "https://keepsake.example",
//	  "database_path": "/data/keepsake.db",
//	  "blob_dir": "/data/photos",
//	  "log_file": "/data/keepsake.log",
//	  "probe_interval": "5s",
//	  "upload_timeout": "30s",
//	  "delete_after_sync": ["message"]
//	}
package config

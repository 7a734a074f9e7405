// Package config provides centralized configuration management for the dashboard
// and the dataset generator.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//	1. Environment variables (highest priority)
//	2. A YAML configuration file (config.yaml, configs/config.yaml or DASH_CONFIG_FILE)
//	3. Default values (lowest priority)
//
// # Environment Variables
//
// All environment variables use the DASH_ prefix followed by the section name:
//
//	DASH_SERVER_PORT=8080
//	DASH_PATHS_DATA_DIR=/srv/dashboard/data
//	DASH_LOGGING_LEVEL=debug
//	DASH_SESSION_MAX_SESSIONS=512
//	DASH_TELEMETRY_TRACE_EXPORTER=stdout
//
// # Path Management
//
// Paths resolves the data and logs directories against a base directory
// (the working directory unless DASH_PATHS_BASE_DIR is set):
//
//	paths, err := cfg.GetPaths()
//	tracking := paths.GetDatasetPath(domain.EntityTracking)
package config

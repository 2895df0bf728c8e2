// Package config provides centralized configuration management for the
// session analysis server. It handles loading configuration from multiple
// sources, validation, and a type-safe API for accessing configuration
// values throughout the application.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//	1. Environment variables (highest priority)
//	2. Configuration files (YAML)
//	3. Default values (lowest priority)
//
// # Environment Variables
//
// All environment variables follow the pattern PULSE_* for namespacing:
//
//	PULSE_SERVER_PORT=8080
//	PULSE_LOGGING_LEVEL=info
//	PULSE_ANALYSIS_SPLIT_STRATEGY=slopechange
//	PULSE_ANALYSIS_WINDOW_SIZE=10
//
// # Usage
//
// Load configuration at application startup:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
package config

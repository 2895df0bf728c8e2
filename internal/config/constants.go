package config

import (
	"time"

	"sessionpulse/pkg/contracts"
)

// Application constants for the SessionPulse server.
const (
	// Application Info
	AppName    = "SessionPulse"
	AppVersion = contracts.Version

	// Rate Limiting
	DefaultRateLimit = 100 // requests per second
	DefaultBurstSize = 50

	// Network Timeouts
	DefaultHTTPTimeout = 30 * time.Second

	// File Paths (relative to executable)
	DefaultDataDir = "data"
	DefaultLogsDir = "logs"

	// Upload Limits
	DefaultMaxUploadBytes = 32 << 20
)

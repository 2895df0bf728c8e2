package services

import "errors"

// Analysis service errors
var (
	// Dataset state errors
	ErrNoDatasets             = errors.New("no datasets loaded")
	ErrSuccessDatasetMissing  = errors.New("success dataset not loaded")
	ErrDurationDatasetMissing = errors.New("duration dataset not loaded")

	// Options errors
	ErrInvalidOptions = errors.New("invalid analysis options")

	// General errors
	ErrInvalidInput       = errors.New("invalid input")
	ErrServiceUnavailable = errors.New("service temporarily unavailable")
)

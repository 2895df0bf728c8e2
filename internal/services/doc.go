// Package services implements the business logic layer of SessionPulse.
// It provides a clean separation between HTTP handlers and the analysis
// primitives, ensuring that dataset state and its derived results are
// managed in one place.
//
// # Architecture
//
// Services follow these architectural principles:
//
//	1. Context propagation for cancellation and tracing
//	2. Dependency injection for loose coupling
//	3. Domain-focused methods that encapsulate business rules
//	4. Atomic state transitions under a single mutex
//
// # Available Services
//
// The package provides these core services:
//
//	- AnalysisService: Owns the loaded datasets and all derived analysis state
//	- HealthService: Provides system health checks
//
// # Error Handling
//
// Services return domain-specific sentinel errors that handlers transform
// into RFC 7807 problem documents:
//
//	- ErrNoDatasets when nothing has been loaded yet
//	- ErrSuccessDatasetMissing / ErrDurationDatasetMissing when one side
//	  of the join has not been provided
//	- ErrInvalidOptions for out-of-range analysis options
package services

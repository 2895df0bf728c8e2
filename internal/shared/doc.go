// Package shared holds utilities used across the SessionPulse codebase that
// do not belong to any single layer.
//
// The testutil subpackage provides an in-memory slog handler so tests can
// assert on structured log output without parsing JSON. Nothing under shared
// may contain business logic or depend on other internal packages.
package shared

package services

import (
	"context"
	"log/slog"
	"runtime"
	"time"
)

// HealthService provides health check functionality
type HealthService struct {
	version   string
	buildTime string
	analysis  *AnalysisService
	startTime time.Time
	logger    *slog.Logger
}

// HealthStatus represents the health status response
type HealthStatus struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Runtime   map[string]interface{} `json:"runtime,omitempty"`
	Services  map[string]interface{} `json:"services,omitempty"`
}

// NewHealthService creates a new health service with injected dependencies
func NewHealthService(version, buildTime string, analysis *AnalysisService, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}

	logger.Info("HealthService initialized",
		slog.String("version", version),
		slog.String("build_time", buildTime))

	return &HealthService{
		version:   version,
		buildTime: buildTime,
		analysis:  analysis,
		startTime: time.Now(),
		logger:    logger,
	}
}

// GetHealthStatus returns the current health of the process and its services
func (hs *HealthService) GetHealthStatus(ctx context.Context) *HealthStatus {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	status := &HealthStatus{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Version:   hs.version,
		Runtime: map[string]interface{}{
			"go_version":      runtime.Version(),
			"goroutines":      runtime.NumGoroutine(),
			"memory_alloc_mb": mem.Alloc / 1024 / 1024,
			"uptime":          time.Since(hs.startTime).Round(time.Second).String(),
			"os":              runtime.GOOS,
			"arch":            runtime.GOARCH,
		},
	}

	if hs.analysis != nil {
		successLoaded, durationLoaded := hs.analysis.Loaded()
		status.Services = map[string]interface{}{
			"analysis": map[string]interface{}{
				"status":           "up",
				"success_dataset":  successLoaded,
				"duration_dataset": durationLoaded,
			},
		}
	}

	return status
}

// Uptime returns the service uptime as a formatted string
func (hs *HealthService) Uptime() string {
	return time.Since(hs.startTime).Round(time.Second).String()
}

package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"sessionpulse/internal/analysis"
	"sessionpulse/internal/datagen"
	"sessionpulse/internal/infrastructure"
	"sessionpulse/pkg/contracts/domain"
)

// Dataset source labels used in logs and metrics.
const (
	SourceSuccess   = "success"
	SourceDuration  = "duration"
	SourceSynthetic = "synthetic"
)

// IngestSummary reports the outcome of one dataset load.
type IngestSummary struct {
	Source  string `json:"source"`
	Rows    int    `json:"rows"`
	Parsed  int    `json:"parsed"`
	Skipped int    `json:"skipped"`
	Matched int    `json:"matched"`
}

// ResultSnapshot is a point-in-time copy of the derived analysis state.
// ZeroOverlap distinguishes "both datasets loaded but no session IDs in
// common" from the not-loaded error cases.
type ResultSnapshot struct {
	Statistics  domain.StatisticsSummary `json:"statistics"`
	Fused       []domain.FusedRecord     `json:"fused"`
	Smoothed    []domain.SmoothedPoint   `json:"smoothed"`
	Options     analysis.Options         `json:"options"`
	ZeroOverlap bool                     `json:"zero_overlap"`
	UpdatedAt   time.Time                `json:"updated_at"`
}

// AnalysisService owns the current success/duration record sets and all
// state derived from them. Every load or option change atomically discards
// and recomputes the fused records, statistics, and smoothed series under
// one mutex, so readers never observe results from a previous dataset.
type AnalysisService struct {
	logger  *slog.Logger
	metrics *infrastructure.AppMetrics

	mu        sync.RWMutex
	opts      analysis.Options
	success   []domain.SuccessRecord
	duration  []domain.DurationRecord
	fused     []domain.FusedRecord
	summary   domain.StatisticsSummary
	smoothed  []domain.SmoothedPoint
	updatedAt time.Time
}

// NewAnalysisService creates a new analysis service with the given default
// options and logger.
func NewAnalysisService(opts analysis.Options, logger *slog.Logger) *AnalysisService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AnalysisService{
		logger: logger.With(slog.String("service", "analysis")),
		opts:   opts.Normalized(),
	}
}

// SetMetrics attaches the application metric instruments. Safe to leave
// unset; metric recording is a no-op without it.
func (s *AnalysisService) SetMetrics(metrics *infrastructure.AppMetrics) {
	s.metrics = metrics
}

// LoadSuccess parses raw CSV text as the success dataset and replaces the
// current one. All derived state is recomputed before the call returns.
func (s *AnalysisService) LoadSuccess(ctx context.Context, raw string) (*IngestSummary, error) {
	table, err := analysis.ParseTable(raw)
	if err != nil {
		infrastructure.RecordIngest(ctx, s.metrics, SourceSuccess, 0, 0, 0, err)
		return nil, err
	}
	return s.installSuccess(ctx, table)
}

// LoadSuccessWorkbook parses an xlsx workbook as the success dataset.
func (s *AnalysisService) LoadSuccessWorkbook(ctx context.Context, r io.Reader) (*IngestSummary, error) {
	table, err := analysis.ParseWorkbook(r)
	if err != nil {
		infrastructure.RecordIngest(ctx, s.metrics, SourceSuccess, 0, 0, 0, err)
		return nil, err
	}
	return s.installSuccess(ctx, table)
}

// LoadDuration parses raw CSV text as the duration dataset and replaces the
// current one.
func (s *AnalysisService) LoadDuration(ctx context.Context, raw string) (*IngestSummary, error) {
	table, err := analysis.ParseTable(raw)
	if err != nil {
		infrastructure.RecordIngest(ctx, s.metrics, SourceDuration, 0, 0, 0, err)
		return nil, err
	}
	return s.installDuration(ctx, table)
}

// LoadDurationWorkbook parses an xlsx workbook as the duration dataset.
func (s *AnalysisService) LoadDurationWorkbook(ctx context.Context, r io.Reader) (*IngestSummary, error) {
	table, err := analysis.ParseWorkbook(r)
	if err != nil {
		infrastructure.RecordIngest(ctx, s.metrics, SourceDuration, 0, 0, 0, err)
		return nil, err
	}
	return s.installDuration(ctx, table)
}

// LoadGenerated builds a synthetic dataset pair from the generator, renders
// both CSV files, and ingests them through the same parsers uploads go
// through. The two sides are parsed concurrently.
func (s *AnalysisService) LoadGenerated(ctx context.Context, params datagen.Params) (*IngestSummary, error) {
	start := time.Now()

	sessions, err := datagen.Generate(params)
	if err != nil {
		infrastructure.RecordIngest(ctx, s.metrics, SourceSynthetic, 0, 0, 0, err)
		return nil, fmt.Errorf("%w: %s", ErrInvalidInput, err)
	}

	var successBuf, durationBuf bytes.Buffer
	if err := datagen.WriteSuccessCSV(&successBuf, sessions); err != nil {
		return nil, fmt.Errorf("render success csv: %w", err)
	}
	if err := datagen.WriteDurationCSV(&durationBuf, sessions); err != nil {
		return nil, fmt.Errorf("render duration csv: %w", err)
	}

	var (
		successRecords  []domain.SuccessRecord
		durationRecords []domain.DurationRecord
		successRows     int
		durationRows    int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		table, err := analysis.ParseTable(successBuf.String())
		if err != nil {
			return err
		}
		successRows = len(table.Rows)
		successRecords, err = analysis.ParseSuccessRecords(gctx, table)
		return err
	})
	g.Go(func() error {
		table, err := analysis.ParseTable(durationBuf.String())
		if err != nil {
			return err
		}
		durationRows = len(table.Rows)
		durationRecords, err = analysis.ParseDurationRecords(gctx, table)
		return err
	})
	if err := g.Wait(); err != nil {
		infrastructure.RecordIngest(ctx, s.metrics, SourceSynthetic, 0, 0, 0, err)
		return nil, err
	}

	s.mu.Lock()
	s.success = successRecords
	s.duration = durationRecords
	s.recomputeLocked(ctx)
	matched := len(s.fused)
	s.mu.Unlock()

	parsed := len(successRecords) + len(durationRecords)
	skipped := (successRows - len(successRecords)) + (durationRows - len(durationRecords))
	infrastructure.RecordIngest(ctx, s.metrics, SourceSynthetic, parsed, skipped, time.Since(start), nil)

	s.logger.InfoContext(ctx, "synthetic dataset loaded",
		slog.Int("sessions", params.SessionCount),
		slog.String("pattern", string(params.Pattern)),
		slog.Int("matched", matched),
	)

	return &IngestSummary{
		Source:  SourceSynthetic,
		Rows:    successRows + durationRows,
		Parsed:  parsed,
		Skipped: skipped,
		Matched: matched,
	}, nil
}

// SetOptions replaces the analysis options and recomputes the derived state
// from the already-loaded records. Returns the normalized options in effect.
func (s *AnalysisService) SetOptions(ctx context.Context, opts analysis.Options) (analysis.Options, error) {
	switch opts.Strategy {
	case "", analysis.SplitSlopeChange, analysis.SplitQuantile:
	default:
		return analysis.Options{}, fmt.Errorf("%w: unknown split strategy %q", ErrInvalidOptions, opts.Strategy)
	}
	if opts.WindowSize < 0 {
		return analysis.Options{}, fmt.Errorf("%w: window size must be positive", ErrInvalidOptions)
	}

	normalized := opts.Normalized()

	s.mu.Lock()
	s.opts = normalized
	if len(s.success) > 0 || len(s.duration) > 0 {
		s.recomputeLocked(ctx)
	}
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "analysis options updated",
		slog.String("strategy", string(normalized.Strategy)),
		slog.Int("window_size", normalized.WindowSize),
	)

	return normalized, nil
}

// Options returns the options currently in effect.
func (s *AnalysisService) Options() analysis.Options {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.opts
}

// Result returns a snapshot of the current analysis. Both datasets must be
// loaded; a join with no overlapping session IDs is a valid snapshot with
// ZeroOverlap set, not an error.
func (s *AnalysisService) Result(ctx context.Context) (*ResultSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := s.readyLocked(); err != nil {
		return nil, err
	}

	fused := make([]domain.FusedRecord, len(s.fused))
	copy(fused, s.fused)
	smoothed := make([]domain.SmoothedPoint, len(s.smoothed))
	copy(smoothed, s.smoothed)

	return &ResultSnapshot{
		Statistics:  s.summary,
		Fused:       fused,
		Smoothed:    smoothed,
		Options:     s.opts,
		ZeroOverlap: len(s.fused) == 0,
		UpdatedAt:   s.updatedAt,
	}, nil
}

// Fused returns a copy of the current fused record set for export.
func (s *AnalysisService) Fused(ctx context.Context) ([]domain.FusedRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := s.readyLocked(); err != nil {
		return nil, err
	}

	fused := make([]domain.FusedRecord, len(s.fused))
	copy(fused, s.fused)
	return fused, nil
}

// Loaded reports which datasets are currently present.
func (s *AnalysisService) Loaded() (success, duration bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.success) > 0, len(s.duration) > 0
}

func (s *AnalysisService) installSuccess(ctx context.Context, table *analysis.Table) (*IngestSummary, error) {
	start := time.Now()

	records, err := analysis.ParseSuccessRecords(ctx, table)
	if err != nil {
		infrastructure.RecordIngest(ctx, s.metrics, SourceSuccess, 0, 0, 0, err)
		return nil, err
	}

	s.mu.Lock()
	s.success = records
	s.recomputeLocked(ctx)
	matched := len(s.fused)
	s.mu.Unlock()

	skipped := len(table.Rows) - len(records)
	infrastructure.RecordIngest(ctx, s.metrics, SourceSuccess, len(records), skipped, time.Since(start), nil)

	s.logger.InfoContext(ctx, "success dataset loaded",
		slog.Int("rows", len(table.Rows)),
		slog.Int("parsed", len(records)),
		slog.Int("skipped", skipped),
		slog.Int("matched", matched),
	)

	return &IngestSummary{
		Source:  SourceSuccess,
		Rows:    len(table.Rows),
		Parsed:  len(records),
		Skipped: skipped,
		Matched: matched,
	}, nil
}

func (s *AnalysisService) installDuration(ctx context.Context, table *analysis.Table) (*IngestSummary, error) {
	start := time.Now()

	records, err := analysis.ParseDurationRecords(ctx, table)
	if err != nil {
		infrastructure.RecordIngest(ctx, s.metrics, SourceDuration, 0, 0, 0, err)
		return nil, err
	}

	s.mu.Lock()
	s.duration = records
	s.recomputeLocked(ctx)
	matched := len(s.fused)
	s.mu.Unlock()

	skipped := len(table.Rows) - len(records)
	infrastructure.RecordIngest(ctx, s.metrics, SourceDuration, len(records), skipped, time.Since(start), nil)

	s.logger.InfoContext(ctx, "duration dataset loaded",
		slog.Int("rows", len(table.Rows)),
		slog.Int("parsed", len(records)),
		slog.Int("skipped", skipped),
		slog.Int("matched", matched),
	)

	return &IngestSummary{
		Source:  SourceDuration,
		Rows:    len(table.Rows),
		Parsed:  len(records),
		Skipped: skipped,
		Matched: matched,
	}, nil
}

// recomputeLocked rebuilds all derived state from the current record sets.
// Caller must hold the write lock.
func (s *AnalysisService) recomputeLocked(ctx context.Context) {
	s.fused = analysis.Fuse(s.success, s.duration)
	s.summary = analysis.Compute(s.fused, len(s.success), len(s.duration), s.opts)
	s.smoothed = analysis.Smooth(s.fused, s.opts.WindowSize)
	s.updatedAt = time.Now().UTC()

	if len(s.success) > 0 && len(s.duration) > 0 {
		infrastructure.RecordAnalysis(ctx, s.metrics, string(s.opts.Strategy), len(s.fused))
	}
}

// readyLocked gates result access on both datasets being present.
func (s *AnalysisService) readyLocked() error {
	switch {
	case len(s.success) == 0 && len(s.duration) == 0:
		return ErrNoDatasets
	case len(s.success) == 0:
		return ErrSuccessDatasetMissing
	case len(s.duration) == 0:
		return ErrDurationDatasetMissing
	}
	return nil
}

package domain

// SuccessRecord is one row from the success-outcome source after parsing.
// SuccessRate is always on a 0-100 scale regardless of how the source
// encoded it (fraction vs percentage).
type SuccessRecord struct {
	SessionID   string  `json:"session_id" validate:"required"`
	SuccessRate float64 `json:"success_rate" validate:"min=0"`
	OrderID     string  `json:"order_id,omitempty"`
	Timestamp   string  `json:"timestamp,omitempty"`
}

// DurationRecord is one row from the duration source after parsing.
// DurationSeconds is strictly positive; rows that fail this are dropped
// during parsing, never later.
type DurationRecord struct {
	SessionID       string  `json:"session_id" validate:"required"`
	DurationSeconds float64 `json:"duration_seconds" validate:"gt=0"`
	UserID          string  `json:"user_id,omitempty"`
	Timestamp       string  `json:"timestamp,omitempty"`
}

// FusedRecord joins a success record with a duration record on session id.
// SequenceIndex is assigned in join-output order before the final sort by
// duration; it only exists to give charts a stable x-axis fallback.
type FusedRecord struct {
	SessionID       string  `json:"session_id"`
	DurationSeconds float64 `json:"duration_seconds"`
	SuccessRate     float64 `json:"success_rate"`
	SequenceIndex   int     `json:"sequence_index"`
}

// SmoothedPoint is one output point of the bucketed moving average over a
// duration-sorted fused series.
type SmoothedPoint struct {
	DurationSeconds float64 `json:"duration_seconds"`
	SuccessRate     float64 `json:"success_rate"`
}

// StatisticsSummary holds the aggregate statistics derived from the current
// fused record set. It is recomputed from scratch whenever that set changes.
type StatisticsSummary struct {
	TotalSessions      int     `json:"total_sessions"`
	MatchedSessions    int     `json:"matched_sessions"`
	InflectionDuration float64 `json:"inflection_duration"`
	EarlySuccessRate   float64 `json:"early_success_rate"`
	LateSuccessRate    float64 `json:"late_success_rate"`

	// Extended metrics.
	Correlation float64 `json:"correlation"`
	PreSlope    float64 `json:"pre_slope"`
	PostSlope   float64 `json:"post_slope"`
	Mean        float64 `json:"mean"`
	StdDev      float64 `json:"std_dev"`
	Min         float64 `json:"min"`
	Max         float64 `json:"max"`
}

// MatchRate returns the fraction of total sessions that survived the join,
// or 0 when nothing was loaded.
func (s StatisticsSummary) MatchRate() float64 {
	if s.TotalSessions == 0 {
		return 0
	}
	return float64(s.MatchedSessions) / float64(s.TotalSessions)
}

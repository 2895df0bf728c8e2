package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"sessionpulse/pkg/contracts/domain"
)

// epochMillisThreshold separates Unix-seconds from Unix-milliseconds
// magnitudes: numeric timestamps below it are seconds.
const epochMillisThreshold = 1e10

var numericTimestampPattern = regexp.MustCompile(`^\d+(\.\d+)?$`)

// dateTimeLayouts are tried in order once a space separator has been
// normalized to 'T'.
var dateTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

// ParseDurationRecords extracts typed duration records from a parsed table.
// It requires a session-id column plus either a direct duration column or a
// start/end timestamp pair. Rows that yield a non-finite or non-positive
// duration are skipped with a diagnostic, never fatal.
func ParseDurationRecords(ctx context.Context, table *Table) ([]domain.DurationRecord, error) {
	sessionIdx := ResolveColumn(table.Headers, FieldSessionID)
	durationIdx := ResolveColumn(table.Headers, FieldDuration)
	startIdx := ResolveColumn(table.Headers, FieldStartTimestamp)
	endIdx := ResolveColumn(table.Headers, FieldEndTimestamp)

	hasDirect := durationIdx != ColumnNotFound
	hasPair := startIdx != ColumnNotFound && endIdx != ColumnNotFound

	if sessionIdx == ColumnNotFound || (!hasDirect && !hasPair) {
		var missing []string
		if sessionIdx == ColumnNotFound {
			missing = append(missing, string(FieldSessionID))
		}
		if !hasDirect && !hasPair {
			missing = append(missing, string(FieldDuration), string(FieldStartTimestamp), string(FieldEndTimestamp))
		}
		return nil, NewMissingColumns(missing, table.Headers, map[string]int{
			string(FieldSessionID):      sessionIdx,
			string(FieldDuration):       durationIdx,
			string(FieldStartTimestamp): startIdx,
			string(FieldEndTimestamp):   endIdx,
		})
	}

	userIdx := ResolveColumn(table.Headers, FieldUserID)
	tsIdx := ResolveColumn(table.Headers, FieldTimestamp)

	records := make([]domain.DurationRecord, 0, len(table.Rows))
	skipped := 0
	for _, row := range table.Rows {
		sessionID := table.Cell(row, sessionIdx)
		if sessionID == "" {
			skipped++
			continue
		}

		var seconds float64
		var err error
		if hasDirect {
			seconds, err = parseDirectDuration(table.Cell(row, durationIdx))
		} else {
			seconds, err = durationFromTimestamps(table.Cell(row, startIdx), table.Cell(row, endIdx))
		}
		if err != nil {
			skipped++
			slog.DebugContext(ctx, "skipped duration row",
				slog.String("session_id", sessionID),
				slog.String("reason", err.Error()))
			continue
		}

		records = append(records, domain.DurationRecord{
			SessionID:       sessionID,
			DurationSeconds: seconds,
			UserID:          table.Cell(row, userIdx),
			Timestamp:       table.Cell(row, tsIdx),
		})
	}

	if skipped > 0 {
		slog.DebugContext(ctx, "skipped invalid duration rows",
			slog.Int("skipped", skipped),
			slog.Int("kept", len(records)))
	}

	if len(records) == 0 {
		return nil, NewEmptyResult("no valid duration rows after parsing", table.Headers)
	}
	return records, nil
}

// parseDirectDuration parses a duration cell in seconds, rejecting
// non-finite and non-positive values.
func parseDirectDuration(cell string) (float64, error) {
	v, err := strconv.ParseFloat(cell, 64)
	if err != nil {
		return 0, fmt.Errorf("duration not numeric: %q", cell)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return 0, fmt.Errorf("duration not positive: %v", v)
	}
	return v, nil
}

// durationFromTimestamps derives (end - start) in seconds from a pair of
// timestamp cells, accepting Unix epoch values (seconds or milliseconds by
// magnitude) and ISO-like date-time strings.
func durationFromTimestamps(start, end string) (float64, error) {
	startMs, err := parseTimestampMillis(start)
	if err != nil {
		return 0, fmt.Errorf("start timestamp: %w", err)
	}
	endMs, err := parseTimestampMillis(end)
	if err != nil {
		return 0, fmt.Errorf("end timestamp: %w", err)
	}

	seconds := (endMs - startMs) / 1000
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) || seconds <= 0 {
		return 0, fmt.Errorf("derived duration not positive: %v", seconds)
	}
	return seconds, nil
}

// parseTimestampMillis converts one timestamp cell to Unix milliseconds.
// Pure-numeric values are epoch timestamps: magnitudes below 1e10 are
// seconds and get scaled, anything larger is already milliseconds. Other
// values are calendar date-times, with a space separator between date and
// time normalized to 'T' so both "2006-01-02 15:04:05" and ISO-8601 forms
// parse.
func parseTimestampMillis(cell string) (float64, error) {
	if cell == "" {
		return 0, fmt.Errorf("empty timestamp")
	}

	if numericTimestampPattern.MatchString(cell) {
		v, err := strconv.ParseFloat(cell, 64)
		if err != nil {
			return 0, fmt.Errorf("numeric timestamp %q: %w", cell, err)
		}
		if v < epochMillisThreshold {
			return v * 1000, nil
		}
		return v, nil
	}

	normalized := cell
	if !strings.Contains(normalized, "T") {
		normalized = strings.Replace(normalized, " ", "T", 1)
	}
	for _, layout := range dateTimeLayouts {
		if t, err := time.Parse(layout, normalized); err == nil {
			return float64(t.UnixMilli()), nil
		}
	}
	return 0, fmt.Errorf("unrecognized timestamp format: %q", cell)
}

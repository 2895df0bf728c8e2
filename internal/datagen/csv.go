package datagen

import (
	"encoding/csv"
	"fmt"
	"io"
)

// timestampLayout keeps millisecond precision while using the
// space-separated date-time form the duration parser normalizes.
const timestampLayout = "2006-01-02 15:04:05.000"

// WriteSuccessCSV renders sessions in the success-source format: session id,
// binary success outcome, order id and a created-at timestamp.
func WriteSuccessCSV(w io.Writer, sessions []Session) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"session_id", "success_rate", "order_id", "created_at"}); err != nil {
		return fmt.Errorf("write success header: %w", err)
	}
	for _, s := range sessions {
		row := []string{
			s.SessionID,
			fmt.Sprintf("%d", s.Outcome),
			s.OrderID,
			s.EndTime.UTC().Format(timestampLayout),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write success row %d: %w", s.Index, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteDurationCSV renders sessions in the duration-source format: session
// id plus a start/end timestamp pair and a user id. Durations are conveyed
// only through the timestamp difference, exercising the derivation path.
func WriteDurationCSV(w io.Writer, sessions []Session) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"session_id", "start_time", "end_time", "user_id"}); err != nil {
		return fmt.Errorf("write duration header: %w", err)
	}
	for _, s := range sessions {
		row := []string{
			s.SessionID,
			s.StartTime.UTC().Format(timestampLayout),
			s.EndTime.UTC().Format(timestampLayout),
			s.UserID,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write duration row %d: %w", s.Index, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteContinuousCSV renders continuous rate points in the success-source
// format with a direct percentage column.
func WriteContinuousCSV(w io.Writer, points []RatePoint) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"session_id", "duration", "success_rate"}); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, p := range points {
		row := []string{
			p.SessionID,
			fmt.Sprintf("%.3f", p.DurationSeconds),
			fmt.Sprintf("%.3f", p.SuccessRate),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

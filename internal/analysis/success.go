package analysis

import (
	"context"
	"log/slog"
	"math"
	"strconv"

	"sessionpulse/pkg/contracts/domain"
)

// ParseSuccessRecords extracts typed success records from a parsed table.
// It requires session-id and success-rate columns; rows whose rate cell does
// not parse as a finite number are skipped, not fatal.
//
// Normalization: a parsed value <= 1 is treated as a fraction and scaled to
// a 0-100 percentage; anything larger is kept as-is. The boundary value 1 is
// therefore read as 100%, which misclassifies a literal "1 percent" - a
// known ambiguity of the heuristic.
func ParseSuccessRecords(ctx context.Context, table *Table) ([]domain.SuccessRecord, error) {
	sessionIdx := ResolveColumn(table.Headers, FieldSessionID)
	rateIdx := ResolveColumn(table.Headers, FieldSuccessRate)

	if sessionIdx == ColumnNotFound || rateIdx == ColumnNotFound {
		var missing []string
		if sessionIdx == ColumnNotFound {
			missing = append(missing, string(FieldSessionID))
		}
		if rateIdx == ColumnNotFound {
			missing = append(missing, string(FieldSuccessRate))
		}
		return nil, NewMissingColumns(missing, table.Headers, map[string]int{
			string(FieldSessionID):   sessionIdx,
			string(FieldSuccessRate): rateIdx,
		})
	}

	orderIdx := ResolveColumn(table.Headers, FieldOrderID)
	tsIdx := ResolveColumn(table.Headers, FieldTimestamp)

	records := make([]domain.SuccessRecord, 0, len(table.Rows))
	skipped := 0
	for _, row := range table.Rows {
		sessionID := table.Cell(row, sessionIdx)
		if sessionID == "" {
			skipped++
			continue
		}

		rate, err := strconv.ParseFloat(table.Cell(row, rateIdx), 64)
		if err != nil || math.IsNaN(rate) || math.IsInf(rate, 0) {
			skipped++
			continue
		}
		records = append(records, domain.SuccessRecord{
			SessionID:   sessionID,
			SuccessRate: NormalizeSuccessRate(rate),
			OrderID:     table.Cell(row, orderIdx),
			Timestamp:   table.Cell(row, tsIdx),
		})
	}

	if skipped > 0 {
		slog.DebugContext(ctx, "skipped unparseable success rows",
			slog.Int("skipped", skipped),
			slog.Int("kept", len(records)))
	}

	if len(records) == 0 {
		return nil, NewEmptyResult("no valid success rows after parsing", table.Headers)
	}
	return records, nil
}

// NormalizeSuccessRate maps fraction-encoded values onto the 0-100 scale.
func NormalizeSuccessRate(v float64) float64 {
	if v <= 1 {
		return v * 100
	}
	return v
}

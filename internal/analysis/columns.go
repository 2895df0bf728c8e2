package analysis

import "strings"

// Field names a semantic column the parsers need to locate in an arbitrary
// header row.
type Field string

const (
	FieldSessionID      Field = "session_id"
	FieldSuccessRate    Field = "success_rate"
	FieldDuration       Field = "duration"
	FieldStartTimestamp Field = "start_timestamp"
	FieldEndTimestamp   Field = "end_timestamp"
	FieldUserID         Field = "user_id"
	FieldOrderID        Field = "order_id"
	FieldTimestamp      Field = "timestamp"
)

// ColumnNotFound is the sentinel returned when no header matches a field.
const ColumnNotFound = -1

// fieldSpec declares how a semantic field matches header names: an exact
// candidate list tried first, then fragment sets where a header matches if
// it contains every fragment of any one set.
type fieldSpec struct {
	exact     []string
	fragments [][]string
}

// fieldSpecs is the single declarative matching table. All fuzzy column
// heuristics live here; ResolveColumn is the only evaluator.
var fieldSpecs = map[Field]fieldSpec{
	FieldSessionID: {
		exact:     []string{"session_id", "sessionid", "session-id", "session id", "session"},
		fragments: [][]string{{"session", "id"}},
	},
	FieldSuccessRate: {
		exact:     []string{"success_rate", "successrate", "success-rate", "success rate", "success", "conversion_rate"},
		fragments: [][]string{{"success"}, {"conversion", "rate"}},
	},
	FieldDuration: {
		exact:     []string{"duration", "duration_seconds", "session_length", "sessionlength", "session-length", "session length", "length"},
		fragments: [][]string{{"duration"}, {"length"}},
	},
	FieldStartTimestamp: {
		exact:     []string{"start_time", "starttime", "start-time", "start time", "start", "session_start", "start_timestamp"},
		fragments: [][]string{{"start"}},
	},
	FieldEndTimestamp: {
		exact:     []string{"end_time", "endtime", "end-time", "end time", "end", "session_end", "end_timestamp"},
		fragments: [][]string{{"end"}},
	},
	FieldUserID: {
		exact:     []string{"user_id", "userid", "user-id", "user id", "user", "customer_id"},
		fragments: [][]string{{"user", "id"}, {"customer", "id"}},
	},
	FieldOrderID: {
		exact:     []string{"order_id", "orderid", "order-id", "order id", "order", "checkout_id"},
		fragments: [][]string{{"order", "id"}},
	},
	FieldTimestamp: {
		exact:     []string{"timestamp", "created_at", "createdat", "created", "date", "time"},
		fragments: [][]string{{"timestamp"}, {"created"}},
	},
}

// ResolveColumn maps a field onto a header index. Exact candidates are tried
// over the headers in order first, then the fragment heuristic; the first
// header satisfying any rule wins. Returns ColumnNotFound when nothing
// matches. There is no ambiguity resolution beyond first-match-wins.
func ResolveColumn(headers []string, field Field) int {
	spec, ok := fieldSpecs[field]
	if !ok {
		return ColumnNotFound
	}

	for i, h := range headers {
		for _, name := range spec.exact {
			if h == name {
				return i
			}
		}
	}

	for i, h := range headers {
		for _, set := range spec.fragments {
			if containsAll(h, set) {
				return i
			}
		}
	}

	return ColumnNotFound
}

// ResolveColumns resolves every known field against the headers.
func ResolveColumns(headers []string) map[Field]int {
	out := make(map[Field]int, len(fieldSpecs))
	for field := range fieldSpecs {
		out[field] = ResolveColumn(headers, field)
	}
	return out
}

func containsAll(header string, fragments []string) bool {
	for _, f := range fragments {
		if !strings.Contains(header, f) {
			return false
		}
	}
	return true
}

package analysis

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustTable(t *testing.T, raw string) *Table {
	t.Helper()
	table, err := ParseTable(raw)
	require.NoError(t, err)
	return table
}

func TestParseSuccessRecords(t *testing.T) {
	ctx := context.Background()

	t.Run("normalization scenario", func(t *testing.T) {
		// 0.9 and 0.4 are fractions; 1.2 is above the fraction threshold and
		// stays as-is, illustrating the boundary ambiguity of the heuristic.
		table := mustTable(t, "session_id,success\nsess_1,0.9\nsess_2,0.4\nsess_3,1.2")
		records, err := ParseSuccessRecords(ctx, table)
		require.NoError(t, err)

		require.Len(t, records, 3)
		assert.Equal(t, 90.0, records[0].SuccessRate)
		assert.Equal(t, 40.0, records[1].SuccessRate)
		assert.Equal(t, 1.2, records[2].SuccessRate)
	})

	t.Run("optional columns captured", func(t *testing.T) {
		table := mustTable(t, "session_id,success_rate,order_id,created_at\nsess_1,55,ord_9,2024-08-24")
		records, err := ParseSuccessRecords(ctx, table)
		require.NoError(t, err)

		require.Len(t, records, 1)
		assert.Equal(t, "ord_9", records[0].OrderID)
		assert.Equal(t, "2024-08-24", records[0].Timestamp)
	})

	t.Run("unparseable rates skipped", func(t *testing.T) {
		table := mustTable(t, "session_id,success\nsess_1,not-a-number\nsess_2,NaN\nsess_3,0.5\n,0.7")
		records, err := ParseSuccessRecords(ctx, table)
		require.NoError(t, err)

		require.Len(t, records, 1)
		assert.Equal(t, "sess_3", records[0].SessionID)
		assert.Equal(t, 50.0, records[0].SuccessRate)
	})

	t.Run("missing columns", func(t *testing.T) {
		table := mustTable(t, "order_id,amount\nord_1,10")
		_, err := ParseSuccessRecords(ctx, table)
		require.Error(t, err)

		pe := AsParseError(err)
		require.NotNil(t, pe)
		assert.Equal(t, KindMissingColumns, pe.Kind)
		assert.Contains(t, pe.MissingFields, "session_id")
		assert.Contains(t, pe.MissingFields, "success_rate")
		assert.Equal(t, []string{"order_id", "amount"}, pe.Headers)
	})

	t.Run("empty result after skipping", func(t *testing.T) {
		table := mustTable(t, "session_id,success\nsess_1,oops")
		_, err := ParseSuccessRecords(ctx, table)
		require.Error(t, err)
		assert.Equal(t, KindEmptyResult, KindOf(err))
	})

	// A header-only upload must surface as an empty result, never as
	// malformed input.
	t.Run("header-only input is an empty result", func(t *testing.T) {
		table := mustTable(t, "session_id,success\n")
		_, err := ParseSuccessRecords(ctx, table)
		require.Error(t, err)
		assert.Equal(t, KindEmptyResult, KindOf(err))
	})
}

func TestNormalizeSuccessRate(t *testing.T) {
	tests := []struct {
		name string
		in   float64
		want float64
	}{
		{"fraction", 0.9, 90},
		{"small fraction", 0.05, 5},
		{"boundary one becomes one hundred", 1, 100},
		{"just above one stays", 1.2, 1.2},
		{"percentage stays", 85, 85},
		{"zero", 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeSuccessRate(tt.in))
		})
	}
}

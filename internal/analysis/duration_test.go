package analysis

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDurationRecordsDirect(t *testing.T) {
	ctx := context.Background()

	t.Run("direct duration column", func(t *testing.T) {
		table := mustTable(t, "session_id,session_length\nsess_1,2.0\nsess_2,5.0\nsess_4,1.0")
		records, err := ParseDurationRecords(ctx, table)
		require.NoError(t, err)

		require.Len(t, records, 3)
		assert.Equal(t, "sess_1", records[0].SessionID)
		assert.Equal(t, 2.0, records[0].DurationSeconds)
	})

	t.Run("non-positive and non-numeric rows skipped", func(t *testing.T) {
		table := mustTable(t, "session_id,duration\nsess_1,0\nsess_2,-3\nsess_3,abc\nsess_4,4.5")
		records, err := ParseDurationRecords(ctx, table)
		require.NoError(t, err)

		require.Len(t, records, 1)
		assert.Equal(t, "sess_4", records[0].SessionID)
		assert.Equal(t, 4.5, records[0].DurationSeconds)
	})

	t.Run("optional user id captured", func(t *testing.T) {
		table := mustTable(t, "session_id,duration,user_id\nsess_1,3,user_7")
		records, err := ParseDurationRecords(ctx, table)
		require.NoError(t, err)
		assert.Equal(t, "user_7", records[0].UserID)
	})
}

func TestParseDurationRecordsTimestamps(t *testing.T) {
	ctx := context.Background()

	t.Run("unix seconds pair", func(t *testing.T) {
		table := mustTable(t, "session_id,start_time,end_time\nsess_1,1724515200,1724515202.5")
		records, err := ParseDurationRecords(ctx, table)
		require.NoError(t, err)

		require.Len(t, records, 1)
		assert.InDelta(t, 2.5, records[0].DurationSeconds, 1e-9)
	})

	t.Run("unix milliseconds pair", func(t *testing.T) {
		table := mustTable(t, "session_id,start_time,end_time\nsess_1,1724515200000,1724515203500")
		records, err := ParseDurationRecords(ctx, table)
		require.NoError(t, err)
		assert.InDelta(t, 3.5, records[0].DurationSeconds, 1e-9)
	})

	t.Run("space-separated date-times", func(t *testing.T) {
		table := mustTable(t, "session_id,start_time,end_time\nsess_1,2024-08-24 10:00:00,2024-08-24 10:00:42")
		records, err := ParseDurationRecords(ctx, table)
		require.NoError(t, err)
		assert.InDelta(t, 42.0, records[0].DurationSeconds, 1e-9)
	})

	t.Run("iso T-separated date-times", func(t *testing.T) {
		table := mustTable(t, "session_id,start_time,end_time\nsess_1,2024-08-24T10:00:00,2024-08-24T10:01:30")
		records, err := ParseDurationRecords(ctx, table)
		require.NoError(t, err)
		assert.InDelta(t, 90.0, records[0].DurationSeconds, 1e-9)
	})

	t.Run("end before or equal to start excluded", func(t *testing.T) {
		table := mustTable(t, "session_id,start_time,end_time\n"+
			"sess_1,1724515202,1724515200\n"+
			"sess_2,1724515200,1724515200\n"+
			"sess_3,1724515200,1724515201")
		records, err := ParseDurationRecords(ctx, table)
		require.NoError(t, err)

		require.Len(t, records, 1)
		assert.Equal(t, "sess_3", records[0].SessionID)
	})

	t.Run("unparseable timestamps skipped", func(t *testing.T) {
		table := mustTable(t, "session_id,start_time,end_time\nsess_1,yesterday,today\nsess_2,1,2")
		records, err := ParseDurationRecords(ctx, table)
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, "sess_2", records[0].SessionID)
	})
}

func TestParseDurationRecordsErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("neither duration nor timestamp pair", func(t *testing.T) {
		table := mustTable(t, "session_id,start_time\nsess_1,1724515200")
		_, err := ParseDurationRecords(ctx, table)
		require.Error(t, err)

		pe := AsParseError(err)
		require.NotNil(t, pe)
		assert.Equal(t, KindMissingColumns, pe.Kind)
		assert.Equal(t, []string{"session_id", "start_time"}, pe.Headers)
		// Resolution shows what was and was not found.
		assert.Equal(t, 0, pe.Resolution["session_id"])
		assert.Equal(t, 1, pe.Resolution["start_timestamp"])
		assert.Equal(t, ColumnNotFound, pe.Resolution["end_timestamp"])
		assert.Equal(t, ColumnNotFound, pe.Resolution["duration"])
	})

	t.Run("missing session id", func(t *testing.T) {
		table := mustTable(t, "thing,duration\nx,5")
		_, err := ParseDurationRecords(ctx, table)
		require.Error(t, err)
		assert.Equal(t, KindMissingColumns, KindOf(err))
	})

	t.Run("empty result", func(t *testing.T) {
		table := mustTable(t, "session_id,duration\nsess_1,0")
		_, err := ParseDurationRecords(ctx, table)
		require.Error(t, err)
		assert.Equal(t, KindEmptyResult, KindOf(err))
	})

	t.Run("header-only input is an empty result", func(t *testing.T) {
		table := mustTable(t, "session_id,duration\n")
		_, err := ParseDurationRecords(ctx, table)
		require.Error(t, err)
		assert.Equal(t, KindEmptyResult, KindOf(err))
	})
}

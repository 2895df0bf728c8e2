package datagen

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sessionpulse/internal/analysis"
)

func TestWriteSuccessCSV(t *testing.T) {
	params := DefaultParams()
	params.SessionCount = 20
	params.InflectionIndex = 10
	params.Seed = 1

	sessions, err := Generate(params)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteSuccessCSV(&buf, sessions))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Equal(t, "session_id,success_rate,order_id,created_at", lines[0])
	assert.Len(t, lines, 21)
}

func TestWriteDurationCSV(t *testing.T) {
	params := DefaultParams()
	params.SessionCount = 5
	params.InflectionIndex = 3
	params.Seed = 1

	sessions, err := Generate(params)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteDurationCSV(&buf, sessions))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Equal(t, "session_id,start_time,end_time,user_id", lines[0])
	assert.Len(t, lines, 6)
}

// Generated CSV pairs must survive the full parse-and-fuse pipeline: every
// synthetic session appears in both sources, so the join matches all of
// them and recovers the generated durations.
func TestGeneratedCSVRoundTrip(t *testing.T) {
	params := DefaultParams()
	params.SessionCount = 50
	params.InflectionIndex = 30
	params.Seed = 99

	sessions, err := Generate(params)
	require.NoError(t, err)

	var successBuf, durationBuf bytes.Buffer
	require.NoError(t, WriteSuccessCSV(&successBuf, sessions))
	require.NoError(t, WriteDurationCSV(&durationBuf, sessions))

	ctx := context.Background()

	successTable, err := analysis.ParseTable(successBuf.String())
	require.NoError(t, err)
	successRecords, err := analysis.ParseSuccessRecords(ctx, successTable)
	require.NoError(t, err)

	durationTable, err := analysis.ParseTable(durationBuf.String())
	require.NoError(t, err)
	durationRecords, err := analysis.ParseDurationRecords(ctx, durationTable)
	require.NoError(t, err)

	require.Len(t, successRecords, params.SessionCount)
	require.Len(t, durationRecords, params.SessionCount)

	fused := analysis.Fuse(successRecords, durationRecords)
	require.Len(t, fused, params.SessionCount)

	byID := make(map[string]float64, len(sessions))
	for _, s := range sessions {
		byID[s.SessionID] = s.DurationSeconds
	}
	for _, f := range fused {
		assert.InDelta(t, byID[f.SessionID], f.DurationSeconds, 1e-3)
		// Binary outcomes normalize onto the percentage scale.
		assert.Contains(t, []float64{0, 100}, f.SuccessRate)
	}
}

func TestWriteContinuousCSV(t *testing.T) {
	params := DefaultParams()
	params.SessionCount = 10
	params.InflectionIndex = 5
	params.Seed = 3

	points, err := GenerateContinuous(params)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteContinuousCSV(&buf, points))

	table, err := analysis.ParseTable(buf.String())
	require.NoError(t, err)

	records, err := analysis.ParseDurationRecords(context.Background(), table)
	require.NoError(t, err)
	assert.Len(t, records, 10)
}

package syncprogress

import (
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIDSet_OrderAndMembership(t *testing.T) {
	t.Parallel()

	s := NewIDSet(30, 10, 30, 20)
	assert.Equal(t, 3, s.Len())
	assert.Equal(t, []int64{30, 10, 20}, s.IDs())
	assert.True(t, s.Has(10))
	assert.False(t, s.Has(40))
	assert.False(t, s.Add(20))
	assert.True(t, s.Add(40))

	var nilSet *IDSet
	assert.False(t, nilSet.Has(1))
	assert.Equal(t, 0, nilSet.Len())
}

func TestState_JSONKeepsProcessedIDsAsArray(t *testing.T) {
	t.Parallel()

	state := Fresh(JobHistoryBackward, time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC))
	state.CurrentDate = "2024-01-01"
	state.Created = 2
	state.ProcessedIDs.Add(7)
	state.ProcessedIDs.Add(3)
	state.Incr("failedLogos", 1)

	raw, err := sonic.Marshal(state)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"processedIds":[7,3]`)

	var decoded State
	require.NoError(t, sonic.Unmarshal(raw, &decoded))
	assert.Equal(t, []int64{7, 3}, decoded.ProcessedIDs.IDs())
	assert.True(t, decoded.ProcessedIDs.Has(3))
	assert.Equal(t, int64(1), decoded.Extra["failedLogos"])
	assert.Equal(t, []string{"failedLogos"}, decoded.ExtraKeys())
}

func TestState_NormalizeFillsNilSet(t *testing.T) {
	t.Parallel()

	var s State
	s.Normalize(JobStatsImport)
	assert.Equal(t, JobStatsImport, s.Job)
	require.NotNil(t, s.ProcessedIDs)
	assert.Equal(t, 0, s.ProcessedIDs.Len())
}

package domain

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSyncReport_DurationMarshalsAsMilliseconds(t *testing.T) {
	report := SyncReport{
		RunID:    "run-1",
		TenantID: "tenant-1",
		Entity:   "products",
		Status:   RunCompleted,
		Duration: Millis(1500 * time.Millisecond),
	}

	payload, err := json.Marshal(report)
	require.NoError(t, err)
	assert.Contains(t, string(payload), `"duration_ms":1500`)

	var decoded SyncReport
	require.NoError(t, json.Unmarshal(payload, &decoded))
	assert.Equal(t, report.Duration, decoded.Duration)
}

func TestSyncReport_RecordErrorCapsSamples(t *testing.T) {
	var report SyncReport
	for i := 0; i < 15; i++ {
		report.RecordError(errors.New("boom"))
	}
	assert.Equal(t, 15, report.Errors)
	assert.Len(t, report.ErrorSamples, maxErrorSamples)
}

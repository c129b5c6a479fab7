package domain

import (
	"encoding/json"
	"time"
)

// RunStatus is the terminal state of one sync run.
type RunStatus string

const (
	// RunCompleted means the loop terminated naturally, possibly with
	// item-level errors counted in the report.
	RunCompleted RunStatus = "completed"
	// RunTruncated means the hard page-safety ceiling was hit. Not an error.
	RunTruncated RunStatus = "truncated"
	// RunCancelled means the caller's cancellation token fired between pages.
	RunCancelled RunStatus = "cancelled"
	// RunFailed means a fatal error (configuration or auth) aborted the run.
	RunFailed RunStatus = "failed"
)

// maxErrorSamples bounds the diagnostics carried in a report; callers only
// ever see aggregate counts plus these first few messages.
const maxErrorSamples = 10

// SyncReport is the result of a single orchestrator invocation. It exists
// only for the duration of the run and is surfaced to callers, never stored
// relationally (the last report per tenant is cached for the admin UI).
type SyncReport struct {
	RunID        string        `json:"run_id"`
	TenantID     string        `json:"tenant_id"`
	Entity       string        `json:"entity"`
	Status       RunStatus     `json:"status"`
	Created      int           `json:"created"`
	Updated      int           `json:"updated"`
	Errors       int           `json:"errors"`
	PagesFetched int           `json:"pages_fetched"`
	ErrorSamples []string      `json:"error_samples,omitempty"`
	FailureCause string        `json:"failure_cause,omitempty"`
	StartedAt    time.Time     `json:"started_at"`
	Duration     Millis        `json:"duration_ms"`
}

// Millis is a duration surfaced as integer milliseconds in JSON, so report
// consumers never have to interpret raw nanoseconds.
type Millis time.Duration

func (m Millis) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(m).Milliseconds())
}

func (m *Millis) UnmarshalJSON(data []byte) error {
	var ms int64
	if err := json.Unmarshal(data, &ms); err != nil {
		return err
	}
	*m = Millis(time.Duration(ms) * time.Millisecond)
	return nil
}

// RecordError counts an item-scoped error and keeps its message if the
// sample buffer still has room.
func (r *SyncReport) RecordError(err error) {
	r.Errors++
	if len(r.ErrorSamples) < maxErrorSamples {
		r.ErrorSamples = append(r.ErrorSamples, err.Error())
	}
}

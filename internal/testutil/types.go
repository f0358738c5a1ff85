package testutil

import "time"

// ExecutionRecord holds the start and end times for a single invocation.
type ExecutionRecord struct {
	Start time.Time
	End   time.Time
}

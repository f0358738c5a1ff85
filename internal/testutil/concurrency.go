package testutil

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/vk/hotswap/internal/registry"
	"github.com/vk/hotswap/internal/sandbox"
	"github.com/zclconf/go-cty/cty"
)

// MockSleeperModule is a shared, self-contained module for concurrency tests.
// Its "sleeper" capability sleeps and records when each call ran.
type MockSleeperModule struct {
	mu             sync.Mutex
	records        []ExecutionRecord
	sleepDuration  time.Duration
	completionChan chan<- int
}

// NewMockSleeperModule creates a new sleeper module for testing. Each call
// sends its completion order on completionChan when it is not nil.
func NewMockSleeperModule(completionChan chan<- int, sleep time.Duration) *MockSleeperModule {
	return &MockSleeperModule{
		sleepDuration:  sleep,
		completionChan: completionChan,
	}
}

// Records returns a copy of the execution records.
func (m *MockSleeperModule) Records() []ExecutionRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]ExecutionRecord(nil), m.records...)
}

// Register registers the "sleeper" capability.
func (m *MockSleeperModule) Register(ctx context.Context, r *registry.Registry) error {
	_, err := r.Register(ctx, "sleeper", registry.Definition{
		Description: "Sleeps, then returns how many calls finished before it.",
		Func: func(_ sandbox.Self, _ sandbox.Bindings) (cty.Value, error) {
			start := time.Now()
			time.Sleep(m.sleepDuration)
			end := time.Now()

			m.mu.Lock()
			m.records = append(m.records, ExecutionRecord{Start: start, End: end})
			n := len(m.records)
			m.mu.Unlock()

			if m.completionChan != nil {
				m.completionChan <- n
			}
			return cty.NumberIntVal(int64(n)), nil
		},
	})
	if err != nil {
		return fmt.Errorf("register sleeper: %w", err)
	}
	return nil
}

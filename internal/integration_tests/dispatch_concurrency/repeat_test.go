package integration_tests

import (
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/hotswap/internal/config"
	"github.com/vk/hotswap/internal/testutil"
)

const repeatScenario = `
invoke "sleeper" {
  repeat = 4
}
`

// Test for: repeated invocations run concurrently on the worker pool.
func TestDispatch_RepeatRunsConcurrently(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	sleeper := testutil.NewMockSleeperModule(nil, 100*time.Millisecond)

	// --- Act ---
	result := testutil.RunScenario(t, testutil.Scenario{
		Files:     map[string]string{"main.hcl": repeatScenario},
		Modules:   []testutil.Module{sleeper},
		Configure: func(s *config.Settings) { s.Workers = 4 },
	})

	// --- Assert ---
	require.NoError(t, result.Err)
	testutil.AssertInvocations(t, result, "sleeper", "ok", "ok", "ok", "ok")

	records := sleeper.Records()
	require.Len(t, records, 4)
	latestStart := slices.MaxFunc(records, func(a, b testutil.ExecutionRecord) int { return a.Start.Compare(b.Start) }).Start
	earliestEnd := slices.MinFunc(records, func(a, b testutil.ExecutionRecord) int { return a.End.Compare(b.End) }).End
	assert.True(t, latestStart.Before(earliestEnd), "expected all four calls to overlap")
}

// Test for: a single worker runs repeated invocations one after another.
func TestDispatch_SingleWorkerSerializes(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	sleeper := testutil.NewMockSleeperModule(nil, 20*time.Millisecond)

	// --- Act ---
	result := testutil.RunScenario(t, testutil.Scenario{
		Files:     map[string]string{"main.hcl": repeatScenario},
		Modules:   []testutil.Module{sleeper},
		Configure: func(s *config.Settings) { s.Workers = 1 },
	})

	// --- Assert ---
	require.NoError(t, result.Err)
	records := sleeper.Records()
	require.Len(t, records, 4)
	for i := 1; i < len(records); i++ {
		assert.False(t, records[i].Start.Before(records[i-1].End), "call %d overlapped the previous one", i)
	}
}

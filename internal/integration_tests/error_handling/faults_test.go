package integration_tests

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/hotswap/internal/config"
	"github.com/vk/hotswap/internal/script"
	"github.com/vk/hotswap/internal/testutil"
)

// Test for: a faulting definition is recorded and the run continues.
func TestErrorHandling_FaultIsContained(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	scenario := `
capability "divide" {
  returns = args.a / args.b
}

invoke "divide" {
  args = { a = 1 }
}

invoke "divide" {
  args   = { a = 6, b = 3 }
  expect = 2
}

invoke "missing" {}
`

	// --- Act ---
	result := testutil.RunScenario(t, testutil.Scenario{Files: map[string]string{"main.hcl": scenario}})

	// --- Assert ---
	require.NoError(t, result.Err)
	testutil.AssertInvocations(t, result, "divide", "fault", "ok")
	testutil.AssertInvocations(t, result, "missing", "fault")
	assert.Contains(t, result.LogOutput, "Invocation faulted.")
}

// Test for: a failed rollback leaves the active version in place.
func TestErrorHandling_RollbackWithoutHistory(t *testing.T) {
	t.Parallel()

	scenario := `
capability "one" {
  returns = 1
}

rollback "one" {}

invoke "one" {
  expect = 1
}
`

	result := testutil.RunScenario(t, testutil.Scenario{Files: map[string]string{"main.hcl": scenario}})

	require.NoError(t, result.Err)
	testutil.AssertInvocations(t, result, "one", "ok")
	assert.Contains(t, result.LogOutput, "Rollback refused.")
	assert.Equal(t, 1, result.App.Ledger().Stats().Modifications)
}

// Test for: definitions outside the allow-list stop the run before anything
// else is applied.
func TestErrorHandling_UnknownVariableStopsRun(t *testing.T) {
	t.Parallel()

	scenario := `
capability "leaky" {
  returns = env.HOME
}
`

	result := testutil.RunScenario(t, testutil.Scenario{Files: map[string]string{"main.hcl": scenario}})

	require.ErrorIs(t, result.Err, script.ErrUnknownVariable)
	assert.Empty(t, result.Output)
	assert.False(t, result.App.Registry().Exists("leaky"))
}

// Test for: invalid HCL is rejected while loading.
func TestErrorHandling_InvalidHCL(t *testing.T) {
	t.Parallel()

	result := testutil.RunScenario(t, testutil.Scenario{Files: map[string]string{"main.hcl": `capability "x" {`}})

	require.Error(t, result.Err)
	assert.Contains(t, result.Err.Error(), "failed to load scenario")
}

// Test for: strict admission refuses a definition that swallows faults, and
// permissive admission logs it.
func TestErrorHandling_AdmissionPolicy(t *testing.T) {
	t.Parallel()

	scenario := `
capability "lenient" {
  returns = try(args.value, "none")
}

invoke "lenient" {
  expect = "none"
}
`
	testCases := []struct {
		admission string
		outcome   string
		admitted  bool
	}{
		{admission: "permissive", outcome: "ok", admitted: true},
		{admission: "strict", outcome: "fault", admitted: false},
	}
	for _, tc := range testCases {
		t.Run(tc.admission, func(t *testing.T) {
			t.Parallel()

			result := testutil.RunScenario(t, testutil.Scenario{
				Files:     map[string]string{"main.hcl": scenario},
				Configure: func(s *config.Settings) { s.Admission = tc.admission },
			})

			require.NoError(t, result.Err)
			assert.Equal(t, tc.admitted, result.App.Registry().Exists("lenient"))
			testutil.AssertInvocations(t, result, "lenient", tc.outcome)
		})
	}
}

package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/hotswap/internal/ledger"
)

// FeedbackNotes returns the notes of every feedback entry, in ledger order.
func FeedbackNotes(result *HarnessResult) []string {
	var notes []string
	for e := range result.App.Ledger().Query(ledger.Filter{Kind: ledger.KindFeedback}) {
		notes = append(notes, e.Feedback.Note)
	}
	return notes
}

// AssertInvocations checks the outcome of every invocation of capability, in
// the order they were recorded.
func AssertInvocations(t *testing.T, result *HarnessResult, capability string, outcomes ...string) {
	t.Helper()

	prefix := "invoke " + capability + ": "
	var got []string
	for _, note := range FeedbackNotes(result) {
		if len(note) > len(prefix) && note[:len(prefix)] == prefix {
			got = append(got, note[len(prefix):])
		}
	}
	require.Equal(t, outcomes, got, "unexpected outcomes for %q", capability)
}

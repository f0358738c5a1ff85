package journal

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/hotswap/internal/ledger"
)

func sampleEntries() []ledger.Entry {
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	return []ledger.Entry{
		{Seq: 1, Kind: ledger.KindModification, Modification: &ledger.ModificationEvent{Kind: ledger.Add, Capability: "greet", At: at, VersionAfter: 1}},
		{Seq: 2, Kind: ledger.KindFeedback, Feedback: &ledger.FeedbackEvent{Note: "ok", Success: true, At: at}},
	}
}

func assertSameEntries(t *testing.T, want, got []ledger.Entry) {
	t.Helper()
	require.Len(t, got, len(want))
	for i := range want {
		assert.Equal(t, want[i].Seq, got[i].Seq)
		assert.Equal(t, want[i].Kind, got[i].Kind)
		assert.Equal(t, want[i].String(), got[i].String())
		assert.True(t, want[i].At().Equal(got[i].At()))
	}
}

func TestFile_AppendAndReplay(t *testing.T) {
	t.Parallel()

	// Arrange
	path := filepath.Join(t.TempDir(), "ledger.journal")
	j, err := OpenFile(path)
	require.NoError(t, err)
	ctx := context.Background()

	// Act
	for _, e := range sampleEntries() {
		require.NoError(t, j.Append(ctx, e))
	}
	got, err := j.Replay(ctx)

	// Assert
	require.NoError(t, err)
	assertSameEntries(t, sampleEntries(), got)
	require.NoError(t, j.Close())
	assert.ErrorIs(t, j.Append(ctx, sampleEntries()[0]), ErrClosed)
}

func TestFile_WiredIntoLedger(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "ledger.journal")
	j, err := OpenFile(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = j.Close() })
	l := ledger.New(ledger.WithJournal(j))

	l.RecordModification(context.Background(), ledger.ModificationEvent{Kind: ledger.Add, Capability: "greet", VersionAfter: 1})
	l.RecordFeedback(context.Background(), "fine", true)
	l.Close()

	got, err := ReadFile(path)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "greet", got[0].Capability())
	assert.Equal(t, "fine", got[1].Feedback.Note)
}

func TestReadFile_Missing(t *testing.T) {
	t.Parallel()

	_, err := ReadFile(filepath.Join(t.TempDir(), "nope"))

	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestReadFile_Corrupt(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "bad.journal")
	require.NoError(t, os.WriteFile(path, []byte{0xc1}, 0o644))

	_, err := ReadFile(path)

	assert.Error(t, err)
}

// fakeStream mimics how Redis returns stream field values: as strings.
type fakeStream struct {
	mu   sync.Mutex
	msgs map[string][]redis.XMessage
	err  error
}

func newFakeStream() *fakeStream {
	return &fakeStream{msgs: make(map[string][]redis.XMessage)}
}

func (f *fakeStream) XAdd(_ context.Context, a *redis.XAddArgs) *redis.StringCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return redis.NewStringResult("", f.err)
	}
	values := make(map[string]interface{})
	for k, v := range a.Values.(map[string]interface{}) {
		switch tv := v.(type) {
		case []byte:
			values[k] = string(tv)
		default:
			values[k] = fmt.Sprint(tv)
		}
	}
	id := fmt.Sprintf("%d-0", len(f.msgs[a.Stream])+1)
	f.msgs[a.Stream] = append(f.msgs[a.Stream], redis.XMessage{ID: id, Values: values})
	return redis.NewStringResult(id, nil)
}

func (f *fakeStream) XRange(_ context.Context, stream, _, _ string) *redis.XMessageSliceCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	return redis.NewXMessageSliceCmdResult(f.msgs[stream], f.err)
}

func TestRedis_AppendAndReplay(t *testing.T) {
	t.Parallel()

	// Arrange
	client := newFakeStream()
	j := NewRedis(client, "", "instance-1")
	ctx := context.Background()

	// Act
	for _, e := range sampleEntries() {
		require.NoError(t, j.Append(ctx, e))
	}
	got, err := j.Replay(ctx)

	// Assert
	require.NoError(t, err)
	assertSameEntries(t, sampleEntries(), got)
	msgs := client.msgs[DefaultStream]
	require.Len(t, msgs, 2)
	assert.Equal(t, "instance-1", msgs[0].Values["instance"])
	assert.Equal(t, "modification", msgs[0].Values["kind"])
}

func TestRedis_AppendError(t *testing.T) {
	t.Parallel()

	client := newFakeStream()
	client.err = fmt.Errorf("connection refused")
	j := NewRedis(client, "custom", "")

	err := j.Append(context.Background(), sampleEntries()[0])

	assert.ErrorContains(t, err, "custom")
	assert.ErrorContains(t, err, "connection refused")
}

func TestRedis_ReplayRejectsMissingPayload(t *testing.T) {
	t.Parallel()

	client := newFakeStream()
	client.msgs["s"] = []redis.XMessage{{ID: "1-0", Values: map[string]interface{}{"seq": "1"}}}

	_, err := NewRedis(client, "s", "").Replay(context.Background())

	assert.ErrorContains(t, err, "no payload")
}

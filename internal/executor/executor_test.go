package executor

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"

	"github.com/vk/hotswap/internal/sandbox"
)

type countingInvoker struct {
	calls   atomic.Int64
	active  atomic.Int64
	peak    atomic.Int64
	delay   time.Duration
	failOdd bool
	mu      sync.Mutex
	names   []string
}

func (c *countingInvoker) Invoke(_ context.Context, name string, args sandbox.Bindings) (cty.Value, error) {
	n := c.calls.Add(1)
	cur := c.active.Add(1)
	defer c.active.Add(-1)
	for {
		p := c.peak.Load()
		if cur <= p || c.peak.CompareAndSwap(p, cur) {
			break
		}
	}
	c.mu.Lock()
	c.names = append(c.names, name)
	c.mu.Unlock()

	time.Sleep(c.delay)
	if c.failOdd && n%2 == 1 {
		return cty.NilVal, errors.New("odd")
	}
	return args["v"], nil
}

func TestRun_AllInvocationsOrdered(t *testing.T) {
	t.Parallel()

	// Arrange
	inv := &countingInvoker{delay: 5 * time.Millisecond}
	e := New(inv, 3)

	// Act
	results := e.Run(context.Background(), "echo", sandbox.Bindings{"v": cty.StringVal("x")}, 10)

	// Assert
	require.Len(t, results, 10)
	for i, r := range results {
		assert.Equal(t, i, r.Index)
		require.NoError(t, r.Err)
		assert.True(t, r.Value.RawEquals(cty.StringVal("x")))
	}
	assert.EqualValues(t, 10, inv.calls.Load())
	assert.LessOrEqual(t, inv.peak.Load(), int64(3))
	assert.Equal(t, []string{"echo"}, uniq(inv.names))
}

func TestRun_ErrorsStayPerResult(t *testing.T) {
	t.Parallel()

	inv := &countingInvoker{failOdd: true}
	results := New(inv, 1).Run(context.Background(), "f", nil, 4)

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}
	assert.Equal(t, 2, failed)
}

func TestRun_CancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	inv := &countingInvoker{}

	results := New(inv, 2).Run(ctx, "f", nil, 5)

	require.Len(t, results, 5)
	for _, r := range results {
		require.ErrorIs(t, r.Err, context.Canceled)
	}
	assert.EqualValues(t, 0, inv.calls.Load())
}

func TestNew_ClampsWorkers(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 1, New(&countingInvoker{}, 0).Workers())
	assert.Nil(t, New(&countingInvoker{}, 2).Run(context.Background(), "f", nil, 0))
}

func uniq(in []string) []string {
	seen := map[string]bool{}
	var out []string
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

package concurrent

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sectoralphagame/sector-alpha-sub002/pkg/sequence"
)

func TestForEachVisitsEveryElement(t *testing.T) {
	var sum atomic.Int64
	err := ForEach(context.Background(), sequence.From([]int{1, 2, 3, 4, 5}), 2, func(_ context.Context, v int) error {
		sum.Add(int64(v))
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, int64(15), sum.Load())
}

func TestForEachRespectsLimit(t *testing.T) {
	var inFlight, peak atomic.Int32
	items := make([]int, 32)
	err := ForEach(context.Background(), sequence.From(items), 3, func(context.Context, int) error {
		n := inFlight.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(time.Millisecond)
		inFlight.Add(-1)
		return nil
	})
	require.NoError(t, err)
	assert.LessOrEqual(t, peak.Load(), int32(3))
}

func TestIndexedStopsOnError(t *testing.T) {
	boom := errors.New("boom")
	out := make([]int, 4)
	err := Indexed(context.Background(), []int{10, 20, 30, 40}, 1, func(_ context.Context, i, v int) error {
		if i == 1 {
			return boom
		}
		out[i] = v
		return nil
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 10, out[0])
	assert.Zero(t, out[3], "nothing runs once an action failed")
}

func TestCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ran := false
	err := Indexed(ctx, []int{1, 2}, 0, func(context.Context, int, int) error {
		ran = true
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, ran)
}

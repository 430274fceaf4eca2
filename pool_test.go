package comdirect

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestPoolOrder(t *testing.T) {
	p := newPool(3, func(_ context.Context, in int) (string, error) {
		// Make earlier jobs finish later to prove ordering is positional.
		time.Sleep(time.Duration(10-in) * time.Millisecond)

		return fmt.Sprintf("out-%d", in), nil
	})

	outs, err := p.Process(context.Background(), []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9})
	require.NoError(t, err)

	require.Len(t, outs, 10)

	for i, out := range outs {
		require.Equal(t, fmt.Sprintf("out-%d", i), out)
	}
}

func TestPoolFirstError(t *testing.T) {
	var started atomic.Int32

	p := newPool(1, func(ctx context.Context, in int) (int, error) {
		if err := ctx.Err(); err != nil {
			return 0, err
		}

		started.Add(1)

		if in == 2 {
			return 0, fmt.Errorf("job %d failed", in)
		}

		return in, nil
	})

	_, err := p.Process(context.Background(), []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9})
	require.EqualError(t, err, "job 2 failed")

	// The failure cancels the fan-out before any tail job does work.
	require.Equal(t, int32(3), started.Load())
}

func TestPoolCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := newPool(2, func(ctx context.Context, in int) (int, error) {
		<-ctx.Done()

		return 0, ctx.Err()
	})

	_, err := p.Process(ctx, []int{0, 1, 2, 3})
	require.ErrorIs(t, err, context.Canceled)
}

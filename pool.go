package comdirect

import (
	"context"
	"sync"
)

// pool fans a list of jobs out over a bounded number of workers. The
// first failure cancels the remaining jobs; results keep input order.
type pool[In, Out any] struct {
	size int
	work func(context.Context, In) (Out, error)
}

func newPool[In, Out any](size int, work func(context.Context, In) (Out, error)) *pool[In, Out] {
	if size < 1 {
		size = 1
	}

	return &pool[In, Out]{
		size: size,
		work: work,
	}
}

func (p *pool[In, Out]) Process(ctx context.Context, ins []In) ([]Out, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg       sync.WaitGroup
		lock     sync.Mutex
		firstErr error
	)

	sem := make(chan struct{}, p.size)
	outs := make([]Out, len(ins))

	for idx, in := range ins {
		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			wg.Wait()

			if firstErr != nil {
				return nil, firstErr
			}

			return nil, ctx.Err()
		}

		wg.Add(1)

		go func(idx int, in In) {
			defer wg.Done()
			defer func() { <-sem }()

			out, err := p.work(ctx, in)
			if err != nil {
				lock.Lock()
				if firstErr == nil {
					firstErr = err
				}
				lock.Unlock()

				cancel()

				return
			}

			outs[idx] = out
		}(idx, in)
	}

	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}

	return outs, nil
}

package ocr

import (
	"context"
	"fmt"

	"golang.org/x/sync/semaphore"
)

// boundedWorker runs calls that cannot be interrupted once started. A call
// abandoned by its caller keeps its slot until it returns, so at most limit
// calls are ever in flight.
type boundedWorker struct {
	slots *semaphore.Weighted
}

func newBoundedWorker(limit int) *boundedWorker {
	if limit < 1 {
		limit = 1
	}
	return &boundedWorker{slots: semaphore.NewWeighted(int64(limit))}
}

// do runs fn in the background and waits for it or for ctx.
func (w *boundedWorker) do(ctx context.Context, fn func() (string, error)) (string, error) {
	if err := w.slots.Acquire(ctx, 1); err != nil {
		return "", fmt.Errorf("wait for worker: %w", err)
	}

	type result struct {
		text string
		err  error
	}
	done := make(chan result, 1)
	go func() {
		defer w.slots.Release(1)
		text, err := fn()
		done <- result{text: text, err: err}
	}()

	select {
	case r := <-done:
		return r.text, r.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

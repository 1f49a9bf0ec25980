package ocr

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoundedWorker_ReturnsResult(t *testing.T) {
	w := newBoundedWorker(2)

	text, err := w.do(context.Background(), func() (string, error) { return "page text", nil })
	require.NoError(t, err)
	assert.Equal(t, "page text", text)

	_, err = w.do(context.Background(), func() (string, error) { return "", errors.New("bad image") })
	assert.EqualError(t, err, "bad image")
}

func TestBoundedWorker_AbandonedCallHoldsSlot(t *testing.T) {
	w := newBoundedWorker(1)
	unblock := make(chan struct{})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := w.do(ctx, func() (string, error) {
		<-unblock
		return "late", nil
	})
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	// The stuck call still owns the only slot.
	var started atomic.Bool
	ctx2, cancel2 := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel2()
	_, err = w.do(ctx2, func() (string, error) {
		started.Store(true)
		return "", nil
	})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.False(t, started.Load())

	close(unblock)
	text, err := w.do(context.Background(), func() (string, error) { return "next", nil })
	require.NoError(t, err)
	assert.Equal(t, "next", text)
}

package ocr

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestAvailability_ProbesOnce(t *testing.T) {
	var probes atomic.Int32
	a := NewAvailability(func(ctx context.Context) error {
		probes.Add(1)
		return nil
	}, zerolog.Nop())

	assert.Equal(t, Unprobed, a.State())
	assert.True(t, a.Check(context.Background()))
	assert.True(t, a.Check(context.Background()))
	assert.Equal(t, Available, a.State())
	assert.EqualValues(t, 1, probes.Load())
}

func TestAvailability_UnavailableIsSticky(t *testing.T) {
	fail := true
	a := NewAvailability(func(ctx context.Context) error {
		if fail {
			return errors.New("not installed")
		}
		return nil
	}, zerolog.Nop())

	assert.False(t, a.Check(context.Background()))
	fail = false
	assert.False(t, a.Check(context.Background()))
	assert.Equal(t, Unavailable, a.State())
}

func TestAvailability_ConcurrentChecksAgree(t *testing.T) {
	a := NewAvailability(func(ctx context.Context) error { return nil }, zerolog.Nop())

	var wg sync.WaitGroup
	results := make([]bool, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = a.Check(context.Background())
		}(i)
	}
	wg.Wait()

	for _, r := range results {
		assert.True(t, r)
	}
}

func TestFixedAvailability(t *testing.T) {
	assert.True(t, FixedAvailability(Available).Check(context.Background()))
	assert.False(t, FixedAvailability(Unavailable).Check(context.Background()))
	assert.False(t, FixedAvailability(Unprobed).Check(context.Background()))
	assert.Equal(t, "unavailable", Unavailable.String())
}

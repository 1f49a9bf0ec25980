package ocr

import (
	"context"
	"sync/atomic"

	"github.com/rs/zerolog"
)

// State is the cached result of probing the OCR toolchain.
type State int32

const (
	Unprobed State = iota
	Available
	Unavailable
)

func (s State) String() string {
	switch s {
	case Available:
		return "available"
	case Unavailable:
		return "unavailable"
	default:
		return "unprobed"
	}
}

// ProbeFunc checks whether the engine can run. A nil error means available.
type ProbeFunc func(ctx context.Context) error

// Availability caches the engine probe for the lifetime of the value.
// The first Check runs the probe; later checks never re-probe, even if the
// binary appears or disappears afterwards. Concurrent first checks may both
// probe; the first stored result wins.
type Availability struct {
	state  atomic.Int32
	probe  ProbeFunc
	logger zerolog.Logger
}

// NewAvailability returns an unprobed Availability backed by probe.
func NewAvailability(probe ProbeFunc, logger zerolog.Logger) *Availability {
	return &Availability{probe: probe, logger: logger}
}

// FixedAvailability returns an Availability pinned to s. Unprobed behaves as
// Unavailable on first Check since there is nothing to probe.
func FixedAvailability(s State) *Availability {
	a := &Availability{logger: zerolog.Nop()}
	a.state.Store(int32(s))
	return a
}

// State returns the cached state without probing.
func (a *Availability) State() State {
	return State(a.state.Load())
}

// Check probes on first use and reports whether the engine is available.
func (a *Availability) Check(ctx context.Context) bool {
	if s := a.State(); s != Unprobed {
		return s == Available
	}

	next := Unavailable
	if a.probe != nil {
		if err := a.probe(ctx); err != nil {
			a.logger.Warn().Err(err).Msg("tesseract not available, using demonstration mode")
		} else {
			next = Available
			a.logger.Info().Msg("tesseract OCR available")
		}
	}
	a.state.CompareAndSwap(int32(Unprobed), int32(next))
	return a.State() == Available
}

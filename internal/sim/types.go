package sim

import (
	"time"

	"github.com/san-kum/orbitsim/internal/dynamo"
)

type Config struct {
	// Steps is the number of propagator steps to take.
	Steps int
	// SampleEvery keeps every n-th state in the result; the initial and
	// final states are always kept.
	SampleEvery   int
	ValidateState bool
}

func DefaultConfig() Config {
	return Config{
		Steps:         2000,
		SampleEvery:   1,
		ValidateState: true,
	}
}

type Result struct {
	States     []dynamo.State
	Metrics    map[string]float64
	StepsTaken int
	// Finished reports that the propagator ran out of steps on its own.
	Finished bool
	Errors   []error
	Elapsed  time.Duration
}

// Final returns the last recorded state.
func (r *Result) Final() dynamo.State {
	if len(r.States) == 0 {
		return nil
	}
	return r.States[len(r.States)-1]
}

// Times returns the time slot of every recorded state.
func (r *Result) Times() []float64 {
	ts := make([]float64, len(r.States))
	for i, x := range r.States {
		ts[i] = x.Time()
	}
	return ts
}

package dynamo

import (
	"fmt"

	"github.com/pkg/errors"
)

// Domain errors for propagation.
var (
	// ErrInvalidState indicates a state vector with NaN or Inf components.
	ErrInvalidState = errors.New("dynamo: invalid state (NaN or Inf detected)")

	// ErrParameterBounds indicates a parameter value is outside valid range.
	ErrParameterBounds = errors.New("dynamo: parameter out of valid bounds")

	// ErrDimensionMismatch indicates vectors whose lengths do not agree.
	ErrDimensionMismatch = errors.New("dynamo: dimension mismatch")

	// ErrStepTooSmall indicates adaptive timestep became too small.
	ErrStepTooSmall = errors.New("dynamo: adaptive timestep below minimum")

	// ErrStepRejected indicates an adaptive step was rejected more times
	// than allowed without making progress.
	ErrStepRejected = errors.New("dynamo: adaptive step rejected too many times")

	// ErrDone is returned by a Stepper whose sequence has ended.
	ErrDone = errors.New("dynamo: propagation finished")
)

// SimulationError wraps an error with simulation context.
type SimulationError struct {
	Step    int
	Time    float64
	State   State
	Wrapped error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("step %d (t=%.6g): %v", e.Step, e.Time, e.Wrapped)
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}

package dynamo

import (
	"iter"

	"github.com/pkg/errors"
)

// Take pulls up to n states from s. Reaching ErrDone ends the sequence early
// without an error; any other error is returned with the states collected
// so far.
func Take(s Stepper, n int) ([]State, error) {
	out := make([]State, 0, n)
	for i := 0; i < n; i++ {
		x, err := s.Next()
		if errors.Is(err, ErrDone) {
			break
		}
		if err != nil {
			return out, err
		}
		out = append(out, x)
	}
	return out, nil
}

// All ranges over s until it is exhausted or fails. The error, if any, is
// yielded once as the final element.
func All(s Stepper) iter.Seq2[State, error] {
	return func(yield func(State, error) bool) {
		for {
			x, err := s.Next()
			if errors.Is(err, ErrDone) {
				return
			}
			if err != nil {
				yield(nil, err)
				return
			}
			if !yield(x, nil) {
				return
			}
		}
	}
}

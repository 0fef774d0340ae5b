// Package dynamo provides the core primitives shared by every propagator.
//
//   - [State]: fixed-length vector, slot 0 holds time
//   - [System]: derivative function dX/dt = f(X)
//   - [Compose]: builds a System from two partial derivative functions
//   - [Stepper]: yields one propagated state per call
//
// # Example
//
//	sys := dynamo.Compose(velocity, acceleration)
//	rk := integrators.NewRK4(sys, x0, 0.001)
//	states, err := dynamo.Take(rk, 2000)
//
// # Thread Safety
//
// State values are plain slices. Steppers hold mutable state and must not be
// shared between goroutines.
package dynamo

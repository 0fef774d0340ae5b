// Package twobody reduces a pair of gravitating bodies to their relative
// motion and maps relative states back to absolute body positions.
package twobody

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/orbitsim/internal/dynamo"
)

// Body is a point mass with an initial position and velocity.
type Body struct {
	Mass     float64
	Position dynamo.State
	Velocity dynamo.State
}

// System is the relative formulation of a two-body problem. The state
// vector is [t, r..., v...] where r and v are body2 relative to body1.
type System struct {
	body1, body2 Body
	g            float64
	dim          int
}

// New validates the bodies and builds the system. Both masses must be
// positive and every position and velocity must share a dimension of 2 or 3.
func New(body1, body2 Body, g float64) (*System, error) {
	if body1.Mass <= 0 || body2.Mass <= 0 {
		return nil, errors.Wrapf(dynamo.ErrParameterBounds,
			"masses must be positive, got %g and %g", body1.Mass, body2.Mass)
	}

	dim := len(body1.Position)
	if dim != 2 && dim != 3 {
		return nil, errors.Wrapf(dynamo.ErrDimensionMismatch, "unsupported dimension %d", dim)
	}
	for _, v := range []dynamo.State{body1.Velocity, body2.Position, body2.Velocity} {
		if len(v) != dim {
			return nil, errors.Wrapf(dynamo.ErrDimensionMismatch, "got vector of length %d, want %d", len(v), dim)
		}
	}

	return &System{
		body1: copyBody(body1),
		body2: copyBody(body2),
		g:     g,
		dim:   dim,
	}, nil
}

func copyBody(b Body) Body {
	return Body{Mass: b.Mass, Position: b.Position.Clone(), Velocity: b.Velocity.Clone()}
}

// Dim is the spatial dimension N.
func (s *System) Dim() int { return s.dim }

// StateDim is the length of the state vector, 2N+1.
func (s *System) StateDim() int { return 2*s.dim + 1 }

// Mu is the gravitational parameter g(m1+m2) of the relative orbit.
func (s *System) Mu() float64 { return s.g * (s.body1.Mass + s.body2.Mass) }

// InitialState returns [0, Δpos, Δvel].
func (s *System) InitialState() dynamo.State {
	dp := s.body2.Position.Sub(s.body1.Position)
	dv := s.body2.Velocity.Sub(s.body1.Velocity)
	return dynamo.Concat(s.StateDim(), dp, dv)
}

// Derivative returns d/dt [t, r, v] = [·, v, -μ r/|r|³].
func (s *System) Derivative() dynamo.System {
	n := s.dim
	mu := s.Mu()

	velocity := func(x dynamo.State) dynamo.State {
		return x[n+1 : 2*n+1].Clone()
	}
	gravity := func(x dynamo.State) dynamo.State {
		r := x[1 : n+1]
		d := floats.Norm(r, 2)
		return r.Scale(-mu / (d * d * d))
	}
	return dynamo.Compose(velocity, gravity)
}

// CenterOfMassMotion returns the constant velocity A and initial position B
// of the barycentre, so that it sits at A t + B.
func (s *System) CenterOfMassMotion() (a, b dynamo.State) {
	m1, m2 := s.body1.Mass, s.body2.Mass
	total := m1 + m2
	a = s.body1.Velocity.Scale(m1).Add(s.body2.Velocity.Scale(m2)).Div(total)
	b = s.body1.Position.Scale(m1).Add(s.body2.Position.Scale(m2)).Div(total)
	return a, b
}

// Energy is the specific orbital energy |v|²/2 - μ/|r| of the relative
// motion. It is conserved by the exact flow.
func (s *System) Energy(x dynamo.State) float64 {
	n := s.dim
	r := x[1 : n+1]
	v := x[n+1 : 2*n+1]
	speed := floats.Norm(v, 2)
	return 0.5*speed*speed - s.Mu()/floats.Norm(r, 2)
}

// Reader maps relative states of this system to body positions.
func (s *System) Reader() *Reader {
	a, b := s.CenterOfMassMotion()
	return NewReader(a, b, s.body1.Mass, s.body2.Mass)
}

package kepler

import (
	"math"

	"github.com/san-kum/orbitsim/internal/dynamo"
)

const (
	anomalyTolerance = 1e-8
	anomalyMaxIter   = 30
	highEccentricity = 0.8
)

// EccentricAnomaly solves Kepler's equation M = E - e sin E by Newton's
// method. M is reduced to [0, 2π) and the result shifted back by the same
// multiple of 2π. The first guess is E = M, or E = π above e = 0.8 where
// iterating from M can cycle. It stops after 30 iterations or once the
// residual drops below 1e-8, reporting whether it converged.
func EccentricAnomaly(m, e float64) (ecc float64, iterations int, converged bool) {
	base := normalizeAngle(m)
	shift := m - base

	ecc = base
	if e > highEccentricity {
		ecc = math.Pi
	}
	for iterations = 0; iterations < anomalyMaxIter; iterations++ {
		f := ecc - e*math.Sin(ecc) - base
		if math.Abs(f) < anomalyTolerance {
			return ecc + shift, iterations, true
		}
		ecc -= f / (1 - e*math.Cos(ecc))
	}
	return ecc + shift, iterations, false
}

// Position returns the relative position at time t of an orbit whose mean
// anomaly was M0 at t0, as [t, x, y, z, 0]. Non-convergence of Kepler's
// equation is tolerated; the last Newton iterate is used.
func (el Elements) Position(t0, t float64) dynamo.State {
	m := el.M0 + (t-t0)*el.MeanMotion()
	ecc, _, _ := EccentricAnomaly(m, el.E)

	sinHalf, cosHalf := math.Sincos(ecc / 2)
	nu := 2 * math.Atan2(math.Sqrt(1+el.E)*sinHalf, math.Sqrt(1-el.E)*cosHalf)
	rc := el.A * (1 - el.E*math.Cos(ecc))

	sinNu, cosNu := math.Sincos(nu)
	p := perifocalToInertial(el.W, el.I, el.Omega, rc*cosNu, rc*sinNu)
	return dynamo.State{t, p[0], p[1], p[2], 0}
}

// Propagator walks an orbit at a fixed time step. The first call to Next
// reports the position one step after the initial time.
type Propagator struct {
	el   Elements
	t0   float64
	t    float64
	step float64
}

func NewPropagator(el Elements, step float64) *Propagator {
	return &Propagator{el: el, t: step, step: step}
}

// SetInitTime sets the epoch at which the orbit had mean anomaly M0.
func (p *Propagator) SetInitTime(t0 float64) { p.t0 = t0 }

// SetCurrentTime sets the time reported by the next call to Next.
func (p *Propagator) SetCurrentTime(t float64) { p.t = t }

func (p *Propagator) Next() (dynamo.State, error) {
	x := p.el.Position(p.t0, p.t)
	p.t += p.step
	return x, nil
}

// At evaluates the orbit at t without moving the propagator.
func (p *Propagator) At(t float64) dynamo.State {
	return p.el.Position(p.t0, t)
}

func (p *Propagator) Elements() Elements { return p.el }

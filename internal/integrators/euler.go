package integrators

import "github.com/san-kum/orbitsim/internal/dynamo"

// Euler is the improved Euler (Heun) predictor-corrector method.
type Euler struct {
	sys dynamo.System
	x   dynamo.State
	h   float64
}

func NewEuler(sys dynamo.System, x0 dynamo.State, h float64) *Euler {
	return &Euler{sys: sys, x: x0.Clone(), h: h}
}

func (e *Euler) Next() (dynamo.State, error) {
	k1 := dynamo.Eval(e.sys, e.x)
	trial := e.x.Add(k1.Scale(e.h))
	k2 := dynamo.Eval(e.sys, trial)

	e.x = e.x.Add(k1.Add(k2).Scale(e.h).Div(2))
	return e.x.Clone(), nil
}

// Current returns a copy of the latest state.
func (e *Euler) Current() dynamo.State { return e.x.Clone() }

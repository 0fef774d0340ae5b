package integrators

import "github.com/san-kum/orbitsim/internal/dynamo"

// RK4 is the classical fourth-order Runge-Kutta method with a fixed step.
type RK4 struct {
	sys dynamo.System
	x   dynamo.State
	h   float64

	k1, k2, k3, k4 dynamo.State
	scratch        dynamo.State
}

func NewRK4(sys dynamo.System, x0 dynamo.State, h float64) *RK4 {
	return &RK4{sys: sys, x: x0.Clone(), h: h}
}

func (r *RK4) ensureScratch(n int) {
	if len(r.k1) != n {
		r.k1 = make(dynamo.State, n)
		r.k2 = make(dynamo.State, n)
		r.k3 = make(dynamo.State, n)
		r.k4 = make(dynamo.State, n)
		r.scratch = make(dynamo.State, n)
	}
}

func (r *RK4) Next() (dynamo.State, error) {
	x, h := r.x, r.h
	n := len(x)
	r.ensureScratch(n)

	copy(r.k1, dynamo.Eval(r.sys, x))

	for i := 0; i < n; i++ {
		r.scratch[i] = x[i] + h*0.5*r.k1[i]
	}
	copy(r.k2, dynamo.Eval(r.sys, r.scratch))

	for i := 0; i < n; i++ {
		r.scratch[i] = x[i] + h*0.5*r.k2[i]
	}
	copy(r.k3, dynamo.Eval(r.sys, r.scratch))

	for i := 0; i < n; i++ {
		r.scratch[i] = x[i] + h*r.k3[i]
	}
	copy(r.k4, dynamo.Eval(r.sys, r.scratch))

	result := make(dynamo.State, n)
	h6 := h / 6.0
	for i := 0; i < n; i++ {
		result[i] = x[i] + h6*(r.k1[i]+2*r.k2[i]+2*r.k3[i]+r.k4[i])
	}

	r.x = result
	return result.Clone(), nil
}

func (r *RK4) Current() dynamo.State { return r.x.Clone() }

package integrators

import "github.com/san-kum/orbitsim/internal/dynamo"

// Verlet is velocity Verlet over states laid out as [t, r..., v...]. The
// system's acceleration must not depend on velocity.
type Verlet struct {
	sys     dynamo.System
	x       dynamo.State
	h       float64
	scratch dynamo.State
}

func NewVerlet(sys dynamo.System, x0 dynamo.State, h float64) *Verlet {
	return &Verlet{sys: sys, x: x0.Clone(), h: h}
}

func (v *Verlet) ensureScratch(n int) {
	if len(v.scratch) != n {
		v.scratch = make(dynamo.State, n)
	}
}

func (v *Verlet) Next() (dynamo.State, error) {
	x, h := v.x, v.h
	n := len(x)
	half := (n - 1) / 2
	v.ensureScratch(n)

	result := make(dynamo.State, n)
	dx := dynamo.Eval(v.sys, x)
	h2 := h * h

	for i := 1; i <= half; i++ {
		result[i] = x[i] + x[half+i]*h + 0.5*dx[half+i]*h2
	}

	v.scratch[0] = x[0] + h
	for i := 1; i <= half; i++ {
		v.scratch[i] = result[i]
		v.scratch[half+i] = x[half+i]
	}

	dxNew := dynamo.Eval(v.sys, v.scratch)

	halfH := 0.5 * h
	for i := 1; i <= half; i++ {
		result[half+i] = x[half+i] + (dx[half+i]+dxNew[half+i])*halfH
	}
	result[0] = x[0] + h

	v.x = result
	return result.Clone(), nil
}

func (v *Verlet) Current() dynamo.State { return v.x.Clone() }

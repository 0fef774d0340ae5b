package integrators

import "github.com/san-kum/orbitsim/internal/dynamo"

// AB2 is the two-step Adams-Bashforth method. It needs two consecutive
// seed states, usually produced by a single-step method.
type AB2 struct {
	sys        dynamo.System
	prev, curr dynamo.State
	h          float64
}

func NewAB2(sys dynamo.System, seed1, seed2 dynamo.State, h float64) *AB2 {
	return &AB2{sys: sys, prev: seed1.Clone(), curr: seed2.Clone(), h: h}
}

func (a *AB2) Next() (dynamo.State, error) {
	f1 := dynamo.Eval(a.sys, a.prev).Scale(a.h)
	f2 := dynamo.Eval(a.sys, a.curr).Scale(a.h)

	next := a.curr.Add(f2.Scale(3).Div(2)).Sub(f1.Div(2))
	next[0] = a.curr[0] + a.h

	a.prev, a.curr = a.curr, next
	return next.Clone(), nil
}

func (a *AB2) Current() dynamo.State { return a.curr.Clone() }

// AM2 is the two-step Adams-Moulton method with an AB2 predictor.
type AM2 struct {
	sys        dynamo.System
	prev, curr dynamo.State
	h          float64
}

func NewAM2(sys dynamo.System, seed1, seed2 dynamo.State, h float64) *AM2 {
	return &AM2{sys: sys, prev: seed1.Clone(), curr: seed2.Clone(), h: h}
}

func (a *AM2) Next() (dynamo.State, error) {
	f1 := dynamo.Eval(a.sys, a.prev).Scale(a.h)
	f2 := dynamo.Eval(a.sys, a.curr).Scale(a.h)

	predicted := a.curr.Add(f2.Scale(3).Div(2)).Sub(f1.Div(2))
	f3 := dynamo.Eval(a.sys, predicted).Scale(a.h)

	next := a.curr.
		Add(f3.Scale(5).Div(12)).
		Add(f2.Scale(2).Div(3)).
		Sub(f1.Div(12))
	next[0] = a.curr[0] + a.h

	a.prev, a.curr = a.curr, next
	return next.Clone(), nil
}

func (a *AM2) Current() dynamo.State { return a.curr.Clone() }

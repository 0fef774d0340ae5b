package integrators

import (
	"math"

	"github.com/pkg/errors"

	"github.com/san-kum/orbitsim/internal/dynamo"
)

// Runge-Kutta-Fehlberg 4(5) coefficients
var (
	a3 = 3.0 / 8.0
	a4 = 12.0 / 13.0
	a6 = 1.0 / 2.0

	b21 = 1.0 / 4.0
	b31 = 3.0 / 32.0
	b32 = 9.0 / 32.0
	b41 = 1932.0 / 2197.0
	b42 = -7200.0 / 2197.0
	b43 = 7296.0 / 2197.0
	b51 = 439.0 / 216.0
	b52 = -8.0
	b53 = 3680.0 / 513.0
	b54 = -845.0 / 4104.0
	b61 = -8.0 / 27.0
	b62 = 2.0
	b63 = -3544.0 / 2565.0
	b64 = 1859.0 / 4104.0
	b65 = -11.0 / 40.0

	c1 = 25.0 / 216.0
	c3 = 1408.0 / 2565.0
	c4 = 2197.0 / 4104.0
	c5 = -1.0 / 5.0

	d1 = 16.0 / 135.0
	d3 = 6656.0 / 12825.0
	d4 = 28561.0 / 56430.0
	d5 = -9.0 / 50.0
	d6 = 2.0 / 55.0
)

const (
	DefaultMinScale   = 0.1
	DefaultMaxScale   = 4.0
	DefaultMaxRejects = 50

	stepSafety = 0.84
)

// Stats counts the work done by an adaptive integrator.
type Stats struct {
	Accepted    int
	Rejected    int
	Evaluations int
	// LastStep is the step size used by the most recent accepted step.
	LastStep float64
	// LastError is the error estimate of the most recent accepted step.
	LastError float64
}

// RK45 is the adaptive Runge-Kutta-Fehlberg 4(5) method. A step is accepted
// when the per-unit-step error estimate |x5 - x4| / |h| is within the
// tolerance; the step size is rescaled after every attempt.
type RK45 struct {
	sys     dynamo.System
	x       dynamo.State
	h       float64
	tol     float64
	maxTime float64

	minScale   float64
	maxScale   float64
	minStep    float64
	maxRejects int

	done  bool
	stats Stats
}

type RK45Option func(*RK45)

// WithScaleBounds clamps the step rescaling factor to [min, max].
func WithScaleBounds(min, max float64) RK45Option {
	return func(r *RK45) {
		r.minScale = min
		r.maxScale = max
	}
}

// WithMaxRejects allows n rejected attempts per step. The step fails with
// ErrStepRejected when attempt n+1 is also rejected, so n = 0 fails on the
// first rejection.
func WithMaxRejects(n int) RK45Option {
	return func(r *RK45) { r.maxRejects = n }
}

// WithMinStep fails a step once |h| shrinks below min.
func WithMinStep(min float64) RK45Option {
	return func(r *RK45) { r.minStep = min }
}

func NewRK45(sys dynamo.System, x0 dynamo.State, h, tol, maxTime float64, opts ...RK45Option) *RK45 {
	r := &RK45{
		sys:        sys,
		x:          x0.Clone(),
		h:          h,
		tol:        tol,
		maxTime:    maxTime,
		minScale:   DefaultMinScale,
		maxScale:   DefaultMaxScale,
		maxRejects: DefaultMaxRejects,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Next attempts steps until one is accepted. It returns dynamo.ErrDone once
// the time slot has passed the configured maximum time.
func (r *RK45) Next() (dynamo.State, error) {
	if r.done || r.x[0] > r.maxTime {
		r.done = true
		return nil, dynamo.ErrDone
	}

	for rejects := 0; ; rejects++ {
		if rejects > r.maxRejects {
			return nil, r.fail(errors.Wrapf(dynamo.ErrStepRejected, "%d rejections, h=%g", rejects, r.h))
		}
		if r.minStep > 0 && math.Abs(r.h) < r.minStep {
			return nil, r.fail(errors.Wrapf(dynamo.ErrStepTooSmall, "h=%g", r.h))
		}

		h := r.h
		next, errEst := r.attempt(h)
		if math.IsNaN(errEst) || math.IsInf(errEst, 0) {
			return nil, r.fail(errors.Wrapf(dynamo.ErrInvalidState, "error estimate %g", errEst))
		}

		r.h = h * r.scale(errEst)
		if errEst <= r.tol {
			next[0] = r.x[0] + h
			r.x = next
			r.stats.Accepted++
			r.stats.LastStep = h
			r.stats.LastError = errEst
			return next.Clone(), nil
		}
		r.stats.Rejected++
	}
}

func (r *RK45) fail(err error) error {
	return &dynamo.SimulationError{
		Step:    r.stats.Accepted,
		Time:    r.x[0],
		State:   r.x.Clone(),
		Wrapped: err,
	}
}

// scale returns the step rescaling factor 0.84 (tol/err)^(1/4), clamped.
func (r *RK45) scale(errEst float64) float64 {
	if errEst == 0 {
		return r.maxScale
	}
	sigma := stepSafety * math.Pow(r.tol/errEst, 0.25)
	return math.Max(r.minScale, math.Min(r.maxScale, sigma))
}

// attempt computes the fourth-order candidate for step h together with the
// per-unit-step error estimate against the fifth-order solution.
func (r *RK45) attempt(h float64) (dynamo.State, float64) {
	x := r.x
	t := x[0]
	n := len(x)

	stage := func(coef func(i int) float64, time float64) dynamo.State {
		xs := make(dynamo.State, n)
		for i := 0; i < n; i++ {
			xs[i] = x[i] + coef(i)
		}
		xs[0] = time
		r.stats.Evaluations++
		return dynamo.Eval(r.sys, xs).Scale(h)
	}

	r.stats.Evaluations++
	k1 := dynamo.Eval(r.sys, x).Scale(h)
	k2 := stage(func(i int) float64 { return b21 * k1[i] }, t+b21*h)
	k3 := stage(func(i int) float64 { return b31*k1[i] + b32*k2[i] }, t+a3*h)
	k4 := stage(func(i int) float64 { return b41*k1[i] + b42*k2[i] + b43*k3[i] }, t+a4*h)
	k5 := stage(func(i int) float64 { return b51*k1[i] + b52*k2[i] + b53*k3[i] + b54*k4[i] }, t+h)
	k6 := stage(func(i int) float64 {
		return b61*k1[i] + b62*k2[i] + b63*k3[i] + b64*k4[i] + b65*k5[i]
	}, t+a6*h)

	next := make(dynamo.State, n)
	diff := make(dynamo.State, n)
	for i := 1; i < n; i++ {
		next[i] = x[i] + c1*k1[i] + c3*k3[i] + c4*k4[i] + c5*k5[i]
		fifth := x[i] + d1*k1[i] + d3*k3[i] + d4*k4[i] + d5*k5[i] + d6*k6[i]
		diff[i] = fifth - next[i]
	}

	return next, diff.Norm() / math.Abs(h)
}

// StepSize returns the step size the next attempt will use.
func (r *RK45) StepSize() float64 { return r.h }

func (r *RK45) Stats() Stats { return r.stats }

func (r *RK45) Current() dynamo.State { return r.x.Clone() }

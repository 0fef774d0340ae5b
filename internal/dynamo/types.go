package dynamo

import (
	"math"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/floats"
)

// State is a fixed-length vector of reals. By convention slot 0 carries
// time and the remaining slots hold the physical quantities.
//
// Arithmetic never mutates the receiver. Add and Sub panic when the operand
// lengths differ.
type State []float64

// NewState returns the zero vector of length n.
func NewState(n int) State {
	return make(State, n)
}

// FromArray copies vals into a new State.
func FromArray(vals ...float64) State {
	s := make(State, len(vals))
	copy(s, vals)
	return s
}

// Concat builds a vector of length n from a followed by b. When the
// combined length is short of n the result is left-padded with zeros, and
// when it exceeds n only the first n entries are kept.
func Concat(n int, a, b State) State {
	result := make(State, n)
	start := 0
	if total := len(a) + len(b); total < n {
		start = n - total
	}
	copied := copy(result[start:], a)
	if start+copied < n {
		copy(result[start+copied:], b)
	}
	return result
}

// Abs returns the Euclidean magnitude of s.
func Abs(s State) float64 {
	return s.Norm()
}

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

// Time returns slot 0.
func (s State) Time() float64 {
	if len(s) == 0 {
		return 0
	}
	return s[0]
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (s State) Norm() float64 {
	if len(s) == 0 {
		return 0
	}
	return floats.Norm(s, 2)
}

func (s State) Add(other State) State {
	return floats.AddTo(make(State, len(s)), s, other)
}

func (s State) Sub(other State) State {
	return floats.SubTo(make(State, len(s)), s, other)
}

func (s State) Scale(factor float64) State {
	return floats.ScaleTo(make(State, len(s)), factor, s)
}

// Div divides every component by d. A zero divisor yields Inf or NaN.
func (s State) Div(d float64) State {
	result := make(State, len(s))
	for i, v := range s {
		result[i] = v / d
	}
	return result
}

func (s State) String() string {
	parts := make([]string, len(s))
	for i, v := range s {
		parts[i] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	return strings.Join(parts, ",")
}

// System is a derivative function over the full state. Derive must return a
// new vector of the same length as x and must not retain x.
type System interface {
	Derive(x State) State
}

// SystemFunc adapts an ordinary function to System.
type SystemFunc func(x State) State

func (f SystemFunc) Derive(x State) State { return f(x) }

// Partial computes one part of a derivative from the full state.
type Partial func(x State) State

type composed struct {
	first, second Partial
}

// Compose joins two partial derivative functions. The result is
// Concat(len(x), first(x), second(x)); a nil second contributes nothing.
func Compose(first, second Partial) System {
	return &composed{first: first, second: second}
}

func (c *composed) Derive(x State) State {
	a := c.first(x)
	var b State
	if c.second != nil {
		b = c.second(x)
	}
	return Concat(len(x), a, b)
}

// Eval evaluates sys at x and forces the time slot of the result to 1, so
// that integrating it advances time at unit rate.
func Eval(sys System, x State) State {
	d := sys.Derive(x)
	if len(d) > 0 {
		d[0] = 1
	}
	return d
}

// Hamiltonian is implemented by systems with a conserved energy.
type Hamiltonian interface {
	Energy(x State) float64
}

// Stepper yields successive states of a propagation. Next returns ErrDone
// once a bounded sequence is exhausted.
type Stepper interface {
	Next() (State, error)
}

// Metric observes every state of a run.
type Metric interface {
	Name() string
	Observe(x State)
	Value() float64
	Reset()
}

type Observer interface {
	OnStep(step int, x State)
}

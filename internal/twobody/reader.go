package twobody

import (
	"fmt"

	"github.com/san-kum/orbitsim/internal/dynamo"
)

// Position holds the absolute positions of both bodies at one instant.
type Position struct {
	Time  float64
	Body1 dynamo.State
	Body2 dynamo.State
}

func (p Position) String() string {
	return fmt.Sprintf("%s,%s", p.Body1, p.Body2)
}

// Reader converts relative states into absolute positions using the
// barycentre motion A t + B.
type Reader struct {
	a, b   dynamo.State
	m1, m2 float64
}

func NewReader(a, b dynamo.State, m1, m2 float64) *Reader {
	return &Reader{a: a.Clone(), b: b.Clone(), m1: m1, m2: m2}
}

// Center returns the barycentre position at time t.
func (r *Reader) Center(t float64) dynamo.State {
	return r.a.Scale(t).Add(r.b)
}

// Read accepts any vector whose slot 0 is time and whose next N slots are
// the relative position, which covers integrator states and Kepler output.
func (r *Reader) Read(x dynamo.State) Position {
	n := len(r.a)
	t := x[0]
	rel := x[1 : n+1]
	center := r.Center(t)
	total := r.m1 + r.m2

	return Position{
		Time:  t,
		Body1: center.Sub(rel.Scale(r.m2 / total)),
		Body2: center.Add(rel.Scale(r.m1 / total)),
	}
}

// ReadAll maps every state in xs.
func (r *Reader) ReadAll(xs []dynamo.State) []Position {
	out := make([]Position, len(xs))
	for i, x := range xs {
		out[i] = r.Read(x)
	}
	return out
}

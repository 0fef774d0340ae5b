package metrics

import (
	"math"

	"github.com/san-kum/orbitsim/internal/dynamo"
)

// MomentumDrift tracks the largest relative change of the specific angular
// momentum |r × v| of a relative state [t, r..., v...].
type MomentumDrift struct {
	name     string
	initial  float64
	maxDrift float64
	samples  int
}

func NewMomentumDrift() *MomentumDrift {
	return &MomentumDrift{
		name: "momentum_drift",
	}
}

func (m *MomentumDrift) Name() string {
	return m.name
}

func (m *MomentumDrift) Observe(x dynamo.State) {
	h := angularMomentum(x)
	if m.samples == 0 {
		m.initial = h
	}
	m.samples++
	if m.initial != 0 {
		m.maxDrift = math.Max(m.maxDrift, math.Abs(h-m.initial)/m.initial)
	}
}

func (m *MomentumDrift) Value() float64 {
	return m.maxDrift
}

func (m *MomentumDrift) Reset() {
	m.initial = 0
	m.maxDrift = 0
	m.samples = 0
}

func angularMomentum(x dynamo.State) float64 {
	n := (len(x) - 1) / 2
	var r, v [3]float64
	copy(r[:], x[1:n+1])
	copy(v[:], x[n+1:2*n+1])
	hx := r[1]*v[2] - r[2]*v[1]
	hy := r[2]*v[0] - r[0]*v[2]
	hz := r[0]*v[1] - r[1]*v[0]
	return math.Sqrt(hx*hx + hy*hy + hz*hz)
}

package kepler

import (
	"math"
	"testing"

	. "github.com/onsi/gomega"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/orbitsim/internal/dynamo"
	"github.com/san-kum/orbitsim/internal/integrators"
)

func TestFromStateEqualMassScenario(t *testing.T) {
	g := NewWithT(t)

	el, err := FromState(dynamo.State{1, 1}, dynamo.State{-1, 0}, 1)
	g.Expect(err).NotTo(HaveOccurred())

	g.Expect(el.A).To(BeNumerically("~", 1/(math.Sqrt2-1), 1e-12))
	g.Expect(el.E).To(BeNumerically("~", math.Sqrt(2-math.Sqrt2), 1e-12))
	g.Expect(el.I).To(BeNumerically("==", 0))
	g.Expect(el.Omega).To(BeNumerically("==", 0))
	g.Expect(el.W).To(BeNumerically("~", 7*math.Pi/8, 1e-12))
	g.Expect(el.Periapsis()).To(BeNumerically("<", 1))
	g.Expect(el.Apoapsis()).To(BeNumerically(">", math.Sqrt2))
}

var orbits = []struct {
	name string
	r, v dynamo.State
	mu   float64
}{
	{"planar prograde", dynamo.State{1, 1}, dynamo.State{-1, 0}, 1},
	{"planar retrograde", dynamo.State{1, 0}, dynamo.State{0, -1.1}, 1},
	{"inclined", dynamo.State{1, 0.2, 0.3}, dynamo.State{-0.1, 0.9, 0.4}, 1},
	{"inclined descending", dynamo.State{0.8, -0.4, -0.5}, dynamo.State{0.3, 0.7, -0.2}, 1.5},
	{"circular inclined", dynamo.State{1, 0, 0}, dynamo.State{0, math.Sqrt(3) / 2, 0.5}, 1},
	{"circular planar", dynamo.State{0, 2}, dynamo.State{-math.Sqrt(0.5), 0}, 1},
	{"eccentric", dynamo.State{0.3, 0, 0.1}, dynamo.State{0, 2.2, 0.4}, 1},
}

func TestPositionRoundTrip(t *testing.T) {
	for _, tt := range orbits {
		t.Run(tt.name, func(t *testing.T) {
			el, err := FromState(tt.r, tt.v, tt.mu)
			if err != nil {
				t.Fatalf("FromState() error = %v", err)
			}

			got := el.Position(3, 3)
			if len(got) != 5 || got[0] != 3 || got[4] != 0 {
				t.Fatalf("Position() = %v, want [3 x y z 0]", got)
			}
			for k := range tt.r {
				if !scalar.EqualWithinAbs(got[k+1], tt.r[k], 1e-6) {
					t.Errorf("component %d = %.9f, want %.9f", k, got[k+1], tt.r[k])
				}
			}
		})
	}
}

func TestPositionMatchesIntegration(t *testing.T) {
	for _, tt := range orbits {
		t.Run(tt.name, func(t *testing.T) {
			el, err := FromState(tt.r, tt.v, tt.mu)
			if err != nil {
				t.Fatalf("FromState() error = %v", err)
			}

			n := len(tt.r)
			mu := tt.mu
			sys := dynamo.Compose(
				func(x dynamo.State) dynamo.State { return x[n+1:].Clone() },
				func(x dynamo.State) dynamo.State {
					r := x[1 : n+1]
					d := dynamo.Abs(r)
					return r.Scale(-mu / (d * d * d))
				},
			)
			x0 := dynamo.Concat(2*n+1, tt.r, tt.v)
			states, err := dynamo.Take(integrators.NewRK4(sys, x0, 1e-3), 1500)
			if err != nil {
				t.Fatalf("Take() error = %v", err)
			}

			for i := 99; i < len(states); i += 100 {
				x := states[i]
				want := el.Position(0, x[0])
				for k := 0; k < n; k++ {
					if !scalar.EqualWithinAbs(x[k+1], want[k+1], 1e-6) {
						t.Fatalf("t=%.3f component %d: integrated %.9f, kepler %.9f", x[0], k, x[k+1], want[k+1])
					}
				}
			}
		})
	}
}

func TestPeriodicity(t *testing.T) {
	g := NewWithT(t)
	el, err := FromState(dynamo.State{1, 0.2, 0.3}, dynamo.State{-0.1, 0.9, 0.4}, 1)
	g.Expect(err).NotTo(HaveOccurred())

	start := el.Position(0, 0.7)
	later := el.Position(0, 0.7+el.Period())
	for k := 1; k <= 3; k++ {
		g.Expect(later[k]).To(BeNumerically("~", start[k], 1e-6))
	}
}

func TestNotElliptic(t *testing.T) {
	tests := []struct {
		name string
		v    dynamo.State
	}{
		{"hyperbolic", dynamo.State{0, 2}},
		{"fast radial-ish", dynamo.State{3, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromState(dynamo.State{1, 0}, tt.v, 1)
			if !errors.Is(err, ErrNotElliptic) {
				t.Errorf("FromState() error = %v, want ErrNotElliptic", err)
			}
		})
	}
}

func TestFromStateDimensions(t *testing.T) {
	_, err := FromState(dynamo.State{1, 0, 0, 0}, dynamo.State{0, 1, 0, 0}, 1)
	if !errors.Is(err, dynamo.ErrDimensionMismatch) {
		t.Errorf("FromState() error = %v, want ErrDimensionMismatch", err)
	}

	_, err = FromRelative(dynamo.State{0, 1, 0, 0}, 1)
	if !errors.Is(err, dynamo.ErrDimensionMismatch) {
		t.Errorf("FromRelative() error = %v, want ErrDimensionMismatch", err)
	}

	el, err := FromRelative(dynamo.State{0, 1, 1, -1, 0}, 1)
	if err != nil {
		t.Fatalf("FromRelative() error = %v", err)
	}
	if !scalar.EqualWithinAbs(el.W, 7*math.Pi/8, 1e-12) {
		t.Errorf("W = %v, want 7π/8", el.W)
	}
}

func TestEccentricAnomaly(t *testing.T) {
	tests := []struct {
		m, e float64
	}{
		{0, 0.5},
		{0.3, 0},
		{1, 0.1},
		{2.5, 0.7},
		{-1.2, 0.8},
		{5, 0.3},
	}

	for _, tt := range tests {
		ecc, iters, ok := EccentricAnomaly(tt.m, tt.e)
		if !ok {
			t.Errorf("EccentricAnomaly(%v, %v) did not converge", tt.m, tt.e)
			continue
		}
		if iters > anomalyMaxIter {
			t.Errorf("iterations = %d", iters)
		}
		if res := ecc - tt.e*math.Sin(ecc) - tt.m; math.Abs(res) >= anomalyTolerance {
			t.Errorf("EccentricAnomaly(%v, %v) residual %e", tt.m, tt.e, res)
		}
	}

	if ecc, iters, _ := EccentricAnomaly(0.3, 0); ecc != 0.3 || iters != 0 {
		t.Errorf("circular orbit should need no iterations, got E=%v after %d", ecc, iters)
	}
}

func TestEccentricAnomalyHighEccentricity(t *testing.T) {
	const n = 1000
	for _, e := range []float64{0.9, 0.99, 0.999} {
		failed := 0
		for i := 0; i < n; i++ {
			m := 2 * math.Pi * float64(i) / n
			ecc, _, ok := EccentricAnomaly(m, e)
			if res := ecc - e*math.Sin(ecc) - m; !ok || math.Abs(res) >= anomalyTolerance {
				failed++
			}
		}
		if failed > 0 {
			t.Errorf("e=%v: %d of %d mean anomalies did not converge", e, failed, n)
		}
	}

	// mean anomalies outside [0, 2π) solve to the same orbit position
	ecc, _, ok := EccentricAnomaly(0.1+8*math.Pi, 0.99)
	base, _, _ := EccentricAnomaly(0.1, 0.99)
	if !ok || math.Abs(ecc-8*math.Pi-base) > 1e-9 {
		t.Errorf("E(M+8π) = %v, want %v", ecc, base+8*math.Pi)
	}
}

func TestEccentricAnomalyNonConvergence(t *testing.T) {
	ecc, iters, ok := EccentricAnomaly(math.NaN(), 0.5)
	if ok {
		t.Error("expected non-convergence for NaN mean anomaly")
	}
	if iters != anomalyMaxIter {
		t.Errorf("iterations = %d, want %d", iters, anomalyMaxIter)
	}
	if !math.IsNaN(ecc) {
		t.Errorf("E = %v, want NaN", ecc)
	}
}

func TestPropagator(t *testing.T) {
	g := NewWithT(t)
	el, err := FromState(dynamo.State{1, 1}, dynamo.State{-1, 0}, 1)
	g.Expect(err).NotTo(HaveOccurred())

	p := NewPropagator(el, 0.5)
	first, err := p.Next()
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(first[0]).To(Equal(0.5))
	g.Expect(first).To(Equal(el.Position(0, 0.5)))

	second, _ := p.Next()
	g.Expect(second[0]).To(Equal(1.0))

	p.SetInitTime(2)
	p.SetCurrentTime(2)
	atEpoch, _ := p.Next()
	g.Expect(atEpoch[1]).To(BeNumerically("~", 1, 1e-6))
	g.Expect(atEpoch[2]).To(BeNumerically("~", 1, 1e-6))
	g.Expect(p.At(2.5)[1:]).To(Equal(el.Position(0, 0.5)[1:]))
	g.Expect(p.Elements()).To(Equal(el))
}

func TestRotationIsOrthonormal(t *testing.T) {
	r := R3R1R3(0.4, 1.1, -2.3)
	var prod mat.Dense
	prod.Mul(r, r.T())

	if !mat.EqualApprox(&prod, identity3(), 1e-12) {
		t.Errorf("R Rᵀ = %v", mat.Formatted(&prod))
	}

	p := perifocalToInertial(0, 0, 0, 2, 3)
	if p != [3]float64{2, 3, 0} {
		t.Errorf("identity rotation moved the vector: %v", p)
	}
}

func identity3() *mat.Dense {
	return mat.NewDense(3, 3, []float64{1, 0, 0, 0, 1, 0, 0, 0, 1})
}

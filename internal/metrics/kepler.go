package metrics

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/orbitsim/internal/dynamo"
	"github.com/san-kum/orbitsim/internal/kepler"
)

// KeplerDeviation measures the distance between integrated relative
// positions and the closed-form orbit at the same timestamps.
type KeplerDeviation struct {
	name       string
	elements   kepler.Elements
	t0         float64
	deviations []float64
}

func NewKeplerDeviation(el kepler.Elements, t0 float64) *KeplerDeviation {
	return &KeplerDeviation{
		name:     "kepler_deviation",
		elements: el,
		t0:       t0,
	}
}

func (k *KeplerDeviation) Name() string { return k.name }

func (k *KeplerDeviation) Observe(x dynamo.State) {
	n := (len(x) - 1) / 2
	ref := k.elements.Position(k.t0, x[0])
	sum := 0.0
	for i := 1; i <= n; i++ {
		d := x[i] - ref[i]
		sum += d * d
	}
	k.deviations = append(k.deviations, math.Sqrt(sum))
}

// Value is the largest deviation seen.
func (k *KeplerDeviation) Value() float64 {
	worst := 0.0
	for _, d := range k.deviations {
		if d > worst || math.IsNaN(d) {
			worst = d
		}
	}
	return worst
}

func (k *KeplerDeviation) Mean() float64 {
	if len(k.deviations) == 0 {
		return 0
	}
	return stat.Mean(k.deviations, nil)
}

func (k *KeplerDeviation) StdDev() float64 {
	if len(k.deviations) < 2 {
		return 0
	}
	return stat.StdDev(k.deviations, nil)
}

// Series returns the deviation recorded for every observed state.
func (k *KeplerDeviation) Series() []float64 {
	out := make([]float64, len(k.deviations))
	copy(out, k.deviations)
	return out
}

func (k *KeplerDeviation) Reset() {
	k.deviations = k.deviations[:0]
}

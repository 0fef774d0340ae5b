package metrics

import (
	"github.com/san-kum/orbitsim/internal/dynamo"
)

// Stability is the fraction of observed states that are finite and keep
// the bodies within threshold of each other.
type Stability struct {
	name       string
	threshold  float64
	violations int
	samples    int
}

func NewStability(threshold float64) *Stability {
	return &Stability{
		name:      "stability",
		threshold: threshold,
	}
}

func (s *Stability) Name() string {
	return s.name
}

func (s *Stability) Observe(x dynamo.State) {
	s.samples++
	n := (len(x) - 1) / 2
	if !x.IsValid() || dynamo.Abs(x[1:n+1]) > s.threshold {
		s.violations++
	}
}

func (s *Stability) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *Stability) Reset() {
	s.violations = 0
	s.samples = 0
}

package metrics

import (
	"math"

	"github.com/san-kum/orbitsim/internal/dynamo"
)

// EnergyDrift tracks the largest relative deviation of a conserved energy
// from its value at the first observed state.
type EnergyDrift struct {
	name          string
	initialEnergy float64
	currentEnergy float64
	maxDrift      float64
	samples       int
	sys           dynamo.Hamiltonian
}

func NewEnergyDrift(sys dynamo.Hamiltonian) *EnergyDrift {
	return &EnergyDrift{
		name: "energy_drift",
		sys:  sys,
	}
}

func (e *EnergyDrift) Name() string { return e.name }

func (e *EnergyDrift) Observe(x dynamo.State) {
	energy := e.sys.Energy(x)

	if e.samples == 0 {
		e.initialEnergy = energy
	}

	e.currentEnergy = energy
	e.samples++

	if e.initialEnergy != 0 {
		drift := math.Abs(energy-e.initialEnergy) / math.Abs(e.initialEnergy)
		e.maxDrift = math.Max(e.maxDrift, drift)
	}
}

func (e *EnergyDrift) Value() float64 {
	return e.maxDrift
}

// Current is the most recently observed energy.
func (e *EnergyDrift) Current() float64 { return e.currentEnergy }

func (e *EnergyDrift) Reset() {
	e.initialEnergy = 0
	e.currentEnergy = 0
	e.maxDrift = 0
	e.samples = 0
}

package experiment

import (
	"sort"

	"github.com/pkg/errors"

	"github.com/san-kum/orbitsim/internal/dynamo"
	"github.com/san-kum/orbitsim/internal/integrators"
	"github.com/san-kum/orbitsim/internal/kepler"
	"github.com/san-kum/orbitsim/internal/metrics"
	"github.com/san-kum/orbitsim/internal/twobody"
)

// Params carries the integrator settings shared by all factories.
type Params struct {
	Step       float64
	Tolerance  float64
	MaxTime    float64
	MaxRejects int
}

// Factory builds a stepper that starts from the system's initial state.
type Factory func(sys *twobody.System, p Params) dynamo.Stepper

type Registry struct {
	integrators map[string]Factory
}

func NewRegistry() *Registry {
	r := &Registry{
		integrators: make(map[string]Factory),
	}

	r.integrators["euler"] = func(sys *twobody.System, p Params) dynamo.Stepper {
		return integrators.NewEuler(sys.Derivative(), sys.InitialState(), p.Step)
	}
	r.integrators["rk4"] = func(sys *twobody.System, p Params) dynamo.Stepper {
		return integrators.NewRK4(sys.Derivative(), sys.InitialState(), p.Step)
	}
	r.integrators["rk45"] = func(sys *twobody.System, p Params) dynamo.Stepper {
		return integrators.NewRK45(sys.Derivative(), sys.InitialState(), p.Step, p.Tolerance, p.MaxTime,
			integrators.WithMaxRejects(p.MaxRejects))
	}
	r.integrators["ab2"] = func(sys *twobody.System, p Params) dynamo.Stepper {
		s1, s2 := seeds(sys, p.Step)
		return withSeed(s2, integrators.NewAB2(sys.Derivative(), s1, s2, p.Step))
	}
	r.integrators["am2"] = func(sys *twobody.System, p Params) dynamo.Stepper {
		s1, s2 := seeds(sys, p.Step)
		return withSeed(s2, integrators.NewAM2(sys.Derivative(), s1, s2, p.Step))
	}
	r.integrators["verlet"] = func(sys *twobody.System, p Params) dynamo.Stepper {
		return integrators.NewVerlet(sys.Derivative(), sys.InitialState(), p.Step)
	}

	return r
}

func (r *Registry) GetIntegrator(name string) (Factory, error) {
	fn, ok := r.integrators[name]
	if !ok {
		return nil, errors.Errorf("unknown integrator: %s", name)
	}
	return fn, nil
}

// Build returns a stepper for sys using the named integrator.
func (r *Registry) Build(name string, sys *twobody.System, p Params) (dynamo.Stepper, error) {
	fn, err := r.GetIntegrator(name)
	if err != nil {
		return nil, err
	}
	return fn(sys, p), nil
}

func (r *Registry) ListIntegrators() []string {
	names := make([]string, 0, len(r.integrators))
	for name := range r.integrators {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultMetrics returns the conservation and reference metrics for sys.
// The Kepler deviation is only included for bound orbits.
func (r *Registry) DefaultMetrics(sys *twobody.System) []dynamo.Metric {
	x0 := sys.InitialState()
	separation := dynamo.Abs(x0[1 : sys.Dim()+1])

	ms := []dynamo.Metric{
		metrics.NewEnergyDrift(sys),
		metrics.NewMomentumDrift(),
		metrics.NewStability(100 * separation),
	}
	if el, err := kepler.FromRelative(x0, sys.Mu()); err == nil {
		ms = append(ms, metrics.NewKeplerDeviation(el, x0.Time()))
	}
	return ms
}

// seeds returns the initial state and one RK4 step from it, the two
// starting values a two-step method needs.
func seeds(sys *twobody.System, h float64) (dynamo.State, dynamo.State) {
	x0 := sys.InitialState()
	x1, _ := integrators.NewRK4(sys.Derivative(), x0, h).Next()
	return x0, x1
}

// seeded emits the second seed before handing over to the multistep
// method, so the output has no gap at t = h.
type seeded struct {
	first dynamo.State
	rest  dynamo.Stepper
}

func withSeed(first dynamo.State, rest dynamo.Stepper) dynamo.Stepper {
	return &seeded{first: first.Clone(), rest: rest}
}

func (s *seeded) Next() (dynamo.State, error) {
	if s.first != nil {
		x := s.first
		s.first = nil
		return x, nil
	}
	return s.rest.Next()
}

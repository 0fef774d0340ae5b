package experiment

import (
	"context"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/pkg/errors"

	"github.com/san-kum/orbitsim/internal/config"
	"github.com/san-kum/orbitsim/internal/dynamo"
	"github.com/san-kum/orbitsim/internal/kepler"
	"github.com/san-kum/orbitsim/internal/sim"
	"github.com/san-kum/orbitsim/internal/twobody"
)

type Experiment struct {
	cfg      *config.Config
	registry *Registry
	logger   log.Logger
	sample   int
}

type Option func(*Experiment)

func WithLogger(logger log.Logger) Option {
	return func(e *Experiment) { e.logger = logger }
}

// WithSampleEvery thins the recorded trajectory.
func WithSampleEvery(n int) Option {
	return func(e *Experiment) { e.sample = n }
}

func New(cfg *config.Config, opts ...Option) *Experiment {
	e := &Experiment{
		cfg:      cfg,
		registry: NewRegistry(),
		logger:   log.NewNopLogger(),
		sample:   1,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Report is the outcome of one experiment.
type Report struct {
	Integrator string
	System     *twobody.System
	// Elements is nil when the initial state is not a bound orbit.
	Elements *kepler.Elements
	Result   *sim.Result
}

// Setup validates the config and wires system, stepper and metrics into a
// simulator.
func (e *Experiment) Setup() (*sim.Simulator, *twobody.System, error) {
	if err := e.cfg.Validate(); err != nil {
		return nil, nil, err
	}

	sys, err := e.cfg.System()
	if err != nil {
		return nil, nil, errors.Wrap(err, "build system")
	}

	stepper, err := e.registry.Build(e.cfg.Integrator, sys, e.params())
	if err != nil {
		return nil, nil, err
	}

	logger := log.With(e.logger, "integrator", e.cfg.Integrator)
	s := sim.New(stepper, sim.WithLogger(logger), sim.WithMetrics(e.registry.DefaultMetrics(sys)...))
	return s, sys, nil
}

func (e *Experiment) Run(ctx context.Context) (*Report, error) {
	s, sys, err := e.Setup()
	if err != nil {
		return nil, err
	}

	report := &Report{Integrator: e.cfg.Integrator, System: sys}
	if el, err := kepler.FromRelative(sys.InitialState(), sys.Mu()); err == nil {
		report.Elements = &el
	} else {
		level.Debug(e.logger).Log("msg", "no reference orbit", "err", err)
	}

	report.Result, err = s.Run(ctx, sys.InitialState(), e.simConfig())
	return report, err
}

// Job packages the experiment for sim.RunBatch under the given name.
func (e *Experiment) Job(name string) sim.Job {
	return sim.Job{
		Name:   name,
		Config: e.simConfig(),
		Build: func() (*sim.Simulator, dynamo.State, error) {
			s, sys, err := e.Setup()
			if err != nil {
				return nil, nil, err
			}
			return s, sys.InitialState(), nil
		},
	}
}

func (e *Experiment) params() Params {
	return Params{
		Step:       e.cfg.Step,
		Tolerance:  e.cfg.Tolerance,
		MaxTime:    e.cfg.MaxTime,
		MaxRejects: e.cfg.MaxRejects,
	}
}

func (e *Experiment) simConfig() sim.Config {
	return sim.Config{
		Steps:         e.cfg.Steps,
		SampleEvery:   e.sample,
		ValidateState: true,
	}
}

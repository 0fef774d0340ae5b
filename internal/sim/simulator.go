package sim

import (
	"context"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/pkg/errors"

	"github.com/san-kum/orbitsim/internal/dynamo"
)

// Simulator drives a Stepper, recording states and feeding metrics and
// observers.
type Simulator struct {
	stepper   dynamo.Stepper
	metrics   []dynamo.Metric
	observers []dynamo.Observer
	logger    log.Logger
}

type Option func(*Simulator)

func WithLogger(logger log.Logger) Option {
	return func(s *Simulator) { s.logger = logger }
}

func WithMetrics(ms ...dynamo.Metric) Option {
	return func(s *Simulator) { s.metrics = append(s.metrics, ms...) }
}

func New(stepper dynamo.Stepper, opts ...Option) *Simulator {
	s := &Simulator{
		stepper:   stepper,
		metrics:   make([]dynamo.Metric, 0),
		observers: make([]dynamo.Observer, 0),
		logger:    log.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Simulator) AddObserver(o dynamo.Observer) { s.observers = append(s.observers, o) }

// Run records x0 and then up to cfg.Steps states from the stepper. A stepper
// error ends the run and is returned together with the partial result.
func (s *Simulator) Run(ctx context.Context, x0 dynamo.State, cfg Config) (*Result, error) {
	if err := s.validateConfig(cfg); err != nil {
		return nil, err
	}

	every := cfg.SampleEvery
	if every <= 0 {
		every = 1
	}

	result := &Result{
		States:  make([]dynamo.State, 0, cfg.Steps/every+2),
		Metrics: make(map[string]float64),
		Errors:  make([]error, 0),
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	start := time.Now()
	x := x0.Clone()
	result.States = append(result.States, x)
	s.observe(0, x)
	lastRecorded := 0

	level.Info(s.logger).Log("msg", "run started", "steps", cfg.Steps, "dim", len(x0))

	for i := 1; i <= cfg.Steps; i++ {
		select {
		case <-ctx.Done():
			result.Elapsed = time.Since(start)
			return result, errors.Wrapf(ctx.Err(), "interrupted at step %d", i)
		default:
		}

		next, err := s.stepper.Next()
		if errors.Is(err, dynamo.ErrDone) {
			result.Finished = true
			level.Debug(s.logger).Log("msg", "propagator finished", "step", i, "t", x.Time())
			break
		}
		if err != nil {
			result.Errors = append(result.Errors, err)
			if lastRecorded != result.StepsTaken {
				result.States = append(result.States, x)
			}
			s.collect(result)
			result.Elapsed = time.Since(start)
			level.Error(s.logger).Log("msg", "step failed", "step", i, "err", err)
			return result, err
		}

		if cfg.ValidateState && !next.IsValid() {
			err := &dynamo.SimulationError{Step: i, Time: next.Time(), State: next, Wrapped: dynamo.ErrInvalidState}
			result.Errors = append(result.Errors, err)
			level.Warn(s.logger).Log("msg", "state diverged", "step", i, "t", next.Time())
			break
		}

		x = next
		result.StepsTaken++
		s.observe(i, x)

		if i%every == 0 {
			result.States = append(result.States, x)
			lastRecorded = i
		}
	}

	if lastRecorded != result.StepsTaken {
		result.States = append(result.States, x)
	}

	s.collect(result)
	result.Elapsed = time.Since(start)

	level.Info(s.logger).Log("msg", "run finished", "steps", result.StepsTaken, "t", x.Time(), "elapsed", result.Elapsed)
	return result, nil
}

// Stream feeds every state to callback until it returns false, the
// stepper finishes, or cfg.Steps states have been produced.
func (s *Simulator) Stream(ctx context.Context, cfg Config, callback func(step int, x dynamo.State) bool) error {
	if err := s.validateConfig(cfg); err != nil {
		return err
	}

	for i := 1; i <= cfg.Steps; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		x, err := s.stepper.Next()
		if errors.Is(err, dynamo.ErrDone) {
			return nil
		}
		if err != nil {
			return err
		}
		if cfg.ValidateState && !x.IsValid() {
			return errors.Wrapf(dynamo.ErrInvalidState, "t=%.4f", x.Time())
		}
		if !callback(i, x) {
			return nil
		}
	}

	return nil
}

func (s *Simulator) collect(result *Result) {
	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
}

func (s *Simulator) observe(step int, x dynamo.State) {
	for _, m := range s.metrics {
		m.Observe(x)
	}
	for _, obs := range s.observers {
		obs.OnStep(step, x)
	}
}

func (s *Simulator) validateConfig(cfg Config) error {
	if s.stepper == nil {
		return errors.New("simulator has no stepper")
	}
	if cfg.Steps <= 0 {
		return errors.Errorf("steps must be positive, got %d", cfg.Steps)
	}
	return nil
}

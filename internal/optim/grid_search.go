package optim

import (
	"context"
	"math"

	"github.com/pkg/errors"

	"github.com/san-kum/orbitsim/internal/experiment"
)

// Trial is one evaluated grid point.
type Trial struct {
	Params map[string]float64
	Value  float64
	// Steps and Time are the steps taken and the final time of the run.
	Steps int
	Time  float64
	Err   error
}

// GridSearch evaluates every combination of parameter values and keeps the
// one minimising a result metric.
type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

func NewGridSearch(params []string, ranges [][]float64) *GridSearch {
	return &GridSearch{paramNames: params, ranges: ranges}
}

// Search runs one experiment per grid point. Points whose run fails or
// lacks the metric are recorded in the trials and skipped. Only a
// cancelled context aborts the search.
func (g *GridSearch) Search(
	ctx context.Context,
	buildExperiment func(params map[string]float64) (*experiment.Experiment, error),
	metricName string,
) (map[string]float64, float64, []Trial, error) {
	if len(g.paramNames) != len(g.ranges) {
		return nil, 0, nil, errors.Errorf("%d parameter names for %d ranges", len(g.paramNames), len(g.ranges))
	}

	best := math.Inf(1)
	var bestParams map[string]float64
	var trials []Trial

	err := g.searchRecursive(ctx, 0, make(map[string]float64), func(params map[string]float64) error {
		trial := Trial{Params: params, Value: math.NaN()}
		defer func() { trials = append(trials, trial) }()

		exp, err := buildExperiment(params)
		if err != nil {
			trial.Err = err
			return nil
		}

		report, err := exp.Run(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if report != nil && report.Result != nil {
			trial.Steps = report.Result.StepsTaken
			trial.Time = report.Result.Final().Time()
		}
		if err != nil {
			trial.Err = err
			return nil
		}

		val, ok := report.Result.Metrics[metricName]
		if !ok {
			trial.Err = errors.Errorf("metric %s not reported", metricName)
			return nil
		}
		trial.Value = val
		if val < best {
			best = val
			bestParams = params
		}
		return nil
	})
	if err != nil {
		return bestParams, best, trials, err
	}
	if bestParams == nil {
		return nil, best, trials, errors.New("no grid point produced the metric")
	}
	return bestParams, best, trials, nil
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	current map[string]float64,
	evaluate func(map[string]float64) error,
) error {
	if depth == len(g.paramNames) {
		return evaluate(current)
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		newParams := make(map[string]float64, len(current)+1)
		for k, v := range current {
			newParams[k] = v
		}
		newParams[paramName] = val

		if err := g.searchRecursive(ctx, depth+1, newParams, evaluate); err != nil {
			return err
		}
	}
	return nil
}

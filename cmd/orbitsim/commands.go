package main

import (
	"fmt"
	"io"
	"math"
	"os"
	"runtime"
	"sort"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/san-kum/orbitsim/internal/analysis"
	"github.com/san-kum/orbitsim/internal/config"
	"github.com/san-kum/orbitsim/internal/dynamo"
	"github.com/san-kum/orbitsim/internal/experiment"
	"github.com/san-kum/orbitsim/internal/export"
	"github.com/san-kum/orbitsim/internal/kepler"
	"github.com/san-kum/orbitsim/internal/metrics"
	"github.com/san-kum/orbitsim/internal/optim"
	"github.com/san-kum/orbitsim/internal/sim"
)

// runExperiment runs the resolved configuration. A failed run still
// returns its report when any states were recorded.
func (c *cli) runExperiment(cmd *cobra.Command) (*experiment.Report, error) {
	cfg, logger, err := c.setup(cmd)
	if err != nil {
		return nil, err
	}
	exp := experiment.New(cfg,
		experiment.WithLogger(logger),
		experiment.WithSampleEvery(c.v.GetInt("sample")),
	)
	return exp.Run(cmd.Context())
}

func (c *cli) runSimulation(cmd *cobra.Command, args []string) error {
	report, runErr := c.runExperiment(cmd)
	if report == nil || report.Result == nil {
		return runErr
	}

	out := cmd.OutOrStdout()
	res := report.Result

	fmt.Fprintln(out, headerStyle.Render(fmt.Sprintf("%s · μ=%g", report.Integrator, report.System.Mu())))
	fmt.Fprintf(out, "steps: %d  t=%.6g  elapsed: %v\n", res.StepsTaken, res.Final().Time(), res.Elapsed)
	if res.Finished {
		fmt.Fprintln(out, dimStyle.Render("propagator reached its end time"))
	}
	if report.Elements != nil {
		fmt.Fprintf(out, "orbit: %s\n", report.Elements)
		fmt.Fprintf(out, "period: %.6g\n", report.Elements.Period())
	}

	fmt.Fprintln(out)
	if err := printMetrics(out, res.Metrics); err != nil {
		return err
	}
	for _, err := range res.Errors {
		fmt.Fprintln(out, errStyle.Render(err.Error()))
	}

	if path := flagString(cmd.Flags(), "csv"); path != "" {
		if err := writeFile(path, func(w io.Writer) error { return export.WriteStates(w, res.States) }); err != nil {
			return err
		}
		fmt.Fprintf(out, "states written to %s\n", path)
	}
	if path := flagString(cmd.Flags(), "json"); path != "" {
		if err := writeFile(path, func(w io.Writer) error { return export.WriteJSON(w, report) }); err != nil {
			return err
		}
		fmt.Fprintf(out, "report written to %s\n", path)
	}

	return runErr
}

func printMetrics(out io.Writer, m map[string]float64) error {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "METRIC\tVALUE")
	for _, name := range names {
		fmt.Fprintf(w, "%s\t%.6e\n", name, m[name])
	}
	return w.Flush()
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "create %s", path)
	}
	if err := write(f); err != nil {
		f.Close()
		return errors.Wrapf(err, "write %s", path)
	}
	return f.Close()
}

func (c *cli) compareIntegrators(cmd *cobra.Command, args []string) error {
	cfg, logger, err := c.setup(cmd)
	if err != nil {
		return err
	}

	names := args
	if len(names) == 0 {
		names = experiment.NewRegistry().ListIntegrators()
	}

	jobs := make([]sim.Job, 0, len(names))
	for _, name := range names {
		local := cfg.Clone()
		local.Integrator = name
		exp := experiment.New(local, experiment.WithLogger(logger), experiment.WithSampleEvery(local.Steps))
		jobs = append(jobs, exp.Job(name))
	}

	limit := flagInt(cmd.Flags(), "jobs")
	if limit <= 0 {
		limit = min(len(jobs), runtime.NumCPU())
	}

	outcomes, err := sim.RunBatch(cmd.Context(), jobs, limit)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, headerStyle.Render(fmt.Sprintf("comparing integrators (h=%g, steps=%d)", cfg.Step, cfg.Steps)))
	fmt.Fprintln(out)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "INTEGRATOR\tSTEPS\tT_FINAL\tENERGY_DRIFT\tKEPLER_DEV\tTIME\tSTATUS")
	for _, o := range outcomes {
		if o.Result == nil {
			fmt.Fprintf(w, "%s\t-\t-\t-\t-\t-\t%v\n", o.Name, o.Err)
			continue
		}
		status := "ok"
		if o.Err != nil {
			status = o.Err.Error()
		} else if len(o.Result.Errors) > 0 {
			status = o.Result.Errors[0].Error()
		}
		dev, ok := o.Result.Metrics["kepler_deviation"]
		devCol := "-"
		if ok {
			devCol = fmt.Sprintf("%.3e", dev)
		}
		fmt.Fprintf(w, "%s\t%d\t%.6g\t%.3e\t%s\t%v\t%s\n",
			o.Name, o.Result.StepsTaken, o.Result.Final().Time(),
			o.Result.Metrics["energy_drift"], devCol, o.Result.Elapsed, status)
	}
	return w.Flush()
}

func (c *cli) propagateKepler(cmd *cobra.Command, args []string) error {
	cfg, _, err := c.setup(cmd)
	if err != nil {
		return err
	}
	sys, err := cfg.System()
	if err != nil {
		return err
	}
	el, err := kepler.FromRelative(sys.InitialState(), sys.Mu())
	if err != nil {
		return err
	}

	states, err := dynamo.Take(kepler.NewPropagator(el, cfg.Step), cfg.Steps)
	if err != nil {
		return err
	}
	positions := sys.Reader().ReadAll(states)

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, headerStyle.Render("kepler orbit"))

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "semi-major axis\t%.6g\n", el.A)
	fmt.Fprintf(w, "eccentricity\t%.6g\n", el.E)
	fmt.Fprintf(w, "inclination\t%.6g°\n", el.I*180/math.Pi)
	fmt.Fprintf(w, "ascending node\t%.6g°\n", el.Omega*180/math.Pi)
	fmt.Fprintf(w, "arg. periapsis\t%.6g°\n", el.W*180/math.Pi)
	fmt.Fprintf(w, "mean anomaly\t%.6g°\n", el.M0*180/math.Pi)
	fmt.Fprintf(w, "period\t%.6g\n", el.Period())
	fmt.Fprintf(w, "periapsis\t%.6g\n", el.Periapsis())
	fmt.Fprintf(w, "apoapsis\t%.6g\n", el.Apoapsis())
	if err := w.Flush(); err != nil {
		return err
	}

	if len(positions) > 0 {
		last := positions[len(positions)-1]
		fmt.Fprintf(out, "\nt=%.6g  body1=[%s]  body2=[%s]\n", last.Time, last.Body1, last.Body2)
	}

	if path := flagString(cmd.Flags(), "csv"); path != "" {
		if err := writeFile(path, func(w io.Writer) error { return export.WritePositions(w, positions) }); err != nil {
			return err
		}
		fmt.Fprintf(out, "positions written to %s\n", path)
	}
	return nil
}

func (c *cli) plotRun(cmd *cobra.Command, args []string) error {
	report, runErr := c.runExperiment(cmd)
	if report == nil || report.Result == nil || len(report.Result.States) < 2 {
		if runErr == nil {
			runErr = errors.New("not enough states to plot")
		}
		return runErr
	}

	out := cmd.OutOrStdout()
	states := report.Result.States
	dim := report.System.Dim()

	separation := make([]float64, len(states))
	energy := make([]float64, len(states))
	e0 := report.System.Energy(states[0])
	for i, x := range states {
		separation[i] = dynamo.Abs(x[1 : dim+1])
		energy[i] = report.System.Energy(x) - e0
	}

	plot := func(data []float64, caption string) {
		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(caption),
		)
		fmt.Fprintln(out, graph)
		fmt.Fprintln(out)
	}

	fmt.Fprintln(out, headerStyle.Render(report.Integrator))
	plot(separation, "separation |r|")
	plot(energy, "energy error E(t) - E(0)")

	if report.Elements != nil {
		dev := metrics.NewKeplerDeviation(*report.Elements, states[0].Time())
		for _, x := range states {
			dev.Observe(x)
		}
		plot(dev.Series(), "deviation from kepler orbit")
		fmt.Fprintf(out, "deviation mean=%.3e std=%.3e max=%.3e\n", dev.Mean(), dev.StdDev(), dev.Value())

		// the spectrum needs uniform sampling
		if report.Integrator != "rk45" {
			dt := states[1].Time() - states[0].Time()
			if est := analysis.DominantPeriod(separation, dt); est > 0 {
				fmt.Fprintf(out, "period: kepler=%.6g spectrum=%.6g\n", report.Elements.Period(), est)
			}
		}
	}

	return runErr
}

func (c *cli) drawOrbit(cmd *cobra.Command, args []string) error {
	width, height := flagInt(cmd.Flags(), "width"), flagInt(cmd.Flags(), "height")
	if width <= 0 || height <= 0 {
		return errors.Wrapf(dynamo.ErrParameterBounds, "plot size %dx%d", width, height)
	}

	report, runErr := c.runExperiment(cmd)
	if report == nil || report.Result == nil {
		return runErr
	}

	positions := report.System.Reader().ReadAll(report.Result.States)
	portrait := analysis.NewOrbitPortrait(positions)

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, headerStyle.Render(report.Integrator+" · "+dimStyle.Render("• body 1  ∘ body 2")))
	fmt.Fprint(out, analysis.PortraitToASCII(portrait, width, height))

	if path := flagString(cmd.Flags(), "svg"); path != "" {
		if err := writeFile(path, func(w io.Writer) error { return export.WriteSVG(w, positions, 800, 600) }); err != nil {
			return err
		}
		fmt.Fprintf(out, "orbit written to %s\n", path)
	}
	return runErr
}

func (c *cli) sweepSteps(cmd *cobra.Command, args []string) error {
	cfg, logger, err := c.setup(cmd)
	if err != nil {
		return err
	}
	values, err := cmd.Flags().GetFloat64Slice("values")
	if err != nil {
		return err
	}
	metric := flagString(cmd.Flags(), "metric")
	duration := cfg.Step * float64(cfg.Steps)

	build := func(params map[string]float64) (*experiment.Experiment, error) {
		local := cfg.Clone()
		local.Step = params["step"]
		if local.Step <= 0 {
			return nil, errors.Wrapf(dynamo.ErrParameterBounds, "step %g", local.Step)
		}
		local.Steps = int(math.Round(duration / local.Step))
		return experiment.New(local, experiment.WithLogger(logger), experiment.WithSampleEvery(local.Steps)), nil
	}

	search := optim.NewGridSearch([]string{"step"}, [][]float64{values})
	best, bestVal, trials, err := search.Search(cmd.Context(), build, metric)

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, headerStyle.Render(fmt.Sprintf("%s over t=%g", cfg.Integrator, duration)))
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "STEP\tSTEPS\tT_FINAL\t%s\tSTATUS\n", metric)
	for _, tr := range trials {
		status := "ok"
		if tr.Err != nil {
			status = tr.Err.Error()
		}
		fmt.Fprintf(w, "%g\t%d\t%.6g\t%.3e\t%s\n", tr.Params["step"], tr.Steps, tr.Time, tr.Value, status)
	}
	if ferr := w.Flush(); ferr != nil {
		return ferr
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "\nbest step: %g (%s=%.3e)\n", best["step"], metric, bestVal)
	return nil
}

func (c *cli) listPresets(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PRESET\tINTEGRATOR\tSTEP\tSTEPS\tDIM\tPERIOD")
	for _, name := range config.ListPresets() {
		p := config.GetPreset(name)
		period := "-"
		if sys, err := p.System(); err == nil {
			if el, err := kepler.FromRelative(sys.InitialState(), sys.Mu()); err == nil {
				period = fmt.Sprintf("%.4g", el.Period())
			}
		}
		fmt.Fprintf(w, "%s\t%s\t%g\t%d\t%d\t%s\n", name, p.Integrator, p.Step, p.Steps, len(p.Body1.Position), period)
	}
	return w.Flush()
}

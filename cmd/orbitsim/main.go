package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/san-kum/orbitsim/internal/config"
)

const envPrefix = "ORBITSIM"

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

// cli carries the settings shared by every command of one root command.
type cli struct {
	v *viper.Viper
}

// newViper reads overrides from ORBITSIM_* environment variables, with
// dashes in flag names mapped to underscores.
func newViper() *viper.Viper {
	vp := viper.New()
	vp.SetEnvPrefix(envPrefix)
	vp.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	vp.AutomaticEnv()
	return vp
}

// main runs the orbitsim commands and exits with status 1 when the
// selected command fails.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, errStyle.Render("error: "+err.Error()))
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	c := &cli{v: newViper()}

	rootCmd := &cobra.Command{
		Use:           "orbitsim",
		Short:         "two-body orbit propagation lab",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file path (yaml)")
	pf.String("preset", "", "start from a named preset")
	pf.String("integrator", config.DefaultIntegrator, "integrator (euler, rk4, rk45, ab2, am2, verlet)")
	pf.Float64("step", config.DefaultStep, "step size")
	pf.Int("steps", config.DefaultSteps, "number of steps")
	pf.Float64("tolerance", config.DefaultTolerance, "rk45 error tolerance")
	pf.Float64("max-time", config.DefaultMaxTime, "rk45 end time")
	pf.Int("max-rejects", config.DefaultMaxRejects, "rk45 rejected attempts tolerated per step; the next rejection fails the run")
	pf.Float64("g", config.DefaultG, "gravitational constant")
	pf.Int("sample", 1, "record every n-th state")
	pf.String("log-level", "warn", "log level (debug, info, warn, error)")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "integrate the configured system",
		Args:  cobra.NoArgs,
		RunE:  c.runSimulation,
	}
	runCmd.Flags().String("csv", "", "write states to a CSV file")
	runCmd.Flags().String("json", "", "write the report to a JSON file")

	compareCmd := &cobra.Command{
		Use:   "compare [integrator...]",
		Short: "run several integrators on the same system",
		RunE:  c.compareIntegrators,
	}
	compareCmd.Flags().Int("jobs", 0, "concurrent runs (0 = one per integrator)")

	keplerCmd := &cobra.Command{
		Use:   "kepler",
		Short: "propagate the relative orbit analytically",
		Args:  cobra.NoArgs,
		RunE:  c.propagateKepler,
	}
	keplerCmd.Flags().String("csv", "", "write body positions to a CSV file")

	plotCmd := &cobra.Command{
		Use:   "plot",
		Short: "plot separation and error growth",
		Args:  cobra.NoArgs,
		RunE:  c.plotRun,
	}

	orbitCmd := &cobra.Command{
		Use:   "orbit",
		Short: "draw the paths of both bodies",
		Args:  cobra.NoArgs,
		RunE:  c.drawOrbit,
	}
	orbitCmd.Flags().Int("width", 80, "plot width in characters")
	orbitCmd.Flags().Int("height", 30, "plot height in characters")
	orbitCmd.Flags().String("svg", "", "write the orbit to an SVG file")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Args:  cobra.NoArgs,
		RunE:  c.listPresets,
	}

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "search step sizes for the smallest error over a fixed duration",
		Args:  cobra.NoArgs,
		RunE:  c.sweepSteps,
	}
	sweepCmd.Flags().Float64Slice("values", []float64{0.01, 0.005, 0.002, 0.001}, "step sizes to try")
	sweepCmd.Flags().String("metric", "kepler_deviation", "metric to minimise")

	rootCmd.AddCommand(runCmd, compareCmd, keplerCmd, plotCmd, orbitCmd, sweepCmd, presetsCmd)

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return c.v.BindPFlags(cmd.Flags())
	}

	return rootCmd
}

// newLogger writes logfmt to w, dropping entries below lvl.
func newLogger(w io.Writer, lvl string) (log.Logger, error) {
	var opt level.Option
	switch strings.ToLower(lvl) {
	case "debug":
		opt = level.AllowDebug()
	case "info":
		opt = level.AllowInfo()
	case "warn", "warning":
		opt = level.AllowWarn()
	case "error":
		opt = level.AllowError()
	default:
		return nil, errors.Errorf("unknown log level: %s", lvl)
	}

	logger := log.NewLogfmtLogger(log.NewSyncWriter(w))
	logger = log.With(logger, "ts", log.DefaultTimestampUTC)
	return level.NewFilter(logger, opt), nil
}

// resolveConfig layers the defaults, an optional preset, an optional config
// file and finally any flag or environment override set in vp.
func resolveConfig(vp *viper.Viper) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if name := vp.GetString("preset"); name != "" {
		p := config.GetPreset(name)
		if p == nil {
			return nil, errors.Errorf("unknown preset: %s (available: %v)", name, config.ListPresets())
		}
		cfg = p
	}

	if path := vp.GetString("config"); path != "" {
		loaded, err := config.LoadInto(path, cfg)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if vp.IsSet("integrator") {
		cfg.Integrator = vp.GetString("integrator")
	}
	if vp.IsSet("step") {
		cfg.Step = vp.GetFloat64("step")
	}
	if vp.IsSet("steps") {
		cfg.Steps = vp.GetInt("steps")
	}
	if vp.IsSet("tolerance") {
		cfg.Tolerance = vp.GetFloat64("tolerance")
	}
	if vp.IsSet("max-time") {
		cfg.MaxTime = vp.GetFloat64("max-time")
	}
	if vp.IsSet("max-rejects") {
		cfg.MaxRejects = vp.GetInt("max-rejects")
	}
	if vp.IsSet("g") {
		cfg.G = vp.GetFloat64("g")
	}

	return cfg, nil
}

// setup resolves the run configuration and the logger for a command.
func (c *cli) setup(cmd *cobra.Command) (*config.Config, log.Logger, error) {
	logger, err := newLogger(cmd.ErrOrStderr(), c.v.GetString("log-level"))
	if err != nil {
		return nil, nil, err
	}
	cfg, err := resolveConfig(c.v)
	if err != nil {
		return nil, nil, err
	}
	level.Debug(logger).Log("msg", "config resolved", "integrator", cfg.Integrator, "step", cfg.Step, "steps", cfg.Steps)
	return cfg, logger, nil
}

func flagString(fs *pflag.FlagSet, name string) string {
	s, _ := fs.GetString(name)
	return s
}

func flagInt(fs *pflag.FlagSet, name string) int {
	n, _ := fs.GetInt(name)
	return n
}

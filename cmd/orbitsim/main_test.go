package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-kit/log/level"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/san-kum/orbitsim/internal/config"
)

func newTestViper(t *testing.T, args ...string) *viper.Viper {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("config", "", "")
	fs.String("preset", "", "")
	fs.String("integrator", config.DefaultIntegrator, "")
	fs.Float64("step", config.DefaultStep, "")
	fs.Int("steps", config.DefaultSteps, "")
	fs.Float64("tolerance", config.DefaultTolerance, "")
	fs.Float64("max-time", config.DefaultMaxTime, "")
	fs.Int("max-rejects", config.DefaultMaxRejects, "")
	fs.Float64("g", config.DefaultG, "")
	if err := fs.Parse(args); err != nil {
		t.Fatalf("parse flags: %v", err)
	}

	vp := newViper()
	if err := vp.BindPFlags(fs); err != nil {
		t.Fatalf("bind flags: %v", err)
	}
	return vp
}

func TestResolveConfigDefaults(t *testing.T) {
	cfg, err := resolveConfig(newTestViper(t))
	if err != nil {
		t.Fatalf("resolveConfig() error = %v", err)
	}
	def := config.DefaultConfig()
	if cfg.Integrator != def.Integrator || cfg.Steps != def.Steps || cfg.G != def.G {
		t.Errorf("resolveConfig() = %+v, want defaults", cfg)
	}
}

func TestResolveConfigPresetThenFlags(t *testing.T) {
	cfg, err := resolveConfig(newTestViper(t, "--preset", "star-planet", "--steps", "42"))
	if err != nil {
		t.Fatalf("resolveConfig() error = %v", err)
	}
	want := config.GetPreset("star-planet")
	if cfg.Integrator != want.Integrator {
		t.Errorf("Integrator = %s, want preset value %s", cfg.Integrator, want.Integrator)
	}
	if cfg.Steps != 42 {
		t.Errorf("Steps = %d, want flag value 42", cfg.Steps)
	}
	if cfg.Step != want.Step {
		t.Errorf("Step = %g, unchanged flag overrode the preset", cfg.Step)
	}
}

func TestResolveConfigFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "orbit.yaml")
	data := "integrator: am2\nsteps: 10\nmax_time: 5\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("ORBITSIM_MAX_TIME", "7.5")

	cfg, err := resolveConfig(newTestViper(t, "--config", path))
	if err != nil {
		t.Fatalf("resolveConfig() error = %v", err)
	}
	if cfg.Integrator != "am2" || cfg.Steps != 10 {
		t.Errorf("file values not applied: %+v", cfg)
	}
	if cfg.MaxTime != 7.5 {
		t.Errorf("MaxTime = %g, want env value 7.5", cfg.MaxTime)
	}
}

func TestResolveConfigPresetThenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	if err := os.WriteFile(path, []byte("steps: 10\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := resolveConfig(newTestViper(t, "--preset", "star-planet", "--config", path))
	if err != nil {
		t.Fatalf("resolveConfig() error = %v", err)
	}
	if cfg.Steps != 10 {
		t.Errorf("Steps = %d, want file value 10", cfg.Steps)
	}
	if cfg.Integrator != "verlet" || cfg.Body2.Mass != 0.001 || cfg.G != 1 {
		t.Errorf("preset values lost under a partial file: %+v", cfg)
	}
}

func TestResolveConfigUnknownPreset(t *testing.T) {
	if _, err := resolveConfig(newTestViper(t, "--preset", "nope")); err == nil {
		t.Error("expected error for unknown preset")
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := newLogger(&buf, "warn")
	if err != nil {
		t.Fatalf("newLogger() error = %v", err)
	}

	level.Info(logger).Log("msg", "hidden")
	level.Warn(logger).Log("msg", "shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info entry passed a warn filter: %q", out)
	}
	if !strings.Contains(out, "msg=shown") || !strings.Contains(out, "level=warn") {
		t.Errorf("warn entry missing: %q", out)
	}

	if _, err := newLogger(&buf, "loud"); err == nil {
		t.Error("expected error for unknown level")
	}
}

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"argbind/internal/observ"
	"argbind/internal/project"
)

// app is the state shared by the commands of one invocation.
type app struct {
	cfg      project.Config
	manifest *project.Manifest
	timer    *observ.Timer
	quiet    bool
	timings  bool
	diags    string
	cleanups []func(failed bool)
}

func newApp() *app {
	return &app{cfg: project.DefaultConfig(), timer: observ.NewTimer()}
}

// setup runs before every command: color, config, profiling and tracing.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	flags := cmd.Root().PersistentFlags()
	colorMode, err := flags.GetString("color")
	if err != nil {
		return err
	}
	switch strings.ToLower(colorMode) {
	case "on":
		color.NoColor = false
	case "off":
		color.NoColor = true
	case "auto", "":
		color.NoColor = !isTerminal(os.Stdout)
	default:
		return fmt.Errorf("invalid --color value %q (expected auto|on|off)", colorMode)
	}
	if a.quiet, err = flags.GetBool("quiet"); err != nil {
		return err
	}
	if a.timings, err = flags.GetBool("timings"); err != nil {
		return err
	}
	style, err := flags.GetString("diagnostics")
	if err != nil {
		return err
	}
	if a.diags, err = readDiagStyle(style); err != nil {
		return err
	}

	idx := a.timer.Begin("config")
	if err := a.loadConfig(flags.Lookup("config").Value.String()); err != nil {
		a.timer.End(idx, "failed")
		return err
	}
	note := "defaults"
	if a.manifest != nil && a.manifest.Path != "" {
		note = a.manifest.Path
	}
	a.timer.End(idx, note)

	stopProf, err := setupProfiling(cmd)
	if err != nil {
		return err
	}
	a.addCleanup(func(bool) { stopProf() })

	stopTrace, err := setupTracing(cmd, a.cfg.Trace)
	if err != nil {
		return err
	}
	a.addCleanup(stopTrace)
	return nil
}

func (a *app) loadConfig(explicit string) error {
	if explicit != "" {
		m, err := project.LoadManifest(explicit)
		if err != nil {
			return err
		}
		a.manifest, a.cfg = m, m.Config
		return nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return err
	}
	m, _, err := project.Discover(wd)
	if err != nil {
		return err
	}
	a.manifest, a.cfg = m, m.Config
	return nil
}

func (a *app) addCleanup(f func(failed bool)) {
	a.cleanups = append(a.cleanups, f)
}

// close runs cleanups in reverse order. Safe to call more than once.
func (a *app) close(failed bool) {
	for i := len(a.cleanups) - 1; i >= 0; i-- {
		a.cleanups[i](failed)
	}
	a.cleanups = nil
}

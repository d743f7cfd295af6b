package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/giantswarm/simenv"
)

// runnerFlags are the flags shared by plan and run.
type runnerFlags struct {
	mode          string
	baseDir       string
	configRoot    string
	manifestDir   string
	alwaysMarkers bool
	parallelism   int
	levels        []int
	output        string
	verbose       bool
}

func (f *runnerFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVar(&f.mode, "mode", string(simenv.DefaultResourceMode), "resource mode: legacy, binary, best or both")
	fl.StringVar(&f.baseDir, "base-dir", os.Getenv("SIMENV_BASE_DIR"), "directory environments are materialized under (or SIMENV_BASE_DIR)")
	fl.StringVar(&f.configRoot, "config-root", "", "directory package "+simenv.ConfigFileName+" files are read from")
	fl.StringVar(&f.manifestDir, "manifest-dir", "", "directory relative manifest paths are resolved against")
	fl.BoolVar(&f.alwaysMarkers, "always-markers", false, "keep the [level] marker on every variant name")
	fl.IntVar(&f.parallelism, "parallelism", simenv.DefaultParallelism, "methods of one class run at once")
	fl.IntSliceVar(&f.levels, "levels", nil, "only run these platform levels")
	fl.StringVarP(&f.output, "output", "o", "text", "output format: text or yaml")
	fl.BoolVarP(&f.verbose, "verbose", "v", false, "log lifecycle details to stderr")
}

// options validates the flags and converts them to runner options. Flag
// errors are returned rather than left to the option panics.
func (f *runnerFlags) options(global simenv.Config) ([]simenv.RunnerOption, error) {
	mode, err := simenv.ParseResourceMode(f.mode)
	if err != nil {
		return nil, err
	}
	if f.parallelism < 1 {
		return nil, fmt.Errorf("--parallelism must be at least 1, got %d", f.parallelism)
	}
	if f.output != "text" && f.output != "yaml" {
		return nil, fmt.Errorf("--output must be text or yaml, got %q", f.output)
	}
	if global.MinSDK != nil && global.MaxSDK != nil && *global.MinSDK > *global.MaxSDK {
		return nil, fmt.Errorf("global minSdk (%d) is greater than maxSdk (%d)", *global.MinSDK, *global.MaxSDK)
	}

	opts := []simenv.RunnerOption{
		simenv.WithResourceMode(mode),
		simenv.WithAlwaysIncludeVariantMarkers(f.alwaysMarkers),
		simenv.WithParallelism(f.parallelism),
		simenv.WithGlobalConfig(global),
		simenv.WithPlatformPolicy(simenv.DefaultPlatformPolicy(f.levels...)),
	}
	if f.baseDir != "" {
		opts = append(opts, simenv.WithBaseDataDir(f.baseDir))
	}
	if f.configRoot != "" {
		opts = append(opts, simenv.WithConfigRoot(f.configRoot))
	}
	if f.manifestDir != "" {
		opts = append(opts, simenv.WithManifestBaseDir(f.manifestDir))
	}
	return opts, nil
}

func (f *runnerFlags) setupLogging(cmd *cobra.Command) {
	level := slog.LevelWarn
	if f.verbose {
		level = slog.LevelDebug
	}
	h := slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})
	simenv.SetLogger(slog.New(h).With("component", "simenv"))
}

// startRunner loads the suite named by path and returns an initialized
// runner for it.
func (f *runnerFlags) startRunner(cmd *cobra.Command, path string) (simenv.Runner, *suite, error) {
	s, err := loadSuite(path)
	if err != nil {
		return nil, nil, err
	}
	opts, err := f.options(s.Global)
	if err != nil {
		return nil, nil, err
	}
	f.setupLogging(cmd)

	r := simenv.NewRunner(opts...)
	if err := r.Initialize(cmd.Context()); err != nil {
		return nil, nil, err
	}
	return r, s, nil
}

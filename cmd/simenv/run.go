package main

import (
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"sigs.k8s.io/yaml"

	"github.com/giantswarm/simenv"
)

var runFlags runnerFlags

var runCmd = &cobra.Command{
	Use:   "run SUITE",
	Short: "Run every variant of a suite with empty test bodies",
	Long: `Expand and run every method of the suite. Methods have no body, so a run
materializes each environment and drives every variant through set-up,
teardown and reset. Use it to validate a suite's configuration and to warm
the environment directory before a test run.

Exits non-zero when any variant fails.`,
	Args: cobra.ExactArgs(1),
	RunE: runRun,
}

func init() {
	runFlags.register(runCmd)
}

// runEntry is one line of run output.
type runEntry struct {
	Class       string        `json:"class"`
	Variant     string        `json:"variant"`
	Status      string        `json:"status"`
	Environment string        `json:"environment,omitempty"`
	Duration    time.Duration `json:"duration"`
	Error       string        `json:"error,omitempty"`
	Diagnostics []string      `json:"diagnostics,omitempty"`
}

func runRun(cmd *cobra.Command, args []string) error {
	r, s, err := runFlags.startRunner(cmd, args[0])
	if err != nil {
		return err
	}
	defer func() { _ = r.Shutdown() }()

	var entries []runEntry
	failed := 0
	for _, class := range s.testClasses() {
		report, err := r.Run(cmd.Context(), class)
		if err != nil {
			return err
		}
		failed += report.Count(simenv.StatusFailed)
		for _, res := range report.Results {
			entries = append(entries, newRunEntry(class.Name, res))
		}
	}

	if err := writeRun(cmd.OutOrStdout(), runFlags.output, entries); err != nil {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("%d variants failed", failed)
	}
	return nil
}

func newRunEntry(class string, res *simenv.Result) runEntry {
	e := runEntry{
		Class:       class,
		Variant:     res.Name,
		Status:      res.Status.String(),
		Environment: res.EnvironmentID,
		Duration:    res.Duration,
		Diagnostics: res.Diagnostics,
	}
	if res.Err != nil {
		e.Error = res.Err.Error()
	}
	return e
}

func writeRun(w io.Writer, format string, entries []runEntry) error {
	if format == "yaml" {
		data, err := yaml.Marshal(entries)
		if err != nil {
			return fmt.Errorf("encode results: %w", err)
		}
		_, err = w.Write(data)
		return err
	}

	counts := make(map[string]int)
	for _, e := range entries {
		counts[e.Status]++
		line := fmt.Sprintf("%s %s.%s (%s)", statusMark(e.Status), e.Class, e.Variant, e.Duration.Round(time.Millisecond))
		if e.Error != "" {
			line += ": " + e.Error
		}
		fmt.Fprintln(w, line)
		for _, d := range e.Diagnostics {
			fmt.Fprintf(w, "    %s\n", color.YellowString(d))
		}
	}
	fmt.Fprintf(w, "\n%d passed, %d failed, %d skipped, %d ignored\n",
		counts["passed"], counts["failed"], counts["skipped"], counts["ignored"])
	return nil
}

func statusMark(status string) string {
	switch status {
	case "passed":
		return color.GreenString("PASS")
	case "failed":
		return color.RedString("FAIL")
	case "skipped":
		return color.YellowString("SKIP")
	default:
		return color.CyanString("IGN ")
	}
}

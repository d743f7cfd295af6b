package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"sigs.k8s.io/yaml"

	"github.com/giantswarm/simenv"
)

var planFlags runnerFlags

var planCmd = &cobra.Command{
	Use:   "plan SUITE",
	Short: "Print the variants every method of a suite expands to",
	Long: `Expand every method of the suite and print its variants without running
anything. Methods whose configuration cannot be expanded are listed with
their error; the command still succeeds.`,
	Args: cobra.ExactArgs(1),
	RunE: runPlan,
}

func init() {
	planFlags.register(planCmd)
}

// planEntry is one line of plan output.
type planEntry struct {
	Class    string `json:"class"`
	Method   string `json:"method"`
	Variant  string `json:"variant,omitempty"`
	Identity string `json:"identity,omitempty"`
	Ignored  bool   `json:"ignored,omitempty"`
	Error    string `json:"error,omitempty"`
}

func runPlan(cmd *cobra.Command, args []string) error {
	r, s, err := planFlags.startRunner(cmd, args[0])
	if err != nil {
		return err
	}
	defer func() { _ = r.Shutdown() }()

	var entries []planEntry
	for _, class := range s.testClasses() {
		plan, err := r.Plan(cmd.Context(), class)
		if err != nil {
			return err
		}
		entries = append(entries, planEntries(plan)...)
	}
	return writePlan(cmd.OutOrStdout(), planFlags.output, entries)
}

func planEntries(p *simenv.Plan) []planEntry {
	var out []planEntry
	for _, mp := range p.Methods {
		base := planEntry{Class: p.Class, Method: mp.Method, Ignored: mp.Ignored}
		switch {
		case mp.Err != nil:
			base.Error = mp.Err.Error()
			out = append(out, base)
		case mp.Ignored || len(mp.Variants) == 0:
			out = append(out, base)
		default:
			for _, v := range mp.Variants {
				e := base
				e.Variant = v.Name()
				e.Identity = v.Identity().String()
				out = append(out, e)
			}
		}
	}
	return out
}

func writePlan(w io.Writer, format string, entries []planEntry) error {
	if format == "yaml" {
		data, err := yaml.Marshal(entries)
		if err != nil {
			return fmt.Errorf("encode plan: %w", err)
		}
		_, err = w.Write(data)
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "CLASS\tVARIANT\tIDENTITY\tNOTE")
	for _, e := range entries {
		name, note := e.Variant, ""
		switch {
		case e.Error != "":
			name, note = e.Method, e.Error
		case e.Ignored:
			name, note = e.Method, "ignored"
		case e.Variant == "":
			name, note = e.Method, "no variants"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", e.Class, name, e.Identity, note)
	}
	return tw.Flush()
}

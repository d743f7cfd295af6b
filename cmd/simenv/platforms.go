package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/giantswarm/simenv"
)

var platformsCmd = &cobra.Command{
	Use:   "platforms",
	Short: "List the simulated platform versions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "LEVEL\tCODENAME\tSUPPORTED\tRESOURCES")
		for _, v := range simenv.Platforms() {
			supported := "yes"
			if !v.IsSupported() {
				supported = "no: " + v.UnsupportedMessage()
			}
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", v.Level, v.Codename, supported, resourceModes(v))
		}
		return tw.Flush()
	},
}

// resourceModes returns the resource pipelines v can run.
func resourceModes(v simenv.PlatformVersion) string {
	if v.SupportsLegacyResources() {
		return "legacy, binary"
	}
	return "binary"
}

// Command simenv plans and runs simenv test suites described in YAML.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "simenv",
	Short: "Expand test suites into platform variants and run them in cached environments",
	Long: `simenv expands every test method of a suite into one variant per selected
platform level and resource mode, and runs each variant in an isolated
environment that is created once and reused.

Suite files are YAML:

  global:
    sdk: [28, 29]
  classes:
  - name: com.example.FooTest
    package: com.example
    methods:
    - name: testFoo
    - name: testBar
      config:
        sdk: [21]`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(planCmd, runCmd, platformsCmd, versionCmd)
	_ = godotenv.Load()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

package cmd

import (
	"github.com/spf13/cobra"
)

var configPath string

// rootCmd is poolctl's root command.
var rootCmd = &cobra.Command{
	Use:   "poolctl",
	Short: "poolctl drives a workerpool.ThreadPool from the command line",
	Long: `poolctl is a manual smoke-testing tool for the workerpool library.

It builds a ThreadPool from either flags or a YAML config file, submits a
batch of synthetic jobs, prints live pool stats while they run, then shuts
the pool down.

Examples:

  # submit 100 jobs to a pool sized 2..8, 20ms each
  poolctl run --min 2 --max 8 --jobs 100 --job-duration 20ms

  # same, but sized from a config file
  poolctl run --config pool.yaml`,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a YAML pool config file")
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(versionCmd)
}

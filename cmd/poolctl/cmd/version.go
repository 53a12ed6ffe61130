package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version is poolctl's reported version, printed by the version subcommand.
var Version = "0.1.0"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "print poolctl's version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("poolctl %s\n", Version)
	},
}

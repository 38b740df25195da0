package main

import (
	"os"

	"github.com/spf13/cobra"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "storecheck",
	Short:   "Integration checks for an ORM-backed posts store",
	Long:    "Storecheck runs an ordered list of integration checks against a posts store and exits non-zero if any check fails.",
	Version: Version,
}

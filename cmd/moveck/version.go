package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"moveck/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	RunE:  runVersion,
}

func init() {
	versionCmd.Flags().Bool("full", false, "include git commit and build date")
}

func runVersion(cmd *cobra.Command, _ []string) error {
	full, err := cmd.Flags().GetBool("full")
	if err != nil {
		return fmt.Errorf("failed to get full flag: %w", err)
	}

	fmt.Fprintf(os.Stdout, "moveck %s\n", version.Version)
	if full {
		if version.GitCommit != "" {
			fmt.Fprintf(os.Stdout, "commit: %s\n", version.GitCommit)
		}
		if version.BuildDate != "" {
			fmt.Fprintf(os.Stdout, "built: %s\n", version.BuildDate)
		}
	}
	return nil
}

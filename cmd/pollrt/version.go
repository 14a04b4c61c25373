package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// Overridden at build time via -ldflags.
var (
	Version   = "0.1.0-dev"
	GitCommit = ""
	BuildDate = ""
)

func versionString() string {
	v := strings.TrimSpace(Version)
	if v == "" {
		v = "dev"
	}
	return v
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print build information",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "pollrt %s\n", headerColor.Sprint(versionString()))
		if c := strings.TrimSpace(GitCommit); c != "" {
			fmt.Fprintf(out, "commit: %s\n", c)
		}
		if d := strings.TrimSpace(BuildDate); d != "" {
			fmt.Fprintf(out, "built:  %s\n", d)
		}
	},
}

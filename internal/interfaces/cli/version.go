package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// NewVersionCmd creates the version command.
func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			info := currentBuildInfo()
			return PrintResult(cmd, info, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "ninchi %s (commit: %s, built: %s)\n", info.Version, info.Commit, info.BuildDate)
				return err
			})
		},
	}
}

func currentBuildInfo() BuildInfo {
	info := BuildInfo{Version: Version, Commit: GitCommit, BuildDate: BuildDate}
	if info.Version == "" {
		info.Version = "dev"
	}
	if info.Commit == "" {
		info.Commit = "unknown"
	}
	if info.BuildDate == "" {
		info.BuildDate = "unknown"
	}
	return info
}

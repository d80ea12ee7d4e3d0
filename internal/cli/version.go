package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/TheDevelo/minelaunch/internal/cli/cmdutil"
)

// VersionInfo contains version information for the application
type VersionInfo struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
	BuiltBy string `json:"built_by"`
}

// NewVersionCommand creates the version command
func NewVersionCommand(opts *cmdutil.Options, version, commit, date, builtBy string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  "Print detailed version information including build commit and date.",
		Example: `  # Display version information
  minelaunch version

  # Output in JSON format
  minelaunch version --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return printVersion(cmd.OutOrStdout(), opts.JSON, version, commit, date, builtBy)
		},
	}

	return cmd
}

// printVersion prints version information in the appropriate format
func printVersion(w io.Writer, jsonMode bool, version, commit, date, builtBy string) error {
	info := VersionInfo{
		Version: version,
		Commit:  commit,
		Date:    date,
		BuiltBy: builtBy,
	}

	if jsonMode {
		return cmdutil.WriteJSON(w, info)
	}

	return printVersionText(w, info)
}

// printVersionText prints version information in human-readable format
func printVersionText(w io.Writer, info VersionInfo) error {
	if _, err := fmt.Fprintf(w, "minelaunch version %s\n", info.Version); err != nil {
		return fmt.Errorf("write version: %w", err)
	}
	if _, err := fmt.Fprintf(w, "Commit: %s\n", info.Commit); err != nil {
		return fmt.Errorf("write commit: %w", err)
	}
	if _, err := fmt.Fprintf(w, "Built: %s\n", info.Date); err != nil {
		return fmt.Errorf("write date: %w", err)
	}
	if _, err := fmt.Fprintf(w, "Built by: %s\n", info.BuiltBy); err != nil {
		return fmt.Errorf("write built by: %w", err)
	}

	return nil
}

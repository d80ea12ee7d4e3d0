// Package versions implements the versions command.
package versions

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/TheDevelo/minelaunch/internal/cli/cmdutil"
	"github.com/TheDevelo/minelaunch/internal/minecraft"
	"github.com/TheDevelo/minelaunch/internal/state"
)

var validTypes = map[string]bool{
	"release":   true,
	"snapshot":  true,
	"old_beta":  true,
	"old_alpha": true,
	"all":       true,
}

// Flags holds all flags for the versions command
type Flags struct {
	Type  string
	Match string
	Limit int
}

// Item represents a version in the output
type Item struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	ReleaseTime string `json:"releaseTime"`
	Installed   bool   `json:"installed"`
}

// Listing is the JSON output of the versions command.
type Listing struct {
	Latest struct {
		Release  string `json:"release"`
		Snapshot string `json:"snapshot"`
	} `json:"latest"`
	Versions []Item `json:"versions"`
	Count    int    `json:"count"`
	Total    int    `json:"total"`
}

// NewCommand creates the versions command
func NewCommand(opts *cmdutil.Options) *cobra.Command {
	flags := &Flags{}

	cmd := &cobra.Command{
		Use:   "versions",
		Short: "List available Minecraft versions",
		Long: `List Minecraft Java Edition versions from the version manifest.

By default, only release versions are shown. Use --type to pick snapshots,
old betas or alphas, or all versions, and --match to filter ids with a glob
pattern. Versions whose spec is already in the install directory are
marked as installed.`,
		Example: `  # List latest 20 releases
  minelaunch versions

  # List every 1.16 release
  minelaunch versions --match '1.16*' --limit 0

  # List all snapshots of 2021
  minelaunch versions --type snapshot --match '21w*'

  # JSON output for scripting
  minelaunch versions --json`,
		Aliases: []string{"ls", "list-versions"},
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), cmd.OutOrStdout(), opts, flags)
		},
	}

	cmd.Flags().StringVar(&flags.Type, "type", "release", "Filter by type: release, snapshot, old_beta, old_alpha, all")
	cmd.Flags().StringVar(&flags.Match, "match", "", "Glob pattern version ids must match, e.g. '1.16*'")
	cmd.Flags().IntVar(&flags.Limit, "limit", 20, "Limit number of results (0 for unlimited)")

	return cmd
}

func run(ctx context.Context, stdout io.Writer, opts *cmdutil.Options, flags *Flags) error {
	if !validTypes[flags.Type] {
		return cmdutil.WriteError(stdout, opts.JSON,
			fmt.Errorf("invalid type %q: must be release, snapshot, old_beta, old_alpha, or all", flags.Type))
	}

	manifest, err := opts.ManifestClient().GetVersionManifest(ctx)
	if err != nil {
		return cmdutil.WriteError(stdout, opts.JSON, fmt.Errorf("failed to fetch version manifest: %w", err))
	}

	// Match before limiting so --limit counts matches
	matched, err := minecraft.MatchVersions(manifest.Versions, flags.Match)
	if err != nil {
		return cmdutil.WriteError(stdout, opts.JSON, err)
	}
	filtered := minecraft.FilterVersions(matched, flags.Type, flags.Limit)

	layout, err := opts.Layout()
	if err != nil {
		return cmdutil.WriteError(stdout, opts.JSON, err)
	}

	listing := Listing{
		Versions: make([]Item, len(filtered)),
		Count:    len(filtered),
		Total:    len(manifest.Versions),
	}
	listing.Latest.Release = manifest.Latest.Release
	listing.Latest.Snapshot = manifest.Latest.Snapshot
	for i, v := range filtered {
		listing.Versions[i] = Item{
			ID:          v.ID,
			Type:        v.Type,
			ReleaseTime: v.ReleaseTime,
			Installed:   installed(layout, v.ID),
		}
	}

	if opts.JSON {
		return cmdutil.WriteJSON(stdout, listing)
	}

	return outputTable(stdout, listing)
}

func installed(layout state.Layout, id string) bool {
	if state.ValidateVersion(id) != nil {
		return false
	}
	_, err := os.Stat(layout.SpecPath(id))
	return err == nil
}

// outputTable outputs versions in table format
func outputTable(stdout io.Writer, listing Listing) error {
	_, _ = fmt.Fprintf(stdout, "Latest Release:  %s\n", listing.Latest.Release)
	_, _ = fmt.Fprintf(stdout, "Latest Snapshot: %s\n\n", listing.Latest.Snapshot)

	versionWidth := len("VERSION")
	typeWidth := len("TYPE")
	releasedWidth := len("RELEASED")

	for _, item := range listing.Versions {
		if len(item.ID) > versionWidth {
			versionWidth = len(item.ID)
		}
		if len(item.Type) > typeWidth {
			typeWidth = len(item.Type)
		}
		if releaseDate := formatReleaseDate(item.ReleaseTime); len(releaseDate) > releasedWidth {
			releasedWidth = len(releaseDate)
		}
	}

	_, _ = fmt.Fprintf(stdout, "%-*s  %-*s  %*s  %s\n",
		versionWidth, "VERSION",
		typeWidth, "TYPE",
		releasedWidth, "RELEASED",
		"INSTALLED",
	)

	for _, item := range listing.Versions {
		mark := ""
		if item.Installed {
			mark = "yes"
		}
		_, _ = fmt.Fprintf(stdout, "%-*s  %-*s  %*s  %s\n",
			versionWidth, item.ID,
			typeWidth, item.Type,
			releasedWidth, formatReleaseDate(item.ReleaseTime),
			mark,
		)
	}

	return nil
}

// formatReleaseDate formats an ISO 8601 timestamp to a simple date
func formatReleaseDate(releaseTime string) string {
	t, err := time.Parse(time.RFC3339, releaseTime)
	if err != nil {
		return releaseTime
	}
	return t.Format("2006-01-02")
}

package cmd

import (
	"fmt"
	"os"

	"github.com/creativeprojects/go-selfupdate"
	"github.com/smazurov/camlink/internal/systemd"
	"github.com/smazurov/camlink/internal/version"
	"github.com/spf13/cobra"
)

const updateRepository = "smazurov/camlink"

// CreateUpdateCmd creates the update command, which replaces the running
// binary with the latest GitHub release.
func CreateUpdateCmd() *cobra.Command {
	var checkOnly bool
	var prerelease bool
	var restart bool

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Update camlink to the latest release",
		Run: func(cmd *cobra.Command, _ []string) {
			ctx := cmd.Context()

			source, err := selfupdate.NewGitHubSource(selfupdate.GitHubConfig{})
			if err != nil {
				fmt.Fprintf(os.Stderr, "error: %v\n", err)
				os.Exit(1)
			}
			updater, err := selfupdate.NewUpdater(selfupdate.Config{
				Source:     source,
				Prerelease: prerelease,
			})
			if err != nil {
				fmt.Fprintf(os.Stderr, "error: %v\n", err)
				os.Exit(1)
			}

			release, found, err := updater.DetectLatest(ctx, selfupdate.ParseSlug(updateRepository))
			if err != nil {
				fmt.Fprintf(os.Stderr, "failed to check for updates: %v\n", err)
				os.Exit(1)
			}
			if !found {
				fmt.Fprintln(os.Stderr, "no releases found")
				os.Exit(1)
			}

			current := version.Version
			// A dev build is always considered outdated
			if current != "dev" && !release.GreaterThan(current) {
				fmt.Printf("Already up to date (%s)\n", current)
				return
			}

			fmt.Printf("Update available: %s -> %s\n", current, release.Version())
			if checkOnly {
				return
			}

			exe, err := selfupdate.ExecutablePath()
			if err != nil {
				fmt.Fprintf(os.Stderr, "failed to locate executable: %v\n", err)
				os.Exit(1)
			}
			if err := updater.UpdateTo(ctx, release, exe); err != nil {
				fmt.Fprintf(os.Stderr, "failed to apply update: %v\n", err)
				os.Exit(1)
			}
			fmt.Printf("Updated to %s\n", release.Version())

			if restart {
				mgr, err := systemd.NewManager(ctx)
				if err != nil {
					fmt.Fprintf(os.Stderr, "failed to reach systemd: %v\n", err)
					os.Exit(1)
				}
				defer mgr.Close()
				if err := mgr.RestartService(ctx, systemd.UnitName); err != nil {
					fmt.Fprintf(os.Stderr, "failed to restart %s: %v\n", systemd.UnitName, err)
					os.Exit(1)
				}
				fmt.Printf("Restarted %s\n", systemd.UnitName)
			}
		},
	}

	cmd.Flags().BoolVar(&checkOnly, "check", false, "Only check for a newer release")
	cmd.Flags().BoolVar(&prerelease, "prerelease", false, "Allow prerelease versions")
	cmd.Flags().BoolVar(&restart, "restart", false, "Restart the camlink systemd unit after updating")
	return cmd
}

package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/creativeprojects/go-selfupdate"
	"github.com/spf13/cobra"
)

const githubRepo = "giantswarm/smokectl"

func newSelfUpdateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "self-update",
		Short: "Update smokectl to the latest released version",
		Long: `Checks GitHub for the latest smokectl release and replaces the
current binary with it if a newer version is available.`,
		RunE: runSelfUpdate,
	}
}

func runSelfUpdate(cmd *cobra.Command, args []string) error {
	version := rootCmd.Version
	if version == "" || version == "dev" {
		return fmt.Errorf("cannot self-update a development version of smokectl; install a released build first")
	}

	ctx := context.Background()
	latest, found, err := selfupdate.DetectLatest(ctx, selfupdate.ParseSlug(githubRepo))
	if err != nil {
		return fmt.Errorf("failed to detect the latest version: %w", err)
	}
	if !found {
		return fmt.Errorf("no release found for %s", githubRepo)
	}

	if latest.LessOrEqual(version) {
		fmt.Printf("smokectl %s is already the latest version\n", version)
		return nil
	}

	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("could not locate the running executable: %w", err)
	}

	fmt.Printf("Updating smokectl %s -> %s...\n", version, latest.Version())
	if err := selfupdate.UpdateTo(ctx, latest.AssetURL, latest.AssetName, exe); err != nil {
		return fmt.Errorf("failed to update binary: %w", err)
	}

	fmt.Printf("Successfully updated to smokectl %s\n", latest.Version())
	return nil
}

package cmd

import (
	"context"
	"errors"
	"fmt"

	"protokoll/pkg/logging"

	"github.com/creativeprojects/go-selfupdate"
	"github.com/spf13/cobra"
)

// ErrDevelopmentVersion is returned when the running binary has no release
// version to compare against.
var ErrDevelopmentVersion = errors.New("cannot self-update a development version")

// For mocking in tests
var (
	detectLatest   = selfupdate.DetectLatest
	updateTo       = selfupdate.UpdateTo
	executablePath = selfupdate.ExecutablePath
)

func newSelfUpdateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "self-update",
		Short: "Update protokoll to the latest version",
		Long: `Checks for the latest release of protokoll on GitHub and
updates the current binary if a newer version is found.

The release repository defaults to redaksjon/protokoll and can be changed
with updateRepository in protokoll-config.yaml.`,
		Args: cobra.NoArgs,
		RunE: runSelfUpdate,
	}
}

func runSelfUpdate(cmd *cobra.Command, args []string) error {
	currentVersion := cliVersion
	if currentVersion == "" || currentVersion == "dev" {
		return ErrDevelopmentVersion
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	p := printerFor(cmd)

	slug := activeConfig.UpdateRepository
	p.Info("Checking for updates in %s (current version %s)...", slug, currentVersion)

	latest, found, err := detectLatest(ctx, selfupdate.ParseSlug(slug))
	if err != nil {
		return fmt.Errorf("error detecting latest version: %w", err)
	}
	if !found {
		return fmt.Errorf("latest version for %s could not be found", slug)
	}

	if latest.LessOrEqual(currentVersion) {
		p.Success("Current version %s is the latest", currentVersion)
		return nil
	}

	exe, err := executablePath()
	if err != nil {
		return fmt.Errorf("could not locate executable path: %w", err)
	}

	logging.Info("CLI", "Updating %s from %s to %s", exe, currentVersion, latest.Version())
	p.Info("Updating to %s...", latest.Version())
	if err := updateTo(ctx, latest.AssetURL, latest.AssetName, exe); err != nil {
		return fmt.Errorf("error occurred while updating binary: %w", err)
	}

	p.Success("Successfully updated to version %s", latest.Version())
	return nil
}

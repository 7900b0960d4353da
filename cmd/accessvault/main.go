package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/awnumar/memguard"
	"github.com/spf13/cobra"

	_ "golang.org/x/crypto/x509roots/fallback" // Embed CA certs for scratch container

	"github.com/ericfisherdev/accessvault/internal/config"
	"github.com/ericfisherdev/accessvault/internal/logging"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	code := 0
	if err := newRootCommand().Execute(); err != nil {
		slog.Error("fatal error", "error", err)
		code = 1
	}
	// Wipe the sealed key and any open buffers before exiting.
	memguard.SafeExit(code)
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "accessvault",
		Short: "Team credential vault with audited reveals and expiry alerts",
		Long: `accessvault stores team credentials encrypted with AES-256-GCM, enforces
personal/shared visibility, audits every secret reveal, and raises daily
notifications for credentials that are about to expire.

Configuration is read from ACCESSVAULT_* environment variables.`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newServeCommand(),
		newScanCommand(),
		newKeygenCommand(),
		newUsersCommand(),
		newMigrateCommand(),
	)
	return root
}

// loadConfig reads the environment and installs the configured logger as the
// slog default. withKey selects whether ACCESSVAULT_SECRET_KEY is required.
func loadConfig(withKey bool) (*config.Config, *slog.Logger, error) {
	load := config.LoadWithoutKey
	if withKey {
		load = config.Load
	}
	cfg, err := load()
	if err != nil {
		return nil, nil, err
	}

	logger, err := logging.New(os.Stderr, cfg.LogFormat, cfg.LogLevel)
	if err != nil {
		return nil, nil, err
	}
	slog.SetDefault(logger)

	return cfg, logger, nil
}

package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ericfisherdev/accessvault/internal/adapter/driven/memory"
	sqliteadapter "github.com/ericfisherdev/accessvault/internal/adapter/driven/sqlite"
	"github.com/ericfisherdev/accessvault/internal/application"
	"github.com/ericfisherdev/accessvault/internal/domain/model"
)

func newScanCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "scan",
		Short: "Run one expiration scan and print the notifications",
		Long: `Run the expiration monitor once against the database and print every
notification it raises. Notifications are not persisted; a running server
keeps its own in-memory list.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := loadConfig(false)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			db, err := openStore(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer closeStore(db, logger)

			monitor := application.NewExpirationMonitor(
				sqliteadapter.NewCredentialRepo(db),
				memory.NewNotificationStore(nil),
				application.SystemClock{},
				cfg.AlertWindowDays,
				application.WithMonitorLogger(logger),
			)
			result, err := monitor.RunExpirationScan(ctx)
			if err != nil {
				return err
			}

			printNotifications(cmd.OutOrStdout(), result.Notifications)
			return nil
		},
	}
}

func printNotifications(w io.Writer, ns []model.Notification) {
	if len(ns) == 0 {
		fmt.Fprintln(w, "no credentials expiring")
		return
	}
	for _, n := range ns {
		fmt.Fprintln(w, n.Message)
	}
}

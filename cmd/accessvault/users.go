package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	sqliteadapter "github.com/ericfisherdev/accessvault/internal/adapter/driven/sqlite"
	"github.com/ericfisherdev/accessvault/internal/domain/model"
)

func newUsersCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage the user directory",
	}
	cmd.AddCommand(newUsersImportCommand(), newUsersListCommand())
	return cmd
}

func newUsersImportCommand() *cobra.Command {
	var actor string

	cmd := &cobra.Command{
		Use:   "import <file.yaml>",
		Short: "Create or update users from a YAML file",
		Long: `Create or update users from a YAML file. Users are matched by email;
existing users get the file's name, role and active flag.

Example file:
  users:
    - name: Alice Smith
      email: alice@example.com
      role: admin
    - name: Bob Jones
      email: bob@example.com`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
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

			n, err := importUserFile(ctx, sqliteadapter.NewUserRepo(db), args[0], actor)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d users\n", n)
			return nil
		},
	}

	cmd.Flags().StringVar(&actor, "actor", seedActor, "Name recorded as the creator/updater of imported users")
	return cmd
}

func newUsersListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every user",
		Args:  cobra.NoArgs,
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

			users, err := sqliteadapter.NewUserRepo(db).ListAll(ctx)
			if err != nil {
				return err
			}
			return printUsers(cmd.OutOrStdout(), users)
		},
	}
}

func printUsers(w io.Writer, users []model.User) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "EMAIL\tNAME\tROLE\tACTIVE")
	for _, u := range users {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%t\n", u.Email, u.Name, u.Role, u.Active)
	}
	return tw.Flush()
}

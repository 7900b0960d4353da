package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ericfisherdev/accessvault/internal/adapter/driven/aesgcm"
)

func newKeygenCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "keygen",
		Short: "Print a new random 256-bit key for ACCESSVAULT_SECRET_KEY",
		Long: `Print a new random 256-bit key, base64-encoded.

Losing the key makes every stored secret unrecoverable. Changing it makes
existing secrets fail to decrypt; there is no re-encryption command.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			key, err := aesgcm.GenerateKey()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), key)
			return nil
		},
	}
}

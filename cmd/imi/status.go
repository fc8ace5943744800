package main

import (
	"fmt"

	"github.com/hyperjump/imi/internal/cli"
	"github.com/spf13/cobra"
)

// NewStatusCmd prints the server status.
func NewStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show server model, document count and watched directories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := outputFormat(cmd)
			if err != nil {
				return err
			}
			client, err := newClient(cmd)
			if err != nil {
				return err
			}
			status, err := client.Status(cmd.Context())
			if err != nil {
				return fmt.Errorf("status: %w", err)
			}
			return cli.WriteStatus(cmd.OutOrStdout(), status, format)
		},
	}
}

package main

import (
	"fmt"
	"path/filepath"

	"github.com/hyperjump/imi/internal/cli"
	"github.com/hyperjump/imi/internal/models"
	"github.com/spf13/cobra"
)

// NewWatchCmd manages the server's watched note directories.
func NewWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Manage watched note directories",
		Long: `Add, remove or list the directories the server watches for notes.
Changes are saved to the server's config file when it has one.`,
	}
	cmd.AddCommand(newWatchAddCmd(), newWatchRemoveCmd(), newWatchListCmd())
	return cmd
}

func newWatchAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <dir>",
		Short: "Watch a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			abs, err := filepath.Abs(args[0])
			if err != nil {
				return fmt.Errorf("resolve path: %w", err)
			}
			noSync, _ := cmd.Flags().GetBool("no-sync")
			sync := !noSync
			client, err := newClient(cmd)
			if err != nil {
				return err
			}
			resp, err := client.AddWatchDirectory(cmd.Context(), &models.WatchDirectoryRequest{Path: abs, Sync: &sync})
			if err != nil {
				return fmt.Errorf("watch add: %w", err)
			}
			return writeWatchResult(cmd, resp)
		},
	}
	cmd.Flags().Bool("no-sync", false, "do not index files already in the directory")
	return cmd
}

func newWatchRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "remove <dir>",
		Aliases: []string{"rm"},
		Short:   "Stop watching a directory",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			abs, err := filepath.Abs(args[0])
			if err != nil {
				return fmt.Errorf("resolve path: %w", err)
			}
			client, err := newClient(cmd)
			if err != nil {
				return err
			}
			resp, err := client.RemoveWatchDirectory(cmd.Context(), abs)
			if err != nil {
				return fmt.Errorf("watch remove: %w", err)
			}
			return writeWatchResult(cmd, resp)
		},
	}
}

func newWatchListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List watched directories",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := outputFormat(cmd)
			if err != nil {
				return err
			}
			client, err := newClient(cmd)
			if err != nil {
				return err
			}
			resp, err := client.WatchDirectories(cmd.Context())
			if err != nil {
				return fmt.Errorf("watch list: %w", err)
			}
			if format == cli.OutputJSON {
				return cli.WriteJSON(cmd.OutOrStdout(), resp)
			}
			if len(resp.Directories) == 0 {
				_, err = fmt.Fprintln(cmd.OutOrStdout(), "No watched directories.")
				return err
			}
			for _, dir := range resp.Directories {
				fmt.Fprintln(cmd.OutOrStdout(), dir)
			}
			return nil
		},
	}
}

func writeWatchResult(cmd *cobra.Command, resp *models.WatchDirectoryResponse) error {
	format, err := outputFormat(cmd)
	if err != nil {
		return err
	}
	if format == cli.OutputJSON {
		return cli.WriteJSON(cmd.OutOrStdout(), resp)
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", resp.Path, resp.Status)
	return err
}

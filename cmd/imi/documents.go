package main

import (
	"fmt"

	"github.com/hyperjump/imi/internal/cli"
	"github.com/spf13/cobra"
)

// NewListCmd prints the IDs of every stored document.
func NewListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored document IDs",
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
			list, err := client.List(cmd.Context())
			if err != nil {
				return fmt.Errorf("list documents: %w", err)
			}
			return cli.WriteDocumentList(cmd.OutOrStdout(), list, format)
		},
	}
}

// NewGetCmd prints one stored document.
func NewGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show a stored document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := outputFormat(cmd)
			if err != nil {
				return err
			}
			client, err := newClient(cmd)
			if err != nil {
				return err
			}
			doc, err := client.Get(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("get document: %w", err)
			}
			return cli.WriteDocument(cmd.OutOrStdout(), doc, format)
		},
	}
}

// NewDeleteCmd removes documents by ID.
func NewDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id...>",
		Short: "Delete documents from the index",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient(cmd)
			if err != nil {
				return err
			}
			for _, id := range args {
				if _, err := client.Delete(cmd.Context(), id); err != nil {
					return fmt.Errorf("delete %s: %w", id, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", id)
			}
			return nil
		},
	}
}

// NewClearCmd removes every document.
func NewClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove all documents from the index",
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
			resp, err := client.Clear(cmd.Context())
			if err != nil {
				return fmt.Errorf("clear: %w", err)
			}
			if format == cli.OutputJSON {
				return cli.WriteJSON(cmd.OutOrStdout(), resp)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d documents\n", resp.Cleared)
			return err
		},
	}
}

package main

import (
	"fmt"
	"strings"

	"github.com/hyperjump/imi/internal/cli"
	"github.com/hyperjump/imi/internal/models"
	"github.com/spf13/cobra"
)

// NewSearchCmd runs a similarity search.
func NewSearchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <query...>",
		Short: "Search indexed documents",
		Long:  `Rank indexed documents by cosine similarity to the query.`,
		Args:  cobra.MinimumNArgs(1),
		RunE:  runSearch,
	}
	cmd.Flags().IntP("limit", "n", 0, "maximum number of results (default: server search.default_limit)")
	return cmd
}

func runSearch(cmd *cobra.Command, args []string) error {
	format, err := outputFormat(cmd)
	if err != nil {
		return err
	}
	limit, _ := cmd.Flags().GetInt("limit")
	if limit < 0 {
		return fmt.Errorf("--limit must not be negative")
	}
	client, err := newClient(cmd)
	if err != nil {
		return err
	}

	resp, err := client.Search(cmd.Context(), &models.SearchRequest{
		Query: strings.Join(args, " "),
		Limit: limit,
	})
	if err != nil {
		return fmt.Errorf("search: %w", err)
	}
	return cli.WriteSearchResults(cmd.OutOrStdout(), resp, format)
}

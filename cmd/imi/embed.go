package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/hyperjump/imi/internal/cli"
	"github.com/spf13/cobra"
)

// NewEmbedCmd prints the embedding of a text.
func NewEmbedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "embed <text...>",
		Short: "Embed text and print the vector",
		Long: `Embed the given text with the server's model. Text output prints the
vector components on one line separated by spaces; --output json prints the
full response.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runEmbed,
	}
}

func runEmbed(cmd *cobra.Command, args []string) error {
	format, err := outputFormat(cmd)
	if err != nil {
		return err
	}
	client, err := newClient(cmd)
	if err != nil {
		return err
	}

	resp, err := client.Embed(cmd.Context(), strings.Join(args, " "))
	if err != nil {
		return fmt.Errorf("embed: %w", err)
	}
	if format == cli.OutputJSON {
		return cli.WriteJSON(cmd.OutOrStdout(), resp)
	}

	parts := make([]string, len(resp.Embedding))
	for i, v := range resp.Embedding {
		parts[i] = strconv.FormatFloat(float64(v), 'g', -1, 32)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), strings.Join(parts, " "))
	return err
}

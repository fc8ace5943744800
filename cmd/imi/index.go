package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/hyperjump/imi/internal/cli"
	"github.com/hyperjump/imi/internal/models"
	"github.com/spf13/cobra"
)

// NewIndexCmd adds a document to the server's index.
func NewIndexCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "index [text...]",
		Short: "Index a document",
		Long: `Embed a document and store it in the index. The text comes from the
arguments, from --file, or from stdin when the only argument is "-".
Without --id the server assigns a UUID.`,
		Example: `  imi index --id intro "Go is an open source programming language"
  imi index --file notes/today.md --metadata '{"tag":"daily"}'
  cat README.md | imi index --id readme -`,
		RunE: runIndex,
	}
	cmd.Flags().String("id", "", "document ID (default: generated)")
	cmd.Flags().StringP("file", "f", "", "read the document text from a file")
	cmd.Flags().String("metadata", "", "metadata as a JSON value")
	return cmd
}

func runIndex(cmd *cobra.Command, args []string) error {
	format, err := outputFormat(cmd)
	if err != nil {
		return err
	}
	text, err := readDocumentText(cmd, args)
	if err != nil {
		return err
	}

	id, _ := cmd.Flags().GetString("id")
	req := &models.IndexRequest{ID: id, Text: text}
	if raw, _ := cmd.Flags().GetString("metadata"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &req.Metadata); err != nil {
			return fmt.Errorf("parse --metadata: %w", err)
		}
	}

	client, err := newClient(cmd)
	if err != nil {
		return err
	}
	resp, err := client.Index(cmd.Context(), req)
	if err != nil {
		return fmt.Errorf("index: %w", err)
	}
	if format == cli.OutputJSON {
		return cli.WriteJSON(cmd.OutOrStdout(), resp)
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "Indexed %s\n", resp.ID)
	return err
}

func readDocumentText(cmd *cobra.Command, args []string) (string, error) {
	file, _ := cmd.Flags().GetString("file")
	switch {
	case file != "" && len(args) > 0:
		return "", fmt.Errorf("use either --file or text arguments, not both")
	case file != "":
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("read %s: %w", file, err)
		}
		return string(data), nil
	case len(args) == 1 && args[0] == "-":
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	case len(args) == 0:
		return "", fmt.Errorf("no text given (pass text, --file, or - for stdin)")
	}
	return strings.Join(args, " "), nil
}

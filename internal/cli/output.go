// Package cli renders server responses for the imi command line.
package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/hyperjump/imi/internal/models"
	"github.com/hyperjump/imi/pkg/utils"
)

// OutputFormat is the format for command output.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

// ParseOutputFormat validates a --output flag value.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch OutputFormat(s) {
	case OutputText, "":
		return OutputText, nil
	case OutputJSON:
		return OutputJSON, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want text or json)", s)
	}
}

const snippetLen = 200

var (
	rankStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("99"))
	scoreStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	idStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	keyStyle   = lipgloss.NewStyle().Bold(true)
)

// WriteJSON writes v as indented JSON.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// WriteSearchResults writes search results to w in the given format.
func WriteSearchResults(w io.Writer, response *models.SearchResponse, format OutputFormat) error {
	if format == OutputJSON {
		return WriteJSON(w, response)
	}
	if len(response.Results) == 0 {
		_, err := fmt.Fprintln(w, "No results.")
		return err
	}
	fmt.Fprintf(w, "Found %d results\n\n", len(response.Results))
	for i, r := range response.Results {
		fmt.Fprintf(w, "%s %s %s\n",
			rankStyle.Render(fmt.Sprintf("%d.", i+1)),
			scoreStyle.Render(fmt.Sprintf("%.4f", r.Score)),
			idStyle.Render(r.ID))
		fmt.Fprintf(w, "   %s\n\n", utils.Truncate(r.Text, snippetLen))
	}
	return nil
}

// WriteDocument writes a stored document to w in the given format.
func WriteDocument(w io.Writer, doc *models.DocumentResponse, format OutputFormat) error {
	if format == OutputJSON {
		return WriteJSON(w, doc)
	}
	fmt.Fprintf(w, "%s %s\n", keyStyle.Render("ID:"), doc.ID)
	if doc.Metadata != nil {
		meta, err := json.Marshal(doc.Metadata)
		if err != nil {
			return fmt.Errorf("encode metadata: %w", err)
		}
		fmt.Fprintf(w, "%s %s\n", keyStyle.Render("Metadata:"), meta)
	}
	_, err := fmt.Fprintf(w, "\n%s\n", doc.Text)
	return err
}

// WriteDocumentList writes stored document IDs to w in the given format.
func WriteDocumentList(w io.Writer, list *models.DocumentListResponse, format OutputFormat) error {
	if format == OutputJSON {
		return WriteJSON(w, list)
	}
	if len(list.IDs) == 0 {
		_, err := fmt.Fprintln(w, "No documents.")
		return err
	}
	for _, id := range list.IDs {
		fmt.Fprintln(w, id)
	}
	_, err := fmt.Fprintf(w, "\n%s %d\n", keyStyle.Render("Documents:"), list.Count)
	return err
}

// WriteStatus writes the server status to w in the given format.
func WriteStatus(w io.Writer, status *models.StatusResponse, format OutputFormat) error {
	if format == OutputJSON {
		return WriteJSON(w, status)
	}
	fmt.Fprintf(w, "%s %s\n", keyStyle.Render("Model:"), status.Model)
	fmt.Fprintf(w, "%s %d\n", keyStyle.Render("Dimensions:"), status.Dimensions)
	fmt.Fprintf(w, "%s %d\n", keyStyle.Render("Documents:"), status.Documents)
	if len(status.WatchDirectories) == 0 {
		_, err := fmt.Fprintf(w, "%s none\n", keyStyle.Render("Watching:"))
		return err
	}
	fmt.Fprintf(w, "%s\n", keyStyle.Render("Watching:"))
	for _, d := range status.WatchDirectories {
		fmt.Fprintf(w, "  %s\n", d)
	}
	return nil
}

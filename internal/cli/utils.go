// Package cli provides output formatting and the HTTP client used by the qdocs CLI.
package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/hyperjump/qdocs/internal/models"
	"github.com/hyperjump/qdocs/pkg/utils"
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
		return "", fmt.Errorf("unknown output format %q; use text or json", s)
	}
}

// previewLength is how much content text output shows per record.
const previewLength = 200

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// WriteSearchResults writes search results to w in the given format.
func WriteSearchResults(w io.Writer, response *models.SearchResponse, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, response)
	}
	if len(response.Results) == 0 {
		fmt.Fprintln(w, "No matching documents found.")
		return nil
	}
	fmt.Fprintf(w, "\nFound %d results in %dms\n\n", response.Total, response.QueryTime)
	for _, hit := range response.Results {
		fmt.Fprintf(w, "─────────────────────────────────────────────────────────\n")
		fmt.Fprintf(w, "Document ID: %d | Score: %.2f\n", hit.ID, hit.Score)
		fmt.Fprintf(w, "\n%s\n\n", utils.Truncate(hit.Content, previewLength))
	}
	return nil
}

// WriteDocuments writes a page of stored documents to w in the given format.
func WriteDocuments(w io.Writer, response *models.ListResponse, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, response)
	}
	if len(response.Documents) == 0 {
		fmt.Fprintln(w, "No documents stored.")
		return nil
	}
	fmt.Fprintf(w, "%d document(s) (limit %d)\n\n", response.Total, response.Limit)
	for _, doc := range response.Documents {
		fmt.Fprintf(w, "─────────────────────────────────────────────────────────\n")
		fmt.Fprintf(w, "Document ID: %d\n", doc.ID)
		fmt.Fprintf(w, "\n%s\n\n", utils.Truncate(doc.Content, previewLength))
	}
	return nil
}

// WriteDocument writes one document with its full content.
func WriteDocument(w io.Writer, doc *models.Document, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, doc)
	}
	fmt.Fprintf(w, "Document ID: %d\n", doc.ID)
	if len(doc.Vector) > 0 {
		fmt.Fprintf(w, "Vector: %v\n", doc.Vector)
	}
	fmt.Fprintf(w, "\n%s\n", doc.Content)
	return nil
}

// WriteStatus writes the server status.
func WriteStatus(w io.Writer, status *models.StatusResponse, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, status)
	}
	fmt.Fprintf(w, "status:        %s\n", status.Status)
	fmt.Fprintf(w, "backend:       %s\n", status.Backend)
	fmt.Fprintf(w, "collection:    %s\n", status.Collection)
	fmt.Fprintf(w, "dimensions:    %d\n", status.Dimensions)
	fmt.Fprintf(w, "distance:      %s\n", status.Distance)
	fmt.Fprintf(w, "search_limit:  %d\n", status.SearchLimit)
	fmt.Fprintf(w, "list_limit:    %d\n", status.ListLimit)
	if status.Error != "" {
		fmt.Fprintf(w, "error:         %s\n", status.Error)
	}
	return nil
}

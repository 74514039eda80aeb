package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/hyperjump/qdocs/internal/cli"
	"github.com/hyperjump/qdocs/internal/extract"
	"github.com/hyperjump/qdocs/internal/models"
	"github.com/spf13/cobra"
)

func newUploadCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "upload <file.txt|->",
		Short: "Store a text file as a new document",
		Long: `Store a plain text file as a new document and print its id.
Use - to read from stdin.

Examples:
  qdocs upload notes.txt
  echo "hello world" | qdocs upload -`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := opts.format()
			if err != nil {
				return err
			}
			content, err := readContent(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}
			id, err := opts.client().Create(cmd.Context(), content)
			if err != nil {
				return fmt.Errorf("upload failed: %w", err)
			}
			if format == cli.OutputJSON {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]uint64{"id": id})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Document uploaded with ID %d\n", id)
			return nil
		},
	}
}

func newSearchCmd(opts *rootOptions) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Search stored documents",
		Long: `Search stored documents. The query is all arguments joined by spaces and may be empty.

Examples:
  qdocs search machine learning
  qdocs search --limit 3 -o json "machine learning"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := opts.format()
			if err != nil {
				return err
			}
			res, err := opts.client().Search(cmd.Context(), buildSearchQuery(args), limit)
			if err != nil {
				return fmt.Errorf("search failed: %w", err)
			}
			return cli.WriteSearchResults(cmd.OutOrStdout(), res, format)
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "number of results (0 = server default)")
	return cmd
}

func newListCmd(opts *rootOptions) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored documents",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := opts.format()
			if err != nil {
				return err
			}
			res, err := opts.client().List(cmd.Context(), limit)
			if err != nil {
				return fmt.Errorf("list failed: %w", err)
			}
			return cli.WriteDocuments(cmd.OutOrStdout(), res, format)
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "maximum number of documents (0 = server default)")
	return cmd
}

func newGetCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := opts.format()
			if err != nil {
				return err
			}
			id, err := parseIDArg(args[0])
			if err != nil {
				return err
			}
			doc, err := opts.client().Get(cmd.Context(), id)
			if err != nil {
				return fmt.Errorf("get failed: %w", err)
			}
			return cli.WriteDocument(cmd.OutOrStdout(), doc, format)
		},
	}
}

func newDeleteCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseIDArg(args[0])
			if err != nil {
				return err
			}
			if err := opts.client().Delete(cmd.Context(), id); err != nil {
				return fmt.Errorf("deletion failed: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted document ID %d\n", id)
			return nil
		},
	}
}

func newModifyCmd(opts *rootOptions) *cobra.Command {
	var (
		content string
		file    string
	)
	cmd := &cobra.Command{
		Use:   "modify <id>",
		Short: "Replace a document's content",
		Long: `Replace a document's content. The vector is recomputed.

Examples:
  qdocs modify 4242 --content "new text"
  qdocs modify 4242 --file updated.txt`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseIDArg(args[0])
			if err != nil {
				return err
			}
			if (content == "") == (file == "") {
				return errors.New("exactly one of --content or --file is required")
			}
			if file != "" {
				if content, err = readContent(cmd.InOrStdin(), file); err != nil {
					return err
				}
			}
			if err := opts.client().Modify(cmd.Context(), id, content); err != nil {
				return fmt.Errorf("modify failed: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated document ID %d\n", id)
			return nil
		},
	}
	cmd.Flags().StringVar(&content, "content", "", "new content")
	cmd.Flags().StringVar(&file, "file", "", "read new content from a .txt file (- for stdin)")
	return cmd
}

func newStatusCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show collection status and vector store health",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := opts.format()
			if err != nil {
				return err
			}
			status, err := opts.client().Status(cmd.Context())
			if err != nil {
				return fmt.Errorf("status failed: %w", err)
			}
			return cli.WriteStatus(cmd.OutOrStdout(), status, format)
		},
	}
}

// buildSearchQuery joins all positional args with spaces so multi-word queries
// work the same with or without shell quoting.
func buildSearchQuery(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

func parseIDArg(s string) (uint64, error) {
	id, err := models.ParseID(s)
	if err != nil {
		return 0, fmt.Errorf("invalid document id %q", s)
	}
	return id, nil
}

// readContent reads a .txt file, or stdin when path is "-".
func readContent(stdin io.Reader, path string) (string, error) {
	e := extract.NewExtractor()
	if path == "-" {
		return e.ExtractUpload("stdin.txt", stdin)
	}
	return e.Extract(path)
}

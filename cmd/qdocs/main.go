// Package main is the qdocs CLI entry point.
package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/hyperjump/qdocs/internal/cli"
	"github.com/hyperjump/qdocs/internal/config"
	"github.com/spf13/cobra"
)

var version = "dev"

const (
	defaultConfigPath = "/usr/local/etc/qdocs/config.yaml"
	defaultServerURL  = "http://localhost:8501"
)

// rootOptions holds flags shared by all subcommands.
type rootOptions struct {
	configPath string
	serverURL  string
	output     string
}

func (o *rootOptions) client() *cli.Client {
	return cli.NewClient(o.serverURL)
}

func (o *rootOptions) format() (cli.OutputFormat, error) {
	return cli.ParseOutputFormat(o.output)
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:   "qdocs",
		Short: "Upload, search, and manage text documents in Qdrant",
		Long: `qdocs stores plain text documents in a Qdrant collection and serves a small web UI
to upload, search, list, delete, and modify them.

Run "qdocs server" to start the UI. The other commands talk to a running server.`,
		Version:      version,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", defaultConfigPath, "config file path")
	root.PersistentFlags().StringVar(&opts.serverURL, "server", defaultServerURL, "qdocs server URL")
	root.PersistentFlags().StringVarP(&opts.output, "output", "o", "text", "output format: text or json")

	root.AddCommand(
		newServerCmd(opts),
		newUploadCmd(opts),
		newSearchCmd(opts),
		newListCmd(opts),
		newGetCmd(opts),
		newDeleteCmd(opts),
		newModifyCmd(opts),
		newStatusCmd(opts),
		newConfigCmd(opts),
		&cobra.Command{
			Use:   "version",
			Short: "Show version",
			Args:  cobra.NoArgs,
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "qdocs version %s\n", version)
			},
		},
	)
	return root
}

// loadConfig loads config from path. When path is the default, it first looks for
// config.yaml in the current directory (for development), and falls back to built-in
// defaults when neither file exists.
// Returns the config and the path that was actually loaded ("" for defaults).
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		if path == defaultConfigPath && errors.Is(err, fs.ErrNotExist) {
			cfg, err = config.Default()
			if err != nil {
				return nil, "", err
			}
			return cfg, "", nil
		}
		return nil, "", err
	}
	return cfg, path, nil
}

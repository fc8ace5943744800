package main

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"

	"github.com/hyperjump/imi/internal/cli"
	"github.com/hyperjump/imi/internal/config"
	"github.com/spf13/cobra"
)

const configFileName = "config.yaml"

// NewRootCmd builds the imi command tree.
func NewRootCmd(version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "imi",
		Short: "Local text embedding and semantic search server",
		Long: `imi turns text into embeddings with a local ONNX sentence-transformer
and keeps an in-memory index of documents for similarity search.

Run "imi server" to start the HTTP API; the other commands talk to it.`,
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
		Run: func(cmd *cobra.Command, _ []string) {
			_ = cmd.Help()
		},
	}

	addPersistentFlags(rootCmd)
	rootCmd.AddCommand(
		NewServerCmd(),
		NewEmbedCmd(),
		NewIndexCmd(),
		NewSearchCmd(),
		NewListCmd(),
		NewGetCmd(),
		NewDeleteCmd(),
		NewClearCmd(),
		NewStatusCmd(),
		NewWatchCmd(),
		NewFetchCmd(),
		NewVersionCmd(version),
	)
	return rootCmd
}

func addPersistentFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringP("config", "c", "", "config file (default: ./config.yaml, then the user config dir)")
	cmd.PersistentFlags().String("server", "", "server URL (default: from config server.host and server.port)")
	cmd.PersistentFlags().StringP("output", "o", "text", "output format: text or json")
	cmd.PersistentFlags().Bool("debug", false, "enable debug logging")
}

// NewVersionCmd prints the build version.
func NewVersionCmd(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "imi version %s\n", version)
		},
	}
}

// defaultConfigPath returns the per-user config location.
func defaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return configFileName
	}
	return filepath.Join(dir, "imi", configFileName)
}

// loadConfig loads the config named by --config. Without the flag it uses
// config.yaml in the working directory when present (for development), then
// the user config file, then the defaults. It returns the path that was
// loaded, or "" when only defaults apply.
func loadConfig(cmd *cobra.Command) (*config.Config, string, error) {
	path, _ := cmd.Flags().GetString("config")
	if path != "" {
		cfg, err := config.Load(path)
		if err != nil {
			return nil, "", err
		}
		return cfg, path, nil
	}
	candidates := []string{defaultConfigPath()}
	if cwd, err := os.Getwd(); err == nil {
		candidates = append([]string{filepath.Join(cwd, configFileName)}, candidates...)
	}
	for _, candidate := range candidates {
		if _, err := os.Stat(candidate); err == nil {
			cfg, err := config.Load(candidate)
			if err != nil {
				return nil, "", err
			}
			return cfg, candidate, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, "", err
		}
	}
	cfg, err := config.LoadOrDefault(candidates[len(candidates)-1])
	if err != nil {
		return nil, "", err
	}
	return cfg, "", nil
}

func outputFormat(cmd *cobra.Command) (cli.OutputFormat, error) {
	s, _ := cmd.Flags().GetString("output")
	return cli.ParseOutputFormat(s)
}

// serverURL returns --server, or the address the configured server listens on.
func serverURL(cmd *cobra.Command) (string, error) {
	if u, _ := cmd.Flags().GetString("server"); u != "" {
		return u, nil
	}
	cfg, _, err := loadConfig(cmd)
	if err != nil {
		return "", err
	}
	host := cfg.Server.Host
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "127.0.0.1"
	}
	return "http://" + net.JoinHostPort(host, strconv.Itoa(cfg.Server.Port)), nil
}

func newClient(cmd *cobra.Command) (*cli.Client, error) {
	u, err := serverURL(cmd)
	if err != nil {
		return nil, err
	}
	return cli.NewClient(u, nil), nil
}

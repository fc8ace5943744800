package main

import (
	"fmt"
	"io"

	"github.com/hyperjump/imi/internal/artifacts"
	"github.com/hyperjump/imi/pkg/utils"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// NewFetchCmd downloads the model and tokenizer.
func NewFetchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Download the ONNX model and tokenizer",
		Long: `Download model.onnx and tokenizer.json from the repository configured
under fetch into the embedding paths. Existing files are kept unless --force
is given.`,
		Args: cobra.NoArgs,
		RunE: runFetch,
	}
	cmd.Flags().Bool("force", false, "download even when the files exist")
	return cmd
}

func runFetch(cmd *cobra.Command, _ []string) error {
	cfg, _, err := loadConfig(cmd)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	debug, _ := cmd.Flags().GetBool("debug")
	force, _ := cmd.Flags().GetBool("force")

	opts := []artifacts.DownloaderOption{
		artifacts.WithProgress(newProgressPrinter(cmd.ErrOrStderr())),
	}
	if debug {
		logger, err := utils.NewLogger(true)
		if err != nil {
			return fmt.Errorf("create logger: %w", err)
		}
		defer func() { _ = logger.Sync() }()
		opts = append(opts, artifacts.WithLogger(logger.With(zap.String("component", "fetch"))))
	}

	paths, err := artifacts.NewDownloader(cfg.Fetch, opts...).Fetch(cmd.Context(), &cfg.Embedding, force)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Model:     %s\n", paths.Model)
	fmt.Fprintf(cmd.OutOrStdout(), "Tokenizer: %s\n", paths.Tokenizer)
	return nil
}

// newProgressPrinter reports each whole percent once; without a known size
// it reports every mebibyte.
func newProgressPrinter(w io.Writer) artifacts.ProgressFunc {
	last := map[string]int64{}
	return func(file string, written, total int64) {
		step := written >> 20
		if total > 0 {
			step = written * 100 / total
		}
		if prev, ok := last[file]; ok && prev == step {
			return
		}
		last[file] = step
		if total > 0 {
			fmt.Fprintf(w, "\r%s %3d%%", file, step)
			if written >= total {
				fmt.Fprintln(w)
			}
			return
		}
		fmt.Fprintf(w, "\r%s %d MiB", file, step)
	}
}

package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ArchiveTeam/dupespotter/internal/config"
	"github.com/ArchiveTeam/dupespotter/internal/model"
	"github.com/ArchiveTeam/dupespotter/internal/pipeline"
	"github.com/ArchiveTeam/dupespotter/internal/report"
)

// NewRootCmd creates the root command.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dupespotter <url> [url2]",
		Short: "Spot pages that differ only in per-request noise",
		Long: `dupespotter fetches web pages through an on-disk cache, removes content
that changes on every request, and prints a unified diff of the rest.

With one URL the raw body is fetched (or read from the cache) and written to
stdout. With two URLs both bodies are normalized and compared; the output
lists the cache key of each URL, the cleaned body lengths and the diff.
An empty diff means the two pages are duplicates.

Examples:
  # Compare two pages
  dupespotter 'http://example.com/?p=1' 'http://example.com/?p=1&s=2'

  # Print a cached body
  dupespotter http://example.com/

  # Markdown report through a SOCKS5 proxy
  dupespotter --proxy 127.0.0.1:9050 --markdown URL1 URL2`,
		Version:       getVersion(),
		Args:          cobra.RangeArgs(1, 2),
		RunE:          runRootCmd,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	addPersistentFlags(cmd)

	cmd.AddCommand(NewNormalizeCmd())
	cmd.AddCommand(NewCorpusCmd())
	cmd.AddCommand(NewCacheCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// runRootCmd fetches one URL, or compares two.
func runRootCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	logger := setupLogger(cmd, cfg)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	src, err := newSource(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer src.Close()

	out, closeOut, err := openOutput(cmd, cfg)
	if err != nil {
		return err
	}
	defer closeOut()

	// One URL: raw body, no normalization.
	if len(args) == 1 {
		body, err := src.Get(ctx, args[0])
		if err != nil {
			return err
		}
		_, err = out.Write(body)
		return err
	}

	normalizer, err := newNormalizer(cfg, false, logger)
	if err != nil {
		return err
	}

	// Fetch, normalize and diff both pages. A distinct verdict is not an
	// error; the exit status is 0 either way.
	job := model.NewJob("", args[0], args[1])
	if err := pipeline.NewComparePipeline(src, normalizer, logger).Execute(ctx, job); err != nil {
		return err
	}

	_, err = report.New(reportFormat(cfg), out).WriteComparison(job.Comparison)
	return err
}

// reportFormat maps the report flags to a format.
func reportFormat(cfg *config.Config) report.Format {
	switch {
	case cfg.JSONReport:
		return report.FormatJSON
	case cfg.MarkdownReport:
		return report.FormatMarkdown
	default:
		return report.FormatText
	}
}

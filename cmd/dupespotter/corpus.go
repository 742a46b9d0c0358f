package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ArchiveTeam/dupespotter/internal/config"
	"github.com/ArchiveTeam/dupespotter/internal/corpus"
	"github.com/ArchiveTeam/dupespotter/internal/report"
)

// NewCorpusCmd creates the corpus command.
func NewCorpusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "corpus [dir]",
		Short: "Check that stored duplicate pairs normalize to identical bodies",
		Long: `Corpus runs the normalizer over a directory of known duplicate pairs.

Each subdirectory of dir (default "tests") holds two bodies, each with a
"<name>.info.json" sidecar recording its URL. Entries copied out of the file
cache have exactly this layout. A pair passes when the diff of its cleaned
bodies is empty. The exit status is 1 when any pair fails.

Examples:
  dupespotter corpus
  dupespotter corpus --batch 8 --markdown -o corpus.md testdata/pairs`,
		Args: cobra.MaximumNArgs(1),
		RunE: runCorpusCmd,
	}

	cmd.Flags().IntP("batch", "b", config.DefaultBatchSize, "Number of pairs checked concurrently")

	return cmd
}

// runCorpusCmd executes the corpus command.
func runCorpusCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	logger := setupLogger(cmd, cfg)

	dir := corpus.DefaultDir
	if len(args) == 1 {
		dir = args[0]
	}

	// Corpus pairs are compared exactly as the root command would, with the
	// configured rules and without masking.
	normalizer, err := newNormalizer(cfg, false, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runner := corpus.NewRunner(normalizer,
		corpus.WithConcurrency(cfg.BatchSize),
		corpus.WithLogger(logger),
	)
	summary, err := runner.Run(ctx, dir)
	if err != nil {
		return err
	}

	out, closeOut, err := openOutput(cmd, cfg)
	if err != nil {
		return err
	}
	defer closeOut()

	if _, err := report.New(reportFormat(cfg), out).WriteCorpus(summary); err != nil {
		return err
	}
	// The report is written first so failing diffs are visible.
	if !summary.OK() {
		return fmt.Errorf("%d of %d pairs did not normalize to identical bodies", summary.Total-summary.Passed, summary.Total)
	}
	return nil
}

package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// NewNormalizeCmd creates the normalize command.
func NewNormalizeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "normalize <url>",
		Short: "Print a page with its per-request noise removed",
		Long: `Normalize fetches a page through the cache and prints the body that the
comparison would diff.

With --mask, removed bytes are replaced by NUL bytes instead of being cut,
so offsets in the output line up with the raw body. With --stats, a summary
of what each rule removed is written to stderr.

Examples:
  dupespotter normalize http://example.com/node/1 > cleaned.html
  dupespotter normalize --stats http://example.com/node/1 > /dev/null`,
		Args: cobra.ExactArgs(1),
		RunE: runNormalizeCmd,
	}

	cmd.Flags().Bool("mask", false, "Replace removed bytes with NUL instead of deleting them")
	cmd.Flags().Bool("stats", false, "Write per-rule statistics to stderr")

	return cmd
}

// runNormalizeCmd executes the normalize command.
func runNormalizeCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	logger := setupLogger(cmd, cfg)

	mask, err := cmd.Flags().GetBool("mask")
	if err != nil {
		return err
	}
	showStats, err := cmd.Flags().GetBool("stats")
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	src, err := newSource(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer src.Close()

	body, err := src.Get(ctx, args[0])
	if err != nil {
		return err
	}

	normalizer, err := newNormalizer(cfg, mask, logger)
	if err != nil {
		return err
	}
	result, err := normalizer.NormalizeWithStats(body, args[0])
	if err != nil {
		return err
	}

	out, closeOut, err := openOutput(cmd, cfg)
	if err != nil {
		return err
	}
	defer closeOut()

	if _, err := out.Write(result.Body); err != nil {
		return err
	}
	// Stats go to stderr so stdout stays byte-exact.
	if showStats {
		fmt.Fprint(cmd.ErrOrStderr(), result.Stats.String())
	}
	return nil
}

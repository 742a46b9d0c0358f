package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

// NewCacheCmd creates the cache command group.
func NewCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect the page cache",
	}
	cmd.AddCommand(newCacheListCmd())
	return cmd
}

func newCacheListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List cached pages",
		Long: `List prints one line per cached page: cache key, body size, time stored
and URL. With --json the entries are printed as a JSON array.`,
		Args: cobra.NoArgs,
		RunE: runCacheListCmd,
	}
}

// runCacheListCmd executes the cache list command.
func runCacheListCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	logger := setupLogger(cmd, cfg)

	store, err := openStore(cfg, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	entries, err := store.List(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list cache: %w", err)
	}

	out, closeOut, err := openOutput(cmd, cfg)
	if err != nil {
		return err
	}
	defer closeOut()

	// --json prints the entries as they are; --markdown has no table form
	// here and falls back to text.
	if cfg.JSONReport {
		enc := json.NewEncoder(out)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	}

	// key, size, stored, url
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\n", e.Key, e.Size, e.StoredAt.Format(time.RFC3339), e.URL)
	}
	return tw.Flush()
}

package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/ArchiveTeam/dupespotter/internal/config"
	dslog "github.com/ArchiveTeam/dupespotter/internal/log"
)

// addPersistentFlags registers the flags shared by every command.
func addPersistentFlags(cmd *cobra.Command) {
	f := cmd.PersistentFlags()

	f.BoolP("verbose", "v", false, "Enable verbose logging")
	f.Bool("log-json", false, "Write logs as JSON")
	f.StringP("config", "c", "",
		"Configuration file path (default: .dupespotter in current or home directory)")

	// Cache
	f.String("cache-dir", "", "Cache directory (default: XDG cache directory)")
	f.String("store", config.DefaultStore, "Cache backend: file or sqlite")

	// Fetching
	f.DurationP("timeout", "t", config.DefaultTimeout, "Timeout for each request")
	f.String("proxy", "", "SOCKS5 proxy address (host:port)")
	f.Bool("tor", false, "Fetch through an embedded Tor daemon (needs tor in PATH)")
	f.Duration("tor-timeout", config.DefaultTorStartupTimeout, "Timeout for embedded Tor startup")
	f.String("user-agent", config.DefaultUserAgent, "User-Agent header")
	f.Duration("delay", 0, "Minimum delay between requests to the same host")
	f.Int("rate", 0, "Maximum requests per --rate-window to the same host (0 disables)")
	f.Duration("rate-window", 0, "Window for --rate")
	f.Int64("max-body-size", config.DefaultMaxBodySize, "Maximum response body size in bytes")

	// Reports
	f.BoolP("json", "j", false, "Output JSON report (mutually exclusive with --markdown)")
	f.BoolP("markdown", "m", false, "Output Markdown report (mutually exclusive with --json)")
	f.StringP("output", "o", "", "Write output to the given file instead of stdout")
}

// buildConfig layers defaults, the config file and explicitly set flags,
// then validates the result.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()
	flags := cmd.Flags()

	var err error
	cfg.ConfigFilePath, err = flags.GetString("config")
	if err != nil {
		return nil, err
	}

	configPath := config.FindConfigFile(cfg.ConfigFilePath)
	switch {
	case configPath != "":
		file, err := config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		cfg.ApplyFile(file)
	case cfg.ConfigFilePath != "":
		return nil, fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	}

	err = errors.Join(
		override(flags, "cache-dir", flags.GetString, &cfg.CacheDir),
		override(flags, "store", flags.GetString, &cfg.Store),
		override(flags, "timeout", flags.GetDuration, &cfg.Timeout),
		override(flags, "proxy", flags.GetString, &cfg.ProxyAddress),
		override(flags, "tor", flags.GetBool, &cfg.UseTor),
		override(flags, "tor-timeout", flags.GetDuration, &cfg.TorStartupTimeout),
		override(flags, "user-agent", flags.GetString, &cfg.UserAgent),
		override(flags, "delay", flags.GetDuration, &cfg.RequestDelay),
		override(flags, "rate", flags.GetInt, &cfg.RateRequests),
		override(flags, "rate-window", flags.GetDuration, &cfg.RateWindow),
		override(flags, "max-body-size", flags.GetInt64, &cfg.MaxBodySize),
		override(flags, "batch", flags.GetInt, &cfg.BatchSize),
	)
	if err != nil {
		return nil, err
	}

	if cfg.JSONReport, err = flags.GetBool("json"); err != nil {
		return nil, err
	}
	if cfg.MarkdownReport, err = flags.GetBool("markdown"); err != nil {
		return nil, err
	}
	if cfg.ReportFile, err = flags.GetString("output"); err != nil {
		return nil, err
	}
	if cfg.Verbose, err = flags.GetBool("verbose"); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration error: %w", err)
	}
	return cfg, nil
}

// override copies the named flag into dst when it was set on the command
// line. Flags a command does not define are left alone.
func override[T any](flags *pflag.FlagSet, name string, get func(string) (T, error), dst *T) error {
	if flags.Lookup(name) == nil || !flags.Changed(name) {
		return nil
	}
	v, err := get(name)
	if err != nil {
		return err
	}
	*dst = v
	return nil
}

// setupLogger builds the redacting logger and installs it as the default.
func setupLogger(cmd *cobra.Command, cfg *config.Config) *slog.Logger {
	jsonLogs, err := cmd.Flags().GetBool("log-json")
	if err != nil {
		jsonLogs = false
	}
	logger := dslog.NewLogger(cmd.ErrOrStderr(), cfg.Verbose, jsonLogs)
	slog.SetDefault(logger)
	return logger
}

// openOutput returns the report destination and a function closing it.
func openOutput(cmd *cobra.Command, cfg *config.Config) (io.Writer, func(), error) {
	if cfg.ReportFile == "" {
		return cmd.OutOrStdout(), func() {}, nil
	}

	if dir := filepath.Dir(cfg.ReportFile); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}
	f, err := os.Create(cfg.ReportFile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, func() { _ = f.Close() }, nil
}

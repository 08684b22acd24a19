package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alvmarrod/content-weaver/internal/config"
	"github.com/alvmarrod/content-weaver/internal/crawler"
	"github.com/alvmarrod/content-weaver/internal/storage"
	"github.com/alvmarrod/content-weaver/internal/version"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command, which runs a crawl
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawler",
		Short: "Crawl one site breadth-first and extract its content",
		Long: `Crawler starts at a seed URL, follows same-domain links breadth-first up to
a page bound, and writes one content record per page with its title and
heading-delimited sections.`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE:          runCrawl,
	}

	cmd.Flags().StringP("config", "c", "config.json", "Path to a JSON or YAML config file")
	cmd.Flags().String("seed", "", "Seed URL (overrides seed_url)")
	cmd.Flags().Int("max-urls", 0, "Maximum number of URLs to visit (overrides max_urls)")
	cmd.Flags().StringP("output", "o", "", `Records JSON path, "-" to disable (overrides output_path)`)
	cmd.Flags().String("db", "", `SQLite database path, "-" to disable (overrides db_path)`)
	cmd.Flags().String("log-level", "", "Log level: debug, info, warn, error (overrides log_level)")

	cmd.AddCommand(NewLinksCmd())

	return cmd
}

func runCrawl(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	logrus.SetLevel(level)

	logrus.Infof("Content Weaver v%s starting...", version.Version)
	logrus.Infof("Configuration loaded: seed=%s, max_urls=%d, timeout=%dms",
		cfg.SeedURL, cfg.MaxURLs, cfg.RequestTimeoutMs)

	var sinks storage.MultiSink
	if config.Enabled(cfg.OutputPath) {
		sinks = append(sinks, storage.NewJSONFileSink(cfg.OutputPath))
	}
	if config.Enabled(cfg.DBPath) {
		store, err := storage.NewStorage(cfg.DBPath)
		if err != nil {
			return fmt.Errorf("failed to initialize storage: %w", err)
		}
		defer store.Close()
		logrus.Infof("Database initialized: %s", cfg.DBPath)
		sinks = append(sinks, store)
	}

	fetcher := crawler.NewCollyFetcher(cfg.UserAgent, time.Duration(cfg.RequestTimeoutMs)*time.Millisecond)
	c := crawler.NewCrawler(fetcher, sinks)

	// Stop between pages on SIGINT/SIGTERM, results collected so far are still written
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	result, runErr := c.Run(ctx, cfg.SeedURL, cfg.MaxURLs)

	if config.Enabled(cfg.MetricsPath) {
		if err := c.Tracker().WriteToFile(cfg.MetricsPath, c.TerminationReason()); err != nil {
			logrus.Errorf("Failed to write metrics: %v", err)
		} else {
			logrus.Infof("Metrics written to %s", cfg.MetricsPath)
		}
	}

	if result != nil {
		fmt.Fprintf(cmd.OutOrStdout(), "%d records, %d processed, %d skipped, %d empty\n",
			len(result.Records), result.Stats.Processed, result.Stats.Skipped, result.Stats.EmptyContent)
	}

	return runErr
}

// loadConfig reads the config file, applies flag overrides and validates.
// A missing file is fine when --seed is given.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	seed, _ := cmd.Flags().GetString("seed")

	cfg, err := config.ReadFile(path)
	if err != nil {
		if !errors.Is(err, config.ErrConfigNotFound) || seed == "" {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = &config.Config{}
	}

	if seed != "" {
		cfg.SeedURL = seed
	}
	if cmd.Flags().Changed("max-urls") {
		cfg.MaxURLs, _ = cmd.Flags().GetInt("max-urls")
		// Checked here since Finalize treats 0 as unset
		if cfg.MaxURLs < 1 {
			return nil, fmt.Errorf("--max-urls must be >= 1, got %d", cfg.MaxURLs)
		}
	}
	if cmd.Flags().Changed("output") {
		cfg.OutputPath, _ = cmd.Flags().GetString("output")
	}
	if cmd.Flags().Changed("db") {
		cfg.DBPath, _ = cmd.Flags().GetString("db")
	}
	if cmd.Flags().Changed("log-level") {
		cfg.LogLevel, _ = cmd.Flags().GetString("log-level")
	}

	if err := config.Finalize(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Package cmd defines and implements the CLI commands for the sitescribe
// executable.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/sitescribe/sitescribe/internal/api"
	"github.com/sitescribe/sitescribe/internal/clock/system"
	"github.com/sitescribe/sitescribe/internal/fetcher/headless"
	"github.com/sitescribe/sitescribe/internal/logging"
	"github.com/sitescribe/sitescribe/internal/scribe"
	"github.com/sitescribe/sitescribe/internal/sitemap"
	"github.com/sitescribe/sitescribe/internal/sitemap/crawlgen"
	"github.com/sitescribe/sitescribe/internal/sitemap/execgen"
	"github.com/sitescribe/sitescribe/internal/store/postgres"
)

// newCrawlCmd creates and configures the 'crawl' subcommand, which runs one
// full mirror pass for the configured site.
func newCrawlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl",
		Short: "Mirror the configured site into markdown",
		Long: `Resolves the site's page list from its sitemap (generating one when
none is published), fetches every page with bounded parallelism, and
merges the saved pages into one combined document.`,

		RunE: runCrawlCommand,
	}
	return cmd
}

func runCrawlCommand(cmd *cobra.Command, _ []string) error {
	cfg, err := scribe.LoadConfig(viper.GetViper())
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.New(viper.GetBool("logging.development"))
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck // best-effort flush

	ctx := cmd.Context()
	startedAt := time.Now().UTC()

	urls, err := resolveURLs(ctx, cfg, logger)
	if err != nil {
		return err
	}
	if len(urls) == 0 {
		// Nothing to do is a normal completion, not an error.
		fmt.Println("No URLs found to crawl")
		return nil
	}
	logger.Info("resolved page list", zap.Int("urls", len(urls)))

	fetcher, err := headless.NewChromedp(headless.Config{
		UserAgent:         cfg.UserAgent,
		NavigationTimeout: cfg.RequestTimeout,
		HostQPS:           cfg.HostQPS,
	}, logger)
	if err != nil {
		return fmt.Errorf("init fetcher: %w", err)
	}
	defer fetcher.Close()

	engine := scribe.NewEngine(cfg, fetcher, system.New(), logger)

	if cfg.APIAddr != "" {
		server := api.NewServer(engine, logger)
		server.Start(cfg.APIAddr)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if cerr := server.Close(shutdownCtx); cerr != nil {
				logger.Warn("status server shutdown failed", zap.Error(cerr))
			}
		}()
	}

	summary, err := engine.Run(ctx, urls)
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("run pipeline: %w", err)
	}

	if cfg.DatabaseEnabled {
		saveRunRecord(ctx, cfg, summary, startedAt, logger)
	}

	printSummary(summary)
	return nil
}

// resolveURLs wires the sitemap resolver with its fallback generators.
func resolveURLs(ctx context.Context, cfg scribe.Config, logger *zap.Logger) ([]string, error) {
	sitemapFile := cfg.GeneratorOutputFile
	if sitemapFile == "" {
		sitemapFile = filepath.Join(cfg.OutputDir, "sitemap.xml")
	}

	primary, err := crawlgen.New(crawlgen.Config{
		MaxDepth:   cfg.GeneratorMaxDepth,
		MaxPages:   cfg.GeneratorMaxPages,
		UserAgent:  cfg.UserAgent,
		OutputFile: sitemapFile,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("init sitemap generator: %w", err)
	}

	var secondary sitemap.Generator
	if len(cfg.GeneratorCommand) > 0 {
		secondary, err = execgen.New(execgen.Config{
			Command:    cfg.GeneratorCommand,
			OutputFile: sitemapFile,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("init external sitemap generator: %w", err)
		}
	}

	client := &http.Client{Timeout: cfg.RequestTimeout}
	resolver := sitemap.NewResolver(client, cfg.SitemapPath, primary, secondary, logger)

	urls, err := resolver.Resolve(ctx, cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("resolve site urls: %w", err)
	}
	return urls, nil
}

// saveRunRecord persists the run summary; a database problem is logged but
// never fails a crawl that already finished.
func saveRunRecord(ctx context.Context, cfg scribe.Config, summary scribe.Summary, startedAt time.Time, logger *zap.Logger) {
	store, err := postgres.NewRunStore(ctx, cfg.DatabaseDSN)
	if err != nil {
		logger.Error("connect run store failed", zap.Error(err))
		return
	}
	defer store.Close()

	record := postgres.RunRecord{
		ID:          uuid.New(),
		BaseURL:     cfg.BaseURL,
		SessionID:   summary.SessionID,
		StartedAt:   startedAt,
		FinishedAt:  startedAt.Add(summary.Elapsed),
		TotalPages:  summary.Total,
		Succeeded:   summary.Succeeded,
		Failed:      summary.Failed,
		Words:       summary.Words,
		SuccessRate: summary.SuccessRate,
	}
	if err := store.SaveRun(ctx, record); err != nil {
		logger.Error("save run record failed", zap.Error(err))
	}
}

func printSummary(summary scribe.Summary) {
	color.New(color.Bold).Println("Crawl complete")
	color.Green("  Success rate: %.1f%% (%d/%d pages)", summary.SuccessRate, summary.Succeeded, summary.Total)
	fmt.Printf("  Total words: %d\n", summary.Words)
	if summary.Failed > 0 {
		color.Red("  Failed pages: %d (details in %s)", summary.Failed, summary.JournalPath)
	}
	fmt.Printf("  Combined document: %s (%d pages)\n", summary.CollectedPath, summary.MergedPages)
}

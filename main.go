package main

// comicscrape crawls a publisher catalog page, writes one CSV row per item
// and saves the covers of the expected size.
//
// Package structure:
// - models/      : Data structures (CatalogItem, ComicRecord, ItemResult)
// - config/      : Configuration loading, run context, build metadata
// - cf/          : Browser headers, decompression, challenge detection
// - parser/      : Image inspection, date parsing, text and path helpers
// - sites/       : Site plugins and registry
// - downloader/  : HTTP client, browser session, cover downloader, pipeline
// - sink/        : CSV and SQLite outputs
// - errlog/      : Error log
// - ui/          : Prompts and terminal report

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"

	"comicscrape/cf"
	"comicscrape/config"
	"comicscrape/downloader"
	"comicscrape/parser"
	"comicscrape/sink"
	"comicscrape/sites"
	"comicscrape/ui"
	"comicscrape/validation"
)

var (
	configPath  string
	workers     int
	fetchMode   string
	dbPath      string
	verbose     bool
	showVersion bool
)

var rootCmd = &cobra.Command{
	Use:   "comicscrape [catalog-url] [series] [base-path]",
	Short: "comicscrape scrapes a comic catalog into a CSV file and a folder of covers.",
	Long: `comicscrape fetches a catalog page, visits every item on it, writes
Title, Plot, Date, Issue, Series and Publisher to {base-path}/{series}/output.csv
and saves the covers of the expected size to {base-path}/{series}/Covers.

Arguments that are not given are asked interactively.`,
	Args:          cobra.MaximumNArgs(3),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runScrape,
}

func init() {
	flags := rootCmd.Flags()
	flags.StringVar(&configPath, "config", config.DefaultConfigPath, "json5 configuration file")
	flags.IntVar(&workers, "workers", 0, "items processed in parallel (default from config, 1)")
	flags.StringVar(&fetchMode, "fetch-mode", "", "detail page fetch mode: http or browser")
	flags.StringVar(&dbPath, "db", "", "also write records to this SQLite database")
	flags.BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	flags.BoolVar(&showVersion, "version", false, "print version information and exit")
}

func initSlog(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
	}))
	slog.SetDefault(logger)
}

// loadConfig reads the config file and applies the command line overrides.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return cfg, err
	}

	if cmd.Flags().Changed("workers") {
		cfg.Workers = workers
	}
	if cmd.Flags().Changed("fetch-mode") {
		cfg.FetchMode = fetchMode
	}
	if cmd.Flags().Changed("db") {
		cfg.Database = dbPath
	}

	return cfg, cfg.Validate()
}

// resolveInputs takes the positional arguments and asks for the missing ones.
func resolveInputs(args []string) (catalogURL, series, basePath string, err error) {
	prompter := ui.NewPrompter()

	if len(args) > 0 {
		catalogURL = args[0]
	} else if catalogURL, err = prompter.AskCatalogURL(); err != nil {
		return
	}

	if len(args) > 1 {
		series = args[1]
	} else if series, err = prompter.AskSeries(); err != nil {
		return
	}

	if len(args) > 2 {
		basePath = args[2]
	} else if len(args) < 2 {
		// only ask when the run was not fully specified on the command line
		if basePath, err = prompter.AskBasePath(); err != nil {
			return
		}
	}

	err = validation.ValidateRunInputs(catalogURL, series)
	return
}

func runScrape(cmd *cobra.Command, args []string) error {
	if showVersion {
		fmt.Println(config.VersionString())
		return nil
	}

	initSlog(verbose)

	cfg, err := loadConfig(cmd)
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	catalogURL, series, basePath, err := resolveInputs(args)
	if err != nil {
		return err
	}

	run, err := config.NewRun(cfg, catalogURL, series, basePath)
	if err != nil {
		return fmt.Errorf("cannot prepare output directories: %w", err)
	}
	defer run.Close()

	site, err := sites.New(cfg.Site, downloader.SiteOptions{
		Series:     series,
		Publisher:  cfg.Publisher,
		IssueLabel: cfg.IssueLabel,
		DateLocale: cfg.DateLocale,
		Dates:      parser.MondayParser{},
	})
	if err != nil {
		return err
	}

	profile := cf.BrowserProfile{UserAgent: cfg.UserAgent, AcceptLanguage: cfg.AcceptLanguage}
	client := downloader.NewHTTPClient(profile, cfg.Timeout())

	executor, err := downloader.NewRequestExecutor(cfg.FetchMode, client, profile, cfg.Timeout())
	if err != nil {
		return err
	}

	openers := []downloader.SinkOpener{
		func() (sink.RecordSink, error) { return sink.NewCSVSink(run.OutputPath()) },
	}
	if cfg.Database != "" {
		dbFile, err := parser.ExpandPath(cfg.Database)
		if err != nil {
			return fmt.Errorf("cannot expand database path: %w", err)
		}
		openers = append(openers, func() (sink.RecordSink, error) {
			return sink.NewSQLiteSink(cmd.Context(), dbFile)
		})
	}

	manager, err := downloader.NewManager(run, site, client, executor, openers...)
	if err != nil {
		return err
	}
	manager.Progress = func(title string, done, total int) {
		slog.Info("processed item", "title", title, "done", done, "total", total)
	}

	summary, runErr := manager.Run(cmd.Context())
	ui.PrintReport(os.Stdout, summary, run.Errors.Entries())

	return runErr
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			slog.Warn("interrupted")
		} else {
			slog.Error("run failed", "err", err)
		}
		stop()
		os.Exit(1)
	}
}

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/gowikitab/internal/app"
	"github.com/hyperifyio/gowikitab/internal/wiki"
)

func main() {
	// Logging setup
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	var (
		title      string
		lang       string
		outputPath string
		pdfPath    string
		configPath string
		apiURL     string
		apiUA      string
		apiTimeout time.Duration
		dbPath     string
		dbTable    string
		dbInit     bool
		lookupKey  string
		verbose    bool
	)

	flag.StringVar(&title, "title", "", "Article title to extract (e.g. \"Python_(programming_language)\")")
	flag.StringVar(&lang, "lang", os.Getenv("WIKI_LANGUAGE"), "Article language code, e.g. 'en' or 'ja'")
	flag.StringVar(&outputPath, "output", "", "Path to write the extracted prose; empty writes to stdout")
	flag.StringVar(&pdfPath, "output.pdf", "", "Optional path to also render the prose as PDF")
	flag.StringVar(&configPath, "config", "", "Optional YAML config file")
	flag.StringVar(&apiURL, "api.url", os.Getenv("WIKI_API_URL"), "Override the wiki API endpoint (mainly for testing)")
	flag.StringVar(&apiUA, "api.ua", os.Getenv("WIKI_USER_AGENT"), "Custom User-Agent for API requests")
	flag.DurationVar(&apiTimeout, "api.timeout", 0, "Per-request fetch timeout (e.g. 30s); 0 uses the default")
	flag.StringVar(&dbPath, "db.path", os.Getenv("DB_PATH"), "SQLite database path for extracted tables")
	flag.StringVar(&dbTable, "db.table", os.Getenv("DB_TABLE"), "Table namespace inside the database")
	flag.BoolVar(&dbInit, "db.init", false, "Destructively reinitialize the table namespace before use")
	flag.StringVar(&lookupKey, "lookup", "", "Print the stored grid for a key (e.g. table_2) instead of extracting")
	flag.BoolVar(&verbose, "v", false, "Verbose logging")
	flag.Parse()

	if verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	cfg := app.Config{
		Title:        title,
		Language:     lang,
		OutputPath:   outputPath,
		PDFPath:      pdfPath,
		APIBaseURL:   apiURL,
		UserAgent:    apiUA,
		FetchTimeout: apiTimeout,
		DBPath:       dbPath,
		DBTable:      dbTable,
		DBInit:       dbInit,
		LookupKey:    lookupKey,
		Verbose:      verbose,
	}

	// Precedence: flags, then config file, then environment.
	if configPath != "" {
		fc, err := app.LoadFileConfig(configPath)
		if err != nil {
			log.Error().Err(err).Str("path", configPath).Msg("config file")
			os.Exit(2)
		}
		app.MergeFileConfig(&cfg, fc)
	}
	app.ApplyEnvToConfig(&cfg)

	if cfg.Title == "" && cfg.LookupKey == "" {
		fmt.Fprintln(os.Stderr, "either -title or -lookup is required")
		flag.Usage()
		os.Exit(2)
	}

	if err := run(cfg); err != nil {
		log.Error().Err(err).Msg("run failed")
		// Missing pages and missing keys are a distinct condition for
		// callers scripting around the tool.
		if errors.Is(err, wiki.ErrNotFound) || errors.Is(err, app.ErrTableMissing) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func run(cfg app.Config) error {
	ctx := context.Background()

	a, err := app.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("init app: %w", err)
	}
	defer a.Close()

	return a.Run(ctx)
}

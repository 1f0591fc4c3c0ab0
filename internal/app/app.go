package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/gowikitab/internal/extract"
	"github.com/hyperifyio/gowikitab/internal/store"
	"github.com/hyperifyio/gowikitab/internal/wiki"
)

// ErrTableMissing is returned by lookup mode when no grid is stored under the
// requested key.
var ErrTableMissing = errors.New("no table stored under key")

type App struct {
	cfg   Config
	wiki  *wiki.Client
	store *store.Store
}

func New(ctx context.Context, cfg Config) (*App, error) {
	if cfg.Language == "" {
		cfg.Language = "en"
	}
	if cfg.DBPath == "" {
		cfg.DBPath = "gowikitab.db"
	}
	if cfg.DBTable == "" {
		cfg.DBTable = "tables"
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "gowikitab/1.0 (+https://github.com/hyperifyio/gowikitab)"
	}
	if cfg.FetchTimeout == 0 {
		cfg.FetchTimeout = 30 * time.Second
	}

	st, err := store.Open(cfg.DBPath, cfg.DBTable, cfg.DBInit)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	a := &App{
		cfg: cfg,
		wiki: &wiki.Client{
			HTTPClient:        newAPIHTTPClient(),
			UserAgent:         cfg.UserAgent,
			BaseURL:           cfg.APIBaseURL,
			PerRequestTimeout: cfg.FetchTimeout,
		},
		store: st,
	}
	return a, nil
}

func (a *App) Close() {
	if a.store != nil {
		_ = a.store.Close()
	}
}

// Run executes a single invocation: either a stored-table lookup, or the full
// fetch, extract, persist pipeline for the configured title.
func (a *App) Run(ctx context.Context) error {
	if a.cfg.LookupKey != "" {
		return a.runLookup(ctx)
	}

	res, err := a.ExtractArticle(ctx, a.cfg.Title, a.cfg.Language)
	if err != nil {
		return err
	}
	log.Info().
		Str("title", a.cfg.Title).
		Int("tables", len(res.Tables)).
		Int("chars", len(res.Prose)).
		Msg("article extracted")

	if err := a.writeProse(res.Prose); err != nil {
		return err
	}
	if a.cfg.PDFPath != "" {
		if err := writeProsePDF(res.Prose, a.cfg.PDFPath); err != nil {
			return fmt.Errorf("write pdf: %w", err)
		}
		log.Info().Str("path", a.cfg.PDFPath).Msg("wrote PDF")
	}

	entries := make([]store.Entry, 0, len(res.Tables))
	for _, t := range res.Tables {
		entries = append(entries, store.Entry{Key: t.Key, Value: t.Grid})
	}
	if err := a.store.Replace(ctx, entries); err != nil {
		return fmt.Errorf("persist tables: %w", err)
	}
	log.Info().Int("stored", len(entries)).Str("table", a.cfg.DBTable).Msg("tables persisted")
	return nil
}

// ExtractArticle fetches the rendered markup for (title, lang) and
// linearizes it. It persists nothing; Run wires the result into the store.
func (a *App) ExtractArticle(ctx context.Context, title, lang string) (*extract.Result, error) {
	markup, err := a.wiki.PageHTML(ctx, title, lang)
	if err != nil {
		return nil, fmt.Errorf("fetch %q: %w", title, err)
	}
	log.Debug().Str("title", title).Int("bytes", len(markup)).Msg("fetched markup")

	res, err := extract.Extract(markup)
	if err != nil {
		return nil, fmt.Errorf("extract %q: %w", title, err)
	}
	return res, nil
}

// LookupTable returns the grid stored under key (e.g. "table_3"). It is the
// read surface consumed by external callers after a Run has populated the
// store.
func (a *App) LookupTable(ctx context.Context, key string) (extract.Grid, bool, error) {
	var g extract.Grid
	found, err := a.store.Get(ctx, key, &g)
	return g, found, err
}

func (a *App) runLookup(ctx context.Context) error {
	g, found, err := a.LookupTable(ctx, a.cfg.LookupKey)
	if err != nil {
		return fmt.Errorf("lookup %q: %w", a.cfg.LookupKey, err)
	}
	if !found {
		return fmt.Errorf("%w: %q", ErrTableMissing, a.cfg.LookupKey)
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(g)
}

func (a *App) writeProse(prose string) error {
	if a.cfg.OutputPath == "" {
		_, err := fmt.Fprintln(os.Stdout, prose)
		return err
	}
	if err := os.WriteFile(a.cfg.OutputPath, []byte(prose+"\n"), 0o644); err != nil {
		return fmt.Errorf("write prose: %w", err)
	}
	log.Info().Str("path", a.cfg.OutputPath).Msg("wrote prose")
	return nil
}

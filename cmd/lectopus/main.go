package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"lectopus/internal/catalog"
	"lectopus/internal/config"
	"lectopus/internal/logging"
	"lectopus/internal/platform/deepl"
	"lectopus/internal/platform/googlebooks"
	"lectopus/internal/platform/openlibrary"
	"lectopus/internal/platform/postgres"
	"lectopus/internal/saved"
	"lectopus/internal/searchmetric"
	"lectopus/internal/tui"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.Saved.Validate(); err != nil {
		return err
	}

	logFile, err := openLogFile(cfg.Saved)
	if err != nil {
		return err
	}
	defer logFile.Close()
	logger := logging.NewWithWriter(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format}, logFile)
	slog.SetDefault(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	backend, closeBackend, err := openSavedBackend(ctx, cfg.Saved)
	if err != nil {
		return err
	}
	defer closeBackend()

	// Trending searches need the shared database; the client works without it.
	var (
		searches tui.TrendingSearches
		recorder catalog.SearchRecorder
	)
	if cfg.Database.DSN != "" {
		pool, err := postgres.Open(ctx, cfg.Database.DSN)
		if err != nil {
			logger.Warn("search metrics disabled", "dsn", postgres.RedactDSN(cfg.Database.DSN), "error", err)
		} else {
			defer pool.Close()
			svc := searchmetric.NewService(searchmetric.NewPostgresRepo(pool, cfg.Database.Timeout))
			searches, recorder = svc, svc
		}
	}

	var translator catalog.Translator
	if cfg.DeepL.APIKey != "" {
		translator = deepl.NewClient(cfg.DeepL.APIKey, cfg.DeepL.Endpoint, cfg.DeepL.RPS)
	}

	catalogService := catalog.NewService(
		openlibrary.NewClient(cfg.OpenLibrary.UserAgent, cfg.OpenLibrary.RPS, cfg.OpenLibrary.MaxRetries),
		googlebooks.NewClient(cfg.GoogleBooks.APIKey, cfg.GoogleBooks.RPS, cfg.GoogleBooks.MaxRetries),
		translator,
		recorder,
		catalog.Config{Languages: cfg.GoogleBooks.Languages, PageSize: cfg.GoogleBooks.PageSize},
		logger,
	)

	lang := ""
	if translator != nil {
		lang = cfg.DeepL.TargetLang
	}

	app := tui.New(ctx, tui.Deps{
		Catalog:  catalogService,
		Searches: searches,
		Saved:    saved.NewStore(backend, logger),
		Profile:  saved.NewProfile(backend),
		Lang:     lang,
		Debounce: 500 * time.Millisecond,
		Logger:   logger,
	})
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))
	app.SetSender(p.Send)

	if _, err := p.Run(); err != nil {
		return err
	}
	app.Close()
	return nil
}

// openSavedBackend returns the configured backend and a func releasing it.
func openSavedBackend(ctx context.Context, cfg config.SavedConfig) (saved.Backend, func() error, error) {
	noop := func() error { return nil }
	switch cfg.Backend {
	case "memory":
		return saved.NewMemoryBackend(), noop, nil
	case "file":
		b, err := saved.NewFileBackend(cfg.Path)
		if err != nil {
			return nil, nil, err
		}
		return b, noop, nil
	case "sqlite":
		if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
			return nil, nil, fmt.Errorf("create data dir: %w", err)
		}
		b, err := saved.OpenSQLite(ctx, cfg.Path)
		if err != nil {
			return nil, nil, err
		}
		return b, b.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown saved backend %q", cfg.Backend)
	}
}

// openLogFile puts the log next to the saved data, or in the temp dir for
// the memory backend.
func openLogFile(cfg config.SavedConfig) (*os.File, error) {
	dir := os.TempDir()
	switch cfg.Backend {
	case "file":
		dir = cfg.Path
	case "sqlite":
		dir = filepath.Dir(cfg.Path)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	return os.OpenFile(filepath.Join(dir, "lectopus.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
}

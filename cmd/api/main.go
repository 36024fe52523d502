package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"lectopus/internal/account"
	"lectopus/internal/catalog"
	"lectopus/internal/config"
	"lectopus/internal/httpx"
	"lectopus/internal/logging"
	"lectopus/internal/platform/deepl"
	"lectopus/internal/platform/googlebooks"
	"lectopus/internal/platform/openlibrary"
	"lectopus/internal/platform/postgres"
	"lectopus/internal/saved"
	"lectopus/internal/searchmetric"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}
	logger := logging.New(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
	slog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	dbPool, err := postgres.Open(ctx, cfg.Database.DSN)
	if err != nil {
		return err
	}
	defer dbPool.Close()
	logger.Info("database connection OK", "dsn", postgres.RedactDSN(cfg.Database.DSN))

	metricService := searchmetric.NewService(searchmetric.NewPostgresRepo(dbPool, cfg.Database.Timeout))

	var translator catalog.Translator
	if cfg.DeepL.APIKey != "" {
		translator = deepl.NewClient(cfg.DeepL.APIKey, cfg.DeepL.Endpoint, cfg.DeepL.RPS)
	}
	catalogService := catalog.NewService(
		openlibrary.NewClient(cfg.OpenLibrary.UserAgent, cfg.OpenLibrary.RPS, cfg.OpenLibrary.MaxRetries),
		googlebooks.NewClient(cfg.GoogleBooks.APIKey, cfg.GoogleBooks.RPS, cfg.GoogleBooks.MaxRetries),
		translator,
		metricService,
		catalog.Config{Languages: cfg.GoogleBooks.Languages, PageSize: cfg.GoogleBooks.PageSize},
		logger,
	)

	blacklist := account.NewPostgresBlacklist(dbPool, cfg.Database.Timeout)
	accountService := account.NewService(
		account.NewPostgresRepo(dbPool, cfg.Database.Timeout),
		blacklist,
		cfg.Auth.JWTSecret,
		cfg.Auth.TokenTTL,
		logger,
	)
	go cleanupBlacklist(ctx, blacklist, logger)

	savedStore := saved.NewStore(saved.NewPostgresBackend(dbPool, cfg.Database.Timeout), logger)

	rateLimiter := httpx.NewRateLimitMiddleware(ctx, cfg.HTTP.RateLimitRPS, cfg.HTTP.RateLimitBurst)

	srv := server{
		catalog:  catalog.NewHTTPHandler(catalogService),
		searches: searchmetric.NewHTTPHandler(metricService),
		account:  account.NewHTTPHandler(accountService),
		saved:    saved.NewHTTPHandler(savedStore),
		auth:     accountService,
		ready:    dbPool.Ping,
	}

	handler := httpx.Chain(srv.routes(),
		httpx.RequestIDMiddleware,
		httpx.AccessLogMiddleware(logger),
		httpx.RecoveryMiddleware(logger),
		rateLimiter.Middleware,
		httpx.CORSMiddleware(cfg.HTTP.CORSOrigins),
		httpx.SecurityHeadersMiddleware(cfg.HTTP.EnableHSTS),
		httpx.RequestSizeLimitMiddleware(cfg.HTTP.MaxBodyBytes),
	)

	httpServer := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server", "addr", cfg.HTTP.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

type server struct {
	catalog  *catalog.HTTPHandler
	searches *searchmetric.HTTPHandler
	account  *account.HTTPHandler
	saved    *saved.HTTPHandler
	auth     httpx.Authenticator
	ready    func(context.Context) error
}

func (s server) routes() *http.ServeMux {
	router := http.NewServeMux()

	router.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	router.HandleFunc("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 500*time.Millisecond)
		defer cancel()
		if err := s.ready(ctx); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	router.HandleFunc("GET /v1/books/trending", s.catalog.Trending)
	router.HandleFunc("GET /v1/books/latest", s.catalog.Latest)
	router.HandleFunc("GET /v1/books/classics", s.catalog.Classics)
	router.HandleFunc("GET /v1/books/search", s.catalog.Search)
	router.HandleFunc("GET /v1/books/{id}", s.catalog.Details)

	router.HandleFunc("GET /v1/searches/trending", s.searches.Trending)

	router.HandleFunc("POST /v1/account/signup", s.account.SignUp)
	router.HandleFunc("POST /v1/account/signin", s.account.SignIn)

	protected := httpx.AuthMiddleware(s.auth)
	router.Handle("POST /v1/account/signout", protected(http.HandlerFunc(s.account.SignOut)))
	router.Handle("GET /v1/account/me", protected(http.HandlerFunc(s.account.Me)))

	router.Handle("GET /v1/me/saved", protected(http.HandlerFunc(s.saved.List)))
	router.Handle("GET /v1/me/saved/count", protected(http.HandlerFunc(s.saved.Count)))
	router.Handle("POST /v1/me/saved", protected(http.HandlerFunc(s.saved.Add)))
	router.Handle("DELETE /v1/me/saved/{id}", protected(http.HandlerFunc(s.saved.Remove)))
	router.Handle("DELETE /v1/me/saved", protected(http.HandlerFunc(s.saved.Clear)))

	return router
}

func cleanupBlacklist(ctx context.Context, blacklist *account.PostgresBlacklist, logger *slog.Logger) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := blacklist.CleanupExpired(ctx)
			if err != nil {
				logger.Warn("blacklist cleanup failed", "error", err)
				continue
			}
			if n > 0 {
				logger.Info("blacklist cleanup", "removed", n)
			}
		}
	}
}

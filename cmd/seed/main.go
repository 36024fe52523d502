package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"strings"
	"time"

	"lectopus/internal/account"
	"lectopus/internal/book"
	"lectopus/internal/config"
	"lectopus/internal/logging"
	"lectopus/internal/platform/postgres"
	"lectopus/internal/searchmetric"
)

func main() {
	count := flag.Int("count", 50, "Number of search metrics to generate")
	demoEmail := flag.String("demo-email", "demo@lectopus.local", "Email of the demo account; empty skips it")
	demoPassword := flag.String("demo-password", "Demo1234!", "Password of the demo account")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}
	logger := logging.New(logging.Config{Level: cfg.Log.Level, Format: "text"})

	ctx := context.Background()
	pool, err := postgres.Open(ctx, cfg.Database.DSN)
	if err != nil {
		logger.Error("failed to connect to database", "dsn", postgres.RedactDSN(cfg.Database.DSN), "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	repo := searchmetric.NewPostgresRepo(pool, cfg.Database.Timeout)
	metrics := buildMetrics(rand.New(rand.NewSource(time.Now().UnixNano())), *count)
	logger.Info("seeding search metrics", "count", len(metrics))
	for i := range metrics {
		if err := repo.Create(ctx, &metrics[i]); err != nil {
			logger.Error("failed to insert metric", "term", metrics[i].SearchTerm, "error", err)
			os.Exit(1)
		}
	}

	top, err := repo.Top(ctx, searchmetric.TopLimit)
	if err != nil {
		logger.Error("failed to read top searches", "error", err)
		os.Exit(1)
	}
	for _, m := range top {
		logger.Info("top search", "term", m.SearchTerm, "count", m.Count)
	}

	if *demoEmail == "" || cfg.Auth.JWTSecret == "" {
		return
	}
	svc := account.NewService(
		account.NewPostgresRepo(pool, cfg.Database.Timeout),
		account.NewPostgresBlacklist(pool, cfg.Database.Timeout),
		cfg.Auth.JWTSecret,
		cfg.Auth.TokenTTL,
		logger,
	)
	_, err = svc.SignUp(ctx, *demoEmail, *demoPassword, "Demo Reader")
	switch {
	case errors.Is(err, account.ErrAlreadyExists):
		logger.Info("demo account already exists", "email", *demoEmail)
	case err != nil:
		logger.Error("failed to create demo account", "error", err)
		os.Exit(1)
	default:
		logger.Info("demo account created", "email", *demoEmail)
	}
}

// buildMetrics generates n search metrics with distinct terms.
func buildMetrics(r *rand.Rand, n int) []searchmetric.Metric {
	seen := make(map[string]bool, n)
	out := make([]searchmetric.Metric, 0, n)
	for i := 0; len(out) < n; i++ {
		term := strings.ToLower(randomWord(r) + " " + randomWord(r))
		if seen[term] {
			term = fmt.Sprintf("%s %d", term, i)
		}
		seen[term] = true

		out = append(out, searchmetric.Metric{
			SearchTerm: term,
			Count:      1 + r.Intn(100),
			PosterURL:  book.FallbackCoverURL,
			BookID:     fmt.Sprintf("seed-%04d", len(out)+1),
			Title:      fmt.Sprintf("The %s of %s", randomWord(r), randomWord(r)),
		})
	}
	return out
}

func randomWord(r *rand.Rand) string {
	words := []string{
		"Adventure", "Mystery", "Journey", "Discovery", "Secrets", "Dreams", "Hope",
		"Love", "War", "Peace", "Science", "Nature", "Technology", "History", "Future",
		"Past", "Present", "Reality", "Imagination", "Wisdom", "Life", "Death",
		"Light", "Darkness", "World", "Universe", "Time", "Space", "Mind", "Soul",
	}
	return words[r.Intn(len(words))]
}

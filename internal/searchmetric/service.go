package searchmetric

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"lectopus/internal/book"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Record counts one search of term. The first search of a term also stores
// the poster, id and title of its first hit.
func (s *Service) Record(ctx context.Context, term string, first book.Book) error {
	term = normalizeTerm(term)
	if term == "" {
		return nil
	}

	existing, err := s.repo.FindByTerm(ctx, term)
	switch {
	case err == nil:
		if err := s.repo.Increment(ctx, existing.ID); err != nil {
			return fmt.Errorf("increment %q: %w", term, err)
		}
		return nil
	case !errors.Is(err, ErrNotFound):
		return fmt.Errorf("find %q: %w", term, err)
	}

	poster := first.CoverURL
	if poster == "" {
		poster = book.FallbackCoverURL
	}
	title := first.Title
	if title == "" {
		title = "Unknown"
	}

	m := &Metric{
		SearchTerm: term,
		Count:      1,
		PosterURL:  poster,
		BookID:     first.ID,
		Title:      title,
	}
	if err := s.repo.Create(ctx, m); err != nil {
		return fmt.Errorf("create %q: %w", term, err)
	}
	return nil
}

// Top returns the most searched terms, highest count first.
func (s *Service) Top(ctx context.Context) ([]Metric, error) {
	return s.repo.Top(ctx, TopLimit)
}

func normalizeTerm(term string) string {
	return strings.ToLower(strings.Join(strings.Fields(term), " "))
}

package searchmetric

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("search metric not found")

// TopLimit is how many terms the trending list shows.
const TopLimit = 5

// Metric counts how often a term was searched, with the first hit of the
// search that created it.
type Metric struct {
	ID         string    `json:"id"`
	SearchTerm string    `json:"search_term"`
	Count      int       `json:"count"`
	PosterURL  string    `json:"poster_url"`
	BookID     string    `json:"book_id"`
	Title      string    `json:"title"`
	UpdatedAt  time.Time `json:"updated_at"`
}

//go:generate mockgen -destination=mock_repository_test.go -package=searchmetric -self_package=lectopus/internal/searchmetric lectopus/internal/searchmetric Repository

type Repository interface {
	FindByTerm(ctx context.Context, term string) (Metric, error)
	Increment(ctx context.Context, id string) error
	Create(ctx context.Context, m *Metric) error
	Top(ctx context.Context, limit int) ([]Metric, error)
}

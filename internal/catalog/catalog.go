package catalog

import (
	"context"
	"errors"

	"lectopus/internal/book"
	"lectopus/internal/platform/googlebooks"
	"lectopus/internal/platform/openlibrary"
)

// ErrInvalidCursor is returned for a search cursor that cannot be decoded.
var ErrInvalidCursor = errors.New("invalid cursor")

const (
	trendingQuery = "bestsellers"
	classicsQuery = "classic"
	latestSubject = "fiction"
)

// OpenLibrary is the subset of the OpenLibrary client the catalog uses.
type OpenLibrary interface {
	Search(ctx context.Context, query string, limit int) (*openlibrary.SearchResponse, error)
	CoverURL(coverID int) string
}

// GoogleBooks is the subset of the Google Books client the catalog uses.
type GoogleBooks interface {
	Search(ctx context.Context, query, lang string, startIndex, limit int) (*googlebooks.VolumesResponse, error)
	Newest(ctx context.Context, subject string, limit int) (*googlebooks.VolumesResponse, error)
	Volume(ctx context.Context, id string) (*googlebooks.Volume, error)
}

type Translator interface {
	Translate(ctx context.Context, text, targetLang string) (string, error)
}

// SearchRecorder counts successful searches together with their first hit.
type SearchRecorder interface {
	Record(ctx context.Context, term string, first book.Book) error
}

type Config struct {
	// Languages restricts Google Books searches; one request per language.
	// Empty means a single unrestricted request.
	Languages []string
	PageSize  int
}

// Page is one page of search results.
type Page struct {
	Books      []book.Book `json:"books"`
	NextCursor string      `json:"next_cursor,omitempty"`
}

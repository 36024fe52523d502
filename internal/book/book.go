package book

import (
	"errors"

	"lectopus/internal/saved"
)

// ErrNotFound is returned when a book is not found.
var ErrNotFound = errors.New("book not found")

// FallbackCoverURL is shown for books without a cover image.
const FallbackCoverURL = "https://placehold.co/400x600/1a1a1a/FFFFFF?text=No+Cover"

const (
	SourceGoogleBooks = "googlebooks"
	SourceOpenLibrary = "openlibrary"
)

// Book is the normalised view of a volume from any upstream catalogue.
type Book struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Authors       []string `json:"authors,omitempty"`
	CoverURL      string   `json:"cover_url"`
	PublishedYear string   `json:"published_year,omitempty"`
	Description   string   `json:"description,omitempty"`
	Categories    []string `json:"categories,omitempty"`
	PageCount     int      `json:"page_count,omitempty"`
	Publisher     string   `json:"publisher,omitempty"`
	Language      string   `json:"language,omitempty"`
	PreviewLink   string   `json:"preview_link,omitempty"`
	Source        string   `json:"source"`
}

// FirstAuthor returns the first listed author or "".
func (b Book) FirstAuthor() string {
	if len(b.Authors) == 0 {
		return ""
	}
	return b.Authors[0]
}

// SavedRecord projects the book onto a saved-list entry.
func (b Book) SavedRecord() saved.Record {
	return saved.Record{
		ID:            b.ID,
		Title:         b.Title,
		CoverURL:      b.CoverURL,
		PublishedYear: b.PublishedYear,
	}
}

package saved

import (
	"context"
	"errors"
)

// DefaultKey is the storage key of the on-device list.
const DefaultKey = "saved_books_v1"

// ErrCorrupt is returned by LoadStrict when the stored list cannot be decoded.
var ErrCorrupt = errors.New("saved list is corrupt")

// Record is the minimal identity of a book on a personal reading list.
type Record struct {
	ID            string `json:"id" validate:"required"`
	Title         string `json:"title" validate:"required"`
	CoverURL      string `json:"cover_url,omitempty"`
	PublishedYear string `json:"published_year,omitempty"`
}

// Backend is a byte-oriented key-value store, the shape of mobile
// AsyncStorage. Get reports whether the key exists.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// UserKey scopes the saved list to an account.
func UserKey(userID string) string {
	return DefaultKey + ":" + userID
}

package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"lectopus/internal/book"
	"lectopus/internal/platform/googlebooks"
	"lectopus/internal/platform/openlibrary"
)

type Service struct {
	ol       OpenLibrary
	gb       GoogleBooks
	tr       Translator
	recorder SearchRecorder
	cfg      Config
	logger   *slog.Logger
}

// NewService wires the catalog. tr and recorder may be nil.
func NewService(ol OpenLibrary, gb GoogleBooks, tr Translator, recorder SearchRecorder, cfg Config, logger *slog.Logger) *Service {
	if cfg.PageSize <= 0 {
		cfg.PageSize = 20
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{ol: ol, gb: gb, tr: tr, recorder: recorder, cfg: cfg, logger: logger}
}

// Trending lists the books shown as highlights on the home screen.
func (s *Service) Trending(ctx context.Context) ([]book.Book, error) {
	return s.list(ctx, trendingQuery)
}

// Classics lists the fallback shown on an idle search screen.
func (s *Service) Classics(ctx context.Context) ([]book.Book, error) {
	return s.list(ctx, classicsQuery)
}

// Latest lists recently published fiction.
func (s *Service) Latest(ctx context.Context) ([]book.Book, error) {
	res, err := s.gb.Newest(ctx, latestSubject, s.cfg.PageSize)
	if err == nil && len(res.Items) > 0 {
		return fromVolumes(res.Items), nil
	}
	if err != nil {
		s.logger.Warn("google books newest failed, using openlibrary", "error", err)
	}

	books, olErr := s.searchOpenLibrary(ctx, "")
	if olErr != nil {
		return nil, errors.Join(err, olErr)
	}
	return books, nil
}

// Search runs a user query. Results from every configured language are
// merged and deduplicated; OpenLibrary answers when Google has nothing.
func (s *Service) Search(ctx context.Context, query, cursor string) (Page, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return Page{Books: []book.Book{}}, nil
	}

	cur, err := book.DecodeCursor(cursor)
	if err != nil {
		return Page{}, ErrInvalidCursor
	}

	books, full, gbErr := s.searchGoogle(ctx, query, cur.Offset)
	if gbErr != nil {
		s.logger.Warn("google books search failed", "query", query, "error", gbErr)
	}

	page := Page{Books: books}
	if full {
		page.NextCursor = book.EncodeCursor(book.CursorData{Offset: cur.Offset + s.cfg.PageSize})
	}

	if len(books) == 0 && cur.Offset == 0 {
		olBooks, olErr := s.searchOpenLibrary(ctx, query)
		if olErr != nil {
			if gbErr != nil {
				return Page{}, errors.Join(gbErr, olErr)
			}
			s.logger.Warn("openlibrary search failed", "query", query, "error", olErr)
		}
		page = Page{Books: olBooks}
	}
	if page.Books == nil {
		page.Books = []book.Book{}
	}

	if len(page.Books) > 0 && cur.Offset == 0 {
		s.record(ctx, query, page.Books[0])
	}
	return page, nil
}

// Details loads one book. With lang set the description is translated,
// keeping the original text if translation fails.
func (s *Service) Details(ctx context.Context, id, lang string) (book.Book, error) {
	var (
		b   book.Book
		err error
	)
	if book.IsOpenLibraryID(id) {
		b, err = s.openLibraryWork(ctx, strings.TrimPrefix(id, book.OpenLibraryPrefix))
	} else {
		b, err = s.volume(ctx, id)
	}
	if err != nil {
		return book.Book{}, err
	}

	if lang != "" && s.tr != nil && b.Description != "" {
		translated, err := s.tr.Translate(ctx, b.Description, lang)
		if err != nil {
			s.logger.Warn("translation failed, keeping original", "book_id", id, "lang", lang, "error", err)
		} else if translated != "" {
			b.Description = book.StripHTML(translated)
		}
	}
	return b, nil
}

func (s *Service) volume(ctx context.Context, id string) (book.Book, error) {
	v, err := s.gb.Volume(ctx, id)
	if err != nil {
		if errors.Is(err, googlebooks.ErrNotFound) {
			return book.Book{}, book.ErrNotFound
		}
		return book.Book{}, fmt.Errorf("fetch volume %s: %w", id, err)
	}
	return book.FromVolume(*v), nil
}

func (s *Service) openLibraryWork(ctx context.Context, workID string) (book.Book, error) {
	res, err := s.ol.Search(ctx, "key:/works/"+workID, 1)
	if err != nil {
		return book.Book{}, fmt.Errorf("fetch work %s: %w", workID, err)
	}
	if len(res.Docs) == 0 {
		return book.Book{}, book.ErrNotFound
	}
	doc := res.Docs[0]
	return book.FromSearchDoc(doc, s.ol.CoverURL(doc.CoverID)), nil
}

// list serves the fixed home and fallback lists.
func (s *Service) list(ctx context.Context, query string) ([]book.Book, error) {
	res, err := s.gb.Search(ctx, query, "", 0, s.cfg.PageSize)
	if err == nil && len(res.Items) > 0 {
		return book.Dedupe(fromVolumes(res.Items)), nil
	}
	if err != nil {
		s.logger.Warn("google books list failed, using openlibrary", "query", query, "error", err)
	}

	books, olErr := s.searchOpenLibrary(ctx, query)
	if olErr != nil {
		return nil, errors.Join(err, olErr)
	}
	return books, nil
}

// searchGoogle fans the query out over the configured languages. full
// reports whether any language filled a whole page. An error is returned
// only when every request failed.
func (s *Service) searchGoogle(ctx context.Context, query string, offset int) ([]book.Book, bool, error) {
	langs := s.cfg.Languages
	if len(langs) == 0 {
		langs = []string{""}
	}

	results := make([][]googlebooks.Volume, len(langs))
	var (
		mu     sync.Mutex
		errs   []error
		failed int
	)

	g, gctx := errgroup.WithContext(ctx)
	for i, lang := range langs {
		g.Go(func() error {
			res, err := s.gb.Search(gctx, query, lang, offset, s.cfg.PageSize)
			if err != nil {
				mu.Lock()
				errs = append(errs, fmt.Errorf("lang %q: %w", lang, err))
				failed++
				mu.Unlock()
				return nil
			}
			results[i] = res.Items
			return nil
		})
	}
	_ = g.Wait()

	var (
		merged []book.Book
		full   bool
	)
	for _, items := range results {
		if len(items) >= s.cfg.PageSize {
			full = true
		}
		merged = append(merged, fromVolumes(items)...)
	}

	if failed == len(langs) {
		return nil, false, errors.Join(errs...)
	}
	return book.Dedupe(merged), full, nil
}

func (s *Service) searchOpenLibrary(ctx context.Context, query string) ([]book.Book, error) {
	res, err := s.ol.Search(ctx, query, s.cfg.PageSize)
	if err != nil {
		return nil, err
	}
	books := make([]book.Book, 0, len(res.Docs))
	for _, doc := range res.Docs {
		books = append(books, book.FromSearchDoc(doc, s.ol.CoverURL(doc.CoverID)))
	}
	return book.Dedupe(books), nil
}

func (s *Service) record(ctx context.Context, query string, first book.Book) {
	if s.recorder == nil {
		return
	}
	if err := s.recorder.Record(ctx, query, first); err != nil {
		s.logger.Warn("record search failed", "query", query, "error", err)
	}
}

func fromVolumes(items []googlebooks.Volume) []book.Book {
	books := make([]book.Book, 0, len(items))
	for _, v := range items {
		books = append(books, book.FromVolume(v))
	}
	return books
}

var _ OpenLibrary = (*openlibrary.Client)(nil)
var _ GoogleBooks = (*googlebooks.Client)(nil)

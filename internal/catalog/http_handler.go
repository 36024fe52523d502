package catalog

import (
	"errors"
	"net/http"

	"lectopus/internal/book"
	"lectopus/internal/httpx"
)

type HTTPHandler struct {
	svc *Service
}

func NewHTTPHandler(svc *Service) *HTTPHandler {
	return &HTTPHandler{svc: svc}
}

// Trending handles GET /v1/books/trending
// @Summary Highlighted books
// @Tags books
// @Produce json
// @Success 200 {object} httpx.SuccessResponse
// @Failure 502 {object} httpx.ErrorResponse
// @Router /v1/books/trending [get]
func (h *HTTPHandler) Trending(w http.ResponseWriter, r *http.Request) {
	books, err := h.svc.Trending(r.Context())
	h.writeList(w, r, books, err)
}

// Latest handles GET /v1/books/latest
// @Summary Recently published books
// @Tags books
// @Produce json
// @Success 200 {object} httpx.SuccessResponse
// @Failure 502 {object} httpx.ErrorResponse
// @Router /v1/books/latest [get]
func (h *HTTPHandler) Latest(w http.ResponseWriter, r *http.Request) {
	books, err := h.svc.Latest(r.Context())
	h.writeList(w, r, books, err)
}

// Classics handles GET /v1/books/classics
func (h *HTTPHandler) Classics(w http.ResponseWriter, r *http.Request) {
	books, err := h.svc.Classics(r.Context())
	h.writeList(w, r, books, err)
}

// Search handles GET /v1/books/search
// @Summary Search books
// @Description Searches Google Books in every configured language, falling back to Open Library
// @Tags books
// @Produce json
// @Param q query string false "Search query"
// @Param cursor query string false "Cursor from the previous page"
// @Success 200 {object} httpx.SuccessResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 502 {object} httpx.ErrorResponse
// @Router /v1/books/search [get]
func (h *HTTPHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	page, err := h.svc.Search(r.Context(), query.Get("q"), query.Get("cursor"))
	if err != nil {
		if errors.Is(err, ErrInvalidCursor) {
			httpx.JSONError(w, r, http.StatusBadRequest, "BAD_REQUEST", "Invalid cursor", nil)
			return
		}
		httpx.JSONError(w, r, http.StatusBadGateway, "UPSTREAM_ERROR", "Book catalogue unavailable", nil)
		return
	}

	meta := map[string]any{"count": len(page.Books)}
	if page.NextCursor != "" {
		meta["next_cursor"] = page.NextCursor
	}
	httpx.JSONSuccess(w, r, page.Books, meta)
}

// Details handles GET /v1/books/{id}
// @Summary Book details
// @Tags books
// @Produce json
// @Param id path string true "Book id"
// @Param lang query string false "Translate the description into this language"
// @Success 200 {object} httpx.SuccessResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Failure 502 {object} httpx.ErrorResponse
// @Router /v1/books/{id} [get]
func (h *HTTPHandler) Details(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		httpx.JSONError(w, r, http.StatusBadRequest, "BAD_REQUEST", "Book id is required", nil)
		return
	}

	b, err := h.svc.Details(r.Context(), id, r.URL.Query().Get("lang"))
	if err != nil {
		if errors.Is(err, book.ErrNotFound) {
			httpx.JSONError(w, r, http.StatusNotFound, "NOT_FOUND", "Book not found", nil)
			return
		}
		httpx.JSONError(w, r, http.StatusBadGateway, "UPSTREAM_ERROR", "Book catalogue unavailable", nil)
		return
	}

	httpx.JSONSuccess(w, r, b, nil)
}

func (h *HTTPHandler) writeList(w http.ResponseWriter, r *http.Request, books []book.Book, err error) {
	if err != nil {
		httpx.JSONError(w, r, http.StatusBadGateway, "UPSTREAM_ERROR", "Book catalogue unavailable", nil)
		return
	}
	httpx.JSONSuccess(w, r, books, map[string]any{"count": len(books)})
}

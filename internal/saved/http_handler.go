package saved

import (
	"encoding/json"
	"net/http"

	"lectopus/internal/httpx"
)

// HTTPHandler serves the signed-in user's saved list.
type HTTPHandler struct {
	store *Store
}

func NewHTTPHandler(store *Store) *HTTPHandler {
	return &HTTPHandler{store: store}
}

func (h *HTTPHandler) userStore(w http.ResponseWriter, r *http.Request) (*Store, bool) {
	userID := httpx.UserIDFrom(r)
	if userID == "" {
		httpx.JSONError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized", nil)
		return nil, false
	}
	return h.store.ForUser(userID), true
}

// List handles GET /v1/me/saved
func (h *HTTPHandler) List(w http.ResponseWriter, r *http.Request) {
	store, ok := h.userStore(w, r)
	if !ok {
		return
	}

	records, err := store.Load(r.Context())
	if err != nil {
		httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
		return
	}

	httpx.JSONSuccess(w, r, records, map[string]any{"total": len(records)})
}

// Count handles GET /v1/me/saved/count
func (h *HTTPHandler) Count(w http.ResponseWriter, r *http.Request) {
	store, ok := h.userStore(w, r)
	if !ok {
		return
	}

	n, err := store.Count(r.Context())
	if err != nil {
		httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
		return
	}

	httpx.JSONSuccess(w, r, map[string]int{"count": n}, nil)
}

// Add handles POST /v1/me/saved
func (h *HTTPHandler) Add(w http.ResponseWriter, r *http.Request) {
	store, ok := h.userStore(w, r)
	if !ok {
		return
	}

	var rec Record
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		httpx.JSONError(w, r, http.StatusBadRequest, "BAD_REQUEST", "Invalid request body", nil)
		return
	}
	if details := httpx.ValidateStruct(rec); len(details) > 0 {
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid input", details)
		return
	}

	if err := store.Save(r.Context(), rec); err != nil {
		httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
		return
	}

	httpx.JSONSuccessCreated(w, r, rec)
}

// Remove handles DELETE /v1/me/saved/{id}
func (h *HTTPHandler) Remove(w http.ResponseWriter, r *http.Request) {
	store, ok := h.userStore(w, r)
	if !ok {
		return
	}

	id := r.PathValue("id")
	if id == "" {
		httpx.JSONError(w, r, http.StatusBadRequest, "BAD_REQUEST", "Book id is required", nil)
		return
	}

	if err := store.Remove(r.Context(), id); err != nil {
		httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
		return
	}

	httpx.JSONSuccessNoContent(w)
}

// Clear handles DELETE /v1/me/saved
func (h *HTTPHandler) Clear(w http.ResponseWriter, r *http.Request) {
	store, ok := h.userStore(w, r)
	if !ok {
		return
	}

	if err := store.Clear(r.Context()); err != nil {
		httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
		return
	}

	httpx.JSONSuccessNoContent(w)
}

package searchmetric

import (
	"net/http"

	"lectopus/internal/httpx"
)

type HTTPHandler struct {
	svc *Service
}

func NewHTTPHandler(svc *Service) *HTTPHandler {
	return &HTTPHandler{svc: svc}
}

// Trending handles GET /v1/searches/trending
// @Summary Most searched terms
// @Tags searches
// @Produce json
// @Success 200 {object} httpx.SuccessResponse
// @Failure 500 {object} httpx.ErrorResponse
// @Router /v1/searches/trending [get]
func (h *HTTPHandler) Trending(w http.ResponseWriter, r *http.Request) {
	metrics, err := h.svc.Top(r.Context())
	if err != nil {
		httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
		return
	}
	httpx.JSONSuccess(w, r, metrics, map[string]any{"count": len(metrics)})
}

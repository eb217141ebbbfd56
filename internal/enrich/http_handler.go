package enrich

import (
	"net/http"
	"strconv"

	"labeldash/internal/httpx"
)

type HTTPHandler struct {
	svc *Service
}

func NewHTTPHandler(svc *Service) *HTTPHandler {
	return &HTTPHandler{svc: svc}
}

// Videos handles GET /v1/releases/{id}/videos
// @Summary Release videos
// @Description YouTube links of a release, looked up on Discogs and cached
// @Tags releases
// @Produce json
// @Param id path int true "Discogs release ID"
// @Success 200 {object} httpx.SuccessResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Router /v1/releases/{id}/videos [get]
func (h *HTTPHandler) Videos(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		httpx.JSONError(w, r, http.StatusBadRequest, "BAD_REQUEST", "release id must be a positive integer", nil)
		return
	}

	links := h.svc.VideoLinks(r.Context(), id)
	httpx.JSONSuccess(w, r, map[string]any{
		"release_id": id,
		"links":      links,
	}, map[string]any{"total": len(links)})
}

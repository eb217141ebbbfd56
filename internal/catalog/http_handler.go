package catalog

import (
	"bytes"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"labeldash/internal/httpx"
)

type HTTPHandler struct {
	svc *Service
}

func NewHTTPHandler(svc *Service) *HTTPHandler {
	return &HTTPHandler{svc: svc}
}

type selectionQuery struct {
	Artist string `validate:"max=500"`
	Years  []int  `validate:"max=500,dive,gte=1,lte=9999"`
}

type pageQuery struct {
	Limit int `validate:"gte=1,lte=500"`
}

const defaultPageLimit = 100

type topQuery struct {
	Field string `validate:"oneof=in_collection in_wantlist"`
	N     int    `validate:"gte=1,lte=100"`
}

type countsQuery struct {
	Field string `validate:"oneof=artist year format"`
	Order string `validate:"oneof=count key"`
}

// SelectionFromQuery reads the artist and year filters. A missing artist
// means AllArtists. A missing year parameter selects every year of the
// artist; a present but blank one selects none.
func SelectionFromQuery(query url.Values) (Selection, []httpx.ErrorDetail) {
	q := selectionQuery{Artist: query.Get("artist")}
	if q.Artist == "" {
		q.Artist = AllArtists
	}

	raw, present := query["year"]
	if present {
		q.Years = []int{}
		for _, v := range raw {
			for _, part := range strings.Split(v, ",") {
				part = strings.TrimSpace(part)
				if part == "" {
					continue
				}
				y, err := strconv.Atoi(part)
				if err != nil {
					return Selection{}, []httpx.ErrorDetail{{Field: "year", Message: fmt.Sprintf("year %q is not a number", part)}}
				}
				q.Years = append(q.Years, y)
			}
		}
	}

	if details := httpx.ValidateStruct(q); details != nil {
		return Selection{}, details
	}
	return Selection{Artist: q.Artist, Years: q.Years}, nil
}

func hasSelection(query url.Values) bool {
	_, artist := query["artist"]
	_, year := query["year"]
	return artist || year
}

func writeLoadError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, ErrDataUnavailable) {
		httpx.JSONError(w, r, http.StatusServiceUnavailable, "DATA_UNAVAILABLE", "Release data is not available", nil)
		return
	}
	httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
}

// Releases handles GET /v1/releases
// @Summary List releases
// @Description List the releases of an artist in the selected years, in file order
// @Tags releases
// @Produce json
// @Param artist query string false "Artist name" default(All Artist)
// @Param year query []int false "Release years; blank selects none, absent selects all" collectionFormat(multi)
// @Param limit query int false "Items per page" default(100)
// @Param cursor query string false "Cursor from meta.next_cursor"
// @Success 200 {object} httpx.SuccessResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 503 {object} httpx.ErrorResponse
// @Router /v1/releases [get]
func (h *HTTPHandler) Releases(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	sel, details := SelectionFromQuery(query)
	if details != nil {
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid filter", details)
		return
	}

	pq := pageQuery{Limit: defaultPageLimit}
	if v := query.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid query",
				[]httpx.ErrorDetail{{Field: "limit", Message: "limit must be a number"}})
			return
		}
		pq.Limit = n
	}
	if details := httpx.ValidateStruct(pq); details != nil {
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid query", details)
		return
	}
	cursor, err := DecodeCursor(query.Get("cursor"))
	if err != nil {
		httpx.JSONError(w, r, http.StatusBadRequest, "INVALID_CURSOR", "Invalid cursor", nil)
		return
	}

	view, err := h.svc.View(sel)
	if err != nil {
		writeLoadError(w, r, err)
		return
	}
	page, next, err := Page(view, cursor.Offset, pq.Limit)
	if err != nil {
		httpx.JSONError(w, r, http.StatusBadRequest, "INVALID_CURSOR", "Invalid cursor", nil)
		return
	}

	releases := page.Releases()
	if releases == nil {
		releases = []Release{}
	}
	meta := map[string]any{
		"artist": sel.Artist,
		"total":  view.Len(),
		"limit":  pq.Limit,
	}
	if c := EncodeCursor(next); c != "" {
		meta["next_cursor"] = c
	}
	httpx.JSONSuccess(w, r, releases, meta)
}

// Artists handles GET /v1/artists
// @Summary List artists
// @Description Artist options, starting with All Artist
// @Tags releases
// @Produce json
// @Success 200 {object} httpx.SuccessResponse
// @Failure 503 {object} httpx.ErrorResponse
// @Router /v1/artists [get]
func (h *HTTPHandler) Artists(w http.ResponseWriter, r *http.Request) {
	artists, err := h.svc.ArtistOptions()
	if err != nil {
		writeLoadError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, artists, nil)
}

// Years handles GET /v1/years
// @Summary List years
// @Description Known release years of an artist, ascending
// @Tags releases
// @Produce json
// @Param artist query string false "Artist name" default(All Artist)
// @Success 200 {object} httpx.SuccessResponse
// @Failure 503 {object} httpx.ErrorResponse
// @Router /v1/years [get]
func (h *HTTPHandler) Years(w http.ResponseWriter, r *http.Request) {
	artist := r.URL.Query().Get("artist")
	if artist == "" {
		artist = AllArtists
	}
	years, err := h.svc.YearOptions(artist)
	if err != nil {
		writeLoadError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, years, map[string]any{"artist": artist})
}

// Counts handles GET /v1/stats/{field}
// @Summary Count releases
// @Description Group releases by artist, year or format
// @Tags stats
// @Produce json
// @Param field path string true "Grouping field" Enums(artist, year, format)
// @Param order query string false "Sort by count or key" Enums(count, key)
// @Param artist query string false "Artist name"
// @Param year query []int false "Release years" collectionFormat(multi)
// @Success 200 {object} httpx.SuccessResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 503 {object} httpx.ErrorResponse
// @Router /v1/stats/{field} [get]
func (h *HTTPHandler) Counts(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	q := countsQuery{Field: r.PathValue("field"), Order: query.Get("order")}
	if q.Order == "" {
		q.Order = "count"
		if q.Field == string(FieldYear) {
			q.Order = "key"
		}
	}
	if details := httpx.ValidateStruct(q); details != nil {
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid query", details)
		return
	}

	var sel *Selection
	if hasSelection(query) {
		s, details := SelectionFromQuery(query)
		if details != nil {
			httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid filter", details)
			return
		}
		sel = &s
	}

	order := ByCountDesc
	if q.Order == "key" {
		order = ByKeyAsc
	}
	counts, err := h.svc.Counts(sel, Field(q.Field), order)
	if err != nil {
		writeLoadError(w, r, err)
		return
	}
	if counts == nil {
		counts = []Count{}
	}
	httpx.JSONSuccess(w, r, counts, map[string]any{"field": q.Field, "order": q.Order})
}

// Top handles GET /v1/top
// @Summary Top releases
// @Description Most collected or wanted distinct releases
// @Tags stats
// @Produce json
// @Param field query string false "Ranking field" Enums(in_collection, in_wantlist) default(in_collection)
// @Param n query int false "Number of releases" default(5)
// @Success 200 {object} httpx.SuccessResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 503 {object} httpx.ErrorResponse
// @Router /v1/top [get]
func (h *HTTPHandler) Top(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	q := topQuery{Field: query.Get("field"), N: 5}
	if q.Field == "" {
		q.Field = string(FieldInCollection)
	}
	if v := query.Get("n"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid query",
				[]httpx.ErrorDetail{{Field: "n", Message: "n must be a number"}})
			return
		}
		q.N = n
	}
	if details := httpx.ValidateStruct(q); details != nil {
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid query", details)
		return
	}

	top, err := h.svc.Top(Field(q.Field), q.N)
	if err != nil {
		writeLoadError(w, r, err)
		return
	}
	releases := top.Releases()
	if releases == nil {
		releases = []Release{}
	}
	httpx.JSONSuccess(w, r, releases, map[string]any{"field": q.Field, "n": q.N})
}

// Export handles GET /export.csv
// @Summary Export releases
// @Description Download the selected releases as CSV
// @Tags releases
// @Produce text/csv
// @Param artist query string false "Artist name" default(All Artist)
// @Param year query []int false "Release years" collectionFormat(multi)
// @Success 200 {file} file
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 503 {object} httpx.ErrorResponse
// @Router /export.csv [get]
func (h *HTTPHandler) Export(w http.ResponseWriter, r *http.Request) {
	sel, details := SelectionFromQuery(r.URL.Query())
	if details != nil {
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid filter", details)
		return
	}

	view, err := h.svc.View(sel)
	if err != nil {
		writeLoadError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, view); err != nil {
		httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{
		"filename": ExportFilename(sel.Artist),
	}))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

package dashboard

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"time"

	"labeldash/internal/catalog"
	"labeldash/internal/chart"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// VideoFinder resolves the first YouTube link of a release.
type VideoFinder interface {
	FirstVideo(ctx context.Context, releaseID int64) (string, bool)
}

const (
	// maxVideoLookups bounds concurrent link lookups while rendering a page.
	maxVideoLookups = 4
	// videoBudget bounds all link lookups of one page. Cards still unresolved
	// when it runs out render without a link.
	videoBudget = 5 * time.Second
)

type HTTPHandler struct {
	svc      *catalog.Service
	videos   VideoFinder
	dataPath string
	logger   *zap.Logger

	videoBudget time.Duration
}

// NewHTTPHandler builds the dashboard. videos may be nil, in which case no
// YouTube links are shown.
func NewHTTPHandler(svc *catalog.Service, videos VideoFinder, dataPath string, logger *zap.Logger) *HTTPHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HTTPHandler{svc: svc, videos: videos, dataPath: dataPath, logger: logger, videoBudget: videoBudget}
}

func (h *HTTPHandler) unavailable(w http.ResponseWriter, err error) {
	msg := fmt.Sprintf("The file '%s' was not found.", h.dataPath)
	switch {
	case errors.Is(err, catalog.ErrMissingColumn):
		msg = fmt.Sprintf("The file '%s' is missing required columns.", h.dataPath)
	case !errors.Is(err, catalog.ErrDataUnavailable):
		h.logger.Error("release data failed", zap.Error(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	http.Error(w, msg, http.StatusServiceUnavailable)
}

func (h *HTTPHandler) selection(w http.ResponseWriter, r *http.Request) (catalog.Selection, bool) {
	query := r.URL.Query()
	sel, details := catalog.SelectionFromQuery(query)
	if details != nil {
		http.Error(w, details[0].Message, http.StatusBadRequest)
		return catalog.Selection{}, false
	}
	// A year list submitted for another artist no longer applies.
	if prev, ok := query["years_for"]; ok && prev[0] != sel.Artist {
		sel.Years = nil
	}
	return sel, true
}

// Index handles GET /
func (h *HTTPHandler) Index(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	tbl, err := h.svc.Table()
	if err != nil {
		h.unavailable(w, err)
		return
	}
	sel, ok := h.selection(w, r)
	if !ok {
		return
	}

	top, err := catalog.TopNByField(tbl, catalog.FieldInCollection, topCount)
	if err != nil {
		h.unavailable(w, err)
		return
	}
	view := catalog.Select(tbl, sel)

	p := page{
		Title:         pageTitle,
		HeaderImage:   headerImage,
		HeaderCaption: headerCaption,
		Description:   labelDescription,
		Artist:        sel.Artist,
		Empty:         view.Empty(),
	}

	for _, name := range append([]string{catalog.AllArtists}, catalog.Artists(tbl)...) {
		p.Artists = append(p.Artists, artistOption{Name: name, Selected: name == sel.Artist})
	}
	for _, y := range catalog.Years(catalog.FilterByArtist(tbl, sel.Artist)) {
		p.Years = append(p.Years, yearOption{Year: y, Selected: sel.Years == nil || slices.Contains(sel.Years, y)})
	}
	for _, rel := range top.Releases() {
		p.Top = append(p.Top, newCard(rel))
	}

	cards := make([]card, view.Len())
	for i := range cards {
		cards[i] = newCard(view.At(i))
	}
	h.resolveVideos(r.Context(), cards)
	p.Releases = rows(cards, gridColumns)

	q := selectionQuery(sel)
	p.FormatsChart = "/charts/formats.svg?" + q
	p.TimelineChart = "/charts/timeline.svg?" + q
	p.ExportURL = "/export.csv?" + q

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, p); err != nil {
		h.logger.Error("render dashboard", zap.Error(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// resolveVideos fills in the first YouTube link of every card with a cover,
// giving up on the remaining cards once the page budget is spent.
func (h *HTTPHandler) resolveVideos(ctx context.Context, cards []card) {
	if h.videos == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, h.videoBudget)
	defer cancel()

	var g errgroup.Group
	g.SetLimit(maxVideoLookups)
	for i := range cards {
		if cards[i].Thumb == "" {
			continue
		}
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			if link, ok := h.videos.FirstVideo(ctx, cards[i].ID); ok {
				cards[i].Video = link
			}
			return nil
		})
	}
	_ = g.Wait()
}

// YearsChart handles GET /charts/years.svg
func (h *HTTPHandler) YearsChart(w http.ResponseWriter, r *http.Request) {
	tbl, err := h.svc.Table()
	if err != nil {
		h.unavailable(w, err)
		return
	}
	counts, err := catalog.CountByKey(tbl, catalog.FieldYear, catalog.ByKeyAsc)
	if err != nil {
		h.unavailable(w, err)
		return
	}
	h.writeSVG(w, func(buf *bytes.Buffer) error {
		return chart.RenderBar(buf, chart.Bar{
			Title:  "Releases Per Year",
			YTitle: "Number of Releases",
			Counts: counts,
			Scheme: chart.Viridis,
		})
	})
}

// FormatsChart handles GET /charts/formats.svg
func (h *HTTPHandler) FormatsChart(w http.ResponseWriter, r *http.Request) {
	h.selectionChart(w, r, catalog.FieldFormat, func(buf *bytes.Buffer, artist string, counts []catalog.Count) error {
		return chart.RenderBar(buf, chart.Bar{
			Title:  "Releases by Format for " + artist,
			YTitle: "Number of Releases",
			Counts: counts,
			Scheme: chart.Plasma,
		})
	})
}

// TimelineChart handles GET /charts/timeline.svg
func (h *HTTPHandler) TimelineChart(w http.ResponseWriter, r *http.Request) {
	h.selectionChart(w, r, catalog.FieldYear, func(buf *bytes.Buffer, artist string, counts []catalog.Count) error {
		return chart.RenderLine(buf, chart.Line{
			Title:  "Releases Timeline for " + artist,
			XTitle: "Year",
			YTitle: "Number of Releases",
			Counts: counts,
		})
	})
}

func (h *HTTPHandler) selectionChart(w http.ResponseWriter, r *http.Request, field catalog.Field, render func(*bytes.Buffer, string, []catalog.Count) error) {
	if _, err := h.svc.Table(); err != nil {
		h.unavailable(w, err)
		return
	}
	sel, ok := h.selection(w, r)
	if !ok {
		return
	}
	counts, err := h.svc.Counts(&sel, field, catalog.ByKeyAsc)
	if err != nil {
		h.unavailable(w, err)
		return
	}
	h.writeSVG(w, func(buf *bytes.Buffer) error {
		return render(buf, sel.Artist, counts)
	})
}

func (h *HTTPHandler) writeSVG(w http.ResponseWriter, render func(*bytes.Buffer) error) {
	var buf bytes.Buffer
	if err := render(&buf); err != nil {
		if errors.Is(err, chart.ErrNoData) {
			http.Error(w, "No data available.", http.StatusNotFound)
			return
		}
		h.logger.Error("render chart", zap.Error(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

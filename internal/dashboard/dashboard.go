// Package dashboard serves the interactive HTML view of the label discography.
package dashboard

import (
	"html/template"
	"net/url"
	"strconv"

	"labeldash/internal/catalog"
)

const (
	headerImage   = "https://images.squarespace-cdn.com/content/v1/62fe9c18730c7512708cb412/09b5243b-3ba2-41b7-af86-a43b898dcac6/salsoul-records.png?format=1500w"
	headerCaption = "Welcome to the Salsoul Records interactive Dashboard"
	pageTitle     = "Salsoul Records Dashboard"

	topCount    = 5
	gridColumns = 3
)

var labelDescription = []string{
	"Iconic US 1970s and early 1980s disco label based in New York City and one of the first to release a commercial " +
		"(as opposed to promo-only) 12-inch single. It was founded by brothers Joe Cayre, Ken Cayre, and Stan Cayre, " +
		"who appeared as executive producers on many productions.",
	"The Cayre trio continued their business in computer games and video with Good Times Home Videos. " +
		"In 1978, Salsoul's manufacturing & distribution was taken on by RCA Records. This agreement remained " +
		"until Salsoul folded around 1985.",
	"At the same time as the RCA deal, a solid red bar appears under the main Salsoul logo " +
		"(e.g., Disco Boogie Vol. 2). In some cases, the red bar is not present. However, if you look closely " +
		"at the design, you can see the red bar has been 'patched over' with the cloud illustration not aligned correctly " +
		"(e.g., Inner Life - I Like It Like That).",
	"See also Salsoul's sister label, Salsoul Salsa Series, specializing in Latin music as an evolution and continuation " +
		"of Mericana Records.",
	"Explore the releases from the Salsoul Records label using this interactive dashboard, now with album covers and stats!",
}

// card is one release tile of a grid.
type card struct {
	ID           int64
	Artist       string
	Title        string
	Year         string
	Thumb        string
	InWantlist   int
	InCollection int
	Video        string
}

func newCard(r catalog.Release) card {
	c := card{
		ID:           r.ID,
		Artist:       r.Artist,
		Title:        r.Title,
		Thumb:        r.Thumb,
		InWantlist:   r.InWantlist,
		InCollection: r.InCollection,
	}
	if r.HasYear() {
		c.Year = strconv.Itoa(r.Year)
	}
	return c
}

type yearOption struct {
	Year     int
	Selected bool
}

type artistOption struct {
	Name     string
	Selected bool
}

type page struct {
	Title         string
	HeaderImage   string
	HeaderCaption string
	Description   []string

	Artist  string
	Artists []artistOption
	Years   []yearOption

	Top      []card
	Releases [][]card
	Empty    bool

	FormatsChart  string
	TimelineChart string
	ExportURL     string
}

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/index.html"))

// selectionQuery encodes sel the way SelectionFromQuery reads it.
func selectionQuery(sel catalog.Selection) string {
	q := url.Values{}
	q.Set("artist", sel.Artist)
	if sel.Years != nil {
		if len(sel.Years) == 0 {
			q.Set("year", "")
		}
		for _, y := range sel.Years {
			q.Add("year", strconv.Itoa(y))
		}
	}
	return q.Encode()
}

// rows splits cards into rows of n.
func rows(cards []card, n int) [][]card {
	var out [][]card
	for len(cards) > n {
		out = append(out, cards[:n])
		cards = cards[n:]
	}
	if len(cards) > 0 {
		out = append(out, cards)
	}
	return out
}

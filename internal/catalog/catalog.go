package catalog

import (
	"errors"
	"slices"
)

var (
	// ErrDataUnavailable is returned when the release file cannot be read.
	ErrDataUnavailable = errors.New("release data unavailable")
	// ErrMissingColumn is returned when a required column is absent from the header.
	ErrMissingColumn = errors.New("missing required column")
	// ErrMalformedStats is returned by ParseStats for blobs of the wrong syntax or shape.
	ErrMalformedStats = errors.New("malformed stats")
)

// AllArtists is the artist selection that disables artist filtering.
const AllArtists = "All Artist"

// Column names of the scraped release file.
const (
	ColStats  = "Stats"
	ColThumb  = "Thumb"
	ColArtist = "Artist"
	ColYear   = "Year"
	ColTitle  = "Release Title"
	ColFormat = "Format"
	ColID     = "ID"

	ColInWantlist   = "in_wantlist"
	ColInCollection = "in_collection"
)

var requiredColumns = []string{ColStats, ColThumb, ColArtist, ColYear, ColTitle, ColFormat, ColID}

// Release is one catalog entry of the label discography.
type Release struct {
	ID           int64  `json:"id"`
	Artist       string `json:"artist,omitempty"`
	Title        string `json:"title"`
	Year         int    `json:"year,omitempty"` // 0 when unknown
	Format       string `json:"format,omitempty"`
	Thumb        string `json:"thumb,omitempty"`
	StatsRaw     string `json:"-"`
	InWantlist   int    `json:"in_wantlist"`
	InCollection int    `json:"in_collection"`

	// fields holds the row exactly as read, aligned with the table header.
	fields []string
}

// HasYear reports whether the release year is known.
func (r Release) HasYear() bool {
	return r.Year != 0
}

// Stats are the community counters parsed from a release's stats blob.
type Stats struct {
	InWantlist   int
	InCollection int
}

// Table is an immutable, ordered set of releases. Filters return new tables
// that share the header of the table they were derived from.
type Table struct {
	header  []string
	rows    []Release
	skipped int
}

// NewTable builds a table from releases. Used for views and in tests; the
// header defaults to the required columns.
func NewTable(rows []Release) *Table {
	return &Table{header: slices.Clone(requiredColumns), rows: slices.Clone(rows)}
}

func (t *Table) derive(rows []Release) *Table {
	return &Table{header: t.header, rows: rows}
}

// Len returns the number of releases.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.rows)
}

// Empty reports whether the table holds no releases.
func (t *Table) Empty() bool {
	return t.Len() == 0
}

// At returns the i-th release.
func (t *Table) At(i int) Release {
	return t.rows[i]
}

// Releases returns a copy of the rows.
func (t *Table) Releases() []Release {
	if t == nil {
		return nil
	}
	return slices.Clone(t.rows)
}

// Header returns a copy of the source column names.
func (t *Table) Header() []string {
	if t == nil {
		return nil
	}
	return slices.Clone(t.header)
}

// Skipped returns the number of malformed rows dropped while parsing.
func (t *Table) Skipped() int {
	if t == nil {
		return 0
	}
	return t.skipped
}

// Selection is the state of the dashboard filter widgets.
type Selection struct {
	Artist string
	// Years nil means every year available for Artist. A non-nil empty slice selects nothing.
	Years []int
}

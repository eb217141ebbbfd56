package catalog

import (
	"encoding/csv"
	"fmt"
	"io"
	"slices"
	"strconv"
)

// WriteCSV writes t in the format Parse reads: the source header followed by
// the derived in_wantlist and in_collection columns, then one line per
// release with its original fields.
func WriteCSV(w io.Writer, t *Table) error {
	header := exportHeader(t.Header())
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i := 0; i < t.Len(); i++ {
		if err := cw.Write(exportRecord(header, t.At(i))); err != nil {
			return fmt.Errorf("write release %d: %w", t.At(i).ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ExportFilename is the download name for a view of the given artist.
func ExportFilename(artist string) string {
	if artist == "" {
		artist = AllArtists
	}
	return artist + "_releases.csv"
}

func exportHeader(header []string) []string {
	if len(header) == 0 {
		header = slices.Clone(requiredColumns)
	}
	for _, col := range []string{ColInWantlist, ColInCollection} {
		if !slices.Contains(header, col) {
			header = append(header, col)
		}
	}
	return header
}

func exportRecord(header []string, r Release) []string {
	out := make([]string, len(header))
	copy(out, r.fields)
	for i, col := range header {
		switch col {
		case ColInWantlist:
			out[i] = strconv.Itoa(r.InWantlist)
			continue
		case ColInCollection:
			out[i] = strconv.Itoa(r.InCollection)
			continue
		}
		if r.fields != nil {
			continue
		}
		switch col {
		case ColID:
			out[i] = strconv.FormatInt(r.ID, 10)
		case ColArtist:
			out[i] = r.Artist
		case ColTitle:
			out[i] = r.Title
		case ColYear:
			if r.HasYear() {
				out[i] = strconv.Itoa(r.Year)
			}
		case ColFormat:
			out[i] = r.Format
		case ColThumb:
			out[i] = r.Thumb
		case ColStats:
			out[i] = r.StatsRaw
			if out[i] == "" {
				out[i] = statsLiteral(r.InWantlist, r.InCollection)
			}
		}
	}
	return out
}

// statsLiteral renders counters the way the scraper stores them, so Parse
// reads the same values back.
func statsLiteral(inWantlist, inCollection int) string {
	return fmt.Sprintf("{'community': {'in_wantlist': %d, 'in_collection': %d}}", inWantlist, inCollection)
}

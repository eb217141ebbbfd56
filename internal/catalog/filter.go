package catalog

import (
	"cmp"
	"fmt"
	"slices"
	"strconv"
)

// Field names a release attribute used for grouping or ranking.
type Field string

const (
	FieldArtist       Field = "artist"
	FieldYear         Field = "year"
	FieldFormat       Field = "format"
	FieldInWantlist   Field = "in_wantlist"
	FieldInCollection Field = "in_collection"
)

// Order is the sort order of grouped counts.
type Order int

const (
	// ByCountDesc ranks groups by count, ties kept in first-seen order.
	ByCountDesc Order = iota
	// ByKeyAsc sorts groups by key, numerically for years.
	ByKeyAsc
)

// Count is one group of CountByKey.
type Count struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// FilterByArtist keeps releases whose artist is exactly artist. AllArtists
// returns t itself.
func FilterByArtist(t *Table, artist string) *Table {
	if artist == AllArtists {
		return t
	}
	var rows []Release
	for _, r := range t.rows {
		if r.Artist == artist {
			rows = append(rows, r)
		}
	}
	return t.derive(rows)
}

// FilterByYears keeps releases with a known year in years. An empty set
// selects nothing.
func FilterByYears(t *Table, years []int) *Table {
	set := make(map[int]struct{}, len(years))
	for _, y := range years {
		set[y] = struct{}{}
	}
	var rows []Release
	for _, r := range t.rows {
		if !r.HasYear() {
			continue
		}
		if _, ok := set[r.Year]; ok {
			rows = append(rows, r)
		}
	}
	return t.derive(rows)
}

// Select applies the artist filter and then the year filter of s.
func Select(t *Table, s Selection) *Table {
	view := FilterByArtist(t, s.Artist)
	years := s.Years
	if years == nil {
		years = Years(view)
	}
	return FilterByYears(view, years)
}

// Artists returns the distinct known artists in ascending order.
func Artists(t *Table) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, r := range t.rows {
		if r.Artist == "" {
			continue
		}
		if _, ok := seen[r.Artist]; !ok {
			seen[r.Artist] = struct{}{}
			out = append(out, r.Artist)
		}
	}
	slices.Sort(out)
	return out
}

// Years returns the distinct known years in ascending order.
func Years(t *Table) []int {
	seen := make(map[int]struct{})
	out := []int{}
	for _, r := range t.rows {
		if !r.HasYear() {
			continue
		}
		if _, ok := seen[r.Year]; !ok {
			seen[r.Year] = struct{}{}
			out = append(out, r.Year)
		}
	}
	slices.Sort(out)
	return out
}

// CountByKey groups releases by field. Releases without a value for field are
// not counted.
func CountByKey(t *Table, field Field, order Order) ([]Count, error) {
	key, err := groupKey(field)
	if err != nil {
		return nil, err
	}
	pos := make(map[string]int)
	var out []Count
	for _, r := range t.rows {
		k, ok := key(r)
		if !ok {
			continue
		}
		if i, seen := pos[k]; seen {
			out[i].Count++
			continue
		}
		pos[k] = len(out)
		out = append(out, Count{Key: k, Count: 1})
	}

	switch order {
	case ByCountDesc:
		slices.SortStableFunc(out, func(a, b Count) int {
			return cmp.Compare(b.Count, a.Count)
		})
	case ByKeyAsc:
		less := cmp.Compare[string]
		if field == FieldYear {
			less = func(a, b string) int {
				ai, _ := strconv.Atoi(a)
				bi, _ := strconv.Atoi(b)
				return cmp.Compare(ai, bi)
			}
		}
		slices.SortStableFunc(out, func(a, b Count) int {
			return less(a.Key, b.Key)
		})
	default:
		return nil, fmt.Errorf("unknown order %d", order)
	}
	return out, nil
}

func groupKey(field Field) (func(Release) (string, bool), error) {
	switch field {
	case FieldArtist:
		return func(r Release) (string, bool) { return r.Artist, r.Artist != "" }, nil
	case FieldFormat:
		return func(r Release) (string, bool) { return r.Format, r.Format != "" }, nil
	case FieldYear:
		return func(r Release) (string, bool) { return strconv.Itoa(r.Year), r.HasYear() }, nil
	default:
		return nil, fmt.Errorf("cannot group by %q", field)
	}
}

// TopNByField drops releases repeating an earlier (title, year) pair, then
// returns at most n releases ordered by field, highest first. Equal values
// keep table order.
func TopNByField(t *Table, field Field, n int) (*Table, error) {
	value, err := rankValue(field)
	if err != nil {
		return nil, err
	}
	if n < 0 {
		n = 0
	}

	type titleYear struct {
		title string
		year  int
	}
	seen := make(map[titleYear]struct{})
	var rows []Release
	for _, r := range t.rows {
		k := titleYear{r.Title, r.Year}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		rows = append(rows, r)
	}

	slices.SortStableFunc(rows, func(a, b Release) int {
		return cmp.Compare(value(b), value(a))
	})
	if len(rows) > n {
		rows = rows[:n]
	}
	return t.derive(rows), nil
}

func rankValue(field Field) (func(Release) int, error) {
	switch field {
	case FieldInCollection:
		return func(r Release) int { return r.InCollection }, nil
	case FieldInWantlist:
		return func(r Release) int { return r.InWantlist }, nil
	case FieldYear:
		return func(r Release) int { return r.Year }, nil
	default:
		return nil, fmt.Errorf("cannot rank by %q", field)
	}
}

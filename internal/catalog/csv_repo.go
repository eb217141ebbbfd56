package catalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// Repository gives read access to the loaded release table.
type Repository interface {
	Load() (*Table, error)
}

// Loader reads the release file once and memoises the result, error
// included, for the rest of the process.
type Loader struct {
	path   string
	logger *zap.Logger

	once  sync.Once
	table *Table
	err   error
}

func NewLoader(path string, logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{path: path, logger: logger}
}

// Path returns the file the loader reads.
func (l *Loader) Path() string {
	return l.path
}

// Load returns the release table. When the file does not exist it returns an
// empty table and an error matching ErrDataUnavailable; callers treat that as
// final and must not retry.
func (l *Loader) Load() (*Table, error) {
	l.once.Do(func() {
		l.table, l.err = l.load()
	})
	return l.table, l.err
}

func (l *Loader) load() (*Table, error) {
	f, err := os.Open(l.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			l.logger.Error("release file not found", zap.String("path", l.path))
		} else {
			l.logger.Error("cannot open release file", zap.String("path", l.path), zap.Error(err))
		}
		return NewTable(nil), fmt.Errorf("%w: %v", ErrDataUnavailable, err)
	}
	defer f.Close()

	t, err := parse(f, l.logger)
	if err != nil {
		l.logger.Error("cannot parse release file", zap.String("path", l.path), zap.Error(err))
		return NewTable(nil), fmt.Errorf("%w: %s: %w", ErrDataUnavailable, l.path, err)
	}
	l.logger.Info("release file loaded",
		zap.String("path", l.path),
		zap.Int("rows", t.Len()),
		zap.Int("skipped", t.Skipped()),
	)
	return t, nil
}

// Parse reads a header row and release rows from r. Malformed rows are
// skipped and counted; only an unreadable header or a missing required
// column fails the whole parse.
func Parse(r io.Reader) (*Table, error) {
	return parse(r, zap.NewNop())
}

func parse(r io.Reader, logger *zap.Logger) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty file", ErrMissingColumn)
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	idx, err := indexColumns(header)
	if err != nil {
		return nil, err
	}

	t := &Table{header: header}
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				logger.Warn("skipping malformed row", zap.Int("line", perr.Line), zap.Error(err))
				t.skipped++
				continue
			}
			return nil, fmt.Errorf("read row: %w", err)
		}

		rel, err := idx.release(record, len(header))
		if err != nil {
			line, _ := cr.FieldPos(0)
			logger.Warn("skipping malformed row", zap.Int("line", line), zap.Error(err))
			t.skipped++
			continue
		}
		t.rows = append(t.rows, rel)
	}
	return t, nil
}

type columnIndex map[string]int

func indexColumns(header []string) (columnIndex, error) {
	idx := make(columnIndex, len(header))
	for i, name := range header {
		if _, dup := idx[name]; !dup {
			idx[name] = i
		}
	}
	var missing []string
	for _, name := range requiredColumns {
		if _, ok := idx[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumn, strings.Join(missing, ", "))
	}
	return idx, nil
}

func (idx columnIndex) release(record []string, width int) (Release, error) {
	if len(record) > width {
		return Release{}, fmt.Errorf("row has %d fields, header has %d", len(record), width)
	}
	if len(record) < width {
		padded := make([]string, width)
		copy(padded, record)
		record = padded
	}
	get := func(col string) string {
		return strings.TrimSpace(record[idx[col]])
	}

	id, err := parseID(get(ColID))
	if err != nil {
		return Release{}, err
	}
	stats := StatsOrZero(record[idx[ColStats]])
	return Release{
		ID:           id,
		Artist:       get(ColArtist),
		Title:        get(ColTitle),
		Year:         parseYear(get(ColYear)),
		Format:       get(ColFormat),
		Thumb:        get(ColThumb),
		StatsRaw:     record[idx[ColStats]],
		InWantlist:   stats.InWantlist,
		InCollection: stats.InCollection,
		fields:       record,
	}, nil
}

func parseID(s string) (int64, error) {
	if s == "" {
		return 0, errors.New("empty ID")
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err == nil {
		return id, nil
	}
	// pandas writes integer columns with missing cells as floats.
	f, ferr := strconv.ParseFloat(s, 64)
	if ferr != nil || f != float64(int64(f)) {
		return 0, fmt.Errorf("invalid ID %q", s)
	}
	return int64(f), nil
}

// parseYear returns 0 for blank, non-numeric or non-positive years.
func parseYear(s string) int {
	if s == "" {
		return 0
	}
	if y, err := strconv.Atoi(s); err == nil && y > 0 {
		return y
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f <= 0 || f != float64(int(f)) {
		return 0
	}
	return int(f)
}

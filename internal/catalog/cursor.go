package catalog

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrInvalidCursor is returned for cursors that do not decode or point past the view.
var ErrInvalidCursor = errors.New("invalid cursor")

// CursorData represents the data encoded in a cursor. Offset is a row
// position in the view; release IDs repeat in label listings.
type CursorData struct {
	Offset int `json:"offset,omitempty"`
}

// EncodeCursor encodes cursor data to a base64 string
func EncodeCursor(data CursorData) string {
	if data.Offset <= 0 {
		return ""
	}
	jsonBytes, err := json.Marshal(data)
	if err != nil {
		return ""
	}
	return base64.URLEncoding.EncodeToString(jsonBytes)
}

// DecodeCursor decodes a base64 cursor string to CursorData
func DecodeCursor(cursor string) (CursorData, error) {
	if cursor == "" {
		return CursorData{}, nil
	}

	decoded, err := base64.URLEncoding.DecodeString(cursor)
	if err != nil {
		return CursorData{}, fmt.Errorf("%w: %v", ErrInvalidCursor, err)
	}

	var data CursorData
	if err := json.Unmarshal(decoded, &data); err != nil {
		return CursorData{}, fmt.Errorf("%w: %v", ErrInvalidCursor, err)
	}
	return data, nil
}

// Page returns at most limit releases starting at row offset, in table order.
// next is the cursor of the following page, empty on the last one.
func Page(t *Table, offset, limit int) (page *Table, next CursorData, err error) {
	if offset < 0 || offset > len(t.rows) {
		return nil, CursorData{}, fmt.Errorf("%w: offset %d outside a view of %d", ErrInvalidCursor, offset, len(t.rows))
	}

	end := min(offset+max(limit, 0), len(t.rows))
	if end < len(t.rows) && end > offset {
		next = CursorData{Offset: end}
	}
	return t.derive(t.rows[offset:end]), next, nil
}

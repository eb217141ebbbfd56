package enrich

import (
	"time"
)

// Entry is the cached video lookup of one release.
type Entry struct {
	ReleaseID int64
	Links     []string
	FetchedAt time.Time
}

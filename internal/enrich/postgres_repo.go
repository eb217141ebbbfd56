package enrich

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store persists video lookups across restarts.
type Store interface {
	Get(ctx context.Context, releaseID int64) (Entry, bool, error)
	Put(ctx context.Context, e Entry) error
}

type PostgresRepo struct {
	db *pgxpool.Pool
}

func NewPostgresRepo(db *pgxpool.Pool) *PostgresRepo {
	return &PostgresRepo{db: db}
}

func (r *PostgresRepo) Get(ctx context.Context, releaseID int64) (Entry, bool, error) {
	const query = `
		SELECT release_id, links, fetched_at
		FROM release_videos
		WHERE release_id = $1`

	var e Entry
	err := r.db.QueryRow(ctx, query, releaseID).Scan(&e.ReleaseID, &e.Links, &e.FetchedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Entry{}, false, nil
		}
		return Entry{}, false, fmt.Errorf("get release videos %d: %w", releaseID, err)
	}
	if e.Links == nil {
		e.Links = []string{}
	}
	return e, true, nil
}

func (r *PostgresRepo) Put(ctx context.Context, e Entry) error {
	const query = `
		INSERT INTO release_videos (release_id, links, fetched_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (release_id) DO UPDATE SET
			links = EXCLUDED.links,
			fetched_at = EXCLUDED.fetched_at`

	links := e.Links
	if links == nil {
		links = []string{}
	}
	if _, err := r.db.Exec(ctx, query, e.ReleaseID, links, e.FetchedAt); err != nil {
		return fmt.Errorf("upsert release videos %d: %w", e.ReleaseID, err)
	}
	return nil
}

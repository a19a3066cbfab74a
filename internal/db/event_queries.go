package db

import (
	"context"
	"fmt"
	"time"
)

// EventListOptions controls event listing queries.
type EventListOptions struct {
	Lang   string
	Limit  int
	Offset int
}

// EventListItem is the read model used by the events API and CLI output.
type EventListItem struct {
	EventID     int64     `json:"event_id"`
	Link        string    `json:"link"`
	Title       string    `json:"title"`
	PublishedAt time.Time `json:"published_at"`
	Lang        string    `json:"lang"`
	Score       float64   `json:"score"`
	Lat         float64   `json:"lat"`
	Lon         float64   `json:"lon"`
	Place       string    `json:"place"`
	CreatedAt   time.Time `json:"created_at"`
}

// InsertEventIfNew inserts one event keyed by link. A link that already
// exists is left untouched and reported as not inserted, never as an error.
func (p *Pool) InsertEventIfNew(ctx context.Context, event Event) (bool, error) {
	const q = `
INSERT INTO crime_events (link, title, published_at, lang, score, lat, lon, place, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
ON CONFLICT (link) DO NOTHING
`

	tag, err := p.Exec(ctx, q,
		event.Link,
		event.Title,
		event.PublishedAt.UTC(),
		event.Lang,
		event.Score,
		event.Lat,
		event.Lon,
		event.Place,
		event.CreatedAt.UTC(),
	)
	if err != nil {
		return false, fmt.Errorf("insert event: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// ListEvents lists saved events, newest first.
func (p *Pool) ListEvents(ctx context.Context, opts EventListOptions) ([]EventListItem, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 100
	}
	offset := opts.Offset
	if offset < 0 {
		offset = 0
	}

	const q = `
SELECT event_id, link, title, published_at, lang, score, lat, lon, place, created_at
FROM crime_events
WHERE ($1 = '' OR lang = $1)
ORDER BY created_at DESC, event_id DESC
LIMIT $2 OFFSET $3
`

	rows, err := p.Query(ctx, q, opts.Lang, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	items := make([]EventListItem, 0, limit)
	for rows.Next() {
		var row EventListItem
		if err := rows.Scan(
			&row.EventID,
			&row.Link,
			&row.Title,
			&row.PublishedAt,
			&row.Lang,
			&row.Score,
			&row.Lat,
			&row.Lon,
			&row.Place,
			&row.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan event row: %w", err)
		}
		items = append(items, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate event rows: %w", err)
	}

	return items, nil
}

// CountEvents returns the number of saved events, optionally narrowed to
// one language.
func (p *Pool) CountEvents(ctx context.Context, lang string) (int64, error) {
	var count int64
	if err := p.QueryRow(ctx, `SELECT COUNT(*) FROM crime_events WHERE ($1 = '' OR lang = $1)`, lang).Scan(&count); err != nil {
		return 0, fmt.Errorf("count events: %w", err)
	}
	return count, nil
}

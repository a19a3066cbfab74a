package db

import (
	"context"
	"fmt"
)

// AggregatedPoint is one 3-decimal coordinate bucket with its event count.
// ~0.001 degrees is roughly a 111 m grid at the equator.
type AggregatedPoint struct {
	Lat   float64 `json:"lat"`
	Lon   float64 `json:"lon"`
	Count int64   `json:"count"`
}

// AggregatePoints folds all saved events into truncated coordinate buckets.
// Coordinates are truncated, not half-up rounded, so that near-identical
// positions on either side of a .xxx5 boundary still share a bucket.
// Callers must treat the result as unordered.
func (p *Pool) AggregatePoints(ctx context.Context) ([]AggregatedPoint, error) {
	const q = `
SELECT TRUNC(lat::numeric, 3)::double precision,
       TRUNC(lon::numeric, 3)::double precision,
       COUNT(*)
FROM crime_events
GROUP BY 1, 2
`

	rows, err := p.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("query aggregated points: %w", err)
	}
	defer rows.Close()

	points := make([]AggregatedPoint, 0, 64)
	for rows.Next() {
		var point AggregatedPoint
		if err := rows.Scan(&point.Lat, &point.Lon, &point.Count); err != nil {
			return nil, fmt.Errorf("scan aggregated point: %w", err)
		}
		points = append(points, point)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate aggregated points: %w", err)
	}

	return points, nil
}

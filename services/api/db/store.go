package db

import (
	"context"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Store wraps database access helpers.
type Store struct {
	pool *pgxpool.Pool
}

// New creates a Store backed by a pgx pool.
func New(ctx context.Context, databaseURL string) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

// Close releases the pool resources.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Reading is one row of solar.measurements. Irradiance columns are
// nullable.
type Reading struct {
	Site      string    `json:"site"`
	Timestamp time.Time `json:"ts"`
	GHI       *float64  `json:"ghi,omitempty"`
	DNI       *float64  `json:"dni,omitempty"`
	DHI       *float64  `json:"dhi,omitempty"`
}

// ReadingQuery holds filters for retrieving readings.
type ReadingQuery struct {
	Site  string
	Limit int
	Since *time.Time
	Until *time.Time
}

const readingsBase = `
    SELECT site, ts, ghi, dni, dhi
    FROM solar.measurements
    WHERE site = $1
`

// FetchReadings returns the readings for a site ordered by timestamp.
func (s *Store) FetchReadings(ctx context.Context, q ReadingQuery) ([]Reading, error) {
	sql, args := readingsSQL(q)

	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	readings := make([]Reading, 0)
	for rows.Next() {
		var r Reading
		if err := rows.Scan(
			&r.Site,
			&r.Timestamp,
			&r.GHI,
			&r.DNI,
			&r.DHI,
		); err != nil {
			return nil, err
		}
		readings = append(readings, r)
	}
	return readings, rows.Err()
}

// readingsSQL appends the optional time bounds and limit as positional
// arguments after the site.
func readingsSQL(q ReadingQuery) (string, []any) {
	args := []any{q.Site}
	clause := ""
	argPos := 2
	if q.Since != nil {
		clause += " AND ts >= $" + strconv.Itoa(argPos)
		args = append(args, *q.Since)
		argPos++
	}
	if q.Until != nil {
		clause += " AND ts <= $" + strconv.Itoa(argPos)
		args = append(args, *q.Until)
		argPos++
	}
	order := " ORDER BY ts"
	limit := ""
	if q.Limit > 0 {
		limit = " LIMIT $" + strconv.Itoa(argPos)
		args = append(args, q.Limit)
	}
	return readingsBase + clause + order + limit, args
}

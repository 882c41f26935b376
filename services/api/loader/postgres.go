package loader

import (
	"context"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"time"

	"github.com/02loveslollipop/solar-potential-dashboard/services/api/db"
	"github.com/02loveslollipop/solar-potential-dashboard/services/api/solar"
)

// ReadingStore is the subset of *db.Store used for postgres:// sources.
type ReadingStore interface {
	FetchReadings(ctx context.Context, q db.ReadingQuery) ([]db.Reading, error)
	Close()
}

// StoreOpener connects to a database given a pgx connection string.
type StoreOpener func(ctx context.Context, dsn string) (ReadingStore, error)

func openPostgres(ctx context.Context, dsn string) (ReadingStore, error) {
	return db.New(ctx, dsn)
}

// parsePostgresLocation extracts the loader's own query parameters (site,
// since, until, limit) and returns the remaining connection string. site
// defaults to the country slug.
func parsePostgresLocation(location string, country solar.Country) (string, db.ReadingQuery, error) {
	u, err := url.Parse(location)
	if err != nil {
		return "", db.ReadingQuery{}, fmt.Errorf("parse postgres location: %w", err)
	}
	params := u.Query()
	q := db.ReadingQuery{Site: params.Get("site")}
	if q.Site == "" {
		q.Site = country.Slug()
	}
	for _, name := range []string{"since", "until"} {
		v := params.Get(name)
		if v == "" {
			continue
		}
		ts, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return "", db.ReadingQuery{}, fmt.Errorf("invalid %s: %w", name, err)
		}
		if name == "since" {
			q.Since = &ts
		} else {
			q.Until = &ts
		}
	}
	if v := params.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return "", db.ReadingQuery{}, fmt.Errorf("invalid limit: %s", v)
		}
		q.Limit = n
	}
	for _, name := range []string{"site", "since", "until", "limit"} {
		params.Del(name)
	}
	u.RawQuery = params.Encode()
	return u.String(), q, nil
}

func (l *Loader) loadPostgres(ctx context.Context, src Source) ([]solar.Observation, error) {
	dsn, q, err := parsePostgresLocation(src.Location, src.Country)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", solar.ErrDataAccess, err)
	}
	store, err := l.openStore(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: connect: %v", solar.ErrDataAccess, err)
	}
	defer store.Close()

	readings, err := store.FetchReadings(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("%w: query site %s: %v", solar.ErrDataAccess, q.Site, err)
	}

	rows := make([]solar.Observation, 0, len(readings))
	for _, r := range readings {
		rows = append(rows, solar.Observation{
			Timestamp: r.Timestamp,
			GHI:       valueOrNaN(r.GHI),
			DNI:       valueOrNaN(r.DNI),
			DHI:       valueOrNaN(r.DHI),
		})
	}
	return rows, nil
}

func valueOrNaN(v *float64) float64 {
	if v == nil {
		return math.NaN()
	}
	return *v
}

// Package loader fetches the per-country datasets, stamps each row with its
// country and combines them into one table.
package loader

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/02loveslollipop/solar-potential-dashboard/services/api/solar"
)

const defaultRequestTimeout = 60 * time.Second

// Loader resolves source locations by scheme: http(s), file paths, s3:// and
// postgres://. It holds no data; use Cache to memoize a load.
type Loader struct {
	client    *http.Client
	s3        ObjectGetter
	s3cfg     S3Config
	openStore StoreOpener
}

// Option configures a Loader.
type Option func(*Loader)

// WithHTTPClient sets the client used for http and https locations.
func WithHTTPClient(c *http.Client) Option {
	return func(l *Loader) { l.client = c }
}

// WithS3Config sets how the S3 client is built for s3:// locations.
func WithS3Config(cfg S3Config) Option {
	return func(l *Loader) { l.s3cfg = cfg }
}

// WithObjectGetter injects a ready S3 client (or a fake in tests).
func WithObjectGetter(g ObjectGetter) Option {
	return func(l *Loader) { l.s3 = g }
}

// WithStoreOpener replaces how postgres:// locations are opened.
func WithStoreOpener(fn StoreOpener) Option {
	return func(l *Loader) { l.openStore = fn }
}

// New builds a Loader.
func New(opts ...Option) *Loader {
	l := &Loader{
		client:    &http.Client{Timeout: defaultRequestTimeout},
		openStore: openPostgres,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load fetches every source in order and concatenates the rows. The first
// failing source aborts the load; there is no retry.
func (l *Loader) Load(ctx context.Context, sources []Source) (*solar.Table, error) {
	parts := make([]*solar.Table, 0, len(sources))
	for _, src := range sources {
		rows, err := l.LoadSource(ctx, src)
		if err != nil {
			return nil, err
		}
		log.Printf("loaded %d rows for %s", len(rows), src.Country)
		parts = append(parts, solar.NewTable(rows))
	}
	return solar.Concat(parts...), nil
}

// LoadSource fetches a single source and stamps its rows with the country.
func (l *Loader) LoadSource(ctx context.Context, src Source) ([]solar.Observation, error) {
	scheme, err := schemeOf(src.Location)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", solar.ErrDataAccess, src.Country, err)
	}

	var rows []solar.Observation
	switch scheme {
	case "postgres", "postgresql":
		rows, err = l.loadPostgres(ctx, src)
	default:
		rows, err = l.loadStream(ctx, scheme, src)
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", src.Country, err)
	}
	for i := range rows {
		rows[i].Country = src.Country
	}
	return rows, nil
}

func (l *Loader) loadStream(ctx context.Context, scheme string, src Source) ([]solar.Observation, error) {
	var (
		rc  io.ReadCloser
		err error
	)
	switch scheme {
	case "http", "https":
		rc, err = l.openHTTP(ctx, src.Location)
	case "s3":
		rc, err = l.openS3(ctx, src.Location)
	case "file", "":
		rc, err = openFile(src.Location)
	default:
		err = fmt.Errorf("unsupported scheme %q", scheme)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", solar.ErrDataAccess, err)
	}
	defer rc.Close()

	name := streamName(src.Location)
	body, inner, err := decompress(name, rc)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", solar.ErrDataAccess, err)
	}
	defer body.Close()

	return decode(inner, body)
}

// schemeOf returns the lowercase URL scheme, or "" for bare paths. Windows
// drive letters parse as one-letter schemes and are treated as paths.
func schemeOf(location string) (string, error) {
	if location == "" {
		return "", fmt.Errorf("empty location")
	}
	u, err := url.Parse(location)
	if err != nil {
		return "", fmt.Errorf("parse location: %w", err)
	}
	if len(u.Scheme) <= 1 {
		return "", nil
	}
	return strings.ToLower(u.Scheme), nil
}

// streamName is the path component used to pick decompression and format.
func streamName(location string) string {
	u, err := url.Parse(location)
	if err != nil || len(u.Scheme) <= 1 {
		return location
	}
	if u.Path != "" {
		return u.Path
	}
	return u.Opaque
}

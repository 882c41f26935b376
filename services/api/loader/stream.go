package loader

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

func (l *Loader) openHTTP(ctx context.Context, location string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, err
	}

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", location, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		resp.Body.Close()
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}
	return resp.Body, nil
}

func openFile(location string) (io.ReadCloser, error) {
	path := location
	if strings.HasPrefix(location, "file:") {
		u, err := url.Parse(location)
		if err != nil {
			return nil, fmt.Errorf("parse file location: %w", err)
		}
		path = u.Path
		if path == "" {
			path = u.Opaque
		}
	}
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return f, nil
}

// multiCloser closes a decompressor before the stream under it.
type multiCloser struct {
	io.Reader
	closers []func() error
}

func (m *multiCloser) Close() error {
	var first error
	for _, c := range m.closers {
		if err := c(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// decompress wraps r according to the name's compression suffix and returns
// the name with that suffix removed. Unknown suffixes pass through. The
// returned closer does not close r itself.
func decompress(name string, r io.Reader) (io.ReadCloser, string, error) {
	lower := strings.ToLower(name)
	switch {
	case strings.HasSuffix(lower, ".gz"):
		zr, err := gzip.NewReader(r)
		if err != nil {
			return nil, "", fmt.Errorf("gzip %s: %w", name, err)
		}
		return &multiCloser{Reader: zr, closers: []func() error{zr.Close}}, name[:len(name)-len(".gz")], nil
	case strings.HasSuffix(lower, ".zst"):
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, "", fmt.Errorf("zstd %s: %w", name, err)
		}
		return &multiCloser{Reader: zr, closers: []func() error{func() error { zr.Close(); return nil }}}, name[:len(name)-len(".zst")], nil
	case strings.HasSuffix(lower, ".lz4"):
		return io.NopCloser(lz4.NewReader(r)), name[:len(name)-len(".lz4")], nil
	}
	return io.NopCloser(r), name, nil
}

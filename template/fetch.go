package template

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/unkn0wn-root/aimcache/internal/robusthttp"
)

// Fetcher loads a template object by its slash-separated key.
// A missing object must be reported with an error wrapping fs.ErrNotExist.
type Fetcher interface {
	Fetch(ctx context.Context, key string) ([]byte, error)
}

// HTTPFetcher reads objects from a bucket exposed over HTTP, e.g. a public
// or pre-authorized object storage endpoint.
type HTTPFetcher struct {
	BaseURL string
	Client  *http.Client // nil => robusthttp default
	MaxSize int64        // 0 => 1 MiB
}

// defaultClient is shared by every HTTPFetcher without a Client so pooled
// connections are reused across fetches.
var defaultClient = sync.OnceValue(func() *http.Client { return robusthttp.NewClient() })

func (f HTTPFetcher) client() *http.Client {
	if f.Client != nil {
		return f.Client
	}
	return defaultClient()
}

func (f HTTPFetcher) Fetch(ctx context.Context, key string) ([]byte, error) {
	segs := strings.Split(key, "/")
	for i, s := range segs {
		segs[i] = url.PathEscape(s)
	}
	u := strings.TrimRight(f.BaseURL, "/") + "/" + strings.Join(segs, "/")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.client().Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%s: %w", key, fs.ErrNotExist)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("%s: unexpected status %d", key, resp.StatusCode)
	}

	limit := f.MaxSize
	if limit <= 0 {
		limit = 1 << 20
	}
	b, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(b)) > limit {
		return nil, fmt.Errorf("%s: object larger than %d bytes", key, limit)
	}
	return b, nil
}

// DirFetcher reads objects from a file system, typically os.DirFS(root).
type DirFetcher struct {
	FS fs.FS
}

func (f DirFetcher) Fetch(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return fs.ReadFile(f.FS, key)
}

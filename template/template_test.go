package template

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unkn0wn-root/aimcache"
	"github.com/unkn0wn-root/aimcache/backend/ristretto"
	"github.com/unkn0wn-root/aimcache/internal/robusthttp"
)

var welcome = Props{Entity: "tenant", EntityID: "42", Category: "email", Type: "welcome", Language: "en"}

func testFS() fstest.MapFS {
	return fstest.MapFS{
		"tpl/tenant/42/email/welcome/en.txt": {Data: []byte(`{"subject":"Hi {{ name }}","body":"Welcome, {{ name }}! Code: {{ code }}"}`)},
		"tpl/tenant/42/sms/otp/en.txt":       {Data: []byte(`Your code is {{ code }}`)},
		"tpl/tenant/42/sms/broken/en.txt":    {Data: []byte(`{% if %}`)},
	}
}

func newTestService(t *testing.T, cfg Config) *Service {
	t.Helper()
	if cfg.Folder == "" {
		cfg.Folder = "tpl"
	}
	if cfg.Fetcher == nil {
		cfg.Fetcher = DirFetcher{FS: testFS()}
	}
	s, err := New(cfg)
	require.NoError(t, err)
	return s
}

func TestNewValidatesConfig(t *testing.T) {
	_, err := New(Config{Folder: "tpl"})
	assert.True(t, HasCode(err, CodeMissingConfig), "%v", err)

	_, err = New(Config{Fetcher: DirFetcher{FS: testFS()}, Folder: "/"})
	assert.True(t, HasCode(err, CodeMissingFolder), "%v", err)
}

func TestObjectKey(t *testing.T) {
	s := newTestService(t, Config{Folder: "/tpl/"})
	assert.Equal(t, "tpl/tenant/42/email/welcome/en.txt", s.ObjectKey(welcome))
}

func TestRawParsesJSONOrFallsBackToBody(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t, Config{})

	got, err := s.Raw(ctx, welcome)
	require.NoError(t, err)
	assert.Equal(t, Template{Subject: "Hi {{ name }}", Body: "Welcome, {{ name }}! Code: {{ code }}"}, got)

	otp := welcome
	otp.Category, otp.Type = "sms", "otp"
	got, err = s.Raw(ctx, otp)
	require.NoError(t, err)
	assert.Equal(t, Template{Body: "Your code is {{ code }}"}, got)
}

func TestRawRequiresEveryProp(t *testing.T) {
	s := newTestService(t, Config{})
	for _, p := range []Props{
		{EntityID: "1", Category: "c", Type: "t", Language: "en"},
		{Entity: "e", Category: "c", Type: "t", Language: "en"},
		{Entity: "e", EntityID: "1", Type: "t", Language: "en"},
		{Entity: "e", EntityID: "1", Category: "c", Language: "en"},
		{Entity: "e", EntityID: "1", Category: "c", Type: "t"},
	} {
		_, err := s.Raw(context.Background(), p)
		assert.True(t, HasCode(err, CodeMissingParam), "%+v: %v", p, err)
	}
}

func TestRawMissingObject(t *testing.T) {
	s := newTestService(t, Config{})
	p := welcome
	p.Language = "fr"
	_, err := s.Raw(context.Background(), p)
	assert.True(t, HasCode(err, CodeNotFound), "%v", err)
}

func TestInterpolate(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t, Config{})

	got, err := s.Interpolate(ctx, welcome, map[string]any{"name": "<Ada>", "code": 1234})
	require.NoError(t, err)
	assert.Equal(t, "Hi &lt;Ada&gt;", got.Subject)
	assert.Equal(t, "Welcome, &lt;Ada&gt;! Code: 1234", got.Body)

	broken := welcome
	broken.Category, broken.Type = "sms", "broken"
	_, err = s.Interpolate(ctx, broken, nil)
	assert.True(t, HasCode(err, CodeRender), "%v", err)
}

type countingFetcher struct {
	inner Fetcher
	n     atomic.Int32
}

func (f *countingFetcher) Fetch(ctx context.Context, key string) ([]byte, error) {
	f.n.Add(1)
	return f.inner.Fetch(ctx, key)
}

func TestRawUsesCache(t *testing.T) {
	ctx := context.Background()
	b, err := ristretto.New(ristretto.Config{NumCounters: 1e3, MaxCost: 1 << 20, BufferItems: 64})
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close(ctx) })
	cache, err := aimcache.New[Template](aimcache.Options[Template]{Backend: b})
	require.NoError(t, err)

	f := &countingFetcher{inner: DirFetcher{FS: testFS()}}
	s := newTestService(t, Config{Fetcher: f, Cache: cache, CacheTTL: time.Minute})

	for i := 0; i < 3; i++ {
		_, err := s.Interpolate(ctx, welcome, map[string]any{"name": "x"})
		require.NoError(t, err)
	}
	assert.Equal(t, int32(1), f.n.Load())
	assert.True(t, cache.Has(ctx, "template:tpl/tenant/42/email/welcome/en.txt"))

	// a missing object is not cached
	p := welcome
	p.Language = "de"
	_, _ = s.Raw(ctx, p)
	_, _ = s.Raw(ctx, p)
	assert.Equal(t, int32(3), f.n.Load())
}

func TestHTTPFetcher(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.EscapedPath() {
		case "/bucket/tpl/tenant/42/email/welcome/en.txt":
			w.Write([]byte(`{"subject":"s","body":"b"}`))
		case "/bucket/tpl/a%20b/x.txt":
			w.Write([]byte("escaped"))
		case "/bucket/big.txt":
			w.Write(make([]byte, 64))
		case "/bucket/denied.txt":
			w.WriteHeader(http.StatusForbidden)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	ctx := context.Background()
	f := HTTPFetcher{BaseURL: srv.URL + "/bucket/", Client: robusthttp.NewClient(robusthttp.WithMaxRetries(0)), MaxSize: 32}

	s := newTestService(t, Config{Fetcher: f})
	got, err := s.Raw(ctx, welcome)
	require.NoError(t, err)
	assert.Equal(t, Template{Subject: "s", Body: "b"}, got)

	b, err := f.Fetch(ctx, "tpl/a b/x.txt")
	require.NoError(t, err)
	assert.Equal(t, "escaped", string(b))

	_, err = f.Fetch(ctx, "big.txt")
	assert.Error(t, err)

	_, err = f.Fetch(ctx, "denied.txt")
	assert.Error(t, err)

	p := welcome
	p.Language = "fr"
	_, err = s.Raw(ctx, p)
	assert.True(t, HasCode(err, CodeNotFound), "%v", err)
}

func TestHTTPFetcherSharesDefaultClient(t *testing.T) {
	var (
		mu    sync.Mutex
		peers = map[string]int{}
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		peers[r.RemoteAddr]++
		mu.Unlock()
		w.Write([]byte("body"))
	}))
	defer srv.Close()

	assert.Same(t, HTTPFetcher{}.client(), HTTPFetcher{BaseURL: "elsewhere"}.client())

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		// a fresh value each time, as the CLI builds it
		b, err := HTTPFetcher{BaseURL: srv.URL}.Fetch(ctx, "a.txt")
		require.NoError(t, err)
		assert.Equal(t, "body", string(b))
	}
	mu.Lock()
	defer mu.Unlock()
	assert.Len(t, peers, 1, "second fetch should reuse the pooled connection")
}

func TestUnknownErrorsAreWrapped(t *testing.T) {
	boom := errors.New("boom")
	err := wrap(boom)
	assert.True(t, HasCode(err, CodeUnknown))
	assert.ErrorIs(t, err, boom)

	te := &Error{Code: CodeMissingParam, Message: "x"}
	assert.Same(t, te, wrap(te))
	assert.Nil(t, wrap(nil))
}

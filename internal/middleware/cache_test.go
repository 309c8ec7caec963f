package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starcineplex/ticketing/internal/config"
)

func cacheTestContext(t *testing.T, target string) echo.Context {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetPath("/v1/movies")
	return c
}

func TestCacheKeyScopedByPrefix(t *testing.T) {
	cfg := config.CacheConfig{Prefix: "ticketing:cache", KeyStrategy: "route_query"}

	a := cacheKey(cfg, cacheTestContext(t, "/v1/movies?page=1"))
	b := cacheKey(cfg, cacheTestContext(t, "/v1/movies?page=2"))
	c := cacheKey(cfg, cacheTestContext(t, "/v1/movies?page=1"))

	assert.True(t, strings.HasPrefix(a, "ticketing:cache:"))
	assert.NotEqual(t, a, b, "different query strings must not share an entry")
	assert.Equal(t, a, c, "identical requests must share an entry")
}

func TestCacheKeyRouteStrategyIgnoresQuery(t *testing.T) {
	cfg := config.CacheConfig{Prefix: "ticketing:cache", KeyStrategy: "route"}

	a := cacheKey(cfg, cacheTestContext(t, "/v1/movies?page=1"))
	b := cacheKey(cfg, cacheTestContext(t, "/v1/movies?page=2"))
	assert.Equal(t, a, b)
}

func TestCacheEntryRoundTrip(t *testing.T) {
	hdr := http.Header{"Content-Type": []string{"application/json"}}
	body := []byte(`{"movies":[]}`)

	entry, err := encodeEntry(http.StatusOK, hdr, body)
	require.NoError(t, err)

	status, gotHdr, gotBody, ok := decodeEntry(entry)
	require.True(t, ok)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "application/json", gotHdr.Get("Content-Type"))
	assert.Equal(t, body, gotBody)
}

func TestDecodeEntryRejectsTruncatedInput(t *testing.T) {
	_, _, _, ok := decodeEntry([]byte{0, 0})
	assert.False(t, ok)
}

func TestRecordingWriterStopsCaptureAtLimit(t *testing.T) {
	w := &recordingWriter{ResponseWriter: httptest.NewRecorder(), limit: 4}

	_, err := w.Write([]byte("abcdef"))
	require.NoError(t, err)

	assert.Equal(t, "abcd", w.buf.String())
	assert.Equal(t, int64(6), w.written, "written must count the full body so oversize responses are detected")
}

func TestCacheDisabledWithoutRedis(t *testing.T) {
	cfg := config.CacheConfig{
		Enabled: true,
		Methods: map[string]bool{http.MethodGet: true},
		TTL:     30 * time.Second,
	}
	mw := NewRedisCache(cfg, nil)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/movies", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	err := mw(func(c echo.Context) error {
		called = true
		return c.JSON(http.StatusOK, echo.Map{"movies": []string{}})
	})(c)

	require.NoError(t, err)
	assert.True(t, called)
	assert.Empty(t, rec.Header().Get("X-Cache"), "cache must be a no-op without redis")
}

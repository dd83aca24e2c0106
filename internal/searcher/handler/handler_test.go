package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/diskindex/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/diskindex/internal/indexer/segment"
	"github.com/Adithya-Monish-Kumar-K/diskindex/internal/searcher/executor"
	"github.com/Adithya-Monish-Kumar-K/diskindex/internal/searcher/parser"
	"github.com/Adithya-Monish-Kumar-K/diskindex/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/diskindex/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/diskindex/pkg/metrics"
)

type server struct {
	mux       *http.ServeMux
	metrics   *metrics.Metrics
	staticDir string
}

func newServer(t *testing.T) *server {
	t.Helper()
	staticDir := t.TempDir()
	docs := map[string]string{
		"doc1.txt":      "bananas pears apples",
		"doc2.txt":      "apples bananas",
		"x&y <tag>.txt": "apples",
	}
	var built []index.Document
	for _, name := range []string{"doc1.txt", "doc2.txt", "x&y <tag>.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(staticDir, name), []byte(docs[name]), 0644))
		built = append(built, index.Document{Name: name, Content: []byte(docs[name])})
	}
	mi, dt, err := index.Build(built)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "web.idx")
	_, err = segment.WriteIndex(mi, dt, path)
	require.NoError(t, err)

	p, err := executor.Open([]string{path}, true)
	require.NoError(t, err)
	t.Cleanup(func() { p.Close() })

	m := metrics.NewWithRegistry(prometheus.NewRegistry())
	h := New(executor.New(p, m), nil, m, config.SearchConfig{
		DefaultLimit: 2,
		MaxResults:   3,
		StaticDir:    staticDir,
	})
	mux := http.NewServeMux()
	h.Register(mux)
	return &server{mux: mux, metrics: m, staticDir: staticDir}
}

func (s *server) get(t *testing.T, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) executor.SearchResult {
	t.Helper()
	var res executor.SearchResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	return res
}

func TestSearchAPI(t *testing.T) {
	s := newServer(t)

	rec := s.get(t, "/api/v1/search?q=Apples")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	res := decode(t, rec)
	assert.Equal(t, 3, res.TotalHits)
	require.Len(t, res.Results, 2, "default limit applies")
	assert.Equal(t, "doc1.txt", res.Results[0].Document)
	assert.Equal(t, 1, res.Results[0].Rank)

	res = decode(t, s.get(t, "/api/v1/search?q=apples&limit=100"))
	assert.Len(t, res.Results, 3, "limit is capped at maxResults")

	res = decode(t, s.get(t, "/api/v1/search?q=apples+bananas&limit=5"))
	require.Len(t, res.Results, 2)
	assert.Equal(t, 2, res.Results[0].Rank)

	res = decode(t, s.get(t, "/api/v1/search?q=grapes"))
	assert.Equal(t, 0, res.TotalHits)
	assert.NotNil(t, res.Results)

	assert.Equal(t, 1.0, testutil.ToFloat64(s.metrics.SearchQueriesTotal.WithLabelValues("zero_result")))
	assert.Equal(t, 1, testutil.CollectAndCount(s.metrics.SearchLatency))
}

func TestSearchAPIBadRequests(t *testing.T) {
	s := newServer(t)
	for _, target := range []string{
		"/api/v1/search",
		"/api/v1/search?q=apples&limit=0",
		"/api/v1/search?q=apples&limit=abc",
		"/api/v1/search?q=%20%20",
	} {
		rec := s.get(t, target)
		assert.Equal(t, http.StatusBadRequest, rec.Code, target)
		assert.Contains(t, rec.Body.String(), "error", target)
	}
}

type failingExecutor struct{ err error }

func (f failingExecutor) Execute(context.Context, *parser.QueryPlan, int) (*executor.SearchResult, error) {
	return nil, f.err
}

func TestSearchAPIShardFailure(t *testing.T) {
	err := fmt.Errorf("shard a.idx: %w", apperrors.ErrFormat)
	h := New(failingExecutor{err: err}, nil, nil, config.SearchConfig{DefaultLimit: 10, MaxResults: 10})
	rec := httptest.NewRecorder()
	h.Search(rec, httptest.NewRequest(http.MethodGet, "/api/v1/search?q=x", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.JSONEq(t, `{"error":"search failed"}`, rec.Body.String())
}

func TestHomePage(t *testing.T) {
	s := newServer(t)
	rec := s.get(t, "/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `<form action="/query" method="get">`)
	assert.NotContains(t, rec.Body.String(), "found for")

	assert.Equal(t, http.StatusNotFound, s.get(t, "/nope").Code)
}

func TestQueryPage(t *testing.T) {
	s := newServer(t)

	body := s.get(t, "/query?terms=pears").Body.String()
	assert.Contains(t, body, "1 result found for <b>pears</b>")
	assert.Contains(t, body, `<a href="/static/doc1.txt">doc1.txt</a> [1]`)

	body = s.get(t, "/query?terms=apples").Body.String()
	assert.Contains(t, body, "3 results found for <b>apples</b>")
	assert.Contains(t, body, "x&amp;y &lt;tag&gt;.txt</a>")
	assert.NotContains(t, body, "<tag>")

	body = s.get(t, "/query?terms=%3Cscript%3E").Body.String()
	assert.Contains(t, body, "No results found for <b>&lt;script&gt;</b>")

	body = s.get(t, "/query?terms=").Body.String()
	assert.NotContains(t, body, "found for")
}

func TestStatic(t *testing.T) {
	s := newServer(t)

	rec := s.get(t, "/static/doc2.txt")
	require.Equal(t, http.StatusOK, rec.Code)
	b, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Equal(t, "apples bananas", string(b))

	rec = s.get(t, "/static/missing.txt")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), `Couldn't find file "missing.txt"`)
}

func TestResolveStaticStaysInside(t *testing.T) {
	h := &Handler{staticDir: "/srv/docs"}
	path, ok := h.resolveStatic("a/b.txt")
	assert.True(t, ok)
	assert.Equal(t, filepath.Join("/srv/docs", "a", "b.txt"), path)

	_, ok = h.resolveStatic("../etc/passwd")
	assert.False(t, ok)
	_, ok = h.resolveStatic("a/../../etc/passwd")
	assert.False(t, ok)
}

func TestCacheEndpointsWithoutCache(t *testing.T) {
	s := newServer(t)
	rec := s.get(t, "/api/v1/cache/stats")
	assert.JSONEq(t, `{"status":"disabled"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	s.mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/cache/invalidate", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

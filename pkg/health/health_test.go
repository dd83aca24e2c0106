package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func check(s Status) Check {
	return func(context.Context) ComponentHealth {
		return ComponentHealth{Status: s}
	}
}

func TestRunWorstStatusWins(t *testing.T) {
	c := NewChecker()
	c.Register("index", check(StatusUp))
	assert.Equal(t, StatusUp, c.Run(context.Background()).Status)

	c.Register("redis", check(StatusDegraded))
	assert.Equal(t, StatusDegraded, c.Run(context.Background()).Status)

	c.Register("postgres", check(StatusDown))
	report := c.Run(context.Background())
	assert.Equal(t, StatusDown, report.Status)
	assert.Len(t, report.Components, 3)
	assert.NotEmpty(t, report.Components["index"].Latency)
}

func TestReadyHandler(t *testing.T) {
	c := NewChecker()
	c.Register("index", check(StatusUp))
	rec := httptest.NewRecorder()
	c.ReadyHandler()(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	var report Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, StatusUp, report.Status)

	c.Register("redis", check(StatusDegraded))
	rec = httptest.NewRecorder()
	c.ReadyHandler()(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	assert.Equal(t, http.StatusOK, rec.Code, "a degraded cache does not stop serving")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, StatusDegraded, report.Status)

	c.Register("index", check(StatusDown))
	rec = httptest.NewRecorder()
	c.ReadyHandler()(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestLiveHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	NewChecker().LiveHandler()(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"alive"}`, rec.Body.String())
}

func TestShardCheck(t *testing.T) {
	n := 0
	c := ShardCheck(func() int { return n })
	assert.Equal(t, ComponentHealth{Status: StatusDown, Message: "no shards"}, c(context.Background()))
	n = 3
	assert.Equal(t, ComponentHealth{Status: StatusUp, Message: "3 shards active"}, c(context.Background()))
}

func TestPingCheck(t *testing.T) {
	up := PingCheck(func(context.Context) error { return nil })
	assert.Equal(t, StatusUp, up(context.Background()).Status)

	down := PingCheck(func(context.Context) error { return errors.New("dial tcp: connection refused") })
	got := down(context.Background())
	assert.Equal(t, StatusDegraded, got.Status)
	assert.Equal(t, "dial tcp: connection refused", got.Message)
}

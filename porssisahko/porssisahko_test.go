package porssisahko

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T, status int, body string) (*httptest.Server, *int) {
	t.Helper()
	requests := 0
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		assert.Equal(t, "/v1/latest-prices.json", r.URL.Path)
		assert.Equal(t, http.MethodGet, r.Method)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(ts.Close)
	return ts, &requests
}

func TestFetchLatest(t *testing.T) {
	ts, requests := newServer(t, http.StatusOK, `{
		"prices": [
			{"price": 13.494, "startDate": "2022-11-14T22:00:00.000Z", "endDate": "2022-11-14T23:00:00.000Z"},
			{"price": 17.62, "startDate": "2022-11-14T21:00:00.000Z", "endDate": "2022-11-14T22:00:00.000Z"},
			{"price": -0.5, "startDate": "2022-11-15T01:00:00+02:00", "endDate": "2022-11-15T02:00:00+02:00"}
		]
	}`)

	p := New(ts.URL+"/v1/", time.Second)
	points, err := p.FetchLatest(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, *requests)

	require.Len(t, points, 3)
	assert.Equal(t, 13.494, points[0].Price, "source order is preserved")
	assert.Equal(t, time.Date(2022, time.November, 14, 22, 0, 0, 0, time.UTC), points[0].StartDate)
	assert.Equal(t, time.Date(2022, time.November, 14, 23, 0, 0, 0, time.UTC), points[0].EndDate)
	assert.Equal(t, 17.62, points[1].Price)
	assert.Equal(t, -0.5, points[2].Price)
	assert.Equal(t, time.Date(2022, time.November, 14, 23, 0, 0, 0, time.UTC), points[2].StartDate)
	for _, pp := range points {
		assert.Equal(t, time.UTC, pp.StartDate.Location())
		assert.Equal(t, time.UTC, pp.EndDate.Location())
	}
}

func TestFetchLatestEmptyList(t *testing.T) {
	ts, _ := newServer(t, http.StatusOK, `{"prices": []}`)
	points, err := New(ts.URL+"/v1", time.Second).FetchLatest(context.Background())
	require.NoError(t, err)
	assert.Empty(t, points)
}

func TestFetchLatestFormatErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing prices key", `{"data": []}`},
		{"null prices", `{"prices": null}`},
		{"not json", `<html>oops</html>`},
		{"prices not a list", `{"prices": {"price": 1}}`},
		{"missing price", `{"prices": [{"startDate": "2022-11-14T22:00:00.000Z", "endDate": "2022-11-14T23:00:00.000Z"}]}`},
		{"missing endDate", `{"prices": [{"price": 1, "startDate": "2022-11-14T22:00:00.000Z"}]}`},
		{"price as string", `{"prices": [{"price": "1", "startDate": "2022-11-14T22:00:00.000Z", "endDate": "2022-11-14T23:00:00.000Z"}]}`},
		{"bad timestamp", `{"prices": [{"price": 1, "startDate": "yesterday", "endDate": "2022-11-14T23:00:00.000Z"}]}`},
		{"end before start", `{"prices": [{"price": 1, "startDate": "2022-11-14T23:00:00.000Z", "endDate": "2022-11-14T22:00:00.000Z"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts, _ := newServer(t, http.StatusOK, tt.body)
			points, err := New(ts.URL+"/v1", time.Second).FetchLatest(context.Background())
			assert.Nil(t, points)
			var formatErr *FormatError
			assert.ErrorAs(t, err, &formatErr)
		})
	}
}

func TestFetchLatestTransportErrors(t *testing.T) {
	t.Run("server error status", func(t *testing.T) {
		ts, requests := newServer(t, http.StatusServiceUnavailable, `{"prices": []}`)
		_, err := New(ts.URL+"/v1", time.Second).FetchLatest(context.Background())
		var transportErr *TransportError
		require.ErrorAs(t, err, &transportErr)
		assert.Equal(t, http.StatusServiceUnavailable, transportErr.StatusCode)
		assert.Equal(t, 1, *requests, "no retries")
	})

	t.Run("not found", func(t *testing.T) {
		ts, _ := newServer(t, http.StatusNotFound, ``)
		_, err := New(ts.URL+"/v1", time.Second).FetchLatest(context.Background())
		var transportErr *TransportError
		assert.ErrorAs(t, err, &transportErr)
	})

	t.Run("connection refused", func(t *testing.T) {
		ts := httptest.NewServer(http.NotFoundHandler())
		url := ts.URL
		ts.Close()
		_, err := New(url, time.Second).FetchLatest(context.Background())
		var transportErr *TransportError
		require.ErrorAs(t, err, &transportErr)
		assert.Zero(t, transportErr.StatusCode)
	})

	t.Run("cancelled context", func(t *testing.T) {
		ts, _ := newServer(t, http.StatusOK, `{"prices": []}`)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := New(ts.URL+"/v1", time.Second).FetchLatest(ctx)
		var transportErr *TransportError
		require.ErrorAs(t, err, &transportErr)
		assert.True(t, errors.Is(err, context.Canceled))
	})

	t.Run("timeout", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(200 * time.Millisecond)
		}))
		defer ts.Close()
		_, err := New(ts.URL, 20*time.Millisecond).FetchLatest(context.Background())
		var transportErr *TransportError
		assert.ErrorAs(t, err, &transportErr)
	})
}

func TestNewDefaults(t *testing.T) {
	p := New("", 0)
	assert.Equal(t, DefaultBaseUrl, p.baseUrl)
	assert.Equal(t, DefaultTimeout, p.client.Timeout)
}

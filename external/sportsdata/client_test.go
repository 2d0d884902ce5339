package sportsdata

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/football-insights/internal/platform/logging"
	"github.com/riskibarqy/football-insights/internal/platform/resilience"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testKey    = "abcdef123456"
	testSecret = "s3cr3tvalue99"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *atomic.Int32) {
	t.Helper()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		handler(w, r)
	}))
	t.Cleanup(server.Close)

	client := NewClient(ClientConfig{
		HTTPClient: server.Client(),
		BaseURL:    server.URL,
		Key:        testKey,
		Secret:     testSecret,
		Timeout:    2 * time.Second,
		Logger:     logging.NewNop(),
	})
	return client, &calls
}

func TestFetchJSON_SignsRequest(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("key") != testKey || q.Get("secret") != testSecret || q.Get("lang") != "en" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if r.URL.Path != "/scores/history.json" || q.Get("page") != "2" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(`{"success":true,"data":{"match":[{"id":1},{"id":2}],"total_pages":3,"next_page":"x"}}`))
	})

	page, err := client.FetchMatchesPage(context.Background(), MatchPageQuery{
		From: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2020, 1, 3, 0, 0, 0, 0, time.UTC),
		Page: 2,
		Size: 30,
	})
	require.NoError(t, err)
	assert.Len(t, page.Matches, 2)
	assert.Equal(t, 3, page.TotalPages)
	assert.True(t, page.HasNextPage)
}

func TestFetchJSON_NonSuccessStatusIsNetworkErrorWithoutRetry(t *testing.T) {
	t.Parallel()

	client, calls := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream down"))
	})

	_, err := client.FetchJSON(context.Background(), "/matches/stats.json", map[string]string{"match_id": "9"})
	require.Error(t, err)
	assert.True(t, IsNetworkError(err))
	assert.False(t, IsParseError(err))
	assert.Equal(t, int32(1), calls.Load())

	var netErr *NetworkError
	require.True(t, crerr.As(err, &netErr))
	assert.Equal(t, http.StatusBadGateway, netErr.StatusCode)
	assert.NotContains(t, err.Error(), testKey)
	assert.NotContains(t, err.Error(), testSecret)
	assert.Contains(t, err.Error(), "abc***56")
}

func TestFetchJSON_MalformedBodyIsParseError(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"success":true,"data":`))
	})

	_, err := client.FetchJSON(context.Background(), "/countries/list.json", nil)
	require.Error(t, err)
	assert.True(t, IsParseError(err))
	assert.NotContains(t, err.Error(), testSecret)
}

func TestFetchJSON_UnsuccessfulEnvelope(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"success":false,"error":{"message":"quota exceeded"}}`))
	})

	_, err := client.FetchJSON(context.Background(), "/teams/list.json", nil)
	require.Error(t, err)
	assert.True(t, IsNetworkError(err))
	assert.Contains(t, err.Error(), "quota exceeded")
}

func TestFetchJSON_CircuitBreakerOpens(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	t.Cleanup(server.Close)

	client := NewClient(ClientConfig{
		HTTPClient: server.Client(),
		BaseURL:    server.URL,
		Key:        testKey,
		Secret:     testSecret,
		Logger:     logging.NewNop(),
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          true,
			FailureThreshold: 2,
			OpenTimeout:      time.Minute,
			HalfOpenMaxReq:   1,
		},
	})

	for i := 0; i < 3; i++ {
		_, err := client.FetchJSON(context.Background(), "/countries/list.json", nil)
		require.Error(t, err)
		assert.True(t, IsNetworkError(err))
	}
	assert.Equal(t, int32(2), calls.Load())
}

func TestFetchMatchStats_SplitsEventsAndLineups(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("match_id") != "77" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		_, _ = w.Write([]byte(`{"success":true,"data":{
			"corners":"5:3","possesion":"55:45",
			"event":[{"time":"12","event":"GOAL","home_away":"h","player":"A"}],
			"lineup":{"home":{"formation":"4-3-3","players":[{"name":"GK","shirt_number":"1"}]}}
		}}`))
	})

	payload, err := client.FetchMatchStats(context.Background(), 77)
	require.NoError(t, err)
	assert.Equal(t, "5:3", payload.Stats["corners"])
	require.Len(t, payload.Events, 1)
	assert.NotNil(t, payload.Lineups)

	_, err = client.FetchMatchStats(context.Background(), 0)
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "greater than zero"))
}

package openlibrary

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(baseURL string, minInterval time.Duration) *Client {
	return NewClient(ClientConfig{
		BaseURL:     baseURL,
		UserAgent:   "fable2md-test",
		MinInterval: minInterval,
		MaxRetries:  3,
		BackoffBase: time.Millisecond,
		Timeout:     2 * time.Second,
	})
}

func TestSearchReturnsFirstMatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search.json", r.URL.Path)
		assert.Equal(t, "Project Hail Mary", r.URL.Query().Get("title"))
		assert.Equal(t, "Andy Weir", r.URL.Query().Get("author"))
		assert.Equal(t, "fable2md-test", r.Header.Get("User-Agent"))
		w.Write([]byte(`{"numFound":1,"docs":[{
			"key":"/works/OL17091839W",
			"title":"Project Hail Mary",
			"author_name":["Andy Weir"],
			"first_publish_year":2021,
			"isbn":["9780593135204"],
			"cover_i":12345,
			"edition_count":30
		}]}`))
	}))
	defer server.Close()

	c := newTestClient(server.URL, time.Millisecond)
	match, err := c.Search(context.Background(), "Project Hail Mary", "Andy Weir")
	require.NoError(t, err)
	require.NotNil(t, match)
	assert.Equal(t, "/works/OL17091839W", match.WorkKey)
	assert.Equal(t, "Project Hail Mary", match.Title)
	assert.Equal(t, 2021, match.FirstPublishYear)
}

func TestSearchNoDocsMeansNoMatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"numFound":0,"docs":[]}`))
	}))
	defer server.Close()

	c := newTestClient(server.URL, time.Millisecond)
	match, err := c.Search(context.Background(), "No Such Book", "")
	require.NoError(t, err)
	assert.Nil(t, match)
}

func TestRequestsAreRateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"numFound":0,"docs":[]}`))
	}))
	defer server.Close()

	const interval = 60 * time.Millisecond
	c := newTestClient(server.URL, interval)

	const calls = 3
	start := time.Now()
	for i := 0; i < calls; i++ {
		_, err := c.Search(context.Background(), "anything", "")
		require.NoError(t, err)
	}
	elapsed := time.Since(start)
	assert.GreaterOrEqual(t, elapsed, (calls-1)*interval)
}

func TestServerErrorsRetryThenDegradeToNoResult(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	c := newTestClient(server.URL, time.Millisecond)
	match, err := c.Search(context.Background(), "flaky", "")
	require.NoError(t, err)
	assert.Nil(t, match)
	assert.Equal(t, int32(3), hits.Load())
}

func TestClientErrorsDoNotRetry(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	c := newTestClient(server.URL, time.Millisecond)
	match, err := c.Search(context.Background(), "gone", "")
	require.NoError(t, err)
	assert.Nil(t, match)
	assert.Equal(t, int32(1), hits.Load())
}

func TestRecoveryWithinRetryBudget(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"numFound":1,"docs":[{"key":"/works/OL1W","title":"Dune"}]}`))
	}))
	defer server.Close()

	c := newTestClient(server.URL, time.Millisecond)
	match, err := c.Search(context.Background(), "Dune", "")
	require.NoError(t, err)
	require.NotNil(t, match)
	assert.Equal(t, "Dune", match.Title)
}

func TestContextCancellationPropagates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := newTestClient(server.URL, time.Millisecond)
	_, err := c.Search(ctx, "anything", "")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFetchEditions(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/works/OL17091839W/editions.json", r.URL.Path)
		w.Write([]byte(`{"entries":[
			{"key":"/books/OL28257970M","isbn_13":["9780593135204"],"publishers":["Ballantine Books"],"publish_date":"May 4, 2021","number_of_pages":476},
			{"key":"/books/OL99M"}
		]}`))
	}))
	defer server.Close()

	c := newTestClient(server.URL, time.Millisecond)
	editions, err := c.FetchEditions(context.Background(), "/works/OL17091839W")
	require.NoError(t, err)
	require.Len(t, editions, 2)
	assert.Equal(t, "OL28257970M", editions[0].EditionID())
	assert.Equal(t, 476, editions[0].NumberOfPages)
}

package hn

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	nderrors "github.com/newsdex/newsdex/internal/errors"
)

func fastRetry() nderrors.RetryConfig {
	return nderrors.RetryConfig{
		MaxRetries:   2,
		InitialDelay: 5 * time.Millisecond,
		MaxDelay:     20 * time.Millisecond,
		Multiplier:   2.0,
	}
}

func newTestClient(t *testing.T, handler http.Handler, opts ...ClientOption) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	opts = append([]ClientOption{WithBaseURL(srv.URL), WithRetry(fastRetry())}, opts...)
	c, err := NewClient(opts...)
	require.NoError(t, err)
	return c
}

func TestClient_Item_DecodesFields(t *testing.T) {
	// Given: a server returning one item
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/item/8863.json", r.URL.Path)
		fmt.Fprint(w, `{"id":8863,"type":"story","by":"dhouston","time":1175714200,
			"title":"My YC app: Dropbox","url":"http://www.getdropbox.com/u/2/screencast.html",
			"score":104,"descendants":71,"kids":[9224,8917]}`)
	}))

	// When: fetching it
	item, err := c.Item(context.Background(), 8863)
	require.NoError(t, err)

	// Then: all fields decode
	assert.Equal(t, uint64(8863), item.ID)
	assert.Equal(t, "story", item.Type)
	assert.Equal(t, "dhouston", item.By)
	assert.Equal(t, "My YC app: Dropbox", item.Title)
	assert.Equal(t, uint64(104), item.Score)
	assert.Equal(t, uint64(71), item.Descendants)
	assert.Equal(t, []uint64{9224, 8917}, item.Kids)
	assert.False(t, item.Absent())
}

func TestClient_Item_CachesResults(t *testing.T) {
	// Given: a server counting requests
	var hits atomic.Int64
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		fmt.Fprint(w, `{"id":1,"type":"story","by":"pg","time":1160418111,"title":"Y Combinator"}`)
	}))

	// When: fetching the same id twice
	_, err := c.Item(context.Background(), 1)
	require.NoError(t, err)
	_, err = c.Item(context.Background(), 1)
	require.NoError(t, err)

	// Then: only one request reached the server
	assert.Equal(t, int64(1), hits.Load())
}

func TestClient_ZeroRateLimitMeansUnlimited(t *testing.T) {
	// Given: a client configured with the default config value of 0 rps
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"id":%s,"type":"story","by":"pg","time":1160418111,"title":"Y Combinator"}`,
			r.URL.Path[len("/item/"):len(r.URL.Path)-len(".json")])
	}), WithRateLimit(0))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	// When: fetching several distinct ids back to back
	for id := uint64(1); id <= 3; id++ {
		_, err := c.Item(ctx, id)

		// Then: no fetch blocks on the limiter
		require.NoError(t, err)
	}
}

func TestClient_Item_NullResponseIsDeleted(t *testing.T) {
	// Given: the API answering null for an unknown id
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `null`)
	}))

	// When: fetching
	item, err := c.Item(context.Background(), 42)
	require.NoError(t, err)

	// Then: the item is reported as deleted, not as an error
	assert.Equal(t, uint64(42), item.ID)
	assert.True(t, item.Deleted)
	assert.True(t, item.Absent())
}

func TestClient_Item_RetriesTransientFailure(t *testing.T) {
	// Given: a server failing once then recovering
	var hits atomic.Int64
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if hits.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		fmt.Fprint(w, `{"id":1,"type":"story","by":"pg","time":1160418111,"title":"Y Combinator"}`)
	}))

	// When: fetching
	item, err := c.Item(context.Background(), 1)

	// Then: the retry succeeds
	require.NoError(t, err)
	assert.Equal(t, uint64(1), item.ID)
	assert.Equal(t, int64(2), hits.Load())
}

func TestClient_Item_PersistentFailureIsSourceFetchError(t *testing.T) {
	// Given: a server that always fails
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))

	// When: fetching
	_, err := c.Item(context.Background(), 1)

	// Then: a source fetch error surfaces after retries
	require.Error(t, err)
	assert.Equal(t, nderrors.ErrCodeSourceFetch, nderrors.GetCode(err))
}

func TestClient_CircuitOpensAfterRepeatedFailures(t *testing.T) {
	// Given: a dead server and a tight breaker
	var hits atomic.Int64
	cb := nderrors.NewCircuitBreaker("test", nderrors.WithMaxFailures(2))
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}), WithCircuitBreaker(cb))

	// When: two fetches exhaust the failure budget
	_, err := c.Item(context.Background(), 1)
	require.Error(t, err)
	_, err = c.Item(context.Background(), 2)
	require.Error(t, err)
	requestsSoFar := hits.Load()

	// Then: the next fetch fails fast without touching the network
	_, err = c.Item(context.Background(), 3)
	require.Error(t, err)
	assert.Equal(t, nderrors.ErrCodeSourceUnavailable, nderrors.GetCode(err))
	assert.Equal(t, requestsSoFar, hits.Load())
}

func TestClient_TopIDs_CapsToLimit(t *testing.T) {
	// Given: a listing of five ids
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/topstories.json", r.URL.Path)
		fmt.Fprint(w, `[1,2,3,4,5]`)
	}))

	// When: fetching with a limit of 3
	ids, err := c.TopIDs(context.Background(), CategoryTop, 3)
	require.NoError(t, err)

	// Then: the listing is truncated in order
	assert.Equal(t, []uint64{1, 2, 3}, ids)
}

func TestClient_TopIDs_CategoryEndpoints(t *testing.T) {
	// Given: a server recording the requested path
	var path string
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		fmt.Fprint(w, `[]`)
	}))

	tests := []struct {
		cat      Category
		endpoint string
	}{
		{CategoryTop, "/topstories.json"},
		{CategoryAsk, "/askstories.json"},
		{CategoryShow, "/showstories.json"},
		{CategoryJob, "/jobstories.json"},
		{CategoryNew, "/newstories.json"},
		{CategoryBest, "/beststories.json"},
	}

	for _, tt := range tests {
		t.Run(string(tt.cat), func(t *testing.T) {
			_, err := c.TopIDs(context.Background(), tt.cat, 0)
			require.NoError(t, err)
			assert.Equal(t, tt.endpoint, path)
		})
	}
}

func TestParseCategory(t *testing.T) {
	// Given: valid and invalid names
	cat, err := ParseCategory("ask")
	require.NoError(t, err)
	assert.Equal(t, CategoryAsk, cat)

	_, err = ParseCategory("frontpage")
	assert.Error(t, err)
}

func TestItem_Absent(t *testing.T) {
	assert.False(t, (&Item{}).Absent())
	assert.True(t, (&Item{Dead: true}).Absent())
	assert.True(t, (&Item{Deleted: true}).Absent())
}

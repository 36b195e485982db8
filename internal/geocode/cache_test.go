package geocode

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLRUCacheEvictsOldest(t *testing.T) {
	cache := NewLRUCache(2)
	cache.Set("a", Location{Latitude: 1})
	cache.Set("b", Location{Latitude: 2})
	cache.Set("c", Location{Latitude: 3})

	_, ok := cache.Get("a")
	assert.False(t, ok)

	loc, ok := cache.Get("b")
	require.True(t, ok)
	assert.Equal(t, 2.0, loc.Latitude)
	assert.Equal(t, 2, cache.Len())
}

func TestLRUCacheGetRefreshesRecency(t *testing.T) {
	cache := NewLRUCache(2)
	cache.Set("a", Location{Latitude: 1})
	cache.Set("b", Location{Latitude: 2})

	_, ok := cache.Get("a")
	require.True(t, ok)

	cache.Set("c", Location{Latitude: 3})

	_, ok = cache.Get("a")
	assert.True(t, ok)
	_, ok = cache.Get("b")
	assert.False(t, ok)
}

func TestClientUsesCacheAcrossAddressVariants(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		json.NewEncoder(w).Encode([]map[string]string{
			{"lat": "40.7128", "lon": "-74.0060"},
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "welp-test", NewLRUCache(10))

	loc, err := client.Lookup(context.Background(), "123 Main Street")
	require.NoError(t, err)
	assert.InDelta(t, 40.7128, loc.Latitude, 1e-9)

	// Same address with the suffix abbreviated hits the cache entry.
	_, err = client.Lookup(context.Background(), "123  Main St")
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestClientRejectsEmptyAddress(t *testing.T) {
	client := NewClient("http://unused", "welp-test", NewLRUCache(1))
	_, err := client.Lookup(context.Background(), "   ")
	assert.Error(t, err)
}

package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"welp/internal/matching"
)

type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Client geocodes addresses through a Nominatim-compatible endpoint,
// consulting the cache first. Lookups are keyed by normalized address so
// "123 Main Street" and "123 Main St" hit the same entry.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	cache      Cache
}

func NewClient(baseURL, userAgent string, cache Cache) *Client {
	return &Client{
		baseURL:    baseURL,
		userAgent:  userAgent,
		httpClient: http.DefaultClient,
		cache:      cache,
	}
}

func (c *Client) Lookup(ctx context.Context, address string) (Location, error) {
	key := strings.ToLower(matching.NormalizeAddress(address))
	if key == "" {
		return Location{}, fmt.Errorf("empty address")
	}

	if loc, ok := c.cache.Get(key); ok {
		return loc, nil
	}

	q := url.Values{}
	q.Set("q", address)
	q.Set("format", "json")
	q.Set("limit", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search?"+q.Encode(), nil)
	if err != nil {
		return Location{}, err
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Location{}, fmt.Errorf("geocode request: %w", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return Location{}, fmt.Errorf("geocode failed: http=%d body=%s", resp.StatusCode, string(raw))
	}

	var results []struct {
		Lat string `json:"lat"`
		Lon string `json:"lon"`
	}
	if err := json.Unmarshal(raw, &results); err != nil {
		return Location{}, fmt.Errorf("geocode decode: %w", err)
	}
	if len(results) == 0 {
		return Location{}, fmt.Errorf("no results for address")
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return Location{}, fmt.Errorf("geocode bad latitude: %w", err)
	}
	lon, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return Location{}, fmt.Errorf("geocode bad longitude: %w", err)
	}

	loc := Location{Latitude: lat, Longitude: lon}
	c.cache.Set(key, loc)
	return loc, nil
}

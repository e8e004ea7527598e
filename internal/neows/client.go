// Package neows integrates with NASA's Near Earth Object Web Service. It
// parses asteroid records into SI orbital elements for the simulation core
// and keeps a timestamped snapshot cache of everything fetched.
package neows

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/neowatch/neowatch/internal/observability"
	"github.com/neowatch/neowatch/internal/utils"
)

// Client fetches and parses NeoWs asteroid records.
type Client struct {
	httpClient *http.Client
	baseURL    string
	log        *logrus.Entry
	metrics    *observability.Metrics

	mu     sync.RWMutex
	apiKey string
}

// Config holds NeoWs client configuration.
type Config struct {
	// NASA API key (api.nasa.gov; DEMO_KEY works with tight rate limits).
	APIKey string
	// Base URL (default: https://api.nasa.gov/neo/rest/v1).
	BaseURL string
	// HTTP timeout.
	Timeout time.Duration
}

// DefaultConfig returns sensible defaults for the NeoWs API.
func DefaultConfig() Config {
	return Config{
		BaseURL: "https://api.nasa.gov/neo/rest/v1",
		Timeout: 30 * time.Second,
	}
}

// NewClient creates a NeoWs client.
func NewClient(cfg Config, log *logrus.Logger, metrics *observability.Metrics) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.nasa.gov/neo/rest/v1"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		log:        utils.Component(log, "neows"),
		metrics:    metrics,
	}
}

// SetAPIKey replaces the stored API key.
func (c *Client) SetAPIKey(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.apiKey = key
}

// APIKey returns the stored API key.
func (c *Client) APIKey() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.apiKey
}

// HasAPIKey reports whether a key has been configured.
func (c *Client) HasAPIKey() bool {
	return c.APIKey() != ""
}

// feedResponse is the NeoWs /feed payload, keyed by date.
type feedResponse struct {
	NearEarthObjects map[string][]neoRecord `json:"near_earth_objects"`
}

// browseResponse is the NeoWs /neo/browse payload.
type browseResponse struct {
	NearEarthObjects []neoRecord `json:"near_earth_objects"`
	Page             struct {
		Number     int `json:"number"`
		TotalPages int `json:"total_pages"`
	} `json:"page"`
}

// FetchFeed retrieves asteroids with close approaches inside the date
// range. Records without orbital data are dropped.
func (c *Client) FetchFeed(ctx context.Context, start, end time.Time) ([]Asteroid, error) {
	params := url.Values{}
	params.Set("start_date", start.Format("2006-01-02"))
	params.Set("end_date", end.Format("2006-01-02"))
	params.Set("detailed", "true")

	var resp feedResponse
	if err := c.get(ctx, "feed", "/feed", params, &resp); err != nil {
		return nil, err
	}

	var asteroids []Asteroid
	for _, records := range resp.NearEarthObjects {
		asteroids = append(asteroids, c.parseRecords(records)...)
	}
	return asteroids, nil
}

// FetchBrowse retrieves one page of the NeoWs catalogue.
func (c *Client) FetchBrowse(ctx context.Context, page int) ([]Asteroid, int, error) {
	params := url.Values{}
	params.Set("page", fmt.Sprintf("%d", page))

	var resp browseResponse
	if err := c.get(ctx, "browse", "/neo/browse", params, &resp); err != nil {
		return nil, 0, err
	}
	return c.parseRecords(resp.NearEarthObjects), resp.Page.TotalPages, nil
}

// FetchByID retrieves a single asteroid.
func (c *Client) FetchByID(ctx context.Context, id string) (Asteroid, error) {
	if id == "" {
		return Asteroid{}, fmt.Errorf("asteroid id is required")
	}

	var record neoRecord
	if err := c.get(ctx, "lookup", "/neo/"+url.PathEscape(id), url.Values{}, &record); err != nil {
		return Asteroid{}, err
	}

	ast, err := parseRecord(record)
	if err != nil {
		return Asteroid{}, fmt.Errorf("asteroid %s: %w", id, err)
	}
	return ast, nil
}

func (c *Client) get(ctx context.Context, endpoint, path string, params url.Values, out interface{}) error {
	key := c.APIKey()
	if key == "" {
		return fmt.Errorf("NASA API key not set")
	}
	params.Set("api_key", key)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.countFetch(endpoint, "error")
		return fmt.Errorf("neows request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.countFetch(endpoint, fmt.Sprintf("%d", resp.StatusCode))
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("neows returned %d: %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		c.countFetch(endpoint, "decode_error")
		return fmt.Errorf("decode neows response: %w", err)
	}

	c.countFetch(endpoint, "ok")
	return nil
}

func (c *Client) countFetch(endpoint, status string) {
	if c.metrics != nil {
		c.metrics.NeoWsFetches.WithLabelValues(endpoint, status).Inc()
	}
}

// parseRecords converts raw records, dropping any that fail to parse. A
// malformed record is logged and skipped, never fatal.
func (c *Client) parseRecords(records []neoRecord) []Asteroid {
	asteroids := make([]Asteroid, 0, len(records))
	for _, rec := range records {
		ast, err := parseRecord(rec)
		if err != nil {
			c.log.WithField("asteroid", rec.ID).Warnf("dropping record: %v", err)
			continue
		}
		asteroids = append(asteroids, ast)
	}
	return asteroids
}

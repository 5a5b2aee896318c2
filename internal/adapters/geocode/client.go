// Package geocode wraps the public Nominatim address service: forward
// search from a free-text query to coordinates, and reverse lookup from
// coordinates to a display name.
package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/undrgrnd/hype/pkg/logger"
	"github.com/undrgrnd/hype/pkg/metrics"
)

// Client configuration defaults.
const (
	defaultBaseURL = "https://nominatim.openstreetmap.org"
	defaultTimeout = 5 * time.Second
	defaultLimit   = 5
	userAgent      = "undrgrnd-hype/1.0"
)

// Place is one address lookup result.
type Place struct {
	DisplayName string
	Lat         float64
	Lng         float64
}

// Geocoder is the lookup contract consumed by event creation.
type Geocoder interface {
	// Search resolves a free-text query to candidate places, best first.
	Search(ctx context.Context, query string) ([]Place, error)

	// Reverse resolves coordinates to a display name.
	Reverse(ctx context.Context, lat, lng float64) (Place, error)
}

// Client implements Geocoder against a Nominatim-compatible endpoint.
type Client struct {
	baseURL    string
	limit      int
	httpClient *http.Client
	logger     logger.Logger
}

// NewClient creates a geocoding client with configuration options.
func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL:    defaultBaseURL,
		limit:      defaultLimit,
		httpClient: &http.Client{Timeout: defaultTimeout},
		logger:     logger.Get().Named("geocode"),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// nominatimResult mirrors the wire shape; coordinates arrive as strings.
type nominatimResult struct {
	DisplayName string `json:"display_name"`
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
}

// Search resolves a free-text query to candidate places.
func (c *Client) Search(ctx context.Context, query string) ([]Place, error) {
	params := url.Values{
		"q":      {query},
		"format": {"json"},
		"limit":  {strconv.Itoa(c.limit)},
	}
	raw, err := c.doRequest(ctx, c.baseURL+"/search?"+params.Encode(), "forward")
	if err != nil {
		return nil, err
	}

	var results []nominatimResult
	if err := json.Unmarshal(raw, &results); err != nil {
		metrics.RecordGeocodeRequest("forward", "bad_payload")
		return nil, fmt.Errorf("%w: %w", ErrBadPayload, err)
	}

	places := make([]Place, 0, len(results))
	for _, r := range results {
		if p, ok := toPlace(r); ok {
			places = append(places, p)
		}
	}
	return places, nil
}

// Reverse resolves coordinates to a display name.
func (c *Client) Reverse(ctx context.Context, lat, lng float64) (Place, error) {
	params := url.Values{
		"format": {"json"},
		"lat":    {strconv.FormatFloat(lat, 'f', 6, 64)},
		"lon":    {strconv.FormatFloat(lng, 'f', 6, 64)},
	}
	raw, err := c.doRequest(ctx, c.baseURL+"/reverse?"+params.Encode(), "reverse")
	if err != nil {
		return Place{}, err
	}

	var result nominatimResult
	if err := json.Unmarshal(raw, &result); err != nil {
		metrics.RecordGeocodeRequest("reverse", "bad_payload")
		return Place{}, fmt.Errorf("%w: %w", ErrBadPayload, err)
	}
	p, ok := toPlace(result)
	if !ok {
		return Place{}, ErrNoResult
	}
	return p, nil
}

func (c *Client) doRequest(ctx context.Context, fullURL, kind string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		metrics.RecordGeocodeRequest(kind, "error")
		return nil, fmt.Errorf("create request: %w", err)
	}
	// Nominatim's usage policy requires an identifying agent.
	req.Header.Set("User-Agent", userAgent)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	metrics.RecordGeocodeLatency(kind, float64(time.Since(start).Milliseconds()))
	if err != nil {
		metrics.RecordGeocodeRequest(kind, "error")
		return nil, fmt.Errorf("geocode request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		metrics.RecordGeocodeRequest(kind, strconv.Itoa(resp.StatusCode))
		c.logger.Warn(ctx, "geocode upstream error",
			logger.String("kind", kind),
			logger.Int("status", resp.StatusCode),
		)
		return nil, fmt.Errorf("%w: status %d", ErrUpstream, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.RecordGeocodeRequest(kind, "error")
		return nil, fmt.Errorf("read response: %w", err)
	}
	metrics.RecordGeocodeRequest(kind, "ok")
	return body, nil
}

func toPlace(r nominatimResult) (Place, bool) {
	lat, errLat := strconv.ParseFloat(r.Lat, 64)
	lng, errLng := strconv.ParseFloat(r.Lon, 64)
	if errLat != nil || errLng != nil {
		return Place{}, false
	}
	return Place{DisplayName: r.DisplayName, Lat: lat, Lng: lng}, true
}

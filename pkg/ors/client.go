// Package ors provides a minimal OpenRouteService Directions client. Every
// query is charged against the account's Directions quota, so callers are
// expected to cache results; the client itself only handles transport,
// rate limiting, and retries.
package ors

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/headwaters-lab/musselsim/internal/resilience"
)

// DefaultBaseURL is the public OpenRouteService endpoint.
const DefaultBaseURL = "https://api.openrouteservice.org"

// LatLon is a coordinate pair in decimal degrees.
type LatLon struct {
	Lat float64
	Lon float64
}

// Route is the subset of a Directions response the simulator needs: the
// road distance and the encoded-polyline geometry for map export.
type Route struct {
	DistanceKm float64
	DurationS  float64
	Geometry   string
}

// Client queries the Directions API.
type Client interface {
	// Directions returns the route from start to end.
	Directions(ctx context.Context, start, end LatLon) (*Route, error)
}

// Option configures the client.
type Option func(*client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *client) { c.httpClient = hc }
}

// WithBaseURL overrides the API endpoint (self-hosted ORS instances).
func WithBaseURL(u string) Option {
	return func(c *client) { c.baseURL = u }
}

// WithProfile sets the routing profile. Default: driving-car.
func WithProfile(p string) Option {
	return func(c *client) { c.profile = p }
}

// WithRateLimit sets the requests-per-second limit. The public API allows
// 40 req/min on the free tier.
func WithRateLimit(rps float64) Option {
	return func(c *client) { c.limiter = rate.NewLimiter(rate.Limit(rps), 1) }
}

// WithRetry overrides the retry configuration.
func WithRetry(cfg resilience.RetryConfig) Option {
	return func(c *client) { c.retry = cfg }
}

type client struct {
	apiKey     string
	baseURL    string
	profile    string
	httpClient *http.Client
	limiter    *rate.Limiter
	retry      resilience.RetryConfig
}

// NewClient creates a Directions client. The API key is required.
func NewClient(apiKey string, opts ...Option) (Client, error) {
	if apiKey == "" {
		return nil, eris.New("ors: API key is required")
	}
	c := &client{
		apiKey:     apiKey,
		baseURL:    DefaultBaseURL,
		profile:    "driving-car",
		httpClient: &http.Client{Timeout: 30 * time.Second},
		limiter:    rate.NewLimiter(rate.Limit(0.6), 1),
		retry:      resilience.DefaultRetryConfig(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.retry.OnRetry = resilience.RetryLogger("ors", "directions")
	return c, nil
}

type directionsRequest struct {
	Coordinates [][2]float64 `json:"coordinates"`
}

type directionsResponse struct {
	Routes []struct {
		Summary struct {
			Distance float64 `json:"distance"` // meters
			Duration float64 `json:"duration"` // seconds
		} `json:"summary"`
		Geometry string `json:"geometry"`
	} `json:"routes"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (c *client) Directions(ctx context.Context, start, end LatLon) (*Route, error) {
	return resilience.DoVal(ctx, c.retry, func(ctx context.Context) (*Route, error) {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "ors: rate limit wait")
		}
		return c.directionsOnce(ctx, start, end)
	})
}

func (c *client) directionsOnce(ctx context.Context, start, end LatLon) (*Route, error) {
	// ORS takes coordinates in lon,lat order.
	body, err := json.Marshal(directionsRequest{
		Coordinates: [][2]float64{{start.Lon, start.Lat}, {end.Lon, end.Lat}},
	})
	if err != nil {
		return nil, eris.Wrap(err, "ors: marshal request")
	}

	url := fmt.Sprintf("%s/v2/directions/%s", c.baseURL, c.profile)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, eris.Wrap(err, "ors: build request")
	}
	req.Header.Set("Authorization", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "ors: directions request")
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, eris.Wrap(err, "ors: read response")
	}

	if resp.StatusCode != http.StatusOK {
		apiErr := newAPIError(resp.StatusCode, respBody)
		if resilience.IsTransientHTTPStatus(resp.StatusCode) {
			return nil, resilience.NewTransientError(apiErr, resp.StatusCode)
		}
		return nil, apiErr
	}

	var parsed directionsResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, eris.Wrap(err, "ors: parse response")
	}
	if len(parsed.Routes) == 0 {
		return nil, &APIError{StatusCode: http.StatusNotFound, Message: "no route in response"}
	}

	r := parsed.Routes[0]
	return &Route{
		DistanceKm: r.Summary.Distance / 1000,
		DurationS:  r.Summary.Duration,
		Geometry:   r.Geometry,
	}, nil
}

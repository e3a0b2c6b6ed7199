// Package geoip resolves an IP address to an approximate location using
// the ip-api.com JSON endpoint.
package geoip

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
)

const defaultBaseURL = "http://ip-api.com"

// Location is a resolved IP geolocation.
type Location struct {
	IP        string  `json:"ip"`
	City      string  `json:"city"`
	Region    string  `json:"region"`
	Country   string  `json:"country"`
	Pincode   string  `json:"pincode"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Client resolves IP addresses to locations.
type Client interface {
	Lookup(ctx context.Context, ip string) (*Location, error)
}

type httpClient struct {
	baseURL string
	client  *http.Client
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the API base URL (useful for testing).
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = url
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.client = hc
	}
}

// NewClient creates a geoip client.
func NewClient(opts ...Option) Client {
	c := &httpClient{
		baseURL: defaultBaseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type lookupResponse struct {
	Status  string  `json:"status"`
	Message string  `json:"message"`
	Country string  `json:"country"`
	Region  string  `json:"regionName"`
	City    string  `json:"city"`
	Zip     string  `json:"zip"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	Query   string  `json:"query"`
}

// Lookup resolves one IP. An empty ip resolves the caller's own address.
func (c *httpClient) Lookup(ctx context.Context, ip string) (*Location, error) {
	url := fmt.Sprintf("%s/json/%s", c.baseURL, ip)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, eris.Wrap(err, "geoip: create request")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "geoip: execute request")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "geoip: read response")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("geoip: unexpected status %d: %s", resp.StatusCode, string(body))
	}

	var lr lookupResponse
	if err := json.Unmarshal(body, &lr); err != nil {
		return nil, eris.Wrap(err, "geoip: decode response")
	}
	if lr.Status != "success" {
		return nil, eris.Errorf("geoip: lookup failed: %s", lr.Message)
	}

	return &Location{
		IP:        lr.Query,
		City:      lr.City,
		Region:    lr.Region,
		Country:   lr.Country,
		Pincode:   lr.Zip,
		Latitude:  lr.Lat,
		Longitude: lr.Lon,
	}, nil
}

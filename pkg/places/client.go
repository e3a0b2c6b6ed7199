// Package places wraps the Google Maps Places web service endpoints used
// by the nearby lookup and the doctor finder.
package places

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"

	"github.com/saransh482003/healthassist/internal/model"
)

const (
	defaultBaseURL = "https://maps.googleapis.com/maps/api/place"
	defaultRadius  = 5000
)

// Client performs Places API operations.
type Client interface {
	// NearbySearch returns places matching keyword around a coordinate.
	// An empty slice means "no candidates", not an error.
	NearbySearch(ctx context.Context, lat, lon float64, keyword string, radius int) ([]model.Place, error)
	// Details fetches the richer per-place record. Returns (nil, nil) when
	// the place is unknown to the upstream service.
	Details(ctx context.Context, placeID string) (*model.PlaceDetails, error)
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(u string) Option {
	return func(c *httpClient) {
		c.baseURL = u
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

type httpClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

// NewClient creates a Places API client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// nearbyResponse mirrors the nearby-search payload. Results stays raw so a
// payload that omits the key entirely can be told apart from an empty list:
// the former is a contract violation and fails loudly.
type nearbyResponse struct {
	Results      json.RawMessage `json:"results"`
	Status       string          `json:"status"`
	ErrorMessage string          `json:"error_message"`
}

type nearbyResult struct {
	PlaceID  string `json:"place_id"`
	Name     string `json:"name"`
	Geometry struct {
		Location struct {
			Lat float64 `json:"lat"`
			Lng float64 `json:"lng"`
		} `json:"location"`
	} `json:"geometry"`
	Vicinity        string   `json:"vicinity"`
	Types           []string `json:"types"`
	Rating          any      `json:"rating"`
	UserRatingTotal any      `json:"user_ratings_total"`
	BusinessStatus  string   `json:"business_status"`
	OpeningHours    *struct {
		OpenNow bool `json:"open_now"`
	} `json:"opening_hours"`
}

func (c *httpClient) NearbySearch(ctx context.Context, lat, lon float64, keyword string, radius int) ([]model.Place, error) {
	if radius <= 0 {
		radius = defaultRadius
	}

	q := url.Values{}
	q.Set("location", fmt.Sprintf("%f,%f", lat, lon))
	q.Set("radius", fmt.Sprintf("%d", radius))
	q.Set("keyword", keyword)
	q.Set("key", c.apiKey)

	body, err := c.get(ctx, c.baseURL+"/nearbysearch/json?"+q.Encode())
	if err != nil {
		return nil, err
	}

	var resp nearbyResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, eris.Wrap(err, "places: unmarshal nearby response")
	}

	if resp.Status != "" && resp.Status != "OK" && resp.Status != "ZERO_RESULTS" {
		return nil, eris.Errorf("places: nearby search status %s: %s", resp.Status, resp.ErrorMessage)
	}

	// A payload without a results key violates the API contract.
	if resp.Results == nil {
		return nil, eris.New("places: nearby response missing results field")
	}

	var results []nearbyResult
	if err := json.Unmarshal(resp.Results, &results); err != nil {
		return nil, eris.Wrap(err, "places: unmarshal nearby results")
	}

	out := make([]model.Place, 0, len(results))
	for _, r := range results {
		p := model.Place{
			PlaceID:         r.PlaceID,
			Name:            r.Name,
			Latitude:        r.Geometry.Location.Lat,
			Longitude:       r.Geometry.Location.Lng,
			Vicinity:        r.Vicinity,
			Types:           r.Types,
			Rating:          r.Rating,
			UserRatingCount: r.UserRatingTotal,
			BusinessStatus:  r.BusinessStatus,
		}
		if r.OpeningHours != nil {
			open := r.OpeningHours.OpenNow
			p.OpenNow = &open
		}
		out = append(out, p)
	}
	return out, nil
}

type detailsResponse struct {
	Result       json.RawMessage `json:"result"`
	Status       string          `json:"status"`
	ErrorMessage string          `json:"error_message"`
}

type detailsResult struct {
	PlaceID          string  `json:"place_id"`
	Name             string  `json:"name"`
	Website          string  `json:"website"`
	FormattedPhone   string  `json:"formatted_phone_number"`
	FormattedAddress string  `json:"formatted_address"`
	Rating           float64 `json:"rating"`
	UserRatingTotal  int     `json:"user_ratings_total"`
	OpeningHours     *struct {
		WeekdayText []string `json:"weekday_text"`
	} `json:"opening_hours"`
}

func (c *httpClient) Details(ctx context.Context, placeID string) (*model.PlaceDetails, error) {
	q := url.Values{}
	q.Set("place_id", placeID)
	q.Set("fields", "place_id,name,website,formatted_phone_number,formatted_address,rating,user_ratings_total,opening_hours")
	q.Set("key", c.apiKey)

	body, err := c.get(ctx, c.baseURL+"/details/json?"+q.Encode())
	if err != nil {
		return nil, err
	}

	var resp detailsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, eris.Wrap(err, "places: unmarshal details response")
	}

	switch resp.Status {
	case "OK", "":
	case "ZERO_RESULTS", "NOT_FOUND":
		return nil, nil
	default:
		return nil, eris.Errorf("places: details status %s: %s", resp.Status, resp.ErrorMessage)
	}

	if resp.Result == nil {
		return nil, eris.New("places: details response missing result field")
	}

	var r detailsResult
	if err := json.Unmarshal(resp.Result, &r); err != nil {
		return nil, eris.Wrap(err, "places: unmarshal details result")
	}

	details := &model.PlaceDetails{
		PlaceID:          r.PlaceID,
		Name:             r.Name,
		Website:          r.Website,
		FormattedPhone:   r.FormattedPhone,
		FormattedAddress: r.FormattedAddress,
		Rating:           r.Rating,
		UserRatingCount:  r.UserRatingTotal,
	}
	if r.OpeningHours != nil {
		details.OpeningHours = r.OpeningHours.WeekdayText
	}
	return details, nil
}

func (c *httpClient) get(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "places: create request")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "places: send request")
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "places: read response")
	}

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("places: unexpected status %d: %s", resp.StatusCode, string(body))
	}
	return body, nil
}

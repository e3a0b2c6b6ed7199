package places

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNearbySearch_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/nearbysearch/json", r.URL.Path)
		assert.Equal(t, "12.970000,77.590000", r.URL.Query().Get("location"))
		assert.Equal(t, "hospital", r.URL.Query().Get("keyword"))
		assert.Equal(t, "5000", r.URL.Query().Get("radius"))
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"status": "OK",
			"results": [
				{
					"place_id": "ChIJ-hosp1",
					"name": "City Care Hospital",
					"geometry": {"location": {"lat": 12.97, "lng": 77.59}},
					"vicinity": "MG Road",
					"rating": 4.4,
					"user_ratings_total": 982,
					"opening_hours": {"open_now": true}
				}
			]
		}`))
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	got, err := client.NearbySearch(context.Background(), 12.97, 77.59, "hospital", 0)

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "ChIJ-hosp1", got[0].PlaceID)
	assert.Equal(t, "City Care Hospital", got[0].Name)
	assert.InDelta(t, 12.97, got[0].Latitude, 0.001)
	assert.Equal(t, 4.4, got[0].Rating)
	require.NotNil(t, got[0].OpenNow)
	assert.True(t, *got[0].OpenNow)
}

func TestNearbySearch_ZeroResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"status": "ZERO_RESULTS", "results": []}`))
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	got, err := client.NearbySearch(context.Background(), 0, 0, "pharmacy", 2000)

	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestNearbySearch_MissingResultsKeyFailsLoudly(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"status": "OK"}`))
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	got, err := client.NearbySearch(context.Background(), 0, 0, "hospital", 0)

	require.Error(t, err)
	assert.Nil(t, got)
	assert.Contains(t, err.Error(), "missing results field")
}

func TestNearbySearch_UpstreamStatusSurfaced(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"status": "REQUEST_DENIED", "error_message": "The provided API key is invalid."}`))
	}))
	defer srv.Close()

	client := NewClient("bad-key", WithBaseURL(srv.URL))
	_, err := client.NearbySearch(context.Background(), 0, 0, "hospital", 0)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "REQUEST_DENIED")
	assert.Contains(t, err.Error(), "API key is invalid")
}

func TestNearbySearch_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	_, err := client.NearbySearch(context.Background(), 0, 0, "hospital", 0)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestDetails_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/details/json", r.URL.Path)
		assert.Equal(t, "ChIJ-hosp1", r.URL.Query().Get("place_id"))

		_, _ = w.Write([]byte(`{
			"status": "OK",
			"result": {
				"place_id": "ChIJ-hosp1",
				"name": "City Care Hospital",
				"website": "https://citycare.example.com",
				"formatted_phone_number": "+91 80 1234 5678",
				"rating": 4.4,
				"user_ratings_total": 982,
				"opening_hours": {"weekday_text": ["Monday: Open 24 hours"]}
			}
		}`))
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	got, err := client.Details(context.Background(), "ChIJ-hosp1")

	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "https://citycare.example.com", got.Website)
	assert.Equal(t, 982, got.UserRatingCount)
	assert.Equal(t, []string{"Monday: Open 24 hours"}, got.OpeningHours)
}

func TestDetails_NotFoundIsEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"status": "NOT_FOUND"}`))
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	got, err := client.Details(context.Background(), "nope")

	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestDetails_MissingResultKeyFailsLoudly(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"status": "OK"}`))
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	_, err := client.Details(context.Background(), "ChIJ-hosp1")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing result field")
}

func TestDetails_ContextCanceled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	_, err := client.Details(ctx, "ChIJ-hosp1")
	require.Error(t, err)
}

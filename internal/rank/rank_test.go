package rank

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saransh482003/healthassist/internal/model"
)

func TestSafeFloat(t *testing.T) {
	assert.InDelta(t, 0.0, SafeFloat("abc"), 0.0001)
	assert.InDelta(t, 0.0, SafeFloat(nil), 0.0001)
	assert.InDelta(t, 4.5, SafeFloat("4.5"), 0.0001)
	assert.InDelta(t, 4.5, SafeFloat(4.5), 0.0001)
	assert.InDelta(t, 3.0, SafeFloat(3), 0.0001)
	assert.InDelta(t, 0.0, SafeFloat(map[string]any{}), 0.0001)
}

func TestSafeInt(t *testing.T) {
	assert.Equal(t, 0, SafeInt("abc"))
	assert.Equal(t, 0, SafeInt(nil))
	assert.Equal(t, 42, SafeInt("42"))
	assert.Equal(t, 42, SafeInt(42))
	assert.Equal(t, 42, SafeInt(42.9))
	assert.Equal(t, 0, SafeInt([]string{}))
}

func TestRank_Empty(t *testing.T) {
	assert.Empty(t, Rank(nil))
	assert.Empty(t, Rank([]model.Place{}))
}

func TestRank_QualityOrdering(t *testing.T) {
	places := []model.Place{
		{PlaceID: "far-popular", Distance: 5.0, Rating: 4.0, UserRatingCount: 1000},
		{PlaceID: "near-unknown", Distance: 1.0, Rating: 2.0, UserRatingCount: 1},
		{PlaceID: "mid-good", Distance: 2.0, Rating: 5.0, UserRatingCount: 500},
	}

	got := Rank(places)
	require.Len(t, got, 3)
	assert.Equal(t, "far-popular", got[0].PlaceID)
	assert.Equal(t, "mid-good", got[1].PlaceID)
	assert.Equal(t, "near-unknown", got[2].PlaceID)
}

func TestRank_DistanceStageDropsFarPlaces(t *testing.T) {
	// 11 places; the farthest one has the best quality but must not survive
	// the closest-10 cut.
	var places []model.Place
	for i := 0; i < 10; i++ {
		places = append(places, model.Place{
			PlaceID:         string(rune('a' + i)),
			Distance:        float64(i),
			Rating:          3.0,
			UserRatingCount: 10,
		})
	}
	places = append(places, model.Place{
		PlaceID: "too-far", Distance: 99.0, Rating: 5.0, UserRatingCount: 100000,
	})

	got := Rank(places)
	require.Len(t, got, 5)
	for _, p := range got {
		assert.NotEqual(t, "too-far", p.PlaceID)
	}
}

func TestRank_Deterministic(t *testing.T) {
	places := []model.Place{
		{PlaceID: "a", Distance: "3.0", Rating: "4.1", UserRatingCount: "12"},
		{PlaceID: "b", Distance: nil, Rating: nil, UserRatingCount: nil},
		{PlaceID: "c", Distance: 1.5, Rating: 4.9, UserRatingCount: 7},
	}

	first := Rank(places)
	second := Rank(places)
	assert.Equal(t, first, second)
}

func TestRank_CapsAtFive(t *testing.T) {
	var places []model.Place
	for i := 0; i < 8; i++ {
		places = append(places, model.Place{
			PlaceID:         string(rune('a' + i)),
			Distance:        1.0,
			Rating:          4.0,
			UserRatingCount: i * 10,
		})
	}
	got := Rank(places)
	assert.Len(t, got, 5)
}

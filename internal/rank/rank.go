// Package rank orders candidate places by proximity and quality signals.
package rank

import (
	"sort"
	"strconv"

	"github.com/saransh482003/healthassist/internal/model"
)

const (
	// closestN is how many places survive the distance stage.
	closestN = 10
	// topN is how many places the quality stage passes downstream.
	topN = 5
)

// SafeFloat coerces an arbitrary value to float64, defaulting to 0.0 for
// anything that does not parse. Ranking fields from the places payload are
// untyped; a value that cannot parse degrades to zero instead of failing.
func SafeFloat(v any) float64 {
	switch x := v.(type) {
	case float64:
		return x
	case float32:
		return float64(x)
	case int:
		return float64(x)
	case int64:
		return float64(x)
	case string:
		f, err := strconv.ParseFloat(x, 64)
		if err != nil {
			return 0.0
		}
		return f
	default:
		return 0.0
	}
}

// SafeInt coerces an arbitrary value to int, defaulting to 0.
func SafeInt(v any) int {
	switch x := v.(type) {
	case int:
		return x
	case int64:
		return int(x)
	case float64:
		return int(x)
	case float32:
		return int(x)
	case string:
		n, err := strconv.Atoi(x)
		if err != nil {
			return 0
		}
		return n
	default:
		return 0
	}
}

// Rank selects the working set of places for downstream crawling. Two
// stages: keep the 10 closest, then within those keep the 5 best by
// rating count + rating. Distance alone picks nearest-but-unrated places;
// rating alone picks highly-rated-but-far ones. Pure function, no I/O.
func Rank(places []model.Place) []model.Place {
	if len(places) == 0 {
		return []model.Place{}
	}

	byDistance := make([]model.Place, len(places))
	copy(byDistance, places)
	sort.SliceStable(byDistance, func(i, j int) bool {
		return SafeFloat(byDistance[i].Distance) < SafeFloat(byDistance[j].Distance)
	})

	if len(byDistance) > closestN {
		byDistance = byDistance[:closestN]
	}

	// Quality score: count dominates due to magnitude, rating tie-breaks.
	sort.SliceStable(byDistance, func(i, j int) bool {
		return qualityScore(byDistance[i]) > qualityScore(byDistance[j])
	})

	if len(byDistance) > topN {
		byDistance = byDistance[:topN]
	}
	return byDistance
}

func qualityScore(p model.Place) float64 {
	return float64(SafeInt(p.UserRatingCount)) + SafeFloat(p.Rating)
}

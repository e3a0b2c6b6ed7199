package model

// Place is a directory entry returned by the places API. Immutable within
// a pipeline run.
type Place struct {
	PlaceID         string  `json:"place_id"`
	Name            string  `json:"name"`
	Latitude        float64 `json:"latitude"`
	Longitude       float64 `json:"longitude"`
	Vicinity        string  `json:"vicinity,omitempty"`
	Types           []string `json:"types,omitempty"`
	Rating          any     `json:"rating,omitempty"`
	UserRatingCount any     `json:"user_ratings_total,omitempty"`
	Distance        any     `json:"distance,omitempty"`
	BusinessStatus  string  `json:"business_status,omitempty"`
	OpenNow         *bool   `json:"open_now,omitempty"`
}

// PlaceDetails is the richer per-place record fetched on demand.
type PlaceDetails struct {
	PlaceID          string   `json:"place_id"`
	Name             string   `json:"name"`
	Website          string   `json:"website,omitempty"`
	FormattedPhone   string   `json:"formatted_phone_number,omitempty"`
	FormattedAddress string   `json:"formatted_address,omitempty"`
	Rating           float64  `json:"rating,omitempty"`
	UserRatingCount  int      `json:"user_ratings_total,omitempty"`
	OpeningHours     []string `json:"opening_hours,omitempty"`
}

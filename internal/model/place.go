package model

// PlaceRecord is the normalized venue shape produced by the venue
// search adapter. Consumed for display, single selection and
// multi-selection into a location poll.
type PlaceRecord struct {
	PlaceID          string   `json:"place_id"`
	Name             string   `json:"name"`
	Address          string   `json:"address,omitempty"`
	Rating           float64  `json:"rating,omitempty"`
	UserRatingsTotal int      `json:"user_ratings_total,omitempty"`
	PriceLevel       int      `json:"price_level,omitempty"` // 0-4
	OpenNow          *bool    `json:"open_now,omitempty"`
	PhotoURL         string   `json:"photo_url,omitempty"`
	Types            []string `json:"types,omitempty"`
}

package types

import "time"

// UserLocation is the resolved geographic grounding for a generation
// request. Produced by the geo resolver from a free-text city name; a
// nil *UserLocation means suggestions have no geographic grounding.
type UserLocation struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	City      string  `json:"city,omitempty"`
}

// PlaceCandidate is an external point of interest returned by the POI
// provider. Lifetime is a single request; suggestions reference it via
// the opaque SourceID only.
type PlaceCandidate struct {
	SourceID  string  `json:"source_id"`
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Category  string  `json:"category,omitempty"`
	Distance  float64 `json:"distance,omitempty"`
}

// EventCandidate is an upcoming event near the resolved location,
// used only to ground the room-prompt variant.
type EventCandidate struct {
	SourceID string    `json:"source_id"`
	Name     string    `json:"name"`
	Venue    string    `json:"venue,omitempty"`
	StartsAt time.Time `json:"starts_at,omitempty"`
}

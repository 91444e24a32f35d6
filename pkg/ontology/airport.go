package ontology

import (
	"time"
)

// GeoPoint is a geographic coordinate in degrees. A point with both
// coordinates at the origin is treated as unset rather than a real location.
type GeoPoint struct {
	Latitude  float64 `json:"latitude" validate:"min=-90,max=90"`
	Longitude float64 `json:"longitude" validate:"min=-180,max=180"`
}

// IsZero reports whether the point carries no real coordinates.
func (p GeoPoint) IsZero() bool {
	return p.Latitude == 0 && p.Longitude == 0
}

type Airport struct {
	AirportID string    `json:"airport_id" db:"airport_id"`
	Ident     string    `json:"ident" db:"ident"`
	Name      string    `json:"name" db:"name"`
	City      string    `json:"city,omitempty" db:"city"`
	Country   string    `json:"country,omitempty" db:"country"`
	Position  GeoPoint  `json:"position"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type CreateAirportRequest struct {
	Ident    string   `json:"ident" validate:"required,min=3,max=4"`
	Name     string   `json:"name" validate:"required,min=1,max=255"`
	City     string   `json:"city,omitempty"`
	Country  string   `json:"country,omitempty"`
	Position GeoPoint `json:"position"`
}

package ontology

import (
	"time"
)

// AircraftType describes the economics and performance of one equipment type.
type AircraftType struct {
	TypeID         string  `json:"type_id" db:"type_id"`
	Name           string  `json:"name" db:"name"`
	PaxCapacity    int     `json:"pax_capacity" db:"pax_capacity"`
	CargoKg        float64 `json:"cargo_kg,omitempty" db:"cargo_kg"`
	RangeKm        float64 `json:"range_km" db:"range_km"`
	CruiseSpeedKmh float64 `json:"cruise_speed_kmh" db:"cruise_speed_kmh"`
	CostPerHour    float64 `json:"cost_per_hour" db:"cost_per_hour"`
}

type Aircraft struct {
	AircraftID   string    `json:"aircraft_id" db:"aircraft_id"`
	Registration string    `json:"registration" db:"registration"`
	TypeID       string    `json:"type_id" db:"type_id"`
	Location     string    `json:"location" db:"location"` // airport ident
	Status       string    `json:"status" db:"status"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

type CreateAircraftRequest struct {
	Registration string `json:"registration" validate:"required,min=3,max=10"`
	TypeID       string `json:"type_id" validate:"required"`
	Location     string `json:"location" validate:"required"`
	Status       string `json:"status,omitempty" validate:"omitempty,oneof=available scheduled flying unknown"`
}

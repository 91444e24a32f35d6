package ontology

import (
	"time"
)

// Flight is a scheduled movement of one aircraft over one route. Arrival,
// distance, duration and fares are derived fields; the occupied block window
// is never stored and is recomputed from Departure + DurationMin whenever
// the flight is conflict-checked.
type Flight struct {
	FlightID       string    `json:"flight_id" db:"flight_id"`
	Number         string    `json:"number" db:"number"`
	Operator       string    `json:"operator" db:"operator"`
	DepartureIdent string    `json:"departure_ident" db:"departure_ident"`
	ArrivalIdent   string    `json:"arrival_ident" db:"arrival_ident"`
	AircraftID     string    `json:"aircraft_id" db:"aircraft_id"`
	RouteID        string    `json:"route_id" db:"route_id"`
	Departure      time.Time `json:"departure" db:"departure"`
	Arrival        time.Time `json:"arrival" db:"arrival"`
	DistanceKm     float64   `json:"distance_km" db:"distance_km"`
	DurationMin    int       `json:"duration_min" db:"duration_min"`
	EconomyFare    float64   `json:"economy_fare" db:"economy_fare"`
	BusinessFare   float64   `json:"business_fare" db:"business_fare"`
	FirstFare      float64   `json:"first_fare" db:"first_fare"`
	Status         string    `json:"status" db:"status"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}

type CreateFlightRequest struct {
	AircraftID     string    `json:"aircraft_id" validate:"required"`
	DepartureIdent string    `json:"departure_ident" validate:"required"`
	ArrivalIdent   string    `json:"arrival_ident" validate:"required"`
	Departure      time.Time `json:"departure" validate:"required"`
}

type RescheduleFlightRequest struct {
	Departure time.Time `json:"departure" validate:"required"`
}

type CreateRoundTripRequest struct {
	CreateFlightRequest
	TurnaroundMinutes int `json:"turnaround_minutes"`
}

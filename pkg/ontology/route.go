package ontology

import (
	"time"
)

// Route is a directed airport pair flown by one operator. Distance and
// duration are derived once when the route is created and cached here;
// A->B and B->A are distinct routes.
type Route struct {
	RouteID        string    `json:"route_id" db:"route_id"`
	DepartureIdent string    `json:"departure_ident" db:"departure_ident"`
	ArrivalIdent   string    `json:"arrival_ident" db:"arrival_ident"`
	Operator       string    `json:"operator" db:"operator"`
	DistanceKm     float64   `json:"distance_km" db:"distance_km"`
	DurationMin    int       `json:"duration_min" db:"duration_min"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}

package sched

import (
	"skysched-api/pkg/ontology"
)

// FlightRepository is the external flight store the core reads schedules
// from and hands validated candidates to. The core never retries repository
// calls; errors propagate to the caller unmodified.
//
// Concurrency contract: the engine performs read-check-write sequences
// (fetch schedule, decide availability, save) with no locking of its own.
// Implementations, or their callers, must serialize that sequence per
// aircraft, via an advisory lock or a transaction with a uniqueness
// backstop, or two concurrent calls can both see "available" and commit
// overlapping flights.
type FlightRepository interface {
	ListAll() ([]ontology.Flight, error)
	ListByAircraft(aircraftID string) ([]ontology.Flight, error)
	Save(flight *ontology.Flight) error
	Delete(flightID string) error
}

// RouteRepository resolves and persists directed routes per operator.
// FindByAirportsAndOperator returns (nil, nil) when no route exists.
type RouteRepository interface {
	FindByAirportsAndOperator(departureIdent, arrivalIdent, operator string) (*ontology.Route, error)
	Save(route *ontology.Route) error
}

package sched

import (
	"fmt"
	"time"

	"skysched-api/pkg/ontology"
	"skysched-api/pkg/shared"
)

// GateNumber marks a composition rejected because the paired return number
// is already taken.
const GateNumber Gate = "number"

// ReturnRequest carries the outbound flight and the reference data the
// composer needs to derive its return leg.
type ReturnRequest struct {
	Outbound         *ontology.Flight
	Aircraft         ontology.Aircraft
	Type             ontology.AircraftType
	DepartureAirport ontology.Airport // outbound departure, the return's arrival
	ArrivalAirport   ontology.Airport // outbound arrival, the return's departure
	// TurnaroundMinutes overrides the configured default gap between the
	// outbound arrival and the return departure; 0 keeps the default.
	TurnaroundMinutes int
}

// RoundTripComposer derives a return flight candidate from a committed
// outbound flight. It holds no state of its own; any step failure aborts
// the whole composition and no partial return flight is produced.
type RoundTripComposer struct {
	cfg     Config
	flights FlightRepository
	routes  RouteRepository
	checker *AvailabilityChecker
	pricer  PricingEngine
	blocks  BlockTimeCalculator
}

func NewRoundTripComposer(cfg Config, flights FlightRepository, routes RouteRepository) *RoundTripComposer {
	return &RoundTripComposer{
		cfg:     cfg,
		flights: flights,
		routes:  routes,
		checker: NewAvailabilityChecker(cfg, flights),
		pricer:  NewPricingEngine(cfg),
		blocks:  NewBlockTimeCalculator(cfg),
	}
}

// Compose builds the return flight: paired number, turnaround-shifted
// departure, reversed route (reused or synthesized and saved), availability
// re-check and re-pricing. Expected rejections come back as a Decision; the
// error is reserved for repository failures and exhaustion.
func (c *RoundTripComposer) Compose(req ReturnRequest) (*ontology.Flight, Decision, error) {
	out := req.Outbound
	if out == nil || out.Departure.IsZero() || out.Arrival.IsZero() || out.DurationMin <= 0 {
		return nil, reject(GateInput, "outbound flight is missing derived schedule data"), nil
	}
	outNum, ok := ParseNumber(out.Number, out.Operator)
	if !ok {
		return nil, reject(GateInput, "outbound number %q is not in %s format", out.Number, out.Operator), nil
	}

	used, err := UsedNumbers(c.flights, out.Operator)
	if err != nil {
		return nil, Decision{}, err
	}
	returnNum := outNum + 1
	if used[returnNum] {
		return nil, reject(GateNumber, "return number %s is already taken",
			FormatNumber(out.Operator, returnNum)), nil
	}

	turnaround := req.TurnaroundMinutes
	if turnaround <= 0 {
		turnaround = c.cfg.TurnaroundMinutes
	}
	if turnaround < c.cfg.MinTurnaroundMinutes {
		turnaround = c.cfg.MinTurnaroundMinutes
	}
	if turnaround > c.cfg.MaxTurnaroundMinutes {
		turnaround = c.cfg.MaxTurnaroundMinutes
	}
	departure := out.Arrival.Add(time.Duration(turnaround) * time.Minute)

	route, err := c.reversedRoute(req)
	if err != nil {
		return nil, Decision{}, err
	}

	// The availability gates see the aircraft as it will stand after the
	// outbound: parked at the outbound's arrival airport, its outbound
	// commitment already on the schedule. A flying or unknown aircraft
	// still fails the status gate.
	projected := req.Aircraft
	projected.Location = out.ArrivalIdent
	if projected.Status == shared.AircraftScheduled {
		projected.Status = shared.AircraftAvailable
	}

	decision, err := c.checker.Check(Candidate{
		Aircraft:       projected,
		Type:           req.Type,
		DepartureIdent: out.ArrivalIdent,
		Departure:      departure,
		DistanceKm:     route.DistanceKm,
		FlightMinutes:  route.DurationMin,
	})
	if err != nil {
		return nil, Decision{}, err
	}
	if !decision.Available {
		return nil, decision, nil
	}

	domestic := Domestic(req.ArrivalAirport, req.DepartureAirport)
	fares := c.pricer.Price(route.DistanceKm, route.DurationMin, req.Type, domestic)

	ret := &ontology.Flight{
		Number:         FormatNumber(out.Operator, returnNum),
		Operator:       out.Operator,
		DepartureIdent: out.ArrivalIdent,
		ArrivalIdent:   out.DepartureIdent,
		AircraftID:     out.AircraftID,
		RouteID:        route.RouteID,
		Departure:      departure,
		Arrival:        c.blocks.Arrival(departure, route.DurationMin),
		DistanceKm:     route.DistanceKm,
		DurationMin:    route.DurationMin,
		EconomyFare:    fares.Economy,
		BusinessFare:   fares.Business,
		FirstFare:      fares.First,
		Status:         shared.FlightScheduled,
	}
	return ret, Decision{Available: true}, nil
}

// reversedRoute finds the existing route for the reversed airport pair or
// synthesizes one. A synthesized route derives its duration from the
// configured default cruise speed, since no aircraft may be committed to it
// yet, and is persisted through the repository.
func (c *RoundTripComposer) reversedRoute(req ReturnRequest) (*ontology.Route, error) {
	out := req.Outbound
	route, err := c.routes.FindByAirportsAndOperator(out.ArrivalIdent, out.DepartureIdent, out.Operator)
	if err != nil {
		return nil, fmt.Errorf("failed to look up reversed route %s-%s: %w", out.ArrivalIdent, out.DepartureIdent, err)
	}
	if route != nil {
		return route, nil
	}

	distance := Distance(req.ArrivalAirport.Position, req.DepartureAirport.Position)
	route = &ontology.Route{
		DepartureIdent: out.ArrivalIdent,
		ArrivalIdent:   out.DepartureIdent,
		Operator:       out.Operator,
		DistanceKm:     distance,
		DurationMin:    FlightTime(distance, c.cfg.DefaultCruiseSpeedKmh),
	}
	if err := c.routes.Save(route); err != nil {
		return nil, fmt.Errorf("failed to save reversed route %s-%s: %w", out.ArrivalIdent, out.DepartureIdent, err)
	}
	return route, nil
}

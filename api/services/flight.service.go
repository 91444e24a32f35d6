package services

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"skysched-api/pkg/ontology"
	"skysched-api/pkg/sched"
	"skysched-api/pkg/shared"
	embeddednats "skysched-api/pkg/services/embedded-nats"
)

// ConflictError carries a scheduling rejection (gate + reason) up to the
// handlers, distinct from repository failures.
type ConflictError struct {
	Decision sched.Decision
}

func (e *ConflictError) Error() string {
	return e.Decision.Reason
}

// FlightService owns flight persistence and runs the scheduling engine over
// it. It implements sched.FlightRepository, which makes it the flight store
// the core calculators read from.
//
// The read-check-write race the engine documents is closed here: every
// create/reschedule holds a per-aircraft advisory lock across "fetch
// schedule, check availability, insert", and the UNIQUE(number, operator)
// constraint backstops number clashes.
type FlightService struct {
	db       *sql.DB
	nats     *embeddednats.EmbeddedNATS
	cfg      sched.Config
	operator string

	routes   *RouteService
	fleet    *FleetService
	checker  *sched.AvailabilityChecker
	pricer   sched.PricingEngine
	blocks   sched.BlockTimeCalculator
	composer *sched.RoundTripComposer

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewFlightService(db *sql.DB, nats *embeddednats.EmbeddedNATS, cfg sched.Config, operator string) *FlightService {
	s := &FlightService{
		db:       db,
		nats:     nats,
		cfg:      cfg,
		operator: strings.ToUpper(operator),
		routes:   NewRouteService(db),
		fleet:    NewFleetService(db),
		pricer:   sched.NewPricingEngine(cfg),
		blocks:   sched.NewBlockTimeCalculator(cfg),
		locks:    make(map[string]*sync.Mutex),
	}
	s.checker = sched.NewAvailabilityChecker(cfg, s)
	s.composer = sched.NewRoundTripComposer(cfg, s, s.routes)
	return s
}

func (s *FlightService) Operator() string {
	return s.operator
}

// aircraftLock returns the advisory lock serializing schedule decisions for
// one aircraft.
func (s *FlightService) aircraftLock(aircraftID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[aircraftID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[aircraftID] = l
	}
	return l
}

// CreateFlight validates a candidate flight end to end (route derivation,
// availability, number allocation, pricing) and persists it. Rejections
// come back as *ConflictError.
func (s *FlightService) CreateFlight(req *ontology.CreateFlightRequest) (*ontology.Flight, error) {
	aircraft, err := s.fleet.GetAircraft(req.AircraftID)
	if err != nil {
		return nil, err
	}
	acType, err := s.fleet.GetAircraftType(aircraft.TypeID)
	if err != nil {
		return nil, err
	}
	depAirport, err := s.fleet.GetAirport(req.DepartureIdent)
	if err != nil {
		return nil, fmt.Errorf("departure %s: %w", req.DepartureIdent, err)
	}
	arrAirport, err := s.fleet.GetAirport(req.ArrivalIdent)
	if err != nil {
		return nil, fmt.Errorf("arrival %s: %w", req.ArrivalIdent, err)
	}

	route, err := s.resolveRoute(depAirport, arrAirport, acType.CruiseSpeedKmh)
	if err != nil {
		return nil, err
	}

	lock := s.aircraftLock(aircraft.AircraftID)
	lock.Lock()
	defer lock.Unlock()

	decision, err := s.checker.Check(sched.Candidate{
		Aircraft:       *aircraft,
		Type:           *acType,
		DepartureIdent: depAirport.Ident,
		Departure:      req.Departure,
		DistanceKm:     route.DistanceKm,
		FlightMinutes:  route.DurationMin,
	})
	if err != nil {
		return nil, err
	}
	if !decision.Available {
		return nil, &ConflictError{Decision: decision}
	}

	used, err := sched.UsedNumbers(s, s.operator)
	if err != nil {
		return nil, err
	}
	slot, err := sched.NextNumber(used)
	if err != nil {
		return nil, err
	}

	fares := s.pricer.Price(route.DistanceKm, route.DurationMin, *acType, sched.Domestic(*depAirport, *arrAirport))

	now := time.Now().UTC()
	flight := &ontology.Flight{
		FlightID:       uuid.New().String(),
		Number:         sched.FormatNumber(s.operator, slot),
		Operator:       s.operator,
		DepartureIdent: depAirport.Ident,
		ArrivalIdent:   arrAirport.Ident,
		AircraftID:     aircraft.AircraftID,
		RouteID:        route.RouteID,
		Departure:      req.Departure,
		Arrival:        s.blocks.Arrival(req.Departure, route.DurationMin),
		DistanceKm:     route.DistanceKm,
		DurationMin:    route.DurationMin,
		EconomyFare:    fares.Economy,
		BusinessFare:   fares.Business,
		FirstFare:      fares.First,
		Status:         shared.FlightScheduled,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.Save(flight); err != nil {
		return nil, err
	}
	if err := s.fleet.UpdateAircraftStatus(aircraft.AircraftID, shared.AircraftScheduled, ""); err != nil {
		log.Printf("Failed to mark aircraft %s scheduled: %v", aircraft.Registration, err)
	}

	go s.publishFlightEvent(flight, shared.EventTypeCreated, shared.FlightCreatedSubject(s.operator))
	return flight, nil
}

// CreateRoundTrip creates the outbound flight and composes its return. The
// outbound commit stands on its own; a failed composition aborts only the
// return flight.
func (s *FlightService) CreateRoundTrip(req *ontology.CreateFlightRequest, turnaroundMinutes int) (*ontology.Flight, *ontology.Flight, error) {
	outbound, err := s.CreateFlight(req)
	if err != nil {
		return nil, nil, err
	}

	aircraft, err := s.fleet.GetAircraft(outbound.AircraftID)
	if err != nil {
		return outbound, nil, err
	}
	acType, err := s.fleet.GetAircraftType(aircraft.TypeID)
	if err != nil {
		return outbound, nil, err
	}
	depAirport, err := s.fleet.GetAirport(outbound.DepartureIdent)
	if err != nil {
		return outbound, nil, err
	}
	arrAirport, err := s.fleet.GetAirport(outbound.ArrivalIdent)
	if err != nil {
		return outbound, nil, err
	}

	lock := s.aircraftLock(aircraft.AircraftID)
	lock.Lock()
	defer lock.Unlock()

	ret, decision, err := s.composer.Compose(sched.ReturnRequest{
		Outbound:          outbound,
		Aircraft:          *aircraft,
		Type:              *acType,
		DepartureAirport:  *depAirport,
		ArrivalAirport:    *arrAirport,
		TurnaroundMinutes: turnaroundMinutes,
	})
	if err != nil {
		return outbound, nil, err
	}
	if !decision.Available {
		return outbound, nil, &ConflictError{Decision: decision}
	}

	ret.FlightID = uuid.New().String()
	ret.CreatedAt = time.Now().UTC()
	ret.UpdatedAt = ret.CreatedAt
	if err := s.Save(ret); err != nil {
		return outbound, nil, err
	}

	go s.publishFlightEvent(ret, shared.EventTypeReturn, shared.FlightReturnSubject(s.operator))
	return outbound, ret, nil
}

// Reschedule moves a flight to a new departure, re-running the same
// validation chain with the flight excluded from its own overlap scan.
func (s *FlightService) Reschedule(flightID string, departure time.Time) (*ontology.Flight, error) {
	flight, err := s.GetFlight(flightID)
	if err != nil {
		return nil, err
	}
	if shared.TerminalFlightStatus(flight.Status) {
		return nil, fmt.Errorf("flight %s is %s and cannot be rescheduled", flight.Number, flight.Status)
	}

	aircraft, err := s.fleet.GetAircraft(flight.AircraftID)
	if err != nil {
		return nil, err
	}
	acType, err := s.fleet.GetAircraftType(aircraft.TypeID)
	if err != nil {
		return nil, err
	}

	lock := s.aircraftLock(aircraft.AircraftID)
	lock.Lock()
	defer lock.Unlock()

	decision, err := s.checker.Check(sched.Candidate{
		Aircraft:        *aircraft,
		Type:            *acType,
		DepartureIdent:  flight.DepartureIdent,
		Departure:       departure,
		DistanceKm:      flight.DistanceKm,
		FlightMinutes:   flight.DurationMin,
		ExcludeFlightID: flight.FlightID,
	})
	if err != nil {
		return nil, err
	}
	if !decision.Available {
		return nil, &ConflictError{Decision: decision}
	}

	flight.Departure = departure
	flight.Arrival = s.blocks.Arrival(departure, flight.DurationMin)
	flight.UpdatedAt = time.Now().UTC()

	_, err = s.db.Exec(
		`UPDATE flights SET departure = ?, arrival = ?, updated_at = ? WHERE flight_id = ?`,
		flight.Departure.Format(time.RFC3339), flight.Arrival.Format(time.RFC3339),
		flight.UpdatedAt.Format(time.RFC3339), flight.FlightID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to reschedule flight: %w", err)
	}

	go s.publishFlightEvent(flight, shared.EventTypeRescheduled, shared.FlightRescheduledSubject(s.operator))
	return flight, nil
}

// Cancel transitions a flight to cancelled, freeing its block window, and
// returns the aircraft to the available pool when nothing else is scheduled
// on it.
func (s *FlightService) Cancel(flightID string) (*ontology.Flight, error) {
	flight, err := s.GetFlight(flightID)
	if err != nil {
		return nil, err
	}
	if shared.TerminalFlightStatus(flight.Status) {
		return nil, fmt.Errorf("flight %s is already %s", flight.Number, flight.Status)
	}

	flight.Status = shared.FlightCancelled
	flight.UpdatedAt = time.Now().UTC()
	_, err = s.db.Exec(
		`UPDATE flights SET status = ?, updated_at = ? WHERE flight_id = ?`,
		flight.Status, flight.UpdatedAt.Format(time.RFC3339), flight.FlightID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to cancel flight: %w", err)
	}

	remaining, err := s.ListByAircraft(flight.AircraftID)
	if err == nil {
		active := 0
		for _, f := range remaining {
			if !shared.TerminalFlightStatus(f.Status) {
				active++
			}
		}
		if active == 0 {
			if err := s.fleet.UpdateAircraftStatus(flight.AircraftID, shared.AircraftAvailable, ""); err != nil {
				log.Printf("Failed to release aircraft %s: %v", flight.AircraftID, err)
			}
		}
	}

	go s.publishFlightEvent(flight, shared.EventTypeCancelled, shared.FlightCancelledSubject(s.operator))
	return flight, nil
}

func (s *FlightService) GetFlight(flightID string) (*ontology.Flight, error) {
	row := s.db.QueryRow(selectFlight+` WHERE flight_id = ?`, flightID)
	flight, err := scanFlight(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("flight not found")
	}
	if err != nil {
		return nil, err
	}
	return flight, nil
}

// sched.FlightRepository implementation

func (s *FlightService) ListAll() ([]ontology.Flight, error) {
	return s.queryFlights(selectFlight + ` ORDER BY departure`)
}

func (s *FlightService) ListByAircraft(aircraftID string) ([]ontology.Flight, error) {
	return s.queryFlights(selectFlight+` WHERE aircraft_id = ? ORDER BY departure`, aircraftID)
}

func (s *FlightService) Save(flight *ontology.Flight) error {
	_, err := s.db.Exec(
		`INSERT INTO flights (flight_id, number, operator, departure_ident, arrival_ident,
		                      aircraft_id, route_id, departure, arrival, distance_km, duration_min,
		                      economy_fare, business_fare, first_fare, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		flight.FlightID, flight.Number, flight.Operator, flight.DepartureIdent, flight.ArrivalIdent,
		flight.AircraftID, flight.RouteID,
		flight.Departure.Format(time.RFC3339), flight.Arrival.Format(time.RFC3339),
		flight.DistanceKm, flight.DurationMin,
		flight.EconomyFare, flight.BusinessFare, flight.FirstFare, flight.Status,
		flight.CreatedAt.Format(time.RFC3339), flight.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to save flight: %w", err)
	}
	return nil
}

func (s *FlightService) Delete(flightID string) error {
	result, err := s.db.Exec(`DELETE FROM flights WHERE flight_id = ?`, flightID)
	if err != nil {
		return fmt.Errorf("failed to delete flight: %w", err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("flight not found")
	}
	return nil
}

// resolveRoute finds the directed route for an airport pair or derives and
// persists one: distance from the great circle, duration from the cruise
// speed of the equipment creating it.
func (s *FlightService) resolveRoute(dep, arr *ontology.Airport, cruiseSpeedKmh float64) (*ontology.Route, error) {
	route, err := s.routes.FindByAirportsAndOperator(dep.Ident, arr.Ident, s.operator)
	if err != nil {
		return nil, err
	}
	if route != nil {
		return route, nil
	}

	if cruiseSpeedKmh <= 0 {
		cruiseSpeedKmh = s.cfg.DefaultCruiseSpeedKmh
	}
	distance := sched.Distance(dep.Position, arr.Position)
	route = &ontology.Route{
		DepartureIdent: dep.Ident,
		ArrivalIdent:   arr.Ident,
		Operator:       s.operator,
		DistanceKm:     distance,
		DurationMin:    sched.FlightTime(distance, cruiseSpeedKmh),
	}
	if err := s.routes.Save(route); err != nil {
		return nil, err
	}

	go s.publishRouteEvent(route)
	return route, nil
}

func (s *FlightService) publishFlightEvent(flight *ontology.Flight, eventType, subject string) {
	if s.nats == nil || s.nats.JetStream() == nil {
		log.Printf("NATS not available for publishing event")
		return
	}

	event := shared.Event{
		ID:      uuid.New().String(),
		Type:    eventType,
		Subject: subject,
		Data: map[string]interface{}{
			"flight_id": flight.FlightID,
			"number":    flight.Number,
			"operator":  flight.Operator,
			"aircraft":  flight.AircraftID,
			"departure": flight.Departure,
			"status":    flight.Status,
			"flight":    flight,
		},
		Timestamp: time.Now().UTC(),
		Source:    "flight-service",
	}

	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("Failed to marshal flight event: %v", err)
		return
	}

	msgID := fmt.Sprintf("%s-%s-%d", flight.FlightID, eventType, time.Now().UnixNano())
	if err := s.nats.PublishWithDedup(subject, data, msgID); err != nil {
		log.Printf("Failed to publish flight event: %v", err)
	} else {
		log.Printf("Published flight event: %s on subject: %s", eventType, subject)
	}
}

func (s *FlightService) publishRouteEvent(route *ontology.Route) {
	if s.nats == nil || s.nats.JetStream() == nil {
		return
	}

	subject := shared.RouteCreatedSubject(s.operator)
	event := shared.Event{
		ID:      uuid.New().String(),
		Type:    shared.EventTypeCreated,
		Subject: subject,
		Data: map[string]interface{}{
			"route_id":  route.RouteID,
			"departure": route.DepartureIdent,
			"arrival":   route.ArrivalIdent,
			"distance":  route.DistanceKm,
		},
		Timestamp: time.Now().UTC(),
		Source:    "flight-service",
	}

	data, err := json.Marshal(event)
	if err != nil {
		return
	}
	msgID := fmt.Sprintf("%s-created-%d", route.RouteID, time.Now().UnixNano())
	if err := s.nats.PublishWithDedup(subject, data, msgID); err != nil {
		log.Printf("Failed to publish route event: %v", err)
	}
}

const selectFlight = `SELECT flight_id, number, operator, departure_ident, arrival_ident,
       aircraft_id, route_id, departure, arrival, distance_km, duration_min,
       economy_fare, business_fare, first_fare, status, created_at, updated_at
  FROM flights`

func (s *FlightService) queryFlights(query string, args ...interface{}) ([]ontology.Flight, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query flights: %w", err)
	}
	defer rows.Close()

	var flights []ontology.Flight
	for rows.Next() {
		f, err := scanFlight(rows)
		if err != nil {
			return nil, err
		}
		flights = append(flights, *f)
	}
	return flights, rows.Err()
}

func scanFlight(scanner interface{ Scan(...interface{}) error }) (*ontology.Flight, error) {
	var f ontology.Flight
	var departure, arrival, createdAt, updatedAt string

	err := scanner.Scan(&f.FlightID, &f.Number, &f.Operator, &f.DepartureIdent, &f.ArrivalIdent,
		&f.AircraftID, &f.RouteID, &departure, &arrival, &f.DistanceKm, &f.DurationMin,
		&f.EconomyFare, &f.BusinessFare, &f.FirstFare, &f.Status, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan flight: %w", err)
	}

	f.Departure, _ = time.Parse(time.RFC3339, departure)
	f.Arrival, _ = time.Parse(time.RFC3339, arrival)
	f.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	f.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return &f, nil
}

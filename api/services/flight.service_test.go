package services

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skysched-api/db"
	"skysched-api/pkg/ontology"
	"skysched-api/pkg/sched"
	"skysched-api/pkg/shared"
)

// newTestService opens a fresh in-memory database seeded from the schema
// file and wires a FlightService over it with NATS disabled.
func newTestService(t *testing.T) *FlightService {
	t.Helper()

	cfg := db.DefaultConfig()
	cfg.DBPath = fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))

	svc, err := db.New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { svc.Close() })

	return NewFlightService(svc.GetDB(), nil, sched.DefaultConfig(), "SNX")
}

func addAircraft(t *testing.T, s *FlightService, registration, typeID, location string) *ontology.Aircraft {
	t.Helper()
	aircraft, err := s.fleet.CreateAircraft(&ontology.CreateAircraftRequest{
		Registration: registration,
		TypeID:       typeID,
		Location:     location,
		Status:       shared.AircraftAvailable,
	})
	require.NoError(t, err)
	return aircraft
}

func futureDeparture() time.Time {
	return time.Date(2027, 6, 1, 10, 0, 0, 0, time.UTC)
}

func asConflict(t *testing.T, err error) *ConflictError {
	t.Helper()
	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	return conflict
}

func TestCreateFlightSchedulesAndPrices(t *testing.T) {
	s := newTestService(t)
	aircraft := addAircraft(t, s, "SX-ABC", "A320", "JFK")

	flight, err := s.CreateFlight(&ontology.CreateFlightRequest{
		AircraftID:     aircraft.AircraftID,
		DepartureIdent: "jfk",
		ArrivalIdent:   "lax",
		Departure:      futureDeparture(),
	})
	require.NoError(t, err)

	assert.Equal(t, "SNX100", flight.Number)
	assert.Equal(t, "SNX", flight.Operator)
	assert.Equal(t, shared.FlightScheduled, flight.Status)
	assert.Equal(t, "JFK", flight.DepartureIdent)
	assert.Equal(t, "LAX", flight.ArrivalIdent)
	assert.NotEmpty(t, flight.FlightID)
	assert.NotEmpty(t, flight.RouteID)

	// Derived schedule: arrival is departure plus the route duration.
	assert.InDelta(t, 3975, flight.DistanceKm, 60)
	assert.Greater(t, flight.DurationMin, 0)
	wantArrival := flight.Departure.Add(time.Duration(flight.DurationMin) * time.Minute)
	assert.True(t, flight.Arrival.Equal(wantArrival))

	// Pricing: all three tiers set and ordered.
	assert.Greater(t, flight.EconomyFare, 0.0)
	assert.Greater(t, flight.BusinessFare, flight.EconomyFare)
	assert.Greater(t, flight.FirstFare, flight.BusinessFare)

	// The derived route was persisted for reuse.
	route, err := s.routes.FindByAirportsAndOperator("JFK", "LAX", "SNX")
	require.NoError(t, err)
	require.NotNil(t, route)
	assert.Equal(t, route.RouteID, flight.RouteID)

	// The aircraft left the available pool.
	updated, err := s.fleet.GetAircraft(aircraft.AircraftID)
	require.NoError(t, err)
	assert.Equal(t, shared.AircraftScheduled, updated.Status)

	// Round-trips through storage.
	stored, err := s.GetFlight(flight.FlightID)
	require.NoError(t, err)
	assert.Equal(t, flight.Number, stored.Number)
	assert.True(t, stored.Departure.Equal(flight.Departure))
}

func TestCreateFlightUnknownAircraft(t *testing.T) {
	s := newTestService(t)

	_, err := s.CreateFlight(&ontology.CreateFlightRequest{
		AircraftID:     "no-such-aircraft",
		DepartureIdent: "JFK",
		ArrivalIdent:   "LAX",
		Departure:      futureDeparture(),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestCreateFlightAircraftAlreadyCommitted(t *testing.T) {
	s := newTestService(t)
	aircraft := addAircraft(t, s, "SX-ABC", "A320", "JFK")

	_, err := s.CreateFlight(&ontology.CreateFlightRequest{
		AircraftID:     aircraft.AircraftID,
		DepartureIdent: "JFK",
		ArrivalIdent:   "LAX",
		Departure:      futureDeparture(),
	})
	require.NoError(t, err)

	// A scheduled aircraft is out of the pool even for a non-overlapping
	// slot; only edits and composed returns may keep it.
	_, err = s.CreateFlight(&ontology.CreateFlightRequest{
		AircraftID:     aircraft.AircraftID,
		DepartureIdent: "JFK",
		ArrivalIdent:   "LAX",
		Departure:      futureDeparture().AddDate(0, 0, 1),
	})
	conflict := asConflict(t, err)
	assert.Equal(t, sched.GateStatus, conflict.Decision.Gate)
	assert.NotEmpty(t, conflict.Decision.Reason)
}

func TestCreateFlightWrongLocation(t *testing.T) {
	s := newTestService(t)
	aircraft := addAircraft(t, s, "SX-ABC", "A320", "JFK")

	_, err := s.CreateFlight(&ontology.CreateFlightRequest{
		AircraftID:     aircraft.AircraftID,
		DepartureIdent: "LAX",
		ArrivalIdent:   "JFK",
		Departure:      futureDeparture(),
	})
	conflict := asConflict(t, err)
	assert.Equal(t, sched.GateLocation, conflict.Decision.Gate)
}

func TestCreateFlightBeyondRange(t *testing.T) {
	s := newTestService(t)
	// B738 range 5400 km; JFK-LHR is ~5540 km before the safety buffer.
	aircraft := addAircraft(t, s, "SX-DEF", "B738", "JFK")

	_, err := s.CreateFlight(&ontology.CreateFlightRequest{
		AircraftID:     aircraft.AircraftID,
		DepartureIdent: "JFK",
		ArrivalIdent:   "LHR",
		Departure:      futureDeparture(),
	})
	conflict := asConflict(t, err)
	assert.Equal(t, sched.GateRange, conflict.Decision.Gate)
}

func TestCreateFlightShortLeadTime(t *testing.T) {
	s := newTestService(t)
	aircraft := addAircraft(t, s, "SX-ABC", "A320", "JFK")

	_, err := s.CreateFlight(&ontology.CreateFlightRequest{
		AircraftID:     aircraft.AircraftID,
		DepartureIdent: "JFK",
		ArrivalIdent:   "LAX",
		Departure:      time.Now().UTC().Add(10 * time.Minute),
	})
	conflict := asConflict(t, err)
	assert.Equal(t, sched.GateLeadTime, conflict.Decision.Gate)
}

func TestFlightNumbersReservePairs(t *testing.T) {
	s := newTestService(t)
	first := addAircraft(t, s, "SX-ABC", "A320", "JFK")
	second := addAircraft(t, s, "SX-DEF", "A320", "JFK")

	f1, err := s.CreateFlight(&ontology.CreateFlightRequest{
		AircraftID:     first.AircraftID,
		DepartureIdent: "JFK",
		ArrivalIdent:   "LAX",
		Departure:      futureDeparture(),
	})
	require.NoError(t, err)
	assert.Equal(t, "SNX100", f1.Number)

	f2, err := s.CreateFlight(&ontology.CreateFlightRequest{
		AircraftID:     second.AircraftID,
		DepartureIdent: "JFK",
		ArrivalIdent:   "LAX",
		Departure:      futureDeparture(),
	})
	require.NoError(t, err)
	assert.Equal(t, "SNX110", f2.Number)
}

func TestFlightNumbersSkipSlotWithTakenReturn(t *testing.T) {
	s := newTestService(t)
	aircraft := addAircraft(t, s, "SX-ABC", "A320", "JFK")

	// Occupy the would-be return number of the first slot so the pair
	// 100/101 is unusable.
	blocker := &ontology.Flight{
		FlightID:       "blocker",
		Number:         "SNX101",
		Operator:       "SNX",
		DepartureIdent: "LAX",
		ArrivalIdent:   "JFK",
		AircraftID:     aircraft.AircraftID,
		RouteID:        "r-blocker",
		Departure:      futureDeparture().AddDate(0, 1, 0),
		Arrival:        futureDeparture().AddDate(0, 1, 0).Add(5 * time.Hour),
		DurationMin:    300,
		Status:         shared.FlightCancelled,
		CreatedAt:      time.Now().UTC(),
		UpdatedAt:      time.Now().UTC(),
	}
	require.NoError(t, s.Save(blocker))

	flight, err := s.CreateFlight(&ontology.CreateFlightRequest{
		AircraftID:     aircraft.AircraftID,
		DepartureIdent: "JFK",
		ArrivalIdent:   "LAX",
		Departure:      futureDeparture(),
	})
	require.NoError(t, err)
	assert.Equal(t, "SNX110", flight.Number)
}

func TestCreateRoundTrip(t *testing.T) {
	s := newTestService(t)
	aircraft := addAircraft(t, s, "SX-ABC", "A320", "JFK")

	outbound, ret, err := s.CreateRoundTrip(&ontology.CreateFlightRequest{
		AircraftID:     aircraft.AircraftID,
		DepartureIdent: "JFK",
		ArrivalIdent:   "LAX",
		Departure:      futureDeparture(),
	}, 120)
	require.NoError(t, err)
	require.NotNil(t, outbound)
	require.NotNil(t, ret)

	assert.Equal(t, "SNX100", outbound.Number)
	assert.Equal(t, "SNX101", ret.Number)
	assert.Equal(t, "LAX", ret.DepartureIdent)
	assert.Equal(t, "JFK", ret.ArrivalIdent)
	assert.Equal(t, aircraft.AircraftID, ret.AircraftID)

	wantDeparture := outbound.Arrival.Add(120 * time.Minute)
	assert.True(t, ret.Departure.Equal(wantDeparture))

	assert.InDelta(t, outbound.DistanceKm, ret.DistanceKm, 1.0)
	assert.Greater(t, ret.EconomyFare, 0.0)

	// The reversed route was synthesized and persisted.
	back, err := s.routes.FindByAirportsAndOperator("LAX", "JFK", "SNX")
	require.NoError(t, err)
	require.NotNil(t, back)
	assert.Equal(t, back.RouteID, ret.RouteID)

	// Both legs round-trip through storage.
	stored, err := s.GetFlight(ret.FlightID)
	require.NoError(t, err)
	assert.Equal(t, "SNX101", stored.Number)

	all, err := s.ListAll()
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestRescheduleFlight(t *testing.T) {
	s := newTestService(t)
	aircraft := addAircraft(t, s, "SX-ABC", "A320", "JFK")

	flight, err := s.CreateFlight(&ontology.CreateFlightRequest{
		AircraftID:     aircraft.AircraftID,
		DepartureIdent: "JFK",
		ArrivalIdent:   "LAX",
		Departure:      futureDeparture(),
	})
	require.NoError(t, err)

	// Moving within its own window is fine; the flight does not conflict
	// with itself.
	newDeparture := futureDeparture().Add(30 * time.Minute)
	moved, err := s.Reschedule(flight.FlightID, newDeparture)
	require.NoError(t, err)
	assert.True(t, moved.Departure.Equal(newDeparture))
	wantArrival := newDeparture.Add(time.Duration(moved.DurationMin) * time.Minute)
	assert.True(t, moved.Arrival.Equal(wantArrival))

	stored, err := s.GetFlight(flight.FlightID)
	require.NoError(t, err)
	assert.True(t, stored.Departure.Equal(newDeparture))
}

func TestRescheduleCancelledFlightFails(t *testing.T) {
	s := newTestService(t)
	aircraft := addAircraft(t, s, "SX-ABC", "A320", "JFK")

	flight, err := s.CreateFlight(&ontology.CreateFlightRequest{
		AircraftID:     aircraft.AircraftID,
		DepartureIdent: "JFK",
		ArrivalIdent:   "LAX",
		Departure:      futureDeparture(),
	})
	require.NoError(t, err)

	_, err = s.Cancel(flight.FlightID)
	require.NoError(t, err)

	_, err = s.Reschedule(flight.FlightID, futureDeparture().AddDate(0, 0, 1))
	require.Error(t, err)
	var conflict *ConflictError
	assert.False(t, errors.As(err, &conflict))
}

func TestCancelFlightReleasesAircraft(t *testing.T) {
	s := newTestService(t)
	aircraft := addAircraft(t, s, "SX-ABC", "A320", "JFK")

	flight, err := s.CreateFlight(&ontology.CreateFlightRequest{
		AircraftID:     aircraft.AircraftID,
		DepartureIdent: "JFK",
		ArrivalIdent:   "LAX",
		Departure:      futureDeparture(),
	})
	require.NoError(t, err)

	cancelled, err := s.Cancel(flight.FlightID)
	require.NoError(t, err)
	assert.Equal(t, shared.FlightCancelled, cancelled.Status)

	// With nothing left on its schedule the aircraft returns to the pool.
	released, err := s.fleet.GetAircraft(aircraft.AircraftID)
	require.NoError(t, err)
	assert.Equal(t, shared.AircraftAvailable, released.Status)

	// Its number stays burned; the next flight takes the next free slot.
	next, err := s.CreateFlight(&ontology.CreateFlightRequest{
		AircraftID:     aircraft.AircraftID,
		DepartureIdent: "JFK",
		ArrivalIdent:   "LAX",
		Departure:      futureDeparture().AddDate(0, 0, 1),
	})
	require.NoError(t, err)
	assert.Equal(t, "SNX110", next.Number)

	// Cancelling twice is an error.
	_, err = s.Cancel(flight.FlightID)
	require.Error(t, err)
}

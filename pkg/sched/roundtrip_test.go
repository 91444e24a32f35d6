package sched

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skysched-api/pkg/ontology"
	"skysched-api/pkg/shared"
)

var (
	jfkAirport = ontology.Airport{
		AirportID: "ap-jfk", Ident: "JFK", Name: "John F. Kennedy Intl",
		Country: "US", Position: jfk,
	}
	lhrAirport = ontology.Airport{
		AirportID: "ap-lhr", Ident: "LHR", Name: "London Heathrow",
		Country: "GB", Position: lhr,
	}
)

func outboundFlight(t *testing.T) *ontology.Flight {
	t.Helper()
	dep := mustTime(t, "2026-09-10T10:00:00Z")
	return &ontology.Flight{
		FlightID: "f-out", Number: "SNX100", Operator: "SNX",
		DepartureIdent: "JFK", ArrivalIdent: "LHR",
		AircraftID: testAircraft.AircraftID, RouteID: "route-out",
		Departure: dep, Arrival: dep.Add(400 * time.Minute),
		DistanceKm: 5540, DurationMin: 400,
		Status: shared.FlightScheduled,
	}
}

func returnRequest(t *testing.T) ReturnRequest {
	t.Helper()
	longHaul := testType
	longHaul.TypeID = "B789"
	longHaul.Name = "Boeing 787-9"
	longHaul.RangeKm = 14000
	return ReturnRequest{
		Outbound:         outboundFlight(t),
		Aircraft:         testAircraft,
		Type:             longHaul,
		DepartureAirport: jfkAirport,
		ArrivalAirport:   lhrAirport,
	}
}

func newComposer(flights *memFlights, routes *memRoutes) *RoundTripComposer {
	c := NewRoundTripComposer(DefaultConfig(), flights, routes)
	c.checker.now = func() time.Time {
		ts, _ := time.Parse(time.RFC3339, "2026-09-10T06:00:00Z")
		return ts
	}
	return c
}

func TestComposeReturnFlight(t *testing.T) {
	flights := &memFlights{flights: []ontology.Flight{*outboundFlight(t)}}
	routes := &memRoutes{}
	composer := newComposer(flights, routes)

	ret, decision, err := composer.Compose(returnRequest(t))
	require.NoError(t, err)
	require.True(t, decision.Available, decision.Reason)
	require.NotNil(t, ret)

	assert.Equal(t, "SNX101", ret.Number)
	assert.Equal(t, "LHR", ret.DepartureIdent)
	assert.Equal(t, "JFK", ret.ArrivalIdent)
	assert.Equal(t, shared.FlightScheduled, ret.Status)

	// default turnaround of 90 minutes after the outbound arrival
	out := outboundFlight(t)
	assert.Equal(t, out.Arrival.Add(90*time.Minute), ret.Departure)
	assert.Equal(t, ret.Departure.Add(time.Duration(ret.DurationMin)*time.Minute), ret.Arrival)

	// reversed route synthesized and persisted, distance symmetric
	require.Len(t, routes.routes, 1)
	assert.Equal(t, "LHR", routes.routes[0].DepartureIdent)
	assert.InDelta(t, out.DistanceKm, ret.DistanceKm, 1.0)
	assert.Positive(t, ret.DurationMin)
	assert.Greater(t, ret.BusinessFare, ret.EconomyFare)
	assert.Greater(t, ret.FirstFare, ret.BusinessFare)
}

func TestComposeReusesExistingReversedRoute(t *testing.T) {
	flights := &memFlights{flights: []ontology.Flight{*outboundFlight(t)}}
	routes := &memRoutes{routes: []ontology.Route{{
		RouteID: "route-back", DepartureIdent: "LHR", ArrivalIdent: "JFK",
		Operator: "SNX", DistanceKm: 5540, DurationMin: 405,
	}}}
	composer := newComposer(flights, routes)

	ret, decision, err := composer.Compose(returnRequest(t))
	require.NoError(t, err)
	require.True(t, decision.Available, decision.Reason)
	assert.Equal(t, "route-back", ret.RouteID)
	assert.Equal(t, 405, ret.DurationMin)
	assert.Len(t, routes.routes, 1) // nothing new persisted
}

func TestComposeAbortsWhenReturnNumberTaken(t *testing.T) {
	flights := &memFlights{flights: []ontology.Flight{
		*outboundFlight(t),
		{FlightID: "f-x", Number: "SNX101", Operator: "SNX", AircraftID: "ac-9"},
	}}
	routes := &memRoutes{}
	composer := newComposer(flights, routes)

	ret, decision, err := composer.Compose(returnRequest(t))
	require.NoError(t, err)
	assert.Nil(t, ret)
	assert.False(t, decision.Available)
	assert.Equal(t, GateNumber, decision.Gate)
	assert.Contains(t, decision.Reason, "SNX101")
	assert.Empty(t, routes.routes) // aborted before route synthesis
}

func TestComposeClampsTurnaround(t *testing.T) {
	flights := &memFlights{flights: []ontology.Flight{*outboundFlight(t)}}
	composer := newComposer(flights, &memRoutes{})
	out := outboundFlight(t)

	req := returnRequest(t)
	req.TurnaroundMinutes = 10 // below the 60 minute policy floor
	ret, decision, err := composer.Compose(req)
	require.NoError(t, err)
	require.True(t, decision.Available, decision.Reason)
	assert.Equal(t, out.Arrival.Add(60*time.Minute), ret.Departure)

	flights = &memFlights{flights: []ontology.Flight{*outboundFlight(t)}}
	composer = newComposer(flights, &memRoutes{})
	req.TurnaroundMinutes = 600 // above the 240 minute ceiling
	ret, decision, err = composer.Compose(req)
	require.NoError(t, err)
	require.True(t, decision.Available, decision.Reason)
	assert.Equal(t, out.Arrival.Add(240*time.Minute), ret.Departure)
}

func TestComposeRejectsOverlappingReturnWindow(t *testing.T) {
	// another commitment for the same aircraft right where the return would
	// sit
	blocker := flightWithWindow(t, "f-block", "2026-09-10T18:00:00Z", "2026-09-10T23:00:00Z")
	blocker.Number = "SNX300"
	flights := &memFlights{flights: []ontology.Flight{*outboundFlight(t), blocker}}
	composer := newComposer(flights, &memRoutes{})

	ret, decision, err := composer.Compose(returnRequest(t))
	require.NoError(t, err)
	assert.Nil(t, ret)
	assert.False(t, decision.Available)
	assert.Equal(t, GateOverlap, decision.Gate)
}

func TestComposeFlyingAircraftRejected(t *testing.T) {
	flights := &memFlights{flights: []ontology.Flight{*outboundFlight(t)}}
	composer := newComposer(flights, &memRoutes{})

	req := returnRequest(t)
	req.Aircraft.Status = shared.AircraftFlying
	ret, decision, err := composer.Compose(req)
	require.NoError(t, err)
	assert.Nil(t, ret)
	assert.Equal(t, GateStatus, decision.Gate)
}

func TestComposeInvalidOutbound(t *testing.T) {
	composer := newComposer(&memFlights{}, &memRoutes{})

	req := returnRequest(t)
	req.Outbound = &ontology.Flight{Number: "SNX100", Operator: "SNX"}
	_, decision, err := composer.Compose(req)
	require.NoError(t, err)
	assert.Equal(t, GateInput, decision.Gate)

	req = returnRequest(t)
	req.Outbound.Number = "not-a-number"
	_, decision, err = composer.Compose(req)
	require.NoError(t, err)
	assert.Equal(t, GateInput, decision.Gate)
}

func TestComposeRepositoryFailureAborts(t *testing.T) {
	flights := &memFlights{flights: []ontology.Flight{*outboundFlight(t)}}
	routes := &memRoutes{err: errors.New("route store down")}
	composer := newComposer(flights, routes)

	ret, _, err := composer.Compose(returnRequest(t))
	require.Error(t, err)
	assert.Nil(t, ret)
	assert.Contains(t, err.Error(), "route store down")
}

package shared

import "fmt"

// NATS Subject patterns
const (
	// Base subject prefix
	SubjectPrefix = "skysched"

	// Flight subjects
	SubjectFlights           = "skysched.flights"
	SubjectFlightsAll        = "skysched.flights.>"
	SubjectFlightCreated     = "skysched.flights.%s.created"     // operator
	SubjectFlightRescheduled = "skysched.flights.%s.rescheduled" // operator
	SubjectFlightCancelled   = "skysched.flights.%s.cancelled"   // operator
	SubjectFlightReturn      = "skysched.flights.%s.return"      // operator

	// Route subjects
	SubjectRoutes       = "skysched.routes"
	SubjectRoutesAll    = "skysched.routes.>"
	SubjectRouteCreated = "skysched.routes.%s.created" // operator

	// Event subjects
	SubjectEvents    = "skysched.events"
	SubjectEventsAll = "skysched.events.>"

	// System subjects
	SubjectSystemHealth = "skysched.system.health"
	SubjectSystemAlerts = "skysched.system.alerts"
	SubjectAlertsAll    = "skysched.system.alerts.>"
)

// Stream names
const (
	StreamFlights = "SKYSCHED_FLIGHTS"
	StreamRoutes  = "SKYSCHED_ROUTES"
	StreamEvents  = "SKYSCHED_EVENTS"
	StreamAlerts  = "SKYSCHED_ALERTS"
)

// Consumer names
const (
	ConsumerFlightProcessor = "flight-processor"
	ConsumerRouteProcessor  = "route-processor"
	ConsumerEventProcessor  = "event-processor"
	ConsumerAlertProcessor  = "alert-processor"
)

// Helper functions to generate subjects
func FlightCreatedSubject(operator string) string {
	return fmt.Sprintf(SubjectFlightCreated, operator)
}

func FlightRescheduledSubject(operator string) string {
	return fmt.Sprintf(SubjectFlightRescheduled, operator)
}

func FlightCancelledSubject(operator string) string {
	return fmt.Sprintf(SubjectFlightCancelled, operator)
}

func FlightReturnSubject(operator string) string {
	return fmt.Sprintf(SubjectFlightReturn, operator)
}

func RouteCreatedSubject(operator string) string {
	return fmt.Sprintf(SubjectRouteCreated, operator)
}

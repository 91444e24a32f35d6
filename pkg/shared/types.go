package shared

import (
	"time"
)

// API Response types
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *Error      `json:"error,omitempty"`
}

type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// Event types
type Event struct {
	ID        string                 `json:"id"`
	Type      string                 `json:"type"`
	Subject   string                 `json:"subject"`
	Data      map[string]interface{} `json:"data"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	Source    string                 `json:"source"`
}

// Health check
type HealthStatus struct {
	Status    string            `json:"status"`
	Service   string            `json:"service"`
	Version   string            `json:"version,omitempty"`
	Uptime    time.Duration     `json:"uptime,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
	Details   map[string]string `json:"details,omitempty"`
}

// Constants
const (
	// Aircraft Status
	AircraftAvailable = "available"
	AircraftScheduled = "scheduled"
	AircraftFlying    = "flying"
	AircraftUnknown   = "unknown"

	// Flight Status
	FlightScheduled = "scheduled"
	FlightDeparted  = "departed"
	FlightCompleted = "completed"
	FlightCancelled = "cancelled"

	// Fare Classes
	FareEconomy  = "economy"
	FareBusiness = "business"
	FareFirst    = "first"

	// Event Types
	EventTypeCreated     = "created"
	EventTypeRescheduled = "rescheduled"
	EventTypeCancelled   = "cancelled"
	EventTypeReturn      = "return_composed"
	EventTypeAlert       = "alert"
)

// TerminalFlightStatus reports whether a flight status no longer occupies
// its aircraft; terminal flights are ignored by conflict checks.
func TerminalFlightStatus(status string) bool {
	return status == FlightCompleted || status == FlightCancelled
}

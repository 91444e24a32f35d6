package sched

import (
	"fmt"
	"strings"
	"time"

	"skysched-api/pkg/ontology"
	"skysched-api/pkg/shared"
)

// Gate identifies which eligibility check rejected a candidate, so a
// presentation layer can explain the rejection without re-deriving it.
type Gate string

const (
	GateInput    Gate = "input"
	GateStatus   Gate = "status"
	GateLocation Gate = "location"
	GateRange    Gate = "range"
	GateLeadTime Gate = "lead_time"
	GateOverlap  Gate = "overlap"
)

// Decision is the outcome of an availability check. Rejections are expected,
// frequent states rather than errors; Gate and Reason carry the detail.
type Decision struct {
	Available bool   `json:"available"`
	Gate      Gate   `json:"gate,omitempty"`
	Reason    string `json:"reason,omitempty"`
}

func reject(gate Gate, format string, args ...interface{}) Decision {
	return Decision{Gate: gate, Reason: fmt.Sprintf(format, args...)}
}

// Candidate is a proposed assignment of one aircraft to one flight.
// ExcludeFlightID names an existing flight being edited, which is skipped
// during the overlap scan and relaxes the status/location gates for the
// aircraft already assigned to it.
type Candidate struct {
	Aircraft        ontology.Aircraft
	Type            ontology.AircraftType
	DepartureIdent  string
	Departure       time.Time
	DistanceKm      float64
	FlightMinutes   int
	ExcludeFlightID string
}

// AvailabilityChecker decides conflict-free placement of a candidate window
// on an aircraft's schedule. It is a pure read-and-decide operation; the
// caller persists the outcome under the FlightRepository locking contract.
type AvailabilityChecker struct {
	cfg     Config
	blocks  BlockTimeCalculator
	flights FlightRepository
	now     func() time.Time
}

func NewAvailabilityChecker(cfg Config, flights FlightRepository) *AvailabilityChecker {
	return &AvailabilityChecker{
		cfg:     cfg,
		blocks:  NewBlockTimeCalculator(cfg),
		flights: flights,
		now:     time.Now,
	}
}

// Check runs the eligibility gates in order, short-circuiting on the first
// failure: aircraft status, current location, range with safety buffer,
// minimum lead time, then pairwise half-open overlap against every
// non-terminal flight already assigned to the aircraft. The returned error
// is non-nil only for repository failures.
func (c *AvailabilityChecker) Check(cand Candidate) (Decision, error) {
	window, ok := c.blocks.BlockWindow(cand.Departure, cand.FlightMinutes)
	if !ok {
		return reject(GateInput, "cannot derive a block window from departure %v and duration %d min",
			cand.Departure, cand.FlightMinutes), nil
	}

	existing, err := c.flights.ListByAircraft(cand.Aircraft.AircraftID)
	if err != nil {
		return Decision{}, fmt.Errorf("failed to list flights for aircraft %s: %w", cand.Aircraft.AircraftID, err)
	}

	// An edit of an existing flight may keep its own aircraft even though
	// that aircraft is no longer marked available or parked at the origin.
	editingOwn := false
	if cand.ExcludeFlightID != "" {
		for _, f := range existing {
			if f.FlightID == cand.ExcludeFlightID {
				editingOwn = true
				break
			}
		}
	}

	if !editingOwn {
		if cand.Aircraft.Status != shared.AircraftAvailable {
			return reject(GateStatus, "aircraft %s status is %q, not %q",
				cand.Aircraft.Registration, cand.Aircraft.Status, shared.AircraftAvailable), nil
		}
		if !strings.EqualFold(strings.TrimSpace(cand.Aircraft.Location), strings.TrimSpace(cand.DepartureIdent)) {
			return reject(GateLocation, "aircraft %s is at %s, flight departs from %s",
				cand.Aircraft.Registration, cand.Aircraft.Location, cand.DepartureIdent), nil
		}
	}

	// An unset range is missing data, not unlimited capability, and is
	// rejected the same way an absent country classifies as international.
	if cand.Type.RangeKm <= 0 {
		return reject(GateRange, "aircraft type %s has no range data", cand.Type.Name), nil
	}
	required := cand.DistanceKm * c.cfg.RangeSafetyFactor
	if required > cand.Type.RangeKm {
		return reject(GateRange, "route needs %.0f km with safety buffer, %s range is %.0f km",
			required, cand.Type.Name, cand.Type.RangeKm), nil
	}

	lead := time.Duration(c.cfg.MinLeadTimeMinutes) * time.Minute
	if cand.Departure.Before(c.now().Add(lead)) {
		return reject(GateLeadTime, "departure must be at least %d minutes from now",
			c.cfg.MinLeadTimeMinutes), nil
	}

	for _, f := range existing {
		if f.FlightID == cand.ExcludeFlightID {
			continue
		}
		if shared.TerminalFlightStatus(f.Status) {
			continue
		}
		// Block windows are always re-derived from the flight's departure
		// and cached duration; they are never stored fields that can drift.
		other, ok := c.blocks.BlockWindow(f.Departure, f.DurationMin)
		if !ok {
			continue
		}
		if window.Overlaps(other) {
			return reject(GateOverlap, "aircraft %s is committed to flight %s between %s and %s",
				cand.Aircraft.Registration, f.Number,
				other.Start.Format(time.RFC3339), other.End.Format(time.RFC3339)), nil
		}
	}

	return Decision{Available: true}, nil
}

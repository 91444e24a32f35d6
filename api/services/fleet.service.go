package services

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"skysched-api/pkg/ontology"
	"skysched-api/pkg/shared"
)

// FleetService owns the reference data the scheduler reads: airports,
// aircraft types and the aircraft themselves.
type FleetService struct {
	db *sql.DB
}

func NewFleetService(db *sql.DB) *FleetService {
	return &FleetService{db: db}
}

func (s *FleetService) ListAirports() ([]ontology.Airport, error) {
	rows, err := s.db.Query(
		`SELECT airport_id, ident, name, city, country, latitude, longitude, created_at
		 FROM airports ORDER BY ident`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query airports: %w", err)
	}
	defer rows.Close()

	var airports []ontology.Airport
	for rows.Next() {
		ap, err := scanAirport(rows)
		if err != nil {
			return nil, err
		}
		airports = append(airports, *ap)
	}
	return airports, rows.Err()
}

func (s *FleetService) GetAirport(ident string) (*ontology.Airport, error) {
	row := s.db.QueryRow(
		`SELECT airport_id, ident, name, city, country, latitude, longitude, created_at
		 FROM airports WHERE ident = ?`,
		strings.ToUpper(strings.TrimSpace(ident)),
	)
	ap, err := scanAirport(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("airport not found")
	}
	if err != nil {
		return nil, err
	}
	return ap, nil
}

func (s *FleetService) CreateAirport(req *ontology.CreateAirportRequest) (*ontology.Airport, error) {
	ap := &ontology.Airport{
		AirportID: uuid.New().String(),
		Ident:     strings.ToUpper(strings.TrimSpace(req.Ident)),
		Name:      req.Name,
		City:      req.City,
		Country:   req.Country,
		Position:  req.Position,
		CreatedAt: time.Now().UTC(),
	}

	_, err := s.db.Exec(
		`INSERT INTO airports (airport_id, ident, name, city, country, latitude, longitude, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		ap.AirportID, ap.Ident, ap.Name, ap.City, ap.Country,
		ap.Position.Latitude, ap.Position.Longitude, ap.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create airport: %w", err)
	}
	return ap, nil
}

func (s *FleetService) GetAircraftType(typeID string) (*ontology.AircraftType, error) {
	row := s.db.QueryRow(
		`SELECT type_id, name, pax_capacity, cargo_kg, range_km, cruise_speed_kmh, cost_per_hour
		 FROM aircraft_types WHERE type_id = ?`, typeID,
	)
	var t ontology.AircraftType
	err := row.Scan(&t.TypeID, &t.Name, &t.PaxCapacity, &t.CargoKg, &t.RangeKm, &t.CruiseSpeedKmh, &t.CostPerHour)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("aircraft type not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan aircraft type: %w", err)
	}
	return &t, nil
}

func (s *FleetService) ListAircraft() ([]ontology.Aircraft, error) {
	rows, err := s.db.Query(
		`SELECT aircraft_id, registration, type_id, location, status, created_at, updated_at
		 FROM aircraft ORDER BY registration`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query aircraft: %w", err)
	}
	defer rows.Close()

	var fleet []ontology.Aircraft
	for rows.Next() {
		ac, err := scanAircraft(rows)
		if err != nil {
			return nil, err
		}
		fleet = append(fleet, *ac)
	}
	return fleet, rows.Err()
}

func (s *FleetService) GetAircraft(aircraftID string) (*ontology.Aircraft, error) {
	row := s.db.QueryRow(
		`SELECT aircraft_id, registration, type_id, location, status, created_at, updated_at
		 FROM aircraft WHERE aircraft_id = ?`, aircraftID,
	)
	ac, err := scanAircraft(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("aircraft not found")
	}
	if err != nil {
		return nil, err
	}
	return ac, nil
}

func (s *FleetService) CreateAircraft(req *ontology.CreateAircraftRequest) (*ontology.Aircraft, error) {
	if _, err := s.GetAircraftType(req.TypeID); err != nil {
		return nil, err
	}

	status := shared.AircraftUnknown
	if req.Status != "" {
		status = req.Status
	}

	now := time.Now().UTC()
	ac := &ontology.Aircraft{
		AircraftID:   uuid.New().String(),
		Registration: strings.ToUpper(strings.TrimSpace(req.Registration)),
		TypeID:       req.TypeID,
		Location:     strings.ToUpper(strings.TrimSpace(req.Location)),
		Status:       status,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	_, err := s.db.Exec(
		`INSERT INTO aircraft (aircraft_id, registration, type_id, location, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		ac.AircraftID, ac.Registration, ac.TypeID, ac.Location, ac.Status,
		now.Format(time.RFC3339), now.Format(time.RFC3339),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create aircraft: %w", err)
	}
	return ac, nil
}

// UpdateAircraftStatus records a lifecycle transition (and the new location
// when the aircraft moved).
func (s *FleetService) UpdateAircraftStatus(aircraftID, status, location string) error {
	query := "UPDATE aircraft SET status = ?, updated_at = ?"
	args := []interface{}{status, time.Now().UTC().Format(time.RFC3339)}
	if location != "" {
		query += ", location = ?"
		args = append(args, strings.ToUpper(strings.TrimSpace(location)))
	}
	query += " WHERE aircraft_id = ?"
	args = append(args, aircraftID)

	result, err := s.db.Exec(query, args...)
	if err != nil {
		return fmt.Errorf("failed to update aircraft: %w", err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("aircraft not found")
	}
	return nil
}

func scanAirport(scanner interface{ Scan(...interface{}) error }) (*ontology.Airport, error) {
	var ap ontology.Airport
	var city, country sql.NullString
	var createdAt string

	err := scanner.Scan(&ap.AirportID, &ap.Ident, &ap.Name, &city, &country,
		&ap.Position.Latitude, &ap.Position.Longitude, &createdAt)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan airport: %w", err)
	}

	ap.City = city.String
	ap.Country = country.String
	ap.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &ap, nil
}

func scanAircraft(scanner interface{ Scan(...interface{}) error }) (*ontology.Aircraft, error) {
	var ac ontology.Aircraft
	var createdAt, updatedAt string

	err := scanner.Scan(&ac.AircraftID, &ac.Registration, &ac.TypeID, &ac.Location, &ac.Status, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan aircraft: %w", err)
	}

	ac.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	ac.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return &ac, nil
}

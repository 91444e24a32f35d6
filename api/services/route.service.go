package services

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"skysched-api/pkg/ontology"
)

// RouteService persists directed routes and implements sched.RouteRepository.
type RouteService struct {
	db *sql.DB
}

func NewRouteService(db *sql.DB) *RouteService {
	return &RouteService{db: db}
}

func (s *RouteService) ListRoutes(operator string) ([]ontology.Route, error) {
	rows, err := s.db.Query(
		`SELECT route_id, departure_ident, arrival_ident, operator, distance_km, duration_min, created_at
		 FROM routes WHERE operator = ? ORDER BY departure_ident, arrival_ident`, operator,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query routes: %w", err)
	}
	defer rows.Close()

	var routes []ontology.Route
	for rows.Next() {
		r, err := scanRoute(rows)
		if err != nil {
			return nil, err
		}
		routes = append(routes, *r)
	}
	return routes, rows.Err()
}

// FindByAirportsAndOperator returns the directed route for an airport pair,
// or (nil, nil) when none exists. A->B and B->A are distinct rows.
func (s *RouteService) FindByAirportsAndOperator(departureIdent, arrivalIdent, operator string) (*ontology.Route, error) {
	row := s.db.QueryRow(
		`SELECT route_id, departure_ident, arrival_ident, operator, distance_km, duration_min, created_at
		 FROM routes WHERE departure_ident = ? AND arrival_ident = ? AND operator = ?`,
		strings.ToUpper(strings.TrimSpace(departureIdent)),
		strings.ToUpper(strings.TrimSpace(arrivalIdent)),
		operator,
	)
	r, err := scanRoute(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return r, nil
}

// Save persists a route, assigning an identity when the caller left it
// blank (the composer synthesizes routes without IDs).
func (s *RouteService) Save(route *ontology.Route) error {
	if route.RouteID == "" {
		route.RouteID = uuid.New().String()
	}
	if route.CreatedAt.IsZero() {
		route.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.Exec(
		`INSERT INTO routes (route_id, departure_ident, arrival_ident, operator, distance_km, duration_min, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		route.RouteID, route.DepartureIdent, route.ArrivalIdent, route.Operator,
		route.DistanceKm, route.DurationMin, route.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to save route: %w", err)
	}
	return nil
}

func scanRoute(scanner interface{ Scan(...interface{}) error }) (*ontology.Route, error) {
	var r ontology.Route
	var createdAt string

	err := scanner.Scan(&r.RouteID, &r.DepartureIdent, &r.ArrivalIdent, &r.Operator,
		&r.DistanceKm, &r.DurationMin, &createdAt)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan route: %w", err)
	}

	r.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &r, nil
}

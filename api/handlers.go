package api

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"skysched-api/api/middleware"
	"skysched-api/api/services"
	"skysched-api/pkg/ontology"
	"skysched-api/pkg/sched"
	embeddednats "skysched-api/pkg/services/embedded-nats"
	"skysched-api/pkg/shared"
)

type Handlers struct {
	fleetService  *services.FleetService
	routeService  *services.RouteService
	flightService *services.FlightService
}

func NewHandlers(db *sql.DB, nats *embeddednats.EmbeddedNATS, cfg sched.Config, operator string) *Handlers {
	return &Handlers{
		fleetService:  services.NewFleetService(db),
		routeService:  services.NewRouteService(db),
		flightService: services.NewFlightService(db, nats, cfg, operator),
	}
}

// Airport handlers
func (h *Handlers) CreateAirport(w http.ResponseWriter, r *http.Request) {
	var req ontology.CreateAirportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(w, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	airport, err := h.fleetService.CreateAirport(&req)
	if err != nil {
		sendError(w, http.StatusInternalServerError, "CREATE_FAILED", err.Error())
		return
	}

	sendSuccess(w, http.StatusCreated, airport)
}

func (h *Handlers) ListAirports(w http.ResponseWriter, r *http.Request) {
	airports, err := h.fleetService.ListAirports()
	if err != nil {
		sendError(w, http.StatusInternalServerError, "LIST_FAILED", err.Error())
		return
	}

	sendSuccess(w, http.StatusOK, airports)
}

func (h *Handlers) GetAirport(w http.ResponseWriter, r *http.Request) {
	ident := chi.URLParam(r, "ident")

	airport, err := h.fleetService.GetAirport(ident)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			sendError(w, http.StatusNotFound, "NOT_FOUND", err.Error())
		} else {
			sendError(w, http.StatusInternalServerError, "GET_FAILED", err.Error())
		}
		return
	}

	sendSuccess(w, http.StatusOK, airport)
}

// Aircraft handlers
func (h *Handlers) CreateAircraft(w http.ResponseWriter, r *http.Request) {
	var req ontology.CreateAircraftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(w, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	aircraft, err := h.fleetService.CreateAircraft(&req)
	if err != nil {
		sendError(w, http.StatusInternalServerError, "CREATE_FAILED", err.Error())
		return
	}

	sendSuccess(w, http.StatusCreated, aircraft)
}

func (h *Handlers) ListAircraft(w http.ResponseWriter, r *http.Request) {
	aircraft, err := h.fleetService.ListAircraft()
	if err != nil {
		sendError(w, http.StatusInternalServerError, "LIST_FAILED", err.Error())
		return
	}

	sendSuccess(w, http.StatusOK, aircraft)
}

func (h *Handlers) GetAircraft(w http.ResponseWriter, r *http.Request) {
	aircraftID := chi.URLParam(r, "aircraftID")

	aircraft, err := h.fleetService.GetAircraft(aircraftID)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			sendError(w, http.StatusNotFound, "NOT_FOUND", err.Error())
		} else {
			sendError(w, http.StatusInternalServerError, "GET_FAILED", err.Error())
		}
		return
	}

	sendSuccess(w, http.StatusOK, aircraft)
}

// Route handlers
func (h *Handlers) ListRoutes(w http.ResponseWriter, r *http.Request) {
	routes, err := h.routeService.ListRoutes(h.flightService.Operator())
	if err != nil {
		sendError(w, http.StatusInternalServerError, "LIST_FAILED", err.Error())
		return
	}

	sendSuccess(w, http.StatusOK, routes)
}

// Flight handlers
func (h *Handlers) CreateFlight(w http.ResponseWriter, r *http.Request) {
	var req ontology.CreateFlightRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(w, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	flight, err := h.flightService.CreateFlight(&req)
	if err != nil {
		sendFlightError(w, "CREATE_FAILED", err)
		return
	}

	sendSuccess(w, http.StatusCreated, flight)
}

func (h *Handlers) CreateRoundTrip(w http.ResponseWriter, r *http.Request) {
	var req ontology.CreateRoundTripRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(w, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	outbound, ret, err := h.flightService.CreateRoundTrip(&req.CreateFlightRequest, req.TurnaroundMinutes)
	if err != nil {
		// The outbound may have committed before the return was rejected.
		// Report both so the caller is not left guessing.
		if outbound != nil {
			sendPartialRoundTrip(w, outbound, err)
			return
		}
		sendFlightError(w, "CREATE_FAILED", err)
		return
	}

	sendSuccess(w, http.StatusCreated, map[string]interface{}{
		"outbound": outbound,
		"return":   ret,
	})
}

func (h *Handlers) ListFlights(w http.ResponseWriter, r *http.Request) {
	flights, err := h.flightService.ListAll()
	if err != nil {
		sendError(w, http.StatusInternalServerError, "LIST_FAILED", err.Error())
		return
	}

	sendSuccess(w, http.StatusOK, flights)
}

func (h *Handlers) GetFlight(w http.ResponseWriter, r *http.Request) {
	flightID := chi.URLParam(r, "flightID")

	flight, err := h.flightService.GetFlight(flightID)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			sendError(w, http.StatusNotFound, "NOT_FOUND", err.Error())
		} else {
			sendError(w, http.StatusInternalServerError, "GET_FAILED", err.Error())
		}
		return
	}

	sendSuccess(w, http.StatusOK, flight)
}

func (h *Handlers) RescheduleFlight(w http.ResponseWriter, r *http.Request) {
	flightID := chi.URLParam(r, "flightID")

	var req ontology.RescheduleFlightRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(w, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	flight, err := h.flightService.Reschedule(flightID, req.Departure)
	if err != nil {
		sendFlightError(w, "RESCHEDULE_FAILED", err)
		return
	}

	sendSuccess(w, http.StatusOK, flight)
}

func (h *Handlers) CancelFlight(w http.ResponseWriter, r *http.Request) {
	flightID := chi.URLParam(r, "flightID")

	flight, err := h.flightService.Cancel(flightID)
	if err != nil {
		sendFlightError(w, "CANCEL_FAILED", err)
		return
	}

	sendSuccess(w, http.StatusOK, flight)
}

// Health check
func (h *Handlers) HealthCheck(nats *embeddednats.EmbeddedNATS, db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		health := shared.HealthStatus{
			Status:    "healthy",
			Service:   "skysched-api",
			Timestamp: time.Now(),
			Details:   make(map[string]string),
		}

		if err := db.Ping(); err != nil {
			health.Status = "unhealthy"
			health.Details["database"] = "unhealthy: " + err.Error()
		} else {
			health.Details["database"] = "healthy"
		}

		if err := nats.HealthCheck(); err != nil {
			health.Status = "unhealthy"
			health.Details["nats"] = "unhealthy: " + err.Error()
		} else {
			health.Details["nats"] = "healthy"
		}

		statusCode := http.StatusOK
		if health.Status == "unhealthy" {
			statusCode = http.StatusServiceUnavailable
		}

		sendSuccess(w, statusCode, health)
	}
}

// Helper functions
func sendSuccess(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	response := shared.Response{
		Success: true,
		Data:    data,
	}

	json.NewEncoder(w).Encode(response)
}

func sendError(w http.ResponseWriter, statusCode int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	response := shared.Response{
		Success: false,
		Error: &shared.Error{
			Code:    code,
			Message: message,
		},
	}

	json.NewEncoder(w).Encode(response)
}

// sendFlightError maps scheduling rejections to 409 with the gate that
// refused the flight as the error code, missing references to 404, and
// everything else to 500.
func sendFlightError(w http.ResponseWriter, fallbackCode string, err error) {
	var conflict *services.ConflictError
	if errors.As(err, &conflict) {
		code := "SCHEDULE_" + strings.ToUpper(string(conflict.Decision.Gate))
		sendError(w, http.StatusConflict, code, conflict.Decision.Reason)
		return
	}
	if strings.Contains(err.Error(), "not found") {
		sendError(w, http.StatusNotFound, "NOT_FOUND", err.Error())
		return
	}
	sendError(w, http.StatusInternalServerError, fallbackCode, err.Error())
}

func sendPartialRoundTrip(w http.ResponseWriter, outbound *ontology.Flight, err error) {
	w.Header().Set("Content-Type", "application/json")

	var conflict *services.ConflictError
	code := "RETURN_FAILED"
	status := http.StatusInternalServerError
	if errors.As(err, &conflict) {
		code = "SCHEDULE_" + strings.ToUpper(string(conflict.Decision.Gate))
		status = http.StatusConflict
	}
	w.WriteHeader(status)

	response := shared.Response{
		Success: false,
		Data: map[string]interface{}{
			"outbound": outbound,
		},
		Error: &shared.Error{
			Code:    code,
			Message: err.Error(),
		},
	}

	json.NewEncoder(w).Encode(response)
}

// Router wires all API routes behind the shared middleware stack.
func (h *Handlers) Router(nats *embeddednats.EmbeddedNATS, db *sql.DB) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestLogger)
	r.Use(middleware.CORS)

	// Health check (no auth required)
	r.Get("/health", h.HealthCheck(nats, db))

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.BearerAuth)

		r.Get("/airports", h.ListAirports)
		r.Post("/airports", h.CreateAirport)
		r.Get("/airports/{ident}", h.GetAirport)

		r.Get("/aircraft", h.ListAircraft)
		r.Post("/aircraft", h.CreateAircraft)
		r.Get("/aircraft/{aircraftID}", h.GetAircraft)

		r.Get("/routes", h.ListRoutes)

		r.Get("/flights", h.ListFlights)
		r.Post("/flights", h.CreateFlight)
		r.Post("/flights/roundtrip", h.CreateRoundTrip)
		r.Get("/flights/{flightID}", h.GetFlight)
		r.Put("/flights/{flightID}/reschedule", h.RescheduleFlight)
		r.Delete("/flights/{flightID}", h.CancelFlight)
	})

	return r
}

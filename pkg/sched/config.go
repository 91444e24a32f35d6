package sched

import (
	"os"
	"strconv"
)

// Config carries the operational policy every calculator works from. It is
// passed explicitly rather than read from a global so two operators with
// different policies can share a process, and so tests stay deterministic.
type Config struct {
	BoardingMinutes       int     // pre-departure margin of the block window
	PostArrivalMinutes    int     // post-arrival margin of the block window
	MinTurnaroundMinutes  int     // policy floor between arrival and next departure
	MaxTurnaroundMinutes  int
	TurnaroundMinutes     int     // default gap used when composing a return flight
	MinLeadTimeMinutes    int     // minimum gap between "now" and departure at creation
	RangeSafetyFactor     float64 // multiplier on route distance vs. aircraft range
	RatePerKm             float64
	DomesticFee           float64
	InternationalFee      float64
	EconomyFactor         float64
	BusinessFactor        float64
	FirstFactor           float64
	DefaultCruiseSpeedKmh float64 // fallback when no aircraft is committed yet
}

// DefaultConfig returns the stock single-operator policy.
func DefaultConfig() Config {
	return Config{
		BoardingMinutes:       30,
		PostArrivalMinutes:    15,
		MinTurnaroundMinutes:  60,
		MaxTurnaroundMinutes:  240,
		TurnaroundMinutes:     90,
		MinLeadTimeMinutes:    45,
		RangeSafetyFactor:     1.1,
		RatePerKm:             0.10,
		DomesticFee:           20,
		InternationalFee:      35,
		EconomyFactor:         1.0,
		BusinessFactor:        2.5,
		FirstFactor:           4.0,
		DefaultCruiseSpeedKmh: 850,
	}
}

// FromEnv overlays environment overrides onto the default policy. Unset or
// malformed variables keep their defaults.
func FromEnv() Config {
	cfg := DefaultConfig()
	envInt("SCHED_BOARDING_MINUTES", &cfg.BoardingMinutes)
	envInt("SCHED_POST_ARRIVAL_MINUTES", &cfg.PostArrivalMinutes)
	envInt("SCHED_MIN_TURNAROUND_MINUTES", &cfg.MinTurnaroundMinutes)
	envInt("SCHED_MAX_TURNAROUND_MINUTES", &cfg.MaxTurnaroundMinutes)
	envInt("SCHED_TURNAROUND_MINUTES", &cfg.TurnaroundMinutes)
	envInt("SCHED_MIN_LEAD_TIME_MINUTES", &cfg.MinLeadTimeMinutes)
	envFloat("SCHED_RANGE_SAFETY_FACTOR", &cfg.RangeSafetyFactor)
	envFloat("SCHED_RATE_PER_KM", &cfg.RatePerKm)
	envFloat("SCHED_DOMESTIC_FEE", &cfg.DomesticFee)
	envFloat("SCHED_INTERNATIONAL_FEE", &cfg.InternationalFee)
	envFloat("SCHED_ECONOMY_FACTOR", &cfg.EconomyFactor)
	envFloat("SCHED_BUSINESS_FACTOR", &cfg.BusinessFactor)
	envFloat("SCHED_FIRST_FACTOR", &cfg.FirstFactor)
	envFloat("SCHED_DEFAULT_CRUISE_SPEED_KMH", &cfg.DefaultCruiseSpeedKmh)
	return cfg
}

func envInt(key string, dst *int) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func envFloat(key string, dst *float64) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

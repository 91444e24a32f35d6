package sched

import (
	"math"
	"strings"

	"skysched-api/pkg/ontology"
)

// Fares are the three cabin prices derived for one flight. Pricing is
// advisory and always re-computable, so insufficient inputs produce zero
// fares instead of an error.
type Fares struct {
	Economy  float64 `json:"economy"`
	Business float64 `json:"business"`
	First    float64 `json:"first"`
}

// PricingEngine computes fares from distance, duration and the aircraft
// type's operating economics.
type PricingEngine struct {
	cfg Config
}

func NewPricingEngine(cfg Config) PricingEngine {
	return PricingEngine{cfg: cfg}
}

// Price derives the three fare tiers. Base price is the per-kilometer rate
// plus the per-seat share of the hourly operating cost plus the airport fee
// selected by domestic classification, floored at zero so misconfigured
// economics never produce a negative fare.
func (p PricingEngine) Price(distanceKm float64, flightMinutes int, acType ontology.AircraftType, domestic bool) Fares {
	if distanceKm < 0 || flightMinutes < 0 || acType.PaxCapacity <= 0 {
		return Fares{}
	}

	fee := p.cfg.InternationalFee
	if domestic {
		fee = p.cfg.DomesticFee
	}

	hours := float64(flightMinutes) / 60
	base := p.cfg.RatePerKm*distanceKm + hours*acType.CostPerHour/float64(acType.PaxCapacity) + fee
	if base < 0 {
		base = 0
	}

	// Tier factors are floored too, so a misconfigured negative factor
	// cannot undo the base clamp.
	return Fares{
		Economy:  roundCents(math.Max(0, base*p.cfg.EconomyFactor)),
		Business: roundCents(math.Max(0, base*p.cfg.BusinessFactor)),
		First:    roundCents(math.Max(0, base*p.cfg.FirstFactor)),
	}
}

// Domestic reports whether both airports share a country, compared
// case-insensitively. Missing country data classifies as international,
// which selects the higher fee.
func Domestic(a, b ontology.Airport) bool {
	ca := strings.TrimSpace(a.Country)
	cb := strings.TrimSpace(b.Country)
	if ca == "" || cb == "" {
		return false
	}
	return strings.EqualFold(ca, cb)
}

// roundCents rounds half-up at the cent boundary.
func roundCents(v float64) float64 {
	return math.Floor(v*100+0.5) / 100
}

package sched

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"skysched-api/pkg/ontology"
)

func TestPriceTiers(t *testing.T) {
	engine := NewPricingEngine(DefaultConfig())

	// 1200 km, 95 min, A320 economics, domestic:
	// base = 0.10*1200 + (95/60)*5200/180 + 20 = 120 + 45.7407.. + 20
	fares := engine.Price(1200, 95, testType, true)
	assert.InDelta(t, 185.74, fares.Economy, 0.005)
	assert.InDelta(t, 464.35, fares.Business, 0.005)
	assert.InDelta(t, 742.96, fares.First, 0.005)
}

func TestPriceInternationalFee(t *testing.T) {
	engine := NewPricingEngine(DefaultConfig())
	dom := engine.Price(1200, 95, testType, true)
	intl := engine.Price(1200, 95, testType, false)
	// fee delta times the economy factor
	assert.InDelta(t, 15.0, intl.Economy-dom.Economy, 0.005)
	assert.Greater(t, intl.First, dom.First)
}

func TestPriceZeroCapacity(t *testing.T) {
	engine := NewPricingEngine(DefaultConfig())
	acType := testType
	acType.PaxCapacity = 0
	assert.Equal(t, Fares{}, engine.Price(1200, 95, acType, true))
}

func TestPriceInvalidInputs(t *testing.T) {
	engine := NewPricingEngine(DefaultConfig())
	assert.Equal(t, Fares{}, engine.Price(-1, 95, testType, true))
	assert.Equal(t, Fares{}, engine.Price(1200, -1, testType, true))
}

func TestPriceNeverNegative(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RatePerKm = -5
	cfg.DomesticFee = -100
	engine := NewPricingEngine(cfg)

	acType := testType
	acType.CostPerHour = -9000
	fares := engine.Price(1200, 95, acType, true)
	assert.GreaterOrEqual(t, fares.Economy, 0.0)
	assert.GreaterOrEqual(t, fares.Business, 0.0)
	assert.GreaterOrEqual(t, fares.First, 0.0)
}

func TestPriceNegativeFactorClamped(t *testing.T) {
	// A negative tier factor can arrive through env overrides; it must not
	// turn a healthy base price into a negative fare.
	cfg := DefaultConfig()
	cfg.EconomyFactor = -1.0
	engine := NewPricingEngine(cfg)

	fares := engine.Price(1200, 95, testType, true)
	assert.Equal(t, 0.0, fares.Economy)
	assert.Greater(t, fares.Business, 0.0)
	assert.Greater(t, fares.First, 0.0)
}

func TestPriceZeroDistanceStillPriced(t *testing.T) {
	// zero distance is a valid degenerate input; only the fee and hourly
	// share remain
	engine := NewPricingEngine(DefaultConfig())
	fares := engine.Price(0, 0, testType, true)
	assert.Equal(t, 20.0, fares.Economy)
}

func TestRoundCentsHalfUp(t *testing.T) {
	assert.Equal(t, 10.13, roundCents(10.125))
	assert.Equal(t, 10.12, roundCents(10.1249))
	assert.Equal(t, 0.01, roundCents(0.005))
}

func TestDomesticClassification(t *testing.T) {
	us1 := ontology.Airport{Ident: "JFK", Country: "US"}
	us2 := ontology.Airport{Ident: "LAX", Country: "us"}
	uk := ontology.Airport{Ident: "LHR", Country: "GB"}
	unset := ontology.Airport{Ident: "XXX"}

	assert.True(t, Domestic(us1, us2)) // case-insensitive
	assert.False(t, Domestic(us1, uk))
	// absent country data is conservatively international
	assert.False(t, Domestic(us1, unset))
	assert.False(t, Domestic(unset, unset))
}

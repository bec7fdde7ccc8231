package service

import (
	"errors"
	"math"

	"weather_station/internal/models"
)

// Magnus coefficients for dew point over water.
const (
	dewA1 = 17.625
	dewB1 = 243.04
)

const (
	mbarToInHg         = 0.0295300
	trendWindowMinutes = 15
)

// ErrDewPointDomain is returned when the dew point cannot be computed for the inputs.
var ErrDewPointDomain = errors.New("dew point outside domain")

// DewPoint returns the dew point in °C for tempC and relative humidity rh (percent).
// On a domain error it returns 0 and ErrDewPointDomain.
func DewPoint(tempC, rh float64) (float64, error) {
	if rh <= 0 || dewB1+tempC == 0 {
		return 0, ErrDewPointDomain
	}

	gamma := math.Log(rh/100) + (dewA1*tempC)/(dewB1+tempC)
	denom := dewA1 - gamma
	if math.Abs(denom) < 1e-9 {
		return 0, ErrDewPointDomain
	}

	dp := dewB1 * gamma / denom
	if math.IsNaN(dp) || math.IsInf(dp, 0) {
		return 0, ErrDewPointDomain
	}
	return dp, nil
}

// CToF converts Celsius to Fahrenheit.
func CToF(c float64) float64 {
	return c*1.8 + 32
}

// MbarToInHg converts millibar to inches of mercury.
func MbarToInHg(mb float64) float64 {
	return mb * mbarToInHg
}

// Round rounds v to the given number of decimal places, halves away from zero.
func Round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

// PressureTrend compares pressure against the reference captured at the start
// of the current 15-minute window.
type PressureTrend struct {
	reference float64
	seeded    bool
}

// Update records pressureMb taken during minute and returns the direction
// relative to the window reference. Every sample taken in a boundary minute
// refreshes the reference. Before the first boundary the first sample seeds it.
func (p *PressureTrend) Update(minute int, pressureMb float64) models.Trend {
	current := Round(pressureMb, 1)
	if minute%trendWindowMinutes == 0 || !p.seeded {
		p.reference = current
		p.seeded = true
	}

	switch {
	case current > p.reference:
		return models.TrendUp
	case current < p.reference:
		return models.TrendDown
	default:
		return models.TrendSteady
	}
}

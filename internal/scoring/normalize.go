// Package scoring turns provider metrics into bounded scores and decides
// whether an artist still counts as independent. Everything here is pure:
// callers pass the clock in.
package scoring

import (
	"github.com/shopspring/decimal"
)

const (
	MinScore = 0.0
	MaxScore = 100.0
)

// Normalize maps value onto [0,100] against ceiling. A non-positive ceiling
// yields 0.
func Normalize(value, ceiling float64) float64 {
	if ceiling <= 0 {
		return 0
	}
	return Clamp(value / ceiling * 100)
}

func Clamp(value float64) float64 {
	if value < MinScore {
		return MinScore
	}
	if value > MaxScore {
		return MaxScore
	}
	return value
}

// Round2 rounds half away from zero to two decimal places.
func Round2(value float64) float64 {
	return decimal.NewFromFloat(value).Round(2).InexactFloat64()
}

// finalize is the last step of every score.
func finalize(value float64) float64 {
	return Round2(Clamp(value))
}

type component struct {
	weight float64
	value  float64
}

// weightedAverage averages the components that are present. Weights of
// absent components are left out of the denominator.
func weightedAverage(components []component) float64 {
	var sum, weights float64
	for _, c := range components {
		sum += c.weight * c.value
		weights += c.weight
	}

	if weights == 0 {
		return 0
	}
	return sum / weights
}

// crossPlatformBonus rewards being visible on several providers.
func crossPlatformBonus(providers int) float64 {
	switch {
	case providers >= 3:
		return 100
	case providers == 2:
		return 60
	case providers == 1:
		return 30
	default:
		return 0
	}
}

// band scores a value 100 inside [lo, hi], 50 inside the outer band
// [outerLo, lo) or (hi, outerHi], otherwise 0.
func band(value, outerLo, lo, hi, outerHi float64) float64 {
	switch {
	case value >= lo && value <= hi:
		return 100
	case value >= outerLo && value < lo, value > hi && value <= outerHi:
		return 50
	default:
		return 0
	}
}

// NameVariation is a deterministic offset in [-5, 5] derived from the
// name's code points. It spreads out otherwise identical fallback momentum
// scores; it carries no meaning.
func NameVariation(name string) float64 {
	sum := 0
	for _, r := range name {
		sum += int(r)
	}
	return float64(sum%11 - 5)
}

package rules

import (
	"github.com/sanjayishigh/PowerGrid-Anomaly-Detection-and-Prediction/internal/models"
)

// Tier is the three-level severity produced by the physical rule engine
// before any model is consulted.
type Tier string

const (
	TierNormal        Tier = "NORMAL"
	TierModerateAlert Tier = "MODERATE_ALERT"
	TierCriticalAlert Tier = "CRITICAL_ALERT"
)

// BoundsTolerance is the relative buffer applied on each side of the strict
// safe range. Readings landing in the buffer are near-boundary noise, alerted
// at moderate severity instead of critical.
const BoundsTolerance = 0.001

// EvaluateTier classifies a reading against a zone's safe operating bounds.
// Pure function: no side effects, identical inputs always give the same tier.
// Only a NORMAL tier is eligible for statistical inference; the two alert
// tiers are terminal and never overridden by a model.
func EvaluateTier(r models.SensorReading, b ZoneBounds) Tier {
	if withinRange(r.Voltage, b.VoltageMin, b.VoltageMax) &&
		withinRange(r.Current, b.CurrentMin, b.CurrentMax) &&
		withinRange(r.Power, b.PowerMin, b.PowerMax) {
		return TierNormal
	}

	if withinTolerance(r.Voltage, b.VoltageMin, b.VoltageMax) &&
		withinTolerance(r.Current, b.CurrentMin, b.CurrentMax) &&
		withinTolerance(r.Power, b.PowerMin, b.PowerMax) {
		return TierModerateAlert
	}

	return TierCriticalAlert
}

func withinRange(v, min, max float64) bool {
	return v >= min && v <= max
}

func withinTolerance(v, min, max float64) bool {
	return v >= min*(1-BoundsTolerance) && v <= max*(1+BoundsTolerance)
}

package classifier

import (
	"github.com/rs/zerolog/log"

	"github.com/sanjayishigh/PowerGrid-Anomaly-Detection-and-Prediction/internal/ml"
	"github.com/sanjayishigh/PowerGrid-Anomaly-Detection-and-Prediction/internal/models"
	"github.com/sanjayishigh/PowerGrid-Anomaly-Detection-and-Prediction/internal/rules"
)

// Verdicts produced beyond the rule tiers.
const (
	VerdictUnknownZone   = "UNKNOWN_ZONE"
	VerdictAnomalyML     = "ANOMALY_DETECTED_ML"
	VerdictAnomalyHybrid = "ANOMALY_DETECTED_HYBRID"
)

// PhysicalClassifier runs the two-stage physical pipeline: the rule tier
// first, then the per-zone statistical detector for readings the rules judge
// normal. Alert tiers are terminal and never reach a model.
type PhysicalClassifier struct {
	registry *ml.Registry
	bounds   rules.BoundsTable
}

func NewPhysicalClassifier(registry *ml.Registry, bounds rules.BoundsTable) *PhysicalClassifier {
	return &PhysicalClassifier{registry: registry, bounds: bounds}
}

// Classify returns the verdict for one sensor reading. It always produces a
// verdict: inference failures degrade to the rule tier rather than aborting.
func (c *PhysicalClassifier) Classify(reading models.SensorReading) string {
	tier := rules.EvaluateTier(reading, c.bounds.ForZone(reading.ZoneID))
	if tier != rules.TierNormal {
		return string(tier)
	}

	zone, ok := c.registry.Zone(reading.ZoneID)
	if !ok {
		log.Warn().Int("zone", reading.ZoneID).Int("sensor", reading.SensorID).
			Msg("Reading from zone with no trained model")
		return VerdictUnknownZone
	}

	features := physicalFeatures(reading)
	scaled, err := zone.Scaler.Transform(features)
	if err != nil {
		log.Error().Err(err).Int("zone", reading.ZoneID).Msg("Scaling failed, keeping rule verdict")
		return string(rules.TierNormal)
	}

	pred, err := zone.Detector.Predict(scaled)
	if err != nil {
		log.Error().Err(err).Int("zone", reading.ZoneID).Msg("Detector failed, keeping rule verdict")
		return string(rules.TierNormal)
	}

	if pred == 1 {
		return VerdictAnomalyML
	}
	return string(rules.TierNormal)
}

// physicalFeatures assembles the detector input in the order the zone models
// were trained on.
func physicalFeatures(r models.SensorReading) []float64 {
	return []float64{
		r.Voltage,
		r.Current,
		r.Power,
		r.Frequency,
		r.PowerFactor,
		float64(r.SensorID),
	}
}

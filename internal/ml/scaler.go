package ml

import (
	"github.com/pkg/errors"
)

// StandardScaler normalizes a feature vector with the mean and scale fitted
// during training. Parameters are loaded from the exported artifact and never
// change afterwards.
type StandardScaler struct {
	Mean  []float64 `json:"mean"`
	Scale []float64 `json:"scale"`
}

// Transform returns (x - mean) / scale for each feature. The input length
// must match the fitted dimensionality.
func (s *StandardScaler) Transform(features []float64) ([]float64, error) {
	if len(s.Mean) != len(s.Scale) {
		return nil, errors.Errorf("scaler parameters inconsistent: %d means, %d scales", len(s.Mean), len(s.Scale))
	}
	if len(features) != len(s.Mean) {
		return nil, errors.Errorf("expected %d features, got %d", len(s.Mean), len(features))
	}

	scaled := make([]float64, len(features))
	for i, v := range features {
		div := s.Scale[i]
		if div == 0 {
			// A zero-variance column scales to zero offset, matching the
			// training-side convention.
			div = 1
		}
		scaled[i] = (v - s.Mean[i]) / div
	}
	return scaled, nil
}

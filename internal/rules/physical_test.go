package rules

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sanjayishigh/PowerGrid-Anomaly-Detection-and-Prediction/internal/models"
)

func testBounds() ZoneBounds {
	return ZoneBounds{
		VoltageMin: 200, VoltageMax: 250,
		CurrentMin: 10, CurrentMax: 100,
		PowerMin: 50, PowerMax: 500,
	}
}

func reading(voltage, current, power float64) models.SensorReading {
	return models.SensorReading{
		SensorID: 7,
		ZoneID:   1,
		Voltage:  voltage,
		Current:  current,
		Power:    power,
	}
}

func TestEvaluateTier(t *testing.T) {
	b := testBounds()

	tests := []struct {
		name string
		in   models.SensorReading
		want Tier
	}{
		{"well inside bounds", reading(230, 50, 150), TierNormal},
		{"voltage at strict max", reading(250, 50, 150), TierNormal},
		{"voltage at strict min", reading(200, 50, 150), TierNormal},
		{"current at strict min", reading(230, 10, 150), TierNormal},
		{"voltage at widened max", reading(250 * (1 + BoundsTolerance), 50, 150), TierModerateAlert},
		{"voltage at widened min", reading(200 * (1 - BoundsTolerance), 50, 150), TierModerateAlert},
		{"current just under strict min", reading(230, 10*(1-BoundsTolerance), 150), TierModerateAlert},
		{"power just over strict max", reading(230, 50, 500*(1+BoundsTolerance)), TierModerateAlert},
		{"voltage past widened max", reading(251, 50, 150), TierCriticalAlert},
		{"voltage far above", reading(400, 50, 150), TierCriticalAlert},
		{"current far below", reading(230, 2, 150), TierCriticalAlert},
		{"power far above", reading(230, 50, 900), TierCriticalAlert},
		{"one field critical overrides others normal", reading(230, 50, 9000), TierCriticalAlert},
		{"moderate and critical mix is critical", reading(250.2, 2, 150), TierCriticalAlert},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, EvaluateTier(tt.in, b))
		})
	}
}

func TestEvaluateTierIsPure(t *testing.T) {
	b := testBounds()
	in := reading(250.1, 50, 150)

	first := EvaluateTier(in, b)
	for i := 0; i < 100; i++ {
		require.Equal(t, first, EvaluateTier(in, b))
	}
}

func TestEvaluateTierDefaultBounds(t *testing.T) {
	b := DefaultBounds()
	require.NoError(t, b.Validate())

	require.Equal(t, TierNormal, EvaluateTier(reading(230, 30, 100), b))
	require.Equal(t, TierCriticalAlert, EvaluateTier(reading(300, 30, 100), b))
}

func TestZoneBoundsValidate(t *testing.T) {
	b := testBounds()
	require.NoError(t, b.Validate())

	b.VoltageMin, b.VoltageMax = b.VoltageMax, b.VoltageMin
	require.Error(t, b.Validate())
}

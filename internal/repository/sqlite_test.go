package repository

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sanjayishigh/PowerGrid-Anomaly-Detection-and-Prediction/config"
	"github.com/sanjayishigh/PowerGrid-Anomaly-Detection-and-Prediction/internal/models"
)

func newTestStore(t *testing.T) EventStore {
	t.Helper()
	path := filepath.Join(t.TempDir(), "events.db")
	store, err := New(config.DatabaseConfig{Driver: "sqlite", Path: path})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestNewUnknownDriver(t *testing.T) {
	_, err := New(config.DatabaseConfig{Driver: "oracle"})
	require.ErrorIs(t, err, ErrUnknownDriver)
}

func TestAppendPredictionAssignsIdentity(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	first := &models.Prediction{SensorID: 1, Location: 1, Voltage: 230, PredictionResult: "NORMAL"}
	require.NoError(t, store.AppendPrediction(ctx, first))
	require.Equal(t, int64(1), first.ID)
	require.False(t, first.Timestamp.IsZero())

	second := &models.Prediction{SensorID: 2, Location: 1, Voltage: 231, PredictionResult: "NORMAL"}
	require.NoError(t, store.AppendPrediction(ctx, second))
	require.Equal(t, int64(2), second.ID)
}

func TestRecentPredictionsNewestFirst(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for i := 1; i <= 15; i++ {
		rec := &models.Prediction{
			SensorID:         i,
			Location:         3,
			Voltage:          230 + float64(i),
			Current:          float64(i),
			Power:            100 * float64(i),
			PredictionResult: "NORMAL",
		}
		require.NoError(t, store.AppendPrediction(ctx, rec))
	}

	recs, err := store.RecentPredictions(ctx, RecentLimit)
	require.NoError(t, err)
	require.Len(t, recs, RecentLimit)

	for i, rec := range recs {
		require.Equal(t, int64(15-i), rec.ID)
	}
	require.Equal(t, 15, recs[0].SensorID)
	require.Equal(t, 245.0, recs[0].Voltage)
	require.Equal(t, 1500.0, recs[0].Power)
	require.Equal(t, "NORMAL", recs[0].PredictionResult)
}

func TestRecentPredictionsEmptyStore(t *testing.T) {
	store := newTestStore(t)

	recs, err := store.RecentPredictions(context.Background(), RecentLimit)
	require.NoError(t, err)
	require.Empty(t, recs)
}

func TestEventStreamsAreIndependent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		rec := &models.Prediction{SensorID: i, Location: 1, PredictionResult: "NORMAL"}
		require.NoError(t, store.AppendPrediction(ctx, rec))
	}

	// Cyber ids start from their own sequence regardless of how many
	// predictions exist.
	log := &models.CyberLog{
		SourceIP:         "192.168.1.1",
		DestIP:           "10.0.0.1",
		Protocol:         "TCP",
		PacketLen:        500,
		PredictionResult: "SAFE",
	}
	require.NoError(t, store.AppendCyberLog(ctx, log))
	require.Equal(t, int64(1), log.ID)

	logs, err := store.RecentCyberLogs(ctx, RecentLimit)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	require.Equal(t, "192.168.1.1", logs[0].SourceIP)
	require.Equal(t, 500.0, logs[0].PacketLen)
	require.Equal(t, "SAFE", logs[0].PredictionResult)

	recs, err := store.RecentPredictions(ctx, RecentLimit)
	require.NoError(t, err)
	require.Len(t, recs, 3)
}

func TestRecentCyberLogsNewestFirst(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for i := 1; i <= 12; i++ {
		rec := &models.CyberLog{
			SourceIP:         fmt.Sprintf("10.0.0.%d", i),
			Protocol:         "TCP",
			PacketLen:        float64(i * 100),
			PredictionResult: "SAFE",
		}
		require.NoError(t, store.AppendCyberLog(ctx, rec))
	}

	logs, err := store.RecentCyberLogs(ctx, RecentLimit)
	require.NoError(t, err)
	require.Len(t, logs, RecentLimit)
	require.Equal(t, int64(12), logs[0].ID)
	require.Equal(t, "10.0.0.12", logs[0].SourceIP)
	require.Equal(t, int64(3), logs[len(logs)-1].ID)
}

func TestTimestampRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	rec := &models.Prediction{SensorID: 1, Location: 1, PredictionResult: "NORMAL"}
	require.NoError(t, store.AppendPrediction(ctx, rec))

	recs, err := store.RecentPredictions(ctx, RecentLimit)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	require.WithinDuration(t, rec.Timestamp, recs[0].Timestamp, time.Second)
}

func TestReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.db")
	ctx := context.Background()

	store, err := New(config.DatabaseConfig{Driver: "sqlite", Path: path})
	require.NoError(t, err)
	rec := &models.Prediction{SensorID: 9, Location: 2, PredictionResult: "CRITICAL_ALERT"}
	require.NoError(t, store.AppendPrediction(ctx, rec))
	require.NoError(t, store.Close())

	// Reopening replays the migration path against an already-migrated file.
	reopened, err := New(config.DatabaseConfig{Driver: "sqlite", Path: path})
	require.NoError(t, err)
	defer reopened.Close()

	recs, err := reopened.RecentPredictions(ctx, RecentLimit)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	require.Equal(t, "CRITICAL_ALERT", recs[0].PredictionResult)
}

func TestStorePing(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Ping(context.Background()))
}

func TestParseStoredTime(t *testing.T) {
	ref := time.Date(2025, 6, 1, 12, 30, 45, 0, time.UTC)

	parsed := parseStoredTime("2025-06-01T12:30:45Z")
	require.True(t, parsed.Equal(ref))

	parsed = parseStoredTime("2025-06-01 12:30:45")
	require.True(t, parsed.Equal(ref))

	require.True(t, parseStoredTime("not a time").IsZero())
}

package repository

import (
	"context"
	"errors"

	"github.com/sanjayishigh/PowerGrid-Anomaly-Detection-and-Prediction/config"
	"github.com/sanjayishigh/PowerGrid-Anomaly-Detection-and-Prediction/internal/models"
)

// Common repository errors
var (
	ErrNotFound         = errors.New("record not found")
	ErrAppendFailed     = errors.New("failed to append event")
	ErrQueryFailed      = errors.New("failed to query events")
	ErrUnknownDriver    = errors.New("unknown database driver")
	ErrStoreUnavailable = errors.New("event store unavailable")
)

// RecentLimit is the number of events returned for history display.
const RecentLimit = 10

// EventStore is the append-only classification event log. The predictions and
// cyber_logs streams are independent: separate tables, separate id spaces.
// Appends assign the id and timestamp; records are never updated or deleted.
type EventStore interface {
	// AppendPrediction inserts one physical event and fills in the
	// store-assigned ID and Timestamp on the passed record.
	AppendPrediction(ctx context.Context, rec *models.Prediction) error

	// RecentPredictions returns up to limit physical events, newest first
	// (descending id).
	RecentPredictions(ctx context.Context, limit int) ([]models.Prediction, error)

	// AppendCyberLog inserts one cyber event and fills in the store-assigned
	// ID and Timestamp on the passed record.
	AppendCyberLog(ctx context.Context, rec *models.CyberLog) error

	// RecentCyberLogs returns up to limit cyber events, newest first
	// (descending id).
	RecentCyberLogs(ctx context.Context, limit int) ([]models.CyberLog, error)

	// Ping verifies the underlying connection.
	Ping(ctx context.Context) error

	// Close releases the underlying connection.
	Close() error
}

// New selects and opens the configured store implementation. The driver is
// fixed here, once, at startup; callers only ever see the EventStore
// interface.
func New(cfg config.DatabaseConfig) (EventStore, error) {
	switch cfg.Driver {
	case "postgres":
		return newPostgresStore(cfg)
	case "sqlite":
		return newSQLiteStore(cfg.Path)
	default:
		return nil, ErrUnknownDriver
	}
}

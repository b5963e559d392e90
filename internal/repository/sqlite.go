package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"
	_ "modernc.org/sqlite"

	"github.com/sanjayishigh/PowerGrid-Anomaly-Detection-and-Prediction/internal/models"
)

// sqliteStore is the single-file EventStore implementation used for local
// runs. Both event streams share one database file, mirroring the hosted
// schema (AUTOINCREMENT in place of SERIAL).
type sqliteStore struct {
	db *sql.DB
}

// migrations are applied in order; schema_versions records the last applied
// version so restarts are idempotent.
var migrations = []struct {
	version int
	sql     string
}{
	{
		version: 1,
		sql: `
		CREATE TABLE IF NOT EXISTS predictions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			sensor_id INTEGER NOT NULL,
			location INTEGER NOT NULL,
			voltage REAL,
			current REAL,
			power REAL,
			prediction_result TEXT NOT NULL,
			timestamp TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);
		CREATE TABLE IF NOT EXISTS cyber_logs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			source_ip TEXT NOT NULL,
			dest_ip TEXT,
			protocol TEXT,
			packet_len REAL,
			prediction_result TEXT NOT NULL,
			timestamp TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);`,
	},
}

func newSQLiteStore(path string) (*sqliteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open sqlite database")
	}

	// Single writer; WAL keeps readers unblocked during appends.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "failed to set journal mode")
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "failed to enable foreign keys")
	}

	s := &sqliteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *sqliteStore) migrate() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS schema_versions (
		version INTEGER PRIMARY KEY,
		applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`)
	if err != nil {
		return errors.Wrap(err, "failed to create schema_versions table")
	}

	var current sql.NullInt64
	if err := s.db.QueryRow("SELECT MAX(version) FROM schema_versions").Scan(&current); err != nil {
		return errors.Wrap(err, "failed to read schema version")
	}

	for _, m := range migrations {
		if current.Valid && int64(m.version) <= current.Int64 {
			continue
		}
		if _, err := s.db.Exec(m.sql); err != nil {
			return errors.Wrapf(err, "migration %d failed", m.version)
		}
		if _, err := s.db.Exec("INSERT INTO schema_versions (version) VALUES (?)", m.version); err != nil {
			return errors.Wrapf(err, "failed to record migration %d", m.version)
		}
	}
	return nil
}

func (s *sqliteStore) AppendPrediction(ctx context.Context, rec *models.Prediction) error {
	rec.Timestamp = time.Now().UTC()
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO predictions (sensor_id, location, voltage, current, power, prediction_result, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.SensorID, rec.Location, rec.Voltage, rec.Current, rec.Power,
		rec.PredictionResult, rec.Timestamp.Format(time.RFC3339Nano),
	)
	if err != nil {
		return errors.Wrap(err, "failed to append prediction")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return errors.Wrap(err, "failed to read prediction id")
	}
	rec.ID = id
	return nil
}

func (s *sqliteStore) RecentPredictions(ctx context.Context, limit int) ([]models.Prediction, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, sensor_id, location, voltage, current, power, prediction_result, timestamp
		FROM predictions
		ORDER BY id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query recent predictions")
	}
	defer rows.Close()

	var recs []models.Prediction
	for rows.Next() {
		var rec models.Prediction
		var ts string
		if err := rows.Scan(&rec.ID, &rec.SensorID, &rec.Location, &rec.Voltage,
			&rec.Current, &rec.Power, &rec.PredictionResult, &ts); err != nil {
			return nil, errors.Wrap(err, "failed to scan prediction row")
		}
		rec.Timestamp = parseStoredTime(ts)
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to iterate prediction rows")
	}
	return recs, nil
}

func (s *sqliteStore) AppendCyberLog(ctx context.Context, rec *models.CyberLog) error {
	rec.Timestamp = time.Now().UTC()
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO cyber_logs (source_ip, dest_ip, protocol, packet_len, prediction_result, timestamp)
		VALUES (?, ?, ?, ?, ?, ?)`,
		rec.SourceIP, rec.DestIP, rec.Protocol, rec.PacketLen,
		rec.PredictionResult, rec.Timestamp.Format(time.RFC3339Nano),
	)
	if err != nil {
		return errors.Wrap(err, "failed to append cyber log")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return errors.Wrap(err, "failed to read cyber log id")
	}
	rec.ID = id
	return nil
}

func (s *sqliteStore) RecentCyberLogs(ctx context.Context, limit int) ([]models.CyberLog, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, source_ip, dest_ip, protocol, packet_len, prediction_result, timestamp
		FROM cyber_logs
		ORDER BY id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query recent cyber logs")
	}
	defer rows.Close()

	var recs []models.CyberLog
	for rows.Next() {
		var rec models.CyberLog
		var ts string
		if err := rows.Scan(&rec.ID, &rec.SourceIP, &rec.DestIP, &rec.Protocol,
			&rec.PacketLen, &rec.PredictionResult, &ts); err != nil {
			return nil, errors.Wrap(err, "failed to scan cyber log row")
		}
		rec.Timestamp = parseStoredTime(ts)
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to iterate cyber log rows")
	}
	return recs, nil
}

func (s *sqliteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *sqliteStore) Close() error {
	return s.db.Close()
}

// parseStoredTime tolerates the timestamp formats seen across sqlite files
// written by this service and by older deployments.
func parseStoredTime(value string) time.Time {
	layouts := []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02 15:04:05.999999999-07:00",
		"2006-01-02 15:04:05",
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	return time.Time{}
}

package repository

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/sanjayishigh/PowerGrid-Anomaly-Detection-and-Prediction/config"
	"github.com/sanjayishigh/PowerGrid-Anomaly-Detection-and-Prediction/internal/models"
)

// postgresStore is the networked EventStore implementation used in hosted
// deployments (DATABASE_URL present).
type postgresStore struct {
	db *gorm.DB
}

func newPostgresStore(cfg config.DatabaseConfig) (*postgresStore, error) {
	db, err := gorm.Open(postgres.Open(cfg.URL), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to postgres")
	}

	if err := models.SetupModels(db); err != nil {
		return nil, errors.Wrap(err, "failed to run migrations")
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get underlying DB connection")
	}
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	return &postgresStore{db: db}, nil
}

func (s *postgresStore) AppendPrediction(ctx context.Context, rec *models.Prediction) error {
	if err := s.db.WithContext(ctx).Create(rec).Error; err != nil {
		return errors.Wrap(err, "failed to append prediction")
	}
	return nil
}

func (s *postgresStore) RecentPredictions(ctx context.Context, limit int) ([]models.Prediction, error) {
	var recs []models.Prediction
	err := s.db.WithContext(ctx).
		Order("id DESC").
		Limit(limit).
		Find(&recs).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to query recent predictions")
	}
	return recs, nil
}

func (s *postgresStore) AppendCyberLog(ctx context.Context, rec *models.CyberLog) error {
	if err := s.db.WithContext(ctx).Create(rec).Error; err != nil {
		return errors.Wrap(err, "failed to append cyber log")
	}
	return nil
}

func (s *postgresStore) RecentCyberLogs(ctx context.Context, limit int) ([]models.CyberLog, error) {
	var recs []models.CyberLog
	err := s.db.WithContext(ctx).
		Order("id DESC").
		Limit(limit).
		Find(&recs).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to query recent cyber logs")
	}
	return recs, nil
}

func (s *postgresStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return errors.Wrap(err, "failed to get underlying DB connection")
	}
	return sqlDB.PingContext(ctx)
}

func (s *postgresStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return errors.Wrap(err, "failed to get underlying DB connection")
	}
	return sqlDB.Close()
}

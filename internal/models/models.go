package models

import (
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// SensorReading is one electrical-grid telemetry sample submitted for
// classification. It is constructed per request and never persisted directly;
// only the verdict and a subset of its fields end up in a Prediction row.
type SensorReading struct {
	SensorID    int     `json:"sensor_id"`
	ZoneID      int     `json:"location"`
	Voltage     float64 `json:"voltage"`
	Current     float64 `json:"current"`
	Power       float64 `json:"power"`
	Frequency   float64 `json:"frequency"`
	PowerFactor float64 `json:"power_factor"`
}

// PacketObservation is one network-traffic sample submitted for
// classification. Same lifecycle as SensorReading.
type PacketObservation struct {
	SourceIP     string  `json:"source_ip"`
	DestIP       string  `json:"dest_ip"`
	Protocol     string  `json:"protocol"`
	PacketLength float64 `json:"packet_length"`
}

// Prediction is a persisted physical-domain classification event. Rows are
// immutable once written; the id and timestamp are assigned by the store.
type Prediction struct {
	ID               int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	SensorID         int       `gorm:"column:sensor_id;not null" json:"sensor_id"`
	Location         int       `gorm:"column:location;not null" json:"location"`
	Voltage          float64   `gorm:"column:voltage" json:"voltage"`
	Current          float64   `gorm:"column:current" json:"current"`
	Power            float64   `gorm:"column:power" json:"power"`
	PredictionResult string    `gorm:"column:prediction_result;not null" json:"prediction_result"`
	Timestamp        time.Time `gorm:"column:timestamp;autoCreateTime" json:"timestamp"`
}

// TableName overrides the gorm default pluralisation.
func (Prediction) TableName() string {
	return "predictions"
}

// CyberLog is a persisted cyber-domain classification event. The predictions
// and cyber_logs streams are fully independent; ids are never shared.
type CyberLog struct {
	ID               int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	SourceIP         string    `gorm:"column:source_ip;not null" json:"source_ip"`
	DestIP           string    `gorm:"column:dest_ip" json:"dest_ip"`
	Protocol         string    `gorm:"column:protocol" json:"protocol"`
	PacketLen        float64   `gorm:"column:packet_len" json:"packet_len"`
	PredictionResult string    `gorm:"column:prediction_result;not null" json:"prediction_result"`
	Timestamp        time.Time `gorm:"column:timestamp;autoCreateTime" json:"timestamp"`
}

// TableName overrides the gorm default pluralisation.
func (CyberLog) TableName() string {
	return "cyber_logs"
}

// SetupModels runs the schema migrations for the relational store.
func SetupModels(db *gorm.DB) error {
	err := db.AutoMigrate(
		&Prediction{},
		&CyberLog{},
	)
	if err != nil {
		return errors.Wrap(err, "failed to migrate database models")
	}
	return nil
}

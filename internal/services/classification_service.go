package services

import (
	"context"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/sanjayishigh/PowerGrid-Anomaly-Detection-and-Prediction/internal/cache"
	"github.com/sanjayishigh/PowerGrid-Anomaly-Detection-and-Prediction/internal/classifier"
	"github.com/sanjayishigh/PowerGrid-Anomaly-Detection-and-Prediction/internal/messaging"
	"github.com/sanjayishigh/PowerGrid-Anomaly-Detection-and-Prediction/internal/metrics"
	"github.com/sanjayishigh/PowerGrid-Anomaly-Detection-and-Prediction/internal/models"
	"github.com/sanjayishigh/PowerGrid-Anomaly-Detection-and-Prediction/internal/repository"
	"github.com/sanjayishigh/PowerGrid-Anomaly-Detection-and-Prediction/internal/rules"
	"github.com/sanjayishigh/PowerGrid-Anomaly-Detection-and-Prediction/internal/search"
	"github.com/sanjayishigh/PowerGrid-Anomaly-Detection-and-Prediction/internal/tracing"
)

// PhysicalResult is the outcome of classifying one sensor reading: the
// verdict plus the latest events for the dashboard panel.
type PhysicalResult struct {
	Verdict string
	Recent  []models.Prediction
}

// CyberResult is the outcome of classifying one packet observation.
type CyberResult struct {
	Verdict string
	Recent  []models.CyberLog
}

// ClassificationService runs the full pipeline for both domains: classify,
// persist, fan out to the optional side channels, and assemble the recent
// history. The event store is the only hard dependency; cache, search,
// alerts and tracing all degrade to no-ops when absent.
type ClassificationService struct {
	store    repository.EventStore
	physical *classifier.PhysicalClassifier
	cyber    *classifier.CyberClassifier
	cache    *cache.RedisCache
	elastic  *search.ElasticClient
	alerts   messaging.ServiceBusClient
	metrics  *metrics.Metrics
	tracer   tracing.Tracer
	cacheTTL time.Duration
}

// NewClassificationService creates a new classification service
func NewClassificationService(
	store repository.EventStore,
	physical *classifier.PhysicalClassifier,
	cyber *classifier.CyberClassifier,
	redisCache *cache.RedisCache,
	elasticClient *search.ElasticClient,
	alerts messaging.ServiceBusClient,
	m *metrics.Metrics,
	tracer tracing.Tracer,
	cacheTTL time.Duration,
) *ClassificationService {
	return &ClassificationService{
		store:    store,
		physical: physical,
		cyber:    cyber,
		cache:    redisCache,
		elastic:  elasticClient,
		alerts:   alerts,
		metrics:  m,
		tracer:   tracer,
		cacheTTL: cacheTTL,
	}
}

// ClassifyPhysical classifies one sensor reading, appends the event and
// returns the verdict with the latest history. A store failure is the only
// error path: the caller cannot claim an event was recorded when it was not.
func (s *ClassificationService) ClassifyPhysical(ctx context.Context, reading models.SensorReading) (*PhysicalResult, error) {
	txn := s.tracer.StartTransaction("classify-physical")
	defer s.tracer.EndTransaction(txn)
	s.metrics.IncrementCounter(metrics.CounterPhysicalRequests)

	span := s.tracer.StartSpan("evaluate-reading", txn)
	start := time.Now()
	verdict := s.physical.Classify(reading)
	s.metrics.RecordTimer(metrics.TimerClassifyPhysical, time.Since(start).Milliseconds())
	span.End()

	rec := &models.Prediction{
		SensorID:         reading.SensorID,
		Location:         reading.ZoneID,
		Voltage:          reading.Voltage,
		Current:          reading.Current,
		Power:            reading.Power,
		PredictionResult: verdict,
	}

	appendSpan := s.tracer.StartSpan("append-prediction", txn)
	err := s.store.AppendPrediction(ctx, rec)
	appendSpan.End()
	if err != nil {
		s.tracer.RecordError(txn, err)
		s.metrics.RecordError(metrics.ErrorRateStoreAppend)
		return nil, errors.Wrap(err, "failed to append prediction event")
	}
	s.metrics.RecordSuccess(metrics.ErrorRateStoreAppend)

	s.invalidateRecent(ctx, cache.GetRecentPredictionsKey())
	s.indexPrediction(ctx, rec)
	if physicalAlertVerdict(verdict) {
		s.metrics.IncrementCounter(metrics.CounterPhysicalAnomalies)
		s.publishAlert(ctx, "physical", verdict, rec.ID, reading.ZoneID)
	}

	log.Info().
		Int64("event_id", rec.ID).
		Int("sensor", reading.SensorID).
		Int("zone", reading.ZoneID).
		Str("verdict", verdict).
		Msg("Sensor reading classified")

	recent, err := s.RecentPhysical(ctx)
	if err != nil {
		return nil, err
	}

	return &PhysicalResult{Verdict: verdict, Recent: recent}, nil
}

// ClassifyCyber classifies one packet observation, appends the event and
// returns the verdict with the latest history.
func (s *ClassificationService) ClassifyCyber(ctx context.Context, packet models.PacketObservation) (*CyberResult, error) {
	txn := s.tracer.StartTransaction("classify-cyber")
	defer s.tracer.EndTransaction(txn)
	s.metrics.IncrementCounter(metrics.CounterCyberRequests)

	span := s.tracer.StartSpan("evaluate-packet", txn)
	start := time.Now()
	verdict := s.cyber.Classify(packet)
	s.metrics.RecordTimer(metrics.TimerClassifyCyber, time.Since(start).Milliseconds())
	span.End()

	rec := &models.CyberLog{
		SourceIP:         packet.SourceIP,
		DestIP:           packet.DestIP,
		Protocol:         packet.Protocol,
		PacketLen:        packet.PacketLength,
		PredictionResult: verdict,
	}

	appendSpan := s.tracer.StartSpan("append-cyber-log", txn)
	err := s.store.AppendCyberLog(ctx, rec)
	appendSpan.End()
	if err != nil {
		s.tracer.RecordError(txn, err)
		s.metrics.RecordError(metrics.ErrorRateStoreAppend)
		return nil, errors.Wrap(err, "failed to append cyber log event")
	}
	s.metrics.RecordSuccess(metrics.ErrorRateStoreAppend)

	s.invalidateRecent(ctx, cache.GetRecentCyberLogsKey())
	s.indexCyberLog(ctx, rec)
	if verdict != rules.VerdictSafe {
		s.metrics.IncrementCounter(metrics.CounterCyberAnomalies)
		s.publishAlert(ctx, "cyber", verdict, rec.ID, 0)
	}

	log.Info().
		Int64("event_id", rec.ID).
		Str("source_ip", packet.SourceIP).
		Str("protocol", packet.Protocol).
		Str("verdict", verdict).
		Msg("Packet classified")

	recent, err := s.RecentCyber(ctx)
	if err != nil {
		return nil, err
	}

	return &CyberResult{Verdict: verdict, Recent: recent}, nil
}

// RecentPhysical returns the latest physical events, newest first. The
// cache is consulted first and repopulated on a miss.
func (s *ClassificationService) RecentPhysical(ctx context.Context) ([]models.Prediction, error) {
	key := cache.GetRecentPredictionsKey()
	if s.cache.Enabled() {
		var cached []models.Prediction
		if err := s.cache.Get(ctx, key, &cached); err == nil {
			return cached, nil
		}
	}

	recent, err := s.store.RecentPredictions(ctx, repository.RecentLimit)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query recent predictions")
	}

	if s.cache.Enabled() {
		if err := s.cache.Set(ctx, key, recent, s.cacheTTL); err != nil {
			log.Warn().Err(err).Msg("Failed to cache recent predictions")
		}
	}
	return recent, nil
}

// RecentCyber returns the latest cyber events, newest first.
func (s *ClassificationService) RecentCyber(ctx context.Context) ([]models.CyberLog, error) {
	key := cache.GetRecentCyberLogsKey()
	if s.cache.Enabled() {
		var cached []models.CyberLog
		if err := s.cache.Get(ctx, key, &cached); err == nil {
			return cached, nil
		}
	}

	recent, err := s.store.RecentCyberLogs(ctx, repository.RecentLimit)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query recent cyber logs")
	}

	if s.cache.Enabled() {
		if err := s.cache.Set(ctx, key, recent, s.cacheTTL); err != nil {
			log.Warn().Err(err).Msg("Failed to cache recent cyber logs")
		}
	}
	return recent, nil
}

// SampleRecentStats refreshes the dashboard gauges from the event store.
// Called on a schedule by the worker.
func (s *ClassificationService) SampleRecentStats(ctx context.Context) error {
	predictions, err := s.store.RecentPredictions(ctx, repository.RecentLimit)
	if err != nil {
		return errors.Wrap(err, "failed to sample recent predictions")
	}
	cyberLogs, err := s.store.RecentCyberLogs(ctx, repository.RecentLimit)
	if err != nil {
		return errors.Wrap(err, "failed to sample recent cyber logs")
	}

	s.metrics.SetGauge(metrics.GaugeRecentPredictions, int64(len(predictions)))
	s.metrics.SetGauge(metrics.GaugeRecentCyberLogs, int64(len(cyberLogs)))

	log.Debug().
		Int("predictions", len(predictions)).
		Int("cyber_logs", len(cyberLogs)).
		Msg("Sampled recent event stats")
	return nil
}

func (s *ClassificationService) invalidateRecent(ctx context.Context, key string) {
	if err := s.cache.Delete(ctx, key); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Failed to invalidate recent cache")
	}
}

func (s *ClassificationService) indexPrediction(ctx context.Context, rec *models.Prediction) {
	if s.elastic == nil {
		return
	}
	if err := s.elastic.IndexPrediction(ctx, rec); err != nil {
		log.Warn().Err(err).Int64("event_id", rec.ID).Msg("Failed to index prediction")
	}
}

func (s *ClassificationService) indexCyberLog(ctx context.Context, rec *models.CyberLog) {
	if s.elastic == nil {
		return
	}
	if err := s.elastic.IndexCyberLog(ctx, rec); err != nil {
		log.Warn().Err(err).Int64("event_id", rec.ID).Msg("Failed to index cyber log")
	}
}

func (s *ClassificationService) publishAlert(ctx context.Context, domain, verdict string, eventID int64, zone int) {
	if s.alerts == nil {
		return
	}

	msg := messaging.AlertMessage{
		Domain:    domain,
		Verdict:   verdict,
		EventID:   eventID,
		Timestamp: time.Now().UTC(),
	}
	if domain == "physical" {
		msg.Detail = "zone " + strconv.Itoa(zone)
	}

	if err := s.alerts.SendMessage(ctx, msg); err != nil {
		log.Warn().Err(err).Str("verdict", verdict).Msg("Failed to publish alert")
		return
	}
	s.metrics.IncrementCounter(metrics.CounterAlertsPublished)
}

// physicalAlertVerdict reports whether a physical verdict warrants an alert
// on the operations queue.
func physicalAlertVerdict(verdict string) bool {
	switch verdict {
	case string(rules.TierCriticalAlert), classifier.VerdictAnomalyML:
		return true
	}
	return false
}

package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/sanjayishigh/PowerGrid-Anomaly-Detection-and-Prediction/config"
	"github.com/sanjayishigh/PowerGrid-Anomaly-Detection-and-Prediction/internal/api"
	"github.com/sanjayishigh/PowerGrid-Anomaly-Detection-and-Prediction/internal/cache"
	"github.com/sanjayishigh/PowerGrid-Anomaly-Detection-and-Prediction/internal/classifier"
	"github.com/sanjayishigh/PowerGrid-Anomaly-Detection-and-Prediction/internal/feeds"
	"github.com/sanjayishigh/PowerGrid-Anomaly-Detection-and-Prediction/internal/messaging"
	"github.com/sanjayishigh/PowerGrid-Anomaly-Detection-and-Prediction/internal/metrics"
	"github.com/sanjayishigh/PowerGrid-Anomaly-Detection-and-Prediction/internal/ml"
	"github.com/sanjayishigh/PowerGrid-Anomaly-Detection-and-Prediction/internal/repository"
	"github.com/sanjayishigh/PowerGrid-Anomaly-Detection-and-Prediction/internal/rules"
	"github.com/sanjayishigh/PowerGrid-Anomaly-Detection-and-Prediction/internal/search"
	"github.com/sanjayishigh/PowerGrid-Anomaly-Detection-and-Prediction/internal/services"
	"github.com/sanjayishigh/PowerGrid-Anomaly-Detection-and-Prediction/internal/tracing"
)

var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Start the API server",
	Long:  `Start the HTTP API server that classifies sensor readings and packets`,
	RunE:  runAPI,
}

func init() {
	rootCmd.AddCommand(apiCmd)
}

func runAPI(cmd *cobra.Command, args []string) error {
	// Load configuration
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return err
	}

	// Configure logging
	if cfg.Environment == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	// Set up signal handling for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	// Initialize the event store. Unlike the side channels below this is a
	// hard dependency: without it no classification can be recorded.
	store, err := repository.New(cfg.DB)
	if err != nil {
		return err
	}
	defer store.Close()

	// Load model artifacts. Either domain may come up degraded.
	registry := ml.LoadRegistry(cfg.Models.Dir)
	bounds := rules.LoadBounds(cfg.Models.BoundsFile)

	// Initialize cache
	redisCache, err := cache.NewRedisCache(cfg.Redis)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to initialize Redis cache, continuing without caching")
		redisCache = cache.Disabled()
	}
	defer redisCache.Close()

	// Initialize tracer
	tracer, err := tracing.NewTracer(cfg.Tracing)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to initialize tracer, continuing without tracing")
		tracer = &tracing.NewRelicTracer{}
	}
	defer tracer.Close()

	// Initialize Elasticsearch client
	var elasticClient *search.ElasticClient
	if cfg.Elastic.Enabled {
		elasticClient, err = search.NewElasticClient(cfg.Elastic)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to initialize Elasticsearch client, continuing without search indexing")
			elasticClient = nil
		}
	}

	// Initialize the alert publisher
	var alertClient messaging.ServiceBusClient
	if cfg.ServiceBus.ConnectionString != "" {
		alertClient, err = messaging.NewServiceBusClient(cfg.ServiceBus, "grid-dashboard")
		if err != nil {
			log.Warn().Err(err).Msg("Failed to initialize Service Bus client, continuing without alert publishing")
			alertClient = nil
		} else {
			defer alertClient.Close()
		}
	}

	// Initialize metrics
	metricsCollector := metrics.NewMetrics()
	metricsCollector.SetHealth("event_store", store.Ping(ctx) == nil)
	metricsCollector.SetGauge(metrics.GaugeZoneModels, int64(registry.ZoneCount()))

	// Initialize classifiers and services
	physicalClassifier := classifier.NewPhysicalClassifier(registry, bounds)
	cyberClassifier := classifier.NewCyberClassifier(registry)
	classificationService := services.NewClassificationService(
		store, physicalClassifier, cyberClassifier,
		redisCache, elasticClient, alertClient,
		metricsCollector, tracer, cfg.Redis.TTL,
	)
	feedsService := feeds.NewService(cfg.Feeds.Dir)

	// Initialize the server
	server := api.NewServer(cfg, classificationService, feedsService, metricsCollector, tracer)

	// Create an error group to manage goroutines
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return server.Start()
	})

	// Refresh the dashboard gauges on a schedule
	if cfg.Sampler.Enabled {
		g.Go(func() error {
			scheduler, err := gocron.NewScheduler()
			if err != nil {
				return err
			}

			_, err = scheduler.NewJob(
				gocron.DurationJob(cfg.Sampler.Interval),
				gocron.NewTask(func() {
					if err := classificationService.SampleRecentStats(ctx); err != nil {
						log.Error().Err(err).Msg("Failed to sample recent event stats")
					}
					metricsCollector.SetHealth("event_store", store.Ping(ctx) == nil)
				}),
			)
			if err != nil {
				return err
			}

			scheduler.Start()

			// Wait for context cancellation
			<-ctx.Done()

			return scheduler.Shutdown()
		})
	}

	g.Go(func() error {
		<-ctx.Done()
		return server.Shutdown(context.Background())
	})

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("Server error")
		return err
	}

	log.Info().Msg("API server shut down")
	return nil
}

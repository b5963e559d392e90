package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Environment    string        `mapstructure:"environment"`
	ServerAddress  string        `mapstructure:"server.address"`
	ServerTimeout  time.Duration `mapstructure:"server.timeout"`
	CorsEnabled    bool          `mapstructure:"server.cors_enabled"`
	CorsOrigins    []string      `mapstructure:"server.cors_origins"`
	MetricsEnabled bool          `mapstructure:"metrics_enabled"`
	LogLevel       string        `mapstructure:"logging.level"`
	LogFormat      string        `mapstructure:"logging.format"`
	DB             DatabaseConfig
	Models         ModelsConfig
	Feeds          FeedsConfig
	Sampler        SamplerConfig
	Redis          RedisConfig
	ServiceBus     ServiceBusConfig
	Elastic        ElasticConfig
	Tracing        TracingConfig
}

// DatabaseConfig holds event store configuration. Driver selection follows
// the deployment convention: a populated DATABASE_URL selects Postgres,
// otherwise the store falls back to a local SQLite file.
type DatabaseConfig struct {
	Driver          string        `mapstructure:"database.driver"`
	URL             string        `mapstructure:"database.url"`
	Path            string        `mapstructure:"database.path"`
	MaxOpenConns    int           `mapstructure:"database.max_open_conns"`
	MaxIdleConns    int           `mapstructure:"database.max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"database.conn_max_lifetime"`
}

// ModelsConfig holds model artifact locations
type ModelsConfig struct {
	Dir        string `mapstructure:"models.dir"`
	BoundsFile string `mapstructure:"models.bounds_file"`
}

// FeedsConfig holds the location of the dashboard feed fixtures
type FeedsConfig struct {
	Dir string `mapstructure:"feeds.dir"`
}

// SamplerConfig holds the background stats sampler configuration
type SamplerConfig struct {
	Enabled  bool          `mapstructure:"sampler.enabled"`
	Interval time.Duration `mapstructure:"sampler.interval"`
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string        `mapstructure:"redis.host"`
	Port     int           `mapstructure:"redis.port"`
	Password string        `mapstructure:"redis.password"`
	DB       int           `mapstructure:"redis.db"`
	Enabled  bool          `mapstructure:"redis.enabled"`
	TTL      time.Duration `mapstructure:"redis.ttl"`
}

// ServiceBusConfig holds Azure Service Bus configuration
type ServiceBusConfig struct {
	ConnectionString string `mapstructure:"azure.queue_conn_str"`
	QueueName        string `mapstructure:"azure.queue_name"`
}

// ElasticConfig holds Elasticsearch configuration
type ElasticConfig struct {
	URL      string `mapstructure:"elastic.url"`
	Username string `mapstructure:"elastic.username"`
	Password string `mapstructure:"elastic.password"`
	Prefix   string `mapstructure:"elastic.prefix"`
	Index    string `mapstructure:"elastic.index"`
	Enabled  bool   `mapstructure:"elastic.enabled"`
}

// TracingConfig holds tracing configuration
type TracingConfig struct {
	LicenseKey     string `mapstructure:"tracing.license_key"`
	AppName        string `mapstructure:"tracing.app_name"`
	LogLevel       string `mapstructure:"tracing.log_level"`
	LogEnabled     bool   `mapstructure:"tracing.log_enabled"`
	DistribTracing bool   `mapstructure:"tracing.distributed_tracing_enabled"`
}

// LoadConfig reads configuration from file or environment variables
func LoadConfig(path string) (Config, error) {
	v := viper.New()

	// Set default values
	setDefaults(v)

	// Setup configuration paths
	v.AddConfigPath(path)
	v.AddConfigPath("./config")
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	// Try to read the YAML config first
	if err := v.ReadInConfig(); err != nil {
		// If YAML not found, try ENV file
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			v.SetConfigName("app")
			v.SetConfigType("env")
			if err := v.ReadInConfig(); err != nil {
				// Continue even if no config file is found - we'll use ENV vars and defaults
				fmt.Printf("Warning: No configuration file found: %v\n", err)
			}
		} else {
			// Return if there's an error reading the found config file
			return Config{}, fmt.Errorf("error reading config file: %w", err)
		}
	}

	// Enable environment variables to override config
	v.SetEnvPrefix("GRID")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// DATABASE_URL is honored without the prefix so managed deployments work
	// out of the box
	if err := v.BindEnv("database.url", "GRID_DATABASE_URL", "DATABASE_URL"); err != nil {
		return Config{}, fmt.Errorf("unable to bind database url: %w", err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return Config{}, fmt.Errorf("unable to unmarshal config: %w", err)
	}

	if config.DB.Driver == "" {
		if config.DB.URL != "" {
			config.DB.Driver = "postgres"
		} else {
			config.DB.Driver = "sqlite"
		}
	}

	return config, nil
}

// setDefaults sets default values for configuration
func setDefaults(v *viper.Viper) {
	// Core settings
	v.SetDefault("environment", "development")
	v.SetDefault("server.address", "0.0.0.0:8080")
	v.SetDefault("server.timeout", "30s")
	v.SetDefault("server.cors_enabled", true)
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("metrics_enabled", true)

	// Database settings
	v.SetDefault("database.driver", "")
	v.SetDefault("database.url", "")
	v.SetDefault("database.path", "local_data.db")
	v.SetDefault("database.max_open_conns", 50)
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.conn_max_lifetime", "1h")

	// Model artifact settings
	v.SetDefault("models.dir", "models")
	v.SetDefault("models.bounds_file", "models/physical/zone_bounds.json")

	// Dashboard feed settings
	v.SetDefault("feeds.dir", "data")

	// Stats sampler settings
	v.SetDefault("sampler.enabled", true)
	v.SetDefault("sampler.interval", "1m")

	// Redis settings
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.ttl", "30s")

	// Azure settings
	v.SetDefault("azure.queue_name", "grid-alerts")

	// Elasticsearch settings
	v.SetDefault("elastic.url", "http://localhost:9200")
	v.SetDefault("elastic.prefix", "grid")
	v.SetDefault("elastic.index", "classifications")
	v.SetDefault("elastic.enabled", false)

	// Tracing settings
	v.SetDefault("tracing.app_name", "Grid Monitoring Dashboard")
	v.SetDefault("tracing.log_level", "info")
	v.SetDefault("tracing.log_enabled", true)
	v.SetDefault("tracing.distributed_tracing_enabled", true)

	// Logging settings
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// FormatIndex formats an Elasticsearch index name with the configured prefix
func FormatIndex(cfg ElasticConfig, index string) string {
	return cfg.Prefix + "-" + index
}

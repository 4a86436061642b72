package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Initial map camera and tile source handed to the page.
	MapCenterLat float64
	MapCenterLon float64
	MapZoom      int
	TileURL      string

	// SeedFile overrides the built-in records when set.
	SeedFile   string
	SessionTTL time.Duration

	// Activity feed; disabled when no brokers are configured.
	KafkaBrokers       []string
	KafkaViewportTopic string
	BatchSize          int
	BatchFlushInterval time.Duration

	// Mapbox place enrichment configuration.
	MapboxToken     string
	MapboxEnabled   bool
	MapboxTimeout   time.Duration
	MapboxCacheSize int
}

// ActivityEnabled reports whether settle events are forwarded to Kafka.
func (c *Config) ActivityEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	batchSize, err := sharedcfg.ParseBatchSize()
	if err != nil {
		return nil, err
	}

	flushInterval, err := sharedcfg.ParseBatchFlushInterval()
	if err != nil {
		return nil, err
	}

	sessionTTL, err := time.ParseDuration(sharedcfg.EnvOrDefault("SESSION_TTL", "30m"))
	if err != nil || sessionTTL <= 0 {
		return nil, errors.New("invalid SESSION_TTL")
	}

	mapboxTimeout, err := time.ParseDuration(sharedcfg.EnvOrDefault("MAPBOX_TIMEOUT", "5s"))
	if err != nil || mapboxTimeout <= 0 {
		return nil, errors.New("invalid MAPBOX_TIMEOUT")
	}

	centerLat, err := strconv.ParseFloat(sharedcfg.EnvOrDefault("MAP_CENTER_LAT", "51.505"), 64)
	if err != nil {
		return nil, errors.New("invalid MAP_CENTER_LAT")
	}
	centerLon, err := strconv.ParseFloat(sharedcfg.EnvOrDefault("MAP_CENTER_LON", "-0.09"), 64)
	if err != nil {
		return nil, errors.New("invalid MAP_CENTER_LON")
	}
	zoom, err := strconv.Atoi(sharedcfg.EnvOrDefault("MAP_ZOOM", "13"))
	if err != nil || zoom < 0 || zoom > 22 {
		return nil, errors.New("invalid MAP_ZOOM")
	}

	var brokers []string
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		brokers = sharedcfg.ParseBrokers(v)
	}

	mapboxToken := os.Getenv("MAPBOX_TOKEN")
	mapboxEnabled := mapboxToken != ""
	if v := os.Getenv("MAPBOX_ENABLED"); v != "" {
		mapboxEnabled = v == "true"
	}

	cfg := &Config{
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		MapCenterLat: centerLat,
		MapCenterLon: centerLon,
		MapZoom:      zoom,
		TileURL:      sharedcfg.EnvOrDefault("TILE_URL", "https://{s}.tile.openstreetmap.org/{z}/{x}/{y}.png"),

		SeedFile:   os.Getenv("SEED_FILE"),
		SessionTTL: sessionTTL,

		KafkaBrokers:       brokers,
		KafkaViewportTopic: sharedcfg.EnvOrDefault("KAFKA_VIEWPORT_TOPIC", "map-viewport-events"),
		BatchSize:          batchSize,
		BatchFlushInterval: flushInterval,

		MapboxToken:     mapboxToken,
		MapboxEnabled:   mapboxEnabled,
		MapboxTimeout:   mapboxTimeout,
		MapboxCacheSize: parseMapboxCacheSize(),
	}

	if cfg.ActivityEnabled() && cfg.KafkaViewportTopic == "" {
		return nil, errors.New("KAFKA_VIEWPORT_TOPIC is required when KAFKA_BROKERS is set")
	}
	if cfg.MapboxEnabled && cfg.MapboxToken == "" {
		return nil, errors.New("MAPBOX_ENABLED is true but MAPBOX_TOKEN is not set")
	}

	return cfg, nil
}

func parseMapboxCacheSize() int {
	if s := os.Getenv("MAPBOX_CACHE_SIZE"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return 1000
}

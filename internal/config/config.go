package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Config holds all service and client settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Directory holding feature_order.json, scaler.json and model.json.
	ModelDir string

	// Prediction service as seen from the console client.
	PredictorURL     string
	PredictorTimeout time.Duration

	// Live weather provider.
	WeatherBaseURL   string
	WeatherTimeout   time.Duration
	WeatherCacheTTL  time.Duration
	WeatherCacheSize int

	AutoPredictInterval time.Duration

	// Prediction event stream.
	KafkaEnabled         bool
	KafkaBrokers         []string
	KafkaPredictionTopic string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	predictorTimeout, err := parsePositiveDuration("PREDICTOR_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	weatherTimeout, err := parsePositiveDuration("WEATHER_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	weatherTTL, err := parsePositiveDuration("WEATHER_CACHE_TTL", "300s")
	if err != nil {
		return nil, err
	}
	autoInterval, err := parsePositiveDuration("AUTO_PREDICT_INTERVAL", "2s")
	if err != nil {
		return nil, err
	}
	cacheSize, err := parsePositiveInt("WEATHER_CACHE_SIZE", "1000")
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8000"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		ModelDir: sharedcfg.EnvOrDefault("MODEL_DIR", "artifacts"),

		PredictorURL:     sharedcfg.EnvOrDefault("PREDICTOR_URL", "http://127.0.0.1:8000"),
		PredictorTimeout: predictorTimeout,

		WeatherBaseURL:   sharedcfg.EnvOrDefault("WEATHER_BASE_URL", "https://api.open-meteo.com/v1/forecast"),
		WeatherTimeout:   weatherTimeout,
		WeatherCacheTTL:  weatherTTL,
		WeatherCacheSize: cacheSize,

		AutoPredictInterval: autoInterval,

		KafkaEnabled:         os.Getenv("KAFKA_ENABLED") == "true",
		KafkaBrokers:         sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaPredictionTopic: sharedcfg.EnvOrDefault("KAFKA_PREDICTION_TOPIC", "fwi-predictions"),
	}

	if cfg.ModelDir == "" {
		return nil, errors.New("MODEL_DIR is required")
	}
	if _, err := url.ParseRequestURI(cfg.PredictorURL); err != nil {
		return nil, fmt.Errorf("invalid PREDICTOR_URL: %w", err)
	}
	if _, err := url.ParseRequestURI(cfg.WeatherBaseURL); err != nil {
		return nil, fmt.Errorf("invalid WEATHER_BASE_URL: %w", err)
	}
	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is empty")
	}
	if cfg.KafkaEnabled && cfg.KafkaPredictionTopic == "" {
		return nil, errors.New("KAFKA_PREDICTION_TOPIC is required")
	}

	return cfg, nil
}

func parsePositiveDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, def))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parsePositiveInt(key, def string) (int, error) {
	n, err := strconv.Atoi(sharedcfg.EnvOrDefault(key, def))
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return n, nil
}

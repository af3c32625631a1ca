package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server    ServerConfig
	Predictor PredictorConfig
	Report    ReportConfig
	RateLimit RateLimitConfig
}

type ServerConfig struct {
	Port int
	Env  string
}

// PredictorConfig holds configuration for the remote drug-recommendation service.
type PredictorConfig struct {
	// URL is the base URL of the prediction service (no trailing slash)
	URL string
	// Timeout bounds a single prediction request end to end
	Timeout time.Duration
}

// ReportConfig holds configuration for the report capture and export pipeline.
type ReportConfig struct {
	// ViewURL is the address of the rendered report view the headless
	// browser navigates to. Defaults to this server's own /report page.
	ViewURL string
	// Scale is the raster oversampling factor applied during capture
	Scale float64
	// CaptureTimeout bounds one open-navigate-capture cycle
	CaptureTimeout time.Duration
}

type RateLimitConfig struct {
	RequestsPerSecond int
	Burst             int
}

func Load() (*Config, error) {
	port := getEnvInt("SERVER_PORT", 8080)

	return &Config{
		Server: ServerConfig{
			Port: port,
			Env:  getEnv("ENV", "development"),
		},
		Predictor: PredictorConfig{
			URL:     getEnv("PREDICTOR_URL", "http://localhost:5000"),
			Timeout: getEnvDuration("PREDICTOR_TIMEOUT", 30*time.Second),
		},
		Report: ReportConfig{
			ViewURL:        getEnv("REPORT_VIEW_URL", "http://localhost:"+strconv.Itoa(port)+"/report"),
			Scale:          getEnvFloat("REPORT_CAPTURE_SCALE", 2),
			CaptureTimeout: getEnvDuration("REPORT_CAPTURE_TIMEOUT", 45*time.Second),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: getEnvInt("RATE_LIMIT_RPS", 50),
			Burst:             getEnvInt("RATE_LIMIT_BURST", 100),
		},
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil && f > 0 {
			return f
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil && d > 0 {
			return d
		}
	}
	return defaultValue
}

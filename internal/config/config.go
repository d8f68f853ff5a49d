package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates application configuration values.
type Config struct {
	HTTP      HTTPConfig
	Graph     GraphConfig
	Logging   LoggingConfig
	Detection DetectionConfig
	Dataset   DatasetConfig
}

// HTTPConfig governs HTTP server behaviour.
type HTTPConfig struct {
	Host              string
	Port              int
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	ShutdownTimeout   time.Duration
	MetricsEnabled    bool
	AllowedOriginsCSV string
}

// GraphConfig describes connectivity to the optional ledger archive
// (Neo4j/Bolt). An empty URI disables the archive endpoints.
type GraphConfig struct {
	URI            string
	Database       string
	Username       string
	Password       string
	MaxConnections int
}

// LoggingConfig controls structured logging settings.
type LoggingConfig struct {
	Level         string
	Format        string // text|json
	IncludeCaller bool
}

// DetectionConfig carries the tuning knobs of the detection pipeline. The
// thresholds are heuristics, deliberately configurable rather than baked in.
type DetectionConfig struct {
	FanInThreshold int
	VelocityWindow time.Duration
	RiskThreshold  int
}

// DatasetConfig locates the read-only reference dataset served by the
// sample-data endpoint. The file is opened fresh per request and never
// mutated.
type DatasetConfig struct {
	SamplePath string
}

const (
	defaultHost             = "0.0.0.0"
	defaultPort             = 8080
	defaultReadTimeout      = 10 * time.Second
	defaultWriteTimeout     = 15 * time.Second
	defaultIdleTimeout      = 60 * time.Second
	defaultShutdownTimeout  = 10 * time.Second
	defaultLoggingLevel     = "info"
	defaultLoggingFormat    = "text"
	defaultGraphMaxSessions = 10
	defaultFanInThreshold   = 5
	defaultVelocityWindow   = 15 * time.Minute
	defaultRiskThreshold    = 20
	defaultSamplePath       = "data/transactions.csv"
)

// Load reads configuration from environment variables, applying defaults. A
// .env file in the working directory is loaded first when present.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		HTTP: HTTPConfig{
			Host:            valueOrDefault("SERVER_HOST", defaultHost),
			ReadTimeout:     defaultReadTimeout,
			WriteTimeout:    defaultWriteTimeout,
			IdleTimeout:     defaultIdleTimeout,
			ShutdownTimeout: defaultShutdownTimeout,
		},
		Logging: LoggingConfig{
			Level:         valueOrDefault("LOG_LEVEL", defaultLoggingLevel),
			Format:        valueOrDefault("LOG_FORMAT", defaultLoggingFormat),
			IncludeCaller: parseBoolWithDefault("LOG_INCLUDE_CALLER", false),
		},
		Graph: GraphConfig{
			URI:            os.Getenv("GRAPH_URI"),
			Database:       valueOrDefault("GRAPH_DATABASE", ""),
			Username:       os.Getenv("GRAPH_USERNAME"),
			Password:       os.Getenv("GRAPH_PASSWORD"),
			MaxConnections: parseIntWithDefault("GRAPH_MAX_CONNECTIONS", defaultGraphMaxSessions),
		},
		Detection: DetectionConfig{
			FanInThreshold: parseIntWithDefault("DETECTION_FAN_IN_THRESHOLD", defaultFanInThreshold),
			VelocityWindow: defaultVelocityWindow,
			RiskThreshold:  parseIntWithDefault("DETECTION_RISK_THRESHOLD", defaultRiskThreshold),
		},
		Dataset: DatasetConfig{
			SamplePath: valueOrDefault("SAMPLE_DATASET_PATH", defaultSamplePath),
		},
	}

	port, err := parsePort("SERVER_PORT", defaultPort)
	if err != nil {
		return Config{}, err
	}
	cfg.HTTP.Port = port

	for _, tc := range []struct {
		key    string
		target *time.Duration
	}{
		{"SERVER_READ_TIMEOUT", &cfg.HTTP.ReadTimeout},
		{"SERVER_WRITE_TIMEOUT", &cfg.HTTP.WriteTimeout},
		{"SERVER_IDLE_TIMEOUT", &cfg.HTTP.IdleTimeout},
		{"SERVER_SHUTDOWN_TIMEOUT", &cfg.HTTP.ShutdownTimeout},
		{"DETECTION_VELOCITY_WINDOW", &cfg.Detection.VelocityWindow},
	} {
		if v := os.Getenv(tc.key); v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				return Config{}, fmt.Errorf("invalid %s: %w", tc.key, err)
			}
			*tc.target = d
		}
	}

	if cfg.Detection.FanInThreshold < 0 {
		return Config{}, fmt.Errorf("DETECTION_FAN_IN_THRESHOLD must not be negative")
	}
	if cfg.Detection.VelocityWindow <= 0 {
		return Config{}, fmt.Errorf("DETECTION_VELOCITY_WINDOW must be positive")
	}

	cfg.HTTP.MetricsEnabled = parseBoolWithDefault("SERVER_METRICS_ENABLED", false)
	// Permissive by default so the bundled visualization frontend can connect.
	cfg.HTTP.AllowedOriginsCSV = valueOrDefault("SERVER_ALLOWED_ORIGINS", "*")

	return cfg, nil
}

func valueOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseBoolWithDefault(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		val, err := strconv.ParseBool(v)
		if err != nil {
			return fallback
		}
		return val
	}
	return fallback
}

func parseIntWithDefault(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if val, err := strconv.Atoi(v); err == nil {
			return val
		}
	}
	return fallback
}

func parsePort(key string, fallback int) (int, error) {
	if v := os.Getenv(key); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("invalid %s value %q: %w", key, v, err)
		}
		if port <= 0 || port > 65535 {
			return 0, fmt.Errorf("port %d is out of range", port)
		}
		return port, nil
	}
	return fallback, nil
}

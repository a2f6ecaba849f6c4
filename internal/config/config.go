package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config aggregates application configuration values.
type Config struct {
	HTTP        HTTPConfig
	Scoring     ScoringConfig
	Persistence PersistenceConfig
	Simulation  SimulationConfig
	Logging     LoggingConfig
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

// ScoringConfig describes connectivity to the external scoring service.
type ScoringConfig struct {
	URL     string
	APIKey  string
	Timeout time.Duration
}

// PersistenceConfig describes connectivity to the external persistence service.
type PersistenceConfig struct {
	URL     string
	APIKey  string
	Timeout time.Duration
}

// SimulationConfig bounds operator-supplied run parameters.
type SimulationConfig struct {
	DefaultBatchSize   int
	MaxBatchSize       int
	DefaultConcurrency int
	MaxConcurrency     int
}

// LoggingConfig controls structured logging settings.
type LoggingConfig struct {
	Level         string
	Format        string // text|json
	Colored       bool
	IncludeCaller bool
}

const (
	defaultHost            = "0.0.0.0"
	defaultPort            = 8080
	defaultReadTimeout     = 10 * time.Second
	defaultWriteTimeout    = 30 * time.Second
	defaultIdleTimeout     = 60 * time.Second
	defaultShutdownTimeout = 10 * time.Second
	defaultLoggingLevel    = "info"
	defaultLoggingFormat   = "text"
	defaultClientTimeout   = 10 * time.Second
	defaultBatchSize       = 100
	defaultMaxBatchSize    = 1000
	defaultConcurrency     = 5
	defaultMaxConcurrency  = 50
)

// fileConfig mirrors the YAML schema accepted via CONFIG_FILE. Environment
// variables override file values.
type fileConfig struct {
	Server struct {
		Host           string `yaml:"host"`
		Port           int    `yaml:"port"`
		MetricsEnabled bool   `yaml:"metrics_enabled"`
		AllowedOrigins string `yaml:"allowed_origins"`
	} `yaml:"server"`
	Scoring struct {
		URL     string `yaml:"url"`
		APIKey  string `yaml:"api_key"`
		Timeout string `yaml:"timeout"`
	} `yaml:"scoring"`
	Persistence struct {
		URL     string `yaml:"url"`
		APIKey  string `yaml:"api_key"`
		Timeout string `yaml:"timeout"`
	} `yaml:"persistence"`
	Simulation struct {
		DefaultBatchSize   int `yaml:"default_batch_size"`
		MaxBatchSize       int `yaml:"max_batch_size"`
		DefaultConcurrency int `yaml:"default_concurrency"`
		MaxConcurrency     int `yaml:"max_concurrency"`
	} `yaml:"simulation"`
	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"logging"`
}

// Load reads configuration from an optional YAML file (CONFIG_FILE) and the
// environment, applying defaults. Environment variables win over the file.
func Load() (Config, error) {
	cfg := Config{
		HTTP: HTTPConfig{
			Host:            defaultHost,
			Port:            defaultPort,
			ReadTimeout:     defaultReadTimeout,
			WriteTimeout:    defaultWriteTimeout,
			IdleTimeout:     defaultIdleTimeout,
			ShutdownTimeout: defaultShutdownTimeout,
		},
		Scoring: ScoringConfig{
			Timeout: defaultClientTimeout,
		},
		Persistence: PersistenceConfig{
			Timeout: defaultClientTimeout,
		},
		Simulation: SimulationConfig{
			DefaultBatchSize:   defaultBatchSize,
			MaxBatchSize:       defaultMaxBatchSize,
			DefaultConcurrency: defaultConcurrency,
			MaxConcurrency:     defaultMaxConcurrency,
		},
		Logging: LoggingConfig{
			Level:  defaultLoggingLevel,
			Format: defaultLoggingFormat,
		},
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := applyFile(&cfg, path); err != nil {
			return Config{}, err
		}
	}
	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	if fc.Server.Host != "" {
		cfg.HTTP.Host = fc.Server.Host
	}
	if fc.Server.Port != 0 {
		cfg.HTTP.Port = fc.Server.Port
	}
	cfg.HTTP.MetricsEnabled = fc.Server.MetricsEnabled
	if fc.Server.AllowedOrigins != "" {
		cfg.HTTP.AllowedOriginsCSV = fc.Server.AllowedOrigins
	}

	if fc.Scoring.URL != "" {
		cfg.Scoring.URL = fc.Scoring.URL
	}
	if fc.Scoring.APIKey != "" {
		cfg.Scoring.APIKey = fc.Scoring.APIKey
	}
	if fc.Scoring.Timeout != "" {
		d, err := time.ParseDuration(fc.Scoring.Timeout)
		if err != nil {
			return fmt.Errorf("invalid scoring.timeout in %s: %w", path, err)
		}
		cfg.Scoring.Timeout = d
	}

	if fc.Persistence.URL != "" {
		cfg.Persistence.URL = fc.Persistence.URL
	}
	if fc.Persistence.APIKey != "" {
		cfg.Persistence.APIKey = fc.Persistence.APIKey
	}
	if fc.Persistence.Timeout != "" {
		d, err := time.ParseDuration(fc.Persistence.Timeout)
		if err != nil {
			return fmt.Errorf("invalid persistence.timeout in %s: %w", path, err)
		}
		cfg.Persistence.Timeout = d
	}

	if fc.Simulation.DefaultBatchSize > 0 {
		cfg.Simulation.DefaultBatchSize = fc.Simulation.DefaultBatchSize
	}
	if fc.Simulation.MaxBatchSize > 0 {
		cfg.Simulation.MaxBatchSize = fc.Simulation.MaxBatchSize
	}
	if fc.Simulation.DefaultConcurrency > 0 {
		cfg.Simulation.DefaultConcurrency = fc.Simulation.DefaultConcurrency
	}
	if fc.Simulation.MaxConcurrency > 0 {
		cfg.Simulation.MaxConcurrency = fc.Simulation.MaxConcurrency
	}

	if fc.Logging.Level != "" {
		cfg.Logging.Level = fc.Logging.Level
	}
	if fc.Logging.Format != "" {
		cfg.Logging.Format = fc.Logging.Format
	}
	return nil
}

func applyEnv(cfg *Config) error {
	cfg.HTTP.Host = valueOrDefault("SERVER_HOST", cfg.HTTP.Host)

	port, err := parsePort("SERVER_PORT", cfg.HTTP.Port)
	if err != nil {
		return err
	}
	cfg.HTTP.Port = port

	for _, item := range []struct {
		key string
		dst *time.Duration
	}{
		{"SERVER_READ_TIMEOUT", &cfg.HTTP.ReadTimeout},
		{"SERVER_WRITE_TIMEOUT", &cfg.HTTP.WriteTimeout},
		{"SERVER_IDLE_TIMEOUT", &cfg.HTTP.IdleTimeout},
		{"SERVER_SHUTDOWN_TIMEOUT", &cfg.HTTP.ShutdownTimeout},
		{"SCORING_TIMEOUT", &cfg.Scoring.Timeout},
		{"PERSISTENCE_TIMEOUT", &cfg.Persistence.Timeout},
	} {
		if v := os.Getenv(item.key); v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("invalid %s: %w", item.key, err)
			}
			*item.dst = d
		}
	}

	cfg.HTTP.MetricsEnabled = parseBoolWithDefault("SERVER_METRICS_ENABLED", cfg.HTTP.MetricsEnabled)
	cfg.HTTP.AllowedOriginsCSV = valueOrDefault("SERVER_ALLOWED_ORIGINS", cfg.HTTP.AllowedOriginsCSV)

	cfg.Scoring.URL = valueOrDefault("SCORING_URL", cfg.Scoring.URL)
	cfg.Scoring.APIKey = valueOrDefault("SCORING_API_KEY", cfg.Scoring.APIKey)
	cfg.Persistence.URL = valueOrDefault("PERSISTENCE_URL", cfg.Persistence.URL)
	cfg.Persistence.APIKey = valueOrDefault("PERSISTENCE_API_KEY", cfg.Persistence.APIKey)

	cfg.Simulation.DefaultBatchSize = parseIntWithDefault("SIM_DEFAULT_BATCH_SIZE", cfg.Simulation.DefaultBatchSize)
	cfg.Simulation.MaxBatchSize = parseIntWithDefault("SIM_MAX_BATCH_SIZE", cfg.Simulation.MaxBatchSize)
	cfg.Simulation.DefaultConcurrency = parseIntWithDefault("SIM_DEFAULT_CONCURRENCY", cfg.Simulation.DefaultConcurrency)
	cfg.Simulation.MaxConcurrency = parseIntWithDefault("SIM_MAX_CONCURRENCY", cfg.Simulation.MaxConcurrency)

	cfg.Logging.Level = valueOrDefault("LOG_LEVEL", cfg.Logging.Level)
	cfg.Logging.Format = valueOrDefault("LOG_FORMAT", cfg.Logging.Format)
	cfg.Logging.Colored = parseBoolWithDefault("LOG_COLOR", cfg.Logging.Colored)
	cfg.Logging.IncludeCaller = parseBoolWithDefault("LOG_INCLUDE_CALLER", cfg.Logging.IncludeCaller)

	return nil
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

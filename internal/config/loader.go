package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the path checked for YAML configuration.
const DefaultConfigFile = "toneforge.yaml"

// Load returns a Config using the hierarchy: defaults < YAML < ENV.
// YAML file is optional; missing file is not an error.
func Load() (*Config, error) {
	return LoadFrom(DefaultConfigFile)
}

// LoadFrom returns a Config loaded from the given YAML path using the
// hierarchy: defaults < YAML < ENV. The YAML file is optional.
func LoadFrom(yamlPath string) (*Config, error) {
	cfg := Defaults()

	if err := loadYAML(&cfg, yamlPath); err != nil {
		return nil, fmt.Errorf("config yaml: %w", err)
	}

	loadEnv(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("config validate: %w", err)
	}

	return &cfg, nil
}

// loadYAML reads the YAML file and unmarshals it over cfg.
// Returns nil if the file does not exist.
func loadYAML(cfg *Config, path string) error {
	data, err := os.ReadFile(path) //nolint:gosec // G304: path is validated by caller
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	return nil
}

// loadEnv overlays environment variables onto cfg.
// Only non-empty env values override the current config.
func loadEnv(cfg *Config) {
	setString(&cfg.Server.Port, "TONEFORGE_PORT")
	setString(&cfg.Server.CORSOrigin, "TONEFORGE_CORS_ORIGIN")
	setString(&cfg.Ledger.Backend, "TONEFORGE_LEDGER_BACKEND")
	setString(&cfg.Ledger.Path, "TONEFORGE_LEDGER_PATH")
	setString(&cfg.Postgres.DSN, "DATABASE_URL")
	setInt32(&cfg.Postgres.MaxConns, "TONEFORGE_PG_MAX_CONNS")
	setInt32(&cfg.Postgres.MinConns, "TONEFORGE_PG_MIN_CONNS")
	setDuration(&cfg.Postgres.MaxConnLifetime, "TONEFORGE_PG_MAX_CONN_LIFETIME")
	setDuration(&cfg.Postgres.MaxConnIdleTime, "TONEFORGE_PG_MAX_CONN_IDLE_TIME")
	setDuration(&cfg.Postgres.HealthCheck, "TONEFORGE_PG_HEALTH_CHECK")
	setString(&cfg.NATS.URL, "NATS_URL")
	setString(&cfg.ModelServe.URL, "MODELSERVE_URL")
	setString(&cfg.ModelServe.APIKey, "MODELSERVE_API_KEY")
	setString(&cfg.ModelServe.BaseModel, "MODELSERVE_BASE_MODEL")
	setDuration(&cfg.ModelServe.Timeout, "MODELSERVE_TIMEOUT")
	setDuration(&cfg.ModelServe.TrainTimeout, "MODELSERVE_TRAIN_TIMEOUT")
	setString(&cfg.Adapters.OutputDir, "TONEFORGE_ADAPTER_DIR")
	setString(&cfg.Adapters.MarkerFile, "TONEFORGE_ADAPTER_MARKER")
	setInt(&cfg.Adapters.MinExamples, "TONEFORGE_MIN_EXAMPLES")
	setInt64(&cfg.Adapters.MaxParallelTrainings, "TONEFORGE_MAX_PARALLEL_TRAININGS")
	setBool(&cfg.Revision.CacheEnabled, "TONEFORGE_REVISION_CACHE")
	setInt64(&cfg.Revision.CacheMaxSizeMB, "TONEFORGE_REVISION_CACHE_SIZE_MB")
	setDuration(&cfg.Revision.CacheTTL, "TONEFORGE_REVISION_CACHE_TTL")
	setDuration(&cfg.Training.JobTimeout, "TONEFORGE_TRAINING_JOB_TIMEOUT")
	setInt(&cfg.Breaker.MaxFailures, "TONEFORGE_BREAKER_MAX_FAILURES")
	setDuration(&cfg.Breaker.Timeout, "TONEFORGE_BREAKER_TIMEOUT")
	setString(&cfg.Logging.Level, "TONEFORGE_LOG_LEVEL")
	setString(&cfg.Logging.Service, "TONEFORGE_LOG_SERVICE")
}

// validate checks that required fields are set.
func validate(cfg *Config) error {
	if cfg.Server.Port == "" {
		return errors.New("server.port is required")
	}
	switch cfg.Ledger.Backend {
	case "jsonl":
		if cfg.Ledger.Path == "" {
			return errors.New("ledger.path is required for the jsonl backend")
		}
	case "postgres":
		if cfg.Postgres.DSN == "" {
			return errors.New("postgres.dsn is required for the postgres backend")
		}
	default:
		return fmt.Errorf("ledger.backend must be jsonl or postgres, got %q", cfg.Ledger.Backend)
	}
	if cfg.ModelServe.URL == "" {
		return errors.New("modelserve.url is required")
	}
	if cfg.Adapters.OutputDir == "" {
		return errors.New("adapters.output_dir is required")
	}
	if cfg.Adapters.MinExamples < 1 {
		return errors.New("adapters.min_examples must be >= 1")
	}
	if cfg.Adapters.MaxParallelTrainings < 1 {
		return errors.New("adapters.max_parallel_trainings must be >= 1")
	}
	if cfg.Sanitizer.CompletionMarker == "" {
		return errors.New("sanitizer.completion_marker is required")
	}
	if cfg.Breaker.MaxFailures < 1 {
		return errors.New("breaker.max_failures must be >= 1")
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setInt32(dst *int32, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 32); err == nil {
			*dst = int32(n)
		}
	}
}

func setInt64(dst *int64, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}

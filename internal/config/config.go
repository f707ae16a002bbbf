// Package config provides hierarchical configuration loading for ToneForge.
// Precedence: defaults < YAML file < environment variables.
package config

import (
	"time"

	"github.com/toneforge/toneforge/internal/port/generation"
)

// Config holds all runtime configuration for the ToneForge service.
type Config struct {
	Server     Server              `yaml:"server"`
	Ledger     Ledger              `yaml:"ledger"`
	Postgres   Postgres            `yaml:"postgres"`
	NATS       NATS                `yaml:"nats"`
	ModelServe ModelServe          `yaml:"modelserve"`
	Adapters   Adapters            `yaml:"adapters"`
	Sampling   generation.Sampling `yaml:"sampling"`
	Sanitizer  Sanitizer           `yaml:"sanitizer"`
	Revision   Revision            `yaml:"revision"`
	Training   Training            `yaml:"training"`
	Breaker    Breaker             `yaml:"breaker"`
	Logging    Logging             `yaml:"logging"`
}

// Server holds HTTP server configuration.
type Server struct {
	Port       string `yaml:"port"`
	CORSOrigin string `yaml:"cors_origin"`
}

// Ledger selects and configures the example pair store.
type Ledger struct {
	// Backend is "jsonl" (default) or "postgres".
	Backend string `yaml:"backend"`
	// Path is the JSONL file location for the jsonl backend.
	Path string `yaml:"path"`
}

// Postgres holds PostgreSQL connection configuration for the postgres ledger
// backend.
type Postgres struct {
	DSN             string        `yaml:"dsn"`
	MaxConns        int32         `yaml:"max_conns"`
	MinConns        int32         `yaml:"min_conns"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time"`
	HealthCheck     time.Duration `yaml:"health_check"`
}

// NATS holds the training event stream configuration. An empty URL disables
// event publishing.
type NATS struct {
	URL string `yaml:"url"`
}

// ModelServe holds the model serving/training sidecar configuration.
type ModelServe struct {
	URL       string        `yaml:"url"`
	APIKey    string        `yaml:"api_key"`
	BaseModel string        `yaml:"base_model"`
	Timeout   time.Duration `yaml:"timeout"`
	// TrainTimeout bounds one training call; training runs for minutes.
	TrainTimeout time.Duration `yaml:"train_timeout"`
}

// Adapters holds adapter artifact and gating configuration.
type Adapters struct {
	// OutputDir is the root directory holding one artifact directory per
	// tenant.
	OutputDir string `yaml:"output_dir"`
	// MarkerFile signals a completed adapter inside a tenant directory.
	MarkerFile string `yaml:"marker_file"`
	// MinExamples is the training gate threshold.
	MinExamples int `yaml:"min_examples"`
	// MaxParallelTrainings bounds concurrently running training jobs across
	// all tenants.
	MaxParallelTrainings int64 `yaml:"max_parallel_trainings"`
}

// Sanitizer holds the marker sets driving generation cleanup. Phrase lists
// are data, not code, so additional locales can be configured without a
// rebuild.
type Sanitizer struct {
	CompletionMarker     string   `yaml:"completion_marker"`
	ClosingPhrases       []string `yaml:"closing_phrases"`
	HallucinationMarkers []string `yaml:"hallucination_markers"`
	SignatureMaxLen      int      `yaml:"signature_max_len"`
	SignatureLookahead   int      `yaml:"signature_lookahead"`
	MinBodyLines         int      `yaml:"min_body_lines"`
	TrailingKeepLines    int      `yaml:"trailing_keep_lines"`
}

// Revision holds the bounded revision-result cache configuration.
type Revision struct {
	CacheEnabled   bool          `yaml:"cache_enabled"`
	CacheMaxSizeMB int64         `yaml:"cache_max_size_mb"`
	CacheTTL       time.Duration `yaml:"cache_ttl"`
}

// Training holds background job runner configuration.
type Training struct {
	// JobTimeout bounds one background training job end to end.
	JobTimeout time.Duration `yaml:"job_timeout"`
}

// Breaker holds circuit breaker configuration for sidecar calls.
type Breaker struct {
	MaxFailures int           `yaml:"max_failures"`
	Timeout     time.Duration `yaml:"timeout"`
}

// Logging holds structured logging configuration.
type Logging struct {
	Level   string `yaml:"level"`
	Service string `yaml:"service"`
}

// Defaults returns a Config with sensible default values for local development.
func Defaults() Config {
	return Config{
		Server: Server{
			Port:       "8000",
			CORSOrigin: "http://localhost:3000",
		},
		Ledger: Ledger{
			Backend: "jsonl",
			Path:    "data/pairs.jsonl",
		},
		Postgres: Postgres{
			DSN:             "",
			MaxConns:        10,
			MinConns:        1,
			MaxConnLifetime: time.Hour,
			MaxConnIdleTime: 10 * time.Minute,
			HealthCheck:     time.Minute,
		},
		NATS: NATS{
			URL: "",
		},
		ModelServe: ModelServe{
			URL:          "http://localhost:8081",
			BaseModel:    "mistralai/Mistral-7B-Instruct-v0.2",
			Timeout:      60 * time.Second,
			TrainTimeout: 30 * time.Minute,
		},
		Adapters: Adapters{
			OutputDir:            "outputs/tone_of_voice_lora",
			MarkerFile:           "adapter.ready",
			MinExamples:          10,
			MaxParallelTrainings: 1,
		},
		Sampling: generation.Sampling{
			MaxNewTokens:      300,
			MinLength:         30,
			Temperature:       0.3,
			TopP:              0.75,
			TopK:              25,
			RepetitionPenalty: 1.35,
			NoRepeatNgramSize: 3,
			Stop:              []string{"\n\nDraft reply:", "\n\nOriginal:", "Assistant:"},
		},
		Sanitizer: Sanitizer{
			CompletionMarker: "Revised version:",
			ClosingPhrases: []string{
				"Freundliche Grüße", "Freundliche Grüsse",
				"Mit freundlichen Grüßen", "Mit freundlichen Grüssen",
				"Beste Grüße", "Beste Grüsse",
				"Viele Grüße", "Viele Grüsse",
				"Herzliche Grüße", "Herzliche Grüsse",
				"Best regards", "Kind regards", "Regards",
			},
			HallucinationMarkers: []string{
				"Original:", "Draft reply:", "Assistant:",
				"Ursprünglicher Text:", "Erweiterte Übersetzung:",
			},
			SignatureMaxLen:    50,
			SignatureLookahead: 2,
			MinBodyLines:       5,
			TrailingKeepLines:  2,
		},
		Revision: Revision{
			CacheEnabled:   true,
			CacheMaxSizeMB: 32,
			CacheTTL:       10 * time.Minute,
		},
		Training: Training{
			JobTimeout: 45 * time.Minute,
		},
		Breaker: Breaker{
			MaxFailures: 5,
			Timeout:     30 * time.Second,
		},
		Logging: Logging{
			Level:   "info",
			Service: "toneforge",
		},
	}
}

// Package config loads server configuration from the environment, with a
// best-effort .env file for local development.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/siherrmann/kgraph/helper"
)

// Config holds everything the server needs to start: where the graph store
// lives, how to reach the LLM inference server, and the knobs that shape
// extraction concurrency and HTTP behavior.
type Config struct {
	Database helper.DatabaseConfiguration

	LLMBaseURL  string
	LLMAPIKey   string
	LLMModel    string
	NERModel    string
	NEROnnxPath string

	// LLMTimeoutSeconds bounds one completion call end to end (§5: long
	// relationship-extraction passes need headroom well past typical HTTP
	// client defaults).
	LLMTimeoutSeconds int
	// LLMModelRetryIntervalSeconds is how often the LLM client re-checks
	// an auto-discovered model identifier (§4.1).
	LLMModelRetryIntervalSeconds int

	// ExtractionMode selects the §4.7 extraction branch: "unified" runs
	// one joint entity+relationship LLM pass per document; "ner" runs the
	// local NER model for entities and a relationship-only LLM pass.
	ExtractionMode string

	// NERConfidenceThreshold is §4.2's extract(text, threshold?) default.
	NERConfidenceThreshold float64
	// UnifiedEntityConfidenceThreshold and
	// UnifiedRelationshipConfidenceThreshold are §4.3's post-processing
	// defaults, shared by both the unified and the relationship-only
	// extraction paths.
	UnifiedEntityConfidenceThreshold       float64
	UnifiedRelationshipConfidenceThreshold float64

	HTTPPort int

	MaxConcurrentExtractions int
	EnableCoOccurrenceWrites bool
}

// Load reads configuration from the environment, first loading a .env file
// in the working directory if one is present (silently ignored if absent).
func Load() (*Config, error) {
	_ = godotenv.Load()

	port, err := envInt("DB_PORT", 5432)
	if err != nil {
		return nil, err
	}
	httpPort, err := envInt("HTTP_PORT", 8088)
	if err != nil {
		return nil, err
	}
	maxConcurrent, err := envInt("MAX_CONCURRENT_EXTRACTIONS", 4)
	if err != nil {
		return nil, err
	}
	enableCoOccurrence, err := envBool("ENABLE_COOCCURRENCE_WRITES", false)
	if err != nil {
		return nil, err
	}
	llmTimeout, err := envInt("LLM_TIMEOUT_SECONDS", 3600)
	if err != nil {
		return nil, err
	}
	llmModelRetryInterval, err := envInt("LLM_MODEL_RETRY_INTERVAL_SECONDS", 30)
	if err != nil {
		return nil, err
	}
	nerConfidence, err := envFloat("NER_CONFIDENCE_THRESHOLD", 0.4)
	if err != nil {
		return nil, err
	}
	unifiedEntityConfidence, err := envFloat("UNIFIED_ENTITY_CONFIDENCE_THRESHOLD", 0.45)
	if err != nil {
		return nil, err
	}
	unifiedRelationshipConfidence, err := envFloat("UNIFIED_RELATIONSHIP_CONFIDENCE_THRESHOLD", 0.45)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Database: helper.DatabaseConfiguration{
			Host:     envString("DB_HOST", "localhost"),
			Port:     port,
			Database: envString("DB_NAME", "kgraph"),
			Username: envString("DB_USER", "kgraph"),
			Password: envString("DB_PASSWORD", ""),
			Schema:   envString("DB_SCHEMA", "public"),
			SSLMode:  envString("DB_SSLMODE", "disable"),
		},
		LLMBaseURL:                             envString("LLM_BASE_URL", "http://localhost:11434/v1"),
		LLMAPIKey:                              envString("LLM_API_KEY", ""),
		LLMModel:                               envString("LLM_MODEL", ""),
		NERModel:                               envString("NER_MODEL", "sentence-transformers/all-MiniLM-L6-v2"),
		NEROnnxPath:                            envString("NER_ONNX_PATH", "onnx/model.onnx"),
		LLMTimeoutSeconds:                      llmTimeout,
		LLMModelRetryIntervalSeconds:           llmModelRetryInterval,
		ExtractionMode:                         envString("EXTRACTION_MODE", "unified"),
		NERConfidenceThreshold:                 nerConfidence,
		UnifiedEntityConfidenceThreshold:       unifiedEntityConfidence,
		UnifiedRelationshipConfidenceThreshold: unifiedRelationshipConfidence,
		HTTPPort:                               httpPort,
		MaxConcurrentExtractions:               maxConcurrent,
		EnableCoOccurrenceWrites:                enableCoOccurrence,
	}

	return cfg, nil
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("parsing %s: %w", key, err)
	}
	return n, nil
}

func envBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("parsing %s: %w", key, err)
	}
	return b, nil
}

func envFloat(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing %s: %w", key, err)
	}
	return f, nil
}

package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		original, ok := os.LookupEnv(k)
		os.Unsetenv(k)
		t.Cleanup(func() {
			if ok {
				os.Setenv(k, original)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	keys := []string{
		"DB_HOST", "DB_PORT", "DB_NAME", "DB_USER", "DB_PASSWORD", "DB_SCHEMA", "DB_SSLMODE",
		"LLM_BASE_URL", "LLM_API_KEY", "LLM_MODEL", "NER_MODEL", "NER_ONNX_PATH",
		"LLM_TIMEOUT_SECONDS", "LLM_MODEL_RETRY_INTERVAL_SECONDS",
		"NER_CONFIDENCE_THRESHOLD", "UNIFIED_ENTITY_CONFIDENCE_THRESHOLD", "UNIFIED_RELATIONSHIP_CONFIDENCE_THRESHOLD",
		"HTTP_PORT", "MAX_CONCURRENT_EXTRACTIONS", "ENABLE_COOCCURRENCE_WRITES",
	}

	t.Run("Applies defaults when nothing is set", func(t *testing.T) {
		clearEnv(t, keys...)

		cfg, err := Load()

		require.NoError(t, err)
		assert.Equal(t, "localhost", cfg.Database.Host)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, "kgraph", cfg.Database.Database)
		assert.Equal(t, 8088, cfg.HTTPPort)
		assert.Equal(t, 4, cfg.MaxConcurrentExtractions)
		assert.False(t, cfg.EnableCoOccurrenceWrites)
		assert.Equal(t, 3600, cfg.LLMTimeoutSeconds)
		assert.Equal(t, 30, cfg.LLMModelRetryIntervalSeconds)
		assert.Equal(t, 0.4, cfg.NERConfidenceThreshold)
		assert.Equal(t, 0.45, cfg.UnifiedEntityConfidenceThreshold)
		assert.Equal(t, 0.45, cfg.UnifiedRelationshipConfidenceThreshold)
	})

	t.Run("Overrides from environment", func(t *testing.T) {
		clearEnv(t, keys...)
		os.Setenv("DB_HOST", "db.internal")
		os.Setenv("DB_PORT", "6543")
		os.Setenv("HTTP_PORT", "9090")
		os.Setenv("MAX_CONCURRENT_EXTRACTIONS", "8")
		os.Setenv("ENABLE_COOCCURRENCE_WRITES", "false")
		os.Setenv("LLM_TIMEOUT_SECONDS", "120")
		os.Setenv("NER_CONFIDENCE_THRESHOLD", "0.6")

		cfg, err := Load()

		require.NoError(t, err)
		assert.Equal(t, "db.internal", cfg.Database.Host)
		assert.Equal(t, 6543, cfg.Database.Port)
		assert.Equal(t, 9090, cfg.HTTPPort)
		assert.Equal(t, 8, cfg.MaxConcurrentExtractions)
		assert.False(t, cfg.EnableCoOccurrenceWrites)
		assert.Equal(t, 120, cfg.LLMTimeoutSeconds)
		assert.Equal(t, 0.6, cfg.NERConfidenceThreshold)
	})

	t.Run("Returns an error for a non-numeric port", func(t *testing.T) {
		clearEnv(t, keys...)
		os.Setenv("DB_PORT", "not-a-number")

		_, err := Load()

		assert.Error(t, err)
	})

	t.Run("Returns an error for a non-numeric confidence threshold", func(t *testing.T) {
		clearEnv(t, keys...)
		os.Setenv("NER_CONFIDENCE_THRESHOLD", "not-a-number")

		_, err := Load()

		assert.Error(t, err)
	})
}
